// Package main implements an interactive debugging client for the endgame server API.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"endgame/internal/client/commands"
	"endgame/internal/client/display"
	"endgame/internal/client/session"

	"github.com/chzyer/readline"
)

func main() {
	apiURL := flag.String("url", "http://localhost:8080", "Endgame server base URL")
	history := flag.String("history", ".endgame_history", "Readline history file (empty disables)")
	flag.Parse()

	s := session.New(strings.TrimRight(*apiURL, "/"))

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("endgame"),
		HistoryFile:     *history,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("%sEndgame Debug Client%s\n", display.Cyan, display.Reset)
	fmt.Printf("%sAPI: %s%s\n", display.Cyan, s.APIBaseURL, display.Reset)
	fmt.Printf("Type 'help' for commands\n\n")

	registry := commands.NewRegistry(s)

	for {
		rl.SetPrompt(buildPrompt(s))

		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		line, s.Verbose = splitVerbose(line)
		if !registry.Execute(line) {
			break
		}
	}
}

// splitVerbose strips a trailing -v flag
func splitVerbose(line string) (string, bool) {
	if rest, ok := strings.CutSuffix(line, " -v"); ok {
		return strings.TrimSpace(rest), true
	}
	return line, false
}

// buildPrompt shows the user, the current game and its round and state:
// "endgame [alice - 6f1c2b1e r2] ongoing >"
func buildPrompt(s *session.Session) string {
	var parts []string
	if s.Username != "" {
		parts = append(parts, display.Colorize(display.Magenta, s.Username))
	}
	if s.CurrentGame != "" {
		id := s.CurrentGame
		if len(id) > 8 {
			id = id[:8]
		}
		if g := s.GameState; g != nil {
			id = fmt.Sprintf("%s r%d", id, g.Round)
		}
		parts = append(parts, display.Colorize(display.White, id))
	}

	prompt := "endgame"
	if len(parts) > 0 {
		sep := display.Colorize(display.Yellow, " - ")
		prompt += display.Yellow + " [" + display.Reset + strings.Join(parts, sep) + display.Yellow + "]"
	}
	if g := s.GameState; g != nil {
		prompt += " " + display.ColorForState(g.State)
		if g.InCheck {
			prompt += display.Colorize(display.Red, "+")
		}
	}
	return display.Prompt(prompt)
}
