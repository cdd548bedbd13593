package display

import (
	"fmt"
	"io"
	"strings"
)

// RenderBoard writes an ASCII board with colored pieces. The first and last
// lines are file labels; rank digits frame each row.
func RenderBoard(w io.Writer, asciiBoard string) {
	lines := strings.Split(strings.TrimRight(asciiBoard, "\n"), "\n")

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fileLine := i == 0 || i == len(lines)-1

		var sb strings.Builder
		for _, ch := range line {
			switch {
			case fileLine && ch >= 'a' && ch <= 'h':
				sb.WriteString(Colorize(Cyan, string(ch)))
			case ch >= 'A' && ch <= 'Z':
				sb.WriteString(Colorize(Blue, string(ch)))
			case ch >= 'a' && ch <= 'z':
				sb.WriteString(Colorize(Red, string(ch)))
			case ch >= '1' && ch <= '8':
				sb.WriteString(Colorize(Cyan, string(ch)))
			default:
				sb.WriteRune(ch)
			}
		}
		fmt.Fprintln(w, sb.String())
	}
}

// ColorForState colors a game state name
func ColorForState(state string) string {
	switch state {
	case "ongoing":
		return Colorize(Green, state)
	case "white wins":
		return Colorize(Blue, state)
	case "black wins", "stuck":
		return Colorize(Red, state)
	default:
		return Colorize(Yellow, state)
	}
}
