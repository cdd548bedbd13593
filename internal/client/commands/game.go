package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"endgame/internal/client/api"
	"endgame/internal/client/display"
)

func (r *Registry) registerGameCommands() {
	r.Register(&Command{
		Name:        "new",
		ShortName:   "n",
		Description: "Create a game from a random placement or a FEN",
		Usage:       "new [seed] | new fen <placement> [w|b ...]",
		Handler:     newGameHandler,
	})

	r.Register(&Command{
		Name:        "join",
		ShortName:   "j",
		Description: "Join/set current game ID",
		Usage:       "join <gameId>",
		Handler:     joinGameHandler,
	})

	r.Register(&Command{
		Name:        "move",
		ShortName:   "m",
		Description: "Play a White move; the computer replies",
		Usage:       "move <from><to>[q|r|b|n]",
		Handler:     moveHandler,
	})

	r.Register(&Command{
		Name:        "reset",
		ShortName:   "r",
		Description: "Start a new round with a fresh placement",
		Usage:       "reset",
		Handler:     resetHandler,
	})

	r.Register(&Command{
		Name:        "show",
		ShortName:   "h",
		Description: "Show board and game state",
		Usage:       "show",
		Handler:     showBoardHandler,
	})

	r.Register(&Command{
		Name:        "state",
		ShortName:   "s",
		Description: "Show raw game JSON",
		Usage:       "state",
		Handler:     gameStateHandler,
	})

	r.Register(&Command{
		Name:        "legal",
		ShortName:   "g",
		Description: "List destinations of a White piece",
		Usage:       "legal <square>",
		Handler:     legalHandler,
	})

	r.Register(&Command{
		Name:        "delete",
		ShortName:   "d",
		Description: "Delete a game",
		Usage:       "delete [gameId]",
		Handler:     deleteGameHandler,
	})

	r.Register(&Command{
		Name:        "poll",
		ShortName:   "p",
		Description: "Long-poll until the game changes",
		Usage:       "poll",
		Handler:     pollHandler,
	})
}

// parseNewArgs builds a create request from "new" arguments
func parseNewArgs(args []string) (*api.CreateGameRequest, error) {
	req := &api.CreateGameRequest{}
	switch {
	case len(args) == 0:
	case args[0] == "fen":
		if len(args) < 2 {
			return nil, fmt.Errorf("usage: new fen <placement> [w|b ...]")
		}
		req.FEN = strings.Join(args[1:], " ")
	case len(args) == 1:
		seed, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || seed < 1 {
			return nil, fmt.Errorf("invalid seed: %s", args[0])
		}
		req.Seed = seed
	default:
		return nil, fmt.Errorf("usage: new [seed] | new fen <placement>")
	}
	return req, nil
}

func newGameHandler(s Session, args []string) error {
	req, err := parseNewArgs(args)
	if err != nil {
		return err
	}

	resp, err := s.GetClient().CreateGame(req)
	if err != nil {
		return err
	}

	s.SetCurrentGame(resp.GameID)
	s.SetGameState(resp)

	fmt.Printf("%sGame created: %s%s\n", display.Green, resp.GameID, display.Reset)
	fmt.Printf("Seed: %d | State: %s\n", resp.Seed, display.ColorForState(resp.State))
	return nil
}

func joinGameHandler(s Session, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: join <gameId>")
	}

	gameID := args[0]
	resp, err := s.GetClient().GetGame(gameID)
	if err != nil {
		return err
	}

	s.SetCurrentGame(gameID)
	s.SetGameState(resp)

	fmt.Printf("%sJoined game: %s%s\n", display.Green, gameID, display.Reset)
	fmt.Printf("Round: %d | State: %s | Moves: %d\n", resp.Round, display.ColorForState(resp.State), len(resp.Moves))
	if uid := s.GetUserID(); uid != "" && resp.Players.White != nil && resp.Players.White.ID != uid {
		fmt.Printf("%sNote: game owned by another player, moves will be refused%s\n", display.Yellow, display.Reset)
	}
	return nil
}

func moveHandler(s Session, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: move <from><to>[promotion]")
	}
	gameID, err := requireGame(s)
	if err != nil {
		return err
	}

	resp, err := s.GetClient().MakeMove(gameID, strings.ToLower(args[0]))
	if err != nil {
		return err
	}

	s.SetGameState(&resp.GameResponse)
	fmt.Printf("%sYou played: %s%s\n", display.Blue, display.FormatMove(resp.Played), display.Reset)
	switch {
	case resp.Reply != nil:
		fmt.Printf("%sComputer played: %s%s\n", display.Magenta, display.FormatMove(resp.Reply), display.Reset)
	case resp.Passed:
		fmt.Printf("%sComputer has no legal move%s\n", display.Magenta, display.Reset)
	}
	if resp.InCheck {
		fmt.Printf("%sYour king is in check%s\n", display.Red, display.Reset)
	}
	if resp.State != "ongoing" {
		fmt.Printf("Game over: %s\n", display.ColorForState(resp.State))
	}
	return nil
}

func resetHandler(s Session, args []string) error {
	gameID, err := requireGame(s)
	if err != nil {
		return err
	}

	resp, err := s.GetClient().ResetGame(gameID)
	if err != nil {
		return err
	}

	s.SetGameState(resp)
	fmt.Printf("%sRound %d started (seed %d)%s\n", display.Green, resp.Round, resp.Seed, display.Reset)
	return nil
}

func showBoardHandler(s Session, args []string) error {
	gameID, err := requireGame(s)
	if err != nil {
		return err
	}

	c := s.GetClient()
	game, err := c.GetGame(gameID)
	if err != nil {
		return err
	}
	board, err := c.GetBoard(gameID)
	if err != nil {
		return err
	}

	s.SetGameState(game)

	fmt.Println()
	display.RenderBoard(os.Stdout, board.Board)

	fmt.Printf("\nFEN: %s\n", game.FEN)
	fmt.Printf("Round: %d | State: %s | Moves: %d\n",
		game.Round, display.ColorForState(game.State), len(game.Moves))
	if game.InCheck {
		fmt.Printf("%sWhite is in check%s\n", display.Red, display.Reset)
	}
	if len(game.Moves) > 0 {
		fmt.Printf("\nHistory: %s\n", display.FormatHistory(game.Moves))
	}
	if game.LastMove != nil {
		side := "White"
		if game.LastMove.PlayerColor == "b" {
			side = "Black"
		}
		fmt.Printf("Last move: %s by %s\n", display.FormatMove(game.LastMove), side)
	}
	return nil
}

func gameStateHandler(s Session, args []string) error {
	gameID, err := requireGame(s)
	if err != nil {
		return err
	}

	resp, err := s.GetClient().GetGame(gameID)
	if err != nil {
		return err
	}

	s.SetGameState(resp)
	fmt.Printf("%sGame State:%s\n", display.Cyan, display.Reset)
	display.PrettyPrintJSON(os.Stdout, resp)
	return nil
}

func legalHandler(s Session, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: legal <square>")
	}
	gameID, err := requireGame(s)
	if err != nil {
		return err
	}

	resp, err := s.GetClient().LegalMoves(gameID, strings.ToLower(args[0]))
	if err != nil {
		return err
	}

	if len(resp.Destinations) == 0 {
		fmt.Printf("%sNo legal moves from %s%s\n", display.Yellow, resp.From, display.Reset)
		return nil
	}
	fmt.Printf("%s: %s\n", resp.From, strings.Join(resp.Destinations, " "))
	return nil
}

func deleteGameHandler(s Session, args []string) error {
	gameID := s.GetCurrentGame()
	if len(args) > 0 {
		gameID = args[0]
	}
	if gameID == "" {
		return fmt.Errorf("specify game ID or set current game")
	}

	if err := s.GetClient().DeleteGame(gameID); err != nil {
		return err
	}

	if gameID == s.GetCurrentGame() {
		s.SetCurrentGame("")
	}

	fmt.Printf("%sGame deleted: %s%s\n", display.Green, gameID, display.Reset)
	return nil
}

func pollHandler(s Session, args []string) error {
	gameID, err := requireGame(s)
	if err != nil {
		return err
	}

	revision := s.GetLastRevision()
	fmt.Printf("%sLong-polling for updates (revision: %d)...%s\n", display.Cyan, revision, display.Reset)
	fmt.Printf("%sThis may take up to 25 seconds%s\n", display.Cyan, display.Reset)

	resp, err := s.GetClient().GetGameWithPoll(gameID, revision)
	if err != nil {
		return err
	}

	s.SetGameState(resp)

	if resp.Revision != revision {
		fmt.Printf("%sGame updated to revision %d%s\n", display.Green, resp.Revision, display.Reset)
		if resp.LastMove != nil {
			fmt.Printf("Last move: %s\n", display.FormatMove(resp.LastMove))
		}
	} else {
		fmt.Printf("%sNo updates (timeout)%s\n", display.Yellow, display.Reset)
	}
	return nil
}
