// Package processor turns transport-neutral commands into service calls and
// shapes the results into API responses.
package processor

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"endgame/internal/server/board"
	"endgame/internal/server/core"
	"endgame/internal/server/game"
	"endgame/internal/server/service"
)

// Processor handles command execution against the service layer
type Processor struct {
	svc *service.Service
}

func New(svc *service.Service) *Processor {
	return &Processor{svc: svc}
}

func (p *Processor) Execute(cmd Command) ProcessorResponse {
	switch cmd.Type {
	case CmdCreateGame:
		return p.handleCreateGame(cmd)
	case CmdGetGame:
		return p.handleGetGame(cmd)
	case CmdMakeMove:
		return p.handleMakeMove(cmd)
	case CmdResetGame:
		return p.handleResetGame(cmd)
	case CmdDeleteGame:
		return p.handleDeleteGame(cmd)
	case CmdGetBoard:
		return p.handleGetBoard(cmd)
	case CmdLegalMoves:
		return p.handleLegalMoves(cmd)
	default:
		return p.errorResponse("unknown command", core.ErrInvalidRequest)
	}
}

// handleCreateGame builds a game on a random placement, or on the supplied position
func (p *Processor) handleCreateGame(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.CreateGameRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	seed := args.Seed
	if seed == 0 {
		seed = p.svc.NextSeed()
	}

	white := core.NewPlayer(core.ColorWhite, core.PlayerHuman)
	if cmd.UserID != "" {
		white.ID = cmd.UserID
	}
	black := core.NewPlayer(core.ColorBlack, core.PlayerComputer)

	var g *game.Game
	if fen := strings.TrimSpace(args.FEN); fen != "" {
		b, err := board.ParseFEN(fen)
		if err != nil {
			return p.errorDetails("invalid FEN", core.ErrInvalidFEN, err)
		}
		if g, err = game.NewFromBoard(b, seed, white, black); err != nil {
			return p.errorDetails("unplayable position", core.ErrInvalidFEN, err)
		}
	} else {
		var err error
		if g, err = game.New(seed, white, black); err != nil {
			log.Printf("Game setup failed for seed %d: %v", seed, err)
			return p.errorDetails("failed to place pieces", core.ErrInternalError, err)
		}
	}

	gameID := p.svc.GenerateGameID()
	if err := p.svc.AddGame(gameID, cmd.UserID, g); err != nil {
		return p.serviceError(err)
	}

	view, err := p.svc.GetGame(gameID)
	if err != nil {
		return p.serviceError(err)
	}
	return ProcessorResponse{Success: true, Data: p.buildGameResponse(view)}
}

func (p *Processor) handleGetGame(cmd Command) ProcessorResponse {
	view, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.serviceError(err)
	}
	return ProcessorResponse{Success: true, Data: p.buildGameResponse(view)}
}

// handleMakeMove plays the White move and the computer reply in one step
func (p *Processor) handleMakeMove(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.MoveRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	m, err := core.ParseMove(strings.ToLower(strings.TrimSpace(args.Move)))
	if err != nil {
		return p.errorDetails("invalid move format", core.ErrInvalidMove, err)
	}

	out, view, err := p.svc.MakeMove(cmd.GameID, cmd.UserID, m)
	if err != nil {
		return p.serviceError(err)
	}

	if !out.Accepted {
		switch out.State {
		case core.StateOngoing:
			return p.errorResponse(fmt.Sprintf("illegal move %s", m), core.ErrInvalidMove)
		case core.StateStuck:
			return p.errorResponse("game is stuck after an internal error", core.ErrInternalError)
		default:
			return p.errorResponse(fmt.Sprintf("game is over: %s", out.State), core.ErrGameOver)
		}
	}

	return ProcessorResponse{
		Success: true,
		Data: core.TurnResponse{
			GameResponse: p.buildGameResponse(view),
			Played:       moveInfo(out.Player),
			Reply:        moveInfo(out.Reply),
			Passed:       out.Passed,
		},
	}
}

func (p *Processor) handleResetGame(cmd Command) ProcessorResponse {
	view, err := p.svc.ResetGame(cmd.GameID, cmd.UserID)
	if err != nil {
		return p.serviceError(err)
	}
	return ProcessorResponse{Success: true, Data: p.buildGameResponse(view)}
}

func (p *Processor) handleDeleteGame(cmd Command) ProcessorResponse {
	if err := p.svc.DeleteGame(cmd.GameID, cmd.UserID); err != nil {
		return p.serviceError(err)
	}
	return ProcessorResponse{Success: true}
}

// handleGetBoard returns board visualization
func (p *Processor) handleGetBoard(cmd Command) ProcessorResponse {
	view, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.serviceError(err)
	}
	return ProcessorResponse{
		Success: true,
		Data: core.BoardResponse{
			FEN:   view.FEN,
			Board: view.Board.ToASCII(),
		},
	}
}

func (p *Processor) handleLegalMoves(cmd Command) ProcessorResponse {
	from, ok := cmd.Args.(string)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}
	sq, err := core.ParseSquare(strings.ToLower(strings.TrimSpace(from)))
	if err != nil {
		return p.errorDetails("invalid square", core.ErrInvalidRequest, err)
	}

	squares, err := p.svc.LegalDestinations(cmd.GameID, sq)
	if err != nil {
		return p.serviceError(err)
	}
	dests := make([]string, 0, len(squares))
	for _, d := range squares {
		dests = append(dests, d.String())
	}
	return ProcessorResponse{
		Success: true,
		Data:    core.LegalMovesResponse{From: sq.String(), Destinations: dests},
	}
}

// buildGameResponse constructs standard game response
func (p *Processor) buildGameResponse(view service.GameView) core.GameResponse {
	return core.GameResponse{
		GameID:   view.GameID,
		FEN:      view.FEN,
		State:    view.State.String(),
		Round:    view.Round,
		Revision: view.Revision,
		Seed:     view.Seed,
		InCheck:  view.InCheck,
		Moves:    view.Moves,
		Players: core.PlayersResponse{
			White: view.White,
			Black: view.Black,
		},
		LastMove: moveInfo(view.LastMove),
	}
}

func moveInfo(r *game.MoveResult) *core.MoveInfo {
	if r == nil {
		return nil
	}
	info := &core.MoveInfo{
		Move:        r.Move,
		PlayerColor: r.PlayerColor.String(),
		Promoted:    r.Promoted,
	}
	if r.PlayerColor == core.ColorBlack {
		info.Tier = r.Tier.String()
	}
	if !r.Captured.IsZero() {
		info.Captured = string(r.Captured.Symbol())
	}
	return info
}

// serviceError maps service and game errors onto API codes
func (p *Processor) serviceError(err error) ProcessorResponse {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return p.errorResponse("game not found", core.ErrGameNotFound)
	case errors.Is(err, service.ErrNotOwner):
		return p.errorResponse("game belongs to another user", core.ErrUnauthorized)
	case errors.Is(err, service.ErrGameLimit):
		return p.errorResponse("too many active games", core.ErrResourceLimit)
	case errors.Is(err, game.ErrInvariantViolation):
		return p.errorDetails("game is stuck after an internal error", core.ErrInternalError, err)
	default:
		log.Printf("Processor: unexpected error: %v", err)
		return p.errorResponse("internal error", core.ErrInternalError)
	}
}

func (p *Processor) errorResponse(message, code string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error: message,
			Code:  code,
		},
	}
}

func (p *Processor) errorDetails(message, code string, err error) ProcessorResponse {
	resp := p.errorResponse(message, code)
	resp.Error.Details = err.Error()
	return resp
}
