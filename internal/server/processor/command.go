package processor

import (
	"endgame/internal/server/core"
)

// CommandType defines the type of command being executed
type CommandType int

const (
	CmdCreateGame CommandType = iota
	CmdGetGame
	CmdMakeMove
	CmdResetGame
	CmdDeleteGame
	CmdGetBoard
	CmdLegalMoves
)

func (t CommandType) String() string {
	switch t {
	case CmdCreateGame:
		return "create-game"
	case CmdGetGame:
		return "get-game"
	case CmdMakeMove:
		return "make-move"
	case CmdResetGame:
		return "reset-game"
	case CmdDeleteGame:
		return "delete-game"
	case CmdGetBoard:
		return "get-board"
	case CmdLegalMoves:
		return "legal-moves"
	default:
		return "unknown"
	}
}

// Command is a unified structure for all processor operations
type Command struct {
	Type   CommandType
	UserID string // empty for anonymous callers
	GameID string
	Args   any
}

// ProcessorResponse wraps the response with metadata
type ProcessorResponse struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Error   *core.ErrorResponse `json:"error,omitempty"`
}

func NewCreateGameCommand(userID string, req core.CreateGameRequest) Command {
	return Command{Type: CmdCreateGame, UserID: userID, Args: req}
}

func NewGetGameCommand(gameID string) Command {
	return Command{Type: CmdGetGame, GameID: gameID}
}

func NewMakeMoveCommand(userID, gameID string, req core.MoveRequest) Command {
	return Command{Type: CmdMakeMove, UserID: userID, GameID: gameID, Args: req}
}

func NewResetGameCommand(userID, gameID string) Command {
	return Command{Type: CmdResetGame, UserID: userID, GameID: gameID}
}

func NewDeleteGameCommand(userID, gameID string) Command {
	return Command{Type: CmdDeleteGame, UserID: userID, GameID: gameID}
}

func NewGetBoardCommand(gameID string) Command {
	return Command{Type: CmdGetBoard, GameID: gameID}
}

// NewLegalMovesCommand asks for the destinations of the White piece on from
func NewLegalMovesCommand(gameID, from string) Command {
	return Command{Type: CmdLegalMoves, GameID: gameID, Args: from}
}
