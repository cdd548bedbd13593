package core

// Request types

type CreateGameRequest struct {
	Seed int64  `json:"seed,omitempty" validate:"omitempty,min=1"`
	FEN  string `json:"fen,omitempty" validate:"omitempty,max=100"`
}

type MoveRequest struct {
	Move string `json:"move" validate:"required,min=4,max=5"` // coordinate notation, e.g. "e2e3"
}

// Response types

type GameResponse struct {
	GameID   string          `json:"gameId"`
	FEN      string          `json:"fen"`
	State    string          `json:"state"`    // "ongoing", "white wins", etc
	Round    int             `json:"round"`    // incremented by each reset
	Revision int             `json:"revision"` // changes with every move or reset
	Seed     int64           `json:"seed"`
	InCheck  bool            `json:"inCheck"` // white king attacked
	Moves    []string        `json:"moves"`
	Players  PlayersResponse `json:"players"`
	LastMove *MoveInfo       `json:"lastMove,omitempty"`
}

type PlayersResponse struct {
	White *Player `json:"white"`
	Black *Player `json:"black"`
}

type MoveInfo struct {
	Move        string `json:"move"`
	PlayerColor string `json:"playerColor"` // "w" or "b"
	Tier        string `json:"tier,omitempty"`
	Captured    string `json:"captured,omitempty"`
	Promoted    bool   `json:"promoted,omitempty"`
}

// TurnResponse is returned for an accepted player move
type TurnResponse struct {
	GameResponse
	Played *MoveInfo `json:"played"`
	Reply  *MoveInfo `json:"reply,omitempty"`
	Passed bool      `json:"passed,omitempty"` // computer had no legal move
}

type BoardResponse struct {
	FEN   string `json:"fen"`
	Board string `json:"board"` // ASCII representation
}

type LegalMovesResponse struct {
	From         string   `json:"from"`
	Destinations []string `json:"destinations"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
