package api

import (
	"fmt"
	"time"

	"endgame/internal/server/core"
)

// Game wire types are shared with the server
type (
	CreateGameRequest  = core.CreateGameRequest
	MoveRequest        = core.MoveRequest
	GameResponse       = core.GameResponse
	TurnResponse       = core.TurnResponse
	BoardResponse      = core.BoardResponse
	LegalMovesResponse = core.LegalMovesResponse
	ErrorResponse      = core.ErrorResponse
	MoveInfo           = core.MoveInfo
)

type HealthResponse struct {
	Status  string `json:"status"`
	Time    int64  `json:"time"`
	Storage string `json:"storage,omitempty"`
	Games   int    `json:"games"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type UserResponse struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// StatusError is returned for any response with status >= 400
type StatusError struct {
	Status   int
	Response ErrorResponse // zero if the body was not an error document
}

func (e *StatusError) Error() string {
	if e.Response.Code != "" {
		return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Response.Code)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}
