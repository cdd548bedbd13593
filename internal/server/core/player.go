package core

import (
	"github.com/google/uuid"
)

type PlayerType int

const (
	PlayerHuman PlayerType = iota + 1
	PlayerComputer
)

func (t PlayerType) String() string {
	if t == PlayerComputer {
		return "computer"
	}
	return "human"
}

// Player identifies one side of a game; White is always human, Black always the planner
type Player struct {
	ID    string     `json:"id"`
	Color Color      `json:"color"`
	Type  PlayerType `json:"type"`
}

// NewPlayer creates a player with a fresh random ID
func NewPlayer(color Color, typ PlayerType) *Player {
	return &Player{
		ID:    uuid.New().String(),
		Color: color,
		Type:  typ,
	}
}
