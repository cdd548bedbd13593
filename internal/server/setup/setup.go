// Package setup produces random starting positions by rejection sampling.
package setup

import (
	"errors"
	"fmt"
	"math/rand"

	"endgame/internal/server/board"
	"endgame/internal/server/core"
	"endgame/internal/server/rules"
)

const DefaultMaxAttempts = 1000

var ErrSetupExhausted = errors.New("placement attempts exhausted")

// Lineup is the fixed set of pieces placed at the start of every game,
// kings first so the safety test has something to protect.
var Lineup = []core.Piece{
	{Kind: core.King, Color: core.ColorWhite},
	{Kind: core.King, Color: core.ColorBlack},
	{Kind: core.Pawn, Color: core.ColorWhite},
	{Kind: core.Pawn, Color: core.ColorWhite},
	{Kind: core.Pawn, Color: core.ColorBlack},
}

type Initializer struct {
	rng *rand.Rand
	// MaxAttempts bounds the draws per piece
	MaxAttempts int
}

func New(rng *rand.Rand) *Initializer {
	return &Initializer{rng: rng, MaxAttempts: DefaultMaxAttempts}
}

// Place draws a square for each piece in Lineup until it satisfies the
// constraints, and fails with ErrSetupExhausted once a piece runs out of draws.
func (i *Initializer) Place() (*board.Board, error) {
	b := &board.Board{}
	for _, p := range Lineup {
		placed := false
		for attempt := 0; attempt < i.MaxAttempts; attempt++ {
			sq := core.Square{Row: i.rng.Intn(board.Size), Col: i.rng.Intn(board.Size)}
			if Acceptable(b, p, sq) {
				b.Set(sq, p)
				placed = true
				break
			}
		}
		if !placed {
			return nil, fmt.Errorf("%w: no square for %s after %d draws", ErrSetupExhausted, p, i.MaxAttempts)
		}
	}
	return b, nil
}

// Acceptable reports whether p may be added on sq: the square is empty, a pawn
// stays off both back ranks, and afterwards no piece is attacked by the other side.
func Acceptable(b *board.Board, p core.Piece, sq core.Square) bool {
	if _, occupied := b.Get(sq); occupied || !sq.OnBoard() {
		return false
	}
	if p.Kind == core.Pawn && (sq.Row == 0 || sq.Row == board.Size-1) {
		return false
	}

	hyp := b.Clone()
	hyp.Set(sq, p)
	for _, color := range []core.Color{core.ColorWhite, core.ColorBlack} {
		for _, pl := range hyp.AllPieces(color) {
			if rules.SquareIsAttacked(pl.Square, core.OppositeColor(color), hyp) {
				return false
			}
		}
	}
	return true
}
