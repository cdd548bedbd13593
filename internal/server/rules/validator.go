// Package rules decides move legality and attack relations for the
// king, pawn and queen endgame. Every function here is pure: boards are
// only read, and hypothetical positions are evaluated on private copies.
package rules

import (
	"endgame/internal/server/board"
	"endgame/internal/server/core"
)

// IsLegal reports whether piece may move from one square to another on b.
// Kings are not protected from capture, so a move into an attacked square
// is still legal here.
func IsLegal(piece core.Piece, from, to core.Square, b *board.Board) bool {
	if piece.IsZero() || !from.OnBoard() || !to.OnBoard() || from == to {
		return false
	}
	if target, ok := b.Get(to); ok && target.Color == piece.Color {
		return false
	}

	switch piece.Kind {
	case core.King:
		return max(abs(to.Row-from.Row), abs(to.Col-from.Col)) <= 1
	case core.Pawn:
		return pawnMove(piece.Color, from, to, b)
	case core.Queen:
		return queenSlide(from, to, b)
	}
	return false
}

// Forward is the row delta of a pawn step for the given color
func Forward(c core.Color) int {
	if c == core.ColorWhite {
		return -1
	}
	return 1
}

func pawnMove(color core.Color, from, to core.Square, b *board.Board) bool {
	if to.Row-from.Row != Forward(color) {
		return false
	}
	_, occupied := b.Get(to)
	switch abs(to.Col - from.Col) {
	case 0:
		return !occupied
	case 1:
		// same-color targets were rejected by the caller
		return occupied
	}
	return false
}

// queenSlide requires a straight or diagonal line with nothing strictly between
func queenSlide(from, to core.Square, b *board.Board) bool {
	dr, dc := to.Row-from.Row, to.Col-from.Col
	if dr != 0 && dc != 0 && abs(dr) != abs(dc) {
		return false
	}
	step := core.Square{Row: sign(dr), Col: sign(dc)}
	for cur := from.Offset(step.Row, step.Col); cur != to; cur = cur.Offset(step.Row, step.Col) {
		if _, ok := b.Get(cur); ok {
			return false
		}
	}
	return true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
