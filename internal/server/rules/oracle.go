package rules

import (
	"endgame/internal/server/board"
	"endgame/internal/server/core"
)

// neighbours is the fixed probe order for king escapes
var neighbours = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// FindKing returns the first king of the color in row-major order
func FindKing(color core.Color, b *board.Board) (core.Square, bool) {
	for _, pl := range b.AllPieces(color) {
		if pl.Piece.Kind == core.King {
			return pl.Square, true
		}
	}
	return core.Square{}, false
}

// SquareIsAttacked reports whether any piece of byColor has sq among its
// legal destinations. A pawn only attacks diagonally onto an occupied square,
// so probes for an empty square should place the defender there first.
func SquareIsAttacked(sq core.Square, byColor core.Color, b *board.Board) bool {
	for _, pl := range b.AllPieces(byColor) {
		if IsLegal(pl.Piece, pl.Square, sq, b) {
			return true
		}
	}
	return false
}

// Attackers lists the byColor pieces that can move onto sq
func Attackers(sq core.Square, byColor core.Color, b *board.Board) []board.Placed {
	var out []board.Placed
	for _, pl := range b.AllPieces(byColor) {
		if IsLegal(pl.Piece, pl.Square, sq, b) {
			out = append(out, pl)
		}
	}
	return out
}

// IsInCheck is false when the king is missing, since the game has already ended
func IsInCheck(color core.Color, b *board.Board) bool {
	king, ok := FindKing(color, b)
	if !ok {
		return false
	}
	return SquareIsAttacked(king, core.OppositeColor(color), b)
}

// MoveIsSafe applies m on a copy and reports whether the moved piece's
// landing square is free of attack by the opposing side.
func MoveIsSafe(m core.Move, b *board.Board) bool {
	p, ok := b.Get(m.From)
	if !ok {
		return false
	}
	hyp := b.Clone()
	hyp.Apply(m)
	return !SquareIsAttacked(m.To, core.OppositeColor(p.Color), hyp)
}

// SafeEscapes returns every neighbouring square the king of color could step
// to without being attacked afterwards, in fixed probe order.
func SafeEscapes(color core.Color, b *board.Board) []core.Square {
	king, ok := FindKing(color, b)
	if !ok {
		return nil
	}
	var out []core.Square
	for _, d := range neighbours {
		to := king.Offset(d[0], d[1])
		if !to.OnBoard() {
			continue
		}
		if p, occupied := b.Get(to); occupied && p.Color == color {
			continue
		}
		if MoveIsSafe(core.Move{From: king, To: to}, b) {
			out = append(out, to)
		}
	}
	return out
}

// KingHasSafeEscape returns the first safe escape square, if any
func KingHasSafeEscape(color core.Color, b *board.Board) (core.Square, bool) {
	escapes := SafeEscapes(color, b)
	if len(escapes) == 0 {
		return core.Square{}, false
	}
	return escapes[0], true
}
