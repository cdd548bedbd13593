package rules

import (
	"endgame/internal/server/board"
	"endgame/internal/server/core"
)

// Candidate is a legal move together with the piece making it
type Candidate struct {
	Piece core.Piece
	Move  core.Move
}

// LegalDestinations tests every square of the board and returns the
// reachable ones in row-major order.
func LegalDestinations(piece core.Piece, at core.Square, b *board.Board) []core.Square {
	var out []core.Square
	for r := 0; r < board.Size; r++ {
		for c := 0; c < board.Size; c++ {
			to := core.Square{Row: r, Col: c}
			if IsLegal(piece, at, to, b) {
				out = append(out, to)
			}
		}
	}
	return out
}

// AllLegalMoves enumerates every legal move for one side, pieces in
// row-major order and destinations row-major within each piece.
func AllLegalMoves(color core.Color, b *board.Board) []Candidate {
	var out []Candidate
	for _, pl := range b.AllPieces(color) {
		for _, to := range LegalDestinations(pl.Piece, pl.Square, b) {
			out = append(out, Candidate{Piece: pl.Piece, Move: core.Move{From: pl.Square, To: to}})
		}
	}
	return out
}

// HasLegalMove is AllLegalMoves without the allocation
func HasLegalMove(color core.Color, b *board.Board) bool {
	for _, pl := range b.AllPieces(color) {
		for r := 0; r < board.Size; r++ {
			for c := 0; c < board.Size; c++ {
				if IsLegal(pl.Piece, pl.Square, core.Square{Row: r, Col: c}, b) {
					return true
				}
			}
		}
	}
	return false
}
