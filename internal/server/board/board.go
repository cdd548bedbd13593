package board

import (
	"fmt"
	"strings"

	"endgame/internal/server/core"
)

const Size = core.BoardSize

// Board is a plain 8x8 container. It performs no rule validation; copying
// the value yields an independent board.
type Board struct {
	squares [Size][Size]core.Piece
}

// Placed is a piece together with the square it stands on
type Placed struct {
	Square core.Square
	Piece  core.Piece
}

// Applied describes the effect of applying a move
type Applied struct {
	Move     core.Move
	Piece    core.Piece // piece that moved, before promotion
	Captured core.Piece
	Promoted bool
}

// Notation returns the move text with a promotion suffix when one occurred
func (a Applied) Notation() string {
	if a.Promoted {
		return a.Move.String() + "q"
	}
	return a.Move.String()
}

// FarRank is the promotion row for pawns of the given color
func FarRank(c core.Color) int {
	if c == core.ColorWhite {
		return 0
	}
	return Size - 1
}

// Get returns the piece at sq; ok is false for empty or off-board squares
func (b *Board) Get(sq core.Square) (core.Piece, bool) {
	if !sq.OnBoard() {
		return core.Piece{}, false
	}
	p := b.squares[sq.Row][sq.Col]
	return p, !p.IsZero()
}

// Set places p on sq; a zero piece clears the square
func (b *Board) Set(sq core.Square, p core.Piece) {
	if !sq.OnBoard() {
		return
	}
	b.squares[sq.Row][sq.Col] = p
}

func (b *Board) Clear(sq core.Square) {
	b.Set(sq, core.Piece{})
}

// AllPieces lists the pieces of one color in row-major order
func (b *Board) AllPieces(color core.Color) []Placed {
	var out []Placed
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			p := b.squares[r][c]
			if !p.IsZero() && p.Color == color {
				out = append(out, Placed{Square: core.Square{Row: r, Col: c}, Piece: p})
			}
		}
	}
	return out
}

// Count returns how many pieces of the given kind and color are on the board
func (b *Board) Count(kind core.PieceKind, color core.Color) int {
	n := 0
	for _, pl := range b.AllPieces(color) {
		if pl.Piece.Kind == kind {
			n++
		}
	}
	return n
}

// Clone returns an isolated copy for hypothetical evaluation
func (b *Board) Clone() *Board {
	c := *b
	return &c
}

// Apply moves a piece, overwriting anything on the destination. A pawn that
// lands on its far rank becomes a queen of the same color.
func (b *Board) Apply(m core.Move) Applied {
	p, _ := b.Get(m.From)
	captured, _ := b.Get(m.To)
	res := Applied{Move: m, Piece: p, Captured: captured}

	b.Clear(m.From)
	if p.Kind == core.Pawn && m.To.Row == FarRank(p.Color) {
		p = core.Piece{Kind: core.Queen, Color: p.Color}
		res.Promoted = true
	}
	b.Set(m.To, p)
	return res
}

// Validate checks the structural invariants a position must satisfy
func (b *Board) Validate() error {
	for _, color := range []core.Color{core.ColorWhite, core.ColorBlack} {
		if n := b.Count(core.King, color); n > 1 {
			return fmt.Errorf("%s has %d kings", color.Name(), n)
		}
		for _, pl := range b.AllPieces(color) {
			if pl.Piece.Kind == core.Pawn && pl.Square.Row == FarRank(color) {
				return fmt.Errorf("unpromoted %s pawn on %s", color.Name(), pl.Square)
			}
		}
	}
	return nil
}

// ToASCII creates an ASCII representation of the board
func (b *Board) ToASCII() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")

	for r := 0; r < Size; r++ {
		sb.WriteString(fmt.Sprintf("%d ", Size-r))
		for c := 0; c < Size; c++ {
			sb.WriteByte(b.squares[r][c].Symbol())
			sb.WriteByte(' ')
		}
		sb.WriteString(fmt.Sprintf(" %d\n", Size-r))
	}
	sb.WriteString("  a b c d e f g h")

	return sb.String()
}
