package core

type Color byte

const (
	ColorWhite Color = iota + 1
	ColorBlack
)

func (c Color) String() string {
	switch c {
	case ColorWhite:
		return "w"
	case ColorBlack:
		return "b"
	default:
		return "-"
	}
}

// Name returns the human readable color name
func (c Color) Name() string {
	switch c {
	case ColorWhite:
		return "white"
	case ColorBlack:
		return "black"
	default:
		return "none"
	}
}

func OppositeColor(c Color) Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

// PieceKind is the piece type; the zero value marks an empty square
type PieceKind byte

const (
	NoPiece PieceKind = iota
	King
	Pawn
	Queen
)

func (k PieceKind) String() string {
	switch k {
	case King:
		return "king"
	case Pawn:
		return "pawn"
	case Queen:
		return "queen"
	default:
		return "none"
	}
}

// Piece is an immutable (kind, color) pair
type Piece struct {
	Kind  PieceKind
	Color Color
}

func (p Piece) IsZero() bool {
	return p.Kind == NoPiece
}

// Symbol returns the FEN letter, uppercase for white and '.' for an empty square
func (p Piece) Symbol() byte {
	var ch byte
	switch p.Kind {
	case King:
		ch = 'k'
	case Pawn:
		ch = 'p'
	case Queen:
		ch = 'q'
	default:
		return '.'
	}
	if p.Color == ColorWhite {
		ch -= 'a' - 'A'
	}
	return ch
}

func (p Piece) String() string {
	if p.IsZero() {
		return "empty"
	}
	return p.Color.Name() + " " + p.Kind.String()
}

// PieceFromSymbol is the inverse of Symbol for the supported piece letters
func PieceFromSymbol(ch byte) (Piece, bool) {
	color := ColorBlack
	if ch >= 'A' && ch <= 'Z' {
		color = ColorWhite
		ch += 'a' - 'A'
	}
	switch ch {
	case 'k':
		return Piece{Kind: King, Color: color}, true
	case 'p':
		return Piece{Kind: Pawn, Color: color}, true
	case 'q':
		return Piece{Kind: Queen, Color: color}, true
	}
	return Piece{}, false
}
