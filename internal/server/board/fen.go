package board

import (
	"fmt"
	"strings"

	"endgame/internal/server/core"
)

// ParseFEN reads the piece placement field of a FEN string. Only kings,
// pawns and queens are accepted; any fields after the placement are ignored.
func ParseFEN(fen string) (*Board, error) {
	parts := strings.Fields(fen)
	if len(parts) == 0 {
		return nil, fmt.Errorf("invalid FEN: empty")
	}

	ranks := strings.Split(parts[0], "/")
	if len(ranks) != Size {
		return nil, fmt.Errorf("invalid FEN: expected %d ranks, got %d", Size, len(ranks))
	}

	b := &Board{}
	for r, rank := range ranks {
		col := 0
		for i := 0; i < len(rank); i++ {
			ch := rank[i]
			if ch >= '1' && ch <= '8' {
				col += int(ch - '0')
				continue
			}
			p, ok := core.PieceFromSymbol(ch)
			if !ok {
				return nil, fmt.Errorf("invalid FEN: unsupported piece %q", ch)
			}
			if col >= Size {
				return nil, fmt.Errorf("invalid FEN: too many pieces in rank %d", Size-r)
			}
			b.squares[r][col] = p
			col++
		}
		if col != Size {
			return nil, fmt.Errorf("invalid FEN: rank %d has %d files", Size-r, col)
		}
	}

	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid FEN: %w", err)
	}
	return b, nil
}

// FEN returns the piece placement field for the board
func (b *Board) FEN() string {
	var sb strings.Builder
	for r := 0; r < Size; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		empty := 0
		for c := 0; c < Size; c++ {
			p := b.squares[r][c]
			if p.IsZero() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(p.Symbol())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
	}
	return sb.String()
}
