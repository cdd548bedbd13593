package board

import (
	"strings"
	"testing"

	"endgame/internal/server/core"
)

func sq(t *testing.T, s string) core.Square {
	t.Helper()
	out, err := core.ParseSquare(s)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		"4k3/8/8/3p4/8/8/2P2P2/4K3",
		"8/8/8/8/8/8/8/8",
		"k6Q/8/8/8/8/8/8/7K",
	}
	for _, fen := range fens {
		b, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		if got := b.FEN(); got != fen {
			t.Errorf("FEN() = %q, want %q", got, fen)
		}
	}
}

func TestParseFENRejects(t *testing.T) {
	tests := map[string]string{
		"rook":        "4k3/8/8/8/8/8/8/R3K3",
		"short rank":  "4k3/8/8/8/8/8/8/4K2",
		"long rank":   "4k3/8/8/8/8/8/8/4K4",
		"seven ranks": "4k3/8/8/8/8/8/4K3",
		"two kings":   "4k3/8/8/8/8/8/8/K3K3",
		"white pawn":  "P3k3/8/8/8/8/8/8/4K3",
		"black pawn":  "4k3/8/8/8/8/8/8/p3K3",
		"empty":       "",
	}
	for name, fen := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseFEN(fen); err == nil {
				t.Errorf("ParseFEN(%q) succeeded, want error", fen)
			}
		})
	}
}

func TestParseFENIgnoresTrailingFields(t *testing.T) {
	b, err := ParseFEN("4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if p, ok := b.Get(sq(t, "e2")); !ok || p != (core.Piece{Kind: core.Pawn, Color: core.ColorWhite}) {
		t.Errorf("e2 = %v, want white pawn", p)
	}
}

func TestAllPiecesRowMajor(t *testing.T) {
	b, err := ParseFEN("4k3/8/8/3p4/8/8/2P2P2/4K3")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, pl := range b.AllPieces(core.ColorWhite) {
		got = append(got, pl.Square.String())
	}
	if want := "c2 f2 e1"; strings.Join(got, " ") != want {
		t.Errorf("white pieces = %v, want %s", got, want)
	}
	if n := len(b.AllPieces(core.ColorBlack)); n != 2 {
		t.Errorf("black piece count = %d, want 2", n)
	}
}

func TestApplyPromotion(t *testing.T) {
	tests := []struct {
		name     string
		fen      string
		move     string
		promoted bool
		want     core.Piece
	}{
		{"white reaches row 0", "4k3/1P6/8/8/8/8/8/4K3", "b7b8", true, core.Piece{Kind: core.Queen, Color: core.ColorWhite}},
		{"black reaches row 7", "4k3/8/8/8/8/8/1p6/4K3", "b2b1", true, core.Piece{Kind: core.Queen, Color: core.ColorBlack}},
		{"white one step short", "4k3/8/1P6/8/8/8/8/4K3", "b6b7", false, core.Piece{Kind: core.Pawn, Color: core.ColorWhite}},
		{"king on back rank", "4k3/8/8/8/8/8/8/4K3", "e8d8", false, core.Piece{Kind: core.King, Color: core.ColorBlack}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ParseFEN(tt.fen)
			if err != nil {
				t.Fatal(err)
			}
			m, err := core.ParseMove(tt.move)
			if err != nil {
				t.Fatal(err)
			}
			res := b.Apply(m)
			if res.Promoted != tt.promoted {
				t.Errorf("promoted = %v, want %v", res.Promoted, tt.promoted)
			}
			if got, _ := b.Get(m.To); got != tt.want {
				t.Errorf("piece on %s = %v, want %v", m.To, got, tt.want)
			}
			if _, ok := b.Get(m.From); ok {
				t.Errorf("origin %s not cleared", m.From)
			}
		})
	}
}

func TestApplyCaptureOverwrites(t *testing.T) {
	b, err := ParseFEN("4k3/8/8/8/8/3p4/4P3/4K3")
	if err != nil {
		t.Fatal(err)
	}
	res := b.Apply(core.Move{From: sq(t, "e2"), To: sq(t, "d3")})
	if res.Captured != (core.Piece{Kind: core.Pawn, Color: core.ColorBlack}) {
		t.Errorf("captured = %v, want black pawn", res.Captured)
	}
	if b.Count(core.Pawn, core.ColorBlack) != 0 {
		t.Error("captured pawn still on board")
	}
}

func TestCloneIsolated(t *testing.T) {
	b, err := ParseFEN("4k3/8/8/8/8/8/8/4K3")
	if err != nil {
		t.Fatal(err)
	}
	c := b.Clone()
	c.Clear(sq(t, "e1"))
	if _, ok := b.Get(sq(t, "e1")); !ok {
		t.Fatal("mutating a clone changed the original")
	}
}

func TestToASCII(t *testing.T) {
	b, err := ParseFEN("4k3/8/8/8/8/8/8/4K3")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(b.ToASCII(), "\n")
	if len(lines) != 10 {
		t.Fatalf("got %d lines, want 10", len(lines))
	}
	if lines[1] != "8 . . . . k . . .  8" {
		t.Errorf("rank 8 = %q", lines[1])
	}
	if lines[8] != "1 . . . . K . . .  1" {
		t.Errorf("rank 1 = %q", lines[8])
	}
}
