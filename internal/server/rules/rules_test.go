package rules

import (
	"strings"
	"testing"

	"endgame/internal/server/board"
	"endgame/internal/server/core"
)

var (
	whiteKing  = core.Piece{Kind: core.King, Color: core.ColorWhite}
	whitePawn  = core.Piece{Kind: core.Pawn, Color: core.ColorWhite}
	whiteQueen = core.Piece{Kind: core.Queen, Color: core.ColorWhite}
	blackKing  = core.Piece{Kind: core.King, Color: core.ColorBlack}
	blackPawn  = core.Piece{Kind: core.Pawn, Color: core.ColorBlack}
)

func mustBoard(t *testing.T, fen string) *board.Board {
	t.Helper()
	b, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return b
}

func mustSquare(t *testing.T, s string) core.Square {
	t.Helper()
	out, err := core.ParseSquare(s)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestIsLegal(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		from string
		to   string
		want bool
	}{
		{"king one step", "8/8/8/8/4K3/8/8/4k3", "e4", "f5", true},
		{"king two steps", "8/8/8/8/4K3/8/8/4k3", "e4", "e6", false},
		{"king onto own pawn", "8/8/8/4P3/4K3/8/8/4k3", "e4", "e5", false},
		{"king captures", "8/8/8/4p3/4K3/8/8/4k3", "e4", "e5", true},
		{"king stays", "8/8/8/8/4K3/8/8/4k3", "e4", "e4", false},
		{"white pawn forward", "4k3/8/8/8/8/8/4P3/4K3", "e2", "e3", true},
		{"white pawn double step", "4k3/8/8/8/8/8/4P3/4K3", "e2", "e4", false},
		{"white pawn backward", "4k3/8/8/8/8/4P3/8/4K3", "e3", "e2", false},
		{"white pawn blocked", "4k3/8/8/8/8/4p3/4P3/4K3", "e2", "e3", false},
		{"white pawn diagonal empty", "4k3/8/8/8/8/8/4P3/4K3", "e2", "d3", false},
		{"white pawn diagonal capture", "4k3/8/8/8/8/3p4/4P3/4K3", "e2", "d3", true},
		{"white pawn diagonal own", "4k3/8/8/8/8/3P4/4P3/4K3", "e2", "d3", false},
		{"black pawn forward", "4k3/4p3/8/8/8/8/8/4K3", "e7", "e6", true},
		{"black pawn wrong way", "4k3/8/4p3/8/8/8/8/4K3", "e6", "e7", false},
		{"black pawn capture", "4k3/4p3/5P2/8/8/8/8/4K3", "e7", "f6", true},
		{"queen file", "4k3/8/8/8/8/8/8/Q3K3", "a1", "a8", true},
		{"queen diagonal", "4k3/8/8/8/8/8/8/Q3K3", "a1", "h8", true},
		{"queen knight jump", "4k3/8/8/8/8/8/8/Q3K3", "a1", "b3", false},
		{"queen blocked by enemy", "4k3/8/8/8/p7/8/8/Q3K3", "a1", "a8", false},
		{"queen captures blocker", "4k3/8/8/8/p7/8/8/Q3K3", "a1", "a4", true},
		{"queen blocked by own", "4k3/8/8/8/8/8/8/Q2PK3", "a1", "h1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustBoard(t, tt.fen)
			from := mustSquare(t, tt.from)
			p, ok := b.Get(from)
			if !ok {
				t.Fatalf("no piece on %s", tt.from)
			}
			if got := IsLegal(p, from, mustSquare(t, tt.to), b); got != tt.want {
				t.Errorf("IsLegal(%v %s-%s) = %v, want %v", p, tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestIsLegalPawnScenario(t *testing.T) {
	b := &board.Board{}
	b.Set(core.Square{Row: 4, Col: 4}, whiteKing)
	b.Set(core.Square{Row: 3, Col: 4}, blackPawn)
	b.Set(core.Square{Row: 3, Col: 3}, whitePawn)

	from, to := core.Square{Row: 3, Col: 3}, core.Square{Row: 2, Col: 3}
	if !IsLegal(whitePawn, from, to, b) {
		t.Fatal("pawn should advance onto an empty square")
	}
	b.Set(to, whiteQueen)
	if IsLegal(whitePawn, from, to, b) {
		t.Fatal("pawn must not move onto its own piece")
	}
}

func TestKingMovesChangeDistanceByOne(t *testing.T) {
	b := mustBoard(t, "8/8/3p4/4K3/5P2/8/8/k7")
	from := mustSquare(t, "e5")
	for _, to := range LegalDestinations(whiteKing, from, b) {
		d := max(abs(to.Row-from.Row), abs(to.Col-from.Col))
		if d != 1 {
			t.Errorf("king move to %s has distance %d", to, d)
		}
		if p, ok := b.Get(to); ok && p.Color == core.ColorWhite {
			t.Errorf("king move to %s lands on own %v", to, p)
		}
	}
	if n := len(LegalDestinations(whiteKing, from, b)); n != 7 {
		t.Errorf("got %d king destinations, want 7", n)
	}
}

func TestLegalDestinationsRowMajor(t *testing.T) {
	b := mustBoard(t, "4k3/8/8/8/8/8/8/Q3K3")
	dests := LegalDestinations(whiteQueen, mustSquare(t, "a1"), b)
	for i := 1; i < len(dests); i++ {
		prev, cur := dests[i-1], dests[i]
		if prev.Row > cur.Row || (prev.Row == cur.Row && prev.Col >= cur.Col) {
			t.Fatalf("destinations not row-major at %d: %s then %s", i, prev, cur)
		}
	}
	// a-file (7), rank 1 up to the king (3), diagonal (7)
	if len(dests) != 17 {
		t.Errorf("got %d queen destinations, want 17", len(dests))
	}
}

func TestSquareIsAttackedQueenScenario(t *testing.T) {
	b := &board.Board{}
	b.Set(core.Square{Row: 0, Col: 0}, blackKing)
	b.Set(core.Square{Row: 0, Col: 7}, whiteQueen)

	target := core.Square{Row: 0, Col: 0}
	if !SquareIsAttacked(target, core.ColorWhite, b) {
		t.Fatal("queen on an open rank should attack the king")
	}
	b.Set(core.Square{Row: 0, Col: 4}, whitePawn)
	if SquareIsAttacked(target, core.ColorWhite, b) {
		t.Fatal("own pawn should block the queen's line")
	}
}

func TestAttackers(t *testing.T) {
	// black king d5 is hit by the pawn on e4 and the queen on a5; the pawn on d4 only blocks
	b := mustBoard(t, "8/8/8/Q2k4/3PP3/8/8/4K3")
	king := mustSquare(t, "d5")

	got := Attackers(king, core.ColorWhite, b)
	want := []string{"a5", "e4"}
	if len(got) != len(want) {
		t.Fatalf("Attackers = %+v, want %v", got, want)
	}
	for i, pl := range got {
		if pl.Square.String() != want[i] {
			t.Errorf("attacker %d on %s, want %s", i, pl.Square, want[i])
		}
	}
	if got[0].Piece != whiteQueen || got[1].Piece != whitePawn {
		t.Errorf("attacker pieces = %v, %v", got[0].Piece, got[1].Piece)
	}

	if len(Attackers(king, core.ColorBlack, b)) != 0 {
		t.Error("own pieces counted as attackers")
	}
}

func TestIsInCheck(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		color core.Color
		want  bool
	}{
		{"pawn gives check", "8/8/8/3k4/4P3/8/8/4K3", core.ColorBlack, true},
		{"pawn straight ahead is harmless", "8/8/8/4k3/4P3/8/8/4K3", core.ColorBlack, false},
		{"queen check", "4k3/8/8/8/8/8/8/4QK2", core.ColorBlack, true},
		{"missing king", "8/8/8/8/8/8/8/4QK2", core.ColorBlack, false},
		{"black pawn checks white", "8/8/8/8/8/8/3p4/4K2k", core.ColorWhite, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsInCheck(tt.color, mustBoard(t, tt.fen)); got != tt.want {
				t.Errorf("IsInCheck = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSafeEscapesDoesNotMutate(t *testing.T) {
	// king on b6 covers a7 and b7, queen on h8 covers b8
	b := mustBoard(t, "k6Q/8/1K6/8/8/8/8/8")
	before := b.FEN()

	escapes := SafeEscapes(core.ColorBlack, b)
	if b.FEN() != before {
		t.Fatalf("board mutated: %s -> %s", before, b.FEN())
	}
	if len(escapes) != 0 {
		t.Errorf("escapes = %v, want none", escapes)
	}
	if _, ok := KingHasSafeEscape(core.ColorBlack, b); ok {
		t.Error("KingHasSafeEscape found an escape that SafeEscapes did not")
	}
}

func TestSafeEscapesOrder(t *testing.T) {
	// White queen on d1 covers the d-file; black king on e5 in the open
	b := mustBoard(t, "8/8/8/4k3/8/8/8/3QK3")
	var got []string
	for _, sq := range SafeEscapes(core.ColorBlack, b) {
		got = append(got, sq.String())
	}
	want := "e6 f6 f5 e4 f4"
	if strings.Join(got, " ") != want {
		t.Errorf("escapes = %v, want %s", got, want)
	}
	first, ok := KingHasSafeEscape(core.ColorBlack, b)
	if !ok || first.String() != "e6" {
		t.Errorf("first escape = %s, want e6", first)
	}
}

func TestSafeEscapeConsidersPawnDiagonals(t *testing.T) {
	// d3 and f3 are empty, but the white pawn on e2 would capture there
	b := mustBoard(t, "8/8/8/8/4k3/8/4P3/K7")
	for _, sq := range SafeEscapes(core.ColorBlack, b) {
		if s := sq.String(); s == "d3" || s == "f3" {
			t.Errorf("%s is covered by the e2 pawn", s)
		}
	}
}

func TestMoveIsSafeAfterCapture(t *testing.T) {
	// Black king takes the pawn on d4, but the queen on d1 then covers d4
	b := mustBoard(t, "8/8/8/4k3/3P4/8/8/3QK3")
	m := core.Move{From: mustSquare(t, "e5"), To: mustSquare(t, "d4")}
	if !IsLegal(blackKing, m.From, m.To, b) {
		t.Fatal("capture should be legal")
	}
	if MoveIsSafe(m, b) {
		t.Error("capture lands on a square covered by the queen")
	}
}

func TestAllLegalMoves(t *testing.T) {
	b := mustBoard(t, "k7/8/1K6/8/8/8/8/8")
	moves := AllLegalMoves(core.ColorBlack, b)
	// a7 b7 b8, all legal even though attacked
	if len(moves) != 3 {
		t.Fatalf("got %d moves, want 3", len(moves))
	}
	if !HasLegalMove(core.ColorBlack, b) {
		t.Error("HasLegalMove disagrees with AllLegalMoves")
	}
	if HasLegalMove(core.ColorWhite, mustBoard(t, "k7/8/8/8/8/8/8/8")) {
		t.Error("side without pieces has no moves")
	}
}
