package game

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"endgame/internal/server/board"
	"endgame/internal/server/core"
	"endgame/internal/server/engine"
	"endgame/internal/server/rules"
	"endgame/internal/server/setup"
)

// ErrInvariantViolation signals a board that move application should never produce
var ErrInvariantViolation = errors.New("board invariant violated")

// Snapshot is one entry of the position history
type Snapshot struct {
	FEN          string     `json:"fen"`
	PreviousMove string     `json:"previousMove"`
	MovedBy      core.Color `json:"movedBy"`
}

// MoveResult tracks the outcome of a move
type MoveResult struct {
	Move        string      `json:"move"`
	PlayerColor core.Color  `json:"playerColor"`
	Tier        engine.Tier `json:"tier,omitempty"`
	Captured    core.Piece  `json:"-"`
	Promoted    bool        `json:"promoted,omitempty"`
	FENAfter    string      `json:"fenAfter"`
}

// Outcome reports what one call to AttemptPlayerMove did
type Outcome struct {
	Accepted bool
	Player   *MoveResult // nil when rejected
	Reply    *MoveResult // nil when the computer did not move
	Passed   bool        // computer had no legal move
	State    core.State
}

// Game owns the authoritative board and drives the computer reply. It does
// no locking; callers must serialise access.
type Game struct {
	board      *board.Board
	state      core.State
	snapshots  []Snapshot
	players    map[core.Color]*core.Player
	planner    *engine.Planner
	setup      *setup.Initializer
	lastResult *MoveResult
	seed       int64
	round      int
	revision   int
	updatedAt  time.Time
}

// New creates a game on a random starting placement drawn from seed
func New(seed int64, white, black *core.Player) (*Game, error) {
	g := newGame(seed, white, black)
	b, err := g.setup.Place()
	if err != nil {
		return nil, fmt.Errorf("initial placement: %w", err)
	}
	g.start(b)
	return g, nil
}

// NewFromBoard creates a game on a caller supplied position, which must hold both kings
func NewFromBoard(b *board.Board, seed int64, white, black *core.Player) (*Game, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	for _, color := range []core.Color{core.ColorWhite, core.ColorBlack} {
		if b.Count(core.King, color) != 1 {
			return nil, fmt.Errorf("position must contain a %s king", color.Name())
		}
	}
	g := newGame(seed, white, black)
	g.start(b.Clone())
	return g, nil
}

func newGame(seed int64, white, black *core.Player) *Game {
	rng := rand.New(rand.NewSource(seed))
	return &Game{
		players: map[core.Color]*core.Player{
			core.ColorWhite: white,
			core.ColorBlack: black,
		},
		planner: engine.NewPlanner(core.ColorBlack, rng),
		setup:   setup.New(rng),
		seed:    seed,
	}
}

func (g *Game) start(b *board.Board) {
	g.board = b
	g.state = core.StateOngoing
	g.lastResult = nil
	g.snapshots = []Snapshot{{FEN: b.FEN()}}
	g.updatedAt = time.Now()
}

// AttemptPlayerMove applies a White move and, if the game goes on, the
// computer's reply. Illegal or out-of-turn input is rejected without any
// change. The error is non-nil only for an invariant violation.
func (g *Game) AttemptPlayerMove(from, to core.Square) (Outcome, error) {
	if g.state != core.StateOngoing {
		return Outcome{State: g.state}, nil
	}
	p, ok := g.board.Get(from)
	if !ok || p.Color != core.ColorWhite || !rules.IsLegal(p, from, to, g.board) {
		return Outcome{State: g.state}, nil
	}

	out := Outcome{Accepted: true}
	out.Player = g.record(g.board.Apply(core.Move{From: from, To: to}), core.ColorWhite, engine.TierNone)

	state, err := g.EvaluateVictory()
	if err != nil || state != core.StateOngoing {
		out.State = g.state
		return out, err
	}

	decision, applied, ok := g.planner.SelectAndApply(g.board)
	if !ok {
		out.Passed = true
		g.state = core.StateStalemate
		out.State = g.state
		return out, nil
	}
	out.Reply = g.record(applied, core.ColorBlack, decision.Tier)

	if _, err = g.EvaluateVictory(); err != nil {
		out.State = g.state
		return out, err
	}
	if g.state == core.StateOngoing && !rules.HasLegalMove(core.ColorWhite, g.board) {
		g.state = core.StateStalemate
	}
	out.State = g.state
	return out, nil
}

func (g *Game) record(a board.Applied, color core.Color, tier engine.Tier) *MoveResult {
	fen := g.board.FEN()
	g.snapshots = append(g.snapshots, Snapshot{
		FEN:          fen,
		PreviousMove: a.Notation(),
		MovedBy:      color,
	})
	g.lastResult = &MoveResult{
		Move:        a.Notation(),
		PlayerColor: color,
		Tier:        tier,
		Captured:    a.Captured,
		Promoted:    a.Promoted,
		FENAfter:    fen,
	}
	g.revision++
	g.updatedAt = time.Now()
	return g.lastResult
}

// EvaluateVictory recomputes the state from the kings on the board. A board
// with no kings at all, or two of one color, latches the game to StateStuck.
func (g *Game) EvaluateVictory() (core.State, error) {
	if g.state != core.StateOngoing {
		return g.state, nil
	}
	white := g.board.Count(core.King, core.ColorWhite)
	black := g.board.Count(core.King, core.ColorBlack)

	switch {
	case white > 1 || black > 1 || (white == 0 && black == 0):
		g.state = core.StateStuck
		return g.state, fmt.Errorf("%w: %d white and %d black kings in %s",
			ErrInvariantViolation, white, black, g.board.FEN())
	case black == 0:
		g.state = core.StateWhiteWins
	case white == 0:
		g.state = core.StateBlackWins
	}
	return g.state, nil
}

// Reset discards the position and history and draws a fresh placement. On
// error the current game is left untouched.
func (g *Game) Reset() error {
	b, err := g.setup.Place()
	if err != nil {
		return fmt.Errorf("reset placement: %w", err)
	}
	g.start(b)
	g.round++
	g.revision++
	return nil
}

// LegalDestinations lists where the White piece on from may go; empty once the game is over
func (g *Game) LegalDestinations(from core.Square) []core.Square {
	if g.state != core.StateOngoing {
		return nil
	}
	p, ok := g.board.Get(from)
	if !ok || p.Color != core.ColorWhite {
		return nil
	}
	return rules.LegalDestinations(p, from, g.board)
}

func (g *Game) Status() core.State {
	return g.state
}

// BoardSnapshot returns a copy that callers may read or modify freely
func (g *Game) BoardSnapshot() board.Board {
	return *g.board
}

func (g *Game) InCheck(color core.Color) bool {
	return rules.IsInCheck(color, g.board)
}

func (g *Game) LastResult() *MoveResult {
	return g.lastResult
}

// CurrentSnapshot returns the latest game snapshot
func (g *Game) CurrentSnapshot() Snapshot {
	return g.snapshots[len(g.snapshots)-1]
}

// CurrentFEN returns the current position in FEN notation
func (g *Game) CurrentFEN() string {
	return g.CurrentSnapshot().FEN
}

func (g *Game) InitialFEN() string {
	return g.snapshots[0].FEN
}

func (g *Game) Moves() []string {
	moves := []string{}
	for i := 1; i < len(g.snapshots); i++ {
		moves = append(moves, g.snapshots[i].PreviousMove)
	}
	return moves
}

func (g *Game) GetPlayer(color core.Color) *core.Player {
	return g.players[color]
}

func (g *Game) Seed() int64 {
	return g.seed
}

// Round counts resets since creation
func (g *Game) Round() int {
	return g.round
}

// Revision increases with every recorded move and every reset
func (g *Game) Revision() int {
	return g.revision
}

func (g *Game) UpdatedAt() time.Time {
	return g.updatedAt
}
