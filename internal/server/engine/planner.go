// Package engine selects moves for the computer side with a ranked tier
// cascade. The first tier that yields candidates wins and one of its
// candidates is drawn uniformly from the injected random source.
package engine

import (
	"math/rand"

	"endgame/internal/server/board"
	"endgame/internal/server/core"
	"endgame/internal/server/rules"
)

// Tier is one priority level of the cascade, lower values rank higher
type Tier int

const (
	TierNone Tier = iota
	TierKingCapture
	TierCheckResponse
	TierCapture
	TierQueen
	TierPromotion
	TierPawnAdvance
	TierKingMove
	TierFallback
)

func (t Tier) String() string {
	switch t {
	case TierKingCapture:
		return "king-capture"
	case TierCheckResponse:
		return "check-response"
	case TierCapture:
		return "capture"
	case TierQueen:
		return "queen"
	case TierPromotion:
		return "promotion"
	case TierPawnAdvance:
		return "pawn-advance"
	case TierKingMove:
		return "king-move"
	case TierFallback:
		return "fallback"
	default:
		return ""
	}
}

// Decision is the planner's pick for one turn
type Decision struct {
	Move       core.Move
	Tier       Tier
	Candidates int // size of the winning tier
}

// Planner plays one side. It is not safe for concurrent use because the
// random source is not.
type Planner struct {
	side core.Color
	rng  *rand.Rand
}

func NewPlanner(side core.Color, rng *rand.Rand) *Planner {
	return &Planner{side: side, rng: rng}
}

type tier struct {
	id      Tier
	collect func(*position) []core.Move
}

// cascade is evaluated top to bottom each turn
var cascade = []tier{
	{TierKingCapture, kingCaptures},
	{TierCheckResponse, checkResponses},
	{TierCapture, captures},
	{TierQueen, queenMoves},
	{TierPromotion, promotions},
	{TierPawnAdvance, pawnAdvances},
	{TierKingMove, safeKingMoves},
	{TierFallback, anyMove},
}

// position caches what every tier needs for one evaluation
type position struct {
	b          *board.Board
	side       core.Color
	candidates []rules.Candidate
}

// SelectMove runs the cascade; ok is false when the side has no legal move
func (p *Planner) SelectMove(b *board.Board) (Decision, bool) {
	pos := &position{
		b:          b,
		side:       p.side,
		candidates: rules.AllLegalMoves(p.side, b),
	}
	if len(pos.candidates) == 0 {
		return Decision{}, false
	}

	for _, t := range cascade {
		moves := t.collect(pos)
		if len(moves) == 0 {
			continue
		}
		return Decision{
			Move:       moves[p.rng.Intn(len(moves))],
			Tier:       t.id,
			Candidates: len(moves),
		}, true
	}
	return Decision{}, false
}

// SelectAndApply picks a move and applies it to b
func (p *Planner) SelectAndApply(b *board.Board) (Decision, board.Applied, bool) {
	d, ok := p.SelectMove(b)
	if !ok {
		return Decision{}, board.Applied{}, false
	}
	return d, b.Apply(d.Move), true
}

func (pos *position) filter(keep func(rules.Candidate) bool) []core.Move {
	var out []core.Move
	for _, c := range pos.candidates {
		if keep(c) {
			out = append(out, c.Move)
		}
	}
	return out
}

func (pos *position) lands(c rules.Candidate) (core.Piece, bool) {
	target, ok := pos.b.Get(c.Move.To)
	return target, ok && target.Color != pos.side
}

func kingCaptures(pos *position) []core.Move {
	return pos.filter(func(c rules.Candidate) bool {
		target, ok := pos.lands(c)
		return ok && target.Kind == core.King
	})
}

// checkResponses prefers the king capturing a checking piece, then any safe escape
func checkResponses(pos *position) []core.Move {
	king, ok := rules.FindKing(pos.side, pos.b)
	if !ok {
		return nil
	}
	checkers := rules.Attackers(king, core.OppositeColor(pos.side), pos.b)
	if len(checkers) == 0 {
		return nil
	}

	moves := pos.filter(func(c rules.Candidate) bool {
		if c.Piece.Kind != core.King {
			return false
		}
		for _, pl := range checkers {
			if pl.Square == c.Move.To {
				return rules.MoveIsSafe(c.Move, pos.b)
			}
		}
		return false
	})
	if len(moves) > 0 {
		return moves
	}

	for _, to := range rules.SafeEscapes(pos.side, pos.b) {
		moves = append(moves, core.Move{From: king, To: to})
	}
	return moves
}

func captures(pos *position) []core.Move {
	return pos.filter(func(c rules.Candidate) bool {
		_, ok := pos.lands(c)
		return ok && c.Piece.Kind != core.King
	})
}

func queenMoves(pos *position) []core.Move {
	return pos.filter(func(c rules.Candidate) bool {
		return c.Piece.Kind == core.Queen
	})
}

func promotions(pos *position) []core.Move {
	far := board.FarRank(pos.side)
	return pos.filter(func(c rules.Candidate) bool {
		return c.Piece.Kind == core.Pawn && c.Move.To.Row == far
	})
}

func pawnAdvances(pos *position) []core.Move {
	return pos.filter(func(c rules.Candidate) bool {
		return c.Piece.Kind == core.Pawn
	})
}

func safeKingMoves(pos *position) []core.Move {
	return pos.filter(func(c rules.Candidate) bool {
		return c.Piece.Kind == core.King && rules.MoveIsSafe(c.Move, pos.b)
	})
}

func anyMove(pos *position) []core.Move {
	return pos.filter(func(rules.Candidate) bool { return true })
}
