package core

type State int

const (
	StateOngoing State = iota
	StateStuck         // Invariant violation detected, game frozen
	StateWhiteWins
	StateBlackWins
	StateStalemate
)

func (s State) String() string {
	switch s {
	case StateStuck:
		return "stuck"
	case StateWhiteWins:
		return "white wins"
	case StateBlackWins:
		return "black wins"
	case StateStalemate:
		return "stalemate"
	case StateOngoing:
		return "ongoing"
	default:
		return "unknown"
	}
}

// IsOver reports whether the state is absorbing
func (s State) IsOver() bool {
	return s != StateOngoing
}
