package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"endgame/internal/server/board"
	"endgame/internal/server/core"
	"endgame/internal/server/game"
	"endgame/internal/server/storage"

	"github.com/google/uuid"
)

const (
	MaxGames           = 100
	MaxUsers           = 100
	SessionTTL         = 7 * 24 * time.Hour
	FinishedGameTTL    = 1 * time.Hour
	IdleGameTTL        = 24 * time.Hour
	CleanupJobInterval = 1 * time.Hour
)

var (
	ErrGameNotFound      = errors.New("game not found")
	ErrGameLimit         = errors.New("game limit reached")
	ErrNotOwner          = errors.New("game belongs to another user")
	ErrStorageDisabled   = errors.New("storage disabled")
	ErrInvalidCredential = errors.New("invalid credentials")
)

// liveGame is a game plus the account that created it; ownerID is empty for anonymous games.
// mu serializes controller calls on this game only. Lock order is Service.mu then liveGame.mu.
type liveGame struct {
	mu      sync.Mutex
	game    *game.Game
	ownerID string
}

// GameView is a consistent copy of a game taken under its game lock
type GameView struct {
	GameID    string
	OwnerID   string
	FEN       string
	State     core.State
	Round     int
	Revision  int
	Seed      int64
	InCheck   bool
	Moves     []string
	White     *core.Player
	Black     *core.Player
	LastMove  *game.MoveResult
	Board     board.Board
	UpdatedAt time.Time
}

// Service owns the live games, accounts and the optional archive
type Service struct {
	games     map[string]*liveGame
	mu        sync.RWMutex
	store     *storage.Store
	jwtSecret []byte
	waiter    *WaitRegistry

	baseSeed atomic.Int64
	seedSeq  atomic.Int64
}

// New creates a service; store may be nil to run without persistence
func New(store *storage.Store, jwtSecret []byte) *Service {
	return &Service{
		games:     make(map[string]*liveGame),
		store:     store,
		jwtSecret: jwtSecret,
		waiter:    NewWaitRegistry(),
	}
}

// SetBaseSeed makes NextSeed deterministic: base, base+1, ... Zero restores time-based seeds.
func (s *Service) SetBaseSeed(seed int64) {
	s.baseSeed.Store(seed)
	s.seedSeq.Store(0)
}

// NextSeed picks the seed for a game created without one
func (s *Service) NextSeed() int64 {
	if base := s.baseSeed.Load(); base != 0 {
		return base + s.seedSeq.Add(1) - 1
	}
	seed := time.Now().UnixNano()
	if seed <= 0 {
		seed = 1
	}
	return seed
}

func (s *Service) GenerateGameID() string {
	return uuid.New().String()
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	status := "degraded"
	if s.store.IsHealthy() {
		status = "ok"
	}
	if n := s.store.Dropped(); n > 0 {
		status = fmt.Sprintf("%s (%d dropped)", status, n)
	}
	return status
}

func (s *Service) GameCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// AddGame registers a constructed game under gameID and archives its first round
func (s *Service) AddGame(gameID, ownerID string, g *game.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.games) >= MaxGames {
		return ErrGameLimit
	}
	if _, exists := s.games[gameID]; exists {
		return fmt.Errorf("game %s already exists", gameID)
	}
	s.games[gameID] = &liveGame{game: g, ownerID: ownerID}
	s.archiveRound(gameID, g)
	return nil
}

// GetGame returns a snapshot of the game
func (s *Service) GetGame(gameID string) (GameView, error) {
	lg, err := s.lookup(gameID)
	if err != nil {
		return GameView{}, err
	}

	lg.mu.Lock()
	defer lg.mu.Unlock()
	return lg.view(gameID), nil
}

// MakeMove plays a White move and the computer reply. The error wraps
// game.ErrInvariantViolation when the game had to be frozen.
func (s *Service) MakeMove(gameID, userID string, m core.Move) (game.Outcome, GameView, error) {
	lg, err := s.ownedGame(gameID, userID)
	if err != nil {
		return game.Outcome{}, GameView{}, err
	}

	lg.mu.Lock()
	defer lg.mu.Unlock()

	g := lg.game
	before := len(g.Moves())
	out, moveErr := g.AttemptPlayerMove(m.From, m.To)
	if moveErr != nil {
		log.Printf("INVARIANT VIOLATION in game %s at %s: %v", gameID, g.CurrentFEN(), moveErr)
	}
	if out.Accepted {
		s.archiveMoves(gameID, g, before, out)
		if g.Status().IsOver() {
			s.archiveResult(gameID, g)
		}
		s.waiter.Notify(gameID, g.Revision())
	}
	return out, lg.view(gameID), moveErr
}

// ResetGame starts a new round with a fresh random placement
func (s *Service) ResetGame(gameID, userID string) (GameView, error) {
	lg, err := s.ownedGame(gameID, userID)
	if err != nil {
		return GameView{}, err
	}

	lg.mu.Lock()
	defer lg.mu.Unlock()
	g := lg.game
	if !g.Status().IsOver() && len(g.Moves()) > 0 {
		s.archiveResult(gameID, g) // abandoned round keeps its state
	}
	if err := g.Reset(); err != nil {
		return GameView{}, err
	}
	s.archiveRound(gameID, g)
	s.waiter.Notify(gameID, g.Revision())
	return lg.view(gameID), nil
}

// LegalDestinations lists the squares the White piece on from may reach
func (s *Service) LegalDestinations(gameID string, from core.Square) ([]core.Square, error) {
	lg, err := s.lookup(gameID)
	if err != nil {
		return nil, err
	}

	lg.mu.Lock()
	defer lg.mu.Unlock()
	return lg.game.LegalDestinations(from), nil
}

// DeleteGame drops a live game; archived rounds are kept
func (s *Service) DeleteGame(gameID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lg, ok := s.games[gameID]
	if !ok {
		return ErrGameNotFound
	}
	if !lg.ownedBy(userID) {
		return ErrNotOwner
	}
	delete(s.games, gameID)
	s.waiter.RemoveGame(gameID)
	return nil
}

// RegisterWait parks the caller until the game's revision differs from
// since. A game already past since returns a closed channel.
func (s *Service) RegisterWait(ctx context.Context, gameID string, since int) (<-chan struct{}, error) {
	lg, err := s.lookup(gameID)
	if err != nil {
		return nil, err
	}

	// Notify runs under lg.mu, so the check and the registration cannot miss a revision
	lg.mu.Lock()
	defer lg.mu.Unlock()
	if lg.game.Revision() != since {
		ch := make(chan struct{})
		close(ch)
		return ch, nil
	}
	return s.waiter.Watch(ctx, gameID, since), nil
}

func (s *Service) lookup(gameID string) (*liveGame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lg, ok := s.games[gameID]
	if !ok {
		return nil, ErrGameNotFound
	}
	return lg, nil
}

// ownedGame looks up a game the user may modify
func (s *Service) ownedGame(gameID, userID string) (*liveGame, error) {
	lg, err := s.lookup(gameID)
	if err != nil {
		return nil, err
	}
	if !lg.ownedBy(userID) {
		return nil, ErrNotOwner
	}
	return lg, nil
}

func (lg *liveGame) ownedBy(userID string) bool {
	return lg.ownerID == "" || lg.ownerID == userID
}

// view copies the game state. Caller holds lg.mu.

func (lg *liveGame) view(gameID string) GameView {
	g := lg.game
	return GameView{
		GameID:    gameID,
		OwnerID:   lg.ownerID,
		FEN:       g.CurrentFEN(),
		State:     g.Status(),
		Round:     g.Round(),
		Revision:  g.Revision(),
		Seed:      g.Seed(),
		InCheck:   g.InCheck(core.ColorWhite),
		Moves:     g.Moves(),
		White:     g.GetPlayer(core.ColorWhite),
		Black:     g.GetPlayer(core.ColorBlack),
		LastMove:  g.LastResult(),
		Board:     g.BoardSnapshot(),
		UpdatedAt: g.UpdatedAt(),
	}
}

func (s *Service) archiveRound(gameID string, g *game.Game) {
	if s.store == nil {
		return
	}
	s.store.RecordNewGame(storage.GameRecord{
		GameID:        gameID,
		Round:         g.Round(),
		InitialFEN:    g.InitialFEN(),
		WhitePlayerID: g.GetPlayer(core.ColorWhite).ID,
		Seed:          g.Seed(),
		StartTimeUTC:  time.Now().UTC(),
	})
}

// archiveMoves records the plies appended since the history had before entries
func (s *Service) archiveMoves(gameID string, g *game.Game, before int, out game.Outcome) {
	if s.store == nil {
		return
	}
	now := time.Now().UTC()
	for i, mr := range []*game.MoveResult{out.Player, out.Reply} {
		if mr == nil {
			continue
		}
		tier := ""
		if mr.PlayerColor == core.ColorBlack {
			tier = mr.Tier.String()
		}
		s.store.RecordMove(storage.MoveRecord{
			GameID:       gameID,
			Round:        g.Round(),
			MoveNumber:   before + i + 1,
			Move:         mr.Move,
			FENAfterMove: mr.FENAfter,
			PlayerColor:  mr.PlayerColor.String(),
			Tier:         tier,
			MoveTimeUTC:  now,
		})
	}
}

func (s *Service) archiveResult(gameID string, g *game.Game) {
	if s.store == nil {
		return
	}
	s.store.RecordResult(gameID, g.Round(), g.Status().String(), time.Now().UTC())
}

// Shutdown releases waiters, drops live games and closes the store
func (s *Service) Shutdown(timeout time.Duration) error {
	var errs []error

	if err := s.waiter.Shutdown(timeout); err != nil {
		errs = append(errs, fmt.Errorf("wait registry: %w", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.games = make(map[string]*liveGame)

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	return errors.Join(errs...)
}

// RunCleanupJob evicts stale games and expired sessions until ctx ends
func (s *Service) RunCleanupJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanupExpired(time.Now())
		}
	}
}

func (s *Service) cleanupExpired(now time.Time) {
	if n := s.evictGames(now); n > 0 {
		log.Printf("cleanup: evicted %d idle games", n)
	}

	if s.store == nil {
		return
	}
	if deleted, err := s.store.DeleteExpiredSessions(); err != nil {
		log.Printf("cleanup: failed to delete expired sessions: %v", err)
	} else if deleted > 0 {
		log.Printf("cleanup: deleted %d expired sessions", deleted)
	}
}

// evictGames drops finished games idle past FinishedGameTTL and any game idle past IdleGameTTL
func (s *Service) evictGames(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, lg := range s.games {
		lg.mu.Lock()
		idle := now.Sub(lg.game.UpdatedAt())
		stale := idle > IdleGameTTL || (lg.game.Status().IsOver() && idle > FinishedGameTTL)
		lg.mu.Unlock()
		if stale {
			delete(s.games, id)
			s.waiter.RemoveGame(id)
			evicted++
		}
	}
	return evicted
}
