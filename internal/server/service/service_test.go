package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"endgame/internal/server/board"
	"endgame/internal/server/core"
	"endgame/internal/server/game"
	"endgame/internal/server/storage"
)

func newGameFromFEN(t *testing.T, fen string) *game.Game {
	t.Helper()
	b, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatal(err)
	}
	g, err := game.NewFromBoard(b, 1,
		core.NewPlayer(core.ColorWhite, core.PlayerHuman),
		core.NewPlayer(core.ColorBlack, core.PlayerComputer))
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func move(t *testing.T, s string) core.Move {
	t.Helper()
	m, err := core.ParseMove(s)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestNextSeed(t *testing.T) {
	s := New(nil, nil)
	s.SetBaseSeed(40)
	got := []int64{s.NextSeed(), s.NextSeed(), s.NextSeed()}
	if got[0] != 40 || got[1] != 41 || got[2] != 42 {
		t.Errorf("seeds = %v, want 40 41 42", got)
	}
	s.SetBaseSeed(0)
	if s.NextSeed() <= 0 {
		t.Error("time-based seed must be positive")
	}
}

func TestGameLifecycle(t *testing.T) {
	s := New(nil, nil)
	if err := s.AddGame("g1", "", newGameFromFEN(t, "4k3/8/8/8/8/8/4P3/4K3")); err != nil {
		t.Fatal(err)
	}
	if err := s.AddGame("g1", "", newGameFromFEN(t, "4k3/8/8/8/8/8/4P3/4K3")); err == nil {
		t.Error("duplicate id accepted")
	}

	out, view, err := s.MakeMove("g1", "", move(t, "e2e3"))
	if err != nil {
		t.Fatal(err)
	}
	if !out.Accepted || out.Reply == nil {
		t.Fatalf("outcome = %+v", out)
	}
	if view.Revision != 2 || len(view.Moves) != 2 {
		t.Errorf("view revision %d moves %v", view.Revision, view.Moves)
	}

	out, _, err = s.MakeMove("g1", "", move(t, "a1a2"))
	if err != nil || out.Accepted {
		t.Errorf("empty square move: %+v, %v", out, err)
	}

	view, err = s.ResetGame("g1", "")
	if err != nil {
		t.Fatal(err)
	}
	if view.Round != 1 || len(view.Moves) != 0 || view.Revision != 3 {
		t.Errorf("after reset: %+v", view)
	}

	if _, err := s.LegalDestinations("g1", core.Square{Row: 0, Col: 0}); err != nil {
		t.Errorf("legal destinations: %v", err)
	}
	if _, err := s.LegalDestinations("nope", core.Square{}); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("missing game: %v", err)
	}

	if err := s.DeleteGame("g1", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetGame("g1"); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("after delete: %v", err)
	}
	if _, _, err := s.MakeMove("g1", "", move(t, "e2e3")); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("move on deleted game: %v", err)
	}
}

func TestGameLockIsPerGame(t *testing.T) {
	s := New(nil, nil)
	for _, id := range []string{"busy", "idle"} {
		if err := s.AddGame(id, "", newGameFromFEN(t, "4k3/8/8/8/8/8/4P3/4K3")); err != nil {
			t.Fatal(err)
		}
	}

	busy := s.games["busy"]
	busy.mu.Lock()

	m := move(t, "e2e3")
	done := make(chan error, 1)
	go func() {
		_, _, err := s.MakeMove("idle", "", m)
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("move on idle game: %v", err)
		}
	case <-time.After(2 * time.Second):
		busy.mu.Unlock()
		t.Fatal("move on idle game blocked by another game's lock")
	}

	blocked := make(chan struct{})
	go func() {
		s.GetGame("busy")
		close(blocked)
	}()
	select {
	case <-blocked:
		t.Error("read of a locked game did not wait")
	case <-time.After(50 * time.Millisecond):
	}
	busy.mu.Unlock()

	select {
	case <-blocked:
	case <-time.After(2 * time.Second):
		t.Fatal("read did not resume after unlock")
	}
}

func TestOwnership(t *testing.T) {
	s := New(nil, nil)
	if err := s.AddGame("g1", "alice", newGameFromFEN(t, "4k3/8/8/8/8/8/4P3/4K3")); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.MakeMove("g1", "bob", move(t, "e2e3")); !errors.Is(err, ErrNotOwner) {
		t.Errorf("foreign move: %v", err)
	}
	if _, _, err := s.MakeMove("g1", "", move(t, "e2e3")); !errors.Is(err, ErrNotOwner) {
		t.Errorf("anonymous move: %v", err)
	}
	if err := s.DeleteGame("g1", "bob"); !errors.Is(err, ErrNotOwner) {
		t.Errorf("foreign delete: %v", err)
	}
	if _, err := s.GetGame("g1"); err != nil {
		t.Errorf("anyone may view: %v", err)
	}
	if _, _, err := s.MakeMove("g1", "alice", move(t, "e2e3")); err != nil {
		t.Errorf("owner move: %v", err)
	}
}

func TestGameLimit(t *testing.T) {
	s := New(nil, nil)
	for i := 0; i < MaxGames; i++ {
		if err := s.AddGame(s.GenerateGameID(), "", newGameFromFEN(t, "k7/8/1K6/8/8/8/8/8")); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.AddGame("one-too-many", "", newGameFromFEN(t, "k7/8/1K6/8/8/8/8/8")); !errors.Is(err, ErrGameLimit) {
		t.Errorf("err = %v, want ErrGameLimit", err)
	}
}

func TestRegisterWait(t *testing.T) {
	s := New(nil, nil)
	if err := s.AddGame("g1", "", newGameFromFEN(t, "4k3/8/8/8/8/8/4P3/4K3")); err != nil {
		t.Fatal(err)
	}

	// stale revision returns at once
	ch, err := s.RegisterWait(context.Background(), "g1", 7)
	if err != nil {
		t.Fatal(err)
	}
	select {
	case <-ch:
	default:
		t.Fatal("stale revision should not block")
	}

	ch, err = s.RegisterWait(context.Background(), "g1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.MakeMove("g1", "", move(t, "e2e3")); err != nil {
		t.Fatal(err)
	}
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("move did not wake the waiter")
	}

	if _, err := s.RegisterWait(context.Background(), "missing", 0); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("missing game: %v", err)
	}
	if err := s.Shutdown(time.Second); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestEvictGames(t *testing.T) {
	s := New(nil, nil)
	finished := newGameFromFEN(t, "8/8/8/8/8/8/3k4/4K3")
	if err := s.AddGame("done", "", finished); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.MakeMove("done", "", move(t, "e1d2")); err != nil {
		t.Fatal(err)
	}
	if err := s.AddGame("live", "", newGameFromFEN(t, "4k3/8/8/8/8/8/4P3/4K3")); err != nil {
		t.Fatal(err)
	}

	if n := s.evictGames(time.Now()); n != 0 {
		t.Fatalf("evicted %d fresh games", n)
	}
	if n := s.evictGames(time.Now().Add(FinishedGameTTL + time.Minute)); n != 1 {
		t.Fatalf("evicted %d, want only the finished game", n)
	}
	if _, err := s.GetGame("live"); err != nil {
		t.Errorf("live game evicted: %v", err)
	}
	if n := s.evictGames(time.Now().Add(IdleGameTTL + time.Minute)); n != 1 {
		t.Errorf("idle game not evicted")
	}
}

func TestArchiveThroughService(t *testing.T) {
	path := filepath.Join(t.TempDir(), "svc.db")
	store, err := storage.NewStore(path, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.InitDB(); err != nil {
		t.Fatal(err)
	}

	s := New(store, []byte("secret"))
	if err := s.AddGame("g1", "", newGameFromFEN(t, "8/8/8/8/8/8/3k4/4K3")); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.MakeMove("g1", "", move(t, "e1d2")); err != nil {
		t.Fatal(err)
	}
	if err := s.Shutdown(time.Second); err != nil {
		t.Fatal(err)
	}

	store, err = storage.NewStore(path, false)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	games, err := store.QueryGames("g1", "")
	if err != nil || len(games) != 1 {
		t.Fatalf("games = %+v, %v", games, err)
	}
	if games[0].Result != core.StateWhiteWins.String() {
		t.Errorf("result = %q", games[0].Result)
	}
	moves, err := store.QueryMoves("g1", 0)
	if err != nil || len(moves) != 1 || moves[0].Move != "e1d2" || moves[0].PlayerColor != "w" {
		t.Errorf("moves = %+v, %v", moves, err)
	}
}

func TestStorageHealth(t *testing.T) {
	if got := New(nil, nil).GetStorageHealth(); got != "disabled" {
		t.Errorf("no store: %q", got)
	}

	store, err := storage.NewStore(filepath.Join(t.TempDir(), "health.db"), false)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.InitDB(); err != nil {
		t.Fatal(err)
	}
	s := New(store, nil)
	if got := s.GetStorageHealth(); got != "ok" {
		t.Errorf("fresh store: %q", got)
	}

	if err := store.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.AddGame("g1", "", newGameFromFEN(t, "4k3/8/8/8/8/8/4P3/4K3")); err != nil {
		t.Fatal(err)
	}
	if got := s.GetStorageHealth(); got != "ok (1 dropped)" {
		t.Errorf("after dropped write: %q", got)
	}
}

func TestAccounts(t *testing.T) {
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "users.db"), false)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.InitDB(); err != nil {
		t.Fatal(err)
	}
	s := New(store, []byte("test-secret"))
	defer s.Shutdown(time.Second)

	u, err := s.CreateUser("alice", "Alice@Example.com", "correct horse")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateUser("ALICE", "", "x"); !errors.Is(err, storage.ErrUserExists) {
		t.Errorf("duplicate username: %v", err)
	}

	if _, err := s.AuthenticateUser("alice", "wrong"); !errors.Is(err, ErrInvalidCredential) {
		t.Errorf("wrong password: %v", err)
	}
	if _, err := s.AuthenticateUser("nobody", "x"); !errors.Is(err, ErrInvalidCredential) {
		t.Errorf("unknown user: %v", err)
	}
	got, err := s.AuthenticateUser("alice@example.com", "correct horse")
	if err != nil || got.UserID != u.UserID {
		t.Fatalf("login by email: %+v, %v", got, err)
	}

	token, err := s.GenerateUserToken(u.UserID)
	if err != nil {
		t.Fatal(err)
	}
	userID, _, err := s.ValidateToken(token)
	if err != nil || userID != u.UserID {
		t.Fatalf("validate: %s %v", userID, err)
	}

	if err := s.Logout(u.UserID); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.ValidateToken(token); err == nil {
		t.Error("token still valid after logout")
	}
}

func TestAccountsWithoutStorage(t *testing.T) {
	s := New(nil, []byte("k"))
	if _, err := s.CreateUser("a", "", "b"); !errors.Is(err, ErrStorageDisabled) {
		t.Errorf("err = %v", err)
	}
	if s.GetStorageHealth() != "disabled" {
		t.Errorf("health = %s", s.GetStorageHealth())
	}
}
