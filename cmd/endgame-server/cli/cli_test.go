package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"endgame/internal/server/storage"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := out
	out = &buf
	t.Cleanup(func() { out = prev })
	return &buf
}

func TestRunArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"empty", nil, "subcommand required"},
		{"unknown", []string{"vacuum"}, "unknown subcommand"},
		{"user without sub", []string{"user"}, "user subcommand required"},
		{"unknown user sub", []string{"user", "rename"}, "unknown user subcommand"},
		{"init without path", []string{"init"}, "database path required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Run(tt.args)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Run(%v) = %v, want %q", tt.args, err, tt.want)
			}
		})
	}
}

func TestUserLifecycle(t *testing.T) {
	buf := capture(t)
	path := filepath.Join(t.TempDir(), "cli.db")

	if err := Run([]string{"init", "-path", path}); err != nil {
		t.Fatalf("init: %v", err)
	}

	if err := Run([]string{"user", "add", "-path", path, "-username", "Carol"}); err == nil {
		t.Error("user add without password succeeded")
	}
	if err := Run([]string{"user", "add", "-path", path, "-username", "carol", "-password", "short"}); err == nil {
		t.Error("user add with short password succeeded")
	}
	if err := Run([]string{"user", "add", "-path", path, "-username", "carol", "-password", "x", "-hash", "y"}); err == nil {
		t.Error("user add with both -password and -hash succeeded")
	}
	if err := Run([]string{"user", "add", "-path", path, "-username", "Carol", "-email", "carol@example.com", "-password", "secret123"}); err != nil {
		t.Fatalf("user add: %v", err)
	}
	if err := Run([]string{"user", "add", "-path", path, "-username", "carol", "-password", "secret123"}); err == nil {
		t.Error("duplicate user add succeeded")
	}

	buf.Reset()
	if err := Run([]string{"user", "list", "-path", path}); err != nil {
		t.Fatalf("user list: %v", err)
	}
	if !strings.Contains(buf.String(), "carol@example.com") || !strings.Contains(buf.String(), "Total users: 1") {
		t.Errorf("list output:\n%s", buf.String())
	}

	if err := Run([]string{"user", "set-password", "-path", path, "-username", "CAROL", "-password", "another456"}); err != nil {
		t.Fatalf("set-password: %v", err)
	}
	if err := Run([]string{"user", "set-hash", "-path", path, "-username", "carol", "-hash", "not-a-phc-hash"}); err == nil {
		t.Error("set-hash accepted a malformed hash")
	}

	if err := Run([]string{"user", "delete", "-path", path}); err == nil {
		t.Error("delete without target succeeded")
	}
	if err := Run([]string{"user", "delete", "-path", path, "-username", "carol"}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	buf.Reset()
	if err := Run([]string{"user", "list", "-path", path}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No users found") {
		t.Errorf("list after delete:\n%s", buf.String())
	}

	if err := Run([]string{"delete", "-path", path}); err != nil {
		t.Fatalf("delete db: %v", err)
	}
}

func TestQueryArchive(t *testing.T) {
	buf := capture(t)
	path := filepath.Join(t.TempDir(), "archive.db")

	store, err := storage.NewStore(path, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.InitDB(); err != nil {
		t.Fatal(err)
	}
	const id = "0b7e0a7c-2a0e-4c55-9b77-3f1c6f0f6d10"
	now := time.Now().UTC()
	store.RecordNewGame(storage.GameRecord{
		GameID: id, InitialFEN: "4k3/8/8/8/8/8/4P3/4K3 w - - 0 1", Seed: 42, StartTimeUTC: now,
	})
	store.RecordMove(storage.MoveRecord{
		GameID: id, MoveNumber: 1, Move: "e2e3", FENAfterMove: "4k3/8/8/8/8/4P3/8/4K3 b - - 0 1",
		PlayerColor: "w", MoveTimeUTC: now,
	})
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	if err := Run([]string{"query", "-path", path, "-gameId", "*"}); err != nil {
		t.Fatalf("query: %v", err)
	}
	if s := buf.String(); !strings.Contains(s, id) || !strings.Contains(s, "(anonymous)") || !strings.Contains(s, "Found 1 round(s)") {
		t.Errorf("query output:\n%s", s)
	}

	buf.Reset()
	if err := Run([]string{"moves", "-path", path, "-gameId", id}); err != nil {
		t.Fatalf("moves: %v", err)
	}
	if s := buf.String(); !strings.Contains(s, "e2e3") || !strings.Contains(s, "1 move(s) in round 0") {
		t.Errorf("moves output:\n%s", s)
	}

	if err := Run([]string{"moves", "-path", path}); err == nil {
		t.Error("moves without game ID succeeded")
	}
}
