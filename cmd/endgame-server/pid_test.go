package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestPIDFileLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "endgame.pid")

	pf, err := acquirePIDFile(path, true)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(data)); got != strconv.Itoa(os.Getpid()) {
		t.Errorf("pid file = %q", got)
	}

	if _, err := acquirePIDFile(path, true); err == nil {
		t.Fatal("second locked acquire succeeded")
	}
	// the failed attempt must not clobber the holder's content
	if data2, _ := os.ReadFile(path); string(data2) != string(data) {
		t.Errorf("pid file changed to %q", data2)
	}

	pf.Release()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("pid file still present after release: %v", err)
	}
}

func TestPIDFileStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "endgame.pid")
	// a PID far above any realistic pid_max
	if err := os.WriteFile(path, []byte("999999999\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if pid, alive := previousOwner(path); pid != 999999999 || alive {
		t.Errorf("previousOwner = %d, %v", pid, alive)
	}

	pf, err := acquirePIDFile(path, true)
	if err != nil {
		t.Fatalf("takeover of stale file: %v", err)
	}
	defer pf.Release()
	data, _ := os.ReadFile(path)
	if strings.TrimSpace(string(data)) != strconv.Itoa(os.Getpid()) {
		t.Errorf("pid file = %q", data)
	}
}
