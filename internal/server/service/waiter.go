package service

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// PollTimeout caps how long a long-poll request is held open
const PollTimeout = 25 * time.Second

// watcher is one client parked on a game until its revision moves past since
type watcher struct {
	since int
	ready chan struct{}
	once  sync.Once
}

func (w *watcher) fire() {
	w.once.Do(func() { close(w.ready) })
}

// WaitRegistry parks long-polling clients per game and wakes them on change
type WaitRegistry struct {
	mu       sync.Mutex
	watchers map[string]map[*watcher]struct{} // gameID → parked clients
	closed   bool
	done     chan struct{}
	wg       sync.WaitGroup

	// Timeout is applied to every new watcher
	Timeout time.Duration
}

func NewWaitRegistry() *WaitRegistry {
	return &WaitRegistry{
		watchers: make(map[string]map[*watcher]struct{}),
		done:     make(chan struct{}),
		Timeout:  PollTimeout,
	}
}

// Watch returns a channel that is closed when the game's revision differs
// from since, the game is removed, ctx ends, the timeout elapses, or the
// registry shuts down. The caller re-reads the game to learn which.
func (r *WaitRegistry) Watch(ctx context.Context, gameID string, since int) <-chan struct{} {
	w := &watcher{since: since, ready: make(chan struct{})}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		w.fire()
		return w.ready
	}
	set, ok := r.watchers[gameID]
	if !ok {
		set = make(map[*watcher]struct{})
		r.watchers[gameID] = set
	}
	set[w] = struct{}{}
	r.wg.Add(1)
	timeout := r.Timeout
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		timer := time.NewTimer(timeout)
		defer timer.Stop()

		select {
		case <-w.ready:
		case <-ctx.Done():
		case <-timer.C:
		case <-r.done:
		}
		r.drop(gameID, w)
		w.fire()
	}()

	return w.ready
}

// Notify wakes every watcher on the game that has not seen revision yet
func (r *WaitRegistry) Notify(gameID string, revision int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for w := range r.watchers[gameID] {
		if w.since != revision {
			w.fire()
		}
	}
}

// RemoveGame wakes and forgets all watchers of a game about to disappear
func (r *WaitRegistry) RemoveGame(gameID string) {
	r.mu.Lock()
	set := r.watchers[gameID]
	delete(r.watchers, gameID)
	r.mu.Unlock()

	for w := range set {
		w.fire()
	}
}

// Pending counts the watchers parked on a game
func (r *WaitRegistry) Pending(gameID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.watchers[gameID])
}

// Shutdown releases every watcher and waits for their goroutines
func (r *WaitRegistry) Shutdown(timeout time.Duration) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.done)
	}
	r.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("wait registry: watchers still running after %s", timeout)
	}
}

func (r *WaitRegistry) drop(gameID string, w *watcher) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.watchers[gameID]
	if !ok {
		return
	}
	delete(set, w)
	if len(set) == 0 {
		delete(r.watchers, gameID)
	}
}
