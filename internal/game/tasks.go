// internal/game/tasks.go
package game

import (
	"sync"
	"time"
)

// taskRunner schedules at-most-one pending callback per key. Scheduling a key
// again replaces the previous timer, and Cancel guarantees a superseded or
// cancelled callback never runs: the callback re-checks that its own timer is
// still the registered one before firing.
type taskRunner struct {
	mu      sync.Mutex
	pending map[string]*time.Timer
}

func newTaskRunner() *taskRunner {
	return &taskRunner{pending: make(map[string]*time.Timer)}
}

func (t *taskRunner) Schedule(key string, d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if old, ok := t.pending[key]; ok {
		old.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		current, ok := t.pending[key]
		if !ok || current != timer {
			t.mu.Unlock()
			return
		}
		delete(t.pending, key)
		t.mu.Unlock()
		fn()
	})
	t.pending[key] = timer
}

func (t *taskRunner) Cancel(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if timer, ok := t.pending[key]; ok {
		timer.Stop()
		delete(t.pending, key)
	}
}

// CancelPrefix drops every pending task whose key starts with prefix. Used
// when a room is evicted wholesale.
func (t *taskRunner) CancelPrefix(prefix string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, timer := range t.pending {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			timer.Stop()
			delete(t.pending, key)
		}
	}
}
