// Package inflight serialises mutating actions per key so that a second
// submission of the same action cannot start while the first one is still
// waiting on the backend.
package inflight

import (
	"sync"

	"github.com/SscSPs/caja_backoffice/internal/apperrors"
)

// Guard tracks which keys currently have an action running.
type Guard struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

// New creates an empty Guard.
func New() *Guard {
	return &Guard{busy: make(map[string]struct{})}
}

// Key builds the guard key for an operator and action.
func Key(operatorID, action string) string {
	return operatorID + ":" + action
}

// TryAcquire marks key as busy. It returns a release func and true, or nil and
// false if key is already busy.
func (g *Guard) TryAcquire(key string) (func(), bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.busy[key]; ok {
		return nil, false
	}
	g.busy[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.busy, key)
			g.mu.Unlock()
		})
	}, true
}

// Do runs fn while holding key. It returns apperrors.ErrRequestInFlight without
// running fn if key is busy.
func (g *Guard) Do(key string, fn func() error) error {
	release, ok := g.TryAcquire(key)
	if !ok {
		return apperrors.ErrRequestInFlight
	}
	defer release()
	return fn()
}

// Busy reports whether key is currently held.
func (g *Guard) Busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.busy[key]
	return ok
}
