// Package onboarding decides whether the first-run intro is shown. The same
// stores also remember the last view and search filter; entity data is never
// persisted.
package onboarding

import (
	"fmt"
	"sync"

	"github.com/sentinel-sim/sentinel/internal/config"
	"github.com/sentinel-sim/sentinel/internal/db"
)

// Store persists the onboarding flag
type Store interface {
	Completed() (bool, error)
	SetCompleted(done bool) error
}

// FileStore keeps the flag in config.json under Dir
type FileStore struct {
	Dir string
}

func (s FileStore) Completed() (bool, error) {
	return config.GetOnboardingCompleted(s.Dir)
}

func (s FileStore) SetCompleted(done bool) error {
	return config.SetOnboardingCompleted(s.Dir, done)
}

// SQLiteStore keeps the flag in the state database
type SQLiteStore struct {
	DB *db.DB
}

func (s SQLiteStore) Completed() (bool, error) {
	return s.DB.GetBool(db.KeyOnboardingCompleted)
}

func (s SQLiteStore) SetCompleted(done bool) error {
	return s.DB.SetBool(db.KeyOnboardingCompleted, done)
}

// Gate is the one-shot onboarding decision. The flag is read once at
// construction and written through on change.
type Gate struct {
	store Store

	mu        sync.Mutex
	completed bool
}

// NewGate loads the flag from store. A read failure is returned alongside a
// usable gate that shows onboarding.
func NewGate(store Store) (*Gate, error) {
	g := &Gate{store: store}
	done, err := store.Completed()
	if err != nil {
		return g, fmt.Errorf("read onboarding flag: %w", err)
	}
	g.completed = done
	return g, nil
}

// Pending reports whether onboarding must be shown
func (g *Gate) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.completed
}

// Complete persists the flag. Calling it again is a no-op.
func (g *Gate) Complete() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.completed {
		return nil
	}
	if err := g.store.SetCompleted(true); err != nil {
		return fmt.Errorf("persist onboarding flag: %w", err)
	}
	g.completed = true
	return nil
}

// Reset clears the flag so the intro shows on next launch
func (g *Gate) Reset() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.store.SetCompleted(false); err != nil {
		return fmt.Errorf("reset onboarding flag: %w", err)
	}
	g.completed = false
	return nil
}
