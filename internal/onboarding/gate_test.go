package onboarding

import (
	"errors"
	"testing"

	"github.com/sentinel-sim/sentinel/internal/db"
)

func TestFileStorePersistsAcrossInit(t *testing.T) {
	dir := t.TempDir()

	g, err := NewGate(FileStore{Dir: dir})
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	if !g.Pending() {
		t.Fatal("fresh store should start in onboarding")
	}
	if err := g.Complete(); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	fresh, err := NewGate(FileStore{Dir: dir})
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	if fresh.Pending() {
		t.Error("fresh gate over the same store should skip onboarding")
	}
}

func TestSQLiteStorePersistsAcrossInit(t *testing.T) {
	dir := t.TempDir()
	conn, err := db.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	g, err := NewGate(SQLiteStore{DB: conn})
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Complete(); err != nil {
		t.Fatal(err)
	}
	conn.Close()

	conn, err = db.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	fresh, err := NewGate(SQLiteStore{DB: conn})
	if err != nil {
		t.Fatal(err)
	}
	if fresh.Pending() {
		t.Error("flag lost across reopen")
	}

	if err := fresh.Reset(); err != nil {
		t.Fatal(err)
	}
	again, _ := NewGate(SQLiteStore{DB: conn})
	if !again.Pending() {
		t.Error("Reset should bring onboarding back")
	}
}

type failingStore struct {
	readErr, writeErr error
	writes            int
}

func (s *failingStore) Completed() (bool, error) { return false, s.readErr }

func (s *failingStore) SetCompleted(bool) error {
	s.writes++
	return s.writeErr
}

func TestReadFailureShowsOnboarding(t *testing.T) {
	g, err := NewGate(&failingStore{readErr: errors.New("disk gone")})
	if err == nil {
		t.Fatal("expected read error")
	}
	if g == nil || !g.Pending() {
		t.Error("gate should still be usable and pending")
	}
}

func TestCompleteFailureStaysPending(t *testing.T) {
	s := &failingStore{writeErr: errors.New("read-only")}
	g, _ := NewGate(s)
	if err := g.Complete(); err == nil {
		t.Fatal("expected write error")
	}
	if !g.Pending() {
		t.Error("failed persist must not mark onboarding complete")
	}
}

func TestCompleteIsIdempotent(t *testing.T) {
	s := &failingStore{}
	g, _ := NewGate(s)
	_ = g.Complete()
	_ = g.Complete()
	if s.writes != 1 {
		t.Errorf("writes = %d, want 1", s.writes)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	conn, err := db.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	stores := map[string]interface {
		LastView() (string, error)
		SetLastView(string) error
		SearchQuery() (string, error)
		SetSearchQuery(string) error
	}{
		"file":   FileStore{Dir: t.TempDir()},
		"sqlite": SQLiteStore{DB: conn},
	}

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			if v, err := s.LastView(); err != nil || v != "" {
				t.Fatalf("fresh LastView = %q, %v", v, err)
			}
			if err := s.SetLastView("analytics"); err != nil {
				t.Fatal(err)
			}
			if err := s.SetSearchQuery("q1"); err != nil {
				t.Fatal(err)
			}
			if v, _ := s.LastView(); v != "analytics" {
				t.Errorf("LastView = %q", v)
			}
			if q, _ := s.SearchQuery(); q != "q1" {
				t.Errorf("SearchQuery = %q", q)
			}
			if err := s.SetSearchQuery(""); err != nil {
				t.Fatal(err)
			}
			if q, _ := s.SearchQuery(); q != "" {
				t.Errorf("cleared SearchQuery = %q", q)
			}
		})
	}
}
