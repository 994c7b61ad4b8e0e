package onboarding

import (
	"github.com/sentinel-sim/sentinel/internal/config"
	"github.com/sentinel-sim/sentinel/internal/db"
)

// View and search preferences share the onboarding flag's store so a
// single SENTINEL_STATE_STORE setting picks the backend for all of them.

func (s FileStore) LastView() (string, error) { return config.GetLastView(s.Dir) }

func (s FileStore) SetLastView(v string) error { return config.SetLastView(s.Dir, v) }

func (s FileStore) SearchQuery() (string, error) { return config.GetSearchQuery(s.Dir) }

func (s FileStore) SetSearchQuery(q string) error { return config.SetSearchQuery(s.Dir, q) }

func (s SQLiteStore) LastView() (string, error) {
	v, _, err := s.DB.Get(db.KeyLastView)
	return v, err
}

func (s SQLiteStore) SetLastView(v string) error { return s.DB.Set(db.KeyLastView, v) }

func (s SQLiteStore) SearchQuery() (string, error) {
	q, _, err := s.DB.Get(db.KeySearchQuery)
	return q, err
}

func (s SQLiteStore) SetSearchQuery(q string) error {
	if q == "" {
		return s.DB.Delete(db.KeySearchQuery)
	}
	return s.DB.Set(db.KeySearchQuery, q)
}
