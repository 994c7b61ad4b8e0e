package cmd

import (
	"github.com/sentinel-sim/sentinel/internal/config"
	"github.com/sentinel-sim/sentinel/internal/db"
	"github.com/sentinel-sim/sentinel/internal/onboarding"
	"github.com/sentinel-sim/sentinel/pkg/dashboard"
)

// stateStore holds the onboarding flag and the dashboard preferences
type stateStore interface {
	onboarding.Store
	dashboard.Prefs
}

// openStateStore opens the configured backend. The returned close func is
// never nil.
func openStateStore(s *config.Settings) (stateStore, func() error, error) {
	if s.StateStore == config.StoreSQLite {
		conn, err := db.Open(s.StateDir)
		if err != nil {
			return nil, func() error { return nil }, err
		}
		return onboarding.SQLiteStore{DB: conn}, conn.Close, nil
	}
	return onboarding.FileStore{Dir: s.StateDir}, func() error { return nil }, nil
}
