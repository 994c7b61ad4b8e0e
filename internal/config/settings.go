package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/sentinel-sim/sentinel/internal/models"
)

// State store backends for the onboarding flag
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Settings are the process settings read from the environment. CLI flags
// override them.
type Settings struct {
	APIURL         string          `env:"SENTINEL_API_URL" envDefault:"http://localhost:8000"`
	PushURL        string          `env:"SENTINEL_PUSH_URL"`
	Workflow       models.Workflow `env:"SENTINEL_WORKFLOW" envDefault:"campaign"`
	PollInterval   time.Duration   `env:"SENTINEL_POLL_INTERVAL" envDefault:"10s"`
	HealthInterval time.Duration   `env:"SENTINEL_HEALTH_INTERVAL" envDefault:"30s"`
	DedupWindow    time.Duration   `env:"SENTINEL_DEDUP_WINDOW" envDefault:"5s"`
	LogLevel       string          `env:"SENTINEL_LOG_LEVEL" envDefault:"info"`
	LogFormat      string          `env:"SENTINEL_LOG_FORMAT" envDefault:"text"`
	StateStore     string          `env:"SENTINEL_STATE_STORE" envDefault:"file"`
	StateDir       string          `env:"SENTINEL_STATE_DIR"`
}

// LoadDotEnv loads variables from the given .env files (default ./.env)
// without overriding ones already set. Missing files are not an error.
func LoadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// ParseSettings reads Settings from the environment
func ParseSettings() (*Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if s.StateDir == "" {
		s.StateDir = DefaultDir()
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks enumerated settings
func (s *Settings) Validate() error {
	switch s.Workflow {
	case models.WorkflowCampaign, models.WorkflowReport:
	default:
		return fmt.Errorf("invalid workflow %q (want campaign or report)", s.Workflow)
	}
	switch s.StateStore {
	case StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("invalid state store %q (want file or sqlite)", s.StateStore)
	}
	if s.PollInterval <= 0 || s.HealthInterval <= 0 || s.DedupWindow <= 0 {
		return errors.New("intervals must be positive")
	}
	return nil
}
