package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/sentinel-sim/sentinel/internal/models"
)

const configFile = "config.json"
const lockFile = "config.json.lock"

// DirName is the per-user state directory under $HOME
const DirName = ".sentinel"

// DefaultDir returns ~/.sentinel, falling back to ./.sentinel without a home
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DirName
	}
	return filepath.Join(home, DirName)
}

// Load reads the config from disk
func Load(baseDir string) (*models.Config, error) {
	configPath := filepath.Join(baseDir, configFile)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &models.Config{}, nil
		}
		return nil, err
	}

	var cfg models.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the config to disk using atomic write (temp file + rename)
func Save(baseDir string, cfg *models.Config) error {
	configPath := filepath.Join(baseDir, configFile)

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(baseDir, "config-*.json.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, configPath)
}

// withConfigLock serializes access to config.json using flock
func withConfigLock(baseDir string, fn func() error) error {
	lockPath := filepath.Join(baseDir, lockFile)

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := lockFileExclusive(f); err != nil {
		return err
	}
	defer unlockFile(f)

	return fn()
}

// update applies fn to the config under the lock and saves it
func update(baseDir string, fn func(cfg *models.Config)) error {
	return withConfigLock(baseDir, func() error {
		cfg, err := Load(baseDir)
		if err != nil {
			return err
		}
		fn(cfg)
		return Save(baseDir, cfg)
	})
}

// SetOnboardingCompleted records whether the intro has been completed
func SetOnboardingCompleted(baseDir string, done bool) error {
	return update(baseDir, func(cfg *models.Config) {
		cfg.OnboardingCompleted = done
	})
}

// GetOnboardingCompleted returns the persisted onboarding flag
func GetOnboardingCompleted(baseDir string) (bool, error) {
	cfg, err := Load(baseDir)
	if err != nil {
		return false, err
	}
	return cfg.OnboardingCompleted, nil
}

// SetLastView remembers the dashboard view to restore on next launch
func SetLastView(baseDir, view string) error {
	return update(baseDir, func(cfg *models.Config) {
		cfg.LastView = view
	})
}

// GetLastView returns the remembered dashboard view
func GetLastView(baseDir string) (string, error) {
	cfg, err := Load(baseDir)
	if err != nil {
		return "", err
	}
	return cfg.LastView, nil
}

// SetSearchQuery persists the campaign search filter
func SetSearchQuery(baseDir, query string) error {
	return update(baseDir, func(cfg *models.Config) {
		cfg.SearchQuery = query
	})
}

// GetSearchQuery returns the persisted campaign search filter
func GetSearchQuery(baseDir string) (string, error) {
	cfg, err := Load(baseDir)
	if err != nil {
		return "", err
	}
	return cfg.SearchQuery, nil
}

// SetAPIURL stores the service URL used when no flag or env overrides it
func SetAPIURL(baseDir, url string) error {
	return update(baseDir, func(cfg *models.Config) {
		cfg.APIURL = url
	})
}
