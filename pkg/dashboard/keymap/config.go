package keymap

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const configFile = "keymap.json"

// Config represents user key binding overrides, stored next to the
// dashboard config.
type Config struct {
	// Bindings maps "context:key" to command ID
	// Example: {"main:ctrl+n": "new-campaign", "modal:x": "close"}
	Bindings map[string]string `json:"bindings"`
}

// ConfigPath returns the path to the keymap file under the state dir
func ConfigPath(stateDir string) string {
	return filepath.Join(stateDir, configFile)
}

// LoadConfig loads key binding overrides from a JSON file.
// Returns an empty config if the file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{Bindings: make(map[string]string)}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Bindings == nil {
		cfg.Bindings = make(map[string]string)
	}
	return &cfg, nil
}

// ApplyConfig applies user configuration overrides to the registry
func ApplyConfig(r *Registry, cfg *Config) {
	for binding, cmdStr := range cfg.Bindings {
		ctx, key := parseBinding(binding)
		if key == "" {
			continue
		}
		r.SetUserOverride(ctx, key, Command(cmdStr))
	}
}

// parseBinding splits "context:key". A bare key is global.
func parseBinding(s string) (Context, string) {
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			return Context(s[:i]), s[i+1:]
		}
	}
	return ContextGlobal, s
}
