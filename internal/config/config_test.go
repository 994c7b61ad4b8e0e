package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sentinel-sim/sentinel/internal/models"
)

func TestLoadMissingReturnsEmpty(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OnboardingCompleted {
		t.Error("fresh config should not be onboarded")
	}
}

func TestOnboardingFlagPersists(t *testing.T) {
	dir := t.TempDir()
	if err := SetOnboardingCompleted(dir, true); err != nil {
		t.Fatalf("SetOnboardingCompleted: %v", err)
	}
	done, err := GetOnboardingCompleted(dir)
	if err != nil {
		t.Fatalf("GetOnboardingCompleted: %v", err)
	}
	if !done {
		t.Error("flag not persisted")
	}

	// other fields survive the update
	if err := SetLastView(dir, "users"); err != nil {
		t.Fatal(err)
	}
	cfg, _ := Load(dir)
	if !cfg.OnboardingCompleted || cfg.LastView != "users" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	if err := Save(dir, &models.Config{SearchQuery: "payroll"}); err != nil {
		t.Fatal(err)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}

func TestConcurrentUpdates(t *testing.T) {
	dir := t.TempDir()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = SetOnboardingCompleted(dir, true)
		}()
		go func() {
			defer wg.Done()
			_ = SetSearchQuery(dir, "q")
		}()
	}
	wg.Wait()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.OnboardingCompleted || cfg.SearchQuery != "q" {
		t.Errorf("lost update: %+v", cfg)
	}
}

func TestLoadCorruptConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, configFile), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("expected error for corrupt config")
	}
}

func TestParseSettings(t *testing.T) {
	t.Setenv("SENTINEL_API_URL", "http://api.test")
	t.Setenv("SENTINEL_WORKFLOW", "report")
	t.Setenv("SENTINEL_POLL_INTERVAL", "2s")
	t.Setenv("SENTINEL_STATE_DIR", "/tmp/sentinel-test")

	s, err := ParseSettings()
	if err != nil {
		t.Fatalf("ParseSettings: %v", err)
	}
	if s.APIURL != "http://api.test" || s.Workflow != models.WorkflowReport {
		t.Errorf("unexpected settings %+v", s)
	}
	if s.PollInterval != 2*time.Second || s.DedupWindow != 5*time.Second {
		t.Errorf("intervals = %v, %v", s.PollInterval, s.DedupWindow)
	}
	if s.StateStore != StoreFile {
		t.Errorf("StateStore = %q, want file", s.StateStore)
	}
}

func TestParseSettingsRejectsBadWorkflow(t *testing.T) {
	t.Setenv("SENTINEL_WORKFLOW", "tickets")
	if _, err := ParseSettings(); err == nil {
		t.Error("expected error for unknown workflow")
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("missing .env should be ignored: %v", err)
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("SENTINEL_LOG_LEVEL=debug\nSENTINEL_LOG_FORMAT=json\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SENTINEL_LOG_LEVEL", "warn")
	t.Setenv("SENTINEL_LOG_FORMAT", "")
	os.Unsetenv("SENTINEL_LOG_FORMAT")

	if err := LoadDotEnv(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("SENTINEL_LOG_LEVEL"); got != "warn" {
		t.Errorf("LOG_LEVEL overridden: %q", got)
	}
	if got := os.Getenv("SENTINEL_LOG_FORMAT"); got != "json" {
		t.Errorf("LOG_FORMAT = %q, want json", got)
	}
}
