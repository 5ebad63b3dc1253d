// ABOUTME: Tests for habito configuration management.
// ABOUTME: Covers load, save, env overrides, backend selection, and path expansion.
package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points the config and data dirs at fresh temp dirs and clears
// every env override.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmpDir, "data"))
	for _, key := range []string{
		"HABITO_BACKEND", "HABITO_DATA_DIR", "HABITO_POSTGRES_URL", "HABITO_USER_ID",
		"HABITO_LOG_LEVEL", "HABITO_METRICS_ADDR", "HABITO_OPENAI_API_KEY", "OPENAI_API_KEY",
		"HABITO_OPENAI_MODEL", "HABITO_OPENAI_BASE_URL", "HABITO_OPENAI_TIMEOUT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return tmpDir
}

func TestGetBackendDefault(t *testing.T) {
	cfg := &Config{}
	if got := cfg.GetBackend(); got != "sqlite" {
		t.Errorf("GetBackend() = %q, want %q", got, "sqlite")
	}
}

func TestGetBackendExplicit(t *testing.T) {
	cfg := &Config{Backend: "Postgres"}
	if got := cfg.GetBackend(); got != "postgres" {
		t.Errorf("GetBackend() = %q, want %q", got, "postgres")
	}
}

func TestGetDataDirDefault(t *testing.T) {
	tmpDir := isolate(t)
	cfg := &Config{}
	want := filepath.Join(tmpDir, "data", "habito")
	if got := cfg.GetDataDir(); got != want {
		t.Errorf("GetDataDir() = %q, want %q", got, want)
	}
}

func TestGetDataDirExplicit(t *testing.T) {
	cfg := &Config{DataDir: "/tmp/habito-test"}
	if got := cfg.GetDataDir(); got != "/tmp/habito-test" {
		t.Errorf("GetDataDir() = %q, want %q", got, "/tmp/habito-test")
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"/tmp/foo", "/tmp/foo"},
		{"~", home},
		{"~/data/habito", filepath.Join(home, "data/habito")},
		{"data/habito", "data/habito"},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOpenAIGetters(t *testing.T) {
	cfg := &Config{}
	if cfg.GetOpenAIKey() != "" {
		t.Error("expected no key by default")
	}
	if cfg.GetOpenAIModel() != DefaultOpenAIModel {
		t.Errorf("model = %q", cfg.GetOpenAIModel())
	}
	if cfg.GetOpenAITimeout() != DefaultOpenAITimeout {
		t.Errorf("timeout = %v", cfg.GetOpenAITimeout())
	}

	cfg.OpenAI = &OpenAIConfig{APIKey: "sk-test", Model: "gpt-4.1", Timeout: "3s"}
	if cfg.GetOpenAIKey() != "sk-test" || cfg.GetOpenAIModel() != "gpt-4.1" {
		t.Errorf("unexpected openai config: %+v", cfg.OpenAI)
	}
	if cfg.GetOpenAITimeout() != 3*time.Second {
		t.Errorf("timeout = %v", cfg.GetOpenAITimeout())
	}

	cfg.OpenAI.Timeout = "soon"
	if cfg.GetOpenAITimeout() != DefaultOpenAITimeout {
		t.Error("invalid timeout should fall back to default")
	}
}

func TestGetLogLevelDefault(t *testing.T) {
	if got := (&Config{}).GetLogLevel(); got != "warn" {
		t.Errorf("GetLogLevel() = %q", got)
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}
	if cfg.Backend != "" || cfg.DataDir != "" || cfg.OpenAI != nil {
		t.Errorf("expected empty config, got %+v", cfg)
	}
}

func TestSaveAndLoad(t *testing.T) {
	isolate(t)

	cfg := &Config{
		Backend:     "postgres",
		DataDir:     "/tmp/habito-data",
		PostgresURL: "postgres://localhost/habito",
		OpenAI:      &OpenAIConfig{Model: "gpt-4.1"},
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loaded.Backend != "postgres" {
		t.Errorf("Backend mismatch: got %q", loaded.Backend)
	}
	if loaded.DataDir != "/tmp/habito-data" {
		t.Errorf("DataDir mismatch: got %q", loaded.DataDir)
	}
	if loaded.PostgresURL != cfg.PostgresURL {
		t.Errorf("PostgresURL mismatch: got %q", loaded.PostgresURL)
	}
	if loaded.GetOpenAIModel() != "gpt-4.1" {
		t.Errorf("model mismatch: got %q", loaded.GetOpenAIModel())
	}

	info, err := os.Stat(GetConfigPath())
	if err != nil {
		t.Fatalf("stat config: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config perms = %v, want 0600", info.Mode().Perm())
	}
}

func TestEnvOverridesFile(t *testing.T) {
	isolate(t)

	if err := (&Config{Backend: "sqlite", LogLevel: "info"}).Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	t.Setenv("HABITO_BACKEND", "charm")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Backend != "charm" {
		t.Errorf("Backend = %q, want env override", cfg.Backend)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want file value", cfg.LogLevel)
	}
	if cfg.GetOpenAIKey() != "sk-env" {
		t.Errorf("api key = %q, want env value", cfg.GetOpenAIKey())
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	tmpDir := isolate(t)

	configDir := filepath.Join(tmpDir, "habito")
	if err := os.MkdirAll(configDir, 0750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.json"), []byte("invalid json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid JSON config")
	}
}

func TestGetConfigPath(t *testing.T) {
	tmpDir := isolate(t)
	want := filepath.Join(tmpDir, "habito", "config.json")
	if got := GetConfigPath(); got != want {
		t.Errorf("GetConfigPath() = %q, want %q", got, want)
	}
}

func TestEnsureUserIDGeneratesOnce(t *testing.T) {
	isolate(t)

	cfg := &Config{}
	id, err := cfg.EnsureUserID()
	if err != nil {
		t.Fatalf("EnsureUserID failed: %v", err)
	}
	if len(id) != 26 {
		t.Errorf("expected a ULID, got %q", id)
	}

	again, err := (&Config{}).EnsureUserID()
	if err != nil {
		t.Fatalf("EnsureUserID failed: %v", err)
	}
	if again != id {
		t.Errorf("second call generated %q, want persisted %q", again, id)
	}
}

func TestEnsureUserIDDoesNotPersistEnv(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_API_KEY", "sk-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if _, err := cfg.EnsureUserID(); err != nil {
		t.Fatalf("EnsureUserID failed: %v", err)
	}

	onDisk, err := loadFile()
	if err != nil {
		t.Fatalf("loadFile failed: %v", err)
	}
	if onDisk.GetOpenAIKey() != "" {
		t.Error("env api key leaked into the config file")
	}
	if onDisk.UserID != cfg.UserID {
		t.Errorf("persisted id %q, want %q", onDisk.UserID, cfg.UserID)
	}
}

func TestOpenStorageSQLite(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := &Config{Backend: "sqlite", DataDir: tmpDir}

	repo, err := cfg.OpenStorage(context.Background())
	if err != nil {
		t.Fatalf("OpenStorage() for sqlite failed: %v", err)
	}
	defer repo.Close()

	if _, err := os.Stat(filepath.Join(tmpDir, "habito.db")); os.IsNotExist(err) {
		t.Error("Expected habito.db to be created")
	}
}

func TestOpenStorageDefaultBackend(t *testing.T) {
	cfg := &Config{DataDir: t.TempDir()}
	repo, err := cfg.OpenStorage(context.Background())
	if err != nil {
		t.Fatalf("OpenStorage() with default backend failed: %v", err)
	}
	defer repo.Close()
}

func TestOpenStoragePostgresNeedsURL(t *testing.T) {
	cfg := &Config{Backend: "postgres"}
	if _, err := cfg.OpenStorage(context.Background()); err == nil {
		t.Error("expected error without postgres_url")
	}
}

func TestOpenStorageInvalidBackend(t *testing.T) {
	cfg := &Config{Backend: "invalid", DataDir: "/tmp"}
	if _, err := cfg.OpenStorage(context.Background()); err == nil {
		t.Error("Expected error for invalid backend")
	}
}

func TestConfigJSONOmitsEmpty(t *testing.T) {
	data, err := json.Marshal(&Config{})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("Expected empty JSON object, got %s", string(data))
	}
}
