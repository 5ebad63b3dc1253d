// ABOUTME: Habito configuration management with backend selection.
// ABOUTME: Reads the JSON config through viper so HABITO_* env vars override any key.

package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harperreed/habito/internal/charm"
	"github.com/harperreed/habito/internal/logging"
	"github.com/harperreed/habito/internal/storage"
	"github.com/oklog/ulid/v2"
	"github.com/spf13/viper"
)

const (
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultOpenAITimeout = 15 * time.Second
)

// OpenAIConfig configures the suggestion model.
type OpenAIConfig struct {
	APIKey  string `json:"api_key,omitempty" mapstructure:"api_key"`
	Model   string `json:"model,omitempty" mapstructure:"model"`
	BaseURL string `json:"base_url,omitempty" mapstructure:"base_url"`
	// Timeout is a Go duration string such as "15s".
	Timeout string `json:"timeout,omitempty" mapstructure:"timeout"`
}

// Config stores habito configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default), "postgres" or "charm".
	Backend string `json:"backend,omitempty" mapstructure:"backend"`

	// DataDir is the root directory for local data: habito.db and the cache.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/habito.
	DataDir string `json:"data_dir,omitempty" mapstructure:"data_dir"`

	// PostgresURL is the connection string of the hosted store.
	PostgresURL string `json:"postgres_url,omitempty" mapstructure:"postgres_url"`

	// UserID scopes every activity. Generated on first run.
	UserID string `json:"user_id,omitempty" mapstructure:"user_id"`

	LogLevel    string        `json:"log_level,omitempty" mapstructure:"log_level"`
	MetricsAddr string        `json:"metrics_addr,omitempty" mapstructure:"metrics_addr"`
	OpenAI      *OpenAIConfig `json:"openai,omitempty" mapstructure:"openai"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return "sqlite"
	}
	return strings.ToLower(c.Backend)
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetLogLevel returns the configured log level.
func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return logging.DefaultLevel
	}
	return c.LogLevel
}

// GetOpenAIKey returns the API key, or "" when suggestions run offline.
func (c *Config) GetOpenAIKey() string {
	if c.OpenAI == nil {
		return ""
	}
	return c.OpenAI.APIKey
}

// GetOpenAIModel returns the configured model name.
func (c *Config) GetOpenAIModel() string {
	if c.OpenAI == nil || c.OpenAI.Model == "" {
		return DefaultOpenAIModel
	}
	return c.OpenAI.Model
}

// GetOpenAIBaseURL returns the API base URL override, if any.
func (c *Config) GetOpenAIBaseURL() string {
	if c.OpenAI == nil {
		return ""
	}
	return c.OpenAI.BaseURL
}

// GetOpenAITimeout returns the suggestion timeout. Unparseable values fall
// back to the default.
func (c *Config) GetOpenAITimeout() time.Duration {
	if c.OpenAI == nil || c.OpenAI.Timeout == "" {
		return DefaultOpenAITimeout
	}
	d, err := time.ParseDuration(c.OpenAI.Timeout)
	if err != nil || d <= 0 {
		return DefaultOpenAITimeout
	}
	return d
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage(ctx context.Context) (storage.Repository, error) {
	backend := c.GetBackend()
	dataDir := c.GetDataDir()

	switch backend {
	case "sqlite":
		db, err := storage.Open(filepath.Join(dataDir, "habito.db"))
		if err != nil {
			return nil, err
		}
		return db, nil
	case "postgres":
		if c.PostgresURL == "" {
			return nil, fmt.Errorf("postgres backend needs postgres_url (or HABITO_POSTGRES_URL)")
		}
		pg, err := storage.OpenPostgres(ctx, c.PostgresURL)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case "charm":
		client, err := charm.InitClient()
		if err != nil {
			return nil, fmt.Errorf("open charm kv: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "habito", "config.json")
}

// Load reads config from disk and applies environment overrides.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")

	path := GetConfigPath()
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("backend", "HABITO_BACKEND")
	_ = v.BindEnv("data_dir", "HABITO_DATA_DIR")
	_ = v.BindEnv("postgres_url", "HABITO_POSTGRES_URL")
	_ = v.BindEnv("user_id", "HABITO_USER_ID")
	_ = v.BindEnv("log_level", "HABITO_LOG_LEVEL")
	_ = v.BindEnv("metrics_addr", "HABITO_METRICS_ADDR")
	_ = v.BindEnv("openai.api_key", "HABITO_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("openai.model", "HABITO_OPENAI_MODEL")
	_ = v.BindEnv("openai.base_url", "HABITO_OPENAI_BASE_URL")
	_ = v.BindEnv("openai.timeout", "HABITO_OPENAI_TIMEOUT")
}

// loadFile reads only the file, without environment overrides.
func loadFile() (*Config, error) {
	data, err := os.ReadFile(GetConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// EnsureUserID returns the user id, generating and persisting one on first
// run. Only the id is written back; env overrides never reach the file.
func (c *Config) EnsureUserID() (string, error) {
	if c.UserID != "" {
		return c.UserID, nil
	}
	onDisk, err := loadFile()
	if err != nil {
		return "", err
	}
	if onDisk.UserID == "" {
		onDisk.UserID = ulid.Make().String()
		if err := onDisk.Save(); err != nil {
			return "", fmt.Errorf("save user id: %w", err)
		}
	}
	c.UserID = onDisk.UserID
	return c.UserID, nil
}
