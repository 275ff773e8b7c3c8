package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

// AISettings is the completion-service configuration. It is passed by
// value into the orchestrator per call: the core never reads shared
// mutable settings state.
type AISettings struct {
	Provider       string  `mapstructure:"provider" json:"api_provider"`
	APIKey         string  `mapstructure:"api_key" json:"-"`
	BaseURL        string  `mapstructure:"base_url" json:"base_url"`
	Model          string  `mapstructure:"model" json:"model"`
	MaxTokens      int     `mapstructure:"max_tokens" json:"max_tokens"`
	Temperature    float64 `mapstructure:"temperature" json:"temperature"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" json:"timeout_seconds"`
}

// Configured reports whether an API key is present.
func (s AISettings) Configured() bool {
	return s.APIKey != ""
}

// DefaultsConfig holds default values for the diagnostic commands.
type DefaultsConfig struct {
	WindowMinutes      int `mapstructure:"window_minutes"`
	AgentWindowMinutes int `mapstructure:"agent_window_minutes"`
	MaxLines           int `mapstructure:"max_lines"`
	MaxFiles           int `mapstructure:"max_files"`
	MaxLinesPerFile    int `mapstructure:"max_lines_per_file"`
}

// Config holds application configuration.
type Config struct {
	LogDir     string `mapstructure:"log_dir"`
	ReportsDir string `mapstructure:"reports_dir"`

	// Optional overrides for the embedded catalogs.
	AnomalyRegistry string `mapstructure:"anomaly_registry"`
	LogCatalog      string `mapstructure:"log_catalog"`

	Format  string `mapstructure:"format"`
	Quiet   bool   `mapstructure:"quiet"`
	Verbose bool   `mapstructure:"verbose"`

	ListenPort int `mapstructure:"listen_port"`

	Defaults DefaultsConfig `mapstructure:"defaults"`
	AI       AISettings     `mapstructure:"ai"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		LogDir:     "./logs",
		ReportsDir: "./reports",
		Format:     "ndjson",
		ListenPort: 8080,
		Defaults: DefaultsConfig{
			WindowMinutes:      10,
			AgentWindowMinutes: 15,
			MaxLines:           1000,
			MaxFiles:           5,
			MaxLinesPerFile:    500,
		},
		AI: AISettings{
			Provider:       "openai",
			BaseURL:        "https://api.openai.com/v1",
			Model:          "gpt-3.5-turbo",
			MaxTokens:      1000,
			Temperature:    0.7,
			TimeoutSeconds: 30,
		},
	}
}

// Load loads configuration from files and environment.
// Config file search order (highest precedence first):
// 1. ./.roblog.yaml or ./.roblog.yml
// 2. ~/.roblog.yaml or ~/.roblog.yml
// 3. $XDG_CONFIG_HOME/roblog/config.yaml
// 4. /etc/roblog/config.yaml
func Load() (*Config, error) {
	cfg := Default()

	if configFile := findConfigFile(); configFile != "" {
		v := viper.New()
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
		if err := v.Unmarshal(cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// findConfigFile searches for a config file in standard locations.
func findConfigFile() string {
	names := []string{".roblog.yaml", ".roblog.yml", "roblog.yaml", "roblog.yml"}

	var searchPaths []string
	if cwd, err := os.Getwd(); err == nil {
		searchPaths = append(searchPaths, cwd)
	}
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, home)
	}
	if configDir, err := os.UserConfigDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(configDir, "roblog"))
	}
	searchPaths = append(searchPaths, "/etc/roblog")

	for _, dir := range searchPaths {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		path := filepath.Join(dir, "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// applyEnvOverrides applies ROBLOG_* environment variables on top of
// file values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ROBLOG_LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	if v := os.Getenv("ROBLOG_REPORTS_DIR"); v != "" {
		cfg.ReportsDir = v
	}
	if v := os.Getenv("ROBLOG_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("ROBLOG_QUIET"); v == "true" || v == "1" {
		cfg.Quiet = true
	}
	if v := os.Getenv("ROBLOG_VERBOSE"); v == "true" || v == "1" {
		cfg.Verbose = true
	}
	if v := os.Getenv("ROBLOG_LISTEN_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.ListenPort = port
		}
	}
	if v := os.Getenv("ROBLOG_API_PROVIDER"); v != "" {
		cfg.AI.Provider = v
	}
	if v := os.Getenv("ROBLOG_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv("ROBLOG_BASE_URL"); v != "" {
		cfg.AI.BaseURL = v
	}
	if v := os.Getenv("ROBLOG_MODEL"); v != "" {
		cfg.AI.Model = v
	}
}
