package config

import (
	"fmt"
	"strings"
)

// APIConfig holds platform API settings.
type APIConfig struct {
	BaseURL string `json:"base_url"`
	Token   string `json:"token"`
}

// UIConfig holds user-interface settings.
type UIConfig struct {
	Theme string `json:"theme"`
}

// ContextConfig holds team-context settings. The TTL is an empirically
// chosen safeguard, kept as configuration rather than a hard contract.
type ContextConfig struct {
	TeamContextTTLMinutes int `json:"team_context_ttl_minutes"`
}

// StatusConfig holds agent-status registry settings.
type StatusConfig struct {
	SweepIntervalMinutes    int `json:"sweep_interval_minutes"`
	CompletedRetentionHours int `json:"completed_retention_hours"`
}

// DeleteConfig holds thread-deletion settings.
type DeleteConfig struct {
	MaxConcurrent int `json:"max_concurrent"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `json:"level"`
	ToConsole  bool   `json:"to_console"`
	RotationMB int    `json:"rotation_mb"`
}

// Config is the top-level configuration for crewdeck.
// Stored as config.json inside the crewdeck home directory.
type Config struct {
	API     APIConfig     `json:"api"`
	UI      UIConfig      `json:"ui"`
	Context ContextConfig `json:"context"`
	Status  StatusConfig  `json:"status"`
	Delete  DeleteConfig  `json:"delete"`
	Logging LoggingConfig `json:"logging"`
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: "https://api.crewdeck.dev",
		},
		UI: UIConfig{
			Theme: "navy_red_dark",
		},
		Context: ContextConfig{
			TeamContextTTLMinutes: 5,
		},
		Status: StatusConfig{
			SweepIntervalMinutes:    60,
			CompletedRetentionHours: 24,
		},
		Delete: DeleteConfig{
			MaxConcurrent: 4,
		},
		Logging: LoggingConfig{
			Level:      "info",
			ToConsole:  false,
			RotationMB: 10,
		},
	}
}

// Load reads a config from the JSON file at path and merges it with defaults
// so that any missing fields receive their default values. If the file does
// not exist, a fully-default Config is returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := loadJSON(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	EnsureDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the config to path as indented JSON. Parent directories are
// created if they do not already exist.
func Save(cfg *Config, path string) error {
	if err := saveJSON(path, cfg, 0o644); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// isValidLogLevel reports whether s is an acceptable logging.level value.
func isValidLogLevel(s string) bool {
	switch s {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// Validate checks cfg for constraint violations and returns a combined error
// describing every problem found, or nil if the config is valid.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.API.BaseURL == "" {
		errs = append(errs, "api.base_url must not be empty")
	}

	if !isValidLogLevel(cfg.Logging.Level) {
		errs = append(errs, fmt.Sprintf("logging.level must be one of debug, info, warn, error; got %q", cfg.Logging.Level))
	}

	if cfg.Context.TeamContextTTLMinutes < 1 {
		errs = append(errs, fmt.Sprintf("context.team_context_ttl_minutes must be >= 1; got %d", cfg.Context.TeamContextTTLMinutes))
	}

	if cfg.Status.SweepIntervalMinutes < 1 {
		errs = append(errs, fmt.Sprintf("status.sweep_interval_minutes must be >= 1; got %d", cfg.Status.SweepIntervalMinutes))
	}

	if cfg.Status.CompletedRetentionHours < 1 {
		errs = append(errs, fmt.Sprintf("status.completed_retention_hours must be >= 1; got %d", cfg.Status.CompletedRetentionHours))
	}

	if cfg.Delete.MaxConcurrent < 1 {
		errs = append(errs, fmt.Sprintf("delete.max_concurrent must be >= 1; got %d", cfg.Delete.MaxConcurrent))
	}

	if cfg.Logging.RotationMB < 1 {
		errs = append(errs, fmt.Sprintf("logging.rotation_mb must be >= 1; got %d", cfg.Logging.RotationMB))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}

	return nil
}

// EnsureDefaults fills in zero-value string fields in cfg with their default
// values. This is a public utility for manually constructed Config values.
// Numeric fields are intentionally left alone: a zero value may be the
// caller's explicit intent, and Load already unmarshals on top of
// DefaultConfig so missing JSON fields receive defaults automatically.
func EnsureDefaults(cfg *Config) {
	d := DefaultConfig()

	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = d.API.BaseURL
	}
	// Token intentionally left alone; empty string means "not logged in".

	if cfg.UI.Theme == "" {
		cfg.UI.Theme = d.UI.Theme
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = d.Logging.Level
	}
}
