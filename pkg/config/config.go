package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	envConfigPath   = "REPLYCAST_CONFIG"
	envTemplates    = "REPLYCAST_TEMPLATES"
	envBatchWorkers = "REPLYCAST_BATCH_WORKERS"

	defaultBatchWorkers = 4
	maxBatchWorkers     = 256
)

// Config is the root runtime configuration loaded from replycast.json.
type Config struct {
	Templates TemplatesConfig `json:"templates,omitempty"`
	Logging   LoggingConfig   `json:"logging,omitempty"`
	Batch     BatchConfig     `json:"batch,omitempty"`
}

// TemplatesConfig selects the channel template registry.
type TemplatesConfig struct {
	// Path is an optional YAML file replacing the embedded registry.
	Path string `json:"path,omitempty"`
}

// LoggingConfig controls structured log output format and verbosity.
type LoggingConfig struct {
	Format    string `json:"format,omitempty"`
	Level     string `json:"level,omitempty"`
	AddSource bool   `json:"add_source,omitempty"`
}

// BatchConfig tunes the batch render pool.
type BatchConfig struct {
	Workers           int  `json:"workers,omitempty"`
	FallbackPlainText bool `json:"fallback_plain_text,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Format: "text", Level: "info"},
		Batch:   BatchConfig{Workers: defaultBatchWorkers},
	}
}

// Validate checks value ranges. Empty logging fields fall back to defaults.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Logging),
		validation.Field(&c.Batch),
	)
}

func (l LoggingConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Format, validation.In("text", "json")),
		validation.Field(&l.Level, validation.In("debug", "info", "warn", "warning", "error")),
	)
}

func (b BatchConfig) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Workers, validation.Min(0), validation.Max(maxBatchWorkers)),
	)
}

// LoadConfig resolves replycast.json, unmarshals it, and applies environment
// overrides. Without a config file it starts from Default().
func LoadConfig() (*Config, error) {
	configPath, err := findConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := json.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if cfg.Batch.Workers == 0 {
		cfg.Batch.Workers = defaultBatchWorkers
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides injects selected env-driven settings on top of file config.
func applyEnvOverrides(cfg *Config) error {
	if cfg == nil {
		return nil
	}

	if path := strings.TrimSpace(os.Getenv(envTemplates)); path != "" {
		cfg.Templates.Path = path
	}

	if raw := strings.TrimSpace(os.Getenv(envBatchWorkers)); raw != "" {
		workers, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", envBatchWorkers, err)
		}
		cfg.Batch.Workers = workers
	}

	return nil
}

// findConfigPath resolves the active config file location.
//
// Precedence is REPLYCAST_CONFIG first, then cwd-local fallback paths. An
// empty path with a nil error means no config file exists.
func findConfigPath() (string, error) {
	if value := strings.TrimSpace(os.Getenv(envConfigPath)); value != "" {
		if info, err := os.Stat(value); err == nil && !info.IsDir() {
			return value, nil
		}
		return "", fmt.Errorf("%s does not point to a file: %s", envConfigPath, value)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get current working directory: %w", err)
	}

	candidates := []string{
		filepath.Join(cwd, "replycast.json"),
		filepath.Join(cwd, "config", "replycast.json"),
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
	}

	return "", nil
}
