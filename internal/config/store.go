package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dayoung-oh/lunchspin/internal/domain"
)

const (
	defaultDirName  = ".lunchspin"
	defaultFileName = "config.json"
	defaultDataDir  = "data"
	envConfigPath   = "LUNCHSPIN_CONFIG_PATH"
)

var (
	// ErrConfigNotFound is returned when the config file does not exist.
	ErrConfigNotFound = errors.New("config file not found")
	// ErrInvalidConfig is returned when the config payload is malformed.
	ErrInvalidConfig = errors.New("config file is invalid")
)

// Config stores host application defaults.
type Config struct {
	DataDir     string           `json:"data_dir,omitempty"`
	Center      *domain.Location `json:"center,omitempty"`
	WalkMinutes int              `json:"walk_minutes,omitempty"`
}

var validWalkMinutes = map[int]struct{}{5: {}, 10: {}, 15: {}}

// Validate checks field constraints.
func (c Config) Validate() error {
	if c.WalkMinutes != 0 {
		if _, ok := validWalkMinutes[c.WalkMinutes]; !ok {
			return fmt.Errorf("%w: walk_minutes must be 5, 10 or 15", ErrInvalidConfig)
		}
	}
	return nil
}

// Store loads and writes host configuration.
type Store struct {
	path string
}

// NewStore creates a store using env overrides or defaults.
func NewStore() (*Store, error) {
	if cfg := os.Getenv(envConfigPath); cfg != "" {
		return &Store{path: cfg}, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	return &Store{path: filepath.Join(home, defaultDirName, defaultFileName)}, nil
}

// Path returns the current config path.
func (s *Store) Path() string {
	return s.path
}

// DataDir resolves the key-value database directory for cfg, defaulting
// to a sibling of the config file.
func (s *Store) DataDir(cfg Config) string {
	if cfg.DataDir != "" {
		return cfg.DataDir
	}
	return filepath.Join(filepath.Dir(s.path), defaultDataDir)
}

// Load reads and validates configuration.
func (s *Store) Load(_ context.Context) (Config, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, ErrConfigNotFound
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(payload, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes a configuration payload.
func (s *Store) Save(_ context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	payload, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(s.path, payload, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
