package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dayoung-oh/lunchspin/internal/domain"
)

func TestNewStoreUsesEnvConfigPath(t *testing.T) {
	t.Setenv(envConfigPath, "/tmp/custom-lunchspin-config.json")
	store, err := NewStore()
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}
	if store.Path() != "/tmp/custom-lunchspin-config.json" {
		t.Fatalf("expected env path, got %q", store.Path())
	}
}

func TestStoreSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	store := &Store{path: path}

	input := Config{
		Center:      &domain.Location{Lat: 37.4841, Lon: 127.0162, Address: "Hyoryeong-ro 256"},
		WalkMinutes: 15,
	}
	if err := store.Save(context.Background(), input); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	output, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if output.Center == nil || output.Center.Address != "Hyoryeong-ro 256" {
		t.Fatalf("unexpected roundtrip config: %+v", output)
	}
	if output.WalkMinutes != 15 {
		t.Fatalf("expected walk minutes 15, got %d", output.WalkMinutes)
	}
}

func TestStoreLoadMissingConfig(t *testing.T) {
	store := &Store{path: filepath.Join(t.TempDir(), "missing.json")}
	_, err := store.Load(context.Background())
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestStoreLoadInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatalf("write invalid config: %v", err)
	}
	store := &Store{path: path}
	_, err := store.Load(context.Background())
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestStoreRejectsInvalidWalkMinutes(t *testing.T) {
	store := &Store{path: filepath.Join(t.TempDir(), "config.json")}
	err := store.Save(context.Background(), Config{WalkMinutes: 7})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestDataDirDefaultsNextToConfig(t *testing.T) {
	store := &Store{path: "/home/user/.lunchspin/config.json"}
	if got := store.DataDir(Config{}); got != "/home/user/.lunchspin/data" {
		t.Fatalf("unexpected default data dir %q", got)
	}
	if got := store.DataDir(Config{DataDir: "/var/lib/lunchspin"}); got != "/var/lib/lunchspin" {
		t.Fatalf("expected explicit data dir to win, got %q", got)
	}
}
