// Package settings persists the last-used job configuration so a new
// session can pick up where the previous one left off.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/photoflow/internal/batch"
)

const (
	appDirName  = "photoflow"
	jobFileName = "job.yaml"
)

// Store reads and writes job configurations under a base directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at the user config directory
// (e.g. ~/.config/photoflow on Linux).
func NewStore() (*Store, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolving user config dir: %w", err)
	}
	return NewStoreAt(filepath.Join(base, appDirName)), nil
}

// NewStoreAt creates a store rooted at an explicit directory.
func NewStoreAt(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store's base directory.
func (s *Store) Dir() string { return s.dir }

// JobPath returns the path of the persisted job file.
func (s *Store) JobPath() string { return filepath.Join(s.dir, jobFileName) }

// SaveJob writes the job configuration as a YAML document.
func (s *Store) SaveJob(cfg batch.Config) error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("creating settings dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding job settings: %w", err)
	}
	if err := os.WriteFile(s.JobPath(), data, 0o600); err != nil {
		return fmt.Errorf("writing job settings: %w", err)
	}
	return nil
}

// LoadJob reads the persisted job configuration. A missing file returns
// the default configuration, not an error.
func (s *Store) LoadJob() (batch.Config, error) {
	data, err := os.ReadFile(s.JobPath())
	if err != nil {
		if os.IsNotExist(err) {
			return batch.DefaultConfig(), nil
		}
		return batch.Config{}, fmt.Errorf("reading job settings: %w", err)
	}

	cfg := batch.DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return batch.Config{}, fmt.Errorf("parsing job settings: %w", err)
	}
	return cfg, nil
}

// LoadJobFile reads a job configuration from an arbitrary YAML file.
func LoadJobFile(path string) (batch.Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: user-chosen job file is expected
	if err != nil {
		return batch.Config{}, fmt.Errorf("reading job file: %w", err)
	}

	cfg := batch.DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return batch.Config{}, fmt.Errorf("parsing job file %s: %w", path, err)
	}
	return cfg, nil
}
