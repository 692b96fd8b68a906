package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Manager owns config.json. Readers get copies; writers go through Update,
// which validates before anything is persisted.
type Manager struct {
	mu   sync.RWMutex
	cfg  Config
	path string
}

// New loads path, or writes the defaults there when the file is missing.
func New(path string) (*Manager, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	m := &Manager{path: path}

	cfg, err := m.load()
	switch {
	case err == nil:
		m.cfg = *cfg
	case errors.Is(err, os.ErrNotExist):
		m.cfg = *m.GetDefault()
		if err := m.persist(m.cfg); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
	default:
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	return m, nil
}

// Get returns a copy of the current config.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// Update applies modify to a copy. The copy replaces the current config only
// if it validates and was written to disk.
func (m *Manager) Update(modify func(cfg *Config)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.cfg
	modify(&next)

	if err := m.validate(&next); err != nil {
		return fmt.Errorf("invalid config update: %w", err)
	}
	if err := m.persist(next); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	m.cfg = next
	return nil
}

// load decodes the file over the defaults, so sections missing from an
// older file keep sane values.
func (m *Manager) load() (*Config, error) {
	raw, err := os.ReadFile(m.path)
	if err != nil {
		return nil, err
	}

	cfg := m.GetDefault()
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if err := m.validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// persist writes cfg through a temp file in the same directory and renames
// it over the config, so a crash never leaves a truncated file behind.
func (m *Manager) persist(cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(m.path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), m.path)
}
