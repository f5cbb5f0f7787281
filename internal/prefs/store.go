// Package prefs persists the single user preference record.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Record is the on-disk preference document.
type Record struct {
	StartupEnabled bool `json:"startup_enabled"`
	// Minimized suppresses opening the browser at launch.
	Minimized bool `json:"minimized,omitempty"`
}

// Default is the record used whenever the file is missing or unreadable.
func Default() Record {
	return Record{StartupEnabled: true}
}

// Store reads and writes a Record at a fixed path.
type Store struct {
	fs     afero.Fs
	path   string
	logger *zap.Logger

	mu sync.Mutex
}

// NewStore creates a store backed by fs. Pass afero.NewOsFs() for the real
// file system.
func NewStore(fs afero.Fs, path string, logger *zap.Logger) *Store {
	return &Store{
		fs:     fs,
		path:   path,
		logger: logger.Named("prefs"),
	}
}

// Path returns the preference file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored record. Any failure yields Default(); the file is
// never rewritten as a side effect.
func (s *Store) Load() Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug("Preference file not found, using defaults", zap.String("path", s.path))
		} else {
			s.logger.Warn("Failed to read preference file, using defaults",
				zap.String("path", s.path), zap.Error(err))
		}
		return Default()
	}

	// Start from the default so an absent key keeps its default value.
	rec := Default()
	if err := json.Unmarshal(data, &rec); err != nil {
		s.logger.Warn("Preference file is malformed, using defaults",
			zap.String("path", s.path), zap.Error(err))
		return Default()
	}
	return rec
}

// EnsureExists writes the default record when no preference file exists yet
// and reports whether it did. An unreadable or corrupt file counts as
// existing and is left alone.
func (s *Store) EnsureExists() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.fs.Stat(s.path); !os.IsNotExist(err) {
		return false
	}
	if err := s.write(Default()); err != nil {
		s.logger.Warn("Failed to create preference file", zap.String("path", s.path), zap.Error(err))
		return false
	}
	s.logger.Info("Created preference file with defaults", zap.String("path", s.path))
	return true
}

// Save writes rec atomically. It reports false on failure and leaves any
// previous file untouched.
func (s *Store) Save(rec Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(rec); err != nil {
		s.logger.Error("Failed to save preferences", zap.String("path", s.path), zap.Error(err))
		return false
	}
	s.logger.Debug("Preferences saved",
		zap.String("path", s.path),
		zap.Bool("startup_enabled", rec.StartupEnabled))
	return true
}

func (s *Store) write(rec Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create preference directory: %w", err)
	}

	tmp, err := afero.TempFile(s.fs, dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := s.fs.Rename(tmpName, s.path); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to replace preference file: %w", err)
	}
	return nil
}
