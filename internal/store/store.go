// Package store owns the persisted root state: one JSON document rewritten
// in full after every mutation, with copy-based backups alongside.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrPersistence wraps disk write failures. The in-memory state is kept as
// mutated when a save fails; callers report the failure, nothing is rolled
// back.
var ErrPersistence = errors.New("erro ao salvar dados")

// Store guards the root state with a mutex. The original shared one
// unsynchronized object between the GUI and web threads; here every access
// goes through Update or View.
type Store struct {
	mu        sync.Mutex
	logger    *slog.Logger
	path      string
	backupDir string
	state     *State
	now       func() time.Time
}

// Open loads the document at path, degrading to a fresh default state when
// the file is absent or malformed. Load failure is a recovery policy, not an
// error condition.
func Open(logger *slog.Logger, path, backupDir string) *Store {
	s := &Store{logger: logger, path: path, backupDir: backupDir, now: time.Now}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("ler arquivo de dados", slog.String("path", path), slog.Any("error", err))
		}
		s.state = DefaultState()
		return s
	}
	st, err := DecodeDocument(data)
	if err != nil {
		logger.Error("arquivo de dados inválido, iniciando vazio", slog.String("path", path), slog.Any("error", err))
		s.state = DefaultState()
		return s
	}
	s.state = st
	return s
}

// Update runs fn against the state under the lock and saves the whole
// document afterwards. An error from fn skips the save; a save error is
// returned with the in-memory mutation left in place.
func (s *Store) Update(fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.state); err != nil {
		return err
	}
	return s.save()
}

// View runs fn against the state under the lock, for reads.
func (s *Store) View(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state)
}

// Path returns the data file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.logger.Error("gravar arquivo de dados", slog.String("path", s.path), slog.Any("error", err))
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// Backup copies the current file byte-for-byte into the backup directory,
// creating it on demand. It returns the backup file name, which doubles as
// the backup identifier.
func (s *Store) Backup(tag string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		if err := s.save(); err != nil {
			return "", err
		}
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("ler dados para backup: %w", err)
	}
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return "", fmt.Errorf("criar diretório de backups: %w", err)
	}
	name := fmt.Sprintf("backup_%s_%s_%s.json",
		tag,
		s.now().Format("20060102_150405"),
		uuid.NewString()[:8],
	)
	if err := os.WriteFile(filepath.Join(s.backupDir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("gravar backup: %w", err)
	}
	return name, nil
}

// ListBackups returns the backup file names, newest last.
func (s *Store) ListBackups() ([]string, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
