package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Save writes the artifact next to path and renames it into place, so a
// watcher never observes a half-written file.
func Save(path string, m *Model) error {
	if err := m.validate(); err != nil {
		return err
	}
	body, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	return nil
}

func Load(path string) (*Model, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Model
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", path, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

// Store holds the model currently served and swaps it when the artifact on
// disk changes.
type Store struct {
	path     string
	current  atomic.Pointer[Model]
	OnReload func(err error)
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the artifact. On failure the previously loaded model, if any,
// stays in service.
func (s *Store) Load() error {
	m, err := Load(s.path)
	if err != nil {
		return err
	}
	s.current.Store(m)
	return nil
}

func (s *Store) Current() (*Model, bool) {
	m := s.current.Load()
	return m, m != nil
}

// Watch reloads the artifact whenever it is written, created or renamed into
// place. It blocks until ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	// Watch the directory: Save replaces the file, which drops a watch held
	// on the file itself. It may not exist until the first train.
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target := filepath.Clean(s.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			s.reload(ctx)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "Error watching model", "err", err)
			// Dropped events may have included a rewrite.
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				s.reload(ctx)
			}
		}
	}
}

func (s *Store) reload(ctx context.Context) {
	err := s.Load()
	if err != nil {
		slog.WarnContext(ctx, "Model reload failed, keeping previous model", "path", s.path, "err", err)
	} else {
		slog.InfoContext(ctx, "Model reloaded", "path", s.path)
	}
	if s.OnReload != nil {
		s.OnReload(err)
	}
}
