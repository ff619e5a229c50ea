package profile

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/posehook/internal/edits"
)

// debounce is the quiet period after the last event before a reload.
const debounce = 100 * time.Millisecond

// Sync keeps a registry loaded from one profile file.
type Sync struct {
	path     string
	loader   *Loader
	registry *edits.Registry
	log      *zap.Logger
}

// NewSync creates a syncer for path.
func NewSync(path string, registry *edits.Registry, log *zap.Logger) *Sync {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sync{
		path:     path,
		loader:   NewLoader(log),
		registry: registry,
		log:      log,
	}
}

// Reload reads the file and replaces the registry contents. On error the
// registry keeps its previous contents.
func (s *Sync) Reload() error {
	sets, err := s.loader.Load(s.path)
	if err != nil {
		return err
	}
	s.registry.Replace(sets)
	s.log.Info("profiles loaded",
		zap.String("path", s.path),
		zap.Int("profiles", len(sets)),
		zap.Int("enabled", s.registry.Len()))
	return nil
}

// Watch reloads the file whenever it changes until ctx is done. The parent
// directory is watched so editors that replace the file are handled.
func (s *Sync) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	target := filepath.Clean(s.path)

	// Reload on the trailing edge so the last of a burst of writes wins.
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

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
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if err := s.Reload(); err != nil {
				s.log.Warn("profile reload failed", zap.Error(err))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("profile watcher error", zap.Error(err))
		}
	}
}
