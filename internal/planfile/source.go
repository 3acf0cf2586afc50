package planfile

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	mdwlog "github.com/msto63/formplan/foundation/core/log"
	"github.com/msto63/formplan/foundation/core/validation"
)

// DefaultDebounce is the quiet period before a changed file is reloaded
const DefaultDebounce = 250 * time.Millisecond

// Source holds the current catalog of one file. Reloads swap the catalog
// atomically; a reload that fails keeps the previous catalog.
type Source struct {
	path    string
	logger  *mdwlog.Logger
	current atomic.Pointer[Catalog]

	mu       sync.Mutex
	lastErr  error
	onReload []func(*Catalog, error)
	watching bool
}

// Open loads path. The initial load must succeed.
func Open(path string, logger *mdwlog.Logger) (*Source, error) {
	if logger == nil {
		logger = mdwlog.Discard()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog path: %w", err)
	}

	c, err := Load(abs)
	if err != nil {
		return nil, err
	}

	s := &Source{
		path:   abs,
		logger: logger.WithField("component", "planfile").WithField("path", abs),
	}
	s.current.Store(c)
	s.logger.Info("catalog loaded", mdwlog.Fields{"forms": c.Len()})
	return s, nil
}

// Catalog returns the current catalog
func (s *Source) Catalog() *Catalog {
	return s.current.Load()
}

// Names returns the form names of the current catalog
func (s *Source) Names() []string {
	return s.Catalog().Names()
}

// Validator builds a validator from the current catalog
func (s *Source) Validator(name string, registry *validation.Registry, opts validation.Options) (*validation.Validator, error) {
	return s.Catalog().Validator(name, registry, opts)
}

// Err returns the error of the last reload, nil after a successful one
func (s *Source) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// OnReload registers fn to be called after every reload attempt. A failed
// attempt passes a nil catalog and the load error.
func (s *Source) OnReload(fn func(*Catalog, error)) {
	s.mu.Lock()
	s.onReload = append(s.onReload, fn)
	s.mu.Unlock()
}

// Reload loads the file again and swaps the catalog on success
func (s *Source) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := Load(s.path)
	if err != nil {
		s.lastErr = err
		s.logger.ErrorWithErr("catalog reload failed, keeping previous catalog", err)
		for _, fn := range s.onReload {
			fn(nil, err)
		}
		return err
	}

	s.current.Store(c)
	s.lastErr = nil
	s.logger.Info("catalog reloaded", mdwlog.Fields{"forms": c.Len()})
	for _, fn := range s.onReload {
		fn(c, nil)
	}
	return nil
}

// Watch reloads the catalog whenever the file changes, until ctx is done.
// Bursts of events within debounce trigger a single reload. The directory
// is watched so editors that replace the file by rename are noticed.
func (s *Source) Watch(ctx context.Context, debounce time.Duration) error {
	s.mu.Lock()
	if s.watching {
		s.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	s.watching = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.watching = false
		s.mu.Unlock()
	}()

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(s.path), err)
	}
	s.logger.Info("catalog watcher started", mdwlog.Fields{"debounce_ms": debounce.Milliseconds()})

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
			s.logger.Info("catalog watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !s.relevant(event) {
				continue
			}
			s.logger.Debug("catalog file event", mdwlog.Fields{"op": event.Op.String()})

			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			_ = s.Reload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			// Continue watching despite errors
			s.logger.ErrorWithErr("catalog watcher error", err)
		}
	}
}

func (s *Source) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	return filepath.Clean(event.Name) == s.path
}
