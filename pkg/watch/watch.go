// Package watch re-runs a callback whenever rule documents or skill
// descriptors beneath a skills root change.
package watch

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/skilldocs/skillcheck/pkg/logger"
	"github.com/skilldocs/skillcheck/pkg/walker"
)

// DefaultDebounce is the quiet period after the last change before a run
const DefaultDebounce = 500 * time.Millisecond

// Event is a relevant file system change
type Event struct {
	Path string
	Op   fsnotify.Op
	Time time.Time
}

// Config holds the watch settings
type Config struct {
	Root     string
	Ext      string
	Ignore   []string
	Debounce time.Duration
}

// Handler is called once per debounced burst of changes with the latest event
type Handler func(ctx context.Context, event Event)

// Watcher watches a skills tree
type Watcher struct {
	config  Config
	handler Handler
}

// New creates a Watcher. A non-positive debounce falls back to DefaultDebounce.
func New(config Config, handler Handler) (*Watcher, error) {
	if config.Root == "" {
		return nil, errors.New("watch root must not be empty")
	}
	if handler == nil {
		return nil, errors.New("watch handler must not be nil")
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	return &Watcher{config: config, handler: handler}, nil
}

// Run watches until ctx is cancelled. It returns an error only when the
// watcher cannot be set up.
func (w *Watcher) Run(ctx context.Context) error {
	if _, err := os.Stat(w.config.Root); err != nil {
		return errors.Wrapf(err, "cannot watch %s", w.config.Root)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer watcher.Close()

	dirs, err := walker.Dirs(w.config.Root, walker.WithIgnore(w.config.Ignore...))
	if err != nil {
		return errors.Wrap(err, "failed to list directories to watch")
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return errors.Wrapf(err, "failed to watch %s", dir)
		}
	}
	logger.G(ctx).WithFields(logrus.Fields{
		"root":        w.config.Root,
		"directories": len(dirs),
	}).Info("file watcher initialized")

	events := make(chan Event)
	debounced := make(chan Event)
	go Debounce(ctx, events, debounced, w.config.Debounce)

	go func() {
		for {
			select {
			case event := <-debounced:
				logger.G(ctx).WithFields(logrus.Fields{
					"file":      event.Path,
					"operation": event.Op.String(),
				}).Debug("change detected")
				w.handler(ctx, event)
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ctx, watcher, event) {
				continue
			}
			select {
			case events <- Event{Path: event.Name, Op: event.Op, Time: time.Now()}:
			case <-ctx.Done():
				return nil
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.G(ctx).WithError(err).Error("error watching files")
		case <-ctx.Done():
			return nil
		}
	}
}

// relevant filters raw notifications down to rule document changes, and
// starts watching directories created after startup
func (w *Watcher) relevant(ctx context.Context, watcher *fsnotify.Watcher, event fsnotify.Event) bool {
	if walker.IsIgnored(w.config.Root, event.Name, w.config.Ignore) {
		return false
	}

	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			dirs, err := walker.Dirs(event.Name, walker.WithIgnore(w.config.Ignore...))
			if err != nil {
				logger.G(ctx).WithError(err).WithField("directory", event.Name).Warn("failed to list new directory")
			}
			for _, dir := range dirs {
				if err := watcher.Add(dir); err != nil {
					logger.G(ctx).WithError(err).WithField("directory", dir).Warn("failed to watch new directory")
				}
			}
			return true
		}
	}

	if !strings.HasSuffix(event.Name, w.config.Ext) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}

// Debounce collapses bursts of events into one, emitted with the latest
// event once no further event has arrived for delay
func Debounce(ctx context.Context, input <-chan Event, output chan<- Event, delay time.Duration) {
	var (
		timer  *time.Timer
		fire   <-chan time.Time
		latest Event
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-input:
			if !ok {
				return
			}
			latest = event
			if timer == nil {
				timer = time.NewTimer(delay)
			} else {
				timer.Reset(delay)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			select {
			case output <- latest:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
