// Package watch regenerates output when the files of a board catalog change.
package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-i2p/boardcfg/lib/board"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
	"golang.org/x/time/rate"
)

var log = logger.GetGoI2PLogger()

// Regenerate rebuilds everything derived from the catalog.
type Regenerate func(ctx context.Context) error

// Options control watcher timing.
type Options struct {
	// Debounce is the quiet period after the last change before regenerating.
	Debounce time.Duration
	// MinInterval is the minimum time between the start of two regenerations.
	// Zero disables throttling.
	MinInterval time.Duration
}

// Watcher watches a catalog directory, its boards directory and every board
// directory. Regenerations never overlap.
type Watcher struct {
	dir        string
	regenerate Regenerate
	opts       Options
	limiter    *rate.Limiter
	trigger    chan struct{}
}

// New returns a watcher for the catalog in dir.
func New(dir string, regenerate Regenerate, opts Options) *Watcher {
	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}
	return &Watcher{
		dir:        dir,
		regenerate: regenerate,
		opts:       opts,
		limiter:    rate.NewLimiter(limit, 1),
		trigger:    make(chan struct{}, 1),
	}
}

// Trigger requests a regeneration. Requests made while one is already
// pending are coalesced.
func (w *Watcher) Trigger() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Run watches until ctx is done. Regeneration errors are logged and do not
// stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return oops.In("watch").Wrapf(err, "create watcher")
	}
	defer func() { _ = fsw.Close() }()

	if err := w.addTree(fsw); err != nil {
		return err
	}

	log.WithFields(logger.Fields{
		"at":           "watch.Run",
		"reason":       "watcher_started",
		"dir":          w.dir,
		"debounce":     w.opts.Debounce.String(),
		"min_interval": w.opts.MinInterval.String(),
	}).Info("watching catalog for changes")

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.WithField("dir", w.dir).Info("catalog watcher stopped")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(fsw, event) {
				continue
			}
			log.WithFields(logger.Fields{
				"at":   "watch.Run",
				"op":   event.Op.String(),
				"path": event.Name,
			}).Debug("catalog file changed")

			// Debounce: reset timer on each event
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(w.opts.Debounce, w.Trigger)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).WithField("dir", w.dir).Error("catalog watcher error")

		case <-w.trigger:
			if err := w.limiter.Wait(ctx); err != nil {
				// ctx is done
				continue
			}
			w.run(ctx)
		}
	}
}

func (w *Watcher) run(ctx context.Context) {
	start := time.Now()
	if err := w.regenerate(ctx); err != nil {
		log.WithError(err).WithField("dir", w.dir).Error("regeneration failed")
		return
	}
	log.WithFields(logger.Fields{
		"at":       "watch.run",
		"reason":   "regenerated",
		"duration": time.Since(start).String(),
	}).Debug("regeneration complete")
}

// addTree adds the catalog directory, the boards directory and each board.
func (w *Watcher) addTree(fsw *fsnotify.Watcher) error {
	if err := fsw.Add(w.dir); err != nil {
		return oops.In("watch").With("dir", w.dir).Wrapf(err, "watch catalog")
	}

	boards := filepath.Join(w.dir, board.BoardsDir)
	entries, err := os.ReadDir(boards)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return oops.In("watch").With("dir", boards).Wrapf(err, "list boards")
	}
	if err := fsw.Add(boards); err != nil {
		return oops.In("watch").With("dir", boards).Wrapf(err, "watch boards")
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(boards, e.Name())
		if err := fsw.Add(dir); err != nil {
			return oops.In("watch").With("dir", dir).Wrapf(err, "watch board")
		}
	}
	return nil
}

// relevant reports whether event can change the catalog. New directories
// are added to the watch list as a side effect.
func (w *Watcher) relevant(fsw *fsnotify.Watcher, event fsnotify.Event) bool {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := fsw.Add(event.Name); err != nil {
				log.WithError(err).WithField("dir", event.Name).Warn("could not watch new directory")
			}
			// The boards directory itself may appear after startup.
			if event.Name == filepath.Join(w.dir, board.BoardsDir) {
				if entries, err := os.ReadDir(event.Name); err == nil {
					for _, e := range entries {
						if e.IsDir() {
							_ = fsw.Add(filepath.Join(event.Name, e.Name()))
						}
					}
				}
			}
			return true
		}
	}

	// Removed or renamed directories also invalidate the board list.
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		return true
	}

	ext := strings.ToLower(filepath.Ext(event.Name))
	return ext == ".yaml" || ext == ".yml"
}
