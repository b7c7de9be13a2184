// Package watcher turns program listings dropped into a directory into
// replacement jobs.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/careersync/internal/catalog"
	"github.com/dgallion1/careersync/internal/pipeline"
	"github.com/dgallion1/careersync/internal/tabular"
	"github.com/fsnotify/fsnotify"
)

// Submitter accepts jobs for processing.
type Submitter interface {
	Submit(job *pipeline.Job) error
}

// Config holds watcher settings.
type Config struct {
	Dir          string
	DocumentPath string
	Debounce     time.Duration
	CodePolicy   catalog.CodePolicy
}

// Watcher submits a job for every listing that is created or rewritten in
// Dir, once writes to it have been quiet for the debounce window.
type Watcher struct {
	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	cfg      Config
	jobs     Submitter
	log      *slog.Logger
	pending  map[string]time.Time
	onSubmit func(*pipeline.Job)

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

func New(cfg Config, jobs Submitter, log *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &Watcher{
		fsw:     fsw,
		cfg:     cfg,
		jobs:    jobs,
		log:     log.With("watch_dir", cfg.Dir),
		pending: make(map[string]time.Time),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// OnSubmit registers a callback invoked after each successful submission.
func (w *Watcher) OnSubmit(fn func(*pipeline.Job)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onSubmit = fn
}

// Start begins watching. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	if err := w.fsw.Add(w.cfg.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.cfg.Dir, err)
	}
	w.running = true
	w.log.Info("watching for listings", "debounce", w.cfg.Debounce)

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.fsw.Close(); err != nil {
		w.log.Error("close watcher", "error", err)
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := 100 * time.Millisecond
	if w.cfg.Debounce > 0 && w.cfg.Debounce < tick {
		tick = w.cfg.Debounce
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Error("watcher error", "error", err)
		case <-ticker.C:
			w.flush(time.Now())
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !Watchable(event.Name) {
		return
	}
	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

// flush submits every listing that has been quiet for the debounce window.
func (w *Watcher) flush(now time.Time) {
	w.mu.Lock()
	var ready []string
	for path, seen := range w.pending {
		if now.Sub(seen) >= w.cfg.Debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	onSubmit := w.onSubmit
	w.mu.Unlock()

	for _, path := range ready {
		job, err := w.submit(path)
		if err != nil {
			w.log.Error("submit failed", "table", path, "error", err)
			continue
		}
		if onSubmit != nil {
			onSubmit(job)
		}
	}
}

func (w *Watcher) submit(path string) (*pipeline.Job, error) {
	kind, err := catalog.DetectSectionKind(path)
	if err != nil {
		return nil, err
	}
	job := pipeline.NewJob(pipeline.Request{
		Document:    pipeline.Source{Path: w.cfg.DocumentPath},
		Table:       pipeline.Source{Path: path},
		Section:     kind,
		CodePolicy:  w.cfg.CodePolicy,
		WriteOutput: true,
	})
	if err := w.jobs.Submit(job); err != nil {
		return nil, err
	}
	w.log.Info("listing submitted", "table", path, "section", kind, "job_id", job.ID)
	return job, nil
}

// Watchable reports whether a file name looks like a listing the watcher
// should act on: a supported extension, not hidden, naming a section.
func Watchable(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
		return false
	}
	if !tabular.IsSupportedExtension(name) {
		return false
	}
	_, err := catalog.DetectSectionKind(name)
	return err == nil
}
