// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses bursts of export-file events into one
// trigger.
const DefaultDebounce = 5 * time.Second

// Watcher triggers pipeline runs when the CMDB export changes.
//
// Description:
//
//	Watches the export's directory rather than the file itself,
//	because exporters and editors replace files by rename, which
//	drops inode-level watches. Events for the export path are
//	debounced and then handed to the trigger.
//
// Thread Safety:
//
//	Start and Stop are safe to call from different goroutines. The
//	trigger runs on the watcher's goroutine; a slow trigger delays
//	later triggers rather than stacking them.
type Watcher struct {
	path     string
	debounce time.Duration
	trigger  func()
	logger   *slog.Logger

	watcher  *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher for the export at path.
//
// Inputs:
//
//	path - The CMDB export file to watch.
//	debounce - Quiet period before a trigger. Non-positive uses
//	           DefaultDebounce.
//	trigger - Called after each debounced batch of changes. Must not
//	          be nil.
//	logger - Event logging. Nil falls back to slog.Default().
//
// Outputs:
//
//	*Watcher - Ready to Start.
//	error - ErrNilTrigger, or a watcher setup failure.
func NewWatcher(path string, debounce time.Duration, trigger func(), logger *slog.Logger) (*Watcher, error) {
	if trigger == nil {
		return nil, ErrNilTrigger
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		trigger:  trigger,
		logger:   logger.With(slog.String("component", "watch")),
		watcher:  fsw,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. The returned error covers registration only;
// later watch errors are logged and watching continues.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	go w.loop(ctx)

	w.logger.Info("watching cmdb export",
		slog.String("path", w.path),
		slog.Duration("debounce", w.debounce))
	return nil
}

// Stop stops watching. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()
	})
}

// loop debounces export events until the context ends or Stop is
// called.
func (w *Watcher) loop(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerC:
			timer = nil
			timerC = nil
			w.logger.Info("cmdb export changed")
			w.trigger()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", slog.String("error", err.Error()))
		}
	}
}

// relevant reports whether an event is a content change to the
// export. Rename covers atomic replace; Chmod alone is noise.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op.Has(fsnotify.Write) ||
		event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Rename)
}
