// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package watch reports changed files under a set of roots.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔍 Filter decides which files and directories are watched
type Filter interface {
	Accepts(path string) bool
	AcceptsDir(path string) bool
}

// 👀 Watcher watches every accepted directory under its roots
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	filter    Filter
	logger    zerolog.Logger
}

// 🏭 New registers every accepted directory under roots
func New(roots []string, filter Filter, logger zerolog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		debouncer: NewDebouncer(DefaultInterval),
		filter:    filter,
		logger:    logger,
	}

	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				w.logger.Warn().Err(err).Str("path", path).Msg("skipping unreadable directory")
				return nil
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && !filter.AcceptsDir(path) {
				return filepath.SkipDir
			}
			w.add(path)
			return nil
		})
		if err != nil {
			fsWatcher.Close()
			return nil, errors.Errorf("walking %s: %w", root, err)
		}
	}

	return w, nil
}

func (w *Watcher) add(dir string) {
	if err := w.fsWatcher.Add(dir); err != nil {
		w.logger.Warn().Err(err).Str("path", dir).Msg("failed to watch directory")
		return
	}
	w.logger.Trace().Str("path", dir).Msg("watching directory")
}

// WatchList returns the directories being watched
func (w *Watcher) WatchList() []string {
	return w.fsWatcher.WatchList()
}

// ▶️ Run calls fn with each sorted batch of changed files until ctx is done.
// fn runs on the Run goroutine, so events arriving meanwhile wait for the
// next batch.
func (w *Watcher) Run(ctx context.Context, fn func(ctx context.Context, paths []string)) error {
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("watcher error")

		case batch := <-w.debouncer.Output():
			w.logger.Debug().Int("files", len(batch)).Msg("files changed")
			fn(ctx, batch)
		}
	}
}

// handleEvent queues a created or written file, and starts watching new
// directories. Removals and renames carry nothing to rewrite.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}

	if info.IsDir() {
		if event.Has(fsnotify.Create) && w.filter.AcceptsDir(event.Name) {
			w.add(event.Name)
		}
		return
	}

	if !info.Mode().IsRegular() || !w.filter.Accepts(event.Name) {
		return
	}

	w.debouncer.Add(event.Name)
}

// Close stops the watcher and releases resources
func (w *Watcher) Close() error {
	w.debouncer.Stop()
	return w.fsWatcher.Close()
}
