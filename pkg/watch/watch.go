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

// Package watch reports changes to a fixed set of files
package watch

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultDebounce is how long a burst of events is collected before reporting
const DefaultDebounce = 200 * time.Millisecond

const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove

// 👀 Watcher watches the directories holding a set of files, so files replaced
// by rename are still seen
type Watcher struct {
	fsw      *fsnotify.Watcher
	files    map[string]struct{}
	debounce time.Duration
}

// 🏭 New starts watching the parent directory of every file
func New(files []string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		files:    make(map[string]struct{}, len(files)),
		debounce: debounce,
	}

	dirs := map[string]struct{}{}
	for _, f := range files {
		f = filepath.Clean(f)
		w.files[f] = struct{}{}

		dir := filepath.Dir(f)
		if _, ok := dirs[dir]; ok {
			continue
		}
		dirs[dir] = struct{}{}
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, errors.Errorf("watching %s: %w", dir, err)
		}
	}

	return w, nil
}

// 🔁 Run blocks until ctx is cancelled, calling onChange with the sorted set of
// watched files that changed once events stop arriving for the debounce period.
// Calls are sequential.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, files []string)) error {
	logger := zerolog.Ctx(ctx)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	pending := map[string]struct{}{}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&relevantOps == 0 {
				continue
			}
			name := filepath.Clean(event.Name)
			if _, ok := w.files[name]; !ok {
				continue
			}
			logger.Trace().Str("file", name).Str("op", event.Op.String()).Msg("file event")
			pending[name] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watcher error")

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for f := range pending {
				changed = append(changed, f)
			}
			sort.Strings(changed)
			pending = map[string]struct{}{}

			logger.Debug().Strs("files", changed).Msg("files changed")
			onChange(ctx, changed)
		}
	}
}

// Close stops watching
func (w *Watcher) Close() error {
	if err := w.fsw.Close(); err != nil {
		return errors.Errorf("closing watcher: %w", err)
	}
	return nil
}
