// Zaparoo Pocket
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Pocket.
//
// Zaparoo Pocket is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Pocket is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Pocket.  If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// WatchDebounce is how long the file must stay quiet before a change is
// reported. One editor save is usually several write and rename events.
const WatchDebounce = 250 * time.Millisecond

// Watcher reports changes to the config file. The parent directory is
// watched rather than the file itself because editors usually save by
// replacing the file.
type Watcher struct {
	watcher *fsnotify.Watcher
	clock   clockwork.Clock
	path    string
}

func NewWatcher(cfgPath string) (*Watcher, error) {
	absPath, err := filepath.Abs(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(absPath)
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch config directory %s: %w", dir, err)
	}

	return &Watcher{watcher: w, clock: clockwork.NewRealClock(), path: absPath}, nil
}

// SetClock replaces the clock used for debouncing.
func (w *Watcher) SetClock(clock clockwork.Clock) {
	w.clock = clock
}

// Run calls changed once a burst of writes, creates or renames of the
// config file has settled, until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context, changed func()) error {
	log.Debug().Str("path", w.path).Msg("watching config file")

	var timer clockwork.Timer
	var settled <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-settled:
			settled = nil
			changed()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.Debug().Str("op", event.Op.String()).Msg("config file changed")
			if timer == nil {
				timer = w.clock.NewTimer(WatchDebounce)
			} else {
				timer.Reset(WatchDebounce)
			}
			settled = timer.Chan()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("config watcher error")
		}
	}
}

func (w *Watcher) Close() error {
	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close config watcher: %w", err)
	}
	return nil
}
