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

package service

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZaparooProject/zaparoo-pocket/pkg/config"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/supervisor"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// send queues ev for the loop. It gives up when ctx is done.
func (d *Daemon) send(ctx context.Context, ev Event) bool {
	select {
	case d.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// startSignals forwards hangup, interrupt, quit and terminate to the loop.
// None of them stop the daemon; the settings are saved and it carries on.
func (d *Daemon) startSignals(ctx context.Context, g *errgroup.Group) (stop func()) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)
	g.Go(func() error {
		d.watchSignals(ctx, sigs)
		return nil
	})
	return func() {
		signal.Stop(sigs)
	}
}

func (d *Daemon) watchSignals(ctx context.Context, sigs <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigs:
			if !d.send(ctx, Event{Kind: EventSignal, Signal: sig}) {
				return
			}
		}
	}
}

// watchChild reports the exit of c as a main or menu exit event.
func (d *Daemon) watchChild(role supervisor.Role, c *supervisor.Child) {
	if d.group == nil {
		return
	}
	kind := EventMainExited
	if role == supervisor.RoleMenu {
		kind = EventMenuExited
	}

	ctx := d.ctx
	d.group.Go(func() error {
		select {
		case <-c.Done():
			d.send(ctx, Event{Kind: kind, Child: c})
		case <-ctx.Done():
		}
		return nil
	})
}

// readInput reads key events from one device. A device that fails to open
// or stops reading is retried, so a reset driver does not leave the
// handheld without a power button.
func (d *Daemon) readInput(ctx context.Context, path string) error {
	keymap := d.pl.Keymap()
	for {
		dev, err := d.openDevice(path, keymap)
		if err != nil {
			log.Warn().Err(err).Str("device", path).Msg("failed to open input device")
		} else {
			log.Info().Str("device", path).Msg("reading input device")
			d.readKeys(ctx, dev)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-d.clock.After(inputRetryInterval):
		}
	}
}

func (d *Daemon) readKeys(ctx context.Context, dev KeySource) {
	// closing the device unblocks Next
	stop := context.AfterFunc(ctx, func() {
		_ = dev.Close()
	})
	defer func() {
		if stop() {
			_ = dev.Close()
		}
	}()

	for {
		ev, err := dev.Next()
		if err != nil {
			if ctx.Err() == nil {
				log.Warn().Err(err).Str("device", dev.Name()).Msg("input device read failed")
			}
			return
		}
		if !d.send(ctx, Event{Kind: EventKey, Key: ev}) {
			return
		}
	}
}

// startConfigWatcher turns config file writes into reload events. The
// daemon runs fine without it.
func (d *Daemon) startConfigWatcher(ctx context.Context, g *errgroup.Group) {
	if d.cfg.Path() == "" {
		return
	}
	w, err := config.NewWatcher(d.cfg.Path())
	if err != nil {
		log.Warn().Err(err).Msg("config changes will not be picked up")
		return
	}

	g.Go(func() error {
		defer func() {
			if err := w.Close(); err != nil {
				log.Debug().Err(err).Msg("failed to close config watcher")
			}
		}()
		return w.Run(ctx, func() { //nolint:wrapcheck // Run only returns nil
			d.send(ctx, Event{Kind: EventConfigChanged})
		})
	})
}
