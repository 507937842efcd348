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
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/ZaparooProject/zaparoo-pocket/pkg/config"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/gameinfo"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/input"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/platforms"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/state"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/supervisor"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	VolumeStep     = 1
	BrightnessStep = 5

	eventQueueSize     = 16
	inputRetryInterval = time.Second
)

// ErrPoweredOff is returned by PowerOff when the platform's power-off
// returned instead of replacing the process.
var ErrPoweredOff = errors.New("powered off")

// KeySource is an open input device.
type KeySource interface {
	Name() string
	Next() (input.KeyEvent, error)
	Close() error
}

type DeviceOpener func(path string, keymap input.Keymap) (KeySource, error)

func openEvdev(path string, keymap input.Keymap) (KeySource, error) {
	dev, err := input.OpenDevice(path, keymap)
	if err != nil {
		return nil, err //nolint:wrapcheck // already wrapped with the path
	}
	return dev, nil
}

type Options struct {
	Platform   platforms.Platform
	Config     *config.Instance
	Controller supervisor.Controller
	State      *state.Store
	GameInfo   *gameinfo.Store
	// PlayTime may be nil when the play time database is unavailable.
	PlayTime supervisor.PlayTimeRecorder
	// Clock defaults to the real clock.
	Clock clockwork.Clock
	// OpenDevice defaults to the evdev reader.
	OpenDevice DeviceOpener
	// BeforePowerOff runs right before the power-off command replaces the
	// daemon, e.g. to flush error reports.
	BeforePowerOff func()
}

// Daemon is the event loop. Sources run in their own goroutines and push
// Events onto one channel; Run handles them one at a time, so handlers
// never need locking.
type Daemon struct {
	ctx            context.Context //nolint:containedctx // set by Run for child watchers
	pl             platforms.Platform
	cfg            *config.Instance
	sup            *supervisor.Supervisor
	store          *state.Store
	clock          clockwork.Clock
	openDevice     DeviceOpener
	beforePowerOff func()
	group          *errgroup.Group
	events         chan Event
	classifier     input.Classifier
	fixed          fixedSettings
	st             state.DaemonState
	dirty          bool
}

// fixedSettings are the config values read once at startup. Reloading the
// config does not apply them.
type fixedSettings struct {
	launcher         string
	menu             string
	inputDevices     []string
	terminateTimeout time.Duration
}

func snapshotFixed(cfg *config.Instance) fixedSettings {
	return fixedSettings{
		launcher:         cfg.LauncherBinary(),
		menu:             cfg.MenuBinary(),
		inputDevices:     cfg.InputDevices(),
		terminateTimeout: cfg.TerminateTimeout(),
	}
}

// changedKeys lists the config keys that differ between f and other.
func (f fixedSettings) changedKeys(other fixedSettings) []string {
	var keys []string
	if f.launcher != other.launcher {
		keys = append(keys, "binaries.launcher")
	}
	if f.menu != other.menu {
		keys = append(keys, "binaries.menu")
	}
	if !slices.Equal(f.inputDevices, other.inputDevices) {
		keys = append(keys, "input.devices")
	}
	if f.terminateTimeout != other.terminateTimeout {
		keys = append(keys, "supervisor.terminate_timeout")
	}
	return keys
}

func NewDaemon(opts Options) *Daemon {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	openDevice := opts.OpenDevice
	if openDevice == nil {
		openDevice = openEvdev
	}

	d := &Daemon{
		pl:             opts.Platform,
		cfg:            opts.Config,
		store:          opts.State,
		clock:          clock,
		openDevice:     openDevice,
		beforePowerOff: opts.BeforePowerOff,
		events:         make(chan Event, eventQueueSize),
		fixed:          snapshotFixed(opts.Config),
		st:             state.Defaults(),
	}
	d.sup = supervisor.New(supervisor.Options{
		Controller:       opts.Controller,
		GameInfo:         opts.GameInfo,
		PlayTime:         opts.PlayTime,
		Clock:            clock,
		Watch:            d.watchChild,
		LauncherBin:      d.fixed.launcher,
		MenuBin:          d.fixed.menu,
		TerminateTimeout: d.fixed.terminateTimeout,
	})
	return d
}

func (d *Daemon) Supervisor() *supervisor.Supervisor {
	return d.sup
}

// State returns the current settings snapshot.
func (d *Daemon) State() state.DaemonState {
	return d.st
}

// Run starts the event sources and the main child, then handles events
// until power-off. It only returns early on a fatal error or when ctx is
// cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	d.ctx = gctx
	d.group = g
	defer func() {
		cancel()
		if err := g.Wait(); err != nil {
			log.Debug().Err(err).Msg("event source stopped with error")
		}
	}()

	stopSignals := d.startSignals(gctx, g)
	defer stopSignals()

	for _, path := range d.fixed.inputDevices {
		g.Go(func() error {
			return d.readInput(gctx, path)
		})
	}
	d.startConfigWatcher(gctx, g)

	if err := d.start(gctx); err != nil {
		return err
	}

	for {
		select {
		case <-gctx.Done():
			return fmt.Errorf("event loop stopped: %w", context.Cause(gctx))
		case ev := <-d.events:
			err := d.handle(gctx, ev)
			if errors.Is(err, ErrPoweredOff) {
				return nil
			} else if err != nil {
				log.Error().Err(err).Stringer("event", ev.Kind).Msg("fatal error in event handler")
				return err
			}
		}
	}
}

// start restores hardware settings, kicks off Wi-Fi and spawns main.
func (d *Daemon) start(ctx context.Context) error {
	st, err := d.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load daemon state: %w", err)
	}
	d.st = st
	log.Info().Int("volume", st.Volume).Int("brightness", st.Brightness).Msg("loaded daemon state")

	if err := d.pl.SetVolume(ctx, d.st.Volume); err != nil {
		return fmt.Errorf("failed to restore volume: %w", err)
	}
	if err := d.pl.SetBrightness(d.st.Brightness); err != nil {
		return fmt.Errorf("failed to restore brightness: %w", err)
	}

	if cmd := d.cfg.WiFiInitCommand(); len(cmd) > 0 {
		if err := d.pl.StartWiFi(ctx, cmd); err != nil {
			log.Warn().Err(err).Msg("failed to start wifi")
		}
	}

	return d.sup.SpawnMain()
}

func (d *Daemon) handle(ctx context.Context, ev Event) error {
	var err error
	switch ev.Kind {
	case EventKey:
		err = d.handleKey(ctx, ev.Key)
	case EventMainExited:
		err = d.sup.OnMainExited(ev.Child)
	case EventMenuExited:
		err = d.sup.OnMenuExited(ev.Child)
	case EventSignal:
		log.Info().Str("signal", ev.Signal.String()).Msg("received signal, saving state")
		err = d.Save()
	case EventConfigChanged:
		d.reloadConfig()
	default:
		log.Warn().Msgf("unknown event: %v", ev.Kind)
	}
	if err != nil {
		return err
	}

	if d.dirty {
		return d.Save()
	}
	return nil
}

func (d *Daemon) handleKey(ctx context.Context, ev input.KeyEvent) error {
	intent := d.classifier.Classify(ev, d.sup.InGame())
	if intent != input.IntentNone {
		log.Debug().Stringer("key", ev).Stringer("intent", intent).Msg("key intent")
	}

	switch intent {
	case input.IntentVolumeUp:
		return d.AddVolume(ctx, VolumeStep)
	case input.IntentVolumeDown:
		return d.AddVolume(ctx, -VolumeStep)
	case input.IntentBrightnessUp:
		return d.AddBrightness(BrightnessStep)
	case input.IntentBrightnessDown:
		return d.AddBrightness(-BrightnessStep)
	case input.IntentToggleMenu:
		return d.sup.ToggleMenu()
	case input.IntentPowerOff:
		return d.PowerOff()
	case input.IntentNone:
	}
	return nil
}

// AddVolume changes the volume by delta, clamped, and applies it to the
// hardware. A change that clamps to the current value does nothing.
func (d *Daemon) AddVolume(ctx context.Context, delta int) error {
	if !d.st.AddVolume(delta) {
		return nil
	}
	d.dirty = true
	if err := d.pl.SetVolume(ctx, d.st.Volume); err != nil {
		return fmt.Errorf("failed to set volume: %w", err)
	}
	return nil
}

// AddBrightness changes the brightness by delta, clamped, and applies it
// to the backlight.
func (d *Daemon) AddBrightness(delta int) error {
	if !d.st.AddBrightness(delta) {
		return nil
	}
	d.dirty = true
	if err := d.pl.SetBrightness(d.st.Brightness); err != nil {
		return fmt.Errorf("failed to set brightness: %w", err)
	}
	return nil
}

// Save writes the settings snapshot to disk.
func (d *Daemon) Save() error {
	if err := d.store.Save(d.st); err != nil {
		return fmt.Errorf("failed to save daemon state: %w", err)
	}
	d.dirty = false
	return nil
}

func (d *Daemon) reloadConfig() {
	if err := d.cfg.Load(); err != nil {
		log.Warn().Err(err).Msg("failed to reload config, keeping previous values")
		return
	}
	helpers.SetDebugLogging(d.cfg.DebugLogging())
	log.Info().Bool("debug", d.cfg.DebugLogging()).Msg("config reloaded")
	if keys := d.fixed.changedKeys(snapshotFixed(d.cfg)); len(keys) > 0 {
		log.Warn().Strs("keys", keys).Msg("changed config keys take effect after a restart")
	}
}

// PowerOff stops the game, records its play time and hands over to the
// power-off command. On a device it does not return unless power-off
// failed.
func (d *Daemon) PowerOff() error {
	log.Info().Msg("power off requested")
	d.sup.MarkTerminating()

	if err := d.Save(); err != nil {
		log.Error().Err(err).Msg("failed to save state before power off")
	}
	if err := d.sup.ShutdownChildren(); err != nil {
		log.Error().Err(err).Msg("failed to stop children before power off")
	}

	if d.beforePowerOff != nil {
		d.beforePowerOff()
	}
	if err := d.pl.PowerOff(d.cfg.PowerOffCommand()); err != nil {
		return fmt.Errorf("failed to power off: %w", err)
	}
	return ErrPoweredOff
}
