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

//go:build linux

// Package handheld is the on-device platform: ALSA mixer volume, sysfs
// backlight and a real power-off.
package handheld

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ZaparooProject/zaparoo-pocket/pkg/config"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/input"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/platforms"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/state"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

const (
	brightnessFile    = "brightness"
	maxBrightnessFile = "max_brightness"
	amixerBin         = "amixer"
)

var (
	ErrNoPowerOffCommand = errors.New("no power off command configured")
	errBadMaxBrightness  = errors.New("invalid max_brightness")
)

type Platform struct {
	fs            afero.Fs
	executor      command.Executor
	syncFS        func()
	execFn        func(argv0 string, argv, envv []string) error
	backlightDir  string
	mixerControl  string
	maxBrightness int
}

func NewPlatform(cfg *config.Instance, fs afero.Fs, executor command.Executor) *Platform {
	return &Platform{
		fs:           fs,
		executor:     executor,
		syncFS:       unix.Sync,
		execFn:       unix.Exec,
		backlightDir: cfg.BacklightDir(),
		mixerControl: cfg.MixerControl(),
	}
}

func (*Platform) ID() string {
	return platforms.PlatformIDHandheld
}

func (*Platform) Keymap() input.Keymap {
	return platforms.DefaultKeymap()
}

// SetVolume scales the 0-20 volume to a mixer percentage.
func (p *Platform) SetVolume(ctx context.Context, volume int) error {
	pct := volume * 100 / state.MaxVolume
	err := p.executor.Run(ctx, amixerBin, "-q", "sset", p.mixerControl, strconv.Itoa(pct)+"%")
	if err != nil {
		return fmt.Errorf("failed to set volume to %d: %w", volume, err)
	}
	log.Debug().Int("volume", volume).Int("percent", pct).Msg("set volume")
	return nil
}

func (p *Platform) readMaxBrightness() (int, error) {
	if p.maxBrightness > 0 {
		return p.maxBrightness, nil
	}

	data, err := afero.ReadFile(p.fs, filepath.Join(p.backlightDir, maxBrightnessFile))
	if err != nil {
		return 0, fmt.Errorf("failed to read max brightness: %w", err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errBadMaxBrightness, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%w: %d", errBadMaxBrightness, v)
	}

	p.maxBrightness = v
	return v, nil
}

// SetBrightness scales a percentage to the backlight driver's range.
func (p *Platform) SetBrightness(brightness int) error {
	maxRaw, err := p.readMaxBrightness()
	if err != nil {
		return err
	}

	raw := brightness * maxRaw / state.MaxBrightness
	path := filepath.Join(p.backlightDir, brightnessFile)
	err = afero.WriteFile(p.fs, path, []byte(strconv.Itoa(raw)), 0o644)
	if err != nil {
		return fmt.Errorf("failed to set brightness to %d: %w", brightness, err)
	}
	log.Debug().Int("brightness", brightness).Int("raw", raw).Msg("set brightness")
	return nil
}

func (p *Platform) StartWiFi(ctx context.Context, cmd []string) error {
	if len(cmd) == 0 {
		return nil
	}
	if err := p.executor.Start(ctx, cmd[0], cmd[1:]...); err != nil {
		return fmt.Errorf("failed to start wifi: %w", err)
	}
	log.Info().Strs("cmd", cmd).Msg("started wifi init")
	return nil
}

func (p *Platform) PowerOff(cmd []string) error {
	if len(cmd) == 0 {
		return ErrNoPowerOffCommand
	}

	path, err := exec.LookPath(cmd[0])
	if err != nil {
		return fmt.Errorf("failed to find power off command: %w", err)
	}

	p.syncFS()
	log.Info().Strs("cmd", cmd).Msg("powering off")
	if err := p.execFn(path, cmd, os.Environ()); err != nil {
		return fmt.Errorf("failed to exec %s: %w", path, err)
	}
	return nil
}
