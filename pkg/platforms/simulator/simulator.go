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

// Package simulator is an off-device platform for running the daemon on a
// desktop. Hardware calls are logged and power-off exits the process.
package simulator

import (
	"context"
	"os"

	"github.com/ZaparooProject/zaparoo-pocket/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/input"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/platforms"
	"github.com/rs/zerolog/log"
)

type Platform struct {
	exit       func(code int)
	mu         syncutil.Mutex
	volume     int
	brightness int
}

func NewPlatform() *Platform {
	return &Platform{exit: os.Exit}
}

func (*Platform) ID() string {
	return platforms.PlatformIDSimulator
}

func (*Platform) Keymap() input.Keymap {
	return platforms.DefaultKeymap()
}

func (p *Platform) SetVolume(_ context.Context, volume int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = volume
	log.Info().Int("volume", volume).Msg("simulator: set volume")
	return nil
}

func (p *Platform) SetBrightness(brightness int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.brightness = brightness
	log.Info().Int("brightness", brightness).Msg("simulator: set brightness")
	return nil
}

func (*Platform) StartWiFi(_ context.Context, cmd []string) error {
	log.Info().Strs("cmd", cmd).Msg("simulator: skipping wifi init")
	return nil
}

// PowerOff exits the daemon instead of replacing it.
func (p *Platform) PowerOff(cmd []string) error {
	log.Info().Strs("cmd", cmd).Msg("simulator: power off, exiting")
	p.exit(0)
	return nil
}

// Volume returns the last applied volume.
func (p *Platform) Volume() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Brightness returns the last applied brightness.
func (p *Platform) Brightness() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.brightness
}
