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

package main

import (
	"github.com/ZaparooProject/zaparoo-pocket/pkg/config"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/platforms"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/platforms/handheld"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/platforms/simulator"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// selectPlatform honours the configured platform, otherwise picks the
// handheld when its backlight is present.
func selectPlatform(cfg *config.Instance) platforms.Platform {
	fs := afero.NewOsFs()
	id := cfg.Platform()
	if id == config.PlatformAuto {
		if cfg.BacklightDir() != "" && helpers.FileExists(fs, cfg.BacklightDir()) {
			id = config.PlatformHandheld
		} else {
			id = config.PlatformSimulator
		}
		log.Info().Msgf("detected platform: %s", id)
	}

	if id == config.PlatformHandheld {
		return handheld.NewPlatform(cfg, fs, &command.RealExecutor{})
	}
	return simulator.NewPlatform()
}
