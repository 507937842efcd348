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

//go:build unix

package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZaparooProject/zaparoo-pocket/pkg/config"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/database/userdb"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/gameinfo"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/platforms"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/state"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/supervisor"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

func setupEnvironment(cfg *config.Instance) error {
	log.Info().Msg("creating state directories")
	dirs := []string{
		filepath.Dir(cfg.StateFile()),
		filepath.Dir(cfg.GameInfoFile()),
		filepath.Dir(cfg.UserDBFile()),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// openPlayTimeDB opens the play time database. Play time is best effort,
// so a failure only disables recording.
func openPlayTimeDB(ctx context.Context, cfg *config.Instance) *userdb.UserDB {
	log.Debug().Msg("opening user database")
	db, err := userdb.OpenUserDB(ctx, cfg.UserDBFile())
	if err != nil {
		log.Error().Err(err).Msg("failed to open user database, play time will not be recorded")
		return nil
	}
	return db
}

// Start runs the supervisor daemon on pl until power-off. beforePowerOff
// may be nil.
func Start(ctx context.Context, pl platforms.Platform, cfg *config.Instance, beforePowerOff func()) error {
	log.Info().Msgf("version: %s", config.AppVersion)
	log.Info().Msgf("platform: %s", pl.ID())

	if err := setupEnvironment(cfg); err != nil {
		log.Error().Err(err).Msg("error setting up environment")
		return err
	}

	var playTime supervisor.PlayTimeRecorder
	if db := openPlayTimeDB(ctx, cfg); db != nil {
		defer func() {
			if err := db.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing user database")
			}
		}()
		playTime = db
		beforePowerOff = closeBefore(db, beforePowerOff)
	}

	fs := afero.NewOsFs()
	d := NewDaemon(Options{
		Platform:       pl,
		Config:         cfg,
		Controller:     supervisor.NewPOSIXController(),
		State:          state.NewStore(fs, cfg.StateFile()),
		GameInfo:       gameinfo.NewStore(fs, cfg.GameInfoFile()),
		PlayTime:       playTime,
		BeforePowerOff: beforePowerOff,
	})
	return d.Run(ctx)
}

// closeBefore closes the database before the process image is replaced,
// since deferred calls never run across exec.
func closeBefore(db *userdb.UserDB, next func()) func() {
	return func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing user database")
		}
		if next != nil {
			next()
		}
	}
}
