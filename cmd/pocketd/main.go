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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ZaparooProject/zaparoo-pocket/internal/telemetry"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/config"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/service"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const deviceIDFile = "device_id"

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	configDir := flag.String(
		"config-dir",
		config.DefaultConfigDir,
		"directory holding config.toml, overridden by $"+config.CfgEnv,
	)
	console := flag.Bool(
		"console",
		false,
		"also write logs to stderr",
	)
	version := flag.Bool(
		"version",
		false,
		"print version and exit",
	)
	flag.Parse()

	if *version {
		_, _ = fmt.Printf("%s %s\n", config.AppName, config.AppVersion)
		return nil
	}

	cfg, err := config.NewConfig(*configDir, config.BaseDefaults)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	var logWriters []io.Writer
	if *console {
		logWriters = []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}}
	}
	if err := helpers.InitLogging(cfg.LogDir(), logWriters); err != nil {
		return fmt.Errorf("error initializing logging: %w", err)
	}
	helpers.SetDebugLogging(cfg.DebugLogging())

	pl := selectPlatform(cfg)

	if cfg.ErrorReporting() {
		deviceID, err := telemetry.DeviceID(
			afero.NewOsFs(),
			filepath.Join(filepath.Dir(cfg.Path()), deviceIDFile),
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to load device id")
		}
		if err := telemetry.Init(true, deviceID, config.AppVersion, pl.ID()); err != nil {
			log.Warn().Err(err).Msg("failed to initialize error reporting")
		}
	}
	defer telemetry.Close()

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			telemetry.Flush()
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	err = service.Start(context.Background(), pl, cfg, telemetry.Flush)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("supervisor stopped")
		return fmt.Errorf("supervisor stopped: %w", err)
	}
	return nil
}
