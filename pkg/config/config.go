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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ZaparooProject/zaparoo-pocket/pkg/helpers/syncutil"
	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

const (
	SchemaVersion     = 1
	PlatformAuto      = ""
	PlatformHandheld  = "handheld"
	PlatformSimulator = "simulator"
)

type Values struct {
	Platform       string     `toml:"platform" validate:"omitempty,oneof=handheld simulator"`
	Paths          Paths      `toml:"paths"`
	Binaries       Binaries   `toml:"binaries"`
	Input          Input      `toml:"input"`
	Hardware       Hardware   `toml:"hardware"`
	Supervisor     Supervisor `toml:"supervisor"`
	ConfigSchema   int        `toml:"config_schema"`
	DebugLogging   bool       `toml:"debug_logging"`
	ErrorReporting bool       `toml:"error_reporting"`
}

type Paths struct {
	StateFile    string `toml:"state_file" validate:"required"`
	GameInfoFile string `toml:"game_info_file" validate:"required"`
	UserDBFile   string `toml:"user_db_file" validate:"required"`
	LogDir       string `toml:"log_dir" validate:"required"`
}

// Binaries are read on each use except Launcher and Menu, which need a
// restart.
type Binaries struct {
	Launcher string   `toml:"launcher" validate:"required"`
	Menu     string   `toml:"menu" validate:"required"`
	PowerOff []string `toml:"poweroff" validate:"required,min=1,dive,required"`
	WiFiInit []string `toml:"wifi_init,omitempty"`
}

// Input devices are opened at startup; changes need a restart.
type Input struct {
	Devices []string `toml:"devices,omitempty"`
}

type Hardware struct {
	BacklightDir string `toml:"backlight_dir,omitempty"`
	MixerControl string `toml:"mixer_control,omitempty"`
}

type Supervisor struct {
	// TerminateTimeout is in seconds. Zero waits for children forever.
	// Read at startup only.
	TerminateTimeout int `toml:"terminate_timeout" validate:"min=0"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Paths: Paths{
		StateFile:    filepath.Join(DefaultConfigDir, "state", "pocketd.json"),
		GameInfoFile: filepath.Join(DefaultConfigDir, "state", "game_info.json"),
		UserDBFile:   filepath.Join(DefaultConfigDir, "user.db"),
		LogDir:       filepath.Join(DefaultConfigDir, "logs"),
	},
	Binaries: Binaries{
		Launcher: filepath.Join(DefaultConfigDir, "bin", "pocket-launcher"),
		Menu:     filepath.Join(DefaultConfigDir, "bin", "pocket-menu"),
		PowerOff: []string{"poweroff"},
	},
	Input: Input{
		Devices: []string{"/dev/input/event0"},
	},
	Hardware: Hardware{
		BacklightDir: "/sys/class/backlight/backlight",
		MixerControl: "Master",
	},
	Supervisor: Supervisor{
		TerminateTimeout: 5,
	},
}

var validate = validator.New(validator.WithRequiredStructEnabled())

type Instance struct {
	cfgPath  string
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

// NewConfig loads the config file from $POCKET_CFG or configDir, writing the
// defaults to disk first if no file exists yet.
//
//nolint:gocritic // config struct copied for immutability
func NewConfig(configDir string, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)
	log.Debug().Msgf("env config path: %s", cfgPath)

	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, CfgFile)
	}

	cfg := Instance{
		cfgPath:  cfgPath,
		vals:     defaults,
		defaults: defaults,
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		log.Info().Msg("saving new default config to disk")

		err := os.MkdirAll(filepath.Dir(cfgPath), 0o750)
		if err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		err = cfg.Save()
		if err != nil {
			return nil, err
		}
	}

	err := cfg.Load()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := os.ReadFile(c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshal on top of defaults so keys missing from the file keep
	// their default values.
	newVals := c.defaults
	newVals.Binaries.PowerOff = nil
	newVals.Input.Devices = nil
	err = toml.Unmarshal(data, &newVals)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if newVals.Binaries.PowerOff == nil {
		newVals.Binaries.PowerOff = c.defaults.Binaries.PowerOff
	}
	if newVals.Input.Devices == nil {
		newVals.Input.Devices = c.defaults.Input.Devices
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return errors.New("schema version mismatch")
	}

	if err := validate.Struct(&newVals); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	c.vals = newVals
	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	c.vals.ConfigSchema = SchemaVersion

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Path returns the location of the loaded config file.
func (c *Instance) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfgPath
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
}

func (c *Instance) ErrorReporting() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.ErrorReporting
}

// Platform returns the configured platform ID, or PlatformAuto.
func (c *Instance) Platform() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Platform
}

func (c *Instance) StateFile() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Paths.StateFile
}

func (c *Instance) GameInfoFile() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Paths.GameInfoFile
}

func (c *Instance) UserDBFile() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Paths.UserDBFile
}

func (c *Instance) LogDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Paths.LogDir
}

func (c *Instance) LauncherBinary() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Binaries.Launcher
}

func (c *Instance) MenuBinary() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Binaries.Menu
}

// PowerOffCommand returns the command and arguments that replace the daemon
// at the end of the power-off sequence.
func (c *Instance) PowerOffCommand() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.vals.Binaries.PowerOff...)
}

// WiFiInitCommand returns the optional Wi-Fi init command, or nil.
func (c *Instance) WiFiInitCommand() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.vals.Binaries.WiFiInit...)
}

func (c *Instance) InputDevices() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.vals.Input.Devices...)
}

func (c *Instance) BacklightDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Hardware.BacklightDir
}

func (c *Instance) MixerControl() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Hardware.MixerControl
}

// TerminateTimeout is how long a child gets to exit after SIGTERM before it
// is killed. Zero means wait forever.
func (c *Instance) TerminateTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.vals.Supervisor.TerminateTimeout) * time.Second
}
