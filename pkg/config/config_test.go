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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigWritesDefaults(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested")

	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, CfgFile))
	require.NoError(t, err, "default config should be written to disk")

	assert.Equal(t, BaseDefaults.Paths.StateFile, cfg.StateFile())
	assert.Equal(t, BaseDefaults.Paths.GameInfoFile, cfg.GameInfoFile())
	assert.Equal(t, BaseDefaults.Binaries.Launcher, cfg.LauncherBinary())
	assert.Equal(t, BaseDefaults.Binaries.Menu, cfg.MenuBinary())
	assert.Equal(t, []string{"poweroff"}, cfg.PowerOffCommand())
	assert.Equal(t, 5*time.Second, cfg.TerminateTimeout())
	assert.Equal(t, PlatformAuto, cfg.Platform())
	assert.False(t, cfg.DebugLogging())
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := `config_schema = 1
debug_logging = true
platform = "simulator"

[binaries]
launcher = "/opt/launcher"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, CfgFile), []byte(data), 0o600))

	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	assert.True(t, cfg.DebugLogging())
	assert.Equal(t, PlatformSimulator, cfg.Platform())
	assert.Equal(t, "/opt/launcher", cfg.LauncherBinary())
	assert.Equal(t, BaseDefaults.Binaries.Menu, cfg.MenuBinary())
	assert.Equal(t, BaseDefaults.Input.Devices, cfg.InputDevices())
	assert.Equal(t, []string{"poweroff"}, cfg.PowerOffCommand())
}

func TestLoadOverridesLists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := `config_schema = 1

[binaries]
poweroff = ["/sbin/halt", "-p"]
wifi_init = ["/usr/bin/wifi", "up"]

[input]
devices = ["/dev/input/event1", "/dev/input/event2"]

[supervisor]
terminate_timeout = 0
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, CfgFile), []byte(data), 0o600))

	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	assert.Equal(t, []string{"/sbin/halt", "-p"}, cfg.PowerOffCommand())
	assert.Equal(t, []string{"/usr/bin/wifi", "up"}, cfg.WiFiInitCommand())
	assert.Equal(t, []string{"/dev/input/event1", "/dev/input/event2"}, cfg.InputDevices())
	assert.Equal(t, time.Duration(0), cfg.TerminateTimeout())
	assert.Equal(t, []string{"poweroff"}, BaseDefaults.Binaries.PowerOff, "defaults must not be mutated")
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		data          string
		errorContains string
	}{
		{
			name:          "schema mismatch",
			data:          "config_schema = 99\n",
			errorContains: "schema version mismatch",
		},
		{
			name:          "invalid toml",
			data:          "config_schema = [\n",
			errorContains: "failed to unmarshal config",
		},
		{
			name:          "unknown platform",
			data:          "config_schema = 1\nplatform = \"toaster\"\n",
			errorContains: "invalid config",
		},
		{
			name:          "negative terminate timeout",
			data:          "config_schema = 1\n[supervisor]\nterminate_timeout = -1\n",
			errorContains: "invalid config",
		},
		{
			name:          "empty launcher",
			data:          "config_schema = 1\n[binaries]\nlauncher = \"\"\n",
			errorContains: "invalid config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, CfgFile), []byte(tt.data), 0o600))

			_, err := NewConfig(dir, BaseDefaults)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestReloadPicksUpChanges(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)
	require.False(t, cfg.DebugLogging())

	cfg.SetDebugLogging(true)
	require.NoError(t, cfg.Save())

	reloaded, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)
	assert.True(t, reloaded.DebugLogging())
	assert.Equal(t, filepath.Join(dir, CfgFile), reloaded.Path())
}
