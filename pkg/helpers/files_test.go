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

package helpers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	t.Run("creates_missing_directories", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		path := "/mnt/SDCARD/.pocket/state/pocketd.json"

		require.NoError(t, WriteFileAtomic(fs, path, []byte(`{"volume":3}`), 0o600))

		data, err := afero.ReadFile(fs, path)
		require.NoError(t, err)
		assert.JSONEq(t, `{"volume":3}`, string(data))
	})

	t.Run("replaces_existing_contents", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		path := "/data/file.json"
		require.NoError(t, afero.WriteFile(fs, path, []byte("old contents that are longer"), 0o600))

		require.NoError(t, WriteFileAtomic(fs, path, []byte("new"), 0o600))

		data, err := afero.ReadFile(fs, path)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})

	t.Run("leaves_no_temp_files_behind", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		require.NoError(t, WriteFileAtomic(fs, "/data/file.json", []byte("x"), 0o600))

		entries, err := afero.ReadDir(fs, "/data")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "file.json", entries[0].Name())
	})

	t.Run("real_filesystem", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewOsFs()
		path := filepath.Join(t.TempDir(), "file.json")

		require.NoError(t, WriteFileAtomic(fs, path, []byte("x"), 0o600))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})
}

func TestFileExists(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	assert.False(t, FileExists(fs, "/tmp/game.json"))

	require.NoError(t, afero.WriteFile(fs, "/tmp/game.json", []byte("{}"), 0o600))
	assert.True(t, FileExists(fs, "/tmp/game.json"))
}

func TestEnsureLogDir(t *testing.T) {
	t.Parallel()

	logDir := filepath.Join(t.TempDir(), "logs", "nested")

	require.NoError(t, EnsureLogDir(logDir))

	info, err := os.Stat(logDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o750), info.Mode().Perm())
}

func TestEnsureLogDirInvalidPath(t *testing.T) {
	t.Parallel()

	err := EnsureLogDir("/proc/invalid\x00path")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create log directory")
}
