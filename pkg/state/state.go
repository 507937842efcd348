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

// Package state holds the daemon settings that survive restarts: volume and
// brightness. The settings file is rewritten whole after every change and a
// file that can't be read is discarded in favour of the defaults.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ZaparooProject/zaparoo-pocket/pkg/helpers"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	MinVolume         = 0
	MaxVolume         = 20
	MinBrightness     = 0
	MaxBrightness     = 100
	DefaultVolume     = 0
	DefaultBrightness = 50
)

var errMissingField = errors.New("state file is missing a field")

type DaemonState struct {
	Volume     int `json:"volume"`
	Brightness int `json:"brightness"`
}

func Defaults() DaemonState {
	return DaemonState{
		Volume:     DefaultVolume,
		Brightness: DefaultBrightness,
	}
}

// Clamp forces both values into their valid ranges.
func (s *DaemonState) Clamp() {
	s.Volume = clamp(s.Volume, MinVolume, MaxVolume)
	s.Brightness = clamp(s.Brightness, MinBrightness, MaxBrightness)
}

// AddVolume adjusts the volume by delta, clamped to [MinVolume, MaxVolume].
// Returns true if the value changed.
func (s *DaemonState) AddVolume(delta int) bool {
	prev := s.Volume
	s.Volume = clamp(s.Volume+delta, MinVolume, MaxVolume)
	return s.Volume != prev
}

// AddBrightness adjusts the brightness by delta, clamped to
// [MinBrightness, MaxBrightness]. Returns true if the value changed.
func (s *DaemonState) AddBrightness(delta int) bool {
	prev := s.Brightness
	s.Brightness = clamp(s.Brightness+delta, MinBrightness, MaxBrightness)
	return s.Brightness != prev
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// Store reads and writes the settings file.
type Store struct {
	fs   afero.Fs
	path string
}

func NewStore(fs afero.Fs, path string) *Store {
	return &Store{fs: fs, path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the saved settings. A missing file yields the defaults. A file
// that can't be read or parsed is logged, removed and replaced by the
// defaults; the only error returned is a failure to remove it.
func (s *Store) Load() (DaemonState, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, os.ErrNotExist) {
		log.Debug().Str("path", s.path).Msg("no saved state, using defaults")
		return Defaults(), nil
	}

	if err == nil {
		var st DaemonState
		if st, err = decode(data); err == nil {
			log.Debug().Int("volume", st.Volume).Int("brightness", st.Brightness).
				Msg("loaded saved state")
			return st, nil
		}
	}

	log.Warn().Err(err).Str("path", s.path).Msg("failed to read state file, removing")
	if rmErr := s.fs.Remove(s.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		return Defaults(), fmt.Errorf("failed to remove corrupt state file: %w", rmErr)
	}

	return Defaults(), nil
}

// decode parses a settings file. Both fields must be present.
func decode(data []byte) (DaemonState, error) {
	var raw struct {
		Volume     *int `json:"volume"`
		Brightness *int `json:"brightness"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return DaemonState{}, fmt.Errorf("failed to parse state: %w", err)
	}
	if raw.Volume == nil || raw.Brightness == nil {
		return DaemonState{}, errMissingField
	}
	st := DaemonState{Volume: *raw.Volume, Brightness: *raw.Brightness}
	st.Clamp()
	return st, nil
}

// Save atomically rewrites the settings file with st.
func (s *Store) Save(st DaemonState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := helpers.WriteFileAtomic(s.fs, s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}
