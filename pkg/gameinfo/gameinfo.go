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

// Package gameinfo manages the record of the game currently being played.
// The file is shared with the launcher, which writes it before starting a
// game, and the menu overlay, which reads it to show the game's name. Its
// presence on disk is what "in game" means.
package gameinfo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ZaparooProject/zaparoo-pocket/pkg/helpers"
	"github.com/spf13/afero"
)

var ErrNoCommand = errors.New("game info has no launch command")

type GameInfo struct {
	StartTime time.Time `json:"start_time"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Core      string    `json:"core,omitempty"`
	Image     string    `json:"image,omitempty"`
	Command   string    `json:"command"`
	Args      []string  `json:"args,omitempty"`
}

// PlayTime is the time elapsed between the session start and now. A start
// time in the future (clock changed mid-session) counts as zero.
func (g *GameInfo) PlayTime(now time.Time) time.Duration {
	if g.StartTime.IsZero() || now.Before(g.StartTime) {
		return 0
	}
	return now.Sub(g.StartTime)
}

// CommandLine returns the program and arguments used to (re)launch the game.
func (g *GameInfo) CommandLine() (string, []string, error) {
	if g.Command == "" {
		return "", nil, ErrNoCommand
	}
	return g.Command, append([]string(nil), g.Args...), nil
}

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

// Exists reports whether a game session is in progress.
func (s *Store) Exists() bool {
	return helpers.FileExists(s.fs, s.path)
}

// Load returns the current game info, or nil if no game is running.
func (s *Store) Load() (*GameInfo, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read game info: %w", err)
	}

	var info GameInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse game info: %w", err)
	}
	return &info, nil
}

func (s *Store) Save(info *GameInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal game info: %w", err)
	}
	if err := helpers.WriteFileAtomic(s.fs, s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save game info: %w", err)
	}
	return nil
}

// Delete ends the game session. Deleting a missing file is not an error.
func (s *Store) Delete() error {
	err := s.fs.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete game info: %w", err)
	}
	return nil
}
