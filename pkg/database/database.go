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

package database

import (
	"time"
)

// PlayTimeEntry is the accumulated play time of one game.
type PlayTimeEntry struct {
	LastPlayed time.Time
	Path       string
	PlayTime   time.Duration
	PlayCount  int
}

// PlaySession is a single finished play session.
type PlaySession struct {
	EndTime  time.Time
	ID       string
	Path     string
	Duration time.Duration
}
