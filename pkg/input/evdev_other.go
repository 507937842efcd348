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

//go:build !linux

package input

import (
	"errors"
	"fmt"
)

var errNoEvdev = errors.New("evdev input is only available on linux")

// Device is unavailable off Linux; OpenDevice always fails.
type Device struct {
	name string
}

func OpenDevice(path string, _ Keymap) (*Device, error) {
	return nil, fmt.Errorf("%s: %w", path, errNoEvdev)
}

func (d *Device) Name() string {
	return d.name
}

func (*Device) Next() (KeyEvent, error) {
	return KeyEvent{}, errNoEvdev
}

func (*Device) Close() error {
	return nil
}
