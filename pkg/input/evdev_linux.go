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

package input

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

const (
	evKey = 0x01

	valueReleased   = 0
	valuePressed    = 1
	valueAutorepeat = 2
)

// rawEvent mirrors struct input_event from linux/input.h.
type rawEvent struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

// Device reads key events from a Linux evdev node.
type Device struct {
	r      io.ReadCloser
	keymap Keymap
	name   string
}

func OpenDevice(path string, keymap Keymap) (*Device, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from config
	if err != nil {
		return nil, fmt.Errorf("failed to open input device %s: %w", path, err)
	}
	return NewDevice(f, path, keymap), nil
}

// NewDevice wraps an already open event stream.
func NewDevice(r io.ReadCloser, name string, keymap Keymap) *Device {
	return &Device{
		r:      r,
		name:   name,
		keymap: keymap,
	}
}

func (d *Device) Name() string {
	return d.name
}

// Next blocks until the next key event. Non-key events such as EV_SYN are
// skipped. Codes missing from the keymap are returned as KeyUnknown so they
// still count as "another key" for chord tracking. io.EOF is returned when
// the stream ends.
func (d *Device) Next() (KeyEvent, error) {
	for {
		var raw rawEvent
		err := binary.Read(d.r, binary.NativeEndian, &raw)
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return KeyEvent{}, io.EOF
		} else if err != nil {
			return KeyEvent{}, err //nolint:wrapcheck // io.EOF must pass through
		}

		if raw.Type != evKey {
			continue
		}

		var action Action
		switch raw.Value {
		case valueReleased:
			action = Released
		case valuePressed:
			action = Pressed
		case valueAutorepeat:
			action = Autorepeat
		default:
			log.Debug().Msgf("%s: ignoring key value %d", d.name, raw.Value)
			continue
		}

		return KeyEvent{
			Key:    d.keymap.Lookup(raw.Code),
			Action: action,
		}, nil
	}
}

func (d *Device) Close() error {
	if err := d.r.Close(); err != nil {
		return fmt.Errorf("failed to close input device %s: %w", d.name, err)
	}
	return nil
}
