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

// Package platforms defines the hardware capabilities the daemon depends on.
// One implementation is selected at startup and used for the whole run.
package platforms

import (
	"context"
	"errors"

	"github.com/ZaparooProject/zaparoo-pocket/pkg/input"
)

var ErrNotSupported = errors.New("operation not supported on this platform")

const (
	PlatformIDHandheld  = "handheld"
	PlatformIDSimulator = "simulator"
)

// Platform is the hardware surface of a device: audio, backlight, radio and
// power. Errors returned by the setters are user visible (a half-applied
// volume change) and are not masked by callers.
type Platform interface {
	// ID returns the unique ID of this platform.
	ID() string
	// Keymap maps evdev key codes from the built-in controls.
	Keymap() input.Keymap
	// SetVolume applies a volume in the DaemonState range.
	SetVolume(ctx context.Context, volume int) error
	// SetBrightness applies a backlight brightness percentage.
	SetBrightness(brightness int) error
	// StartWiFi starts the radio bring-up command without waiting for it.
	StartWiFi(ctx context.Context, cmd []string) error
	// PowerOff flushes filesystems and replaces the current process with
	// the power-off command. It only returns on failure.
	PowerOff(cmd []string) error
}

// Linux input event codes used by the handheld's built-in controls.
const (
	codeEsc        = 1
	codeBackspace  = 14
	codeTab        = 15
	codeE          = 18
	codeT          = 20
	codeEnter      = 28
	codeLeftCtrl   = 29
	codeLeftShift  = 42
	codeLeftAlt    = 56
	codeSpace      = 57
	codeRightCtrl  = 97
	codeUp         = 103
	codeLeft       = 105
	codeRight      = 106
	codeDown       = 108
	codeVolumeDown = 114
	codeVolumeUp   = 115
	codePower      = 116
)

// DefaultKeymap returns the key layout of the handheld's gpio-keys driver,
// which reports buttons as keyboard codes.
func DefaultKeymap() input.Keymap {
	return input.Keymap{
		codeUp:         input.KeyUp,
		codeDown:       input.KeyDown,
		codeLeft:       input.KeyLeft,
		codeRight:      input.KeyRight,
		codeSpace:      input.KeyA,
		codeLeftCtrl:   input.KeyB,
		codeLeftShift:  input.KeyX,
		codeLeftAlt:    input.KeyY,
		codeEnter:      input.KeyStart,
		codeRightCtrl:  input.KeySelect,
		codeE:          input.KeyL,
		codeT:          input.KeyR,
		codeTab:        input.KeyL2,
		codeBackspace:  input.KeyR2,
		codeEsc:        input.KeyMenu,
		codePower:      input.KeyPower,
		codeVolumeUp:   input.KeyVolUp,
		codeVolumeDown: input.KeyVolDown,
	}
}
