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

// Package input turns raw key events from the device's buttons into the
// intents the daemon acts on.
package input

import "fmt"

type Key int

const (
	KeyUnknown Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyA
	KeyB
	KeyX
	KeyY
	KeyStart
	KeySelect
	KeyL
	KeyR
	KeyL2
	KeyR2
	KeyMenu
	KeyPower
	KeyVolUp
	KeyVolDown
)

var keyNames = map[Key]string{
	KeyUnknown: "unknown",
	KeyUp:      "up",
	KeyDown:    "down",
	KeyLeft:    "left",
	KeyRight:   "right",
	KeyA:       "a",
	KeyB:       "b",
	KeyX:       "x",
	KeyY:       "y",
	KeyStart:   "start",
	KeySelect:  "select",
	KeyL:       "l",
	KeyR:       "r",
	KeyL2:      "l2",
	KeyR2:      "r2",
	KeyMenu:    "menu",
	KeyPower:   "power",
	KeyVolUp:   "volup",
	KeyVolDown: "voldown",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("key(%d)", int(k))
}

type Action int

const (
	Released Action = iota
	Pressed
	Autorepeat
)

func (a Action) String() string {
	switch a {
	case Released:
		return "released"
	case Pressed:
		return "pressed"
	case Autorepeat:
		return "autorepeat"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

type KeyEvent struct {
	Key    Key
	Action Action
}

func (e KeyEvent) String() string {
	return e.Key.String() + " " + e.Action.String()
}

func Press(k Key) KeyEvent {
	return KeyEvent{Key: k, Action: Pressed}
}

func Release(k Key) KeyEvent {
	return KeyEvent{Key: k, Action: Released}
}

func Repeat(k Key) KeyEvent {
	return KeyEvent{Key: k, Action: Autorepeat}
}

// Keymap maps Linux evdev key codes to device buttons.
type Keymap map[uint16]Key

// Lookup returns the button for code, or KeyUnknown.
func (m Keymap) Lookup(code uint16) Key {
	if k, ok := m[code]; ok {
		return k
	}
	return KeyUnknown
}
