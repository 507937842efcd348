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

package input

import "fmt"

type Intent int

const (
	IntentNone Intent = iota
	IntentVolumeUp
	IntentVolumeDown
	IntentBrightnessUp
	IntentBrightnessDown
	IntentToggleMenu
	IntentPowerOff
)

func (i Intent) String() string {
	switch i {
	case IntentNone:
		return "none"
	case IntentVolumeUp:
		return "volume up"
	case IntentVolumeDown:
		return "volume down"
	case IntentBrightnessUp:
		return "brightness up"
	case IntentBrightnessDown:
		return "brightness down"
	case IntentToggleMenu:
		return "toggle menu"
	case IntentPowerOff:
		return "power off"
	default:
		return fmt.Sprintf("intent(%d)", int(i))
	}
}

// Classifier tracks the Menu key chord. Holding Menu turns the volume keys
// into brightness keys; releasing Menu without having touched any other key
// in between asks for the in-game menu.
//
// A Classifier is not safe for concurrent use. It lives in the event loop.
type Classifier struct {
	menuPressed      bool
	menuPressedAlone bool
}

// Classify updates the chord state for ev and returns what it means. inGame
// gates the menu toggle: outside a game releasing Menu does nothing.
func (c *Classifier) Classify(ev KeyEvent, inGame bool) Intent {
	switch {
	case ev.Key == KeyMenu && ev.Action == Pressed:
		c.menuPressed = true
		c.menuPressedAlone = true
	case ev.Key == KeyMenu && ev.Action == Released:
	default:
		// any other event, including Menu autorepeat, breaks the chord
		c.menuPressedAlone = false
	}

	switch ev.Key {
	case KeyVolUp, KeyVolDown:
		if ev.Action == Released {
			return IntentNone
		}
		up := ev.Key == KeyVolUp
		switch {
		case c.menuPressed && up:
			return IntentBrightnessUp
		case c.menuPressed:
			return IntentBrightnessDown
		case up:
			return IntentVolumeUp
		default:
			return IntentVolumeDown
		}
	case KeyPower:
		if ev.Action == Autorepeat {
			return IntentPowerOff
		}
	case KeyMenu:
		if ev.Action != Released {
			return IntentNone
		}
		c.menuPressed = false
		if inGame && c.menuPressedAlone {
			c.menuPressedAlone = false
			return IntentToggleMenu
		}
	default:
	}

	return IntentNone
}

// MenuPressed reports whether the Menu key is currently held.
func (c *Classifier) MenuPressed() bool {
	return c.menuPressed
}

// MenuPressedAlone reports whether Menu is held with no other key since.
func (c *Classifier) MenuPressedAlone() bool {
	return c.menuPressedAlone
}
