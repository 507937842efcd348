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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func classifyAll(c *Classifier, inGame bool, evs ...KeyEvent) []Intent {
	out := make([]Intent, 0, len(evs))
	for _, ev := range evs {
		out = append(out, c.Classify(ev, inGame))
	}
	return out
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		events []KeyEvent
		want   []Intent
		inGame bool
	}{
		{
			name:   "menu alone in game toggles",
			inGame: true,
			events: []KeyEvent{Press(KeyMenu), Release(KeyMenu)},
			want:   []Intent{IntentNone, IntentToggleMenu},
		},
		{
			name:   "menu alone outside game does nothing",
			inGame: false,
			events: []KeyEvent{Press(KeyMenu), Release(KeyMenu)},
			want:   []Intent{IntentNone, IntentNone},
		},
		{
			name:   "menu with other key does not toggle",
			inGame: true,
			events: []KeyEvent{Press(KeyMenu), Press(KeyA), Release(KeyA), Release(KeyMenu)},
			want:   []Intent{IntentNone, IntentNone, IntentNone, IntentNone},
		},
		{
			name:   "menu autorepeat breaks chord",
			inGame: true,
			events: []KeyEvent{Press(KeyMenu), Repeat(KeyMenu), Release(KeyMenu)},
			want:   []Intent{IntentNone, IntentNone, IntentNone},
		},
		{
			name:   "unknown key breaks chord",
			inGame: true,
			events: []KeyEvent{Press(KeyMenu), Press(KeyUnknown), Release(KeyMenu)},
			want:   []Intent{IntentNone, IntentNone, IntentNone},
		},
		{
			name:   "volume keys",
			events: []KeyEvent{Press(KeyVolUp), Repeat(KeyVolUp), Release(KeyVolUp), Press(KeyVolDown)},
			want:   []Intent{IntentVolumeUp, IntentVolumeUp, IntentNone, IntentVolumeDown},
		},
		{
			name:   "menu held turns volume into brightness",
			inGame: true,
			events: []KeyEvent{
				Press(KeyMenu), Press(KeyVolUp), Release(KeyVolUp),
				Repeat(KeyVolDown), Release(KeyMenu),
			},
			want: []Intent{
				IntentNone, IntentBrightnessUp, IntentNone,
				IntentBrightnessDown, IntentNone,
			},
		},
		{
			name:   "brightness works outside game",
			events: []KeyEvent{Press(KeyMenu), Press(KeyVolDown), Release(KeyMenu), Press(KeyVolDown)},
			want:   []Intent{IntentNone, IntentBrightnessDown, IntentNone, IntentVolumeDown},
		},
		{
			name:   "power needs autorepeat",
			events: []KeyEvent{Press(KeyPower), Release(KeyPower), Press(KeyPower), Repeat(KeyPower)},
			want:   []Intent{IntentNone, IntentNone, IntentNone, IntentPowerOff},
		},
		{
			name:   "release without press",
			inGame: true,
			events: []KeyEvent{Release(KeyMenu)},
			want:   []Intent{IntentNone},
		},
		{
			name:   "second release does not toggle twice",
			inGame: true,
			events: []KeyEvent{Press(KeyMenu), Release(KeyMenu), Release(KeyMenu)},
			want:   []Intent{IntentNone, IntentToggleMenu, IntentNone},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var c Classifier
			assert.Equal(t, tt.want, classifyAll(&c, tt.inGame, tt.events...))
		})
	}
}

func TestClassifierChordState(t *testing.T) {
	t.Parallel()

	var c Classifier
	c.Classify(Press(KeyMenu), true)
	assert.True(t, c.MenuPressed())
	assert.True(t, c.MenuPressedAlone())

	c.Classify(Press(KeyB), true)
	assert.True(t, c.MenuPressed())
	assert.False(t, c.MenuPressedAlone())

	c.Classify(Release(KeyMenu), true)
	assert.False(t, c.MenuPressed())
	assert.False(t, c.MenuPressedAlone())
}

func TestKeyString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "menu", KeyMenu.String())
	assert.Equal(t, "key(99)", Key(99).String())
	assert.Equal(t, "volup autorepeat", Repeat(KeyVolUp).String())
	assert.Equal(t, "toggle menu", IntentToggleMenu.String())
}

func TestKeymapLookup(t *testing.T) {
	t.Parallel()

	km := Keymap{1: KeyMenu}
	assert.Equal(t, KeyMenu, km.Lookup(1))
	assert.Equal(t, KeyUnknown, km.Lookup(2))
}
