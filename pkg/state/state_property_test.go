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

package state

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/spf13/afero"
	"pgregory.net/rapid"
)

func daemonStateGen() *rapid.Generator[DaemonState] {
	return rapid.Custom(func(t *rapid.T) DaemonState {
		return DaemonState{
			Volume:     rapid.IntRange(MinVolume, MaxVolume).Draw(t, "volume"),
			Brightness: rapid.IntRange(MinBrightness, MaxBrightness).Draw(t, "brightness"),
		}
	})
}

// TestPropertyAddVolumeStaysInRange verifies volume is always clamped.
func TestPropertyAddVolumeStaysInRange(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		st := daemonStateGen().Draw(t, "state")
		delta := rapid.Int().Draw(t, "delta")

		st.AddVolume(delta)

		if st.Volume < MinVolume || st.Volume > MaxVolume {
			t.Fatalf("volume out of range: %d", st.Volume)
		}
	})
}

// TestPropertyAddBrightnessStaysInRange verifies brightness is always clamped.
func TestPropertyAddBrightnessStaysInRange(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		st := daemonStateGen().Draw(t, "state")
		delta := rapid.IntRange(-1000, 1000).Draw(t, "delta")

		st.AddBrightness(delta)

		if st.Brightness < MinBrightness || st.Brightness > MaxBrightness {
			t.Fatalf("brightness out of range: %d", st.Brightness)
		}
	})
}

// TestPropertyZeroDeltaIsNoop verifies adding zero never changes the state.
func TestPropertyZeroDeltaIsNoop(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		st := daemonStateGen().Draw(t, "state")
		before := st

		if st.AddVolume(0) || st.AddBrightness(0) || st != before {
			t.Fatalf("zero delta changed state: %+v -> %+v", before, st)
		}
	})
}

// TestPropertySaveLoadRoundTrip verifies every in-range state survives a save.
func TestPropertySaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		st := daemonStateGen().Draw(t, "state")
		store := NewStore(afero.NewMemMapFs(), testPath)

		if err := store.Save(st); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		loaded, err := store.Load()
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if loaded != st {
			t.Fatalf("round trip mismatch: %+v != %+v", loaded, st)
		}
	})
}

// invalidBytesGen never yields valid JSON.
func invalidBytesGen() *rapid.Generator[[]byte] {
	return rapid.Custom(func(t *rapid.T) []byte {
		return append([]byte{0xff}, rapid.SliceOf(rapid.Byte()).Draw(t, "data")...)
	})
}

// wrongShapeGen yields valid JSON that is not a complete settings object.
func wrongShapeGen() *rapid.Generator[[]byte] {
	literal := rapid.SampledFrom([]string{`null`, `[]`, `{}`, `"volume"`, `42`, `true`, `[1,2]`})
	missing := rapid.Custom(func(t *rapid.T) string {
		field := rapid.SampledFrom([]string{"volume", "brightness"}).Draw(t, "field")
		return fmt.Sprintf(`{%q:%d}`, field, rapid.IntRange(0, 100).Draw(t, "value"))
	})
	badType := rapid.Custom(func(t *rapid.T) string {
		bad := rapid.SampledFrom([]string{
			strconv.Quote(rapid.String().Draw(t, "s")), `1.5`, `true`, `[]`, `{}`,
		}).Draw(t, "bad")
		if rapid.Bool().Draw(t, "badVolume") {
			return fmt.Sprintf(`{"volume":%s,"brightness":50}`, bad)
		}
		return fmt.Sprintf(`{"volume":5,"brightness":%s}`, bad)
	})
	return rapid.Custom(func(t *rapid.T) []byte {
		return []byte(rapid.OneOf(literal, missing, badType).Draw(t, "json"))
	})
}

// TestPropertyCorruptBytesFallBackToDefaults verifies that invalid JSON and
// JSON of the wrong shape both load as the defaults and get removed.
func TestPropertyCorruptBytesFallBackToDefaults(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		data := rapid.OneOf(invalidBytesGen(), wrongShapeGen()).Draw(t, "data")
		fs := afero.NewMemMapFs()
		if err := afero.WriteFile(fs, testPath, data, 0o600); err != nil {
			t.Fatalf("write failed: %v", err)
		}

		st, err := NewStore(fs, testPath).Load()
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if st != Defaults() {
			t.Fatalf("expected defaults for %q, got %+v", data, st)
		}
		if exists, _ := afero.Exists(fs, testPath); exists {
			t.Fatalf("corrupt file %q was not removed", data)
		}
	})
}

// TestPropertyWrongShapeIsRejected checks decode itself so a wrong-shape
// object can never slip through as a partially filled state.
func TestPropertyWrongShapeIsRejected(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		data := wrongShapeGen().Draw(t, "data")
		if st, err := decode(data); err == nil {
			t.Fatalf("decode accepted %q as %+v", data, st)
		}
	})
}
