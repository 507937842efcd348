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

package service

import (
	"fmt"
	"os"

	"github.com/ZaparooProject/zaparoo-pocket/pkg/input"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/supervisor"
)

type EventKind int

const (
	EventKey EventKind = iota
	EventMainExited
	EventMenuExited
	EventSignal
	EventConfigChanged
)

func (k EventKind) String() string {
	switch k {
	case EventKey:
		return "key"
	case EventMainExited:
		return "main exited"
	case EventMenuExited:
		return "menu exited"
	case EventSignal:
		return "signal"
	case EventConfigChanged:
		return "config changed"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is a tagged message from one of the loop's sources. Only the field
// matching Kind is set.
type Event struct {
	Signal os.Signal
	Child  *supervisor.Child
	Key    input.KeyEvent
	Kind   EventKind
}
