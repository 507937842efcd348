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

package supervisor

import (
	"context"
	"fmt"
	"sync"

	"github.com/looplab/fsm"
	"github.com/rs/zerolog/log"
)

// Signal states of a supervised child.
const (
	StateRunning = "running"
	StateStopped = "stopped"
	StateExited  = "exited"
)

const (
	eventStop = "stop"
	eventCont = "cont"
	eventExit = "exit"
)

// Child is a handle to a spawned process. It is created by a Controller and
// marked exited by whatever reaps the process.
type Child struct {
	err   error
	state *fsm.FSM
	done  chan struct{}
	Name  string
	once  sync.Once
	Pid   int
}

func NewChild(pid int, name string) *Child {
	c := &Child{
		Pid:  pid,
		Name: name,
		done: make(chan struct{}),
	}
	c.state = fsm.NewFSM(
		StateRunning,
		fsm.Events{
			{Name: eventStop, Src: []string{StateRunning}, Dst: StateStopped},
			{Name: eventCont, Src: []string{StateStopped}, Dst: StateRunning},
			{Name: eventExit, Src: []string{StateRunning, StateStopped}, Dst: StateExited},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				log.Debug().
					Str("name", c.Name).
					Int("pid", c.Pid).
					Msgf("child state %s -> %s", e.Src, e.Dst)
			},
		},
	)
	return c
}

// String identifies the child by name and pid. Formatting a Child never
// reads its mutable fields, so it is safe while the reaper marks it exited.
func (c *Child) String() string {
	return fmt.Sprintf("%s[%d]", c.Name, c.Pid)
}

// Done is closed once the process has been reaped.
func (c *Child) Done() <-chan struct{} {
	return c.done
}

// Err returns the wait result. Only meaningful after Done is closed.
func (c *Child) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

func (c *Child) State() string {
	return c.state.Current()
}

func (c *Child) Exited() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// MarkExited records the wait result and closes Done. Later calls are
// ignored.
func (c *Child) MarkExited(err error) {
	c.once.Do(func() {
		c.err = err
		c.transition(eventExit)
		close(c.done)
	})
}

func (c *Child) transition(event string) {
	if err := c.state.Event(context.Background(), event); err != nil {
		log.Debug().Err(err).Str("name", c.Name).Int("pid", c.Pid).Msgf("ignored %s event", event)
	}
}
