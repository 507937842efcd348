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

// Controller is the child-control capability the supervisor drives. The
// POSIX implementation uses job-control signals; a platform without them
// could pause children through a cooperative protocol instead.
type Controller interface {
	// Spawn starts name and returns a handle whose Done channel closes
	// when the process exits.
	Spawn(name string, args ...string) (*Child, error)
	// Suspend pauses a running child.
	Suspend(c *Child) error
	// Resume continues a suspended child.
	Resume(c *Child) error
	// Terminate asks a child to exit gracefully. It does not wait.
	Terminate(c *Child) error
	// Kill forcibly stops a child and everything it started.
	Kill(c *Child) error
	// TryWait reports, without blocking, whether the child has exited.
	TryWait(c *Child) bool
}
