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

//go:build unix

package supervisor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/process"
	"golang.org/x/sys/unix"
)

// POSIXController controls children with SIGSTOP, SIGCONT and SIGTERM.
type POSIXController struct{}

func NewPOSIXController() *POSIXController {
	return &POSIXController{}
}

func (*POSIXController) Spawn(name string, args ...string) (*Child, error) {
	cmd := exec.Command(name, args...) //nolint:gosec // binaries come from config and GameInfo
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to spawn %s: %w", name, err)
	}

	child := NewChild(cmd.Process.Pid, name)
	log.Info().Str("name", name).Strs("args", args).Int("pid", child.Pid).Msg("spawned child")

	go func() {
		err := cmd.Wait()
		log.Debug().Err(err).Str("name", name).Int("pid", child.Pid).Msg("child reaped")
		child.MarkExited(err)
	}()

	return child, nil
}

func (p *POSIXController) Suspend(c *Child) error {
	return p.signal(c, unix.SIGSTOP)
}

func (p *POSIXController) Resume(c *Child) error {
	return p.signal(c, unix.SIGCONT)
}

func (p *POSIXController) Terminate(c *Child) error {
	return p.signal(c, unix.SIGTERM)
}

// Kill sends SIGKILL to the child and all of its descendants, children
// before parents.
func (p *POSIXController) Kill(c *Child) error {
	if p.TryWait(c) {
		return nil
	}

	procs := getProcessTree(int32(c.Pid)) //nolint:gosec // PID fits in int32
	if len(procs) == 0 {
		log.Debug().Int("pid", c.Pid).Msg("process not found, may have already exited")
		return nil
	}

	log.Debug().Int("count", len(procs)).Int("rootPid", c.Pid).Msg("killing process tree")
	killProcessTree(procs)
	return nil
}

func (*POSIXController) TryWait(c *Child) bool {
	return c.Exited()
}

// signal delivers sig to a live child. A child that has been reaped, or a
// pid that no longer resolves, is a no-op.
func (p *POSIXController) signal(c *Child, sig syscall.Signal) error {
	if p.TryWait(c) {
		log.Debug().Int("pid", c.Pid).Msgf("child already exited, not sending %s", sig)
		return nil
	}

	exists, err := process.PidExists(int32(c.Pid)) //nolint:gosec // PID fits in int32
	if err != nil || !exists {
		log.Debug().Err(err).Int("pid", c.Pid).Msgf("pid not found, not sending %s", sig)
		return nil
	}

	if err := unix.Kill(c.Pid, sig); err != nil {
		if errors.Is(err, unix.ESRCH) {
			log.Debug().Int("pid", c.Pid).Msgf("pid vanished before %s", sig)
			return nil
		}
		return fmt.Errorf("failed to send %s to %s (pid %d): %w", sig, c.Name, c.Pid, err)
	}

	log.Debug().Str("name", c.Name).Int("pid", c.Pid).Msgf("sent %s", sig)
	return nil
}

// getProcessTree returns the process and all its descendants.
// Descendants are ordered before their parents.
func getProcessTree(pid int32) []*process.Process {
	proc, err := process.NewProcess(pid)
	if err != nil {
		return nil
	}

	descendants := getAllDescendants(proc)
	result := make([]*process.Process, 0, len(descendants)+1)
	result = append(result, descendants...)
	result = append(result, proc)
	return result
}

func getAllDescendants(proc *process.Process) []*process.Process {
	children, err := proc.Children()
	if err != nil || len(children) == 0 {
		return nil
	}
	descendants := make([]*process.Process, 0, len(children))
	for _, child := range children {
		descendants = append(descendants, getAllDescendants(child)...)
		descendants = append(descendants, child)
	}
	return descendants
}

func killProcessTree(procs []*process.Process) {
	for _, proc := range procs {
		if err := proc.Kill(); err != nil {
			log.Debug().Err(err).Int32("pid", proc.Pid).Msg("failed to kill process")
		} else {
			log.Debug().Int32("pid", proc.Pid).Msg("sent SIGKILL to process")
		}
	}
}
