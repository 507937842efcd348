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

// Package supervisor keeps exactly one main child alive (the launcher or the
// resumed game) and stacks the in-game menu on top of a suspended main.
//
// A Supervisor is not safe for concurrent use. Every method is called from
// the daemon's event loop, one handler at a time.
package supervisor

import (
	"errors"
	"fmt"
	"time"

	"github.com/ZaparooProject/zaparoo-pocket/pkg/gameinfo"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/helpers"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// KillTimeout bounds the wait for a child after SIGKILL.
const KillTimeout = 2 * time.Second

var ErrNoMain = errors.New("main process not running")

type Role int

const (
	RoleMain Role = iota
	RoleMenu
)

func (r Role) String() string {
	if r == RoleMenu {
		return "menu"
	}
	return "main"
}

// PlayTimeRecorder stores finished play sessions.
type PlayTimeRecorder interface {
	AddPlayTime(path string, playTime time.Duration) error
}

type Options struct {
	Controller Controller
	GameInfo   *gameinfo.Store
	// PlayTime may be nil, in which case play time is not recorded.
	PlayTime PlayTimeRecorder
	// Clock defaults to the real clock.
	Clock clockwork.Clock
	// Watch is called for every spawned child so the caller can wait on
	// its exit.
	Watch            func(role Role, c *Child)
	LauncherBin      string
	MenuBin          string
	TerminateTimeout time.Duration
}

type Supervisor struct {
	ctrl             Controller
	games            *gameinfo.Store
	playTime         PlayTimeRecorder
	clock            clockwork.Clock
	watch            func(role Role, c *Child)
	main             *Child
	menu             *Child
	launcherBin      string
	menuBin          string
	terminateTimeout time.Duration
	terminating      bool
}

func New(opts Options) *Supervisor {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	watch := opts.Watch
	if watch == nil {
		watch = func(Role, *Child) {}
	}
	return &Supervisor{
		ctrl:             opts.Controller,
		games:            opts.GameInfo,
		playTime:         opts.PlayTime,
		clock:            clock,
		watch:            watch,
		launcherBin:      opts.LauncherBin,
		menuBin:          opts.MenuBin,
		terminateTimeout: opts.TerminateTimeout,
	}
}

func (s *Supervisor) Main() *Child {
	return s.main
}

func (s *Supervisor) Menu() *Child {
	return s.menu
}

// InGame reports whether a GameInfo file exists.
func (s *Supervisor) InGame() bool {
	return s.games.Exists()
}

func (s *Supervisor) Terminating() bool {
	return s.terminating
}

// MarkTerminating stops main from being respawned when it exits.
func (s *Supervisor) MarkTerminating() {
	s.terminating = true
}

// loadGame returns the current GameInfo. A corrupt file is removed so the
// launcher comes back instead of a crash loop.
func (s *Supervisor) loadGame() *gameinfo.GameInfo {
	info, err := s.games.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load game info, removing")
		if err := s.games.Delete(); err != nil {
			log.Error().Err(err).Msg("failed to remove game info")
		}
		return nil
	}
	return info
}

// SpawnMain starts the resumed game if GameInfo exists, otherwise the
// launcher. A spawn failure is returned and is fatal to the daemon.
func (s *Supervisor) SpawnMain() error {
	if info := s.loadGame(); info != nil {
		name, args, err := info.CommandLine()
		if err != nil {
			log.Warn().Err(err).Str("path", info.Path).Msg("cannot resume game")
			if err := s.games.Delete(); err != nil {
				return fmt.Errorf("failed to remove game info: %w", err)
			}
		} else {
			info.StartTime = s.clock.Now()
			if err := s.games.Save(info); err != nil {
				return fmt.Errorf("failed to save game info: %w", err)
			}
			log.Info().Str("name", info.Name).Str("path", info.Path).Msg("resuming game")
			return s.spawn(RoleMain, name, args...)
		}
	}

	return s.spawn(RoleMain, s.launcherBin)
}

func (s *Supervisor) spawn(role Role, name string, args ...string) error {
	child, err := s.ctrl.Spawn(name, args...)
	if err != nil {
		return fmt.Errorf("failed to spawn %s: %w", role, err)
	}

	if role == RoleMenu {
		s.menu = child
	} else {
		s.main = child
	}
	s.watch(role, child)
	return nil
}

// OnMainExited handles the exit of c. Exits of children that are no longer
// main, and any exit during power-off, are ignored.
func (s *Supervisor) OnMainExited(c *Child) error {
	if c != s.main {
		log.Debug().Int("pid", c.Pid).Msg("ignoring exit of stale main")
		return nil
	}
	if s.terminating {
		return nil
	}

	log.Info().Err(c.Err()).Str("name", c.Name).Int("pid", c.Pid).
		Msg("main process terminated, recording play time")

	if s.menu != nil {
		menu := s.menu
		s.menu = nil
		if err := s.Terminate(menu); err != nil {
			log.Warn().Err(err).Msg("failed to terminate orphaned menu")
		}
	}

	s.RecordPlayTime()
	if err := s.games.Delete(); err != nil {
		return fmt.Errorf("failed to remove game info: %w", err)
	}
	return s.SpawnMain()
}

// OnMenuExited clears the menu slot and resumes main.
func (s *Supervisor) OnMenuExited(c *Child) error {
	if c != s.menu {
		log.Debug().Int("pid", c.Pid).Msg("ignoring exit of stale menu")
		return nil
	}
	log.Info().Str("name", c.Name).Int("pid", c.Pid).Msg("menu process terminated, resuming game")
	return s.menuClosed()
}

func (s *Supervisor) menuClosed() error {
	s.menu = nil
	if s.main == nil || s.main.State() != StateStopped {
		return nil
	}
	if err := s.ctrl.Resume(s.main); err != nil {
		return fmt.Errorf("failed to resume main: %w", err)
	}
	s.main.transition(eventCont)
	return nil
}

// ToggleMenu opens the menu over a suspended main, or closes an open menu
// and resumes main.
func (s *Supervisor) ToggleMenu() error {
	if s.main == nil {
		return ErrNoMain
	}

	if s.menu != nil {
		if err := s.Terminate(s.menu); err != nil {
			return err
		}
		return s.menuClosed()
	}

	if err := s.ctrl.Suspend(s.main); err != nil {
		return fmt.Errorf("failed to suspend main: %w", err)
	}
	s.main.transition(eventStop)

	if err := s.spawn(RoleMenu, s.menuBin); err != nil {
		if rerr := s.ctrl.Resume(s.main); rerr == nil {
			s.main.transition(eventCont)
		}
		return err
	}
	return nil
}

// Terminate sends a graceful terminate to c and blocks until it exits. With
// a non-zero terminate timeout a child that ignores the request has its
// process tree killed.
func (s *Supervisor) Terminate(c *Child) error {
	if s.ctrl.TryWait(c) {
		return nil
	}

	if err := s.ctrl.Terminate(c); err != nil {
		return fmt.Errorf("failed to terminate %s: %w", c.Name, err)
	}
	if s.waitExit(c, s.terminateTimeout) {
		return nil
	}

	log.Warn().Str("name", c.Name).Int("pid", c.Pid).
		Dur("timeout", s.terminateTimeout).
		Msg("child ignored terminate, killing process tree")
	if err := s.ctrl.Kill(c); err != nil {
		log.Warn().Err(err).Int("pid", c.Pid).Msg("failed to kill child")
	}
	if !s.waitExit(c, KillTimeout) {
		log.Error().Int("pid", c.Pid).Msg("child still running after kill, proceeding anyway")
	}
	return nil
}

func (s *Supervisor) waitExit(c *Child, timeout time.Duration) bool {
	if timeout <= 0 {
		<-c.Done()
		return true
	}
	select {
	case <-c.Done():
		return true
	case <-s.clock.After(timeout):
		return false
	}
}

// ShutdownChildren stops the running game for power-off: the menu is
// closed, main is resumed and terminated, and its play time recorded.
// Outside a game the launcher is left for the power-off command to stop.
func (s *Supervisor) ShutdownChildren() error {
	s.terminating = true
	if !s.InGame() || s.main == nil {
		return nil
	}

	if s.menu != nil {
		if err := s.Terminate(s.menu); err != nil {
			log.Warn().Err(err).Msg("failed to terminate menu")
		}
		if err := s.menuClosed(); err != nil {
			return err
		}
	}

	if err := s.Terminate(s.main); err != nil {
		return err
	}
	s.RecordPlayTime()
	return nil
}

// RecordPlayTime adds the time since the game's start_time to the play
// time store. Sessions timed by an unset clock are skipped and failures
// are logged.
func (s *Supervisor) RecordPlayTime() {
	if s.playTime == nil || !s.InGame() {
		return
	}

	info := s.loadGame()
	if info == nil {
		return
	}

	now := s.clock.Now()
	if !helpers.IsClockReliable(info.StartTime) || !helpers.IsClockReliable(now) {
		log.Warn().Time("start", info.StartTime).Time("now", now).
			Msg("system clock not set, skipping play time")
		return
	}

	d := info.PlayTime(now)
	if err := s.playTime.AddPlayTime(info.Path, d); err != nil {
		log.Error().Err(err).Str("path", info.Path).Msg("failed to record play time")
		return
	}
	log.Info().Str("path", info.Path).Dur("playTime", d).Msg("recorded play time")
}
