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

package supervisor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-pocket/pkg/gameinfo"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/supervisor"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/testing/mocks"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	launcherBin  = "/opt/pocket/bin/pocket-launcher"
	menuBin      = "/opt/pocket/bin/pocket-menu"
	gameInfoPath = "/state/game_info.json"
	romPath      = "/roms/gb/tetris.gb"
)

var startTime = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

type watched struct {
	child *supervisor.Child
	role  supervisor.Role
}

type fixture struct {
	sup     *supervisor.Supervisor
	ctrl    *mocks.MockController
	rec     *mocks.MockPlayTimeRecorder
	games   *gameinfo.Store
	clock   *clockwork.FakeClock
	watched []watched
}

func newFixture(t *testing.T, timeout time.Duration) *fixture {
	t.Helper()

	f := &fixture{
		ctrl:  &mocks.MockController{},
		rec:   &mocks.MockPlayTimeRecorder{},
		games: gameinfo.NewStore(afero.NewMemMapFs(), gameInfoPath),
		clock: clockwork.NewFakeClockAt(startTime),
	}
	f.sup = supervisor.New(supervisor.Options{
		Controller:       f.ctrl,
		GameInfo:         f.games,
		PlayTime:         f.rec,
		Clock:            f.clock,
		LauncherBin:      launcherBin,
		MenuBin:          menuBin,
		TerminateTimeout: timeout,
		Watch: func(role supervisor.Role, c *supervisor.Child) {
			f.watched = append(f.watched, watched{role: role, child: c})
		},
	})
	t.Cleanup(func() {
		f.ctrl.AssertExpectations(t)
		f.rec.AssertExpectations(t)
	})
	return f
}

func (f *fixture) saveGame(t *testing.T) *gameinfo.GameInfo {
	t.Helper()
	info := &gameinfo.GameInfo{
		Name:    "Tetris",
		Path:    romPath,
		Command: "/opt/pocket/cores/gambatte",
		Args:    []string{romPath},
	}
	require.NoError(t, f.games.Save(info))
	return info
}

// startLauncher spawns main as the launcher with pid 100.
func (f *fixture) startLauncher(t *testing.T) *supervisor.Child {
	t.Helper()
	main := supervisor.NewChild(100, launcherBin)
	f.ctrl.On("Spawn", launcherBin, mock.Anything).Return(main, nil).Once()
	require.NoError(t, f.sup.SpawnMain())
	return main
}

// startGame spawns main from GameInfo with pid 200.
func (f *fixture) startGame(t *testing.T) *supervisor.Child {
	t.Helper()
	f.saveGame(t)
	main := supervisor.NewChild(200, "gambatte")
	f.ctrl.On("Spawn", "/opt/pocket/cores/gambatte", []string{romPath}).Return(main, nil).Once()
	require.NoError(t, f.sup.SpawnMain())
	return main
}

func TestSpawnMainLauncher(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 5*time.Second)
	main := f.startLauncher(t)

	assert.Same(t, main, f.sup.Main())
	assert.Nil(t, f.sup.Menu())
	assert.False(t, f.sup.InGame())
	require.Len(t, f.watched, 1)
	assert.Equal(t, supervisor.RoleMain, f.watched[0].role)
	assert.Same(t, main, f.watched[0].child)
}

func TestSpawnMainResumesGame(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 5*time.Second)
	main := f.startGame(t)

	assert.Same(t, main, f.sup.Main())
	assert.True(t, f.sup.InGame())

	info, err := f.games.Load()
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.True(t, startTime.Equal(info.StartTime), "start_time should be marked on resume")
}

func TestSpawnMainGameWithoutCommand(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 5*time.Second)
	require.NoError(t, f.games.Save(&gameinfo.GameInfo{Path: romPath}))

	f.startLauncher(t)
	assert.False(t, f.sup.InGame())
}

func TestSpawnMainCorruptGameInfo(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, gameInfoPath, []byte("{not json"), 0o644))

	ctrl := &mocks.MockController{}
	main := supervisor.NewChild(100, launcherBin)
	ctrl.On("Spawn", launcherBin, mock.Anything).Return(main, nil).Once()

	sup := supervisor.New(supervisor.Options{
		Controller:  ctrl,
		GameInfo:    gameinfo.NewStore(fs, gameInfoPath),
		LauncherBin: launcherBin,
	})
	require.NoError(t, sup.SpawnMain())
	assert.False(t, sup.InGame())
	ctrl.AssertExpectations(t)
}

func TestSpawnMainFailureIsReturned(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 5*time.Second)
	spawnErr := errors.New("exec format error")
	f.ctrl.On("Spawn", launcherBin, mock.Anything).Return(nil, spawnErr).Once()

	err := f.sup.SpawnMain()
	require.Error(t, err)
	assert.ErrorIs(t, err, spawnErr)
	assert.Nil(t, f.sup.Main())
	assert.Empty(t, f.watched)
}

func TestOnMainExitedRespawnsOnce(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 5*time.Second)
	game := f.startGame(t)

	f.clock.Advance(42 * time.Minute)
	f.rec.On("AddPlayTime", romPath, 42*time.Minute).Return(nil).Once()
	launcher := f.startLauncherAfterExit(t, game)

	assert.Same(t, launcher, f.sup.Main())
	assert.False(t, f.sup.InGame(), "game info removed after the game exits")
	require.Len(t, f.watched, 2)
	f.ctrl.AssertNumberOfCalls(t, "Spawn", 2)
}

func (f *fixture) startLauncherAfterExit(t *testing.T, old *supervisor.Child) *supervisor.Child {
	t.Helper()
	next := supervisor.NewChild(101, launcherBin)
	f.ctrl.On("Spawn", launcherBin, mock.Anything).Return(next, nil).Once()
	old.MarkExited(nil)
	require.NoError(t, f.sup.OnMainExited(old))
	return next
}

func TestOnMainExitedPlayTimeFailureStillRespawns(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 5*time.Second)
	game := f.startGame(t)

	f.rec.On("AddPlayTime", romPath, mock.Anything).Return(errors.New("database is locked")).Once()
	launcher := f.startLauncherAfterExit(t, game)

	assert.Same(t, launcher, f.sup.Main())
}

func TestOnMainExitedSkipsPlayTimeWithUnsetClock(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 5*time.Second)
	epoch := time.Unix(0, 0).UTC()
	f.clock = clockwork.NewFakeClockAt(epoch)
	f.sup = supervisor.New(supervisor.Options{
		Controller:  f.ctrl,
		GameInfo:    f.games,
		PlayTime:    f.rec,
		Clock:       f.clock,
		LauncherBin: launcherBin,
		MenuBin:     menuBin,
	})
	game := f.startGame(t)

	// NTP syncs mid-session.
	f.clock.Advance(startTime.Sub(epoch))
	f.startLauncherAfterExit(t, game)

	f.rec.AssertNotCalled(t, "AddPlayTime", mock.Anything, mock.Anything)
}

func TestOnMainExitedLauncherDoesNotRecord(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 5*time.Second)
	launcher := f.startLauncher(t)

	next := f.startLauncherAfterExit(t, launcher)
	assert.NotSame(t, launcher, next)
	f.rec.AssertNotCalled(t, "AddPlayTime", mock.Anything, mock.Anything)
}

func TestOnMainExitedWhileTerminating(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 5*time.Second)
	main := f.startLauncher(t)

	f.sup.MarkTerminating()
	main.MarkExited(nil)
	require.NoError(t, f.sup.OnMainExited(main))

	assert.Same(t, main, f.sup.Main())
	f.ctrl.AssertNumberOfCalls(t, "Spawn", 1)
}

func TestOnMainExitedStaleChild(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 5*time.Second)
	main := f.startLauncher(t)

	stale := supervisor.NewChild(7, launcherBin)
	stale.MarkExited(nil)
	require.NoError(t, f.sup.OnMainExited(stale))
	assert.Same(t, main, f.sup.Main())
}

func TestOnMainExitedClosesOrphanedMenu(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 5*time.Second)
	game := f.startGame(t)
	menu := f.openMenu(t, game)

	f.ctrl.ExitOnTerminate(menu).Once()
	f.rec.On("AddPlayTime", romPath, mock.Anything).Return(nil).Once()
	f.startLauncherAfterExit(t, game)

	assert.Nil(t, f.sup.Menu())
	assert.True(t, menu.Exited())
}

func (f *fixture) openMenu(t *testing.T, main *supervisor.Child) *supervisor.Child {
	t.Helper()
	menu := supervisor.NewChild(300, menuBin)
	f.ctrl.On("Suspend", main).Return(nil).Once()
	f.ctrl.On("Spawn", menuBin, mock.Anything).Return(menu, nil).Once()
	require.NoError(t, f.sup.ToggleMenu())
	return menu
}

func TestToggleMenuOpens(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 5*time.Second)
	main := f.startGame(t)
	menu := f.openMenu(t, main)

	assert.Same(t, menu, f.sup.Menu())
	assert.Equal(t, supervisor.StateStopped, main.State())
	require.Len(t, f.watched, 2)
	assert.Equal(t, supervisor.RoleMenu, f.watched[1].role)
}

func TestToggleMenuCloses(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 5*time.Second)
	main := f.startGame(t)
	menu := f.openMenu(t, main)

	f.ctrl.ExitOnTerminate(menu).Once()
	f.ctrl.On("Resume", main).Return(nil).Once()
	require.NoError(t, f.sup.ToggleMenu())

	assert.Nil(t, f.sup.Menu())
	assert.True(t, menu.Exited())
	assert.Equal(t, supervisor.StateRunning, main.State())

	// the reaped menu's exit event arrives afterwards and is ignored
	require.NoError(t, f.sup.OnMenuExited(menu))
	f.ctrl.AssertNumberOfCalls(t, "Resume", 1)
}

func TestOnMenuExitedResumesMain(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 5*time.Second)
	main := f.startGame(t)
	menu := f.openMenu(t, main)

	f.ctrl.On("Resume", main).Return(nil).Once()
	menu.MarkExited(nil)
	require.NoError(t, f.sup.OnMenuExited(menu))

	assert.Nil(t, f.sup.Menu())
	assert.Equal(t, supervisor.StateRunning, main.State())
}

func TestToggleMenuWithoutMain(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 5*time.Second)
	assert.ErrorIs(t, f.sup.ToggleMenu(), supervisor.ErrNoMain)
}

func TestToggleMenuSpawnFailureResumesMain(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 5*time.Second)
	main := f.startGame(t)

	f.ctrl.On("Suspend", main).Return(nil).Once()
	f.ctrl.On("Spawn", menuBin, mock.Anything).Return(nil, errors.New("no such file")).Once()
	f.ctrl.On("Resume", main).Return(nil).Once()

	require.Error(t, f.sup.ToggleMenu())
	assert.Nil(t, f.sup.Menu())
	assert.Equal(t, supervisor.StateRunning, main.State())
}

func TestToggleMenuSuspendFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 5*time.Second)
	main := f.startGame(t)

	f.ctrl.On("Suspend", main).Return(errors.New("operation not permitted")).Once()

	require.Error(t, f.sup.ToggleMenu())
	assert.Nil(t, f.sup.Menu())
	assert.Equal(t, supervisor.StateRunning, main.State())
}

func TestTerminateAlreadyExited(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 5*time.Second)
	c := supervisor.NewChild(1, "done")
	c.MarkExited(nil)

	require.NoError(t, f.sup.Terminate(c))
	f.ctrl.AssertNotCalled(t, "Terminate", mock.Anything)
}

func TestTerminateKillsAfterTimeout(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 5*time.Second)
	c := supervisor.NewChild(400, "stubborn")

	f.ctrl.On("Terminate", c).Return(nil).Once()
	f.ctrl.On("Kill", c).Return(nil).Run(func(mock.Arguments) {
		c.MarkExited(errors.New("signal: killed"))
	}).Once()

	done := make(chan error, 1)
	go func() {
		done <- f.sup.Terminate(c)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.clock.BlockUntilContext(ctx, 1))
	f.clock.Advance(5 * time.Second)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("terminate did not return after kill")
	}
	assert.Equal(t, supervisor.StateExited, c.State())
}

func TestTerminateWithoutTimeoutWaits(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 0)
	c := supervisor.NewChild(400, "slow")

	f.ctrl.On("Terminate", c).Return(nil).Once()

	done := make(chan error, 1)
	go func() {
		done <- f.sup.Terminate(c)
	}()

	select {
	case <-done:
		t.Fatal("terminate returned before the child exited")
	case <-time.After(50 * time.Millisecond):
	}

	c.MarkExited(nil)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("terminate did not return after exit")
	}
	f.ctrl.AssertNotCalled(t, "Kill", mock.Anything)
}

func TestTerminateSignalError(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 5*time.Second)
	c := supervisor.NewChild(400, "x")
	f.ctrl.On("Terminate", c).Return(errors.New("operation not permitted")).Once()

	assert.Error(t, f.sup.Terminate(c))
}

func TestShutdownChildrenInGameWithMenu(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 5*time.Second)
	main := f.startGame(t)
	menu := f.openMenu(t, main)

	f.clock.Advance(time.Hour)
	f.ctrl.ExitOnTerminate(menu).Once()
	f.ctrl.On("Resume", main).Return(nil).Once()
	f.ctrl.ExitOnTerminate(main).Once()
	f.rec.On("AddPlayTime", romPath, time.Hour).Return(nil).Once()

	require.NoError(t, f.sup.ShutdownChildren())

	assert.True(t, f.sup.Terminating())
	assert.True(t, main.Exited())
	assert.True(t, menu.Exited())
	assert.Nil(t, f.sup.Menu())

	// main's exit event is ignored while terminating
	require.NoError(t, f.sup.OnMainExited(main))
	f.ctrl.AssertNumberOfCalls(t, "Spawn", 2)
}

func TestShutdownChildrenOutsideGame(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 5*time.Second)
	main := f.startLauncher(t)

	require.NoError(t, f.sup.ShutdownChildren())

	assert.True(t, f.sup.Terminating())
	assert.False(t, main.Exited())
	f.ctrl.AssertNotCalled(t, "Terminate", mock.Anything)
}

func TestRecordPlayTimeWithoutRecorder(t *testing.T) {
	t.Parallel()

	games := gameinfo.NewStore(afero.NewMemMapFs(), gameInfoPath)
	require.NoError(t, games.Save(&gameinfo.GameInfo{Path: romPath, Command: "x"}))

	sup := supervisor.New(supervisor.Options{GameInfo: games})
	sup.RecordPlayTime()
	assert.True(t, sup.InGame())
}

func TestRoleString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "main", supervisor.RoleMain.String())
	assert.Equal(t, "menu", supervisor.RoleMenu.String())
}
