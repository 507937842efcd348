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

package mocks

import (
	"errors"
	"time"

	"github.com/ZaparooProject/zaparoo-pocket/pkg/supervisor"
	"github.com/stretchr/testify/mock"
)

// MockController is a testify mock for supervisor.Controller. Children are
// supplied by the test through Return and exited with Child.MarkExited.
type MockController struct {
	mock.Mock
}

func (m *MockController) Spawn(name string, args ...string) (*supervisor.Child, error) {
	called := m.Called(name, args)
	child, _ := called.Get(0).(*supervisor.Child)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return child, called.Error(1)
}

func (m *MockController) Suspend(c *supervisor.Child) error {
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return m.Called(c).Error(0)
}

func (m *MockController) Resume(c *supervisor.Child) error {
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return m.Called(c).Error(0)
}

func (m *MockController) Terminate(c *supervisor.Child) error {
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return m.Called(c).Error(0)
}

func (m *MockController) Kill(c *supervisor.Child) error {
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return m.Called(c).Error(0)
}

// TryWait is answered from the child itself so tests only set expectations
// on the signalling calls.
func (*MockController) TryWait(c *supervisor.Child) bool {
	return c.Exited()
}

// ExitOnTerminate makes Terminate of c succeed and reap c immediately.
func (m *MockController) ExitOnTerminate(c *supervisor.Child) *mock.Call {
	return m.On("Terminate", c).Return(nil).Run(func(mock.Arguments) {
		c.MarkExited(errors.New("signal: terminated"))
	})
}

// MockPlayTimeRecorder is a testify mock for supervisor.PlayTimeRecorder.
type MockPlayTimeRecorder struct {
	mock.Mock
}

func (m *MockPlayTimeRecorder) AddPlayTime(path string, playTime time.Duration) error {
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return m.Called(path, playTime).Error(0)
}
