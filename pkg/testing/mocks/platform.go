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
	"context"
	"fmt"

	"github.com/ZaparooProject/zaparoo-pocket/pkg/input"
	"github.com/ZaparooProject/zaparoo-pocket/pkg/platforms"
	"github.com/stretchr/testify/mock"
)

// MockPlatform is a mock implementation of the Platform interface using testify/mock
type MockPlatform struct {
	mock.Mock
}

// NewMockPlatform returns a MockPlatform with permissive defaults for the
// calls most tests do not care about.
func NewMockPlatform() *MockPlatform {
	m := &MockPlatform{}
	m.On("ID").Return(platforms.PlatformIDSimulator).Maybe()
	m.On("Keymap").Return(platforms.DefaultKeymap()).Maybe()
	return m
}

// SetupBasicMock allows every hardware call to succeed.
func (m *MockPlatform) SetupBasicMock() {
	m.On("SetVolume", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("SetBrightness", mock.Anything).Return(nil).Maybe()
	m.On("StartWiFi", mock.Anything, mock.Anything).Return(nil).Maybe()
}

func (m *MockPlatform) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockPlatform) Keymap() input.Keymap {
	args := m.Called()
	if km, ok := args.Get(0).(input.Keymap); ok {
		return km
	}
	return nil
}

func (m *MockPlatform) SetVolume(ctx context.Context, volume int) error {
	args := m.Called(ctx, volume)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock platform set volume failed: %w", err)
	}
	return nil
}

func (m *MockPlatform) SetBrightness(brightness int) error {
	args := m.Called(brightness)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock platform set brightness failed: %w", err)
	}
	return nil
}

func (m *MockPlatform) StartWiFi(ctx context.Context, cmd []string) error {
	args := m.Called(ctx, cmd)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock platform start wifi failed: %w", err)
	}
	return nil
}

func (m *MockPlatform) PowerOff(cmd []string) error {
	args := m.Called(cmd)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock platform power off failed: %w", err)
	}
	return nil
}
