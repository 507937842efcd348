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

// Package userdb stores per-game play time on the SD card.
package userdb

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZaparooProject/zaparoo-pocket/pkg/database"
	"github.com/jonboulle/clockwork"
	_ "github.com/mattn/go-sqlite3"
)

var ErrNullSQL = errors.New("UserDB is not connected")

// FULL synchronous mode: the device may lose power right after a session is
// recorded.
const sqliteConnParams = "?_journal_mode=WAL&_synchronous=FULL&_busy_timeout=5000"

//go:embed migrations/*.sql
var migrationFiles embed.FS

type UserDB struct {
	sql   *sql.DB
	ctx   context.Context
	clock clockwork.Clock
	path  string
}

// OpenUserDB opens (creating if needed) the database at path and brings its
// schema up to date.
func OpenUserDB(ctx context.Context, path string) (*UserDB, error) {
	db := &UserDB{ctx: ctx, path: path, clock: clockwork.NewRealClock()}
	if err := db.Open(); err != nil {
		return nil, err
	}
	return db, nil
}

func (db *UserDB) Open() error {
	if err := os.MkdirAll(filepath.Dir(db.path), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for database: %w", err)
	}
	sqlInstance, err := sql.Open("sqlite3", db.path+sqliteConnParams)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.sql = sqlInstance
	return db.MigrateUp()
}

func (db *UserDB) MigrateUp() error {
	if db.sql == nil {
		return ErrNullSQL
	}
	if err := database.MigrateUp(db.sql, migrationFiles, "migrations"); err != nil {
		return fmt.Errorf("failed to run user database migrations: %w", err)
	}
	return nil
}

func (db *UserDB) GetDBPath() string {
	return db.path
}

// SetClock sets the clock used to timestamp sessions. Must be called before
// the database is used.
func (db *UserDB) SetClock(clock clockwork.Clock) {
	db.clock = clock
}

// SetSQLForTesting allows injection of a sql.DB instance for testing purposes.
// The schema is not migrated, so sqlmock connections can be used.
func (db *UserDB) SetSQLForTesting(ctx context.Context, sqlDB *sql.DB) {
	db.sql = sqlDB
	db.ctx = ctx
	if db.clock == nil {
		db.clock = clockwork.NewRealClock()
	}
}

// Close closes the connection. Closing twice is a no-op.
func (db *UserDB) Close() error {
	if db.sql == nil {
		return nil
	}
	err := db.sql.Close()
	db.sql = nil
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
