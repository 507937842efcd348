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

package userdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ZaparooProject/zaparoo-pocket/pkg/database"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AddPlayTime records a finished play session for the game at path and adds
// its duration to the game's total.
func (db *UserDB) AddPlayTime(path string, playTime time.Duration) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlAddPlayTime(db.ctx, db.sql, path, playTime, db.clock.Now())
}

// GetPlayTime returns the accumulated play time for the game at path. A game
// that was never played returns a zero entry.
func (db *UserDB) GetPlayTime(path string) (database.PlayTimeEntry, error) {
	if db.sql == nil {
		return database.PlayTimeEntry{}, ErrNullSQL
	}
	return sqlGetPlayTime(db.ctx, db.sql, path)
}

// GetPlaySessions returns the most recent sessions for the game at path,
// newest first.
func (db *UserDB) GetPlaySessions(path string, limit int) ([]database.PlaySession, error) {
	if db.sql == nil {
		return nil, ErrNullSQL
	}
	return sqlGetPlaySessions(db.ctx, db.sql, path, limit)
}

func sqlAddPlayTime(
	ctx context.Context,
	db *sql.DB,
	path string,
	playTime time.Duration,
	now time.Time,
) (err error) {
	secs := int64(playTime / time.Second)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin play time transaction: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Warn().Err(rbErr).Msg("failed to roll back play time transaction")
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO PlayTime(Path, PlayCount, PlayTime, LastPlayed)
		VALUES (?, 1, ?, ?)
		ON CONFLICT(Path) DO UPDATE SET
			PlayCount = PlayCount + 1,
			PlayTime = PlayTime + excluded.PlayTime,
			LastPlayed = excluded.LastPlayed;
	`, path, secs, now.Unix())
	if err != nil {
		return fmt.Errorf("failed to update play time: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO PlaySessions(ID, Path, EndTime, Duration)
		VALUES (?, ?, ?, ?);
	`, uuid.New().String(), path, now.Unix(), secs)
	if err != nil {
		return fmt.Errorf("failed to insert play session: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit play time: %w", err)
	}
	return nil
}

func sqlGetPlayTime(ctx context.Context, db *sql.DB, path string) (database.PlayTimeEntry, error) {
	entry := database.PlayTimeEntry{Path: path}

	var secs, lastPlayed int64
	err := db.QueryRowContext(ctx, `
		SELECT PlayCount, PlayTime, LastPlayed
		FROM PlayTime
		WHERE Path = ?;
	`, path).Scan(&entry.PlayCount, &secs, &lastPlayed)
	if errors.Is(err, sql.ErrNoRows) {
		return entry, nil
	} else if err != nil {
		return entry, fmt.Errorf("failed to query play time: %w", err)
	}

	entry.PlayTime = time.Duration(secs) * time.Second
	entry.LastPlayed = time.Unix(lastPlayed, 0)
	return entry, nil
}

func sqlGetPlaySessions(
	ctx context.Context,
	db *sql.DB,
	path string,
	limit int,
) ([]database.PlaySession, error) {
	if limit <= 0 {
		limit = 25
	}

	rows, err := db.QueryContext(ctx, `
		SELECT ID, Path, EndTime, Duration
		FROM PlaySessions
		WHERE Path = ?
		ORDER BY EndTime DESC
		LIMIT ?;
	`, path, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query play sessions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close rows")
		}
	}()

	sessions := make([]database.PlaySession, 0, limit)
	for rows.Next() {
		var s database.PlaySession
		var endTime, secs int64
		if err := rows.Scan(&s.ID, &s.Path, &endTime, &secs); err != nil {
			return nil, fmt.Errorf("failed to scan play session: %w", err)
		}
		s.EndTime = time.Unix(endTime, 0)
		s.Duration = time.Duration(secs) * time.Second
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate play sessions: %w", err)
	}
	return sessions, nil
}
