// Copyright (c) 2025 The ARS-BZ Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The same DDL runs on PostgreSQL and SQLite, so timestamps are always
// supplied by the application rather than column defaults.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

var schema = []string{
	// Accounts
	`CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'PARTICIPANT' CHECK (role IN ('ADMIN', 'PARTICIPANT')),
    created_at TIMESTAMP NOT NULL
)`,

	// Sessions
	`CREATE TABLE IF NOT EXISTS polling_session (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    session_code TEXT NOT NULL,
    admin_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    status TEXT NOT NULL DEFAULT 'WAITING' CHECK (status IN ('WAITING', 'ACTIVE', 'PAUSED', 'COMPLETED')),
    allow_anonymous BOOLEAN NOT NULL DEFAULT TRUE,
    show_real_time_results BOOLEAN NOT NULL DEFAULT FALSE,
    max_participants INTEGER,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_session_code ON polling_session(session_code)`,
	`CREATE INDEX IF NOT EXISTS idx_session_admin_id ON polling_session(admin_id)`,

	// Questions
	`CREATE TABLE IF NOT EXISTS question (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES polling_session(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    description TEXT,
    type TEXT NOT NULL CHECK (type IN ('MULTIPLE_CHOICE', 'POLL', 'TEXT', 'PHOTO_UPLOAD', 'RATING')),
    options TEXT NOT NULL DEFAULT '[]',
    required BOOLEAN NOT NULL DEFAULT TRUE,
    active BOOLEAN NOT NULL DEFAULT FALSE,
    sort_order INTEGER NOT NULL DEFAULT 0,
    time_limit INTEGER,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_question_session_id ON question(session_id, sort_order)`,

	// Participants
	`CREATE TABLE IF NOT EXISTS session_participant (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES polling_session(id) ON DELETE CASCADE,
    user_id TEXT REFERENCES users(id) ON DELETE CASCADE,
    nickname TEXT,
    joined_at TIMESTAMP NOT NULL,
    CHECK ((user_id IS NULL) <> (nickname IS NULL))
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_participant_nickname ON session_participant(session_id, nickname)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_participant_user ON session_participant(session_id, user_id)`,

	// Responses
	`CREATE TABLE IF NOT EXISTS response (
    id TEXT PRIMARY KEY,
    question_id TEXT NOT NULL REFERENCES question(id) ON DELETE CASCADE,
    session_id TEXT NOT NULL REFERENCES polling_session(id) ON DELETE CASCADE,
    user_id TEXT REFERENCES users(id) ON DELETE CASCADE,
    participant_id TEXT REFERENCES session_participant(id) ON DELETE CASCADE,
    response_type TEXT NOT NULL CHECK (response_type IN ('TEXT', 'OPTION', 'FILE', 'RATING')),
    text_value TEXT,
    option_value TEXT,
    file_url TEXT,
    submitted_at TIMESTAMP NOT NULL,
    ip_hash TEXT,
    user_agent TEXT,
    CHECK ((user_id IS NULL) <> (participant_id IS NULL))
)`,
	`CREATE INDEX IF NOT EXISTS idx_response_session_id ON response(session_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_response_question_user ON response(question_id, user_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_response_question_participant ON response(question_id, participant_id)`,

	// Uploads
	`CREATE TABLE IF NOT EXISTS upload (
    id TEXT PRIMARY KEY,
    filename TEXT NOT NULL UNIQUE,
    original_name TEXT NOT NULL,
    mime_type TEXT NOT NULL,
    file_size BIGINT NOT NULL,
    file_url TEXT NOT NULL,
    uploaded_at TIMESTAMP NOT NULL
)`,
}
