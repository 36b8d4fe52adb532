// Copyright (c) 2025 The ARS-BZ Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/benny2744/ARS-BZ/auth"
	"github.com/benny2744/ARS-BZ/models"
)

// Demo account and session created by Seed
const (
	DemoAdminEmail    = "admin@demo.com"
	DemoAdminPassword = "admin123"
	DemoSessionCode   = "DEMO01"
)

type seedUser struct {
	name, email, password, role string
}

type seedQuestion struct {
	title, qType string
	options      []string
}

var demoUsers = []seedUser{
	{"Demo Admin", DemoAdminEmail, DemoAdminPassword, models.RoleAdmin},
	{"Alice Participant", "alice@demo.com", "participant123", models.RoleParticipant},
	{"Bob Participant", "bob@demo.com", "participant123", models.RoleParticipant},
}

var demoQuestions = []seedQuestion{
	{"What is your favorite programming language?", models.QuestionMultipleChoice, []string{"Go", "Python", "JavaScript", "Rust"}},
	{"Should we have more team events?", models.QuestionPoll, []string{"Yes", "No", "Maybe"}},
	{"What would you like to learn next?", models.QuestionText, nil},
	{"Share a photo of your workspace", models.QuestionPhotoUpload, nil},
	{"How would you rate this session?", models.QuestionRating, nil},
}

// Seed creates the demo accounts and the DEMO01 session.
// Existing users and an existing demo session are left untouched.
func Seed(ctx context.Context, conn *sql.DB) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	var adminID string
	for _, u := range demoUsers {
		id, err := seedAccount(ctx, tx, u, now)
		if err != nil {
			return err
		}
		if u.email == DemoAdminEmail {
			adminID = id
		}
	}

	var exists bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM polling_session WHERE session_code = $1)
	`, DemoSessionCode).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check demo session: %w", err)
	}

	if !exists {
		sessionID := auth.NewID()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO polling_session (id, title, description, session_code, admin_id, status,
				allow_anonymous, show_real_time_results, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, sessionID, "Demo Session", "A sample session with one question of each type",
			DemoSessionCode, adminID, models.StatusWaiting, true, true, now, now)
		if err != nil {
			return fmt.Errorf("failed to insert demo session: %w", err)
		}

		for i, q := range demoQuestions {
			options := q.options
			if options == nil {
				options = []string{}
			}
			optionsJSON, err := json.Marshal(options)
			if err != nil {
				return fmt.Errorf("failed to encode options: %w", err)
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO question (id, session_id, title, type, options, required, active, sort_order, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			`, auth.NewID(), sessionID, q.title, q.qType, string(optionsJSON), true, false, i+1, now, now)
			if err != nil {
				return fmt.Errorf("failed to insert demo question: %w", err)
			}
		}
		slog.Info("demo session created", "session_id", sessionID, "code", DemoSessionCode)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}
	return nil
}

// seedAccount returns the id of the user with u.email, creating it if needed
func seedAccount(ctx context.Context, tx *sql.Tx, u seedUser, now time.Time) (string, error) {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE email = $1`, u.email).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to look up %s: %w", u.email, err)
	}

	hash, err := auth.HashPassword(u.password)
	if err != nil {
		return "", err
	}

	id = auth.NewID()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, u.name, u.email, hash, u.role, now)
	if err != nil {
		return "", fmt.Errorf("failed to insert %s: %w", u.email, err)
	}

	slog.Info("demo user created", "email", u.email, "role", u.role)
	return id, nil
}
