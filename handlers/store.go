// Copyright (c) 2025 The ARS-BZ Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/benny2744/ARS-BZ/auth"
	"github.com/benny2744/ARS-BZ/middleware"
	"github.com/benny2744/ARS-BZ/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

const sessionColumns = `id, title, description, session_code, admin_id, status,
	allow_anonymous, show_real_time_results, max_participants, created_at, updated_at`

const questionColumns = `id, session_id, title, description, type, options, required,
	active, sort_order, time_limit, created_at, updated_at`

func scanSession(row scanner) (models.Session, error) {
	var s models.Session
	err := row.Scan(&s.ID, &s.Title, &s.Description, &s.SessionCode, &s.AdminID, &s.Status,
		&s.AllowAnonymous, &s.ShowRealTimeResults, &s.MaxParticipants, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func scanQuestion(row scanner) (models.Question, error) {
	var (
		q       models.Question
		options string
	)
	err := row.Scan(&q.ID, &q.SessionID, &q.Title, &q.Description, &q.Type, &options, &q.Required,
		&q.Active, &q.Order, &q.TimeLimit, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return q, err
	}
	if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
		return q, fmt.Errorf("failed to decode options of question %s: %w", q.ID, err)
	}
	if q.Options == nil {
		q.Options = []string{}
	}
	return q, nil
}

func getSession(ctx context.Context, q querier, id string) (*models.Session, error) {
	s, err := scanSession(q.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM polling_session WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	return &s, nil
}

func getSessionByCode(ctx context.Context, q querier, code string) (*models.Session, error) {
	s, err := scanSession(q.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM polling_session WHERE session_code = $1`, code))
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session by code: %w", err)
	}
	return &s, nil
}

func getQuestion(ctx context.Context, q querier, id string) (*models.Question, error) {
	question, err := scanQuestion(q.QueryRowContext(ctx,
		`SELECT `+questionColumns+` FROM question WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query question: %w", err)
	}
	return &question, nil
}

// listQuestions returns a session's questions in display order
func listQuestions(ctx context.Context, q querier, sessionID string) ([]models.Question, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+questionColumns+` FROM question
		WHERE session_id = $1
		ORDER BY sort_order, created_at
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	questions := []models.Question{}
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}
	return questions, rows.Err()
}

// activeQuestion returns the lowest-order active question, or nil
func activeQuestion(ctx context.Context, q querier, sessionID string) (*models.Question, error) {
	question, err := scanQuestion(q.QueryRowContext(ctx, `
		SELECT `+questionColumns+` FROM question
		WHERE session_id = $1 AND active = $2
		ORDER BY sort_order
		LIMIT 1
	`, sessionID, true))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query active question: %w", err)
	}
	return &question, nil
}

func countParticipants(ctx context.Context, q querier, sessionID string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM session_participant WHERE session_id = $1`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return n, nil
}

// requireUser returns the caller's claims or errUnauthorized
func requireUser(r *http.Request) (*auth.Claims, error) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return nil, errUnauthorized
	}
	return claims, nil
}

// requireSessionOwner loads the session and checks the caller administers it
func requireSessionOwner(ctx context.Context, q querier, sessionID string, claims *auth.Claims) (*models.Session, error) {
	s, err := getSession(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	if s.AdminID != claims.UserID {
		return nil, errForbidden
	}
	return s, nil
}

// activateQuestion makes questionID the only active question of its session
// and moves a WAITING or PAUSED session to ACTIVE. Run inside a transaction.
func activateQuestion(ctx context.Context, tx *sql.Tx, sessionID, questionID string, now time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE question SET active = $1, updated_at = $2
		WHERE session_id = $3 AND id <> $4 AND active = $5
	`, false, now, sessionID, questionID, true)
	if err != nil {
		return fmt.Errorf("failed to deactivate questions: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE question SET active = $1, updated_at = $2
		WHERE id = $3 AND session_id = $4
	`, true, now, questionID, sessionID)
	if err != nil {
		return fmt.Errorf("failed to activate question: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrQuestionNotFound
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE polling_session SET status = $1, updated_at = $2
		WHERE id = $3 AND status IN ($4, $5)
	`, models.StatusActive, now, sessionID, models.StatusWaiting, models.StatusPaused)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	return nil
}

func deactivateQuestions(ctx context.Context, q querier, sessionID string, now time.Time) error {
	_, err := q.ExecContext(ctx, `
		UPDATE question SET active = $1, updated_at = $2
		WHERE session_id = $3 AND active = $4
	`, false, now, sessionID, true)
	if err != nil {
		return fmt.Errorf("failed to deactivate questions: %w", err)
	}
	return nil
}

// withTx runs fn in a transaction, committing only if fn succeeds
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
