// Copyright (c) 2025 The ARS-BZ Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/benny2744/ARS-BZ/auth"
	"github.com/benny2744/ARS-BZ/cliparse"
	"github.com/benny2744/ARS-BZ/db"
	"github.com/benny2744/ARS-BZ/middleware"
	"github.com/benny2744/ARS-BZ/models"
)

// maxCodeAttempts bounds join-code generation, counting both collisions
// found by lookup and unique violations on insert
const maxCodeAttempts = 10

type SessionHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewSessionHandler(db *sql.DB, cfg cliparse.Config) *SessionHandler {
	return &SessionHandler{db: db, cfg: cfg}
}

// CreateSession handles POST /sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	claims, err := requireUser(r)
	if err != nil {
		writeError(w, err, "")
		return
	}
	if claims.Role != models.RoleAdmin {
		writeError(w, errForbidden, "")
		return
	}

	var req models.CreateSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		writeError(w, errInvalidJSON, "")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Title is required")
		return
	}
	if req.MaxParticipants != nil && *req.MaxParticipants <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "maxParticipants must be greater than 0")
		return
	}

	now := time.Now().UTC()
	session := models.Session{
		ID:                  auth.NewID(),
		Title:               req.Title,
		Description:         req.Description,
		AdminID:             claims.UserID,
		Status:              models.StatusWaiting,
		AllowAnonymous:      true,
		ShowRealTimeResults: false,
		MaxParticipants:     req.MaxParticipants,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if req.AllowAnonymous != nil {
		session.AllowAnonymous = *req.AllowAnonymous
	}
	if req.ShowRealTimeResults != nil {
		session.ShowRealTimeResults = *req.ShowRealTimeResults
	}

	if err := h.insertWithUniqueCode(r.Context(), &session); err != nil {
		writeError(w, err, "failed to create session", "admin_id", claims.UserID)
		return
	}

	slog.Info("session created", "session_id", session.ID, "code", session.SessionCode, "admin_id", claims.UserID)

	middleware.JSONResponse(w, http.StatusCreated, session)
}

// insertWithUniqueCode picks a free join code and inserts the session,
// regenerating when another session claimed the code first
func (h *SessionHandler) insertWithUniqueCode(ctx context.Context, s *models.Session) error {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := auth.GenerateSessionCode()
		if err != nil {
			return err
		}

		var exists bool
		err = h.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM polling_session WHERE session_code = $1)`, code).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check session code: %w", err)
		}
		if exists {
			slog.Debug("session code collision", "code", code, "attempt", attempt+1)
			continue
		}

		s.SessionCode = code
		_, err = h.db.ExecContext(ctx, `
			INSERT INTO polling_session (id, title, description, session_code, admin_id, status,
				allow_anonymous, show_real_time_results, max_participants, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, s.ID, s.Title, s.Description, s.SessionCode, s.AdminID, s.Status,
			s.AllowAnonymous, s.ShowRealTimeResults, s.MaxParticipants, s.CreatedAt, s.UpdatedAt)
		if db.IsUniqueViolation(err) {
			slog.Warn("session code taken on insert, regenerating", "code", code, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}
		return nil
	}

	return fmt.Errorf("no free session code after %d attempts", maxCodeAttempts)
}

// ListSessions handles GET /sessions
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	claims, err := requireUser(r)
	if err != nil {
		writeError(w, err, "")
		return
	}

	const query = `
		SELECT ` + sessionColumns + `,
			(SELECT COUNT(*) FROM question q WHERE q.session_id = polling_session.id),
			(SELECT COUNT(*) FROM session_participant p WHERE p.session_id = polling_session.id),
			(SELECT COUNT(*) FROM response rs WHERE rs.session_id = polling_session.id)
		FROM polling_session`

	var rows *sql.Rows
	if r.URL.Query().Get("includeAll") == "true" {
		rows, err = h.db.QueryContext(r.Context(), query+` ORDER BY created_at DESC`)
	} else {
		rows, err = h.db.QueryContext(r.Context(), query+` WHERE admin_id = $1 ORDER BY created_at DESC`, claims.UserID)
	}
	if err != nil {
		writeError(w, err, "failed to query sessions")
		return
	}
	defer rows.Close()

	sessions := []models.SessionSummary{}
	for rows.Next() {
		var s models.SessionSummary
		err := rows.Scan(&s.ID, &s.Title, &s.Description, &s.SessionCode, &s.AdminID, &s.Status,
			&s.AllowAnonymous, &s.ShowRealTimeResults, &s.MaxParticipants, &s.CreatedAt, &s.UpdatedAt,
			&s.QuestionCount, &s.ParticipantCount, &s.ResponseCount)
		if err != nil {
			writeError(w, err, "failed to scan session")
			return
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		writeError(w, err, "failed to iterate sessions")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, sessions)
}

// GetSession handles GET /sessions/{id}
// Public: participants poll it for the session status and active question.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	session, err := getSession(r.Context(), h.db, sessionID)
	if err != nil {
		writeError(w, err, "failed to get session", "session_id", sessionID)
		return
	}

	questions, err := listQuestions(r.Context(), h.db, sessionID)
	if err != nil {
		writeError(w, err, "failed to list questions", "session_id", sessionID)
		return
	}

	count, err := countParticipants(r.Context(), h.db, sessionID)
	if err != nil {
		writeError(w, err, "failed to count participants", "session_id", sessionID)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SessionDetail{
		Session:          *session,
		Questions:        questions,
		ParticipantCount: count,
	})
}

// UpdateSession handles PUT /sessions/{id}
func (h *SessionHandler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	claims, err := requireUser(r)
	if err != nil {
		writeError(w, err, "")
		return
	}

	var req models.UpdateSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		writeError(w, errInvalidJSON, "")
		return
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Title cannot be empty")
		return
	}
	if req.Status != nil && !validStatus(*req.Status) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid status")
		return
	}
	if req.MaxParticipants != nil && *req.MaxParticipants < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "maxParticipants cannot be negative")
		return
	}

	var updated *models.Session
	err = withTx(r.Context(), h.db, func(tx *sql.Tx) error {
		if _, err := requireSessionOwner(r.Context(), tx, sessionID, claims); err != nil {
			return err
		}

		now := time.Now().UTC()
		u := newUpdate()
		if req.Title != nil {
			u.set("title", strings.TrimSpace(*req.Title))
		}
		if req.Description != nil {
			u.set("description", nullableString(*req.Description))
		}
		if req.Status != nil {
			u.set("status", *req.Status)
		}
		if req.AllowAnonymous != nil {
			u.set("allow_anonymous", *req.AllowAnonymous)
		}
		if req.ShowRealTimeResults != nil {
			u.set("show_real_time_results", *req.ShowRealTimeResults)
		}
		if req.MaxParticipants != nil {
			if *req.MaxParticipants == 0 {
				u.set("max_participants", nil)
			} else {
				u.set("max_participants", *req.MaxParticipants)
			}
		}
		u.set("updated_at", now)

		if err := u.exec(r.Context(), tx, "polling_session", sessionID); err != nil {
			return err
		}

		if req.Status != nil && *req.Status == models.StatusCompleted {
			if err := deactivateQuestions(r.Context(), tx, sessionID, now); err != nil {
				return err
			}
		}

		var err error
		updated, err = getSession(r.Context(), tx, sessionID)
		return err
	})
	if err != nil {
		writeError(w, err, "failed to update session", "session_id", sessionID)
		return
	}

	slog.Info("session updated", "session_id", sessionID, "status", updated.Status)

	middleware.JSONResponse(w, http.StatusOK, updated)
}

// DeleteSession handles DELETE /sessions/{id}
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	claims, err := requireUser(r)
	if err != nil {
		writeError(w, err, "")
		return
	}

	if _, err := requireSessionOwner(r.Context(), h.db, sessionID, claims); err != nil {
		writeError(w, err, "failed to load session", "session_id", sessionID)
		return
	}

	// Questions, participants and responses go with it (ON DELETE CASCADE)
	if _, err := h.db.ExecContext(r.Context(), `DELETE FROM polling_session WHERE id = $1`, sessionID); err != nil {
		writeError(w, err, "failed to delete session", "session_id", sessionID)
		return
	}

	slog.Info("session deleted", "session_id", sessionID)

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Session deleted successfully"})
}

// JoinSession handles POST /sessions/join
func (h *SessionHandler) JoinSession(w http.ResponseWriter, r *http.Request) {
	var req models.JoinSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		writeError(w, errInvalidJSON, "")
		return
	}

	if strings.TrimSpace(req.SessionCode) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Session code is required")
		return
	}

	var userID string
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		userID = claims.UserID
	}

	var (
		session       *models.Session
		participantID string
		active        *models.Question
		err           error
	)
	// A concurrent join by the same user loses the insert race once; the retry
	// then finds the participant the winner created.
	for attempt := 0; attempt < 2; attempt++ {
		err = withTx(r.Context(), h.db, func(tx *sql.Tx) error {
			var err error
			session, participantID, err = joinSession(r.Context(), tx, req.SessionCode, req.Nickname, userID)
			if err != nil {
				return err
			}
			active, err = activeQuestion(r.Context(), tx, session.ID)
			return err
		})
		if !errors.Is(err, errJoinRace) {
			break
		}
	}
	if err != nil {
		writeError(w, err, "failed to join session", "code", req.SessionCode)
		return
	}

	slog.Info("participant joined", "session_id", session.ID, "participant_id", participantID, "authenticated", userID != "")

	middleware.JSONResponse(w, http.StatusOK, models.JoinSessionResponse{
		SessionID:     session.ID,
		ParticipantID: participantID,
		Session: models.JoinedSession{
			ID:                  session.ID,
			Title:               session.Title,
			Description:         session.Description,
			Status:              session.Status,
			AllowAnonymous:      session.AllowAnonymous,
			ShowRealTimeResults: session.ShowRealTimeResults,
			ActiveQuestion:      active,
		},
	})
}

// ActivateQuestion handles POST /sessions/{id}/questions/{questionId}/activate
func (h *SessionHandler) ActivateQuestion(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	questionID := r.PathValue("questionId")

	claims, err := requireUser(r)
	if err != nil {
		writeError(w, err, "")
		return
	}

	var question *models.Question
	err = withTx(r.Context(), h.db, func(tx *sql.Tx) error {
		if _, err := requireSessionOwner(r.Context(), tx, sessionID, claims); err != nil {
			return err
		}
		if err := activateQuestion(r.Context(), tx, sessionID, questionID, time.Now().UTC()); err != nil {
			return err
		}
		var err error
		question, err = getQuestion(r.Context(), tx, questionID)
		return err
	})
	if err != nil {
		writeError(w, err, "failed to activate question", "session_id", sessionID, "question_id", questionID)
		return
	}

	slog.Info("question activated", "session_id", sessionID, "question_id", questionID)

	middleware.JSONResponse(w, http.StatusOK, question)
}

// DeactivateQuestions handles POST /sessions/{id}/questions/deactivate
func (h *SessionHandler) DeactivateQuestions(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	claims, err := requireUser(r)
	if err != nil {
		writeError(w, err, "")
		return
	}

	if _, err := requireSessionOwner(r.Context(), h.db, sessionID, claims); err != nil {
		writeError(w, err, "failed to load session", "session_id", sessionID)
		return
	}

	if err := deactivateQuestions(r.Context(), h.db, sessionID, time.Now().UTC()); err != nil {
		writeError(w, err, "failed to deactivate questions", "session_id", sessionID)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "All questions deactivated"})
}

func validStatus(s string) bool {
	switch s {
	case models.StatusWaiting, models.StatusActive, models.StatusPaused, models.StatusCompleted:
		return true
	}
	return false
}
