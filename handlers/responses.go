// Copyright (c) 2025 The ARS-BZ Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/benny2744/ARS-BZ/auth"
	"github.com/benny2744/ARS-BZ/cliparse"
	"github.com/benny2744/ARS-BZ/middleware"
	"github.com/benny2744/ARS-BZ/models"
)

type ResponseHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewResponseHandler(db *sql.DB, cfg cliparse.Config) *ResponseHandler {
	return &ResponseHandler{db: db, cfg: cfg}
}

// SubmitResponse handles POST /responses
func (h *ResponseHandler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitResponseRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		writeError(w, errInvalidJSON, "")
		return
	}

	var userID string
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		userID = claims.UserID
	}

	meta := responseMeta{
		IPHash:    auth.HashIP(middleware.GetClientIP(r), h.cfg.AuthSecret),
		UserAgent: r.UserAgent(),
	}

	resp, err := admitResponse(r.Context(), h.db, req, userID, meta)
	if err != nil {
		writeError(w, err, "failed to submit response", "question_id", req.QuestionID)
		return
	}

	slog.Info("response submitted",
		"response_id", resp.ID,
		"question_id", resp.QuestionID,
		"session_id", resp.SessionID,
		"type", resp.ResponseType,
	)

	middleware.JSONResponse(w, http.StatusCreated, resp)
}

// ListResponses handles GET /responses?questionId=...|sessionId=...
// Returns raw responses, newest first, for the session owner.
func (h *ResponseHandler) ListResponses(w http.ResponseWriter, r *http.Request) {
	claims, err := requireUser(r)
	if err != nil {
		writeError(w, err, "")
		return
	}

	questionID := r.URL.Query().Get("questionId")
	sessionID := r.URL.Query().Get("sessionId")
	if questionID == "" && sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "questionId or sessionId is required")
		return
	}

	// The owner check always runs against the session the rows belong to
	if questionID != "" {
		question, err := getQuestion(r.Context(), h.db, questionID)
		if err != nil {
			writeError(w, err, "failed to load question", "question_id", questionID)
			return
		}
		if sessionID != "" && sessionID != question.SessionID {
			writeError(w, ErrQuestionSessionMismatch, "")
			return
		}
		sessionID = question.SessionID
	}
	if _, err := requireSessionOwner(r.Context(), h.db, sessionID, claims); err != nil {
		writeError(w, err, "failed to load session", "session_id", sessionID)
		return
	}

	query := `
		SELECT rs.id, rs.question_id, rs.session_id, rs.user_id, rs.participant_id, rs.response_type,
			rs.text_value, rs.option_value, rs.file_url, rs.submitted_at,
			u.id, u.name, u.email,
			q.title, q.type
		FROM response rs
		JOIN question q ON q.id = rs.question_id
		LEFT JOIN users u ON u.id = rs.user_id
		WHERE rs.session_id = $1`
	args := []any{sessionID}
	if questionID != "" {
		query += ` AND rs.question_id = $2`
		args = append(args, questionID)
	}
	query += ` ORDER BY rs.submitted_at DESC`

	rows, err := h.db.QueryContext(r.Context(), query, args...)
	if err != nil {
		writeError(w, err, "failed to query responses", "session_id", sessionID)
		return
	}
	defer rows.Close()

	out := []models.ResponseWithDetails{}
	for rows.Next() {
		item, err := scanResponseWithDetails(rows)
		if err != nil {
			writeError(w, err, "failed to scan response")
			return
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		writeError(w, err, "failed to iterate responses")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, out)
}

func scanResponseWithDetails(row scanner) (models.ResponseWithDetails, error) {
	var (
		item                       models.ResponseWithDetails
		userID, userName, userMail sql.NullString
		question                   models.ResponseQuestion
	)
	err := row.Scan(&item.ID, &item.QuestionID, &item.SessionID, &item.UserID, &item.ParticipantID,
		&item.ResponseType, &item.TextValue, &item.OptionValue, &item.FileURL, &item.SubmittedAt,
		&userID, &userName, &userMail,
		&question.Title, &question.Type)
	if err != nil {
		return item, fmt.Errorf("failed to scan response: %w", err)
	}

	question.ID = item.QuestionID
	item.Question = &question
	if userID.Valid {
		item.User = &models.ResponseUser{ID: userID.String, Name: userName.String, Email: userMail.String}
	}
	return item, nil
}
