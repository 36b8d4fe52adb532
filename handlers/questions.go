// Copyright (c) 2025 The ARS-BZ Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/benny2744/ARS-BZ/auth"
	"github.com/benny2744/ARS-BZ/cliparse"
	"github.com/benny2744/ARS-BZ/middleware"
	"github.com/benny2744/ARS-BZ/models"
)

type QuestionHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewQuestionHandler(db *sql.DB, cfg cliparse.Config) *QuestionHandler {
	return &QuestionHandler{db: db, cfg: cfg}
}

// CreateQuestion handles POST /questions
func (h *QuestionHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	claims, err := requireUser(r)
	if err != nil {
		writeError(w, err, "")
		return
	}

	var req models.CreateQuestionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		writeError(w, errInvalidJSON, "")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.SessionID == "" || req.Title == "" || req.Type == "" {
		writeError(w, errMissingField, "")
		return
	}

	qType := strings.ToUpper(strings.TrimSpace(req.Type))
	if !validQuestionType(qType) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid question type")
		return
	}

	options, err := normalizeOptions(qType, req.Options)
	if err != nil {
		writeError(w, err, "")
		return
	}
	if req.TimeLimit != nil && *req.TimeLimit <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "timeLimit must be greater than 0")
		return
	}

	optionsJSON, err := json.Marshal(options)
	if err != nil {
		writeError(w, err, "failed to encode options")
		return
	}

	now := time.Now().UTC()
	question := models.Question{
		ID:          auth.NewID(),
		SessionID:   req.SessionID,
		Title:       req.Title,
		Description: req.Description,
		Type:        qType,
		Options:     options,
		Required:    true,
		TimeLimit:   req.TimeLimit,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Required != nil {
		question.Required = *req.Required
	}

	err = withTx(r.Context(), h.db, func(tx *sql.Tx) error {
		if _, err := requireSessionOwner(r.Context(), tx, req.SessionID, claims); err != nil {
			return err
		}

		err := tx.QueryRowContext(r.Context(),
			`SELECT COALESCE(MAX(sort_order), 0) + 1 FROM question WHERE session_id = $1`, req.SessionID).Scan(&question.Order)
		if err != nil {
			return fmt.Errorf("failed to compute question order: %w", err)
		}

		_, err = tx.ExecContext(r.Context(), `
			INSERT INTO question (id, session_id, title, description, type, options, required,
				active, sort_order, time_limit, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, question.ID, question.SessionID, question.Title, question.Description, question.Type,
			string(optionsJSON), question.Required, false, question.Order, question.TimeLimit, now, now)
		if err != nil {
			return fmt.Errorf("failed to insert question: %w", err)
		}
		return nil
	})
	if err != nil {
		writeError(w, err, "failed to create question", "session_id", req.SessionID)
		return
	}

	slog.Info("question created", "question_id", question.ID, "session_id", question.SessionID, "type", qType)

	middleware.JSONResponse(w, http.StatusCreated, question)
}

// UpdateQuestion handles PUT /questions/{id}
func (h *QuestionHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("id")

	claims, err := requireUser(r)
	if err != nil {
		writeError(w, err, "")
		return
	}

	var req models.UpdateQuestionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		writeError(w, errInvalidJSON, "")
		return
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Title cannot be empty")
		return
	}

	var updated *models.Question
	err = withTx(r.Context(), h.db, func(tx *sql.Tx) error {
		current, err := getQuestion(r.Context(), tx, questionID)
		if err != nil {
			return err
		}
		if _, err := requireSessionOwner(r.Context(), tx, current.SessionID, claims); err != nil {
			return err
		}

		qType := current.Type
		if req.Type != nil {
			qType = strings.ToUpper(strings.TrimSpace(*req.Type))
			if !validQuestionType(qType) {
				return badRequest("Invalid question type")
			}
		}

		now := time.Now().UTC()
		u := newUpdate()
		if req.Title != nil {
			u.set("title", strings.TrimSpace(*req.Title))
		}
		if req.Description != nil {
			u.set("description", nullableString(*req.Description))
		}
		if req.Type != nil {
			u.set("type", qType)
		}
		if req.Options != nil || req.Type != nil {
			opts := req.Options
			if opts == nil {
				opts = current.Options
			}
			normalized, err := normalizeOptions(qType, opts)
			if err != nil {
				return err
			}
			optionsJSON, err := json.Marshal(normalized)
			if err != nil {
				return fmt.Errorf("failed to encode options: %w", err)
			}
			u.set("options", string(optionsJSON))
		}
		if req.Required != nil {
			u.set("required", *req.Required)
		}
		if req.Order != nil {
			u.set("sort_order", *req.Order)
		}
		if req.TimeLimit != nil {
			if *req.TimeLimit <= 0 {
				u.set("time_limit", nil)
			} else {
				u.set("time_limit", *req.TimeLimit)
			}
		}
		if req.Active != nil && !*req.Active {
			u.set("active", false)
		}
		u.set("updated_at", now)

		if err := u.exec(r.Context(), tx, "question", questionID); err != nil {
			return err
		}

		// Activation keeps the single-active-question rule
		if req.Active != nil && *req.Active {
			if err := activateQuestion(r.Context(), tx, current.SessionID, questionID, now); err != nil {
				return err
			}
		}

		updated, err = getQuestion(r.Context(), tx, questionID)
		return err
	})
	if err != nil {
		writeError(w, err, "failed to update question", "question_id", questionID)
		return
	}

	slog.Info("question updated", "question_id", questionID, "active", updated.Active)

	middleware.JSONResponse(w, http.StatusOK, updated)
}

// DeleteQuestion handles DELETE /questions/{id}
func (h *QuestionHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("id")

	claims, err := requireUser(r)
	if err != nil {
		writeError(w, err, "")
		return
	}

	question, err := getQuestion(r.Context(), h.db, questionID)
	if err != nil {
		writeError(w, err, "failed to load question", "question_id", questionID)
		return
	}
	if _, err := requireSessionOwner(r.Context(), h.db, question.SessionID, claims); err != nil {
		writeError(w, err, "failed to load session", "session_id", question.SessionID)
		return
	}

	if _, err := h.db.ExecContext(r.Context(), `DELETE FROM question WHERE id = $1`, questionID); err != nil {
		writeError(w, err, "failed to delete question", "question_id", questionID)
		return
	}

	slog.Info("question deleted", "question_id", questionID, "session_id", question.SessionID)

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Question deleted successfully"})
}

func validQuestionType(t string) bool {
	switch t {
	case models.QuestionMultipleChoice, models.QuestionPoll, models.QuestionText,
		models.QuestionPhotoUpload, models.QuestionRating:
		return true
	}
	return false
}

// normalizeOptions trims choice options and drops blanks. Choice questions
// need at least two; other types always store an empty list.
func normalizeOptions(qType string, options []string) ([]string, error) {
	if qType != models.QuestionMultipleChoice && qType != models.QuestionPoll {
		return []string{}, nil
	}

	out := make([]string, 0, len(options))
	for _, opt := range options {
		if opt = strings.TrimSpace(opt); opt != "" {
			out = append(out, opt)
		}
	}
	if len(out) < 2 {
		return nil, badRequest("Multiple choice and poll questions need at least 2 options")
	}
	return out, nil
}
