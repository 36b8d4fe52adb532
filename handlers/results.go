// Copyright (c) 2025 The ARS-BZ Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/benny2744/ARS-BZ/cliparse"
	"github.com/benny2744/ARS-BZ/middleware"
	"github.com/benny2744/ARS-BZ/results"
)

type ResultsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{db: db, cfg: cfg}
}

// GetResults handles GET /sessions/{id}/results
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	var viewer results.Viewer
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		viewer.UserID = claims.UserID
	}

	session, err := loadResultsInput(r.Context(), h.db, sessionID, viewer)
	if err != nil {
		writeError(w, err, "failed to load results", "session_id", sessionID)
		return
	}

	res, err := results.Aggregate(*session, viewer)
	if err != nil {
		writeError(w, err, "failed to aggregate results", "session_id", sessionID)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, res)
}

// loadResultsInput reads a session, its ordered questions and every response
// in the shape results.Aggregate expects. Responses are not read at all when
// the viewer may not see them.
func loadResultsInput(ctx context.Context, q querier, sessionID string, viewer results.Viewer) (*results.Session, error) {
	session, err := getSession(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}

	gate := results.Session{AdminID: session.AdminID}
	if !session.ShowRealTimeResults && !gate.IsAdmin(viewer) {
		return nil, results.ErrPermissionDenied
	}

	questions, err := listQuestions(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}

	participants, err := countParticipants(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}

	in := &results.Session{
		ID:                  session.ID,
		Title:               session.Title,
		Status:              session.Status,
		AdminID:             session.AdminID,
		ShowRealTimeResults: session.ShowRealTimeResults,
		TotalParticipants:   participants,
		Questions:           make([]results.Question, len(questions)),
	}

	index := make(map[string]int, len(questions))
	for i, question := range questions {
		index[question.ID] = i
		in.Questions[i] = results.Question{
			ID:      question.ID,
			Title:   question.Title,
			Type:    question.Type,
			Options: question.Options,
		}
	}

	rows, err := q.QueryContext(ctx, `
		SELECT rs.id, rs.question_id, rs.text_value, rs.option_value, rs.file_url, rs.submitted_at, u.name
		FROM response rs
		LEFT JOIN users u ON u.id = rs.user_id
		WHERE rs.session_id = $1
		ORDER BY rs.submitted_at
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query responses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			resp       results.Response
			questionID string
			name       sql.NullString
		)
		if err := rows.Scan(&resp.ID, &questionID, &resp.TextValue, &resp.OptionValue, &resp.FileURL, &resp.SubmittedAt, &name); err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		resp.ResponderName = name.String

		i, ok := index[questionID]
		if !ok {
			continue
		}
		in.Questions[i].Responses = append(in.Questions[i].Responses, resp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate responses: %w", err)
	}

	return in, nil
}
