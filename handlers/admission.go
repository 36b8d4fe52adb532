// Copyright (c) 2025 The ARS-BZ Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benny2744/ARS-BZ/auth"
	"github.com/benny2744/ARS-BZ/db"
	"github.com/benny2744/ARS-BZ/models"
)

// errJoinRace means the same user joined concurrently; retrying finds
// the participant the other request created
var errJoinRace = errors.New("participant created concurrently")

// joinSession admits a caller into the session identified by code.
// userID is empty for anonymous callers. A full session refuses everyone;
// otherwise an authenticated caller who already joined gets the existing
// participant back.
func joinSession(ctx context.Context, tx *sql.Tx, code, nickname, userID string) (*models.Session, string, error) {
	session, err := getSessionByCode(ctx, tx, auth.NormalizeSessionCode(code))
	if err != nil {
		return nil, "", err
	}

	if session.Status == models.StatusCompleted {
		return nil, "", ErrSessionEnded
	}

	if userID != "" {
		if err := checkCapacity(ctx, tx, session); err != nil {
			return nil, "", err
		}

		participantID, err := findUserParticipant(ctx, tx, session.ID, userID)
		if err != nil {
			return nil, "", err
		}
		if participantID != "" {
			return session, participantID, nil
		}

		participantID, err = insertParticipant(ctx, tx, session.ID, &userID, nil)
		if db.IsUniqueViolation(err) {
			return nil, "", errJoinRace
		}
		if err != nil {
			return nil, "", err
		}
		return session, participantID, nil
	}

	if !session.AllowAnonymous {
		return nil, "", ErrAuthRequired
	}

	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, "", ErrNicknameRequired
	}

	if err := checkCapacity(ctx, tx, session); err != nil {
		return nil, "", err
	}

	var taken bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM session_participant WHERE session_id = $1 AND nickname = $2)
	`, session.ID, nickname).Scan(&taken)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check nickname: %w", err)
	}
	if taken {
		return nil, "", ErrNicknameTaken
	}

	participantID, err := insertParticipant(ctx, tx, session.ID, nil, &nickname)
	if db.IsUniqueViolation(err) {
		return nil, "", ErrNicknameTaken
	}
	if err != nil {
		return nil, "", err
	}
	return session, participantID, nil
}

func findUserParticipant(ctx context.Context, q querier, sessionID, userID string) (string, error) {
	var id string
	err := q.QueryRowContext(ctx, `
		SELECT id FROM session_participant WHERE session_id = $1 AND user_id = $2
	`, sessionID, userID).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query participant: %w", err)
	}
	return id, nil
}

func checkCapacity(ctx context.Context, q querier, session *models.Session) error {
	if session.MaxParticipants == nil {
		return nil
	}
	n, err := countParticipants(ctx, q, session.ID)
	if err != nil {
		return err
	}
	if n >= *session.MaxParticipants {
		return ErrSessionFull
	}
	return nil
}

func insertParticipant(ctx context.Context, q querier, sessionID string, userID, nickname *string) (string, error) {
	id := auth.NewID()
	_, err := q.ExecContext(ctx, `
		INSERT INTO session_participant (id, session_id, user_id, nickname, joined_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, sessionID, userID, nickname, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to insert participant: %w", err)
	}
	return id, nil
}

// responseMeta is request metadata stored alongside a response
type responseMeta struct {
	IPHash    string
	UserAgent string
}

// admitResponse validates a submission and stores it.
// userID is empty for anonymous callers, who must name their participant.
func admitResponse(ctx context.Context, q querier, req models.SubmitResponseRequest, userID string, meta responseMeta) (*models.Response, error) {
	if req.QuestionID == "" || req.SessionID == "" || req.ResponseType == "" {
		return nil, errMissingField
	}

	responseType := strings.ToUpper(strings.TrimSpace(req.ResponseType))
	payload, err := responsePayload(responseType, req)
	if err != nil {
		return nil, err
	}

	question, err := getQuestion(ctx, q, req.QuestionID)
	if err != nil {
		return nil, err
	}
	if question.SessionID != req.SessionID {
		return nil, ErrQuestionSessionMismatch
	}
	if !question.Active {
		return nil, ErrQuestionInactive
	}

	resp := &models.Response{
		ID:           auth.NewID(),
		QuestionID:   question.ID,
		SessionID:    question.SessionID,
		ResponseType: responseType,
		SubmittedAt:  time.Now().UTC(),
		IPHash:       nullableString(meta.IPHash),
		UserAgent:    nullableString(meta.UserAgent),
	}
	switch responseType {
	case models.ResponseText, models.ResponseRating:
		resp.TextValue = &payload
	case models.ResponseOption:
		resp.OptionValue = &payload
	case models.ResponseFile:
		resp.FileURL = &payload
	}

	var duplicate bool
	if userID != "" {
		resp.UserID = &userID
		err = q.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM response WHERE question_id = $1 AND user_id = $2)
		`, question.ID, userID).Scan(&duplicate)
	} else {
		if req.ParticipantID == "" {
			return nil, ErrParticipantRequired
		}
		var participantSession string
		err = q.QueryRowContext(ctx,
			`SELECT session_id FROM session_participant WHERE id = $1`, req.ParticipantID).Scan(&participantSession)
		if err == sql.ErrNoRows || (err == nil && participantSession != question.SessionID) {
			return nil, ErrParticipantNotInSession
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query participant: %w", err)
		}

		resp.ParticipantID = &req.ParticipantID
		err = q.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM response WHERE question_id = $1 AND participant_id = $2)
		`, question.ID, req.ParticipantID).Scan(&duplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check existing response: %w", err)
	}
	if duplicate {
		return nil, ErrDuplicateResponse
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO response (id, question_id, session_id, user_id, participant_id, response_type,
			text_value, option_value, file_url, submitted_at, ip_hash, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, resp.ID, resp.QuestionID, resp.SessionID, resp.UserID, resp.ParticipantID, resp.ResponseType,
		resp.TextValue, resp.OptionValue, resp.FileURL, resp.SubmittedAt, resp.IPHash, resp.UserAgent)
	if db.IsUniqueViolation(err) {
		return nil, ErrDuplicateResponse
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert response: %w", err)
	}

	return resp, nil
}

// responsePayload returns the non-empty value field matching responseType
func responsePayload(responseType string, req models.SubmitResponseRequest) (string, error) {
	var v *string
	switch responseType {
	case models.ResponseText, models.ResponseRating:
		v = req.TextValue
	case models.ResponseOption:
		v = req.OptionValue
	case models.ResponseFile:
		v = req.FileURL
	default:
		return "", ErrInvalidResponseType
	}
	if v == nil || strings.TrimSpace(*v) == "" {
		return "", ErrMissingPayload
	}
	return *v, nil
}
