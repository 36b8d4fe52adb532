// Copyright (c) 2025 The ARS-BZ Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/benny2744/ARS-BZ/auth"
	"github.com/benny2744/ARS-BZ/middleware"
	"github.com/benny2744/ARS-BZ/results"
)

// apiError is a failure the client caused or may see verbatim
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string { return e.message }

func badRequest(message string) *apiError {
	return &apiError{status: http.StatusBadRequest, message: message}
}

var (
	errUnauthorized = &apiError{http.StatusUnauthorized, "Unauthorized"}
	errForbidden    = &apiError{http.StatusForbidden, "Forbidden"}
	errInvalidJSON  = badRequest("Invalid JSON")
	errMissingField = badRequest("Missing required fields")

	ErrSessionNotFound  = &apiError{http.StatusNotFound, "Session not found"}
	ErrQuestionNotFound = &apiError{http.StatusNotFound, "Question not found"}
	ErrFileNotFound     = &apiError{http.StatusNotFound, "File not found"}

	// Join admission
	ErrSessionEnded     = badRequest("Session has ended")
	ErrSessionFull      = badRequest("Session is full")
	ErrAuthRequired     = &apiError{http.StatusUnauthorized, "Authentication required for this session"}
	ErrNicknameRequired = badRequest("Nickname is required for anonymous participants")
	ErrNicknameTaken    = badRequest("Nickname already taken")

	// Response admission
	ErrInvalidResponseType     = badRequest("Invalid response type")
	ErrMissingPayload          = badRequest("Response value is required for this response type")
	ErrQuestionSessionMismatch = badRequest("Question does not belong to this session")
	ErrQuestionInactive        = badRequest("Question is not currently active")
	ErrParticipantRequired     = badRequest("Participant ID required for anonymous responses")
	ErrParticipantNotInSession = badRequest("Participant does not belong to this session")
	ErrDuplicateResponse       = badRequest("Response already submitted")

	ErrUserExists = badRequest("User already exists")
)

// writeError maps err to a status code and writes {"error": message}.
// Anything unrecognized is logged and answered with a generic 500.
func writeError(w http.ResponseWriter, err error, logMsg string, logArgs ...any) {
	var apiErr *apiError
	switch {
	case errors.As(err, &apiErr):
		middleware.ErrorResponse(w, apiErr.status, apiErr.message)
	case errors.Is(err, results.ErrPermissionDenied):
		middleware.ErrorResponse(w, http.StatusForbidden, "Results not available")
	case errors.Is(err, auth.ErrInvalidCredentials):
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid credentials")
	default:
		slog.Error(logMsg, append(logArgs, "error", err)...)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}
