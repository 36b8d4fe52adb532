// Copyright (c) 2025 The ARS-BZ Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

All JSON field names are camelCase.

# Request Types

Types for parsing incoming JSON:

  - SignupRequest, LoginRequest: account creation and credentials login
  - CreateSessionRequest, UpdateSessionRequest: session CRUD (pointer fields are optional)
  - JoinSessionRequest: sessionCode, nickname
  - CreateQuestionRequest, UpdateQuestionRequest: question CRUD
  - SubmitResponseRequest: questionId, sessionId, participantId, responseType, payload

# Response Types

  - LoginResponse: token, user
  - JoinSessionResponse: sessionId, participantId, session summary with activeQuestion
  - MessageResponse: message
  - ErrorResponse: error

# Domain Types

  - User: account with role (ADMIN or PARTICIPANT)
  - Session, SessionSummary, SessionDetail: polling session and its list/detail views
  - Question: ordered question with options and active flag
  - Response, ResponseWithDetails: a submitted answer
  - Participant: authenticated user or anonymous nickname in a session
  - Upload: stored photo metadata

Aggregated results live in package results.

# Constants

Session status values:

	StatusWaiting   = "WAITING"
	StatusActive    = "ACTIVE"
	StatusPaused    = "PAUSED"
	StatusCompleted = "COMPLETED"

Question types:

	QuestionMultipleChoice = "MULTIPLE_CHOICE"
	QuestionPoll           = "POLL"
	QuestionText           = "TEXT"
	QuestionPhotoUpload    = "PHOTO_UPLOAD"
	QuestionRating         = "RATING"

Response types:

	ResponseText   = "TEXT"
	ResponseOption = "OPTION"
	ResponseFile   = "FILE"
	ResponseRating = "RATING"
*/
package models
