// Copyright (c) 2025 The ARS-BZ Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// User roles
const (
	RoleAdmin       = "ADMIN"
	RoleParticipant = "PARTICIPANT"
)

// Session status constants
const (
	StatusWaiting   = "WAITING"
	StatusActive    = "ACTIVE"
	StatusPaused    = "PAUSED"
	StatusCompleted = "COMPLETED"
)

// Question type constants
const (
	QuestionMultipleChoice = "MULTIPLE_CHOICE"
	QuestionPoll           = "POLL"
	QuestionText           = "TEXT"
	QuestionPhotoUpload    = "PHOTO_UPLOAD"
	QuestionRating         = "RATING"
)

// Response type constants
const (
	ResponseText   = "TEXT"
	ResponseOption = "OPTION"
	ResponseFile   = "FILE"
	ResponseRating = "RATING"
)

// Request types

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateSessionRequest struct {
	Title               string  `json:"title"`
	Description         *string `json:"description"`
	AllowAnonymous      *bool   `json:"allowAnonymous"`
	ShowRealTimeResults *bool   `json:"showRealTimeResults"`
	MaxParticipants     *int    `json:"maxParticipants"`
}

// nil fields are left unchanged; MaxParticipants 0 clears the cap
type UpdateSessionRequest struct {
	Title               *string `json:"title"`
	Description         *string `json:"description"`
	Status              *string `json:"status"`
	AllowAnonymous      *bool   `json:"allowAnonymous"`
	ShowRealTimeResults *bool   `json:"showRealTimeResults"`
	MaxParticipants     *int    `json:"maxParticipants"`
}

type JoinSessionRequest struct {
	SessionCode string `json:"sessionCode"`
	Nickname    string `json:"nickname"`
}

type CreateQuestionRequest struct {
	SessionID   string   `json:"sessionId"`
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Type        string   `json:"type"`
	Options     []string `json:"options"`
	Required    *bool    `json:"required"`
	TimeLimit   *int     `json:"timeLimit"`
}

// nil fields are left unchanged
type UpdateQuestionRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Type        *string  `json:"type"`
	Options     []string `json:"options"`
	Required    *bool    `json:"required"`
	Active      *bool    `json:"active"`
	Order       *int     `json:"order"`
	TimeLimit   *int     `json:"timeLimit"`
}

type SubmitResponseRequest struct {
	QuestionID    string  `json:"questionId"`
	SessionID     string  `json:"sessionId"`
	ParticipantID string  `json:"participantId"`
	ResponseType  string  `json:"responseType"`
	TextValue     *string `json:"textValue"`
	OptionValue   *string `json:"optionValue"`
	FileURL       *string `json:"fileUrl"`
}

// Response types

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type JoinSessionResponse struct {
	SessionID     string        `json:"sessionId"`
	ParticipantID string        `json:"participantId"`
	Session       JoinedSession `json:"session"`
}

// JoinedSession is the participant-facing session summary returned on join
type JoinedSession struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Description         *string   `json:"description"`
	Status              string    `json:"status"`
	AllowAnonymous      bool      `json:"allowAnonymous"`
	ShowRealTimeResults bool      `json:"showRealTimeResults"`
	ActiveQuestion      *Question `json:"activeQuestion"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Domain types

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	CreatedAt    time.Time `json:"createdAt"`
}

type Session struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Description         *string   `json:"description"`
	SessionCode         string    `json:"sessionCode"`
	AdminID             string    `json:"adminId"`
	Status              string    `json:"status"`
	AllowAnonymous      bool      `json:"allowAnonymous"`
	ShowRealTimeResults bool      `json:"showRealTimeResults"`
	MaxParticipants     *int      `json:"maxParticipants"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// SessionSummary is a session row in the admin listing
type SessionSummary struct {
	Session
	QuestionCount    int `json:"questionCount"`
	ParticipantCount int `json:"participantCount"`
	ResponseCount    int `json:"responseCount"`
}

// SessionDetail is what participants poll while a session runs
type SessionDetail struct {
	Session
	Questions        []Question `json:"questions"`
	ParticipantCount int        `json:"participantCount"`
}

type Question struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"sessionId"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Type        string    `json:"type"`
	Options     []string  `json:"options"`
	Required    bool      `json:"required"`
	Active      bool      `json:"active"`
	Order       int       `json:"order"`
	TimeLimit   *int      `json:"timeLimit"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Response struct {
	ID            string    `json:"id"`
	QuestionID    string    `json:"questionId"`
	SessionID     string    `json:"sessionId"`
	UserID        *string   `json:"userId"`
	ParticipantID *string   `json:"participantId"`
	ResponseType  string    `json:"responseType"`
	TextValue     *string   `json:"textValue"`
	OptionValue   *string   `json:"optionValue"`
	FileURL       *string   `json:"fileUrl"`
	SubmittedAt   time.Time `json:"submittedAt"`
	IPHash        *string   `json:"-"` // Never expose in JSON
	UserAgent     *string   `json:"-"` // Never expose in JSON
}

type ResponseUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ResponseQuestion struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// ResponseWithDetails is a row of the admin raw-response listing
type ResponseWithDetails struct {
	Response
	User     *ResponseUser     `json:"user"`
	Question *ResponseQuestion `json:"question,omitempty"`
}

type Participant struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	UserID    *string   `json:"userId"`
	Nickname  *string   `json:"nickname"`
	JoinedAt  time.Time `json:"joinedAt"`
}

type Upload struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	FileSize     int64     `json:"fileSize"`
	FileURL      string    `json:"fileUrl"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// Error response

type ErrorResponse struct {
	Error string `json:"error"`
}
