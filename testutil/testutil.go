// Copyright (c) 2025 The ARS-BZ Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benny2744/ARS-BZ/auth"
	"github.com/benny2744/ARS-BZ/cliparse"
	"github.com/benny2744/ARS-BZ/db"
	"github.com/benny2744/ARS-BZ/middleware"
	"github.com/benny2744/ARS-BZ/models"
	"golang.org/x/crypto/bcrypt"
)

// TestAuthSecret signs tokens in tests
const TestAuthSecret = "test-auth-secret"

// TestPassword is the password of every user made by CreateTestUser
const TestPassword = "password123"

// SetupTestDB creates a fresh in-memory SQLite database with the full schema.
// Every test gets its own database; it is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, auth.NewID()[:8])

	conn, err := db.Open(context.Background(), cliparse.DatabaseSQLite, dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// A single connection keeps the in-memory database alive and serializes
	// writers the way the file-backed WAL database would.
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(context.Background(), conn); err != nil {
		conn.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  ":memory:",
		DatabaseType: cliparse.DatabaseSQLite,
		AuthSecret:   TestAuthSecret,
		UploadDir:    "uploads",
		LogLevel:     "error",
	}
}

// CreateTestUser inserts a user and returns its ID and email.
// The email is derived from name and made unique per call.
func CreateTestUser(t *testing.T, conn *sql.DB, name, role string) (id, email string) {
	t.Helper()

	id = auth.NewID()
	email = fmt.Sprintf("%s-%s@example.com", strings.ToLower(strings.ReplaceAll(name, " ", ".")), id[:8])

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	_, err = conn.Exec(`
		INSERT INTO users (id, name, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, name, email, string(hash), role, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return id, email
}

// SessionOptions configures CreateTestSession
type SessionOptions struct {
	Code                string // generated when empty
	Status              string // WAITING when empty
	AllowAnonymous      bool
	ShowRealTimeResults bool
	MaxParticipants     *int
}

// CreateTestSession inserts a session owned by adminID and returns its ID and join code
func CreateTestSession(t *testing.T, conn *sql.DB, adminID string, opts SessionOptions) (sessionID, code string) {
	t.Helper()

	sessionID = auth.NewID()
	code = opts.Code
	if code == "" {
		var err error
		if code, err = auth.GenerateSessionCode(); err != nil {
			t.Fatalf("Failed to generate session code: %v", err)
		}
	}
	status := opts.Status
	if status == "" {
		status = models.StatusWaiting
	}

	now := time.Now().UTC()
	_, err := conn.Exec(`
		INSERT INTO polling_session (id, title, description, session_code, admin_id, status,
			allow_anonymous, show_real_time_results, max_participants, created_at, updated_at)
		VALUES ($1, 'Test Session', 'A test session', $2, $3, $4, $5, $6, $7, $8, $9)
	`, sessionID, code, adminID, status, opts.AllowAnonymous, opts.ShowRealTimeResults, opts.MaxParticipants, now, now)
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return sessionID, code
}

// CreateTestQuestion appends a question to a session and returns its ID
func CreateTestQuestion(t *testing.T, conn *sql.DB, sessionID, qType string, options []string, active bool) string {
	t.Helper()

	if options == nil {
		options = []string{}
	}
	optionsJSON, _ := json.Marshal(options)

	var order int
	if err := conn.QueryRow(`SELECT COALESCE(MAX(sort_order), 0) + 1 FROM question WHERE session_id = $1`, sessionID).Scan(&order); err != nil {
		t.Fatalf("Failed to compute question order: %v", err)
	}

	id := auth.NewID()
	now := time.Now().UTC()
	_, err := conn.Exec(`
		INSERT INTO question (id, session_id, title, type, options, required, active, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, id, sessionID, "Question "+qType, qType, string(optionsJSON), true, active, order, now, now)
	if err != nil {
		t.Fatalf("Failed to create test question: %v", err)
	}

	return id
}

// CreateTestParticipant joins a session either as userID or as nickname
// (pass "" for the one not used) and returns the participant ID
func CreateTestParticipant(t *testing.T, conn *sql.DB, sessionID, userID, nickname string) string {
	t.Helper()

	id := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO session_participant (id, session_id, user_id, nickname, joined_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, sessionID, nullable(userID), nullable(nickname), time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test participant: %v", err)
	}

	return id
}

// ResponseFixture describes a response row for CreateTestResponse.
// Exactly one of UserID and ParticipantID should be set.
type ResponseFixture struct {
	QuestionID    string
	SessionID     string
	UserID        string
	ParticipantID string
	ResponseType  string
	TextValue     string
	OptionValue   string
	FileURL       string
}

// CreateTestResponse inserts a response and returns its ID
func CreateTestResponse(t *testing.T, conn *sql.DB, f ResponseFixture) string {
	t.Helper()

	id := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO response (id, question_id, session_id, user_id, participant_id, response_type,
			text_value, option_value, file_url, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, id, f.QuestionID, f.SessionID, nullable(f.UserID), nullable(f.ParticipantID), f.ResponseType,
		nullable(f.TextValue), nullable(f.OptionValue), nullable(f.FileURL), time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test response: %v", err)
	}

	return id
}

// AsUser attaches an authenticated user to the request, as WithAuth would
func AsUser(req *http.Request, userID, role string) *http.Request {
	claims := &auth.Claims{UserID: userID, Name: "Test " + role, Role: role}
	return req.WithContext(middleware.ContextWithClaims(req.Context(), claims))
}

// BearerHeader returns an Authorization header for a signed token
func BearerHeader(t *testing.T, userID, role string) map[string]string {
	t.Helper()

	token, err := auth.SignToken(userID, "Test "+role, userID+"@example.com", role, TestAuthSecret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertError checks the status code and the {"error": message} body
func AssertError(t *testing.T, w *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	AssertStatus(t, w, status)

	var resp models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode error response: %v (body %s)", err, w.Body.String())
	}
	if resp.Error != message {
		t.Errorf("Expected error %q, got %q", message, resp.Error)
	}
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int { return &v }

// StrPtr returns a pointer to s
func StrPtr(s string) *string { return &s }

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
