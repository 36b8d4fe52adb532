// Copyright (c) 2025 The ARS-BZ Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/benny2744/ARS-BZ/models"
	"github.com/benny2744/ARS-BZ/testutil"
)

func joinRequest(code, nickname string) *http.Request {
	return testutil.MakeRequest("POST", "/sessions/join", models.JoinSessionRequest{
		SessionCode: code,
		Nickname:    nickname,
	}, nil)
}

func TestJoinSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewSessionHandler(db, testutil.GetTestConfig())

	adminID, _ := testutil.CreateTestUser(t, db, "Admin", models.RoleAdmin)
	userID, _ := testutil.CreateTestUser(t, db, "Alice", models.RoleParticipant)

	_, openCode := testutil.CreateTestSession(t, db, adminID, testutil.SessionOptions{Code: "OPEN01", AllowAnonymous: true})
	_, closedCode := testutil.CreateTestSession(t, db, adminID, testutil.SessionOptions{Code: "AUTH01"})
	_, endedCode := testutil.CreateTestSession(t, db, adminID, testutil.SessionOptions{Code: "DONE01", AllowAnonymous: true, Status: models.StatusCompleted})

	testCases := []struct {
		name           string
		code           string
		nickname       string
		userID         string
		expectedStatus int
		expectedError  string
	}{
		{"anonymous with nickname", openCode, "guest", "", http.StatusOK, ""},
		{"lowercase code", strings.ToLower(openCode), "guest2", "", http.StatusOK, ""},
		{"code with whitespace", "  " + openCode + " ", "guest3", "", http.StatusOK, ""},
		{"authenticated user", closedCode, "", userID, http.StatusOK, ""},
		{"unknown code", "NOPE99", "x", "", http.StatusNotFound, "Session not found"},
		{"missing code", "", "x", "", http.StatusBadRequest, "Session code is required"},
		{"ended session", endedCode, "late", "", http.StatusBadRequest, "Session has ended"},
		{"anonymous not allowed", closedCode, "guest", "", http.StatusUnauthorized, "Authentication required for this session"},
		{"missing nickname", openCode, "   ", "", http.StatusBadRequest, "Nickname is required for anonymous participants"},
		{"nickname taken", openCode, "guest", "", http.StatusBadRequest, "Nickname already taken"},
		{"nickname taken after trim", openCode, " guest ", "", http.StatusBadRequest, "Nickname already taken"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := joinRequest(tc.code, tc.nickname)
			if tc.userID != "" {
				req = testutil.AsUser(req, tc.userID, models.RoleParticipant)
			}
			w := httptest.NewRecorder()

			handler.JoinSession(w, req)

			if tc.expectedError != "" {
				testutil.AssertError(t, w, tc.expectedStatus, tc.expectedError)
				return
			}
			testutil.AssertStatus(t, w, tc.expectedStatus)

			var resp models.JoinSessionResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.ParticipantID == "" || resp.SessionID == "" {
				t.Errorf("Expected session and participant IDs, got %+v", resp)
			}
			if resp.Session.ID != resp.SessionID {
				t.Errorf("Expected session summary for %s, got %s", resp.SessionID, resp.Session.ID)
			}
		})
	}
}

func TestJoinSession_RejoinReturnsSameParticipant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewSessionHandler(db, testutil.GetTestConfig())

	adminID, _ := testutil.CreateTestUser(t, db, "Admin", models.RoleAdmin)
	userID, _ := testutil.CreateTestUser(t, db, "Alice", models.RoleParticipant)
	sessionID, code := testutil.CreateTestSession(t, db, adminID, testutil.SessionOptions{MaxParticipants: testutil.IntPtr(5)})

	join := func() models.JoinSessionResponse {
		t.Helper()
		req := testutil.AsUser(joinRequest(code, ""), userID, models.RoleParticipant)
		w := httptest.NewRecorder()
		handler.JoinSession(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.JoinSessionResponse
		testutil.AssertJSON(t, w, &resp)
		return resp
	}

	first := join()
	second := join()

	if first.ParticipantID != second.ParticipantID {
		t.Errorf("Expected the same participant on rejoin, got %s and %s", first.ParticipantID, second.ParticipantID)
	}

	var count int
	db.QueryRow(`SELECT COUNT(*) FROM session_participant WHERE session_id = $1`, sessionID).Scan(&count)
	if count != 1 {
		t.Errorf("Expected 1 participant row, got %d", count)
	}
}

func TestJoinSession_RejoinAtCapacityFails(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewSessionHandler(db, testutil.GetTestConfig())

	adminID, _ := testutil.CreateTestUser(t, db, "Admin", models.RoleAdmin)
	userID, _ := testutil.CreateTestUser(t, db, "Bob", models.RoleParticipant)
	_, code := testutil.CreateTestSession(t, db, adminID, testutil.SessionOptions{MaxParticipants: testutil.IntPtr(1)})

	w := httptest.NewRecorder()
	handler.JoinSession(w, testutil.AsUser(joinRequest(code, ""), userID, models.RoleParticipant))
	testutil.AssertStatus(t, w, http.StatusOK)

	// Bob holds the only seat; the session is now at capacity for everyone
	w = httptest.NewRecorder()
	handler.JoinSession(w, testutil.AsUser(joinRequest(code, ""), userID, models.RoleParticipant))
	testutil.AssertError(t, w, http.StatusBadRequest, "Session is full")
}

func TestJoinSession_Capacity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewSessionHandler(db, testutil.GetTestConfig())

	adminID, _ := testutil.CreateTestUser(t, db, "Admin", models.RoleAdmin)
	userID, _ := testutil.CreateTestUser(t, db, "Bob", models.RoleParticipant)
	_, code := testutil.CreateTestSession(t, db, adminID, testutil.SessionOptions{AllowAnonymous: true, MaxParticipants: testutil.IntPtr(2)})

	for _, nick := range []string{"one", "two"} {
		w := httptest.NewRecorder()
		handler.JoinSession(w, joinRequest(code, nick))
		testutil.AssertStatus(t, w, http.StatusOK)
	}

	t.Run("anonymous rejected when full", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.JoinSession(w, joinRequest(code, "three"))
		testutil.AssertError(t, w, http.StatusBadRequest, "Session is full")
	})

	t.Run("new user rejected when full", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.JoinSession(w, testutil.AsUser(joinRequest(code, ""), userID, models.RoleParticipant))
		testutil.AssertError(t, w, http.StatusBadRequest, "Session is full")
	})
}

func TestJoinSession_ActiveQuestion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewSessionHandler(db, testutil.GetTestConfig())

	adminID, _ := testutil.CreateTestUser(t, db, "Admin", models.RoleAdmin)
	sessionID, code := testutil.CreateTestSession(t, db, adminID, testutil.SessionOptions{AllowAnonymous: true, ShowRealTimeResults: true})

	t.Run("no active question", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.JoinSession(w, joinRequest(code, "early"))
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.JoinSessionResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Session.ActiveQuestion != nil {
			t.Errorf("Expected no active question, got %+v", resp.Session.ActiveQuestion)
		}
		if !resp.Session.ShowRealTimeResults || !resp.Session.AllowAnonymous {
			t.Errorf("Expected session flags in summary, got %+v", resp.Session)
		}
	})

	testutil.CreateTestQuestion(t, db, sessionID, models.QuestionText, nil, false)
	active := testutil.CreateTestQuestion(t, db, sessionID, models.QuestionPoll, []string{"Yes", "No"}, true)

	t.Run("active question included", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.JoinSession(w, joinRequest(code, "late"))
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.JoinSessionResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Session.ActiveQuestion == nil || resp.Session.ActiveQuestion.ID != active {
			t.Fatalf("Expected active question %s, got %+v", active, resp.Session.ActiveQuestion)
		}
		if len(resp.Session.ActiveQuestion.Options) != 2 {
			t.Errorf("Expected 2 options, got %v", resp.Session.ActiveQuestion.Options)
		}
	})
}
