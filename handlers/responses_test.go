// Copyright (c) 2025 The ARS-BZ Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/benny2744/ARS-BZ/models"
	"github.com/benny2744/ARS-BZ/testutil"
)

func TestSubmitResponse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewResponseHandler(db, testutil.GetTestConfig())

	adminID, _ := testutil.CreateTestUser(t, db, "Admin", models.RoleAdmin)
	userID, _ := testutil.CreateTestUser(t, db, "Alice", models.RoleParticipant)
	sessionID, _ := testutil.CreateTestSession(t, db, adminID, testutil.SessionOptions{AllowAnonymous: true})
	otherSession, _ := testutil.CreateTestSession(t, db, adminID, testutil.SessionOptions{AllowAnonymous: true})

	active := testutil.CreateTestQuestion(t, db, sessionID, models.QuestionPoll, []string{"A", "B"}, true)
	inactive := testutil.CreateTestQuestion(t, db, sessionID, models.QuestionText, nil, false)
	participant := testutil.CreateTestParticipant(t, db, sessionID, "", "guest")
	outsider := testutil.CreateTestParticipant(t, db, otherSession, "", "outsider")

	testCases := []struct {
		name           string
		userID         string
		req            models.SubmitResponseRequest
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "missing fields",
			req:            models.SubmitResponseRequest{QuestionID: active},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Missing required fields",
		},
		{
			name:           "invalid response type",
			req:            models.SubmitResponseRequest{QuestionID: active, SessionID: sessionID, ParticipantID: participant, ResponseType: "VIDEO", TextValue: testutil.StrPtr("x")},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid response type",
		},
		{
			name:           "missing payload",
			req:            models.SubmitResponseRequest{QuestionID: active, SessionID: sessionID, ParticipantID: participant, ResponseType: models.ResponseOption, TextValue: testutil.StrPtr("A")},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Response value is required for this response type",
		},
		{
			name:           "unknown question",
			req:            models.SubmitResponseRequest{QuestionID: "missing", SessionID: sessionID, ParticipantID: participant, ResponseType: models.ResponseOption, OptionValue: testutil.StrPtr("A")},
			expectedStatus: http.StatusNotFound,
			expectedError:  "Question not found",
		},
		{
			name:           "question from another session",
			req:            models.SubmitResponseRequest{QuestionID: active, SessionID: otherSession, ParticipantID: outsider, ResponseType: models.ResponseOption, OptionValue: testutil.StrPtr("A")},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Question does not belong to this session",
		},
		{
			name:           "inactive question",
			req:            models.SubmitResponseRequest{QuestionID: inactive, SessionID: sessionID, ParticipantID: participant, ResponseType: models.ResponseText, TextValue: testutil.StrPtr("late")},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Question is not currently active",
		},
		{
			name:           "anonymous without participant",
			req:            models.SubmitResponseRequest{QuestionID: active, SessionID: sessionID, ResponseType: models.ResponseOption, OptionValue: testutil.StrPtr("A")},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Participant ID required for anonymous responses",
		},
		{
			name:           "participant from another session",
			req:            models.SubmitResponseRequest{QuestionID: active, SessionID: sessionID, ParticipantID: outsider, ResponseType: models.ResponseOption, OptionValue: testutil.StrPtr("A")},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Participant does not belong to this session",
		},
		{
			name:           "unknown participant",
			req:            models.SubmitResponseRequest{QuestionID: active, SessionID: sessionID, ParticipantID: "missing", ResponseType: models.ResponseOption, OptionValue: testutil.StrPtr("A")},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Participant does not belong to this session",
		},
		{
			name:           "anonymous participant",
			req:            models.SubmitResponseRequest{QuestionID: active, SessionID: sessionID, ParticipantID: participant, ResponseType: models.ResponseOption, OptionValue: testutil.StrPtr("A")},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "anonymous participant again",
			req:            models.SubmitResponseRequest{QuestionID: active, SessionID: sessionID, ParticipantID: participant, ResponseType: models.ResponseOption, OptionValue: testutil.StrPtr("B")},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Response already submitted",
		},
		{
			name:           "authenticated user",
			userID:         userID,
			req:            models.SubmitResponseRequest{QuestionID: active, SessionID: sessionID, ResponseType: "option", OptionValue: testutil.StrPtr("B")},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "authenticated user again",
			userID:         userID,
			req:            models.SubmitResponseRequest{QuestionID: active, SessionID: sessionID, ResponseType: models.ResponseOption, OptionValue: testutil.StrPtr("A")},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Response already submitted",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/responses", tc.req, map[string]string{"User-Agent": "ars-test/1.0"})
			if tc.userID != "" {
				req = testutil.AsUser(req, tc.userID, models.RoleParticipant)
			}
			w := httptest.NewRecorder()

			handler.SubmitResponse(w, req)

			if tc.expectedError != "" {
				testutil.AssertError(t, w, tc.expectedStatus, tc.expectedError)
			} else {
				testutil.AssertStatus(t, w, tc.expectedStatus)
			}
		})
	}

	var count int
	db.QueryRow(`SELECT COUNT(*) FROM response WHERE question_id = $1`, active).Scan(&count)
	if count != 2 {
		t.Errorf("Expected 2 stored responses, got %d", count)
	}
}

func TestSubmitResponse_StoresMetadata(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewResponseHandler(db, testutil.GetTestConfig())

	adminID, _ := testutil.CreateTestUser(t, db, "Admin", models.RoleAdmin)
	sessionID, _ := testutil.CreateTestSession(t, db, adminID, testutil.SessionOptions{AllowAnonymous: true})
	questionID := testutil.CreateTestQuestion(t, db, sessionID, models.QuestionRating, nil, true)
	participant := testutil.CreateTestParticipant(t, db, sessionID, "", "rater")

	body := models.SubmitResponseRequest{
		QuestionID:    questionID,
		SessionID:     sessionID,
		ParticipantID: participant,
		ResponseType:  models.ResponseRating,
		TextValue:     testutil.StrPtr("4"),
	}
	req := testutil.MakeRequest("POST", "/responses", body, map[string]string{
		"User-Agent":      "ars-test/1.0",
		"X-Forwarded-For": "203.0.113.7, 10.0.0.1",
	})
	w := httptest.NewRecorder()
	handler.SubmitResponse(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.Response
	testutil.AssertJSON(t, w, &resp)
	if resp.TextValue == nil || *resp.TextValue != "4" {
		t.Errorf("Expected rating stored as text value 4, got %v", resp.TextValue)
	}
	if resp.ParticipantID == nil || *resp.ParticipantID != participant {
		t.Errorf("Expected participant %s, got %v", participant, resp.ParticipantID)
	}
	if resp.UserID != nil {
		t.Errorf("Expected no user on anonymous response, got %s", *resp.UserID)
	}

	var ipHash, userAgent string
	db.QueryRow(`SELECT ip_hash, user_agent FROM response WHERE id = $1`, resp.ID).Scan(&ipHash, &userAgent)
	if ipHash == "" || ipHash == "203.0.113.7" {
		t.Errorf("Expected hashed client IP, got %q", ipHash)
	}
	if userAgent != "ars-test/1.0" {
		t.Errorf("Expected user agent to be stored, got %q", userAgent)
	}
}

func TestListResponses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewResponseHandler(db, testutil.GetTestConfig())

	adminID, _ := testutil.CreateTestUser(t, db, "Admin", models.RoleAdmin)
	otherAdmin, _ := testutil.CreateTestUser(t, db, "Other", models.RoleAdmin)
	userID, userEmail := testutil.CreateTestUser(t, db, "Alice", models.RoleParticipant)
	sessionID, _ := testutil.CreateTestSession(t, db, adminID, testutil.SessionOptions{AllowAnonymous: true})
	q1 := testutil.CreateTestQuestion(t, db, sessionID, models.QuestionText, nil, true)
	q2 := testutil.CreateTestQuestion(t, db, sessionID, models.QuestionText, nil, false)
	participant := testutil.CreateTestParticipant(t, db, sessionID, "", "guest")

	testutil.CreateTestResponse(t, db, testutil.ResponseFixture{QuestionID: q1, SessionID: sessionID, UserID: userID, ResponseType: models.ResponseText, TextValue: "from alice"})
	testutil.CreateTestResponse(t, db, testutil.ResponseFixture{QuestionID: q1, SessionID: sessionID, ParticipantID: participant, ResponseType: models.ResponseText, TextValue: "from guest"})
	testutil.CreateTestResponse(t, db, testutil.ResponseFixture{QuestionID: q2, SessionID: sessionID, ParticipantID: participant, ResponseType: models.ResponseText, TextValue: "second question"})

	list := func(query, userID string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("GET", "/responses"+query, nil, nil)
		if userID != "" {
			req = testutil.AsUser(req, userID, models.RoleAdmin)
		}
		w := httptest.NewRecorder()
		handler.ListResponses(w, req)
		return w
	}

	t.Run("by question", func(t *testing.T) {
		w := list("?questionId="+q1, adminID)
		testutil.AssertStatus(t, w, http.StatusOK)

		var items []models.ResponseWithDetails
		testutil.AssertJSON(t, w, &items)
		if len(items) != 2 {
			t.Fatalf("Expected 2 responses, got %d", len(items))
		}

		var withUser, withoutUser int
		for _, item := range items {
			if item.Question == nil || item.Question.ID != q1 {
				t.Errorf("Expected question details for %s, got %+v", q1, item.Question)
			}
			if item.User != nil {
				withUser++
				if item.User.Email != userEmail || item.User.Name != "Alice" {
					t.Errorf("Expected Alice's details, got %+v", item.User)
				}
			} else {
				withoutUser++
			}
		}
		if withUser != 1 || withoutUser != 1 {
			t.Errorf("Expected one user and one anonymous response, got %d and %d", withUser, withoutUser)
		}
	})

	t.Run("by session", func(t *testing.T) {
		w := list("?sessionId="+sessionID, adminID)
		testutil.AssertStatus(t, w, http.StatusOK)

		var items []models.ResponseWithDetails
		testutil.AssertJSON(t, w, &items)
		if len(items) != 3 {
			t.Errorf("Expected 3 responses, got %d", len(items))
		}
	})

	t.Run("missing filter", func(t *testing.T) {
		testutil.AssertStatus(t, list("", adminID), http.StatusBadRequest)
	})

	t.Run("mismatched filters", func(t *testing.T) {
		otherSession, _ := testutil.CreateTestSession(t, db, adminID, testutil.SessionOptions{})
		testutil.AssertError(t, list("?questionId="+q1+"&sessionId="+otherSession, adminID), http.StatusBadRequest, "Question does not belong to this session")
	})

	t.Run("not the owner", func(t *testing.T) {
		testutil.AssertStatus(t, list("?sessionId="+sessionID, otherAdmin), http.StatusForbidden)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		testutil.AssertStatus(t, list("?sessionId="+sessionID, ""), http.StatusUnauthorized)
	})
}
