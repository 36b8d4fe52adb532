// Copyright (c) 2025 The ARS-BZ Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/benny2744/ARS-BZ/auth"
	"github.com/benny2744/ARS-BZ/models"
	"github.com/benny2744/ARS-BZ/testutil"
)

func TestSignup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewAccountHandler(db, testutil.GetTestConfig())

	testCases := []struct {
		name           string
		req            models.SignupRequest
		expectedStatus int
		expectedRole   string
	}{
		{"participant by default", models.SignupRequest{Name: "Alice", Email: "alice@example.com", Password: "secret"}, http.StatusCreated, models.RoleParticipant},
		{"admin on request", models.SignupRequest{Name: "Root", Email: "root@example.com", Password: "secret", Role: "admin"}, http.StatusCreated, models.RoleAdmin},
		{"unknown role falls back", models.SignupRequest{Name: "Eve", Email: "eve@example.com", Password: "secret", Role: "SUPERUSER"}, http.StatusCreated, models.RoleParticipant},
		{"duplicate email with different case", models.SignupRequest{Name: "Alice 2", Email: "ALICE@example.com", Password: "secret"}, http.StatusBadRequest, ""},
		{"invalid email", models.SignupRequest{Name: "Bob", Email: "not-an-email", Password: "secret"}, http.StatusBadRequest, ""},
		{"missing password", models.SignupRequest{Name: "Bob", Email: "bob@example.com"}, http.StatusBadRequest, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.Signup(w, testutil.MakeRequest("POST", "/signup", tc.req, nil))

			testutil.AssertStatus(t, w, tc.expectedStatus)
			if tc.expectedStatus != http.StatusCreated {
				return
			}

			if strings.Contains(w.Body.String(), "password") {
				t.Errorf("Response leaks password data: %s", w.Body.String())
			}
			var user models.User
			testutil.AssertJSON(t, w, &user)
			if user.Role != tc.expectedRole {
				t.Errorf("Expected role %s, got %s", tc.expectedRole, user.Role)
			}
			if user.Email != strings.ToLower(tc.req.Email) {
				t.Errorf("Expected normalized email, got %s", user.Email)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAccountHandler(db, cfg)

	userID, email := testutil.CreateTestUser(t, db, "Alice", models.RoleAdmin)

	t.Run("valid credentials", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Login(w, testutil.MakeRequest("POST", "/login", models.LoginRequest{Email: strings.ToUpper(email), Password: testutil.TestPassword}, nil))
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.LoginResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.User.ID != userID {
			t.Errorf("Expected user %s, got %s", userID, resp.User.ID)
		}

		claims, err := auth.ParseToken(resp.Token, cfg.AuthSecret)
		if err != nil {
			t.Fatalf("Expected a valid token: %v", err)
		}
		if claims.UserID != userID || claims.Role != models.RoleAdmin {
			t.Errorf("Unexpected claims %+v", claims)
		}
	})

	testCases := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", email, "wrong"},
		{"unknown user", "nobody@example.com", testutil.TestPassword},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.Login(w, testutil.MakeRequest("POST", "/login", models.LoginRequest{Email: tc.email, Password: tc.password}, nil))
			testutil.AssertError(t, w, http.StatusUnauthorized, "Invalid credentials")
		})
	}

	t.Run("missing fields", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Login(w, testutil.MakeRequest("POST", "/login", models.LoginRequest{Email: email}, nil))
		testutil.AssertError(t, w, http.StatusBadRequest, "Missing required fields")
	})
}

func TestMe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewAccountHandler(db, testutil.GetTestConfig())

	userID, email := testutil.CreateTestUser(t, db, "Alice", models.RoleParticipant)

	t.Run("authenticated", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Me(w, testutil.AsUser(testutil.MakeRequest("GET", "/me", nil, nil), userID, models.RoleParticipant))
		testutil.AssertStatus(t, w, http.StatusOK)

		var user models.User
		testutil.AssertJSON(t, w, &user)
		if user.Email != email {
			t.Errorf("Expected %s, got %s", email, user.Email)
		}
	})

	t.Run("deleted account", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Me(w, testutil.AsUser(testutil.MakeRequest("GET", "/me", nil, nil), "gone", models.RoleParticipant))
		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})

	t.Run("anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Me(w, testutil.MakeRequest("GET", "/me", nil, nil))
		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})
}
