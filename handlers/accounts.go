// Copyright (c) 2025 The ARS-BZ Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/benny2744/ARS-BZ/auth"
	"github.com/benny2744/ARS-BZ/cliparse"
	"github.com/benny2744/ARS-BZ/db"
	"github.com/benny2744/ARS-BZ/middleware"
	"github.com/benny2744/ARS-BZ/models"
)

type AccountHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAccountHandler(db *sql.DB, cfg cliparse.Config) *AccountHandler {
	return &AccountHandler{db: db, cfg: cfg}
}

// Signup handles POST /signup
func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		writeError(w, errInvalidJSON, "")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, errMissingField, "")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid email address")
		return
	}

	role := models.RoleParticipant
	if strings.ToUpper(req.Role) == models.RoleAdmin {
		role = models.RoleAdmin
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, err, "failed to hash password")
		return
	}

	user := models.User{
		ID:           auth.NewID(),
		Name:         req.Name,
		Email:        req.Email,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO users (id, name, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.CreatedAt)
	if db.IsUniqueViolation(err) {
		writeError(w, ErrUserExists, "")
		return
	}
	if err != nil {
		writeError(w, err, "failed to insert user")
		return
	}

	slog.Info("user created", "user_id", user.ID, "role", user.Role)

	middleware.JSONResponse(w, http.StatusCreated, user)
}

// Login handles POST /login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		writeError(w, errInvalidJSON, "")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		writeError(w, errMissingField, "")
		return
	}

	var user models.User
	err := h.db.QueryRowContext(r.Context(), `
		SELECT id, name, email, password_hash, role, created_at FROM users WHERE email = $1
	`, email).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err == sql.ErrNoRows {
		writeError(w, auth.ErrInvalidCredentials, "")
		return
	}
	if err != nil {
		writeError(w, err, "failed to query user")
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		slog.Debug("login failed", "user_id", user.ID)
		writeError(w, err, "")
		return
	}

	token, err := auth.SignToken(user.ID, user.Name, user.Email, user.Role, h.cfg.AuthSecret, auth.DefaultTokenTTL)
	if err != nil {
		writeError(w, err, "failed to sign token", "user_id", user.ID)
		return
	}

	slog.Info("user logged in", "user_id", user.ID)

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{Token: token, User: user})
}

// Me handles GET /me
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, err := requireUser(r)
	if err != nil {
		writeError(w, err, "")
		return
	}

	var user models.User
	err = h.db.QueryRowContext(r.Context(), `
		SELECT id, name, email, role, created_at FROM users WHERE id = $1
	`, claims.UserID).Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.CreatedAt)
	if err == sql.ErrNoRows {
		// Token outlived the account
		writeError(w, errUnauthorized, "")
		return
	}
	if err != nil {
		writeError(w, err, "failed to query user", "user_id", claims.UserID)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, user)
}
