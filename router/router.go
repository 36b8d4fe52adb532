// Copyright (c) 2025 The ARS-BZ Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/benny2744/ARS-BZ/cliparse"
	"github.com/benny2744/ARS-BZ/handlers"
	"github.com/benny2744/ARS-BZ/middleware"
)

// NewRouter builds the route table. The returned handler applies CORS and
// bearer-token authentication in front of every route.
func NewRouter(db *sql.DB, cfg cliparse.Config) http.Handler {
	mux := http.NewServeMux()

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(db, cfg)
	sessionHandler := handlers.NewSessionHandler(db, cfg)
	questionHandler := handlers.NewQuestionHandler(db, cfg)
	responseHandler := handlers.NewResponseHandler(db, cfg)
	resultsHandler := handlers.NewResultsHandler(db, cfg)
	uploadHandler := handlers.NewUploadHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Accounts
	mux.HandleFunc("POST /signup", middleware.WithLogging(accountHandler.Signup))
	mux.HandleFunc("POST /login", middleware.WithLogging(accountHandler.Login))
	mux.HandleFunc("GET /me", middleware.WithLogging(accountHandler.Me))

	// Sessions (admin operations require the owning admin's bearer token)
	mux.HandleFunc("POST /sessions", middleware.WithLogging(sessionHandler.CreateSession))
	mux.HandleFunc("GET /sessions", middleware.WithLogging(sessionHandler.ListSessions))
	mux.HandleFunc("POST /sessions/join", middleware.WithLogging(sessionHandler.JoinSession))
	mux.HandleFunc("GET /sessions/{id}", middleware.WithLogging(sessionHandler.GetSession))
	mux.HandleFunc("PUT /sessions/{id}", middleware.WithLogging(sessionHandler.UpdateSession))
	mux.HandleFunc("DELETE /sessions/{id}", middleware.WithLogging(sessionHandler.DeleteSession))
	mux.HandleFunc("POST /sessions/{id}/questions/{questionId}/activate", middleware.WithLogging(sessionHandler.ActivateQuestion))
	mux.HandleFunc("POST /sessions/{id}/questions/deactivate", middleware.WithLogging(sessionHandler.DeactivateQuestions))

	// Results (owner always; everyone else when real-time results are on)
	mux.HandleFunc("GET /sessions/{id}/results", middleware.WithLogging(resultsHandler.GetResults))

	// Questions
	mux.HandleFunc("POST /questions", middleware.WithLogging(questionHandler.CreateQuestion))
	mux.HandleFunc("PUT /questions/{id}", middleware.WithLogging(questionHandler.UpdateQuestion))
	mux.HandleFunc("DELETE /questions/{id}", middleware.WithLogging(questionHandler.DeleteQuestion))

	// Responses
	mux.HandleFunc("POST /responses", middleware.WithLogging(responseHandler.SubmitResponse))
	mux.HandleFunc("GET /responses", middleware.WithLogging(responseHandler.ListResponses))

	// Uploads
	mux.HandleFunc("POST /upload", middleware.WithLogging(uploadHandler.Upload))
	mux.HandleFunc("GET /files/{path...}", middleware.WithLogging(uploadHandler.ServeFile))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ARS API v1"))
	})

	return middleware.CORS(middleware.WithAuth(cfg.AuthSecret, mux))
}
