// Copyright (c) 2025 The ARS-BZ Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the ARS API.

# Route Registration

NewRouter returns the full handler chain, CORS then bearer authentication
then the route table:

	handler := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health
	GET /

Accounts:

	POST /signup - Create account
	POST /login  - Exchange credentials for a bearer token
	GET  /me     - Current user

Sessions (admin operations require the owning admin's token):

	POST   /sessions                                     - Create (ADMIN role)
	GET    /sessions                                     - List own sessions (?includeAll=true for all)
	GET    /sessions/{id}                                - Session, questions, participant count (public)
	PUT    /sessions/{id}                                - Partial update
	DELETE /sessions/{id}                                - Delete with everything in it
	POST   /sessions/join                                - Join by code
	POST   /sessions/{id}/questions/{questionId}/activate - Make the only active question
	POST   /sessions/{id}/questions/deactivate           - Close all questions
	GET    /sessions/{id}/results                        - Aggregated results

Questions:

	POST   /questions
	PUT    /questions/{id}
	DELETE /questions/{id}

Responses:

	POST /responses - Submit an answer to the active question
	GET  /responses - Raw answers (?questionId= or ?sessionId=)

Files:

	POST /upload           - Store a photo (multipart field "file")
	GET  /files/{path...}  - Serve a stored photo

# Handler Initialization

The router creates handler instances with dependency injection:

	sessionHandler := handlers.NewSessionHandler(db, cfg)
	resultsHandler := handlers.NewResultsHandler(db, cfg)

All handlers receive the database connection and configuration.
*/
package router
