// Copyright (c) 2025 The ARS-BZ Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the ARS API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - AccountHandler: Signup, login and the current user
  - SessionHandler: Session lifecycle, join and question activation
  - QuestionHandler: Question create, update, delete
  - ResponseHandler: Answer submission and the raw response listing
  - ResultsHandler: Aggregated results
  - UploadHandler: Photo storage and serving

Handlers are created via constructor functions that accept *sql.DB and Config:

	sessionHandler := handlers.NewSessionHandler(db, cfg)

# Session Lifecycle

Sessions move between WAITING, ACTIVE, PAUSED and COMPLETED. Activating a
question starts a WAITING or PAUSED session; completing a session closes
every question. At most one question per session is active at a time.

Admin operations require a bearer token for the admin who owns the session.

# Admission

joinSession and admitResponse hold the rules for letting people in and
taking their answers:

	POST /sessions/join → code, ended, user or nickname, capacity
	POST /responses     → shape, question, activeness, identity, one per question

Both check in the database first and map unique index violations to the
same client errors, so concurrent duplicates fail the same way sequential
ones do.

# Errors

Handlers return *apiError values for anything the client caused; writeError
turns them into {"error": "..."} with the matching status and logs
everything else as a 500.
*/
package handlers
