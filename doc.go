// Copyright (c) 2025 The ARS-BZ Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the ARS API server.

ARS is an audience response system. Admins run sessions of questions
(multiple choice, poll, free text, photo upload, rating), participants join
with a 6 character code and answer whichever question is active, and results
are aggregated per question. Clients poll the API; there is no push channel.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=ars.db AUTH_SECRET=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -auth-secret ... -seed

A .env file in the working directory is loaded first if present.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - AUTH_SECRET (-auth-secret): HMAC key for bearer tokens and IP hashes

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - UPLOAD_DIR (-upload-dir): photo storage root (default: uploads)
  - LOG_LEVEL (-log-level): debug, info, warn, error (default: info)
  - SEED_DEMO (-seed): create the demo admin and session DEMO01

# Architecture

  - handlers: HTTP request handlers (accounts, sessions, questions, responses, results, uploads)
  - results: pure results aggregation
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, bearer auth, logging, JSON helpers
  - models: Request/response types
  - auth: IDs, join codes, passwords, tokens
  - db: Connections, schema, demo seed
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
