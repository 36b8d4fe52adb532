// Copyright (c) 2025 The ARS-BZ Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections, schema creation and demo data.

# Connecting

Open picks the driver from the configured database type:

	conn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)

PostgreSQL goes through github.com/lib/pq. SQLite goes through the pure Go
modernc.org/sqlite driver with foreign keys enabled on every connection.
All queries use $N placeholders, which both drivers accept.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(ctx, conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - users: accounts with bcrypt password hashes and a role
  - polling_session: sessions with a unique 6 character join code
  - question: ordered questions; options stored as a JSON array
  - session_participant: an authenticated user or an anonymous nickname
  - response: one answer per (question, identity)
  - upload: stored photo metadata

# Relationships

	users 1──* polling_session
	polling_session 1──* question
	polling_session 1──* session_participant
	question 1──* response
	session_participant 1──* response

All foreign keys use ON DELETE CASCADE.

# Uniqueness

The database is the final word on uniqueness:

  - polling_session.session_code
  - session_participant.(session_id, nickname)
  - session_participant.(session_id, user_id)
  - response.(question_id, user_id)
  - response.(question_id, participant_id)

Handlers check first for a friendly error, then use IsUniqueViolation to map
a lost race on insert to the same error.

# Demo Data

Seed creates admin@demo.com, two participants, and session DEMO01 with one
question of each type. Existing rows are left alone.
*/
package db
