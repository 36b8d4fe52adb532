// Copyright (c) 2025 The ARS-BZ Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded first (if present). Values
already in the environment are never overwritten by it.

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Connection string or SQLite file (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - AuthSecret: HS256 signing secret for bearer tokens (required)
  - UploadDir: Root directory for uploaded photos (default: uploads)
  - LogLevel: debug, info, warn or error (default: info)
  - SeedDemo: Create demo users and the DEMO01 session on start

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type
	-auth-secret  Token signing secret
	-upload-dir   Upload root
	-log-level    Log level
	-seed         Seed demo data

# Environment Variables

Flags fall back to environment variables:

	PORT          → -p
	DATABASE_URL  → -d
	DATABASE_TYPE → -t
	AUTH_SECRET   → -auth-secret
	UPLOAD_DIR    → -upload-dir
	LOG_LEVEL     → -log-level
	SEED_DEMO     → -seed

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - AUTH_SECRET must be provided
  - DATABASE_TYPE must be sqlite or postgres
*/
package cliparse
