// Copyright (c) 2025 The ARS-BZ Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides credential, token, and identifier utilities.

# Passwords

Passwords are stored as bcrypt hashes:

	hash, err := auth.HashPassword(password)
	err = auth.CheckPassword(hash, password) // ErrInvalidCredentials on mismatch

# Bearer Tokens

Tokens are HS256 JWTs carrying the user's id, name, email and role:

	token, err := auth.SignToken(user.ID, user.Name, user.Email, user.Role, secret, auth.DefaultTokenTTL)
	claims, err := auth.ParseToken(token, secret) // ErrInvalidToken on any failure

Only HS256 is accepted when parsing.

# Join Codes

Session join codes are 6 characters drawn uniformly from [A-Z0-9] using
crypto/rand:

	code, err := auth.GenerateSessionCode()

Codes are not guaranteed unique; callers check for an existing session and
the session table carries a UNIQUE index as the final word. Lookups go
through NormalizeSessionCode so codes are case-insensitive.

# ID Generation

Random UUIDs for database records:

	id := auth.NewID()

# IP Hashing

For privacy-preserving fraud detection on responses:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
