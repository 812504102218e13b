// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth implements the credential primitives of the admin account:
// argon2id password hashing and signed session claims.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Argon2 parameters (OWASP recommended second choice: m=19456, t=2, p=1)
const (
	argonTime    = 2
	argonMemory  = 19 * 1024 // 19 MB
	argonThreads = 1
	argonKeyLen  = 32
	argonSaltLen = 16
)

// errMalformedHash is returned by decodeHash for digests that are not valid
// argon2id encodings. It never reaches callers of Verify.
var errMalformedHash = errors.New("malformed password hash")

// hashParams holds the work-factor parameters embedded in an encoded digest.
type hashParams struct {
	version int
	memory  uint32
	time    uint32
	threads uint8
}

// HashPassword creates an argon2id digest of the password with a fresh random
// salt. Hashing the same password twice yields different digests.
// Encoded format: $argon2id$v=19$m=19456,t=2,p=1$<salt>$<key>
func HashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// VerifyPassword reports whether password matches the encoded digest.
// The comparison is constant-time. A malformed or unsupported digest verifies
// as false rather than surfacing a distinguishable error: callers must not be
// able to tell a corrupt record from a wrong password.
func VerifyPassword(password, encodedHash string) bool {
	params, salt, expected, err := decodeHash(encodedHash)
	if err != nil {
		return false
	}

	key := argon2.IDKey([]byte(password), salt, params.time, params.memory, params.threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(key, expected) == 1
}

// NeedsRehash reports whether an encoded digest was produced with parameters
// other than the current defaults and should be re-created on next login.
func NeedsRehash(encodedHash string) bool {
	params, _, _, err := decodeHash(encodedHash)
	if err != nil {
		return true
	}
	return params.memory != argonMemory || params.time != argonTime || params.threads != argonThreads
}

// decodeHash splits an encoded argon2id digest into its parameters, salt and key.
func decodeHash(encodedHash string) (hashParams, []byte, []byte, error) {
	var p hashParams
	var b64Salt, b64Key string

	n, err := fmt.Sscanf(encodedHash, "$argon2id$v=%d$m=%d,t=%d,p=%d$%s",
		&p.version, &p.memory, &p.time, &p.threads, &b64Salt)
	if err != nil || n != 5 {
		return p, nil, nil, errMalformedHash
	}

	// The final %s above consumes "salt$key"; split it apart.
	for i := 0; i < len(b64Salt); i++ {
		if b64Salt[i] == '$' {
			b64Key = b64Salt[i+1:]
			b64Salt = b64Salt[:i]
			break
		}
	}
	if b64Key == "" {
		return p, nil, nil, errMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(b64Salt)
	if err != nil {
		return p, nil, nil, errMalformedHash
	}
	key, err := base64.RawStdEncoding.DecodeString(b64Key)
	if err != nil {
		return p, nil, nil, errMalformedHash
	}
	if len(salt) == 0 || len(key) == 0 {
		return p, nil, nil, errMalformedHash
	}

	return p, salt, key, nil
}
