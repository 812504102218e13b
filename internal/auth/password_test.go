// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}
}

func TestVerifyPassword_Correct(t *testing.T) {
	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !VerifyPassword("changeme", hash) {
		t.Fatal("correct password was rejected")
	}
}

func TestVerifyPassword_Wrong(t *testing.T) {
	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if VerifyPassword("wrongpassword", hash) {
		t.Fatal("wrong password was accepted")
	}
}

func TestHashPassword_FreshSalt(t *testing.T) {
	h1, err := HashPassword("same-input")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	h2, err := HashPassword("same-input")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two hashes of the same password are identical; salt is not fresh")
	}
	if !VerifyPassword("same-input", h1) || !VerifyPassword("same-input", h2) {
		t.Fatal("both digests must verify against the original password")
	}
}

func TestVerifyPassword_MalformedDigest(t *testing.T) {
	// Malformed digests must verify false, not blow up or leak a distinct
	// error to callers.
	malformed := []string{
		"",
		"not-a-hash",
		"$argon2id$v=19$m=19456,t=2,p=1$onlysalt",
		"$bcrypt$something$else",
		"$argon2id$v=19$m=19456,t=2,p=1$!!!$@@@",
	}
	for _, digest := range malformed {
		if VerifyPassword("anything", digest) {
			t.Errorf("malformed digest %q verified as true", digest)
		}
	}
}

func TestNeedsRehash(t *testing.T) {
	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if NeedsRehash(hash) {
		t.Fatal("fresh hash should not need rehash")
	}

	// Hash generated with old 64MB parameters.
	old := "$argon2id$v=19$m=65536,t=1,p=4$mucMvOaS6lZ2LWNS1OEFKw$UYEWv8cvCOO6l2zGeqv3JPVe1nyy0x9GXBfYEuDM544"
	if !NeedsRehash(old) {
		t.Fatal("hash with outdated parameters should need rehash")
	}
	if NeedsRehash("") == false {
		t.Fatal("malformed hash should need rehash")
	}
}
