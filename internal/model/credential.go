// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the persistent entities of the portfolio site.
package model

import "time"

// CredentialKey is the fixed key of the singleton admin credential row.
// Exactly one AdminCredential exists system-wide; every authentication and
// mutation flow operates against this record.
const CredentialKey = "credentials"

// AdminCredential is the single admin identity: an email and the argon2id
// digest of the password. The hash never leaves the store layer in clear form.
type AdminCredential struct {
	Email        string
	PasswordHash string
	UpdatedAt    time.Time
}
