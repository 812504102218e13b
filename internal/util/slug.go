// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util holds small shared helpers.
package util

import (
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)
	slugPattern      = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Slugify converts a title into a URL-safe slug. Non-ASCII characters are
// transliterated first, so "Déjà Vu" becomes "deja-vu".
func Slugify(s string) string {
	s = unidecode.Unidecode(s)
	s = strings.ToLower(s)
	s = slugInvalidChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// IsValidSlug reports whether s is a well-formed slug.
func IsValidSlug(s string) bool {
	return s != "" && len(s) <= 200 && slugPattern.MatchString(s)
}
