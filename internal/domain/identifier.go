package domain

import (
	"regexp"
	"strings"
)

type IdentifierKind string

const (
	KindEmail  IdentifierKind = "email"
	KindPhone  IdentifierKind = "phone"
	KindHandle IdentifierKind = "handle"
)

// Identifier is a classified, normalized contact identifier.
type Identifier struct {
	Kind  IdentifierKind `json:"kind"`
	Value string         `json:"value"`
}

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	e164Pattern   = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)
	handlePattern = regexp.MustCompile(`^[A-Za-z0-9_.](?:[A-Za-z0-9_. ]{1,22})[A-Za-z0-9_.]$`)
	digitsPattern = regexp.MustCompile(`\D`)
	spaceRuns     = regexp.MustCompile(` {2,}`)
)

// ClassifyIdentifier classifies a raw string as an email, phone number, or
// handle, in that precedence order. Emails are lowercased, phones normalized
// to E.164, handles trimmed with interior space runs collapsed.
func ClassifyIdentifier(raw string) (Identifier, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Identifier{}, ErrInvalidIdentifier
	}

	if emailPattern.MatchString(s) {
		return Identifier{Kind: KindEmail, Value: strings.ToLower(s)}, nil
	}

	if phone, ok := NormalizePhone(s); ok {
		return Identifier{Kind: KindPhone, Value: phone}, nil
	}

	if handle, ok := NormalizeHandle(s); ok {
		return Identifier{Kind: KindHandle, Value: handle}, nil
	}

	return Identifier{}, ErrInvalidIdentifier
}

// NormalizePhone extracts digits and normalizes to E.164. A bare 10-digit
// number is assumed NANP (+1); 11 digits starting with 1 gets a plus; other
// lengths are taken as already country-coded.
func NormalizePhone(raw string) (string, bool) {
	digits := PhoneDigits(raw)
	if digits == "" {
		return "", false
	}

	var candidate string
	switch {
	case len(digits) == 10:
		candidate = "+1" + digits
	case len(digits) == 11 && digits[0] == '1':
		candidate = "+" + digits
	default:
		candidate = "+" + digits
	}

	if !e164Pattern.MatchString(candidate) {
		return "", false
	}
	return candidate, true
}

// PhoneDigits strips everything but digits. Used for tolerant phone
// comparison across formatting drift.
func PhoneDigits(raw string) string {
	return digitsPattern.ReplaceAllString(raw, "")
}

// NormalizeHandle trims and collapses interior space runs, then validates
// the 3-24 char handle shape.
func NormalizeHandle(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	s = spaceRuns.ReplaceAllString(s, " ")
	if len(s) < 3 || len(s) > 24 {
		return "", false
	}
	if !handlePattern.MatchString(s) {
		return "", false
	}
	return s, true
}
