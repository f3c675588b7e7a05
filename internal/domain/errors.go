package domain

import "errors"

// Identifier and code errors
var (
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrInvalidOrExpired  = errors.New("code invalid or expired")
	ErrRateLimited       = errors.New("rate limited")
)

// Registry errors
var (
	ErrMemberNotFound = errors.New("member not found")
	ErrHandleTaken    = errors.New("handle already taken")
	ErrIDExhausted    = errors.New("could not allocate a unique member id")
)

// Credential errors
var (
	ErrNoCandidates      = errors.New("no credential candidates for context")
	ErrInvalidCredential = errors.New("invalid espn credential pair")
)

// Access and contact errors
var (
	ErrWrongChoice      = errors.New("wrong recovery choice")
	ErrRequestNotFound  = errors.New("contact request not found")
	ErrNotRequestTarget = errors.New("viewer is not the request target")
	ErrInvalidDecision  = errors.New("invalid contact request decision")
)
