package domain

import "errors"

var (
	ErrAuthExpired        = errors.New("session expired")
	ErrAuthCallbackFailed = errors.New("auth callback failed")
	ErrSubmissionFailed   = errors.New("submission failed")
	ErrFetchFailed        = errors.New("fetch failed")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrInvalidTransition  = errors.New("invalid booking status transition")
	ErrValidation         = errors.New("validation failed")
)
