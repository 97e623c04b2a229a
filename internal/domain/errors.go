package domain

import "errors"

var (
	ErrNotRegistered     = errors.New("user not registered")
	ErrAlreadyRegistered = errors.New("user already registered")
	ErrInvalidSelection  = errors.New("invalid selection")
	ErrInvalidIndex      = errors.New("invalid index")
	ErrInvalidKind       = errors.New("invalid task kind")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	ErrEmptyDescription  = errors.New("empty description")
	ErrInvalidTimezone   = errors.New("invalid timezone")
	ErrAlreadyJournaled  = errors.New("already journaled today")
	ErrTimeout           = errors.New("timed out waiting for reply")
)
