package domain

import "errors"

// Domain errors. Handlers map these to one user-facing message each;
// anything not in this list is logged and reported generically.
var (
	ErrEventNotFound     = errors.New("event not found")
	ErrEventClosed       = errors.New("event is closed")
	ErrDeadlinePassed    = errors.New("signup deadline has passed")
	ErrAlreadyRecorded   = errors.New("attendance already recorded")
	ErrCodeMismatch      = errors.New("attendance code mismatch")
	ErrPartyNotFound     = errors.New("static party not found")
	ErrFormationNotFound = errors.New("formation not found")
	ErrNoProfile         = errors.New("member has no combat profile")
	ErrTokenUnknown      = errors.New("edit token unknown")
	ErrTokenExpired      = errors.New("edit token expired")
)
