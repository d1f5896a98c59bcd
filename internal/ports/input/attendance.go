package input

import (
	"context"

	"raidbot/internal/domain/entities"
)

type AttendanceUseCase interface {
	// Confirm records verified attendance for the member if the
	// submitted code matches. nil means recorded; otherwise one of
	// domain.ErrCodeMismatch, ErrAlreadyRecorded, ErrEventClosed,
	// ErrEventNotFound.
	Confirm(ctx context.Context, eventID uint, memberID, submittedCode string) error

	// ConfirmOverride is the administrative path: same semantics, no
	// code check.
	ConfirmOverride(ctx context.Context, eventID uint, memberID string) error

	// ResetLedger zeroes the guild's resettable bonus counters. The
	// permanent activity ranking is untouched.
	ResetLedger(ctx context.Context, guildID string) error

	// Ledger returns the member's resettable counters, zero-valued when
	// the member never attended.
	Ledger(ctx context.Context, guildID, memberID string) (*entities.BonusLedger, error)

	// Rankings returns the guild's permanent participation leaderboard.
	Rankings(ctx context.Context, guildID string, limit int) ([]entities.ActivityRanking, error)
}
