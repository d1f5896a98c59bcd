package input

import (
	"context"

	"raidbot/internal/domain"
)

type RSVPUseCase interface {
	// SetRSVP moves the member to the given status. Any status may
	// follow any other while the event is open and before the signup
	// deadline; afterwards every transition is rejected.
	SetRSVP(ctx context.Context, eventID uint, memberID string, status domain.RSVPStatus) error
}
