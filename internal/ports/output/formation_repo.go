package output

import (
	"context"

	"raidbot/internal/domain/entities"
)

// FormationRepository stores the one-per-event reconciliation result.
type FormationRepository interface {
	// Save upserts by event id: reformation is an idempotent
	// re-derivation and simply overwrites the previous result.
	Save(ctx context.Context, formation *entities.Formation) error
	FindByEventID(ctx context.Context, eventID uint) (*entities.Formation, error)
	MarkApproved(ctx context.Context, eventID uint) error
}
