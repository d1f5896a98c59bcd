package input

import (
	"context"

	"raidbot/internal/domain/entities"
)

type FormationUseCase interface {
	// Reform derives a fresh formation from the current static parties
	// and RSVP sets, overwriting any previous one for the event.
	Reform(ctx context.Context, eventID uint, triggeredBy string) (*entities.Formation, error)

	GetFormation(ctx context.Context, eventID uint) (*entities.Formation, error)

	// SaveEdit replaces the formation's layout with the dashboard's
	// revision after validating it against the same invariants.
	SaveEdit(ctx context.Context, eventID uint, parties []entities.ProcessedParty, pool []entities.PoolMember) (*entities.Formation, error)

	// Approve marks the formation dispatched and the event formed.
	Approve(ctx context.Context, eventID uint) error

	ListParties(ctx context.Context, guildID string) ([]entities.StaticParty, error)
	GetParty(ctx context.Context, guildID string, partyNumber int) (*entities.StaticParty, error)
	SaveProfile(ctx context.Context, profile *entities.MemberProfile) error
	GetProfile(ctx context.Context, guildID, memberID string) (*entities.MemberProfile, error)
}
