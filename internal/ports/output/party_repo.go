package output

import (
	"context"

	"raidbot/internal/domain/entities"
)

// PartyRepository reads the administrator-curated static parties.
// Reformation never writes through this port.
type PartyRepository interface {
	// FindByGuildID returns the guild's parties in party-number order,
	// reserve excluded.
	FindByGuildID(ctx context.Context, guildID string) ([]entities.StaticParty, error)
	FindByNumber(ctx context.Context, guildID string, partyNumber int) (*entities.StaticParty, error)
}

// ProfileRepository stores member gear registrations.
type ProfileRepository interface {
	Upsert(ctx context.Context, profile *entities.MemberProfile) error
	FindByMember(ctx context.Context, guildID, memberID string) (*entities.MemberProfile, error)
	FindByGuild(ctx context.Context, guildID string) (map[string]entities.MemberProfile, error)
}
