package output

import (
	"context"

	"raidbot/internal/domain/entities"
)

// RewardRepository owns the two reward counters. AddBonus feeds the
// resettable ledger; IncrementTotalEvents feeds the permanent ranking.
// They are independent writes; the caller never retries them, the
// attendance write already gates re-entry.
type RewardRepository interface {
	AddBonus(ctx context.Context, guildID, memberID string, points int) error
	IncrementTotalEvents(ctx context.Context, guildID, memberID string) error
	ResetLedger(ctx context.Context, guildID string) error
	FindLedger(ctx context.Context, guildID, memberID string) (*entities.BonusLedger, error)
	TopRankings(ctx context.Context, guildID string, limit int) ([]entities.ActivityRanking, error)
}
