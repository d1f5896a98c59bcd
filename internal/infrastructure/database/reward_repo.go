package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"raidbot/internal/domain/entities"
	"raidbot/internal/ports/output"
)

var _ output.RewardRepository = (*RewardRepository)(nil)

type RewardRepository struct {
	pool *pgxpool.Pool
}

func NewRewardRepository(pool *pgxpool.Pool) *RewardRepository {
	return &RewardRepository{pool: pool}
}

func (r *RewardRepository) AddBonus(ctx context.Context, guildID, memberID string, points int) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO bonus_ledgers (guild_id, member_id, bonus_count, events_attended)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (guild_id, member_id)
		DO UPDATE SET bonus_count = bonus_ledgers.bonus_count + EXCLUDED.bonus_count,
			events_attended = bonus_ledgers.events_attended + 1`,
		guildID, memberID, points,
	)
	if err != nil {
		return fmt.Errorf("add bonus: %w", err)
	}
	return nil
}

func (r *RewardRepository) IncrementTotalEvents(ctx context.Context, guildID, memberID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO activity_rankings (guild_id, member_id, total_events)
		VALUES ($1, $2, 1)
		ON CONFLICT (guild_id, member_id)
		DO UPDATE SET total_events = activity_rankings.total_events + 1`,
		guildID, memberID,
	)
	if err != nil {
		return fmt.Errorf("increment total events: %w", err)
	}
	return nil
}

// ResetLedger zeroes the resettable counters for the whole guild.
// activity_rankings is untouched by design.
func (r *RewardRepository) ResetLedger(ctx context.Context, guildID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE bonus_ledgers SET bonus_count = 0, events_attended = 0 WHERE guild_id = $1`, guildID)
	if err != nil {
		return fmt.Errorf("reset ledger: %w", err)
	}
	return nil
}

func (r *RewardRepository) FindLedger(ctx context.Context, guildID, memberID string) (*entities.BonusLedger, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT guild_id, member_id, bonus_count, events_attended
		FROM bonus_ledgers WHERE guild_id = $1 AND member_id = $2`, guildID, memberID)
	var l entities.BonusLedger
	err := row.Scan(&l.GuildID, &l.MemberID, &l.BonusCount, &l.EventsAttended)
	if errors.Is(err, pgx.ErrNoRows) {
		return &entities.BonusLedger{GuildID: guildID, MemberID: memberID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ledger: %w", err)
	}
	return &l, nil
}

func (r *RewardRepository) TopRankings(ctx context.Context, guildID string, limit int) ([]entities.ActivityRanking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT guild_id, member_id, total_events FROM activity_rankings
		WHERE guild_id = $1 ORDER BY total_events DESC, member_id LIMIT $2`, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("get rankings: %w", err)
	}
	defer rows.Close()

	out := []entities.ActivityRanking{}
	for rows.Next() {
		var a entities.ActivityRanking
		if err := rows.Scan(&a.GuildID, &a.MemberID, &a.TotalEvents); err != nil {
			return nil, fmt.Errorf("scan ranking: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
