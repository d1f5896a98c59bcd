package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"raidbot/internal/domain"
	"raidbot/internal/domain/entities"
	"raidbot/internal/ports/output"
)

var _ output.ProfileRepository = (*ProfileRepository)(nil)

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) Upsert(ctx context.Context, profile *entities.MemberProfile) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO member_profiles (guild_id, member_id, weapon_main, weapon_off, combat_power)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (guild_id, member_id)
		DO UPDATE SET weapon_main = EXCLUDED.weapon_main, weapon_off = EXCLUDED.weapon_off,
			combat_power = EXCLUDED.combat_power, updated_at = now()`,
		profile.GuildID, profile.MemberID, string(profile.WeaponMain), string(profile.WeaponOff), profile.CombatPower,
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) FindByMember(ctx context.Context, guildID, memberID string) (*entities.MemberProfile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT guild_id, member_id, weapon_main, weapon_off, combat_power, updated_at
		FROM member_profiles WHERE guild_id = $1 AND member_id = $2`, guildID, memberID)
	var p entities.MemberProfile
	err := row.Scan(&p.GuildID, &p.MemberID, &p.WeaponMain, &p.WeaponOff, &p.CombatPower, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNoProfile
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (r *ProfileRepository) FindByGuild(ctx context.Context, guildID string) (map[string]entities.MemberProfile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT guild_id, member_id, weapon_main, weapon_off, combat_power, updated_at
		FROM member_profiles WHERE guild_id = $1`, guildID)
	if err != nil {
		return nil, fmt.Errorf("get profiles by guild: %w", err)
	}
	defer rows.Close()

	out := make(map[string]entities.MemberProfile)
	for rows.Next() {
		var p entities.MemberProfile
		if err := rows.Scan(&p.GuildID, &p.MemberID, &p.WeaponMain, &p.WeaponOff, &p.CombatPower, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out[p.MemberID] = p
	}
	return out, rows.Err()
}
