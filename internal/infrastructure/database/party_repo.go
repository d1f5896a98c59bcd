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

var _ output.PartyRepository = (*PartyRepository)(nil)

type PartyRepository struct {
	pool *pgxpool.Pool
}

func NewPartyRepository(pool *pgxpool.Pool) *PartyRepository {
	return &PartyRepository{pool: pool}
}

const partyColumns = `id, guild_id, party_number, titles, created_at, updated_at`

func scanParty(row pgx.Row) (entities.StaticParty, error) {
	var p entities.StaticParty
	err := row.Scan(&p.ID, &p.GuildID, &p.PartyNumber, &p.Titles, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// FindByGuildID returns the guild's parties in party-number order.
// The reserve party (number 0) is not part of reformation input.
func (r *PartyRepository) FindByGuildID(ctx context.Context, guildID string) ([]entities.StaticParty, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+partyColumns+` FROM static_parties
		WHERE guild_id = $1 AND party_number <> $2
		ORDER BY party_number`, guildID, entities.ReservePartyNumber)
	if err != nil {
		return nil, fmt.Errorf("get parties by guild: %w", err)
	}
	defer rows.Close()

	out := []entities.StaticParty{}
	for rows.Next() {
		p, err := scanParty(rows)
		if err != nil {
			return nil, fmt.Errorf("scan party: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if err := r.attachMembers(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *PartyRepository) FindByNumber(ctx context.Context, guildID string, partyNumber int) (*entities.StaticParty, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+partyColumns+` FROM static_parties
		WHERE guild_id = $1 AND party_number = $2`, guildID, partyNumber)
	p, err := scanParty(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPartyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get party by number: %w", err)
	}
	if err := r.attachMembers(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PartyRepository) attachMembers(ctx context.Context, p *entities.StaticParty) error {
	rows, err := r.pool.Query(ctx, `
		SELECT member_id, weapon_main, weapon_off, role, combat_power, is_leader
		FROM party_members WHERE party_id = $1 ORDER BY position`, int64(p.ID))
	if err != nil {
		return fmt.Errorf("get party members: %w", err)
	}
	defer rows.Close()

	p.Members = []entities.PartyMember{}
	for rows.Next() {
		var m entities.PartyMember
		if err := rows.Scan(&m.MemberID, &m.WeaponMain, &m.WeaponOff, &m.Role, &m.CombatPower, &m.IsLeader); err != nil {
			return fmt.Errorf("scan party member: %w", err)
		}
		p.Members = append(p.Members, m)
	}
	return rows.Err()
}
