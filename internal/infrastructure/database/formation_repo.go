package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"raidbot/internal/domain"
	"raidbot/internal/domain/entities"
	"raidbot/internal/ports/output"
)

var _ output.FormationRepository = (*FormationRepository)(nil)

// FormationRepository stores formations keyed by event id. The nested
// party/pool structures are jsonb payloads; the formation is written
// and read whole, never patched field by field.
type FormationRepository struct {
	pool *pgxpool.Pool
}

func NewFormationRepository(pool *pgxpool.Pool) *FormationRepository {
	return &FormationRepository{pool: pool}
}

func (r *FormationRepository) Save(ctx context.Context, formation *entities.Formation) error {
	parties, err := json.Marshal(formation.ProcessedParties)
	if err != nil {
		return fmt.Errorf("marshal processed parties: %w", err)
	}
	pool, err := json.Marshal(formation.AvailableMembers)
	if err != nil {
		return fmt.Errorf("marshal available members: %w", err)
	}
	summary, err := json.Marshal(formation.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO formations (event_id, processed_parties, available_members, summary, approved, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (event_id)
		DO UPDATE SET processed_parties = EXCLUDED.processed_parties,
			available_members = EXCLUDED.available_members,
			summary = EXCLUDED.summary,
			approved = EXCLUDED.approved,
			created_by = EXCLUDED.created_by,
			created_at = EXCLUDED.created_at`,
		int64(formation.EventID), parties, pool, summary,
		formation.Approved, formation.CreatedBy, formation.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save formation: %w", err)
	}
	return nil
}

func (r *FormationRepository) FindByEventID(ctx context.Context, eventID uint) (*entities.Formation, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT event_id, processed_parties, available_members, summary, approved, created_by, created_at
		FROM formations WHERE event_id = $1`, int64(eventID))

	var (
		f                      entities.Formation
		parties, pool, summary []byte
	)
	err := row.Scan(&f.EventID, &parties, &pool, &summary, &f.Approved, &f.CreatedBy, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrFormationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get formation: %w", err)
	}

	if err := json.Unmarshal(parties, &f.ProcessedParties); err != nil {
		return nil, fmt.Errorf("unmarshal processed parties: %w", err)
	}
	if err := json.Unmarshal(pool, &f.AvailableMembers); err != nil {
		return nil, fmt.Errorf("unmarshal available members: %w", err)
	}
	if err := json.Unmarshal(summary, &f.Summary); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}
	return &f, nil
}

func (r *FormationRepository) MarkApproved(ctx context.Context, eventID uint) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE formations SET approved = TRUE WHERE event_id = $1`, int64(eventID))
	if err != nil {
		return fmt.Errorf("mark formation approved: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFormationNotFound
	}
	return nil
}
