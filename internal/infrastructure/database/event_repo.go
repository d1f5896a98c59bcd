package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"raidbot/internal/domain"
	"raidbot/internal/domain/entities"
	"raidbot/internal/ports/output"
)

var _ output.EventRepository = (*EventRepository)(nil)

// EventRepository implements output.EventRepository on PostgreSQL.
// All conditional mutations are single statements whose WHERE clause
// carries the predicate; rows-affected tells the caller whether the
// predicate matched.
type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

const eventColumns = `id, guild_id, channel_id, message_id, title, event_time, closed,
	attendance_code, bonus_points, reminders_sent, parties_formed, created_by, created_at, updated_at`

func scanEvent(row pgx.Row) (entities.Event, error) {
	var e entities.Event
	err := row.Scan(
		&e.ID, &e.GuildID, &e.ChannelID, &e.MessageID, &e.Title, &e.EventTime, &e.Closed,
		&e.AttendanceCode, &e.BonusPoints, &e.RemindersSent, &e.PartiesFormed, &e.CreatedBy,
		&e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

func (r *EventRepository) Create(ctx context.Context, event *entities.Event) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO events (guild_id, channel_id, message_id, title, event_time, attendance_code, bonus_points, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		event.GuildID, event.ChannelID, event.MessageID, event.Title,
		event.EventTime, event.AttendanceCode, event.BonusPoints, event.CreatedBy,
	)
	if err := row.Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (*entities.Event, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, int64(id))
	e, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event by id: %w", err)
	}
	if err := r.attach(ctx, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EventRepository) FindByMessageID(ctx context.Context, messageID string) (*entities.Event, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE message_id = $1`, messageID)
	e, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event by message id: %w", err)
	}
	if err := r.attach(ctx, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EventRepository) FindOpen(ctx context.Context) ([]entities.Event, error) {
	return r.findMany(ctx, `SELECT `+eventColumns+` FROM events WHERE NOT closed ORDER BY event_time`)
}

func (r *EventRepository) FindNeedingReminder(ctx context.Context, now, until time.Time) ([]entities.Event, error) {
	return r.findMany(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE NOT closed AND NOT reminders_sent AND event_time > $1 AND event_time <= $2
		ORDER BY event_time`, now, until)
}

func (r *EventRepository) FindToClose(ctx context.Context, cutoff time.Time) ([]entities.Event, error) {
	return r.findMany(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE NOT closed AND event_time <= $1
		ORDER BY event_time`, cutoff)
}

func (r *EventRepository) findMany(ctx context.Context, query string, args ...any) ([]entities.Event, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	out := []entities.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// attach loads the event's RSVP rows and verified attendee set.
func (r *EventRepository) attach(ctx context.Context, e *entities.Event) error {
	rows, err := r.pool.Query(ctx, `
		SELECT member_id, status, updated_at FROM event_rsvps
		WHERE event_id = $1 ORDER BY updated_at`, int64(e.ID))
	if err != nil {
		return fmt.Errorf("get rsvps: %w", err)
	}
	defer rows.Close()
	e.RSVPs = []entities.RSVP{}
	for rows.Next() {
		var rsvp entities.RSVP
		if err := rows.Scan(&rsvp.MemberID, &rsvp.Status, &rsvp.UpdatedAt); err != nil {
			return fmt.Errorf("scan rsvp: %w", err)
		}
		e.RSVPs = append(e.RSVPs, rsvp)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	arows, err := r.pool.Query(ctx, `
		SELECT member_id FROM event_attendance
		WHERE event_id = $1 ORDER BY recorded_at`, int64(e.ID))
	if err != nil {
		return fmt.Errorf("get attendance: %w", err)
	}
	defer arows.Close()
	e.Attendees = []string{}
	for arows.Next() {
		var id string
		if err := arows.Scan(&id); err != nil {
			return fmt.Errorf("scan attendance: %w", err)
		}
		e.Attendees = append(e.Attendees, id)
	}
	return arows.Err()
}

// SetRSVP is one atomic upsert gated on the event being open: the
// member holds exactly one status row at every point in time.
func (r *EventRepository) SetRSVP(ctx context.Context, eventID uint, memberID string, status domain.RSVPStatus) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO event_rsvps (event_id, member_id, status)
		SELECT e.id, $2, $3 FROM events e WHERE e.id = $1 AND NOT e.closed
		ON CONFLICT (event_id, member_id)
		DO UPDATE SET status = EXCLUDED.status, updated_at = now()`,
		int64(eventID), memberID, string(status),
	)
	if err != nil {
		return false, fmt.Errorf("set rsvp: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// RecordAttendance adds the member to the attendee set if and only if
// the event is open and the member is not already present. Concurrent
// calls race on the primary key; exactly one inserts.
func (r *EventRepository) RecordAttendance(ctx context.Context, eventID uint, memberID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO event_attendance (event_id, member_id)
		SELECT e.id, $2 FROM events e WHERE e.id = $1 AND NOT e.closed
		ON CONFLICT (event_id, member_id) DO NOTHING`,
		int64(eventID), memberID,
	)
	if err != nil {
		return false, fmt.Errorf("record attendance: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *EventRepository) AttachMessage(ctx context.Context, eventID uint, channelID, messageID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE events SET channel_id = $2, message_id = $3, updated_at = now() WHERE id = $1`,
		int64(eventID), channelID, messageID)
	if err != nil {
		return fmt.Errorf("attach message: %w", err)
	}
	return nil
}

func (r *EventRepository) Close(ctx context.Context, eventID uint) (bool, error) {
	return r.flag(ctx, eventID, `UPDATE events SET closed = TRUE, updated_at = now() WHERE id = $1 AND NOT closed`)
}

func (r *EventRepository) MarkRemindersSent(ctx context.Context, eventID uint) (bool, error) {
	return r.flag(ctx, eventID, `UPDATE events SET reminders_sent = TRUE, updated_at = now() WHERE id = $1 AND NOT reminders_sent`)
}

func (r *EventRepository) MarkPartiesFormed(ctx context.Context, eventID uint) (bool, error) {
	return r.flag(ctx, eventID, `UPDATE events SET parties_formed = TRUE, updated_at = now() WHERE id = $1 AND NOT parties_formed`)
}

func (r *EventRepository) flag(ctx context.Context, eventID uint, query string) (bool, error) {
	tag, err := r.pool.Exec(ctx, query, int64(eventID))
	if err != nil {
		return false, fmt.Errorf("flag event: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *EventRepository) Delete(ctx context.Context, eventID uint) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, int64(eventID)); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
