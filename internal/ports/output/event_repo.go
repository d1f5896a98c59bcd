package output

import (
	"context"
	"time"

	"raidbot/internal/domain"
	"raidbot/internal/domain/entities"
)

// EventRepository owns the canonical Event record. The conditional
// mutations return false (no error) when the store predicate did not
// match; the caller re-reads to classify why.
type EventRepository interface {
	Create(ctx context.Context, event *entities.Event) error
	FindByID(ctx context.Context, id uint) (*entities.Event, error)
	FindByMessageID(ctx context.Context, messageID string) (*entities.Event, error)
	FindOpen(ctx context.Context) ([]entities.Event, error)

	// SetRSVP upserts the member's single status row, conditional on
	// the event existing and being open.
	SetRSVP(ctx context.Context, eventID uint, memberID string, status domain.RSVPStatus) (bool, error)

	// RecordAttendance adds the member to the attendee set, conditional
	// on the event being open and the member not already present. One
	// statement; succeeds or fails atomically against the store.
	RecordAttendance(ctx context.Context, eventID uint, memberID string) (bool, error)

	// AttachMessage records the UI message backing the event once the
	// message has been posted.
	AttachMessage(ctx context.Context, eventID uint, channelID, messageID string) error

	Close(ctx context.Context, eventID uint) (bool, error)
	MarkRemindersSent(ctx context.Context, eventID uint) (bool, error)
	MarkPartiesFormed(ctx context.Context, eventID uint) (bool, error)

	// FindNeedingReminder returns open events starting before `until`
	// whose reminder has not been sent yet.
	FindNeedingReminder(ctx context.Context, now, until time.Time) ([]entities.Event, error)

	// FindToClose returns open events whose start time is before `cutoff`.
	FindToClose(ctx context.Context, cutoff time.Time) ([]entities.Event, error)

	// Delete removes the event and its RSVP/attendance rows. Orphan
	// cleanup only; events are otherwise frozen, never erased.
	Delete(ctx context.Context, eventID uint) error
}
