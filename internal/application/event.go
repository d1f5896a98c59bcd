package application

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"raidbot/internal/domain/entities"
	"raidbot/internal/ports/output"
)

type EventService struct {
	events         output.EventRepository
	reminderOffset time.Duration
	closeGrace     time.Duration
	log            *zap.Logger
}

func NewEventService(events output.EventRepository, reminderOffset, closeGrace time.Duration, log *zap.Logger) *EventService {
	return &EventService{
		events:         events,
		reminderOffset: reminderOffset,
		closeGrace:     closeGrace,
		log:            log,
	}
}

// CreateEvent persists a new event with a freshly generated
// attendance code.
func (s *EventService) CreateEvent(ctx context.Context, event *entities.Event) error {
	if event.AttendanceCode == "" {
		code, err := generateAttendanceCode()
		if err != nil {
			return fmt.Errorf("generate attendance code: %w", err)
		}
		event.AttendanceCode = code
	}
	return s.events.Create(ctx, event)
}

func (s *EventService) GetEventByID(ctx context.Context, id uint) (*entities.Event, error) {
	return s.events.FindByID(ctx, id)
}

func (s *EventService) GetEventByMessageID(ctx context.Context, messageID string) (*entities.Event, error) {
	return s.events.FindByMessageID(ctx, messageID)
}

// AttachMessage records the posted UI message backing the event.
func (s *EventService) AttachMessage(ctx context.Context, eventID uint, channelID, messageID string) error {
	if err := s.events.AttachMessage(ctx, eventID, channelID, messageID); err != nil {
		return fmt.Errorf("attach message: %w", err)
	}
	return nil
}

// CloseEvent freezes all RSVP and attendance mutation. Idempotent:
// closing a closed event is a no-op.
func (s *EventService) CloseEvent(ctx context.Context, eventID uint) error {
	closed, err := s.events.Close(ctx, eventID)
	if err != nil {
		return fmt.Errorf("close event: %w", err)
	}
	if closed {
		s.log.Info("event closed", zap.Uint("event_id", eventID))
	}
	return nil
}

// DeleteOrphanedEvent removes an event whose backing message no longer
// exists. This is the only path that deletes an event.
func (s *EventService) DeleteOrphanedEvent(ctx context.Context, eventID uint) error {
	if err := s.events.Delete(ctx, eventID); err != nil {
		return fmt.Errorf("delete orphaned event: %w", err)
	}
	s.log.Warn("deleted event with missing message", zap.Uint("event_id", eventID))
	return nil
}

// EventsNeedingReminder returns open events starting within the
// reminder window whose reminder was not sent yet.
func (s *EventService) EventsNeedingReminder(ctx context.Context, now time.Time) ([]entities.Event, error) {
	return s.events.FindNeedingReminder(ctx, now, now.Add(s.reminderOffset))
}

// ClaimReminder conditionally flips reminders_sent. Exactly one caller
// wins; redundant sweeps and concurrent processes lose quietly.
func (s *EventService) ClaimReminder(ctx context.Context, eventID uint) (bool, error) {
	return s.events.MarkRemindersSent(ctx, eventID)
}

// EventsToClose returns open events whose start time passed more than
// the grace period ago.
func (s *EventService) EventsToClose(ctx context.Context, now time.Time) ([]entities.Event, error) {
	return s.events.FindToClose(ctx, now.Add(-s.closeGrace))
}

func (s *EventService) OpenEvents(ctx context.Context) ([]entities.Event, error) {
	return s.events.FindOpen(ctx)
}

// generateAttendanceCode returns a 4-digit numeric secret.
func generateAttendanceCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}
