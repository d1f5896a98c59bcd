package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"raidbot/internal/domain"
	"raidbot/internal/ports/output"
)

type RSVPService struct {
	events       output.EventRepository
	signupOffset time.Duration
	now          func() time.Time
	log          *zap.Logger
}

func NewRSVPService(events output.EventRepository, signupOffset time.Duration, log *zap.Logger) *RSVPService {
	return &RSVPService{
		events:       events,
		signupOffset: signupOffset,
		now:          time.Now,
		log:          log,
	}
}

// SetRSVP moves the member to the given status with one conditional
// upsert; the member can never transiently hold two statuses or none.
// The deadline is checked here against the loaded event, the open
// check rides on the write itself.
func (s *RSVPService) SetRSVP(ctx context.Context, eventID uint, memberID string, status domain.RSVPStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid rsvp status %q", status)
	}

	event, err := s.events.FindByID(ctx, eventID)
	if errors.Is(err, domain.ErrEventNotFound) {
		return domain.ErrEventNotFound
	}
	if err != nil {
		return fmt.Errorf("load event: %w", err)
	}
	if event.Closed {
		return domain.ErrEventClosed
	}
	if s.now().After(event.SignupDeadline(s.signupOffset)) {
		return domain.ErrDeadlinePassed
	}

	ok, err := s.events.SetRSVP(ctx, eventID, memberID, status)
	if err != nil {
		return fmt.Errorf("set rsvp: %w", err)
	}
	if !ok {
		// The predicate failed between our read and the write: the
		// event was closed or deleted underneath us. Re-read to tell
		// which.
		if _, err := s.events.FindByID(ctx, eventID); err != nil {
			if errors.Is(err, domain.ErrEventNotFound) {
				return domain.ErrEventNotFound
			}
			return fmt.Errorf("reload event: %w", err)
		}
		return domain.ErrEventClosed
	}

	s.log.Debug("rsvp set",
		zap.Uint("event_id", eventID),
		zap.String("member_id", memberID),
		zap.String("status", string(status)))
	return nil
}
