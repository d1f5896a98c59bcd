package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"raidbot/internal/domain"
	"raidbot/internal/domain/entities"
	"raidbot/internal/ports/output"
)

type AttendanceService struct {
	events  output.EventRepository
	rewards output.RewardRepository
	log     *zap.Logger
}

func NewAttendanceService(events output.EventRepository, rewards output.RewardRepository, log *zap.Logger) *AttendanceService {
	return &AttendanceService{
		events:  events,
		rewards: rewards,
		log:     log,
	}
}

// Confirm records verified attendance for the member. The code check
// is the cheap rejection before the conditional write; the write
// itself is the only thing that decides who recorded first.
func (s *AttendanceService) Confirm(ctx context.Context, eventID uint, memberID, submittedCode string) error {
	event, err := s.events.FindByID(ctx, eventID)
	if errors.Is(err, domain.ErrEventNotFound) {
		return domain.ErrEventNotFound
	}
	if err != nil {
		return fmt.Errorf("load event: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(event.AttendanceCode), []byte(submittedCode)) != 1 {
		return domain.ErrCodeMismatch
	}
	return s.record(ctx, event.GuildID, eventID, memberID, event.BonusPoints)
}

// ConfirmOverride is the administrative path: no code check, same
// idempotency.
func (s *AttendanceService) ConfirmOverride(ctx context.Context, eventID uint, memberID string) error {
	event, err := s.events.FindByID(ctx, eventID)
	if errors.Is(err, domain.ErrEventNotFound) {
		return domain.ErrEventNotFound
	}
	if err != nil {
		return fmt.Errorf("load event: %w", err)
	}
	return s.record(ctx, event.GuildID, eventID, memberID, event.BonusPoints)
}

// ResetLedger zeroes the guild's resettable counters. The permanent
// activity ranking has no reset path anywhere.
func (s *AttendanceService) ResetLedger(ctx context.Context, guildID string) error {
	if err := s.rewards.ResetLedger(ctx, guildID); err != nil {
		return fmt.Errorf("reset ledger: %w", err)
	}
	s.log.Info("bonus ledger reset", zap.String("guild_id", guildID))
	return nil
}

func (s *AttendanceService) Ledger(ctx context.Context, guildID, memberID string) (*entities.BonusLedger, error) {
	return s.rewards.FindLedger(ctx, guildID, memberID)
}

func (s *AttendanceService) Rankings(ctx context.Context, guildID string, limit int) ([]entities.ActivityRanking, error) {
	return s.rewards.TopRankings(ctx, guildID, limit)
}

func (s *AttendanceService) record(ctx context.Context, guildID string, eventID uint, memberID string, bonusPoints int) error {
	recorded, err := s.events.RecordAttendance(ctx, eventID, memberID)
	if err != nil {
		return fmt.Errorf("record attendance: %w", err)
	}
	if !recorded {
		// The store predicate did not match. Re-read to classify; the
		// already-recorded case wins so concurrent duplicates of the
		// same member read as idempotent.
		event, err := s.events.FindByID(ctx, eventID)
		if errors.Is(err, domain.ErrEventNotFound) {
			return domain.ErrEventNotFound
		}
		if err != nil {
			return fmt.Errorf("reload event: %w", err)
		}
		if event.HasAttendee(memberID) {
			return domain.ErrAlreadyRecorded
		}
		return domain.ErrEventClosed
	}

	// Reward side effects: two independent, non-transactional writes.
	// The attendance write above already guarantees this block runs at
	// most once per (event, member), so failures are logged, never
	// retried.
	if err := s.rewards.AddBonus(ctx, guildID, memberID, bonusPoints); err != nil {
		s.log.Error("bonus ledger update failed",
			zap.Uint("event_id", eventID),
			zap.String("member_id", memberID),
			zap.Error(err))
	}
	if err := s.rewards.IncrementTotalEvents(ctx, guildID, memberID); err != nil {
		s.log.Error("activity ranking update failed",
			zap.Uint("event_id", eventID),
			zap.String("member_id", memberID),
			zap.Error(err))
	}

	s.log.Info("attendance recorded",
		zap.Uint("event_id", eventID),
		zap.String("member_id", memberID))
	return nil
}
