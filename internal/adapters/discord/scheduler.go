package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the reconciliation sweeps. In-memory timers never
// survive a restart, so correctness lives here: everything due is
// re-derived from persisted timestamps, and the conditional claim
// writes make redundant or concurrent sweeps no-ops.
type Scheduler struct {
	session *discordgo.Session
	handler *Handler
	locale  string
	cron    *cron.Cron

	// Per-key in-flight markers so a slow send can't run twice for the
	// same entity from overlapping sweeps.
	inflight *xsync.Map[string, bool]
	log      *zap.Logger
}

func NewScheduler(session *discordgo.Session, handler *Handler, locale string, log *zap.Logger) *Scheduler {
	return &Scheduler{
		session:  session,
		handler:  handler,
		locale:   locale,
		cron:     cron.New(),
		inflight: xsync.NewMap[string, bool](),
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@every 1m", s.sweep); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop cancels the cron schedule; a sweep already running finishes.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) sweep() {
	if _, running := s.inflight.LoadOrStore("sweep", true); running {
		return
	}
	defer s.inflight.Delete("sweep")

	ctx := context.Background()
	now := time.Now()
	s.sweepReminders(ctx, now)
	s.sweepAutoClose(ctx, now)
	s.sweepOrphans(ctx)
}

// sweepReminders sends the pre-event reminder for events entering the
// reminder window. The conditional claim makes exactly one process
// send it.
func (s *Scheduler) sweepReminders(ctx context.Context, now time.Time) {
	events, err := s.handler.events.EventsNeedingReminder(ctx, now)
	if err != nil {
		s.log.Error("reminder sweep query failed", zap.Error(err))
		return
	}
	for _, event := range events {
		key := fmt.Sprintf("reminder:%d", event.ID)
		if _, running := s.inflight.LoadOrStore(key, true); running {
			continue
		}

		claimed, err := s.handler.events.ClaimReminder(ctx, event.ID)
		if err != nil {
			s.log.Error("claim reminder failed", zap.Uint("event_id", event.ID), zap.Error(err))
			s.inflight.Delete(key)
			continue
		}
		if claimed {
			content := s.handler.tr.T(s.locale, "event.reminder", map[string]any{
				"Title": event.Title,
				"Unix":  event.EventTime.Unix(),
			})
			if _, err := s.session.ChannelMessageSend(event.ChannelID, content); err != nil {
				s.log.Warn("reminder send failed", zap.Uint("event_id", event.ID), zap.Error(err))
			}
		}
		s.inflight.Delete(key)
	}
}

// sweepAutoClose freezes events whose start time passed the grace
// period. Close is conditional; losing the race is fine.
func (s *Scheduler) sweepAutoClose(ctx context.Context, now time.Time) {
	events, err := s.handler.events.EventsToClose(ctx, now)
	if err != nil {
		s.log.Error("auto-close sweep query failed", zap.Error(err))
		return
	}
	for _, event := range events {
		if err := s.handler.events.CloseEvent(ctx, event.ID); err != nil {
			s.log.Error("auto-close failed", zap.Uint("event_id", event.ID), zap.Error(err))
			continue
		}
		s.handler.refresher.Force(event.ID)
	}
}

// sweepOrphans deletes events whose backing message no longer exists.
func (s *Scheduler) sweepOrphans(ctx context.Context) {
	events, err := s.handler.events.OpenEvents(ctx)
	if err != nil {
		s.log.Error("orphan sweep query failed", zap.Error(err))
		return
	}
	for _, event := range events {
		if event.MessageID == "" {
			continue
		}
		_, err := s.session.ChannelMessage(event.ChannelID, event.MessageID)
		if err == nil {
			continue
		}
		var restErr *discordgo.RESTError
		if errors.As(err, &restErr) && restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownMessage {
			if derr := s.handler.events.DeleteOrphanedEvent(ctx, event.ID); derr != nil {
				s.log.Error("orphan cleanup failed", zap.Uint("event_id", event.ID), zap.Error(derr))
			}
		}
	}
}
