package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"raidbot/internal/domain/entities"
	"raidbot/internal/ports/output"
)

// Messenger sends a direct notification to one member.
type Messenger interface {
	SendDM(ctx context.Context, memberID, content string) error
}

// SessionMessenger is the discordgo-backed Messenger.
type SessionMessenger struct {
	Session *discordgo.Session
}

func (m *SessionMessenger) SendDM(_ context.Context, memberID, content string) error {
	ch, err := m.Session.UserChannelCreate(memberID)
	if err != nil {
		return fmt.Errorf("open dm channel: %w", err)
	}
	if _, err := m.Session.ChannelMessageSend(ch.ID, content); err != nil {
		return fmt.Errorf("send dm: %w", err)
	}
	return nil
}

// Dispatcher sends the finalized formation to every placed member and
// reports per-member success/failure. One member failing (DMs off,
// left the server) never aborts the batch.
type Dispatcher struct {
	messenger Messenger
	tr        output.Translator
	locale    string
	sendDelay time.Duration
	log       *zap.Logger
}

func NewDispatcher(messenger Messenger, tr output.Translator, locale string, sendDelay time.Duration, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		messenger: messenger,
		tr:        tr,
		locale:    locale,
		sendDelay: sendDelay,
		log:       log,
	}
}

// Dispatch notifies every member of every processed party, then the
// available pool. Sends are paced with a fixed delay to stay under the
// outbound rate limit.
func (d *Dispatcher) Dispatch(ctx context.Context, formation *entities.Formation, event *entities.Event) entities.DispatchReport {
	report := entities.DispatchReport{Successful: []string{}, Failed: []entities.DispatchFailure{}}

	first := true
	send := func(memberID, content string) {
		if !first {
			time.Sleep(d.sendDelay)
		}
		first = false
		if err := d.messenger.SendDM(ctx, memberID, content); err != nil {
			d.log.Warn("assignment dm failed",
				zap.Uint("event_id", event.ID),
				zap.String("member_id", memberID),
				zap.Error(err))
			report.Failed = append(report.Failed, entities.DispatchFailure{
				MemberID: memberID,
				Reason:   err.Error(),
			})
			return
		}
		report.Successful = append(report.Successful, memberID)
	}

	for _, party := range formation.ProcessedParties {
		if party.Status == entities.PartyDisbanded {
			continue
		}
		titles := ""
		if len(party.Titles) > 0 {
			titles = " (" + strings.Join(party.Titles, ", ") + ")"
		}
		for _, m := range party.Members {
			content := d.tr.T(d.locale, "dispatch.assignment", map[string]any{
				"EventTitle":  event.Title,
				"PartyNumber": party.PartyNumber,
				"Titles":      titles,
				"Tanks":       party.RoleComposition.Tanks,
				"Healers":     party.RoleComposition.Healers,
				"DPS":         party.RoleComposition.DPS,
				"Roster":      rosterWithout(party.Members, m.MemberID),
				"Unix":        event.EventTime.Unix(),
			})
			send(m.MemberID, content)
		}
	}

	for _, m := range formation.AvailableMembers {
		content := d.tr.T(d.locale, "dispatch.pool", map[string]any{
			"EventTitle": event.Title,
			"Source":     m.Source,
			"Unix":       event.EventTime.Unix(),
		})
		send(m.MemberID, content)
	}

	d.log.Info("formation dispatched",
		zap.Uint("event_id", event.ID),
		zap.Int("successful", len(report.Successful)),
		zap.Int("failed", len(report.Failed)))
	return report
}

// rosterWithout lists the party mentions minus the recipient.
func rosterWithout(members []entities.PartyMember, memberID string) string {
	rest := make([]entities.PartyMember, 0, len(members))
	for _, m := range members {
		if m.MemberID != memberID {
			rest = append(rest, m)
		}
	}
	parts := make([]string, 0, len(rest))
	for _, m := range rest {
		s := fmt.Sprintf("<@%s>", m.MemberID)
		if m.IsLeader {
			s += " ⭐"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}
