package discord

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"raidbot/internal/domain"
	"raidbot/internal/ports/input"
	"raidbot/internal/ports/output"
	pkgdiscord "raidbot/pkg/discord"
)

// EditTokenIssuer mints single-use dashboard links for a formation.
// Implemented by the web adapter's token store.
type EditTokenIssuer interface {
	Issue(eventID uint) string
}

// Handler handles Discord interactions using use cases.
type Handler struct {
	events     input.EventUseCase
	rsvps      input.RSVPUseCase
	attendance input.AttendanceUseCase
	formations input.FormationUseCase
	tr         output.Translator
	tokens     EditTokenIssuer
	refresher  *Refresher

	baseURL      string
	signupOffset time.Duration
	log          *zap.Logger
}

func NewHandler(
	events input.EventUseCase,
	rsvps input.RSVPUseCase,
	attendance input.AttendanceUseCase,
	formations input.FormationUseCase,
	tr output.Translator,
	tokens EditTokenIssuer,
	baseURL string,
	signupOffset time.Duration,
	log *zap.Logger,
) *Handler {
	return &Handler{
		events:       events,
		rsvps:        rsvps,
		attendance:   attendance,
		formations:   formations,
		tr:           tr,
		tokens:       tokens,
		baseURL:      baseURL,
		signupOffset: signupOffset,
		log:          log,
	}
}

// refreshEventMessage rebuilds the event embed from store state and
// edits the shared message. An Unknown Message response means the
// backing message was deleted by hand: the event record is orphaned
// and gets cleaned up instead of erroring forever.
func (h *Handler) refreshEventMessage(ctx context.Context, s *discordgo.Session, eventID uint) {
	event, err := h.events.GetEventByID(ctx, eventID)
	if err != nil {
		h.log.Error("refresh: load event failed", zap.Uint("event_id", eventID), zap.Error(err))
		return
	}
	if event.MessageID == "" {
		return
	}

	embed := pkgdiscord.BuildEventEmbed(event, h.signupOffset)
	components := pkgdiscord.EventButtons(event.Closed)
	embeds := []*discordgo.MessageEmbed{embed}
	_, err = s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         event.MessageID,
		Channel:    event.ChannelID,
		Embeds:     &embeds,
		Components: &components,
	})
	if err == nil {
		return
	}

	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownMessage {
		if derr := h.events.DeleteOrphanedEvent(ctx, eventID); derr != nil {
			h.log.Error("orphan cleanup failed", zap.Uint("event_id", eventID), zap.Error(derr))
		}
		return
	}
	h.log.Error("refresh: message edit failed", zap.Uint("event_id", eventID), zap.Error(err))
}

// userMessage maps a domain error to the one message shown to the
// member; everything unknown collapses into a generic reply.
func (h *Handler) userMessage(locale string, err error) string {
	switch {
	case errors.Is(err, domain.ErrEventNotFound):
		return h.tr.T(locale, "event.not_found", nil)
	case errors.Is(err, domain.ErrEventClosed):
		return h.tr.T(locale, "event.closed", nil)
	case errors.Is(err, domain.ErrDeadlinePassed):
		return h.tr.T(locale, "rsvp.deadline_passed", nil)
	case errors.Is(err, domain.ErrAlreadyRecorded):
		return h.tr.T(locale, "attendance.already", nil)
	case errors.Is(err, domain.ErrCodeMismatch):
		return h.tr.T(locale, "attendance.wrong_code", nil)
	case errors.Is(err, domain.ErrPartyNotFound):
		return h.tr.T(locale, "reform.party_not_found", nil)
	default:
		return h.tr.T(locale, "generic.error", nil)
	}
}
