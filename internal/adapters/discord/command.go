package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"raidbot/internal/domain/entities"
	pkgdiscord "raidbot/pkg/discord"
)

// HandleEventCommand routes the /event subcommands. All of them are
// administrative.
func (h *Handler) HandleEventCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	locale := interactionLocale(i)
	if !isAdmin(i) {
		respondEphemeral(s, i.Interaction, h.tr.T(locale, "admin.only", nil))
		return
	}

	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]

	switch sub.Name {
	case "create":
		h.handleEventCreate(s, i, sub.Options)
	case "code":
		h.handleEventCode(s, i, sub.Options)
	case "close":
		h.handleEventClose(s, i, sub.Options)
	case "reform":
		h.handleEventReform(s, i, sub.Options)
	case "parties":
		h.handleEventParties(s, i, sub.Options)
	case "override":
		h.handleEventOverride(s, i, sub.Options)
	case "resetbonus":
		h.handleResetBonus(s, i)
	}
}

func (h *Handler) handleEventCreate(s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	locale := interactionLocale(i)

	event := &entities.Event{
		GuildID:     i.GuildID,
		ChannelID:   i.ChannelID,
		Title:       optString(opts, "title"),
		EventTime:   time.Unix(optInt(opts, "starts_at"), 0),
		BonusPoints: int(optInt(opts, "bonus")),
		CreatedBy:   interactionMemberID(i),
	}
	if err := h.events.CreateEvent(ctx, event); err != nil {
		h.log.Error("create event failed", zap.Error(err))
		respondEphemeral(s, i.Interaction, h.userMessage(locale, err))
		return
	}

	msg, err := s.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{pkgdiscord.BuildEventEmbed(event, h.signupOffset)},
		Components: pkgdiscord.EventButtons(false),
	})
	if err != nil {
		h.log.Error("post event message failed", zap.Uint("event_id", event.ID), zap.Error(err))
		respondEphemeral(s, i.Interaction, h.tr.T(locale, "generic.error", nil))
		return
	}
	if err := h.events.AttachMessage(ctx, event.ID, i.ChannelID, msg.ID); err != nil {
		h.log.Error("attach message failed", zap.Uint("event_id", event.ID), zap.Error(err))
	}

	respondEphemeral(s, i.Interaction, h.tr.T(locale, "event.created", map[string]any{
		"Title": event.Title,
		"Code":  event.AttendanceCode,
	}))
}

func (h *Handler) handleEventCode(s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	locale := interactionLocale(i)
	event, err := h.events.GetEventByID(context.Background(), uint(optInt(opts, "event")))
	if err != nil {
		respondEphemeral(s, i.Interaction, h.tr.T(locale, "event.not_found", nil))
		return
	}
	respondEphemeral(s, i.Interaction, h.tr.T(locale, "event.code", map[string]any{
		"Title": event.Title,
		"Code":  event.AttendanceCode,
	}))
}

func (h *Handler) handleEventClose(s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	locale := interactionLocale(i)
	eventID := uint(optInt(opts, "event"))

	if err := h.events.CloseEvent(ctx, eventID); err != nil {
		respondEphemeral(s, i.Interaction, h.userMessage(locale, err))
		return
	}
	// Closing is a critical transition: skip the debounce so the
	// frozen state is visible immediately.
	h.refresher.Force(eventID)
	respondEphemeral(s, i.Interaction, h.tr.T(locale, "event.closed_ok", nil))
}

func (h *Handler) handleEventReform(s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	locale := interactionLocale(i)
	eventID := uint(optInt(opts, "event"))

	formation, err := h.formations.Reform(ctx, eventID, interactionMemberID(i))
	if err != nil {
		h.log.Error("reform failed", zap.Uint("event_id", eventID), zap.Error(err))
		respondEphemeral(s, i.Interaction, h.userMessage(locale, err))
		return
	}

	token := h.tokens.Issue(eventID)
	respondEphemeral(s, i.Interaction, h.tr.T(locale, "reform.link", map[string]any{
		"Intact":    formation.Summary.PartiesIntact,
		"Modified":  formation.Summary.PartiesModified,
		"Disbanded": formation.Summary.PartiesDisbanded,
		"Available": formation.Summary.MembersAvailable,
		"URL":       fmt.Sprintf("%s/formation/%s", h.baseURL, token),
	}))
}

func (h *Handler) handleEventParties(s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	locale := interactionLocale(i)

	if number := optInt(opts, "party"); number > 0 {
		party, err := h.formations.GetParty(ctx, i.GuildID, int(number))
		if err != nil {
			respondEphemeral(s, i.Interaction, h.userMessage(locale, err))
			return
		}
		respondEphemeral(s, i.Interaction, formatParty(party))
		return
	}

	parties, err := h.formations.ListParties(ctx, i.GuildID)
	if err != nil {
		h.log.Error("list parties failed", zap.String("guild_id", i.GuildID), zap.Error(err))
		respondEphemeral(s, i.Interaction, h.tr.T(locale, "generic.error", nil))
		return
	}
	if len(parties) == 0 {
		respondEphemeral(s, i.Interaction, h.tr.T(locale, "reform.no_parties", nil))
		return
	}

	var b strings.Builder
	for _, p := range parties {
		b.WriteString(formatParty(&p) + "\n")
	}
	respondEphemeral(s, i.Interaction, b.String())
}

func formatParty(p *entities.StaticParty) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("**Party %d**", p.PartyNumber))
	if len(p.Titles) > 0 {
		b.WriteString(" (" + strings.Join(p.Titles, ", ") + ")")
	}
	b.WriteString(": " + pkgdiscord.FormatRoster(p.Members))
	return b.String()
}

func (h *Handler) handleEventOverride(s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	locale := interactionLocale(i)
	eventID := uint(optInt(opts, "event"))
	memberID := optUserID(opts, "member")

	if err := h.attendance.ConfirmOverride(ctx, eventID, memberID); err != nil {
		respondEphemeral(s, i.Interaction, h.userMessage(locale, err))
		return
	}
	h.refresher.Schedule(eventID)
	respondEphemeral(s, i.Interaction, h.tr.T(locale, "attendance.override_ok", map[string]any{
		"Member": pkgdiscord.Mention(memberID),
	}))
}

func (h *Handler) handleResetBonus(s *discordgo.Session, i *discordgo.InteractionCreate) {
	locale := interactionLocale(i)
	if err := h.attendance.ResetLedger(context.Background(), i.GuildID); err != nil {
		respondEphemeral(s, i.Interaction, h.tr.T(locale, "generic.error", nil))
		return
	}
	respondEphemeral(s, i.Interaction, h.tr.T(locale, "admin.ledger_reset", nil))
}

func optString(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, o := range opts {
		if o.Name == name {
			return o.StringValue()
		}
	}
	return ""
}

func optInt(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) int64 {
	for _, o := range opts {
		if o.Name == name {
			return o.IntValue()
		}
	}
	return 0
}

func optUserID(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, o := range opts {
		if o.Name == name {
			if o.Type == discordgo.ApplicationCommandOptionUser {
				return o.Value.(string)
			}
		}
	}
	return ""
}
