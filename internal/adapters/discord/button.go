package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"raidbot/internal/domain"
)

// HandleRSVPButton records the pressed intent with one conditional
// write and schedules a debounced embed refresh.
func (h *Handler) HandleRSVPButton(s *discordgo.Session, i *discordgo.InteractionCreate, status domain.RSVPStatus) {
	ctx := context.Background()
	locale := interactionLocale(i)

	event, err := h.events.GetEventByMessageID(ctx, i.Message.ID)
	if err != nil {
		respondEphemeral(s, i.Interaction, h.tr.T(locale, "event.not_found", nil))
		return
	}

	if err := h.rsvps.SetRSVP(ctx, event.ID, interactionMemberID(i), status); err != nil {
		respondEphemeral(s, i.Interaction, h.userMessage(locale, err))
		return
	}

	h.refresher.Schedule(event.ID)
	respondEphemeral(s, i.Interaction, h.tr.T(locale, "rsvp.saved."+string(status), nil))
}

// HandleEnterCodeButton opens the attendance-code modal for the event
// behind the pressed message.
func (h *Handler) HandleEnterCodeButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	locale := interactionLocale(i)

	event, err := h.events.GetEventByMessageID(context.Background(), i.Message.ID)
	if err != nil {
		respondEphemeral(s, i.Interaction, h.tr.T(locale, "event.not_found", nil))
		return
	}

	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: fmt.Sprintf("modal_code_%d", event.ID),
			Title:    h.tr.T(locale, "attendance.prompt", nil),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:  "code",
						Label:     h.tr.T(locale, "attendance.prompt", nil),
						Style:     discordgo.TextInputShort,
						Required:  true,
						MaxLength: 8,
					},
				}},
			},
		},
	})
}
