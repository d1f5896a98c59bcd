package discord

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"raidbot/internal/domain"
	"raidbot/internal/domain/entities"
)

// HandleCodeModalSubmit verifies the submitted attendance code. The
// custom id carries the event id: "modal_code_<id>".
func (h *Handler) HandleCodeModalSubmit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	locale := interactionLocale(i)
	data := i.ModalSubmitData()

	idStr := strings.TrimPrefix(data.CustomID, "modal_code_")
	eventID, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		respondEphemeral(s, i.Interaction, h.tr.T(locale, "generic.error", nil))
		return
	}
	code := strings.TrimSpace(extractTextInput(data, "code"))

	confirmErr := h.attendance.Confirm(ctx, uint(eventID), interactionMemberID(i), code)
	if confirmErr != nil {
		respondEphemeral(s, i.Interaction, h.userMessage(locale, confirmErr))
		return
	}

	event, err := h.events.GetEventByID(ctx, uint(eventID))
	points := 0
	if err == nil {
		points = event.BonusPoints
	}

	h.refresher.Schedule(uint(eventID))
	respondEphemeral(s, i.Interaction, h.tr.T(locale, "attendance.recorded", map[string]any{"Points": points}))
}

// HandleProfileCommand opens the gear-registration modal, prefilled
// with the member's current profile when one exists.
func (h *Handler) HandleProfileCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var main, off, power string
	if profile, err := h.formations.GetProfile(context.Background(), i.GuildID, interactionMemberID(i)); err == nil {
		main = string(profile.WeaponMain)
		off = string(profile.WeaponOff)
		power = strconv.Itoa(profile.CombatPower)
	}

	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: "modal_profile",
			Title:    "Combat profile",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{CustomID: "weapon_main", Label: "Main weapon", Style: discordgo.TextInputShort, Required: true, Placeholder: "e.g. greatsword", Value: main},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{CustomID: "weapon_off", Label: "Off weapon", Style: discordgo.TextInputShort, Required: true, Placeholder: "e.g. daggers", Value: off},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{CustomID: "combat_power", Label: "Combat power", Style: discordgo.TextInputShort, Required: true, Placeholder: "e.g. 3200", Value: power},
				}},
			},
		},
	})
}

// HandleProfileModalSubmit validates and saves the member's gear.
func (h *Handler) HandleProfileModalSubmit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	locale := interactionLocale(i)
	data := i.ModalSubmitData()

	main := domain.Weapon(strings.ToLower(strings.TrimSpace(extractTextInput(data, "weapon_main"))))
	off := domain.Weapon(strings.ToLower(strings.TrimSpace(extractTextInput(data, "weapon_off"))))
	if !main.Valid() || !off.Valid() {
		respondEphemeral(s, i.Interaction, h.tr.T(locale, "profile.invalid_weapon", nil))
		return
	}
	power, err := strconv.Atoi(strings.TrimSpace(extractTextInput(data, "combat_power")))
	if err != nil || power <= 0 {
		respondEphemeral(s, i.Interaction, h.tr.T(locale, "profile.invalid_power", nil))
		return
	}

	profile := &entities.MemberProfile{
		GuildID:     i.GuildID,
		MemberID:    interactionMemberID(i),
		WeaponMain:  main,
		WeaponOff:   off,
		CombatPower: power,
	}
	if err := h.formations.SaveProfile(ctx, profile); err != nil {
		respondEphemeral(s, i.Interaction, h.tr.T(locale, "generic.error", nil))
		return
	}

	respondEphemeral(s, i.Interaction, h.tr.T(locale, "profile.saved", map[string]any{
		"Main":  string(main),
		"Off":   string(off),
		"Power": power,
		"Role":  string(domain.RoleFromWeapons(main, off)),
	}))
}

func extractTextInput(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, c := range actionsRow.Components {
			input, ok := c.(*discordgo.TextInput)
			if ok && input.CustomID == customID {
				return input.Value
			}
		}
	}
	return ""
}
