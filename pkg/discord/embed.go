package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"raidbot/internal/domain/entities"
)

const (
	embedColor       = 0x5865F2
	embedColorClosed = 0x99AAB5
)

func Mention(memberID string) string {
	return fmt.Sprintf("<@%s>", memberID)
}

func buildDescription(event *entities.Event, signupOffset time.Duration) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("**When:** <t:%d:F> (<t:%d:R>)\n", event.EventTime.Unix(), event.EventTime.Unix()))
	b.WriteString(fmt.Sprintf("**Signup deadline:** <t:%d:t>\n", event.SignupDeadline(signupOffset).Unix()))
	if event.BonusPoints > 0 {
		b.WriteString(fmt.Sprintf("**Bonus:** %d points for verified attendance\n", event.BonusPoints))
	}
	b.WriteString(fmt.Sprintf("\n✅ Attending: **%d**   🤔 Maybe: **%d**   ❌ Declined: **%d**\n",
		len(event.AttendingIDs()), len(event.MaybeIDs()), len(event.DeclinedIDs())))
	b.WriteString(fmt.Sprintf("🎟️ Verified attendance: **%d**", len(event.Attendees)))
	if event.Closed {
		b.WriteString("\n\n🔒 This event is closed.")
	}
	return b.String()
}

// BuildEventEmbed renders the shared event message. The same function
// serves the initial post and every refresh so the message is always a
// pure projection of store state.
func BuildEventEmbed(event *entities.Event, signupOffset time.Duration) *discordgo.MessageEmbed {
	color := embedColor
	if event.Closed {
		color = embedColorClosed
	}
	return &discordgo.MessageEmbed{
		Title:       "📅 " + event.Title,
		Description: buildDescription(event, signupOffset),
		Color:       color,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Organized by %s • event #%d", event.CreatedBy, event.ID)},
	}
}

// EventButtons builds the component rows under the event message.
// Buttons disappear once the event closes.
func EventButtons(closed bool) []discordgo.MessageComponent {
	if closed {
		return []discordgo.MessageComponent{}
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Attending", Style: discordgo.SuccessButton, CustomID: "btn_rsvp_attending"},
			discordgo.Button{Label: "Maybe", Style: discordgo.SecondaryButton, CustomID: "btn_rsvp_maybe"},
			discordgo.Button{Label: "Not attending", Style: discordgo.DangerButton, CustomID: "btn_rsvp_declined"},
		}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "🎟️ Enter attendance code", Style: discordgo.PrimaryButton, CustomID: "btn_enter_code"},
		}},
	}
}

// FormatRoster renders party member mentions with the leader starred.
func FormatRoster(members []entities.PartyMember) string {
	parts := make([]string, 0, len(members))
	for _, m := range members {
		s := Mention(m.MemberID)
		if m.IsLeader {
			s += " ⭐"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}
