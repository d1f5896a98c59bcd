package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	pkgdiscord "raidbot/pkg/discord"
)

const rankingLimit = 10

// HandlePointsCommand shows the caller's bonus counters and the
// guild's permanent participation leaderboard.
func (h *Handler) HandlePointsCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	locale := interactionLocale(i)
	memberID := interactionMemberID(i)

	ledger, err := h.attendance.Ledger(ctx, i.GuildID, memberID)
	if err != nil {
		h.log.Error("load ledger failed", zap.String("member_id", memberID), zap.Error(err))
		respondEphemeral(s, i.Interaction, h.tr.T(locale, "generic.error", nil))
		return
	}
	rankings, err := h.attendance.Rankings(ctx, i.GuildID, rankingLimit)
	if err != nil {
		h.log.Error("load rankings failed", zap.String("guild_id", i.GuildID), zap.Error(err))
		respondEphemeral(s, i.Interaction, h.tr.T(locale, "generic.error", nil))
		return
	}

	var b strings.Builder
	b.WriteString(h.tr.T(locale, "points.summary", map[string]any{
		"Bonus":  ledger.BonusCount,
		"Events": ledger.EventsAttended,
	}))
	if len(rankings) > 0 {
		b.WriteString("\n\n" + h.tr.T(locale, "points.ranking_header", nil) + "\n")
		for rank, r := range rankings {
			b.WriteString(fmt.Sprintf("%d. %s • %d\n", rank+1, pkgdiscord.Mention(r.MemberID), r.TotalEvents))
		}
	}
	respondEphemeral(s, i.Interaction, b.String())
}
