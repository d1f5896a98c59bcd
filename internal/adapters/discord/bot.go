package discord

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"raidbot/internal/config"
	"raidbot/internal/domain"
	"raidbot/internal/ports/input"
	"raidbot/internal/ports/output"
)

// Bot is the Discord adapter.
type Bot struct {
	session   *discordgo.Session
	config    *config.Config
	handler   *Handler
	refresher *Refresher
	scheduler *Scheduler
	log       *zap.Logger
}

// NewBot creates a Bot and wires ports: session -> handler -> use cases.
func NewBot(
	cfg *config.Config,
	events input.EventUseCase,
	rsvps input.RSVPUseCase,
	attendance input.AttendanceUseCase,
	formations input.FormationUseCase,
	tr output.Translator,
	tokens EditTokenIssuer,
	log *zap.Logger,
) (*Bot, error) {
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	handler := NewHandler(events, rsvps, attendance, formations, tr, tokens, cfg.DashboardBaseURL, cfg.SignupOffset, log)
	refresher := NewRefresher(cfg.RefreshDelay, func(eventID uint) {
		handler.refreshEventMessage(context.Background(), s, eventID)
	})
	handler.refresher = refresher

	bot := &Bot{
		session:   s,
		config:    cfg,
		handler:   handler,
		refresher: refresher,
		scheduler: NewScheduler(s, handler, cfg.DefaultLocale, log),
		log:       log,
	}
	bot.session.AddHandler(bot.handleInteraction)
	return bot, nil
}

// Refresher exposes the debouncer so other adapters (the web
// dashboard) can force a refresh after dispatch.
func (b *Bot) Refresher() *Refresher { return b.refresher }

// Dispatcher builds the DM dispatcher bound to this session.
func (b *Bot) Dispatcher(tr output.Translator) *Dispatcher {
	return NewDispatcher(&SessionMessenger{Session: b.session}, tr, b.config.DefaultLocale, b.config.DispatchSendDelay, b.log)
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		switch i.ApplicationCommandData().Name {
		case "event":
			b.handler.HandleEventCommand(s, i)
		case "profile":
			b.handler.HandleProfileCommand(s, i)
		case "points":
			b.handler.HandlePointsCommand(s, i)
		}
	case discordgo.InteractionModalSubmit:
		customID := i.ModalSubmitData().CustomID
		if strings.HasPrefix(customID, "modal_code_") {
			b.handler.HandleCodeModalSubmit(s, i)
		} else if customID == "modal_profile" {
			b.handler.HandleProfileModalSubmit(s, i)
		}
	case discordgo.InteractionMessageComponent:
		switch i.MessageComponentData().CustomID {
		case "btn_rsvp_attending":
			b.handler.HandleRSVPButton(s, i, domain.RSVPAttending)
		case "btn_rsvp_maybe":
			b.handler.HandleRSVPButton(s, i, domain.RSVPMaybe)
		case "btn_rsvp_declined":
			b.handler.HandleRSVPButton(s, i, domain.RSVPDeclined)
		case "btn_enter_code":
			b.handler.HandleEnterCodeButton(s, i)
		}
	}
}

// Start runs the bot until interrupted.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer b.session.Close()

	if err := b.registerCommands(); err != nil {
		return err
	}
	if err := b.scheduler.Start(); err != nil {
		return err
	}

	b.log.Info("bot online")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	b.scheduler.Stop()
	b.refresher.Stop()
	return nil
}

func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "event",
			Description: "Manage recurring events",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "create",
					Description: "Create an event",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "title", Description: "Event title", Required: true},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "starts_at", Description: "Start time (unix timestamp)", Required: true},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "bonus", Description: "Bonus points for verified attendance", Required: false},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "code",
					Description: "Show the attendance code",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "event", Description: "Event id", Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "close",
					Description: "Close the event (freezes signups and attendance)",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "event", Description: "Event id", Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "reform",
					Description: "Reconcile static parties against attendance",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "event", Description: "Event id", Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "parties",
					Description: "List static parties",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "party", Description: "Show only this party number", Required: false},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "override",
					Description: "Record attendance without a code",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "event", Description: "Event id", Required: true},
						{Type: discordgo.ApplicationCommandOptionUser, Name: "member", Description: "Member", Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "resetbonus",
					Description: "Reset the guild's bonus ledger",
				},
			},
		},
		{
			Name:        "profile",
			Description: "Register your weapons and combat power",
		},
		{
			Name:        "points",
			Description: "Show your bonus points and the activity ranking",
		},
	}

	for _, cmd := range commands {
		if _, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd); err != nil {
			b.log.Warn("command registration failed", zap.String("command", cmd.Name), zap.Error(err))
		}
	}
	return nil
}
