package input

import (
	"context"
	"time"

	"raidbot/internal/domain/entities"
)

type EventUseCase interface {
	CreateEvent(ctx context.Context, event *entities.Event) error
	GetEventByID(ctx context.Context, id uint) (*entities.Event, error)
	GetEventByMessageID(ctx context.Context, messageID string) (*entities.Event, error)
	AttachMessage(ctx context.Context, eventID uint, channelID, messageID string) error
	CloseEvent(ctx context.Context, eventID uint) error
	DeleteOrphanedEvent(ctx context.Context, eventID uint) error

	// Sweep support: candidates are re-derived from persisted
	// timestamps, claims are conditional and safe to run redundantly.
	EventsNeedingReminder(ctx context.Context, now time.Time) ([]entities.Event, error)
	ClaimReminder(ctx context.Context, eventID uint) (bool, error)
	EventsToClose(ctx context.Context, now time.Time) ([]entities.Event, error)
	OpenEvents(ctx context.Context) ([]entities.Event, error)
}
