package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"raidbot/internal/domain"
	"raidbot/internal/domain/entities"
)

func newAttendanceFixture(t *testing.T) (*AttendanceService, *memEventRepo, *memRewardRepo, *entities.Event) {
	t.Helper()
	repo := newMemEventRepo()
	rewards := &memRewardRepo{}
	event := repo.put(&entities.Event{
		GuildID:        "g1",
		Title:          "weekly raid",
		EventTime:      time.Now().Add(time.Hour),
		AttendanceCode: "4242",
		BonusPoints:    5,
	})
	svc := NewAttendanceService(repo, rewards, zap.NewNop())
	return svc, repo, rewards, event
}

func TestConfirmRecordsOnce(t *testing.T) {
	svc, repo, rewards, event := newAttendanceFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Confirm(ctx, event.ID, "alice", "4242"))
	assert.ErrorIs(t, svc.Confirm(ctx, event.ID, "alice", "4242"), domain.ErrAlreadyRecorded)

	loaded, err := repo.FindByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, loaded.Attendees)
	assert.Equal(t, 1, rewards.bonusCalls)
	assert.Equal(t, 5, rewards.bonusTotal)
	assert.Equal(t, 1, rewards.rankCalls)
}

func TestConfirmConcurrentDuplicates(t *testing.T) {
	svc, repo, rewards, event := newAttendanceFixture(t)
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for k := 0; k < n; k++ {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			errs[k] = svc.Confirm(ctx, event.ID, "alice", "4242")
		}(k)
	}
	wg.Wait()

	recorded := 0
	for _, err := range errs {
		if err == nil {
			recorded++
		} else {
			assert.ErrorIs(t, err, domain.ErrAlreadyRecorded)
		}
	}
	assert.Equal(t, 1, recorded, "exactly one caller records attendance")

	loaded, err := repo.FindByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Attendees, 1)
	assert.Equal(t, 1, rewards.bonusCalls, "rewards applied exactly once")
	assert.Equal(t, 1, rewards.rankCalls)
}

func TestConfirmWrongCode(t *testing.T) {
	svc, repo, rewards, event := newAttendanceFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Confirm(ctx, event.ID, "alice", "0000"), domain.ErrCodeMismatch)

	loaded, err := repo.FindByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Attendees, "wrong code never reaches the store write")
	assert.Zero(t, rewards.bonusCalls)
}

func TestConfirmClosedEvent(t *testing.T) {
	svc, repo, _, event := newAttendanceFixture(t)
	ctx := context.Background()
	_, err := repo.Close(ctx, event.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Confirm(ctx, event.ID, "alice", "4242"), domain.ErrEventClosed)
}

func TestConfirmMissingEvent(t *testing.T) {
	svc, _, _, _ := newAttendanceFixture(t)
	assert.ErrorIs(t, svc.Confirm(context.Background(), 999, "alice", "4242"), domain.ErrEventNotFound)
}

func TestConfirmStoreFailureIsNotNotFound(t *testing.T) {
	svc, repo, rewards, event := newAttendanceFixture(t)
	repo.findErr = errors.New("connection refused")

	err := svc.Confirm(context.Background(), event.ID, "alice", "4242")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrEventNotFound)
	assert.ErrorContains(t, err, "connection refused")
	assert.Zero(t, rewards.bonusCalls)
}

func TestResetLedger(t *testing.T) {
	svc, _, rewards, _ := newAttendanceFixture(t)
	require.NoError(t, svc.ResetLedger(context.Background(), "g1"))
	assert.Equal(t, 1, rewards.resets)
}

func TestConfirmOverrideSkipsCode(t *testing.T) {
	svc, repo, rewards, event := newAttendanceFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.ConfirmOverride(ctx, event.ID, "bob"))
	assert.ErrorIs(t, svc.ConfirmOverride(ctx, event.ID, "bob"), domain.ErrAlreadyRecorded)

	loaded, err := repo.FindByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, loaded.Attendees)
	assert.Equal(t, 1, rewards.bonusCalls)
}
