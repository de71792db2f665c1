package service

import (
	"context"
	"testing"
	"time"

	"porchlight/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type presenceRepoStub struct {
	heartbeatFn func(context.Context, string, int64) error
	statsFn     func(context.Context, int64) (*models.PresenceStats, error)
}

func (s *presenceRepoStub) Heartbeat(ctx context.Context, sessionID string, lastSeen int64) error {
	return s.heartbeatFn(ctx, sessionID, lastSeen)
}
func (s *presenceRepoStub) Stats(ctx context.Context, activeSince int64) (*models.PresenceStats, error) {
	return s.statsFn(ctx, activeSince)
}

func frozenClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestPresenceService_Heartbeat_RequiresSession(t *testing.T) {
	t.Parallel()

	repo := &presenceRepoStub{
		heartbeatFn: func(_ context.Context, _ string, _ int64) error {
			t.Fatal("empty session id must be rejected before storage")
			return nil
		},
	}

	svc := NewPresenceService(repo)
	err := svc.Heartbeat(context.Background(), "")
	assertAppErrorCode(t, err, models.CodeValidation)
}

func TestPresenceService_Heartbeat_StampsNow(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var gotSession string
	var gotSeen int64
	repo := &presenceRepoStub{
		heartbeatFn: func(_ context.Context, sessionID string, lastSeen int64) error {
			gotSession = sessionID
			gotSeen = lastSeen
			return nil
		},
	}

	svc := NewPresenceService(repo)
	svc.now = frozenClock(at)

	require.NoError(t, svc.Heartbeat(context.Background(), "sess-1"))
	assert.Equal(t, "sess-1", gotSession)
	assert.Equal(t, at.UnixMilli(), gotSeen)
}

func TestPresenceService_Stats_ActiveWindow(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var gotSince int64
	repo := &presenceRepoStub{
		statsFn: func(_ context.Context, activeSince int64) (*models.PresenceStats, error) {
			gotSince = activeSince
			return &models.PresenceStats{TotalSessions: 12, ActiveUsers: 4}, nil
		},
	}

	svc := NewPresenceService(repo)
	svc.now = frozenClock(at)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, at.Add(-ActiveWindow).UnixMilli(), gotSince)
	assert.EqualValues(t, 12, stats.TotalSessions)
	assert.EqualValues(t, 4, stats.ActiveUsers)
}
