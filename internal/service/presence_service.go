package service

import (
	"context"
	"time"

	"porchlight/internal/cache"
	"porchlight/internal/models"
	"porchlight/internal/repository"
)

// ActiveWindow is how recently a session must have been seen to count as
// active. Clients heartbeat every 15 seconds, so one missed beat keeps a
// session active and two drop it.
const ActiveWindow = 30 * time.Second

// statsCacheTTL bounds how stale the cached aggregate may be. Well under
// the 30s activity window, so the cache never changes which sessions count
// as active by more than a beat.
const statsCacheTTL = 5 * time.Second

type PresenceService struct {
	repo repository.PresenceRepository
	now  func() time.Time
}

func NewPresenceService(repo repository.PresenceRepository) *PresenceService {
	return &PresenceService{repo: repo, now: time.Now}
}

// Heartbeat records that the session is alive right now. Sessions are
// anonymous and client-generated; no authentication is required.
func (s *PresenceService) Heartbeat(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return models.NewValidationError("sessionId is required")
	}
	return s.repo.Heartbeat(ctx, sessionID, s.now().UnixMilli())
}

// Stats returns the all-time session count and the number of sessions seen
// within the activity window. The underlying count is a full scan, so the
// result is cached briefly when Redis is available.
func (s *PresenceService) Stats(ctx context.Context) (*models.PresenceStats, error) {
	stats := &models.PresenceStats{}
	err := cache.CacheAside(ctx, "presence:stats", stats, statsCacheTTL, func() error {
		activeSince := s.now().Add(-ActiveWindow).UnixMilli()
		fetched, err := s.repo.Stats(ctx, activeSince)
		if err != nil {
			return err
		}
		*stats = *fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
