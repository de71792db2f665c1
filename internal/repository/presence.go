package repository

import (
	"context"

	"porchlight/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PresenceRepository defines interface for presence tracking operations
type PresenceRepository interface {
	Heartbeat(ctx context.Context, sessionID string, seenAt int64) error
	Stats(ctx context.Context, activeSince int64) (*models.PresenceStats, error)
}

type presenceRepository struct {
	db *gorm.DB
}

// NewPresenceRepository creates a new PresenceRepository
func NewPresenceRepository(db *gorm.DB) PresenceRepository {
	return &presenceRepository{db: db}
}

// Heartbeat upserts the session's row, keyed by the unique session id, so
// any number of heartbeats leave exactly one record per session.
func (r *presenceRepository) Heartbeat(ctx context.Context, sessionID string, seenAt int64) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"last_seen": seenAt}),
		}).
		Create(&models.Presence{SessionID: sessionID, LastSeen: seenAt}).Error
}

// Stats counts all sessions ever seen plus the ones seen after activeSince.
// Two full-table counts; fine while the presence table stays small.
func (r *presenceRepository) Stats(ctx context.Context, activeSince int64) (*models.PresenceStats, error) {
	stats := &models.PresenceStats{}

	if err := r.db.WithContext(ctx).
		Model(&models.Presence{}).
		Count(&stats.TotalSessions).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Model(&models.Presence{}).
		Where("last_seen > ?", activeSince).
		Count(&stats.ActiveUsers).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
