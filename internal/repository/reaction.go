package repository

import (
	"context"
	"errors"

	"porchlight/internal/models"

	"gorm.io/gorm"
)

// ReactionRepository defines interface for reaction operations
type ReactionRepository interface {
	ListByComment(ctx context.Context, commentID uint) ([]*models.Reaction, error)
	ListByComments(ctx context.Context, commentIDs []uint) ([]*models.Reaction, error)
	Toggle(ctx context.Context, commentID uint, userID, emoji string) (added bool, err error)
}

type reactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository creates a new ReactionRepository
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) ListByComment(ctx context.Context, commentID uint) ([]*models.Reaction, error) {
	var reactions []*models.Reaction
	err := r.db.WithContext(ctx).
		Where("comment_id = ?", commentID).
		Order("created_at ASC, id ASC").
		Find(&reactions).Error
	return reactions, err
}

func (r *reactionRepository) ListByComments(ctx context.Context, commentIDs []uint) ([]*models.Reaction, error) {
	if len(commentIDs) == 0 {
		return nil, nil
	}
	var reactions []*models.Reaction
	err := r.db.WithContext(ctx).
		Where("comment_id IN ?", commentIDs).
		Order("created_at ASC, id ASC").
		Find(&reactions).Error
	return reactions, err
}

// Toggle flips the (user, comment, emoji) reaction: present rows are
// deleted, absent ones inserted. The lookup and write share a transaction
// so concurrent toggles of the same triple serialize.
func (r *reactionRepository) Toggle(ctx context.Context, commentID uint, userID, emoji string) (bool, error) {
	added := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Reaction
		err := tx.Where("user_id = ? AND comment_id = ? AND emoji = ?", userID, commentID, emoji).
			First(&existing).Error
		if err == nil {
			return tx.Delete(&existing).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		added = true
		return tx.Create(&models.Reaction{
			CommentID: commentID,
			UserID:    userID,
			Emoji:     emoji,
		}).Error
	})
	return added, err
}
