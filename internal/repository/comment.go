// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"porchlight/internal/models"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListTopLevel(ctx context.Context, postSlug *string) ([]*models.Comment, error)
	ListNewest(ctx context.Context, limit int) ([]*models.Comment, error)
	ListGlobal(ctx context.Context, limit int) ([]*models.Comment, error)
	CountTopLevel(ctx context.Context, postSlug string) (int64, error)
	ListReplies(ctx context.Context, parentID uint) ([]*models.Comment, error)
	DeleteCascade(ctx context.Context, comment *models.Comment) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts the comment. For a reply the parent's reply count is bumped
// in the same transaction as the insert, so a failed insert never leaves the
// counter inflated. A parent deleted in the meantime is tolerated silently,
// the bump matches zero rows.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ParentID == nil {
		return r.db.WithContext(ctx).Create(comment).Error
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bumpReplyCount(tx, *comment.ParentID, 1); err != nil {
			return err
		}
		return tx.Create(comment).Error
	})
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListTopLevel returns top-level comments for one scope, newest first. A nil
// postSlug selects the global scope; scoped and global comments never mix.
func (r *commentRepository) ListTopLevel(ctx context.Context, postSlug *string) ([]*models.Comment, error) {
	q := r.db.WithContext(ctx).Where("parent_id IS NULL")
	if postSlug != nil {
		q = q.Where("post_slug = ?", *postSlug)
	} else {
		q = q.Where("post_slug IS NULL")
	}

	var comments []*models.Comment
	err := q.Order("created_at DESC, id DESC").Find(&comments).Error
	return comments, err
}

// ListNewest returns the newest comments across every scope, replies
// included. Callers filter replies out after the fact; the store does not
// support a filtered range query here.
func (r *commentRepository) ListNewest(ctx context.Context, limit int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) ListGlobal(ctx context.Context, limit int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Where("post_slug IS NULL AND parent_id IS NULL").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) CountTopLevel(ctx context.Context, postSlug string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("post_slug = ? AND parent_id IS NULL", postSlug).
		Count(&count).Error
	return count, err
}

// ListReplies returns direct replies oldest first, so threads read as a
// conversation.
func (r *commentRepository) ListReplies(ctx context.Context, parentID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

// bumpReplyCount applies the delta as a single UPDATE so concurrent
// adjustments never lose updates, flooring the counter at zero. A missing
// row is a silent no-op.
func bumpReplyCount(tx *gorm.DB, id uint, delta int) error {
	return tx.Model(&models.Comment{}).
		Where("id = ?", id).
		UpdateColumn("reply_count", gorm.Expr(
			"CASE WHEN reply_count + ? < 0 THEN 0 ELSE reply_count + ? END", delta, delta,
		)).Error
}

// DeleteCascade removes the comment, its direct replies, and every reaction
// on the comment or its replies, decrementing the parent's reply count when
// the comment itself is a reply. The whole cascade runs in one transaction.
// Replies cannot have replies, so one level is the full depth.
func (r *commentRepository) DeleteCascade(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Re-check inside the transaction: a concurrent delete of the same
		// comment is a no-op, never a double decrement.
		var current models.Comment
		if err := tx.First(&current, comment.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if comment.ParentID != nil {
			if err := bumpReplyCount(tx, *comment.ParentID, -1); err != nil {
				return err
			}
		}

		var replies []*models.Comment
		if err := tx.Where("parent_id = ?", comment.ID).Find(&replies).Error; err != nil {
			return err
		}

		targets := lo.Map(replies, func(c *models.Comment, _ int) uint { return c.ID })
		targets = append(targets, comment.ID)

		if err := tx.Where("comment_id IN ?", targets).Delete(&models.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("parent_id = ?", comment.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Comment{}, comment.ID).Error
	})
}
