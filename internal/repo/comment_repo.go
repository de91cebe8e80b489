// Package repo – Comment and Reaction persistence.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alexsolver/go-kb-backend/internal/domain"
)

// CreateComment inserts a new comment row. ID and CreatedAt are assigned
// here; depth and sanitized content are the service's responsibility.
func CreateComment(ctx context.Context, db *gorm.DB, c *domain.Comment) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(c).Error
}

// GetComment fetches a comment by ID within a tenant, with its reactions
// preloaded, or ErrNotFound.
func GetComment(ctx context.Context, db *gorm.DB, tenantID, id string) (*domain.Comment, error) {
	var c domain.Comment
	err := db.WithContext(ctx).
		Preload("Reactions").
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListComments returns an article's comments ordered deterministically
// (CreatedAt ASC, ID ASC) with reactions preloaded. Hidden comments are
// included; presentation filtering is a caller concern.
func ListComments(ctx context.Context, db *gorm.DB, tenantID, articleID string) ([]domain.Comment, error) {
	var out []domain.Comment
	err := db.WithContext(ctx).
		Preload("Reactions").
		Where("article_id = ? AND tenant_id = ?", articleID, tenantID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// CountComments returns the number of comments on an article.
func CountComments(ctx context.Context, db *gorm.DB, tenantID, articleID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("article_id = ? AND tenant_id = ?", articleID, tenantID).
		Count(&total).Error
	return total, err
}

// ReplaceReaction enforces the at-most-one-reaction-per-user invariant:
// any prior reaction by the user on the comment is removed and the new one
// inserted in the same transaction.
func ReplaceReaction(ctx context.Context, db *gorm.DB, commentID, userID, reactionType string, now time.Time) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("comment_id = ? AND user_id = ?", commentID, userID).
			Delete(&domain.Reaction{}).Error; err != nil {
			return err
		}
		return tx.Create(&domain.Reaction{
			ID:        uuid.NewString(),
			CommentID: commentID,
			UserID:    userID,
			Type:      reactionType,
			CreatedAt: now,
		}).Error
	})
}

// UpdateCommentFlags persists moderation flag changes for a comment within a
// tenant. Returns ErrNotFound when no row matched.
func UpdateCommentFlags(ctx context.Context, db *gorm.DB, tenantID, id string, fields map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
