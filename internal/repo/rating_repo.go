// Package repo – Rating persistence and the denormalized rating rollup.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alexsolver/go-kb-backend/internal/domain"
)

// CreateRating inserts a rating row. The (article_id, user_id) unique index
// is the authoritative duplicate guard; callers map the constraint violation
// to their duplicate sentinel.
func CreateRating(ctx context.Context, db *gorm.DB, r *domain.Rating) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(r).Error
}

// HasRating reports whether the user already rated the article. This check
// is advisory; the unique index remains the real guarantee.
func HasRating(ctx context.Context, db *gorm.DB, tenantID, articleID, userID string) (bool, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Rating{}).
		Where("article_id = ? AND tenant_id = ? AND user_id = ?", articleID, tenantID, userID).
		Count(&total).Error
	return total > 0, err
}

// ListRatings returns an article's ratings newest-first.
func ListRatings(ctx context.Context, db *gorm.DB, tenantID, articleID string) ([]domain.Rating, error) {
	var out []domain.Rating
	err := db.WithContext(ctx).
		Where("article_id = ? AND tenant_id = ?", articleID, tenantID).
		Order("created_at DESC, id ASC").
		Find(&out).Error
	return out, err
}

// ratingStats carries the aggregate scan target for RefreshArticleRating.
type ratingStats struct {
	Avg   float64
	Total int64
}

// RefreshArticleRating recomputes the article's rating_average/rating_count
// from the ratings table in a single aggregate query and writes the result
// back onto the article row. Run inside the same transaction as the rating
// insert so readers never observe a half-updated rollup.
func RefreshArticleRating(ctx context.Context, db *gorm.DB, tenantID, articleID string) error {
	var st ratingStats
	err := db.WithContext(ctx).
		Model(&domain.Rating{}).
		Select("COALESCE(AVG(score), 0) AS avg, COUNT(*) AS total").
		Where("article_id = ? AND tenant_id = ?", articleID, tenantID).
		Scan(&st).Error
	if err != nil {
		return err
	}
	return db.WithContext(ctx).
		Model(&domain.Article{}).
		Where("id = ? AND tenant_id = ?", articleID, tenantID).
		UpdateColumns(map[string]any{
			"rating_average": st.Avg,
			"rating_count":   st.Total,
		}).Error
}
