// Package services – RatingService
//
// This file implements the RatingService, which governs 1-5 article ratings
// with optional per-dimension sub-scores. It enforces business rules (score
// range, article existence within the tenant, one rating per user) and keeps
// the article's denormalized rating rollup consistent by recomputing it in
// the same transaction as the insert.
//
// The duplicate check before the insert is advisory; the authoritative
// guarantee is the (article_id, user_id) unique index, whose violation is
// mapped to ErrDuplicateRating.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/alexsolver/go-kb-backend/internal/domain"
	"github.com/alexsolver/go-kb-backend/internal/repo"
)

// RatingService implements the use-cases around article ratings and the
// engagement rollup.
type RatingService struct {
	// DB is the database handle used for all rating operations.
	DB *gorm.DB
}

// Add records a rating for articleID on behalf of userID.
//
// Semantics and validation:
//   - score must be an integer in [1,5]; otherwise ErrInvalidScore. Each
//     present category sub-score must also be in [1,5].
//   - articleID must exist within tenantID; otherwise ErrArticleNotFound.
//   - A user may rate a given article once; a second attempt yields
//     ErrDuplicateRating and leaves the rollup untouched.
//
// On success the article's rating_average / rating_count are recomputed in
// the same transaction.
func (s *RatingService) Add(ctx context.Context, tenantID, articleID, userID string, score int, categories *domain.RatingCategories, review string) (*domain.Rating, error) {
	if score < 1 || score > 5 {
		return nil, ErrInvalidScore
	}
	if categories != nil {
		for _, sub := range []int{categories.Accuracy, categories.Clarity, categories.Completeness, categories.Usefulness} {
			if sub != 0 && (sub < 1 || sub > 5) {
				return nil, ErrInvalidScore
			}
		}
	}

	var created *domain.Rating
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetArticle(ctx, tx, tenantID, articleID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrArticleNotFound
			}
			return err
		}

		// Advisory pre-check; the unique index still backs the invariant.
		if has, err := repo.HasRating(ctx, tx, tenantID, articleID, userID); err != nil {
			return err
		} else if has {
			return ErrDuplicateRating
		}

		r := &domain.Rating{
			TenantID:   tenantID,
			ArticleID:  articleID,
			UserID:     userID,
			Score:      score,
			Categories: categories,
			Review:     strings.TrimSpace(review),
		}
		if err := repo.CreateRating(ctx, tx, r); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicate(err) {
				return ErrDuplicateRating
			}
			return err
		}

		if err := repo.RefreshArticleRating(ctx, tx, tenantID, articleID); err != nil {
			return err
		}
		created = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// List returns an article's ratings newest-first, verifying the article
// exists within the tenant.
func (s *RatingService) List(ctx context.Context, tenantID, articleID string) ([]domain.Rating, error) {
	if _, err := repo.GetArticle(ctx, s.DB, tenantID, articleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return repo.ListRatings(ctx, s.DB, tenantID, articleID)
}

// Engagement is the per-article analytics rollup.
type Engagement struct {
	ArticleID          string  `json:"article_id"`
	ViewCount          int64   `json:"view_count"`
	RatingAverage      float64 `json:"rating_average"`
	RatingCount        int64   `json:"rating_count"`
	CommentCount       int64   `json:"comment_count"`
	ReadingTimeMinutes int     `json:"reading_time_minutes"`
}

// EngagementFor assembles the engagement rollup for one article from the
// article row and the comment count.
func (s *RatingService) EngagementFor(ctx context.Context, tenantID, articleID string) (*Engagement, error) {
	a, err := repo.GetArticle(ctx, s.DB, tenantID, articleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	comments, err := repo.CountComments(ctx, s.DB, tenantID, articleID)
	if err != nil {
		return nil, err
	}
	return &Engagement{
		ArticleID:          a.ID,
		ViewCount:          a.ViewCount,
		RatingAverage:      a.RatingAverage,
		RatingCount:        a.RatingCount,
		CommentCount:       comments,
		ReadingTimeMinutes: domain.ReadingTime(a.Content),
	}, nil
}

// isDuplicate detects unique-constraint violations across drivers that may
// not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
