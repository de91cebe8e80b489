// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Article
// aggregate and its approval history.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: no business logic, only CRUD persistence and query composition.
// Every query filters on tenantID; a row from another tenant is
// indistinguishable from a missing row.
//
// Error semantics:
//   - When an article is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alexsolver/go-kb-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateArticle inserts the article row. The caller is expected to have set
// every derived field (ID, slug, summary, version) already.
func CreateArticle(ctx context.Context, db *gorm.DB, a *domain.Article) error {
	return db.WithContext(ctx).Create(a).Error
}

// GetArticle fetches a single article by ID within a tenant, or ErrNotFound.
func GetArticle(ctx context.Context, db *gorm.DB, tenantID, id string) (*domain.Article, error) {
	var a domain.Article
	err := db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// TouchArticleView bumps the article's view counter with a single atomic
// UPDATE and stamps last_viewed_at. Concurrent reads never lose increments
// because the addition happens inside the statement, not in Go.
func TouchArticleView(ctx context.Context, db *gorm.DB, tenantID, id string, now time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Article{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		UpdateColumns(map[string]any{
			"view_count":     gorm.Expr("view_count + 1"),
			"last_viewed_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateArticle persists a set of column updates for an article within a
// tenant. Returns ErrNotFound when no row matched.
func UpdateArticle(ctx context.Context, db *gorm.DB, tenantID, id string, fields map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.Article{}).
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

// TransitionApproval applies an approval transition with optimistic
// concurrency: the UPDATE only matches while the article still carries the
// expected approval status and version. When the row has moved on (a
// concurrent decision won), zero rows match and ErrStaleArticle is returned
// so exactly one of two racing transitions succeeds.
func TransitionApproval(ctx context.Context, db *gorm.DB, a *domain.Article, expected domain.ApprovalStatus, fields map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.Article{}).
		Where("id = ? AND tenant_id = ? AND approval_status = ? AND version = ?",
			a.ID, a.TenantID, expected, a.Version).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleArticle
	}
	return nil
}

// ErrStaleArticle is returned by TransitionApproval when the compare-and-swap
// matched no row: the article changed underneath the caller.
var ErrStaleArticle = errors.New("article changed concurrently")

// SoftDeleteArticle marks the article deleted (rows are retained for audit).
func SoftDeleteArticle(ctx context.Context, db *gorm.DB, tenantID, id string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&domain.Article{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountArticles returns the number of articles in the tenant, optionally
// filtered by category.
func CountArticles(ctx context.Context, db *gorm.DB, tenantID, category string) (int64, error) {
	q := db.WithContext(ctx).
		Model(&domain.Article{}).
		Where("tenant_id = ?", tenantID)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var total int64
	err := q.Count(&total).Error
	return total, err
}

// ListArticlesPage returns a page of articles ordered deterministically
// (CreatedAt DESC, ID ASC), optionally filtered by category.
func ListArticlesPage(ctx context.Context, db *gorm.DB, tenantID, category string, offset, limit int) ([]domain.Article, error) {
	q := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC, id ASC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var out []domain.Article
	err := q.Offset(offset).Limit(limit).Find(&out).Error
	return out, err
}

// ListArticles returns every article of a tenant; used by the in-process
// search path which re-ranks with a relevance scorer.
func ListArticles(ctx context.Context, db *gorm.DB, tenantID string) ([]domain.Article, error) {
	var out []domain.Article
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC, id ASC").
		Find(&out).Error
	return out, err
}

// AppendApprovalEntry inserts one immutable history row. The entry ID is a
// fresh UUID; everything else comes from the state machine transition.
func AppendApprovalEntry(ctx context.Context, db *gorm.DB, e *domain.ApprovalEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return db.WithContext(ctx).Create(e).Error
}

// ListApprovalEntries returns an article's approval history oldest-first.
func ListApprovalEntries(ctx context.Context, db *gorm.DB, tenantID, articleID string) ([]domain.ApprovalEntry, error) {
	var out []domain.ApprovalEntry
	err := db.WithContext(ctx).
		Where("article_id = ? AND tenant_id = ?", articleID, tenantID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// CountApprovalsByAction counts the distinct users who recorded one action on
// an article, used by the multi-approver policy to know how many approvals
// accumulated. Repeat decisions by the same reviewer count once.
func CountApprovalsByAction(ctx context.Context, db *gorm.DB, tenantID, articleID string, action domain.ApprovalAction) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.ApprovalEntry{}).
		Distinct("user_id").
		Where("article_id = ? AND tenant_id = ? AND action = ?", articleID, tenantID, string(action)).
		Count(&total).Error
	return total, err
}
