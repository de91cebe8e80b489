// Package services – CommentService
//
// This file implements the CommentService, which governs threaded comments
// on articles: creation with a nesting depth cap, per-user reactions, and
// moderation flags. It enforces business rules (article existence within the
// tenant, depth limit, content caps, reaction uniqueness) and persists
// changes using the provided GORM handle.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/alexsolver/go-kb-backend/internal/domain"
	"github.com/alexsolver/go-kb-backend/internal/repo"
)

// MaxCommentRunes caps stored comment content; longer input is clipped, not
// rejected.
const MaxCommentRunes = 2000

// reactionTypes is the accepted set of reaction types.
var reactionTypes = map[string]struct{}{
	"like":       {},
	"dislike":    {},
	"heart":      {},
	"helpful":    {},
	"insightful": {},
}

// Moderation actions.
const (
	ModerateHighlight = "highlight"
	ModerateResolve   = "resolve"
	ModerateHide      = "hide"
)

// CommentService implements the use-cases around article comments.
type CommentService struct {
	// DB is the database handle used for all comment operations.
	DB *gorm.DB
}

// Add creates a comment on an article, optionally nested under a parent.
//
// Semantics and validation:
//   - The article must exist within tenantID; otherwise ErrArticleNotFound.
//   - Content is trimmed and clipped to MaxCommentRunes; empty content after
//     trimming yields ErrEmptyComment.
//   - With a parent: the parent must belong to the same article (otherwise
//     ErrCommentNotFound) and must sit above the depth cap; a reply to a
//     parent at depth MaxThreadDepth yields ErrMaxDepthExceeded.
func (s *CommentService) Add(ctx context.Context, tenantID, articleID, userID, content string, parentCommentID *string) (*domain.Comment, error) {
	content = clipRunes(strings.TrimSpace(content), MaxCommentRunes)
	if content == "" {
		return nil, ErrEmptyComment
	}

	var created *domain.Comment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetArticle(ctx, tx, tenantID, articleID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrArticleNotFound
			}
			return err
		}

		depth := 0
		if parentCommentID != nil {
			parent, err := repo.GetComment(ctx, tx, tenantID, *parentCommentID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrCommentNotFound
				}
				return err
			}
			if parent.ArticleID != articleID {
				return ErrCommentNotFound
			}
			if parent.ThreadDepth >= domain.MaxThreadDepth {
				return ErrMaxDepthExceeded
			}
			depth = parent.ThreadDepth + 1
		}

		c := &domain.Comment{
			TenantID:        tenantID,
			ArticleID:       articleID,
			UserID:          userID,
			ParentCommentID: parentCommentID,
			ThreadDepth:     depth,
			Content:         content,
			CreatedAt:       time.Now().UTC(),
		}
		if err := repo.CreateComment(ctx, tx, c); err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// React records userID's reaction on a comment, replacing any prior reaction
// by the same user (at-most-one-per-user invariant).
func (s *CommentService) React(ctx context.Context, tenantID, commentID, userID, reactionType string) (*domain.Comment, error) {
	if _, ok := reactionTypes[reactionType]; !ok {
		return nil, ErrInvalidReaction
	}
	if _, err := repo.GetComment(ctx, s.DB, tenantID, commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if err := repo.ReplaceReaction(ctx, s.DB, commentID, userID, reactionType, time.Now().UTC()); err != nil {
		return nil, err
	}
	return repo.GetComment(ctx, s.DB, tenantID, commentID)
}

// Moderate applies one moderation action (highlight, resolve, hide) to a
// comment and logs it for audit. Moderation has no further business rule.
func (s *CommentService) Moderate(ctx context.Context, tenantID, commentID, moderatorID, action string) (*domain.Comment, error) {
	var fields map[string]any
	switch action {
	case ModerateHighlight:
		fields = map[string]any{"is_highlighted": true}
	case ModerateResolve:
		fields = map[string]any{"is_resolved": true}
	case ModerateHide:
		fields = map[string]any{"is_hidden": true}
	default:
		return nil, ErrInvalidModeration
	}

	if err := repo.UpdateCommentFlags(ctx, s.DB, tenantID, commentID, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	log.Info().
		Str("tenant_id", tenantID).
		Str("comment_id", commentID).
		Str("moderator_id", moderatorID).
		Str("action", action).
		Msg("comment moderated")

	return repo.GetComment(ctx, s.DB, tenantID, commentID)
}

// ListThread returns an article's comments oldest-first with reactions
// attached, after verifying the article exists within the tenant.
func (s *CommentService) ListThread(ctx context.Context, tenantID, articleID string) ([]domain.Comment, error) {
	if _, err := repo.GetArticle(ctx, s.DB, tenantID, articleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return repo.ListComments(ctx, s.DB, tenantID, articleID)
}

// clipRunes truncates s to at most n runes.
func clipRunes(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}
