// Package services – ArticleService
//
// This file implements the ArticleService, which manages the article
// aggregate: creation and updates with derived fields (slug, summary,
// version), tenant-scoped reads with atomic view counting, relevance-ranked
// search, soft deletion, and the five approval workflow actions. The approval
// state machine itself is pure (domain.ExecuteApproval); this service loads
// the aggregate, runs the machine, and persists the outcome atomically under
// an optimistic compare-and-swap so concurrent decisions cannot both win.
//
// Service-level errors (e.g. ErrArticleNotFound, ErrInvalidTitle) and the
// domain approval sentinels are returned for predictable cases so handlers
// can map them to HTTP results consistently.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alexsolver/go-kb-backend/internal/domain"
	"github.com/alexsolver/go-kb-backend/internal/repo"
	"github.com/alexsolver/go-kb-backend/internal/search"
)

// ArticleRepo defines the persistence port required by ArticleService.
// Implementations are responsible for tenant-scoped storage of the article
// aggregate and its approval history.
type ArticleRepo interface {
	// CreateArticle inserts a fully derived article row.
	CreateArticle(ctx context.Context, db *gorm.DB, a *domain.Article) error

	// GetArticle fetches an article by ID within a tenant.
	GetArticle(ctx context.Context, db *gorm.DB, tenantID, id string) (*domain.Article, error)

	// TouchArticleView atomically bumps view_count and stamps last_viewed_at.
	TouchArticleView(ctx context.Context, db *gorm.DB, tenantID, id string, now time.Time) error

	// UpdateArticle persists column updates for an article.
	UpdateArticle(ctx context.Context, db *gorm.DB, tenantID, id string, fields map[string]any) error

	// TransitionApproval applies an approval transition guarded by CAS.
	TransitionApproval(ctx context.Context, db *gorm.DB, a *domain.Article, expected domain.ApprovalStatus, fields map[string]any) error

	// SoftDeleteArticle marks an article deleted, retaining the row.
	SoftDeleteArticle(ctx context.Context, db *gorm.DB, tenantID, id string) error

	// CountArticles / ListArticlesPage support pagination.
	CountArticles(ctx context.Context, db *gorm.DB, tenantID, category string) (int64, error)
	ListArticlesPage(ctx context.Context, db *gorm.DB, tenantID, category string, offset, limit int) ([]domain.Article, error)

	// ListArticles returns all of a tenant's articles for re-ranking.
	ListArticles(ctx context.Context, db *gorm.DB, tenantID string) ([]domain.Article, error)

	// AppendApprovalEntry / ListApprovalEntries / CountApprovalsByAction
	// manage the append-only approval history.
	AppendApprovalEntry(ctx context.Context, db *gorm.DB, e *domain.ApprovalEntry) error
	ListApprovalEntries(ctx context.Context, db *gorm.DB, tenantID, articleID string) ([]domain.ApprovalEntry, error)
	CountApprovalsByAction(ctx context.Context, db *gorm.DB, tenantID, articleID string, action domain.ApprovalAction) (int64, error)
}

// ArticleService provides article-level operations. It enforces content
// validation and ownership rules and coordinates repository operations.
type ArticleService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the article repository used by this service.
	Repo ArticleRepo
	// Scorer ranks articles against search queries. Defaults to the
	// Jaccard scorer when nil.
	Scorer search.Scorer
	// Policy tunes the approval workflow (single approver by default).
	Policy domain.ApprovalPolicy
}

// NewArticleService constructs an ArticleService with the default scorer.
func NewArticleService(db *gorm.DB, r ArticleRepo) *ArticleService {
	return &ArticleService{
		DB:     db,
		Repo:   r,
		Scorer: search.NewJaccardScorer(),
	}
}

// CreateArticleInput carries the authored fields of a new article.
type CreateArticleInput struct {
	Title     string
	Content   string
	Category  string
	Tags      []string
	ExpiresAt *time.Time
}

// Create validates the input, derives slug/summary, and inserts the article
// in draft / not_submitted state at version 1.
func (s *ArticleService) Create(ctx context.Context, tenantID, authorID string, in CreateArticleInput) (*domain.Article, error) {
	if !domain.ValidTitle(in.Title) {
		return nil, ErrInvalidTitle
	}
	if !domain.ValidContent(in.Content) {
		return nil, ErrInvalidContent
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return nil, ErrInvalidCategory
	}

	now := time.Now().UTC()
	a := &domain.Article{
		ID:             uuid.NewString(),
		TenantID:       tenantID,
		Title:          strings.TrimSpace(in.Title),
		Slug:           domain.GenerateSlug(in.Title),
		Content:        in.Content,
		Summary:        domain.Summarize(in.Content),
		Category:       category,
		Tags:           domain.SanitizeTags(in.Tags),
		Status:         domain.StatusDraft,
		ApprovalStatus: domain.ApprovalNotSubmitted,
		Version:        1,
		AuthorID:       authorID,
		ExpiresAt:      in.ExpiresAt,
		CreatedAt:      now,
	}
	if err := s.Repo.CreateArticle(ctx, s.DB, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Get returns the article after registering the read: the view counter is
// bumped with an atomic UPDATE first, then the row is fetched, so the caller
// sees its own view reflected and concurrent reads never lose increments.
func (s *ArticleService) Get(ctx context.Context, tenantID, id string) (*domain.Article, error) {
	if err := s.Repo.TouchArticleView(ctx, s.DB, tenantID, id, time.Now().UTC()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	a, err := s.Repo.GetArticle(ctx, s.DB, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return a, nil
}

// Update applies an edit to the article. The caller must hold edit rights.
// Title, content, and category changes bump the version and re-derive the
// slug and summary; tag and expiry changes do not.
func (s *ArticleService) Update(ctx context.Context, tenantID, userID, id string, upd domain.ArticleUpdate) (*domain.Article, error) {
	a, err := s.Repo.GetArticle(ctx, s.DB, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	if !a.CanEdit(userID) {
		return nil, domain.ErrPermissionDenied
	}

	fields := map[string]any{}
	if upd.Title != nil {
		if !domain.ValidTitle(*upd.Title) {
			return nil, ErrInvalidTitle
		}
		fields["title"] = strings.TrimSpace(*upd.Title)
		fields["slug"] = domain.GenerateSlug(*upd.Title)
	}
	if upd.Content != nil {
		if !domain.ValidContent(*upd.Content) {
			return nil, ErrInvalidContent
		}
		fields["content"] = *upd.Content
		fields["summary"] = domain.Summarize(*upd.Content)
	}
	if upd.Category != nil {
		category := strings.TrimSpace(*upd.Category)
		if category == "" {
			return nil, ErrInvalidCategory
		}
		fields["category"] = category
	}
	if upd.TagsSet {
		// Column-map updates skip the model serializer; store the JSON form.
		tags, err := json.Marshal(domain.SanitizeTags(upd.Tags))
		if err != nil {
			return nil, err
		}
		fields["tags"] = string(tags)
	}
	if len(fields) == 0 {
		return a, nil
	}
	if a.ShouldIncrementVersion(upd) {
		fields["version"] = a.Version + 1
	}

	if err := s.Repo.UpdateArticle(ctx, s.DB, tenantID, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return s.Repo.GetArticle(ctx, s.DB, tenantID, id)
}

// Delete soft-deletes the article; rows are retained for tenant audit. Only
// users with edit rights may delete.
func (s *ArticleService) Delete(ctx context.Context, tenantID, userID, id string) error {
	a, err := s.Repo.GetArticle(ctx, s.DB, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrArticleNotFound
		}
		return err
	}
	if !a.CanEdit(userID) {
		return domain.ErrPermissionDenied
	}
	return s.Repo.SoftDeleteArticle(ctx, s.DB, tenantID, id)
}

// ListPage returns a page of the tenant's articles, optionally filtered by
// category, with the total count for pagination metadata.
func (s *ArticleService) ListPage(ctx context.Context, tenantID, category string, page, pageSize int) ([]domain.Article, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.CountArticles(ctx, s.DB, tenantID, category)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Article{}, 0, nil
	}

	items, err := s.Repo.ListArticlesPage(ctx, s.DB, tenantID, category, offset, pageSize)
	return items, total, err
}

// ScoredArticle pairs a search hit with its relevance score in [0,1].
type ScoredArticle struct {
	Article domain.Article `json:"article"`
	Score   float64        `json:"score"`
}

// Search ranks the tenant's articles against the query using the injected
// Scorer and returns up to limit hits with non-zero relevance, best first.
// Ordering is deterministic: score descending, then article ID.
func (s *ArticleService) Search(ctx context.Context, tenantID, query string, limit int) ([]ScoredArticle, error) {
	if strings.TrimSpace(query) == "" {
		return []ScoredArticle{}, nil
	}
	if limit <= 0 {
		limit = 10
	}
	scorer := s.Scorer
	if scorer == nil {
		scorer = search.NewJaccardScorer()
	}

	articles, err := s.Repo.ListArticles(ctx, s.DB, tenantID)
	if err != nil {
		return nil, err
	}

	hits := make([]ScoredArticle, 0, len(articles))
	for _, a := range articles {
		doc := a.Title + " " + strings.Join(a.Tags, " ") + " " + a.Content
		if score := scorer.Score(doc, query); score > 0 {
			hits = append(hits, ScoredArticle{Article: a, Score: score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Article.ID < hits[j].Article.ID
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// History returns the article's approval history oldest-first, verifying the
// article exists within the tenant.
func (s *ArticleService) History(ctx context.Context, tenantID, articleID string) ([]domain.ApprovalEntry, error) {
	if _, err := s.Repo.GetArticle(ctx, s.DB, tenantID, articleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return s.Repo.ListApprovalEntries(ctx, s.DB, tenantID, articleID)
}

// Approve, Reject, RequestChanges, Submit, and Withdraw run one approval
// action each. See ExecuteAction for semantics.

// Submit moves a draft into review on behalf of actorID.
func (s *ArticleService) Submit(ctx context.Context, tenantID, articleID, actorID, comment string) (*domain.Article, error) {
	return s.ExecuteAction(ctx, tenantID, articleID, domain.ActionSubmit, actorID, comment)
}

// Approve records an approve decision; the article publishes once the
// required number of approvals is reached (one by default).
func (s *ArticleService) Approve(ctx context.Context, tenantID, articleID, actorID, comment string) (*domain.Article, error) {
	return s.ExecuteAction(ctx, tenantID, articleID, domain.ActionApprove, actorID, comment)
}

// Reject declines a pending article.
func (s *ArticleService) Reject(ctx context.Context, tenantID, articleID, actorID, comment string) (*domain.Article, error) {
	return s.ExecuteAction(ctx, tenantID, articleID, domain.ActionReject, actorID, comment)
}

// RequestChanges sends a pending article back to its author as a draft.
func (s *ArticleService) RequestChanges(ctx context.Context, tenantID, articleID, actorID, comment string) (*domain.Article, error) {
	return s.ExecuteAction(ctx, tenantID, articleID, domain.ActionRequestChanges, actorID, comment)
}

// Withdraw pulls the author's own submission out of review.
func (s *ArticleService) Withdraw(ctx context.Context, tenantID, articleID, actorID, comment string) (*domain.Article, error) {
	return s.ExecuteAction(ctx, tenantID, articleID, domain.ActionWithdraw, actorID, comment)
}

// ExecuteAction loads the article, runs the pure approval state machine, and
// persists the outcome: the article's new states via a compare-and-swap on
// (approval_status, version) plus exactly one appended history entry, all in
// a single transaction. When the CAS loses a race the action reports
// ErrIllegalTransition, matching a retry against the already-moved state.
func (s *ArticleService) ExecuteAction(ctx context.Context, tenantID, articleID string, action domain.ApprovalAction, actorID, comment string) (*domain.Article, error) {
	var updated *domain.Article

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := s.Repo.GetArticle(ctx, tx, tenantID, articleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrArticleNotFound
			}
			return err
		}

		priorApprovals := 0
		if action == domain.ActionApprove && s.Policy.RequiredApprovers > 1 {
			n, err := s.Repo.CountApprovalsByAction(ctx, tx, tenantID, articleID, domain.ActionApprove)
			if err != nil {
				return err
			}
			priorApprovals = int(n)
		}

		now := time.Now().UTC()
		tr, err := domain.ExecuteApproval(a, action, actorID, comment, priorApprovals, s.Policy, now)
		if err != nil {
			return err
		}

		fields := map[string]any{
			"approval_status": tr.ApprovalStatus,
			"status":          tr.ArticleStatus,
		}
		if actorID != a.AuthorID {
			fields["reviewer_id"] = actorID
		}
		if tr.Published {
			fields["published_at"] = now
		}

		if err := s.Repo.TransitionApproval(ctx, tx, a, a.ApprovalStatus, fields); err != nil {
			// A lost CAS means a concurrent decision already moved the
			// article; report it as a transition from the wrong state.
			if errors.Is(err, repo.ErrStaleArticle) {
				return domain.ErrIllegalTransition
			}
			return err
		}

		entry := tr.Entry
		entry.ID = uuid.NewString()
		if err := s.Repo.AppendApprovalEntry(ctx, tx, &entry); err != nil {
			return err
		}

		updated, err = s.Repo.GetArticle(ctx, tx, tenantID, articleID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
