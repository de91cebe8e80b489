// Article HTTP handlers.
//
// This file exposes REST endpoints for knowledge base articles:
//   - POST   /articles            (create draft)
//   - GET    /articles            (list, paginated)
//   - GET    /articles/search     (relevance-ranked search)
//   - GET    /articles/{id}       (fetch, counts the view)
//   - PUT    /articles/{id}       (edit)
//   - DELETE /articles/{id}       (soft delete)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alexsolver/go-kb-backend/internal/domain"
	"github.com/alexsolver/go-kb-backend/internal/services"
	"github.com/alexsolver/go-kb-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// ArticleService defines the article lifecycle operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ArticleService interface {
	// Create inserts a new draft article for the author.
	Create(ctx context.Context, tenantID, authorID string, in services.CreateArticleInput) (*domain.Article, error)
	// Get fetches an article and registers the view.
	Get(ctx context.Context, tenantID, id string) (*domain.Article, error)
	// Update edits authored fields; title/content/category changes bump the version.
	Update(ctx context.Context, tenantID, userID, id string, upd domain.ArticleUpdate) (*domain.Article, error)
	// Delete soft-deletes the article.
	Delete(ctx context.Context, tenantID, userID, id string) error
	// ListPage returns a page of articles and the total count.
	ListPage(ctx context.Context, tenantID, category string, page, pageSize int) ([]domain.Article, int64, error)
	// Search returns relevance-ranked hits for a free-text query.
	Search(ctx context.Context, tenantID, query string, limit int) ([]services.ScoredArticle, error)
	// History returns the approval history oldest-first.
	History(ctx context.Context, tenantID, articleID string) ([]domain.ApprovalEntry, error)
	// Approval workflow actions.
	Submit(ctx context.Context, tenantID, articleID, actorID, comment string) (*domain.Article, error)
	Approve(ctx context.Context, tenantID, articleID, actorID, comment string) (*domain.Article, error)
	Reject(ctx context.Context, tenantID, articleID, actorID, comment string) (*domain.Article, error)
	RequestChanges(ctx context.Context, tenantID, articleID, actorID, comment string) (*domain.Article, error)
	Withdraw(ctx context.Context, tenantID, articleID, actorID, comment string) (*domain.Article, error)
}

// CommentService defines the comment operations consumed by HTTP handlers.
type CommentService interface {
	// Add creates a comment, optionally nested under a parent.
	Add(ctx context.Context, tenantID, articleID, userID, content string, parentCommentID *string) (*domain.Comment, error)
	// ListThread returns an article's comments oldest-first.
	ListThread(ctx context.Context, tenantID, articleID string) ([]domain.Comment, error)
	// React records the user's single reaction on a comment.
	React(ctx context.Context, tenantID, commentID, userID, reactionType string) (*domain.Comment, error)
	// Moderate applies a moderation action to a comment.
	Moderate(ctx context.Context, tenantID, commentID, moderatorID, action string) (*domain.Comment, error)
}

// RatingService defines the rating and engagement operations consumed by
// HTTP handlers.
type RatingService interface {
	// Add records a 1-5 rating; one per (article, user).
	Add(ctx context.Context, tenantID, articleID, userID string, score int, categories *domain.RatingCategories, review string) (*domain.Rating, error)
	// List returns an article's ratings newest-first.
	List(ctx context.Context, tenantID, articleID string) ([]domain.Rating, error)
	// EngagementFor assembles the per-article analytics rollup.
	EngagementFor(ctx context.Context, tenantID, articleID string) (*services.Engagement, error)
}

// ClassificationService defines the inventory classification operations
// consumed by HTTP handlers.
type ClassificationService interface {
	// Generate runs the ABC batch for a "YYYY-MM" period.
	Generate(ctx context.Context, tenantID, period string) ([]domain.AbcClassification, error)
	// List returns stored classification rows for a period.
	List(ctx context.Context, tenantID, period string) ([]domain.AbcClassification, error)
	// RecordMovement stores one consumption event.
	RecordMovement(ctx context.Context, tenantID, partID, locationID string, quantity, unitCost float64, occurredAt time.Time) (*domain.StockMovement, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for articles, comments, ratings, and the
// inventory classifier. It depends on abstract service interfaces to keep
// transport concerns separate from business logic.
type Handlers struct {
	articleSvc ArticleService
	commentSvc CommentService
	ratingSvc  RatingService
	classSvc   ClassificationService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(articleSvc ArticleService, commentSvc CommentService, ratingSvc RatingService, classSvc ClassificationService) *Handlers {
	return &Handlers{articleSvc: articleSvc, commentSvc: commentSvc, ratingSvc: ratingSvc, classSvc: classSvc}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

// tenantID extracts the tenant partition key from Gin context (set by the
// auth middleware), falling back to the "X-Tenant-ID" header and finally to
// "default".
func tenantID(c *gin.Context) string {
	if v, ok := c.Get("tenantID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-Tenant-ID")); h != "" {
			return h
		}
	}
	return "default"
}

//
// DTOs
//

// CreateArticleRequest is the JSON payload for creating an article.
type CreateArticleRequest struct {
	// Title is the article headline (3-200 chars after trimming).
	Title string `json:"title" binding:"required" example:"How to reset the VPN client"`
	// Content is the article body (at least 10 chars).
	Content string `json:"content" binding:"required" example:"Open the client, sign out, then..."`
	// Category buckets the article for browsing.
	Category string `json:"category" binding:"required" example:"networking"`
	// Tags are free-form labels; normalized to lowercase and deduplicated.
	Tags []string `json:"tags,omitempty" example:"vpn,howto"`
	// ExpiresAt optionally marks when the content goes stale.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// UpdateArticleRequest is the JSON payload for editing an article. All fields
// are optional; absent fields are left unchanged.
type UpdateArticleRequest struct {
	Title    *string  `json:"title,omitempty" example:"Renewing VPN certificates"`
	Content  *string  `json:"content,omitempty"`
	Category *string  `json:"category,omitempty" example:"networking"`
	Tags     []string `json:"tags,omitempty"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListArticlesResponse wraps a page of articles and pagination information.
type ListArticlesResponse struct {
	Articles   []domain.Article `json:"articles"`
	Pagination Pagination       `json:"pagination"`
}

// SearchResponse wraps relevance-ranked search hits.
type SearchResponse struct {
	Query   string                   `json:"query"`
	Results []services.ScoredArticle `json:"results"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// failArticleErr maps article service errors onto HTTP responses. Unknown
// errors become 500s.
func failArticleErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrArticleNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "article not found")
	case errors.Is(err, services.ErrInvalidTitle):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "title must be 3-200 characters")
	case errors.Is(err, services.ErrInvalidContent):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content must be at least 10 characters")
	case errors.Is(err, services.ErrInvalidCategory):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "category is required")
	case errors.Is(err, domain.ErrPermissionDenied):
		fail(c, http.StatusForbidden, ErrCodeForbidden, "not allowed to modify this article")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

//
// Handlers
//

// CreateArticle godoc
// @ID          createArticle
// @Summary     Create a new article
// @Description Creates a draft article for the current user and returns the article resource.
// @Tags        Articles
// @Accept      json
// @Produce     json
//
// @Param       X-Tenant-ID  header  string  false "Tenant ID (demo header)"  example(acme)
// @Param       X-User-ID    header  string  false "User ID (demo header)"    example(user123)
// @Param       body         body    handlers.CreateArticleRequest  true  "Create article payload"
//
// @Success     201  {object}  domain.Article
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /articles [post]
func (h *Handlers) CreateArticle(c *gin.Context) {
	var req CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	a, err := h.articleSvc.Create(c.Request.Context(), tenantID(c), userID(c), services.CreateArticleInput{
		Title:     req.Title,
		Content:   req.Content,
		Category:  req.Category,
		Tags:      req.Tags,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		failArticleErr(c, err)
		return
	}
	ok(c, http.StatusCreated, a)
}

// GetArticle godoc
// @ID          getArticle
// @Summary     Fetch an article
// @Description Returns the article and registers the read (view counter).
// @Tags        Articles
// @Produce     json
//
// @Param       X-Tenant-ID  header  string  false "Tenant ID (demo header)"  example(acme)
// @Param       id           path    string  true  "Article ID (UUID)"        format(uuid)
//
// @Success     200  {object} domain.Article
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Article not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /articles/{id} [get]
func (h *Handlers) GetArticle(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "article id must be a UUID")
		return
	}

	a, err := h.articleSvc.Get(c.Request.Context(), tenantID(c), id)
	if err != nil {
		failArticleErr(c, err)
		return
	}
	ok(c, http.StatusOK, a)
}

// ListArticles godoc
// @ID          listArticles
// @Summary     List articles (paginated)
// @Description Returns a page of the tenant's articles, optionally filtered by category.
// @Tags        Articles
// @Produce     json
//
// @Param       X-Tenant-ID  header  string  false "Tenant ID (demo header)"  example(acme)
// @Param       category     query   string  false "Filter by category"       example(networking)
// @Param       page         query   int     false "Page number"              minimum(1) default(1)
// @Param       page_size    query   int     false "Items per page"           minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListArticlesResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /articles [get]
func (h *Handlers) ListArticles(c *gin.Context) {
	page, pageSize := clampPagination(c)
	category := strings.TrimSpace(c.Query("category"))

	items, total, err := h.articleSvc.ListPage(c.Request.Context(), tenantID(c), category, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListArticlesResponse{
		Articles: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// SearchArticles godoc
// @ID          searchArticles
// @Summary     Search articles
// @Description Ranks the tenant's articles against a free-text query and returns scored hits.
// @Tags        Articles
// @Produce     json
//
// @Param       X-Tenant-ID  header  string  false "Tenant ID (demo header)"  example(acme)
// @Param       q            query   string  true  "Free-text query"          example(vpn reset)
// @Param       limit        query   int     false "Maximum hits"             minimum(1) default(10)
//
// @Success     200  {object} handlers.SearchResponse
// @Failure     400  {object} handlers.ErrorResponse "Missing query"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /articles/search [get]
func (h *Handlers) SearchArticles(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "query parameter q is required")
		return
	}
	limit := utils.AtoiDefault(c.Query("limit"), 10)

	hits, err := h.articleSvc.Search(c.Request.Context(), tenantID(c), query, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeSearchFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, SearchResponse{Query: query, Results: hits})
}

// UpdateArticle godoc
// @ID          updateArticle
// @Summary     Edit an article
// @Description Updates authored fields. Title, content, and category changes bump the version.
// @Tags        Articles
// @Accept      json
// @Produce     json
//
// @Param       X-Tenant-ID  header  string  false "Tenant ID (demo header)"  example(acme)
// @Param       X-User-ID    header  string  false "User ID (demo header)"    example(user123)
// @Param       id           path    string  true  "Article ID (UUID)"        format(uuid)
// @Param       body         body    handlers.UpdateArticleRequest  true  "Fields to change"
//
// @Success     200  {object} domain.Article
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Not allowed"
// @Failure     404  {object} handlers.ErrorResponse "Article not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /articles/{id} [put]
func (h *Handlers) UpdateArticle(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "article id must be a UUID")
		return
	}

	var req UpdateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	a, err := h.articleSvc.Update(c.Request.Context(), tenantID(c), userID(c), id, domain.ArticleUpdate{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Tags:     req.Tags,
		TagsSet:  req.Tags != nil,
	})
	if err != nil {
		failArticleErr(c, err)
		return
	}
	ok(c, http.StatusOK, a)
}

// DeleteArticle godoc
// @ID          deleteArticle
// @Summary     Delete an article
// @Description Soft-deletes the article; the row is retained for audit.
// @Tags        Articles
// @Produce     json
//
// @Param       X-Tenant-ID  header  string  false "Tenant ID (demo header)"  example(acme)
// @Param       X-User-ID    header  string  false "User ID (demo header)"    example(user123)
// @Param       id           path    string  true  "Article ID (UUID)"        format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Not allowed"
// @Failure     404  {object} handlers.ErrorResponse "Article not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /articles/{id} [delete]
func (h *Handlers) DeleteArticle(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "article id must be a UUID")
		return
	}

	if err := h.articleSvc.Delete(c.Request.Context(), tenantID(c), userID(c), id); err != nil {
		failArticleErr(c, err)
		return
	}
	noContent(c)
}
