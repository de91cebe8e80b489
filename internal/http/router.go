// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, identity resolution, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/alexsolver/go-kb-backend/internal/config"
	"github.com/alexsolver/go-kb-backend/internal/domain"
	"github.com/alexsolver/go-kb-backend/internal/http/handlers"
	"github.com/alexsolver/go-kb-backend/internal/http/middleware"
	"github.com/alexsolver/go-kb-backend/internal/repo"
	"github.com/alexsolver/go-kb-backend/internal/services"
)

// articleRepoShim adapts the repository free functions to the
// services.ArticleRepo interface expected by the ArticleService. This keeps
// services decoupled from the concrete repo package while reusing existing
// functions.
type articleRepoShim struct{}

// CreateArticle proxies repo.CreateArticle.
func (articleRepoShim) CreateArticle(ctx context.Context, db *gorm.DB, a *domain.Article) error {
	return repo.CreateArticle(ctx, db, a)
}

// GetArticle proxies repo.GetArticle.
func (articleRepoShim) GetArticle(ctx context.Context, db *gorm.DB, tenantID, id string) (*domain.Article, error) {
	return repo.GetArticle(ctx, db, tenantID, id)
}

// TouchArticleView proxies repo.TouchArticleView.
func (articleRepoShim) TouchArticleView(ctx context.Context, db *gorm.DB, tenantID, id string, now time.Time) error {
	return repo.TouchArticleView(ctx, db, tenantID, id, now)
}

// UpdateArticle proxies repo.UpdateArticle.
func (articleRepoShim) UpdateArticle(ctx context.Context, db *gorm.DB, tenantID, id string, fields map[string]any) error {
	return repo.UpdateArticle(ctx, db, tenantID, id, fields)
}

// TransitionApproval proxies repo.TransitionApproval.
func (articleRepoShim) TransitionApproval(ctx context.Context, db *gorm.DB, a *domain.Article, expected domain.ApprovalStatus, fields map[string]any) error {
	return repo.TransitionApproval(ctx, db, a, expected, fields)
}

// SoftDeleteArticle proxies repo.SoftDeleteArticle.
func (articleRepoShim) SoftDeleteArticle(ctx context.Context, db *gorm.DB, tenantID, id string) error {
	return repo.SoftDeleteArticle(ctx, db, tenantID, id)
}

// CountArticles proxies repo.CountArticles (pagination support).
func (articleRepoShim) CountArticles(ctx context.Context, db *gorm.DB, tenantID, category string) (int64, error) {
	return repo.CountArticles(ctx, db, tenantID, category)
}

// ListArticlesPage proxies repo.ListArticlesPage (pagination support).
func (articleRepoShim) ListArticlesPage(ctx context.Context, db *gorm.DB, tenantID, category string, offset, limit int) ([]domain.Article, error) {
	return repo.ListArticlesPage(ctx, db, tenantID, category, offset, limit)
}

// ListArticles proxies repo.ListArticles (search re-ranking).
func (articleRepoShim) ListArticles(ctx context.Context, db *gorm.DB, tenantID string) ([]domain.Article, error) {
	return repo.ListArticles(ctx, db, tenantID)
}

// AppendApprovalEntry proxies repo.AppendApprovalEntry.
func (articleRepoShim) AppendApprovalEntry(ctx context.Context, db *gorm.DB, e *domain.ApprovalEntry) error {
	return repo.AppendApprovalEntry(ctx, db, e)
}

// ListApprovalEntries proxies repo.ListApprovalEntries.
func (articleRepoShim) ListApprovalEntries(ctx context.Context, db *gorm.DB, tenantID, articleID string) ([]domain.ApprovalEntry, error) {
	return repo.ListApprovalEntries(ctx, db, tenantID, articleID)
}

// CountApprovalsByAction proxies repo.CountApprovalsByAction.
func (articleRepoShim) CountApprovalsByAction(ctx context.Context, db *gorm.DB, tenantID, articleID string, action domain.ApprovalAction) (int64, error) {
	return repo.CountApprovalsByAction(ctx, db, tenantID, articleID, action)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), identity and rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Identity: resolve tenant/user before logging so logs carry them
//  4. Logger (or RedactingLogger when LOG_REDACT is set)
//  5. Recovery: capture panics after logger
//  6. Body size limiter, gzip
//  7. Metrics
//  8. Rate limiter (per user/IP)
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Resolve tenant and user before anything logs or rate-limits
	r.Use(middleware.Identity(cfg.JWTSecret))

	// 4) Structured logging, with PII scrubbing when configured
	if cfg.LogRedact {
		r.Use(middleware.RedactingLogger(middleware.RedactOptions{
			MaskHeaders: []string{"X-Api-Key"},
		}))
	} else {
		r.Use(middleware.Logger())
	}

	// 5) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 6) Global body size limit (1 MiB) and response compression
	r.Use(limitBody(1 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Tenant-ID", "X-User-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Tenant-ID", "X-User-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (off by default)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db
	articleSvc := services.NewArticleService(db, articleRepoShim{})
	articleSvc.Policy = domain.ApprovalPolicy{RequiredApprovers: cfg.RequiredApprovers}
	commentSvc := &services.CommentService{DB: db}
	ratingSvc := &services.RatingService{DB: db}
	classSvc := services.NewClassificationService(db)

	h := handlers.New(articleSvc, commentSvc, ratingSvc, classSvc)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Articles
		api.POST("/articles", h.CreateArticle)
		api.GET("/articles", h.ListArticles)
		api.GET("/articles/search", h.SearchArticles)
		api.GET("/articles/:id", h.GetArticle)
		api.PUT("/articles/:id", h.UpdateArticle)
		api.DELETE("/articles/:id", h.DeleteArticle)

		// Approval workflow
		api.POST("/articles/:id/submit", h.SubmitArticle)
		api.POST("/articles/:id/approve", h.ApproveArticle)
		api.POST("/articles/:id/reject", h.RejectArticle)
		api.POST("/articles/:id/request-changes", h.RequestChanges)
		api.POST("/articles/:id/withdraw", h.WithdrawArticle)
		api.GET("/articles/:id/history", h.ApprovalHistory)

		// Comments
		api.POST("/articles/:id/comments", h.AddComment)
		api.GET("/articles/:id/comments", h.ListComments)
		api.POST("/comments/:id/react", h.ReactToComment)
		api.POST("/comments/:id/moderate", h.ModerateComment)

		// Ratings and engagement
		api.POST("/articles/:id/ratings", h.AddRating)
		api.GET("/articles/:id/ratings", h.ListRatings)
		api.GET("/articles/:id/engagement", h.GetEngagement)

		// Inventory classification
		api.POST("/inventory/movements", h.RecordMovement)
		api.POST("/inventory/abc/generate", h.GenerateClassification)
		api.GET("/inventory/abc", h.ListClassification)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
