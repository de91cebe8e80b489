// Rating and engagement HTTP handlers.
//
// This file exposes REST endpoints for article ratings and the per-article
// engagement rollup:
//   - POST /articles/{id}/ratings      (rate; one per user per article)
//   - GET  /articles/{id}/ratings      (list)
//   - GET  /articles/{id}/engagement   (views, ratings, comments, reading time)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alexsolver/go-kb-backend/internal/domain"
	"github.com/alexsolver/go-kb-backend/internal/services"
)

// AddRatingRequest is the JSON payload for rating an article.
type AddRatingRequest struct {
	// Score is the overall 1-5 rating.
	Score int `json:"score" binding:"required,min=1,max=5" example:"4"`
	// Categories optionally scores individual dimensions 1-5.
	Categories *domain.RatingCategories `json:"categories,omitempty"`
	// Review optionally adds free-text commentary.
	Review string `json:"review,omitempty" example:"Solved my problem in two minutes"`
}

// RatingsResponse wraps an article's ratings.
type RatingsResponse struct {
	ArticleID string          `json:"article_id"`
	Ratings   []domain.Rating `json:"ratings"`
}

// AddRating godoc
// @ID          addRating
// @Summary     Rate an article
// @Description Records a 1-5 rating with optional per-dimension sub-scores. One rating per user per article.
// @Tags        Ratings
// @Accept      json
// @Produce     json
//
// @Param       X-Tenant-ID  header  string  false "Tenant ID (demo header)"  example(acme)
// @Param       X-User-ID    header  string  false "User ID (demo header)"    example(user123)
// @Param       id           path    string  true  "Article ID (UUID)"        format(uuid)
// @Param       body         body    handlers.AddRatingRequest  true  "Rating payload"
//
// @Success     201  {object} domain.Rating
// @Failure     400  {object} handlers.ErrorResponse "Score out of range"
// @Failure     404  {object} handlers.ErrorResponse "Article not found"
// @Failure     409  {object} handlers.ErrorResponse "User already rated this article"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /articles/{id}/ratings [post]
func (h *Handlers) AddRating(c *gin.Context) {
	articleID := c.Param("id")
	if _, err := uuid.Parse(articleID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "article id must be a UUID")
		return
	}

	var req AddRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "score must be 1-5")
		return
	}

	r, err := h.ratingSvc.Add(c.Request.Context(), tenantID(c), articleID, userID(c), req.Score, req.Categories, req.Review)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidScore):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "scores must be 1-5")
		case errors.Is(err, services.ErrArticleNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "article not found")
		case errors.Is(err, services.ErrDuplicateRating):
			fail(c, http.StatusConflict, ErrCodeConflict, "user already rated this article")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, r)
}

// ListRatings godoc
// @ID          listRatings
// @Summary     List an article's ratings
// @Description Returns the article's ratings, newest first.
// @Tags        Ratings
// @Produce     json
//
// @Param       X-Tenant-ID  header  string  false "Tenant ID (demo header)"  example(acme)
// @Param       id           path    string  true  "Article ID (UUID)"        format(uuid)
//
// @Success     200  {object} handlers.RatingsResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Article not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /articles/{id}/ratings [get]
func (h *Handlers) ListRatings(c *gin.Context) {
	articleID := c.Param("id")
	if _, err := uuid.Parse(articleID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "article id must be a UUID")
		return
	}

	list, err := h.ratingSvc.List(c.Request.Context(), tenantID(c), articleID)
	if err != nil {
		if errors.Is(err, services.ErrArticleNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "article not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, RatingsResponse{ArticleID: articleID, Ratings: list})
}

// GetEngagement godoc
// @ID          getEngagement
// @Summary     Fetch an article's engagement rollup
// @Description Returns views, rating aggregate, comment count, and estimated reading time.
// @Tags        Ratings
// @Produce     json
//
// @Param       X-Tenant-ID  header  string  false "Tenant ID (demo header)"  example(acme)
// @Param       id           path    string  true  "Article ID (UUID)"        format(uuid)
//
// @Success     200  {object} services.Engagement
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Article not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /articles/{id}/engagement [get]
func (h *Handlers) GetEngagement(c *gin.Context) {
	articleID := c.Param("id")
	if _, err := uuid.Parse(articleID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "article id must be a UUID")
		return
	}

	e, err := h.ratingSvc.EngagementFor(c.Request.Context(), tenantID(c), articleID)
	if err != nil {
		if errors.Is(err, services.ErrArticleNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "article not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, e)
}
