// Comment HTTP handlers.
//
// This file exposes REST endpoints for article comment threads:
//   - POST /articles/{id}/comments        (add comment or reply)
//   - GET  /articles/{id}/comments        (list thread)
//   - POST /comments/{id}/react           (set the user's reaction)
//   - POST /comments/{id}/moderate        (highlight / resolve / hide)
//
// Nesting is capped; replies below the maximum depth are rejected with 422.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alexsolver/go-kb-backend/internal/domain"
	"github.com/alexsolver/go-kb-backend/internal/services"
)

// AddCommentRequest is the JSON payload for creating a comment.
type AddCommentRequest struct {
	// Content is the comment text; overly long text is clipped.
	Content string `json:"content" binding:"required" example:"Is step 3 still accurate?"`
	// ParentCommentID nests the comment under an existing one on the same article.
	ParentCommentID *string `json:"parent_comment_id,omitempty" format:"uuid"`
}

// ReactRequest is the JSON payload for reacting to a comment.
type ReactRequest struct {
	// Type is one of: like, dislike, heart, helpful, insightful.
	Type string `json:"type" binding:"required" example:"helpful"`
}

// ModerateRequest is the JSON payload for moderating a comment.
type ModerateRequest struct {
	// Action is one of: highlight, resolve, hide.
	Action string `json:"action" binding:"required" example:"highlight"`
}

// CommentThreadResponse wraps an article's comment thread.
type CommentThreadResponse struct {
	ArticleID string           `json:"article_id"`
	Comments  []domain.Comment `json:"comments"`
}

// AddComment godoc
// @ID          addComment
// @Summary     Add a comment
// @Description Creates a comment on an article, optionally as a reply to an existing comment.
// @Tags        Comments
// @Accept      json
// @Produce     json
//
// @Param       X-Tenant-ID  header  string  false "Tenant ID (demo header)"  example(acme)
// @Param       X-User-ID    header  string  false "User ID (demo header)"    example(user123)
// @Param       id           path    string  true  "Article ID (UUID)"        format(uuid)
// @Param       body         body    handlers.AddCommentRequest  true  "Comment payload"
//
// @Success     201  {object} domain.Comment
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Article or parent comment not found"
// @Failure     422  {object} handlers.ErrorResponse "Thread too deep"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /articles/{id}/comments [post]
func (h *Handlers) AddComment(c *gin.Context) {
	articleID := c.Param("id")
	if _, err := uuid.Parse(articleID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "article id must be a UUID")
		return
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}

	cm, err := h.commentSvc.Add(c.Request.Context(), tenantID(c), articleID, userID(c), req.Content, req.ParentCommentID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrArticleNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "article not found")
		case errors.Is(err, services.ErrCommentNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "parent comment not found on this article")
		case errors.Is(err, services.ErrEmptyComment):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content must not be empty")
		case errors.Is(err, services.ErrMaxDepthExceeded):
			fail(c, http.StatusUnprocessableEntity, ErrCodeBadRequest, "comment thread is too deep")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, cm)
}

// ListComments godoc
// @ID          listComments
// @Summary     List an article's comments
// @Description Returns the article's full comment thread oldest-first, with reactions.
// @Tags        Comments
// @Produce     json
//
// @Param       X-Tenant-ID  header  string  false "Tenant ID (demo header)"  example(acme)
// @Param       id           path    string  true  "Article ID (UUID)"        format(uuid)
//
// @Success     200  {object} handlers.CommentThreadResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Article not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /articles/{id}/comments [get]
func (h *Handlers) ListComments(c *gin.Context) {
	articleID := c.Param("id")
	if _, err := uuid.Parse(articleID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "article id must be a UUID")
		return
	}

	list, err := h.commentSvc.ListThread(c.Request.Context(), tenantID(c), articleID)
	if err != nil {
		if errors.Is(err, services.ErrArticleNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "article not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, CommentThreadResponse{ArticleID: articleID, Comments: list})
}

// ReactToComment godoc
// @ID          reactToComment
// @Summary     React to a comment
// @Description Sets the user's reaction on a comment; a previous reaction by the same user is replaced.
// @Tags        Comments
// @Accept      json
// @Produce     json
//
// @Param       X-Tenant-ID  header  string  false "Tenant ID (demo header)"  example(acme)
// @Param       X-User-ID    header  string  false "User ID (demo header)"    example(user123)
// @Param       id           path    string  true  "Comment ID (UUID)"        format(uuid)
// @Param       body         body    handlers.ReactRequest  true  "Reaction payload"
//
// @Success     200  {object} domain.Comment
// @Failure     400  {object} handlers.ErrorResponse "Unknown reaction type"
// @Failure     404  {object} handlers.ErrorResponse "Comment not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /comments/{id}/react [post]
func (h *Handlers) ReactToComment(c *gin.Context) {
	commentID := c.Param("id")
	if _, err := uuid.Parse(commentID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "comment id must be a UUID")
		return
	}

	var req ReactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "reaction type required")
		return
	}

	cm, err := h.commentSvc.React(c.Request.Context(), tenantID(c), commentID, userID(c), req.Type)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidReaction):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown reaction type")
		case errors.Is(err, services.ErrCommentNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "comment not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, cm)
}

// ModerateComment godoc
// @ID          moderateComment
// @Summary     Moderate a comment
// @Description Applies a moderation action: highlight, resolve, or hide.
// @Tags        Comments
// @Accept      json
// @Produce     json
//
// @Param       X-Tenant-ID  header  string  false "Tenant ID (demo header)"  example(acme)
// @Param       X-User-ID    header  string  false "Moderator ID (demo header)" example(mod1)
// @Param       id           path    string  true  "Comment ID (UUID)"        format(uuid)
// @Param       body         body    handlers.ModerateRequest  true  "Moderation payload"
//
// @Success     200  {object} domain.Comment
// @Failure     400  {object} handlers.ErrorResponse "Unknown action"
// @Failure     404  {object} handlers.ErrorResponse "Comment not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /comments/{id}/moderate [post]
func (h *Handlers) ModerateComment(c *gin.Context) {
	commentID := c.Param("id")
	if _, err := uuid.Parse(commentID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "comment id must be a UUID")
		return
	}

	var req ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "moderation action required")
		return
	}

	cm, err := h.commentSvc.Moderate(c.Request.Context(), tenantID(c), commentID, userID(c), req.Action)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidModeration):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown moderation action")
		case errors.Is(err, services.ErrCommentNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "comment not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, cm)
}
