// Approval workflow HTTP handlers.
//
// This file exposes the REST endpoints driving the article approval state
// machine:
//   - POST /articles/{id}/submit           (draft -> pending review)
//   - POST /articles/{id}/approve          (pending -> published)
//   - POST /articles/{id}/reject           (pending -> rejected)
//   - POST /articles/{id}/request-changes  (pending -> draft, changes requested)
//   - POST /articles/{id}/withdraw         (pending -> draft)
//   - GET  /articles/{id}/history          (append-only decision log)
//
// Each action runs atomically in the service layer; a decision that loses a
// race against a concurrent decision surfaces here as a 409.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alexsolver/go-kb-backend/internal/domain"
	"github.com/alexsolver/go-kb-backend/internal/http/middleware"
	"github.com/alexsolver/go-kb-backend/internal/services"
)

// ApprovalRequest is the JSON payload for approval actions. The comment is
// optional and recorded in the approval history.
type ApprovalRequest struct {
	// Comment optionally explains the decision.
	Comment string `json:"comment,omitempty" example:"lgtm, publishing"`
}

// HistoryResponse wraps an article's approval history.
type HistoryResponse struct {
	ArticleID string                 `json:"article_id"`
	Entries   []domain.ApprovalEntry `json:"entries"`
}

// approvalFn is the shape shared by the five workflow actions on the
// article service.
type approvalFn func(ctx context.Context, tenantID, articleID, actorID, comment string) (*domain.Article, error)

// runApproval parses the shared request shape, invokes the action, and maps
// workflow errors onto HTTP results. The action name feeds the approval
// counter exposed on /metrics.
func (h *Handlers) runApproval(c *gin.Context, name string, action approvalFn) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "article id must be a UUID")
		return
	}

	var req ApprovalRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
			return
		}
	}

	a, err := action(c.Request.Context(), tenantID(c), id, userID(c), req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrArticleNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "article not found")
		case errors.Is(err, domain.ErrSelfApproval):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "authors cannot approve their own article")
		case errors.Is(err, domain.ErrPermissionDenied):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "not allowed to perform this action")
		case errors.Is(err, domain.ErrIllegalTransition):
			middleware.ObserveApprovalAction(name, "rejected")
			fail(c, http.StatusConflict, ErrCodeApprovalFailed, "action not valid from the article's current state")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	middleware.ObserveApprovalAction(name, "applied")
	ok(c, http.StatusOK, a)
}

// SubmitArticle godoc
// @ID          submitArticle
// @Summary     Submit an article for review
// @Description Moves a draft into the review queue.
// @Tags        Approval
// @Accept      json
// @Produce     json
//
// @Param       X-Tenant-ID  header  string  false "Tenant ID (demo header)"  example(acme)
// @Param       X-User-ID    header  string  false "User ID (demo header)"    example(user123)
// @Param       id           path    string  true  "Article ID (UUID)"        format(uuid)
// @Param       body         body    handlers.ApprovalRequest  false  "Optional comment"
//
// @Success     200  {object} domain.Article
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Not allowed"
// @Failure     404  {object} handlers.ErrorResponse "Article not found"
// @Failure     409  {object} handlers.ErrorResponse "Not submittable from current state"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /articles/{id}/submit [post]
func (h *Handlers) SubmitArticle(c *gin.Context) { h.runApproval(c, "submit", h.articleSvc.Submit) }

// ApproveArticle godoc
// @ID          approveArticle
// @Summary     Approve a pending article
// @Description Records an approve decision; the article publishes once enough approvals accrue.
// @Tags        Approval
// @Accept      json
// @Produce     json
//
// @Param       X-Tenant-ID  header  string  false "Tenant ID (demo header)"  example(acme)
// @Param       X-User-ID    header  string  false "User ID (demo header)"    example(reviewer1)
// @Param       id           path    string  true  "Article ID (UUID)"        format(uuid)
// @Param       body         body    handlers.ApprovalRequest  false  "Optional comment"
//
// @Success     200  {object} domain.Article
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Self-approval or missing permission"
// @Failure     404  {object} handlers.ErrorResponse "Article not found"
// @Failure     409  {object} handlers.ErrorResponse "Not approvable from current state"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /articles/{id}/approve [post]
func (h *Handlers) ApproveArticle(c *gin.Context) { h.runApproval(c, "approve", h.articleSvc.Approve) }

// RejectArticle godoc
// @ID          rejectArticle
// @Summary     Reject a pending article
// @Description Declines a pending article; the author must start over.
// @Tags        Approval
// @Accept      json
// @Produce     json
//
// @Param       X-Tenant-ID  header  string  false "Tenant ID (demo header)"  example(acme)
// @Param       X-User-ID    header  string  false "User ID (demo header)"    example(reviewer1)
// @Param       id           path    string  true  "Article ID (UUID)"        format(uuid)
// @Param       body         body    handlers.ApprovalRequest  false  "Optional comment"
//
// @Success     200  {object} domain.Article
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Self-review or missing permission"
// @Failure     404  {object} handlers.ErrorResponse "Article not found"
// @Failure     409  {object} handlers.ErrorResponse "Not rejectable from current state"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /articles/{id}/reject [post]
func (h *Handlers) RejectArticle(c *gin.Context) { h.runApproval(c, "reject", h.articleSvc.Reject) }

// RequestChanges godoc
// @ID          requestChanges
// @Summary     Request changes on a pending article
// @Description Sends the article back to its author as a draft for rework and resubmission.
// @Tags        Approval
// @Accept      json
// @Produce     json
//
// @Param       X-Tenant-ID  header  string  false "Tenant ID (demo header)"  example(acme)
// @Param       X-User-ID    header  string  false "User ID (demo header)"    example(reviewer1)
// @Param       id           path    string  true  "Article ID (UUID)"        format(uuid)
// @Param       body         body    handlers.ApprovalRequest  false  "What to change"
//
// @Success     200  {object} domain.Article
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Self-review or missing permission"
// @Failure     404  {object} handlers.ErrorResponse "Article not found"
// @Failure     409  {object} handlers.ErrorResponse "No pending review on the article"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /articles/{id}/request-changes [post]
func (h *Handlers) RequestChanges(c *gin.Context) { h.runApproval(c, "request_changes", h.articleSvc.RequestChanges) }

// WithdrawArticle godoc
// @ID          withdrawArticle
// @Summary     Withdraw a submission
// @Description Pulls the author's own article out of the review queue back to draft.
// @Tags        Approval
// @Accept      json
// @Produce     json
//
// @Param       X-Tenant-ID  header  string  false "Tenant ID (demo header)"  example(acme)
// @Param       X-User-ID    header  string  false "User ID (demo header)"    example(user123)
// @Param       id           path    string  true  "Article ID (UUID)"        format(uuid)
// @Param       body         body    handlers.ApprovalRequest  false  "Optional comment"
//
// @Success     200  {object} domain.Article
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Only the author may withdraw"
// @Failure     404  {object} handlers.ErrorResponse "Article not found"
// @Failure     409  {object} handlers.ErrorResponse "No pending review on the article"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /articles/{id}/withdraw [post]
func (h *Handlers) WithdrawArticle(c *gin.Context) { h.runApproval(c, "withdraw", h.articleSvc.Withdraw) }

// ApprovalHistory godoc
// @ID          approvalHistory
// @Summary     List the approval history
// @Description Returns the article's append-only approval decision log, oldest first.
// @Tags        Approval
// @Produce     json
//
// @Param       X-Tenant-ID  header  string  false "Tenant ID (demo header)"  example(acme)
// @Param       id           path    string  true  "Article ID (UUID)"        format(uuid)
//
// @Success     200  {object} handlers.HistoryResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Article not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /articles/{id}/history [get]
func (h *Handlers) ApprovalHistory(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "article id must be a UUID")
		return
	}

	entries, err := h.articleSvc.History(c.Request.Context(), tenantID(c), id)
	if err != nil {
		if errors.Is(err, services.ErrArticleNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "article not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, HistoryResponse{ArticleID: id, Entries: entries})
}
