// Inventory classification HTTP handlers.
//
// This file exposes the REST endpoints of the ABC classifier:
//   - POST /inventory/movements        (record a consumption event)
//   - POST /inventory/abc/generate     (run the batch for a period)
//   - GET  /inventory/abc              (list stored results for a period)
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alexsolver/go-kb-backend/internal/domain"
	"github.com/alexsolver/go-kb-backend/internal/http/middleware"
	"github.com/alexsolver/go-kb-backend/internal/services"
)

// RecordMovementRequest is the JSON payload for recording a stock movement.
type RecordMovementRequest struct {
	// PartID identifies the consumed part.
	PartID string `json:"part_id" binding:"required" example:"PUMP-113"`
	// LocationID identifies where the consumption happened.
	LocationID string `json:"location_id" binding:"required" example:"WH-EAST"`
	// Quantity consumed; must be positive.
	Quantity float64 `json:"quantity" binding:"required" example:"4"`
	// UnitCost at consumption time; must be non-negative.
	UnitCost float64 `json:"unit_cost" example:"129.90"`
	// OccurredAt defaults to now when omitted.
	OccurredAt *time.Time `json:"occurred_at,omitempty"`
}

// GenerateClassificationRequest is the JSON payload for running the ABC batch.
type GenerateClassificationRequest struct {
	// Period is the calendar month to classify, formatted YYYY-MM.
	Period string `json:"period" binding:"required" example:"2026-07"`
}

// ClassificationResponse wraps one period's classification rows.
type ClassificationResponse struct {
	Period  string                     `json:"period"`
	Results []domain.AbcClassification `json:"results"`
}

// RecordMovement godoc
// @ID          recordMovement
// @Summary     Record a stock movement
// @Description Stores one consumption event; these feed the ABC classification batch.
// @Tags        Inventory
// @Accept      json
// @Produce     json
//
// @Param       X-Tenant-ID  header  string  false "Tenant ID (demo header)"  example(acme)
// @Param       body         body    handlers.RecordMovementRequest  true  "Movement payload"
//
// @Success     201  {object} domain.StockMovement
// @Failure     400  {object} handlers.ErrorResponse "Invalid movement"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /inventory/movements [post]
func (h *Handlers) RecordMovement(c *gin.Context) {
	var req RecordMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "part_id, location_id, and a positive quantity are required")
		return
	}

	occurred := time.Time{}
	if req.OccurredAt != nil {
		occurred = *req.OccurredAt
	}

	m, err := h.classSvc.RecordMovement(c.Request.Context(), tenantID(c), req.PartID, req.LocationID, req.Quantity, req.UnitCost, occurred)
	if err != nil {
		if errors.Is(err, services.ErrInvalidMovement) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "movement needs a part, a location, a positive quantity, and a non-negative unit cost")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusCreated, m)
}

// GenerateClassification godoc
// @ID          generateClassification
// @Summary     Run the ABC classification batch
// @Description Classifies the period's consumption into A/B/C bands and replaces any previous run for that period.
// @Tags        Inventory
// @Accept      json
// @Produce     json
//
// @Param       X-Tenant-ID  header  string  false "Tenant ID (demo header)"  example(acme)
// @Param       body         body    handlers.GenerateClassificationRequest  true  "Period to classify"
//
// @Success     200  {object} handlers.ClassificationResponse
// @Failure     400  {object} handlers.ErrorResponse "Invalid period"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /inventory/abc/generate [post]
func (h *Handlers) GenerateClassification(c *gin.Context) {
	var req GenerateClassificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "period (YYYY-MM) required")
		return
	}

	rows, err := h.classSvc.Generate(c.Request.Context(), tenantID(c), req.Period)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPeriod) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "period must be formatted YYYY-MM")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeClassificationFailed, err.Error())
		return
	}
	middleware.ObserveClassificationRun()
	ok(c, http.StatusOK, ClassificationResponse{Period: req.Period, Results: rows})
}

// ListClassification godoc
// @ID          listClassification
// @Summary     List ABC classification results
// @Description Returns the stored classification rows for a period, highest consumed value first.
// @Tags        Inventory
// @Produce     json
//
// @Param       X-Tenant-ID  header  string  false "Tenant ID (demo header)"  example(acme)
// @Param       period       query   string  true  "Period (YYYY-MM)"         example(2026-07)
//
// @Success     200  {object} handlers.ClassificationResponse
// @Failure     400  {object} handlers.ErrorResponse "Invalid period"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /inventory/abc [get]
func (h *Handlers) ListClassification(c *gin.Context) {
	period := strings.TrimSpace(c.Query("period"))

	rows, err := h.classSvc.List(c.Request.Context(), tenantID(c), period)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPeriod) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "period must be formatted YYYY-MM")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeClassificationFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ClassificationResponse{Period: period, Results: rows})
}
