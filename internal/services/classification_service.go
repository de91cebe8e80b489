// Package services – ClassificationService
//
// This file implements the inventory classification use-cases: running the
// ABC batch for a period, listing stored results, and recording the stock
// movements the batch consumes. The classification math itself lives in the
// domain package; this service owns the period parsing, the data plumbing,
// and the idempotent replace of a period's results.
package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alexsolver/go-kb-backend/internal/domain"
	"github.com/alexsolver/go-kb-backend/internal/repo"
)

// demandBucket is the aggregation window used to build a part's demand
// history for the forecast.
const demandBucket = 24 * time.Hour

// demandLookbackDays bounds how far back movement history feeds the forecast.
const demandLookbackDays = 90

// ClassificationService implements the ABC classification batch and the
// demand forecast attached to its results.
type ClassificationService struct {
	// DB is the database handle used for all classification operations.
	DB *gorm.DB

	// Forecast predicts demand from a part's recent consumption history.
	// Defaults to the moving average when nil.
	Forecast domain.ForecastStrategy
}

// NewClassificationService wires a ClassificationService with the default
// moving-average forecast.
func NewClassificationService(db *gorm.DB) *ClassificationService {
	return &ClassificationService{DB: db, Forecast: domain.AverageForecast{}}
}

// Generate runs the ABC batch for one calendar month ("2006-01"). It sums
// consumption value per (part, location) over the month, classifies the
// totals at the 80/95 cumulative cutoffs, attaches a demand prediction per
// part, and atomically replaces any previous run for the same period.
//
// An empty month produces an empty result set and clears a previous run.
func (s *ClassificationService) Generate(ctx context.Context, tenantID, period string) ([]domain.AbcClassification, error) {
	from, err := time.Parse("2006-01", period)
	if err != nil {
		return nil, ErrInvalidPeriod
	}
	to := from.AddDate(0, 1, 0)

	records, err := repo.SumConsumption(ctx, s.DB, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	results := domain.ClassifyABC(records)

	forecast := s.Forecast
	if forecast == nil {
		forecast = domain.AverageForecast{}
	}

	now := time.Now().UTC()
	lookbackFrom := to.AddDate(0, 0, -demandLookbackDays)

	// One demand history per part; parts recur across locations.
	predictions := make(map[string]float64, len(results))
	rows := make([]domain.AbcClassification, 0, len(results))
	for _, r := range results {
		pred, ok := predictions[r.PartID]
		if !ok {
			history, err := repo.DemandHistory(ctx, s.DB, tenantID, r.PartID, lookbackFrom, to, demandBucket)
			if err != nil {
				return nil, err
			}
			pred = forecast.Predict(history)
			predictions[r.PartID] = pred
		}
		rows = append(rows, domain.AbcClassification{
			ID:                   uuid.NewString(),
			TenantID:             tenantID,
			Period:               period,
			PartID:               r.PartID,
			LocationID:           r.LocationID,
			TotalValueConsumed:   r.TotalValueConsumed,
			PercentageOfTotal:    r.PercentageOfTotal,
			CumulativePercentage: r.CumulativePercentage,
			Classification:       r.Classification,
			PredictedDemand:      pred,
			GeneratedAt:          now,
		})
	}

	if err := repo.ReplaceClassifications(ctx, s.DB, tenantID, period, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// List returns the stored classification rows for a period, highest consumed
// value first.
func (s *ClassificationService) List(ctx context.Context, tenantID, period string) ([]domain.AbcClassification, error) {
	if _, err := time.Parse("2006-01", period); err != nil {
		return nil, ErrInvalidPeriod
	}
	return repo.ListClassifications(ctx, s.DB, tenantID, period)
}

// RecordMovement stores one consumption event. Quantity must be positive and
// unit cost non-negative; OccurredAt defaults to now.
func (s *ClassificationService) RecordMovement(ctx context.Context, tenantID, partID, locationID string, quantity, unitCost float64, occurredAt time.Time) (*domain.StockMovement, error) {
	if partID == "" || locationID == "" || quantity <= 0 || unitCost < 0 {
		return nil, ErrInvalidMovement
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	m := &domain.StockMovement{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		PartID:     partID,
		LocationID: locationID,
		Quantity:   quantity,
		UnitCost:   unitCost,
		OccurredAt: occurredAt,
	}
	if err := repo.CreateMovement(ctx, s.DB, m); err != nil {
		return nil, err
	}
	return m, nil
}
