// Package repo – stock movement aggregation and ABC classification storage.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alexsolver/go-kb-backend/internal/domain"
)

// SumConsumption aggregates movement value (quantity * unit_cost) per
// (part, location) for a tenant within [from, to). This is the input of the
// ABC batch.
func SumConsumption(ctx context.Context, db *gorm.DB, tenantID string, from, to time.Time) ([]domain.ConsumptionRecord, error) {
	var out []domain.ConsumptionRecord
	err := db.WithContext(ctx).
		Model(&domain.StockMovement{}).
		Select("part_id, location_id, SUM(quantity * unit_cost) AS total_value_consumed").
		Where("tenant_id = ? AND occurred_at >= ? AND occurred_at < ?", tenantID, from, to).
		Group("part_id, location_id").
		Scan(&out).Error
	return out, err
}

// DemandHistory returns total consumed quantity per bucket (oldest first) for
// one part across the lookback window, feeding the forecast strategy.
func DemandHistory(ctx context.Context, db *gorm.DB, tenantID, partID string, from, to time.Time, bucket time.Duration) ([]float64, error) {
	var movements []domain.StockMovement
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND part_id = ? AND occurred_at >= ? AND occurred_at < ?", tenantID, partID, from, to).
		Order("occurred_at ASC").
		Find(&movements).Error
	if err != nil {
		return nil, err
	}

	n := int(to.Sub(from) / bucket)
	if n <= 0 {
		n = 1
	}
	history := make([]float64, n)
	for _, m := range movements {
		i := int(m.OccurredAt.Sub(from) / bucket)
		if i >= 0 && i < n {
			history[i] += m.Quantity
		}
	}
	return history, nil
}

// ReplaceClassifications swaps the stored ABC rows for one (tenant, period)
// atomically: old rows are removed and the new batch inserted in a single
// transaction so readers never see a mixed period.
func ReplaceClassifications(ctx context.Context, db *gorm.DB, tenantID, period string, rows []domain.AbcClassification) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("tenant_id = ? AND period = ?", tenantID, period).
			Delete(&domain.AbcClassification{}).Error; err != nil {
			return err
		}
		for i := range rows {
			if rows[i].ID == "" {
				rows[i].ID = uuid.NewString()
			}
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

// ListClassifications returns the stored ABC rows for a (tenant, period)
// ordered by consumption value descending.
func ListClassifications(ctx context.Context, db *gorm.DB, tenantID, period string) ([]domain.AbcClassification, error) {
	var out []domain.AbcClassification
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND period = ?", tenantID, period).
		Order("total_value_consumed DESC, part_id ASC").
		Find(&out).Error
	return out, err
}

// CreateMovement inserts one stock movement row.
func CreateMovement(ctx context.Context, db *gorm.DB, m *domain.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return db.WithContext(ctx).Create(m).Error
}
