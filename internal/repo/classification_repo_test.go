package repo

import (
	"context"
	"testing"
	"time"

	"github.com/alexsolver/go-kb-backend/internal/domain"
)

func TestSumConsumption_GroupsAndFilters(t *testing.T) {
	db := newRepoDB(t, &domain.StockMovement{})
	ctx := context.Background()

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	movements := []domain.StockMovement{
		{TenantID: "t1", PartID: "p1", LocationID: "l1", Quantity: 10, UnitCost: 5, OccurredAt: from.Add(24 * time.Hour)},
		{TenantID: "t1", PartID: "p1", LocationID: "l1", Quantity: 4, UnitCost: 5, OccurredAt: from.Add(48 * time.Hour)},
		{TenantID: "t1", PartID: "p2", LocationID: "l1", Quantity: 1, UnitCost: 30, OccurredAt: from.Add(24 * time.Hour)},
		// Outside the window: ignored.
		{TenantID: "t1", PartID: "p1", LocationID: "l1", Quantity: 100, UnitCost: 5, OccurredAt: to.Add(time.Hour)},
		// Other tenant: ignored.
		{TenantID: "t2", PartID: "p1", LocationID: "l1", Quantity: 100, UnitCost: 5, OccurredAt: from.Add(24 * time.Hour)},
	}
	for i := range movements {
		if err := CreateMovement(ctx, db, &movements[i]); err != nil {
			t.Fatalf("seed movement: %v", err)
		}
	}

	records, err := SumConsumption(ctx, db, "t1", from, to)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("groups = %d; want 2", len(records))
	}

	byPart := map[string]float64{}
	for _, r := range records {
		byPart[r.PartID] = r.TotalValueConsumed
	}
	if byPart["p1"] != 70 {
		t.Fatalf("p1 value = %v; want 70", byPart["p1"])
	}
	if byPart["p2"] != 30 {
		t.Fatalf("p2 value = %v; want 30", byPart["p2"])
	}
}

func TestReplaceClassifications_SwapsPeriod(t *testing.T) {
	db := newRepoDB(t, &domain.AbcClassification{})
	ctx := context.Background()
	now := time.Now().UTC()

	first := []domain.AbcClassification{
		{TenantID: "t1", Period: "2026-01", PartID: "p1", LocationID: "l1", TotalValueConsumed: 100, Classification: "A", GeneratedAt: now},
	}
	if err := ReplaceClassifications(ctx, db, "t1", "2026-01", first); err != nil {
		t.Fatalf("first replace: %v", err)
	}

	second := []domain.AbcClassification{
		{TenantID: "t1", Period: "2026-01", PartID: "p2", LocationID: "l1", TotalValueConsumed: 200, Classification: "A", GeneratedAt: now},
		{TenantID: "t1", Period: "2026-01", PartID: "p3", LocationID: "l1", TotalValueConsumed: 10, Classification: "C", GeneratedAt: now},
	}
	if err := ReplaceClassifications(ctx, db, "t1", "2026-01", second); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	rows, err := ListClassifications(ctx, db, "t1", "2026-01")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 || rows[0].PartID != "p2" {
		t.Fatalf("rows = %+v; want p2 first (value desc)", rows)
	}
	for _, r := range rows {
		if r.ID == "" {
			t.Fatalf("ID not assigned on insert")
		}
	}
}

func TestReplaceClassifications_EmptyBatchClearsPeriod(t *testing.T) {
	db := newRepoDB(t, &domain.AbcClassification{})
	ctx := context.Background()

	seed := []domain.AbcClassification{
		{TenantID: "t1", Period: "2026-02", PartID: "p1", LocationID: "l1", TotalValueConsumed: 1, Classification: "A", GeneratedAt: time.Now()},
	}
	if err := ReplaceClassifications(ctx, db, "t1", "2026-02", seed); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := ReplaceClassifications(ctx, db, "t1", "2026-02", nil); err != nil {
		t.Fatalf("clear: %v", err)
	}
	rows, err := ListClassifications(ctx, db, "t1", "2026-02")
	if err != nil || len(rows) != 0 {
		t.Fatalf("rows = %d (%v); want 0", len(rows), err)
	}
}

func TestDemandHistory_Buckets(t *testing.T) {
	db := newRepoDB(t, &domain.StockMovement{})
	ctx := context.Background()

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(3 * 24 * time.Hour)
	day := 24 * time.Hour

	for _, m := range []domain.StockMovement{
		{TenantID: "t1", PartID: "p1", LocationID: "l1", Quantity: 2, UnitCost: 1, OccurredAt: from.Add(time.Hour)},
		{TenantID: "t1", PartID: "p1", LocationID: "l1", Quantity: 3, UnitCost: 1, OccurredAt: from.Add(day + time.Hour)},
		{TenantID: "t1", PartID: "p1", LocationID: "l1", Quantity: 5, UnitCost: 1, OccurredAt: from.Add(2*day + time.Hour)},
	} {
		mm := m
		if err := CreateMovement(ctx, db, &mm); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	history, err := DemandHistory(ctx, db, "t1", "p1", from, to, day)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	want := []float64{2, 3, 5}
	if len(history) != len(want) {
		t.Fatalf("buckets = %d; want %d", len(history), len(want))
	}
	for i := range want {
		if history[i] != want[i] {
			t.Fatalf("bucket %d = %v; want %v", i, history[i], want[i])
		}
	}
}
