package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestClassification_InvalidPeriod(t *testing.T) {
	svc := NewClassificationService(newTestDB(t))
	ctx := context.Background()

	for _, period := range []string{"", "2024", "2024-3", "March 2024", "2024-13"} {
		if _, err := svc.Generate(ctx, "t1", period); !errors.Is(err, ErrInvalidPeriod) {
			t.Fatalf("Generate(%q): expected ErrInvalidPeriod, got %v", period, err)
		}
		if _, err := svc.List(ctx, "t1", period); !errors.Is(err, ErrInvalidPeriod) {
			t.Fatalf("List(%q): expected ErrInvalidPeriod, got %v", period, err)
		}
	}
}

func TestClassification_RecordMovement_Validation(t *testing.T) {
	svc := NewClassificationService(newTestDB(t))
	ctx := context.Background()

	cases := []struct {
		name           string
		part, location string
		qty, cost      float64
	}{
		{"empty part", "", "L1", 1, 1},
		{"empty location", "P1", "", 1, 1},
		{"zero quantity", "P1", "L1", 0, 1},
		{"negative quantity", "P1", "L1", -2, 1},
		{"negative cost", "P1", "L1", 1, -1},
	}
	for _, tc := range cases {
		if _, err := svc.RecordMovement(ctx, "t1", tc.part, tc.location, tc.qty, tc.cost, time.Time{}); !errors.Is(err, ErrInvalidMovement) {
			t.Fatalf("%s: expected ErrInvalidMovement, got %v", tc.name, err)
		}
	}

	m, err := svc.RecordMovement(ctx, "t1", "P1", "L1", 2, 10, time.Time{})
	if err != nil {
		t.Fatalf("valid movement: %v", err)
	}
	if m.ID == "" || m.OccurredAt.IsZero() {
		t.Fatalf("expected id and occurred_at to be assigned: %+v", m)
	}
}

func TestClassification_GenerateEndToEnd(t *testing.T) {
	svc := NewClassificationService(newTestDB(t))
	ctx := context.Background()

	mid := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	seed := []struct {
		part, location string
		qty, cost      float64
	}{
		{"P1", "L1", 5, 100}, // 500
		{"P2", "L1", 3, 100}, // 300
		{"P3", "L2", 3, 50},  // 150
		{"P4", "L1", 1, 50},  // 50
	}
	for _, s := range seed {
		if _, err := svc.RecordMovement(ctx, "t1", s.part, s.location, s.qty, s.cost, mid); err != nil {
			t.Fatalf("seed %s: %v", s.part, err)
		}
	}
	// A movement outside the month must not count.
	if _, err := svc.RecordMovement(ctx, "t1", "P1", "L1", 100, 100, mid.AddDate(0, 2, 0)); err != nil {
		t.Fatalf("seed out-of-window: %v", err)
	}
	// Another tenant's movement must not count.
	if _, err := svc.RecordMovement(ctx, "t2", "P1", "L1", 100, 100, mid); err != nil {
		t.Fatalf("seed other tenant: %v", err)
	}

	rows, err := svc.Generate(ctx, "t1", "2024-03")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d; want 4", len(rows))
	}

	wantClass := map[string]string{"P1": "A", "P2": "A", "P3": "B", "P4": "C"}
	wantCum := map[string]float64{"P1": 50, "P2": 80, "P3": 95, "P4": 100}
	for _, r := range rows {
		if r.Classification != wantClass[r.PartID] {
			t.Fatalf("%s class = %s; want %s", r.PartID, r.Classification, wantClass[r.PartID])
		}
		if r.CumulativePercentage != wantCum[r.PartID] {
			t.Fatalf("%s cumulative = %v; want %v", r.PartID, r.CumulativePercentage, wantCum[r.PartID])
		}
		if r.Period != "2024-03" || r.TenantID != "t1" {
			t.Fatalf("row scoping = %s/%s", r.TenantID, r.Period)
		}
		if r.PredictedDemand <= 0 {
			t.Fatalf("%s predicted demand = %v; want > 0", r.PartID, r.PredictedDemand)
		}
	}

	// Value-descending storage order.
	listed, err := svc.List(ctx, "t1", "2024-03")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 4 || listed[0].PartID != "P1" || listed[3].PartID != "P4" {
		t.Fatalf("listed order = %+v", listed)
	}
}

func TestClassification_GenerateReplacesPreviousRun(t *testing.T) {
	svc := NewClassificationService(newTestDB(t))
	ctx := context.Background()

	mid := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	if _, err := svc.RecordMovement(ctx, "t1", "P1", "L1", 2, 10, mid); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := svc.Generate(ctx, "t1", "2024-05"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := svc.RecordMovement(ctx, "t1", "P2", "L1", 1, 5, mid); err != nil {
		t.Fatalf("seed more: %v", err)
	}
	rows, err := svc.Generate(ctx, "t1", "2024-05")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows after rerun = %d; want 2", len(rows))
	}

	listed, err := svc.List(ctx, "t1", "2024-05")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("stored rows = %d; want 2 (previous run replaced)", len(listed))
	}
}

func TestClassification_EmptyMonthClears(t *testing.T) {
	svc := NewClassificationService(newTestDB(t))
	ctx := context.Background()

	mid := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	if _, err := svc.RecordMovement(ctx, "t1", "P1", "L1", 2, 10, mid); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.Generate(ctx, "t1", "2024-07"); err != nil {
		t.Fatalf("seeded run: %v", err)
	}

	// A month with no movements yields no rows and clears nothing stale...
	rows, err := svc.Generate(ctx, "t1", "2023-01")
	if err != nil {
		t.Fatalf("empty run: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rows = %d; want 0", len(rows))
	}
	// ...while the other period's results are untouched.
	listed, err := svc.List(ctx, "t1", "2024-07")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("stored rows = %d; want 1", len(listed))
	}
}
