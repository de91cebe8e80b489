package domain

import "testing"

func TestClassifyABC_Banding(t *testing.T) {
	records := []ConsumptionRecord{
		{PartID: "p1", LocationID: "l1", TotalValueConsumed: 500},
		{PartID: "p2", LocationID: "l1", TotalValueConsumed: 300},
		{PartID: "p3", LocationID: "l1", TotalValueConsumed: 150},
		{PartID: "p4", LocationID: "l1", TotalValueConsumed: 50},
	}

	got := ClassifyABC(records)
	if len(got) != 4 {
		t.Fatalf("len = %d; want 4", len(got))
	}

	wantCum := []float64{50, 80, 95, 100}
	wantClass := []string{"A", "A", "B", "C"}
	for i, r := range got {
		if r.CumulativePercentage != wantCum[i] {
			t.Fatalf("record %d cumulative%% = %v; want %v", i, r.CumulativePercentage, wantCum[i])
		}
		if r.Classification != wantClass[i] {
			t.Fatalf("record %d class = %q; want %q", i, r.Classification, wantClass[i])
		}
	}

	// p2 lands exactly on the 80%% cutoff and stays in class A.
	if got[1].PartID != "p2" || got[1].Classification != "A" {
		t.Fatalf("boundary record = %+v; want p2 in class A", got[1])
	}
}

func TestClassifyABC_SortsDescending(t *testing.T) {
	got := ClassifyABC([]ConsumptionRecord{
		{PartID: "low", TotalValueConsumed: 1},
		{PartID: "high", TotalValueConsumed: 100},
	})
	if got[0].PartID != "high" || got[1].PartID != "low" {
		t.Fatalf("expected descending value order, got %+v", got)
	}
	if got[0].PercentageOfTotal < got[1].PercentageOfTotal {
		t.Fatalf("percentages out of order: %+v", got)
	}
}

func TestClassifyABC_TieBreakDeterministic(t *testing.T) {
	a := ClassifyABC([]ConsumptionRecord{
		{PartID: "p2", LocationID: "l1", TotalValueConsumed: 10},
		{PartID: "p1", LocationID: "l1", TotalValueConsumed: 10},
	})
	b := ClassifyABC([]ConsumptionRecord{
		{PartID: "p1", LocationID: "l1", TotalValueConsumed: 10},
		{PartID: "p2", LocationID: "l1", TotalValueConsumed: 10},
	})
	if a[0].PartID != b[0].PartID || a[0].PartID != "p1" {
		t.Fatalf("equal values must order by part id: %q vs %q", a[0].PartID, b[0].PartID)
	}
}

func TestClassifyABC_ZeroTotal(t *testing.T) {
	got := ClassifyABC([]ConsumptionRecord{{PartID: "p1", TotalValueConsumed: 0}})
	if got[0].Classification != "C" || got[0].PercentageOfTotal != 0 {
		t.Fatalf("zero grand total should classify C with 0%%, got %+v", got[0])
	}
}

func TestClassifyABC_DoesNotMutateInput(t *testing.T) {
	in := []ConsumptionRecord{
		{PartID: "a", TotalValueConsumed: 1},
		{PartID: "b", TotalValueConsumed: 2},
	}
	ClassifyABC(in)
	if in[0].PartID != "a" || in[1].PartID != "b" {
		t.Fatalf("input slice was reordered: %+v", in)
	}
}

func TestAverageForecast(t *testing.T) {
	var f ForecastStrategy = AverageForecast{}
	if got := f.Predict(nil); got != 0 {
		t.Fatalf("Predict(nil) = %v; want 0", got)
	}
	if got := f.Predict([]float64{2, 4, 6}); got != 4 {
		t.Fatalf("Predict = %v; want 4", got)
	}
}
