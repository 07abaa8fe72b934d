package renovation

import (
	"errors"
	"math"
	"testing"

	"immoscope/internal/dataset"
	"immoscope/internal/logging"
)

func testAdjuster(t *testing.T) *Adjuster {
	t.Helper()

	ds, err := dataset.Load()
	if err != nil {
		t.Fatalf("failed to load dataset: %v", err)
	}
	logger, _ := logging.NewTestLogger()
	return NewAdjuster(ds, logger)
}

func TestAdjustUnmappedRegionUsesDefaultMultiplier(t *testing.T) {
	adjuster := testAdjuster(t)

	// Lyon has no macro-region entry.
	cost, err := adjuster.Adjust("partial", "Lyon 6e")
	if err != nil {
		t.Fatalf("Adjust failed: %v", err)
	}

	if cost.Multiplier != DefaultMultiplier {
		t.Errorf("expected default multiplier, got %f", cost.Multiplier)
	}
	if cost.Region != "" {
		t.Errorf("expected no region, got %q", cost.Region)
	}
	if cost.CostPerSqm != 800 {
		t.Errorf("expected 800 €/m² for partial tier in Lyon, got %f", cost.CostPerSqm)
	}
	if got := cost.TotalFor(55); got != 44000 {
		t.Errorf("expected 44000 total for 55 m², got %f", got)
	}
}

func TestAdjustMappedRegion(t *testing.T) {
	adjuster := testAdjuster(t)

	tests := []struct {
		location       string
		wantRegion     string
		wantMultiplier float64
	}{
		{"Paris 11e", "ile_de_france", 1.20},
		{"Versailles", "ile_de_france", 1.20},
		{"Rouen", "bassin_parisien", 1.10},
		{"Perpignan", "province_eloignee", 0.85},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			cost, err := adjuster.Adjust("complete", tt.location)
			if err != nil {
				t.Fatalf("Adjust failed: %v", err)
			}
			if cost.Region != tt.wantRegion {
				t.Errorf("expected region %s, got %s", tt.wantRegion, cost.Region)
			}
			if cost.Multiplier != tt.wantMultiplier {
				t.Errorf("expected multiplier %f, got %f", tt.wantMultiplier, cost.Multiplier)
			}
			want := 1000 * tt.wantMultiplier
			if math.Abs(cost.CostPerSqm-want) > 1e-9 {
				t.Errorf("expected %f €/m², got %f", want, cost.CostPerSqm)
			}
		})
	}
}

func TestAdjustUnknownTier(t *testing.T) {
	adjuster := testAdjuster(t)

	_, err := adjuster.Adjust("gold_plated", "Paris")
	if !errors.Is(err, ErrUnknownTier) {
		t.Errorf("expected ErrUnknownTier, got %v", err)
	}
}

func TestTablePreservesTierOrderAndMonotonicity(t *testing.T) {
	adjuster := testAdjuster(t)

	table := adjuster.Table("Paris")
	if len(table) != 6 {
		t.Fatalf("expected 6 tiers, got %d", len(table))
	}

	for i := 1; i < len(table); i++ {
		if table[i].CostPerSqm <= table[i-1].CostPerSqm {
			t.Errorf("adjusted costs must stay monotonic: %s %.0f <= %s %.0f",
				table[i].Tier.Key, table[i].CostPerSqm, table[i-1].Tier.Key, table[i-1].CostPerSqm)
		}
	}
}

func TestBreakdownSumsToTotal(t *testing.T) {
	adjuster := testAdjuster(t)

	cost, err := adjuster.Adjust("complete", "Lyon")
	if err != nil {
		t.Fatalf("Adjust failed: %v", err)
	}

	breakdown := cost.BreakdownFor(60)
	var sum float64
	for _, amount := range breakdown {
		sum += amount
	}
	if math.Abs(sum-cost.TotalFor(60)) > 1 {
		t.Errorf("breakdown sums to %f, expected %f", sum, cost.TotalFor(60))
	}
}
