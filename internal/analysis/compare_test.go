package analysis

import (
	"errors"
	"strings"
	"testing"
)

func TestCompareRecommendsRentalOverLosingFlip(t *testing.T) {
	rental := testRentalAnalyzer(t)
	dealer := testDealerAnalyzer(t)

	// Strong rental figures against a flip that loses money after fees.
	comparison, err := Compare(rental, dealer,
		RentalInput{
			Estimate:      lyonEstimate(),
			SurfaceSqm:    55,
			PurchasePrice: 180000,
			AnnualCharges: 3000,
		},
		DealerInput{
			Estimate:       lyonEstimate(),
			RenovationTier: "heavy",
			SurfaceSqm:     55,
			PurchasePrice:  300000,
		})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if comparison.Rental == nil || comparison.Dealer == nil {
		t.Fatal("expected both analyses in the comparison")
	}
	if comparison.Rental.Score <= comparison.Dealer.Score {
		t.Fatalf("setup error: rental %f should outscore dealer %f",
			comparison.Rental.Score, comparison.Dealer.Score)
	}
	if !strings.Contains(comparison.Recommendation, "rental") {
		t.Errorf("expected a rental recommendation, got %q", comparison.Recommendation)
	}
}

func TestCompareFailsWhenOneAnalysisFails(t *testing.T) {
	rental := testRentalAnalyzer(t)
	dealer := testDealerAnalyzer(t)

	_, err := Compare(rental, dealer,
		RentalInput{Estimate: lyonEstimate(), SurfaceSqm: 55, PurchasePrice: 300000},
		DealerInput{Estimate: lyonEstimate(), RenovationTier: "gold_plated", SurfaceSqm: 55, PurchasePrice: 300000})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput from the dealer side, got %v", err)
	}
}
