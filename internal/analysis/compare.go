package analysis

import "fmt"

// scoreGap is the margin one strategy must hold over the other before the
// comparison recommends it outright.
const scoreGap = 10.0

// Comparison holds both strategies analyzed on the same property.
type Comparison struct {
	Rental         *RentalAnalysis `json:"rental"`
	Dealer         *DealerAnalysis `json:"dealer"`
	Recommendation string          `json:"recommendation"`
}

// Compare runs both analyzers on one property and recommends a strategy. Both
// analyses must succeed; a property that cannot be scored one way cannot be
// compared.
func Compare(rental *RentalAnalyzer, dealer *DealerAnalyzer, rentalIn RentalInput, dealerIn DealerInput) (*Comparison, error) {
	r, err := rental.Analyze(rentalIn)
	if err != nil {
		return nil, fmt.Errorf("rental analysis failed: %w", err)
	}
	d, err := dealer.Analyze(dealerIn)
	if err != nil {
		return nil, fmt.Errorf("dealer analysis failed: %w", err)
	}

	return &Comparison{
		Rental:         r,
		Dealer:         d,
		Recommendation: recommend(r, d),
	}, nil
}

func recommend(r *RentalAnalysis, d *DealerAnalysis) string {
	switch {
	case r.Score >= d.Score+scoreGap:
		return fmt.Sprintf("Hold as a rental: the rental score (%.0f) clearly beats the flip score (%.0f) on this property.", r.Score, d.Score)
	case d.Score >= r.Score+scoreGap:
		return fmt.Sprintf("Renovate and resell: the flip score (%.0f) clearly beats the rental score (%.0f) on this property.", d.Score, r.Score)
	default:
		return fmt.Sprintf("Both strategies are viable (rental %.0f, flip %.0f); decide on holding horizon and appetite for renovation work.", r.Score, d.Score)
	}
}
