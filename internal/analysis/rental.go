package analysis

import (
	"fmt"

	"immoscope/internal/dataset"
	"immoscope/internal/logging"
	"immoscope/internal/market"
)

// Rental score weights. They sum to 1 and each sub-score is monotonic in its
// underlying figure, so a better yield (or demand, appreciation, vacancy)
// never lowers the final score.
const (
	rentalYieldWeight        = 0.40
	rentalDemandWeight       = 0.25
	rentalAppreciationWeight = 0.20
	rentalVacancyWeight      = 0.15

	// targetNetYieldPct is the net yield that earns a full yield sub-score.
	targetNetYieldPct = 8.0
)

// RentalInput carries the figures for a buy-and-hold analysis. RentPerSqm and
// AnnualCharges are optional overrides: zero means derive them from the market
// estimate and standard ownership cost assumptions.
type RentalInput struct {
	Estimate         *market.PriceEstimate
	SurfaceSqm       float64
	PurchasePrice    float64
	RentPerSqm       float64
	AnnualCharges    float64
	MonthlyFinancing float64
}

// RentalAnalysis is the full buy-and-hold result.
type RentalAnalysis struct {
	Location        string  `json:"location"`
	RentPerSqm      float64 `json:"rent_per_sqm"`
	MonthlyRent     float64 `json:"monthly_rent"`
	AnnualCharges   float64 `json:"annual_charges"`
	GrossYieldPct   float64 `json:"gross_yield_pct"`
	NetYieldPct     float64 `json:"net_yield_pct"`
	MonthlyCashFlow float64 `json:"monthly_cash_flow"`

	Demand             dataset.DemandLevel `json:"rental_demand"`
	VacancyRisk        RiskLevel           `json:"vacancy_risk"`
	VacancyRatePct     float64             `json:"vacancy_rate_pct"`
	Appreciation10yPct float64             `json:"appreciation_10y_pct"`

	Score           float64  `json:"score"`
	Confidence      float64  `json:"confidence"`
	Pros            []string `json:"pros"`
	Cons            []string `json:"cons"`
	Recommendations []string `json:"recommendations"`
}

// RentalAnalyzer scores buy-and-hold rental investments.
type RentalAnalyzer struct {
	ds     *dataset.Dataset
	logger *logging.AppLogger
}

func NewRentalAnalyzer(ds *dataset.Dataset, logger *logging.AppLogger) *RentalAnalyzer {
	return &RentalAnalyzer{ds: ds, logger: logger}
}

// Analyze computes yields, cash flow and the weighted rental score.
func (a *RentalAnalyzer) Analyze(in RentalInput) (*RentalAnalysis, error) {
	if in.PurchasePrice <= 0 {
		return nil, fmt.Errorf("%w: purchase price must be positive", ErrInvalidInput)
	}
	if in.SurfaceSqm <= 0 {
		return nil, fmt.Errorf("%w: surface must be positive", ErrInvalidInput)
	}
	if in.RentPerSqm < 0 || in.AnnualCharges < 0 || in.MonthlyFinancing < 0 {
		return nil, fmt.Errorf("%w: negative rent, charges or financing", ErrInvalidInput)
	}
	if in.Estimate == nil || in.Estimate.ValuePerSqm <= 0 {
		return nil, fmt.Errorf("%w: no resolved price estimate", ErrInsufficientData)
	}

	rentPerSqm := in.RentPerSqm
	if rentPerSqm == 0 {
		rentPerSqm = in.Estimate.RentPerSqm
	}
	if rentPerSqm <= 0 {
		return nil, fmt.Errorf("%w: no rent benchmark for %s", ErrInsufficientData, in.Estimate.Location)
	}

	monthlyRent := rentPerSqm * in.SurfaceSqm
	annualRent := monthlyRent * 12

	annualCharges := in.AnnualCharges
	if annualCharges == 0 {
		annualCharges = estimateAnnualCharges(in.PurchasePrice, in.SurfaceSqm, annualRent)
	}

	grossYield := annualRent / in.PurchasePrice * 100
	netYield := (annualRent - annualCharges) / in.PurchasePrice * 100
	cashFlow := (annualRent-annualCharges)/12 - in.MonthlyFinancing

	profile := a.locationProfile(in.Estimate.Location)

	score := round1(rentalYieldWeight*clampScore(netYield/targetNetYieldPct*100) +
		rentalDemandWeight*demandSubScore(profile.Demand) +
		rentalAppreciationWeight*clampScore(profile.Appreciation10y/40*100) +
		rentalVacancyWeight*vacancySubScore(profile.VacancyRate))

	out := &RentalAnalysis{
		Location:           in.Estimate.Location,
		RentPerSqm:         rentPerSqm,
		MonthlyRent:        round1(monthlyRent),
		AnnualCharges:      round1(annualCharges),
		GrossYieldPct:      round1(grossYield),
		NetYieldPct:        round1(netYield),
		MonthlyCashFlow:    round1(cashFlow),
		Demand:             profile.Demand,
		VacancyRisk:        vacancyRisk(profile.VacancyRate),
		VacancyRatePct:     profile.VacancyRate,
		Appreciation10yPct: profile.Appreciation10y,
		Score:              score,
		Confidence:         in.Estimate.Confidence,
	}
	out.Pros, out.Cons, out.Recommendations = rentalNarrative(out)

	a.logger.Debug("Rental analysis complete",
		"location", out.Location, "net_yield", out.NetYieldPct, "score", out.Score)
	return out, nil
}

// locationProfile finds the demand, vacancy and appreciation benchmarks for a
// resolved location, falling back to a neutral national profile when the
// location is not a benchmark city.
func (a *RentalAnalyzer) locationProfile(location string) dataset.ReferenceLocation {
	if q, err := market.ParseLocation(location); err == nil {
		for _, key := range q.Keys() {
			if loc, ok := a.ds.Location(key); ok {
				return loc
			}
		}
	}
	return dataset.ReferenceLocation{
		Demand:          dataset.DemandMedium,
		VacancyRate:     4.0,
		Appreciation10y: 20.0,
	}
}

// estimateAnnualCharges approximates ownership costs when the caller supplies
// none: co-ownership charges, insurance, a maintenance reserve, property tax
// and management fees.
func estimateAnnualCharges(purchasePrice, surfaceSqm, annualRent float64) float64 {
	coOwnership := 4.0 * surfaceSqm * 12
	insurance := 180.0
	maintenance := purchasePrice * 0.005
	propertyTax := annualRent * 0.08
	management := annualRent * ManagementFeeRate
	return coOwnership + insurance + maintenance + propertyTax + management
}

func demandSubScore(d dataset.DemandLevel) float64 {
	switch d {
	case dataset.DemandStrong:
		return 100
	case dataset.DemandWeak:
		return 20
	default:
		return 60
	}
}

// vacancySubScore maps a vacancy rate to 0-100: 2% or less scores full marks,
// 8% or more scores zero.
func vacancySubScore(ratePct float64) float64 {
	return clampScore((8 - ratePct) / 6 * 100)
}

func vacancyRisk(ratePct float64) RiskLevel {
	switch {
	case ratePct < 3:
		return RiskLow
	case ratePct < 5:
		return RiskMedium
	default:
		return RiskHigh
	}
}

func rentalNarrative(r *RentalAnalysis) (pros, cons, recs []string) {
	switch {
	case r.NetYieldPct >= 5:
		pros = append(pros, fmt.Sprintf("Excellent net yield of %.1f%%", r.NetYieldPct))
	case r.NetYieldPct >= 3.5:
		pros = append(pros, fmt.Sprintf("Solid net yield of %.1f%%", r.NetYieldPct))
	default:
		cons = append(cons, fmt.Sprintf("Low net yield of %.1f%%", r.NetYieldPct))
	}

	if r.MonthlyCashFlow >= 0 {
		pros = append(pros, fmt.Sprintf("Positive monthly cash flow of %.0f €", r.MonthlyCashFlow))
	} else {
		cons = append(cons, fmt.Sprintf("Negative monthly cash flow of %.0f €", r.MonthlyCashFlow))
		recs = append(recs, "Negotiate the purchase price or increase the down payment to restore cash flow")
	}

	switch r.Demand {
	case dataset.DemandStrong:
		pros = append(pros, "Strong rental demand in this market")
	case dataset.DemandWeak:
		cons = append(cons, "Weak rental demand in this market")
		recs = append(recs, "Budget for longer vacancy periods between tenants")
	}

	if r.VacancyRisk == RiskHigh {
		cons = append(cons, fmt.Sprintf("High vacancy risk (%.1f%% local vacancy rate)", r.VacancyRatePct))
	}
	if r.Appreciation10yPct >= 25 {
		pros = append(pros, fmt.Sprintf("Strong 10-year appreciation of %.0f%%", r.Appreciation10yPct))
	}
	if r.Confidence < market.ConfidenceINSEE {
		recs = append(recs, "Market data confidence is low, verify prices with local listings before committing")
	}
	return pros, cons, recs
}
