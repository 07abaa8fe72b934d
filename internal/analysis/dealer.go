package analysis

import (
	"errors"
	"fmt"

	"immoscope/internal/dataset"
	"immoscope/internal/logging"
	"immoscope/internal/market"
	"immoscope/internal/renovation"
)

// Dealer score weights, summing to 1.
const (
	dealerMarginWeight    = 0.50
	dealerRiskWeight      = 0.30
	dealerLiquidityWeight = 0.20

	// targetGrossMarginPct is the gross margin that earns a full margin
	// sub-score.
	targetGrossMarginPct = 25.0

	// lossScoreCap bounds the score of any flip whose net margin is
	// negative. Risk and liquidity sub-scores alone could otherwise push a
	// money-losing deal to 50, so losses are capped strictly below it.
	lossScoreCap = 45.0
)

// DealerInput carries the figures for a buy-renovate-resell analysis.
type DealerInput struct {
	Estimate       *market.PriceEstimate
	RenovationTier string
	SurfaceSqm     float64
	PurchasePrice  float64
}

// DealerAnalysis is the full flip result.
type DealerAnalysis struct {
	Location string `json:"location"`

	RenovationTier      string             `json:"renovation_tier"`
	RenovationCost      float64            `json:"renovation_cost"`
	RenovationWeeks     int                `json:"renovation_weeks"`
	RenovationBreakdown map[string]float64 `json:"renovation_breakdown"`
	RegionMultiplier    float64            `json:"region_multiplier"`

	ResaleValue     float64 `json:"resale_value"`
	TotalInvestment float64 `json:"total_investment"`
	GrossMargin     float64 `json:"gross_margin"`
	GrossMarginPct  float64 `json:"gross_margin_pct"`
	SellingFees     float64 `json:"selling_fees"`
	NetMargin       float64 `json:"net_margin"`

	MarketRisk          RiskLevel      `json:"market_risk"`
	RenovationRisk      RiskLevel      `json:"renovation_risk"`
	LiquidityRisk       RiskLevel      `json:"liquidity_risk"`
	MarketLiquidity     LiquidityLevel `json:"market_liquidity"`
	EstimatedSaleMonths int            `json:"estimated_sale_months"`

	Score            float64  `json:"score"`
	OpportunityLevel string   `json:"opportunity_level"`
	Confidence       float64  `json:"confidence"`
	ActionPlan       []string `json:"action_plan"`
	Alerts           []string `json:"alerts"`
}

// DealerAnalyzer scores buy-renovate-resell operations.
type DealerAnalyzer struct {
	ds       *dataset.Dataset
	adjuster *renovation.Adjuster
	logger   *logging.AppLogger
}

func NewDealerAnalyzer(ds *dataset.Dataset, adjuster *renovation.Adjuster, logger *logging.AppLogger) *DealerAnalyzer {
	return &DealerAnalyzer{ds: ds, adjuster: adjuster, logger: logger}
}

// Analyze prices the renovation, projects the renovated resale and scores the
// operation. A renovation tier outside the fixed scale is an invalid input.
func (a *DealerAnalyzer) Analyze(in DealerInput) (*DealerAnalysis, error) {
	if in.PurchasePrice <= 0 {
		return nil, fmt.Errorf("%w: purchase price must be positive", ErrInvalidInput)
	}
	if in.SurfaceSqm <= 0 {
		return nil, fmt.Errorf("%w: surface must be positive", ErrInvalidInput)
	}
	if in.Estimate == nil || in.Estimate.ValuePerSqm <= 0 {
		return nil, fmt.Errorf("%w: no resolved price estimate", ErrInsufficientData)
	}

	cost, err := a.adjuster.Adjust(in.RenovationTier, in.Estimate.Location)
	if err != nil {
		if errors.Is(err, renovation.ErrUnknownTier) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, err
	}

	renovationCost := cost.TotalFor(in.SurfaceSqm)
	resaleValue := in.Estimate.ValuePerSqm * in.SurfaceSqm * (1 + RenovatedResalePremium)
	totalInvestment := in.PurchasePrice + renovationCost
	grossMargin := resaleValue - totalInvestment
	grossMarginPct := grossMargin / totalInvestment * 100
	sellingFees := resaleValue * SellingFeeRate
	netMargin := grossMargin - sellingFees

	marketRisk, liquidity, saleMonths := a.marketProfile(in.Estimate.Location, resaleValue)
	renovationRisk := renovationRiskFor(cost)
	liquidityRisk := liquidityRiskFor(resaleValue)

	riskSub := (riskSubScore(marketRisk) + riskSubScore(renovationRisk) + riskSubScore(liquidityRisk)) / 3
	score := round1(dealerMarginWeight*clampScore(grossMarginPct/targetGrossMarginPct*100) +
		dealerRiskWeight*riskSub +
		dealerLiquidityWeight*liquiditySubScore(liquidity))
	if netMargin < 0 && score > lossScoreCap {
		score = lossScoreCap
	}

	out := &DealerAnalysis{
		Location:            in.Estimate.Location,
		RenovationTier:      cost.Tier.Key,
		RenovationCost:      round1(renovationCost),
		RenovationWeeks:     cost.DurationWeeks,
		RenovationBreakdown: cost.BreakdownFor(in.SurfaceSqm),
		RegionMultiplier:    cost.Multiplier,
		ResaleValue:         round1(resaleValue),
		TotalInvestment:     round1(totalInvestment),
		GrossMargin:         round1(grossMargin),
		GrossMarginPct:      round1(grossMarginPct),
		SellingFees:         round1(sellingFees),
		NetMargin:           round1(netMargin),
		MarketRisk:          marketRisk,
		RenovationRisk:      renovationRisk,
		LiquidityRisk:       liquidityRisk,
		MarketLiquidity:     liquidity,
		EstimatedSaleMonths: saleMonths,
		Score:               score,
		OpportunityLevel:    opportunityLevel(grossMarginPct),
		Confidence:          in.Estimate.Confidence,
	}
	out.ActionPlan, out.Alerts = dealerNarrative(out)

	a.logger.Debug("Dealer analysis complete",
		"location", out.Location, "net_margin", out.NetMargin, "score", out.Score)
	return out, nil
}

// marketProfile grades market risk and liquidity from the benchmark table.
// Paris absorbs resales fastest, benchmark cities are a known market, anything
// else is graded cautiously.
func (a *DealerAnalyzer) marketProfile(location string, resaleValue float64) (RiskLevel, LiquidityLevel, int) {
	risk, liquidity, months := RiskHigh, LiquidityWeak, 8

	if q, err := market.ParseLocation(location); err == nil {
		for _, key := range q.Keys() {
			loc, ok := a.ds.Location(key)
			if !ok {
				continue
			}
			if loc.Demand == dataset.DemandStrong {
				risk, liquidity, months = RiskLow, LiquidityStrong, 3
			} else {
				risk, liquidity, months = RiskMedium, LiquidityMedium, 5
			}
			break
		}
	}

	// High-end properties sit on the market longer regardless of the city.
	if resaleValue > 600_000 {
		months += 2
	}
	return risk, liquidity, months
}

func renovationRiskFor(cost *renovation.AdjustedCost) RiskLevel {
	switch {
	case cost.Tier.CostPerSqm <= 400:
		return RiskLow
	case cost.Tier.CostPerSqm <= 1000:
		return RiskMedium
	default:
		return RiskHigh
	}
}

func liquidityRiskFor(resaleValue float64) RiskLevel {
	switch {
	case resaleValue > 800_000:
		return RiskHigh
	case resaleValue > 400_000:
		return RiskMedium
	default:
		return RiskLow
	}
}

func riskSubScore(r RiskLevel) float64 {
	switch r {
	case RiskLow:
		return 100
	case RiskMedium:
		return 65
	default:
		return 30
	}
}

func liquiditySubScore(l LiquidityLevel) float64 {
	switch l {
	case LiquidityStrong:
		return 100
	case LiquidityMedium:
		return 70
	default:
		return 40
	}
}

func opportunityLevel(grossMarginPct float64) string {
	switch {
	case grossMarginPct >= 20:
		return "excellent"
	case grossMarginPct >= 15:
		return "good"
	case grossMarginPct >= 10:
		return "fair"
	default:
		return "weak"
	}
}

func dealerNarrative(d *DealerAnalysis) (plan, alerts []string) {
	plan = append(plan,
		fmt.Sprintf("Secure the property at %.0f € or below", d.TotalInvestment-d.RenovationCost),
		fmt.Sprintf("Plan a %s renovation over %d weeks (%.0f € budget)", d.RenovationTier, d.RenovationWeeks, d.RenovationCost),
		fmt.Sprintf("Target a resale at %.0f € within %d months", d.ResaleValue, d.EstimatedSaleMonths))

	if d.NetMargin < 0 {
		alerts = append(alerts, fmt.Sprintf("Projected loss of %.0f € after selling fees", -d.NetMargin))
	} else if d.GrossMarginPct < 10 {
		alerts = append(alerts, fmt.Sprintf("Thin gross margin of %.1f%%, little room for overruns", d.GrossMarginPct))
	}
	if d.RenovationRisk == RiskHigh {
		alerts = append(alerts, "Heavy renovation scope, get contractor quotes before committing")
	}
	if d.LiquidityRisk == RiskHigh {
		alerts = append(alerts, "High resale price bracket, expect a longer sale")
	}
	if d.Confidence < market.ConfidenceDVF {
		alerts = append(alerts, "Resale projection rests on estimated market data, confirm with recent comparable sales")
	}
	return plan, alerts
}
