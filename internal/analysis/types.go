// Package analysis computes investment figures and 0-100 scores from a
// resolved price estimate: buy-and-hold rental yield on one side, a
// buy-renovate-resell (dealer) margin on the other. All results are derived
// per request and never persisted.
package analysis

import "errors"

var (
	// ErrInvalidInput flags malformed or out-of-range caller parameters.
	ErrInvalidInput = errors.New("analysis: invalid input")

	// ErrInsufficientData means the analyzer was asked to compute on an
	// unresolved price estimate. It is surfaced, never defaulted to a guess.
	ErrInsufficientData = errors.New("analysis: insufficient market data")
)

// RiskLevel grades a single risk dimension.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// LiquidityLevel grades how fast a market absorbs a resale.
type LiquidityLevel string

const (
	LiquidityStrong LiquidityLevel = "strong"
	LiquidityMedium LiquidityLevel = "medium"
	LiquidityWeak   LiquidityLevel = "weak"
)

// Shared financial assumptions, named so tests can assert on them.
const (
	// ManagementFeeRate is the standard rental management fee applied when
	// charges are estimated rather than supplied.
	ManagementFeeRate = 0.08

	// SellingFeeRate covers notary and agency fees on resale.
	SellingFeeRate = 0.08

	// RenovatedResalePremium is the market appreciation assumed for a fully
	// renovated property over its current per-m² estimate.
	RenovatedResalePremium = 0.10
)

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func round1(v float64) float64 {
	if v < 0 {
		return float64(int(v*10-0.5)) / 10
	}
	return float64(int(v*10+0.5)) / 10
}
