// Package renovation scales the fixed renovation tier table by a macro-region
// cost multiplier derived from the location. An unmapped region falls back to
// the neutral multiplier and is never an error.
package renovation

import (
	"errors"
	"fmt"
	"strings"

	"immoscope/internal/dataset"
	"immoscope/internal/logging"
	"immoscope/internal/market"
)

// DefaultMultiplier applies when a location maps to no known macro-region.
const DefaultMultiplier = 1.0

// ErrUnknownTier flags a renovation tier outside the fixed scale.
var ErrUnknownTier = errors.New("renovation: unknown renovation tier")

// AdjustedCost is a renovation tier priced for a specific location.
type AdjustedCost struct {
	Tier          dataset.RenovationTier `json:"tier"`
	Region        string                 `json:"region,omitempty"` // empty when unmapped
	Multiplier    float64                `json:"multiplier"`
	CostPerSqm    float64                `json:"cost_per_sqm"`
	DurationWeeks int                    `json:"duration_weeks"`
}

// TotalFor returns the full renovation cost for a surface.
func (c AdjustedCost) TotalFor(surfaceSqm float64) float64 {
	return c.CostPerSqm * surfaceSqm
}

// BreakdownFor splits the total cost for a surface across work items.
func (c AdjustedCost) BreakdownFor(surfaceSqm float64) map[string]float64 {
	total := c.TotalFor(surfaceSqm)
	out := make(map[string]float64, len(c.Tier.Breakdown))
	for item, share := range c.Tier.Breakdown {
		out[item] = total * share
	}
	return out
}

// Adjuster prices renovation tiers against the benchmark dataset.
type Adjuster struct {
	ds     *dataset.Dataset
	logger *logging.AppLogger
}

func NewAdjuster(ds *dataset.Dataset, logger *logging.AppLogger) *Adjuster {
	return &Adjuster{ds: ds, logger: logger}
}

// Adjust prices one tier for a location.
func (a *Adjuster) Adjust(tierKey, location string) (*AdjustedCost, error) {
	tier, ok := a.ds.Tier(tierKey)
	if !ok {
		return nil, fmt.Errorf("%w: %q (valid tiers: %s)", ErrUnknownTier, tierKey, strings.Join(a.TierKeys(), ", "))
	}

	multiplier, region := a.multiplierFor(location)

	return &AdjustedCost{
		Tier:          tier,
		Region:        region,
		Multiplier:    multiplier,
		CostPerSqm:    tier.CostPerSqm * multiplier,
		DurationWeeks: tier.DurationWeeks,
	}, nil
}

// Table prices the whole tier scale for a location, in tier order.
func (a *Adjuster) Table(location string) []AdjustedCost {
	multiplier, region := a.multiplierFor(location)

	tiers := a.ds.Tiers()
	out := make([]AdjustedCost, 0, len(tiers))
	for _, tier := range tiers {
		out = append(out, AdjustedCost{
			Tier:          tier,
			Region:        region,
			Multiplier:    multiplier,
			CostPerSqm:    tier.CostPerSqm * multiplier,
			DurationWeeks: tier.DurationWeeks,
		})
	}
	return out
}

// TierKeys returns the valid tier keys in scale order.
func (a *Adjuster) TierKeys() []string {
	tiers := a.ds.Tiers()
	keys := make([]string, 0, len(tiers))
	for _, tier := range tiers {
		keys = append(keys, tier.Key)
	}
	return keys
}

func (a *Adjuster) multiplierFor(location string) (float64, string) {
	q, err := market.ParseLocation(location)
	if err != nil {
		a.logger.Debug("Unparseable location for regional adjustment, using default multiplier", "location", location)
		return DefaultMultiplier, ""
	}

	region, ok := a.ds.RegionFor(q.City)
	if !ok {
		a.logger.Debug("No regional cost mapping for location, using default multiplier",
			"location", q.Normalized, "multiplier", DefaultMultiplier)
		return DefaultMultiplier, ""
	}

	return region.Multiplier, region.Key
}
