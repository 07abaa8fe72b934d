// Package dataset loads the bundled reference benchmarks: rental and sale
// prices per m² for reference locations, the renovation tier table, and the
// macro-region cost multipliers. The data is loaded once at startup and is
// immutable for the lifetime of the process.
package dataset

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
)

//go:embed benchmarks.json
var bundled []byte

// DemandLevel categorizes rental demand for a reference location.
type DemandLevel string

const (
	DemandStrong DemandLevel = "strong"
	DemandMedium DemandLevel = "medium"
	DemandWeak   DemandLevel = "weak"
)

// ReferenceLocation is one row of the benchmark table.
type ReferenceLocation struct {
	Key              string      `json:"key"`
	Label            string      `json:"label"`
	Lat              float64     `json:"lat"`
	Lon              float64     `json:"lon"`
	RentSqm          float64     `json:"rent_sqm"`
	SaleSqm          float64     `json:"sale_sqm"`
	VacancyRate      float64     `json:"vacancy_rate"`
	Demand           DemandLevel `json:"demand"`
	Appreciation10y  float64     `json:"appreciation_10y"`
	PopulationFactor float64     `json:"population_factor"`
}

// RenovationTier is one entry of the fixed, ordered renovation scale.
// Tiers are strictly increasing in both cost per m² and duration.
type RenovationTier struct {
	Key           string             `json:"key"`
	Label         string             `json:"label"`
	CostPerSqm    float64            `json:"cost_per_sqm"`
	DurationWeeks int                `json:"duration_weeks"`
	Breakdown     map[string]float64 `json:"breakdown"`
}

// Region maps a set of cities to a renovation-cost multiplier.
type Region struct {
	Key        string   `json:"key"`
	Multiplier float64  `json:"multiplier"`
	Cities     []string `json:"cities"`
}

// Dataset is the parsed, validated benchmark file.
type Dataset struct {
	Locations       []ReferenceLocation `json:"locations"`
	RenovationTiers []RenovationTier    `json:"renovation_tiers"`
	Regions         []Region            `json:"regions"`

	byKey        map[string]*ReferenceLocation
	tierByKey    map[string]*RenovationTier
	regionByCity map[string]*Region
}

// Load parses the bundled benchmark file.
func Load() (*Dataset, error) {
	return parse(bundled)
}

// LoadFile parses a benchmark file from disk, for deployments that override
// the bundled data.
func LoadFile(path string) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}
	return parse(raw)
}

func parse(raw []byte) (*Dataset, error) {
	var ds Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse benchmark dataset: %w", err)
	}

	if err := ds.validate(); err != nil {
		return nil, fmt.Errorf("invalid benchmark dataset: %w", err)
	}

	ds.byKey = make(map[string]*ReferenceLocation, len(ds.Locations))
	for i := range ds.Locations {
		ds.byKey[ds.Locations[i].Key] = &ds.Locations[i]
	}
	ds.tierByKey = make(map[string]*RenovationTier, len(ds.RenovationTiers))
	for i := range ds.RenovationTiers {
		ds.tierByKey[ds.RenovationTiers[i].Key] = &ds.RenovationTiers[i]
	}
	ds.regionByCity = make(map[string]*Region)
	for i := range ds.Regions {
		for _, city := range ds.Regions[i].Cities {
			ds.regionByCity[city] = &ds.Regions[i]
		}
	}

	return &ds, nil
}

func (ds *Dataset) validate() error {
	if len(ds.Locations) == 0 {
		return fmt.Errorf("no reference locations")
	}
	for _, loc := range ds.Locations {
		if loc.Key == "" {
			return fmt.Errorf("reference location with empty key")
		}
		if loc.RentSqm <= 0 || loc.SaleSqm <= 0 {
			return fmt.Errorf("location %q: non-positive benchmark price", loc.Key)
		}
		if loc.PopulationFactor <= 0 {
			return fmt.Errorf("location %q: population factor must be positive", loc.Key)
		}
	}

	if len(ds.RenovationTiers) == 0 {
		return fmt.Errorf("no renovation tiers")
	}
	// The tier scale is ordered: cost and duration must both strictly increase.
	for i, tier := range ds.RenovationTiers {
		if tier.CostPerSqm <= 0 || tier.DurationWeeks <= 0 {
			return fmt.Errorf("tier %q: non-positive cost or duration", tier.Key)
		}
		if i > 0 {
			prev := ds.RenovationTiers[i-1]
			if tier.CostPerSqm <= prev.CostPerSqm {
				return fmt.Errorf("tier %q: cost must exceed tier %q", tier.Key, prev.Key)
			}
			if tier.DurationWeeks <= prev.DurationWeeks {
				return fmt.Errorf("tier %q: duration must exceed tier %q", tier.Key, prev.Key)
			}
		}
	}

	for _, region := range ds.Regions {
		if region.Multiplier <= 0 {
			return fmt.Errorf("region %q: multiplier must be positive", region.Key)
		}
	}

	return nil
}

// Location returns the reference location for an exact benchmark key.
func (ds *Dataset) Location(key string) (ReferenceLocation, bool) {
	loc, ok := ds.byKey[key]
	if !ok {
		return ReferenceLocation{}, false
	}
	return *loc, true
}

// Tier returns the renovation tier for a key.
func (ds *Dataset) Tier(key string) (RenovationTier, bool) {
	tier, ok := ds.tierByKey[key]
	if !ok {
		return RenovationTier{}, false
	}
	return *tier, true
}

// Tiers returns the full tier scale in its fixed order.
func (ds *Dataset) Tiers() []RenovationTier {
	out := make([]RenovationTier, len(ds.RenovationTiers))
	copy(out, ds.RenovationTiers)
	return out
}

// RegionFor returns the macro-region covering a city key, if mapped.
func (ds *Dataset) RegionFor(city string) (Region, bool) {
	region, ok := ds.regionByCity[city]
	if !ok {
		return Region{}, false
	}
	return *region, true
}

// Nearest returns the n reference locations closest to the given coordinates,
// ordered by distance.
func (ds *Dataset) Nearest(lat, lon float64, n int) []ReferenceLocation {
	type scored struct {
		loc  ReferenceLocation
		dist float64
	}
	all := make([]scored, 0, len(ds.Locations))
	for _, loc := range ds.Locations {
		all = append(all, scored{loc: loc, dist: HaversineKm(lat, lon, loc.Lat, loc.Lon)})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].dist < all[j].dist })

	if n > len(all) {
		n = len(all)
	}
	out := make([]ReferenceLocation, 0, n)
	for _, s := range all[:n] {
		out = append(out, s.loc)
	}
	return out
}

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two points in km.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
