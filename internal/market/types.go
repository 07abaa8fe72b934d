// Package market resolves a price estimate for a French location from an
// ordered chain of data sources: official DVF transaction records, an
// INSEE-derived income estimate, and finally geographic proximity against the
// bundled benchmark table. The first source that yields usable data wins;
// sources are never blended.
package market

import (
	"context"
	"errors"
	"time"
)

// Source identifies the tier a price estimate was resolved from.
type Source string

const (
	SourceDVF       Source = "DVF"
	SourceINSEE     Source = "INSEE_DERIVED"
	SourceProximity Source = "PROXIMITY"
)

// Confidence is fixed per source tier so callers and tests can assert on it
// directly. The ordering DVF > INSEE > proximity is an invariant.
const (
	ConfidenceDVF       = 0.9
	ConfidenceINSEE     = 0.6
	ConfidenceProximity = 0.4
)

var (
	// ErrInvalidInput flags malformed caller parameters, e.g. an empty location.
	ErrInvalidInput = errors.New("market: invalid input")

	// ErrNoDataAvailable means every resolution tier was exhausted. The
	// resolver never synthesizes a price from nothing.
	ErrNoDataAvailable = errors.New("market: no data available for location")

	// ErrSourceUnavailable is a transient adapter failure (network, timeout).
	// Adapters return it instead of raising for "no data", which is an empty
	// result.
	ErrSourceUnavailable = errors.New("market: data source unavailable")
)

// PriceEstimate is the result of one resolution. Immutable once produced.
type PriceEstimate struct {
	Location    string  `json:"location"`
	ValuePerSqm float64 `json:"value_per_sqm"` // sale price, €/m²
	RentPerSqm  float64 `json:"rent_per_sqm"`  // monthly rent, €/m²
	Source      Source  `json:"source"`
	Confidence  float64 `json:"confidence"`
	SampleSize  int     `json:"sample_size"`
}

// GeoPoint is a geocoded location.
type GeoPoint struct {
	Lat      float64
	Lon      float64
	CityCode string // INSEE commune code
	Label    string
}

// Transaction is one DVF sale record, already reduced to €/m².
type Transaction struct {
	PricePerSqm float64
	Date        time.Time
}

// IncomeStats carries the INSEE household income figures for a commune.
type IncomeStats struct {
	MedianAnnualIncome float64
}

// Geocoder resolves a free-text location to coordinates and a commune code.
// A nil result with nil error means the location could not be geocoded.
type Geocoder interface {
	Locate(ctx context.Context, query string) (*GeoPoint, error)
}

// DVFClient queries official transaction records around a point.
// No matching records is an empty slice, not an error.
type DVFClient interface {
	Transactions(ctx context.Context, lat, lon float64, windowMonths int) ([]Transaction, error)
}

// INSEEClient queries income statistics for a commune.
// A nil result with nil error means no statistics exist for the commune.
type INSEEClient interface {
	HouseholdIncome(ctx context.Context, communeCode string) (*IncomeStats, error)
}
