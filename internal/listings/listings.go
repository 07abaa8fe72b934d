// Package listings derives indicative property listings from resolved market
// data. There is no scraping: each listing is an estimate built from the
// location's resolved €/m² and a typology ladder, meant to anchor a search
// before looking at real adverts.
package listings

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"immoscope/internal/logging"
	"immoscope/internal/market"
)

// Transaction types accepted by Search.
const (
	TransactionSale   = "sale"
	TransactionRental = "rental"
)

// Property types accepted by Search.
const (
	PropertyApartment = "apartment"
	PropertyHouse     = "house"
)

// Criteria filters the generated listing ladder. Zero values mean "no bound".
type Criteria struct {
	Location        string
	TransactionType string // sale or rental; defaults to sale
	PropertyType    string // apartment, house, or empty for both
	MinPrice        float64
	MaxPrice        float64
	MinSurfaceSqm   float64
	MaxSurfaceSqm   float64
	Rooms           int
}

// Listing is one derived listing estimate.
type Listing struct {
	ID              string  `json:"id"`
	Location        string  `json:"location"`
	TransactionType string  `json:"transaction_type"`
	PropertyType    string  `json:"property_type"`
	Rooms           int     `json:"rooms"`
	SurfaceSqm      float64 `json:"surface_sqm"`
	Price           float64 `json:"price"`
	PricePerSqm     float64 `json:"price_per_sqm"`
	Condition       string  `json:"condition"`

	Source     market.Source `json:"source"`
	Confidence float64       `json:"confidence"`
}

// typology is the fixed ladder listings are derived from.
type typology struct {
	propertyType string
	rooms        int
	surfaceSqm   float64
}

var typologies = []typology{
	{PropertyApartment, 1, 25},
	{PropertyApartment, 2, 45},
	{PropertyApartment, 3, 65},
	{PropertyApartment, 4, 85},
	{PropertyHouse, 4, 100},
	{PropertyHouse, 5, 130},
}

// TypicalSurface returns the ladder surface for a typology, so analysis
// requests stated in rooms can be sized consistently with search results.
// The property type may be empty, matching the first ladder entry.
func TypicalSurface(propertyType string, rooms int) (float64, bool) {
	for _, t := range typologies {
		if propertyType != "" && t.propertyType != propertyType {
			continue
		}
		if t.rooms == rooms {
			return t.surfaceSqm, true
		}
	}
	return 0, false
}

// condition spreads: a dated property trades under the resolved €/m², a
// renovated one above it.
var conditions = []struct {
	label  string
	factor float64
}{
	{"to renovate", 0.88},
	{"good condition", 1.0},
	{"renovated", 1.08},
}

// Generator turns resolved market data into listing estimates.
type Generator struct {
	resolver *market.Resolver
	logger   *logging.AppLogger
}

func NewGenerator(resolver *market.Resolver, logger *logging.AppLogger) *Generator {
	return &Generator{resolver: resolver, logger: logger}
}

// Search resolves the location and derives the listings matching the criteria.
// An empty result is not an error; an unresolvable location is.
func (g *Generator) Search(ctx context.Context, c Criteria) ([]Listing, error) {
	if err := validateCriteria(c); err != nil {
		return nil, err
	}

	estimate, err := g.resolver.Resolve(ctx, c.Location)
	if err != nil {
		return nil, err
	}

	transaction := c.TransactionType
	if transaction == "" {
		transaction = TransactionSale
	}

	var out []Listing
	for _, t := range typologies {
		if !matchesTypology(c, t) {
			continue
		}
		for _, cond := range conditions {
			listing, ok := buildListing(estimate, t, transaction, cond.label, cond.factor, c)
			if !ok {
				continue
			}
			out = append(out, listing)
		}
	}

	g.logger.Debug("Listing search complete",
		"location", estimate.Location, "transaction", transaction, "count", len(out))
	return out, nil
}

func validateCriteria(c Criteria) error {
	if c.Location == "" {
		return fmt.Errorf("%w: empty location", market.ErrInvalidInput)
	}
	switch c.TransactionType {
	case "", TransactionSale, TransactionRental:
	default:
		return fmt.Errorf("%w: unknown transaction type %q", market.ErrInvalidInput, c.TransactionType)
	}
	switch c.PropertyType {
	case "", PropertyApartment, PropertyHouse:
	default:
		return fmt.Errorf("%w: unknown property type %q", market.ErrInvalidInput, c.PropertyType)
	}
	if c.MinPrice < 0 || c.MaxPrice < 0 || c.MinSurfaceSqm < 0 || c.MaxSurfaceSqm < 0 {
		return fmt.Errorf("%w: negative bound", market.ErrInvalidInput)
	}
	if c.MaxPrice > 0 && c.MinPrice > c.MaxPrice {
		return fmt.Errorf("%w: min price above max price", market.ErrInvalidInput)
	}
	if c.MaxSurfaceSqm > 0 && c.MinSurfaceSqm > c.MaxSurfaceSqm {
		return fmt.Errorf("%w: min surface above max surface", market.ErrInvalidInput)
	}
	return nil
}

func matchesTypology(c Criteria, t typology) bool {
	if c.PropertyType != "" && c.PropertyType != t.propertyType {
		return false
	}
	if c.Rooms > 0 && c.Rooms != t.rooms {
		return false
	}
	if c.MinSurfaceSqm > 0 && t.surfaceSqm < c.MinSurfaceSqm {
		return false
	}
	if c.MaxSurfaceSqm > 0 && t.surfaceSqm > c.MaxSurfaceSqm {
		return false
	}
	return true
}

func buildListing(estimate *market.PriceEstimate, t typology, transaction, condition string, factor float64, c Criteria) (Listing, bool) {
	perSqm := estimate.ValuePerSqm
	if transaction == TransactionRental {
		perSqm = estimate.RentPerSqm
	}
	if perSqm <= 0 {
		return Listing{}, false
	}

	perSqm *= factor
	price := perSqm * t.surfaceSqm

	if c.MinPrice > 0 && price < c.MinPrice {
		return Listing{}, false
	}
	if c.MaxPrice > 0 && price > c.MaxPrice {
		return Listing{}, false
	}

	return Listing{
		ID:              uuid.NewString(),
		Location:        estimate.Location,
		TransactionType: transaction,
		PropertyType:    t.propertyType,
		Rooms:           t.rooms,
		SurfaceSqm:      t.surfaceSqm,
		Price:           price,
		PricePerSqm:     perSqm,
		Condition:       condition,
		Source:          estimate.Source,
		Confidence:      estimate.Confidence,
	}, true
}
