package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"immoscope/internal/analysis"
	"immoscope/internal/listings"
	"immoscope/internal/market"
	"immoscope/internal/renovation"
)

// Investment profiles accepted by analyze_investment_opportunity.
const (
	profileRental = "rental_investor"
	profileDealer = "property_dealer"
	profileBoth   = "both"
)

// defaultSurfaceSqm is assumed when an analysis request carries no surface.
const defaultSurfaceSqm = 50.0

// defaultRenovationTier is assumed for flip analyses when the caller does not
// state the renovation scope.
const defaultRenovationTier = "partial"

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("search_properties",
		mcp.WithDescription("Search indicative property listings for a French location, derived from resolved market data (no live scraping)."),
		mcp.WithString("location", mcp.Required(), mcp.Description("City or arrondissement, e.g. 'Paris 11e' or 'Lyon'")),
		mcp.WithString("transaction_type", mcp.Description("sale or rental"), mcp.Enum(listings.TransactionSale, listings.TransactionRental), mcp.DefaultString(listings.TransactionSale)),
		mcp.WithString("property_type", mcp.Description("apartment or house; omit for both"), mcp.Enum(listings.PropertyApartment, listings.PropertyHouse)),
		mcp.WithNumber("min_price", mcp.Description("Minimum price in €")),
		mcp.WithNumber("max_price", mcp.Description("Maximum price in €")),
		mcp.WithNumber("min_surface", mcp.Description("Minimum surface in m²")),
		mcp.WithNumber("max_surface", mcp.Description("Maximum surface in m²")),
		mcp.WithNumber("rooms", mcp.Description("Exact number of rooms")),
	), s.handleSearchProperties)

	s.mcpServer.AddTool(mcp.NewTool("analyze_investment_opportunity",
		mcp.WithDescription("Score an investment opportunity in a French location as a rental hold, a renovate-and-resell flip, or both."),
		mcp.WithString("location", mcp.Required(), mcp.Description("City or arrondissement")),
		mcp.WithString("investment_profile", mcp.Description("rental_investor, property_dealer or both"), mcp.Enum(profileRental, profileDealer, profileBoth), mcp.DefaultString(profileBoth)),
		mcp.WithNumber("surface_area", mcp.Description("Surface in m²; derived from rooms when omitted, else defaults to 50")),
		mcp.WithNumber("rooms", mcp.Description("Number of rooms, used to size the property when no surface is given")),
		mcp.WithString("property_type", mcp.Description("apartment or house"), mcp.Enum(listings.PropertyApartment, listings.PropertyHouse)),
		mcp.WithNumber("min_price", mcp.Description("Lower bound of the purchase budget in €")),
		mcp.WithNumber("max_price", mcp.Description("Upper bound of the purchase budget in €; defaults to the market value of the surface")),
		mcp.WithString("renovation_tier", mcp.Description("Renovation scope for the flip analysis"), mcp.DefaultString(defaultRenovationTier)),
	), s.handleAnalyzeOpportunity)

	s.mcpServer.AddTool(mcp.NewTool("compare_investment_strategies",
		mcp.WithDescription("Run the rental and flip analyses on one property and recommend a strategy."),
		mcp.WithString("location", mcp.Required(), mcp.Description("City or arrondissement")),
		mcp.WithNumber("price", mcp.Required(), mcp.Description("Purchase price in €")),
		mcp.WithNumber("surface", mcp.Required(), mcp.Description("Surface in m²")),
		mcp.WithString("renovation_tier", mcp.Description("Renovation scope for the flip side"), mcp.DefaultString(defaultRenovationTier)),
	), s.handleCompareStrategies)

	s.mcpServer.AddTool(mcp.NewTool("get_market_data",
		mcp.WithDescription("Resolve the market price estimate for a French location, with data source, confidence and sample size."),
		mcp.WithString("location", mcp.Required(), mcp.Description("City or arrondissement")),
	), s.handleGetMarketData)

	s.mcpServer.AddTool(mcp.NewTool("get_property_summary",
		mcp.WithDescription("Compact sale and rent price digest for a French location."),
		mcp.WithString("location", mcp.Required(), mcp.Description("City or arrondissement")),
	), s.handleGetPropertySummary)

	s.mcpServer.AddTool(mcp.NewTool("get_renovation_costs",
		mcp.WithDescription("Regionally adjusted renovation cost table for a location and surface."),
		mcp.WithString("location", mcp.Required(), mcp.Description("City or arrondissement")),
		mcp.WithNumber("surface", mcp.Required(), mcp.Description("Surface in m²")),
	), s.handleGetRenovationCosts)
}

func (s *Server) handleSearchProperties(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	location, err := req.RequireString("location")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results, err := s.generator.Search(ctx, listings.Criteria{
		Location:        location,
		TransactionType: req.GetString("transaction_type", listings.TransactionSale),
		PropertyType:    req.GetString("property_type", ""),
		MinPrice:        req.GetFloat("min_price", 0),
		MaxPrice:        req.GetFloat("max_price", 0),
		MinSurfaceSqm:   req.GetFloat("min_surface", 0),
		MaxSurfaceSqm:   req.GetFloat("max_surface", 0),
		Rooms:           req.GetInt("rooms", 0),
	})
	if err != nil {
		return s.toolError("search_properties", err), nil
	}

	return s.jsonResult(struct {
		Location string             `json:"location"`
		Count    int                `json:"count"`
		Listings []listings.Listing `json:"listings"`
	}{location, len(results), results})
}

func (s *Server) handleAnalyzeOpportunity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	location, err := req.RequireString("location")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	profile := req.GetString("investment_profile", profileBoth)
	switch profile {
	case profileRental, profileDealer, profileBoth:
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown investment profile %q", profile)), nil
	}

	estimate, err := s.resolver.Resolve(ctx, location)
	if err != nil {
		return s.toolError("analyze_investment_opportunity", err), nil
	}

	surface := req.GetFloat("surface_area", 0)
	if surface <= 0 {
		if typical, ok := listings.TypicalSurface(req.GetString("property_type", ""), req.GetInt("rooms", 0)); ok {
			surface = typical
		} else {
			surface = defaultSurfaceSqm
		}
	}
	// The analysis runs on the top of the stated budget; without one, on the
	// market value of the surface.
	purchase := req.GetFloat("max_price", 0)
	if purchase <= 0 {
		purchase = req.GetFloat("min_price", 0)
	}
	if purchase <= 0 {
		purchase = estimate.ValuePerSqm * surface
	}

	out := struct {
		Estimate *market.PriceEstimate    `json:"market_data"`
		Rental   *analysis.RentalAnalysis `json:"rental_analysis,omitempty"`
		Dealer   *analysis.DealerAnalysis `json:"dealer_analysis,omitempty"`
	}{Estimate: estimate}

	if profile == profileRental || profile == profileBoth {
		rental, err := s.rental.Analyze(analysis.RentalInput{
			Estimate:      estimate,
			SurfaceSqm:    surface,
			PurchasePrice: purchase,
		})
		if err != nil {
			return s.toolError("analyze_investment_opportunity", err), nil
		}
		out.Rental = rental
	}
	if profile == profileDealer || profile == profileBoth {
		dealer, err := s.dealer.Analyze(analysis.DealerInput{
			Estimate:       estimate,
			RenovationTier: req.GetString("renovation_tier", defaultRenovationTier),
			SurfaceSqm:     surface,
			PurchasePrice:  purchase,
		})
		if err != nil {
			return s.toolError("analyze_investment_opportunity", err), nil
		}
		out.Dealer = dealer
	}

	return s.jsonResult(out)
}

func (s *Server) handleCompareStrategies(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	location, err := req.RequireString("location")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	price, err := req.RequireFloat("price")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	surface, err := req.RequireFloat("surface")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	estimate, err := s.resolver.Resolve(ctx, location)
	if err != nil {
		return s.toolError("compare_investment_strategies", err), nil
	}

	comparison, err := analysis.Compare(s.rental, s.dealer,
		analysis.RentalInput{
			Estimate:      estimate,
			SurfaceSqm:    surface,
			PurchasePrice: price,
		},
		analysis.DealerInput{
			Estimate:       estimate,
			RenovationTier: req.GetString("renovation_tier", defaultRenovationTier),
			SurfaceSqm:     surface,
			PurchasePrice:  price,
		})
	if err != nil {
		return s.toolError("compare_investment_strategies", err), nil
	}

	return s.jsonResult(comparison)
}

func (s *Server) handleGetMarketData(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	location, err := req.RequireString("location")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	estimate, err := s.resolver.Resolve(ctx, location)
	if err != nil {
		return s.toolError("get_market_data", err), nil
	}
	return s.jsonResult(estimate)
}

func (s *Server) handleGetPropertySummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	location, err := req.RequireString("location")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	estimate, err := s.resolver.Resolve(ctx, location)
	if err != nil {
		return s.toolError("get_property_summary", err), nil
	}

	var grossYield float64
	if estimate.ValuePerSqm > 0 {
		grossYield = estimate.RentPerSqm * 12 / estimate.ValuePerSqm * 100
	}

	return s.jsonResult(struct {
		Location      string  `json:"location"`
		SalePerSqm    float64 `json:"sale_price_per_sqm"`
		RentPerSqm    float64 `json:"monthly_rent_per_sqm"`
		GrossYieldPct float64 `json:"indicative_gross_yield_pct"`
		Source        string  `json:"source"`
		Confidence    float64 `json:"confidence"`
		SampleSize    int     `json:"sample_size"`
	}{
		Location:      estimate.Location,
		SalePerSqm:    estimate.ValuePerSqm,
		RentPerSqm:    estimate.RentPerSqm,
		GrossYieldPct: grossYield,
		Source:        string(estimate.Source),
		Confidence:    estimate.Confidence,
		SampleSize:    estimate.SampleSize,
	})
}

func (s *Server) handleGetRenovationCosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	location, err := req.RequireString("location")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	surface, err := req.RequireFloat("surface")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if surface <= 0 {
		return mcp.NewToolResultError("surface must be positive"), nil
	}

	table := s.adjuster.Table(location)

	type tierCost struct {
		Tier          string  `json:"tier"`
		Label         string  `json:"label"`
		CostPerSqm    float64 `json:"cost_per_sqm"`
		Total         float64 `json:"total"`
		DurationWeeks int     `json:"duration_weeks"`
	}
	out := struct {
		Location   string     `json:"location"`
		SurfaceSqm float64    `json:"surface_sqm"`
		Region     string     `json:"region,omitempty"`
		Multiplier float64    `json:"region_multiplier"`
		Tiers      []tierCost `json:"tiers"`
	}{Location: location, SurfaceSqm: surface, Multiplier: renovation.DefaultMultiplier}

	for _, cost := range table {
		out.Region = cost.Region
		out.Multiplier = cost.Multiplier
		out.Tiers = append(out.Tiers, tierCost{
			Tier:          cost.Tier.Key,
			Label:         cost.Tier.Label,
			CostPerSqm:    cost.CostPerSqm,
			Total:         cost.TotalFor(surface),
			DurationWeeks: cost.DurationWeeks,
		})
	}

	return s.jsonResult(out)
}

// jsonResult marshals a payload as an indented JSON text result.
func (s *Server) jsonResult(payload any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}

// toolError translates domain errors into MCP tool errors. Transient and
// domain failures never cross the boundary as protocol errors.
func (s *Server) toolError(tool string, err error) *mcp.CallToolResult {
	s.logger.Warn("Tool call failed", "tool", tool, "error", err)

	switch {
	case errors.Is(err, market.ErrInvalidInput), errors.Is(err, analysis.ErrInvalidInput):
		return mcp.NewToolResultError(fmt.Sprintf("invalid input: %v", err))
	case errors.Is(err, market.ErrNoDataAvailable):
		return mcp.NewToolResultError(fmt.Sprintf("no market data available: %v", err))
	case errors.Is(err, market.ErrSourceUnavailable):
		return mcp.NewToolResultError(fmt.Sprintf("data source unavailable, try again later: %v", err))
	case errors.Is(err, analysis.ErrInsufficientData):
		return mcp.NewToolResultError(fmt.Sprintf("insufficient market data: %v", err))
	default:
		return mcp.NewToolResultError(fmt.Sprintf("internal error: %v", err))
	}
}
