// Package adapters holds the thin HTTP clients for the public French data
// APIs consumed by the market resolver: the national address/geocoding
// service, the DVF transaction records API, and the INSEE statistics series.
//
// Every client applies a per-call timeout. Transport failures surface as
// market.ErrSourceUnavailable so the resolver can advance to its next tier;
// "no data" is always an empty result, never an error.
package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"immoscope/internal/logging"
	"immoscope/internal/market"
)

// GeocodeClient talks to the api-adresse.data.gouv.fr address search API.
type GeocodeClient struct {
	baseURL string
	http    *http.Client
	logger  *logging.AppLogger
}

func NewGeocodeClient(baseURL string, timeout time.Duration, logger *logging.AppLogger) *GeocodeClient {
	return &GeocodeClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"` // [lon, lat]
		} `json:"geometry"`
		Properties struct {
			CityCode string `json:"citycode"`
			Label    string `json:"label"`
		} `json:"properties"`
	} `json:"features"`
}

// Locate geocodes a free-text location. Returns nil when the address service
// has no match.
func (c *GeocodeClient) Locate(ctx context.Context, query string) (*market.GeoPoint, error) {
	endpoint := fmt.Sprintf("%s/search/?%s", c.baseURL, url.Values{
		"q":     {query},
		"limit": {"1"},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: geocode request failed: %v", market.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: geocode service returned HTTP %d", market.ErrSourceUnavailable, resp.StatusCode)
	}

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: malformed geocode response: %v", market.ErrSourceUnavailable, err)
	}

	if len(body.Features) == 0 || len(body.Features[0].Geometry.Coordinates) < 2 {
		c.logger.Debug("No geocoding match", "query", query)
		return nil, nil
	}

	feature := body.Features[0]
	point := &market.GeoPoint{
		Lat:      feature.Geometry.Coordinates[1],
		Lon:      feature.Geometry.Coordinates[0],
		CityCode: feature.Properties.CityCode,
		Label:    feature.Properties.Label,
	}

	c.logger.Debug("Geocoded location", "query", query, "label", point.Label, "citycode", point.CityCode)
	return point, nil
}
