package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"immoscope/internal/logging"
	"immoscope/internal/market"
)

// DVF query parameters: apartments within a 2 km radius, capped at 100
// records per request.
const (
	dvfRadiusMeters = 2000
	dvfRecordLimit  = 100
	dvfPropertyType = "Appartement"
)

// DVFClient queries the public "Demandes de Valeurs Foncières" API for
// official sale records around a point.
type DVFClient struct {
	baseURL string
	http    *http.Client
	logger  *logging.AppLogger
	now     func() time.Time
}

func NewDVFClient(baseURL string, timeout time.Duration, logger *logging.AppLogger) *DVFClient {
	return &DVFClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
		now:     time.Now,
	}
}

type dvfResponse struct {
	Features []struct {
		Properties struct {
			DateMutation      string  `json:"date_mutation"`
			ValeurFonciere    float64 `json:"valeur_fonciere"`
			SurfaceReelleBati float64 `json:"surface_reelle_bati"`
		} `json:"properties"`
	} `json:"features"`
}

// Transactions returns sale records within the trailing window, reduced to
// €/m². Records without a usable price or surface are skipped.
func (c *DVFClient) Transactions(ctx context.Context, lat, lon float64, windowMonths int) ([]market.Transaction, error) {
	endpoint := fmt.Sprintf("%s?%s", c.baseURL, url.Values{
		"lat":        {strconv.FormatFloat(lat, 'f', 6, 64)},
		"lon":        {strconv.FormatFloat(lon, 'f', 6, 64)},
		"dist":       {strconv.Itoa(dvfRadiusMeters)},
		"type_local": {dvfPropertyType},
		"limit":      {strconv.Itoa(dvfRecordLimit)},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build DVF request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: DVF request failed: %v", market.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: DVF service returned HTTP %d", market.ErrSourceUnavailable, resp.StatusCode)
	}

	var body dvfResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: malformed DVF response: %v", market.ErrSourceUnavailable, err)
	}

	cutoff := c.now().AddDate(0, -windowMonths, 0)

	var records []market.Transaction
	for _, feature := range body.Features {
		props := feature.Properties
		if props.ValeurFonciere <= 0 || props.SurfaceReelleBati <= 0 {
			continue
		}
		date, err := time.Parse("2006-01-02", props.DateMutation)
		if err != nil || date.Before(cutoff) {
			continue
		}
		records = append(records, market.Transaction{
			PricePerSqm: props.ValeurFonciere / props.SurfaceReelleBati,
			Date:        date,
		})
	}

	c.logger.Debug("DVF records fetched",
		"total", len(body.Features),
		"in_window", len(records),
		"window_months", windowMonths,
	)
	return records, nil
}
