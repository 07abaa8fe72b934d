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

// inseeIncomeSeries is the BDM series for household fiscal income.
const inseeIncomeSeries = "001694056"

// INSEEClient queries the INSEE BDM statistics series for commune income
// figures.
type INSEEClient struct {
	baseURL string
	http    *http.Client
	logger  *logging.AppLogger
}

func NewINSEEClient(baseURL string, timeout time.Duration, logger *logging.AppLogger) *INSEEClient {
	return &INSEEClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type inseeResponse struct {
	Obs []struct {
		Value float64 `json:"OBS_VALUE"`
	} `json:"Obs"`
}

// HouseholdIncome returns the latest income observation for a commune, or nil
// when the series has no data for it.
func (c *INSEEClient) HouseholdIncome(ctx context.Context, communeCode string) (*market.IncomeStats, error) {
	endpoint := fmt.Sprintf("%s/series?%s", c.baseURL, url.Values{
		"idbank":  {inseeIncomeSeries},
		"commune": {communeCode},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build INSEE request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: INSEE request failed: %v", market.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: INSEE service returned HTTP %d", market.ErrSourceUnavailable, resp.StatusCode)
	}

	var body inseeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: malformed INSEE response: %v", market.ErrSourceUnavailable, err)
	}

	if len(body.Obs) == 0 {
		c.logger.Debug("No INSEE observations for commune", "commune", communeCode)
		return nil, nil
	}

	latest := body.Obs[len(body.Obs)-1].Value
	if latest <= 0 {
		return nil, nil
	}

	c.logger.Debug("INSEE income fetched", "commune", communeCode, "income", latest)
	return &market.IncomeStats{MedianAnnualIncome: latest}, nil
}
