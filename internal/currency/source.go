package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPSource reads rates from a JSON endpoint shaped like
// {"rates": {"ARS": 1000.5, ...}} with USD as the base.
type HTTPSource struct {
	URL      string
	Currency string
	Client   *http.Client
}

// NewHTTPSource returns a source with a short client timeout.
func NewHTTPSource(url, currency string) *HTTPSource {
	return &HTTPSource{
		URL:      url,
		Currency: strings.ToUpper(currency),
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type ratesResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// FetchRate implements Source.
func (s *HTTPSource) FetchRate(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return 0, fmt.Errorf("build rate request: %w", err)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetch rate: unexpected status %d", resp.StatusCode)
	}
	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode rate response: %w", err)
	}
	rate, ok := body.Rates[s.Currency]
	if !ok {
		return 0, fmt.Errorf("rate for %s missing from response", s.Currency)
	}
	return rate, nil
}
