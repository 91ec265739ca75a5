// Package yahoo fetches daily closing prices from the Yahoo Finance
// chart API. Equities and FX pairs (e.g. "USDKRW=X") go through the
// same endpoint, so one client serves both feeds.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/HaelyDee/tax-help/internal/valuation"
	"github.com/HaelyDee/tax-help/pkg/config"
	"github.com/HaelyDee/tax-help/pkg/httputil"
	"github.com/HaelyDee/tax-help/pkg/logger"
)

// Yahoo blocks default Go user agents.
const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// Client handles communication with the Yahoo Finance chart API
// ⭐ SSOT: Yahoo Finance 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	limiter    *rate.Limiter
}

// Client implements the valuation engine's feed contract.
var _ valuation.Feed = (*Client)(nil)

// NewClient creates a new Yahoo Finance client.
func NewClient(cfg config.YahooConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    cfg.BaseURL,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
	}
}

// DailyCloses fetches the sparse daily close series for a symbol over
// [start, end] inclusive. The chart API's period2 is exclusive, so one
// extra day is requested to keep the window's end date included.
func (c *Client) DailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]valuation.PricePoint, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	startDay := valuation.DateOnly(start)
	endExclusive := valuation.DateOnly(end).AddDate(0, 0, 1)

	q := url.Values{}
	q.Set("period1", fmt.Sprintf("%d", startDay.Unix()))
	q.Set("period2", fmt.Sprintf("%d", endExclusive.Unix()))
	q.Set("interval", "1d")
	q.Set("events", "history")

	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	// Yahoo reports unknown/delisted symbols as 404 with an error body.
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("symbol %s not found: %w", symbol, valuation.ErrDataUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var body chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response failed: %w", err)
	}

	points, err := body.pricePoints()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"from":   startDay.Format(valuation.DateFormat),
		"to":     valuation.DateOnly(end).Format(valuation.DateFormat),
		"count":  len(points),
	}).Debug("Fetched daily closes")

	return points, nil
}
