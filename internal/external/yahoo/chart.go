package yahoo

import (
	"fmt"
	"time"

	"github.com/HaelyDee/tax-help/internal/valuation"
)

// chartResponse mirrors the v8/finance/chart JSON envelope. Only the
// fields needed for daily closes are decoded.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// pricePoints converts the chart envelope into sparse daily closes.
// Null closes (suspended days the feed still lists) are skipped; a
// duplicate calendar day keeps the later quote.
func (r *chartResponse) pricePoints() ([]valuation.PricePoint, error) {
	if r.Chart.Error != nil {
		return nil, fmt.Errorf("feed error %s (%s): %w",
			r.Chart.Error.Code, r.Chart.Error.Description, valuation.ErrDataUnavailable)
	}
	if len(r.Chart.Result) == 0 {
		return nil, valuation.ErrDataUnavailable
	}

	result := r.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, valuation.ErrDataUnavailable
	}

	closes := result.Indicators.Quote[0].Close
	if len(closes) != len(result.Timestamp) {
		return nil, fmt.Errorf("timestamp/close length mismatch: %d vs %d",
			len(result.Timestamp), len(closes))
	}

	var points []valuation.PricePoint
	var lastDay time.Time
	for i, ts := range result.Timestamp {
		if closes[i] == nil {
			continue
		}

		day := valuation.DateOnly(time.Unix(ts, 0).UTC())
		if !lastDay.IsZero() && day.Equal(lastDay) {
			// Intraday correction row for the same day: keep the later quote.
			points[len(points)-1].Close = *closes[i]
			continue
		}

		points = append(points, valuation.PricePoint{Date: day, Close: *closes[i]})
		lastDay = day
	}

	return points, nil
}
