package valuation

import "time"

// PricePoint is one trading day's closing quote as reported by a feed.
// Feeds are sparse: non-trading days are simply absent.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// Entry is one reconciled valuation day: both quotes defined on the same
// calendar date and the resulting KRW conversion.
type Entry struct {
	Date       time.Time `json:"date"`
	StockPrice float64   `json:"stock_price"`
	FXRate     float64   `json:"fx_rate"`
	KRWValue   float64   `json:"krw_value"`
}

// Series is a reconciled valuation series: dates strictly ascending, no
// duplicates, read-only after construction.
type Series []Entry

// Average returns the unweighted arithmetic mean of KRWValue over all
// entries. A series with zero entries has no defined average and yields
// ErrEmptySeries, never NaN or a silent zero.
func Average(s Series) (float64, error) {
	if len(s) == 0 {
		return 0, ErrEmptySeries
	}

	var sum float64
	for _, e := range s {
		sum += e.KRWValue
	}
	return sum / float64(len(s)), nil
}
