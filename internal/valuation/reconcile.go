package valuation

import (
	"fmt"
	"time"
)

// Policy selects how dates missing from one of the two feeds are
// resolved when merging onto a single calendar.
type Policy string

const (
	// PolicyIntersect keeps only dates where both the stock close and
	// the FX rate were natively published ("가격이 실제로 공표된 날"만 사용).
	// This is the statutorily defensible default.
	PolicyIntersect Policy = "intersect"

	// PolicyForwardFill generates every calendar day of the window and
	// carries the most recent prior quote forward per series, back-filling
	// a leading gap from the first future quote. Matches the legacy
	// pandas reindex().ffill() behavior of the original spreadsheet tool.
	PolicyForwardFill Policy = "ffill"
)

// ParsePolicy parses a policy name from config or request input.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyIntersect, PolicyForwardFill:
		return Policy(s), nil
	case "":
		return PolicyIntersect, nil
	default:
		return "", fmt.Errorf("unknown reconciliation policy %q (valid: intersect, ffill)", s)
	}
}

// Reconcile merges a stock close series and an FX rate series, each with
// its own trading calendar and gaps, onto one timeline covering
// [start, end] inclusive. Exactly one policy applies to the whole run;
// policies are never blended. Per retained date,
// KRWValue = StockPrice × FXRate (double precision, no rounding).
func Reconcile(stock, fx []PricePoint, start, end time.Time, policy Policy) (Series, error) {
	startDay := DateOnly(start)
	endDay := DateOnly(end)

	stockByDay := indexByDay(stock, startDay, endDay)
	fxByDay := indexByDay(fx, startDay, endDay)

	switch policy {
	case PolicyForwardFill:
		return reconcileForwardFill(stockByDay, fxByDay, startDay, endDay)
	default:
		return reconcileIntersect(stockByDay, fxByDay, startDay, endDay), nil
	}
}

// indexByDay maps points inside the window by their calendar day.
// Points outside [start, end] are discarded; a duplicate date keeps the
// last occurrence, mirroring how feeds emit corrections.
func indexByDay(points []PricePoint, start, end time.Time) map[string]float64 {
	byDay := make(map[string]float64, len(points))
	for _, p := range points {
		d := DateOnly(p.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		byDay[d.Format(DateFormat)] = p.Close
	}
	return byDay
}

// reconcileIntersect keeps only dates present in both series. Iterating
// the calendar keeps the result strictly ascending without a sort.
func reconcileIntersect(stockByDay, fxByDay map[string]float64, start, end time.Time) Series {
	var series Series
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(DateFormat)
		stockClose, hasStock := stockByDay[key]
		fxRate, hasFX := fxByDay[key]
		if !hasStock || !hasFX {
			continue
		}
		series = append(series, Entry{
			Date:       d,
			StockPrice: stockClose,
			FXRate:     fxRate,
			KRWValue:   stockClose * fxRate,
		})
	}
	return series
}

// reconcileForwardFill produces one entry per calendar day. Missing
// quotes carry the last prior value per series independently; leading
// gaps back-fill from the first future value. A series with no value at
// all inside the window cannot be filled in either direction.
func reconcileForwardFill(stockByDay, fxByDay map[string]float64, start, end time.Time) (Series, error) {
	stockFirst, ok := firstValue(stockByDay, start, end)
	if !ok {
		return nil, fmt.Errorf("stock series: %w", ErrInsufficientData)
	}
	fxFirst, ok := firstValue(fxByDay, start, end)
	if !ok {
		return nil, fmt.Errorf("fx series: %w", ErrInsufficientData)
	}

	// Seed with the back-fill value; overwritten as soon as a native
	// quote appears.
	lastStock := stockFirst
	lastFX := fxFirst

	var series Series
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(DateFormat)
		if v, ok := stockByDay[key]; ok {
			lastStock = v
		}
		if v, ok := fxByDay[key]; ok {
			lastFX = v
		}
		series = append(series, Entry{
			Date:       d,
			StockPrice: lastStock,
			FXRate:     lastFX,
			KRWValue:   lastStock * lastFX,
		})
	}
	return series, nil
}

// firstValue returns the chronologically first quote within the window.
func firstValue(byDay map[string]float64, start, end time.Time) (float64, bool) {
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if v, ok := byDay[d.Format(DateFormat)]; ok {
			return v, true
		}
	}
	return 0, false
}
