package valuation

import "time"

// DateFormat is the ISO calendar date format used throughout.
const DateFormat = "2006-01-02"

// Window is the statutory valuation window: two calendar months before
// and after the gift date (상증세법상 평가기준일 전후 2개월).
// Immutable once constructed.
type Window struct {
	GiftDate time.Time `json:"gift_date"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// ComputeWindow returns the valuation window for a gift date using
// calendar-month arithmetic, not a fixed day offset. The day of month is
// clamped to the last valid day of the target month, so 2024-08-31 minus
// two months resolves to 2024-06-30.
func ComputeWindow(giftDate time.Time) Window {
	d := DateOnly(giftDate)
	return Window{
		GiftDate: d,
		Start:    addMonths(d, -2),
		End:      addMonths(d, 2),
	}
}

// Contains reports whether the date falls inside the window (inclusive).
func (w Window) Contains(t time.Time) bool {
	d := DateOnly(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// DateOnly normalizes a time to midnight UTC. All window and series
// arithmetic operates on day granularity.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// addMonths shifts a date by whole calendar months, clamping the day of
// month instead of letting time.AddDate normalize overflow (which would
// turn Aug 31 − 2mo into Jul 1 rather than Jun 30).
func addMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	if lastDay := firstOfTarget.AddDate(0, 1, -1).Day(); d > lastDay {
		d = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, 0, 0, 0, 0, time.UTC)
}

// Completeness reports whether a window is fully observed yet.
// Depends on wall-clock "today", so it is recomputed per evaluation and
// never cached.
type Completeness struct {
	// Provisional is true while the window end lies in the future; the
	// average can still change as new trading days are published.
	Provisional bool `json:"provisional"`
	// ReportableFrom is the first date on which the window is guaranteed
	// fully observed (window end + 1 day).
	ReportableFrom time.Time `json:"reportable_from"`
}

// CheckCompleteness derives window completeness against the given today.
func CheckCompleteness(windowEnd, today time.Time) Completeness {
	end := DateOnly(windowEnd)
	return Completeness{
		Provisional:    end.After(DateOnly(today)),
		ReportableFrom: end.AddDate(0, 0, 1),
	}
}
