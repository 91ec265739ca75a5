package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HaelyDee/tax-help/internal/report"
	"github.com/HaelyDee/tax-help/internal/tax"
	"github.com/HaelyDee/tax-help/internal/valuation"
	"github.com/HaelyDee/tax-help/pkg/logger"
)

type stubFeed struct {
	closes map[string]float64
}

func (f *stubFeed) DailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]valuation.PricePoint, error) {
	close, ok := f.closes[symbol]
	if !ok {
		return nil, valuation.ErrDataUnavailable
	}
	var pts []valuation.PricePoint
	for d := valuation.DateOnly(start); !d.After(valuation.DateOnly(end)); d = d.AddDate(0, 0, 1) {
		pts = append(pts, valuation.PricePoint{Date: d, Close: close})
	}
	return pts, nil
}

func newTestHandler(feed valuation.Feed) *ValuationHandler {
	svc := report.NewService(feed, tax.DefaultTable(), "USDKRW=X", valuation.PolicyIntersect, time.Second, logger.NewNop()).
		WithClock(func() time.Time {
			return time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
		})
	return NewValuationHandler(svc, logger.NewNop())
}

func workingFeed() *stubFeed {
	return &stubFeed{closes: map[string]float64{
		"NVDA":     6000,
		"USDKRW=X": 1000,
	}}
}

func postValuation(t *testing.T, h http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/valuation", bytes.NewReader(data))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestGetRelations(t *testing.T) {
	h := newTestHandler(workingFeed())

	req := httptest.NewRequest(http.MethodGet, "/api/relations", nil)
	rec := httptest.NewRecorder()
	h.GetRelations(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Relations []tax.Relation `json:"relations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	names := make(map[string]float64)
	for _, r := range body.Relations {
		names[r.Name] = r.Deduction
	}
	assert.Equal(t, 600_000_000.0, names["배우자"])
	assert.Equal(t, 50_000_000.0, names["직계비속"])
}

func TestEvaluateOK(t *testing.T) {
	h := newTestHandler(workingFeed())

	rec := postValuation(t, h.Evaluate, map[string]interface{}{
		"assets":    []map[string]interface{}{{"ticker": "NVDA", "quantity": 10}},
		"gift_date": "2026-02-02",
		"relation":  "기타",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var rep report.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, 60_000_000.0, rep.TotalAmount)
	assert.Equal(t, 6_000_000.0, rep.Tax.Tax)
	assert.False(t, rep.Provisional)
}

func TestEvaluateBadGiftDate(t *testing.T) {
	h := newTestHandler(workingFeed())

	rec := postValuation(t, h.Evaluate, map[string]interface{}{
		"assets":    []map[string]interface{}{{"ticker": "NVDA", "quantity": 10}},
		"gift_date": "02/02/2026",
		"relation":  "기타",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvaluateBadBody(t *testing.T) {
	h := newTestHandler(workingFeed())

	req := httptest.NewRequest(http.MethodPost, "/api/valuation", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.Evaluate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvaluateUnknownRelation(t *testing.T) {
	h := newTestHandler(workingFeed())

	rec := postValuation(t, h.Evaluate, map[string]interface{}{
		"assets":    []map[string]interface{}{{"ticker": "NVDA", "quantity": 10}},
		"gift_date": "2026-02-02",
		"relation":  "모르는관계",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvaluateFeedDown(t *testing.T) {
	h := newTestHandler(&stubFeed{closes: map[string]float64{}})

	rec := postValuation(t, h.Evaluate, map[string]interface{}{
		"assets":    []map[string]interface{}{{"ticker": "NVDA", "quantity": 10}},
		"gift_date": "2026-02-02",
		"relation":  "기타",
	})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestExportReturnsWorkbook(t *testing.T) {
	h := newTestHandler(workingFeed())

	rec := postValuation(t, h.Export, map[string]interface{}{
		"assets":    []map[string]interface{}{{"ticker": "NVDA", "quantity": 10}},
		"gift_date": "2026-02-02",
		"relation":  "기타",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "gift_valuation_2026-02-02.xlsx")

	// xlsx is a zip container: starts with the PK magic.
	body := rec.Body.Bytes()
	require.Greater(t, len(body), 4)
	assert.Equal(t, []byte{'P', 'K'}, body[:2])
}
