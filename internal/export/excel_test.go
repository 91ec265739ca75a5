package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/HaelyDee/tax-help/internal/report"
	"github.com/HaelyDee/tax-help/internal/tax"
	"github.com/HaelyDee/tax-help/internal/valuation"
)

func sampleReport(provisional bool) *report.Report {
	gift := time.Date(2026, time.February, 2, 0, 0, 0, 0, time.UTC)
	window := valuation.ComputeWindow(gift)

	series := valuation.Series{
		{Date: time.Date(2025, time.December, 2, 0, 0, 0, 0, time.UTC), StockPrice: 6000, FXRate: 1000, KRWValue: 6_000_000},
		{Date: time.Date(2025, time.December, 3, 0, 0, 0, 0, time.UTC), StockPrice: 6000, FXRate: 1000, KRWValue: 6_000_000},
	}

	return &report.Report{
		GiftDate: gift,
		Window:   window,
		Policy:   valuation.PolicyIntersect,
		Relation: "기타",
		Assets: []report.AssetResult{
			{
				Ticker:   "NVDA",
				Quantity: 10,
				Valuation: &valuation.Valuation{
					Symbol:  "NVDA",
					Window:  window,
					Series:  series,
					Average: 6_000_000,
				},
				Subtotal: 60_000_000,
			},
		},
		TotalAmount:    60_000_000,
		Tax:            tax.Result{TaxBase: 60_000_000, Tax: 6_000_000},
		Provisional:    provisional,
		ReportableFrom: window.End.AddDate(0, 0, 1),
		GeneratedAt:    time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestWorkbookSheets(t *testing.T) {
	data, err := Workbook(sampleReport(false))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"전체요약", "NVDA_상세"}, f.GetSheetList())
}

func TestWorkbookSummaryContent(t *testing.T) {
	data, err := Workbook(sampleReport(false))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("전체요약")
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	assert.Equal(t, []string{"항목(종목)", "내역(수량/내용)", "평균가액(1주)", "소계(원화)"}, rows[0])
	assert.Equal(t, []string{"NVDA", "10", "6,000,000", "60,000,000"}, rows[1])

	// Provenance notes and totals after the spacer row.
	flat := map[string]string{}
	for _, r := range rows[2:] {
		if len(r) >= 2 {
			flat[r[0]] = r[1]
		}
	}
	assert.Equal(t, "확정 데이터", flat["데이터 확정 여부"])
	assert.Equal(t, "60,000,000 원", flat["총 증여가액 합계"])
	assert.Equal(t, "6,000,000 원", flat["예상 납부세액"])
}

func TestWorkbookProvisionalNotice(t *testing.T) {
	rep := sampleReport(true)

	data, err := Workbook(rep)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("전체요약")
	require.NoError(t, err)

	var status string
	for _, r := range rows {
		if len(r) >= 2 && r[0] == "데이터 확정 여부" {
			status = r[1]
		}
	}
	assert.Contains(t, status, "임시 데이터")
	assert.Contains(t, status, rep.ReportableFrom.Format(valuation.DateFormat))
}

func TestWorkbookDetailSheet(t *testing.T) {
	data, err := Workbook(sampleReport(false))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("NVDA_상세")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"일자", "주가(현지통화)", "적용환율", "원화 환산가액"}, rows[0])
	assert.Equal(t, "2025-12-02", rows[1][0])
	assert.Equal(t, "6000", rows[1][1])
}
