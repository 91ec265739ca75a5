// Package export renders a valuation report as an audit-ready xlsx
// workbook: one summary sheet plus a detail sheet per ticker.
package export

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/HaelyDee/tax-help/internal/report"
	"github.com/HaelyDee/tax-help/internal/valuation"
)

const summarySheet = "전체요약"

// krw prints amounts with Korean digit grouping.
var krw = message.NewPrinter(language.Korean)

// Workbook renders the report. The caller owns the bytes; nothing is
// written to disk here.
func Workbook(rep *report.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("export: rename summary sheet: %w", err)
	}
	if err := writeRows(f, summarySheet, summaryRows(rep)); err != nil {
		return nil, err
	}

	for _, a := range rep.Assets {
		name := a.Ticker + "_상세"
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("export: sheet %s: %w", name, err)
		}
		if err := writeRows(f, name, detailRows(a.Valuation.Series)); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// summaryRows lays out the 전체요약 sheet: per-asset lines, a spacer,
// then the provenance notes and the totals.
func summaryRows(rep *report.Report) [][]interface{} {
	rows := [][]interface{}{
		{"항목(종목)", "내역(수량/내용)", "평균가액(1주)", "소계(원화)"},
	}
	for _, a := range rep.Assets {
		rows = append(rows, []interface{}{
			a.Ticker,
			formatQuantity(a.Quantity),
			krw.Sprintf("%.0f", a.Valuation.Average),
			krw.Sprintf("%.0f", a.Subtotal),
		})
	}
	rows = append(rows, []interface{}{"", "", "", ""})

	status := "확정 데이터"
	if rep.Provisional {
		status = fmt.Sprintf("임시 데이터 (확정 가능일: %s)",
			rep.ReportableFrom.Format(valuation.DateFormat))
	}

	rows = append(rows,
		[]interface{}{"데이터 출처", "Yahoo Finance (chart API)"},
		[]interface{}{"산출 기준", "상증세법상 수증일 전후 2개월 종가 평균"},
		[]interface{}{"휴장일 처리", "주가/환율 미공표일(휴장일 등)은 계산에서 제외"},
		[]interface{}{"데이터 확정 여부", status},
		[]interface{}{"총 증여가액 합계", krw.Sprintf("%.0f 원", rep.TotalAmount)},
		[]interface{}{"예상 납부세액", krw.Sprintf("%.0f 원", rep.Tax.Tax)},
	)
	return rows
}

// detailRows lays out one ticker's daily series.
func detailRows(series valuation.Series) [][]interface{} {
	rows := [][]interface{}{
		{"일자", "주가(현지통화)", "적용환율", "원화 환산가액"},
	}
	for _, e := range series {
		rows = append(rows, []interface{}{
			e.Date.Format(valuation.DateFormat),
			e.StockPrice,
			e.FXRate,
			e.KRWValue,
		})
	}
	return rows
}

// writeRows fills a sheet and sizes each column to its widest cell,
// counting wide (Korean) characters as two.
func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	widths := map[int]float64{}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("export: cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("export: write row %d: %w", i+1, err)
		}
		for j, v := range row {
			if w := displayWidth(v); w > widths[j] {
				widths[j] = w
			}
		}
	}

	for j, w := range widths {
		col, err := excelize.ColumnNumberToName(j + 1)
		if err != nil {
			return fmt.Errorf("export: column name: %w", err)
		}
		if err := f.SetColWidth(sheet, col, col, w+2); err != nil {
			return fmt.Errorf("export: column width: %w", err)
		}
	}
	return nil
}

func displayWidth(v interface{}) float64 {
	var w float64
	for _, r := range fmt.Sprint(v) {
		if r > 128 {
			w += 2
		} else {
			w++
		}
	}
	return w
}

func formatQuantity(q float64) string {
	if q == math.Trunc(q) {
		return krw.Sprintf("%.0f", q)
	}
	return krw.Sprintf("%v", q)
}
