package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/HaelyDee/tax-help/internal/export"
	"github.com/HaelyDee/tax-help/internal/report"
	"github.com/HaelyDee/tax-help/internal/valuation"
	"github.com/HaelyDee/tax-help/pkg/config"
	"github.com/HaelyDee/tax-help/pkg/logger"
)

// calculateCmd represents the calculate command
var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "증여재산가액/증여세 계산",
	Long: `수증일 전후 2개월 종가 평균으로 증여재산가액을 산정합니다.

이 명령어는:
- 평가기간(수증일 ±2개월)의 일별 종가/환율 조회
- 두 시계열 정합 후 원화 환산가액 평균 산출
- 관계별 공제 적용 후 누진세율로 예상 세액 계산
- 필요시 엑셀 보고서 저장

--ticker/--quantity는 같은 횟수만큼 반복 지정합니다.

Example:
  go run ./cmd/taxcalc calculate --ticker NVDA --quantity 10 --gift-date 2026-02-02 --relation 직계비속
  go run ./cmd/taxcalc calculate --ticker NVDA --quantity 10 --ticker AAPL --quantity 5 --gift-date 2026-02-02 --relation 배우자 --policy ffill --export report.xlsx`,
	RunE: runCalculate,
}

var (
	// Calculate flags
	calcTickers    []string
	calcQuantities []float64
	calcGiftDate   string
	calcRelation   string
	calcPolicy     string
	calcExportPath string
)

func init() {
	rootCmd.AddCommand(calculateCmd)

	// Flags
	calculateCmd.Flags().StringSliceVar(&calcTickers, "ticker", nil, "종목 티커 (반복 지정 가능)")
	calculateCmd.Flags().Float64SliceVar(&calcQuantities, "quantity", nil, "수량 (티커와 같은 순서)")
	calculateCmd.Flags().StringVar(&calcGiftDate, "gift-date", "", "수증일 (YYYY-MM-DD)")
	calculateCmd.Flags().StringVar(&calcRelation, "relation", "", "증여자와의 관계 (예: 배우자, 직계비속)")
	calculateCmd.Flags().StringVar(&calcPolicy, "policy", "", "시계열 정합 방식 (intersect|ffill)")
	calculateCmd.Flags().StringVar(&calcExportPath, "export", "", "엑셀 보고서 저장 경로 (.xlsx)")

	calculateCmd.MarkFlagRequired("ticker")
	calculateCmd.MarkFlagRequired("quantity")
	calculateCmd.MarkFlagRequired("gift-date")
	calculateCmd.MarkFlagRequired("relation")
}

func runCalculate(cmd *cobra.Command, args []string) error {
	fmt.Println("=== 해외주식 증여세 계산 ===")

	if len(calcTickers) != len(calcQuantities) {
		return fmt.Errorf("--ticker %d개, --quantity %d개: 같은 횟수로 지정해야 합니다",
			len(calcTickers), len(calcQuantities))
	}

	giftDate, err := time.ParseInLocation(valuation.DateFormat, calcGiftDate, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid --gift-date %q (want YYYY-MM-DD)", calcGiftDate)
	}

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Build the report service
	svc, cleanup, err := buildService(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	assets := make([]report.Asset, len(calcTickers))
	for i, ticker := range calcTickers {
		assets[i] = report.Asset{Ticker: ticker, Quantity: calcQuantities[i]}
	}

	// 4. Generate the report
	rep, err := svc.Generate(context.Background(), report.Request{
		Assets:   assets,
		GiftDate: giftDate,
		Relation: calcRelation,
		Policy:   valuation.Policy(calcPolicy),
	})
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	printReport(rep)

	// 5. Optional spreadsheet export
	if calcExportPath != "" {
		data, err := export.Workbook(rep)
		if err != nil {
			return fmt.Errorf("render workbook: %w", err)
		}
		if err := os.WriteFile(calcExportPath, data, 0o644); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		fmt.Printf("\n✅ 엑셀 보고서 저장: %s\n", calcExportPath)
	}

	return nil
}

var won = message.NewPrinter(language.Korean)

// printReport renders the report summary to stdout.
func printReport(rep *report.Report) {
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("  수증일      : %s\n", rep.GiftDate.Format(valuation.DateFormat))
	fmt.Printf("  평가기간    : %s ~ %s\n",
		rep.Window.Start.Format(valuation.DateFormat),
		rep.Window.End.Format(valuation.DateFormat))
	fmt.Printf("  관계        : %s\n", rep.Relation)
	fmt.Printf("  정합 방식   : %s\n", rep.Policy)
	fmt.Println("───────────────────────────────────────────────────────────")

	for _, a := range rep.Assets {
		won.Printf("  %-8s × %v주  평균 %.0f원  소계 %.0f원 (거래일 %d일)\n",
			a.Ticker, a.Quantity, a.Valuation.Average, a.Subtotal, len(a.Valuation.Series))
	}

	fmt.Println("───────────────────────────────────────────────────────────")
	won.Printf("  증여재산가액 합계 : %.0f원\n", rep.TotalAmount)
	won.Printf("  관계 공제         : %.0f원\n", rep.Tax.Deduction)
	won.Printf("  과세표준          : %.0f원\n", rep.Tax.TaxBase)
	won.Printf("  예상 납부세액     : %.0f원\n", rep.Tax.Tax)
	fmt.Println("═══════════════════════════════════════════════════════════")

	if rep.Provisional {
		fmt.Printf("\n⚠️  평가기간이 아직 끝나지 않았습니다. %s 이후 확정 계산이 가능합니다.\n",
			rep.ReportableFrom.Format(valuation.DateFormat))
	}
}
