package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	envFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "taxcalc",
	Short: "해외주식 증여세 평가액 계산기",
	Long: `taxcalc - 해외주식 증여 평가액/증여세 계산 CLI

상증세법상 수증일 전후 2개월 종가 평균으로 해외상장주식의
증여재산가액을 산정하고, 관계별 공제와 누진세율을 적용해
예상 납부세액을 계산합니다.

Usage:
  go run ./cmd/taxcalc [command]

Examples:
  go run ./cmd/taxcalc calculate --ticker NVDA --quantity 10 --gift-date 2026-02-02 --relation 직계비속
  go run ./cmd/taxcalc relations
  go run ./cmd/taxcalc api`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&envFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
