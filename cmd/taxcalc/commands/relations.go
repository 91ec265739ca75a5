package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HaelyDee/tax-help/internal/tax"
	"github.com/HaelyDee/tax-help/pkg/config"
)

// relationsCmd represents the relations command
var relationsCmd = &cobra.Command{
	Use:   "relations",
	Short: "관계별 증여재산공제 조회",
	Long: `증여자와의 관계별 공제액 테이블을 출력합니다.

Example:
  go run ./cmd/taxcalc relations`,
	RunE: runRelations,
}

func init() {
	rootCmd.AddCommand(relationsCmd)
}

func runRelations(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	table := tax.DefaultTable()
	if cfg.RelationTablePath != "" {
		table, err = tax.LoadTable(cfg.RelationTablePath)
		if err != nil {
			return fmt.Errorf("load relation table: %w", err)
		}
	}

	fmt.Println("=== 관계별 증여재산공제 ===")
	fmt.Println()
	for _, r := range table.Relations() {
		won.Printf("  %-14s %15.0f원\n", r.Name, r.Deduction)
	}

	return nil
}
