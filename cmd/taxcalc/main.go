package main

import (
	"os"

	"github.com/HaelyDee/tax-help/cmd/taxcalc/commands"
)

// main is the entry point for the taxcalc CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/taxcalc [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
