package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/HaelyDee/tax-help/internal/api"
	"github.com/HaelyDee/tax-help/internal/api/handlers"
	"github.com/HaelyDee/tax-help/pkg/config"
	"github.com/HaelyDee/tax-help/pkg/logger"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 평가 보고서 생성/엑셀 다운로드 엔드포인트 제공

Endpoints:
  GET  /health                  - Health check
  GET  /api/relations           - 관계별 공제 테이블 조회
  POST /api/valuation           - 평가 보고서 생성 (JSON)
  POST /api/valuation/export    - 평가 보고서 엑셀 다운로드

Example:
  go run ./cmd/taxcalc api
  go run ./cmd/taxcalc api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== tax-help API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Build the report service
	svc, cleanup, err := buildService(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	// 4. Create handler and router
	valuationHandler := handlers.NewValuationHandler(svc, log)
	router := api.NewRouter(valuationHandler, log)

	// 5. Create server
	server := api.New(cfg, log, router)

	// 6. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/relations")
	fmt.Println("  POST /api/valuation")
	fmt.Println("  POST /api/valuation/export")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
