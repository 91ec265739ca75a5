package commands

import (
	"fmt"

	"github.com/HaelyDee/tax-help/internal/external/yahoo"
	"github.com/HaelyDee/tax-help/internal/quotecache"
	"github.com/HaelyDee/tax-help/internal/report"
	"github.com/HaelyDee/tax-help/internal/tax"
	"github.com/HaelyDee/tax-help/internal/valuation"
	"github.com/HaelyDee/tax-help/pkg/config"
	"github.com/HaelyDee/tax-help/pkg/httputil"
	"github.com/HaelyDee/tax-help/pkg/logger"
	"github.com/HaelyDee/tax-help/pkg/redis"
)

// buildService assembles the report service from config: feed client,
// optional Redis quote cache, deduction table.
// ⭐ SSOT: CLI/API 의존성 조립은 이 함수에서만
func buildService(cfg *config.Config, log *logger.Logger) (*report.Service, func(), error) {
	httpClient := httputil.New(log, cfg.Yahoo.Timeout)
	feedClient := yahoo.NewClient(cfg.Yahoo, httpClient, log)

	var feed valuation.Feed = feedClient

	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	cleanup := func() { redisClient.Close() }

	if redisClient.Enabled() {
		log.Info("Quote cache enabled")
		feed = quotecache.New(feed, redis.NewCache(redisClient, "quotes"), log)
	}

	table := tax.DefaultTable()
	if cfg.RelationTablePath != "" {
		table, err = tax.LoadTable(cfg.RelationTablePath)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("load relation table: %w", err)
		}
	}

	svc := report.NewService(feed, table, cfg.FXPair, valuation.PolicyIntersect, cfg.Yahoo.Timeout, log)
	return svc, cleanup, nil
}
