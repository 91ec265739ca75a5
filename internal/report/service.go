package report

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/HaelyDee/tax-help/internal/tax"
	"github.com/HaelyDee/tax-help/internal/valuation"
	"github.com/HaelyDee/tax-help/pkg/logger"
)

// MaxAssets bounds one report request. 증여 신고 한 건에 들어가는 종목 수는
// 실무상 소수이고, 피드 호출량도 여기서 묶인다.
const MaxAssets = 5

// Service generates gift-tax valuation reports.
// ⭐ SSOT: 보고서 생성 파이프라인은 이 서비스에서만 조립
type Service struct {
	feed          valuation.Feed
	table         *tax.Table
	fxPair        string
	defaultPolicy valuation.Policy
	fetchTimeout  time.Duration
	logger        *logger.Logger
	now           func() time.Time
}

// NewService creates a report service over a price feed and a loaded
// deduction table. The table is read-only reference data, shared safely
// across concurrent evaluations.
func NewService(feed valuation.Feed, table *tax.Table, fxPair string, defaultPolicy valuation.Policy, fetchTimeout time.Duration, log *logger.Logger) *Service {
	return &Service{
		feed:          feed,
		table:         table,
		fxPair:        fxPair,
		defaultPolicy: defaultPolicy,
		fetchTimeout:  fetchTimeout,
		logger:        log,
		now:           time.Now,
	}
}

// WithClock overrides the wall clock. 테스트 전용.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Relations exposes the deduction table for listing.
func (s *Service) Relations() []tax.Relation {
	return s.table.Relations()
}

// Generate runs one report: per-asset valuations in parallel, a join,
// then a single tax evaluation on the grand total. The first failing
// asset aborts the run with the ticker and stage attached.
func (s *Service) Generate(ctx context.Context, req Request) (*Report, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	// Resolve the deduction before any network fetch so a mistyped
	// relation fails fast.
	deduction, err := s.table.Deduction(req.Relation)
	if err != nil {
		return nil, err
	}

	policy := req.Policy
	if policy == "" {
		policy = s.defaultPolicy
	}

	engine := valuation.NewEngine(s.feed, s.fxPair, policy, s.fetchTimeout, s.logger).
		WithClock(s.now)

	s.logger.WithFields(map[string]interface{}{
		"assets":    len(req.Assets),
		"gift_date": req.GiftDate.Format(valuation.DateFormat),
		"relation":  req.Relation,
		"policy":    policy,
	}).Info("Generating valuation report")

	// Per-asset evaluations are independent and read-only; run them in
	// parallel and join before the tax step.
	results := make([]AssetResult, len(req.Assets))
	g, gctx := errgroup.WithContext(ctx)
	for i, asset := range req.Assets {
		g.Go(func() error {
			v, err := engine.Evaluate(gctx, asset.Ticker, req.GiftDate)
			if err != nil {
				return fmt.Errorf("asset %s: %w", asset.Ticker, err)
			}
			results[i] = AssetResult{
				Ticker:    asset.Ticker,
				Quantity:  asset.Quantity,
				Valuation: v,
				Subtotal:  v.Average * asset.Quantity,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// The bracket schedule applies exactly once, to the grand total —
	// never per asset.
	var total float64
	provisional := false
	for _, r := range results {
		total += r.Subtotal
		provisional = provisional || r.Valuation.Completeness.Provisional
	}

	window := results[0].Valuation.Window

	return &Report{
		GiftDate:       window.GiftDate,
		Window:         window,
		Policy:         policy,
		Relation:       req.Relation,
		Assets:         results,
		TotalAmount:    total,
		Tax:            tax.Evaluate(total, deduction),
		Provisional:    provisional,
		ReportableFrom: results[0].Valuation.Completeness.ReportableFrom,
		GeneratedAt:    s.now(),
	}, nil
}

// validate rejects malformed requests before any work happens.
func (s *Service) validate(req Request) error {
	if len(req.Assets) == 0 {
		return fmt.Errorf("at least one asset is required")
	}
	if len(req.Assets) > MaxAssets {
		return fmt.Errorf("too many assets: %d (max %d)", len(req.Assets), MaxAssets)
	}
	if req.GiftDate.IsZero() {
		return fmt.Errorf("gift date is required")
	}

	seen := make(map[string]struct{}, len(req.Assets))
	for i, a := range req.Assets {
		if a.Ticker == "" {
			return fmt.Errorf("asset %d: ticker is required", i+1)
		}
		if a.Quantity <= 0 {
			return fmt.Errorf("asset %s: quantity must be positive", a.Ticker)
		}
		if _, dup := seen[a.Ticker]; dup {
			return fmt.Errorf("asset %s: duplicate ticker", a.Ticker)
		}
		seen[a.Ticker] = struct{}{}
	}

	if _, err := valuation.ParsePolicy(string(req.Policy)); err != nil {
		return err
	}

	return nil
}
