package valuation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/HaelyDee/tax-help/pkg/logger"
)

// Feed supplies sparse daily closing quotes for a symbol over an
// inclusive date range. Implementations must treat both endpoints as
// included; any end-exclusivity of the underlying API is theirs to
// compensate.
type Feed interface {
	DailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]PricePoint, error)
}

// Valuation is the full per-ticker evaluation output: the reconciled
// series, its average, and whether the window is still open.
type Valuation struct {
	Symbol       string       `json:"symbol"`
	Window       Window       `json:"window"`
	Series       Series       `json:"series"`
	Average      float64      `json:"average"`
	Completeness Completeness `json:"completeness"`
}

// Engine computes statutory average valuations. One instance is safe for
// concurrent use: it holds no per-evaluation state.
// ⭐ SSOT: 평가기간 산정과 시계열 재구성은 이 엔진에서만 수행
type Engine struct {
	feed         Feed
	fxPair       string
	policy       Policy
	fetchTimeout time.Duration
	logger       *logger.Logger
	now          func() time.Time
}

// NewEngine creates a valuation engine. fxPair is the Yahoo-style FX
// pseudo-symbol used for KRW conversion (e.g. "USDKRW=X").
func NewEngine(feed Feed, fxPair string, policy Policy, fetchTimeout time.Duration, log *logger.Logger) *Engine {
	return &Engine{
		feed:         feed,
		fxPair:       fxPair,
		policy:       policy,
		fetchTimeout: fetchTimeout,
		logger:       log,
		now:          time.Now,
	}
}

// WithClock overrides the wall clock. 테스트 전용.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Policy returns the reconciliation policy in effect.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Evaluate computes the valuation for one symbol around a gift date:
// window → concurrent fetch of stock and FX series → reconcile →
// average → completeness. Completeness depends on today and is
// recomputed on every call.
func (e *Engine) Evaluate(ctx context.Context, symbol string, giftDate time.Time) (*Valuation, error) {
	w := ComputeWindow(giftDate)

	e.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"start":  w.Start.Format(DateFormat),
		"end":    w.End.Format(DateFormat),
		"policy": e.policy,
	}).Debug("Evaluating valuation window")

	// The two feeds are independent; fetch them in parallel and join
	// before reconciliation.
	var stock, fx []PricePoint
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stock, err = e.fetch(gctx, symbol, w)
		return err
	})
	g.Go(func() error {
		var err error
		fx, err = e.fetch(gctx, e.fxPair, w)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	series, err := Reconcile(stock, fx, w.Start, w.End, e.policy)
	if err != nil {
		return nil, fmt.Errorf("%s: reconcile: %w", symbol, err)
	}

	avg, err := Average(series)
	if err != nil {
		return nil, fmt.Errorf("%s: average: %w", symbol, err)
	}

	return &Valuation{
		Symbol:       symbol,
		Window:       w,
		Series:       series,
		Average:      avg,
		Completeness: CheckCompleteness(w.End, e.now()),
	}, nil
}

// fetch retrieves one series with a bounded timeout so a hung feed can
// never stall the whole report. Zero points and timeouts both surface as
// ErrDataUnavailable with the symbol attached.
func (e *Engine) fetch(ctx context.Context, symbol string, w Window) ([]PricePoint, error) {
	fetchCtx := ctx
	if e.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, e.fetchTimeout)
		defer cancel()
	}

	points, err := e.feed.DailyCloses(fetchCtx, symbol, w.Start, w.End)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s: fetch timed out: %w", symbol, ErrDataUnavailable)
		}
		return nil, fmt.Errorf("%s: fetch: %w", symbol, err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrDataUnavailable)
	}

	e.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(points),
	}).Debug("Fetched daily closes")

	return points, nil
}
