package report

import (
	"time"

	"github.com/HaelyDee/tax-help/internal/tax"
	"github.com/HaelyDee/tax-help/internal/valuation"
)

// Asset is one gifted holding: a ticker and the number of shares.
type Asset struct {
	Ticker   string  `json:"ticker"`
	Quantity float64 `json:"quantity"`
}

// Request describes one report generation. The report is a pure
// function of this request plus the two feeds; nothing is carried over
// between requests.
type Request struct {
	Assets   []Asset   `json:"assets"`
	GiftDate time.Time `json:"gift_date"`
	Relation string    `json:"relation"`
	// Policy selects the reconciliation mode; empty means the
	// configured default.
	Policy valuation.Policy `json:"policy,omitempty"`
}

// AssetResult is the per-ticker slice of a report.
type AssetResult struct {
	Ticker    string                `json:"ticker"`
	Quantity  float64               `json:"quantity"`
	Valuation *valuation.Valuation  `json:"valuation"`
	// Subtotal = per-share average × quantity, KRW.
	Subtotal float64 `json:"subtotal"`
}

// Report is the complete output of one generation run. Immutable once
// returned; redisplay and persistence are presentation concerns.
type Report struct {
	GiftDate time.Time        `json:"gift_date"`
	Window   valuation.Window `json:"window"`
	Policy   valuation.Policy `json:"policy"`
	Relation string           `json:"relation"`

	Assets []AssetResult `json:"assets"`

	// TotalAmount = Σ subtotal across assets, KRW.
	TotalAmount float64    `json:"total_amount"`
	Tax         tax.Result `json:"tax"`

	// Provisional is true when the valuation window is still open;
	// the figures can change until ReportableFrom.
	Provisional    bool      `json:"provisional"`
	ReportableFrom time.Time `json:"reportable_from"`

	GeneratedAt time.Time `json:"generated_at"`
}
