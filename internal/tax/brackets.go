package tax

import "math"

// Result is the outcome of a gift-tax evaluation. Derived once, never
// mutated. Amounts in KRW.
type Result struct {
	Deduction float64 `json:"deduction"`
	TaxBase   float64 `json:"tax_base"`
	Tax       float64 `json:"tax"`
}

// bracket is one row of the progressive schedule: tax = base × rate −
// subtract for the first bracket whose inclusive upper bound covers the
// base (누진공제 방식).
type bracket struct {
	upperBound float64 // inclusive; +Inf for the top bracket
	rate       float64
	subtract   float64
}

// 상증세법 제26조 증여세 세율표. Contiguous and exhaustive.
var brackets = []bracket{
	{upperBound: 100_000_000, rate: 0.10, subtract: 0},
	{upperBound: 500_000_000, rate: 0.20, subtract: 10_000_000},
	{upperBound: 1_000_000_000, rate: 0.30, subtract: 60_000_000},
	{upperBound: 3_000_000_000, rate: 0.40, subtract: 160_000_000},
	{upperBound: math.Inf(1), rate: 0.50, subtract: 460_000_000},
}

// Evaluate applies the relationship deduction and the progressive
// bracket schedule to a total gift amount. The tax base is floored at
// zero, and the computed tax is clamped at zero so a marginal
// subtraction can never surface as a negative amount due.
func Evaluate(totalAmount, deduction float64) Result {
	taxBase := totalAmount - deduction
	if taxBase < 0 {
		taxBase = 0
	}

	var tax float64
	for _, b := range brackets {
		if taxBase <= b.upperBound {
			tax = taxBase*b.rate - b.subtract
			break
		}
	}
	if tax < 0 {
		tax = 0
	}

	return Result{
		Deduction: deduction,
		TaxBase:   taxBase,
		Tax:       tax,
	}
}
