// Package pricing derives the amount owed for a seat from a screening's
// base price and the seat's room price tier.
package pricing

import (
	"errors"
	"fmt"
	"math"

	"github.com/iliyamo/cinema-booking/internal/model"
)

var (
	// ErrInvalidTier is returned for an adjustment type other than fixed
	// or percentage.
	ErrInvalidTier = errors.New("invalid price tier")
	// ErrInvalidAmount is returned for a negative base price, a negative
	// adjustment when discounts are disabled, a negative result or a
	// result that does not fit in an int64.
	ErrInvalidAmount = errors.New("invalid amount")
)

// Engine computes seat prices.  The zero value rejects negative
// adjustment values.
type Engine struct {
	// AllowDiscounts permits negative adjustment values (discount tiers).
	AllowDiscounts bool
}

var defaultEngine Engine

// ComputePrice prices a seat with the default engine.
func ComputePrice(basePrice int64, tier model.RoomPriceTier) (int64, error) {
	return defaultEngine.ComputePrice(basePrice, tier)
}

// ComputePrice returns basePrice adjusted by tier.  Fixed tiers add
// their value; percentage tiers add basePrice*value/100 rounded half
// up to the smallest currency unit.  Rounding happens once per seat.
func (e Engine) ComputePrice(basePrice int64, tier model.RoomPriceTier) (int64, error) {
	if basePrice < 0 {
		return 0, fmt.Errorf("%w: base price %d", ErrInvalidAmount, basePrice)
	}
	if tier.AdjustmentValue < 0 && !e.AllowDiscounts {
		return 0, fmt.Errorf("%w: tier %d adjustment %d", ErrInvalidAmount, tier.ID, tier.AdjustmentValue)
	}

	var (
		amount int64
		ok     bool
	)
	switch tier.AdjustmentType {
	case model.AdjustmentFixed:
		amount, ok = add(basePrice, tier.AdjustmentValue)
	case model.AdjustmentPercentage:
		var scaled int64
		if scaled, ok = mul(basePrice, tier.AdjustmentValue); ok {
			amount, ok = add(basePrice, roundHalfUpDiv(scaled, 100))
		}
	default:
		return 0, fmt.Errorf("%w: tier %d has adjustment type %q", ErrInvalidTier, tier.ID, tier.AdjustmentType)
	}
	if !ok {
		return 0, fmt.Errorf("%w: base price %d with tier %d overflows", ErrInvalidAmount, basePrice, tier.ID)
	}
	if amount < 0 {
		return 0, fmt.Errorf("%w: tier %d yields %d", ErrInvalidAmount, tier.ID, amount)
	}
	return amount, nil
}

// ValidateTier checks a tier's configuration without pricing a seat.
func (e Engine) ValidateTier(tier model.RoomPriceTier) error {
	switch tier.AdjustmentType {
	case model.AdjustmentFixed, model.AdjustmentPercentage:
	default:
		return fmt.Errorf("%w: adjustment type %q", ErrInvalidTier, tier.AdjustmentType)
	}
	if tier.AdjustmentValue < 0 && !e.AllowDiscounts {
		return fmt.Errorf("%w: adjustment %d", ErrInvalidAmount, tier.AdjustmentValue)
	}
	return nil
}

// roundHalfUpDiv returns n/d rounded half towards positive infinity.
// d must be positive.
func roundHalfUpDiv(n, d int64) int64 {
	q := floorDiv(n, d)
	if r := n - q*d; r >= d-r {
		q++
	}
	return q
}

func add(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

func mul(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	if p/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	return p, true
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
