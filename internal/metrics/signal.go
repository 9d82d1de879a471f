package metrics

import (
	"fmt"

	"royaltyflow/internal/models"
)

// Thresholds is the single configuration surface for signal classification
// and momentum trend detection. Downstream views label orders with the same
// values, so the struct is shared rather than inlined per component.
type Thresholds struct {
	// Spread rate (%)
	SpreadInstantMatch float64 // |spread| within this band can fill immediately
	SpreadLow          float64 // below: candidate undervalued
	SpreadHigh         float64 // above: candidate overvalued
	SpreadExtreme      float64 // |spread| beyond this is a data-quality caution

	// Expected yield (%)
	YieldHigh   float64
	YieldMedium float64
	YieldLow    float64

	// Liquidity score (0-100)
	LiquidityHigh   float64
	LiquidityMedium float64
	LiquidityLow    float64

	// Momentum (%). The band is intentionally asymmetric upstream: a +5 move
	// counts as up while only a -10 move counts as down.
	MomentumUp   float64
	MomentumDown float64
}

// DefaultThresholds returns the documented default thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SpreadInstantMatch: 0.5,
		SpreadLow:          -5,
		SpreadHigh:         5,
		SpreadExtreme:      20,

		YieldHigh:   8,
		YieldMedium: 5,
		YieldLow:    3,

		LiquidityHigh:   70,
		LiquidityMedium: 40,
		LiquidityLow:    20,

		MomentumUp:   5,
		MomentumDown: -10,
	}
}

// Validate checks threshold ordering so a misconfigured environment fails at
// startup instead of producing nonsense signals.
func (t Thresholds) Validate() error {
	if t.SpreadLow >= t.SpreadHigh {
		return fmt.Errorf("spread low %f must be below spread high %f", t.SpreadLow, t.SpreadHigh)
	}
	if t.SpreadExtreme <= 0 {
		return fmt.Errorf("spread extreme must be positive, got %f", t.SpreadExtreme)
	}
	if !(t.LiquidityLow < t.LiquidityMedium && t.LiquidityMedium < t.LiquidityHigh) {
		return fmt.Errorf("liquidity thresholds must be strictly increasing: %f, %f, %f",
			t.LiquidityLow, t.LiquidityMedium, t.LiquidityHigh)
	}
	if !(t.YieldLow < t.YieldMedium && t.YieldMedium < t.YieldHigh) {
		return fmt.Errorf("yield thresholds must be strictly increasing: %f, %f, %f",
			t.YieldLow, t.YieldMedium, t.YieldHigh)
	}
	if t.MomentumDown >= t.MomentumUp {
		return fmt.Errorf("momentum down %f must be below momentum up %f", t.MomentumDown, t.MomentumUp)
	}
	return nil
}

// ClassifySignal maps an order plus its computed spread rate and liquidity
// score to exactly one of the six signals. Rules are evaluated in strict
// precedence; they are not mutually exclusive, so the order matters:
//
//  1. caution: extreme spread or non-positive prices (data-quality guard,
//     overrides everything else)
//  2. undervalued: discounted price with enough liquidity to act on
//  3. overvalued: premium price with enough liquidity to act on
//  4. high-liquidity
//  5. low-liquidity
//  6. normal
func ClassifySignal(order models.Order, spreadRate, liquidityScore float64, t Thresholds) models.Signal {
	abs := spreadRate
	if abs < 0 {
		abs = -abs
	}

	if abs > t.SpreadExtreme || order.OrderPrice <= 0 || order.RecentPrice <= 0 {
		return models.SignalCaution
	}

	if spreadRate < t.SpreadLow && liquidityScore > t.LiquidityMedium {
		return models.SignalUndervalued
	}

	if spreadRate > t.SpreadHigh && liquidityScore > t.LiquidityMedium {
		return models.SignalOvervalued
	}

	if liquidityScore > t.LiquidityHigh {
		return models.SignalHighLiquidity
	}

	if liquidityScore < t.LiquidityLow {
		return models.SignalLowLiquidity
	}

	return models.SignalNormal
}
