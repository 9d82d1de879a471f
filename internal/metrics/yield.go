package metrics

import "fmt"

// SpreadRate computes the percentage difference between an order's price and
// the song's most recent traded price.
//
//	spread_rate = (order_price - recent_price) / recent_price * 100
//
// A zero or absent recent price yields 0 by policy; the engine never divides
// by zero.
func SpreadRate(orderPrice, recentPrice float64) float64 {
	if recentPrice == 0 {
		return 0
	}
	return (orderPrice - recentPrice) / recentPrice * 100.0
}

// BaseYield converts the annual royalty rate to a percentage.
//
//	base_yield = royalty_rate * 100
//
// This is the yield an investor earns buying at the last-traded price, and
// the normalized baseline every order is compared against.
func BaseYield(royaltyRate float64) float64 {
	return royaltyRate * 100.0
}

// ExpectedYield computes the annualized yield realized at the order's price.
//
//	expected_yield = (royalty_rate * recent_price) / order_price * 100
//
// Annual royalty income is royalty_rate × recent_price; dividing by the actual
// capital outlay gives the yield the buyer of this order realizes. Zero or
// absent prices on either side yield 0.
func ExpectedYield(royaltyRate, recentPrice, orderPrice float64) float64 {
	if orderPrice == 0 {
		return 0
	}
	if recentPrice == 0 {
		return 0
	}
	return (royaltyRate * recentPrice) / orderPrice * 100.0
}

// YieldAdvantage is how much more (positive) or less (negative) favorable an
// order's realized yield is than the market baseline.
//
//	yield_advantage = expected_yield - base_yield
func YieldAdvantage(expectedYield, baseYield float64) float64 {
	return expectedYield - baseYield
}

// YieldInvariant validates the relationship between the three yield metrics.
// Useful for property-based testing.
func YieldInvariant(baseYield, expectedYield, yieldAdvantage float64) error {
	if got := expectedYield - baseYield; !approxEqual(got, yieldAdvantage, 1e-9) {
		return fmt.Errorf("yield_advantage %f != expected_yield-base_yield %f", yieldAdvantage, got)
	}
	return nil
}

func approxEqual(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}
