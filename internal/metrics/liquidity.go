package metrics

import (
	"fmt"
	"math"

	"royaltyflow/internal/models"
)

// LiquidityConfig contains the tuning constants for liquidity scoring. The
// saturation points have no documented derivation upstream, so they live here
// as overridable defaults rather than fixed constants.
type LiquidityConfig struct {
	SpreadPenalty       float64 // points of spread score lost per 1% of average spread
	VolumeSaturation    float64 // cohort volume (units) at which the volume sub-score maxes out
	FrequencySaturation int     // cohort size at which the frequency sub-score maxes out
	SpreadWeight        float64
	DepthWeight         float64
	FrequencyWeight     float64
}

// DefaultLiquidityConfig returns the default scoring configuration.
func DefaultLiquidityConfig() LiquidityConfig {
	return LiquidityConfig{
		SpreadPenalty:       5,
		VolumeSaturation:    1000,
		FrequencySaturation: 50,
		SpreadWeight:        0.4,
		DepthWeight:         0.3,
		FrequencyWeight:     0.3,
	}
}

// LiquidityScore computes the composite 0-100 liquidity score for a song from
// its cohort of orders (every order sharing the song id, including the order
// being scored).
//
// Three independently bounded sub-scores are combined:
//   - spread score: max(0, 100 - |avg spread| * SpreadPenalty); average spreads
//     of 20% or more in magnitude drive this to 0 under defaults
//   - depth score: buy/sell balance (0-50) plus volume saturation (0-50)
//   - frequency score: min(100, cohort size / FrequencySaturation * 100)
//
// An empty cohort scores 0. Cannot happen when the scored order is a cohort
// member, but the guard keeps the function total.
func LiquidityScore(cohort []models.Order, cfg LiquidityConfig) float64 {
	if len(cohort) == 0 {
		return 0
	}

	avgSpread := AverageSpread(cohort)
	spreadScore := math.Max(0, 100-math.Abs(avgSpread)*cfg.SpreadPenalty)

	depthScore := DepthScore(cohort, cfg)

	frequencyScore := FrequencyScore(len(cohort), cfg)

	return spreadScore*cfg.SpreadWeight + depthScore*cfg.DepthWeight + frequencyScore*cfg.FrequencyWeight
}

// AverageSpread is the mean spread rate over a cohort. Empty cohorts average
// to 0.
func AverageSpread(cohort []models.Order) float64 {
	if len(cohort) == 0 {
		return 0
	}

	var sum float64
	for _, o := range cohort {
		sum += SpreadRate(o.OrderPrice, o.RecentPrice)
	}
	return sum / float64(len(cohort))
}

// DepthScore rewards order-book depth and buy/sell balance, each side
// contributing up to 50 points.
//
//	balance = min(buyVolume, sellVolume) / (totalVolume / 2) * 50
//	volume  = min(50, totalVolume / VolumeSaturation * 50)
//
// A cohort with zero total volume scores 0.
func DepthScore(cohort []models.Order, cfg LiquidityConfig) float64 {
	var buyVolume, sellVolume float64
	for _, o := range cohort {
		switch o.OrderType {
		case models.OrderTypeBuy:
			buyVolume += float64(o.OrderCount)
		case models.OrderTypeSell:
			sellVolume += float64(o.OrderCount)
		}
	}

	totalVolume := buyVolume + sellVolume
	if totalVolume == 0 {
		return 0
	}

	balanceScore := math.Min(buyVolume, sellVolume) / (totalVolume / 2) * 50

	volumeScore := math.Min(50, totalVolume/cfg.VolumeSaturation*50)

	return balanceScore + volumeScore
}

// FrequencyScore rewards how many orders exist for the song, saturating at
// cfg.FrequencySaturation orders.
func FrequencyScore(cohortSize int, cfg LiquidityConfig) float64 {
	return math.Min(100, float64(cohortSize)/float64(cfg.FrequencySaturation)*100)
}

// SongLiquidity computes the per-song liquidity breakdown shown alongside the
// composite score.
func SongLiquidity(cohort []models.Order, cfg LiquidityConfig) models.LiquidityMetrics {
	if len(cohort) == 0 {
		return models.LiquidityMetrics{}
	}

	var buyCount, sellCount int
	for _, o := range cohort {
		switch o.OrderType {
		case models.OrderTypeBuy:
			buyCount++
		case models.OrderTypeSell:
			sellCount++
		}
	}

	return models.LiquidityMetrics{
		SongName:       cohort[0].SongName,
		BuyCount:       buyCount,
		SellCount:      sellCount,
		AvgSpread:      AverageSpread(cohort),
		LiquidityScore: LiquidityScore(cohort, cfg),
		DepthScore:     DepthScore(cohort, cfg),
		FrequencyScore: FrequencyScore(len(cohort), cfg),
	}
}

// LiquidityInvariant validates the composite score bounds.
func LiquidityInvariant(score float64) error {
	if score < 0 || score > 100 {
		return fmt.Errorf("liquidity score %f not in range [0, 100]", score)
	}
	return nil
}
