// Package engine derives investment metrics over whole order batches.
//
// Every run is a pure function of its input slice: the engine holds only
// configuration, so concurrent batch computations need no coordination.
package engine

import (
	"math"
	"sort"
	"time"

	"royaltyflow/internal/metrics"
	"royaltyflow/internal/models"
)

// Engine computes the derived metric set for order batches.
type Engine struct {
	thresholds metrics.Thresholds
	liquidity  metrics.LiquidityConfig
}

// New creates an engine with the given configuration.
func New(thresholds metrics.Thresholds, liquidity metrics.LiquidityConfig) *Engine {
	return &Engine{
		thresholds: thresholds,
		liquidity:  liquidity,
	}
}

// ComputeMetrics enriches every order with spread rate, yields, liquidity
// score and signal. Cardinality and input order are preserved; no record is
// dropped or mutated.
//
// Cohorts are grouped by song id once up front instead of filtering the full
// set per order, so a batch costs O(n) grouping plus O(cohort) per order
// rather than O(n^2).
func (e *Engine) ComputeMetrics(orders []models.Order) []models.OrderWithMetrics {
	cohorts := groupBySong(orders)

	enriched := make([]models.OrderWithMetrics, 0, len(orders))
	for _, order := range orders {
		spreadRate := metrics.SpreadRate(order.OrderPrice, order.RecentPrice)
		baseYield := metrics.BaseYield(order.RoyaltyRate)
		expectedYield := metrics.ExpectedYield(order.RoyaltyRate, order.RecentPrice, order.OrderPrice)
		yieldAdvantage := metrics.YieldAdvantage(expectedYield, baseYield)

		liquidityScore := metrics.LiquidityScore(cohorts[order.SongID], e.liquidity)

		signal := metrics.ClassifySignal(order, spreadRate, liquidityScore, e.thresholds)

		enriched = append(enriched, models.OrderWithMetrics{
			Order:          order,
			SpreadRate:     spreadRate,
			BaseYield:      baseYield,
			ExpectedYield:  expectedYield,
			YieldAdvantage: yieldAdvantage,
			LiquidityScore: liquidityScore,
			Signal:         signal,
		})
	}

	return enriched
}

// Summary aggregates an enriched batch into the dashboard summary counters.
func (e *Engine) Summary(orders []models.OrderWithMetrics, now time.Time) models.SummaryMetrics {
	s := models.SummaryMetrics{
		TotalOrders: len(orders),
		Timestamp:   now,
	}

	var spreadSum, yieldSum, liquiditySum float64
	for _, o := range orders {
		switch o.OrderType {
		case models.OrderTypeBuy:
			s.BuyOrders++
		case models.OrderTypeSell:
			s.SellOrders++
		}

		spreadSum += o.SpreadRate
		yieldSum += o.ExpectedYield
		liquiditySum += o.LiquidityScore

		if math.Abs(o.SpreadRate) <= e.thresholds.SpreadInstantMatch {
			s.InstantMatchCount++
		}
		if o.ExpectedYield >= e.thresholds.YieldHigh {
			s.HighYieldCount++
		}
		if o.SpreadRate < e.thresholds.SpreadLow {
			s.UndervaluedCount++
		}
	}

	if len(orders) > 0 {
		n := float64(len(orders))
		s.AvgSpreadRate = spreadSum / n
		s.AvgExpectedYield = yieldSum / n
		s.AvgLiquidityScore = liquiditySum / n
	}

	return s
}

// TopMomentum groups the batch by song, computes momentum for every song with
// at least two orders, and returns the strongest movers ranked by absolute
// momentum score, truncated to limit.
func (e *Engine) TopMomentum(orders []models.Order, limit int) []models.MomentumData {
	cohorts := groupBySong(orders)

	ranked := make([]models.MomentumData, 0, len(cohorts))
	for songID, cohort := range cohorts {
		if len(cohort) < 2 {
			continue
		}
		ranked = append(ranked, metrics.PriceMomentum(orders, songID, e.thresholds))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		ai, aj := math.Abs(ranked[i].MomentumScore), math.Abs(ranked[j].MomentumScore)
		if ai != aj {
			return ai > aj
		}
		// Deterministic order for equal scores; map iteration is random.
		return ranked[i].SongName < ranked[j].SongName
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return ranked
}

// SongLiquidity returns the per-song liquidity breakdown for one song id.
func (e *Engine) SongLiquidity(orders []models.Order, songID string) models.LiquidityMetrics {
	cohorts := groupBySong(orders)
	return metrics.SongLiquidity(cohorts[songID], e.liquidity)
}

// groupBySong builds the song-id cohort index used for liquidity scoring and
// momentum analysis. Orders without a song id form no cohort and score 0.
func groupBySong(orders []models.Order) map[string][]models.Order {
	cohorts := make(map[string][]models.Order)
	for _, o := range orders {
		if o.SongID == "" {
			continue
		}
		cohorts[o.SongID] = append(cohorts[o.SongID], o)
	}
	return cohorts
}
