package metrics

import (
	"fmt"
	"math"
	"testing"
	"time"

	"royaltyflow/internal/models"
)

func makeOrder(songID string, typ models.OrderType, price, recent float64, qty int64) models.Order {
	return models.Order{
		OrderNo:     fmt.Sprintf("o-%s-%d", songID, qty),
		OrderDate:   time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		SongID:      songID,
		SongName:    "song " + songID,
		SongArtist:  "artist",
		OrderType:   typ,
		OrderStatus: models.OrderStatusPending,
		OrderPrice:  price,
		RecentPrice: recent,
		OrderCount:  qty,
		RoyaltyRate: 0.05,
	}
}

func TestLiquidityScoreEmptyCohort(t *testing.T) {
	if got := LiquidityScore(nil, DefaultLiquidityConfig()); got != 0 {
		t.Fatalf("empty cohort score = %f, want 0", got)
	}
}

func TestLiquidityScoreBalancedCohort(t *testing.T) {
	cfg := DefaultLiquidityConfig()

	// Four orders at market price, perfectly balanced 300/300 volume:
	// spread score 100, depth 50 (balance) + 30 (600/1000 volume) = 80,
	// frequency 4/50*100 = 8. Weighted: 40 + 24 + 2.4.
	cohort := []models.Order{
		makeOrder("s1", models.OrderTypeBuy, 1000, 1000, 100),
		makeOrder("s1", models.OrderTypeBuy, 1000, 1000, 200),
		makeOrder("s1", models.OrderTypeSell, 1000, 1000, 150),
		makeOrder("s1", models.OrderTypeSell, 1000, 1000, 150),
	}

	almostEqual(t, LiquidityScore(cohort, cfg), 66.4, 1e-9, "LiquidityScore")
}

func TestLiquidityScoreBounds(t *testing.T) {
	cfg := DefaultLiquidityConfig()

	cohorts := [][]models.Order{
		nil,
		{makeOrder("s1", models.OrderTypeBuy, 0, 1000, 10)},
		{makeOrder("s1", models.OrderTypeBuy, 5000, 100, 100000)},
		{
			makeOrder("s1", models.OrderTypeBuy, 1000, 1000, 0),
			makeOrder("s1", models.OrderTypeSell, 1000, 1000, 0),
		},
	}

	// A saturated cohort: 60 balanced orders at market price.
	big := make([]models.Order, 0, 60)
	for i := 0; i < 60; i++ {
		typ := models.OrderTypeBuy
		if i%2 == 1 {
			typ = models.OrderTypeSell
		}
		big = append(big, makeOrder("s1", typ, 1000, 1000, 100))
	}
	cohorts = append(cohorts, big)

	for i, cohort := range cohorts {
		score := LiquidityScore(cohort, cfg)
		if err := LiquidityInvariant(score); err != nil {
			t.Fatalf("cohort %d: %v", i, err)
		}
	}

	// The saturated cohort should hit the ceiling exactly.
	if got := LiquidityScore(big, cfg); got != 100 {
		t.Fatalf("saturated cohort score = %f, want 100", got)
	}
}

func TestLiquidityScoreZeroPriceOrderDoesNotPanic(t *testing.T) {
	cfg := DefaultLiquidityConfig()

	// Single order with a zero price: spread rate is -100%, so the spread
	// sub-score bottoms out at 0 but nothing divides by zero.
	cohort := []models.Order{makeOrder("s1", models.OrderTypeBuy, 0, 1000, 10)}

	score := LiquidityScore(cohort, cfg)
	if err := LiquidityInvariant(score); err != nil {
		t.Fatalf("zero price cohort: %v", err)
	}

	// depth: balance 0 + volume 10/1000*50 = 0.5; frequency 1/50*100 = 2.
	almostEqual(t, score, 0.5*0.3+2*0.3, 1e-9, "LiquidityScore")
}

func TestDepthScoreZeroVolume(t *testing.T) {
	cohort := []models.Order{
		makeOrder("s1", models.OrderTypeBuy, 1000, 1000, 0),
		makeOrder("s1", models.OrderTypeSell, 1000, 1000, 0),
	}

	if got := DepthScore(cohort, DefaultLiquidityConfig()); got != 0 {
		t.Fatalf("zero volume depth score = %f, want 0", got)
	}
}

func TestDepthScoreImbalancedCohort(t *testing.T) {
	// All volume on one side: no balance points, volume points only.
	cohort := []models.Order{
		makeOrder("s1", models.OrderTypeBuy, 1000, 1000, 500),
	}

	// balance = min(500, 0)/(250) = 0; volume = min(50, 500/1000*50) = 25.
	almostEqual(t, DepthScore(cohort, DefaultLiquidityConfig()), 25, 1e-9, "DepthScore")
}

func TestFrequencyScoreSaturation(t *testing.T) {
	cfg := DefaultLiquidityConfig()

	almostEqual(t, FrequencyScore(25, cfg), 50, 1e-9, "FrequencyScore")
	almostEqual(t, FrequencyScore(50, cfg), 100, 1e-9, "FrequencyScore")
	almostEqual(t, FrequencyScore(500, cfg), 100, 1e-9, "FrequencyScore")
}

func TestAverageSpreadMixedCohort(t *testing.T) {
	cohort := []models.Order{
		makeOrder("s1", models.OrderTypeBuy, 110, 100, 1),  // +10%
		makeOrder("s1", models.OrderTypeSell, 90, 100, 1),  // -10%
		makeOrder("s1", models.OrderTypeBuy, 100, 100, 1),  // 0%
		makeOrder("s1", models.OrderTypeSell, 120, 0, 1),   // zero guard -> 0%
	}

	almostEqual(t, AverageSpread(cohort), 0, 1e-9, "AverageSpread")
}

func TestSongLiquidityBreakdown(t *testing.T) {
	cfg := DefaultLiquidityConfig()

	cohort := []models.Order{
		makeOrder("s1", models.OrderTypeBuy, 1000, 1000, 100),
		makeOrder("s1", models.OrderTypeBuy, 1000, 1000, 200),
		makeOrder("s1", models.OrderTypeSell, 1000, 1000, 300),
	}

	got := SongLiquidity(cohort, cfg)

	if got.SongName != "song s1" {
		t.Fatalf("song name = %q", got.SongName)
	}
	if got.BuyCount != 2 || got.SellCount != 1 {
		t.Fatalf("counts = %d/%d, want 2/1", got.BuyCount, got.SellCount)
	}
	almostEqual(t, got.AvgSpread, 0, 1e-9, "AvgSpread")
	almostEqual(t, got.LiquidityScore, LiquidityScore(cohort, cfg), 1e-9, "LiquidityScore")
	almostEqual(t, got.DepthScore, DepthScore(cohort, cfg), 1e-9, "DepthScore")
	almostEqual(t, got.FrequencyScore, FrequencyScore(3, cfg), 1e-9, "FrequencyScore")

	empty := SongLiquidity(nil, cfg)
	if empty.SongName != "" || empty.LiquidityScore != 0 {
		t.Fatalf("empty cohort breakdown = %+v, want zero value", empty)
	}
}

func TestLiquidityScoreWideSpreadsFloorAtZeroSubScore(t *testing.T) {
	cfg := DefaultLiquidityConfig()

	// Average spread of 50% drives the spread sub-score to 0 rather than
	// negative; the composite stays within bounds.
	cohort := []models.Order{
		makeOrder("s1", models.OrderTypeBuy, 150, 100, 10),
		makeOrder("s1", models.OrderTypeSell, 150, 100, 10),
	}

	score := LiquidityScore(cohort, cfg)
	if score < 0 || math.IsNaN(score) {
		t.Fatalf("score = %f", score)
	}

	// Only depth (1 volume point) and frequency (4 points) contribute.
	almostEqual(t, score, (50+1)*0.3+4*0.3, 1e-9, "LiquidityScore")
}
