package models

import "time"

// OrderType is the side of a copyright trading order.
type OrderType string

const (
	OrderTypeBuy  OrderType = "buy"
	OrderTypeSell OrderType = "sell"
)

// OrderStatus is the lifecycle state reported by the upstream feed.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusFilled    OrderStatus = "filled"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Signal is the categorical investment label assigned to an order.
// The set is closed; Valid reports membership.
type Signal string

const (
	SignalCaution       Signal = "caution"
	SignalUndervalued   Signal = "undervalued"
	SignalOvervalued    Signal = "overvalued"
	SignalHighLiquidity Signal = "high-liquidity"
	SignalLowLiquidity  Signal = "low-liquidity"
	SignalNormal        Signal = "normal"
)

// Signals lists every signal variant, in classifier precedence order.
var Signals = []Signal{
	SignalCaution,
	SignalUndervalued,
	SignalOvervalued,
	SignalHighLiquidity,
	SignalLowLiquidity,
	SignalNormal,
}

// Valid reports whether s is one of the six known signals.
func (s Signal) Valid() bool {
	switch s {
	case SignalCaution, SignalUndervalued, SignalOvervalued,
		SignalHighLiquidity, SignalLowLiquidity, SignalNormal:
		return true
	}
	return false
}

// Order is a normalized music-copyright trading order as produced by the
// ingestor. Field names follow the upstream feed. Orders are immutable once
// fetched; royalty_rate is a song-level value carried per order.
type Order struct {
	OrderNo      string      `json:"order_no"`
	OrderDate    time.Time   `json:"order_date"`
	SongID       string      `json:"song_id"` // derived from url_link by the ingestor
	SongName     string      `json:"song_name"`
	SongArtist   string      `json:"song_artist"`
	SongCategory string      `json:"song_category"`
	OrderType    OrderType   `json:"order_type"`
	OrderStatus  OrderStatus `json:"order_status"`
	OrderPrice   float64     `json:"order_price"`
	OrderCount   int64       `json:"order_count"`
	LeavesCount  int64       `json:"leaves_count"`
	RecentPrice  float64     `json:"recent_price"`
	RoyaltyRate  float64     `json:"royalty_rate"` // fraction, e.g. 0.082 = 8.2%/year
	URLLink      string      `json:"url_link,omitempty"`
}

// OrderWithMetrics is an Order plus the derived metric fields. Recomputed in
// full on every batch run, never persisted beyond the cache TTL.
type OrderWithMetrics struct {
	Order

	SpreadRate     float64 `json:"spread_rate"`     // signed %
	BaseYield      float64 `json:"base_yield"`      // %
	ExpectedYield  float64 `json:"expected_yield"`  // %
	YieldAdvantage float64 `json:"yield_advantage"` // expected - base, signed %
	LiquidityScore float64 `json:"liquidity_score"` // [0, 100]
	Signal         Signal  `json:"signal"`
}

// MomentumData is the per-song trend classification derived from the
// first-to-last price change across time-ordered orders.
type MomentumData struct {
	SongName            string      `json:"song_name"`
	SongArtist          string      `json:"song_artist"`
	Prices              []float64   `json:"prices"`
	Dates               []time.Time `json:"dates"`
	Trend               Trend       `json:"trend"`
	MomentumScore       float64     `json:"momentum_score"`        // clamped to [-100, 100]
	RecentChangePercent float64     `json:"recent_change_percent"` // unclamped
}

// Trend is the momentum direction for a song.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// SummaryMetrics aggregates one enriched batch for the dashboard cards.
type SummaryMetrics struct {
	TotalOrders       int       `json:"total_orders"`
	BuyOrders         int       `json:"buy_orders"`
	SellOrders        int       `json:"sell_orders"`
	AvgSpreadRate     float64   `json:"avg_spread_rate"`
	AvgExpectedYield  float64   `json:"avg_expected_yield"`
	AvgLiquidityScore float64   `json:"avg_liquidity_score"`
	InstantMatchCount int       `json:"instant_match_count"`
	HighYieldCount    int       `json:"high_yield_count"`
	UndervaluedCount  int       `json:"undervalued_count"`
	Timestamp         time.Time `json:"timestamp"`
}

// LiquidityMetrics is the per-song liquidity breakdown exposed alongside the
// composite score.
type LiquidityMetrics struct {
	SongName       string  `json:"song_name"`
	BuyCount       int     `json:"buy_count"`
	SellCount      int     `json:"sell_count"`
	AvgSpread      float64 `json:"avg_spread"`
	LiquidityScore float64 `json:"liquidity_score"`
	DepthScore     float64 `json:"depth_score"`
	FrequencyScore float64 `json:"frequency_score"`
}

// OrderBatchEnvelope is the wire format the ingestor publishes to the Redis
// stream and the engine consumes.
type OrderBatchEnvelope struct {
	Source    string    `json:"source"` // e.g. "musicow"
	FetchedAt time.Time `json:"fetched_at"`
	Orders    []Order   `json:"orders"`
}
