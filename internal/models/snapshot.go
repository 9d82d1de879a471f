package models

import "time"

// OrdersSnapshot is the enriched batch document published to the cache after
// every engine run.
type OrdersSnapshot struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Source      string             `json:"source"`
	Orders      []OrderWithMetrics `json:"orders"`
}

// MomentumSnapshot is the ranked momentum document published to the cache.
type MomentumSnapshot struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Songs       []MomentumData `json:"songs"`
}
