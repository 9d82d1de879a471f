package metrics

import (
	"sort"
	"time"

	"royaltyflow/internal/models"
)

// PriceMomentum computes the trend classification for one song from its
// time-ordered orders within the full order set.
//
// The estimator deliberately uses only the first and last price of the sorted
// sequence, not a moving average; it mirrors the dashboard's definition of
// momentum as total drift over the observed window.
//
// Fewer than 2 orders for the song is a defined neutral result (stable trend,
// zero scores, empty sequences), not an error.
func PriceMomentum(orders []models.Order, songID string, t Thresholds) models.MomentumData {
	cohort := make([]models.Order, 0, 8)
	for _, o := range orders {
		if o.SongID == songID {
			cohort = append(cohort, o)
		}
	}

	sort.SliceStable(cohort, func(i, j int) bool {
		return cohort[i].OrderDate.Before(cohort[j].OrderDate)
	})

	if len(cohort) < 2 {
		md := models.MomentumData{
			Trend:  models.TrendStable,
			Prices: []float64{},
			Dates:  []time.Time{},
		}
		if len(cohort) == 1 {
			md.SongName = cohort[0].SongName
			md.SongArtist = cohort[0].SongArtist
		}
		return md
	}

	prices := make([]float64, len(cohort))
	dates := make([]time.Time, len(cohort))
	for i, o := range cohort {
		prices[i] = o.OrderPrice
		dates[i] = o.OrderDate
	}

	firstPrice := prices[0]
	lastPrice := prices[len(prices)-1]

	var changePct float64
	if firstPrice != 0 {
		changePct = (lastPrice - firstPrice) / firstPrice * 100.0
	}

	trend := models.TrendStable
	switch {
	case changePct > t.MomentumUp:
		trend = models.TrendUp
	case changePct < t.MomentumDown:
		trend = models.TrendDown
	}

	return models.MomentumData{
		SongName:            cohort[0].SongName,
		SongArtist:          cohort[0].SongArtist,
		Prices:              prices,
		Dates:               dates,
		Trend:               trend,
		MomentumScore:       clamp(changePct, -100, 100),
		RecentChangePercent: changePct,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
