package calculate

import (
	"math"
	"time"

	"github.com/vwap-grader/grader/models"
)

// SessionVWAPSeries computes the session-anchored volume-weighted average
// price for every bar. Accumulation starts over whenever the bar's calendar
// date (UTC) changes, so each trading session carries its own average.
// Bars with no volume (common on forex feeds) are weighted equally, which
// degrades the measure to a time-weighted average rather than dropping it.
func SessionVWAPSeries(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	var priceVolumeSum, volumeSum float64
	var sessionDay time.Time

	for i, c := range candles {
		if t, err := BarTime(c); err == nil {
			day := t.UTC().Truncate(24 * time.Hour)
			if !day.Equal(sessionDay) {
				sessionDay = day
				priceVolumeSum = 0
				volumeSum = 0
			}
		}

		w := float64(c.Volume)
		if w <= 0 {
			w = 1
		}
		priceVolumeSum += TypicalPrice(c) * w
		volumeSum += w
		out[i] = priceVolumeSum / volumeSum
	}
	return out
}

// AnchoredVWAPSeries computes a volume-weighted average price accumulated
// from the first bar at or after the anchor time. Entries before the anchor
// are NaN: the anchored average is simply not established yet, and the
// evaluation engine must withhold classification for those bars. A zero
// anchor time anchors at the first bar of the window.
func AnchoredVWAPSeries(candles []models.Candle, anchor time.Time) []float64 {
	out := make([]float64, len(candles))
	var priceVolumeSum, volumeSum float64
	established := anchor.IsZero()

	for i, c := range candles {
		if !established {
			t, err := BarTime(c)
			if err != nil || t.Before(anchor) {
				out[i] = math.NaN()
				continue
			}
			established = true
		}

		w := float64(c.Volume)
		if w <= 0 {
			w = 1
		}
		priceVolumeSum += TypicalPrice(c) * w
		volumeSum += w
		out[i] = priceVolumeSum / volumeSum
	}
	return out
}
