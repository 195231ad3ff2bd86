package calculate

import (
	"fmt"
	"time"

	"github.com/vwap-grader/grader/models"
)

// Datetime layouts produced by the Twelve Data feed.
const (
	barTimeLayout = "2006-01-02 15:04:05"
	barDateLayout = "2006-01-02"
)

// BarTime parses a candle's datetime field. Intraday candles carry a full
// timestamp, daily candles only a date.
func BarTime(c models.Candle) (time.Time, error) {
	if t, err := time.Parse(barTimeLayout, c.Datetime); err == nil {
		return t, nil
	}
	if t, err := time.Parse(barDateLayout, c.Datetime); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, c.Datetime); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized candle datetime %q", c.Datetime)
}

// Closes extracts the close series from candles.
func Closes(candles []models.Candle) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return closes
}

// TypicalPrice is the (high + low + close) / 3 price used for
// volume-weighted averaging.
func TypicalPrice(c models.Candle) float64 {
	return (c.High + c.Low + c.Close) / 3.0
}
