package calculate

import (
	talib "github.com/markcheno/go-talib"

	"github.com/vwap-grader/grader/models"
)

// EMASeries computes the exponential moving average of the close series.
// The returned slice is aligned with candles; entries inside the warm-up
// window (the first period-1 bars) are zero and must not be consumed.
func EMASeries(candles []models.Candle, period int) []float64 {
	if len(candles) == 0 || period < 1 {
		return nil
	}
	return talib.Ema(Closes(candles), period)
}

// SufficientHistory reports whether the candle window is long enough to
// read both the current and the previous value of an average with the
// given period. The evaluation engine withholds classification until this
// holds, so the core never sees a warm-up value.
func SufficientHistory(candles []models.Candle, period int) bool {
	return period >= 1 && len(candles) >= period+1
}
