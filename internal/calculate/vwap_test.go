package calculate

import (
	"math"
	"testing"
	"time"

	"github.com/vwap-grader/grader/models"
)

func TestSessionVWAPSeries(t *testing.T) {
	candles := []models.Candle{
		{Datetime: "2024-03-05 09:30:00", High: 102, Low: 98, Close: 100, Volume: 10},
		{Datetime: "2024-03-05 09:35:00", High: 106, Low: 102, Close: 104, Volume: 30},
		{Datetime: "2024-03-06 09:30:00", High: 111, Low: 109, Close: 110, Volume: 5},
	}

	got := SessionVWAPSeries(candles)
	want := []float64{
		100,   // typical price of the first bar
		103,   // (100*10 + 104*30) / 40
		110,   // new session resets the accumulation
	}

	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("SessionVWAPSeries()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSessionVWAPSeriesWithoutVolume(t *testing.T) {
	candles := []models.Candle{
		{Datetime: "2024-03-05 09:30:00", High: 102, Low: 98, Close: 100},
		{Datetime: "2024-03-05 09:35:00", High: 106, Low: 102, Close: 104},
	}

	got := SessionVWAPSeries(candles)
	// Zero-volume bars weight equally: the series degrades to an average
	// of typical prices.
	if math.Abs(got[1]-102) > 1e-9 {
		t.Errorf("SessionVWAPSeries()[1] = %v, want 102", got[1])
	}
}

func TestAnchoredVWAPSeries(t *testing.T) {
	candles := []models.Candle{
		{Datetime: "2024-03-05 09:30:00", High: 102, Low: 98, Close: 100, Volume: 10},
		{Datetime: "2024-03-05 09:35:00", High: 106, Low: 102, Close: 104, Volume: 30},
		{Datetime: "2024-03-05 09:40:00", High: 111, Low: 109, Close: 110, Volume: 10},
	}
	anchor := time.Date(2024, 3, 5, 9, 35, 0, 0, time.UTC)

	got := AnchoredVWAPSeries(candles, anchor)

	if !math.IsNaN(got[0]) {
		t.Errorf("value before the anchor should be NaN, got %v", got[0])
	}
	if math.Abs(got[1]-104) > 1e-9 {
		t.Errorf("AnchoredVWAPSeries()[1] = %v, want 104", got[1])
	}
	want := (104.0*30 + 110.0*10) / 40.0
	if math.Abs(got[2]-want) > 1e-9 {
		t.Errorf("AnchoredVWAPSeries()[2] = %v, want %v", got[2], want)
	}
}

func TestAnchoredVWAPSeriesZeroAnchor(t *testing.T) {
	candles := []models.Candle{
		{Datetime: "2024-03-05 09:30:00", High: 102, Low: 98, Close: 100, Volume: 10},
	}

	got := AnchoredVWAPSeries(candles, time.Time{})
	if math.IsNaN(got[0]) {
		t.Error("zero anchor should establish the average at the first bar")
	}
}

func TestBarTime(t *testing.T) {
	tests := []struct {
		name     string
		datetime string
		wantErr  bool
	}{
		{name: "Intraday timestamp", datetime: "2024-03-05 09:30:00"},
		{name: "Daily date", datetime: "2024-03-05"},
		{name: "RFC3339", datetime: "2024-03-05T09:30:00Z"},
		{name: "Garbage", datetime: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BarTime(models.Candle{Datetime: tt.datetime})
			if (err != nil) != tt.wantErr {
				t.Errorf("BarTime() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSufficientHistory(t *testing.T) {
	candles := make([]models.Candle, 21)
	if !SufficientHistory(candles, 20) {
		t.Error("21 bars should be sufficient for a 20-period average plus one prior value")
	}
	if SufficientHistory(candles, 21) {
		t.Error("21 bars should not be sufficient for a 21-period average")
	}
}
