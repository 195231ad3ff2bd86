package models

import (
	"time"
)

// Candle represents a single price candle
type Candle struct {
	Datetime string  `json:"datetime"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   int64   `json:"volume,omitempty"`
}

// TwelveResponse represents the API response from Twelve Data
type TwelveResponse struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Interval string `json:"interval"`
	} `json:"meta"`
	Values []struct {
		Datetime string  `json:"datetime"`
		Open     float64 `json:"open,string"`
		High     float64 `json:"high,string"`
		Low      float64 `json:"low,string"`
		Close    float64 `json:"close,string"`
		Volume   int64   `json:"volume,string,omitempty"`
	} `json:"values"`
	Status string `json:"status"`
}

// TrendRegime is the classifier's label for the overall directional
// market bias at the current bar.
type TrendRegime int

const (
	RegimeNeutral TrendRegime = iota
	RegimeBull
	RegimeStrongBull
	RegimeBear
)

// String returns the uppercase label used in logs and storage.
func (r TrendRegime) String() string {
	switch r {
	case RegimeStrongBull:
		return "STRONG_BULL"
	case RegimeBull:
		return "BULL"
	case RegimeBear:
		return "BEAR"
	default:
		return "NEUTRAL"
	}
}

// ParseTrendRegime converts a stored label back into a TrendRegime.
// Unknown labels map to NEUTRAL.
func ParseTrendRegime(s string) TrendRegime {
	switch s {
	case "STRONG_BULL":
		return RegimeStrongBull
	case "BULL":
		return RegimeBull
	case "BEAR":
		return RegimeBear
	default:
		return RegimeNeutral
	}
}

// EntryQuality grades how favorable a potential entry is for one
// direction. Values are ordered worst to best, so quality comparisons
// with < and > are meaningful.
type EntryQuality int

const (
	QualityForbidden EntryQuality = iota
	QualityRisky
	QualityFavorable
	QualityOptimal
)

// String returns the uppercase label used in logs and storage.
func (q EntryQuality) String() string {
	switch q {
	case QualityOptimal:
		return "OPTIMAL"
	case QualityFavorable:
		return "FAVORABLE"
	case QualityRisky:
		return "RISKY"
	default:
		return "FORBIDDEN"
	}
}

// ParseEntryQuality converts a stored label back into an EntryQuality.
// Unknown labels map to FORBIDDEN.
func ParseEntryQuality(s string) EntryQuality {
	switch s {
	case "OPTIMAL":
		return QualityOptimal
	case "FAVORABLE":
		return QualityFavorable
	case "RISKY":
		return QualityRisky
	default:
		return QualityForbidden
	}
}

// BarContext carries the per-bar inputs the classifier and graders read.
// It is built fresh for every completed bar from the upstream series and
// discarded after the evaluation; the only history it carries is the
// previous fast-average and previous anchored-average value.
type BarContext struct {
	Price                   float64 `json:"price"`
	FastAverage             float64 `json:"fast_average"`
	SlowAverage             float64 `json:"slow_average"`
	FastAveragePrevious     float64 `json:"fast_average_previous"`
	SessionAverage          float64 `json:"session_average"`
	AnchoredAverageCurrent  float64 `json:"anchored_average_current"`
	AnchoredAveragePrevious float64 `json:"anchored_average_previous"`
	TickSize                float64 `json:"tick_size"`
}

// GradingParameters is the process-wide distance configuration shared by
// both graders. Min and Max are each at least 1; Min > Max is allowed and
// simply makes the optimal distance band empty.
type GradingParameters struct {
	MinDistanceTicks int `json:"min_distance_ticks"`
	MaxDistanceTicks int `json:"max_distance_ticks"`
}

// BarClassification is the persisted outcome of one bar evaluation.
type BarClassification struct {
	ID            string       `json:"id"`
	Symbol        string       `json:"symbol"`
	Interval      string       `json:"interval"`
	BarTime       time.Time    `json:"bar_time"`
	Price         float64      `json:"price"`
	Regime        TrendRegime  `json:"regime"`
	LongQuality   EntryQuality `json:"long_quality"`
	ShortQuality  EntryQuality `json:"short_quality"`
	DistanceTicks float64      `json:"distance_ticks"`
	CreatedAt     time.Time    `json:"created_at"`
}
