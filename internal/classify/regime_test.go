package classify

import (
	"testing"

	"github.com/vwap-grader/grader/models"
)

func TestClassifyRegime(t *testing.T) {
	tests := []struct {
		name     string
		ctx      models.BarContext
		expected models.TrendRegime
	}{
		{
			name: "Strong bull with all four conditions",
			ctx: models.BarContext{
				Price:               105,
				FastAverage:         104,
				SlowAverage:         100,
				FastAveragePrevious: 102,
				SessionAverage:      103,
			},
			expected: models.RegimeStrongBull,
		},
		{
			name: "Strong bear with all four conditions",
			ctx: models.BarContext{
				Price:               95,
				FastAverage:         96,
				SlowAverage:         100,
				FastAveragePrevious: 98,
				SessionAverage:      97,
			},
			expected: models.RegimeBear,
		},
		{
			name: "Plain bull when price is below the session average",
			ctx: models.BarContext{
				Price:               105,
				FastAverage:         104,
				SlowAverage:         100,
				FastAveragePrevious: 102,
				SessionAverage:      106,
			},
			expected: models.RegimeBull,
		},
		{
			name: "Plain bull when the fast average slope is down",
			ctx: models.BarContext{
				Price:               105,
				FastAverage:         104,
				SlowAverage:         100,
				FastAveragePrevious: 104.5,
				SessionAverage:      103,
			},
			expected: models.RegimeBull,
		},
		{
			name: "Weak bear via the crossover catch-all",
			ctx: models.BarContext{
				Price:               95,
				FastAverage:         96,
				SlowAverage:         100,
				FastAveragePrevious: 95.5,
				SessionAverage:      94,
			},
			expected: models.RegimeBear,
		},
		{
			name: "Price exactly on the fast average is neutral",
			ctx: models.BarContext{
				Price:               104,
				FastAverage:         104,
				SlowAverage:         100,
				FastAveragePrevious: 102,
				SessionAverage:      103,
			},
			expected: models.RegimeNeutral,
		},
		{
			name: "Fast equal to slow is neutral",
			ctx: models.BarContext{
				Price:               105,
				FastAverage:         100,
				SlowAverage:         100,
				FastAveragePrevious: 99,
				SessionAverage:      99,
			},
			expected: models.RegimeNeutral,
		},
		{
			name: "Conflicting price and crossover is neutral",
			ctx: models.BarContext{
				Price:               105,
				FastAverage:         104,
				SlowAverage:         110,
				FastAveragePrevious: 102,
				SessionAverage:      103,
			},
			expected: models.RegimeNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClassifyRegime(tt.ctx)
			if result != tt.expected {
				t.Errorf("ClassifyRegime() = %v, want %v", result, tt.expected)
			}
			// Pure function: a second call with the same input must agree.
			if again := ClassifyRegime(tt.ctx); again != result {
				t.Errorf("ClassifyRegime() not deterministic: %v then %v", result, again)
			}
		})
	}
}

// TestClassifyRegimeTotality sweeps a grid of inputs and checks that every
// combination lands on exactly one known regime, and that whenever the
// strong-bull rule fires the plain bull predicate also holds.
func TestClassifyRegimeTotality(t *testing.T) {
	levels := []float64{98, 99, 100, 101, 102}

	for _, price := range levels {
		for _, fast := range levels {
			for _, slow := range levels {
				for _, fastPrev := range levels {
					for _, session := range levels {
						ctx := models.BarContext{
							Price:               price,
							FastAverage:         fast,
							SlowAverage:         slow,
							FastAveragePrevious: fastPrev,
							SessionAverage:      session,
						}
						regime := ClassifyRegime(ctx)

						switch regime {
						case models.RegimeStrongBull, models.RegimeBull, models.RegimeNeutral, models.RegimeBear:
						default:
							t.Fatalf("ClassifyRegime() returned unknown regime %d for %+v", regime, ctx)
						}

						if regime == models.RegimeStrongBull {
							if !(price > fast && fast > slow) {
								t.Errorf("strong bull fired without the bull predicate for %+v", ctx)
							}
						}
					}
				}
			}
		}
	}
}
