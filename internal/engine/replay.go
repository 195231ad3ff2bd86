package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vwap-grader/grader/models"
)

// ReplayResults summarizes a historical run of the grader: how each bar was
// classified and how often the grades moved. No P&L is computed — the
// system labels opportunity quality, it does not trade.
type ReplayResults struct {
	BarsEvaluated int            `json:"bars_evaluated"`
	BarsWithheld  int            `json:"bars_withheld"`
	RegimeCounts  map[string]int `json:"regime_counts"`
	LongCounts    map[string]int `json:"long_counts"`
	ShortCounts   map[string]int `json:"short_counts"`
	GradeChanges  int            `json:"grade_changes"`
	FirstBar      time.Time      `json:"first_bar"`
	LastBar       time.Time      `json:"last_bar"`
}

// Replay evaluates every bar of the historical window in order and
// aggregates the outcomes. Bars withheld for insufficient history or an
// unestablished anchor are counted but not classified.
func (e *Engine) Replay(candles []models.Candle) (*ReplayResults, error) {
	s, err := e.computeSeries(candles)
	if err != nil {
		return nil, err
	}

	results := &ReplayResults{
		RegimeCounts: make(map[string]int),
		LongCounts:   make(map[string]int),
		ShortCounts:  make(map[string]int),
	}

	var prev *Evaluation
	for i := range candles {
		eval, err := e.evaluateAt(candles, s, i)
		if err != nil {
			if errors.Is(err, ErrInsufficientHistory) || errors.Is(err, ErrAnchorNotEstablished) {
				results.BarsWithheld++
				continue
			}
			return nil, err
		}

		if results.BarsEvaluated == 0 {
			results.FirstBar = eval.BarTime
		}
		results.LastBar = eval.BarTime
		results.BarsEvaluated++
		results.RegimeCounts[eval.Regime.String()]++
		results.LongCounts[eval.Long.String()]++
		results.ShortCounts[eval.Short.String()]++

		if prev != nil && (prev.Long != eval.Long || prev.Short != eval.Short) {
			results.GradeChanges++
		}
		prev = eval
	}

	if results.BarsEvaluated == 0 {
		return nil, ErrInsufficientHistory
	}

	return results, nil
}

// FormatResults renders replay results for the console.
func FormatResults(r *ReplayResults) string {
	var sb strings.Builder

	sb.WriteString("\n===== REPLAY RESULTS =====\n")
	sb.WriteString(fmt.Sprintf("Window: %s — %s\n",
		r.FirstBar.Format(time.RFC3339), r.LastBar.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Bars evaluated: %d (withheld: %d)\n", r.BarsEvaluated, r.BarsWithheld))
	sb.WriteString(fmt.Sprintf("Grade changes: %d\n", r.GradeChanges))

	sb.WriteString("\nRegimes:\n")
	writeCounts(&sb, r.RegimeCounts, r.BarsEvaluated)
	sb.WriteString("\nLong grades:\n")
	writeCounts(&sb, r.LongCounts, r.BarsEvaluated)
	sb.WriteString("\nShort grades:\n")
	writeCounts(&sb, r.ShortCounts, r.BarsEvaluated)

	return sb.String()
}

func writeCounts(sb *strings.Builder, counts map[string]int, total int) {
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	// Stable output: highest count first, ties alphabetical.
	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}
		return labels[i] < labels[j]
	})
	for _, label := range labels {
		sb.WriteString(fmt.Sprintf("  %-12s %5d (%.1f%%)\n",
			label, counts[label], float64(counts[label])/float64(total)*100))
	}
}
