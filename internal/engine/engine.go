package engine

import (
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vwap-grader/grader/internal/calculate"
	"github.com/vwap-grader/grader/internal/classify"
	"github.com/vwap-grader/grader/models"
)

var (
	// ErrInsufficientHistory is returned while the candle window is too
	// short for the averages to be defined. The caller should wait for
	// more bars rather than treat this as a failure.
	ErrInsufficientHistory = errors.New("insufficient history for averages")

	// ErrAnchorNotEstablished is returned while the anchored average has
	// no value at the bar being evaluated (or at the bar before it).
	ErrAnchorNotEstablished = errors.New("anchored average not established")
)

// Options configures an evaluation engine.
type Options struct {
	FastPeriod int
	SlowPeriod int
	TickSize   float64
	Anchor     time.Time
	Params     models.GradingParameters
}

// Engine evaluates completed bars: it assembles a BarContext from the
// computed series and runs the regime classifier and both entry graders in
// dependency order. It holds no per-bar state; every evaluation is a pure
// function of the candle window and the startup configuration.
type Engine struct {
	fastPeriod int
	slowPeriod int
	tickSize   float64
	anchor     time.Time
	params     models.GradingParameters
	logger     zerolog.Logger
}

// New creates an evaluation engine.
func New(opts Options) *Engine {
	return &Engine{
		fastPeriod: opts.FastPeriod,
		slowPeriod: opts.SlowPeriod,
		tickSize:   opts.TickSize,
		anchor:     opts.Anchor,
		params:     opts.Params,
		logger:     log.With().Str("component", "engine").Logger(),
	}
}

// Evaluation is the outcome of classifying one completed bar.
type Evaluation struct {
	BarTime       time.Time           `json:"bar_time"`
	Context       models.BarContext   `json:"context"`
	Regime        models.TrendRegime  `json:"regime"`
	Long          models.EntryQuality `json:"long"`
	Short         models.EntryQuality `json:"short"`
	DistanceTicks float64             `json:"distance_ticks"`
}

// series bundles the per-window indicator series the engine reads.
type series struct {
	fast     []float64
	slow     []float64
	session  []float64
	anchored []float64
}

func (e *Engine) computeSeries(candles []models.Candle) (*series, error) {
	if !calculate.SufficientHistory(candles, e.slowPeriod) || !calculate.SufficientHistory(candles, e.fastPeriod) {
		return nil, ErrInsufficientHistory
	}

	return &series{
		fast:     calculate.EMASeries(candles, e.fastPeriod),
		slow:     calculate.EMASeries(candles, e.slowPeriod),
		session:  calculate.SessionVWAPSeries(candles),
		anchored: calculate.AnchoredVWAPSeries(candles, e.anchor),
	}, nil
}

// evaluateAt classifies the bar at index i. It withholds (returns an error)
// while index i is still inside the EMA warm-up window or the anchored
// average has no current or previous value.
func (e *Engine) evaluateAt(candles []models.Candle, s *series, i int) (*Evaluation, error) {
	// Index i-1 must also be past the warm-up so the slopes are real.
	warmup := e.slowPeriod
	if e.fastPeriod > warmup {
		warmup = e.fastPeriod
	}
	if i < warmup || i >= len(candles) {
		return nil, ErrInsufficientHistory
	}
	if math.IsNaN(s.anchored[i]) || math.IsNaN(s.anchored[i-1]) {
		return nil, ErrAnchorNotEstablished
	}

	ctx := models.BarContext{
		Price:                   candles[i].Close,
		FastAverage:             s.fast[i],
		SlowAverage:             s.slow[i],
		FastAveragePrevious:     s.fast[i-1],
		SessionAverage:          s.session[i],
		AnchoredAverageCurrent:  s.anchored[i],
		AnchoredAveragePrevious: s.anchored[i-1],
		TickSize:                e.tickSize,
	}

	regime := classify.ClassifyRegime(ctx)
	barTime, err := calculate.BarTime(candles[i])
	if err != nil {
		e.logger.Warn().Err(err).Msg("Bar carries an unparseable datetime")
	}

	return &Evaluation{
		BarTime:       barTime,
		Context:       ctx,
		Regime:        regime,
		Long:          classify.GradeLong(regime, ctx, e.params),
		Short:         classify.GradeShort(regime, ctx, e.params),
		DistanceTicks: classify.DistanceTicks(ctx),
	}, nil
}

// EvaluateLatest classifies the most recent completed bar of the window.
func (e *Engine) EvaluateLatest(candles []models.Candle) (*Evaluation, error) {
	s, err := e.computeSeries(candles)
	if err != nil {
		return nil, err
	}
	return e.evaluateAt(candles, s, len(candles)-1)
}

// FromClassification rebuilds the comparison state of the live loop from a
// stored record, so grade transitions across a restart are still detected.
// Only the fields the loop compares (bar time, grades, price) are restored;
// the indicator context is not persisted and stays zero.
func FromClassification(rec *models.BarClassification) *Evaluation {
	if rec == nil {
		return nil
	}
	return &Evaluation{
		BarTime:       rec.BarTime,
		Context:       models.BarContext{Price: rec.Price},
		Regime:        rec.Regime,
		Long:          rec.LongQuality,
		Short:         rec.ShortQuality,
		DistanceTicks: rec.DistanceTicks,
	}
}
