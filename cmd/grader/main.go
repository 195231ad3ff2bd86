package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vwap-grader/grader/internal/api/twelvedata"
	"github.com/vwap-grader/grader/internal/config"
	"github.com/vwap-grader/grader/internal/database"
	"github.com/vwap-grader/grader/internal/engine"
	"github.com/vwap-grader/grader/internal/notify"
	"github.com/vwap-grader/grader/models"
)

func main() {
	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setupSignalHandling(cancel)

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// 2. Configure logging
	setupLogging(cfg.LogLevel)
	log.Info().Msg("Starting VWAP opportunity grader")
	printConfig(cfg)

	// 3. Setup the candle feed client
	twClient := twelvedata.NewClient(twelvedata.ClientOptions{
		APIKey:         cfg.TwelveAPIKey,
		RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
		RequestsPerSec: 5,
	})

	// 4. Build the evaluation engine
	anchor, err := cfg.Anchor()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid anchor time")
	}
	eng := engine.New(engine.Options{
		FastPeriod: cfg.FastEMAPeriod,
		SlowPeriod: cfg.SlowEMAPeriod,
		TickSize:   cfg.TickSize,
		Anchor:     anchor,
		Params:     cfg.GradingParams(),
	})

	// 5. Optional persistence
	var db *database.DB
	if cfg.DBHost != "" {
		db, err = database.New(database.ConnectionParams{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer db.Close()
	}

	// 6. Optional Telegram alerts
	var notifier *notify.Notifier
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		notifier, err = notify.New(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Telegram notifier")
		}
	}

	// 7. Replay over history if enabled
	if cfg.EnableReplay {
		runReplay(ctx, twClient, eng, cfg)
	}

	// 8. Live per-bar loop
	runLive(ctx, twClient, eng, db, notifier, cfg)
}

// setupSignalHandling configures signal handling for graceful shutdown
func setupSignalHandling(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info().Msg("Shutdown signal received, exiting...")
		cancel()
	}()
}

// setupLogging configures the logger
func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}

// printConfig outputs the current configuration
func printConfig(cfg *config.Config) {
	log.Info().
		Str("Symbol", cfg.Symbol).
		Str("Interval", cfg.Interval).
		Int("CandleCount", cfg.CandleCount).
		Int("FastEMAPeriod", cfg.FastEMAPeriod).
		Int("SlowEMAPeriod", cfg.SlowEMAPeriod).
		Float64("TickSize", cfg.TickSize).
		Int("MinDistanceTicks", cfg.MinDistanceTicks).
		Int("MaxDistanceTicks", cfg.MaxDistanceTicks).
		Str("AnchorTime", cfg.AnchorTime).
		Bool("EnableReplay", cfg.EnableReplay).
		Int("ReplayDays", cfg.ReplayDays).
		Msg("Configuration loaded")
}

// runReplay evaluates the grader over historical candles and prints the
// grade distribution.
func runReplay(ctx context.Context, client *twelvedata.Client, eng *engine.Engine, cfg *config.Config) {
	log.Info().Int("days", cfg.ReplayDays).Msg("Running historical replay...")

	candles, err := client.GetHistoricalCandles(ctx, cfg.Symbol, cfg.Interval, cfg.ReplayDays)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch historical candles")
		return
	}

	results, err := eng.Replay(candles)
	if err != nil {
		log.Error().Err(err).Msg("Replay failed")
		return
	}

	fmt.Println(engine.FormatResults(results))
}

// runLive polls the feed once per interval and classifies the most recent
// completed bar.
func runLive(ctx context.Context, client *twelvedata.Client, eng *engine.Engine,
	db *database.DB, notifier *notify.Notifier, cfg *config.Config) {

	log.Info().Msg("Running live classification loop...")

	ticker := time.NewTicker(time.Duration(cfg.PollSeconds) * time.Second)
	defer ticker.Stop()

	prev := seedFromStore(db, cfg)
	prev = evaluateOnce(ctx, client, eng, db, notifier, cfg, prev)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Live loop stopped")
			return
		case <-ticker.C:
			prev = evaluateOnce(ctx, client, eng, db, notifier, cfg, prev)
		}
	}
}

// seedFromStore restores the last persisted classification so the first
// grade transition after a restart is still alerted on, and logs the recent
// grade history for context. Returns nil when no database is configured or
// nothing is stored yet.
func seedFromStore(db *database.DB, cfg *config.Config) *engine.Evaluation {
	if db == nil {
		return nil
	}

	latest, err := db.GetLatestClassification(cfg.Symbol, cfg.Interval)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load last stored classification")
		return nil
	}
	if latest == nil {
		log.Info().Msg("No stored classifications yet, starting fresh")
		return nil
	}

	recent, err := db.GetRecentClassifications(cfg.Symbol, cfg.Interval, 5)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load recent classifications")
	}
	for _, rec := range recent {
		log.Debug().
			Time("bar", rec.BarTime).
			Str("regime", rec.Regime.String()).
			Str("long", rec.LongQuality.String()).
			Str("short", rec.ShortQuality.String()).
			Msg("Stored classification")
	}

	log.Info().
		Time("bar", latest.BarTime).
		Str("long", latest.LongQuality.String()).
		Str("short", latest.ShortQuality.String()).
		Int("recent", len(recent)).
		Msg("Resuming from last stored classification")

	return engine.FromClassification(latest)
}

// evaluateOnce fetches the latest window, classifies the newest bar,
// persists the outcome and alerts on grade transitions. It returns the
// evaluation to compare against on the next cycle (or the previous one if
// this cycle was withheld or failed).
func evaluateOnce(ctx context.Context, client *twelvedata.Client, eng *engine.Engine,
	db *database.DB, notifier *notify.Notifier, cfg *config.Config, prev *engine.Evaluation) *engine.Evaluation {

	candles, err := client.GetCandles(ctx, cfg.Symbol, cfg.Interval, cfg.CandleCount)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch candles")
		return prev
	}

	eval, err := eng.EvaluateLatest(candles)
	if err != nil {
		if errors.Is(err, engine.ErrInsufficientHistory) || errors.Is(err, engine.ErrAnchorNotEstablished) {
			log.Debug().Err(err).Msg("Classification withheld")
		} else {
			log.Error().Err(err).Msg("Evaluation failed")
		}
		return prev
	}

	// Same bar as last cycle: nothing new to record.
	if prev != nil && prev.BarTime.Equal(eval.BarTime) {
		return prev
	}

	log.Info().
		Time("bar", eval.BarTime).
		Float64("price", eval.Context.Price).
		Str("regime", eval.Regime.String()).
		Str("long", eval.Long.String()).
		Str("short", eval.Short.String()).
		Float64("distance_ticks", eval.DistanceTicks).
		Msg("Bar classified")

	if db != nil {
		rec := &models.BarClassification{
			Symbol:        cfg.Symbol,
			Interval:      cfg.Interval,
			BarTime:       eval.BarTime,
			Price:         eval.Context.Price,
			Regime:        eval.Regime,
			LongQuality:   eval.Long,
			ShortQuality:  eval.Short,
			DistanceTicks: eval.DistanceTicks,
		}
		if err := db.SaveClassification(rec); err != nil {
			log.Error().Err(err).Msg("Failed to persist classification")
		}
	}

	if notifier != nil && prev != nil {
		sendAlerts(notifier, cfg.Symbol, prev, eval)
	}

	return eval
}

// sendAlerts notifies on long/short grade transitions worth human review.
func sendAlerts(notifier *notify.Notifier, symbol string, prev, eval *engine.Evaluation) {
	if notify.ShouldAlert(prev.Long, eval.Long) {
		if err := notifier.GradeChange(symbol, "LONG", prev.Long, eval.Long, eval.Context.Price, eval.BarTime); err != nil {
			log.Error().Err(err).Msg("Failed to send long grade alert")
		}
	}
	if notify.ShouldAlert(prev.Short, eval.Short) {
		if err := notifier.GradeChange(symbol, "SHORT", prev.Short, eval.Short, eval.Context.Price, eval.BarTime); err != nil {
			log.Error().Err(err).Msg("Failed to send short grade alert")
		}
	}
}
