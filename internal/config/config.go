package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/vwap-grader/grader/models"
)

// Config holds all application configuration
type Config struct {
	TwelveAPIKey     string  `env:"TWELVE_API_KEY" envDefault:"-"`
	Symbol           string  `env:"SYMBOL" envDefault:"EUR/USD"`
	Interval         string  `env:"INTERVAL" envDefault:"5min"`
	CandleCount      int     `env:"CANDLE_COUNT" envDefault:"120"`
	FastEMAPeriod    int     `env:"FAST_EMA_PERIOD" envDefault:"9"`
	SlowEMAPeriod    int     `env:"SLOW_EMA_PERIOD" envDefault:"21"`
	TickSize         float64 `env:"TICK_SIZE" envDefault:"0.0001"`
	MinDistanceTicks int     `env:"MIN_DISTANCE_TICKS" envDefault:"3"`
	MaxDistanceTicks int     `env:"MAX_DISTANCE_TICKS" envDefault:"20"`
	AnchorTime       string  `env:"ANCHOR_TIME" envDefault:""` // empty anchors at the first bar of the window
	LogLevel         string  `env:"LOG_LEVEL" envDefault:"info"`
	RequestTimeout   int     `env:"REQUEST_TIMEOUT" envDefault:"30"` // seconds
	PollSeconds      int     `env:"POLL_SECONDS" envDefault:"60"`
	EnableReplay     bool    `env:"ENABLE_REPLAY" envDefault:"false"`
	ReplayDays       int     `env:"REPLAY_DAYS" envDefault:"5"`

	DBHost     string `env:"DB_HOST" envDefault:""`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:""`
	DBPassword string `env:"DB_PASSWORD" envDefault:""`
	DBName     string `env:"DB_NAME" envDefault:""`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN" envDefault:""`
	TelegramChatID   int64  `env:"TELEGRAM_CHAT_ID" envDefault:"0"`
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.TwelveAPIKey = os.Getenv("TWELVE_API_KEY")
	cfg.Symbol = getEnvWithDefault("SYMBOL", "EUR/USD")
	cfg.Interval = getEnvWithDefault("INTERVAL", "5min")
	cfg.CandleCount = getEnvIntWithDefault("CANDLE_COUNT", 120)
	cfg.FastEMAPeriod = getEnvIntWithDefault("FAST_EMA_PERIOD", 9)
	cfg.SlowEMAPeriod = getEnvIntWithDefault("SLOW_EMA_PERIOD", 21)
	cfg.TickSize = getEnvFloatWithDefault("TICK_SIZE", 0.0001)
	cfg.MinDistanceTicks = getEnvIntWithDefault("MIN_DISTANCE_TICKS", 3)
	cfg.MaxDistanceTicks = getEnvIntWithDefault("MAX_DISTANCE_TICKS", 20)
	cfg.AnchorTime = os.Getenv("ANCHOR_TIME")
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", 30)
	cfg.PollSeconds = getEnvIntWithDefault("POLL_SECONDS", 60)
	cfg.EnableReplay = getEnvBoolWithDefault("ENABLE_REPLAY", false)
	cfg.ReplayDays = getEnvIntWithDefault("REPLAY_DAYS", 5)

	cfg.DBHost = os.Getenv("DB_HOST")
	cfg.DBPort = getEnvWithDefault("DB_PORT", "5432")
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = os.Getenv("DB_NAME")
	cfg.DBSSLMode = getEnvWithDefault("DB_SSLMODE", "disable")

	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramChatID = getEnvInt64WithDefault("TELEGRAM_CHAT_ID", 0)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate rejects configurations the classifier core treats as caller
// preconditions: a non-positive tick size or distance bounds below one.
func (c *Config) validate() error {
	if c.TickSize <= 0 {
		return fmt.Errorf("TICK_SIZE must be positive, got %v", c.TickSize)
	}
	if c.MinDistanceTicks < 1 {
		return fmt.Errorf("MIN_DISTANCE_TICKS must be at least 1, got %d", c.MinDistanceTicks)
	}
	if c.MaxDistanceTicks < 1 {
		return fmt.Errorf("MAX_DISTANCE_TICKS must be at least 1, got %d", c.MaxDistanceTicks)
	}
	if c.FastEMAPeriod < 1 || c.SlowEMAPeriod < 1 {
		return fmt.Errorf("EMA periods must be at least 1, got fast=%d slow=%d", c.FastEMAPeriod, c.SlowEMAPeriod)
	}
	if _, err := c.Anchor(); err != nil {
		return err
	}
	return nil
}

// GradingParams returns the distance configuration shared by both graders.
func (c *Config) GradingParams() models.GradingParameters {
	return models.GradingParameters{
		MinDistanceTicks: c.MinDistanceTicks,
		MaxDistanceTicks: c.MaxDistanceTicks,
	}
}

// Anchor parses ANCHOR_TIME. An empty value returns the zero time, which
// anchors the second average at the first bar of the fetched window.
func (c *Config) Anchor() (time.Time, error) {
	if c.AnchorTime == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, c.AnchorTime); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized ANCHOR_TIME %q", c.AnchorTime)
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
