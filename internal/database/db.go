package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vwap-grader/grader/models"
)

// DB represents a database connection
type DB struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// New creates a new database connection
func New(params ConnectionParams) (*DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS bar_classifications (
			id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			interval TEXT NOT NULL,
			bar_time TIMESTAMP NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			regime TEXT NOT NULL,
			long_quality TEXT NOT NULL,
			short_quality TEXT NOT NULL,
			distance_ticks DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMP NOT NULL,
			UNIQUE (symbol, interval, bar_time)
		)
	`)

	return err
}

// SaveClassification inserts one bar's classification. Re-evaluating the
// same bar (same symbol, interval and bar time) updates the stored row
// instead of duplicating it.
func (db *DB) SaveClassification(rec *models.BarClassification) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err := db.Exec(`
		INSERT INTO bar_classifications (
			id, symbol, interval, bar_time, price,
			regime, long_quality, short_quality, distance_ticks, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (symbol, interval, bar_time)
		DO UPDATE SET
			price = EXCLUDED.price,
			regime = EXCLUDED.regime,
			long_quality = EXCLUDED.long_quality,
			short_quality = EXCLUDED.short_quality,
			distance_ticks = EXCLUDED.distance_ticks,
			created_at = EXCLUDED.created_at
	`,
		rec.ID, rec.Symbol, rec.Interval, rec.BarTime, rec.Price,
		rec.Regime.String(), rec.LongQuality.String(), rec.ShortQuality.String(),
		rec.DistanceTicks, rec.CreatedAt)

	return err
}

// GetLatestClassification retrieves the most recent stored classification
// for a symbol and interval, or nil when none exists yet.
func (db *DB) GetLatestClassification(symbol, interval string) (*models.BarClassification, error) {
	var rec models.BarClassification
	var regime, longQuality, shortQuality string

	err := db.QueryRow(`
		SELECT id, symbol, interval, bar_time, price,
			regime, long_quality, short_quality, distance_ticks, created_at
		FROM bar_classifications
		WHERE symbol = $1 AND interval = $2
		ORDER BY bar_time DESC
		LIMIT 1
	`, symbol, interval).Scan(
		&rec.ID, &rec.Symbol, &rec.Interval, &rec.BarTime, &rec.Price,
		&regime, &longQuality, &shortQuality, &rec.DistanceTicks, &rec.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // No classification stored yet
		}
		return nil, err
	}

	rec.Regime = models.ParseTrendRegime(regime)
	rec.LongQuality = models.ParseEntryQuality(longQuality)
	rec.ShortQuality = models.ParseEntryQuality(shortQuality)

	return &rec, nil
}

// GetRecentClassifications retrieves up to limit rows for a symbol and
// interval, newest first.
func (db *DB) GetRecentClassifications(symbol, interval string, limit int) ([]models.BarClassification, error) {
	rows, err := db.Query(`
		SELECT id, symbol, interval, bar_time, price,
			regime, long_quality, short_quality, distance_ticks, created_at
		FROM bar_classifications
		WHERE symbol = $1 AND interval = $2
		ORDER BY bar_time DESC
		LIMIT $3
	`, symbol, interval, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []models.BarClassification
	for rows.Next() {
		var rec models.BarClassification
		var regime, longQuality, shortQuality string

		if err := rows.Scan(
			&rec.ID, &rec.Symbol, &rec.Interval, &rec.BarTime, &rec.Price,
			&regime, &longQuality, &shortQuality, &rec.DistanceTicks, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}

		rec.Regime = models.ParseTrendRegime(regime)
		rec.LongQuality = models.ParseEntryQuality(longQuality)
		rec.ShortQuality = models.ParseEntryQuality(shortQuality)
		recs = append(recs, rec)
	}

	return recs, rows.Err()
}
