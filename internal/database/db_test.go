package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/vwap-grader/grader/models"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &DB{conn}, mock
}

var classificationColumns = []string{
	"id", "symbol", "interval", "bar_time", "price",
	"regime", "long_quality", "short_quality", "distance_ticks", "created_at",
}

func TestSaveClassificationAssignsIDAndTimestamp(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO bar_classifications").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := &models.BarClassification{
		Symbol:        "EUR/USD",
		Interval:      "5min",
		BarTime:       time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		Price:         1.0850,
		Regime:        models.RegimeStrongBull,
		LongQuality:   models.QualityOptimal,
		ShortQuality:  models.QualityForbidden,
		DistanceTicks: 8,
	}

	if err := db.SaveClassification(rec); err != nil {
		t.Fatalf("SaveClassification() error = %v", err)
	}
	if rec.ID == "" {
		t.Error("SaveClassification() should assign an ID when empty")
	}
	if rec.CreatedAt.IsZero() {
		t.Error("SaveClassification() should stamp CreatedAt when zero")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetLatestClassification(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	barTime := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	createdAt := time.Date(2024, 3, 5, 10, 5, 0, 0, time.UTC)

	rows := sqlmock.NewRows(classificationColumns).
		AddRow("rec-1", "EUR/USD", "5min", barTime, 1.0850,
			"STRONG_BULL", "OPTIMAL", "FORBIDDEN", 8.0, createdAt)

	mock.ExpectQuery("SELECT (.+) FROM bar_classifications").
		WithArgs("EUR/USD", "5min").
		WillReturnRows(rows)

	rec, err := db.GetLatestClassification("EUR/USD", "5min")
	if err != nil {
		t.Fatalf("GetLatestClassification() error = %v", err)
	}
	if rec == nil {
		t.Fatal("GetLatestClassification() = nil, want record")
	}
	if rec.Regime != models.RegimeStrongBull {
		t.Errorf("Regime = %v, want %v", rec.Regime, models.RegimeStrongBull)
	}
	if rec.LongQuality != models.QualityOptimal {
		t.Errorf("LongQuality = %v, want %v", rec.LongQuality, models.QualityOptimal)
	}
	if rec.ShortQuality != models.QualityForbidden {
		t.Errorf("ShortQuality = %v, want %v", rec.ShortQuality, models.QualityForbidden)
	}
	if !rec.BarTime.Equal(barTime) {
		t.Errorf("BarTime = %v, want %v", rec.BarTime, barTime)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetLatestClassificationEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM bar_classifications").
		WithArgs("EUR/USD", "5min").
		WillReturnRows(sqlmock.NewRows(classificationColumns))

	rec, err := db.GetLatestClassification("EUR/USD", "5min")
	if err != nil {
		t.Fatalf("GetLatestClassification() error = %v", err)
	}
	if rec != nil {
		t.Errorf("GetLatestClassification() = %v, want nil for empty table", rec)
	}
}

func TestGetRecentClassifications(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	newer := time.Date(2024, 3, 5, 10, 5, 0, 0, time.UTC)
	older := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(classificationColumns).
		AddRow("rec-2", "EUR/USD", "5min", newer, 1.0855,
			"STRONG_BULL", "OPTIMAL", "FORBIDDEN", 9.0, newer).
		AddRow("rec-1", "EUR/USD", "5min", older, 1.0850,
			"BULL", "FAVORABLE", "RISKY", 6.0, older)

	mock.ExpectQuery("SELECT (.+) FROM bar_classifications").
		WithArgs("EUR/USD", "5min", 5).
		WillReturnRows(rows)

	recs, err := db.GetRecentClassifications("EUR/USD", "5min", 5)
	if err != nil {
		t.Fatalf("GetRecentClassifications() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len(recs) = %d, want 2", len(recs))
	}
	if !recs[0].BarTime.Equal(newer) {
		t.Errorf("first record bar time = %v, want newest %v", recs[0].BarTime, newer)
	}
	if recs[1].LongQuality != models.QualityFavorable {
		t.Errorf("second record long quality = %v, want %v", recs[1].LongQuality, models.QualityFavorable)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
