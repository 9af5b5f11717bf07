package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fizl-health/fizl-backend/internal/domain"
)

func strPtr(s string) *string { return &s }

// Re-syncing a HealthKit window must not duplicate samples that are
// already stored.
func TestHeartRateRepoCreateBulkSkipsKnownSamples(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	samples := []domain.HeartRate{
		{HkID: strPtr("hk-known"), Timestamp: ts, HeartRateBPM: 120},
		{HkID: strPtr("hk-new"), Timestamp: ts.Add(time.Minute), HeartRateBPM: 125},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT 1 FROM heart_rates`).
		WithArgs("u1", "hk-known").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(`SELECT 1 FROM heart_rates`).
		WithArgs("u1", "hk-new").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec(`INSERT INTO heart_rates`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewHeartRateRepository(db)
	inserted, err := repo.CreateBulk("u1", samples)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHeartRateRepoCreateBulkWithoutHkIDAlwaysInserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	samples := []domain.HeartRate{
		{Timestamp: ts, HeartRateBPM: 110},
		{Timestamp: ts.Add(time.Minute), HeartRateBPM: 112},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO heart_rates`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO heart_rates`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewHeartRateRepository(db)
	inserted, err := repo.CreateBulk("u1", samples)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
