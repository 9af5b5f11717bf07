package db

import (
	"sort"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationVersionsUniqueAndOrdered(t *testing.T) {
	seen := make(map[string]bool, len(migrations))
	versions := make([]string, 0, len(migrations))
	for _, m := range migrations {
		assert.False(t, seen[m.version], "duplicate migration version %s", m.version)
		seen[m.version] = true
		versions = append(versions, m.version)
	}
	assert.True(t, sort.StringsAreSorted(versions), "migrations must be listed in version order")
}

func TestRunMigrationsSkipsApplied(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	for range migrations {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM schema_migrations`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	}

	require.NoError(t, RunMigrations(db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsAppliesPendingInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	for i := range migrations {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM schema_migrations`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectBegin()
		mock.ExpectExec(`CREATE TABLE`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO schema_migrations`).
			WithArgs(migrations[i].version).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
	}

	require.NoError(t, RunMigrations(db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
