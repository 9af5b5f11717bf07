package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fizl-health/fizl-backend/internal/domain"
)

func profileRows(methods string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "user_id", "estimated_vo2_max", "vo2_efficiency_coefficient", "resting_metabolic_rate",
		"hr_vo2_slope", "hr_vo2_intercept", "hr_rer_slope", "hr_rer_intercept",
		"hr_ee_slope", "hr_ee_intercept", "o2_rer_slope", "o2_rer_intercept",
		"calorie_counting_method", "available_methods", "last_processed_at", "created_at", "updated_at",
	}).AddRow(
		"p1", "u1", 42.0, 1.1, nil,
		0.02, -1.5, 0.001, 0.7,
		0.05, 1.0, 1.106, 3.941,
		nil, methods, now, now, now,
	)
}

func TestCalProfileRepoSplitsMethodList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM user_cal_profiles WHERE user_id`).
		WithArgs("u1").
		WillReturnRows(profileRows("MODEL1,MODEL2,MODEL3"))

	repo := NewCalProfileRepository(db)
	p, err := repo.GetByUserID("u1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, []string{"MODEL1", "MODEL2", "MODEL3"}, p.AvailableMethods)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalProfileRepoEmptyMethodList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM user_cal_profiles WHERE user_id`).
		WithArgs("u1").
		WillReturnRows(profileRows(""))

	repo := NewCalProfileRepository(db)
	p, err := repo.GetByUserID("u1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Nil(t, p.AvailableMethods)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalProfileRepoNoProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM user_cal_profiles WHERE user_id`).
		WithArgs("u2").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewCalProfileRepository(db)
	p, err := repo.GetByUserID("u2")
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Replace must delete then insert inside one transaction so the profile
// row is always a single fitted set.
func TestCalProfileRepoReplaceIsTransactional(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM user_cal_profiles WHERE user_id`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO user_cal_profiles`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewCalProfileRepository(db)
	p := &domain.UserCalProfile{
		UserID:           "u1",
		HrVo2Slope:       0.02,
		AvailableMethods: []string{"MODEL1", "MODEL2"},
	}
	require.NoError(t, repo.Replace(p))
	assert.NotEmpty(t, p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
