package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duetday/duetday-api/internal/models"
	"github.com/duetday/duetday-api/internal/recurrence"
)

func TestAnniversaryRepositoryCreateBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnniversaryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO recurrence_patterns").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO anniversaries").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	category := recurrence.CategoryOther
	pattern := &models.RecurrencePattern{
		OwnerID:         "couple-1",
		RepeatStartDate: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		RepeatEndDate:   time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		RepeatRule:      recurrence.RuleNone,
		Category:        &category,
	}
	items := []models.Anniversary{
		{CoupleID: "couple-1", Title: "Adopted the cat", Category: category, Date: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)},
	}

	err := repo.CreateBatch(context.Background(), pattern, items)
	require.NoError(t, err)
	assert.Equal(t, pattern.ID, items[0].PatternID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnniversaryRepositoryShiftSeries(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnniversaryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("date = date + $1")).
		WithArgs(3, "Adopted the cat", nil, sqlmock.AnyArg(), "pat-1").
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(regexp.QuoteMeta("repeat_start_date = repeat_start_date + $1")).
		WithArgs(3, sqlmock.AnyArg(), "pat-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ShiftSeries(context.Background(), AnniversarySeriesShift{
		PatternID:    "pat-1",
		DayDiff:      3,
		Title:        "Adopted the cat",
		ShiftPattern: true,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnniversaryRepositoryDeleteSeries(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnniversaryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM anniversaries WHERE pattern_id").
		WithArgs("pat-1").
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec("DELETE FROM recurrence_patterns WHERE id").
		WithArgs("pat-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.DeleteSeries(context.Background(), "pat-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
