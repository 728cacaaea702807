package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duetday/duetday-api/internal/models"
	"github.com/duetday/duetday-api/internal/recurrence"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

func TestScheduleRepositoryCreateBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO recurrence_patterns").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO schedules").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO schedules").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	pattern := &models.RecurrencePattern{
		OwnerID:         "member-1",
		RepeatStartDate: time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC),
		RepeatEndDate:   time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC),
		RepeatRule:      recurrence.RuleWeekly,
	}
	items := []models.Schedule{
		{MemberID: "member-1", Title: "Gym", StartAt: time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC), EndAt: time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)},
		{MemberID: "member-1", Title: "Gym", StartAt: time.Date(2024, time.March, 11, 9, 0, 0, 0, time.UTC), EndAt: time.Date(2024, time.March, 11, 10, 0, 0, 0, time.UTC)},
	}

	err := repo.CreateBatch(context.Background(), pattern, items)
	require.NoError(t, err)
	assert.NotEmpty(t, pattern.ID)
	assert.Equal(t, pattern.ID, items[0].PatternID)
	assert.Equal(t, pattern.ID, items[1].PatternID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryCreateBatchRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO recurrence_patterns").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.CreateBatch(context.Background(), &models.RecurrencePattern{OwnerID: "member-1"}, nil)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryFindByIDNoRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectQuery("SELECT").WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestScheduleRepositoryDeleteOneCascades(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedules WHERE id = $1")).
		WithArgs("sch-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM recurrence_patterns").
		WithArgs("pat-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.DeleteOne(context.Background(), "sch-1", "pat-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryShiftSeries(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE schedules SET").
		WithArgs(int64(30), int64(30), "Dinner", nil, nil, sqlmock.AnyArg(), "pat-1").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE recurrence_patterns SET repeat_start_date = repeat_start_date + $1")).
		WithArgs(1, sqlmock.AnyArg(), "pat-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ShiftSeries(context.Background(), SeriesShift{
		PatternID:      "pat-1",
		StartDeltaMin:  30,
		EndDeltaMin:    30,
		Title:          "Dinner",
		PatternDayDiff: 1,
		ShiftPattern:   true,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryShiftSeriesKeepsPattern(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE schedules SET").
		WithArgs(int64(60), int64(60), "Dinner", nil, nil, sqlmock.AnyArg(), "pat-1").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit()

	err := repo.ShiftSeries(context.Background(), SeriesShift{
		PatternID:     "pat-1",
		StartDeltaMin: 60,
		EndDeltaMin:   60,
		Title:         "Dinner",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryListInRangeWindow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	from := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	rows := sqlmock.NewRows([]string{"id", "pattern_id", "member_id", "title", "content", "location", "start_at", "end_at", "created_at", "updated_at"}).
		AddRow("sch-1", "pat-1", "member-1", "Gym", nil, nil,
			time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC),
			time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC),
			time.Now(), time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("WHERE member_id = $1 AND end_at >= $2 AND start_at < $3")).
		WithArgs("member-1", from, to).
		WillReturnRows(rows)

	year, month := 2024, 3
	items, err := repo.ListInRange(context.Background(), "member-1", &year, &month)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "sch-1", items[0].ID)
}

func TestScheduleRepositoryListInRangeMonthOnly(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	rows := sqlmock.NewRows([]string{"id", "pattern_id", "member_id", "title", "content", "location", "start_at", "end_at", "created_at", "updated_at"})
	mock.ExpectQuery("EXTRACT").
		WithArgs("member-1", 3).
		WillReturnRows(rows)

	month := 3
	items, err := repo.ListInRange(context.Background(), "member-1", nil, &month)
	require.NoError(t, err)
	assert.Empty(t, items)
}

// A yearless month filter must also match occurrences that span the whole
// requested month, not just ones starting or ending in it.
func TestScheduleRepositoryListInRangeMonthCoversInteriorMonths(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	rows := sqlmock.NewRows([]string{"id", "pattern_id", "member_id", "title", "content", "location", "start_at", "end_at", "created_at", "updated_at"}).
		AddRow("sch-long", "pat-1", "member-1", "Sabbatical", nil, nil,
			time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2024, time.April, 20, 0, 0, 0, 0, time.UTC),
			time.Now(), time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("$2 BETWEEN EXTRACT(MONTH FROM start_at) AND EXTRACT(MONTH FROM end_at)")).
		WithArgs("member-1", 2).
		WillReturnRows(rows)

	month := 2
	items, err := repo.ListInRange(context.Background(), "member-1", nil, &month)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "sch-long", items[0].ID)
}
