package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duetday/duetday-api/internal/dto"
	"github.com/duetday/duetday-api/internal/models"
	"github.com/duetday/duetday-api/internal/recurrence"
	"github.com/duetday/duetday-api/internal/repository"
	appErrors "github.com/duetday/duetday-api/pkg/errors"
)

type datingRepoStub struct {
	byID     map[string]*models.Dating
	pattern  *models.RecurrencePattern
	count    int
	siblings []models.Dating
	list     []models.Dating

	createdPattern *models.RecurrencePattern
	createdItems   []models.Dating
	shift          *repository.SeriesShift
	deletedOne     string
	deletedSeries  string
}

func (s *datingRepoStub) CreateBatch(ctx context.Context, pattern *models.RecurrencePattern, items []models.Dating) error {
	s.createdPattern = pattern
	s.createdItems = items
	return nil
}

func (s *datingRepoStub) FindByID(ctx context.Context, id string) (*models.Dating, error) {
	if item, ok := s.byID[id]; ok {
		return item, nil
	}
	return nil, sql.ErrNoRows
}

func (s *datingRepoStub) FindPattern(ctx context.Context, patternID string) (*models.RecurrencePattern, error) {
	return s.pattern, nil
}

func (s *datingRepoStub) CountByPattern(ctx context.Context, patternID string) (int, error) {
	return s.count, nil
}

func (s *datingRepoStub) ListByPattern(ctx context.Context, patternID string) ([]models.Dating, error) {
	return s.siblings, nil
}

func (s *datingRepoStub) UpdateInPlace(ctx context.Context, item *models.Dating, pattern *models.RecurrencePattern) error {
	return nil
}

func (s *datingRepoStub) Split(ctx context.Context, oldPatternID string, item *models.Dating, newPattern *models.RecurrencePattern, bounds *repository.PatternBounds) error {
	return nil
}

func (s *datingRepoStub) ShiftSeries(ctx context.Context, shift repository.SeriesShift) error {
	s.shift = &shift
	return nil
}

func (s *datingRepoStub) DeleteOne(ctx context.Context, id, patternID string) error {
	s.deletedOne = id
	return nil
}

func (s *datingRepoStub) DeleteSeries(ctx context.Context, patternID string) error {
	s.deletedSeries = patternID
	return nil
}

func (s *datingRepoStub) ListInRange(ctx context.Context, coupleID string, year, month *int) ([]models.Dating, error) {
	return s.list, nil
}

func TestDatingServiceCreateRejectsOutsiders(t *testing.T) {
	svc := NewDatingService(&datingRepoStub{}, nil, nil, nil)
	req := dto.CreateDatingRequest{
		Title:         "Picnic",
		StartDateTime: time.Date(2024, time.March, 4, 12, 0, 0, 0, time.UTC),
		EndDateTime:   time.Date(2024, time.March, 4, 14, 0, 0, 0, time.UTC),
		RepeatRule:    "N",
	}

	_, err := svc.Create(context.Background(), &models.JWTClaims{MemberID: "member-1"}, "couple-1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPermissionDenied.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), coupleClaims("member-1", "couple-2"), "couple-1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPermissionDenied.Code, appErrors.FromError(err).Code)
}

func TestDatingServiceCreateRejectsHundredDays(t *testing.T) {
	svc := NewDatingService(&datingRepoStub{}, nil, nil, nil)

	_, err := svc.Create(context.Background(), coupleClaims("member-1", "couple-1"), "couple-1", dto.CreateDatingRequest{
		Title:         "Picnic",
		StartDateTime: time.Date(2024, time.March, 4, 12, 0, 0, 0, time.UTC),
		EndDateTime:   time.Date(2024, time.March, 4, 14, 0, 0, 0, time.UTC),
		RepeatRule:    "HUNDRED_DAYS",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDatingServiceCreateMonthlySkipsShortMonths(t *testing.T) {
	repo := &datingRepoStub{}
	cache := &viewCacheStub{}
	svc := NewDatingService(repo, cache, nil, nil)

	repeatEnd := time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)
	items, err := svc.Create(context.Background(), coupleClaims("member-1", "couple-1"), "couple-1", dto.CreateDatingRequest{
		Title:         "Month-iversary dinner",
		StartDateTime: time.Date(2024, time.January, 31, 19, 0, 0, 0, time.UTC),
		EndDateTime:   time.Date(2024, time.January, 31, 21, 0, 0, 0, time.UTC),
		RepeatRule:    "M",
		RepeatEndTime: &repeatEnd,
	})
	require.NoError(t, err)

	// February, April and June have no 31st, so those cycles drop out.
	require.Len(t, items, 3)
	assert.Equal(t, day(2024, time.January, 31), recurrence.DateOf(items[0].StartAt))
	assert.Equal(t, day(2024, time.March, 31), recurrence.DateOf(items[1].StartAt))
	assert.Equal(t, day(2024, time.May, 31), recurrence.DateOf(items[2].StartAt))
	assert.Equal(t, "couple-1", repo.createdPattern.OwnerID)
	assert.Contains(t, cache.prefixes, "calendar:view:couple:couple-1")
}

func TestDatingServiceDeleteNotFound(t *testing.T) {
	svc := NewDatingService(&datingRepoStub{byID: map[string]*models.Dating{}}, nil, nil, nil)

	err := svc.Delete(context.Background(), coupleClaims("member-1", "couple-1"), "couple-1", "dat-9", false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDatingServiceDeleteSeries(t *testing.T) {
	repo := &datingRepoStub{byID: map[string]*models.Dating{
		"dat-1": {ID: "dat-1", PatternID: "pat-1", CoupleID: "couple-1"},
	}}
	svc := NewDatingService(repo, nil, nil, nil)

	err := svc.Delete(context.Background(), coupleClaims("member-1", "couple-1"), "couple-1", "dat-1", true)
	require.NoError(t, err)
	assert.Equal(t, "pat-1", repo.deletedSeries)
	assert.Empty(t, repo.deletedOne)
}
