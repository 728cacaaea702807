package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duetday/duetday-api/internal/models"
	appErrors "github.com/duetday/duetday-api/pkg/errors"
)

type scheduleListerStub struct {
	byMember map[string][]models.Schedule
}

func (s *scheduleListerStub) ListInRange(ctx context.Context, memberID string, year, month *int) ([]models.Schedule, error) {
	return s.byMember[memberID], nil
}

type datingListerStub struct {
	items []models.Dating
}

func (s *datingListerStub) ListInRange(ctx context.Context, coupleID string, year, month *int) ([]models.Dating, error) {
	return s.items, nil
}

type anniversaryListerStub struct {
	items []models.Anniversary
}

func (s *anniversaryListerStub) ListInRange(ctx context.Context, coupleID string, year, month *int) ([]models.Anniversary, error) {
	return s.items, nil
}

type memberFinderStub struct {
	members map[string]*models.Member
	partner *models.Member
}

func (s *memberFinderStub) FindByID(ctx context.Context, id string) (*models.Member, error) {
	return s.members[id], nil
}

func (s *memberFinderStub) FindPartner(ctx context.Context, coupleID, memberID string) (*models.Member, error) {
	return s.partner, nil
}

type calendarCacheStub struct {
	store map[string][]models.CalendarDay
	gets  int
	sets  int
}

func (s *calendarCacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	s.gets++
	if view, ok := s.store[key]; ok {
		*(dest.(*[]models.CalendarDay)) = view
		return nil
	}
	return appErrors.ErrCacheMiss
}

func (s *calendarCacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.sets++
	if s.store == nil {
		s.store = map[string][]models.CalendarDay{}
	}
	s.store[key] = value.([]models.CalendarDay)
	return nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func coupledCalendarFixture() (*CalendarService, *calendarCacheStub) {
	coupleID := "couple-1"
	schedules := &scheduleListerStub{byMember: map[string][]models.Schedule{
		"member-1": {
			{StartAt: time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC), EndAt: time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)},
			// Spans three dates.
			{StartAt: time.Date(2024, time.March, 10, 22, 0, 0, 0, time.UTC), EndAt: time.Date(2024, time.March, 12, 8, 0, 0, 0, time.UTC)},
		},
		"member-2": {
			{StartAt: time.Date(2024, time.March, 4, 14, 0, 0, 0, time.UTC), EndAt: time.Date(2024, time.March, 4, 15, 0, 0, 0, time.UTC)},
		},
	}}
	datings := &datingListerStub{items: []models.Dating{
		{StartAt: time.Date(2024, time.March, 4, 19, 0, 0, 0, time.UTC), EndAt: time.Date(2024, time.March, 4, 21, 0, 0, 0, time.UTC)},
	}}
	anniversaries := &anniversaryListerStub{items: []models.Anniversary{
		{Date: day(2024, time.March, 4)},
		{Date: day(2024, time.March, 4)}, // duplicate date collapses
		{Date: day(2024, time.March, 20)},
	}}
	members := &memberFinderStub{
		members: map[string]*models.Member{
			"member-1": {ID: "member-1", CoupleID: &coupleID},
		},
		partner: &models.Member{ID: "member-2", CoupleID: &coupleID},
	}
	cache := &calendarCacheStub{}
	svc := NewCalendarService(schedules, datings, anniversaries, members, cache, time.Minute, nil, nil)
	return svc, cache
}

func TestCalendarServiceDateViewMergesSources(t *testing.T) {
	svc, _ := coupledCalendarFixture()
	coupleID := "couple-1"
	claims := &models.JWTClaims{MemberID: "member-1", CoupleID: &coupleID}

	view, err := svc.DateView(context.Background(), claims, "member-1", nil, nil)
	require.NoError(t, err)
	require.Len(t, view, 5)

	assert.Equal(t, "2024-03-04", view[0].Date)
	assert.Equal(t, []string{
		models.TagDatingSchedule,
		models.TagMySchedule,
		models.TagPartnerSchedule,
		models.TagAnniversary,
	}, view[0].Events)

	assert.Equal(t, "2024-03-10", view[1].Date)
	assert.Equal(t, []string{models.TagMySchedule}, view[1].Events)
	assert.Equal(t, "2024-03-11", view[2].Date)
	assert.Equal(t, "2024-03-12", view[3].Date)

	assert.Equal(t, "2024-03-20", view[4].Date)
	assert.Equal(t, []string{models.TagAnniversary}, view[4].Events)
}

func TestCalendarServiceDateViewCaches(t *testing.T) {
	svc, cache := coupledCalendarFixture()
	coupleID := "couple-1"
	claims := &models.JWTClaims{MemberID: "member-1", CoupleID: &coupleID}

	first, err := svc.DateView(context.Background(), claims, "member-1", nil, nil)
	require.NoError(t, err)
	second, err := svc.DateView(context.Background(), claims, "member-1", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, cache.gets)
	assert.Equal(t, 1, cache.sets)
}

func TestCalendarServiceDateViewSoloMember(t *testing.T) {
	schedules := &scheduleListerStub{byMember: map[string][]models.Schedule{
		"member-1": {
			{StartAt: time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC), EndAt: time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)},
		},
	}}
	members := &memberFinderStub{members: map[string]*models.Member{
		"member-1": {ID: "member-1"},
	}}
	svc := NewCalendarService(schedules, &datingListerStub{}, &anniversaryListerStub{}, members, nil, time.Minute, nil, nil)

	view, err := svc.DateView(context.Background(), &models.JWTClaims{MemberID: "member-1"}, "member-1", nil, nil)
	require.NoError(t, err)
	require.Len(t, view, 1)
	assert.Equal(t, []string{models.TagMySchedule}, view[0].Events)
}

func TestCalendarServiceDateViewMonthFilter(t *testing.T) {
	svc, _ := coupledCalendarFixture()
	coupleID := "couple-1"
	claims := &models.JWTClaims{MemberID: "member-1", CoupleID: &coupleID}

	year, month := 2024, 4
	view, err := svc.DateView(context.Background(), claims, "member-1", &year, &month)
	require.NoError(t, err)
	assert.Empty(t, view)
}

func TestCalendarServiceDateViewRejectsOtherMember(t *testing.T) {
	svc, _ := coupledCalendarFixture()

	_, err := svc.DateView(context.Background(), &models.JWTClaims{MemberID: "member-1"}, "member-2", nil, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPermissionDenied.Code, appErrors.FromError(err).Code)
}

func TestCalendarScope(t *testing.T) {
	coupleID := "couple-1"
	assert.Equal(t, "calendar:view:couple:couple-1", calendarScope("member-1", &coupleID))
	assert.Equal(t, "calendar:view:solo:member-1", calendarScope("member-1", nil))
}
