package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/duetday/duetday-api/internal/models"
	"github.com/duetday/duetday-api/internal/recurrence"
	appErrors "github.com/duetday/duetday-api/pkg/errors"
)

const calendarDateLayout = "2006-01-02"

type scheduleRangeLister interface {
	ListInRange(ctx context.Context, memberID string, year, month *int) ([]models.Schedule, error)
}

type datingRangeLister interface {
	ListInRange(ctx context.Context, coupleID string, year, month *int) ([]models.Dating, error)
}

type anniversaryRangeLister interface {
	ListInRange(ctx context.Context, coupleID string, year, month *int) ([]models.Anniversary, error)
}

type partnerFinder interface {
	FindByID(ctx context.Context, id string) (*models.Member, error)
	FindPartner(ctx context.Context, coupleID, memberID string) (*models.Member, error)
}

type calendarCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CalendarService merges the four event sources into the per-date view.
type CalendarService struct {
	schedules     scheduleRangeLister
	datings       datingRangeLister
	anniversaries anniversaryRangeLister
	members       partnerFinder
	cache         calendarCache
	cacheTTL      time.Duration
	metrics       *MetricsService
	logger        *zap.Logger
}

// NewCalendarService constructs the service. The cache and metrics may be
// nil.
func NewCalendarService(schedules scheduleRangeLister, datings datingRangeLister, anniversaries anniversaryRangeLister, members partnerFinder, cache calendarCache, cacheTTL time.Duration, metrics *MetricsService, logger *zap.Logger) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{
		schedules:     schedules,
		datings:       datings,
		anniversaries: anniversaries,
		members:       members,
		cache:         cache,
		cacheTTL:      cacheTTL,
		metrics:       metrics,
		logger:        logger,
	}
}

// DateView answers "what happens on each day" for an optional year/month
// filter. The four sources are fetched independently; reads are not required
// to be mutually consistent.
func (s *CalendarService) DateView(ctx context.Context, claims *models.JWTClaims, memberID string, year, month *int) ([]models.CalendarDay, error) {
	if claims.MemberID != memberID {
		return nil, appErrors.ErrPermissionDenied
	}

	key := s.cacheKey(claims, year, month)
	if s.cache != nil {
		var cached []models.CalendarDay
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.metrics.RecordCacheLookup(true)
			return cached, nil
		}
		s.metrics.RecordCacheLookup(false)
	}

	member, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load member")
	}

	var datingDates, partnerDates, anniversaryDates []string

	mine, err := s.schedules.ListInRange(ctx, memberID, year, month)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedules")
	}
	myDates := spanDates(scheduleSpans(mine), year, month)

	if member.CoupleID != nil {
		coupleID := *member.CoupleID

		datings, err := s.datings.ListInRange(ctx, coupleID, year, month)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load datings")
		}
		datingDates = spanDates(datingSpans(datings), year, month)

		partner, err := s.members.FindPartner(ctx, coupleID, memberID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load partner")
		}
		if partner != nil {
			theirs, err := s.schedules.ListInRange(ctx, partner.ID, year, month)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load partner schedules")
			}
			partnerDates = spanDates(scheduleSpans(theirs), year, month)
		}

		anniversaries, err := s.anniversaries.ListInRange(ctx, coupleID, year, month)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load anniversaries")
		}
		anniversaryDates = anniversarySpanDates(anniversaries, year, month)
	}

	view := mergeCalendar(datingDates, myDates, partnerDates, anniversaryDates)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, view, s.cacheTTL); err != nil {
			s.logger.Warn("calendar view cache write failed", zap.Error(err))
		}
	}
	return view, nil
}

func (s *CalendarService) cacheKey(claims *models.JWTClaims, year, month *int) string {
	y, m := -1, -1
	if year != nil {
		y = *year
	}
	if month != nil {
		m = *month
	}
	return fmt.Sprintf("%s:%s:%d:%d", calendarScope(claims.MemberID, claims.CoupleID), claims.MemberID, y, m)
}

// calendarScope is the cache key prefix shared by every view a mutation can
// affect: both members of a couple see each other's schedules, so couple
// scoped events invalidate both views at once.
func calendarScope(memberID string, coupleID *string) string {
	if coupleID != nil {
		return "calendar:view:couple:" + *coupleID
	}
	return "calendar:view:solo:" + memberID
}

type span struct {
	start time.Time
	end   time.Time
}

func scheduleSpans(items []models.Schedule) []span {
	spans := make([]span, len(items))
	for i, item := range items {
		spans[i] = span{start: item.StartAt, end: item.EndAt}
	}
	return spans
}

func datingSpans(items []models.Dating) []span {
	spans := make([]span, len(items))
	for i, item := range items {
		spans[i] = span{start: item.StartAt, end: item.EndAt}
	}
	return spans
}

// spanDates expands each occurrence to every date in [start, end] inclusive,
// filters by the optional year/month, deduplicates and sorts ascending.
func spanDates(spans []span, year, month *int) []string {
	seen := make(map[string]struct{})
	for _, sp := range spans {
		for d := recurrence.DateOf(sp.start); !recurrence.AfterDate(d, sp.end); d = d.AddDate(0, 0, 1) {
			if !matchesFilter(d, year, month) {
				continue
			}
			seen[d.Format(calendarDateLayout)] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

func anniversarySpanDates(items []models.Anniversary, year, month *int) []string {
	seen := make(map[string]struct{})
	for _, item := range items {
		d := recurrence.DateOf(item.Date)
		if !matchesFilter(d, year, month) {
			continue
		}
		seen[d.Format(calendarDateLayout)] = struct{}{}
	}
	return sortedKeys(seen)
}

func matchesFilter(d time.Time, year, month *int) bool {
	if year != nil && d.Year() != *year {
		return false
	}
	if month != nil && d.Month() != time.Month(*month) {
		return false
	}
	return true
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// mergeCalendar builds the per-date tag lists. Sources are inserted in a
// fixed order so a date carrying all four reads datingSchedule, mySchedule,
// partnerSchedule, anniversary.
func mergeCalendar(dating, mine, partner, anniversary []string) []models.CalendarDay {
	events := make(map[string][]string)
	insert := func(dates []string, tag string) {
		for _, d := range dates {
			events[d] = append(events[d], tag)
		}
	}
	insert(dating, models.TagDatingSchedule)
	insert(mine, models.TagMySchedule)
	insert(partner, models.TagPartnerSchedule)
	insert(anniversary, models.TagAnniversary)

	dates := make([]string, 0, len(events))
	for d := range events {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	view := make([]models.CalendarDay, len(dates))
	for i, d := range dates {
		view[i] = models.CalendarDay{Date: d, Events: events[d]}
	}
	return view
}
