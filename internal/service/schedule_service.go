package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/duetday/duetday-api/internal/dto"
	"github.com/duetday/duetday-api/internal/models"
	"github.com/duetday/duetday-api/internal/recurrence"
	"github.com/duetday/duetday-api/internal/repository"
	appErrors "github.com/duetday/duetday-api/pkg/errors"
)

type scheduleRepository interface {
	CreateBatch(ctx context.Context, pattern *models.RecurrencePattern, items []models.Schedule) error
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
	FindPattern(ctx context.Context, patternID string) (*models.RecurrencePattern, error)
	CountByPattern(ctx context.Context, patternID string) (int, error)
	ListByPattern(ctx context.Context, patternID string) ([]models.Schedule, error)
	UpdateInPlace(ctx context.Context, item *models.Schedule, pattern *models.RecurrencePattern) error
	Split(ctx context.Context, oldPatternID string, item *models.Schedule, newPattern *models.RecurrencePattern, bounds *repository.PatternBounds) error
	ShiftSeries(ctx context.Context, shift repository.SeriesShift) error
	DeleteOne(ctx context.Context, id, patternID string) error
	DeleteSeries(ctx context.Context, patternID string) error
	ListInRange(ctx context.Context, memberID string, year, month *int) ([]models.Schedule, error)
}

type viewCache interface {
	InvalidatePrefix(ctx context.Context, prefix string)
}

// ScheduleService manages a member's personal schedules.
type ScheduleService struct {
	repo      scheduleRepository
	cache     viewCache
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService constructs the service. The cache may be nil.
func NewScheduleService(repo scheduleRepository, cache viewCache, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Create validates the request, expands the recurrence and persists the
// pattern with its full occurrence batch.
func (s *ScheduleService) Create(ctx context.Context, claims *models.JWTClaims, memberID string, req dto.CreateScheduleRequest) ([]models.Schedule, error) {
	if claims.MemberID != memberID {
		return nil, appErrors.ErrPermissionDenied
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	rule, err := recurrence.ParseRule(req.RepeatRule)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown repeat rule")
	}
	if rule == recurrence.RuleHundredDays {
		return nil, appErrors.Clone(appErrors.ErrValidation, "hundred-day repeats are reserved for anniversaries")
	}
	if err := validateCreateRange(rule, req.StartDateTime, req.EndDateTime); err != nil {
		return nil, err
	}
	repeatEnd, err := resolveRepeatEnd(rule, req.StartDateTime, req.EndDateTime, req.RepeatEndTime)
	if err != nil {
		return nil, err
	}

	pattern := &models.RecurrencePattern{
		OwnerID:         memberID,
		RepeatStartDate: recurrence.DateOf(req.StartDateTime),
		RepeatEndDate:   repeatEnd,
		RepeatRule:      rule,
	}

	slots := recurrence.Expand(rule, repeatEnd, req.StartDateTime, req.EndDateTime)
	items := make([]models.Schedule, len(slots))
	for i, slot := range slots {
		items[i] = models.Schedule{
			MemberID: memberID,
			Title:    req.Title,
			Content:  req.Content,
			Location: req.Location,
			StartAt:  slot.Start,
			EndAt:    slot.End,
		}
	}

	if err := s.repo.CreateBatch(ctx, pattern, items); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule")
	}
	s.invalidate(ctx, claims)
	return items, nil
}

// Update edits one occurrence or, when applyToSeries is set, every
// occurrence sharing its pattern.
func (s *ScheduleService) Update(ctx context.Context, claims *models.JWTClaims, memberID, scheduleID string, applyToSeries bool, req dto.UpdateScheduleRequest) error {
	if claims.MemberID != memberID {
		return appErrors.ErrPermissionDenied
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	if err := validateEditRange(req.StartDateTime, req.EndDateTime); err != nil {
		return err
	}

	occ, err := s.findOwned(ctx, memberID, scheduleID)
	if err != nil {
		return err
	}
	pattern, err := s.repo.FindPattern(ctx, occ.PatternID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pattern")
	}

	if applyToSeries {
		err = s.updateSeries(ctx, occ, pattern, req)
	} else {
		err = s.updateOne(ctx, occ, pattern, req)
	}
	if err != nil {
		return err
	}
	s.invalidate(ctx, claims)
	return nil
}

func (s *ScheduleService) updateOne(ctx context.Context, occ *models.Schedule, pattern *models.RecurrencePattern, req dto.UpdateScheduleRequest) error {
	count, err := s.repo.CountByPattern(ctx, pattern.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count occurrences")
	}

	oldStart := occ.StartAt
	occ.Title = req.Title
	occ.Content = req.Content
	occ.Location = req.Location
	occ.StartAt = req.StartDateTime
	occ.EndAt = req.EndDateTime

	if count <= 1 {
		var patternUpdate *models.RecurrencePattern
		if diff := dayDelta(oldStart, req.StartDateTime); diff != 0 {
			pattern.ShiftDates(diff)
			patternUpdate = pattern
		}
		if err := s.repo.UpdateInPlace(ctx, occ, patternUpdate); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule")
		}
		return nil
	}

	var bounds *repository.PatternBounds
	if recurrence.SameDate(oldStart, pattern.RepeatStartDate) || recurrence.SameDate(oldStart, pattern.RepeatEndDate) {
		siblings, err := s.repo.ListByPattern(ctx, pattern.ID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list occurrences")
		}
		remaining := make([]time.Time, 0, len(siblings)-1)
		for _, sib := range siblings {
			if sib.ID != occ.ID {
				remaining = append(remaining, sib.StartAt)
			}
		}
		bounds = tightenBounds(pattern, oldStart, remaining)
	}

	newPattern := splitPattern(pattern, req.StartDateTime)
	if err := s.repo.Split(ctx, pattern.ID, occ, newPattern, bounds); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to split schedule")
	}
	return nil
}

func (s *ScheduleService) updateSeries(ctx context.Context, occ *models.Schedule, pattern *models.RecurrencePattern, req dto.UpdateScheduleRequest) error {
	dayDiff := dayDelta(occ.StartAt, req.StartDateTime)
	shift := repository.SeriesShift{
		PatternID:       pattern.ID,
		StartDeltaMin:   minuteDelta(occ.StartAt, req.StartDateTime),
		EndDeltaMin:     minuteDelta(occ.EndAt, req.EndDateTime),
		Title:           req.Title,
		Content:         req.Content,
		Location:        req.Location,
		PatternDayDiff:  dayDiff,
		ShiftPattern:    dayDiff != 0 && pattern.RepeatRule != recurrence.RuleHundredDays,
		ShiftPatternEnd: pattern.RepeatRule == recurrence.RuleNone,
	}
	if err := s.repo.ShiftSeries(ctx, shift); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to shift schedule series")
	}
	return nil
}

// Delete removes one occurrence (cascading the pattern when it was the last)
// or the whole series.
func (s *ScheduleService) Delete(ctx context.Context, claims *models.JWTClaims, memberID, scheduleID string, applyToSeries bool) error {
	if claims.MemberID != memberID {
		return appErrors.ErrPermissionDenied
	}
	occ, err := s.findOwned(ctx, memberID, scheduleID)
	if err != nil {
		return err
	}

	if applyToSeries {
		err = s.repo.DeleteSeries(ctx, occ.PatternID)
	} else {
		err = s.repo.DeleteOne(ctx, occ.ID, occ.PatternID)
	}
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule")
	}
	s.invalidate(ctx, claims)
	return nil
}

// ListRange returns the member's occurrences for an optional year/month/day
// filter.
func (s *ScheduleService) ListRange(ctx context.Context, claims *models.JWTClaims, memberID string, year, month, day *int) ([]models.Schedule, error) {
	if claims.MemberID != memberID {
		return nil, appErrors.ErrPermissionDenied
	}
	items, err := s.repo.ListInRange(ctx, memberID, year, month)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	if day == nil {
		return items, nil
	}

	filtered := items[:0]
	for _, item := range items {
		target := time.Date(yearOf(item.StartAt, year), monthOf(item.StartAt, month), *day, 0, 0, 0, 0, time.UTC)
		if !recurrence.AfterDate(item.StartAt, target) && !recurrence.AfterDate(target, item.EndAt) {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

func (s *ScheduleService) findOwned(ctx context.Context, memberID, scheduleID string) (*models.Schedule, error) {
	occ, err := s.repo.FindByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	if occ.MemberID != memberID {
		return nil, appErrors.ErrPermissionDenied
	}
	return occ, nil
}

func (s *ScheduleService) invalidate(ctx context.Context, claims *models.JWTClaims) {
	if s.cache == nil {
		return
	}
	s.cache.InvalidatePrefix(ctx, calendarScope(claims.MemberID, claims.CoupleID))
}

func yearOf(fallback time.Time, year *int) int {
	if year != nil {
		return *year
	}
	return fallback.Year()
}

func monthOf(fallback time.Time, month *int) time.Month {
	if month != nil {
		return time.Month(*month)
	}
	return fallback.Month()
}
