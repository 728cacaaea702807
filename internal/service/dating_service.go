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

type datingRepository interface {
	CreateBatch(ctx context.Context, pattern *models.RecurrencePattern, items []models.Dating) error
	FindByID(ctx context.Context, id string) (*models.Dating, error)
	FindPattern(ctx context.Context, patternID string) (*models.RecurrencePattern, error)
	CountByPattern(ctx context.Context, patternID string) (int, error)
	ListByPattern(ctx context.Context, patternID string) ([]models.Dating, error)
	UpdateInPlace(ctx context.Context, item *models.Dating, pattern *models.RecurrencePattern) error
	Split(ctx context.Context, oldPatternID string, item *models.Dating, newPattern *models.RecurrencePattern, bounds *repository.PatternBounds) error
	ShiftSeries(ctx context.Context, shift repository.SeriesShift) error
	DeleteOne(ctx context.Context, id, patternID string) error
	DeleteSeries(ctx context.Context, patternID string) error
	ListInRange(ctx context.Context, coupleID string, year, month *int) ([]models.Dating, error)
}

// DatingService manages the shared dating events of a couple. Either member
// may create, edit or delete; ownership is the couple, not the author.
type DatingService struct {
	repo      datingRepository
	cache     viewCache
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDatingService constructs the service. The cache may be nil.
func NewDatingService(repo datingRepository, cache viewCache, validate *validator.Validate, logger *zap.Logger) *DatingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DatingService{repo: repo, cache: cache, validator: validate, logger: logger}
}

func (s *DatingService) authorize(claims *models.JWTClaims, coupleID string) error {
	if claims.CoupleID == nil || *claims.CoupleID != coupleID {
		return appErrors.ErrPermissionDenied
	}
	return nil
}

// Create validates the request, expands the recurrence and persists the
// pattern with its full occurrence batch.
func (s *DatingService) Create(ctx context.Context, claims *models.JWTClaims, coupleID string, req dto.CreateDatingRequest) ([]models.Dating, error) {
	if err := s.authorize(claims, coupleID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid dating payload")
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
		OwnerID:         coupleID,
		RepeatStartDate: recurrence.DateOf(req.StartDateTime),
		RepeatEndDate:   repeatEnd,
		RepeatRule:      rule,
	}

	slots := recurrence.Expand(rule, repeatEnd, req.StartDateTime, req.EndDateTime)
	items := make([]models.Dating, len(slots))
	for i, slot := range slots {
		items[i] = models.Dating{
			CoupleID: coupleID,
			Title:    req.Title,
			Content:  req.Content,
			Location: req.Location,
			StartAt:  slot.Start,
			EndAt:    slot.End,
		}
	}

	if err := s.repo.CreateBatch(ctx, pattern, items); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create dating")
	}
	s.invalidate(ctx, claims)
	return items, nil
}

// Update edits one occurrence or, when applyToSeries is set, every
// occurrence sharing its pattern.
func (s *DatingService) Update(ctx context.Context, claims *models.JWTClaims, coupleID, datingID string, applyToSeries bool, req dto.UpdateDatingRequest) error {
	if err := s.authorize(claims, coupleID); err != nil {
		return err
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid dating payload")
	}
	if err := validateEditRange(req.StartDateTime, req.EndDateTime); err != nil {
		return err
	}

	occ, err := s.findOwned(ctx, coupleID, datingID)
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

func (s *DatingService) updateOne(ctx context.Context, occ *models.Dating, pattern *models.RecurrencePattern, req dto.UpdateDatingRequest) error {
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
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update dating")
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
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to split dating")
	}
	return nil
}

func (s *DatingService) updateSeries(ctx context.Context, occ *models.Dating, pattern *models.RecurrencePattern, req dto.UpdateDatingRequest) error {
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
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to shift dating series")
	}
	return nil
}

// Delete removes one occurrence (cascading the pattern when it was the last)
// or the whole series.
func (s *DatingService) Delete(ctx context.Context, claims *models.JWTClaims, coupleID, datingID string, applyToSeries bool) error {
	if err := s.authorize(claims, coupleID); err != nil {
		return err
	}
	occ, err := s.findOwned(ctx, coupleID, datingID)
	if err != nil {
		return err
	}

	if applyToSeries {
		err = s.repo.DeleteSeries(ctx, occ.PatternID)
	} else {
		err = s.repo.DeleteOne(ctx, occ.ID, occ.PatternID)
	}
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete dating")
	}
	s.invalidate(ctx, claims)
	return nil
}

// ListRange returns the couple's occurrences for an optional year/month/day
// filter.
func (s *DatingService) ListRange(ctx context.Context, claims *models.JWTClaims, coupleID string, year, month, day *int) ([]models.Dating, error) {
	if err := s.authorize(claims, coupleID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListInRange(ctx, coupleID, year, month)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list datings")
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

func (s *DatingService) findOwned(ctx context.Context, coupleID, datingID string) (*models.Dating, error) {
	occ, err := s.repo.FindByID(ctx, datingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "dating not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dating")
	}
	if occ.CoupleID != coupleID {
		return nil, appErrors.ErrPermissionDenied
	}
	return occ, nil
}

func (s *DatingService) invalidate(ctx context.Context, claims *models.JWTClaims) {
	if s.cache == nil {
		return
	}
	s.cache.InvalidatePrefix(ctx, calendarScope(claims.MemberID, claims.CoupleID))
}
