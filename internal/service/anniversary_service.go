package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/duetday/duetday-api/internal/dto"
	"github.com/duetday/duetday-api/internal/models"
	"github.com/duetday/duetday-api/internal/recurrence"
	"github.com/duetday/duetday-api/internal/repository"
	appErrors "github.com/duetday/duetday-api/pkg/errors"
)

type anniversaryRepository interface {
	CreateBatch(ctx context.Context, pattern *models.RecurrencePattern, items []models.Anniversary) error
	FindByID(ctx context.Context, id string) (*models.Anniversary, error)
	FindPattern(ctx context.Context, patternID string) (*models.RecurrencePattern, error)
	CountByPattern(ctx context.Context, patternID string) (int, error)
	ListByPattern(ctx context.Context, patternID string) ([]models.Anniversary, error)
	UpdateInPlace(ctx context.Context, item *models.Anniversary, pattern *models.RecurrencePattern) error
	Split(ctx context.Context, oldPatternID string, item *models.Anniversary, newPattern *models.RecurrencePattern, bounds *repository.PatternBounds) error
	ShiftSeries(ctx context.Context, shift repository.AnniversarySeriesShift) error
	DeleteOne(ctx context.Context, id, patternID string) error
	DeleteSeries(ctx context.Context, patternID string) error
	ListInRange(ctx context.Context, coupleID string, year, month *int) ([]models.Anniversary, error)
}

// AnniversaryService manages a couple's date-only anniversary events.
// Members can only request NONE or YEAR repeats; the hundred-day series and
// the birthday/first-date entries come from the couple-connection bootstrap.
type AnniversaryService struct {
	repo      anniversaryRepository
	cache     viewCache
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAnniversaryService constructs the service. The cache may be nil.
func NewAnniversaryService(repo anniversaryRepository, cache viewCache, validate *validator.Validate, logger *zap.Logger) *AnniversaryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnniversaryService{repo: repo, cache: cache, validator: validate, logger: logger}
}

func (s *AnniversaryService) authorize(claims *models.JWTClaims, coupleID string) error {
	if claims.CoupleID == nil || *claims.CoupleID != coupleID {
		return appErrors.ErrPermissionDenied
	}
	return nil
}

func parseAnniversaryDate(raw string) (time.Time, error) {
	d, err := time.ParseInLocation(calendarDateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date must be formatted YYYY-MM-DD")
	}
	return d, nil
}

// Create validates the request, expands the yearly recurrence and persists
// the pattern with its full occurrence batch.
func (s *AnniversaryService) Create(ctx context.Context, claims *models.JWTClaims, coupleID string, req dto.CreateAnniversaryRequest) ([]models.Anniversary, error) {
	if err := s.authorize(claims, coupleID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid anniversary payload")
	}
	rule, err := recurrence.ParseRule(req.RepeatRule)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown repeat rule")
	}
	if rule != recurrence.RuleNone && rule != recurrence.RuleYearly {
		return nil, appErrors.Clone(appErrors.ErrValidation, "anniversaries repeat NONE or YEAR only")
	}
	date, err := parseAnniversaryDate(req.Date)
	if err != nil {
		return nil, err
	}
	if !recurrence.WithinHorizon(date) {
		return nil, appErrors.Clone(appErrors.ErrInvalidRange, "date crosses the calendar horizon")
	}

	category := recurrence.CategoryOther
	items, err := s.createSeries(ctx, coupleID, req.Title, req.Content, rule, category, date)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, claims)
	return items, nil
}

// createSeries persists one anniversary pattern and its date occurrences.
// It is shared with the couple-connection bootstrap, which is why category
// is a parameter rather than fixed to OTHER.
func (s *AnniversaryService) createSeries(ctx context.Context, coupleID, title string, content *string, rule recurrence.Rule, category recurrence.Category, date time.Time) ([]models.Anniversary, error) {
	repeatEnd := recurrence.DateOf(date)
	if rule != recurrence.RuleNone {
		repeatEnd = recurrence.CalendarEndDate
	}

	pattern := &models.RecurrencePattern{
		OwnerID:         coupleID,
		RepeatStartDate: recurrence.DateOf(date),
		RepeatEndDate:   repeatEnd,
		RepeatRule:      rule,
		Category:        &category,
	}

	dates := recurrence.ExpandDates(rule, repeatEnd, date)
	items := make([]models.Anniversary, len(dates))
	for i, d := range dates {
		items[i] = models.Anniversary{
			CoupleID: coupleID,
			Title:    title,
			Content:  content,
			Category: category,
			Date:     d,
		}
	}

	if err := s.repo.CreateBatch(ctx, pattern, items); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create anniversary")
	}
	return items, nil
}

// Update edits one occurrence or, when applyToSeries is set, every
// occurrence sharing its pattern.
func (s *AnniversaryService) Update(ctx context.Context, claims *models.JWTClaims, coupleID, anniversaryID string, applyToSeries bool, req dto.UpdateAnniversaryRequest) error {
	if err := s.authorize(claims, coupleID); err != nil {
		return err
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid anniversary payload")
	}
	date, err := parseAnniversaryDate(req.Date)
	if err != nil {
		return err
	}
	if !recurrence.WithinHorizon(date) {
		return appErrors.Clone(appErrors.ErrInvalidRange, "date crosses the calendar horizon")
	}

	occ, err := s.findOwned(ctx, coupleID, anniversaryID)
	if err != nil {
		return err
	}
	pattern, err := s.repo.FindPattern(ctx, occ.PatternID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pattern")
	}

	if applyToSeries {
		err = s.updateSeries(ctx, occ, pattern, req, date)
	} else {
		err = s.updateOne(ctx, occ, pattern, req, date)
	}
	if err != nil {
		return err
	}
	s.invalidate(ctx, claims)
	return nil
}

func (s *AnniversaryService) updateOne(ctx context.Context, occ *models.Anniversary, pattern *models.RecurrencePattern, req dto.UpdateAnniversaryRequest, date time.Time) error {
	count, err := s.repo.CountByPattern(ctx, pattern.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count occurrences")
	}

	oldDate := occ.Date
	occ.Title = req.Title
	occ.Content = req.Content
	occ.Date = date

	if count <= 1 {
		var patternUpdate *models.RecurrencePattern
		if diff := dayDelta(oldDate, date); diff != 0 {
			pattern.ShiftDates(diff)
			patternUpdate = pattern
		}
		if err := s.repo.UpdateInPlace(ctx, occ, patternUpdate); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update anniversary")
		}
		return nil
	}

	var bounds *repository.PatternBounds
	if recurrence.SameDate(oldDate, pattern.RepeatStartDate) || recurrence.SameDate(oldDate, pattern.RepeatEndDate) {
		siblings, err := s.repo.ListByPattern(ctx, pattern.ID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list occurrences")
		}
		remaining := make([]time.Time, 0, len(siblings)-1)
		for _, sib := range siblings {
			if sib.ID != occ.ID {
				remaining = append(remaining, sib.Date)
			}
		}
		bounds = tightenBounds(pattern, oldDate, remaining)
	}

	newPattern := splitPattern(pattern, date)
	if err := s.repo.Split(ctx, pattern.ID, occ, newPattern, bounds); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to split anniversary")
	}
	return nil
}

func (s *AnniversaryService) updateSeries(ctx context.Context, occ *models.Anniversary, pattern *models.RecurrencePattern, req dto.UpdateAnniversaryRequest, date time.Time) error {
	dayDiff := dayDelta(occ.Date, date)
	shift := repository.AnniversarySeriesShift{
		PatternID:       pattern.ID,
		DayDiff:         dayDiff,
		Title:           req.Title,
		Content:         req.Content,
		ShiftPattern:    dayDiff != 0 && pattern.RepeatRule != recurrence.RuleHundredDays,
		ShiftPatternEnd: pattern.RepeatRule == recurrence.RuleNone,
	}
	if err := s.repo.ShiftSeries(ctx, shift); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to shift anniversary series")
	}
	return nil
}

// Delete removes one occurrence (cascading the pattern when it was the last)
// or the whole series.
func (s *AnniversaryService) Delete(ctx context.Context, claims *models.JWTClaims, coupleID, anniversaryID string, applyToSeries bool) error {
	if err := s.authorize(claims, coupleID); err != nil {
		return err
	}
	occ, err := s.findOwned(ctx, coupleID, anniversaryID)
	if err != nil {
		return err
	}

	if applyToSeries {
		err = s.repo.DeleteSeries(ctx, occ.PatternID)
	} else {
		err = s.repo.DeleteOne(ctx, occ.ID, occ.PatternID)
	}
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete anniversary")
	}
	s.invalidate(ctx, claims)
	return nil
}

// ListRange returns the couple's anniversaries for an optional year/month/day
// filter.
func (s *AnniversaryService) ListRange(ctx context.Context, claims *models.JWTClaims, coupleID string, year, month, day *int) ([]models.Anniversary, error) {
	if err := s.authorize(claims, coupleID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListInRange(ctx, coupleID, year, month)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list anniversaries")
	}
	if day == nil {
		return items, nil
	}

	filtered := items[:0]
	for _, item := range items {
		if item.Date.Day() == *day {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

// Dates returns the couple's anniversary dates as a deduplicated ascending
// list of YYYY-MM-DD strings.
func (s *AnniversaryService) Dates(ctx context.Context, claims *models.JWTClaims, coupleID string, year, month *int) ([]string, error) {
	if err := s.authorize(claims, coupleID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListInRange(ctx, coupleID, year, month)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list anniversaries")
	}

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		seen[recurrence.DateOf(item.Date).Format(calendarDateLayout)] = struct{}{}
	}
	dates := make([]string, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates, nil
}

func (s *AnniversaryService) findOwned(ctx context.Context, coupleID, anniversaryID string) (*models.Anniversary, error) {
	occ, err := s.repo.FindByID(ctx, anniversaryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "anniversary not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load anniversary")
	}
	if occ.CoupleID != coupleID {
		return nil, appErrors.ErrPermissionDenied
	}
	return occ, nil
}

func (s *AnniversaryService) invalidate(ctx context.Context, claims *models.JWTClaims) {
	if s.cache == nil {
		return
	}
	s.cache.InvalidatePrefix(ctx, calendarScope(claims.MemberID, claims.CoupleID))
}
