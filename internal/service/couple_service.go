package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/duetday/duetday-api/internal/dto"
	"github.com/duetday/duetday-api/internal/models"
	"github.com/duetday/duetday-api/internal/recurrence"
	appErrors "github.com/duetday/duetday-api/pkg/errors"
)

type coupleRepository interface {
	FindByID(ctx context.Context, id string) (*models.Couple, error)
	Connect(ctx context.Context, couple *models.Couple, memberID, partnerID string) error
}

type memberReader interface {
	FindByID(ctx context.Context, id string) (*models.Member, error)
}

// CoupleService connects two members into a couple and seeds their shared
// anniversary calendar.
type CoupleService struct {
	couples       coupleRepository
	members       memberReader
	anniversaries anniversaryRepository
	cache         viewCache
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewCoupleService constructs the service. The cache may be nil.
func NewCoupleService(couples coupleRepository, members memberReader, anniversaries anniversaryRepository, cache viewCache, validate *validator.Validate, logger *zap.Logger) *CoupleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CoupleService{
		couples:       couples,
		members:       members,
		anniversaries: anniversaries,
		cache:         cache,
		validator:     validate,
		logger:        logger,
	}
}

// Connect links the acting member with the requested partner and bootstraps
// the couple's anniversaries: the yearly first-met day, the hundred-day
// milestones counted from it, and each member's yearly birthday.
func (s *CoupleService) Connect(ctx context.Context, claims *models.JWTClaims, req dto.ConnectCoupleRequest) (*models.Couple, error) {
	if claims.CoupleID != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "member is already coupled")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid couple payload")
	}
	if req.PartnerID == claims.MemberID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot couple with yourself")
	}
	firstDate, err := parseAnniversaryDate(req.FirstDate)
	if err != nil {
		return nil, err
	}
	if !recurrence.WithinHorizon(firstDate) {
		return nil, appErrors.Clone(appErrors.ErrInvalidRange, "first date crosses the calendar horizon")
	}

	me, err := s.findMember(ctx, claims.MemberID)
	if err != nil {
		return nil, err
	}
	partner, err := s.findMember(ctx, req.PartnerID)
	if err != nil {
		return nil, err
	}
	if partner.CoupleID != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "partner is already coupled")
	}

	couple := &models.Couple{FirstDate: firstDate}
	if err := s.couples.Connect(ctx, couple, claims.MemberID, req.PartnerID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "failed to connect couple")
	}

	if err := s.bootstrapAnniversaries(ctx, couple, me, partner); err != nil {
		// The couple link already committed; a partial bootstrap is
		// recoverable by hand, losing the link is not.
		s.logger.Error("anniversary bootstrap failed",
			zap.String("couple_id", couple.ID),
			zap.Error(err))
	}

	if s.cache != nil {
		s.cache.InvalidatePrefix(ctx, calendarScope(claims.MemberID, &couple.ID))
	}
	return couple, nil
}

func (s *CoupleService) bootstrapAnniversaries(ctx context.Context, couple *models.Couple, me, partner *models.Member) error {
	if err := s.seedFirstDate(ctx, couple); err != nil {
		return err
	}
	if err := s.seedHundredDays(ctx, couple); err != nil {
		return err
	}
	for _, member := range []*models.Member{me, partner} {
		if err := s.seedBirthday(ctx, couple, member); err != nil {
			return err
		}
	}
	return nil
}

func (s *CoupleService) seedFirstDate(ctx context.Context, couple *models.Couple) error {
	category := recurrence.CategoryFirstDate
	pattern := &models.RecurrencePattern{
		OwnerID:         couple.ID,
		RepeatStartDate: recurrence.DateOf(couple.FirstDate),
		RepeatEndDate:   recurrence.CalendarEndDate,
		RepeatRule:      recurrence.RuleYearly,
		Category:        &category,
	}
	dates := recurrence.ExpandDates(recurrence.RuleYearly, recurrence.CalendarEndDate, couple.FirstDate)
	items := make([]models.Anniversary, len(dates))
	for i, d := range dates {
		items[i] = models.Anniversary{
			CoupleID: couple.ID,
			Title:    "The day we met",
			Category: category,
			Date:     d,
		}
	}
	return s.anniversaries.CreateBatch(ctx, pattern, items)
}

// seedHundredDays writes the 100, 200, 300... day milestones. The first-met
// day itself is covered by the yearly first-date series, so the anchor slot
// is skipped.
func (s *CoupleService) seedHundredDays(ctx context.Context, couple *models.Couple) error {
	category := recurrence.CategoryFirstDate
	pattern := &models.RecurrencePattern{
		OwnerID:         couple.ID,
		RepeatStartDate: recurrence.DateOf(couple.FirstDate),
		RepeatEndDate:   recurrence.CalendarEndDate,
		RepeatRule:      recurrence.RuleHundredDays,
		Category:        &category,
	}
	dates := recurrence.ExpandDates(recurrence.RuleHundredDays, recurrence.CalendarEndDate, couple.FirstDate)
	if len(dates) <= 1 {
		return nil
	}
	dates = dates[1:]
	items := make([]models.Anniversary, len(dates))
	for i, d := range dates {
		items[i] = models.Anniversary{
			CoupleID: couple.ID,
			Title:    fmt.Sprintf("%d days", (i+1)*100),
			Category: category,
			Date:     d,
		}
	}
	return s.anniversaries.CreateBatch(ctx, pattern, items)
}

func (s *CoupleService) seedBirthday(ctx context.Context, couple *models.Couple, member *models.Member) error {
	category := recurrence.CategoryBirth
	anchor := recurrence.DateOf(member.BirthDay)
	pattern := &models.RecurrencePattern{
		OwnerID:         couple.ID,
		RepeatStartDate: anchor,
		RepeatEndDate:   recurrence.CalendarEndDate,
		RepeatRule:      recurrence.RuleYearly,
		Category:        &category,
	}
	dates := recurrence.ExpandDates(recurrence.RuleYearly, recurrence.CalendarEndDate, anchor)
	items := make([]models.Anniversary, len(dates))
	for i, d := range dates {
		items[i] = models.Anniversary{
			CoupleID: couple.ID,
			Title:    fmt.Sprintf("%s's birthday", member.Nickname),
			Category: category,
			Date:     d,
		}
	}
	return s.anniversaries.CreateBatch(ctx, pattern, items)
}

// Get loads a couple the acting member belongs to.
func (s *CoupleService) Get(ctx context.Context, claims *models.JWTClaims, coupleID string) (*models.Couple, error) {
	if claims.CoupleID == nil || *claims.CoupleID != coupleID {
		return nil, appErrors.ErrPermissionDenied
	}
	couple, err := s.couples.FindByID(ctx, coupleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "couple not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load couple")
	}
	return couple, nil
}

func (s *CoupleService) findMember(ctx context.Context, id string) (*models.Member, error) {
	m, err := s.members.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load member")
	}
	return m, nil
}
