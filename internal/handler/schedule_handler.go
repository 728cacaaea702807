package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duetday/duetday-api/internal/dto"
	"github.com/duetday/duetday-api/internal/models"
	appErrors "github.com/duetday/duetday-api/pkg/errors"
	"github.com/duetday/duetday-api/pkg/response"
)

type scheduleService interface {
	Create(ctx context.Context, claims *models.JWTClaims, memberID string, req dto.CreateScheduleRequest) ([]models.Schedule, error)
	Update(ctx context.Context, claims *models.JWTClaims, memberID, scheduleID string, applyToSeries bool, req dto.UpdateScheduleRequest) error
	Delete(ctx context.Context, claims *models.JWTClaims, memberID, scheduleID string, applyToSeries bool) error
	ListRange(ctx context.Context, claims *models.JWTClaims, memberID string, year, month, day *int) ([]models.Schedule, error)
}

// ScheduleHandler exposes personal schedule endpoints.
type ScheduleHandler struct {
	service scheduleService
}

// NewScheduleHandler builds a new handler.
func NewScheduleHandler(service scheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

func scheduleResponses(items []models.Schedule) []dto.ScheduleResponse {
	out := make([]dto.ScheduleResponse, len(items))
	for i, item := range items {
		out[i] = dto.ScheduleResponse{
			ID:            item.ID,
			PatternID:     item.PatternID,
			Title:         item.Title,
			Content:       item.Content,
			Location:      item.Location,
			StartDateTime: item.StartAt,
			EndDateTime:   item.EndAt,
		}
	}
	return out
}

// Create godoc
// @Summary Create a schedule with its recurrence
// @Tags Schedules
// @Accept json
// @Produce json
// @Param memberId path string true "Member ID"
// @Param payload body dto.CreateScheduleRequest true "Schedule payload"
// @Success 200 {object} response.Envelope
// @Router /members/{memberId}/schedules [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	var req dto.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule payload"))
		return
	}
	items, err := h.service.Create(c.Request.Context(), claims, c.Param("memberId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scheduleResponses(items), nil)
}

// Update godoc
// @Summary Edit one occurrence or its whole series
// @Tags Schedules
// @Accept json
// @Produce json
// @Param memberId path string true "Member ID"
// @Param scheduleId path string true "Schedule ID"
// @Param updateRepeat query bool false "Apply to every occurrence of the series"
// @Param payload body dto.UpdateScheduleRequest true "Schedule payload"
// @Success 204
// @Router /members/{memberId}/schedules/{scheduleId} [put]
func (h *ScheduleHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	var req dto.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule payload"))
		return
	}
	err := h.service.Update(c.Request.Context(), claims, c.Param("memberId"), c.Param("scheduleId"), updateRepeat(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete one occurrence or its whole series
// @Tags Schedules
// @Produce json
// @Param memberId path string true "Member ID"
// @Param scheduleId path string true "Schedule ID"
// @Param deleteRepeat query bool false "Delete every occurrence of the series"
// @Success 204
// @Router /members/{memberId}/schedules/{scheduleId} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	err := h.service.Delete(c.Request.Context(), claims, c.Param("memberId"), c.Param("scheduleId"), deleteRepeat(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// List godoc
// @Summary List schedules for an optional year/month/day filter
// @Tags Schedules
// @Produce json
// @Param memberId path string true "Member ID"
// @Param year query int false "Year filter"
// @Param month query int false "Month filter (1-12)"
// @Param day query int false "Day filter (1-31)"
// @Success 200 {object} response.Envelope
// @Router /members/{memberId}/schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	year, month, day, err := calendarFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.service.ListRange(c.Request.Context(), claims, c.Param("memberId"), year, month, day)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scheduleResponses(items), nil)
}
