package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duetday/duetday-api/internal/dto"
	"github.com/duetday/duetday-api/internal/models"
	"github.com/duetday/duetday-api/internal/service"
	"github.com/duetday/duetday-api/pkg/response"
)

type calendarService interface {
	DateView(ctx context.Context, claims *models.JWTClaims, memberID string, year, month *int) ([]models.CalendarDay, error)
}

type exportService interface {
	Generate(ctx context.Context, claims *models.JWTClaims, memberID string, year, month *int, format service.ExportFormat) (*service.ExportResult, error)
}

// CalendarHandler exposes the merged calendar view and its file export.
type CalendarHandler struct {
	calendar calendarService
	exports  exportService
}

// NewCalendarHandler builds a new handler. The export service may be nil
// when file export is disabled.
func NewCalendarHandler(calendar calendarService, exports exportService) *CalendarHandler {
	return &CalendarHandler{calendar: calendar, exports: exports}
}

// DateView godoc
// @Summary Merged per-date calendar view
// @Tags Calendar
// @Produce json
// @Param memberId path string true "Member ID"
// @Param year query int false "Year filter"
// @Param month query int false "Month filter (1-12)"
// @Success 200 {object} response.Envelope
// @Router /members/{memberId}/calendar/date [get]
func (h *CalendarHandler) DateView(c *gin.Context) {
	claims := claimsFromContext(c)
	year, month, _, err := calendarFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.calendar.DateView(c.Request.Context(), claims, c.Param("memberId"), year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.CalendarDateResponse{Schedules: view}, nil)
}

// Export godoc
// @Summary Download the calendar view as CSV or PDF
// @Tags Calendar
// @Produce octet-stream
// @Param memberId path string true "Member ID"
// @Param format query string false "csv or pdf (default csv)"
// @Param year query int false "Year filter"
// @Param month query int false "Month filter (1-12)"
// @Success 200 {file} binary
// @Router /members/{memberId}/calendar/export [get]
func (h *CalendarHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	year, month, _, err := calendarFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.exports.Generate(c.Request.Context(), claims, c.Param("memberId"), year, month, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
