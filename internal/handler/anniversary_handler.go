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

type anniversaryService interface {
	Create(ctx context.Context, claims *models.JWTClaims, coupleID string, req dto.CreateAnniversaryRequest) ([]models.Anniversary, error)
	Update(ctx context.Context, claims *models.JWTClaims, coupleID, anniversaryID string, applyToSeries bool, req dto.UpdateAnniversaryRequest) error
	Delete(ctx context.Context, claims *models.JWTClaims, coupleID, anniversaryID string, applyToSeries bool) error
	ListRange(ctx context.Context, claims *models.JWTClaims, coupleID string, year, month, day *int) ([]models.Anniversary, error)
	Dates(ctx context.Context, claims *models.JWTClaims, coupleID string, year, month *int) ([]string, error)
}

// AnniversaryHandler exposes couple anniversary endpoints.
type AnniversaryHandler struct {
	service anniversaryService
}

// NewAnniversaryHandler builds a new handler.
func NewAnniversaryHandler(service anniversaryService) *AnniversaryHandler {
	return &AnniversaryHandler{service: service}
}

func anniversaryResponses(items []models.Anniversary) []dto.AnniversaryResponse {
	out := make([]dto.AnniversaryResponse, len(items))
	for i, item := range items {
		out[i] = dto.AnniversaryResponse{
			ID:        item.ID,
			PatternID: item.PatternID,
			Title:     item.Title,
			Content:   item.Content,
			Category:  string(item.Category),
			Date:      item.Date.Format("2006-01-02"),
		}
	}
	return out
}

// Create godoc
// @Summary Create an anniversary with its recurrence
// @Tags Anniversaries
// @Accept json
// @Produce json
// @Param coupleId path string true "Couple ID"
// @Param payload body dto.CreateAnniversaryRequest true "Anniversary payload"
// @Success 201 {object} response.Envelope
// @Router /couples/{coupleId}/anniversary [post]
func (h *AnniversaryHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	var req dto.CreateAnniversaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid anniversary payload"))
		return
	}
	items, err := h.service.Create(c.Request.Context(), claims, c.Param("coupleId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, anniversaryResponses(items))
}

// Update godoc
// @Summary Edit one occurrence or its whole series
// @Tags Anniversaries
// @Accept json
// @Produce json
// @Param coupleId path string true "Couple ID"
// @Param anniversaryId path string true "Anniversary ID"
// @Param updateRepeat query bool false "Apply to every occurrence of the series"
// @Param payload body dto.UpdateAnniversaryRequest true "Anniversary payload"
// @Success 204
// @Router /couples/{coupleId}/anniversary/{anniversaryId} [put]
func (h *AnniversaryHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	var req dto.UpdateAnniversaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid anniversary payload"))
		return
	}
	err := h.service.Update(c.Request.Context(), claims, c.Param("coupleId"), c.Param("anniversaryId"), updateRepeat(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete one occurrence or its whole series
// @Tags Anniversaries
// @Produce json
// @Param coupleId path string true "Couple ID"
// @Param anniversaryId path string true "Anniversary ID"
// @Param deleteRepeat query bool false "Delete every occurrence of the series"
// @Success 204
// @Router /couples/{coupleId}/anniversary/{anniversaryId} [delete]
func (h *AnniversaryHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	err := h.service.Delete(c.Request.Context(), claims, c.Param("coupleId"), c.Param("anniversaryId"), deleteRepeat(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// List godoc
// @Summary List anniversaries for an optional year/month/day filter
// @Tags Anniversaries
// @Produce json
// @Param coupleId path string true "Couple ID"
// @Param year query int false "Year filter"
// @Param month query int false "Month filter (1-12)"
// @Param day query int false "Day filter (1-31)"
// @Success 200 {object} response.Envelope
// @Router /couples/{coupleId}/anniversary [get]
func (h *AnniversaryHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	year, month, day, err := calendarFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.service.ListRange(c.Request.Context(), claims, c.Param("coupleId"), year, month, day)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, anniversaryResponses(items), nil)
}

// Dates godoc
// @Summary List deduplicated anniversary dates
// @Tags Anniversaries
// @Produce json
// @Param coupleId path string true "Couple ID"
// @Param year query int false "Year filter"
// @Param month query int false "Month filter (1-12)"
// @Success 200 {object} response.Envelope
// @Router /couples/{coupleId}/anniversary/dates [get]
func (h *AnniversaryHandler) Dates(c *gin.Context) {
	claims := claimsFromContext(c)
	year, month, _, err := calendarFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	dates, err := h.service.Dates(c.Request.Context(), claims, c.Param("coupleId"), year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.AnniversaryDatesResponse{AnniversaryDates: dates}, nil)
}
