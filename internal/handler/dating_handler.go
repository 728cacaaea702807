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

type datingService interface {
	Create(ctx context.Context, claims *models.JWTClaims, coupleID string, req dto.CreateDatingRequest) ([]models.Dating, error)
	Update(ctx context.Context, claims *models.JWTClaims, coupleID, datingID string, applyToSeries bool, req dto.UpdateDatingRequest) error
	Delete(ctx context.Context, claims *models.JWTClaims, coupleID, datingID string, applyToSeries bool) error
	ListRange(ctx context.Context, claims *models.JWTClaims, coupleID string, year, month, day *int) ([]models.Dating, error)
}

// DatingHandler exposes shared dating event endpoints.
type DatingHandler struct {
	service datingService
}

// NewDatingHandler builds a new handler.
func NewDatingHandler(service datingService) *DatingHandler {
	return &DatingHandler{service: service}
}

func datingResponses(items []models.Dating) []dto.DatingResponse {
	out := make([]dto.DatingResponse, len(items))
	for i, item := range items {
		out[i] = dto.DatingResponse{
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
// @Summary Create a dating event with its recurrence
// @Tags Datings
// @Accept json
// @Produce json
// @Param coupleId path string true "Couple ID"
// @Param payload body dto.CreateDatingRequest true "Dating payload"
// @Success 200 {object} response.Envelope
// @Router /couples/{coupleId}/datings [post]
func (h *DatingHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	var req dto.CreateDatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid dating payload"))
		return
	}
	items, err := h.service.Create(c.Request.Context(), claims, c.Param("coupleId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, datingResponses(items), nil)
}

// Update godoc
// @Summary Edit one occurrence or its whole series
// @Tags Datings
// @Accept json
// @Produce json
// @Param coupleId path string true "Couple ID"
// @Param datingId path string true "Dating ID"
// @Param updateRepeat query bool false "Apply to every occurrence of the series"
// @Param payload body dto.UpdateDatingRequest true "Dating payload"
// @Success 204
// @Router /couples/{coupleId}/datings/{datingId} [put]
func (h *DatingHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	var req dto.UpdateDatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid dating payload"))
		return
	}
	err := h.service.Update(c.Request.Context(), claims, c.Param("coupleId"), c.Param("datingId"), updateRepeat(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete one occurrence or its whole series
// @Tags Datings
// @Produce json
// @Param coupleId path string true "Couple ID"
// @Param datingId path string true "Dating ID"
// @Param deleteRepeat query bool false "Delete every occurrence of the series"
// @Success 204
// @Router /couples/{coupleId}/datings/{datingId} [delete]
func (h *DatingHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	err := h.service.Delete(c.Request.Context(), claims, c.Param("coupleId"), c.Param("datingId"), deleteRepeat(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// List godoc
// @Summary List dating events for an optional year/month/day filter
// @Tags Datings
// @Produce json
// @Param coupleId path string true "Couple ID"
// @Param year query int false "Year filter"
// @Param month query int false "Month filter (1-12)"
// @Param day query int false "Day filter (1-31)"
// @Success 200 {object} response.Envelope
// @Router /couples/{coupleId}/datings [get]
func (h *DatingHandler) List(c *gin.Context) {
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
	response.JSON(c, http.StatusOK, datingResponses(items), nil)
}
