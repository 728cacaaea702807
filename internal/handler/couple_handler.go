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

type coupleService interface {
	Connect(ctx context.Context, claims *models.JWTClaims, req dto.ConnectCoupleRequest) (*models.Couple, error)
	Get(ctx context.Context, claims *models.JWTClaims, coupleID string) (*models.Couple, error)
}

// CoupleHandler exposes couple connection endpoints.
type CoupleHandler struct {
	service coupleService
}

// NewCoupleHandler builds a new handler.
func NewCoupleHandler(service coupleService) *CoupleHandler {
	return &CoupleHandler{service: service}
}

func coupleResponse(couple *models.Couple) dto.CoupleResponse {
	return dto.CoupleResponse{
		ID:        couple.ID,
		FirstDate: couple.FirstDate.Format("2006-01-02"),
	}
}

// Connect godoc
// @Summary Connect the acting member with a partner
// @Tags Couples
// @Accept json
// @Produce json
// @Param payload body dto.ConnectCoupleRequest true "Couple payload"
// @Success 201 {object} response.Envelope
// @Router /couples [post]
func (h *CoupleHandler) Connect(c *gin.Context) {
	claims := claimsFromContext(c)
	var req dto.ConnectCoupleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid couple payload"))
		return
	}
	couple, err := h.service.Connect(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, coupleResponse(couple))
}

// Get godoc
// @Summary Get a couple's connection info
// @Tags Couples
// @Produce json
// @Param coupleId path string true "Couple ID"
// @Success 200 {object} response.Envelope
// @Router /couples/{coupleId} [get]
func (h *CoupleHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	couple, err := h.service.Get(c.Request.Context(), claims, c.Param("coupleId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, coupleResponse(couple), nil)
}
