package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duetday/duetday-api/internal/dto"
	"github.com/duetday/duetday-api/internal/models"
	appErrors "github.com/duetday/duetday-api/pkg/errors"
)

type anniversaryServiceMock struct {
	createResp []models.Anniversary
	createErr  error
	updateErr  error
	deleteErr  error
	listResp   []models.Anniversary
	listErr    error
	datesResp  []string
	datesErr   error

	createCalled bool
	deleteCalled bool
	datesCalled  bool
	lastCoupleID string
	lastSeries   bool
}

func (m *anniversaryServiceMock) Create(ctx context.Context, claims *models.JWTClaims, coupleID string, req dto.CreateAnniversaryRequest) ([]models.Anniversary, error) {
	m.createCalled = true
	m.lastCoupleID = coupleID
	return m.createResp, m.createErr
}

func (m *anniversaryServiceMock) Update(ctx context.Context, claims *models.JWTClaims, coupleID, anniversaryID string, applyToSeries bool, req dto.UpdateAnniversaryRequest) error {
	m.lastCoupleID = coupleID
	m.lastSeries = applyToSeries
	return m.updateErr
}

func (m *anniversaryServiceMock) Delete(ctx context.Context, claims *models.JWTClaims, coupleID, anniversaryID string, applyToSeries bool) error {
	m.deleteCalled = true
	m.lastSeries = applyToSeries
	return m.deleteErr
}

func (m *anniversaryServiceMock) ListRange(ctx context.Context, claims *models.JWTClaims, coupleID string, year, month, day *int) ([]models.Anniversary, error) {
	m.lastCoupleID = coupleID
	return m.listResp, m.listErr
}

func (m *anniversaryServiceMock) Dates(ctx context.Context, claims *models.JWTClaims, coupleID string, year, month *int) ([]string, error) {
	m.datesCalled = true
	m.lastCoupleID = coupleID
	return m.datesResp, m.datesErr
}

func TestAnniversaryHandlerCreate(t *testing.T) {
	mockSvc := &anniversaryServiceMock{
		createResp: []models.Anniversary{{ID: "ann-1", Title: "The day we met"}},
	}
	handler := NewAnniversaryHandler(mockSvc)

	payload, _ := json.Marshal(dto.CreateAnniversaryRequest{
		Title:      "The day we met",
		RepeatRule: "Y",
		Date:       "2024-03-04",
	})
	c, w := testContext(t, http.MethodPost, "/couples/couple-1/anniversary", payload)
	c.Params = gin.Params{{Key: "coupleId", Value: "couple-1"}}

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, mockSvc.createCalled)
	assert.Equal(t, "couple-1", mockSvc.lastCoupleID)
}

func TestAnniversaryHandlerCreateServiceError(t *testing.T) {
	mockSvc := &anniversaryServiceMock{
		createErr: appErrors.Clone(appErrors.ErrValidation, "anniversaries repeat NONE or YEAR only"),
	}
	handler := NewAnniversaryHandler(mockSvc)

	payload, _ := json.Marshal(dto.CreateAnniversaryRequest{
		Title:      "Nope",
		RepeatRule: "W",
		Date:       "2024-03-04",
	})
	c, w := testContext(t, http.MethodPost, "/couples/couple-1/anniversary", payload)
	c.Params = gin.Params{{Key: "coupleId", Value: "couple-1"}}

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnniversaryHandlerDeleteSeries(t *testing.T) {
	mockSvc := &anniversaryServiceMock{}
	handler := NewAnniversaryHandler(mockSvc)

	c, _ := testContext(t, http.MethodDelete, "/couples/couple-1/anniversary/ann-1?deleteRepeat=true", nil)
	c.Params = gin.Params{{Key: "coupleId", Value: "couple-1"}, {Key: "anniversaryId", Value: "ann-1"}}

	handler.Delete(c)
	require.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.True(t, mockSvc.deleteCalled)
	assert.True(t, mockSvc.lastSeries)
}

func TestAnniversaryHandlerDates(t *testing.T) {
	mockSvc := &anniversaryServiceMock{
		datesResp: []string{"2024-03-04", "2024-06-12"},
	}
	handler := NewAnniversaryHandler(mockSvc)

	c, w := testContext(t, http.MethodGet, "/couples/couple-1/anniversary/dates?year=2024", nil)
	c.Params = gin.Params{{Key: "coupleId", Value: "couple-1"}}

	handler.Dates(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.datesCalled)

	var body struct {
		Data dto.AnniversaryDatesResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"2024-03-04", "2024-06-12"}, body.Data.AnniversaryDates)
}

func TestAnniversaryHandlerDatesForbidden(t *testing.T) {
	handler := NewAnniversaryHandler(&anniversaryServiceMock{datesErr: appErrors.ErrPermissionDenied})

	c, w := testContext(t, http.MethodGet, "/couples/couple-2/anniversary/dates", nil)
	c.Params = gin.Params{{Key: "coupleId", Value: "couple-2"}}

	handler.Dates(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}
