package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duetday/duetday-api/internal/models"
	appErrors "github.com/duetday/duetday-api/pkg/errors"
)

type calendarViewerStub struct {
	view []models.CalendarDay
	err  error
}

func (s *calendarViewerStub) DateView(ctx context.Context, claims *models.JWTClaims, memberID string, year, month *int) ([]models.CalendarDay, error) {
	return s.view, s.err
}

func TestExportServiceGenerateCSV(t *testing.T) {
	viewer := &calendarViewerStub{view: []models.CalendarDay{
		{Date: "2024-03-04", Events: []string{models.TagMySchedule, models.TagAnniversary}},
		{Date: "2024-03-11", Events: []string{models.TagDatingSchedule}},
	}}
	svc := NewExportService(viewer, nil, nil, nil)

	year, month := 2024, 3
	result, err := svc.Generate(context.Background(), memberClaims("member-1", nil), "member-1", &year, &month, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "calendar-2024-03.csv", result.Filename)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Contains(t, string(result.Data), "Date,Events")
	assert.Contains(t, string(result.Data), `2024-03-04,"mySchedule, anniversary"`)
	assert.Contains(t, string(result.Data), "2024-03-11,datingSchedule")
}

func TestExportServiceGeneratePDF(t *testing.T) {
	viewer := &calendarViewerStub{view: []models.CalendarDay{
		{Date: "2024-03-04", Events: []string{models.TagMySchedule}},
	}}
	svc := NewExportService(viewer, nil, nil, nil)

	result, err := svc.Generate(context.Background(), memberClaims("member-1", nil), "member-1", nil, nil, FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "calendar.pdf", result.Filename)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.NotEmpty(t, result.Data)
}

func TestExportServiceGeneratePropagatesViewError(t *testing.T) {
	viewer := &calendarViewerStub{err: appErrors.ErrPermissionDenied}
	svc := NewExportService(viewer, nil, nil, nil)

	_, err := svc.Generate(context.Background(), memberClaims("member-1", nil), "member-2", nil, nil, FormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPermissionDenied.Code, appErrors.FromError(err).Code)
}

func TestParseExportFormat(t *testing.T) {
	format, err := ParseExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, format)

	format, err = ParseExportFormat("PDF")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, format)

	_, err = ParseExportFormat("xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
