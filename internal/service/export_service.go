package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/duetday/duetday-api/internal/models"
	appErrors "github.com/duetday/duetday-api/pkg/errors"
	"github.com/duetday/duetday-api/pkg/export"
)

type calendarViewer interface {
	DateView(ctx context.Context, claims *models.JWTClaims, memberID string, year, month *int) ([]models.CalendarDay, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFormat selects the rendered output type.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ParseExportFormat validates a requested export format.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch strings.ToLower(raw) {
	case "csv", "":
		return FormatCSV, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

// ExportResult carries a rendered calendar file.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders a member's merged calendar view as a downloadable
// file.
type ExportService struct {
	calendar calendarViewer
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(calendar calendarViewer, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{calendar: calendar, csv: csv, pdf: pdf, logger: logger}
}

// Generate renders the member's calendar for the optional year/month filter.
func (s *ExportService) Generate(ctx context.Context, claims *models.JWTClaims, memberID string, year, month *int, format ExportFormat) (*ExportResult, error) {
	view, err := s.calendar.DateView(ctx, claims, memberID, year, month)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{
		Headers: []string{"Date", "Events"},
		Rows:    make([]map[string]string, len(view)),
	}
	for i, day := range view {
		data.Rows[i] = map[string]string{
			"Date":   day.Date,
			"Events": strings.Join(day.Events, ", "),
		}
	}

	base := "calendar"
	if year != nil {
		base = fmt.Sprintf("%s-%04d", base, *year)
		if month != nil {
			base = fmt.Sprintf("%s-%02d", base, *month)
		}
	}

	switch format {
	case FormatPDF:
		payload, err := s.pdf.Render(data, "DuetDay Calendar")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{Filename: base + ".pdf", ContentType: "application/pdf", Data: payload}, nil
	default:
		payload, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{Filename: base + ".csv", ContentType: "text/csv", Data: payload}, nil
	}
}
