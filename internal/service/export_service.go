package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/studiosync/billing-api/internal/models"
	appErrors "github.com/studiosync/billing-api/pkg/errors"
	"github.com/studiosync/billing-api/pkg/export"
)

// Statement export formats.
const (
	StatementFormatCSV = "csv"
	StatementFormatPDF = "pdf"
)

// ChargeReader fetches posted charges for export.
type ChargeReader interface {
	GetCharge(ctx context.Context, id string) (*models.ChargeDetail, error)
}

// ExportService renders posted charges as downloadable statements.
type ExportService struct {
	charges ChargeReader
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
}

// NewExportService constructs an export service.
func NewExportService(charges ChargeReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		charges: charges,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
	}
}

// Statement renders one charge as a statement document. It returns the
// payload, content type and suggested filename.
func (s *ExportService) Statement(ctx context.Context, chargeID, format string) ([]byte, string, string, error) {
	detail, err := s.charges.GetCharge(ctx, chargeID)
	if err != nil {
		return nil, "", "", err
	}

	data := statementDataset(detail)
	filename := fmt.Sprintf("statement-%s-%04d-%02d", detail.FamilyID, detail.Year, detail.Month)

	switch strings.ToLower(format) {
	case StatementFormatPDF, "":
		payload, err := s.pdf.Render(data, "Tuition Statement")
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render statement")
		}
		return payload, "application/pdf", filename + ".pdf", nil
	case StatementFormatCSV:
		payload, err := s.csv.Render(data)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render statement")
		}
		return payload, "text/csv", filename + ".csv", nil
	default:
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported statement format %q", format))
	}
}

func statementDataset(detail *models.ChargeDetail) export.Dataset {
	rows := make([]map[string]string, 0, len(detail.LineItems))
	for _, item := range detail.LineItems {
		student := ""
		if item.StudentName != nil {
			student = *item.StudentName
		}
		rows = append(rows, map[string]string{
			"Student":     student,
			"Type":        item.Kind,
			"Description": item.Description,
			"Amount":      fmt.Sprintf("%.2f", item.Amount),
		})
	}

	return export.Dataset{
		Headers: []string{"Student", "Type", "Description", "Amount"},
		Rows:    rows,
		Meta: []string{
			fmt.Sprintf("Family: %s", detail.FamilyName),
			fmt.Sprintf("Period: %04d-%02d", detail.Year, detail.Month),
			fmt.Sprintf("Status: %s", detail.Status),
		},
		Footer: map[string]string{
			"Description": "Total Due",
			"Amount":      fmt.Sprintf("%.2f", detail.FinalTotal),
		},
	}
}
