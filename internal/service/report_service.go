package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/aterrozero-consultancy/internal/model"
	"github.com/nurpe/aterrozero-consultancy/internal/progress"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ReportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

func ParseReportKind(raw string) (model.ReportKind, error) {
	switch model.ReportKind(raw) {
	case model.ReportKindDiagnostic, model.ReportKindFull:
		return model.ReportKind(raw), nil
	default:
		return "", fmt.Errorf("%w: report kind must be diagnostic or full", ErrInvalidInput)
	}
}

// BuildReport collects and rounds everything the renderer prints. The
// diagnostic kind requires the client to have a diagnostic.
func (s *ConsultancyService) BuildReport(kind model.ReportKind, clientID uuid.UUID) (model.ClientReport, error) {
	if _, err := ParseReportKind(string(kind)); err != nil {
		return model.ClientReport{}, err
	}
	client, err := s.repo.GetClient(clientID)
	if err != nil {
		return model.ClientReport{}, mapRepoError(err)
	}

	report := model.ClientReport{
		Kind:        kind,
		Brand:       s.brand,
		Client:      client,
		GeneratedAt: s.now(),
	}

	diag, err := s.CurrentDiagnostic(clientID)
	switch {
	case err == nil:
		rounded := roundDiagnostic(diag)
		report.Diagnostic = &rounded
	case errors.Is(err, ErrNotFound) && kind == model.ReportKindFull:
	default:
		return model.ClientReport{}, err
	}

	if kind == model.ReportKindFull {
		report.Summary = roundSummary(progress.AggregateIndicators(s.repo.ListIndicators(clientID)))
		report.Status = progress.ClientStatus(s.repo.ListChecklists(clientID))
	}
	return report, nil
}

func (s *ConsultancyService) GenerateReport(ctx context.Context, kind model.ReportKind, clientID uuid.UUID) (*ReportResult, error) {
	report, err := s.BuildReport(kind, clientID)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := s.pdf.Render(report)
	if err != nil {
		return nil, fmt.Errorf("render %s report: %w", kind, err)
	}

	s.log.Info().Str("client_id", clientID.String()).Str("kind", string(kind)).Int("bytes", len(content)).Msg("report generated")
	return &ReportResult{
		FileName:    ReportFileName(kind.FilePrefix(), report.Client.CompanyName, "pdf"),
		ContentType: ContentTypePDF,
		Content:     content,
	}, nil
}

// ExportIndicators renders the client's indicator history as a spreadsheet.
func (s *ConsultancyService) ExportIndicators(ctx context.Context, clientID uuid.UUID) (*ReportResult, error) {
	overview, err := s.Indicators(clientID)
	if err != nil {
		return nil, err
	}
	client, err := s.repo.GetClient(clientID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := s.excel.Generate(model.IndicatorReport{
		Client:      client,
		Records:     overview.Records,
		Summary:     roundSummary(overview.Summary),
		GeneratedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("generate indicator spreadsheet: %w", err)
	}

	return &ReportResult{
		FileName:    ReportFileName("indicadores", client.CompanyName, "xlsx"),
		ContentType: ContentTypeXLSX,
		Content:     content,
	}, nil
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// ReportFileName builds "{prefix}_{company}.{ext}" with every whitespace run
// in the company name replaced by an underscore.
func ReportFileName(prefix, companyName, ext string) string {
	return fmt.Sprintf("%s_%s.%s", prefix, whitespaceRun.ReplaceAllString(companyName, "_"), ext)
}

func round(value float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(value).Round(places).Float64()
	return f
}

func roundSummary(s model.IndicatorSummary) model.IndicatorSummary {
	s.TotalDivertedKg = round(s.TotalDivertedKg, 0)
	s.TotalSavings = round(s.TotalSavings, 2)
	s.TotalEmissionsAvoided = round(s.TotalEmissionsAvoided, 1)
	s.AverageWastePerMeal = round(s.AverageWastePerMeal, 1)
	return s
}

func roundDiagnostic(d model.Diagnostic) model.Diagnostic {
	d.CriticalPoints = append([]string{}, d.CriticalPoints...)
	d.MonthlyCollectionCost = round(d.MonthlyCollectionCost, 2)
	d.MonthlyWasteKg = round(d.MonthlyWasteKg, 0)
	d.MonthlyWastedCost = round(d.MonthlyWastedCost, 2)
	return d
}
