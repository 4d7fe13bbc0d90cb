package pdf

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/aterrozero-consultancy/internal/model"
)

func sampleReport(kind model.ReportKind) model.ClientReport {
	clientID := uuid.New()
	return model.ClientReport{
		Kind:  kind,
		Brand: "Auri & Eco Consultoria",
		Client: model.Client{
			ID:          clientID,
			CompanyName: "Sabor & Arte",
			TaxID:       "12.345.678/0001-90",
			Segment:     model.SegmentRestaurant,
			Contact:     model.Contact{Name: "Ana Souza", Email: "ana@example.com"},
			Operation:   model.OperationProfile{MealsPerDay: 300, ServiceType: model.ServiceTypeBuffet},
		},
		Diagnostic: &model.Diagnostic{
			ID:                    uuid.New(),
			ClientID:              clientID,
			DailyWasteKg:          50,
			MonthlyCollectionCost: 500,
			CriticalPoints:        []string{"Sobras do buffet", "Pré-preparo"},
			MonthlyWasteKg:        1500,
			MonthlyWastedCost:     8000,
			PerformedAt:           time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC),
		},
		Summary: model.IndicatorSummary{
			Records:               2,
			TotalDivertedKg:       300,
			TotalSavings:          1500.5,
			TotalEmissionsAvoided: 42.5,
			AverageWastePerMeal:   100,
		},
		Status:      model.ProgramStatus{StagesCompleted: 2, Label: "Stage 3"},
		GeneratedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRender_Full(t *testing.T) {
	out, err := NewGenerator().Render(sampleReport(model.ReportKindFull))

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRender_FullWithoutDiagnosticOrIndicators(t *testing.T) {
	report := sampleReport(model.ReportKindFull)
	report.Diagnostic = nil
	report.Summary = model.IndicatorSummary{}

	out, err := NewGenerator().Render(report)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRender_Diagnostic(t *testing.T) {
	out, err := NewGenerator().Render(sampleReport(model.ReportKindDiagnostic))

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRender_DiagnosticRequiresDiagnostic(t *testing.T) {
	report := sampleReport(model.ReportKindDiagnostic)
	report.Diagnostic = nil

	_, err := NewGenerator().Render(report)

	assert.True(t, errors.Is(err, ErrMissingDiagnostic))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1.234,57", formatAmount(1234.567, 2))
	assert.Equal(t, "1.500", formatAmount(1500, 0))
	assert.Equal(t, "999,0", formatAmount(999, 1))
	assert.Equal(t, "-12.000,00", formatAmount(-12000, 2))
	assert.Equal(t, "R$ 8.000,00", formatCurrency(8000))
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Não iniciado", statusLabel(model.ProgramStatus{}))
	assert.Equal(t, "Em andamento (etapa 3)", statusLabel(model.ProgramStatus{StagesCompleted: 2}))
	assert.Equal(t, "Concluído", statusLabel(model.ProgramStatus{StagesCompleted: 6}))
}

func TestCP1252Text(t *testing.T) {
	tr := cp1252Text(gofpdf.New("P", "mm", "A4", "").UnicodeTranslatorFromDescriptor(""))

	assert.Equal(t, "Registro de CO2 evitado", tr("Registro de CO₂ evitado"))
	assert.Equal(t, "Separa\xe7\xe3o", tr("Separação"))
}

func TestRender_SubscriptText(t *testing.T) {
	report := sampleReport(model.ReportKindDiagnostic)
	report.Diagnostic.CriticalPoints = []string{"Registro de CO₂ evitado"}

	out, err := NewGenerator().Render(report)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
