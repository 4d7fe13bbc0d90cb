package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/aterrozero-consultancy/internal/config"
	"github.com/nurpe/aterrozero-consultancy/internal/model"
	"github.com/nurpe/aterrozero-consultancy/internal/progress"
	"github.com/nurpe/aterrozero-consultancy/internal/repository"
	"github.com/nurpe/aterrozero-consultancy/internal/store"
)

type fakePDF struct {
	last model.ClientReport
	err  error
}

func (f *fakePDF) Render(report model.ClientReport) ([]byte, error) {
	f.last = report
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-fake"), nil
}

type fakeExcel struct {
	last model.IndicatorReport
}

func (f *fakeExcel) Generate(report model.IndicatorReport) ([]byte, error) {
	f.last = report
	return []byte("xlsx"), nil
}

type fixture struct {
	svc   *ConsultancyService
	repo  *repository.Workspace
	pdf   *fakePDF
	excel *fakeExcel
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, err := repository.Open(context.Background(), store.NewMemoryStore(), zerolog.Nop())
	require.NoError(t, err)

	f := &fixture{
		repo:  repo,
		pdf:   &fakePDF{},
		excel: &fakeExcel{},
		clock: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	cfg := &config.Config{Report: config.ReportConfig{Brand: "Auri & Eco Consultoria"}}
	f.svc = NewConsultancyService(repo, f.pdf, f.excel, cfg, zerolog.Nop())
	f.svc.now = func() time.Time {
		f.clock = f.clock.Add(time.Minute)
		return f.clock
	}
	return f
}

func clientInput(name string) ClientInput {
	return ClientInput{
		CompanyName: name,
		TaxID:       "12.345.678/0001-90",
		Segment:     model.SegmentRestaurant,
		Address:     "Rua das Flores, 10",
		Contact:     model.Contact{Name: "Ana Souza", Email: "ana@example.com"},
		MealsPerDay: 300,
		ServiceType: model.ServiceTypeBuffet,
	}
}

func (f *fixture) register(t *testing.T, name string) model.Client {
	t.Helper()
	c, err := f.svc.RegisterClient(context.Background(), clientInput(name))
	require.NoError(t, err)
	return c
}

func TestRegisterClient_SelectsIt(t *testing.T) {
	f := newFixture(t)

	c := f.register(t, "  Sabor & Arte ")

	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.Equal(t, "Sabor & Arte", c.CompanyName)
	assert.False(t, c.CreatedAt.IsZero())
	current, err := f.svc.CurrentClient()
	require.NoError(t, err)
	assert.Equal(t, c, current)
}

func TestRegisterClient_InvalidInput(t *testing.T) {
	f := newFixture(t)

	in := clientInput("")
	_, err := f.svc.RegisterClient(context.Background(), in)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	in = clientInput("X")
	in.Segment = "bar"
	_, err = f.svc.RegisterClient(context.Background(), in)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Empty(t, f.svc.ListClients())
}

func TestUpdateClient(t *testing.T) {
	f := newFixture(t)
	c := f.register(t, "Sabor & Arte")

	in := clientInput("Sabor & Arte Ltda")
	in.Segment = model.SegmentBoth
	updated, err := f.svc.UpdateClient(context.Background(), c.ID, in)

	require.NoError(t, err)
	assert.Equal(t, c.ID, updated.ID)
	assert.Equal(t, c.CreatedAt, updated.CreatedAt)
	assert.Equal(t, model.SegmentBoth, updated.Segment)
	got, err := f.svc.GetClient(c.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	_, err = f.svc.UpdateClient(context.Background(), uuid.New(), in)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSelection(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "A")
	f.register(t, "B")
	ctx := context.Background()

	selected, err := f.svc.SelectClient(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, selected.ID)

	require.NoError(t, f.svc.ClearSelection(ctx))
	_, err = f.svc.CurrentClient()
	assert.True(t, errors.Is(err, ErrNoCurrentClient))

	_, err = f.svc.SelectClient(ctx, uuid.New())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSubmitDiagnostic(t *testing.T) {
	f := newFixture(t)
	c := f.register(t, "A")

	diag, err := f.svc.SubmitDiagnostic(context.Background(), c.ID, DiagnosticInput{
		OperationModel:        "restaurante_comercial",
		DailyWasteKg:          50,
		DisposalMethod:        "coleta_comum",
		MonthlyCollectionCost: 500,
		CriticalPoints:        []string{" Sobras do buffet ", "", "Pré-preparo"},
	})

	require.NoError(t, err)
	assert.Equal(t, 1500.0, diag.MonthlyWasteKg)
	assert.Equal(t, 8000.0, diag.MonthlyWastedCost)
	assert.Equal(t, []string{"Sobras do buffet", "Pré-preparo"}, diag.CriticalPoints)

	_, err = f.svc.SubmitDiagnostic(context.Background(), c.ID, DiagnosticInput{DailyWasteKg: -1})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = f.svc.SubmitDiagnostic(context.Background(), uuid.New(), DiagnosticInput{})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCurrentDiagnostic_LatestWins(t *testing.T) {
	f := newFixture(t)
	c := f.register(t, "A")
	ctx := context.Background()

	_, err := f.svc.CurrentDiagnostic(c.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = f.svc.SubmitDiagnostic(ctx, c.ID, DiagnosticInput{DailyWasteKg: 10})
	require.NoError(t, err)
	second, err := f.svc.SubmitDiagnostic(ctx, c.ID, DiagnosticInput{DailyWasteKg: 20})
	require.NoError(t, err)

	current, err := f.svc.CurrentDiagnostic(c.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, current.ID)

	history, err := f.svc.DiagnosticHistory(c.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestChecklists_SeedOnceSorted(t *testing.T) {
	f := newFixture(t)
	c := f.register(t, "A")
	ctx := context.Background()

	first, err := f.svc.Checklists(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, first, model.ProgramStages)
	for i, v := range first {
		assert.Equal(t, i+1, v.Stage)
		assert.Equal(t, 0, v.Percent)
	}

	second, err := f.svc.Checklists(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, f.repo.ListChecklists(c.ID), model.ProgramStages)

	_, err = f.svc.Checklists(ctx, uuid.New())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSaveChecklistStage(t *testing.T) {
	f := newFixture(t)
	c := f.register(t, "A")
	ctx := context.Background()

	stages, err := f.svc.Checklists(ctx, c.ID)
	require.NoError(t, err)
	stage1 := stages[0]

	notes := "Balança instalada"
	view, err := f.svc.SaveChecklistStage(ctx, c.ID, 1, StageUpdate{
		Items: map[uuid.UUID]bool{stage1.Items[0].ID: true},
		Notes: &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, stage1.ID, view.ID)
	assert.Equal(t, 25, view.Percent)
	assert.Equal(t, "Balança instalada", view.Notes)
	assert.Nil(t, view.CompletedAt)

	all := map[uuid.UUID]bool{}
	for _, item := range stage1.Items {
		all[item.ID] = true
	}
	view, err = f.svc.SaveChecklistStage(ctx, c.ID, 1, StageUpdate{Items: all})
	require.NoError(t, err)
	assert.Equal(t, 100, view.Percent)
	require.NotNil(t, view.CompletedAt)
	assert.Equal(t, "Balança instalada", view.Notes)

	view, err = f.svc.SaveChecklistStage(ctx, c.ID, 1, StageUpdate{Items: map[uuid.UUID]bool{stage1.Items[1].ID: false}})
	require.NoError(t, err)
	assert.Nil(t, view.CompletedAt)
	assert.Equal(t, 75, view.Percent)

	assert.Len(t, f.repo.ListChecklists(c.ID), model.ProgramStages)
}

func TestSaveChecklistStage_Errors(t *testing.T) {
	f := newFixture(t)
	c := f.register(t, "A")
	ctx := context.Background()

	_, err := f.svc.SaveChecklistStage(ctx, c.ID, 7, StageUpdate{})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = f.svc.SaveChecklistStage(ctx, c.ID, 2, StageUpdate{Items: map[uuid.UUID]bool{uuid.New(): true}})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = f.svc.SaveChecklistStage(ctx, uuid.New(), 2, StageUpdate{})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSaveChecklistStage_SeedsProgramBeforeFirstView(t *testing.T) {
	f := newFixture(t)
	c := f.register(t, "A")

	ctx := context.Background()
	notes := "começar pelo buffet"

	view, err := f.svc.SaveChecklistStage(ctx, c.ID, 4, StageUpdate{Notes: &notes})

	require.NoError(t, err)
	assert.Equal(t, 4, view.Stage)
	assert.Equal(t, "Mês 4 — Serviço e Buffet", view.Title)
	assert.Len(t, f.repo.ListChecklists(c.ID), model.ProgramStages)

	stages, err := f.svc.Checklists(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, stages, model.ProgramStages)
	assert.Equal(t, view.ID, stages[3].ID)
	assert.Equal(t, notes, stages[3].Notes)

	status, err := f.svc.ClientStatus(c.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, status.StagesCompleted)
}

func completeStages(t *testing.T, f *fixture, clientID uuid.UUID, n int) {
	t.Helper()
	ctx := context.Background()
	stages, err := f.svc.Checklists(ctx, clientID)
	require.NoError(t, err)
	for _, s := range stages[:n] {
		all := map[uuid.UUID]bool{}
		for _, item := range s.Items {
			all[item.ID] = true
		}
		_, err := f.svc.SaveChecklistStage(ctx, clientID, s.Stage, StageUpdate{Items: all})
		require.NoError(t, err)
	}
}

func TestClientStatus(t *testing.T) {
	f := newFixture(t)
	c := f.register(t, "A")

	status, err := f.svc.ClientStatus(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Not started", status.Label)

	completeStages(t, f, c.ID, 2)
	status, err = f.svc.ClientStatus(c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProgramStatus{StagesCompleted: 2, Label: "Stage 3"}, status)
}

func TestRecordIndicator(t *testing.T) {
	f := newFixture(t)
	c := f.register(t, "A")
	ctx := context.Background()

	for _, in := range []IndicatorInput{
		{Month: 3, Year: 2025, WastePerMealGrams: 90, DivertedKg: 200, Savings: 1000, EmissionsAvoidedKg: 30},
		{Month: 12, Year: 2024, WastePerMealGrams: 110, DivertedKg: 100, Savings: 500.25, EmissionsAvoidedKg: 12.5},
	} {
		_, err := f.svc.RecordIndicator(ctx, c.ID, in)
		require.NoError(t, err)
	}

	overview, err := f.svc.Indicators(c.ID)
	require.NoError(t, err)
	require.Len(t, overview.Records, 2)
	assert.Equal(t, 2024, overview.Records[0].Year)
	assert.Equal(t, []string{"Dez/2024", "Mar/2025"}, overview.Series.Labels)
	assert.InDelta(t, 300, overview.Summary.TotalDivertedKg, 1e-9)
	assert.InDelta(t, 100, overview.Summary.AverageWastePerMeal, 1e-9)

	_, err = f.svc.RecordIndicator(ctx, c.ID, IndicatorInput{Month: 0, Year: 2025})
	assert.True(t, errors.Is(err, ErrInvalidInput))
	_, err = f.svc.RecordIndicator(ctx, c.ID, IndicatorInput{Month: 1, Year: 2025, Savings: -3})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestIndicators_EmptyClient(t *testing.T) {
	f := newFixture(t)
	c := f.register(t, "A")

	overview, err := f.svc.Indicators(c.ID)

	require.NoError(t, err)
	assert.NotNil(t, overview.Records)
	assert.Empty(t, overview.Records)
	assert.Equal(t, model.IndicatorSummary{}, overview.Summary)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "Sabor & Arte")
	b := f.register(t, "Hotel Mar Azul")
	in := clientInput("Cantina Central")
	in.TaxID = "99.888.777/0001-11"
	cc, err := f.svc.RegisterClient(context.Background(), in)
	require.NoError(t, err)

	completeStages(t, f, a.ID, 6)
	completeStages(t, f, b.ID, 1)
	_, err = f.svc.SubmitDiagnostic(context.Background(), b.ID, DiagnosticInput{DailyWasteKg: 5})
	require.NoError(t, err)

	all, err := f.svc.Dashboard(DashboardQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Total)
	assert.Equal(t, 1, all.NotStarted)
	assert.Equal(t, 1, all.InProgress)
	assert.Equal(t, 1, all.Completed)
	require.Len(t, all.Rows, 3)
	assert.Equal(t, 100, all.Rows[0].ProgramPercent)
	assert.Equal(t, "Completed", all.Rows[0].Status.Label)
	assert.Equal(t, 17, all.Rows[1].ProgramPercent)
	assert.True(t, all.Rows[1].HasDiagnostic)
	require.NotNil(t, all.CurrentClientID)
	assert.Equal(t, cc.ID, *all.CurrentClientID)

	inProgress, err := f.svc.Dashboard(DashboardQuery{Status: progress.FilterInProgress})
	require.NoError(t, err)
	require.Len(t, inProgress.Rows, 1)
	assert.Equal(t, b.ID, inProgress.Rows[0].Client.ID)
	assert.Equal(t, 3, inProgress.Total)

	byName, err := f.svc.Dashboard(DashboardQuery{Search: "MAR azul"})
	require.NoError(t, err)
	require.Len(t, byName.Rows, 1)
	assert.Equal(t, b.ID, byName.Rows[0].Client.ID)

	byTaxID, err := f.svc.Dashboard(DashboardQuery{Search: "99.888"})
	require.NoError(t, err)
	require.Len(t, byTaxID.Rows, 1)
	assert.Equal(t, cc.ID, byTaxID.Rows[0].Client.ID)

	_, err = f.svc.Dashboard(DashboardQuery{Status: "paused"})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestGenerateReport_Full(t *testing.T) {
	f := newFixture(t)
	c := f.register(t, "Sabor  &\tArte")
	ctx := context.Background()

	_, err := f.svc.SubmitDiagnostic(ctx, c.ID, DiagnosticInput{DailyWasteKg: 12.345, MonthlyCollectionCost: 100.456})
	require.NoError(t, err)
	_, err = f.svc.RecordIndicator(ctx, c.ID, IndicatorInput{Month: 1, Year: 2025, DivertedKg: 100.6, Savings: 10.005, EmissionsAvoidedKg: 3.2})
	require.NoError(t, err)
	_, err = f.svc.RecordIndicator(ctx, c.ID, IndicatorInput{Month: 2, Year: 2025, DivertedKg: 50.2, Savings: 5.111, EmissionsAvoidedKg: 1.11})
	require.NoError(t, err)
	completeStages(t, f, c.ID, 2)

	result, err := f.svc.GenerateReport(ctx, model.ReportKindFull, c.ID)

	require.NoError(t, err)
	assert.Equal(t, "relatorio_Sabor_&_Arte.pdf", result.FileName)
	assert.Equal(t, ContentTypePDF, result.ContentType)
	assert.Equal(t, []byte("%PDF-fake"), result.Content)

	report := f.pdf.last
	assert.Equal(t, model.ReportKindFull, report.Kind)
	assert.Equal(t, "Auri & Eco Consultoria", report.Brand)
	require.NotNil(t, report.Diagnostic)
	assert.Equal(t, 370.0, report.Diagnostic.MonthlyWasteKg)
	assert.Equal(t, 100.46, report.Diagnostic.MonthlyCollectionCost)
	assert.Equal(t, 151.0, report.Summary.TotalDivertedKg)
	assert.Equal(t, 15.12, report.Summary.TotalSavings)
	assert.Equal(t, 4.3, report.Summary.TotalEmissionsAvoided)
	assert.Equal(t, model.ProgramStatus{StagesCompleted: 2, Label: "Stage 3"}, report.Status)
}

func TestGenerateReport_DiagnosticKind(t *testing.T) {
	f := newFixture(t)
	c := f.register(t, "Hotel Mar Azul")
	ctx := context.Background()

	_, err := f.svc.GenerateReport(ctx, model.ReportKindDiagnostic, c.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = f.svc.SubmitDiagnostic(ctx, c.ID, DiagnosticInput{DailyWasteKg: 50, MonthlyCollectionCost: 500})
	require.NoError(t, err)

	result, err := f.svc.GenerateReport(ctx, model.ReportKindDiagnostic, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "diagnostico_Hotel_Mar_Azul.pdf", result.FileName)
	assert.Equal(t, 8000.0, f.pdf.last.Diagnostic.MonthlyWastedCost)
}

func TestGenerateReport_FullWithoutDiagnostic(t *testing.T) {
	f := newFixture(t)
	c := f.register(t, "A")

	_, err := f.svc.GenerateReport(context.Background(), model.ReportKindFull, c.ID)

	require.NoError(t, err)
	assert.Nil(t, f.pdf.last.Diagnostic)
	assert.Equal(t, "Not started", f.pdf.last.Status.Label)
}

func TestGenerateReport_RenderError(t *testing.T) {
	f := newFixture(t)
	c := f.register(t, "A")
	f.pdf.err = errors.New("font missing")

	_, err := f.svc.GenerateReport(context.Background(), model.ReportKindFull, c.ID)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "font missing")
}

func TestExportIndicators(t *testing.T) {
	f := newFixture(t)
	c := f.register(t, "Cantina Central")
	_, err := f.svc.RecordIndicator(context.Background(), c.ID, IndicatorInput{Month: 5, Year: 2025, Savings: 10.555})
	require.NoError(t, err)

	result, err := f.svc.ExportIndicators(context.Background(), c.ID)

	require.NoError(t, err)
	assert.Equal(t, "indicadores_Cantina_Central.xlsx", result.FileName)
	assert.Equal(t, ContentTypeXLSX, result.ContentType)
	assert.Len(t, f.excel.last.Records, 1)
	assert.Equal(t, 10.56, f.excel.last.Summary.TotalSavings)
}

func TestParseReportKind(t *testing.T) {
	kind, err := ParseReportKind("full")
	require.NoError(t, err)
	assert.Equal(t, model.ReportKindFull, kind)

	_, err = ParseReportKind("monthly")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestReportFileName(t *testing.T) {
	assert.Equal(t, "relatorio_Sabor_&_Arte.pdf", ReportFileName("relatorio", "Sabor & Arte", "pdf"))
	assert.Equal(t, "diagnostico__Bistro_.pdf", ReportFileName("diagnostico", " Bistro ", "pdf"))
}
