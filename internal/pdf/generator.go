package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/aterrozero-consultancy/internal/model"
)

const fontName = "Helvetica"

var ErrMissingDiagnostic = errors.New("diagnostic report requires a diagnostic")

// cp1252 has no subscript digits.
var subscripts = strings.NewReplacer("₂", "2")

func cp1252Text(translate func(string) string) func(string) string {
	return func(s string) string {
		return translate(subscripts.Replace(s))
	}
}

// Generator renders client reports with the core PDF fonts. Text is
// translated to cp1252, which covers Portuguese.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Render(report model.ClientReport) ([]byte, error) {
	if report.Kind == model.ReportKindDiagnostic && report.Diagnostic == nil {
		return nil, ErrMissingDiagnostic
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	tr := cp1252Text(pdf.UnicodeTranslatorFromDescriptor(""))

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontName, "I", 8)
		pdf.SetTextColor(120, 120, 120)
		footer := fmt.Sprintf("Gerado em %s  |  %s  |  página %d", formatDateTime(report.GeneratedAt), report.Brand, pdf.PageNo())
		pdf.CellFormat(0, 5, tr(footer), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(fontName, "B", 16)
	pdf.SetTextColor(46, 125, 50)
	pdf.CellFormat(0, 10, tr(report.Brand), "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont(fontName, "", 12)
	pdf.CellFormat(0, 7, tr(reportTitle(report.Kind)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	addClientBlock(pdf, tr, report.Client)

	if report.Diagnostic != nil {
		addDiagnosticBlock(pdf, tr, *report.Diagnostic, report.Kind == model.ReportKindDiagnostic)
	} else {
		addSection(pdf, tr, "Diagnóstico")
		pdf.SetFont(fontName, "", 10)
		pdf.MultiCell(0, 5, tr("Diagnóstico ainda não realizado."), "", "L", false)
		pdf.Ln(2)
	}

	if report.Kind == model.ReportKindFull {
		addResultsBlock(pdf, tr, report.Summary)
		addStatusBlock(pdf, tr, report.Status)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func reportTitle(kind model.ReportKind) string {
	if kind == model.ReportKindDiagnostic {
		return "Relatório de Diagnóstico Inicial"
	}
	return "Relatório do Programa Aterro Zero"
}

func addSection(pdf *gofpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(0, 8, tr(title), "B", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func addClientBlock(pdf *gofpdf.Fpdf, tr func(string) string, c model.Client) {
	addSection(pdf, tr, "Dados do Cliente")
	rows := [][2]string{
		{"Empresa", c.CompanyName},
		{"CNPJ", safeValue(c.TaxID)},
		{"Segmento", segmentLabel(c.Segment)},
		{"Endereço", safeValue(c.Address)},
		{"Responsável", safeValue(c.Contact.Name)},
		{"Contato", safeValue(joinNonEmpty(" / ", c.Contact.Email, c.Contact.Phone))},
		{"Refeições por dia", fmt.Sprintf("%d", c.Operation.MealsPerDay)},
		{"Tipo de serviço", serviceTypeLabel(c.Operation.ServiceType)},
	}
	drawPairs(pdf, tr, rows)
}

func addDiagnosticBlock(pdf *gofpdf.Fpdf, tr func(string) string, d model.Diagnostic, detailed bool) {
	addSection(pdf, tr, "Diagnóstico")
	rows := [][2]string{
		{"Data", formatDate(d.PerformedAt)},
		{"Modelo de operação", safeValue(d.OperationModel)},
		{"Volume diário", formatAmount(d.DailyWasteKg, 1) + " kg"},
		{"Destinação atual", safeValue(d.DisposalMethod)},
		{"Custo mensal de coleta", formatCurrency(d.MonthlyCollectionCost)},
		{"Volume mensal estimado", formatAmount(d.MonthlyWasteKg, 0) + " kg"},
		{"Custo mensal estimado", formatCurrency(d.MonthlyWastedCost)},
	}
	drawPairs(pdf, tr, rows)

	if !detailed {
		return
	}
	pdf.SetFont(fontName, "B", 10)
	pdf.CellFormat(0, 6, tr("Pontos críticos"), "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	if len(d.CriticalPoints) == 0 {
		pdf.MultiCell(0, 5, tr(safeValue("")), "", "L", false)
	}
	for _, p := range d.CriticalPoints {
		pdf.MultiCell(0, 5, tr("- "+p), "", "L", false)
	}
	pdf.Ln(2)
}

func addResultsBlock(pdf *gofpdf.Fpdf, tr func(string) string, s model.IndicatorSummary) {
	addSection(pdf, tr, "Resultados Acumulados")
	if s.Records == 0 {
		pdf.SetFont(fontName, "", 10)
		pdf.MultiCell(0, 5, tr("Nenhum indicador registrado."), "", "L", false)
		pdf.Ln(2)
		return
	}

	headers := []string{"Indicador", "Valor"}
	widths := []float64{110, 60}
	drawTableRow(pdf, tr, headers, widths, true)
	for _, row := range [][]string{
		{"Meses registrados", fmt.Sprintf("%d", s.Records)},
		{"Resíduos desviados do aterro", formatAmount(s.TotalDivertedKg, 0) + " kg"},
		{"Economia gerada", formatCurrency(s.TotalSavings)},
		{"CO₂ evitado", formatAmount(s.TotalEmissionsAvoided, 1) + " kg"},
		{"Média de desperdício por refeição", formatAmount(s.AverageWastePerMeal, 1) + " g"},
	} {
		drawTableRow(pdf, tr, row, widths, false)
	}
	pdf.Ln(2)
}

func addStatusBlock(pdf *gofpdf.Fpdf, tr func(string) string, status model.ProgramStatus) {
	addSection(pdf, tr, "Status do Programa")
	drawPairs(pdf, tr, [][2]string{
		{"Etapas concluídas", fmt.Sprintf("%d de %d", status.StagesCompleted, model.ProgramStages)},
		{"Situação", statusLabel(status)},
	})
}

func drawPairs(pdf *gofpdf.Fpdf, tr func(string) string, rows [][2]string) {
	for _, row := range rows {
		pdf.SetFont(fontName, "B", 10)
		pdf.CellFormat(55, 6, tr(row[0]+":"), "", 0, "L", false, 0, "")
		pdf.SetFont(fontName, "", 10)
		pdf.MultiCell(0, 6, tr(row[1]), "", "L", false)
	}
	pdf.Ln(2)
}

func drawTableRow(pdf *gofpdf.Fpdf, tr func(string) string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
		pdf.SetFillColor(232, 245, 233)
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, tr(col), "1", 0, align, header, 0, "")
	}
	pdf.Ln(-1)
}

func segmentLabel(s model.Segment) string {
	switch s {
	case model.SegmentRestaurant:
		return "Restaurante"
	case model.SegmentHotel:
		return "Hotel"
	case model.SegmentBoth:
		return "Restaurante e Hotel"
	default:
		return safeValue(string(s))
	}
}

func serviceTypeLabel(t model.ServiceType) string {
	switch t {
	case model.ServiceTypeBuffet:
		return "Buffet"
	case model.ServiceTypeALaCarte:
		return "À la carte"
	case model.ServiceTypeMixed:
		return "Misto"
	default:
		return safeValue(string(t))
	}
}

func statusLabel(status model.ProgramStatus) string {
	switch {
	case status.StagesCompleted <= 0:
		return "Não iniciado"
	case status.StagesCompleted >= model.ProgramStages:
		return "Concluído"
	default:
		return fmt.Sprintf("Em andamento (etapa %d)", status.StagesCompleted+1)
	}
}

func joinNonEmpty(sep string, values ...string) string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, sep)
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "—"
	}
	return value
}

// formatAmount prints value with Brazilian separators: 1.234,5.
func formatAmount(value float64, precision int) string {
	raw := fmt.Sprintf("%.*f", precision, value)
	sign := ""
	if strings.HasPrefix(raw, "-") {
		sign, raw = "-", raw[1:]
	}
	intPart, frac, _ := strings.Cut(raw, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte(',')
		b.WriteString(frac)
	}
	return sign + b.String()
}

func formatCurrency(value float64) string {
	return "R$ " + formatAmount(value, 2)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("02/01/2006")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("02/01/2006 15:04")
}
