package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/aterrozero-consultancy/internal/model"
	"github.com/nurpe/aterrozero-consultancy/internal/progress"
)

const (
	summarySheet = "Resumo"
	monthlySheet = "Indicadores Mensais"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate writes a workbook with a summary sheet and one row per monthly
// indicator record.
func (g *Generator) Generate(report model.IndicatorReport) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if err := g.writeSummary(file, report); err != nil {
		return nil, err
	}

	if _, err := file.NewSheet(monthlySheet); err != nil {
		return nil, err
	}
	if err := g.writeMonthly(file, report); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, report model.IndicatorReport) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(summarySheet, cell, value)
	}

	set("A1", "Empresa")
	set("B1", report.Client.CompanyName)
	set("A2", "CNPJ")
	set("B2", report.Client.TaxID)
	set("A3", "Gerado em")
	set("B3", formatDateTime(report.GeneratedAt))
	set("A4", "Meses registrados")
	set("B4", report.Summary.Records)
	set("A5", "Resíduos desviados (kg)")
	set("B5", report.Summary.TotalDivertedKg)
	set("A6", "Economia (R$)")
	set("B6", report.Summary.TotalSavings)
	set("A7", "CO₂ evitado (kg)")
	set("B7", report.Summary.TotalEmissionsAvoided)
	set("A8", "Média g/refeição")
	set("B8", report.Summary.AverageWastePerMeal)

	_ = file.SetColWidth(summarySheet, "A", "A", 30)
	_ = file.SetColWidth(summarySheet, "B", "B", 40)
	return nil
}

func (g *Generator) writeMonthly(file *excelize.File, report model.IndicatorReport) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(monthlySheet, cell, value)
	}

	headers := []string{
		"Período",
		"Desperdício (g/refeição)",
		"Desviado do aterro (kg)",
		"Economia (R$)",
		"CO₂ evitado (kg)",
		"Registrado em",
	}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		set(cell, header)
	}

	for i, r := range progress.SortIndicators(report.Records) {
		row := i + 2
		set(fmt.Sprintf("A%d", row), progress.MonthLabel(r.Month, r.Year))
		set(fmt.Sprintf("B%d", row), r.WastePerMealGrams)
		set(fmt.Sprintf("C%d", row), r.DivertedKg)
		set(fmt.Sprintf("D%d", row), r.Savings)
		set(fmt.Sprintf("E%d", row), r.EmissionsAvoidedKg)
		set(fmt.Sprintf("F%d", row), formatDateTime(r.RecordedAt))
	}

	_ = file.SetColWidth(monthlySheet, "A", "A", 14)
	_ = file.SetColWidth(monthlySheet, "B", "E", 24)
	_ = file.SetColWidth(monthlySheet, "F", "F", 20)
	return nil
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006 15:04")
}
