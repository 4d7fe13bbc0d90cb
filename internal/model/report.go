package model

import "time"

type ReportKind string

const (
	ReportKindDiagnostic ReportKind = "diagnostic"
	ReportKindFull       ReportKind = "full"
)

// FilePrefix is the leading part of the generated report file name.
func (k ReportKind) FilePrefix() string {
	switch k {
	case ReportKindDiagnostic:
		return "diagnostico"
	case ReportKindFull:
		return "relatorio"
	default:
		return string(k)
	}
}

type ProgramStatus struct {
	StagesCompleted int    `json:"stages_completed"`
	Label           string `json:"label"`
}

// IndicatorSummary aggregates every indicator record of a client.
type IndicatorSummary struct {
	Records               int     `json:"records"`
	TotalDivertedKg       float64 `json:"total_diverted_kg"`
	TotalSavings          float64 `json:"total_savings"`
	TotalEmissionsAvoided float64 `json:"total_emissions_avoided_kg"`
	AverageWastePerMeal   float64 `json:"average_waste_per_meal_g"`
}

type DiagnosticEstimate struct {
	MonthlyWasteKg    float64 `json:"monthly_waste_kg"`
	MonthlyWastedCost float64 `json:"monthly_wasted_cost"`
}

// ClientReport is everything a renderer needs. Numeric fields are already
// rounded: currency to 2 decimals, mass to 0, emissions to 1.
type ClientReport struct {
	Kind        ReportKind
	Brand       string
	Client      Client
	Diagnostic  *Diagnostic
	Summary     IndicatorSummary
	Status      ProgramStatus
	GeneratedAt time.Time
}

// IndicatorReport feeds the spreadsheet export.
type IndicatorReport struct {
	Client      Client
	Records     []IndicatorRecord
	Summary     IndicatorSummary
	GeneratedAt time.Time
}
