package progress

import (
	"fmt"

	"github.com/nurpe/aterrozero-consultancy/internal/model"
)

var monthLabels = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// Series is chart-ready data; every slice has one entry per label.
type Series struct {
	Labels       []string  `json:"labels"`
	WastePerMeal []float64 `json:"waste_per_meal_g"`
	DivertedKg   []float64 `json:"diverted_kg"`
	Savings      []float64 `json:"savings"`
	Emissions    []float64 `json:"emissions_avoided_kg"`
}

func MonthLabel(month, year int) string {
	if month < 1 || month > 12 {
		return fmt.Sprintf("%d/%d", month, year)
	}
	return fmt.Sprintf("%s/%d", monthLabels[month-1], year)
}

func IndicatorSeries(records []model.IndicatorRecord) Series {
	sorted := SortIndicators(records)
	s := Series{
		Labels:       make([]string, 0, len(sorted)),
		WastePerMeal: make([]float64, 0, len(sorted)),
		DivertedKg:   make([]float64, 0, len(sorted)),
		Savings:      make([]float64, 0, len(sorted)),
		Emissions:    make([]float64, 0, len(sorted)),
	}
	for _, r := range sorted {
		s.Labels = append(s.Labels, MonthLabel(r.Month, r.Year))
		s.WastePerMeal = append(s.WastePerMeal, r.WastePerMealGrams)
		s.DivertedKg = append(s.DivertedKg, r.DivertedKg)
		s.Savings = append(s.Savings, r.Savings)
		s.Emissions = append(s.Emissions, r.EmissionsAvoidedKg)
	}
	return s
}
