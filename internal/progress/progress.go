// Package progress derives display values from raw records. Every function
// is pure.
package progress

import (
	"fmt"
	"math"
	"sort"

	"github.com/nurpe/aterrozero-consultancy/internal/model"
)

// Fixed business parameters of the diagnostic estimate.
const (
	DaysPerMonth   = 30
	WasteCostPerKg = 5.0
)

const (
	LabelNotStarted = "Not started"
	LabelCompleted  = "Completed"
)

// StageCompletionPercent returns round(100*completed/total), or 0 for an
// empty item list.
func StageCompletionPercent(items []model.ChecklistItem) int {
	if len(items) == 0 {
		return 0
	}
	completed := 0
	for _, item := range items {
		if item.Completed {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(len(items))))
}

// ClientStatus counts fully completed stages among a client's checklists.
func ClientStatus(checklists []model.ChecklistProgram) model.ProgramStatus {
	completed := 0
	for _, c := range checklists {
		if c.AllCompleted() {
			completed++
		}
	}
	return model.ProgramStatus{
		StagesCompleted: completed,
		Label:           StatusLabel(completed),
	}
}

func StatusLabel(stagesCompleted int) string {
	switch {
	case stagesCompleted <= 0:
		return LabelNotStarted
	case stagesCompleted >= model.ProgramStages:
		return LabelCompleted
	default:
		return fmt.Sprintf("Stage %d", stagesCompleted+1)
	}
}

type StatusFilter string

const (
	FilterAll        StatusFilter = "all"
	FilterNotStarted StatusFilter = "not_started"
	FilterInProgress StatusFilter = "in_progress"
	FilterCompleted  StatusFilter = "completed"
)

func (f StatusFilter) Valid() bool {
	switch f {
	case FilterAll, FilterNotStarted, FilterInProgress, FilterCompleted:
		return true
	}
	return false
}

// Matches reports whether a status falls in the filter bucket. An empty
// filter matches everything.
func (f StatusFilter) Matches(status model.ProgramStatus) bool {
	switch f {
	case FilterNotStarted:
		return status.StagesCompleted == 0
	case FilterInProgress:
		return status.StagesCompleted > 0 && status.StagesCompleted < model.ProgramStages
	case FilterCompleted:
		return status.StagesCompleted >= model.ProgramStages
	default:
		return true
	}
}

func AggregateIndicators(records []model.IndicatorRecord) model.IndicatorSummary {
	summary := model.IndicatorSummary{Records: len(records)}
	if len(records) == 0 {
		return summary
	}
	wastePerMeal := 0.0
	for _, r := range records {
		summary.TotalDivertedKg += r.DivertedKg
		summary.TotalSavings += r.Savings
		summary.TotalEmissionsAvoided += r.EmissionsAvoidedKg
		wastePerMeal += r.WastePerMealGrams
	}
	summary.AverageWastePerMeal = wastePerMeal / float64(len(records))
	return summary
}

func DiagnosticEstimate(dailyWasteKg, collectionCost float64) model.DiagnosticEstimate {
	monthlyWaste := dailyWasteKg * DaysPerMonth
	return model.DiagnosticEstimate{
		MonthlyWasteKg:    monthlyWaste,
		MonthlyWastedCost: monthlyWaste*WasteCostPerKg + collectionCost,
	}
}

// SortIndicators orders records by (year, month) ascending, keeping the
// insertion order of records for the same period.
func SortIndicators(records []model.IndicatorRecord) []model.IndicatorRecord {
	out := append([]model.IndicatorRecord(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}
