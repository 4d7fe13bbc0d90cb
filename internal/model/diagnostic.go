package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Diagnostic is the baseline waste and cost assessment of a client.
// MonthlyWasteKg and MonthlyWastedCost are derived from DailyWasteKg and
// MonthlyCollectionCost when the diagnostic is submitted.
type Diagnostic struct {
	ID                    uuid.UUID `json:"id"`
	ClientID              uuid.UUID `json:"client_id"`
	OperationModel        string    `json:"operation_model"`
	DailyWasteKg          float64   `json:"daily_waste_kg"`
	DisposalMethod        string    `json:"disposal_method"`
	MonthlyCollectionCost float64   `json:"monthly_collection_cost"`
	CriticalPoints        []string  `json:"critical_points"`
	MonthlyWasteKg        float64   `json:"monthly_waste_kg"`
	MonthlyWastedCost     float64   `json:"monthly_wasted_cost"`
	PerformedAt           time.Time `json:"performed_at"`
}

func (d Diagnostic) Validate() error {
	if d.ID == uuid.Nil {
		return fmt.Errorf("diagnostic id is empty")
	}
	if d.ClientID == uuid.Nil {
		return fmt.Errorf("diagnostic %s: client id is empty", d.ID)
	}
	if d.DailyWasteKg < 0 || d.MonthlyCollectionCost < 0 {
		return fmt.Errorf("diagnostic %s: negative volume or cost", d.ID)
	}
	return nil
}
