package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IndicatorRecord is a monthly measurement for a client. Records are only
// appended, never updated.
type IndicatorRecord struct {
	ID                 uuid.UUID `json:"id"`
	ClientID           uuid.UUID `json:"client_id"`
	Month              int       `json:"month"`
	Year               int       `json:"year"`
	WastePerMealGrams  float64   `json:"waste_per_meal_g"`
	DivertedKg         float64   `json:"diverted_kg"`
	Savings            float64   `json:"savings"`
	EmissionsAvoidedKg float64   `json:"emissions_avoided_kg"`
	RecordedAt         time.Time `json:"recorded_at"`
}

func (r IndicatorRecord) Validate() error {
	if r.ID == uuid.Nil {
		return fmt.Errorf("indicator id is empty")
	}
	if r.ClientID == uuid.Nil {
		return fmt.Errorf("indicator %s: client id is empty", r.ID)
	}
	if r.Month < 1 || r.Month > 12 {
		return fmt.Errorf("indicator %s: month %d out of range", r.ID, r.Month)
	}
	if r.WastePerMealGrams < 0 || r.DivertedKg < 0 || r.Savings < 0 || r.EmissionsAvoidedKg < 0 {
		return fmt.Errorf("indicator %s: negative measurement", r.ID)
	}
	return nil
}
