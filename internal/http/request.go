package http

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/nurpe/aterrozero-consultancy/internal/model"
	"github.com/nurpe/aterrozero-consultancy/internal/service"
)

// number accepts JSON numbers and numeric strings from form inputs. Anything
// that does not parse, including null and empty strings, decodes as 0.
type number float64

func (n *number) UnmarshalJSON(data []byte) error {
	*n = 0
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}
	*n = number(value)
	return nil
}

func (n number) Float() float64 { return float64(n) }

// Int truncates toward zero. Values outside the int32 range read as 0, like
// unparsable input.
func (n number) Int() int {
	v := math.Trunc(float64(n))
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0
	}
	return int(v)
}

type clientRequest struct {
	CompanyName string        `json:"company_name" binding:"required"`
	TaxID       string        `json:"tax_id"`
	Segment     string        `json:"segment" binding:"required"`
	Address     string        `json:"address"`
	Contact     model.Contact `json:"contact"`
	MealsPerDay number        `json:"meals_per_day"`
	ServiceType string        `json:"service_type" binding:"required"`
}

func (r clientRequest) input() service.ClientInput {
	return service.ClientInput{
		CompanyName: r.CompanyName,
		TaxID:       r.TaxID,
		Segment:     model.Segment(strings.TrimSpace(r.Segment)),
		Address:     r.Address,
		Contact:     r.Contact,
		MealsPerDay: r.MealsPerDay.Int(),
		ServiceType: model.ServiceType(strings.TrimSpace(r.ServiceType)),
	}
}

type currentClientRequest struct {
	ClientID *string `json:"client_id"`
}

type estimateRequest struct {
	DailyWasteKg          number `json:"daily_waste_kg"`
	MonthlyCollectionCost number `json:"monthly_collection_cost"`
}

type diagnosticRequest struct {
	OperationModel        string   `json:"operation_model"`
	DailyWasteKg          number   `json:"daily_waste_kg"`
	DisposalMethod        string   `json:"disposal_method"`
	MonthlyCollectionCost number   `json:"monthly_collection_cost"`
	CriticalPoints        []string `json:"critical_points"`
}

func (r diagnosticRequest) input() service.DiagnosticInput {
	return service.DiagnosticInput{
		OperationModel:        r.OperationModel,
		DailyWasteKg:          r.DailyWasteKg.Float(),
		DisposalMethod:        r.DisposalMethod,
		MonthlyCollectionCost: r.MonthlyCollectionCost.Float(),
		CriticalPoints:        r.CriticalPoints,
	}
}

type stageRequest struct {
	Items map[string]bool `json:"items"`
	Notes *string         `json:"notes"`
}

func (r stageRequest) update() (service.StageUpdate, error) {
	items := make(map[uuid.UUID]bool, len(r.Items))
	for raw, completed := range r.Items {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return service.StageUpdate{}, service.ErrInvalidInput
		}
		items[id] = completed
	}
	return service.StageUpdate{Items: items, Notes: r.Notes}, nil
}

type indicatorRequest struct {
	Month              number `json:"month"`
	Year               number `json:"year"`
	WastePerMealGrams  number `json:"waste_per_meal_g"`
	DivertedKg         number `json:"diverted_kg"`
	Savings            number `json:"savings"`
	EmissionsAvoidedKg number `json:"emissions_avoided_kg"`
}

func (r indicatorRequest) input() service.IndicatorInput {
	return service.IndicatorInput{
		Month:              r.Month.Int(),
		Year:               r.Year.Int(),
		WastePerMealGrams:  r.WastePerMealGrams.Float(),
		DivertedKg:         r.DivertedKg.Float(),
		Savings:            r.Savings.Float(),
		EmissionsAvoidedKg: r.EmissionsAvoidedKg.Float(),
	}
}
