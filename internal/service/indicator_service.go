package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nurpe/aterrozero-consultancy/internal/model"
	"github.com/nurpe/aterrozero-consultancy/internal/progress"
)

type IndicatorInput struct {
	Month              int
	Year               int
	WastePerMealGrams  float64
	DivertedKg         float64
	Savings            float64
	EmissionsAvoidedKg float64
}

type IndicatorOverview struct {
	Records []model.IndicatorRecord `json:"records"`
	Summary model.IndicatorSummary  `json:"summary"`
	Series  progress.Series         `json:"series"`
}

func (s *ConsultancyService) RecordIndicator(ctx context.Context, clientID uuid.UUID, in IndicatorInput) (model.IndicatorRecord, error) {
	if in.Month < 1 || in.Month > 12 {
		return model.IndicatorRecord{}, fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidInput)
	}
	if in.Year < 1 {
		return model.IndicatorRecord{}, fmt.Errorf("%w: year is required", ErrInvalidInput)
	}
	if in.WastePerMealGrams < 0 || in.DivertedKg < 0 || in.Savings < 0 || in.EmissionsAvoidedKg < 0 {
		return model.IndicatorRecord{}, fmt.Errorf("%w: measurements must not be negative", ErrInvalidInput)
	}
	if _, err := s.repo.GetClient(clientID); err != nil {
		return model.IndicatorRecord{}, mapRepoError(err)
	}

	record := model.IndicatorRecord{
		ID:                 s.newID(),
		ClientID:           clientID,
		Month:              in.Month,
		Year:               in.Year,
		WastePerMealGrams:  in.WastePerMealGrams,
		DivertedKg:         in.DivertedKg,
		Savings:            in.Savings,
		EmissionsAvoidedKg: in.EmissionsAvoidedKg,
		RecordedAt:         s.now(),
	}
	if err := s.repo.AddIndicator(ctx, record); err != nil {
		return model.IndicatorRecord{}, mapRepoError(err)
	}
	return record, nil
}

// Indicators returns the client's records ordered by period together with
// their totals and chart series.
func (s *ConsultancyService) Indicators(clientID uuid.UUID) (IndicatorOverview, error) {
	if _, err := s.repo.GetClient(clientID); err != nil {
		return IndicatorOverview{}, mapRepoError(err)
	}
	records := progress.SortIndicators(s.repo.ListIndicators(clientID))
	if records == nil {
		records = []model.IndicatorRecord{}
	}
	return IndicatorOverview{
		Records: records,
		Summary: progress.AggregateIndicators(records),
		Series:  progress.IndicatorSeries(records),
	}, nil
}
