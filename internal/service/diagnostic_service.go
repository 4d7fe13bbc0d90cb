package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nurpe/aterrozero-consultancy/internal/model"
	"github.com/nurpe/aterrozero-consultancy/internal/progress"
)

type DiagnosticInput struct {
	OperationModel        string
	DailyWasteKg          float64
	DisposalMethod        string
	MonthlyCollectionCost float64
	CriticalPoints        []string
}

func (s *ConsultancyService) EstimateDiagnostic(dailyWasteKg, collectionCost float64) (model.DiagnosticEstimate, error) {
	if dailyWasteKg < 0 || collectionCost < 0 {
		return model.DiagnosticEstimate{}, fmt.Errorf("%w: volume and cost must not be negative", ErrInvalidInput)
	}
	return progress.DiagnosticEstimate(dailyWasteKg, collectionCost), nil
}

// SubmitDiagnostic computes the estimates and appends a new diagnostic to
// the client's history. Earlier diagnostics are kept.
func (s *ConsultancyService) SubmitDiagnostic(ctx context.Context, clientID uuid.UUID, in DiagnosticInput) (model.Diagnostic, error) {
	if _, err := s.repo.GetClient(clientID); err != nil {
		return model.Diagnostic{}, mapRepoError(err)
	}
	estimate, err := s.EstimateDiagnostic(in.DailyWasteKg, in.MonthlyCollectionCost)
	if err != nil {
		return model.Diagnostic{}, err
	}

	points := make([]string, 0, len(in.CriticalPoints))
	for _, p := range in.CriticalPoints {
		if p = strings.TrimSpace(p); p != "" {
			points = append(points, p)
		}
	}

	diag := model.Diagnostic{
		ID:                    s.newID(),
		ClientID:              clientID,
		OperationModel:        strings.TrimSpace(in.OperationModel),
		DailyWasteKg:          in.DailyWasteKg,
		DisposalMethod:        strings.TrimSpace(in.DisposalMethod),
		MonthlyCollectionCost: in.MonthlyCollectionCost,
		CriticalPoints:        points,
		MonthlyWasteKg:        estimate.MonthlyWasteKg,
		MonthlyWastedCost:     estimate.MonthlyWastedCost,
		PerformedAt:           s.now(),
	}
	if err := s.repo.AddDiagnostic(ctx, diag); err != nil {
		return model.Diagnostic{}, mapRepoError(err)
	}

	s.log.Info().
		Str("client_id", clientID.String()).
		Float64("monthly_waste_kg", diag.MonthlyWasteKg).
		Float64("monthly_wasted_cost", diag.MonthlyWastedCost).
		Msg("diagnostic submitted")
	return diag, nil
}

// CurrentDiagnostic returns the most recently performed diagnostic.
func (s *ConsultancyService) CurrentDiagnostic(clientID uuid.UUID) (model.Diagnostic, error) {
	history := s.repo.ListDiagnostics(clientID)
	if len(history) == 0 {
		return model.Diagnostic{}, fmt.Errorf("%w: client %s has no diagnostic", ErrNotFound, clientID)
	}
	return latestDiagnostic(history), nil
}

func (s *ConsultancyService) DiagnosticHistory(clientID uuid.UUID) ([]model.Diagnostic, error) {
	if _, err := s.repo.GetClient(clientID); err != nil {
		return nil, mapRepoError(err)
	}
	history := s.repo.ListDiagnostics(clientID)
	if history == nil {
		history = []model.Diagnostic{}
	}
	return history, nil
}

func latestDiagnostic(history []model.Diagnostic) model.Diagnostic {
	latest := history[0]
	for _, d := range history[1:] {
		if !d.PerformedAt.Before(latest.PerformedAt) {
			latest = d
		}
	}
	return latest
}
