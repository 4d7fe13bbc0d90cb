package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/nurpe/aterrozero-consultancy/internal/model"
	"github.com/nurpe/aterrozero-consultancy/internal/progress"
)

type DashboardQuery struct {
	Search string
	Status progress.StatusFilter
}

type DashboardRow struct {
	Client           model.Client        `json:"client"`
	Status           model.ProgramStatus `json:"status"`
	ProgramPercent   int                 `json:"program_percent"`
	HasDiagnostic    bool                `json:"has_diagnostic"`
	IndicatorRecords int                 `json:"indicator_records"`
}

// Dashboard lists clients for the consultant. Counters cover every client,
// Rows only those matching the query.
type Dashboard struct {
	Rows            []DashboardRow `json:"rows"`
	Total           int            `json:"total"`
	NotStarted      int            `json:"not_started"`
	InProgress      int            `json:"in_progress"`
	Completed       int            `json:"completed"`
	CurrentClientID *uuid.UUID     `json:"current_client_id,omitempty"`
}

func (s *ConsultancyService) Dashboard(q DashboardQuery) (Dashboard, error) {
	if q.Status != "" && !q.Status.Valid() {
		return Dashboard{}, fmt.Errorf("%w: unknown status filter %q", ErrInvalidInput, q.Status)
	}
	search := strings.ToLower(strings.TrimSpace(q.Search))

	clients := s.repo.ListClients()
	out := Dashboard{Rows: make([]DashboardRow, 0, len(clients)), Total: len(clients)}
	if current := s.repo.CurrentClient(); current != nil {
		id := current.ID
		out.CurrentClientID = &id
	}

	for _, c := range clients {
		status := progress.ClientStatus(s.repo.ListChecklists(c.ID))
		switch {
		case progress.FilterNotStarted.Matches(status):
			out.NotStarted++
		case progress.FilterCompleted.Matches(status):
			out.Completed++
		default:
			out.InProgress++
		}

		if !q.Status.Matches(status) || !matchesSearch(c, search) {
			continue
		}
		out.Rows = append(out.Rows, DashboardRow{
			Client:           c,
			Status:           status,
			ProgramPercent:   int(math.Round(100 * float64(status.StagesCompleted) / model.ProgramStages)),
			HasDiagnostic:    len(s.repo.ListDiagnostics(c.ID)) > 0,
			IndicatorRecords: len(s.repo.ListIndicators(c.ID)),
		})
	}
	return out, nil
}

func matchesSearch(c model.Client, search string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.CompanyName), search) ||
		strings.Contains(strings.ToLower(c.TaxID), search)
}
