package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/nurpe/aterrozero-consultancy/internal/model"
	"github.com/nurpe/aterrozero-consultancy/internal/program"
	"github.com/nurpe/aterrozero-consultancy/internal/progress"
)

type StageView struct {
	model.ChecklistProgram
	Percent int `json:"percent"`
}

// StageUpdate carries the state the consultant edited locally before saving.
// Items maps item IDs to their completed flag; items not listed keep their
// stored value. A nil Notes keeps the stored notes.
type StageUpdate struct {
	Items map[uuid.UUID]bool
	Notes *string
}

// Checklists returns the client's six stages ordered by stage number,
// seeding them from the program template on first access.
func (s *ConsultancyService) Checklists(ctx context.Context, clientID uuid.UUID) ([]StageView, error) {
	if _, err := s.repo.GetClient(clientID); err != nil {
		return nil, mapRepoError(err)
	}

	programs, seeded, err := s.repo.EnsureChecklists(ctx, clientID, func() []model.ChecklistProgram {
		return program.Instantiate(clientID, s.newID)
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	if seeded {
		s.log.Info().Str("client_id", clientID.String()).Msg("checklist program started")
	}

	sort.SliceStable(programs, func(i, j int) bool { return programs[i].Stage < programs[j].Stage })
	views := make([]StageView, 0, len(programs))
	for _, p := range programs {
		views = append(views, stageView(p))
	}
	return views, nil
}

// SaveChecklistStage applies update to the stored stage and saves it,
// replacing the existing record for (client, stage). CompletedAt is stamped
// when every item is done and cleared otherwise.
func (s *ConsultancyService) SaveChecklistStage(ctx context.Context, clientID uuid.UUID, stage int, update StageUpdate) (StageView, error) {
	if stage < 1 || stage > model.ProgramStages {
		return StageView{}, fmt.Errorf("%w: stage must be between 1 and %d", ErrInvalidInput, model.ProgramStages)
	}
	if _, err := s.repo.GetClient(clientID); err != nil {
		return StageView{}, mapRepoError(err)
	}

	// Saving before the first view still seeds the whole program.
	programs, _, err := s.repo.EnsureChecklists(ctx, clientID, func() []model.ChecklistProgram {
		return program.Instantiate(clientID, s.newID)
	})
	if err != nil {
		return StageView{}, mapRepoError(err)
	}
	current, ok := findStage(programs, stage)
	if !ok {
		return StageView{}, fmt.Errorf("%w: client %s has no stage %d", ErrNotFound, clientID, stage)
	}

	index := make(map[uuid.UUID]int, len(current.Items))
	for i, item := range current.Items {
		index[item.ID] = i
	}
	for id, completed := range update.Items {
		i, ok := index[id]
		if !ok {
			return StageView{}, fmt.Errorf("%w: item %s is not part of stage %d", ErrInvalidInput, id, stage)
		}
		current.Items[i].Completed = completed
	}
	if update.Notes != nil {
		current.Notes = *update.Notes
	}

	current.CompletedAt = nil
	if current.AllCompleted() {
		at := s.now()
		current.CompletedAt = &at
	}

	saved, err := s.repo.SaveStage(ctx, current)
	if err != nil {
		return StageView{}, mapRepoError(err)
	}

	view := stageView(saved)
	s.log.Info().
		Str("client_id", clientID.String()).
		Int("stage", stage).
		Int("percent", view.Percent).
		Msg("checklist stage saved")
	return view, nil
}

func (s *ConsultancyService) ClientStatus(clientID uuid.UUID) (model.ProgramStatus, error) {
	if _, err := s.repo.GetClient(clientID); err != nil {
		return model.ProgramStatus{}, mapRepoError(err)
	}
	return progress.ClientStatus(s.repo.ListChecklists(clientID)), nil
}

func findStage(programs []model.ChecklistProgram, stage int) (model.ChecklistProgram, bool) {
	for _, p := range programs {
		if p.Stage == stage {
			return p.Clone(), true
		}
	}
	return model.ChecklistProgram{}, false
}

func stageView(p model.ChecklistProgram) StageView {
	return StageView{
		ChecklistProgram: p,
		Percent:          progress.StageCompletionPercent(p.Items),
	}
}
