package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const ProgramStages = 6

type ChecklistItem struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
}

// ChecklistProgram is one stage of the six-stage program for a client.
// At most one record exists per (ClientID, Stage).
type ChecklistProgram struct {
	ID          uuid.UUID       `json:"id"`
	ClientID    uuid.UUID       `json:"client_id"`
	Stage       int             `json:"stage"`
	Title       string          `json:"title"`
	Target      string          `json:"target"`
	Items       []ChecklistItem `json:"items"`
	Notes       string          `json:"notes"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// AllCompleted reports whether the stage has items and every one is done.
func (p ChecklistProgram) AllCompleted() bool {
	if len(p.Items) == 0 {
		return false
	}
	for _, item := range p.Items {
		if !item.Completed {
			return false
		}
	}
	return true
}

// Clone returns a copy that shares no slices or pointers with p.
func (p ChecklistProgram) Clone() ChecklistProgram {
	out := p
	out.Items = append([]ChecklistItem(nil), p.Items...)
	if p.CompletedAt != nil {
		at := *p.CompletedAt
		out.CompletedAt = &at
	}
	return out
}

func (p ChecklistProgram) Validate() error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("checklist id is empty")
	}
	if p.ClientID == uuid.Nil {
		return fmt.Errorf("checklist %s: client id is empty", p.ID)
	}
	if p.Stage < 1 || p.Stage > ProgramStages {
		return fmt.Errorf("checklist %s: stage %d out of range", p.ID, p.Stage)
	}
	for i, item := range p.Items {
		if item.ID == uuid.Nil {
			return fmt.Errorf("checklist %s: item %d has empty id", p.ID, i)
		}
	}
	return nil
}
