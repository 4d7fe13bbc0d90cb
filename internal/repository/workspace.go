package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/nurpe/aterrozero-consultancy/internal/model"
	"github.com/nurpe/aterrozero-consultancy/internal/store"
)

// Workspace mirrors the persisted collections in memory. Every mutation
// builds the next version of the affected collection, writes it to the store
// as a whole and only then swaps it in, so a failed write leaves both memory
// and storage untouched. A single mutex serialises all access, making the
// workspace the only writer of its store.
type Workspace struct {
	store store.Store
	log   zerolog.Logger

	mu          sync.Mutex
	clients     []model.Client
	diagnostics []model.Diagnostic
	checklists  []model.ChecklistProgram
	indicators  []model.IndicatorRecord
	current     *model.Client
}

// Open loads every collection from st. Corrupted data is returned as a
// *CorruptDataError and must be treated as fatal.
func Open(ctx context.Context, st store.Store, log zerolog.Logger) (*Workspace, error) {
	w := &Workspace{store: st, log: log}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := loadCollection[model.Client](gctx, st, store.Clients)
		w.clients = items
		return err
	})
	g.Go(func() error {
		items, err := loadCollection[model.Diagnostic](gctx, st, store.Diagnostics)
		w.diagnostics = items
		return err
	})
	g.Go(func() error {
		items, err := loadCollection[model.ChecklistProgram](gctx, st, store.Checklists)
		w.checklists = items
		return err
	})
	g.Go(func() error {
		items, err := loadCollection[model.IndicatorRecord](gctx, st, store.Indicators)
		w.indicators = items
		return err
	})
	g.Go(func() error {
		current, err := loadCurrent(gctx, st)
		w.current = current
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	w.log.Info().
		Int("clients", len(w.clients)).
		Int("diagnostics", len(w.diagnostics)).
		Int("checklists", len(w.checklists)).
		Int("indicators", len(w.indicators)).
		Bool("has_current_client", w.current != nil).
		Msg("workspace loaded")
	return w, nil
}

func loadCurrent(ctx context.Context, st store.Store) (*model.Client, error) {
	payload, ok, err := st.Load(ctx, store.CurrentClient)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", store.CurrentClient, err)
	}
	if !ok {
		return nil, nil
	}
	var current *model.Client
	if err := json.Unmarshal(payload, &current); err != nil {
		return nil, &CorruptDataError{Key: store.CurrentClient, Index: -1, Err: err}
	}
	if current == nil {
		return nil, nil
	}
	if err := current.Validate(); err != nil {
		return nil, &CorruptDataError{Key: store.CurrentClient, Index: -1, Err: err}
	}
	return current, nil
}

// Clients

func (w *Workspace) AddClient(ctx context.Context, c model.Client) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	next := append(cloneClients(w.clients), c)
	if err := saveCollection(ctx, w.store, store.Clients, next); err != nil {
		return err
	}
	w.clients = next
	return nil
}

// UpdateClient replaces the client with the same ID. The current-client
// selection follows the update when it points at the same client.
func (w *Workspace) UpdateClient(ctx context.Context, c model.Client) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	idx := indexOf(w.clients, func(x model.Client) bool { return x.ID == c.ID })
	if idx < 0 {
		return fmt.Errorf("%w: client %s", ErrNotFound, c.ID)
	}

	next := cloneClients(w.clients)
	next[idx] = c
	if err := saveCollection(ctx, w.store, store.Clients, next); err != nil {
		return err
	}

	var current *model.Client
	if w.current != nil && w.current.ID == c.ID {
		updated := c
		current = &updated
		if err := w.writeCurrent(ctx, current); err != nil {
			// Put the previous clients payload back so storage matches memory.
			if rerr := saveCollection(ctx, w.store, store.Clients, w.clients); rerr != nil {
				w.log.Error().Err(rerr).Str("client_id", c.ID.String()).Msg("restore clients after failed update")
			}
			return err
		}
	}

	w.clients = next
	if current != nil {
		w.current = current
	}
	return nil
}

func (w *Workspace) ListClients() []model.Client {
	w.mu.Lock()
	defer w.mu.Unlock()
	return cloneClients(w.clients)
}

func (w *Workspace) GetClient(id uuid.UUID) (model.Client, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	idx := indexOf(w.clients, func(x model.Client) bool { return x.ID == id })
	if idx < 0 {
		return model.Client{}, fmt.Errorf("%w: client %s", ErrNotFound, id)
	}
	return w.clients[idx], nil
}

// SetCurrentClient replaces the selection; nil clears it.
func (w *Workspace) SetCurrentClient(ctx context.Context, c *model.Client) error {
	if c != nil {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		copied := *c
		c = &copied
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.saveCurrent(ctx, c)
}

func (w *Workspace) saveCurrent(ctx context.Context, c *model.Client) error {
	if err := w.writeCurrent(ctx, c); err != nil {
		return err
	}
	w.current = c
	return nil
}

func (w *Workspace) writeCurrent(ctx context.Context, c *model.Client) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode %s: %w", store.CurrentClient, err)
	}
	if err := w.store.Save(ctx, store.CurrentClient, payload); err != nil {
		return fmt.Errorf("save %s: %w", store.CurrentClient, err)
	}
	return nil
}

func (w *Workspace) CurrentClient() *model.Client {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current == nil {
		return nil
	}
	c := *w.current
	return &c
}

// Diagnostics

func (w *Workspace) AddDiagnostic(ctx context.Context, d model.Diagnostic) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	d.CriticalPoints = append([]string{}, d.CriticalPoints...)

	w.mu.Lock()
	defer w.mu.Unlock()

	next := append(cloneDiagnostics(w.diagnostics), d)
	if err := saveCollection(ctx, w.store, store.Diagnostics, next); err != nil {
		return err
	}
	w.diagnostics = next
	return nil
}

// ListDiagnostics returns the client's diagnostics in insertion order.
func (w *Workspace) ListDiagnostics(clientID uuid.UUID) []model.Diagnostic {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []model.Diagnostic
	for _, d := range w.diagnostics {
		if d.ClientID == clientID {
			d.CriticalPoints = append([]string{}, d.CriticalPoints...)
			out = append(out, d)
		}
	}
	return out
}

// Checklists

// AddChecklist appends a stage. A second record for the same client and
// stage is rejected with ErrDuplicate.
func (w *Workspace) AddChecklist(ctx context.Context, p model.ChecklistProgram) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stageIndex(p.ClientID, p.Stage) >= 0 {
		return fmt.Errorf("%w: client %s already has stage %d", ErrDuplicate, p.ClientID, p.Stage)
	}
	next := append(cloneChecklists(w.checklists), p.Clone())
	if err := saveCollection(ctx, w.store, store.Checklists, next); err != nil {
		return err
	}
	w.checklists = next
	return nil
}

// UpdateChecklist replaces the record with the same ID.
func (w *Workspace) UpdateChecklist(ctx context.Context, p model.ChecklistProgram) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	idx := indexOf(w.checklists, func(x model.ChecklistProgram) bool { return x.ID == p.ID })
	if idx < 0 {
		return fmt.Errorf("%w: checklist %s", ErrNotFound, p.ID)
	}
	if other := w.stageIndex(p.ClientID, p.Stage); other >= 0 && other != idx {
		return fmt.Errorf("%w: client %s already has stage %d", ErrDuplicate, p.ClientID, p.Stage)
	}

	next := cloneChecklists(w.checklists)
	next[idx] = p.Clone()
	if err := saveCollection(ctx, w.store, store.Checklists, next); err != nil {
		return err
	}
	w.checklists = next
	return nil
}

// SaveStage inserts p, or replaces the record already holding the same
// client and stage. The stored record keeps the existing ID.
func (w *Workspace) SaveStage(ctx context.Context, p model.ChecklistProgram) (model.ChecklistProgram, error) {
	if err := p.Validate(); err != nil {
		return model.ChecklistProgram{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	next := cloneChecklists(w.checklists)
	saved := p.Clone()
	if idx := w.stageIndex(p.ClientID, p.Stage); idx >= 0 {
		saved.ID = next[idx].ID
		next[idx] = saved
	} else {
		next = append(next, saved)
	}
	if err := saveCollection(ctx, w.store, store.Checklists, next); err != nil {
		return model.ChecklistProgram{}, err
	}
	w.checklists = next
	return saved.Clone(), nil
}

// EnsureChecklists returns the client's stages, seeding them with seed() the
// first time the client has none. seeded reports whether seeding happened.
func (w *Workspace) EnsureChecklists(ctx context.Context, clientID uuid.UUID, seed func() []model.ChecklistProgram) (programs []model.ChecklistProgram, seeded bool, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if existing := w.checklistsFor(clientID); len(existing) > 0 {
		return existing, false, nil
	}

	fresh := seed()
	next := cloneChecklists(w.checklists)
	stages := make(map[int]bool, len(fresh))
	for _, p := range fresh {
		if p.ClientID != clientID {
			return nil, false, fmt.Errorf("%w: seeded stage belongs to client %s", ErrInvalidRecord, p.ClientID)
		}
		if err := p.Validate(); err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		if stages[p.Stage] {
			return nil, false, fmt.Errorf("%w: stage %d seeded twice", ErrDuplicate, p.Stage)
		}
		stages[p.Stage] = true
		next = append(next, p.Clone())
	}
	if err := saveCollection(ctx, w.store, store.Checklists, next); err != nil {
		return nil, false, err
	}
	w.checklists = next

	w.log.Debug().Str("client_id", clientID.String()).Int("stages", len(fresh)).Msg("checklists seeded")
	return w.checklistsFor(clientID), true, nil
}

// ListChecklists returns the client's stages in insertion order.
func (w *Workspace) ListChecklists(clientID uuid.UUID) []model.ChecklistProgram {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.checklistsFor(clientID)
}

func (w *Workspace) checklistsFor(clientID uuid.UUID) []model.ChecklistProgram {
	var out []model.ChecklistProgram
	for _, p := range w.checklists {
		if p.ClientID == clientID {
			out = append(out, p.Clone())
		}
	}
	return out
}

func (w *Workspace) stageIndex(clientID uuid.UUID, stage int) int {
	return indexOf(w.checklists, func(x model.ChecklistProgram) bool {
		return x.ClientID == clientID && x.Stage == stage
	})
}

// Indicators

func (w *Workspace) AddIndicator(ctx context.Context, r model.IndicatorRecord) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	next := append(append([]model.IndicatorRecord(nil), w.indicators...), r)
	if err := saveCollection(ctx, w.store, store.Indicators, next); err != nil {
		return err
	}
	w.indicators = next
	return nil
}

// ListIndicators returns the client's records in insertion order.
func (w *Workspace) ListIndicators(clientID uuid.UUID) []model.IndicatorRecord {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []model.IndicatorRecord
	for _, r := range w.indicators {
		if r.ClientID == clientID {
			out = append(out, r)
		}
	}
	return out
}

func indexOf[T any](items []T, match func(T) bool) int {
	for i, item := range items {
		if match(item) {
			return i
		}
	}
	return -1
}

func cloneClients(in []model.Client) []model.Client {
	return append([]model.Client(nil), in...)
}

func cloneDiagnostics(in []model.Diagnostic) []model.Diagnostic {
	return append([]model.Diagnostic(nil), in...)
}

func cloneChecklists(in []model.ChecklistProgram) []model.ChecklistProgram {
	return append([]model.ChecklistProgram(nil), in...)
}
