package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nurpe/aterrozero-consultancy/internal/model"
)

type ClientInput struct {
	CompanyName string
	TaxID       string
	Segment     model.Segment
	Address     string
	Contact     model.Contact
	MealsPerDay int
	ServiceType model.ServiceType
}

func (in ClientInput) validate() error {
	if strings.TrimSpace(in.CompanyName) == "" {
		return fmt.Errorf("%w: company_name is required", ErrInvalidInput)
	}
	if !in.Segment.Valid() {
		return fmt.Errorf("%w: segment must be restaurant, hotel or both", ErrInvalidInput)
	}
	if !in.ServiceType.Valid() {
		return fmt.Errorf("%w: service_type must be buffet, a_la_carte or mixed", ErrInvalidInput)
	}
	if in.MealsPerDay < 0 {
		return fmt.Errorf("%w: meals_per_day must not be negative", ErrInvalidInput)
	}
	return nil
}

func (in ClientInput) apply(c *model.Client) {
	c.CompanyName = strings.TrimSpace(in.CompanyName)
	c.TaxID = strings.TrimSpace(in.TaxID)
	c.Segment = in.Segment
	c.Address = strings.TrimSpace(in.Address)
	c.Contact = in.Contact
	c.Operation = model.OperationProfile{
		MealsPerDay: in.MealsPerDay,
		ServiceType: in.ServiceType,
	}
}

// RegisterClient creates a client and makes it the current selection.
func (s *ConsultancyService) RegisterClient(ctx context.Context, in ClientInput) (model.Client, error) {
	if err := in.validate(); err != nil {
		return model.Client{}, err
	}

	client := model.Client{ID: s.newID(), CreatedAt: s.now()}
	in.apply(&client)

	if err := s.repo.AddClient(ctx, client); err != nil {
		return model.Client{}, mapRepoError(err)
	}
	if err := s.repo.SetCurrentClient(ctx, &client); err != nil {
		return model.Client{}, mapRepoError(err)
	}

	s.log.Info().Str("client_id", client.ID.String()).Str("company", client.CompanyName).Msg("client registered")
	return client, nil
}

// UpdateClient rewrites the editable fields; ID and creation time are kept.
func (s *ConsultancyService) UpdateClient(ctx context.Context, id uuid.UUID, in ClientInput) (model.Client, error) {
	if err := in.validate(); err != nil {
		return model.Client{}, err
	}
	client, err := s.repo.GetClient(id)
	if err != nil {
		return model.Client{}, mapRepoError(err)
	}

	in.apply(&client)
	if err := s.repo.UpdateClient(ctx, client); err != nil {
		return model.Client{}, mapRepoError(err)
	}
	return client, nil
}

func (s *ConsultancyService) GetClient(id uuid.UUID) (model.Client, error) {
	client, err := s.repo.GetClient(id)
	if err != nil {
		return model.Client{}, mapRepoError(err)
	}
	return client, nil
}

func (s *ConsultancyService) ListClients() []model.Client {
	return s.repo.ListClients()
}

func (s *ConsultancyService) SelectClient(ctx context.Context, id uuid.UUID) (model.Client, error) {
	client, err := s.repo.GetClient(id)
	if err != nil {
		return model.Client{}, mapRepoError(err)
	}
	if err := s.repo.SetCurrentClient(ctx, &client); err != nil {
		return model.Client{}, mapRepoError(err)
	}
	return client, nil
}

func (s *ConsultancyService) ClearSelection(ctx context.Context) error {
	return mapRepoError(s.repo.SetCurrentClient(ctx, nil))
}

// CurrentClient returns the selected client or ErrNoCurrentClient.
func (s *ConsultancyService) CurrentClient() (model.Client, error) {
	current := s.repo.CurrentClient()
	if current == nil {
		return model.Client{}, ErrNoCurrentClient
	}
	return *current, nil
}
