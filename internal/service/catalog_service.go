package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/tent-booking/internal/model"
	"github.com/iliyamo/tent-booking/internal/repository"
)

type TentTypeStore interface {
	Create(ctx context.Context, t *model.TentType) error
	GetByID(ctx context.Context, id uint64) (*model.TentType, error)
	ListAvailable(ctx context.Context) ([]model.TentType, error)
	SetAvailability(ctx context.Context, id uint64, available bool) error
}

// CatalogService exposes the tent catalog.  Reads are public; Create and
// SetAvailability back the administrative CLI.
type CatalogService interface {
	List(ctx context.Context) ([]model.TentType, error)
	Get(ctx context.Context, id uint64) (*model.TentType, error)
	Create(ctx context.Context, in TentTypeInput) (*model.TentType, error)
	SetAvailability(ctx context.Context, id uint64, available bool) error
}

type TentTypeInput struct {
	Name        string
	Description string
	Capacity    uint32
	PricePerDay model.Cents
	IsAvailable bool
}

type catalogService struct {
	store TentTypeStore
}

func NewCatalogService(store TentTypeStore) CatalogService {
	return &catalogService{store: store}
}

func (s *catalogService) List(ctx context.Context) ([]model.TentType, error) {
	return s.store.ListAvailable(ctx)
}

// Get returns an available tent type.  Unavailable and missing rows are
// both reported as ErrNotFound.
func (s *catalogService) Get(ctx context.Context, id uint64) (*model.TentType, error) {
	t, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrTentTypeNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !t.IsAvailable {
		return nil, ErrNotFound
	}
	return t, nil
}

func (s *catalogService) Create(ctx context.Context, in TentTypeInput) (*model.TentType, error) {
	verr := &ValidationError{}
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		verr.Add("name", msgRequired)
	case len(name) > 100:
		verr.Add("name", maxLength(100))
	}
	if in.Capacity < 1 {
		verr.Add("capacity", minValue(1))
	}
	if in.PricePerDay < 1 {
		verr.Add("price_per_day", "Ensure this value is greater than or equal to 0.01.")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	t := &model.TentType{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Capacity:    in.Capacity,
		PricePerDay: in.PricePerDay,
		IsAvailable: in.IsAvailable,
	}
	if err := s.store.Create(ctx, t); err != nil {
		if errors.Is(err, repository.ErrTentTypeExists) {
			return nil, invalid("name", "Tent type with this name already exists.")
		}
		return nil, err
	}
	return t, nil
}

func (s *catalogService) SetAvailability(ctx context.Context, id uint64, available bool) error {
	err := s.store.SetAvailability(ctx, id, available)
	if errors.Is(err, repository.ErrTentTypeNotFound) {
		return ErrNotFound
	}
	return err
}
