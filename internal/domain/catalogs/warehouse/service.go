package warehouse

import (
	"context"
	"fmt"
	"strings"

	"restostock/internal/core/entity"
	"restostock/internal/core/id"
	"restostock/internal/domain"
	"restostock/pkg/logger"
)

// Service provides business logic for the Warehouse catalog.
type Service struct {
	repo Repository
	now  entity.Clock
}

// NewService creates a new Warehouse service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: entity.SystemClock}
}

// CreateInput is the set of fields accepted on creation.
type CreateInput struct {
	Name           string
	Type           WarehouseType
	MinTemperature *float64
	MaxTemperature *float64
	Capacity       *float64
}

// Create registers a warehouse.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Warehouse, error) {
	w := &Warehouse{
		BaseEntity:     entity.NewBaseEntity(s.now()),
		Name:           strings.TrimSpace(in.Name),
		Type:           in.Type,
		MinTemperature: in.MinTemperature,
		MaxTemperature: in.MaxTemperature,
		Capacity:       in.Capacity,
		IsActive:       true,
	}
	if w.Type == "" {
		w.Type = TypeGeneral
	}
	if err := w.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, fmt.Errorf("create warehouse: %w", err)
	}

	logger.Info(ctx, "warehouse created", "id", w.ID, "name", w.Name, "type", w.Type)
	return w, nil
}

// Get returns a warehouse by id.
func (s *Service) Get(ctx context.Context, warehouseID id.ID) (*Warehouse, error) {
	return s.repo.GetByID(ctx, warehouseID)
}

// List returns a page of warehouses.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Warehouse], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}
