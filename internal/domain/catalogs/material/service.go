package material

import (
	"context"
	"fmt"
	"strings"

	"restostock/internal/core/entity"
	"restostock/internal/core/id"
	"restostock/internal/core/types"
	"restostock/internal/domain"
	"restostock/pkg/logger"
)

// Service provides business logic for the Material catalog.
type Service struct {
	repo Repository
	now  entity.Clock
}

// NewService creates a new Material service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: entity.SystemClock}
}

// CreateInput is the set of fields accepted on creation.
type CreateInput struct {
	Code               string
	Name               string
	Category           string
	PurchaseUnit       types.Unit
	ConsumptionUnit    types.Unit
	MinStockLevel      types.Quantity
	MaxStockLevel      *types.Quantity
	AverageCost        types.Money
	DefaultWarehouseID *id.ID
}

// Create registers a material with zero stock. Stock arrives through movements.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Material, error) {
	m := &Material{
		BaseEntity:         entity.NewBaseEntity(s.now()),
		Code:               strings.TrimSpace(in.Code),
		Name:               strings.TrimSpace(in.Name),
		Category:           in.Category,
		PurchaseUnit:       in.PurchaseUnit,
		ConsumptionUnit:    in.ConsumptionUnit,
		MinStockLevel:      in.MinStockLevel,
		MaxStockLevel:      in.MaxStockLevel,
		AverageCost:        in.AverageCost,
		DefaultWarehouseID: in.DefaultWarehouseID,
		IsActive:           true,
	}
	if err := m.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create material: %w", err)
	}

	logger.Info(ctx, "material created", "id", m.ID, "name", m.Name)
	return m, nil
}

// Get returns a material by id.
func (s *Service) Get(ctx context.Context, materialID id.ID) (*Material, error) {
	return s.repo.GetByID(ctx, materialID)
}

// List returns a page of materials.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Material], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}
