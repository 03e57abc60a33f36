package service

import (
	"context"

	"github.com/vastahq/vasta/internal/api/dto"
	"github.com/vastahq/vasta/internal/plan"
)

// PlanService exposes the public plan table
type PlanService interface {
	GetPlans(ctx context.Context) (*dto.ListPlansResponse, error)
}

type planService struct {
	catalog *plan.Catalog
}

func NewPlanService(catalog *plan.Catalog) PlanService {
	return &planService{catalog: catalog}
}

func (s *planService) GetPlans(_ context.Context) (*dto.ListPlansResponse, error) {
	items := make([]dto.PlanResponse, 0, len(s.catalog.List()))
	for _, p := range s.catalog.List() {
		items = append(items, dto.PlanResponse{Plan: p})
	}

	return &dto.ListPlansResponse{
		Items: items,
		Total: len(items),
	}, nil
}
