package dto

import (
	"github.com/vastahq/vasta/internal/plan"
)

// PlanResponse represents a plan in API responses
type PlanResponse struct {
	plan.Plan
}

// ListPlansResponse represents the public plan table
type ListPlansResponse struct {
	Items []PlanResponse `json:"items"`
	Total int            `json:"total"`
}
