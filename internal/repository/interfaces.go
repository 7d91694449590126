package repository

import (
	"context"

	"github.com/alexanderramin/coach/internal/domain"
)

type PlanDraftRepo interface {
	Create(ctx context.Context, d *domain.PlanDraft) error
	GetByID(ctx context.Context, id string) (*domain.PlanDraft, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.PlanDraft, error)
	UpdatePlan(ctx context.Context, id string, plan []domain.PlanPhase) error
	Delete(ctx context.Context, id string) error
}

type CVRepo interface {
	Get(ctx context.Context, userID string) (*domain.CVRecord, error)
	Upsert(ctx context.Context, rec *domain.CVRecord) error
}
