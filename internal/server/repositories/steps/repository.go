package steps

import (
	"context"

	"github.com/dmitrijs2005/tradejournal/internal/server/models"
)

// Collection is the document collection holding plan steps.
const Collection = "steps"

// ReorderChunkSize bounds the number of writes per reorder batch.
const ReorderChunkSize = 450

type Repository interface {
	Create(ctx context.Context, step *models.Step) (*models.Step, error)
	GetByID(ctx context.Context, id string) (*models.Step, error)
	ListByPlan(ctx context.Context, planID string) ([]*models.Step, error)
	StepIDs(ctx context.Context, planID string) ([]string, error)
	Update(ctx context.Context, step *models.Step) (*models.Step, error)
	Delete(ctx context.Context, id string) (bool, error)
	Reorder(ctx context.Context, planID string, ids []string) ([]*models.Step, error)
}
