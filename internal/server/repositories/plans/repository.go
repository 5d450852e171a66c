package plans

import (
	"context"

	"github.com/dmitrijs2005/tradejournal/internal/server/models"
)

// Collection is the document collection holding plans.
const Collection = "plans"

type Repository interface {
	Create(ctx context.Context, plan *models.Plan) (*models.Plan, error)
	GetByID(ctx context.Context, id string) (*models.Plan, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Plan, error)
	DeleteCascade(ctx context.Context, id string) (int, error)
}
