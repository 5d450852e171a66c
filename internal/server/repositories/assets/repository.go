package assets

import (
	"context"

	"github.com/dmitrijs2005/tradejournal/internal/server/models"
)

// Collection is the document collection holding assets.
const Collection = "assets"

type Repository interface {
	Create(ctx context.Context, asset *models.Asset) (*models.Asset, error)
	GetByID(ctx context.Context, id string) (*models.Asset, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Asset, error)
	Delete(ctx context.Context, id string) (bool, error)
}
