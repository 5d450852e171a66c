package transactions

import (
	"context"

	"github.com/dmitrijs2005/tradejournal/internal/server/models"
)

// Collection is the document collection holding transactions.
const Collection = "transactions"

type Repository interface {
	Create(ctx context.Context, tx *models.Transaction) (*models.Transaction, error)
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Transaction, error)
	Update(ctx context.Context, tx *models.Transaction) (*models.Transaction, error)
	Delete(ctx context.Context, id string) (bool, error)
}
