package users

import (
	"context"

	"github.com/dmitrijs2005/tradejournal/internal/server/models"
)

// Collection is the document collection holding users.
const Collection = "users"

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id string, hash string) error
	List(ctx context.Context) ([]*models.User, error)
}
