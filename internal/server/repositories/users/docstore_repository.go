package users

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tradejournal/internal/common"
	"github.com/dmitrijs2005/tradejournal/internal/server/docstore"
	"github.com/dmitrijs2005/tradejournal/internal/server/models"
	"github.com/google/uuid"
)

type DocumentRepository struct {
	store docstore.Store
}

func NewDocumentRepository(store docstore.Store) *DocumentRepository {
	return &DocumentRepository{store: store}
}

// Create stores a new user under a fresh id. The email is normalized and
// must not belong to another user.
func (r *DocumentRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.Email = common.NormalizeEmail(user.Email)

	existing, err := docstore.FindAs[models.User](ctx, r.store, Collection, "email", user.Email)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if len(existing) > 0 {
		return nil, common.ErrorAlreadyExists
	}

	user.ID = uuid.NewString()
	if err := r.store.Set(ctx, Collection, user.ID, user); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return docstore.GetAs[models.User](ctx, r.store, Collection, id)
}

func (r *DocumentRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	found, err := docstore.FindAs[models.User](ctx, r.store, Collection, "email", common.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if len(found) == 0 {
		return nil, common.ErrorNotFound
	}
	return found[0], nil
}

func (r *DocumentRepository) UpdatePasswordHash(ctx context.Context, id string, hash string) error {
	b := r.store.NewBatch()
	b.Update(Collection, id, map[string]any{"passwordHash": hash})
	return b.Commit(ctx)
}

func (r *DocumentRepository) List(ctx context.Context) ([]*models.User, error) {
	return docstore.ListAs[models.User](ctx, r.store, Collection)
}
