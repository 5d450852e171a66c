package assets

import (
	"context"
	"fmt"
	"sort"

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

func (r *DocumentRepository) Create(ctx context.Context, asset *models.Asset) (*models.Asset, error) {
	asset.ID = uuid.NewString()
	if err := r.store.Set(ctx, Collection, asset.ID, asset); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return asset, nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	return docstore.GetAs[models.Asset](ctx, r.store, Collection, id)
}

// ListByUser returns the user's assets sorted by name.
func (r *DocumentRepository) ListByUser(ctx context.Context, userID string) ([]*models.Asset, error) {
	found, err := docstore.FindAs[models.Asset](ctx, r.store, Collection, "userId", userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].AssetName != found[j].AssetName {
			return found[i].AssetName < found[j].AssetName
		}
		return found[i].ID < found[j].ID
	})
	return found, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) (bool, error) {
	return r.store.Delete(ctx, Collection, id)
}
