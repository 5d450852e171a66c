package transactions

import (
	"context"
	"errors"
	"fmt"
	"sort"

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

func (r *DocumentRepository) Create(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	tx.ID = uuid.NewString()
	if tx.CheckedStepIDs == nil {
		tx.CheckedStepIDs = []string{}
	}
	if err := r.store.Set(ctx, Collection, tx.ID, tx); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return tx, nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	return docstore.GetAs[models.Transaction](ctx, r.store, Collection, id)
}

// ListByUser returns the user's transactions, most recent entry first.
func (r *DocumentRepository) ListByUser(ctx context.Context, userID string) ([]*models.Transaction, error) {
	found, err := docstore.FindAs[models.Transaction](ctx, r.store, Collection, "userId", userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	sort.Slice(found, func(i, j int) bool {
		if !found[i].DateIn.Equal(found[j].DateIn) {
			return found[i].DateIn.After(found[j].DateIn)
		}
		return found[i].ID < found[j].ID
	})
	return found, nil
}

// Update replaces the whole stored document.
func (r *DocumentRepository) Update(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	if _, err := r.store.Get(ctx, Collection, tx.ID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if tx.CheckedStepIDs == nil {
		tx.CheckedStepIDs = []string{}
	}
	if err := r.store.Set(ctx, Collection, tx.ID, tx); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return tx, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) (bool, error) {
	return r.store.Delete(ctx, Collection, id)
}
