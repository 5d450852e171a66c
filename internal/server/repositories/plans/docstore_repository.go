package plans

import (
	"context"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/tradejournal/internal/server/docstore"
	"github.com/dmitrijs2005/tradejournal/internal/server/models"
	"github.com/dmitrijs2005/tradejournal/internal/server/repositories/steps"
	"github.com/google/uuid"
)

type DocumentRepository struct {
	store docstore.Store
}

func NewDocumentRepository(store docstore.Store) *DocumentRepository {
	return &DocumentRepository{store: store}
}

func (r *DocumentRepository) Create(ctx context.Context, plan *models.Plan) (*models.Plan, error) {
	plan.ID = uuid.NewString()
	if err := r.store.Set(ctx, Collection, plan.ID, plan); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return plan, nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.Plan, error) {
	return docstore.GetAs[models.Plan](ctx, r.store, Collection, id)
}

// ListByUser returns the user's plans oldest first.
func (r *DocumentRepository) ListByUser(ctx context.Context, userID string) ([]*models.Plan, error) {
	found, err := docstore.FindAs[models.Plan](ctx, r.store, Collection, "userId", userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].CreatedAt != found[j].CreatedAt {
			return found[i].CreatedAt < found[j].CreatedAt
		}
		return found[i].ID < found[j].ID
	})
	return found, nil
}

// DeleteCascade removes the plan together with all of its steps in one
// batch and returns the number of steps removed.
func (r *DocumentRepository) DeleteCascade(ctx context.Context, id string) (int, error) {
	stepDocs, err := docstore.FindAs[models.Step](ctx, r.store, steps.Collection, "planId", id)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	b := r.store.NewBatch()
	for _, s := range stepDocs {
		b.Delete(steps.Collection, s.ID)
	}
	b.Delete(Collection, id)

	if err := b.Commit(ctx); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return len(stepDocs), nil
}
