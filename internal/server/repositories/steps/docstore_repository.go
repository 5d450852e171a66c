package steps

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

func (r *DocumentRepository) Create(ctx context.Context, step *models.Step) (*models.Step, error) {
	step.ID = uuid.NewString()
	if err := r.store.Set(ctx, Collection, step.ID, step); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return step, nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.Step, error) {
	return docstore.GetAs[models.Step](ctx, r.store, Collection, id)
}

// ListByPlan returns the plan's steps by ascending order, then id.
func (r *DocumentRepository) ListByPlan(ctx context.Context, planID string) ([]*models.Step, error) {
	found, err := docstore.FindAs[models.Step](ctx, r.store, Collection, "planId", planID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	SortSteps(found)
	return found, nil
}

func (r *DocumentRepository) StepIDs(ctx context.Context, planID string) ([]string, error) {
	found, err := r.ListByPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(found))
	for _, s := range found {
		ids = append(ids, s.ID)
	}
	return ids, nil
}

// Update replaces a stored step. It fails with common.ErrorNotFound when
// the step no longer exists.
func (r *DocumentRepository) Update(ctx context.Context, step *models.Step) (*models.Step, error) {
	b := r.store.NewBatch()
	b.Update(Collection, step.ID, map[string]any{
		"planId": step.PlanID,
		"title":  step.Title,
		"order":  step.Order,
	})
	if err := b.Commit(ctx); err != nil {
		return nil, err
	}
	return step, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) (bool, error) {
	return r.store.Delete(ctx, Collection, id)
}

// Reorder assigns orders 1..K to the ids that belong to planID, in the
// given sequence. Foreign and unknown ids are skipped. Writes are split
// into batches of at most ReorderChunkSize; each batch is atomic on its own.
func (r *DocumentRepository) Reorder(ctx context.Context, planID string, ids []string) ([]*models.Step, error) {
	existing, err := r.ListByPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	allowed := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		allowed[s.ID] = struct{}{}
	}

	pos := 1
	seen := make(map[string]struct{}, len(ids))
	b := r.store.NewBatch()
	for _, id := range ids {
		if _, ok := allowed[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		b.Update(Collection, id, map[string]any{"order": pos})
		pos++

		if b.Len() == ReorderChunkSize {
			if err := b.Commit(ctx); err != nil {
				return nil, fmt.Errorf("db error: %w", err)
			}
			b = r.store.NewBatch()
		}
	}
	if err := b.Commit(ctx); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return r.ListByPlan(ctx, planID)
}

// SortSteps orders steps by ascending Order, then ID.
func SortSteps(steps []*models.Step) {
	sort.Slice(steps, func(i, j int) bool {
		if steps[i].Order != steps[j].Order {
			return steps[i].Order < steps[j].Order
		}
		return steps[i].ID < steps[j].ID
	})
}
