package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/tradejournal/internal/common"
	"github.com/dmitrijs2005/tradejournal/internal/server/docstore"
	"github.com/dmitrijs2005/tradejournal/internal/server/models"
	"github.com/dmitrijs2005/tradejournal/internal/server/repositories/repomanager"
)

// MaxStepsPerPlan keeps a plan and all of its steps deletable in one batch.
const MaxStepsPerPlan = docstore.MaxBatchWrites - 1

// PlanService manages plans and their checklist steps. Steps are owned
// through their plan.
type PlanService struct {
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewPlanService(m repomanager.RepositoryManager) *PlanService {
	return &PlanService{repomanager: m, now: time.Now}
}

func (s *PlanService) ListPlans(ctx context.Context, userID string) ([]*models.Plan, error) {
	list, err := s.repomanager.Plans().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing plans: %w", err)
	}
	return list, nil
}

func (s *PlanService) CreatePlan(ctx context.Context, userID, title string) (*models.Plan, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, common.NewValidationError(common.CodeMissingFields, "title is required")
	}

	plan, err := s.repomanager.Plans().Create(ctx, &models.Plan{
		UserID:    userID,
		Title:     title,
		CreatedAt: s.now().UnixMilli(),
	})
	if err != nil {
		return nil, fmt.Errorf("error creating plan: %w", err)
	}
	return plan, nil
}

// DeletePlan removes the plan and all of its steps and returns the number
// of steps removed.
func (s *PlanService) DeletePlan(ctx context.Context, userID, planID string) (int, error) {
	if _, err := s.ownedPlan(ctx, userID, planID); err != nil {
		return 0, err
	}

	n, err := s.repomanager.Plans().DeleteCascade(ctx, planID)
	if err != nil {
		return 0, fmt.Errorf("error deleting plan: %w", err)
	}
	return n, nil
}

func (s *PlanService) ListSteps(ctx context.Context, userID, planID string) ([]*models.Step, error) {
	if _, err := s.ownedPlan(ctx, userID, planID); err != nil {
		return nil, err
	}

	list, err := s.repomanager.Steps().ListByPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("error listing steps: %w", err)
	}
	return list, nil
}

// CreateStep appends a step to the plan. Without an explicit order the
// step goes after the current last one.
func (s *PlanService) CreateStep(ctx context.Context, userID, planID, title string, order *int) (*models.Step, error) {
	if _, err := s.ownedPlan(ctx, userID, planID); err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, common.NewValidationError(common.CodeMissingFields, "title is required")
	}

	repo := s.repomanager.Steps()

	existing, err := repo.ListByPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("error listing steps: %w", err)
	}
	if len(existing) >= MaxStepsPerPlan {
		return nil, common.NewValidationError(common.CodeTooManySteps, fmt.Sprintf("a plan holds at most %d steps", MaxStepsPerPlan))
	}

	step := &models.Step{PlanID: planID, Title: title}
	if order != nil {
		step.Order = *order
	} else {
		step.Order = 1
		if len(existing) > 0 {
			step.Order = existing[len(existing)-1].Order + 1
		}
	}

	created, err := repo.Create(ctx, step)
	if err != nil {
		return nil, fmt.Errorf("error creating step: %w", err)
	}
	return created, nil
}

func (s *PlanService) UpdateStep(ctx context.Context, userID, stepID string, patch models.StepPatch) (*models.Step, error) {
	step, err := s.ownedStep(ctx, userID, stepID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, common.NewValidationError(common.CodeMissingFields, "title must not be blank")
		}
		step.Title = title
	}
	if patch.Order != nil {
		step.Order = *patch.Order
	}

	updated, err := s.repomanager.Steps().Update(ctx, step)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error updating step: %w", err)
	}
	return updated, nil
}

func (s *PlanService) DeleteStep(ctx context.Context, userID, stepID string) error {
	if _, err := s.ownedStep(ctx, userID, stepID); err != nil {
		return err
	}
	if _, err := s.repomanager.Steps().Delete(ctx, stepID); err != nil {
		return fmt.Errorf("error deleting step: %w", err)
	}
	return nil
}

// ReorderSteps renumbers the plan's steps following stepIDs. Ids that are
// not steps of the plan are ignored.
func (s *PlanService) ReorderSteps(ctx context.Context, userID, planID string, stepIDs []string) ([]*models.Step, error) {
	if _, err := s.ownedPlan(ctx, userID, planID); err != nil {
		return nil, err
	}
	if len(stepIDs) == 0 {
		return nil, common.NewValidationError(common.CodeMissingFields, "stepIds is required")
	}

	list, err := s.repomanager.Steps().Reorder(ctx, planID, stepIDs)
	if err != nil {
		return nil, fmt.Errorf("error reordering steps: %w", err)
	}
	return list, nil
}

// ownedPlan loads a plan and checks that userID owns it. Missing and
// foreign plans both yield common.ErrorNotFound.
func (s *PlanService) ownedPlan(ctx context.Context, userID, planID string) (*models.Plan, error) {
	return ownedPlan(ctx, s.repomanager, userID, planID)
}

func (s *PlanService) ownedStep(ctx context.Context, userID, stepID string) (*models.Step, error) {
	step, err := s.repomanager.Steps().GetByID(ctx, stepID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error getting step: %w", err)
	}
	if _, err := s.ownedPlan(ctx, userID, step.PlanID); err != nil {
		return nil, err
	}
	return step, nil
}

func ownedPlan(ctx context.Context, m repomanager.RepositoryManager, userID, planID string) (*models.Plan, error) {
	plan, err := m.Plans().GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error getting plan: %w", err)
	}
	if plan.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return plan, nil
}
