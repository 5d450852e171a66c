// Package respect scores how closely a trade followed its plan: the share
// of the plan's current checklist steps that were ticked, as a whole
// percentage.
package respect

import (
	"context"
	"fmt"
	"math"
)

// StepLister returns the ids of the steps currently attached to a plan.
type StepLister interface {
	StepIDs(ctx context.Context, planID string) ([]string, error)
}

type Calculator struct {
	steps StepLister
}

func NewCalculator(steps StepLister) *Calculator {
	return &Calculator{steps: steps}
}

// Compute returns the percentage of the plan's steps found in checked.
// Duplicate and stale ids are ignored. A nil or blank plan scores 0.
func (c *Calculator) Compute(ctx context.Context, planID *string, checked []string) (int, error) {
	if planID == nil || *planID == "" {
		return 0, nil
	}

	ids, err := c.steps.StepIDs(ctx, *planID)
	if err != nil {
		return 0, fmt.Errorf("error loading plan steps: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	current := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		current[id] = struct{}{}
	}

	done := 0
	seen := make(map[string]struct{}, len(checked))
	for _, id := range checked {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := current[id]; ok {
			done++
		}
	}

	return Percent(done, len(current)), nil
}

// Percent is round(100*done/total) with halves rounded up, clamped to
// [0, 100]. A non-positive total yields 0.
func Percent(done, total int) int {
	if total <= 0 || done <= 0 {
		return 0
	}
	if done >= total {
		return 100
	}
	if total > math.MaxInt/200 {
		return int(math.Floor(100*float64(done)/float64(total) + 0.5))
	}
	return (200*done + total) / (2 * total)
}
