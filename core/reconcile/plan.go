package reconcile

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ApplyPlan executes a plan through the mutator. Each action runs independently:
// a failed action is recorded in the result and does not stop the others.
// With DryRun set, actions are counted as if they had succeeded.
func ApplyPlan(ctx context.Context, mutator Mutator, plan *Plan, opts ApplyOptions) *ApplyResult {
	result := &ApplyResult{CreatedIDs: make(map[string]string)}
	if plan == nil {
		return result
	}

	if opts.DryRun {
		result.Created = plan.Summary.Creates
		result.Updated = plan.Summary.Updates
		result.Skipped = plan.Summary.Skips
		result.Deleted = plan.Summary.Deletes
		return result
	}

	publisher, _ := mutator.(Publisher)

	var mu sync.Mutex
	record := func(action Action, id string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			result.Errors = append(result.Errors, ItemError{Key: action.Key, Action: action.Type, Err: err})
			return
		}
		switch action.Type {
		case ActionCreate:
			result.Created++
			result.CreatedIDs[action.Key] = id
		case ActionUpdate:
			result.Updated++
		case ActionDelete:
			result.Deleted++
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	limit := opts.Concurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for _, action := range plan.Actions {
		if action.Type == ActionSkip {
			result.Skipped++
			continue
		}
		action := action
		g.Go(func() error {
			id, err := applyAction(gctx, mutator, publisher, action)
			record(action, id, err)
			// Item failures never cancel the group.
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(result.Errors, func(i, j int) bool {
		return result.Errors[i].Key < result.Errors[j].Key
	})
	return result
}

func applyAction(ctx context.Context, mutator Mutator, publisher Publisher, action Action) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch action.Type {
	case ActionCreate:
		id, err := mutator.Create(ctx, action.Desired.Fields)
		if err != nil {
			return "", err
		}
		if publisher != nil && id != "" {
			if err := publisher.Publish(ctx, []string{id}); err != nil {
				return "", err
			}
		}
		return id, nil
	case ActionUpdate:
		if err := mutator.Update(ctx, action.TargetID, action.Desired.Fields); err != nil {
			return "", err
		}
		if publisher != nil {
			if err := publisher.Publish(ctx, []string{action.TargetID}); err != nil {
				return "", err
			}
		}
		return action.TargetID, nil
	case ActionDelete:
		return action.TargetID, mutator.Delete(ctx, action.TargetID)
	}
	return "", nil
}
