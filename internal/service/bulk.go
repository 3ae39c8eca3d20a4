package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"photovault/internal/model"
)

// Bulk operations fan out one independent transition per id and await
// the set. There is no multi-file transaction: partial failure is the
// expected outcome and is reported per id.

func (s *VaultService) BulkSoftDelete(ctx context.Context, caller model.Caller, ids []string) model.BulkResult {
	return s.fanOut(ctx, caller, ids, func(ctx context.Context, id string) error {
		_, err := s.SoftDelete(ctx, caller, id)
		return err
	})
}

func (s *VaultService) BulkRestore(ctx context.Context, caller model.Caller, ids []string) model.BulkResult {
	return s.fanOut(ctx, caller, ids, func(ctx context.Context, id string) error {
		_, err := s.Restore(ctx, caller, id)
		return err
	})
}

func (s *VaultService) BulkPurge(ctx context.Context, caller model.Caller, ids []string) model.BulkResult {
	return s.fanOut(ctx, caller, ids, func(ctx context.Context, id string) error {
		return s.Purge(ctx, caller, id)
	})
}

func (s *VaultService) fanOut(ctx context.Context, _ model.Caller, ids []string, op func(ctx context.Context, id string) error) model.BulkResult {
	result := model.BulkResult{
		Succeeded: make([]string, 0, len(ids)),
		Failed:    make([]model.BulkFailure, 0),
	}

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()

			err := op(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed = append(result.Failed, model.BulkFailure{ID: id, Reason: failureReason(err)})
				return
			}
			result.Succeeded = append(result.Succeeded, id)
		}(id)
	}
	wg.Wait()

	// Goroutine completion order is arbitrary; stable output keeps the
	// response deterministic for clients and tests.
	sort.Strings(result.Succeeded)
	sort.Slice(result.Failed, func(i, j int) bool { return result.Failed[i].ID < result.Failed[j].ID })

	return result
}

// failureReason collapses a per-item error to a stable code so callers
// can distinguish which items failed and why.
func failureReason(err error) string {
	switch {
	case errors.Is(err, model.ErrFileNotFound):
		return "not_found"
	case errors.Is(err, model.ErrForbidden):
		return "forbidden"
	case errors.Is(err, model.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, model.ErrUnauthenticated):
		return "unauthenticated"
	default:
		return err.Error()
	}
}
