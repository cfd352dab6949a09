package reconcile

import (
	"context"
	"errors"
	"fmt"
)

// ErrMissingLocalItem is reported when a map operation names no local item.
var ErrMissingLocalItem = errors.New("local item id is required for map")

// Mutator applies single mapping operations to a store.
type Mutator interface {
	// Map links the remote item to the local item.
	Map(ctx context.Context, remoteItemID, localItemID uint) error

	// Unmap clears the link of the remote item.
	Unmap(ctx context.Context, remoteItemID uint) error

	// Create builds a local item from the remote item and links them.
	Create(ctx context.Context, remoteItemID uint) error

	// Refresh overwrites the linked local item with the remote item's data.
	Refresh(ctx context.Context, remoteItemID uint) error
}

// ApplyOperations runs every operation independently against the mutator.
// A failing operation is recorded in the result and never stops its siblings.
// Success and failure ids are remote item ids for every operation type.
func ApplyOperations(ctx context.Context, m Mutator, ops []Operation) BatchResult {
	result := BatchResult{
		Success: []uint{},
		Failed:  []Failure{},
	}

	for _, op := range ops {
		if err := applyOne(ctx, m, op); err != nil {
			result.Failed = append(result.Failed, Failure{ID: op.RemoteItemID, Error: err.Error()})
			continue
		}
		result.Success = append(result.Success, op.RemoteItemID)
	}

	return result
}

func applyOne(ctx context.Context, m Mutator, op Operation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch op.Type {
	case OpMap:
		if op.LocalItemID == 0 {
			return ErrMissingLocalItem
		}
		return m.Map(ctx, op.RemoteItemID, op.LocalItemID)
	case OpUnmap:
		return m.Unmap(ctx, op.RemoteItemID)
	case OpCreate:
		return m.Create(ctx, op.RemoteItemID)
	case OpRefresh:
		return m.Refresh(ctx, op.RemoteItemID)
	default:
		return fmt.Errorf("unknown operation type %q", op.Type)
	}
}
