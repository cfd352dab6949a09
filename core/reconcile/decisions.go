package reconcile

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidTransition is returned when a decision is moved to a state it
// cannot reach from its current one.
var ErrInvalidTransition = errors.New("invalid decision transition")

// DecisionState is the lifecycle position of one remote item's decision.
type DecisionState string

const (
	// DecisionUnmatched means no operation is queued for the item.
	DecisionUnmatched DecisionState = "unmatched"
	// DecisionPending means an operation is queued but not yet applied.
	DecisionPending DecisionState = "pending"
	// DecisionResolved means the queued operation was applied.
	DecisionResolved DecisionState = "resolved"
)

type decision struct {
	state DecisionState
	op    Operation
}

// Decisions accumulates user decisions across interactions until a batch is
// submitted. It is safe for concurrent use.
type Decisions struct {
	mu    sync.Mutex
	items map[uint]*decision
	order []uint
}

// NewDecisions creates an empty decision set.
func NewDecisions() *Decisions {
	return &Decisions{items: make(map[uint]*decision)}
}

// Propose registers a remote item from a matching run. Items already known
// keep their state.
func (d *Decisions) Propose(id uint) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.items[id]; ok {
		return
	}
	d.items[id] = &decision{state: DecisionUnmatched}
	d.order = append(d.order, id)
}

// Queue moves an unmatched item to pending with the given operation.
// Queuing again while pending replaces the operation.
func (d *Decisions) Queue(op Operation) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	dec, ok := d.items[op.RemoteItemID]
	if !ok {
		dec = &decision{state: DecisionUnmatched}
		d.items[op.RemoteItemID] = dec
		d.order = append(d.order, op.RemoteItemID)
	}
	if dec.state == DecisionResolved {
		return fmt.Errorf("%w: item %d is %s", ErrInvalidTransition, op.RemoteItemID, dec.state)
	}

	dec.state = DecisionPending
	dec.op = op
	return nil
}

// Withdraw drops the queued operation and returns the item to unmatched.
func (d *Decisions) Withdraw(id uint) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	dec, ok := d.items[id]
	if !ok || dec.state != DecisionPending {
		return fmt.Errorf("%w: item %d is not pending", ErrInvalidTransition, id)
	}

	dec.state = DecisionUnmatched
	dec.op = Operation{}
	return nil
}

// Resolve applies a batch outcome. Successful items become resolved, failed
// items stay pending so they can be resubmitted.
func (d *Decisions) Resolve(result BatchResult) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, id := range result.Success {
		if dec, ok := d.items[id]; ok && dec.state == DecisionPending {
			dec.state = DecisionResolved
		}
	}
}

// State returns the current state of an item. Unknown items are unmatched.
func (d *Decisions) State(id uint) DecisionState {
	d.mu.Lock()
	defer d.mu.Unlock()

	if dec, ok := d.items[id]; ok {
		return dec.state
	}
	return DecisionUnmatched
}

// Pending returns the queued operations in the order their items were first seen.
func (d *Decisions) Pending() []Operation {
	d.mu.Lock()
	defer d.mu.Unlock()

	ops := make([]Operation, 0)
	for _, id := range d.order {
		if dec := d.items[id]; dec.state == DecisionPending {
			ops = append(ops, dec.op)
		}
	}
	return ops
}
