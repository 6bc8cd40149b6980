// Package memory provides in-memory Local and Remote store implementations.
// They back tests and demo consumers, and can inject failures to exercise
// the ledger's fallback paths.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/ycaws1/expensy/expense"
	"github.com/ycaws1/expensy/store"
)

var errInjected = errors.New("injected failure")

// Ensure interface conformance
var (
	_ store.Local  = (*Local)(nil)
	_ store.Remote = (*Remote)(nil)
)

// Local holds a snapshot in memory with Local-port semantics.
type Local struct {
	mu       sync.Mutex
	snapshot []expense.Expense
	hasSaved bool
	failAll  bool
}

func NewLocal() *Local { return &Local{} }

// FailAll makes every subsequent call fail with a *PersistenceError.
func (l *Local) FailAll(fail bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failAll = fail
}

func (l *Local) LoadAll(_ context.Context) ([]expense.Expense, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failAll {
		return nil, &store.PersistenceError{Op: "load", Err: errInjected}
	}
	return append([]expense.Expense(nil), l.snapshot...), nil
}

func (l *Local) SaveAll(_ context.Context, records []expense.Expense) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failAll {
		return &store.PersistenceError{Op: "save", Err: errInjected}
	}
	l.snapshot = append([]expense.Expense(nil), records...)
	l.hasSaved = true
	return nil
}

// Saved reports whether a snapshot has been written at least once.
func (l *Local) Saved() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hasSaved
}

// Remote mimics the authoritative backend with Remote-port semantics.
// Server-side id assignment starts at 1 and increments.
type Remote struct {
	mu      sync.Mutex
	byID    map[int64]expense.Expense
	order   []int64
	nextID  int64
	failAll bool
	calls   map[string]int
}

func NewRemote() *Remote {
	return &Remote{
		byID:   make(map[int64]expense.Expense),
		nextID: 1,
		calls:  make(map[string]int),
	}
}

// FailAll makes every subsequent call fail with a *RemoteError, simulating
// an unreachable backend.
func (r *Remote) FailAll(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failAll = fail
}

// Seed installs records directly, bypassing failure injection.
func (r *Remote) Seed(records ...expense.Expense) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range records {
		if _, ok := r.byID[e.ID]; !ok {
			r.order = append(r.order, e.ID)
		}
		r.byID[e.ID] = e
		if e.ID >= r.nextID {
			r.nextID = e.ID + 1
		}
	}
}

// Records returns the stored records in insertion order.
func (r *Remote) Records() []expense.Expense {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]expense.Expense, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Calls returns how many times the named operation was attempted.
func (r *Remote) Calls(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[op]
}

func (r *Remote) List(_ context.Context, userID string) ([]expense.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["list"]++
	if r.failAll {
		return nil, &store.RemoteError{Op: "list", Err: errInjected}
	}
	out := make([]expense.Expense, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out, nil
}

func (r *Remote) Insert(_ context.Context, e expense.Expense) (expense.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["insert"]++
	if r.failAll {
		return expense.Expense{}, &store.RemoteError{Op: "insert", Err: errInjected}
	}
	if e.ID == 0 {
		e.ID = r.nextID
	}
	if e.ID >= r.nextID {
		r.nextID = e.ID + 1
	}
	if _, ok := r.byID[e.ID]; !ok {
		r.order = append(r.order, e.ID)
	}
	r.byID[e.ID] = e
	return e, nil
}

func (r *Remote) Update(_ context.Context, id int64, e expense.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["update"]++
	if r.failAll {
		return &store.RemoteError{Op: "update", Err: errInjected}
	}
	if _, ok := r.byID[id]; !ok {
		return &store.RemoteError{Op: "update", Err: errors.New("no such row")}
	}
	e.ID = id
	r.byID[id] = e
	return nil
}

func (r *Remote) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["delete"]++
	if r.failAll {
		return &store.RemoteError{Op: "delete", Err: errInjected}
	}
	if _, ok := r.byID[id]; !ok {
		return &store.RemoteError{Op: "delete", Err: errors.New("no such row")}
	}
	delete(r.byID, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
