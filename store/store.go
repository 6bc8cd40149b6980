// Package store defines the persistence ports the ledger writes through:
// a Local snapshot store that is always updated synchronously, and a Remote
// CRUD store that is updated best-effort.
package store

import (
	"context"
	"fmt"

	"github.com/ycaws1/expensy/expense"
)

// Ports for the ledger's persistence adapters.
type (
	// Local is durable on-device persistence of the full ledger snapshot.
	// Whole-snapshot semantics: SaveAll overwrites everything previously
	// persisted. Simplicity over efficiency is deliberate; the record count
	// is personal-finance scale.
	Local interface {
		// LoadAll returns the persisted snapshot. Absence of any prior
		// snapshot is a valid empty state, not an error.
		LoadAll(ctx context.Context) ([]expense.Expense, error)

		// SaveAll overwrites the persisted snapshot. It fails with a
		// *PersistenceError only on underlying medium failure.
		SaveAll(ctx context.Context, records []expense.Expense) error
	}

	// Remote is the authoritative backend, reached over the network. It is
	// stateless between calls and never retries internally; retry policy
	// (or the absence of one) lives in the ledger. Timeouts are the
	// adapter's responsibility.
	Remote interface {
		// List returns all records belonging to userID.
		List(ctx context.Context, userID string) ([]expense.Expense, error)

		// Insert stores a record and returns it as stored. When e.ID is
		// zero the remote assigns the id.
		Insert(ctx context.Context, e expense.Expense) (expense.Expense, error)

		// Update replaces the record with the given id.
		Update(ctx context.Context, id int64, e expense.Expense) error

		// Delete removes the record with the given id.
		Delete(ctx context.Context, id int64) error
	}
)

// PersistenceError wraps a local medium failure. The ledger treats it as
// non-fatal: the in-memory state stays valid for the session.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("local store %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// RemoteError wraps a network/backend failure. It is never surfaced as an
// operation failure by the ledger, only observed by its sinks.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote store %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }
