// Package ledger maintains the authoritative in-memory working set of
// expense records and reconciles it with a local snapshot store and a
// remote CRUD store under a local-first, remote-best-effort policy.
//
// Every mutation runs in two phases. Phase 1 is synchronous and atomic:
// validate, mutate the in-memory set, persist the full snapshot locally.
// Phase 2 is a detached best-effort remote attempt whose outcome is only
// ever observed by the configured sinks; a remote failure never fails the
// operation and never rolls back local state.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ycaws1/expensy/expense"
	"github.com/ycaws1/expensy/session"
	"github.com/ycaws1/expensy/store"
)

// NotFoundError reports a mutation aimed at an id the ledger does not hold,
// usually a stale edit or delete target.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("expense %d not found", e.ID)
}

// Config holds ledger tunables. The zero value is usable.
type Config struct {
	// MaxInFlightSync bounds concurrent best-effort remote attempts
	// (default: 4).
	MaxInFlightSync int64

	// Sinks observe the outcome of every remote attempt. When empty, a
	// slog-backed sink is installed.
	Sinks []Sink
}

// Ledger owns the in-memory record set for one session. Mutations are safe
// for concurrent callers; the mutex spans the whole synchronous phase so no
// partial state is ever observable.
type Ledger struct {
	local  store.Local
	remote store.Remote
	gate   session.Gate
	disp   *dispatcher

	mu      sync.Mutex
	records []expense.Expense
	lastID  int64
}

// New creates a ledger over the given stores. remote may be nil for a
// purely local session; gate must not be nil.
func New(local store.Local, remote store.Remote, gate session.Gate, cfg Config) *Ledger {
	maxInFlight := cfg.MaxInFlightSync
	if maxInFlight <= 0 {
		maxInFlight = 4
	}
	sinks := cfg.Sinks
	if len(sinks) == 0 {
		sinks = []Sink{slogSink{}}
	}
	return &Ledger{
		local:  local,
		remote: remote,
		gate:   gate,
		disp:   newDispatcher(maxInFlight, sinks),
	}
}

// Hydrate loads the initial record set. When a remote-capable session is
// active it treats the remote as ground truth, adopting its records and
// overwriting the local cache; on any remote failure it falls back to the
// local snapshot, and an empty snapshot is the valid first-run state. It
// only errors when ctx is already done.
func (l *Ledger) Hydrate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if userID, ok := l.remoteCapable(); ok {
		records, err := l.remote.List(ctx, userID)
		if err == nil {
			l.mu.Lock()
			l.adoptLocked(records)
			l.persistLocked(ctx)
			l.mu.Unlock()
			slog.InfoContext(ctx, "Ledger hydrated from remote store",
				"records", len(records))
			return nil
		}
		slog.WarnContext(ctx, "Remote hydration failed, falling back to local snapshot",
			"error", err)
	}

	records, err := l.local.LoadAll(ctx)
	if err != nil {
		// Local medium failure is non-fatal: start the session empty.
		slog.WarnContext(ctx, "Local snapshot unreadable, starting empty",
			"error", err)
		records = nil
	}

	l.mu.Lock()
	l.adoptLocked(records)
	l.mu.Unlock()
	slog.InfoContext(ctx, "Ledger hydrated from local snapshot",
		"records", len(records))
	return nil
}

// Add validates and inserts a new record at the head of the set. A zero id
// gets a locally-unique timestamp-derived one; a preset id that is already
// held fails with a *ValidationError on the id field. Returns the stored
// record.
func (l *Ledger) Add(ctx context.Context, candidate expense.Expense) (expense.Expense, error) {
	if err := candidate.Validate(); err != nil {
		return expense.Expense{}, err
	}

	l.mu.Lock()
	if candidate.ID == 0 {
		candidate.ID = l.nextIDLocked()
	} else {
		// Ids are unique within a ledger; a preset id must not collide
		// with a record already held.
		if l.indexLocked(candidate.ID) >= 0 {
			l.mu.Unlock()
			return expense.Expense{}, &expense.ValidationError{
				Field:  "id",
				Reason: fmt.Sprintf("id %d already in use", candidate.ID),
			}
		}
		if candidate.ID > l.lastID {
			l.lastID = candidate.ID
		}
	}
	// Most-recent-first is the display convention for the record list.
	l.records = append([]expense.Expense{candidate}, l.records...)
	l.persistLocked(ctx)
	l.mu.Unlock()

	if _, ok := l.remoteCapable(); ok {
		stored := candidate
		l.disp.dispatch(ctx, "insert", stored.ID, func(ctx context.Context) error {
			_, err := l.remote.Insert(ctx, stored)
			return err
		})
	}
	return candidate, nil
}

// Update replaces the record with the given id, keeping the id itself.
// Fails with *NotFoundError for an unknown id and *ValidationError for a
// bad candidate; both leave the ledger untouched.
func (l *Ledger) Update(ctx context.Context, id int64, candidate expense.Expense) (expense.Expense, error) {
	l.mu.Lock()
	idx := l.indexLocked(id)
	if idx < 0 {
		l.mu.Unlock()
		return expense.Expense{}, &NotFoundError{ID: id}
	}
	candidate.ID = id
	if err := candidate.Validate(); err != nil {
		l.mu.Unlock()
		return expense.Expense{}, err
	}
	l.records[idx] = candidate
	l.persistLocked(ctx)
	l.mu.Unlock()

	if _, ok := l.remoteCapable(); ok {
		stored := candidate
		l.disp.dispatch(ctx, "update", id, func(ctx context.Context) error {
			return l.remote.Update(ctx, id, stored)
		})
	}
	return candidate, nil
}

// Delete removes the record with the given id. Fails with *NotFoundError
// for an unknown id, leaving the ledger unchanged.
func (l *Ledger) Delete(ctx context.Context, id int64) error {
	l.mu.Lock()
	idx := l.indexLocked(id)
	if idx < 0 {
		l.mu.Unlock()
		return &NotFoundError{ID: id}
	}
	l.records = append(l.records[:idx], l.records[idx+1:]...)
	l.persistLocked(ctx)
	l.mu.Unlock()

	if _, ok := l.remoteCapable(); ok {
		l.disp.dispatch(ctx, "delete", id, func(ctx context.Context) error {
			return l.remote.Delete(ctx, id)
		})
	}
	return nil
}

// Records returns a defensive copy of the current snapshot, for display
// and aggregation.
func (l *Ledger) Records() []expense.Expense {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]expense.Expense(nil), l.records...)
}

// Len returns the number of records currently held.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Close waits for in-flight remote attempts to finish, bounded by ctx.
func (l *Ledger) Close(ctx context.Context) error {
	return l.disp.wait(ctx)
}

// remoteCapable consults the session gate. Absence of a user id forces
// local-only operation.
func (l *Ledger) remoteCapable() (string, bool) {
	if l.remote == nil {
		return "", false
	}
	return l.gate.CurrentUserID()
}

// adoptLocked replaces the record set and advances the id watermark so
// locally-assigned ids never collide with adopted ones.
func (l *Ledger) adoptLocked(records []expense.Expense) {
	l.records = append([]expense.Expense(nil), records...)
	for _, e := range records {
		if e.ID > l.lastID {
			l.lastID = e.ID
		}
	}
}

// persistLocked mirrors the in-memory set to the local store. A medium
// failure is logged and swallowed; the in-memory state stays authoritative
// for the session.
func (l *Ledger) persistLocked(ctx context.Context) {
	if err := l.local.SaveAll(ctx, l.records); err != nil {
		slog.WarnContext(ctx, "Local snapshot save failed, continuing in memory",
			"records", len(l.records),
			"error", err)
	}
}

// nextIDLocked assigns a timestamp-derived id, bumped past the watermark so
// ids stay unique even for rapid successive additions.
func (l *Ledger) nextIDLocked() int64 {
	id := time.Now().UnixMilli()
	if id <= l.lastID {
		id = l.lastID + 1
	}
	l.lastID = id
	return id
}

// indexLocked finds the position of id in the record set, or -1.
func (l *Ledger) indexLocked(id int64) int {
	for i, e := range l.records {
		if e.ID == id {
			return i
		}
	}
	return -1
}
