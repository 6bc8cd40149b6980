package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ycaws1/expensy/expense"
	"github.com/ycaws1/expensy/session"
	"github.com/ycaws1/expensy/store/memory"
)

func candidate() expense.Expense {
	return expense.Expense{
		Date:          expense.NewDate(2025, 1, 20),
		Price:         expense.Money{Cents: 1250},
		Category:      expense.Food,
		PaymentMethod: expense.CreditCard,
		Description:   "Lunch",
	}
}

type env struct {
	local  *memory.Local
	remote *memory.Remote
	ledger *Ledger
}

func newEnv(t *testing.T, gate session.Gate) *env {
	t.Helper()
	local := memory.NewLocal()
	remote := memory.NewRemote()
	l := New(local, remote, gate, Config{})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		l.Close(ctx)
	})
	return &env{local: local, remote: remote, ledger: l}
}

// drain waits for all in-flight remote attempts so tests can assert on the
// remote store's contents.
func (e *env) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.ledger.Close(ctx); err != nil {
		t.Fatalf("drain: %v", err)
	}
}

func TestAddThenLookup(t *testing.T) {
	e := newEnv(t, session.Static("user-1"))
	ctx := context.Background()

	stored, err := e.ledger.Add(ctx, candidate())
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if stored.ID == 0 {
		t.Fatal("expected a locally-assigned id")
	}

	records := e.ledger.Records()
	if len(records) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(records))
	}
	if records[0] != stored {
		t.Fatalf("lookup mismatch: got %+v want %+v", records[0], stored)
	}
}

func TestAddValidatesAndLeavesStateUntouched(t *testing.T) {
	e := newEnv(t, session.Static("user-1"))
	ctx := context.Background()

	bad := candidate()
	bad.Category = "Groceries"
	if _, err := e.ledger.Add(ctx, bad); err == nil {
		t.Fatal("expected validation error")
	} else {
		var verr *expense.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected *ValidationError, got %T", err)
		}
	}

	if e.ledger.Len() != 0 {
		t.Fatal("rejected candidate must not enter the ledger")
	}
	e.drain(t)
	if e.remote.Calls("insert") != 0 {
		t.Fatal("rejected candidate must not reach the remote store")
	}
	if e.local.Saved() {
		t.Fatal("rejected candidate must not be persisted locally")
	}
}

func TestAddSyncsToRemote(t *testing.T) {
	e := newEnv(t, session.Static("user-1"))

	stored, err := e.ledger.Add(context.Background(), candidate())
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	e.drain(t)

	remote := e.remote.Records()
	if len(remote) != 1 || remote[0].ID != stored.ID {
		t.Fatalf("expected record %d on the remote, got %+v", stored.ID, remote)
	}
}

func TestAnonymousSessionSkipsRemote(t *testing.T) {
	e := newEnv(t, session.Anonymous())

	if _, err := e.ledger.Add(context.Background(), candidate()); err != nil {
		t.Fatalf("add: %v", err)
	}
	e.drain(t)

	if e.remote.Calls("insert") != 0 {
		t.Fatal("anonymous session must not attempt remote calls")
	}
	if e.ledger.Len() != 1 {
		t.Fatal("local mutation must still apply")
	}
}

func TestRemoteFailureIsInvisible(t *testing.T) {
	e := newEnv(t, session.Static("user-1"))
	e.remote.FailAll(true)
	ctx := context.Background()

	stored, err := e.ledger.Add(ctx, candidate())
	if err != nil {
		t.Fatalf("add must succeed despite failing remote: %v", err)
	}
	e.drain(t)

	// The local copy stays authoritative; nothing is rolled back.
	records := e.ledger.Records()
	if len(records) != 1 || records[0].ID != stored.ID {
		t.Fatalf("expected local record to survive remote failure, got %+v", records)
	}

	snapshot, err := e.local.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load local: %v", err)
	}
	if len(snapshot) != 1 {
		t.Fatalf("expected persisted snapshot, got %d records", len(snapshot))
	}
}

func TestUpdateThenDeleteWithFailingRemote(t *testing.T) {
	e := newEnv(t, session.Static("user-1"))
	e.remote.FailAll(true)
	ctx := context.Background()

	stored, err := e.ledger.Add(ctx, candidate())
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	edited := candidate()
	edited.Price = expense.Money{Cents: 9900}
	edited.Description = "Dinner"
	updated, err := e.ledger.Update(ctx, stored.ID, edited)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != stored.ID {
		t.Fatalf("update must keep the id, got %d want %d", updated.ID, stored.ID)
	}

	if err := e.ledger.Delete(ctx, stored.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	e.drain(t)

	if e.ledger.Len() != 0 {
		t.Fatal("ledger must not hold the deleted id")
	}
	snapshot, err := e.local.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load local: %v", err)
	}
	if len(snapshot) != 0 {
		t.Fatalf("local snapshot must not hold the deleted id, got %+v", snapshot)
	}
}

func TestUpdateUnknownID(t *testing.T) {
	e := newEnv(t, session.Static("user-1"))

	_, err := e.ledger.Update(context.Background(), 42, candidate())
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *NotFoundError, got %v", err)
	}
	if nf.ID != 42 {
		t.Fatalf("expected id 42 in error, got %d", nf.ID)
	}
}

func TestDeleteUnknownIDLeavesLedgerUnchanged(t *testing.T) {
	e := newEnv(t, session.Static("user-1"))
	ctx := context.Background()

	stored, err := e.ledger.Add(ctx, candidate())
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	err = e.ledger.Delete(ctx, stored.ID+1)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *NotFoundError, got %v", err)
	}

	// Failed delete is idempotent: same error again, no state change.
	if err := e.ledger.Delete(ctx, stored.ID+1); !errors.As(err, &nf) {
		t.Fatalf("expected *NotFoundError on retry, got %v", err)
	}
	if e.ledger.Len() != 1 {
		t.Fatal("failed delete must leave the ledger unchanged")
	}
	e.drain(t)
	if e.remote.Calls("delete") != 0 {
		t.Fatal("failed delete must not reach the remote store")
	}
}

func TestMostRecentFirstOrdering(t *testing.T) {
	e := newEnv(t, session.Anonymous())
	ctx := context.Background()

	first, _ := e.ledger.Add(ctx, candidate())
	second, _ := e.ledger.Add(ctx, candidate())

	records := e.ledger.Records()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != second.ID || records[1].ID != first.ID {
		t.Fatal("newest addition must sit at the head")
	}
}

func TestLocalIDsAreUnique(t *testing.T) {
	e := newEnv(t, session.Anonymous())
	ctx := context.Background()

	seen := make(map[int64]bool)
	for i := 0; i < 50; i++ {
		stored, err := e.ledger.Add(ctx, candidate())
		if err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
		if seen[stored.ID] {
			t.Fatalf("duplicate id %d", stored.ID)
		}
		seen[stored.ID] = true
	}
}

func TestAddRejectsDuplicatePresetID(t *testing.T) {
	e := newEnv(t, session.Static("user-1"))
	ctx := context.Background()

	first := candidate()
	first.ID = 77
	if _, err := e.ledger.Add(ctx, first); err != nil {
		t.Fatalf("add: %v", err)
	}

	dup := candidate()
	dup.ID = 77
	dup.Description = "Duplicate"
	_, err := e.ledger.Add(ctx, dup)
	var verr *expense.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.Field != "id" {
		t.Fatalf("expected failure on id field, got %q", verr.Field)
	}

	records := e.ledger.Records()
	if len(records) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(records))
	}
	if records[0].Description != first.Description {
		t.Fatal("rejected duplicate must not replace the existing record")
	}
	e.drain(t)
	if e.remote.Calls("insert") != 1 {
		t.Fatalf("expected one remote insert, got %d", e.remote.Calls("insert"))
	}
}

func TestLocalIDsAdvancePastAdopted(t *testing.T) {
	e := newEnv(t, session.Static("user-1"))
	ctx := context.Background()

	adopted := candidate()
	adopted.ID = time.Now().UnixMilli() + int64(time.Hour/time.Millisecond)
	e.remote.Seed(adopted)
	if err := e.ledger.Hydrate(ctx); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	stored, err := e.ledger.Add(ctx, candidate())
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if stored.ID <= adopted.ID {
		t.Fatalf("locally-assigned id %d must advance past adopted id %d", stored.ID, adopted.ID)
	}
}

func TestLocalStoreFailureIsNonFatal(t *testing.T) {
	e := newEnv(t, session.Anonymous())
	e.local.FailAll(true)
	ctx := context.Background()

	stored, err := e.ledger.Add(ctx, candidate())
	if err != nil {
		t.Fatalf("add must survive a failing local medium: %v", err)
	}
	if records := e.ledger.Records(); len(records) != 1 || records[0].ID != stored.ID {
		t.Fatal("in-memory state must stay valid for the session")
	}
}

func TestHydrateRemoteWins(t *testing.T) {
	e := newEnv(t, session.Static("user-1"))
	ctx := context.Background()

	// Stale local cache to be overwritten.
	stale := candidate()
	stale.ID = 1
	if err := e.local.SaveAll(ctx, []expense.Expense{stale}); err != nil {
		t.Fatalf("seed local: %v", err)
	}

	truth := candidate()
	truth.ID = 2
	truth.Description = "From remote"
	e.remote.Seed(truth)

	if err := e.ledger.Hydrate(ctx); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	records := e.ledger.Records()
	if len(records) != 1 || records[0].ID != 2 {
		t.Fatalf("expected remote ground truth to be adopted, got %+v", records)
	}

	snapshot, err := e.local.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load local: %v", err)
	}
	if len(snapshot) != 1 || snapshot[0].ID != 2 {
		t.Fatalf("expected local cache overwritten by remote truth, got %+v", snapshot)
	}
}

func TestHydrateFallsBackToLocal(t *testing.T) {
	e := newEnv(t, session.Static("user-1"))
	ctx := context.Background()

	cached := candidate()
	cached.ID = 1
	if err := e.local.SaveAll(ctx, []expense.Expense{cached}); err != nil {
		t.Fatalf("seed local: %v", err)
	}
	e.remote.FailAll(true)

	if err := e.ledger.Hydrate(ctx); err != nil {
		t.Fatalf("hydrate must not fail on unreachable remote: %v", err)
	}
	records := e.ledger.Records()
	if len(records) != 1 || records[0].ID != 1 {
		t.Fatalf("expected local snapshot adopted, got %+v", records)
	}
}

func TestHydrateEmptyEverywhere(t *testing.T) {
	e := newEnv(t, session.Static("user-1"))
	e.remote.FailAll(true)

	if err := e.ledger.Hydrate(context.Background()); err != nil {
		t.Fatalf("first run with nothing anywhere must not error: %v", err)
	}
	if e.ledger.Len() != 0 {
		t.Fatal("expected an empty record set")
	}
}

func TestHydrateAnonymousSkipsRemote(t *testing.T) {
	e := newEnv(t, session.Anonymous())
	e.remote.Seed(candidate())

	if err := e.ledger.Hydrate(context.Background()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if e.remote.Calls("list") != 0 {
		t.Fatal("anonymous session must not list the remote store")
	}
}

func TestSinkObservesOutcomes(t *testing.T) {
	local := memory.NewLocal()
	remote := memory.NewRemote()
	remote.FailAll(true)

	results := make(chan SyncResult, 1)
	l := New(local, remote, session.Static("user-1"), Config{
		Sinks: []Sink{SinkFunc(func(_ context.Context, res SyncResult) {
			results <- res
		})},
	})

	if _, err := l.Add(context.Background(), candidate()); err != nil {
		t.Fatalf("add: %v", err)
	}

	select {
	case res := <-results:
		if res.Op != "insert" || res.Success() {
			t.Fatalf("expected failed insert outcome, got %+v", res)
		}
		if res.AttemptID == "" {
			t.Fatal("expected an attempt id")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("sink never observed the attempt")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
}
