package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/ycaws1/expensy/expense"
	"github.com/ycaws1/expensy/store"
)

func rec(id int64) expense.Expense {
	return expense.Expense{
		ID:            id,
		Date:          expense.NewDate(2025, 1, 20),
		Price:         expense.Money{Cents: 100 * id},
		Category:      expense.Food,
		PaymentMethod: expense.Cash,
	}
}

func TestLocalRoundTrip(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	got, err := l.LoadAll(ctx)
	if err != nil || len(got) != 0 {
		t.Fatalf("fresh store: got %v, %v", got, err)
	}

	want := []expense.Expense{rec(1), rec(2)}
	if err := l.SaveAll(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err = l.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestLocalFailureInjection(t *testing.T) {
	l := NewLocal()
	l.FailAll(true)

	err := l.SaveAll(context.Background(), []expense.Expense{rec(1)})
	var perr *store.PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *PersistenceError, got %v", err)
	}

	l.FailAll(false)
	if err := l.SaveAll(context.Background(), []expense.Expense{rec(1)}); err != nil {
		t.Fatalf("save after recovery: %v", err)
	}
}

func TestRemoteCRUD(t *testing.T) {
	r := NewRemote()
	ctx := context.Background()

	// Server assigns an id when the record has none.
	stored, err := r.Insert(ctx, expense.Expense{
		Date:          expense.NewDate(2025, 1, 20),
		Price:         expense.Money{Cents: 500},
		Category:      expense.Other,
		PaymentMethod: expense.Cash,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if stored.ID == 0 {
		t.Fatal("expected server-assigned id")
	}

	// Client-supplied ids are kept.
	withID := rec(99)
	stored2, err := r.Insert(ctx, withID)
	if err != nil {
		t.Fatalf("insert with id: %v", err)
	}
	if stored2.ID != 99 {
		t.Fatalf("expected id 99 kept, got %d", stored2.ID)
	}

	edited := rec(99)
	edited.Description = "edited"
	if err := r.Update(ctx, 99, edited); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := r.Delete(ctx, 99); err != nil {
		t.Fatalf("delete: %v", err)
	}

	listed, err := r.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != stored.ID {
		t.Fatalf("expected only the first record, got %+v", listed)
	}
}

func TestRemoteUnknownIDs(t *testing.T) {
	r := NewRemote()
	ctx := context.Background()

	var rerr *store.RemoteError
	if err := r.Update(ctx, 7, rec(7)); !errors.As(err, &rerr) {
		t.Fatalf("expected *RemoteError, got %v", err)
	}
	if err := r.Delete(ctx, 7); !errors.As(err, &rerr) {
		t.Fatalf("expected *RemoteError, got %v", err)
	}
}

func TestRemoteFailureInjectionAndCallCounts(t *testing.T) {
	r := NewRemote()
	r.FailAll(true)
	ctx := context.Background()

	var rerr *store.RemoteError
	if _, err := r.List(ctx, "u"); !errors.As(err, &rerr) {
		t.Fatalf("expected *RemoteError, got %v", err)
	}
	if _, err := r.Insert(ctx, rec(1)); !errors.As(err, &rerr) {
		t.Fatalf("expected *RemoteError, got %v", err)
	}
	if r.Calls("list") != 1 || r.Calls("insert") != 1 {
		t.Fatalf("call counts wrong: list=%d insert=%d", r.Calls("list"), r.Calls("insert"))
	}
}
