package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// dispatcher runs best-effort remote attempts on detached goroutines. The
// caller never waits on phase 2; a weighted semaphore keeps the number of
// concurrent attempts bounded. In-flight attempts are not cancelled when
// the triggering call returns - they complete or fail silently after the
// fact, observed only by the sinks.
type dispatcher struct {
	sem   *semaphore.Weighted
	sinks []Sink
	wg    sync.WaitGroup
}

func newDispatcher(maxInFlight int64, sinks []Sink) *dispatcher {
	return &dispatcher{
		sem:   semaphore.NewWeighted(maxInFlight),
		sinks: sinks,
	}
}

// dispatch runs fn detached from the caller's cancellation. The attempt
// outcome goes to every sink, never to the caller.
func (d *dispatcher) dispatch(ctx context.Context, op string, expenseID int64, fn func(context.Context) error) {
	// Keep request-scoped values for logging, drop the cancellation.
	detached := context.WithoutCancel(ctx)
	attemptID := uuid.NewString()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		if err := d.sem.Acquire(detached, 1); err != nil {
			return
		}
		defer d.sem.Release(1)

		start := time.Now()
		err := fn(detached)
		res := SyncResult{
			Op:        op,
			ExpenseID: expenseID,
			AttemptID: attemptID,
			Err:       err,
			Elapsed:   time.Since(start),
		}
		for _, sink := range d.sinks {
			sink.SyncResult(detached, res)
		}
	}()
}

// wait blocks until all dispatched attempts finished, or ctx is done.
func (d *dispatcher) wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
