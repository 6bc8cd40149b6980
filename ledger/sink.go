package ledger

import (
	"context"
	"log/slog"
	"time"
)

// SyncResult is the outcome of one best-effort remote attempt.
type SyncResult struct {
	// Op is the remote operation: insert, update or delete.
	Op string

	// ExpenseID is the record the attempt was about.
	ExpenseID int64

	// AttemptID correlates log lines and events for one attempt.
	AttemptID string

	// Err is nil on success. Failures are observability information only;
	// the mutation already succeeded locally.
	Err error

	// Elapsed is how long the remote call took.
	Elapsed time.Duration
}

// Success reports whether the attempt reached the remote store.
func (r SyncResult) Success() bool { return r.Err == nil }

// Sink observes remote sync outcomes. Implementations must not block for
// long and must never panic; they run on the dispatcher's goroutines.
type Sink interface {
	SyncResult(ctx context.Context, res SyncResult)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, res SyncResult)

func (f SinkFunc) SyncResult(ctx context.Context, res SyncResult) { f(ctx, res) }

// slogSink is the default sink: sync failures degrade to log lines.
type slogSink struct{}

func (slogSink) SyncResult(ctx context.Context, res SyncResult) {
	if res.Err != nil {
		slog.WarnContext(ctx, "Remote sync failed, local copy stays authoritative",
			"op", res.Op,
			"expense_id", res.ExpenseID,
			"attempt_id", res.AttemptID,
			"elapsed", res.Elapsed,
			"error", res.Err)
		return
	}
	slog.DebugContext(ctx, "Remote sync completed",
		"op", res.Op,
		"expense_id", res.ExpenseID,
		"attempt_id", res.AttemptID,
		"elapsed", res.Elapsed)
}
