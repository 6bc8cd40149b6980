package syncmq

import (
	"context"
	"log/slog"
	"time"

	"github.com/ycaws1/expensy/ledger"
)

// Sink adapts a Client to the ledger's sink interface so sync outcomes are
// published as events. Publish failures are logged and swallowed: losing an
// observability event must never disturb the ledger.
type Sink struct {
	client *Client
}

// Ensure interface conformance
var _ ledger.Sink = (*Sink)(nil)

func NewSink(client *Client) *Sink {
	return &Sink{client: client}
}

func (s *Sink) SyncResult(ctx context.Context, res ledger.SyncResult) {
	event := &SyncEvent{
		Op:        res.Op,
		ExpenseID: res.ExpenseID,
		AttemptID: res.AttemptID,
		Success:   res.Success(),
		ElapsedMS: res.Elapsed.Milliseconds(),
		Timestamp: time.Now(),
	}
	if res.Err != nil {
		event.Error = res.Err.Error()
	}

	if err := s.client.PublishSyncEvent(ctx, event); err != nil {
		slog.WarnContext(ctx, "Failed to publish sync event",
			"op", res.Op,
			"expense_id", res.ExpenseID,
			"error", err)
	}
}
