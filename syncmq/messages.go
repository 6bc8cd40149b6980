package syncmq

import (
	"encoding/json"
	"time"
)

// SyncEvent describes the outcome of one best-effort remote attempt.
type SyncEvent struct {
	Op        string    `json:"op"`
	ExpenseID int64     `json:"expense_id"`
	AttemptID string    `json:"attempt_id"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	ElapsedMS int64     `json:"elapsed_ms"`
	Timestamp time.Time `json:"timestamp"`
}

// ToJSON converts the event to JSON bytes.
func (e *SyncEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// SyncEventFromJSON creates an event from JSON bytes.
func SyncEventFromJSON(data []byte) (*SyncEvent, error) {
	var event SyncEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
