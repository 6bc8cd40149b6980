package logging

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldSuccess   = "success"
	FieldElapsed   = "elapsed"

	FieldExpenseID     = "expense_id"
	FieldAttemptID     = "attempt_id"
	FieldUserID        = "user_id"
	FieldCategory      = "category"
	FieldPaymentMethod = "payment_method"
	FieldAmountCents   = "amount_cents"
	FieldRecords       = "records"
)

// Components defines standard component names
const (
	ComponentLedger     = "ledger"
	ComponentAggregate  = "aggregate"
	ComponentLocalStore = "local_store"
	ComponentRemote     = "remote_store"
	ComponentSyncMQ     = "syncmq"
	ComponentConfig     = "config"
)

// Operations defines standard operation names
const (
	OpHydrate = "hydrate"
	OpAdd     = "add"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpList    = "list"
	OpInsert  = "insert"
	OpSave    = "save"
	OpLoad    = "load"
)
