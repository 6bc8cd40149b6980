// Package postgres implements the remote store adapter against a Postgres
// expenses table keyed by id.
//
// The remote column naming (snake_case, notably payment_method) differs from
// the in-memory field naming; that translation lives entirely in this
// package. The adapter is stateless between calls, never retries, and
// applies its configured timeout to every call. All failures come back as
// *store.RemoteError.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ycaws1/expensy/expense"
	"github.com/ycaws1/expensy/store"

	_ "github.com/lib/pq"
)

// DefaultTimeout bounds each remote call when Config.Timeout is zero.
const DefaultTimeout = 5 * time.Second

// Config holds connection settings for the remote store.
type Config struct {
	// DatabaseURL is a lib/pq connection string.
	DatabaseURL string

	// Timeout bounds each call. Zero means DefaultTimeout.
	Timeout time.Duration

	// UserID, when set, is stamped on inserted rows. Listing always filters
	// by the caller-supplied user id, matching the port contract.
	UserID string
}

type Store struct {
	db      *sql.DB
	timeout time.Duration
	userID  string
}

// Ensure interface conformance
var _ store.Remote = (*Store)(nil)

// Open connects to the remote database and verifies the connection.
func Open(cfg Config) (*Store, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Store{db: db, timeout: timeout, userID: cfg.UserID}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// EnsureSchema creates the expenses table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ctx, cancel := s.callContext(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS expenses (
	    id             BIGSERIAL PRIMARY KEY,
	    expense_date   DATE NOT NULL,
	    price_cents    BIGINT NOT NULL CHECK (price_cents >= 0),
	    category       TEXT NOT NULL,
	    payment_method TEXT NOT NULL,
	    description    TEXT NOT NULL DEFAULT '',
	    user_id        TEXT NOT NULL DEFAULT ''
	);`)
	if err != nil {
		return fmt.Errorf("create expenses table: %w", err)
	}
	return nil
}

// List implements store.Remote, newest first.
func (s *Store) List(ctx context.Context, userID string) ([]expense.Expense, error) {
	ctx, cancel := s.callContext(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
	SELECT id, expense_date, price_cents, category, payment_method, description
	  FROM expenses
	 WHERE user_id = $1
	 ORDER BY expense_date DESC, id DESC`, userID)
	if err != nil {
		return nil, &store.RemoteError{Op: "list", Err: err}
	}
	defer rows.Close()

	var records []expense.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, &store.RemoteError{Op: "list", Err: err}
		}
		records = append(records, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &store.RemoteError{Op: "list", Err: err}
	}
	return records, nil
}

// Insert implements store.Remote. A zero id lets the database assign one.
func (s *Store) Insert(ctx context.Context, e expense.Expense) (expense.Expense, error) {
	ctx, cancel := s.callContext(ctx)
	defer cancel()

	if e.ID == 0 {
		err := s.db.QueryRowContext(ctx, `
		INSERT INTO expenses (expense_date, price_cents, category, payment_method, description, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
			e.Date.Time, e.Price.Cents, string(e.Category), string(e.PaymentMethod), e.Description, s.userID,
		).Scan(&e.ID)
		if err != nil {
			return expense.Expense{}, &store.RemoteError{Op: "insert", Err: err}
		}
		return e, nil
	}

	_, err := s.db.ExecContext(ctx, `
	INSERT INTO expenses (id, expense_date, price_cents, category, payment_method, description, user_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO UPDATE SET
	    expense_date   = EXCLUDED.expense_date,
	    price_cents    = EXCLUDED.price_cents,
	    category       = EXCLUDED.category,
	    payment_method = EXCLUDED.payment_method,
	    description    = EXCLUDED.description`,
		e.ID, e.Date.Time, e.Price.Cents, string(e.Category), string(e.PaymentMethod), e.Description, s.userID)
	if err != nil {
		return expense.Expense{}, &store.RemoteError{Op: "insert", Err: err}
	}
	return e, nil
}

// Update implements store.Remote, replacing all fields except the id.
func (s *Store) Update(ctx context.Context, id int64, e expense.Expense) error {
	ctx, cancel := s.callContext(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `
	UPDATE expenses
	   SET expense_date = $2,
	       price_cents = $3,
	       category = $4,
	       payment_method = $5,
	       description = $6
	 WHERE id = $1`,
		id, e.Date.Time, e.Price.Cents, string(e.Category), string(e.PaymentMethod), e.Description)
	if err != nil {
		return &store.RemoteError{Op: "update", Err: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &store.RemoteError{Op: "update", Err: errors.New("no row with id " + fmt.Sprint(id))}
	}
	return nil
}

// Delete implements store.Remote.
func (s *Store) Delete(ctx context.Context, id int64) error {
	ctx, cancel := s.callContext(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return &store.RemoteError{Op: "delete", Err: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &store.RemoteError{Op: "delete", Err: errors.New("no row with id " + fmt.Sprint(id))}
	}
	return nil
}

func (s *Store) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func scanExpense(rows *sql.Rows) (expense.Expense, error) {
	var (
		e             expense.Expense
		date          time.Time
		category      string
		paymentMethod string
	)
	if err := rows.Scan(&e.ID, &date, &e.Price.Cents, &category, &paymentMethod, &e.Description); err != nil {
		return expense.Expense{}, fmt.Errorf("scan expense row: %w", err)
	}
	e.Date = expense.DateOf(date)
	e.Category = expense.Category(category)
	e.PaymentMethod = expense.PaymentMethod(paymentMethod)
	return e, nil
}
