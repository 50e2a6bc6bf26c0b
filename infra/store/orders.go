package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrDuplicateOrder is returned when an order id has already been used for
// a payment attempt. Callers must pick a fresh order id per logical
// payment: provider signatures include a per-call nonce, so replaying the
// same order id is never a safe retry.
var ErrDuplicateOrder = errors.New("order id already exists")

// ErrOrderNotFound is returned when no order matches the given id.
var ErrOrderNotFound = errors.New("order not found")

// Order is one recorded payment attempt.
type Order struct {
	OrderID   string
	Provider  string
	Amount    int64
	Currency  string
	Status    string
	Reason    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Order status values as recorded in the journal.
const (
	StatusCreated   = "created"
	StatusSucceeded = "success"
	StatusFailed    = "failed"
)

// OrderStore is a SQLite-backed journal of payment attempts, used to
// reject duplicate order ids and to record verified callback outcomes.
type OrderStore struct {
	db   *sql.DB
	path string
}

// NewOrderStore opens (or creates) the order journal at dbPath, configured
// for concurrent access from multiple replicas.
func NewOrderStore(dbPath string) (*OrderStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// WAL and a generous busy timeout keep concurrent writers from
	// tripping over each other.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=20000&_txlock=immediate", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	store := &OrderStore{db: db, path: dbPath}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *OrderStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS orders (
		order_id   TEXT PRIMARY KEY,
		provider   TEXT NOT NULL,
		amount     INTEGER NOT NULL,
		currency   TEXT NOT NULL,
		status     TEXT NOT NULL,
		reason     TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
	`

	_, err := s.db.Exec(query)
	return err
}

// retryOperation executes a database operation with retry logic for
// SQLITE_BUSY errors.
func (s *OrderStore) retryOperation(operation func() error, maxRetries int) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		if strings.Contains(err.Error(), "SQLITE_BUSY") || strings.Contains(err.Error(), "database is locked") {
			lastErr = err
			if attempt < maxRetries {
				backoff := time.Duration(10*(1<<attempt)) * time.Millisecond
				time.Sleep(backoff)
				continue
			}
		} else {
			return err
		}
	}

	return fmt.Errorf("operation failed after %d retries, last error: %w", maxRetries+1, lastErr)
}

// Create records a new payment attempt. A reused order id fails with
// ErrDuplicateOrder.
func (s *OrderStore) Create(ctx context.Context, order Order) error {
	return s.retryOperation(func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO orders (order_id, provider, amount, currency, status, reason) VALUES (?, ?, ?, ?, ?, ?)`,
			order.OrderID, order.Provider, order.Amount, order.Currency, StatusCreated, "",
		)
		if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateOrder
		}
		return err
	}, 3)
}

// UpdateStatus records a verified payment outcome for an order.
func (s *OrderStore) UpdateStatus(ctx context.Context, orderID, status, reason string) error {
	return s.retryOperation(func() error {
		result, err := s.db.ExecContext(ctx,
			`UPDATE orders SET status = ?, reason = ?, updated_at = CURRENT_TIMESTAMP WHERE order_id = ?`,
			status, reason, orderID,
		)
		if err != nil {
			return err
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrOrderNotFound
		}
		return nil
	}, 3)
}

// Get returns the recorded order for an id.
func (s *OrderStore) Get(ctx context.Context, orderID string) (*Order, error) {
	var order Order
	err := s.db.QueryRowContext(ctx,
		`SELECT order_id, provider, amount, currency, status, reason, created_at, updated_at FROM orders WHERE order_id = ?`,
		orderID,
	).Scan(&order.OrderID, &order.Provider, &order.Amount, &order.Currency, &order.Status, &order.Reason, &order.CreatedAt, &order.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// Close closes the underlying database.
func (s *OrderStore) Close() error {
	return s.db.Close()
}
