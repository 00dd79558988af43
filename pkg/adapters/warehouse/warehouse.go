// Package warehouse runs generated SQL against a database/sql backend.
//
// The "postgres" (lib/pq) and "sqlite3" (mattn/go-sqlite3) drivers are
// registered. Statements run inside a read-only transaction where the driver
// supports it.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/aretw0/querent/pkg/domain"
	"github.com/aretw0/querent/pkg/ports"
)

// Warehouse implements ports.QueryEngine.
type Warehouse struct {
	db      *sql.DB
	timeout time.Duration
}

// Option configures a Warehouse.
type Option func(*Warehouse)

// WithTimeout bounds each query.
func WithTimeout(d time.Duration) Option {
	return func(w *Warehouse) {
		w.timeout = d
	}
}

// Open connects with the given driver ("postgres" or "sqlite3") and DSN.
func Open(driver, dsn string, opts ...Option) (*Warehouse, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s open: %w", driver, err)
	}
	if driver == "sqlite3" && strings.Contains(dsn, ":memory:") {
		// every connection to :memory: is a different database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}
	return New(db, opts...), nil
}

// New wraps an existing pool.
func New(db *sql.DB, opts ...Option) *Warehouse {
	w := &Warehouse{db: db}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// DB exposes the pool, e.g. for seeding.
func (w *Warehouse) DB() *sql.DB {
	return w.db
}

// Ping verifies the connection.
func (w *Warehouse) Ping(ctx context.Context) error {
	return w.db.PingContext(ctx)
}

// Close closes the pool.
func (w *Warehouse) Close() error {
	return w.db.Close()
}

// Run executes query and materializes every row. An empty result is a
// non-nil empty slice.
func (w *Warehouse) Run(ctx context.Context, query string) ([]domain.Row, error) {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	tx, err := w.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	out := []domain.Row{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		out = append(out, domain.NewRow(append([]string(nil), cols...), values))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

var _ ports.QueryEngine = (*Warehouse)(nil)
