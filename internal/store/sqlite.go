package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite"

	"github.com/DougJudyPontiacBandit/ramyeonsite/domain"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, rec *Record) error {
	draft, err := json.Marshal(rec.Draft)
	if err != nil {
		return fmt.Errorf("failed to marshal order draft: %w", err)
	}

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	query := `
		INSERT INTO pending_orders (
			local_id, backend_id, draft, status, payment_reference,
			subtotal, discount, total, pending_sync, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (local_id) DO UPDATE SET
			backend_id = excluded.backend_id,
			draft = excluded.draft,
			status = excluded.status,
			payment_reference = excluded.payment_reference,
			subtotal = excluded.subtotal,
			discount = excluded.discount,
			total = excluded.total,
			pending_sync = excluded.pending_sync,
			updated_at = excluded.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		rec.LocalID,
		rec.BackendID,
		string(draft),
		rec.Status.String(),
		rec.PaymentReference,
		rec.Subtotal,
		rec.Discount,
		rec.Total,
		rec.PendingSync,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save order record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, localID string) (*Record, error) {
	query := `
		SELECT local_id, backend_id, draft, status, payment_reference,
		       subtotal, discount, total, pending_sync, created_at, updated_at
		FROM pending_orders
		WHERE local_id = $1
	`

	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, localID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query order record: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStore) UpdateStatus(ctx context.Context, localID string, status domain.OrderStatus, pendingSync bool) error {
	query := `
		UPDATE pending_orders
		SET status = $1, pending_sync = $2, updated_at = $3
		WHERE local_id = $4
	`

	res, err := s.db.ExecContext(ctx, query, status.String(), pendingSync, time.Now().UTC(), localID)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListPending(ctx context.Context) ([]*Record, error) {
	query := `
		SELECT local_id, backend_id, draft, status, payment_reference,
		       subtotal, discount, total, pending_sync, created_at, updated_at
		FROM pending_orders
		WHERE pending_sync = TRUE
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending orders: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

func (s *SQLiteStore) MarkSynced(ctx context.Context, localID, backendID string) error {
	query := `
		UPDATE pending_orders
		SET backend_id = $1, pending_sync = FALSE, status = $2, updated_at = $3
		WHERE local_id = $4
	`

	res, err := s.db.ExecContext(ctx, query, backendID, domain.OrderStatusCompleted.String(), time.Now().UTC(), localID)
	if err != nil {
		return fmt.Errorf("failed to mark order synced: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	rec := &Record{}
	var draft, status string
	err := row.Scan(
		&rec.LocalID,
		&rec.BackendID,
		&draft,
		&status,
		&rec.PaymentReference,
		&rec.Subtotal,
		&rec.Discount,
		&rec.Total,
		&rec.PendingSync,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(draft), &rec.Draft); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order draft: %w", err)
	}
	rec.Status = domain.OrderStatus(status)
	return rec, nil
}
