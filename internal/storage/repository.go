package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fondo/internal/core"
	"fondo/internal/snapshot"
)

// ErrNotFound is returned when a referenced record does not exist or
// has been deleted.
var ErrNotFound = errors.New("record not found")

// SQLiteRepository is the local mirror of the household's records. The
// source of truth lives elsewhere; this store is what the service reads
// snapshots from and what record writes land in first.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrateSchema(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadSnapshot reads every live record into a new snapshot. Soft-deleted
// transactions are excluded. All four collections are read inside one
// read-only transaction so a concurrent write cannot tear the snapshot,
// e.g. a transaction row referencing a category the same snapshot lacks.
func (r *SQLiteRepository) LoadSnapshot(ctx context.Context) (snapshot.Snapshot, error) {
	var snap snapshot.Snapshot

	dbTx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return snap, fmt.Errorf("begin snapshot read: %w", err)
	}
	defer dbTx.Rollback()

	users, err := listUsers(ctx, dbTx)
	if err != nil {
		return snap, fmt.Errorf("load users: %w", err)
	}
	projects, err := listProjects(ctx, dbTx)
	if err != nil {
		return snap, fmt.Errorf("load projects: %w", err)
	}
	categories, err := listCategories(ctx, dbTx)
	if err != nil {
		return snap, fmt.Errorf("load categories: %w", err)
	}
	txs, err := listTransactions(ctx, dbTx)
	if err != nil {
		return snap, fmt.Errorf("load transactions: %w", err)
	}

	snap.Users = users
	snap.Projects = projects
	snap.Categories = categories
	snap.Transactions = txs
	snap.LoadedAt = time.Now()
	return snap, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listUsers(ctx context.Context, q querier) ([]core.User, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, email, created_at FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.User
	for rows.Next() {
		var u core.User
		var createdAt string
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &createdAt); err != nil {
			return nil, err
		}
		u.CreatedAt = parseTime(createdAt)
		out = append(out, u)
	}
	return out, rows.Err()
}

func listProjects(ctx context.Context, q querier) ([]core.Project, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, description, budget_cents, status, created_at FROM projects ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Project
	for rows.Next() {
		var p core.Project
		var status, createdAt string
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Budget.Cents, &status, &createdAt); err != nil {
			return nil, err
		}
		p.Status = core.ProjectStatus(status)
		p.CreatedAt = parseTime(createdAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

func listCategories(ctx context.Context, q querier) ([]core.Category, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, sort_order, is_group, parent_id FROM categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Order, &c.IsGroup, &c.ParentID); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func listTransactions(ctx context.Context, q querier) ([]core.Transaction, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, type, amount_cents, project_id, category_id, category_name,
		       user_id, registered_by, description, notes, quantity, unit_price_cents,
		       date, created_at
		FROM transactions
		WHERE deleted_at IS NULL
		ORDER BY date, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var tx core.Transaction
	var typ, date, createdAt string
	var quantity sql.NullFloat64
	var unitPrice sql.NullInt64

	err := row.Scan(&tx.ID, &typ, &tx.Amount.Cents, &tx.ProjectID, &tx.CategoryID, &tx.CategoryName,
		&tx.UserID, &tx.RegisteredBy, &tx.Description, &tx.Notes, &quantity, &unitPrice,
		&date, &createdAt)
	if err != nil {
		return tx, err
	}

	tx.Type = core.TransactionType(typ)
	tx.Date = parseTime(date)
	tx.CreatedAt = parseTime(createdAt)
	if quantity.Valid {
		q := quantity.Float64
		tx.Quantity = &q
	}
	if unitPrice.Valid {
		tx.UnitPrice = &core.Money{Cents: unitPrice.Int64}
	}
	return tx, nil
}

// GetTransaction returns a live transaction by ID, or ErrNotFound.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, type, amount_cents, project_id, category_id, category_name,
		       user_id, registered_by, description, notes, quantity, unit_price_cents,
		       date, created_at
		FROM transactions
		WHERE id = ? AND deleted_at IS NULL`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	return tx, err
}

// CreateTransaction inserts a validated transaction. A missing ID gets a
// fresh UUID; the assigned ID is returned.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}

	var quantity any
	if tx.Quantity != nil {
		quantity = *tx.Quantity
	}
	var unitPrice any
	if tx.UnitPrice != nil {
		unitPrice = tx.UnitPrice.Cents
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, type, amount_cents, project_id, category_id, category_name,
		                          user_id, registered_by, description, notes, quantity, unit_price_cents, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, string(tx.Type), tx.Amount.Cents, tx.ProjectID, tx.CategoryID, tx.CategoryName,
		tx.UserID, tx.RegisteredBy, tx.Description, tx.Notes, quantity, unitPrice,
		tx.Date.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}
	return tx.ID, nil
}

// UpdateTransaction applies a field patch to a live transaction and
// bumps its version so the export worker picks it up again. Returns the
// updated row.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error) {
	current, err := r.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}

	updated := patch.ApplyTo(current)
	if err := updated.Validate(); err != nil {
		return core.Transaction{}, err
	}

	var quantity any
	if updated.Quantity != nil {
		quantity = *updated.Quantity
	}
	var unitPrice any
	if updated.UnitPrice != nil {
		unitPrice = updated.UnitPrice.Cents
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE transactions
		SET amount_cents = ?, project_id = ?, category_id = ?, category_name = ?,
		    description = ?, notes = ?, quantity = ?, unit_price_cents = ?, date = ?,
		    version = version + 1, synced_at = NULL, sync_error = 0
		WHERE id = ? AND deleted_at IS NULL`,
		updated.Amount.Cents, updated.ProjectID, updated.CategoryID, updated.CategoryName,
		updated.Description, updated.Notes, quantity, unitPrice,
		updated.Date.UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	return updated, nil
}

// DeleteTransaction soft-deletes a transaction. Deleted rows stay out of
// snapshots but remain visible to the export worker for tombstoning.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET deleted_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertUser inserts or replaces a user record.
func (r *SQLiteRepository) UpsertUser(ctx context.Context, u core.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, email = excluded.email`,
		u.ID, u.Name, u.Email)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// UpsertProject inserts or replaces a project record.
func (r *SQLiteRepository) UpsertProject(ctx context.Context, p core.Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, description, budget_cents, status) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, description = excluded.description,
		                              budget_cents = excluded.budget_cents, status = excluded.status`,
		p.ID, p.Name, p.Description, p.Budget.Cents, string(p.Status))
	if err != nil {
		return fmt.Errorf("upsert project: %w", err)
	}
	return nil
}

// UpsertCategory inserts or replaces a category record.
func (r *SQLiteRepository) UpsertCategory(ctx context.Context, c core.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, sort_order, is_group, parent_id) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, sort_order = excluded.sort_order,
		                              is_group = excluded.is_group, parent_id = excluded.parent_id`,
		c.ID, c.Name, c.Order, c.IsGroup, c.ParentID)
	if err != nil {
		return fmt.Errorf("upsert category: %w", err)
	}
	return nil
}

// PendingSyncTransaction is the minimal row the export worker queues on.
type PendingSyncTransaction struct {
	ID        string
	Version   int64
	Deleted   bool
	CreatedAt time.Time
}

// GetPendingSyncTransactions returns rows not yet pushed to the
// spreadsheet export, soft-deleted ones included so their rows can be
// removed remotely.
func (r *SQLiteRepository) GetPendingSyncTransactions(ctx context.Context, limit int) ([]PendingSyncTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, version, deleted_at IS NOT NULL, created_at
		FROM transactions
		WHERE synced_at IS NULL AND sync_error = 0
		ORDER BY created_at
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}
	defer rows.Close()

	var out []PendingSyncTransaction
	for rows.Next() {
		var p PendingSyncTransaction
		var createdAt string
		if err := rows.Scan(&p.ID, &p.Version, &p.Deleted, &createdAt); err != nil {
			return nil, err
		}
		p.CreatedAt = parseTime(createdAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkSynced marks a transaction as successfully exported.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET synced_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now'), sync_error = 0
		WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	return nil
}

// MarkSyncError flags a transaction whose export failed so retries stop
// until an operator clears it.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE transactions SET sync_error = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	return nil
}

// ListDueRecurring returns active recurring definitions whose last run
// is old enough that a new instance may be due.
func (r *SQLiteRepository) ListDueRecurring(ctx context.Context) ([]core.RecurringTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, amount_cents, project_id, category_id, user_id, description,
		       repetition, start_date, end_date, last_run, active
		FROM recurring_transactions
		WHERE active = 1`)
	if err != nil {
		return nil, fmt.Errorf("list due recurring: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringTransaction
	for rows.Next() {
		var rec core.RecurringTransaction
		var typ, every, startDate string
		var endDate, lastRun sql.NullString
		if err := rows.Scan(&rec.ID, &typ, &rec.Amount.Cents, &rec.ProjectID, &rec.CategoryID,
			&rec.UserID, &rec.Description, &every, &startDate, &endDate, &lastRun, &rec.Active); err != nil {
			return nil, err
		}
		rec.Type = core.TransactionType(typ)
		rec.Every = core.RepetitionType(every)
		rec.StartDate = parseTime(startDate)
		if endDate.Valid {
			rec.EndDate = parseTime(endDate.String)
		}
		if lastRun.Valid {
			rec.LastRun = parseTime(lastRun.String)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// MarkRecurringRun records that a recurring definition produced an
// instance at the given time.
func (r *SQLiteRepository) MarkRecurringRun(ctx context.Context, id string, ranAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE recurring_transactions SET last_run = ? WHERE id = ?`,
		ranAt.UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("mark recurring run: %w", err)
	}
	return nil
}

// CreateRecurring inserts a recurring definition.
func (r *SQLiteRepository) CreateRecurring(ctx context.Context, rec core.RecurringTransaction) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	var endDate any
	if !rec.EndDate.IsZero() {
		endDate = rec.EndDate.UTC().Format(time.RFC3339Nano)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recurring_transactions (id, type, amount_cents, project_id, category_id,
		                                    user_id, description, repetition, start_date, end_date, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Type), rec.Amount.Cents, rec.ProjectID, rec.CategoryID,
		rec.UserID, rec.Description, string(rec.Every),
		rec.StartDate.UTC().Format(time.RFC3339Nano), endDate, rec.Active)
	if err != nil {
		return "", fmt.Errorf("create recurring: %w", err)
	}
	return rec.ID, nil
}

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000Z", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
