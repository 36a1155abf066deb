package storage

import (
	"context"
	"database/sql"
)

// Queries wraps the raw SQL statements over the fitness database.
type Queries struct {
	db *sql.DB
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// EntryRow is one journal row as stored, with its durable identity and
// sync bookkeeping.
type EntryRow struct {
	ID         int64
	Date       string
	Kind       string
	Payload    string
	Version    int64
	SyncStatus string
	CreatedAt  string
}

type CreateEntryParams struct {
	Date    string
	Kind    string
	Payload string
}

const createEntry = `
INSERT INTO journal_entries (entry_date, kind, payload)
VALUES (?, ?, ?)
RETURNING id, entry_date, kind, payload, version, sync_status, created_at
`

func (q *Queries) CreateEntry(ctx context.Context, arg CreateEntryParams) (EntryRow, error) {
	var r EntryRow
	err := q.db.QueryRowContext(ctx, createEntry, arg.Date, arg.Kind, arg.Payload).
		Scan(&r.ID, &r.Date, &r.Kind, &r.Payload, &r.Version, &r.SyncStatus, &r.CreatedAt)
	return r, err
}

const listEntries = `
SELECT id, entry_date, kind, payload, version, sync_status, created_at
FROM journal_entries
WHERE deleted_at IS NULL
ORDER BY id
`

// ListEntries returns all live rows in append order.
func (q *Queries) ListEntries(ctx context.Context) ([]EntryRow, error) {
	rows, err := q.db.QueryContext(ctx, listEntries)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []EntryRow
	for rows.Next() {
		var r EntryRow
		if err := rows.Scan(&r.ID, &r.Date, &r.Kind, &r.Payload, &r.Version, &r.SyncStatus, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const getEntry = `
SELECT id, entry_date, kind, payload, version, sync_status, created_at
FROM journal_entries
WHERE id = ? AND deleted_at IS NULL
`

func (q *Queries) GetEntry(ctx context.Context, id int64) (EntryRow, error) {
	var r EntryRow
	err := q.db.QueryRowContext(ctx, getEntry, id).
		Scan(&r.ID, &r.Date, &r.Kind, &r.Payload, &r.Version, &r.SyncStatus, &r.CreatedAt)
	return r, err
}

const softDeleteEntry = `
UPDATE journal_entries
SET deleted_at = CURRENT_TIMESTAMP, version = version + 1
WHERE id = ? AND deleted_at IS NULL
`

// SoftDeleteEntry marks a row deleted. Returns sql.ErrNoRows when the
// row is missing or already deleted, so a stale delete is detected
// instead of silently succeeding.
func (q *Queries) SoftDeleteEntry(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, softDeleteEntry, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

const pendingSyncEntries = `
SELECT id, entry_date, kind, payload, version, sync_status, created_at
FROM journal_entries
WHERE sync_status = 'pending' AND deleted_at IS NULL
ORDER BY id
LIMIT ?
`

func (q *Queries) PendingSyncEntries(ctx context.Context, limit int64) ([]EntryRow, error) {
	rows, err := q.db.QueryContext(ctx, pendingSyncEntries, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []EntryRow
	for rows.Next() {
		var r EntryRow
		if err := rows.Scan(&r.ID, &r.Date, &r.Kind, &r.Payload, &r.Version, &r.SyncStatus, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *Queries) MarkEntrySynced(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE journal_entries SET sync_status = 'synced' WHERE id = ?`, id)
	return err
}

func (q *Queries) MarkEntrySyncError(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE journal_entries SET sync_status = 'error' WHERE id = ?`, id)
	return err
}

const upsertFood = `
INSERT INTO foods (name, kcal, protein, carbs, fat)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
    kcal = excluded.kcal,
    protein = excluded.protein,
    carbs = excluded.carbs,
    fat = excluded.fat
`

func (q *Queries) UpsertFood(ctx context.Context, name string, kcal, protein, carbs, fat float64) error {
	_, err := q.db.ExecContext(ctx, upsertFood, name, kcal, protein, carbs, fat)
	return err
}

func (q *Queries) ListFoods(ctx context.Context) (*sql.Rows, error) {
	return q.db.QueryContext(ctx,
		`SELECT name, kcal, protein, carbs, fat FROM foods ORDER BY name`)
}

const upsertSupplement = `
INSERT INTO supplements (name, form, description, kcal, protein, carbs, fat)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
    form = excluded.form,
    description = excluded.description,
    kcal = excluded.kcal,
    protein = excluded.protein,
    carbs = excluded.carbs,
    fat = excluded.fat
`

func (q *Queries) UpsertSupplement(ctx context.Context, name, form, description string, kcal, protein, carbs, fat float64) error {
	_, err := q.db.ExecContext(ctx, upsertSupplement, name, form, description, kcal, protein, carbs, fat)
	return err
}

func (q *Queries) ListSupplements(ctx context.Context) (*sql.Rows, error) {
	return q.db.QueryContext(ctx,
		`SELECT name, form, description, kcal, protein, carbs, fat FROM supplements ORDER BY name`)
}

func (q *Queries) UpsertExercise(ctx context.Context, name, category string) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO exercises (name, category) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET category = excluded.category`,
		name, category)
	return err
}

func (q *Queries) ListExercises(ctx context.Context) (*sql.Rows, error) {
	return q.db.QueryContext(ctx,
		`SELECT name, category FROM exercises ORDER BY name`)
}
