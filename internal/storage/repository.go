package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"fittrack/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the local journal store. Unlike the spreadsheet
// backend, rows have durable ids and a version column, so appends never
// rewrite the table and a delete of an already-deleted row fails
// loudly instead of removing a neighbor.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
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

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReadJournal implements sheets.JournalReader. Rows come back in append
// order so positional indexes line up with the sheet backend.
func (r *SQLiteRepository) ReadJournal(ctx context.Context) ([]core.Entry, error) {
	rows, err := r.queries.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	out := make([]core.Entry, len(rows))
	for i, row := range rows {
		out[i] = core.Entry{Date: row.Date, Kind: core.Kind(row.Kind), Payload: row.Payload}
	}
	return out, nil
}

// AppendEntry implements sheets.JournalAppender. The returned reference
// is the row id.
func (r *SQLiteRepository) AppendEntry(ctx context.Context, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	row, err := r.queries.CreateEntry(ctx, CreateEntryParams{
		Date:    e.Date,
		Kind:    string(e.Kind),
		Payload: e.Payload,
	})
	if err != nil {
		return "", fmt.Errorf("create entry: %w", err)
	}

	slog.InfoContext(ctx, "Journal entry saved to SQLite",
		"id", row.ID, "date", row.Date, "kind", row.Kind)
	return strconv.FormatInt(row.ID, 10), nil
}

// ListRows returns live rows with their durable ids, in append order.
// Callers that need to turn a positional index into an id-based delete
// go through this.
func (r *SQLiteRepository) ListRows(ctx context.Context) ([]EntryRow, error) {
	rows, err := r.queries.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return rows, nil
}

// DeleteEntry implements sheets.JournalDeleter by resolving the
// positional index against the current append order. The id-based
// DeleteEntryByID is the race-free path; this one exists for API
// parity with the sheet backend.
func (r *SQLiteRepository) DeleteEntry(ctx context.Context, rowIndex int) error {
	rows, err := r.queries.ListEntries(ctx)
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}
	if rowIndex < 0 || rowIndex >= len(rows) {
		return fmt.Errorf("row index %d out of range [0,%d): %w", rowIndex, len(rows), core.ErrRowOutOfRange)
	}
	return r.DeleteEntryByID(ctx, rows[rowIndex].ID)
}

// DeleteEntryByID soft deletes a row by its durable id.
func (r *SQLiteRepository) DeleteEntryByID(ctx context.Context, id int64) error {
	if err := r.queries.SoftDeleteEntry(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("entry %d not found or already deleted: %w", id, err)
		}
		return fmt.Errorf("soft delete entry: %w", err)
	}
	slog.InfoContext(ctx, "Journal entry deleted", "id", id)
	return nil
}

// GetEntry retrieves a single live row by id, for sync workers.
func (r *SQLiteRepository) GetEntry(ctx context.Context, id int64) (*EntryRow, error) {
	row, err := r.queries.GetEntry(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get entry by id: %w", err)
	}
	return &row, nil
}

// PendingSync returns rows not yet mirrored to the spreadsheet.
func (r *SQLiteRepository) PendingSync(ctx context.Context, limit int) ([]EntryRow, error) {
	rows, err := r.queries.PendingSyncEntries(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("pending sync entries: %w", err)
	}
	return rows, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if err := r.queries.MarkEntrySynced(ctx, id); err != nil {
		return fmt.Errorf("mark entry synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if err := r.queries.MarkEntrySyncError(ctx, id); err != nil {
		return fmt.Errorf("mark entry sync error: %w", err)
	}
	slog.WarnContext(ctx, "Journal entry marked with sync error", "id", id)
	return nil
}

// ListFoods implements sheets.CatalogReader.
func (r *SQLiteRepository) ListFoods(ctx context.Context) ([]core.Food, error) {
	rows, err := r.queries.ListFoods(ctx)
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	defer rows.Close()
	var out []core.Food
	for rows.Next() {
		var f core.Food
		if err := rows.Scan(&f.Name, &f.Kcal, &f.Protein, &f.Carbs, &f.Fat); err != nil {
			return nil, fmt.Errorf("scan food: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListSupplements(ctx context.Context) ([]core.Supplement, error) {
	rows, err := r.queries.ListSupplements(ctx)
	if err != nil {
		return nil, fmt.Errorf("list supplements: %w", err)
	}
	defer rows.Close()
	var out []core.Supplement
	for rows.Next() {
		var s core.Supplement
		var form string
		if err := rows.Scan(&s.Name, &form, &s.Description, &s.Kcal, &s.Protein, &s.Carbs, &s.Fat); err != nil {
			return nil, fmt.Errorf("scan supplement: %w", err)
		}
		s.Form = core.SupplementForm(form)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListExercises(ctx context.Context) ([]core.ExerciseDef, error) {
	rows, err := r.queries.ListExercises(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	defer rows.Close()
	var out []core.ExerciseDef
	for rows.Next() {
		var e core.ExerciseDef
		var cat string
		if err := rows.Scan(&e.Name, &cat); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		e.Category = core.ExerciseCategory(cat)
		out = append(out, e)
	}
	return out, rows.Err()
}

// AddFood implements sheets.CatalogWriter. Catalog rows are keyed by
// name, so re-adding a food updates its macros.
func (r *SQLiteRepository) AddFood(ctx context.Context, f core.Food) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if err := r.queries.UpsertFood(ctx, f.Name, f.Kcal, f.Protein, f.Carbs, f.Fat); err != nil {
		return fmt.Errorf("upsert food: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) AddSupplement(ctx context.Context, s core.Supplement) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if err := r.queries.UpsertSupplement(ctx, s.Name, string(s.Form), s.Description, s.Kcal, s.Protein, s.Carbs, s.Fat); err != nil {
		return fmt.Errorf("upsert supplement: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) AddExercise(ctx context.Context, e core.ExerciseDef) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if err := r.queries.UpsertExercise(ctx, e.Name, string(e.Category)); err != nil {
		return fmt.Errorf("upsert exercise: %w", err)
	}
	return nil
}
