package worker

import (
	"context"
	"fmt"
	"log/slog"

	"fittrack/internal/amqp"
	"fittrack/internal/core"
	"fittrack/internal/sheets"
	"fittrack/internal/storage"
)

// JournalReplica is the remote copy the worker writes to, usually the
// spreadsheet. Content-based deletion is optional; replicas that only
// support positional deletes skip delete replication.
type JournalReplica interface {
	sheets.JournalAppender
}

type contentDeleter interface {
	DeleteEntryMatching(ctx context.Context, date, kind, payload string) error
}

// SyncWorker replicates journal rows from SQLite to the spreadsheet.
// Messages drive the normal path; pending-row scans recover from lost
// messages and downtime.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	replica   JournalReplica
	catalogs  sheets.CatalogReader
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, replica JournalReplica, catalogs sheets.CatalogReader, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		replica:   replica,
		catalogs:  catalogs,
		batchSize: batchSize,
	}
}

// HandleSyncMessage replicates one row. A storage miss is permanent and
// marks the row; a replica failure is returned so the message requeues.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.EntrySyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	row, err := w.storage.GetEntry(ctx, msg.ID)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, msg.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", msg.ID, "error", markErr)
		}
		return fmt.Errorf("get entry from storage: %w", err)
	}

	return w.replicateRow(ctx, *row)
}

// HandleDeleteMessage removes the replicated copy of a soft-deleted row.
func (w *SyncWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.EntryDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message", "id", msg.ID)

	deleter, ok := w.replica.(contentDeleter)
	if !ok {
		slog.WarnContext(ctx, "Replica does not support content deletes, skipping", "id", msg.ID)
		return nil
	}

	if err := deleter.DeleteEntryMatching(ctx, msg.Date, msg.Kind, msg.Payload); err != nil {
		return fmt.Errorf("delete replicated entry: %w", err)
	}

	slog.InfoContext(ctx, "Replicated entry deleted", "id", msg.ID)
	return nil
}

// ProcessPendingEntries replicates rows whose sync message was lost.
func (w *SyncWorker) ProcessPendingEntries(ctx context.Context) error {
	return w.syncPending(ctx, w.batchSize)
}

// StartupSyncCheck drains the pending backlog accumulated while the
// worker was down. The batch is larger than the steady-state one.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	return w.syncPending(ctx, w.batchSize*5)
}

func (w *SyncWorker) syncPending(ctx context.Context, limit int) error {
	pending, err := w.storage.PendingSync(ctx, limit)
	if err != nil {
		return fmt.Errorf("get pending entries: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending entries", "count", len(pending))

	synced := 0
	failed := 0
	for _, row := range pending {
		if err := w.replicateRow(ctx, row); err != nil {
			slog.ErrorContext(ctx, "Failed to sync entry", "id", row.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Pending sync completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)
	return nil
}

func (w *SyncWorker) replicateRow(ctx context.Context, row storage.EntryRow) error {
	e := core.Entry{
		Date:    row.Date,
		Kind:    core.Kind(row.Kind),
		Payload: row.Payload,
	}

	ref, err := w.replica.AppendEntry(ctx, e)
	if err != nil {
		return fmt.Errorf("append to replica: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, row.ID); err != nil {
		// The replica write landed; a failed mark means this row may be
		// appended twice on retry.
		return fmt.Errorf("mark entry synced: %w", err)
	}

	slog.InfoContext(ctx, "Entry replicated",
		"id", row.ID,
		"sheets_ref", ref,
		"date", row.Date,
		"kind", row.Kind)
	return nil
}

// SeedCatalogsIfEmpty copies the advisory catalogs from the spreadsheet
// into SQLite when the local tables are empty, so autofill works right
// after a fresh deployment.
func (w *SyncWorker) SeedCatalogsIfEmpty(ctx context.Context) error {
	if w.catalogs == nil {
		return nil
	}

	foods, err := w.storage.ListFoods(ctx)
	if err != nil {
		return fmt.Errorf("list local foods: %w", err)
	}
	if len(foods) == 0 {
		remote, err := w.catalogs.ListFoods(ctx)
		if err != nil {
			return fmt.Errorf("list remote foods: %w", err)
		}
		for _, f := range remote {
			if err := w.storage.AddFood(ctx, f); err != nil {
				slog.WarnContext(ctx, "Skipping food during seed", "name", f.Name, "error", err)
			}
		}
		slog.InfoContext(ctx, "Seeded food catalog", "count", len(remote))
	}

	supplements, err := w.storage.ListSupplements(ctx)
	if err != nil {
		return fmt.Errorf("list local supplements: %w", err)
	}
	if len(supplements) == 0 {
		remote, err := w.catalogs.ListSupplements(ctx)
		if err != nil {
			return fmt.Errorf("list remote supplements: %w", err)
		}
		for _, s := range remote {
			if err := w.storage.AddSupplement(ctx, s); err != nil {
				slog.WarnContext(ctx, "Skipping supplement during seed", "name", s.Name, "error", err)
			}
		}
		slog.InfoContext(ctx, "Seeded supplement catalog", "count", len(remote))
	}

	exercises, err := w.storage.ListExercises(ctx)
	if err != nil {
		return fmt.Errorf("list local exercises: %w", err)
	}
	if len(exercises) == 0 {
		remote, err := w.catalogs.ListExercises(ctx)
		if err != nil {
			return fmt.Errorf("list remote exercises: %w", err)
		}
		for _, e := range remote {
			if err := w.storage.AddExercise(ctx, e); err != nil {
				slog.WarnContext(ctx, "Skipping exercise during seed", "name", e.Name, "error", err)
			}
		}
		slog.InfoContext(ctx, "Seeded exercise catalog", "count", len(remote))
	}

	return nil
}
