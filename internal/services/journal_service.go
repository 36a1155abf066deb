package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"fittrack/internal/amqp"
	"fittrack/internal/core"
	applog "fittrack/internal/log"
	"fittrack/internal/storage"
)

// JournalService is the SQLite-backed journal with write-behind
// replication to the spreadsheet. Writes land in SQLite first; a sync
// message is published afterwards and a publish failure never fails
// the write, since the worker re-syncs pending rows on its own.
type JournalService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewJournalService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *JournalService {
	return &JournalService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

func (s *JournalService) ReadJournal(ctx context.Context) ([]core.Entry, error) {
	return s.storage.ReadJournal(ctx)
}

// AppendEntry saves the entry locally and queues replication.
func (s *JournalService) AppendEntry(ctx context.Context, e core.Entry) (string, error) {
	ref, err := s.storage.AppendEntry(ctx, e)
	if err != nil {
		return "", fmt.Errorf("save entry: %w", err)
	}

	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to parse entry ID", "ref", ref, "error", err)
		return ref, nil // the local save succeeded
	}

	if err := s.publishSyncMessage(ctx, id, 1); err != nil {
		fields := applog.NewFields().
			WithComponent(applog.ComponentJournal).
			WithOperation(applog.OpSync).
			WithEntry(e.Date, string(e.Kind)).
			WithError(err)
		fields[applog.FieldEntryID] = id
		slog.ErrorContext(ctx, "Failed to publish sync message", fields.ToSlice()...)
	}

	return ref, nil
}

// DeleteEntry resolves the positional index against the current append
// order, soft deletes the row, and queues removal of its replica.
func (s *JournalService) DeleteEntry(ctx context.Context, rowIndex int) error {
	rows, err := s.storage.ListRows(ctx)
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}
	if rowIndex < 0 || rowIndex >= len(rows) {
		return fmt.Errorf("row index %d out of range [0,%d): %w", rowIndex, len(rows), core.ErrRowOutOfRange)
	}
	row := rows[rowIndex]

	if err := s.storage.DeleteEntryByID(ctx, row.ID); err != nil {
		return fmt.Errorf("soft delete entry: %w", err)
	}

	if err := s.publishDeleteMessage(ctx, row); err != nil {
		fields := applog.NewFields().
			WithComponent(applog.ComponentJournal).
			WithOperation(applog.OpDelete).
			WithEntry(row.Date, row.Kind).
			WithError(err)
		fields[applog.FieldEntryID] = row.ID
		slog.ErrorContext(ctx, "Failed to publish delete message", fields.ToSlice()...)
	}

	return nil
}

func (s *JournalService) publishSyncMessage(ctx context.Context, id, version int64) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}
	return s.amqpClient.PublishEntrySync(ctx, id, version)
}

func (s *JournalService) publishDeleteMessage(ctx context.Context, row storage.EntryRow) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping delete message")
		return nil
	}
	return s.amqpClient.PublishEntryDelete(ctx, row.ID, row.Date, row.Kind, row.Payload)
}

// Catalog operations hit SQLite directly; catalogs are not replicated
// by the worker, they are seeded per backend.

func (s *JournalService) ListFoods(ctx context.Context) ([]core.Food, error) {
	return s.storage.ListFoods(ctx)
}

func (s *JournalService) ListSupplements(ctx context.Context) ([]core.Supplement, error) {
	return s.storage.ListSupplements(ctx)
}

func (s *JournalService) ListExercises(ctx context.Context) ([]core.ExerciseDef, error) {
	return s.storage.ListExercises(ctx)
}

func (s *JournalService) AddFood(ctx context.Context, f core.Food) error {
	return s.storage.AddFood(ctx, f)
}

func (s *JournalService) AddSupplement(ctx context.Context, sup core.Supplement) error {
	return s.storage.AddSupplement(ctx, sup)
}

func (s *JournalService) AddExercise(ctx context.Context, e core.ExerciseDef) error {
	return s.storage.AddExercise(ctx, e)
}

// Close releases both the database and the broker connection.
func (s *JournalService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close journal service: %v", errs)
	}
	return nil
}
