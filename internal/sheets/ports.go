package sheets

import (
	"context"
	"fittrack/internal/core"
)

// Ports for outbound adapters.
type (
	// JournalReader fetches the whole journal table in row order.
	JournalReader interface {
		ReadJournal(ctx context.Context) ([]core.Entry, error)
	}

	// JournalAppender appends one entry row and returns a backend row
	// reference (sheet range or database id).
	JournalAppender interface {
		AppendEntry(ctx context.Context, e core.Entry) (rowRef string, err error)
	}

	// JournalDeleter removes the row at the given zero-based position.
	// Row identity is positional: an index obtained from an earlier read
	// is stale once another writer has appended or removed rows.
	JournalDeleter interface {
		DeleteEntry(ctx context.Context, rowIndex int) error
	}

	// CatalogReader lists the advisory autofill catalogs.
	CatalogReader interface {
		ListFoods(ctx context.Context) ([]core.Food, error)
		ListSupplements(ctx context.Context) ([]core.Supplement, error)
		ListExercises(ctx context.Context) ([]core.ExerciseDef, error)
	}

	// CatalogWriter appends catalog rows.
	CatalogWriter interface {
		AddFood(ctx context.Context, f core.Food) error
		AddSupplement(ctx context.Context, s core.Supplement) error
		AddExercise(ctx context.Context, e core.ExerciseDef) error
	}
)
