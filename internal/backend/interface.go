package backend

import (
	"context"

	"fittrack/internal/sheets"
)

// Backend bundles every port a tracker needs from its datastore.
type Backend interface {
	sheets.JournalReader
	sheets.JournalAppender
	sheets.JournalDeleter
	sheets.CatalogReader
	sheets.CatalogWriter
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// BackendResult pairs the backend with its cleanup, which may be nil.
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds everything backend creation can need.
type Config struct {
	Type BackendType

	// SQLite
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets
	GoogleSpreadsheetID string
	GoogleJournalSheet  string

	// Memory
	DataDirectory string
}

// BackendType selects the datastore implementation.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
