package backend

import (
	"context"
	"path/filepath"
	"testing"

	"fittrack/internal/config"
	"fittrack/internal/core"
)

func TestBackendTypeIsValid(t *testing.T) {
	for _, bt := range []BackendType{SQLiteBackend, SheetsBackend, MemoryBackend} {
		if !bt.IsValid() {
			t.Errorf("%s should be valid", bt)
		}
	}
	if BackendType("postgres").IsValid() {
		t.Error("unknown backend type should be invalid")
	}
}

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: "./x.db",
		AMQPURL:      "amqp://localhost/",
		AMQPExchange: "fittrack",
		AMQPQueue:    "sync_entries",
	})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "./x.db" {
		t.Errorf("config = %+v", cfg)
	}

	if _, err := FromAppConfig(nil); err == nil {
		t.Error("nil app config should fail")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "nope"}); err == nil {
		t.Error("unknown backend should fail")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{Type: SQLiteBackend}).Validate(); err == nil {
		t.Error("sqlite without db path should fail")
	}
	if err := (Config{Type: SheetsBackend, GoogleJournalSheet: "diario"}).Validate(); err == nil {
		t.Error("sheets without spreadsheet id should fail")
	}
	if err := (Config{Type: MemoryBackend}).Validate(); err != nil {
		t.Errorf("memory backend should validate: %v", err)
	}
}

func TestFactoryCreatesMemoryBackend(t *testing.T) {
	factory := NewFactory(nil)

	result, err := factory.CreateBackend(context.Background(), Config{Type: MemoryBackend, DataDirectory: t.TempDir()})
	if err != nil {
		t.Fatalf("create memory backend: %v", err)
	}
	if result.Backend == nil {
		t.Fatal("nil backend")
	}
	if result.Cleanup != nil {
		t.Error("memory backend needs no cleanup")
	}
}

func TestFactoryCreatesSQLiteBackend(t *testing.T) {
	factory := NewFactory(nil)
	ctx := context.Background()

	result, err := factory.CreateBackend(ctx, Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "fittrack.db"),
	})
	if err != nil {
		t.Fatalf("create sqlite backend: %v", err)
	}
	defer result.Cleanup()

	e, err := core.NewEntry("2024-03-01", core.Water{Ml: 300})
	if err != nil {
		t.Fatalf("NewEntry: %v", err)
	}
	if _, err := result.Backend.AppendEntry(ctx, e); err != nil {
		t.Fatalf("append through backend: %v", err)
	}
	entries, err := result.Backend.ReadJournal(ctx)
	if err != nil || len(entries) != 1 {
		t.Fatalf("read through backend: %v, %d rows", err, len(entries))
	}
}
