package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fittrack/internal/core"
)

func TestAppendReadRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	records := []core.Record{
		core.Meal{Slot: core.SlotLunch, Name: "Riso", Calories: 360},
		core.Workout{SessionName: "Push", DurationMin: 45},
		core.Measurement{Weight: 80.5},
		core.Settings{TargetCalories: 2400},
		core.Water{Ml: 500},
		core.Skill{Name: "Verticale", Minutes: 15},
	}
	for _, r := range records {
		e, err := core.NewEntry("2024-01-01", r)
		if err != nil {
			t.Fatalf("NewEntry: %v", err)
		}
		if _, err := s.AppendEntry(ctx, e); err != nil {
			t.Fatalf("%s: append: %v", r.Kind(), err)
		}
	}

	entries, err := s.ReadJournal(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != len(records) {
		t.Fatalf("expected %d rows, got %d", len(records), len(entries))
	}
	for i, want := range records {
		got, err := entries[i].Decode()
		if err != nil {
			t.Fatalf("row %d decode: %v", i, err)
		}
		if got.Kind() != want.Kind() {
			t.Fatalf("row %d: kind %q want %q", i, got.Kind(), want.Kind())
		}
	}
}

func TestDeleteRenumbers(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		e, _ := core.NewEntry("2024-01-01", core.Meal{Slot: core.SlotLunch, Name: name})
		if _, err := s.AppendEntry(ctx, e); err != nil {
			t.Fatalf("append %s: %v", name, err)
		}
	}

	if err := s.DeleteEntry(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	entries, _ := s.ReadJournal(ctx)
	if len(entries) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(entries))
	}
	first, _ := entries[0].Decode()
	second, _ := entries[1].Decode()
	if first.(core.Meal).Name != "a" || second.(core.Meal).Name != "c" {
		t.Fatalf("expected rows a and c, got %+v %+v", first, second)
	}

	if err := s.DeleteEntry(ctx, 5); !errors.Is(err, core.ErrRowOutOfRange) {
		t.Fatalf("expected ErrRowOutOfRange, got %v", err)
	}
	if err := s.DeleteEntry(ctx, -1); !errors.Is(err, core.ErrRowOutOfRange) {
		t.Fatalf("expected ErrRowOutOfRange for negative index, got %v", err)
	}
}

func TestAppendValidates(t *testing.T) {
	s := New()
	_, err := s.AppendEntry(context.Background(), core.Entry{Date: "bad", Kind: core.KindMeal, Payload: "{}"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestNewFromFilesSeedsCatalogs(t *testing.T) {
	dir := t.TempDir()
	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite("seed_foods.txt", "# name;kcal;pro;carb;fat\nRiso;360;7;79;1\nPollo;110;23;0;1\n\n")
	mustWrite("seed_exercises.txt", "Panca;Strength\nPlank;Isometric\nTrazioni\n")

	s := NewFromFiles(dir)
	foods, _ := s.ListFoods(context.Background())
	if len(foods) != 2 || foods[0].Name != "Riso" || foods[0].Kcal != 360 {
		t.Fatalf("foods: %+v", foods)
	}
	exs, _ := s.ListExercises(context.Background())
	if len(exs) != 3 || exs[1].Category != core.CategoryIsometric || exs[2].Category != core.CategoryStrength {
		t.Fatalf("exercises: %+v", exs)
	}
}
