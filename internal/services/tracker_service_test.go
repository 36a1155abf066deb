package services

import (
	"context"
	"errors"
	"testing"

	"fittrack/internal/core"
	"fittrack/internal/sheets/memory"
)

func newTracker() *TrackerService {
	return NewTrackerService(memory.New(), core.Targets{})
}

func TestAppendRecordAndDay(t *testing.T) {
	svc := newTracker()
	ctx := context.Background()

	_, err := svc.AppendRecord(ctx, "2024-03-01", core.Meal{
		Slot: core.SlotLunch, Name: "Pasta", Quantity: 120,
		Calories: 450, Protein: 15, Carbs: 88, Fat: 4,
	})
	if err != nil {
		t.Fatalf("append meal: %v", err)
	}
	if _, err := svc.AppendRecord(ctx, "2024-03-01", core.Water{Ml: 500}); err != nil {
		t.Fatalf("append water: %v", err)
	}
	if _, err := svc.AppendRecord(ctx, "2024-03-02", core.Water{Ml: 750}); err != nil {
		t.Fatalf("append water: %v", err)
	}

	view, err := svc.Day(ctx, "2024-03-01")
	if err != nil {
		t.Fatalf("day: %v", err)
	}
	if view.Summary.Calories != 450 || view.Summary.WaterMl != 500 {
		t.Errorf("summary = %+v", view.Summary)
	}
	if len(view.Summary.BySlot[core.SlotLunch]) != 1 {
		t.Errorf("expected one lunch meal, got %+v", view.Summary.BySlot)
	}
	if view.Targets != core.DefaultTargets {
		t.Errorf("targets = %+v, want defaults", view.Targets)
	}
	if view.Progress.Calories <= 0 || view.Progress.Calories > 1 {
		t.Errorf("progress calories = %v", view.Progress.Calories)
	}
}

func TestAppendRecordRejectsInvalid(t *testing.T) {
	svc := newTracker()
	ctx := context.Background()

	if _, err := svc.AppendRecord(ctx, "01/03/2024", core.Water{Ml: 500}); !errors.Is(err, core.ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
	if _, err := svc.AppendRecord(ctx, "2024-03-01", core.Water{Ml: -1}); err == nil {
		t.Error("expected negative water to fail")
	}

	if _, err := svc.Day(ctx, "not-a-date"); !errors.Is(err, core.ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}

func TestDayOnEmptyJournal(t *testing.T) {
	svc := newTracker()

	view, err := svc.Day(context.Background(), "2024-03-01")
	if err != nil {
		t.Fatalf("empty journal should not error: %v", err)
	}
	if view.Summary.Calories != 0 || view.Summary.Skipped != 0 {
		t.Errorf("summary = %+v, want zeros", view.Summary)
	}
}

func TestSettingsLastWriteWins(t *testing.T) {
	svc := newTracker()
	ctx := context.Background()

	if _, ok, err := svc.Settings(ctx); err != nil || ok {
		t.Fatalf("expected no settings, got ok=%v err=%v", ok, err)
	}

	if _, err := svc.UpdateSettings(ctx, core.Settings{TargetCalories: 2200, TargetProtein: 170}); err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if _, err := svc.UpdateSettings(ctx, core.Settings{TargetCalories: 2000, TargetProtein: 160}); err != nil {
		t.Fatalf("update settings: %v", err)
	}

	set, ok, err := svc.Settings(ctx)
	if err != nil || !ok {
		t.Fatalf("settings: ok=%v err=%v", ok, err)
	}
	if set.TargetCalories != 2000 || set.TargetProtein != 160 {
		t.Errorf("settings = %+v, want latest row", set)
	}

	view, err := svc.Day(ctx, core.Today())
	if err != nil {
		t.Fatalf("day: %v", err)
	}
	if view.Targets.Calories != 2000 {
		t.Errorf("targets = %+v, want settings-derived", view.Targets)
	}
}

func TestCustomDefaultTargets(t *testing.T) {
	svc := NewTrackerService(memory.New(), core.Targets{Calories: 1800, Protein: 140})

	view, err := svc.Day(context.Background(), "2024-03-01")
	if err != nil {
		t.Fatalf("day: %v", err)
	}
	if view.Targets.Calories != 1800 || view.Targets.Protein != 140 {
		t.Errorf("targets = %+v, want configured defaults", view.Targets)
	}
}

func TestWeightHistoryAndDelete(t *testing.T) {
	svc := newTracker()
	ctx := context.Background()

	for _, p := range []struct {
		date   string
		weight float64
	}{
		{"2024-03-02", 81.5},
		{"2024-03-01", 82.0},
	} {
		if _, err := svc.AppendRecord(ctx, p.date, core.Measurement{Weight: p.weight}); err != nil {
			t.Fatalf("append measurement: %v", err)
		}
	}

	pts, err := svc.WeightHistory(ctx)
	if err != nil {
		t.Fatalf("weight history: %v", err)
	}
	if len(pts) != 2 || pts[0].Date != "2024-03-01" || pts[1].Weight != 81.5 {
		t.Errorf("weight series = %+v", pts)
	}

	if err := svc.DeleteEntry(ctx, 0); err != nil {
		t.Fatalf("delete: %v", err)
	}
	pts, _ = svc.WeightHistory(ctx)
	if len(pts) != 1 || pts[0].Weight != 82.0 {
		t.Errorf("weight series after delete = %+v", pts)
	}

	if err := svc.DeleteEntry(ctx, 5); !errors.Is(err, core.ErrRowOutOfRange) {
		t.Errorf("expected ErrRowOutOfRange, got %v", err)
	}
}
