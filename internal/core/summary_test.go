package core

import (
	"reflect"
	"testing"
)

func mustEntry(t *testing.T, date string, r Record) Entry {
	t.Helper()
	e, err := NewEntry(date, r)
	if err != nil {
		t.Fatalf("NewEntry: %v", err)
	}
	return e
}

func TestSummarizeEmptyTable(t *testing.T) {
	s := Summarize(nil, "2024-01-01")
	if s.Calories != 0 || s.Protein != 0 || s.Carbs != 0 || s.Fat != 0 || s.WaterMl != 0 {
		t.Fatalf("expected zero totals, got %+v", s)
	}
	if len(s.BySlot) != 0 || len(s.Workouts) != 0 || s.Skipped != 0 {
		t.Fatalf("expected empty groupings, got %+v", s)
	}
}

func TestSummarizeLunchScenario(t *testing.T) {
	entries := []Entry{
		mustEntry(t, "2024-01-01", Meal{Slot: SlotLunch, Name: "a", Calories: 300, Protein: 20, Carbs: 30, Fat: 10}),
		mustEntry(t, "2024-01-01", Meal{Slot: SlotLunch, Name: "b", Calories: 500, Protein: 40, Carbs: 50, Fat: 15}),
		mustEntry(t, "2024-01-02", Meal{Slot: SlotLunch, Name: "other day", Calories: 999, Protein: 99, Carbs: 99, Fat: 99}),
		mustEntry(t, "2024-01-01", Meal{Slot: SlotLunch, Name: "c", Calories: 150, Protein: 5, Carbs: 20, Fat: 5}),
	}
	s := Summarize(entries, "2024-01-01")
	if s.Calories != 950 || s.Protein != 65 || s.Carbs != 100 || s.Fat != 30 {
		t.Fatalf("totals: got %+v", s)
	}
	lunch := s.BySlot[SlotLunch]
	if len(lunch) != 3 {
		t.Fatalf("lunch grouping: got %d entries", len(lunch))
	}
	if lunch[0].Meal.Name != "a" || lunch[1].Meal.Name != "b" || lunch[2].Meal.Name != "c" {
		t.Fatalf("lunch order: %+v", lunch)
	}
	// Row indexes refer to positions in the full table.
	if lunch[0].Row != 0 || lunch[1].Row != 1 || lunch[2].Row != 3 {
		t.Fatalf("row indexes: %+v", lunch)
	}
}

func TestSummarizeIdempotent(t *testing.T) {
	entries := []Entry{
		mustEntry(t, "2024-01-01", Meal{Slot: SlotBreakfast, Name: "x", Calories: 100}),
		mustEntry(t, "2024-01-01", Water{Ml: 250}),
		mustEntry(t, "2024-01-01", Workout{SessionName: "A", DurationMin: 30}),
	}
	first := Summarize(entries, "2024-01-01")
	second := Summarize(entries, "2024-01-01")
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestSummarizeSkipsMalformedRows(t *testing.T) {
	entries := []Entry{
		mustEntry(t, "2024-01-01", Meal{Slot: SlotDinner, Name: "ok", Calories: 400}),
		{Date: "2024-01-01", Kind: KindMeal, Payload: `{"nome":"trunc`},
		mustEntry(t, "2024-01-01", Water{Ml: 300}),
	}
	s := Summarize(entries, "2024-01-01")
	if s.Calories != 400 || s.WaterMl != 300 {
		t.Fatalf("rows after malformed one must still count: %+v", s)
	}
	if s.Skipped != 1 {
		t.Fatalf("skipped: got %d want 1", s.Skipped)
	}
}

func TestSummarizeCollectsNonMealKinds(t *testing.T) {
	entries := []Entry{
		mustEntry(t, "2024-01-01", Workout{SessionName: "Pull", DurationMin: 50, Exercises: []Exercise{
			{Mode: ExerciseStrength, Name: "Trazioni", Sets: 5, Reps: 5},
		}}),
		mustEntry(t, "2024-01-01", Water{Ml: 500}),
		mustEntry(t, "2024-01-01", Water{Ml: 250}),
		mustEntry(t, "2024-01-01", Skill{Name: "Verticale", Minutes: 10}),
		mustEntry(t, "2024-01-01", Measurement{Weight: 80}),
	}
	s := Summarize(entries, "2024-01-01")
	if len(s.Workouts) != 1 || s.Workouts[0].SessionName != "Pull" {
		t.Fatalf("workouts: %+v", s.Workouts)
	}
	if s.WaterMl != 750 {
		t.Fatalf("water: got %v", s.WaterMl)
	}
	if s.SkillMin != 10 {
		t.Fatalf("skill: got %v", s.SkillMin)
	}
}

func TestProgressClampedAndZeroGuarded(t *testing.T) {
	s := DaySummary{Calories: 3000, Protein: 90, Fat: 50}
	p := s.Progress(Targets{Calories: 2500, Protein: 180})
	if p.Calories != 1 {
		t.Fatalf("calories ratio must clamp to 1, got %v", p.Calories)
	}
	if p.Protein != 0.5 {
		t.Fatalf("protein ratio: got %v", p.Protein)
	}
	if p.Fat != 0 {
		t.Fatalf("zero target must yield 0, got %v", p.Fat)
	}
}

func TestCurrentSettingsLastWriteWins(t *testing.T) {
	entries := []Entry{
		mustEntry(t, "2024-01-01", Settings{TargetCalories: 2000}),
		mustEntry(t, "2024-01-02", Meal{Slot: SlotLunch, Name: "x"}),
		mustEntry(t, "2024-01-02", Settings{TargetCalories: 2200, PhotoURL: "https://a"}),
		mustEntry(t, "2024-01-03", Settings{TargetCalories: 2400}),
	}
	s, ok := CurrentSettings(entries)
	if !ok || s.TargetCalories != 2400 {
		t.Fatalf("expected last settings row, got %+v ok=%v", s, ok)
	}

	// A malformed trailing settings row must not hide the valid one.
	entries = append(entries, Entry{Date: "2024-01-04", Kind: KindSettings, Payload: `{"target_cal":`})
	s, ok = CurrentSettings(entries)
	if !ok || s.TargetCalories != 2400 {
		t.Fatalf("expected fallback past malformed row, got %+v ok=%v", s, ok)
	}

	if _, ok := CurrentSettings(nil); ok {
		t.Fatalf("empty journal has no settings")
	}
}

func TestCurrentTargets(t *testing.T) {
	if got := CurrentTargets(nil); got != DefaultTargets {
		t.Fatalf("no settings: got %+v", got)
	}
	entries := []Entry{
		mustEntry(t, "2024-01-01", Settings{PhotoURL: "https://a"}), // no targets set
	}
	if got := CurrentTargets(entries); got != DefaultTargets {
		t.Fatalf("photo-only settings must keep defaults, got %+v", got)
	}
	entries = append(entries, mustEntry(t, "2024-01-02", Settings{TargetCalories: 2100, TargetProtein: 160}))
	got := CurrentTargets(entries)
	if got.Calories != 2100 || got.Protein != 160 {
		t.Fatalf("got %+v", got)
	}
}

func TestWeightSeriesAndLookup(t *testing.T) {
	entries := []Entry{
		mustEntry(t, "2024-01-05", Measurement{Weight: 79.8}),
		mustEntry(t, "2024-01-01", Measurement{Weight: 80.5}),
		{Date: "2024-01-02", Kind: KindMeasurement, Payload: `broken`},
		mustEntry(t, "2024-01-03", Meal{Slot: SlotLunch, Name: "not a measure"}),
	}
	series := WeightSeries(entries)
	if len(series) != 2 || series[0].Date != "2024-01-01" || series[1].Date != "2024-01-05" {
		t.Fatalf("series: %+v", series)
	}

	w, ok := WeightOn(series, "2024-01-03")
	if !ok || w != 80.5 {
		t.Fatalf("on-or-before lookup: got %v ok=%v", w, ok)
	}
	w, ok = WeightOn(series, "2024-01-05")
	if !ok || w != 79.8 {
		t.Fatalf("exact date lookup: got %v ok=%v", w, ok)
	}
	if _, ok := WeightOn(series, "2023-12-31"); ok {
		t.Fatalf("lookup before first sample must miss")
	}
}

func TestWeightSeriesSameDayKeepsAppendOrder(t *testing.T) {
	entries := []Entry{
		mustEntry(t, "2024-01-01", Measurement{Weight: 81}),
		mustEntry(t, "2024-01-01", Measurement{Weight: 80.2}),
	}
	series := WeightSeries(entries)
	w, ok := WeightOn(series, "2024-01-01")
	if !ok || w != 80.2 {
		t.Fatalf("later same-day sample must win, got %v", w)
	}
}
