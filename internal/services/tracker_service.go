package services

import (
	"context"
	"fmt"

	"fittrack/internal/core"
	"fittrack/internal/sheets"
)

// JournalBackend is the full set of ports a tracker needs.
type JournalBackend interface {
	sheets.JournalReader
	sheets.JournalAppender
	sheets.JournalDeleter
	sheets.CatalogReader
	sheets.CatalogWriter
}

// TrackerService computes derived views over the journal. It owns no
// state beyond the fallback targets; every view is recomputed from a
// full journal read, which is what keeps the journal the single source
// of truth.
type TrackerService struct {
	backend  JournalBackend
	defaults core.Targets
}

func NewTrackerService(backend JournalBackend, defaults core.Targets) *TrackerService {
	if defaults == (core.Targets{}) {
		defaults = core.DefaultTargets
	}
	return &TrackerService{backend: backend, defaults: defaults}
}

// AppendRecord validates and appends one journal row for the given day.
func (s *TrackerService) AppendRecord(ctx context.Context, date string, rec core.Record) (string, error) {
	if v, ok := rec.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return "", err
		}
	}
	e, err := core.NewEntry(date, rec)
	if err != nil {
		return "", err
	}
	ref, err := s.backend.AppendEntry(ctx, e)
	if err != nil {
		return "", fmt.Errorf("append %s entry: %w", rec.Kind(), err)
	}
	return ref, nil
}

func (s *TrackerService) Entries(ctx context.Context) ([]core.Entry, error) {
	return s.backend.ReadJournal(ctx)
}

func (s *TrackerService) DeleteEntry(ctx context.Context, rowIndex int) error {
	return s.backend.DeleteEntry(ctx, rowIndex)
}

// DayView is a DaySummary together with the targets and progress it was
// measured against.
type DayView struct {
	Summary  core.DaySummary
	Targets  core.Targets
	Progress core.Progress
}

// Day builds the aggregate view for one date. An empty journal is a
// valid zero-total day, not an error.
func (s *TrackerService) Day(ctx context.Context, date string) (DayView, error) {
	if err := core.ValidDate(date); err != nil {
		return DayView{}, err
	}
	entries, err := s.backend.ReadJournal(ctx)
	if err != nil {
		return DayView{}, fmt.Errorf("read journal: %w", err)
	}

	summary := core.Summarize(entries, date)
	targets := s.resolveTargets(entries)
	return DayView{
		Summary:  summary,
		Targets:  targets,
		Progress: summary.Progress(targets),
	}, nil
}

func (s *TrackerService) resolveTargets(entries []core.Entry) core.Targets {
	set, ok := core.CurrentSettings(entries)
	if !ok {
		return s.defaults
	}
	t := core.Targets{
		Calories: set.TargetCalories,
		Protein:  set.TargetProtein,
		Carbs:    set.TargetCarbs,
		Fat:      set.TargetFat,
	}
	if t == (core.Targets{}) {
		return s.defaults
	}
	return t
}

// WeightHistory returns the body-weight trend, oldest first.
func (s *TrackerService) WeightHistory(ctx context.Context) ([]core.WeightPoint, error) {
	entries, err := s.backend.ReadJournal(ctx)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return core.WeightSeries(entries), nil
}

// Settings returns the latest settings row. ok is false when the
// journal has none.
func (s *TrackerService) Settings(ctx context.Context) (core.Settings, bool, error) {
	entries, err := s.backend.ReadJournal(ctx)
	if err != nil {
		return core.Settings{}, false, fmt.Errorf("read journal: %w", err)
	}
	set, ok := core.CurrentSettings(entries)
	return set, ok, nil
}

// UpdateSettings appends a new settings row dated today. Older rows are
// kept; the newest one wins on read.
func (s *TrackerService) UpdateSettings(ctx context.Context, set core.Settings) (string, error) {
	return s.AppendRecord(ctx, core.Today(), set)
}

func (s *TrackerService) Foods(ctx context.Context) ([]core.Food, error) {
	return s.backend.ListFoods(ctx)
}

func (s *TrackerService) Supplements(ctx context.Context) ([]core.Supplement, error) {
	return s.backend.ListSupplements(ctx)
}

func (s *TrackerService) Exercises(ctx context.Context) ([]core.ExerciseDef, error) {
	return s.backend.ListExercises(ctx)
}

func (s *TrackerService) AddFood(ctx context.Context, f core.Food) error {
	return s.backend.AddFood(ctx, f)
}

func (s *TrackerService) AddSupplement(ctx context.Context, sup core.Supplement) error {
	return s.backend.AddSupplement(ctx, sup)
}

func (s *TrackerService) AddExercise(ctx context.Context, e core.ExerciseDef) error {
	return s.backend.AddExercise(ctx, e)
}
