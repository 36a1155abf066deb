package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"fittrack/internal/core"
)

// Store is an in-memory journal and catalog, used for development and
// tests. It keeps the positional row identity of the sheet backend.
type Store struct {
	mu          sync.Mutex
	entries     []core.Entry
	foods       []core.Food
	supplements []core.Supplement
	exercises   []core.ExerciseDef
}

func New() *Store {
	return &Store{}
}

// NewFromFiles seeds the catalogs from plain-text files under base:
// seed_foods.txt (name;kcal;pro;carb;fat), seed_exercises.txt
// (name;category). Missing files leave the catalog empty.
func NewFromFiles(base string) *Store {
	s := New()
	for _, line := range readLines(filepath.Join(base, "seed_foods.txt")) {
		parts := strings.Split(line, ";")
		f := core.Food{Name: strings.TrimSpace(parts[0])}
		if len(parts) > 1 {
			fmt.Sscanf(strings.Join(parts[1:], " "), "%f %f %f %f", &f.Kcal, &f.Protein, &f.Carbs, &f.Fat)
		}
		if f.Validate() == nil {
			s.foods = append(s.foods, f)
		}
	}
	for _, line := range readLines(filepath.Join(base, "seed_exercises.txt")) {
		parts := strings.Split(line, ";")
		e := core.ExerciseDef{Name: strings.TrimSpace(parts[0]), Category: core.CategoryStrength}
		if len(parts) > 1 {
			if cat := core.ExerciseCategory(strings.TrimSpace(parts[1])); cat.Valid() {
				e.Category = cat
			}
		}
		if e.Validate() == nil {
			s.exercises = append(s.exercises, e)
		}
	}
	return s
}

// ReadJournal returns a copy of the journal in append order.
func (s *Store) ReadJournal(_ context.Context) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// AppendEntry stores the entry and returns a synthetic row reference.
func (s *Store) AppendEntry(_ context.Context, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return fmt.Sprintf("mem:%d", len(s.entries)), nil
}

// DeleteEntry drops the row at the given position; later rows shift up.
func (s *Store) DeleteEntry(_ context.Context, rowIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rowIndex < 0 || rowIndex >= len(s.entries) {
		return fmt.Errorf("row index %d out of range [0,%d): %w", rowIndex, len(s.entries), core.ErrRowOutOfRange)
	}
	s.entries = append(s.entries[:rowIndex], s.entries[rowIndex+1:]...)
	return nil
}

// DeleteEntryMatching removes the last row with the given content,
// mirroring the sheet backend's content-based delete.
func (s *Store) DeleteEntryMatching(_ context.Context, date, kind, payload string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if e.Date == date && string(e.Kind) == kind && e.Payload == payload {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Store) ListFoods(_ context.Context) ([]core.Food, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Food(nil), s.foods...), nil
}

func (s *Store) ListSupplements(_ context.Context) ([]core.Supplement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Supplement(nil), s.supplements...), nil
}

func (s *Store) ListExercises(_ context.Context) ([]core.ExerciseDef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.ExerciseDef(nil), s.exercises...), nil
}

func (s *Store) AddFood(_ context.Context, f core.Food) error {
	if err := f.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.foods = append(s.foods, f)
	return nil
}

func (s *Store) AddSupplement(_ context.Context, sup core.Supplement) error {
	if err := sup.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.supplements = append(s.supplements, sup)
	return nil
}

func (s *Store) AddExercise(_ context.Context, e core.ExerciseDef) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exercises = append(s.exercises, e)
	return nil
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
