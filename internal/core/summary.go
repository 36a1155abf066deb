package core

import "sort"

// Targets are the macro goals a day is measured against.
type Targets struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
}

// DefaultTargets match the goals hard-coded in the first spreadsheet
// revisions, used until a settings row overrides them.
var DefaultTargets = Targets{Calories: 2500, Protein: 180}

// SlotMeal is a decoded meal together with the position of its journal
// row, so the caller can issue a positional delete for it.
type SlotMeal struct {
	Row  int
	Meal Meal
}

// DaySummary is the aggregate view of one journal day: macro totals,
// meals grouped by slot, the day's workout sessions as-is, water intake
// and skill practice minutes.
type DaySummary struct {
	Date     string
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64

	BySlot   map[Slot][]SlotMeal
	Workouts []Workout
	WaterMl  float64
	SkillMin float64

	// Skipped counts rows for the selected date that could not be
	// decoded. Reported instead of silently dropped so the caller can
	// tell "no data" from "bad data".
	Skipped int
}

// Progress expresses consumption against targets as ratios in [0,1],
// ready for progress-bar rendering.
type Progress struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
}

// WeightPoint is one body-weight sample on a calendar date.
type WeightPoint struct {
	Date   string
	Weight float64
}

// Summarize reduces the journal rows for one date into a DaySummary.
// It is a pure single pass: filtering is string equality on the date
// column, malformed rows are counted and skipped, and calling it twice
// on the same input yields identical results.
func Summarize(entries []Entry, date string) DaySummary {
	s := DaySummary{Date: date, BySlot: make(map[Slot][]SlotMeal)}
	for i, e := range entries {
		if e.Date != date {
			continue
		}
		rec, err := e.Decode()
		if err != nil {
			s.Skipped++
			continue
		}
		switch r := rec.(type) {
		case Meal:
			s.Calories += r.Calories
			s.Protein += r.Protein
			s.Carbs += r.Carbs
			s.Fat += r.Fat
			s.BySlot[r.Slot] = append(s.BySlot[r.Slot], SlotMeal{Row: i, Meal: r})
		case Workout:
			// Sessions are heterogeneous and rendered as-is; no scalar
			// total is meaningful across strength, holds and cardio.
			s.Workouts = append(s.Workouts, r)
		case Water:
			s.WaterMl += r.Ml
		case Skill:
			s.SkillMin += r.Minutes
		}
	}
	return s
}

// Progress computes clamped consumed/target ratios. A zero target
// yields a zero ratio rather than a division by zero.
func (s DaySummary) Progress(t Targets) Progress {
	return Progress{
		Calories: ratio(s.Calories, t.Calories),
		Protein:  ratio(s.Protein, t.Protein),
		Carbs:    ratio(s.Carbs, t.Carbs),
		Fat:      ratio(s.Fat, t.Fat),
	}
}

func ratio(consumed, target float64) float64 {
	if target <= 0 {
		return 0
	}
	r := consumed / target
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

// CurrentSettings returns the decoded payload of the most recently
// appended settings row. Rows that fail to decode are skipped, so a
// half-written settings row does not hide an older valid one.
func CurrentSettings(entries []Entry) (Settings, bool) {
	for i := len(entries) - 1; i >= 0; i-- {
		if k, ok := NormalizeKind(string(entries[i].Kind)); !ok || k != KindSettings {
			continue
		}
		rec, err := entries[i].Decode()
		if err != nil {
			continue
		}
		if s, ok := rec.(Settings); ok {
			return s, true
		}
	}
	return Settings{}, false
}

// CurrentTargets resolves the active macro targets: the latest settings
// row when one sets any target, DefaultTargets otherwise.
func CurrentTargets(entries []Entry) Targets {
	s, ok := CurrentSettings(entries)
	if !ok {
		return DefaultTargets
	}
	t := Targets{
		Calories: s.TargetCalories,
		Protein:  s.TargetProtein,
		Carbs:    s.TargetCarbs,
		Fat:      s.TargetFat,
	}
	if t == (Targets{}) {
		return DefaultTargets
	}
	return t
}

// WeightSeries extracts the body-weight trend across all dates, sorted
// by date ascending. Multiple measurements on one day keep append
// order, so the later row wins a WeightOn lookup for that day.
func WeightSeries(entries []Entry) []WeightPoint {
	var pts []WeightPoint
	for _, e := range entries {
		if k, ok := NormalizeKind(string(e.Kind)); !ok || k != KindMeasurement {
			continue
		}
		rec, err := e.Decode()
		if err != nil {
			continue
		}
		m, ok := rec.(Measurement)
		if !ok || m.Weight <= 0 {
			continue
		}
		pts = append(pts, WeightPoint{Date: e.Date, Weight: m.Weight})
	}
	// YYYY-MM-DD sorts lexicographically; stable keeps append order
	// within a date.
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Date < pts[j].Date })
	return pts
}

// WeightOn returns the most recent weight sample on or before the given
// date, for "today's weight" lookups on days with no measurement.
func WeightOn(series []WeightPoint, date string) (float64, bool) {
	for i := len(series) - 1; i >= 0; i-- {
		if series[i].Date <= date {
			return series[i].Weight, true
		}
	}
	return 0, false
}
