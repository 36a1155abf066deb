package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Meal slots. Unknown slot values fall back to SlotSnack.
const (
	SlotBreakfast  Slot = "Breakfast"
	SlotLunch      Slot = "Lunch"
	SlotDinner     Slot = "Dinner"
	SlotSnack      Slot = "Snack"
	SlotSupplement Slot = "Supplement"
)

// Exercise modes inside a workout session.
const (
	ExerciseStrength  = "pesi"
	ExerciseCardio    = "cardio"
	ExerciseIsometric = "isometrico"
)

type (
	Slot string

	// Record is the decoded form of an entry payload: exactly one of
	// Meal, Workout, Measurement, Settings, Water or Skill.
	Record interface {
		Kind() Kind
	}

	// Meal is one logged food or supplement intake. Macro values are for
	// the logged quantity, not per 100g. JSON tags match the blob layout
	// of the spreadsheet, which predates this codebase.
	Meal struct {
		Slot     Slot    `json:"pasto"`
		Name     string  `json:"nome"`
		Quantity float64 `json:"gr"`
		Unit     string  `json:"unita,omitempty"`
		Calories float64 `json:"cal"`
		Protein  float64 `json:"pro"`
		Carbs    float64 `json:"carb"`
		Fat      float64 `json:"fat"`
	}

	// Exercise is one element of a workout session. The sequence is
	// heterogeneous: strength sets, cardio distance/duration or timed
	// holds, discriminated by Mode.
	Exercise struct {
		Mode    string  `json:"type"`
		Name    string  `json:"nome"`
		Sets    int     `json:"serie,omitempty"`
		Reps    int     `json:"reps,omitempty"`
		Kg      float64 `json:"kg,omitempty"`
		Km      float64 `json:"km,omitempty"`
		Minutes float64 `json:"tempo,omitempty"`
		Kcal    float64 `json:"kcal,omitempty"`
		Seconds float64 `json:"secondi,omitempty"`
	}

	Workout struct {
		SessionName string     `json:"nome_sessione"`
		DurationMin float64    `json:"durata"`
		Exercises   []Exercise `json:"esercizi"`
	}

	// Measurement is a body-metrics snapshot. Weight is the only field
	// every revision wrote; the rest are optional.
	Measurement struct {
		Weight float64 `json:"peso"`
		Height float64 `json:"alt,omitempty"`
		Neck   float64 `json:"collo,omitempty"`
		Waist  float64 `json:"vita,omitempty"`
		Hips   float64 `json:"fianchi,omitempty"`
	}

	// Settings holds user preferences. Current settings is the payload
	// of the most recently appended settings row (last-write-wins by
	// append order, not timestamp).
	Settings struct {
		TargetCalories float64 `json:"target_cal,omitempty"`
		TargetProtein  float64 `json:"target_pro,omitempty"`
		TargetCarbs    float64 `json:"target_carb,omitempty"`
		TargetFat      float64 `json:"target_fat,omitempty"`
		PhotoURL       string  `json:"url_foto,omitempty"`
	}

	Water struct {
		Ml float64 `json:"ml"`
	}

	Skill struct {
		Name    string  `json:"nome"`
		Minutes float64 `json:"minuti"`
		Note    string  `json:"nota,omitempty"`
	}
)

func (Meal) Kind() Kind        { return KindMeal }
func (Workout) Kind() Kind     { return KindWorkout }
func (Measurement) Kind() Kind { return KindMeasurement }
func (Settings) Kind() Kind    { return KindSettings }
func (Water) Kind() Kind       { return KindWater }
func (Skill) Kind() Kind       { return KindSkill }

// legacySlots maps the slot labels written by the spreadsheet UI.
var legacySlots = map[string]Slot{
	"colazione":    SlotBreakfast,
	"pranzo":       SlotLunch,
	"cena":         SlotDinner,
	"spuntino":     SlotSnack,
	"integrazione": SlotSupplement,
}

// NormalizeSlot maps any slot label to a canonical one, defaulting
// unknown values to SlotSnack.
func NormalizeSlot(s string) Slot {
	switch Slot(strings.TrimSpace(s)) {
	case SlotBreakfast, SlotLunch, SlotDinner, SlotSnack, SlotSupplement:
		return Slot(strings.TrimSpace(s))
	}
	if slot, ok := legacySlots[strings.ToLower(strings.TrimSpace(s))]; ok {
		return slot
	}
	return SlotSnack
}

// Decode parses the entry payload into its typed record. The payload is
// parsed exactly once here; callers branch on the returned type instead
// of re-reading JSON. Rows from older schema revisions may lack fields,
// which is fine: missing fields decode to zero values.
func (e Entry) Decode() (Record, error) {
	kind, ok := NormalizeKind(string(e.Kind))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}
	raw := []byte(e.Payload)
	switch kind {
	case KindMeal:
		var m Meal
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decode meal payload: %w", err)
		}
		m.Slot = NormalizeSlot(string(m.Slot))
		return m, nil
	case KindWorkout:
		var w Workout
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, fmt.Errorf("decode workout payload: %w", err)
		}
		return w, nil
	case KindMeasurement:
		var m Measurement
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decode measurement payload: %w", err)
		}
		return m, nil
	case KindSettings:
		var s Settings
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode settings payload: %w", err)
		}
		return s, nil
	case KindWater:
		var w Water
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, fmt.Errorf("decode water payload: %w", err)
		}
		return w, nil
	case KindSkill:
		var s Skill
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode skill payload: %w", err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
}

// NewEntry serializes a record into a journal entry for the given date.
func NewEntry(date string, r Record) (Entry, error) {
	if err := ValidDate(date); err != nil {
		return Entry{}, err
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return Entry{}, fmt.Errorf("encode %s payload: %w", r.Kind(), err)
	}
	return Entry{Date: date, Kind: r.Kind(), Payload: string(raw)}, nil
}

func (m Meal) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if m.Calories < 0 || m.Protein < 0 || m.Carbs < 0 || m.Fat < 0 || m.Quantity < 0 {
		return ErrInvalidValue
	}
	return nil
}

func (w Workout) Validate() error {
	if strings.TrimSpace(w.SessionName) == "" {
		return ErrEmptyName
	}
	if w.DurationMin < 0 {
		return ErrInvalidValue
	}
	for _, ex := range w.Exercises {
		if strings.TrimSpace(ex.Name) == "" {
			return ErrEmptyName
		}
	}
	return nil
}

func (m Measurement) Validate() error {
	if m.Weight <= 0 {
		return ErrInvalidValue
	}
	return nil
}

func (w Water) Validate() error {
	if w.Ml <= 0 {
		return ErrInvalidValue
	}
	return nil
}

func (s Skill) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if s.Minutes < 0 {
		return ErrInvalidValue
	}
	return nil
}

func (s Settings) Validate() error {
	if s.TargetCalories < 0 || s.TargetProtein < 0 || s.TargetCarbs < 0 || s.TargetFat < 0 {
		return ErrInvalidValue
	}
	return nil
}
