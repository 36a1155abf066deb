package core

import "strings"

// Supplement dose forms.
const (
	FormGrams SupplementForm = "g"
	FormCount SupplementForm = "count"
	FormMg    SupplementForm = "mg"
)

// Exercise catalog categories.
const (
	CategoryStrength   ExerciseCategory = "Strength"
	CategoryBodyweight ExerciseCategory = "Bodyweight"
	CategoryIsometric  ExerciseCategory = "Isometric"
	CategoryAbs        ExerciseCategory = "Abs"
	CategoryCardio     ExerciseCategory = "Cardio"
)

type (
	SupplementForm   string
	ExerciseCategory string

	// Food is a food-catalog row with macros per 100g. The catalog is
	// advisory autofill only: nothing links a logged meal back to it.
	Food struct {
		Name    string  `json:"name"`
		Kcal    float64 `json:"kcal"`
		Protein float64 `json:"protein"`
		Carbs   float64 `json:"carbs"`
		Fat     float64 `json:"fat"`
	}

	// Supplement is a supplement-catalog row with macros per unit dose.
	Supplement struct {
		Name        string         `json:"name"`
		Form        SupplementForm `json:"form"`
		Description string         `json:"description,omitempty"`
		Kcal        float64        `json:"kcal"`
		Protein     float64        `json:"protein"`
		Carbs       float64        `json:"carbs"`
		Fat         float64        `json:"fat"`
	}

	// ExerciseDef is an exercise-catalog row.
	ExerciseDef struct {
		Name     string           `json:"name"`
		Category ExerciseCategory `json:"category"`
	}
)

func (f SupplementForm) Valid() bool {
	switch f {
	case FormGrams, FormCount, FormMg:
		return true
	}
	return false
}

func (c ExerciseCategory) Valid() bool {
	switch c {
	case CategoryStrength, CategoryBodyweight, CategoryIsometric, CategoryAbs, CategoryCardio:
		return true
	}
	return false
}

func (f Food) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrEmptyName
	}
	if f.Kcal < 0 || f.Protein < 0 || f.Carbs < 0 || f.Fat < 0 {
		return ErrInvalidValue
	}
	return nil
}

func (s Supplement) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if !s.Form.Valid() {
		return ErrInvalidValue
	}
	return nil
}

func (e ExerciseDef) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if !e.Category.Valid() {
		return ErrInvalidValue
	}
	return nil
}
