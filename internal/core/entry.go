package core

import (
	"errors"
	"strings"
	"time"
)

// DayFormat is the calendar-date layout used as the journal partition key.
const DayFormat = "2006-01-02"

const (
	KindMeal        Kind = "meal"
	KindWorkout     Kind = "workout"
	KindMeasurement Kind = "measurement"
	KindSettings    Kind = "settings"
	KindWater       Kind = "water"
	KindSkill       Kind = "skill"
)

type (
	// Kind tags an entry payload with its schema.
	Kind string

	// Entry is one row of the journal: a dated, typed, opaque payload.
	// The payload stays serialized until decoded once at the boundary.
	Entry struct {
		Date    string // YYYY-MM-DD
		Kind    Kind
		Payload string // JSON object, shape selected by Kind
	}
)

var (
	ErrInvalidDate  = errors.New("invalid date")
	ErrUnknownKind  = errors.New("unknown entry kind")
	ErrEmptyPayload = errors.New("empty payload")
	ErrEmptyName    = errors.New("empty name")
	ErrInvalidValue = errors.New("invalid value")

	// ErrRowOutOfRange marks a positional delete whose index does not
	// name a live journal row.
	ErrRowOutOfRange = errors.New("row index out of range")
)

// legacyKinds maps the tags written by earlier spreadsheet revisions
// to their canonical form. The sheet is user-visible, so old rows keep
// their original tags forever.
var legacyKinds = map[string]Kind{
	"pasto":       KindMeal,
	"allenamento": KindWorkout,
	"misure":      KindMeasurement,
	"acqua":       KindWater,
	"abilita":     KindSkill,
}

// NormalizeKind resolves canonical and legacy kind tags.
// The boolean reports whether the tag was recognized.
func NormalizeKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindMeal, KindWorkout, KindMeasurement, KindSettings, KindWater, KindSkill:
		return k, true
	}
	if canonical, ok := legacyKinds[string(k)]; ok {
		return canonical, true
	}
	return "", false
}

// Today returns the current calendar date in the journal's day format.
func Today() string {
	return time.Now().Format(DayFormat)
}

// ValidDate reports whether s is a well-formed YYYY-MM-DD date.
func ValidDate(s string) error {
	if _, err := time.Parse(DayFormat, s); err != nil {
		return ErrInvalidDate
	}
	return nil
}

func (e Entry) Validate() error {
	if err := ValidDate(e.Date); err != nil {
		return err
	}
	if _, ok := NormalizeKind(string(e.Kind)); !ok {
		return ErrUnknownKind
	}
	if strings.TrimSpace(e.Payload) == "" {
		return ErrEmptyPayload
	}
	return nil
}
