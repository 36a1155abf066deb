package coach

import (
	"context"
	"errors"
	"strings"
	"testing"

	"fittrack/internal/core"
)

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(context.Background(), "", "gemini-2.0-flash"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestBuildPrompt(t *testing.T) {
	day := core.DaySummary{
		Date:     "2024-03-01",
		Calories: 1800,
		Protein:  120,
		Carbs:    200,
		Fat:      60,
		WaterMl:  1500,
		SkillMin: 20,
		Workouts: []core.Workout{
			{SessionName: "Push", DurationMin: 45, Exercises: []core.Exercise{{Name: "Panca"}}},
		},
	}
	targets := core.Targets{Calories: 2500, Protein: 180}

	prompt := BuildPrompt("Quante proteine mi mancano?", day, targets, 82.5)

	for _, want := range []string{
		"2024-03-01",
		"1800 su 2500",
		"120 su 180",
		"82.5 kg",
		"Push (45 min, 1 esercizi)",
		"Pratica skill: 20 min",
		"Domanda: Quante proteine mi mancano?",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildPromptOmitsMissingWeight(t *testing.T) {
	prompt := BuildPrompt("ciao", core.DaySummary{Date: "2024-03-01"}, core.DefaultTargets, 0)

	if strings.Contains(prompt, "Peso corporeo") {
		t.Error("prompt should omit weight when none is recorded")
	}
	if !strings.Contains(prompt, "Calorie: 0 su 2500") {
		t.Errorf("zero totals should be stated:\n%s", prompt)
	}
}
