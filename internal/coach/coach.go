package coach

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"fittrack/internal/core"
)

const systemPrompt = "Sei un personal trainer di élite. Rispondi in modo breve, concreto e pratico, in italiano."

// Coach answers training and nutrition questions through the Gemini
// API, grounding each answer on the caller's current journal state.
type Coach struct {
	client *genai.Client
	model  string
}

// ErrNotConfigured is returned when no API key was provided.
var ErrNotConfigured = errors.New("coach not configured")

func New(ctx context.Context, apiKey, model string) (*Coach, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create GenAI client: %w", err)
	}

	return &Coach{client: client, model: model}, nil
}

// Ask sends the question with the day's context and returns the model's
// answer. API failures are returned to the caller, never masked with a
// canned reply.
func (c *Coach) Ask(ctx context.Context, question string, day core.DaySummary, targets core.Targets, weight float64) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", errors.New("empty question")
	}

	prompt := BuildPrompt(question, day, targets, weight)
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	answer := strings.TrimSpace(result.Text())
	if answer == "" {
		return "", errors.New("empty model response")
	}
	return answer, nil
}

// BuildPrompt assembles the user prompt: journal context first, then
// the question. Zero values are stated rather than omitted so the model
// does not invent missing data.
func BuildPrompt(question string, day core.DaySummary, targets core.Targets, weight float64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Dati di oggi (%s):\n", day.Date)
	fmt.Fprintf(&b, "- Calorie: %.0f su %.0f kcal\n", day.Calories, targets.Calories)
	fmt.Fprintf(&b, "- Proteine: %.0f su %.0f g\n", day.Protein, targets.Protein)
	fmt.Fprintf(&b, "- Carboidrati: %.0f g, Grassi: %.0f g\n", day.Carbs, day.Fat)
	fmt.Fprintf(&b, "- Acqua: %.0f ml\n", day.WaterMl)
	if weight > 0 {
		fmt.Fprintf(&b, "- Peso corporeo: %.1f kg\n", weight)
	}
	if len(day.Workouts) > 0 {
		b.WriteString("- Allenamenti:")
		for _, w := range day.Workouts {
			fmt.Fprintf(&b, " %s (%.0f min, %d esercizi);", w.SessionName, w.DurationMin, len(w.Exercises))
		}
		b.WriteString("\n")
	}
	if day.SkillMin > 0 {
		fmt.Fprintf(&b, "- Pratica skill: %.0f min\n", day.SkillMin)
	}

	fmt.Fprintf(&b, "\nDomanda: %s\n", question)
	return b.String()
}
