package google

import (
	"testing"

	"fittrack/internal/core"
)

func TestParseJournalRows(t *testing.T) {
	values := [][]any{
		{"data", "tipo", "dettaglio_json"}, // header
		{"2024-01-01", "pasto", `{"nome":"Riso","cal":360}`},
		{"2024-01-01", "misure", `{"peso":80.5}`},
		{"", "", ""}, // blank line
		{"2024-01-02", "settings", `{"url_foto":"https://a"}`},
		{"2024-01-02"}, // half-written row
	}
	entries := parseJournalRows(values)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d: %+v", len(entries), entries)
	}
	if entries[0].Date != "2024-01-01" || entries[0].Kind != "pasto" {
		t.Fatalf("first entry: %+v", entries[0])
	}
	if entries[2].Kind != "settings" {
		t.Fatalf("third entry: %+v", entries[2])
	}
}

func TestParseJournalRowsNoHeader(t *testing.T) {
	values := [][]any{
		{"2024-01-01", "acqua", `{"ml":500}`},
	}
	entries := parseJournalRows(values)
	if len(entries) != 1 {
		t.Fatalf("a sheet without a header row must still parse, got %d", len(entries))
	}
}

func TestParseFoodRows(t *testing.T) {
	values := [][]any{
		{"nome", "kcal", "pro", "carb", "fat"},
		{"Riso", 360.0, 7.0, 79.0, 1.0},
		{"Pollo", "110", "23", "0", "1,2"}, // string cells, comma decimal
		{"", 100.0},                        // nameless
	}
	foods := parseFoodRows(values)
	if len(foods) != 2 {
		t.Fatalf("expected 2 foods, got %d: %+v", len(foods), foods)
	}
	if foods[0].Name != "Riso" || foods[0].Kcal != 360 {
		t.Fatalf("riso: %+v", foods[0])
	}
	if foods[1].Fat != 1.2 {
		t.Fatalf("comma decimal: %+v", foods[1])
	}
}

func TestParseSupplementRows(t *testing.T) {
	values := [][]any{
		{"nome", "formato", "descrizione", "kcal", "pro", "carb", "fat"},
		{"Creatina", "g", "monoidrata", 0.0, 0.0, 0.0, 0.0},
		{"Omega3", "count", ""},
		{"Strano", "pills"}, // unknown form dropped
	}
	sups := parseSupplementRows(values)
	if len(sups) != 2 {
		t.Fatalf("expected 2 supplements, got %d: %+v", len(sups), sups)
	}
	if sups[0].Form != core.FormGrams || sups[1].Form != core.FormCount {
		t.Fatalf("forms: %+v", sups)
	}
}

func TestParseExerciseRows(t *testing.T) {
	values := [][]any{
		{"nome", "categoria"},
		{"Panca", "Strength"},
		{"Plank", "Isometric"},
		{"Trazioni"}, // legacy name-only row
	}
	exs := parseExerciseRows(values)
	if len(exs) != 3 {
		t.Fatalf("expected 3 exercises, got %d: %+v", len(exs), exs)
	}
	if exs[1].Category != core.CategoryIsometric {
		t.Fatalf("plank: %+v", exs[1])
	}
	if exs[2].Category != core.CategoryStrength {
		t.Fatalf("legacy row must default category: %+v", exs[2])
	}
}

func TestParseJournalTablePhysicalRows(t *testing.T) {
	// Skipped rows shift logical indexes away from sheet rows; a
	// positional delete must land on the physical row, not index+1.
	values := [][]any{
		{"data", "tipo", "dettaglio_json"}, // header
		{"", "", ""},                       // blank line
		{"2024-01-01", "meal", `{"nome":"A"}`},
		{"2024-01-01", "meal", `{"nome":"B"}`},
	}
	entries, rows := parseJournalTable(values)
	if len(entries) != 2 || len(rows) != 2 {
		t.Fatalf("expected 2 entries with rows, got %d/%d", len(entries), len(rows))
	}
	if rows[0] != 2 || rows[1] != 3 {
		t.Fatalf("physical rows = %v, want [2 3]", rows)
	}

	// Half-written rows in the middle of the table skew later entries.
	values = [][]any{
		{"2024-01-01", "meal", `{"nome":"A"}`},
		{"2024-01-02"}, // half-written
		{"2024-01-03", "water", `{"ml":500}`},
	}
	entries, rows = parseJournalTable(values)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if rows[1] != 2 {
		t.Fatalf("second entry physical row = %d, want 2", rows[1])
	}
}
