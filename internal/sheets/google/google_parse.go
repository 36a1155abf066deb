package google

import (
	"fmt"
	"strconv"
	"strings"

	"fittrack/internal/core"
)

// Parsing is best-effort: the sheets are user-edited, so header rows,
// blank lines and half-filled rows are all expected. Rows that cannot
// carry a usable record are dropped here; decode failures of the
// payload blob itself are left for the aggregation layer to count.

func parseJournalRows(values [][]any) []core.Entry {
	entries, _ := parseJournalTable(values)
	return entries
}

// parseJournalTable also reports each entry's zero-based physical row
// in the sheet. Skipped rows (header, blank, half-written) shift the
// logical indexes away from the physical ones, and a positional delete
// must target the physical row.
func parseJournalTable(values [][]any) ([]core.Entry, []int64) {
	var entries []core.Entry
	var rows []int64
	for i, row := range values {
		cols := toStrings(row)
		if len(cols) < 3 {
			continue
		}
		date, kind, payload := cols[0], cols[1], cols[2]
		if i == 0 && core.ValidDate(date) != nil {
			// header row
			continue
		}
		if date == "" && kind == "" && payload == "" {
			continue
		}
		entries = append(entries, core.Entry{Date: date, Kind: core.Kind(kind), Payload: payload})
		rows = append(rows, int64(i))
	}
	return entries, rows
}

func parseFoodRows(values [][]any) []core.Food {
	var out []core.Food
	for _, row := range values {
		cols := toStrings(row)
		if len(cols) < 2 || cols[0] == "" {
			continue
		}
		kcal, ok := parseNumber(cols[1])
		if !ok {
			continue // header or malformed row
		}
		out = append(out, core.Food{
			Name:    cols[0],
			Kcal:    kcal,
			Protein: numberAt(cols, 2),
			Carbs:   numberAt(cols, 3),
			Fat:     numberAt(cols, 4),
		})
	}
	return out
}

func parseSupplementRows(values [][]any) []core.Supplement {
	var out []core.Supplement
	for _, row := range values {
		cols := toStrings(row)
		if len(cols) < 2 || cols[0] == "" {
			continue
		}
		form := core.SupplementForm(cols[1])
		if !form.Valid() {
			continue // header or malformed row
		}
		out = append(out, core.Supplement{
			Name:        cols[0],
			Form:        form,
			Description: stringAt(cols, 2),
			Kcal:        numberAt(cols, 3),
			Protein:     numberAt(cols, 4),
			Carbs:       numberAt(cols, 5),
			Fat:         numberAt(cols, 6),
		})
	}
	return out
}

func parseExerciseRows(values [][]any) []core.ExerciseDef {
	var out []core.ExerciseDef
	for _, row := range values {
		cols := toStrings(row)
		if len(cols) < 1 || cols[0] == "" {
			continue
		}
		cat := core.ExerciseCategory(stringAt(cols, 1))
		if !cat.Valid() {
			// Older revisions stored only the name.
			cat = core.CategoryStrength
		}
		if strings.EqualFold(cols[0], "nome") || strings.EqualFold(cols[0], "name") {
			continue // header row
		}
		out = append(out, core.ExerciseDef{Name: cols[0], Category: cat})
	}
	return out
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(strValue(v))
	}
	return out
}

func strValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func stringAt(cols []string, idx int) string {
	if idx < 0 || idx >= len(cols) {
		return ""
	}
	return cols[idx]
}

func numberAt(cols []string, idx int) float64 {
	if idx < 0 || idx >= len(cols) {
		return 0
	}
	n, _ := parseNumber(cols[idx])
	return n
}

// parseNumber accepts both dot and comma decimal separators; the sheet
// locale is not under our control.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
