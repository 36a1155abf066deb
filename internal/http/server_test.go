package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fittrack/internal/core"
	"fittrack/internal/services"
	"fittrack/internal/sheets/memory"
)

type fakeCoach struct {
	answer string
	err    error
}

func (f fakeCoach) Ask(_ context.Context, _ string, _ core.DaySummary, _ core.Targets, _ float64) (string, error) {
	return f.answer, f.err
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	tracker := services.NewTrackerService(memory.New(), core.Targets{})
	srv := NewServer(":0", tracker, opts)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, Options{})
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, nil)
		if rr.Code != http.StatusOK {
			t.Errorf("%s status=%d", path, rr.Code)
		}
	}
}

func TestCreateEntryAndSummary(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := doJSON(t, srv, http.MethodPost, "/entries", map[string]any{
		"date": "2024-03-01",
		"kind": "meal",
		"payload": map[string]any{
			"pasto": "Pranzo", "nome": "Pasta", "gr": 120,
			"cal": 450, "pro": 15, "carb": 88, "fat": 4,
		},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	var created map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil || created["ref"] == "" {
		t.Fatalf("create response = %s", rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodGet, "/summary?date=2024-03-01", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("summary status=%d", rr.Code)
	}
	var sum summaryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.Calories != 450 || len(sum.BySlot["Lunch"]) != 1 {
		t.Errorf("summary = %+v", sum)
	}
	if sum.Targets.Calories != core.DefaultTargets.Calories {
		t.Errorf("targets = %+v", sum.Targets)
	}
}

func TestCreateEntryRejectsBadInput(t *testing.T) {
	srv := newTestServer(t, Options{})

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{
			name: "unknown kind",
			body: map[string]any{"date": "2024-03-01", "kind": "nap", "payload": map[string]any{}},
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "missing payload",
			body: map[string]any{"date": "2024-03-01", "kind": "water"},
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "malformed payload",
			body: map[string]any{"date": "2024-03-01", "kind": "water", "payload": map[string]any{"ml": "molta"}},
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "invalid date",
			body: map[string]any{"date": "01/03/2024", "kind": "water", "payload": map[string]any{"ml": 500}},
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "legacy kind accepted",
			body: map[string]any{"date": "2024-03-01", "kind": "acqua", "payload": map[string]any{"ml": 500}},
			want: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, srv, http.MethodPost, "/entries", tt.body)
			if rr.Code != tt.want {
				t.Errorf("status=%d want %d body=%s", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestListAndDeleteEntry(t *testing.T) {
	srv := newTestServer(t, Options{})

	for _, ml := range []float64{300, 400} {
		rr := doJSON(t, srv, http.MethodPost, "/entries", map[string]any{
			"date": "2024-03-01", "kind": "water", "payload": map[string]any{"ml": ml},
		})
		if rr.Code != http.StatusCreated {
			t.Fatalf("create status=%d", rr.Code)
		}
	}

	rr := doJSON(t, srv, http.MethodGet, "/entries", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list status=%d", rr.Code)
	}
	var entries []entryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &entries); err != nil || len(entries) != 2 {
		t.Fatalf("entries = %s", rr.Body.String())
	}
	if entries[1].Index != 1 {
		t.Errorf("index = %d, want 1", entries[1].Index)
	}

	rr = doJSON(t, srv, http.MethodDelete, "/entries/0", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodDelete, "/entries/7", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("out-of-range delete status=%d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodDelete, "/entries/abc", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad index delete status=%d", rr.Code)
	}

	// Summary reflects the deletion, not a stale cache entry.
	rr = doJSON(t, srv, http.MethodGet, "/summary?date=2024-03-01", nil)
	var sum summaryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.WaterMl != 400 {
		t.Errorf("water after delete = %v, want 400", sum.WaterMl)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := doJSON(t, srv, http.MethodGet, "/settings", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("settings status=%d", rr.Code)
	}
	var set settingsDTO
	if err := json.Unmarshal(rr.Body.Bytes(), &set); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if set.TargetCalories != core.DefaultTargets.Calories {
		t.Errorf("default settings = %+v", set)
	}

	rr = doJSON(t, srv, http.MethodPut, "/settings", settingsDTO{TargetCalories: 2100, TargetProtein: 165})
	if rr.Code != http.StatusOK {
		t.Fatalf("put settings status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodGet, "/settings", nil)
	if err := json.Unmarshal(rr.Body.Bytes(), &set); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if set.TargetCalories != 2100 || set.TargetProtein != 165 {
		t.Errorf("settings = %+v", set)
	}

	rr = doJSON(t, srv, http.MethodPut, "/settings", settingsDTO{TargetCalories: -1})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("negative targets status=%d", rr.Code)
	}
}

func TestWeightHistory(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := doJSON(t, srv, http.MethodPost, "/entries", map[string]any{
		"date": "2024-03-01", "kind": "measurement", "payload": map[string]any{"peso": 82.5},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/weight-history", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("weight history status=%d", rr.Code)
	}
	var pts []weightPointDTO
	if err := json.Unmarshal(rr.Body.Bytes(), &pts); err != nil || len(pts) != 1 || pts[0].Weight != 82.5 {
		t.Fatalf("weight history = %s", rr.Body.String())
	}
}

func TestCatalogEndpoints(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := doJSON(t, srv, http.MethodPost, "/foods", map[string]any{
		"name": "Riso", "kcal": 360, "protein": 7, "carbs": 79, "fat": 1,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("add food status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodGet, "/foods", nil)
	var foods []core.Food
	if err := json.Unmarshal(rr.Body.Bytes(), &foods); err != nil || len(foods) != 1 {
		t.Fatalf("foods = %s", rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodPost, "/supplements", map[string]any{"name": "X", "form": "pills"})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid supplement status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodPost, "/exercises", map[string]any{"name": "Panca", "category": "Strength"})
	if rr.Code != http.StatusCreated {
		t.Errorf("add exercise status=%d", rr.Code)
	}
}

func TestCoachEndpoint(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		srv := newTestServer(t, Options{})
		rr := doJSON(t, srv, http.MethodPost, "/coach/ask", map[string]any{"question": "ciao"})
		if rr.Code != http.StatusServiceUnavailable {
			t.Errorf("status=%d", rr.Code)
		}
	})

	t.Run("answers", func(t *testing.T) {
		srv := newTestServer(t, Options{Coach: fakeCoach{answer: "Mangia più proteine."}})
		rr := doJSON(t, srv, http.MethodPost, "/coach/ask", map[string]any{"question": "Come va?", "date": "2024-03-01"})
		if rr.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
		}
		var resp coachResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil || resp.Answer == "" {
			t.Fatalf("coach response = %s", rr.Body.String())
		}
	})

	t.Run("upstream error surfaces", func(t *testing.T) {
		srv := newTestServer(t, Options{Coach: fakeCoach{err: context.DeadlineExceeded}})
		rr := doJSON(t, srv, http.MethodPost, "/coach/ask", map[string]any{"question": "Come va?"})
		if rr.Code != http.StatusBadGateway {
			t.Errorf("status=%d", rr.Code)
		}
	})

	t.Run("empty question rejected", func(t *testing.T) {
		srv := newTestServer(t, Options{Coach: fakeCoach{answer: "ok"}})
		rr := doJSON(t, srv, http.MethodPost, "/coach/ask", map[string]any{"question": "  "})
		if rr.Code != http.StatusUnprocessableEntity {
			t.Errorf("status=%d", rr.Code)
		}
	})
}

func TestBearerAuth(t *testing.T) {
	srv := newTestServer(t, Options{Password: "segreto"})

	rr := doJSON(t, srv, http.MethodGet, "/entries", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status=%d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/entries", nil)
	req.Header.Set("Authorization", "Bearer sbagliato")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password status=%d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/entries", nil)
	req.Header.Set("Authorization", "Bearer segreto")
	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated status=%d body=%s", rec.Code, rec.Body.String())
	}

	// Health stays open for probes.
	rr = doJSON(t, srv, http.MethodGet, "/healthz", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("healthz status=%d", rr.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := doJSON(t, srv, http.MethodPut, "/entries", nil)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status=%d", rr.Code)
	}
	if allow := rr.Header().Get("Allow"); !strings.Contains(allow, "POST") {
		t.Errorf("Allow = %q", allow)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := doJSON(t, srv, http.MethodGet, "/entries", nil)
	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}
