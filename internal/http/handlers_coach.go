package http

import (
	"log/slog"
	"net/http"
	"strings"

	"fittrack/internal/core"
)

type coachRequest struct {
	Question string `json:"question"`
	Date     string `json:"date,omitempty"`
}

type coachResponse struct {
	Answer string `json:"answer"`
}

// handleCoachAsk forwards the question to the model together with the
// day's aggregates. Upstream failures surface as errors; there is no
// canned fallback answer.
func (s *Server) handleCoachAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	if s.coach == nil {
		writeError(w, http.StatusServiceUnavailable, "coach not configured")
		return
	}

	var req coachRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusUnprocessableEntity, "missing question")
		return
	}
	date := req.Date
	if date == "" {
		date = core.Today()
	}
	if err := core.ValidDate(date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}

	view, err := s.dayView(r, date)
	if err != nil {
		slog.ErrorContext(r.Context(), "Coach context error", "error", err, "date", date)
		writeError(w, http.StatusBadGateway, "journal unavailable")
		return
	}
	series, err := s.weightSeries(r)
	if err != nil {
		slog.ErrorContext(r.Context(), "Coach weight context error", "error", err)
		writeError(w, http.StatusBadGateway, "journal unavailable")
		return
	}
	weight, _ := core.WeightOn(series, date)

	answer, err := s.coach.Ask(r.Context(), req.Question, view.Summary, view.Targets, weight)
	if err != nil {
		slog.ErrorContext(r.Context(), "Coach error", "error", err)
		writeError(w, http.StatusBadGateway, "coach unavailable")
		return
	}

	writeJSON(w, http.StatusOK, coachResponse{Answer: answer})
}
