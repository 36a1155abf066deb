package http

import (
	"log/slog"
	"net/http"

	"fittrack/internal/core"
)

// The catalogs are advisory autofill lists: reads return the table,
// writes append after validation. Payload vocabulary follows core.

func (s *Server) handleFoods(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		foods, err := s.tracker.Foods(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "Food catalog read error", "error", err)
			writeError(w, http.StatusBadGateway, "catalog unavailable")
			return
		}
		writeJSON(w, http.StatusOK, foods)

	case http.MethodPost:
		var f core.Food
		if err := readJSON(w, r, &f); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.tracker.AddFood(r.Context(), f); err != nil {
			if isValidationError(err) {
				writeError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			slog.ErrorContext(r.Context(), "Food catalog append error", "error", err, "name", f.Name)
			writeError(w, http.StatusBadGateway, "could not save food")
			return
		}
		w.WriteHeader(http.StatusCreated)

	default:
		methodNotAllowed(w, "GET", "POST")
	}
}

func (s *Server) handleSupplements(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		supplements, err := s.tracker.Supplements(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "Supplement catalog read error", "error", err)
			writeError(w, http.StatusBadGateway, "catalog unavailable")
			return
		}
		writeJSON(w, http.StatusOK, supplements)

	case http.MethodPost:
		var sup core.Supplement
		if err := readJSON(w, r, &sup); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.tracker.AddSupplement(r.Context(), sup); err != nil {
			if isValidationError(err) {
				writeError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			slog.ErrorContext(r.Context(), "Supplement catalog append error", "error", err, "name", sup.Name)
			writeError(w, http.StatusBadGateway, "could not save supplement")
			return
		}
		w.WriteHeader(http.StatusCreated)

	default:
		methodNotAllowed(w, "GET", "POST")
	}
}

func (s *Server) handleExercises(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		exercises, err := s.tracker.Exercises(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "Exercise catalog read error", "error", err)
			writeError(w, http.StatusBadGateway, "catalog unavailable")
			return
		}
		writeJSON(w, http.StatusOK, exercises)

	case http.MethodPost:
		var e core.ExerciseDef
		if err := readJSON(w, r, &e); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.tracker.AddExercise(r.Context(), e); err != nil {
			if isValidationError(err) {
				writeError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			slog.ErrorContext(r.Context(), "Exercise catalog append error", "error", err, "name", e.Name)
			writeError(w, http.StatusBadGateway, "could not save exercise")
			return
		}
		w.WriteHeader(http.StatusCreated)

	default:
		methodNotAllowed(w, "GET", "POST")
	}
}
