package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"fittrack/internal/core"
)

type entryRequest struct {
	Date    string          `json:"date"`
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

type entryResponse struct {
	Index   int             `json:"index"`
	Date    string          `json:"date"`
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListEntries(w, r)
	case http.MethodPost:
		s.handleCreateEntry(w, r)
	default:
		methodNotAllowed(w, "GET", "POST")
	}
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.tracker.Entries(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Journal read error", "error", err)
		writeError(w, http.StatusBadGateway, "journal unavailable")
		return
	}

	out := make([]entryResponse, len(entries))
	for i, e := range entries {
		out[i] = entryResponse{
			Index:   i,
			Date:    e.Date,
			Kind:    string(e.Kind),
			Payload: json.RawMessage(e.Payload),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Date == "" {
		req.Date = core.Today()
	}
	kind, ok := core.NormalizeKind(req.Kind)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "unknown entry kind "+strconv.Quote(req.Kind))
		return
	}
	if len(req.Payload) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "missing payload")
		return
	}

	// Decode once here; everything downstream works with the typed record.
	e := core.Entry{Date: req.Date, Kind: kind, Payload: string(req.Payload)}
	rec, err := e.Decode()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ref, err := s.tracker.AppendRecord(r.Context(), req.Date, rec)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Entry append error", "error", err, "kind", kind, "date", req.Date)
		writeError(w, http.StatusBadGateway, "could not save entry")
		return
	}

	s.invalidateViews()
	writeJSON(w, http.StatusCreated, map[string]string{"ref": ref})
}

func (s *Server) handleEntryByIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, "DELETE")
		return
	}

	raw := strings.TrimPrefix(r.URL.Path, "/entries/")
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, "invalid entry index "+strconv.Quote(raw))
		return
	}

	if err := s.tracker.DeleteEntry(r.Context(), index); err != nil {
		if errors.Is(err, core.ErrRowOutOfRange) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Entry delete error", "error", err, "index", index)
		writeError(w, http.StatusBadGateway, "could not delete entry")
		return
	}

	s.invalidateViews()
	w.WriteHeader(http.StatusNoContent)
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrUnknownKind) ||
		errors.Is(err, core.ErrEmptyPayload) ||
		errors.Is(err, core.ErrEmptyName) ||
		errors.Is(err, core.ErrInvalidValue)
}
