package http

import (
	"log/slog"
	"net/http"

	"fittrack/internal/core"
	"fittrack/internal/services"
)

type targetsDTO struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

type progressDTO struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

type slotMealDTO struct {
	Row  int       `json:"row"`
	Meal core.Meal `json:"meal"`
}

// summaryResponse is the aggregate day view. Meal payloads keep the
// journal blob vocabulary; the envelope fields are API-side names.
type summaryResponse struct {
	Date     string                   `json:"date"`
	Calories float64                  `json:"calories"`
	Protein  float64                  `json:"protein"`
	Carbs    float64                  `json:"carbs"`
	Fat      float64                  `json:"fat"`
	BySlot   map[string][]slotMealDTO `json:"by_slot"`
	Workouts []core.Workout           `json:"workouts"`
	WaterMl  float64                  `json:"water_ml"`
	SkillMin float64                  `json:"skill_min"`
	Skipped  int                      `json:"skipped"`
	Targets  targetsDTO               `json:"targets"`
	Progress progressDTO              `json:"progress"`
}

func toSummaryResponse(v services.DayView) summaryResponse {
	bySlot := make(map[string][]slotMealDTO, len(v.Summary.BySlot))
	for slot, meals := range v.Summary.BySlot {
		dto := make([]slotMealDTO, len(meals))
		for i, m := range meals {
			dto[i] = slotMealDTO{Row: m.Row, Meal: m.Meal}
		}
		bySlot[string(slot)] = dto
	}
	return summaryResponse{
		Date:     v.Summary.Date,
		Calories: v.Summary.Calories,
		Protein:  v.Summary.Protein,
		Carbs:    v.Summary.Carbs,
		Fat:      v.Summary.Fat,
		BySlot:   bySlot,
		Workouts: v.Summary.Workouts,
		WaterMl:  v.Summary.WaterMl,
		SkillMin: v.Summary.SkillMin,
		Skipped:  v.Summary.Skipped,
		Targets:  targetsDTO(v.Targets),
		Progress: progressDTO(v.Progress),
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	date, err := queryDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := s.dayView(r, date)
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary error", "error", err, "date", date)
		writeError(w, http.StatusBadGateway, "journal unavailable")
		return
	}

	writeJSON(w, http.StatusOK, toSummaryResponse(view))
}

func (s *Server) dayView(r *http.Request, date string) (services.DayView, error) {
	if view, ok := s.summaryCache.Get(date); ok {
		return view, nil
	}
	view, err := s.tracker.Day(r.Context(), date)
	if err != nil {
		return services.DayView{}, err
	}
	s.summaryCache.Set(date, view)
	return view, nil
}

type weightPointDTO struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
}

func (s *Server) handleWeightHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	series, err := s.weightSeries(r)
	if err != nil {
		slog.ErrorContext(r.Context(), "Weight history error", "error", err)
		writeError(w, http.StatusBadGateway, "journal unavailable")
		return
	}

	out := make([]weightPointDTO, len(series))
	for i, p := range series {
		out[i] = weightPointDTO{Date: p.Date, Weight: p.Weight}
	}
	writeJSON(w, http.StatusOK, out)
}

const weightCacheKey = "weight"

func (s *Server) weightSeries(r *http.Request) ([]core.WeightPoint, error) {
	if series, ok := s.weightCache.Get(weightCacheKey); ok {
		return series, nil
	}
	series, err := s.tracker.WeightHistory(r.Context())
	if err != nil {
		return nil, err
	}
	s.weightCache.Set(weightCacheKey, series)
	return series, nil
}

type settingsDTO struct {
	TargetCalories float64 `json:"target_calories"`
	TargetProtein  float64 `json:"target_protein"`
	TargetCarbs    float64 `json:"target_carbs"`
	TargetFat      float64 `json:"target_fat"`
	PhotoURL       string  `json:"photo_url,omitempty"`
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		set, ok, err := s.tracker.Settings(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "Settings read error", "error", err)
			writeError(w, http.StatusBadGateway, "journal unavailable")
			return
		}
		if !ok {
			// No settings row yet: report the active defaults.
			writeJSON(w, http.StatusOK, settingsDTO{
				TargetCalories: core.DefaultTargets.Calories,
				TargetProtein:  core.DefaultTargets.Protein,
			})
			return
		}
		writeJSON(w, http.StatusOK, settingsDTO{
			TargetCalories: set.TargetCalories,
			TargetProtein:  set.TargetProtein,
			TargetCarbs:    set.TargetCarbs,
			TargetFat:      set.TargetFat,
			PhotoURL:       set.PhotoURL,
		})

	case http.MethodPut:
		var req settingsDTO
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		set := core.Settings{
			TargetCalories: req.TargetCalories,
			TargetProtein:  req.TargetProtein,
			TargetCarbs:    req.TargetCarbs,
			TargetFat:      req.TargetFat,
			PhotoURL:       req.PhotoURL,
		}
		if err := set.Validate(); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		ref, err := s.tracker.UpdateSettings(r.Context(), set)
		if err != nil {
			slog.ErrorContext(r.Context(), "Settings update error", "error", err)
			writeError(w, http.StatusBadGateway, "could not save settings")
			return
		}
		s.invalidateViews()
		writeJSON(w, http.StatusOK, map[string]string{"ref": ref})

	default:
		methodNotAllowed(w, "GET", "PUT")
	}
}
