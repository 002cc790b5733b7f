package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/antigravity/time2reach/internal/clock"
	"github.com/antigravity/time2reach/internal/engine"
	"github.com/antigravity/time2reach/internal/geo"
	"github.com/antigravity/time2reach/internal/gtfsmodel"
	"github.com/antigravity/time2reach/internal/reach"
)

// EngineHandler exposes the three entry points spec.md §6 names:
// ComputeReach, Itinerary and EdgeTimes, over HTTP.
type EngineHandler struct {
	Engine *engine.Engine
}

func NewEngineHandler(e *engine.Engine) *EngineHandler {
	return &EngineHandler{Engine: e}
}

type reachRequest struct {
	StartTime      float64  `json:"start_time_seconds"`
	DurationSecs   float64  `json:"duration_secs"`
	QueryDate      int      `json:"query_date"`
	Lat            float64  `json:"lat"`
	Lon            float64  `json:"lon"`
	AgencyOrdinals []uint16 `json:"agency_ordinals"`
	Modes          []uint8  `json:"modes"`
}

// PostReach handles POST /api/v1/cities/{city}/reach.
func (h *EngineHandler) PostReach(w http.ResponseWriter, r *http.Request) {
	city := gtfsmodel.City(chi.URLParam(r, "city"))

	var req reachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	cfg := reach.Configuration{
		StartTime:    clock.Seconds(req.StartTime),
		DurationSecs: req.DurationSecs,
		QueryDate:    req.QueryDate,
		Origin:       geo.LatLng{Lat: req.Lat, Lon: req.Lon},
	}
	if len(req.AgencyOrdinals) > 0 {
		cfg.AgencyOrdinals = make(map[uint16]bool, len(req.AgencyOrdinals))
		for _, a := range req.AgencyOrdinals {
			cfg.AgencyOrdinals[a] = true
		}
	}
	if len(req.Modes) > 0 {
		cfg.Modes = make(map[uint8]bool, len(req.Modes))
		for _, m := range req.Modes {
			cfg.Modes[m] = true
		}
	}

	_, id, err := h.Engine.ComputeReach(city, cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(map[string]any{"query_id": id})
}

// PostItinerary handles POST /api/v1/cities/{city}/itinerary.
func (h *EngineHandler) PostItinerary(w http.ResponseWriter, r *http.Request) {
	idStr := r.URL.Query().Get("query_id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		http.Error(w, "missing or invalid query_id", http.StatusBadRequest)
		return
	}

	var req struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	it, ok := h.Engine.Itinerary(engine.QueryID(id), geo.LatLng{Lat: req.Lat, Lon: req.Lon})
	if !ok {
		http.Error(w, "destination unreachable or query expired", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(it)
}

// GetEdgeTimes handles GET /api/v1/cities/{city}/edge-times/{queryID}.
func (h *EngineHandler) GetEdgeTimes(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "queryID")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		http.Error(w, "invalid query id", http.StatusBadRequest)
		return
	}

	edges, ok := h.Engine.EdgeTimes(engine.QueryID(id))
	if !ok {
		http.Error(w, "query expired", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(edges)
}
