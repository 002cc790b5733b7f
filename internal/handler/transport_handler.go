// Package handler is the HTTP surface, adapted from the teacher's
// internal/handler/transport_handler.go. CatalogHandler keeps the
// teacher's stops/routes browsing endpoints (re-pointed at
// CatalogRepository); the teacher's fabricated-schedule RAPTOR
// GetRoute endpoint is replaced by EngineHandler (engine_handler.go),
// which answers routing questions from the real GTFS-driven engine
// instead.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/antigravity/time2reach/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
)

type CatalogHandler struct {
	Repo *repository.CatalogRepository
}

func NewCatalogHandler(repo *repository.CatalogRepository) *CatalogHandler {
	return &CatalogHandler{Repo: repo}
}

func (h *CatalogHandler) GetAllRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.Repo.GetAllRoutes(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(routes)
}

func (h *CatalogHandler) GetRouteDetails(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "missing route id", http.StatusBadRequest)
		return
	}

	route, stops, err := h.Repo.GetRouteDetails(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, "route not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"route": route,
		"stops": stops,
	})
}

func (h *CatalogHandler) GetStops(w http.ResponseWriter, r *http.Request) {
	minLat, _ := strconv.ParseFloat(r.URL.Query().Get("min_lat"), 64)
	minLon, _ := strconv.ParseFloat(r.URL.Query().Get("min_lon"), 64)
	maxLat, _ := strconv.ParseFloat(r.URL.Query().Get("max_lat"), 64)
	maxLon, _ := strconv.ParseFloat(r.URL.Query().Get("max_lon"), 64)

	if minLat == 0 || maxLat == 0 {
		http.Error(w, "missing viewport coordinates", http.StatusBadRequest)
		return
	}

	stops, err := h.Repo.GetStopsInViewport(r.Context(), minLat, minLon, maxLat, maxLon)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(stops)
}

func (h *CatalogHandler) GetStopDetails(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "missing stop id", http.StatusBadRequest)
		return
	}

	stop, routes, err := h.Repo.GetStopDetails(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, "stop not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"stop":   stop,
		"routes": routes,
	})
}
