// Package engine wires the GTFS ingestion layer, road graph, and the
// reach/itinerary packages into the three entry points spec.md §6
// names (ComputeReach, Itinerary, EdgeTimes), plus the per-process LRU
// of recent RoadStructure query results spec.md §5 calls out as the
// one shared mutable resource outside the engine's own per-query
// state. Grounded on original_source/src/web_app_data.rs's
// RoadStructureList (an lru::LruCache keyed by an incrementing
// counter) using github.com/hashicorp/golang-lru/v2 in place of the
// Rust lru crate.
package engine

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/antigravity/time2reach/internal/geo"
	"github.com/antigravity/time2reach/internal/gtfsmodel"
	"github.com/antigravity/time2reach/internal/itinerary"
	"github.com/antigravity/time2reach/internal/reach"
)

// QueryID is the opaque handle ComputeReach returns; Itinerary and
// EdgeTimes use it to retrieve the same RoadStructure later.
type QueryID uint64

// defaultCacheSize mirrors the original engine's RoadStructureList::new(20).
const defaultCacheSize = 20

// Engine holds every city's immutable shared state (CityData) plus the
// RoadStructure LRU. One Engine is built at process startup and lives
// for the process lifetime; CityData itself is never mutated after
// registration.
type Engine struct {
	cities map[gtfsmodel.City]*reach.CityData

	mu      sync.Mutex // guards cache get/put, per spec.md §5
	cache   *lru.Cache[QueryID, *reach.RoadStructure]
	counter uint64
}

// New builds an Engine with the given RoadStructure cache capacity
// (defaultCacheSize if cacheSize <= 0).
func New(cacheSize int) *Engine {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, _ := lru.New[QueryID, *reach.RoadStructure](cacheSize)
	return &Engine{
		cities: make(map[gtfsmodel.City]*reach.CityData),
		cache:  cache,
	}
}

// RegisterCity makes city's data available to ComputeReach. Called
// once per city at startup, before the HTTP surface begins serving
// requests.
func (e *Engine) RegisterCity(city gtfsmodel.City, data *reach.CityData) {
	e.cities[city] = data
}

// City returns the registered CityData for city, if any.
func (e *Engine) City(city gtfsmodel.City) (*reach.CityData, bool) {
	c, ok := e.cities[city]
	return c, ok
}

// ComputeReach runs the transit expansion loop for city under cfg and
// caches the resulting RoadStructure under a fresh QueryID.
func (e *Engine) ComputeReach(city gtfsmodel.City, cfg reach.Configuration) (*reach.RoadStructure, QueryID, error) {
	data, ok := e.cities[city]
	if !ok {
		return nil, 0, fmt.Errorf("engine: unknown city %q", city)
	}

	rs := reach.ComputeReach(data, cfg)

	e.mu.Lock()
	e.counter++
	id := QueryID(e.counter)
	e.cache.Add(id, rs)
	e.mu.Unlock()

	return rs, id, nil
}

// Lookup returns the cached RoadStructure for id, if it is still in
// the LRU.
func (e *Engine) Lookup(id QueryID) (*reach.RoadStructure, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cache.Get(id)
}

// Itinerary reconstructs the itinerary to destination from the
// RoadStructure cached under id.
func (e *Engine) Itinerary(id QueryID, destination geo.LatLng) (*itinerary.Itinerary, bool) {
	rs, ok := e.Lookup(id)
	if !ok {
		return nil, false
	}
	return itinerary.Reconstruct(rs, destination)
}

// EdgeTimes returns the flattened per-edge isochrone layer for the
// RoadStructure cached under id.
func (e *Engine) EdgeTimes(id QueryID) ([]reach.EdgeTime, bool) {
	rs, ok := e.Lookup(id)
	if !ok {
		return nil, false
	}
	return rs.EdgeTimes(), true
}
