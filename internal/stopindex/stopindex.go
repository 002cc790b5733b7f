// Package stopindex builds SpatialStopsWithTrips: a spatial index of
// stops where each stop additionally holds, per (route, direction),
// an ordered set of pickups that can be boarded there.
package stopindex

import (
	"sort"

	"github.com/antigravity/time2reach/internal/clock"
	"github.com/antigravity/time2reach/internal/gtfsmodel"
	"github.com/antigravity/time2reach/internal/spatial"
)

// RouteKey identifies one physical direction of one route — the unit
// a free transfer must match on.
type RouteKey struct {
	RouteID   gtfsmodel.ID
	Outbound  bool
}

// Pickup is a single boardable departure (spec.md's BusPickupInfo).
type Pickup struct {
	Timestamp   clock.Seconds
	StopSeq     int
	TripID      gtfsmodel.ID
}

type stopEntry struct {
	id      gtfsmodel.ID
	x, y    float64
	byRoute map[RouteKey][]Pickup
}

// Index is the built SpatialStopsWithTrips. It is immutable once
// Build returns; concurrent queries only ever read it.
type Index struct {
	stops map[gtfsmodel.ID]*stopEntry
	tree  *spatial.PointIndex[gtfsmodel.ID]
}

// Build inserts a BusPickupInfo for every (trip, stop_time) pair, then
// bulk-loads the resulting stops into a 2-D R-tree keyed by their
// projected (x, y) coordinates. project converts a stop's (lon, lat)
// into the city's local planar frame.
func Build(m *gtfsmodel.Model, project func(lon, lat float64) (x, y float64)) *Index {
	idx := &Index{
		stops: make(map[gtfsmodel.ID]*stopEntry),
		tree:  spatial.NewPointIndex[gtfsmodel.ID](),
	}

	for _, trip := range m.Trips {
		key := RouteKey{RouteID: trip.RouteID, Outbound: trip.Outbound}
		for _, st := range trip.StopTimes {
			if st.Arrival == nil {
				// Interpolated stop_times are alight-only; never a
				// boarding, so never a pickup.
				continue
			}
			entry := idx.entryFor(m, st.StopID, project)
			if entry == nil {
				continue
			}
			entry.byRoute[key] = append(entry.byRoute[key], Pickup{
				Timestamp: *st.Arrival,
				StopSeq:   st.StopSeq,
				TripID:    trip.ID,
			})
		}
	}

	for key, entry := range idx.stops {
		for rk := range entry.byRoute {
			pickups := entry.byRoute[rk]
			sort.Slice(pickups, func(i, j int) bool { return pickups[i].Timestamp < pickups[j].Timestamp })
			entry.byRoute[rk] = pickups
		}
		idx.tree.Insert(entry.x, entry.y, key)
	}

	return idx
}

func (idx *Index) entryFor(m *gtfsmodel.Model, stopID gtfsmodel.ID, project func(lon, lat float64) (float64, float64)) *stopEntry {
	if e, ok := idx.stops[stopID]; ok {
		return e
	}
	stop, ok := m.Stops[stopID]
	if !ok {
		return nil
	}
	x, y := project(stop.Lon, stop.Lat)
	e := &stopEntry{id: stopID, x: x, y: y, byRoute: make(map[RouteKey][]Pickup)}
	idx.stops[stopID] = e
	return e
}

// NearestStopsWithin yields stops within radiusM meters of (x, y), in
// unspecified order.
func (idx *Index) NearestStopsWithin(x, y, radiusM float64, visit func(stopID gtfsmodel.ID, sx, sy float64)) {
	idx.tree.WithinRadius(x, y, radiusM, func(px, py float64, data gtfsmodel.ID) {
		visit(data, px, py)
	})
}

// RoutesThrough returns the (route_key -> ordered pickups) map for a
// stop, or nil if the stop has no boardable pickups.
func (idx *Index) RoutesThrough(stopID gtfsmodel.ID) map[RouteKey][]Pickup {
	e, ok := idx.stops[stopID]
	if !ok {
		return nil
	}
	return e.byRoute
}

// EarliestPickupAfter binary-searches the ordered pickup set for stop
// under key for the first pickup whose timestamp is >= after. This
// helper only ever does the search, never the constant math (kept in
// the expansion loop where the free-transfer decision is made) nor any
// calendar/agency/mode filtering (see PickupsFrom for a caller that
// needs to scan past a filtered-out pickup to the next one).
func (idx *Index) EarliestPickupAfter(stopID gtfsmodel.ID, key RouteKey, after clock.Seconds) (Pickup, bool) {
	e, ok := idx.stops[stopID]
	if !ok {
		return Pickup{}, false
	}
	pickups := e.byRoute[key]
	i := sort.Search(len(pickups), func(i int) bool { return pickups[i].Timestamp >= after })
	if i == len(pickups) {
		return Pickup{}, false
	}
	return pickups[i], true
}

// PickupsFrom returns the ordered tail of stop's pickup set under key
// starting at the first pickup whose timestamp is >= after. Unlike
// EarliestPickupAfter, callers that must reject the first candidate
// (e.g. because its trip does not run on the query date) can keep
// scanning forward through the returned slice instead of losing the
// rest of the route's later departures.
func (idx *Index) PickupsFrom(stopID gtfsmodel.ID, key RouteKey, after clock.Seconds) []Pickup {
	e, ok := idx.stops[stopID]
	if !ok {
		return nil
	}
	pickups := e.byRoute[key]
	i := sort.Search(len(pickups), func(i int) bool { return pickups[i].Timestamp >= after })
	return pickups[i:]
}
