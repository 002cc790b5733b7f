package reach

import (
	"github.com/antigravity/time2reach/internal/clock"
	"github.com/antigravity/time2reach/internal/geo"
	"github.com/antigravity/time2reach/internal/roadgraph"
)

// Configuration is the input to a single compute_reach query.
type Configuration struct {
	StartTime      clock.Seconds
	DurationSecs   float64
	Origin         geo.LatLng
	AgencyOrdinals map[uint16]bool // empty/nil = all agencies
	Modes          map[uint8]bool  // empty/nil = all modes

	// QueryDate is the service date the query runs against, as a
	// YYYYMMDD integer. Trips whose calendar does not run on this date
	// are invisible to the expansion loop (spec.md §8).
	QueryDate int
}

func (c Configuration) agencyAllowed(ordinal uint16) bool {
	if len(c.AgencyOrdinals) == 0 {
		return true
	}
	return c.AgencyOrdinals[ordinal]
}

func (c Configuration) modeAllowed(mode uint8) bool {
	if len(c.Modes) == 0 {
		return true
	}
	return c.Modes[mode]
}

// RoadStructure is the per-query mutable state: the best-times table
// over road nodes plus the trips arena. It is created at query start
// and discarded at query end; no ownership is shared across queries.
// A completed RoadStructure is otherwise immutable and safe to share
// (e.g. via the RoadStructure LRU) as long as callers never call
// Clear on a shared instance.
type RoadStructure struct {
	City   *CityData
	Best   *BestTimes[roadgraph.NodeID]
	Arena  *TripsArena
	Config Configuration
}

func NewRoadStructure(city *CityData) *RoadStructure {
	return &RoadStructure{
		City:  city,
		Best:  NewBestTimes[roadgraph.NodeID](),
		Arena: NewTripsArena(),
	}
}

func (rs *RoadStructure) Clear() {
	rs.Best.Clear()
	rs.Arena = NewTripsArena()
}

// EdgeTime is one entry of the flattened isochrone layer spec.md §6
// asks compute_reach's caller to be able to derive: the average of its
// two endpoints' best arrival times.
type EdgeTime struct {
	EdgeID roadgraph.EdgeID
	Time   clock.Seconds
}

// EdgeTimes computes the per-edge average arrival time over every
// edge whose endpoints were both reached.
func (rs *RoadStructure) EdgeTimes() []EdgeTime {
	var out []EdgeTime
	rs.City.RoadGraph.AllEdges(func(e roadgraph.Edge) {
		from, fok := rs.Best.Get(e.From)
		to, tok := rs.Best.Get(e.To)
		if !fok || !tok {
			return
		}
		avg := (from.Timestamp + to.Timestamp) / 2
		out = append(out, EdgeTime{EdgeID: e.ID, Time: avg})
	})
	return out
}
