// Package itinerary turns a destination point and a completed
// RoadStructure into a human-readable chain of walking and transit
// legs by following the trips arena's back-pointers.
package itinerary

import (
	"math"

	"github.com/antigravity/time2reach/internal/clock"
	"github.com/antigravity/time2reach/internal/geo"
	"github.com/antigravity/time2reach/internal/gtfsmodel"
	"github.com/antigravity/time2reach/internal/reach"
	"github.com/antigravity/time2reach/internal/roadgraph"
)

// displayTransferPenaltySeconds is used only to disambiguate between
// candidate destination nodes — never for routing itself.
const displayTransferPenaltySeconds = 45.0

const candidateNodeCount = 20
const destinationCandidateK = 5

// finalWalkMinSeconds is the minimum duration a trailing destination
// walk must have to be emitted as its own leg.
const finalWalkMinSeconds = 40.0

// Leg is one walking or transit segment of a reconstructed itinerary.
type Leg struct {
	BoardingStop        gtfsmodel.ID
	BoardingTime        clock.Seconds
	RouteShortName      string
	Mode                gtfsmodel.RouteMode
	ExitStop            gtfsmodel.ID
	ExitTime            clock.Seconds
	WalkingPrefixLengthM float64
	WalkingPrefixTimeS   float64
	IsStayOnVehicle     bool

	// Geometry is the slice of the trip's shape polyline between the
	// boarding and exit stops, in (lon, lat) degrees. Nil for walking
	// legs and for legs whose trip shape could not be resolved.
	Geometry []gtfsmodel.ShapePoint
}

type Itinerary struct {
	Legs []Leg
}

// Reconstruct implements spec.md §4.7. It returns (nil, false) when no
// best-time node lies within the reach map.
func Reconstruct(rs *reach.RoadStructure, destination geo.LatLng) (*Itinerary, bool) {
	dx, dy := rs.City.Project(destination.Lat, destination.Lon)

	best, bestNode, ok := pickDestinationNode(rs, dx, dy)
	if !ok {
		return nil, false
	}
	_ = bestNode

	var records []reach.InProgressTrip
	h := best.Back
	for h != reach.NoHandle {
		rec, ok := rs.Arena.Get(h)
		if !ok {
			break
		}
		if !rec.TripID.IsNull() {
			records = append(records, rec)
		}
		h = rec.Prev
	}

	// records were collected child-to-parent; reverse so the start
	// appears first.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	legs := make([]Leg, 0, len(records)+1)
	for _, rec := range records {
		route := rs.City.Model.Routes[rec.RouteKey.RouteID]
		var geometry []gtfsmodel.ShapePoint
		if shape, ok := rs.City.Model.Shapes[rec.ShapeID]; ok {
			geometry = gtfsmodel.SliceShape(shape, rec.BoardingShapeIndex, rec.ExitShapeIndex)
		}
		legs = append(legs, Leg{
			BoardingStop:         rec.BoardingStop,
			BoardingTime:         rec.BoardingTime,
			RouteShortName:       route.ShortName,
			Mode:                 route.Mode,
			ExitStop:             rec.ExitStop,
			ExitTime:             rec.ExitTime,
			WalkingPrefixLengthM: rec.WalkingLengthM,
			WalkingPrefixTimeS:   rec.WalkingTimeS,
			IsStayOnVehicle:      rec.IsFreeTransfer,
			Geometry:             geometry,
		})
	}

	if len(legs) > 0 {
		last := legs[len(legs)-1]
		lastStop, ok := rs.City.Model.Stops[last.ExitStop]
		if ok {
			lx, ly := rs.City.Project(lastStop.Lat, lastStop.Lon)
			dist := math.Hypot(dx-lx, dy-ly)
			walkTime := dist / reach.WalkingSpeed
			if walkTime >= finalWalkMinSeconds {
				legs = append(legs, Leg{
					BoardingStop:         last.ExitStop,
					BoardingTime:         last.ExitTime,
					ExitStop:             gtfsmodel.NullID,
					ExitTime:             last.ExitTime.Add(walkTime),
					WalkingPrefixLengthM: dist,
					WalkingPrefixTimeS:   walkTime,
				})
			}
		}
	}

	return &Itinerary{Legs: legs}, true
}

// pickDestinationNode implements the K-nearest display-score
// disambiguation: among the nearest geographic nodes to the
// destination that were actually reached, pick the one minimizing
// arrival_time + straight_line_distance/WALKING_SPEED +
// 45s*transfers.
func pickDestinationNode(rs *reach.RoadStructure, dx, dy float64) (reach.ReachData, roadgraph.NodeID, bool) {
	candidates := rs.City.RoadGraph.NNearestNodes(dx, dy, candidateNodeCount)

	type scored struct {
		node  roadgraph.NodeID
		data  reach.ReachData
		score float64
	}
	var found []scored

	for _, nodeID := range candidates {
		data, ok := rs.Best.Get(nodeID)
		if !ok {
			continue
		}
		node, ok := rs.City.RoadGraph.Node(nodeID)
		if !ok {
			continue
		}
		dist := math.Hypot(dx-node.X, dy-node.Y)
		score := float64(data.Timestamp) + dist/reach.WalkingSpeed + displayTransferPenaltySeconds*float64(data.Transfers)
		found = append(found, scored{node: nodeID, data: data, score: score})
		if len(found) >= destinationCandidateK {
			break
		}
	}

	if len(found) == 0 {
		return reach.ReachData{}, 0, false
	}

	best := found[0]
	for _, f := range found[1:] {
		if f.score < best.score {
			best = f
		}
	}
	return best.data, best.node, true
}
