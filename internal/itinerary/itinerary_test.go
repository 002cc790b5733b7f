package itinerary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antigravity/time2reach/internal/clock"
	"github.com/antigravity/time2reach/internal/geo"
	"github.com/antigravity/time2reach/internal/georef"
	"github.com/antigravity/time2reach/internal/gtfsmodel"
	"github.com/antigravity/time2reach/internal/reach"
	"github.com/antigravity/time2reach/internal/roadgraph"
	"github.com/antigravity/time2reach/internal/stopindex"
)

func seconds(v float64) *clock.Seconds {
	s := clock.Seconds(v)
	return &s
}

func id(n uint64) gtfsmodel.ID { return gtfsmodel.ID{Agency: 0, Numeric: n} }

func alwaysRunning(svcID gtfsmodel.ID) gtfsmodel.Service {
	return gtfsmodel.Service{ID: svcID, HasWeekly: true, WeekBits: [7]bool{true, true, true, true, true, true, true}}
}

// buildOneTripCity sets up a single trip A -> B -> C (one stop per
// node plus decoys, matching internal/reach's expansion_test.go
// fixture conventions) and returns the city plus the stop/node ids for
// use by the tests below. The stops are 0.01 degrees (about 1.1 km)
// apart along the equator, far enough that a walk-only node near the
// previous stop never outscores riding the trip under the display
// score.
func buildOneTripCity(t *testing.T) (*reach.CityData, map[string]gtfsmodel.ID, map[string]roadgraph.NodeID) {
	t.Helper()

	stopA, stopB, stopC := id(1), id(2), id(3)
	route := id(10)
	service := id(20)
	trip := id(30)

	proj := georef.New(0, 0)
	graph := roadgraph.New()

	model := &gtfsmodel.Model{
		Stops:    make(map[gtfsmodel.ID]gtfsmodel.Stop),
		Routes:   map[gtfsmodel.ID]gtfsmodel.Route{route: {ID: route, ShortName: "10", Mode: gtfsmodel.ParseRouteMode(3)}},
		Services: map[gtfsmodel.ID]gtfsmodel.Service{service: alwaysRunning(service)},
		Trips:    make(map[gtfsmodel.ID]gtfsmodel.Trip),
		Shapes:   make(map[gtfsmodel.ID]gtfsmodel.Shape),
	}

	nodes := make(map[string]roadgraph.NodeID)
	addStop := func(stopID gtfsmodel.ID, lonOffset float64, name string) roadgraph.NodeID {
		lon, lat := lonOffset, 0.0
		x, y := proj.Project(lon, lat)
		model.Stops[stopID] = gtfsmodel.Stop{ID: stopID, Lat: lat, Lon: lon, Name: name}

		nodeID := roadgraph.NodeID(stopID.Numeric)
		graph.AddNode(roadgraph.Node{ID: nodeID, X: x, Y: y})
		// Decoy nodes keep a stop's own node from leaking into a
		// neighboring stop's walking seed set, same as
		// internal/reach's fixtures.
		graph.AddNode(roadgraph.Node{ID: nodeID + 100000, X: x + 0.1, Y: y})
		graph.AddNode(roadgraph.Node{ID: nodeID + 200000, X: x, Y: y + 0.1})
		nodes[name] = nodeID
		return nodeID
	}

	addStop(stopA, 0, "A")
	addStop(stopB, 0.01, "B")
	addStop(stopC, 0.02, "C")

	model.Trips[trip] = gtfsmodel.Trip{
		ID: trip, RouteID: route, ServiceID: service, Outbound: true,
		ShapeID: gtfsmodel.ID{Agency: 0, Numeric: trip.Numeric | (1 << 62)},
		StopTimes: []gtfsmodel.StopTime{
			{TripID: trip, StopID: stopA, StopSeq: 1, Arrival: seconds(1000), ShapeIndex: 0},
			{TripID: trip, StopID: stopB, StopSeq: 2, Arrival: seconds(1100), ShapeIndex: 1},
			{TripID: trip, StopID: stopC, StopSeq: 3, Arrival: seconds(1200), ShapeIndex: 2},
		},
	}
	model.Shapes[model.Trips[trip].ShapeID] = gtfsmodel.Shape{
		ID: model.Trips[trip].ShapeID,
		Points: []gtfsmodel.ShapePoint{
			{Lon: 0, Lat: 0, Sequence: 0},
			{Lon: 0.01, Lat: 0, Sequence: 1},
			{Lon: 0.02, Lat: 0, Sequence: 2},
		},
	}

	idx := stopindex.Build(model, proj.Project)
	city := &reach.CityData{Model: model, StopIndex: idx, RoadGraph: graph, Projector: proj}

	stopIDs := map[string]gtfsmodel.ID{"A": stopA, "B": stopB, "C": stopC}
	return city, stopIDs, nodes
}

// TestReconstruct_DestinationAtIntermediateStop implements spec.md §8
// scenario 5: a destination co-located with an intermediate stop of a
// boarded trip must end the itinerary at that stop's exit, with no
// trailing walking leg.
func TestReconstruct_DestinationAtIntermediateStop(t *testing.T) {
	city, stops, _ := buildOneTripCity(t)

	cfg := reach.Configuration{
		StartTime:    960,
		DurationSecs: 1800,
		Origin:       geo.LatLng{Lat: 0, Lon: 0},
		QueryDate:    20260731,
	}
	rs := reach.ComputeReach(city, cfg)

	destStop := city.Model.Stops[stops["B"]]
	it, ok := Reconstruct(rs, geo.LatLng{Lat: destStop.Lat, Lon: destStop.Lon})
	require.True(t, ok)
	require.NotEmpty(t, it.Legs)

	last := it.Legs[len(it.Legs)-1]
	assert.Equal(t, stops["B"], last.ExitStop, "itinerary must end at the co-located stop")
	assert.Equal(t, clock.Seconds(1100), last.ExitTime)
	assert.False(t, last.ExitStop.IsNull())

	for _, leg := range it.Legs {
		assert.NotEqual(t, gtfsmodel.NullID, leg.ExitStop, "should not emit a trailing walking leg to a null exit")
	}
}

// TestReconstruct_SkipsSyntheticSeedTrip checks that the seed trip
// pushed at query start (trip_id = NULL) never surfaces as a leg.
func TestReconstruct_SkipsSyntheticSeedTrip(t *testing.T) {
	city, stops, _ := buildOneTripCity(t)

	cfg := reach.Configuration{
		StartTime:    960,
		DurationSecs: 1800,
		Origin:       geo.LatLng{Lat: 0, Lon: 0},
		QueryDate:    20260731,
	}
	rs := reach.ComputeReach(city, cfg)

	destStop := city.Model.Stops[stops["C"]]
	it, ok := Reconstruct(rs, geo.LatLng{Lat: destStop.Lat, Lon: destStop.Lon})
	require.True(t, ok)

	for _, leg := range it.Legs {
		assert.NotEqual(t, "", leg.RouteShortName, "every leg must be a real transit leg, not the synthetic seed")
	}
}

// TestReconstruct_Unreachable returns false when no road node anywhere
// in the city has a recorded best time yet — spec.md §7's
// itinerary-unreachable case, exercised directly against a freshly
// created (unpopulated) RoadStructure rather than relying on distance
// to stay outside whatever the expansion loop happened to reach.
func TestReconstruct_Unreachable(t *testing.T) {
	city, _, _ := buildOneTripCity(t)
	rs := reach.NewRoadStructure(city)

	_, ok := Reconstruct(rs, geo.LatLng{Lat: 0, Lon: 0})
	assert.False(t, ok)
}

// TestReconstruct_TrailingWalkAppendedPastThreshold checks that a
// destination a bit past the last stop gets a trailing walking leg
// once its duration clears finalWalkMinSeconds.
func TestReconstruct_TrailingWalkAppendedPastThreshold(t *testing.T) {
	city, stops, _ := buildOneTripCity(t)

	cfg := reach.Configuration{
		StartTime:    960,
		DurationSecs: 1800,
		Origin:       geo.LatLng{Lat: 0, Lon: 0},
		QueryDate:    20260731,
	}
	rs := reach.ComputeReach(city, cfg)

	lastStop := city.Model.Stops[stops["C"]]
	// A destination offset far enough east of stop C to need more
	// than finalWalkMinSeconds of walking at WalkingSpeed.
	destLon := lastStop.Lon + 0.001
	it, ok := Reconstruct(rs, geo.LatLng{Lat: lastStop.Lat, Lon: destLon})
	require.True(t, ok)
	require.NotEmpty(t, it.Legs)

	final := it.Legs[len(it.Legs)-1]
	assert.Equal(t, gtfsmodel.NullID, final.ExitStop, "a walk past the threshold must be appended as a final leg")
	assert.Greater(t, final.WalkingPrefixTimeS, finalWalkMinSeconds)
}
