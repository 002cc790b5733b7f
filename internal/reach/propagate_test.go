package reach

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antigravity/time2reach/internal/clock"
	"github.com/antigravity/time2reach/internal/roadgraph"
)

// linearGraph builds A(0,0) -- 100m -- B(100,0) -- 100m -- C(200,0).
func linearGraph() *roadgraph.Graph {
	g := roadgraph.New()
	g.AddNode(roadgraph.Node{ID: 1, X: 0, Y: 0})
	g.AddNode(roadgraph.Node{ID: 2, X: 100, Y: 0})
	g.AddNode(roadgraph.Node{ID: 3, X: 200, Y: 0})
	g.AddEdge(roadgraph.Edge{ID: 1, From: 1, To: 2, Length: 100})
	g.AddEdge(roadgraph.Edge{ID: 2, From: 2, To: 3, Length: 100})
	return g
}

func TestPropagateFromNode_OriginHasZeroTime(t *testing.T) {
	g := linearGraph()
	best := NewBestTimes[roadgraph.NodeID]()

	PropagateFromNode(g, 1, ReachData{Timestamp: 0, Back: NoHandle}, best)

	origin, ok := best.Get(1)
	require.True(t, ok)
	assert.Equal(t, clock.Seconds(0), origin.Timestamp)
}

func TestPropagateFromNode_RelaxesAlongChain(t *testing.T) {
	g := linearGraph()
	best := NewBestTimes[roadgraph.NodeID]()

	PropagateFromNode(g, 1, ReachData{Timestamp: 0, Back: NoHandle}, best)

	b, ok := best.Get(2)
	require.True(t, ok)
	assert.InDelta(t, 100/WalkingSpeed, float64(b.Timestamp), 1e-9)

	c, ok := best.Get(3)
	require.True(t, ok)
	assert.InDelta(t, 200/WalkingSpeed, float64(c.Timestamp), 1e-9)
}

func TestPropagateFromPoint_SeedsNearestNodes(t *testing.T) {
	g := linearGraph()
	best := NewBestTimes[roadgraph.NodeID]()

	// Query origin sits 10m off node 1 along the same line.
	PropagateFromPoint(g, -10, 0, ReachData{Timestamp: 0, Back: NoHandle}, best)

	origin, ok := best.Get(1)
	require.True(t, ok)
	assert.InDelta(t, 10/WalkingSpeed, float64(origin.Timestamp), 1e-9)

	// Reaching node 2 costs the straight-line walk to node 1 plus the
	// road-graph edge from 1 to 2.
	b, ok := best.Get(2)
	require.True(t, ok)
	assert.InDelta(t, (10+100)/WalkingSpeed, float64(b.Timestamp), 1e-9)
}

func TestExploreFromNode_DoesNotWorsenExistingEntry(t *testing.T) {
	g := linearGraph()
	best := NewBestTimes[roadgraph.NodeID]()

	// Seed node 2 directly with an already-good time, then propagate
	// from node 1: node 2 should keep its better time, not regress to
	// the longer path through node 1.
	best.SetBestTime(2, ReachData{Timestamp: 1, Back: NoHandle})
	PropagateFromNode(g, 1, ReachData{Timestamp: 0, Back: NoHandle}, best)

	b, _ := best.Get(2)
	assert.Equal(t, clock.Seconds(1), b.Timestamp)
}

func TestBestTimes_SetBestTime_MonotoneRelaxation(t *testing.T) {
	best := NewBestTimes[roadgraph.NodeID]()
	assert.True(t, best.SetBestTime(1, ReachData{Timestamp: 100}))
	assert.False(t, best.SetBestTime(1, ReachData{Timestamp: 150})) // worse, rejected
	assert.True(t, best.SetBestTime(1, ReachData{Timestamp: 50}))   // better, accepted

	v, ok := best.Get(1)
	require.True(t, ok)
	assert.Equal(t, clock.Seconds(50), v.Timestamp)
}
