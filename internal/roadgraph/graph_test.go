package roadgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/antigravity/time2reach/internal/gtfsmodel"
)

func lineGraph() *Graph {
	g := New()
	g.AddNode(Node{ID: 1, X: 0, Y: 0})
	g.AddNode(Node{ID: 2, X: 10, Y: 0})
	g.AddNode(Node{ID: 3, X: 20, Y: 0})
	g.AddEdge(Edge{ID: 1, From: 1, To: 2, Length: 10})
	g.AddEdge(Edge{ID: 2, From: 2, To: 3, Length: 10})
	return g
}

func TestEdge_OtherEnd(t *testing.T) {
	e := Edge{From: 1, To: 2}
	assert.Equal(t, NodeID(2), e.OtherEnd(1))
	assert.Equal(t, NodeID(1), e.OtherEnd(2))
}

func TestGraph_EdgesFrom(t *testing.T) {
	g := lineGraph()
	edges := g.EdgesFrom(2)
	assert.Len(t, edges, 2)
}

func TestGraph_NearestNode(t *testing.T) {
	g := lineGraph()
	id, ok := g.NearestNode(9, 0)
	assert.True(t, ok)
	assert.Equal(t, NodeID(2), id)
}

func TestGraph_NNearestNodes(t *testing.T) {
	g := lineGraph()
	nodes := g.NNearestNodes(0, 0, 2)
	assert.Equal(t, []NodeID{1, 2}, nodes)
}

func TestGraph_NearestNodeForStop_CachesResult(t *testing.T) {
	g := lineGraph()
	stop := gtfsmodel.ID{Agency: 0, Numeric: 1}

	id1, ok := g.NearestNodeForStop(stop, 1, 0)
	assert.True(t, ok)
	assert.Equal(t, NodeID(1), id1)

	// Even if queried again with coordinates nearer a different node,
	// the cached result for this stop id is returned unchanged.
	id2, ok := g.NearestNodeForStop(stop, 19, 0)
	assert.True(t, ok)
	assert.Equal(t, id1, id2)
}

func TestGraph_AllEdges(t *testing.T) {
	g := lineGraph()
	count := 0
	g.AllEdges(func(Edge) { count++ })
	assert.Equal(t, 2, count)
}
