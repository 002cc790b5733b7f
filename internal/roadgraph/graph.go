// Package roadgraph holds the immutable pedestrian street network the
// walking propagator floods: nodes with planar (x, y) positions and an
// adjacency list of undirected, length-weighted edges.
package roadgraph

import (
	"sync"

	"github.com/antigravity/time2reach/internal/gtfsmodel"
	"github.com/antigravity/time2reach/internal/spatial"
)

type NodeID uint64
type EdgeID uint64

type Node struct {
	ID   NodeID
	X, Y float64
}

type Edge struct {
	ID     EdgeID
	From   NodeID
	To     NodeID
	Length float64 // meters
}

// OtherEnd returns the endpoint of e that is not n.
func (e Edge) OtherEnd(n NodeID) NodeID {
	if e.From == n {
		return e.To
	}
	return e.From
}

// Graph is built once per city at startup and never mutated except
// through its nearest-node cache, which is append-only and safe for
// concurrent single-writer, multi-reader use during query processing.
type Graph struct {
	nodes map[NodeID]Node
	edges map[EdgeID]Edge
	adj   map[NodeID][]EdgeID
	index *spatial.PointIndex[NodeID]

	cacheMu sync.Mutex
	cache   map[gtfsmodel.ID]NodeID
}

func New() *Graph {
	return &Graph{
		nodes: make(map[NodeID]Node),
		edges: make(map[EdgeID]Edge),
		adj:   make(map[NodeID][]EdgeID),
		index: spatial.NewPointIndex[NodeID](),
		cache: make(map[gtfsmodel.ID]NodeID),
	}
}

func (g *Graph) AddNode(n Node) {
	g.nodes[n.ID] = n
	g.index.Insert(n.X, n.Y, n.ID)
}

func (g *Graph) AddEdge(e Edge) {
	g.edges[e.ID] = e
	g.adj[e.From] = append(g.adj[e.From], e.ID)
	g.adj[e.To] = append(g.adj[e.To], e.ID)
}

func (g *Graph) Node(id NodeID) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

func (g *Graph) Edge(id EdgeID) (Edge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

func (g *Graph) EdgesFrom(id NodeID) []Edge {
	ids := g.adj[id]
	out := make([]Edge, 0, len(ids))
	for _, eid := range ids {
		out = append(out, g.edges[eid])
	}
	return out
}

func (g *Graph) AllEdges(visit func(Edge)) {
	for _, e := range g.edges {
		visit(e)
	}
}

// NearestNode returns the single closest node to (x, y).
func (g *Graph) NearestNode(x, y float64) (NodeID, bool) {
	hits := g.index.Nearest(x, y, 1)
	if len(hits) == 0 {
		return 0, false
	}
	return hits[0].Data, true
}

// NNearestNodes returns up to n closest nodes to (x, y) in
// non-decreasing distance order.
func (g *Graph) NNearestNodes(x, y float64, n int) []NodeID {
	hits := g.index.Nearest(x, y, n)
	out := make([]NodeID, len(hits))
	for i, h := range hits {
		out[i] = h.Data
	}
	return out
}

// NearestNodeForStop memoizes the nearest-node lookup keyed by stop
// id: a miss computes the same value as any concurrent miss, so a
// plain mutex around the map is sufficient even though several
// queries may race on the same stop the first time it's asked about.
func (g *Graph) NearestNodeForStop(stopID gtfsmodel.ID, x, y float64) (NodeID, bool) {
	g.cacheMu.Lock()
	if id, ok := g.cache[stopID]; ok {
		g.cacheMu.Unlock()
		return id, true
	}
	g.cacheMu.Unlock()

	id, ok := g.NearestNode(x, y)
	if !ok {
		return 0, false
	}

	g.cacheMu.Lock()
	g.cache[stopID] = id
	g.cacheMu.Unlock()
	return id, true
}
