// Package spatial wraps github.com/tidwall/rtree for the two static,
// bulk-loaded point indices the engine needs (stop positions, road
// node positions) plus a small per-shape nearest-segment index used
// while computing shape_index.
package spatial

import (
	"math"
	"sort"

	"github.com/tidwall/rtree"
)

// PointIndex is a 2-D R-tree of points carrying an arbitrary payload.
// Neither the stop index nor the road-node index is mutated once a
// query starts, matching the "bulk-loaded static R-tree" design note.
type PointIndex[T any] struct {
	tree rtree.RTreeG[T]
}

func NewPointIndex[T any]() *PointIndex[T] {
	return &PointIndex[T]{}
}

func (p *PointIndex[T]) Insert(x, y float64, data T) {
	p.tree.Insert([2]float64{x, y}, [2]float64{x, y}, data)
}

func (p *PointIndex[T]) Len() int {
	return p.tree.Len()
}

// WithinRadius visits every entry within radiusM meters of (x, y).
func (p *PointIndex[T]) WithinRadius(x, y, radiusM float64, visit func(px, py float64, data T)) {
	p.tree.Search(
		[2]float64{x - radiusM, y - radiusM},
		[2]float64{x + radiusM, y + radiusM},
		func(min, max [2]float64, data T) bool {
			px, py := min[0], min[1]
			if dist(x, y, px, py) <= radiusM {
				visit(px, py, data)
			}
			return true
		},
	)
}

type candidate[T any] struct {
	x, y float64
	d    float64
	data T
}

// Nearest returns the n closest entries to (x, y) in non-decreasing
// distance order. It works by searching expanding bounding boxes
// around the query point until the n-th nearest candidate found lies
// within the box's half-width (or the index is exhausted), then
// sorting that candidate set exactly.
// This trades a little extra scanning at the boundary of each
// expansion ring for not depending on a specific "k-nearest iterator"
// API shape.
func (p *PointIndex[T]) Nearest(x, y float64, n int) []struct {
	X, Y float64
	Data T
} {
	if n <= 0 || p.tree.Len() == 0 {
		return nil
	}

	radius := 100.0
	const maxRadius = 1 << 20
	var found []candidate[T]

	for {
		found = found[:0]
		p.tree.Search(
			[2]float64{x - radius, y - radius},
			[2]float64{x + radius, y + radius},
			func(min, max [2]float64, data T) bool {
				px, py := min[0], min[1]
				found = append(found, candidate[T]{x: px, y: py, d: dist(x, y, px, py), data: data})
				return true
			},
		)
		if radius >= maxRadius || len(found) >= p.tree.Len() {
			break
		}
		if len(found) >= n {
			// A hit in a box corner can be up to radius*sqrt(2) away
			// while an entry just outside the box is barely past
			// radius, so the set is final only once the n-th nearest
			// hit lies within radius.
			sort.Slice(found, func(i, j int) bool { return found[i].d < found[j].d })
			if found[n-1].d <= radius {
				break
			}
		}
		radius *= 4
	}

	sort.Slice(found, func(i, j int) bool { return found[i].d < found[j].d })
	if len(found) > n {
		found = found[:n]
	}

	out := make([]struct {
		X, Y float64
		Data T
	}, len(found))
	for i, c := range found {
		out[i] = struct {
			X, Y float64
			Data T
		}{X: c.x, Y: c.y, Data: c.data}
	}
	return out
}

func dist(x1, y1, x2, y2 float64) float64 {
	dx, dy := x1-x2, y1-y2
	return math.Sqrt(dx*dx + dy*dy)
}
