package reach

import (
	"container/list"
	"math"

	"github.com/antigravity/time2reach/internal/clock"
	"github.com/antigravity/time2reach/internal/roadgraph"
)

const (
	WalkingSpeed         = 1.42 // m/s, on the road graph
	StraightWalkingSpeed = 1.25 // m/s, node-to-stop straight-line penalty
	MinTransferSeconds   = 35.0
	TransitExitPenalty   = 10.0
	perSeedWalkingBudget = 0.10 * 3600 // seconds
	seedNodeCount        = 3
)

type queueItem struct {
	node    roadgraph.NodeID
	setTime clock.Seconds
}

// PropagateFromPoint floods the road graph outward from (x, y),
// seeding the three nearest nodes and relaxing arrival times with a
// FIFO queue, exactly as spec.md §4.5 describes. It mutates only
// best, never the graph.
func PropagateFromPoint(g *roadgraph.Graph, x, y float64, base ReachData, best *BestTimes[roadgraph.NodeID]) {
	queue := list.New()

	for _, nodeID := range g.NNearestNodes(x, y, seedNodeCount) {
		node, ok := g.Node(nodeID)
		if !ok {
			continue
		}
		walkTime := straightLineDistance(x, y, node.X, node.Y) / WalkingSpeed
		seedReach := base.WithTime(base.Timestamp.Add(walkTime))
		if best.SetBestTime(nodeID, seedReach) {
			exploreFromNode(g, nodeID, seedReach, queue, best)
		}
	}

	for queue.Len() > 0 {
		front := queue.Remove(queue.Front()).(queueItem)

		cur, ok := best.Get(front.node)
		if !ok || cur.Timestamp != front.setTime {
			// Stale entry: a better time for this node was recorded
			// after it was enqueued.
			continue
		}

		if cur.Timestamp.Sub(base.Timestamp) >= perSeedWalkingBudget {
			continue
		}

		exploreFromNode(g, front.node, cur, queue, best)
	}
}

// PropagateFromNode is PropagateFromPoint's entry point for callers
// that already hold a node id (e.g. resuming from a cached nearest
// node instead of re-querying the R-tree).
func PropagateFromNode(g *roadgraph.Graph, nodeID roadgraph.NodeID, base ReachData, best *BestTimes[roadgraph.NodeID]) {
	queue := list.New()
	if best.SetBestTime(nodeID, base) {
		exploreFromNode(g, nodeID, base, queue, best)
	}
	for queue.Len() > 0 {
		front := queue.Remove(queue.Front()).(queueItem)
		cur, ok := best.Get(front.node)
		if !ok || cur.Timestamp != front.setTime {
			continue
		}
		if cur.Timestamp.Sub(base.Timestamp) >= perSeedWalkingBudget {
			continue
		}
		exploreFromNode(g, front.node, cur, queue, best)
	}
}

func exploreFromNode(g *roadgraph.Graph, node roadgraph.NodeID, baseTime ReachData, queue *list.List, best *BestTimes[roadgraph.NodeID]) {
	if cur, ok := best.Get(node); ok && cur.Timestamp < baseTime.Timestamp {
		return
	}

	for _, edge := range g.EdgesFrom(node) {
		other := edge.OtherEnd(node)
		arrival := baseTime.WithTime(baseTime.Timestamp.Add(edge.Length / WalkingSpeed))
		if best.SetBestTime(other, arrival) {
			queue.PushBack(queueItem{node: other, setTime: arrival.Timestamp})
		}
	}
}

func straightLineDistance(x1, y1, x2, y2 float64) float64 {
	dx, dy := x1-x2, y1-y2
	return math.Sqrt(dx*dx + dy*dy)
}
