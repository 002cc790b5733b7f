// Package reach implements the query-time half of the engine: the
// best-times table, the trips arena, the walking propagator, and the
// transit expansion loop that drives them.
package reach

import "github.com/antigravity/time2reach/internal/clock"

// ArenaHandle is a stable small-integer handle into a TripsArena.
type ArenaHandle int32

// NoHandle marks the absence of a back-pointer (the synthetic seed
// trip's Prev). Nodes reached by walking alone from the origin point
// back to the seed trip's handle instead.
const NoHandle ArenaHandle = -1

// ReachData is the per-node arrival triple the best-times table
// stores: when a node was reached, how many transfers it took, and
// which InProgressTrip (if any) produced it.
type ReachData struct {
	Timestamp clock.Seconds
	Transfers uint16
	Back      ArenaHandle
}

func (r ReachData) WithTime(t clock.Seconds) ReachData {
	r.Timestamp = t
	return r
}
