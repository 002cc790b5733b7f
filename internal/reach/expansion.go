package reach

import (
	"container/list"

	"github.com/antigravity/time2reach/internal/clock"
	"github.com/antigravity/time2reach/internal/gtfsmodel"
	"github.com/antigravity/time2reach/internal/stopindex"
)

// reachRadiusM bounds the search for boardable stops around a trip's
// exit point: the farthest a walker can get in perSeedWalkingBudget
// plus slack for the node-to-stop straight-line offset.
const reachRadiusM = perSeedWalkingBudget*WalkingSpeed + 150

// ComputeReach runs the transit expansion loop of spec.md §4.6 to
// completion and returns the resulting RoadStructure.
func ComputeReach(city *CityData, cfg Configuration) *RoadStructure {
	rs := NewRoadStructure(city)
	rs.Config = cfg

	ox, oy := city.Project(cfg.Origin.Lat, cfg.Origin.Lon)

	seed := InProgressTrip{
		TripID:       gtfsmodel.NullID,
		BoardingStop: gtfsmodel.NullID,
		BoardingTime: cfg.StartTime,
		ExitStop:     gtfsmodel.NullID,
		ExitTime:     cfg.StartTime,
		ExitX:        ox,
		ExitY:        oy,
		Prev:         NoHandle,
	}
	seedHandle := rs.Arena.Push(seed)

	queue := list.New()
	queue.PushBack(seedHandle)

	deadline := cfg.StartTime.Add(cfg.DurationSecs)

	for queue.Len() > 0 {
		handle := queue.Remove(queue.Front()).(ArenaHandle)
		frontier, ok := rs.Arena.Get(handle)
		if !ok {
			continue
		}

		if frontier.ExitTime > deadline {
			// Arrival times only grow along any one chain, so nothing
			// past the deadline is worth exploring from here. The FIFO
			// queue is not ordered by exit time, though, so trips
			// queued behind this one may still be within budget.
			continue
		}

		base := ReachData{Timestamp: frontier.ExitTime, Transfers: frontier.TotalTransfers, Back: handle}
		PropagateFromPoint(city.RoadGraph, frontier.ExitX, frontier.ExitY, base, rs.Best)

		expandBoardings(city, &cfg, rs, frontier, handle, queue)
	}

	return rs
}

func expandBoardings(city *CityData, cfg *Configuration, rs *RoadStructure, frontier InProgressTrip, handle ArenaHandle, queue *list.List) {
	city.StopIndex.NearestStopsWithin(frontier.ExitX, frontier.ExitY, reachRadiusM, func(stopID gtfsmodel.ID, sx, sy float64) {
		nodeID, ok := city.RoadGraph.NearestNodeForStop(stopID, sx, sy)
		if !ok {
			return
		}
		node, ok := city.RoadGraph.Node(nodeID)
		if !ok {
			return
		}
		nodeReach, ok := rs.Best.Get(nodeID)
		if !ok {
			return
		}

		arrivalAtStop := nodeReach.Timestamp.Add(straightLineDistance(node.X, node.Y, sx, sy) / StraightWalkingSpeed)

		for routeKey := range city.StopIndex.RoutesThrough(stopID) {
			isFree := !frontier.TripID.IsNull() && routeKey == frontier.RouteKey && stopID == frontier.ExitStop

			after := arrivalAtStop
			if !isFree {
				after = after.Add(MinTransferSeconds)
			}

			if !cfg.agencyAllowed(routeKey.RouteID.Agency) {
				continue
			}
			route, ok := city.Model.Routes[routeKey.RouteID]
			if !ok || !cfg.modeAllowed(route.Mode.Kind()) {
				continue
			}

			pickup, boardedTrip, ok := firstRunningPickup(city, cfg, stopID, routeKey, after)
			if !ok {
				continue
			}

			if rs.Arena.AlreadyBoarded(pickup.TripID, pickup.StopSeq) {
				continue
			}
			rs.Arena.RecordBoarding(pickup.TripID, pickup.StopSeq)

			boardingShapeIndex := shapeIndexAtStopSeq(boardedTrip, pickup.StopSeq)

			walkTimeS := arrivalAtStop.Sub(frontier.ExitTime)
			walkLenM := straightLineDistance(frontier.ExitX, frontier.ExitY, sx, sy)

			newTransfers := frontier.TotalTransfers
			if !isFree {
				newTransfers++
			}

			for _, st := range boardedTrip.StopTimes {
				if st.StopSeq <= pickup.StopSeq {
					continue
				}
				if st.Arrival == nil {
					continue
				}
				exitTime := *st.Arrival

				if rs.Arena.DominatesArrival(st.StopID, exitTime) {
					continue
				}
				rs.Arena.RecordArrival(st.StopID, exitTime)

				exitStop, ok := city.Model.Stops[st.StopID]
				if !ok {
					continue
				}
				ex, ey := city.Project(exitStop.Lat, exitStop.Lon)

				next := InProgressTrip{
					TripID:             pickup.TripID,
					BoardingStop:       stopID,
					BoardingTime:       pickup.Timestamp,
					ExitStop:           st.StopID,
					ExitTime:           exitTime,
					ExitX:              ex,
					ExitY:              ey,
					RouteKey:           routeKey,
					TotalTransfers:     newTransfers,
					Prev:               handle,
					IsFreeTransfer:     isFree,
					WalkingLengthM:     walkLenM,
					WalkingTimeS:       walkTimeS,
					ShapeID:            boardedTrip.ShapeID,
					BoardingShapeIndex: boardingShapeIndex,
					ExitShapeIndex:     st.ShapeIndex,
				}
				h := rs.Arena.Push(next)
				queue.PushBack(h)
			}
		}
	})
}

// firstRunningPickup scans stopID's ordered pickup set under routeKey,
// starting at the first departure at or after "after", for the first
// one whose trip's service runs on cfg.QueryDate — spec.md §8's
// calendar boundary behavior ("a trip whose service_id does not run on
// the query date must be invisible to the expansion loop"). A trip
// whose service_id has no calendar record at all is assumed to run,
// matching gtfsmodel.RunsOn's default.
func firstRunningPickup(city *CityData, cfg *Configuration, stopID gtfsmodel.ID, routeKey stopindex.RouteKey, after clock.Seconds) (stopindex.Pickup, gtfsmodel.Trip, bool) {
	for _, pickup := range city.StopIndex.PickupsFrom(stopID, routeKey, after) {
		trip, ok := city.Model.Trips[pickup.TripID]
		if !ok {
			continue
		}
		if svc, ok := city.Model.Services[trip.ServiceID]; ok && !gtfsmodel.RunsOn(svc, cfg.QueryDate) {
			continue
		}
		return pickup, trip, true
	}
	return stopindex.Pickup{}, gtfsmodel.Trip{}, false
}

// shapeIndexAtStopSeq finds the shape_index recorded for trip's
// stop_time at stopSeq. Boardings are always at a stop_sequence that
// exists on the trip (the pickup itself came from one), so a miss here
// only happens for malformed input; 0 is a safe, harmless fallback.
func shapeIndexAtStopSeq(trip gtfsmodel.Trip, stopSeq int) float64 {
	for _, st := range trip.StopTimes {
		if st.StopSeq == stopSeq {
			return st.ShapeIndex
		}
	}
	return 0
}
