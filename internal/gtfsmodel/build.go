package gtfsmodel

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/jamespfennell/gtfs"

	"github.com/antigravity/time2reach/internal/clock"
	"github.com/antigravity/time2reach/internal/spatial"
)

// BuildOptions configures one feed's construction.
type BuildOptions struct {
	// BaseAgencyOrdinal is the ordinal assigned to this feed's first (or
	// only) agency. A feed declaring several agencies in agency.txt
	// consumes one ordinal per agency, starting here; Build reports how
	// many it used so a caller loading several feeds for one city can
	// give the next feed a non-overlapping base.
	BaseAgencyOrdinal uint16
	Interner          *Interner
}

// Build runs the normalization pipeline of the GTFS model construction
// component against one already-parsed static feed: splitting by
// agency_id per spec.md §4.3 step (2), interning, sorting stop_times,
// shape grouping and synthesis, and shape_index computation. Raw
// parsing itself is delegated to github.com/jamespfennell/gtfs; Build
// never reads a zip file.
//
// Build returns the merged Model across every agency-slice that
// survived the split, and the count of ordinals it consumed (1 for a
// single-agency feed). It fails on structural errors (a trip
// referencing a missing shape) and when every agency-slice was
// dropped; an agency-slice dropped for missing arrival_time otherwise
// simply doesn't contribute to the merged Model.
func Build(feed *gtfs.Static, opts BuildOptions) (*Model, int, error) {
	slices := splitByAgency(feed, opts.BaseAgencyOrdinal)
	// spec.md §4.3 step (2) ties the missing-arrival_time drop to the
	// act of splitting a multi-agency feed; a feed with zero or one
	// declared agency is never split, so the check does not apply to
	// it, matching real-world single-operator feeds that routinely use
	// interpolated (arrival-time-less) stop_times.
	enforce := len(feed.Agencies) > 1

	var merged *Model
	for _, sl := range slices {
		built, dropped, err := buildSlice(feed, sl, opts.Interner, enforce)
		if err != nil {
			return nil, 0, err
		}
		if dropped {
			continue
		}
		if merged == nil {
			merged = built
		} else {
			merged = Merge(merged, built)
		}
	}
	if merged == nil {
		return nil, 0, fmt.Errorf("gtfsmodel: every agency-slice of this feed was dropped (missing arrival_time)")
	}
	return merged, len(slices), nil
}

// agencySlice names one agency-slice of a feed: the ordinal it builds
// under, its display name, and which raw trip ids belong to it. A nil
// tripIDs means "every trip in the feed" — the single-agency case,
// where no actual splitting occurs.
type agencySlice struct {
	ordinal    uint16
	agencyName string
	tripIDs    map[string]bool
}

// splitByAgency groups a feed's trips by their route's agency_id per
// spec.md §4.3 step (2). A feed with zero or one agency yields a
// single slice covering every trip; a feed with several agencies
// yields one slice per agency, in agency.txt's declared order, each
// assigned a successive ordinal starting at baseOrdinal. A trip whose
// route resolves to an agency_id absent from agency.txt (malformed
// input) still gets its own slice rather than being silently merged
// into another agency's.
func splitByAgency(feed *gtfs.Static, baseOrdinal uint16) []agencySlice {
	if len(feed.Agencies) <= 1 {
		name := ""
		if len(feed.Agencies) == 1 {
			name = feed.Agencies[0].Name
		}
		return []agencySlice{{ordinal: baseOrdinal, agencyName: name}}
	}

	order := make([]string, 0, len(feed.Agencies))
	nameByID := make(map[string]string, len(feed.Agencies))
	seen := make(map[string]bool, len(feed.Agencies))
	for _, a := range feed.Agencies {
		if !seen[a.Id] {
			seen[a.Id] = true
			order = append(order, a.Id)
		}
		nameByID[a.Id] = a.Name
	}

	tripsByAgency := make(map[string]map[string]bool, len(order))
	for _, id := range order {
		tripsByAgency[id] = make(map[string]bool)
	}
	for _, t := range feed.Trips {
		if t.Route == nil {
			continue
		}
		agencyID := ""
		if t.Route.Agency != nil {
			agencyID = t.Route.Agency.Id
		}
		if _, ok := tripsByAgency[agencyID]; !ok {
			order = append(order, agencyID)
			tripsByAgency[agencyID] = make(map[string]bool)
		}
		tripsByAgency[agencyID][t.ID] = true
	}

	slices := make([]agencySlice, len(order))
	for i, id := range order {
		slices[i] = agencySlice{
			ordinal:    baseOrdinal + uint16(i),
			agencyName: nameByID[id],
			tripIDs:    tripsByAgency[id],
		}
	}
	return slices
}

// buildSlice builds one agency-slice's Model: only the trips named by
// sl.tripIDs (or every trip, if nil), plus the stops/routes/services/
// shapes they reference. It reports dropped=true, with no error, when
// enforce is set and any included stop_time lacks arrival_time,
// matching spec.md §4.3 step (2)'s agency-slice drop.
func buildSlice(feed *gtfs.Static, sl agencySlice, interner *Interner, enforce bool) (m *Model, dropped bool, err error) {
	m = &Model{
		Stops:    make(map[ID]Stop),
		Routes:   make(map[ID]Route),
		Trips:    make(map[ID]Trip),
		Shapes:   make(map[ID]Shape),
		Services: make(map[ID]Service),
	}

	idOf := func(raw string) ID {
		return resolveID(sl.ordinal, raw, interner)
	}
	included := func(tripID string) bool {
		return sl.tripIDs == nil || sl.tripIDs[tripID]
	}

	wantedRoutes := make(map[string]bool)
	wantedServices := make(map[string]bool)
	wantedStops := make(map[string]bool)
	wantedShapes := make(map[string]bool)
	for _, t := range feed.Trips {
		if t.Route == nil || t.Service == nil || !included(t.ID) {
			continue
		}
		wantedRoutes[t.Route.Id] = true
		wantedServices[t.Service.Id] = true
		if t.Shape != nil {
			wantedShapes[t.Shape.ID] = true
		}
		for _, st := range t.StopTimes {
			if st.Stop != nil {
				wantedStops[st.Stop.Id] = true
			}
		}
	}

	for _, s := range feed.Stops {
		if !wantedStops[s.Id] {
			continue
		}
		if s.Latitude == nil || s.Longitude == nil {
			// Dropped before indexing per the stop-coordinate invariant.
			continue
		}
		stop := Stop{
			ID:       idOf(s.Id),
			Lat:      *s.Latitude,
			Lon:      *s.Longitude,
			Location: ParseLocationType(int(s.Type)),
		}
		if s.Name != nil {
			stop.Name = *s.Name
		}
		m.Stops[stop.ID] = stop
	}

	for _, r := range feed.Routes {
		if !wantedRoutes[r.Id] {
			continue
		}
		route := Route{
			ID:        idOf(r.Id),
			Mode:      ParseRouteMode(int(r.Type)),
			Color:     r.Color,
			TextColor: r.TextColor,
		}
		if r.ShortName != nil {
			route.ShortName = *r.ShortName
		}
		if r.LongName != nil {
			route.LongName = *r.LongName
		}
		m.Routes[route.ID] = route
	}

	for _, svc := range feed.Services {
		if !wantedServices[svc.Id] {
			continue
		}
		service := Service{
			ID:         idOf(svc.Id),
			HasWeekly:  true,
			Exceptions: make(map[int]ExceptionType),
			WeekBits: [7]bool{
				svc.Monday, svc.Tuesday, svc.Wednesday, svc.Thursday,
				svc.Friday, svc.Saturday, svc.Sunday,
			},
		}
		for _, d := range svc.AddedDates {
			service.Exceptions[yyyymmdd(d)] = ExceptionAdded
		}
		for _, d := range svc.RemovedDates {
			// Last-seen wins; a date present in both lists is
			// pathological input but we do not special-case it beyond
			// "later iteration wins", matching the unspecified
			// tie-break spec.md calls out.
			service.Exceptions[yyyymmdd(d)] = ExceptionRemoved
		}
		m.Services[service.ID] = service
	}

	rawShapes := make(map[ID]Shape)
	for _, sh := range feed.Shapes {
		if !wantedShapes[sh.ID] {
			continue
		}
		shapeID := idOf(sh.ID)
		pts := make([]ShapePoint, len(sh.Points))
		for i, p := range sh.Points {
			pts[i] = ShapePoint{Lon: p.Longitude, Lat: p.Latitude, Sequence: i}
		}
		rawShapes[shapeID] = Shape{ID: shapeID, Points: pts}
	}

	hasMissingArrival := false
	for _, t := range feed.Trips {
		if t.Route == nil || t.Service == nil || !included(t.ID) {
			continue
		}
		trip := Trip{
			ID:        idOf(t.ID),
			RouteID:   idOf(t.Route.Id),
			ServiceID: idOf(t.Service.Id),
		}
		if t.Headsign != nil {
			trip.Headsign = *t.Headsign
		}
		if t.DirectionId != nil {
			trip.Outbound = *t.DirectionId
		} else {
			trip.Outbound = true
		}

		stopTimes := make([]StopTime, 0, len(t.StopTimes))
		for i, st := range t.StopTimes {
			if st.Stop == nil {
				continue
			}
			var arrival *clock.Seconds
			// ArrivalTime is a plain time.Duration, not a pointer; the
			// library represents "blank in stop_times.txt" (an
			// interpolated time) as the zero value, since a genuine
			// midnight-exactly arrival past the first stop of a trip
			// does not occur in practice.
			if st.ArrivalTime != 0 {
				v := durationToSeconds(st.ArrivalTime)
				arrival = &v
			} else {
				hasMissingArrival = true
			}
			stopTimes = append(stopTimes, StopTime{
				TripID:      trip.ID,
				StopID:      idOf(st.Stop.Id),
				StopSeq:     st.StopSequence,
				Arrival:     arrival,
				IndexInTrip: i,
			})
		}
		sort.Slice(stopTimes, func(i, j int) bool {
			return stopTimes[i].StopSeq < stopTimes[j].StopSeq
		})
		trip.StopTimes = stopTimes

		if t.Shape != nil {
			trip.ShapeID = idOf(t.Shape.ID)
			if _, ok := rawShapes[trip.ShapeID]; !ok {
				rawShapes[trip.ShapeID] = convertShape(idOf(t.Shape.ID), t.Shape)
			}
		} else {
			trip.ShapeID = synthesizeShapeID(trip.ID)
			rawShapes[trip.ShapeID] = synthesizeShape(trip, m.Stops)
		}

		m.Trips[trip.ID] = trip
	}

	if enforce && hasMissingArrival {
		return nil, true, nil
	}

	m.Shapes = rawShapes

	if err := computeShapeIndices(m); err != nil {
		return nil, false, err
	}

	m.Agencies = []AgencyTag{{Ordinal: sl.ordinal, Name: sl.agencyName}}

	return m, false, nil
}

// Merge concatenates two agency-slices built against a shared
// Interner. IDs are unique by construction so this is a plain map
// union.
func Merge(a, b *Model) *Model {
	out := &Model{
		Stops:    make(map[ID]Stop, len(a.Stops)+len(b.Stops)),
		Routes:   make(map[ID]Route, len(a.Routes)+len(b.Routes)),
		Trips:    make(map[ID]Trip, len(a.Trips)+len(b.Trips)),
		Shapes:   make(map[ID]Shape, len(a.Shapes)+len(b.Shapes)),
		Services: make(map[ID]Service, len(a.Services)+len(b.Services)),
	}
	for _, src := range []*Model{a, b} {
		for k, v := range src.Stops {
			out.Stops[k] = v
		}
		for k, v := range src.Routes {
			out.Routes[k] = v
		}
		for k, v := range src.Trips {
			out.Trips[k] = v
		}
		for k, v := range src.Shapes {
			out.Shapes[k] = v
		}
		for k, v := range src.Services {
			out.Services[k] = v
		}
		out.Agencies = append(out.Agencies, src.Agencies...)
	}
	return out
}

func resolveID(agency uint16, raw string, interner *Interner) ID {
	if n, err := strconv.ParseUint(raw, 10, 64); err == nil {
		return ID{Agency: agency, Numeric: n}
	}
	return ID{Agency: agency, Numeric: interner.Intern(raw)}
}

func durationToSeconds(d time.Duration) clock.Seconds {
	return clock.Seconds(d.Seconds())
}

func yyyymmdd(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

func synthesizeShapeID(tripID ID) ID {
	// Deterministic per-trip id in a dedicated numeric band so
	// synthesized shapes never collide with feed shape ids.
	return ID{Agency: tripID.Agency, Numeric: tripID.Numeric | (1 << 62)}
}

func convertShape(id ID, sh *gtfs.Shape) Shape {
	pts := make([]ShapePoint, len(sh.Points))
	for i, p := range sh.Points {
		pts[i] = ShapePoint{Lon: p.Longitude, Lat: p.Latitude, Sequence: i}
	}
	return Shape{ID: id, Points: pts}
}

// synthesizeShape builds a straight-line polyline through a trip's own
// stops when the feed supplies no shape. This is the documented,
// lower-fidelity fallback spec.md §9 calls out: shape_index computed
// against it is exact only at stop boundaries, linear in between.
func synthesizeShape(t Trip, stops map[ID]Stop) Shape {
	pts := make([]ShapePoint, 0, len(t.StopTimes))
	for i, st := range t.StopTimes {
		if s, ok := stops[st.StopID]; ok {
			pts = append(pts, ShapePoint{Lon: s.Lon, Lat: s.Lat, Sequence: i})
		}
	}
	return Shape{ID: t.ShapeID, Points: pts}
}

// computeShapeIndices implements spec.md §4.3 step (8): for every
// stop_time, find the nearest segment of its trip's shape polyline via
// an R-tree of that shape's line segments, then record the fractional
// position along that segment.
func computeShapeIndices(m *Model) error {
	shapeTrees := make(map[ID]*spatial.SegmentIndex)

	for tripID, trip := range m.Trips {
		tree, ok := shapeTrees[trip.ShapeID]
		if !ok {
			shape, ok := m.Shapes[trip.ShapeID]
			if !ok {
				return fmt.Errorf("gtfsmodel: trip %v references missing shape %v", trip.ID, trip.ShapeID)
			}
			tree = buildSegmentIndex(shape)
			shapeTrees[trip.ShapeID] = tree
		}

		for i := range trip.StopTimes {
			st := &trip.StopTimes[i]
			stop, ok := m.Stops[st.StopID]
			if !ok {
				continue
			}
			st.ShapeIndex = tree.NearestSegmentFraction(stop.Lon, stop.Lat)
		}
		m.Trips[tripID] = trip
	}
	return nil
}

func buildSegmentIndex(shape Shape) *spatial.SegmentIndex {
	segs := make([]spatial.Segment, 0, len(shape.Points))
	for i := 0; i+1 < len(shape.Points); i++ {
		a, b := shape.Points[i], shape.Points[i+1]
		segs = append(segs, spatial.Segment{
			Index:  i,
			AX:     a.Lon, AY: a.Lat,
			BX:     b.Lon, BY: b.Lat,
		})
	}
	if len(segs) == 0 && len(shape.Points) == 1 {
		p := shape.Points[0]
		segs = append(segs, spatial.Segment{Index: 0, AX: p.Lon, AY: p.Lat, BX: p.Lon, BY: p.Lat})
	}
	return spatial.NewSegmentIndex(segs)
}
