package spatial

import "math"

// Segment is one edge of a shape's polyline, in (lon, lat) degrees —
// the same unprojected frame the GTFS shapes.txt format uses, since
// shape_index only ever needs relative distances within one polyline.
type Segment struct {
	Index  int
	AX, AY float64
	BX, BY float64
}

// SegmentIndex answers nearest-segment queries against one shape's
// polyline via an R-tree keyed by segment midpoint, used to compute
// shape_index per spec.md §4.3 step (8).
type SegmentIndex struct {
	segments []Segment
	midpoints *PointIndex[Segment]
}

func NewSegmentIndex(segments []Segment) *SegmentIndex {
	idx := &SegmentIndex{segments: segments, midpoints: NewPointIndex[Segment]()}
	for _, s := range segments {
		idx.midpoints.Insert((s.AX+s.BX)/2, (s.AY+s.BY)/2, s)
	}
	return idx
}

// NearestSegmentFraction returns k+f where k is the nearest segment's
// index and f in [0,1] is the fractional position of (x, y)'s
// projection onto that segment (clamped, so a point past a segment's
// end gives f = 1).
func (idx *SegmentIndex) NearestSegmentFraction(x, y float64) float64 {
	if len(idx.segments) == 0 {
		return 0
	}

	k := len(idx.segments)
	if k > 8 {
		k = 8
	}
	candidates := idx.midpoints.Nearest(x, y, k)

	bestIdx := idx.segments[0].Index
	bestFrac := 0.0
	bestDist := math.MaxFloat64

	for _, c := range candidates {
		frac, d := projectOntoSegment(x, y, c.Data)
		if d < bestDist {
			bestDist = d
			bestFrac = frac
			bestIdx = c.Data.Index
		}
	}

	return float64(bestIdx) + bestFrac
}

// metersPerDegreeLat approximates the WGS84 meridian arc length per
// degree of latitude, used only to decide whether a segment is
// degenerate — not precise enough for distance ranking, which is why
// projectOntoSegment still ranks candidates in raw degree-squared
// units and reserves this conversion for the threshold check alone.
const metersPerDegreeLat = 111320.0

// segmentLengthMeters approximates segment s's length in meters via
// an equirectangular projection local to its own latitude, matching
// the small-distance approximation georef's AEQD projector would give
// for a polyline segment at this scale.
func segmentLengthMeters(s Segment) float64 {
	metersPerDegreeLon := metersPerDegreeLat * math.Cos(s.AY*math.Pi/180)
	dx := (s.BX - s.AX) * metersPerDegreeLon
	dy := (s.BY - s.AY) * metersPerDegreeLat
	return math.Sqrt(dx*dx + dy*dy)
}

// projectOntoSegment returns the fractional position of (x,y)'s
// orthogonal projection onto segment s (clamped to [0,1]) and the
// squared distance from (x,y) to that projection, in raw degree-squared
// units. Segments shorter than 1e-6 meters project to fraction 0,
// matching spec.md's degenerate-segment rule; the threshold is
// evaluated in meters since a degree of longitude and a degree of
// latitude are not comparable distances.
func projectOntoSegment(x, y float64, s Segment) (frac float64, distSq float64) {
	dx, dy := s.BX-s.AX, s.BY-s.AY
	if segmentLengthMeters(s) < 1e-6 {
		ddx, ddy := x-s.AX, y-s.AY
		return 0, ddx*ddx + ddy*ddy
	}

	lenSq := dx*dx + dy*dy
	t := ((x-s.AX)*dx + (y-s.AY)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	px, py := s.AX+t*dx, s.AY+t*dy
	ddx, ddy := x-px, y-py
	return t, ddx*ddx + ddy*ddy
}
