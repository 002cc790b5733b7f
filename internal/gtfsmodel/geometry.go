package gtfsmodel

// SliceShape returns the portion of shape's polyline spanning
// [fromIndex, toIndex], where both are shape_index values (integer
// part = segment index, fractional part = position along it) as
// computed by Build's shape_index pass. The endpoints are linearly
// interpolated so a leg's geometry starts and ends exactly at its
// boarding and exit stops, matching the shape-synthesizer note of
// spec.md §9: a trip without a real shape gets a straight-line
// polyline through its stops, so slices of it are exact only at stop
// boundaries and linear in between.
func SliceShape(shape Shape, fromIndex, toIndex float64) []ShapePoint {
	if len(shape.Points) == 0 || toIndex < fromIndex {
		return nil
	}

	out := []ShapePoint{interpolateShape(shape, fromIndex)}

	fromSeg := int(fromIndex)
	toSeg := int(toIndex)
	for seg := fromSeg + 1; seg <= toSeg && seg < len(shape.Points); seg++ {
		out = append(out, shape.Points[seg])
	}

	if toIndex > float64(toSeg) || toSeg >= len(shape.Points) {
		out = append(out, interpolateShape(shape, toIndex))
	}

	return out
}

// interpolateShape evaluates shape's polyline at a fractional
// shape_index, clamping to the polyline's endpoints.
func interpolateShape(shape Shape, index float64) ShapePoint {
	n := len(shape.Points)
	if n == 0 {
		return ShapePoint{}
	}
	if index <= 0 {
		return shape.Points[0]
	}
	if last := float64(n - 1); index >= last {
		return shape.Points[n-1]
	}

	seg := int(index)
	frac := index - float64(seg)
	a := shape.Points[seg]
	b := shape.Points[seg+1]
	return ShapePoint{
		Lon:      a.Lon + frac*(b.Lon-a.Lon),
		Lat:      a.Lat + frac*(b.Lat-a.Lat),
		Sequence: a.Sequence,
	}
}
