package gtfsmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func straightShape() Shape {
	return Shape{
		Points: []ShapePoint{
			{Lon: 0, Lat: 0, Sequence: 0},
			{Lon: 1, Lat: 0, Sequence: 1},
			{Lon: 2, Lat: 0, Sequence: 2},
			{Lon: 3, Lat: 0, Sequence: 3},
		},
	}
}

func TestSliceShape_WholeSpan(t *testing.T) {
	out := SliceShape(straightShape(), 0, 3)
	assert.Equal(t, []ShapePoint{
		{Lon: 0, Lat: 0, Sequence: 0},
		{Lon: 1, Lat: 0, Sequence: 1},
		{Lon: 2, Lat: 0, Sequence: 2},
		{Lon: 3, Lat: 0, Sequence: 3},
	}, out)
}

func TestSliceShape_FractionalEndpoints(t *testing.T) {
	out := SliceShape(straightShape(), 0.5, 2.25)
	assert.Len(t, out, 4)
	assert.InDelta(t, 0.5, out[0].Lon, 1e-9)
	assert.Equal(t, ShapePoint{Lon: 1, Lat: 0, Sequence: 1}, out[1])
	assert.Equal(t, ShapePoint{Lon: 2, Lat: 0, Sequence: 2}, out[2])
	assert.InDelta(t, 2.25, out[3].Lon, 1e-9)
}

func TestSliceShape_WithinSingleSegment(t *testing.T) {
	out := SliceShape(straightShape(), 0.25, 0.75)
	assert.Len(t, out, 2)
	assert.InDelta(t, 0.25, out[0].Lon, 1e-9)
	assert.InDelta(t, 0.75, out[1].Lon, 1e-9)
}

func TestSliceShape_EmptyShape(t *testing.T) {
	out := SliceShape(Shape{}, 0, 1)
	assert.Nil(t, out)
}

func TestSliceShape_InvertedRange(t *testing.T) {
	out := SliceShape(straightShape(), 2, 1)
	assert.Nil(t, out)
}

func TestInterpolateShape_ClampsToEndpoints(t *testing.T) {
	s := straightShape()
	assert.Equal(t, s.Points[0], interpolateShape(s, -1))
	assert.Equal(t, s.Points[len(s.Points)-1], interpolateShape(s, 100))
}
