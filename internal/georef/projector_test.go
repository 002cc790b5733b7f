package georef

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProject_CenterIsOrigin(t *testing.T) {
	p := New(-73.5673, 45.5017) // Montreal
	x, y := p.Project(-73.5673, 45.5017)
	assert.InDelta(t, 0, x, 1e-6)
	assert.InDelta(t, 0, y, 1e-6)
}

func TestProjectInverse_RoundTrip(t *testing.T) {
	p := New(-73.5673, 45.5017)
	lon, lat := -73.6, 45.52

	x, y := p.Project(lon, lat)
	gotLon, gotLat := p.Inverse(x, y)

	assert.InDelta(t, lon, gotLon, 1e-6)
	assert.InDelta(t, lat, gotLat, 1e-6)
}

func TestProject_DistanceApproximatesGreatCircle(t *testing.T) {
	p := New(0, 0)
	// 0.01 degrees of latitude is about 1111 m.
	x, y := p.Project(0, 0.01)
	assert.InDelta(t, 0, x, 1)
	assert.InDelta(t, 1111, y, 5)
}

func TestCache_ReturnsSameInstanceForRoundedCenter(t *testing.T) {
	c := NewCache()
	a := c.Get(-73.567311, 45.501711)
	b := c.Get(-73.567314, 45.501714) // rounds to the same 1e-5 bucket
	assert.Same(t, a, b)
}

func TestCache_DistinctCentersGetDistinctInstances(t *testing.T) {
	c := NewCache()
	a := c.Get(-73.5673, 45.5017)
	b := c.Get(2.3522, 48.8566) // Paris
	assert.NotSame(t, a, b)
}
