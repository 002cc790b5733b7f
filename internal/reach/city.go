package reach

import (
	"github.com/antigravity/time2reach/internal/georef"
	"github.com/antigravity/time2reach/internal/gtfsmodel"
	"github.com/antigravity/time2reach/internal/roadgraph"
	"github.com/antigravity/time2reach/internal/stopindex"
)

// CityData bundles everything built once per city at startup and
// shared read-only across every concurrent query: the GTFS model, the
// stop index, the road graph, and the projector for that city.
type CityData struct {
	Model     *gtfsmodel.Model
	StopIndex *stopindex.Index
	RoadGraph *roadgraph.Graph
	Projector *georef.Projector
}

// Project resolves a (lat, lon) point through the city's projector.
func (c *CityData) Project(lat, lon float64) (x, y float64) {
	return c.Projector.Project(lon, lat)
}
