package roadgraph

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/antigravity/time2reach/internal/georef"
)

// rawNode/rawEdge mirror the two-layer geospatial container spec.md
// §6 describes (nodes: osmid + point geometry; edges: from/to/length
// + line geometry), flattened to the JSON interchange format this
// ingestion point actually reads. The real geospatial container
// reader (GDAL/OGR over a GeoPackage in the original engine) is the
// out-of-scope external collaborator named in spec.md §1; this is the
// boundary the engine consumes from it.
type rawNode struct {
	OSMID int64   `json:"osmid"`
	Lon   float64 `json:"lon"`
	Lat   float64 `json:"lat"`
}

type rawEdge struct {
	From   int64   `json:"from"`
	To     int64   `json:"to"`
	Length float64 `json:"length"`
}

type rawGraph struct {
	Nodes []rawNode `json:"nodes"`
	Edges []rawEdge `json:"edges"`
}

// Load reads the JSON road-graph interchange format from r and
// reprojects every node into the city's local planar frame using proj.
func Load(r io.Reader, proj *georef.Projector) (*Graph, error) {
	var raw rawGraph
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("roadgraph: decode: %w", err)
	}

	g := New()
	seen := make(map[int64]bool, len(raw.Nodes))
	for _, n := range raw.Nodes {
		x, y := proj.Project(n.Lon, n.Lat)
		g.AddNode(Node{ID: NodeID(n.OSMID), X: x, Y: y})
		seen[n.OSMID] = true
	}

	for i, e := range raw.Edges {
		if !seen[e.From] || !seen[e.To] {
			continue
		}
		g.AddEdge(Edge{ID: EdgeID(i), From: NodeID(e.From), To: NodeID(e.To), Length: e.Length})
	}

	return g, nil
}
