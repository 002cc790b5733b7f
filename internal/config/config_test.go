package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antigravity/time2reach/internal/gtfsmodel"
)

func TestParseCities_SingleAgency(t *testing.T) {
	cities, err := parseCities("montreal=gtfs.zip:roadgraph.json")
	require.NoError(t, err)
	require.Len(t, cities, 1)

	assert.Equal(t, gtfsmodel.City("montreal"), cities[0].City)
	assert.Equal(t, []string{"gtfs.zip"}, cities[0].GTFSPaths)
	assert.Equal(t, "roadgraph.json", cities[0].RoadGraphPath)
}

func TestParseCities_MultipleAgenciesOneCity(t *testing.T) {
	cities, err := parseCities("metro=agency1.zip+agency2.zip:roadgraph.json")
	require.NoError(t, err)
	require.Len(t, cities, 1)
	assert.Equal(t, []string{"agency1.zip", "agency2.zip"}, cities[0].GTFSPaths)
}

func TestParseCities_MultipleCities(t *testing.T) {
	cities, err := parseCities("a=a.zip:a.json,b=b.zip:b.json")
	require.NoError(t, err)
	require.Len(t, cities, 2)
	assert.Equal(t, gtfsmodel.City("a"), cities[0].City)
	assert.Equal(t, gtfsmodel.City("b"), cities[1].City)
}

func TestParseCities_Empty(t *testing.T) {
	cities, err := parseCities("")
	require.NoError(t, err)
	assert.Nil(t, cities)
}

func TestParseCities_MalformedEntry(t *testing.T) {
	_, err := parseCities("no-equals-sign")
	assert.Error(t, err)
}

func TestParseCities_MissingRoadGraphPath(t *testing.T) {
	_, err := parseCities("city=gtfs.zip")
	assert.Error(t, err)
}
