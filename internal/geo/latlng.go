// Package geo holds the tiny coordinate type shared across the
// engine's external boundary so that georef, reach, and itinerary
// don't need to import one another just to pass a point around.
package geo

type LatLng struct {
	Lat, Lon float64
}
