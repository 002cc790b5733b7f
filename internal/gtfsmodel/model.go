package gtfsmodel

import "github.com/antigravity/time2reach/internal/clock"

// Stop is a normalized, agency-tagged transit stop. Stops lacking
// coordinates are dropped before indexing (see Build).
type Stop struct {
	ID            ID
	Name          string
	Lat, Lon      float64
	Location      LocationType
	ParentStation *ID
}

// Route is a normalized, agency-tagged transit route.
type Route struct {
	ID         ID
	ShortName  string
	LongName   string
	Mode       RouteMode
	Color      string // six hex digits, no leading '#'
	TextColor  string
}

// Shape is a trip's ordered polyline in (lon, lat).
type Shape struct {
	ID     ID
	Points []ShapePoint
}

type ShapePoint struct {
	Lon, Lat float64
	Sequence int
}

// StopTime is one scheduled visit of a trip to a stop.
type StopTime struct {
	TripID      ID
	StopID      ID
	StopSeq     int // monotone, not necessarily dense
	Arrival     *clock.Seconds // nil means interpolated, not boardable
	IndexInTrip int
	ShapeIndex  float64 // integer part = segment index, fraction = position on it
}

// Trip is a scheduled vehicle run.
type Trip struct {
	ID         ID
	ServiceID  ID
	RouteID    ID
	ShapeID    ID // zero ID until assigned/synthesized
	Outbound   bool // true = Outbound direction, false = Inbound
	Headsign   string
	StopTimes  []StopTime
}

// Service is a weekly calendar pattern plus add/remove exceptions.
type Service struct {
	ID ID
	// WeekBits[0] = Monday ... WeekBits[6] = Sunday, matching GTFS
	// calendar.txt column order.
	WeekBits   [7]bool
	HasWeekly  bool
	Exceptions map[int]ExceptionType // YYYYMMDD -> exception, last-seen wins
}

// Model is the fully normalized, agency-merged feed aggregate built
// by Build (spec.md's Gtfs1 aggregate).
type Model struct {
	Stops    map[ID]Stop
	Routes   map[ID]Route
	Trips    map[ID]Trip
	Shapes   map[ID]Shape
	Services map[ID]Service

	// Agencies lists the ordinal assigned to each loaded agency, in
	// load order, so callers can build an agency filter set.
	Agencies []AgencyTag
}

type AgencyTag struct {
	Ordinal uint16
	Name    string
}
