package gtfsmodel

import (
	"encoding/binary"
	"fmt"
	"strconv"
)

// RouteMode is a tagged variant over GTFS route_type, preserving
// unrecognized values via Other so that re-serializing a feed never
// silently drops information.
type RouteMode struct {
	kind  routeModeKind
	other int
}

type routeModeKind uint8

const (
	ModeBus routeModeKind = iota
	ModeTram
	ModeSubway
	ModeRail
	ModeFerry
	ModeCableTram
	ModeGondola
	ModeFunicular
	ModeCoach
	ModeAir
	ModeTaxi
	ModeOther
)

var standardRouteTypes = map[int]routeModeKind{
	0:  ModeTram,
	1:  ModeSubway,
	2:  ModeRail,
	3:  ModeBus,
	4:  ModeFerry,
	5:  ModeCableTram,
	6:  ModeGondola,
	7:  ModeFunicular,
	11: ModeTram,
	12: ModeRail,
	200: ModeCoach,
	1100: ModeAir,
	1500: ModeTaxi,
}

// ParseRouteMode maps a raw GTFS route_type integer to a RouteMode,
// falling back to Other(i) for anything not in the extended route
// type table.
func ParseRouteMode(routeType int) RouteMode {
	if kind, ok := standardRouteTypes[routeType]; ok {
		return RouteMode{kind: kind}
	}
	return RouteMode{kind: ModeOther, other: routeType}
}

func (m RouteMode) String() string {
	switch m.kind {
	case ModeBus:
		return "bus"
	case ModeTram:
		return "tram"
	case ModeSubway:
		return "subway"
	case ModeRail:
		return "rail"
	case ModeFerry:
		return "ferry"
	case ModeCableTram:
		return "cable"
	case ModeGondola:
		return "gondola"
	case ModeFunicular:
		return "funicular"
	case ModeCoach:
		return "coach"
	case ModeAir:
		return "air"
	case ModeTaxi:
		return "taxi"
	default:
		return "other(" + strconv.Itoa(m.other) + ")"
	}
}

func (m RouteMode) IsOther() bool { return m.kind == ModeOther }
func (m RouteMode) OtherValue() int { return m.other }
func (m RouteMode) Kind() uint8 { return uint8(m.kind) }

// GobEncode/GobDecode let RouteMode round-trip through the feed cache
// despite its unexported fields (gob otherwise only sees exported
// struct fields).
func (m RouteMode) GobEncode() ([]byte, error) {
	buf := make([]byte, 9)
	buf[0] = byte(m.kind)
	binary.BigEndian.PutUint64(buf[1:], uint64(int64(m.other)))
	return buf, nil
}

func (m *RouteMode) GobDecode(data []byte) error {
	if len(data) != 9 {
		return fmt.Errorf("gtfsmodel: invalid RouteMode gob encoding (len %d)", len(data))
	}
	m.kind = routeModeKind(data[0])
	m.other = int(int64(binary.BigEndian.Uint64(data[1:])))
	return nil
}

// LocationType mirrors GTFS stops.location_type.
type LocationType uint8

const (
	LocationStop LocationType = iota
	LocationStation
	LocationEntrance
	LocationGenericNode
	LocationBoardingArea
	LocationUnknown
)

func ParseLocationType(raw int) LocationType {
	switch raw {
	case 0:
		return LocationStop
	case 1:
		return LocationStation
	case 2:
		return LocationEntrance
	case 3:
		return LocationGenericNode
	case 4:
		return LocationBoardingArea
	default:
		return LocationUnknown
	}
}

// ExceptionType mirrors calendar_dates.exception_type.
type ExceptionType uint8

const (
	ExceptionAdded ExceptionType = iota + 1
	ExceptionRemoved
)
