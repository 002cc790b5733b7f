// Package repository is the catalog layer's Postgres access, adapted
// from the teacher's internal/repository/line_repo.go: same pgxpool
// usage and query shapes, re-pointed at a GTFS-derived stops/routes
// schema instead of the teacher's Moroccan lines/stops/schedules
// tables. This mirrors the normalized feed into Postgres purely for
// fast paginated/viewport browsing; the routing engine itself never
// queries this database and runs entirely against the in-memory
// gtfsmodel.Model (internal/reach.CityData).
package repository

import (
	"context"
	"errors"

	"github.com/antigravity/time2reach/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogRepository answers browsing queries over the stops and routes
// Postgres mirrors of a loaded GTFS feed.
type CatalogRepository struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) GetAllRoutes(ctx context.Context) ([]models.Route, error) {
	rows, err := r.db.Query(ctx, `
		SELECT r.id, r.agency_ordinal, r.short_name, r.long_name, r.mode,
		       COALESCE(r.color, '000000'), COALESCE(r.text_color, 'FFFFFF'),
		       (SELECT COUNT(*) FROM route_stops WHERE route_id = r.id) AS stop_count
		FROM routes r
		ORDER BY r.mode, r.short_name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []models.Route
	for rows.Next() {
		var rt models.Route
		if err := rows.Scan(&rt.ID, &rt.AgencyOrdinal, &rt.ShortName, &rt.LongName, &rt.Mode, &rt.Color, &rt.TextColor, &rt.StopCount); err != nil {
			return nil, err
		}
		routes = append(routes, rt)
	}
	return routes, rows.Err()
}

func (r *CatalogRepository) GetRouteDetails(ctx context.Context, routeID string) (*models.Route, []models.Stop, error) {
	var rt models.Route
	err := r.db.QueryRow(ctx, `
		SELECT id, agency_ordinal, short_name, long_name, mode,
		       COALESCE(color, '000000'), COALESCE(text_color, 'FFFFFF')
		FROM routes WHERE id = $1
	`, routeID).Scan(&rt.ID, &rt.AgencyOrdinal, &rt.ShortName, &rt.LongName, &rt.Mode, &rt.Color, &rt.TextColor)
	if err != nil {
		return nil, nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT s.id, s.agency_ordinal, s.name, ST_X(s.location::geometry), ST_Y(s.location::geometry), s.location_type
		FROM stops s
		JOIN route_stops rs ON rs.stop_id = s.id
		WHERE rs.route_id = $1
		ORDER BY rs.stop_sequence ASC
	`, routeID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var stops []models.Stop
	for rows.Next() {
		var s models.Stop
		if err := rows.Scan(&s.ID, &s.AgencyOrdinal, &s.Name, &s.Lon, &s.Lat, &s.LocationType); err != nil {
			return nil, nil, err
		}
		stops = append(stops, s)
	}
	return &rt, stops, rows.Err()
}

func (r *CatalogRepository) GetStopsInViewport(ctx context.Context, minLat, minLon, maxLat, maxLon float64) ([]models.Stop, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, agency_ordinal, name, ST_X(location::geometry), ST_Y(location::geometry), location_type
		FROM stops
		WHERE location && ST_MakeEnvelope($1, $2, $3, $4, 4326)::geography
		LIMIT 500
	`, minLon, minLat, maxLon, maxLat)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stops []models.Stop
	for rows.Next() {
		var s models.Stop
		if err := rows.Scan(&s.ID, &s.AgencyOrdinal, &s.Name, &s.Lon, &s.Lat, &s.LocationType); err != nil {
			return nil, err
		}
		stops = append(stops, s)
	}
	return stops, rows.Err()
}

func (r *CatalogRepository) GetStopDetails(ctx context.Context, stopID string) (*models.Stop, []models.Route, error) {
	var s models.Stop
	err := r.db.QueryRow(ctx, `
		SELECT id, agency_ordinal, name, ST_X(location::geometry), ST_Y(location::geometry), location_type
		FROM stops WHERE id = $1
	`, stopID).Scan(&s.ID, &s.AgencyOrdinal, &s.Name, &s.Lon, &s.Lat, &s.LocationType)
	if err != nil {
		return nil, nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT r.id, r.agency_ordinal, r.short_name, r.long_name, r.mode,
		       COALESCE(r.color, '000000'), COALESCE(r.text_color, 'FFFFFF')
		FROM routes r
		JOIN route_stops rs ON rs.route_id = r.id
		WHERE rs.stop_id = $1
		ORDER BY r.short_name ASC
	`, stopID)
	if err != nil {
		return &s, nil, err
	}
	defer rows.Close()

	var routes []models.Route
	for rows.Next() {
		var rt models.Route
		if err := rows.Scan(&rt.ID, &rt.AgencyOrdinal, &rt.ShortName, &rt.LongName, &rt.Mode, &rt.Color, &rt.TextColor); err != nil {
			return &s, nil, err
		}
		routes = append(routes, rt)
	}
	return &s, routes, rows.Err()
}

func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
