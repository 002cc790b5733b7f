// Command time2reachd is the process entry point: it loads configuration,
// ingests each configured city's GTFS feed and road graph, builds the
// engine, and serves the catalog and reach/itinerary HTTP surfaces.
// Adapted from the teacher's backend/main.go (same chi/cors/pgxpool
// wiring), with the RAPTOR loader replaced by the GTFS ingestion and
// engine construction spec.md's engine actually needs.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jamespfennell/gtfs"
	"github.com/rs/cors"

	"github.com/antigravity/time2reach/internal/config"
	"github.com/antigravity/time2reach/internal/engine"
	"github.com/antigravity/time2reach/internal/feedcache"
	"github.com/antigravity/time2reach/internal/georef"
	"github.com/antigravity/time2reach/internal/gtfsmodel"
	"github.com/antigravity/time2reach/internal/handler"
	"github.com/antigravity/time2reach/internal/reach"
	"github.com/antigravity/time2reach/internal/repository"
	"github.com/antigravity/time2reach/internal/roadgraph"
	"github.com/antigravity/time2reach/internal/stopindex"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("unable to create Postgres connection pool", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		logger.Error("unable to connect to catalog database", "err", err)
		os.Exit(1)
	}
	logger.Info("connected to catalog database")

	eng := engine.New(cfg.RoadStructureCacheSize)
	for _, cf := range cfg.Cities {
		data, err := loadCity(cf, logger)
		if err != nil {
			logger.Error("failed to load city", "city", cf.City, "err", err)
			os.Exit(1)
		}
		eng.RegisterCity(cf.City, data)
		logger.Info("registered city", "city", cf.City, "stops", len(data.Model.Stops), "routes", len(data.Model.Routes))
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	catalogRepo := repository.NewCatalogRepository(pool)
	catalogHandler := handler.NewCatalogHandler(catalogRepo)
	engineHandler := handler.NewEngineHandler(eng)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"time2reach"}`))
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			http.Error(w, `{"status":"error","db":"disconnected"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","db":"connected"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/routes", catalogHandler.GetAllRoutes)
		r.Get("/routes/{id}", catalogHandler.GetRouteDetails)
		r.Get("/stops", catalogHandler.GetStops)
		r.Get("/stops/{id}", catalogHandler.GetStopDetails)

		r.Route("/cities/{city}", func(r chi.Router) {
			r.Post("/reach", engineHandler.PostReach)
			r.Post("/itinerary", engineHandler.PostItinerary)
			r.Get("/edge-times/{queryID}", engineHandler.GetEdgeTimes)
		})
	})

	logger.Info("server starting", "addr", cfg.BindAddr)
	if err := http.ListenAndServe(cfg.BindAddr, r); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

// loadCity ingests one city's configured GTFS feed(s) and road graph
// into a reach.CityData, consulting the feed cache before re-parsing
// each raw feed. A city naming several agency feeds (config.CityFeed's
// GTFSPaths) builds each feed under its own base ordinal, sharing one
// Interner so cross-agency references never collide, and merges the
// resulting per-agency Models per spec.md §4.3 step 9. A single feed
// that itself declares multiple agencies (agency.txt) consumes more
// than one ordinal, so the next feed's base is advanced past the
// highest ordinal recorded in the Model that feed produced.
func loadCity(cf config.CityFeed, logger *slog.Logger) (*reach.CityData, error) {
	if len(cf.GTFSPaths) == 0 {
		return nil, fmt.Errorf("time2reachd: city %q declares no GTFS feed", cf.City)
	}

	interner := gtfsmodel.NewInterner()
	var model *gtfsmodel.Model
	var nextOrdinal uint16
	for _, path := range cf.GTFSPaths {
		agencyModel, err := loadAgencyFeed(path, nextOrdinal, interner, logger, cf.City)
		if err != nil {
			return nil, err
		}
		// Each surviving agency-slice recorded its ordinal in Agencies.
		// Only a trailing slice that gtfsmodel.Build dropped for missing
		// arrival_time can have its ordinal handed to the next feed, and
		// a dropped slice contributes no entities.
		for _, a := range agencyModel.Agencies {
			if a.Ordinal >= nextOrdinal {
				nextOrdinal = a.Ordinal + 1
			}
		}
		if model == nil {
			model = agencyModel
		} else {
			model = gtfsmodel.Merge(model, agencyModel)
		}
	}

	center := cityCenter(model)
	proj := georef.New(center.Lon, center.Lat)

	roadFile, err := os.Open(cf.RoadGraphPath)
	if err != nil {
		return nil, err
	}
	defer roadFile.Close()

	graph, err := roadgraph.Load(roadFile, proj)
	if err != nil {
		return nil, err
	}

	idx := stopindex.Build(model, proj.Project)

	return &reach.CityData{
		Model:     model,
		StopIndex: idx,
		RoadGraph: graph,
		Projector: proj,
	}, nil
}

// loadAgencyFeed parses and normalizes a single agency's GTFS feed,
// consulting the feed cache (keyed on the raw feed bytes' fingerprint)
// before re-running the full normalization pipeline.
func loadAgencyFeed(path string, ordinal uint16, interner *gtfsmodel.Interner, logger *slog.Logger, city gtfsmodel.City) (*gtfsmodel.Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	fingerprint := feedcache.Fingerprint(raw)
	dir := feedcache.Dir()

	model, err := feedcache.Load(dir, fingerprint)
	if err != nil {
		logger.Warn("feed cache miss, parsing raw feed", "city", city, "path", path, "err", err)
	}
	if model != nil {
		return model, nil
	}

	static, err := gtfs.ParseStatic(raw, gtfs.ParseStaticOptions{})
	if err != nil {
		return nil, err
	}

	model, _, err = gtfsmodel.Build(static, gtfsmodel.BuildOptions{BaseAgencyOrdinal: ordinal, Interner: interner})
	if err != nil {
		return nil, err
	}

	if cachedPath, err := feedcache.Save(dir, fingerprint, model); err != nil {
		logger.Warn("failed to persist feed cache", "city", city, "path", path, "err", err)
	} else {
		logger.Info("wrote feed cache", "city", city, "path", cachedPath)
	}

	return model, nil
}

// cityCenter picks an arbitrary stop's coordinates to center the
// AEQD projection on; any stop within the city works since the
// projection's distance error grows with distance from center, not
// with the choice of center itself.
func cityCenter(model *gtfsmodel.Model) struct{ Lat, Lon float64 } {
	for _, s := range model.Stops {
		return struct{ Lat, Lon float64 }{Lat: s.Lat, Lon: s.Lon}
	}
	return struct{ Lat, Lon float64 }{}
}
