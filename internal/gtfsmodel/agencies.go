package gtfsmodel

// City names a metropolitan area the engine can be configured to
// serve; one Model, one road graph, and one Projector cache exist per
// City. The city -> agency feed path mapping itself lives in
// internal/config.CityFeed, populated from configuration at process
// startup rather than hardcoded.
type City string
