// Package search runs one fetch-and-score pass for a place and species
package search

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ngmaloney/bite-terminal/internal/forecast"
	"github.com/ngmaloney/bite-terminal/internal/geocoding"
	"github.com/ngmaloney/bite-terminal/internal/models"
	"github.com/ngmaloney/bite-terminal/internal/scoring"
	"github.com/ngmaloney/bite-terminal/internal/species"
)

// DefaultHours is the number of hours scored per search
const DefaultHours = 24

// Clock returns the current time
type Clock func() time.Time

// Request describes one search. Species is passed explicitly so a change of
// selection never affects a search already in flight.
type Request struct {
	Place      string
	Species    string
	Generation uint64
}

// Batch is the complete result of one search
type Batch struct {
	ID         string
	Generation uint64
	Location   models.Location
	Species    string
	Results    []models.ScoreResult // ascending by timestamp
}

// Generations hands out search generation ids
type Generations struct {
	current atomic.Uint64
}

// Next starts a new generation, superseding all earlier ones
func (g *Generations) Next() uint64 {
	return g.current.Add(1)
}

// Current returns the latest generation handed out
func (g *Generations) Current() uint64 {
	return g.current.Load()
}

// IsCurrent reports whether gen is still the latest search
func (g *Generations) IsCurrent(gen uint64) bool {
	return g.current.Load() == gen
}

// Config bounds a pipeline run
type Config struct {
	Hours          int
	GeoTimeout     time.Duration
	WeatherTimeout time.Duration
}

// Pipeline geocodes a place, fetches its weather and scores the coming hours
type Pipeline struct {
	cfg      Config
	registry *species.Registry
	geo      geocoding.Resolver
	weather  forecast.Provider
	engine   *scoring.Engine
	history  scoring.HistoryQuery
	clock    Clock
	log      zerolog.Logger
}

// NewPipeline wires a pipeline. history may be nil.
func NewPipeline(cfg Config, registry *species.Registry, geo geocoding.Resolver, weather forecast.Provider,
	engine *scoring.Engine, history scoring.HistoryQuery, log zerolog.Logger) *Pipeline {
	if cfg.Hours <= 0 {
		cfg.Hours = DefaultHours
	}
	if cfg.GeoTimeout <= 0 {
		cfg.GeoTimeout = 10 * time.Second
	}
	if cfg.WeatherTimeout <= 0 {
		cfg.WeatherTimeout = 30 * time.Second
	}
	return &Pipeline{
		cfg:      cfg,
		registry: registry,
		geo:      geo,
		weather:  weather,
		engine:   engine,
		history:  history,
		clock:    time.Now,
		log:      log.With().Str("component", "search").Logger(),
	}
}

// SetClock replaces the time source used to pick the first scored hour
func (p *Pipeline) SetClock(c Clock) {
	p.clock = c
}

// Run executes req. Failures are returned as *FetchError except for an
// unknown species, which wraps species.ErrUnknownSpecies.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Batch, error) {
	id := uuid.NewString()
	log := p.log.With().
		Str("search_id", id).
		Uint64("generation", req.Generation).
		Str("place", req.Place).
		Str("species", req.Species).
		Logger()
	started := time.Now()

	profile, err := p.registry.Lookup(req.Species)
	if err != nil {
		log.Warn().Err(err).Msg("search rejected")
		return nil, err
	}

	loc, err := p.resolve(ctx, req.Place)
	if err != nil {
		log.Warn().Err(err).Msg("geocoding failed")
		return nil, err
	}
	log.Debug().Str("location", loc.Name).Float64("lat", loc.Latitude).Float64("lon", loc.Longitude).Msg("resolved")

	series, err := p.fetch(ctx, loc)
	if err != nil {
		log.Warn().Err(err).Msg("weather fetch failed")
		return nil, err
	}

	results, err := p.score(ctx, series, *loc, profile)
	if err != nil {
		log.Error().Err(err).Msg("scoring failed")
		return nil, err
	}

	log.Info().
		Str("location", loc.Name).
		Int("hours", len(results)).
		Dur("took", time.Since(started)).
		Msg("search complete")

	return &Batch{
		ID:         id,
		Generation: req.Generation,
		Location:   *loc,
		Species:    profile.Name,
		Results:    results,
	}, nil
}

func (p *Pipeline) resolve(ctx context.Context, place string) (*models.Location, error) {
	geoCtx, cancel := context.WithTimeout(ctx, p.cfg.GeoTimeout)
	defer cancel()

	loc, err := p.geo.Resolve(geoCtx, place)
	if err != nil {
		return nil, classify(StageGeocode, geoCtx, err)
	}
	return loc, nil
}

func (p *Pipeline) fetch(ctx context.Context, loc *models.Location) (*models.HourlySeries, error) {
	weatherCtx, cancel := context.WithTimeout(ctx, p.cfg.WeatherTimeout)
	defer cancel()

	series, err := p.weather.Hourly(weatherCtx, loc.Latitude, loc.Longitude)
	if err != nil {
		return nil, classify(StageWeather, weatherCtx, err)
	}
	if err := series.Validate(); err != nil {
		return nil, &FetchError{Stage: StageWeather, Kind: KindMalformed, Err: err}
	}
	return series, nil
}

// score analyzes up to Hours indices starting at the current hour. Each
// index writes only its own slot, so results keep series order.
func (p *Pipeline) score(ctx context.Context, series *models.HourlySeries, loc models.Location, profile models.SpeciesProfile) ([]models.ScoreResult, error) {
	hist := p.snapshot(profile.Name)

	start := series.IndexOf(p.clock())
	if start < 0 {
		start = 0
	}
	end := min(start+p.cfg.Hours, series.Len())

	results := make([]models.ScoreResult, end-start)
	g, gctx := errgroup.WithContext(ctx)
	for i := start; i < end; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := p.engine.Analyze(series, i, loc, profile, hist)
			if err != nil {
				return fmt.Errorf("hour %d: %w", i, err)
			}
			results[i-start] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, &FetchError{Stage: StageScore, Kind: KindUnavailable, Err: ctx.Err()}
		}
		return nil, &FetchError{Stage: StageScore, Kind: KindMalformed, Err: err}
	}
	return results, nil
}

func (p *Pipeline) snapshot(speciesName string) scoring.FixedHistory {
	if p.history == nil {
		return scoring.FixedHistory{Species: speciesName}
	}
	arrow, ok := p.history.TopWindDirection(speciesName)
	return scoring.FixedHistory{Species: speciesName, Arrow: arrow, OK: ok}
}
