package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/ngmaloney/bite-terminal/internal/astro"
	"github.com/ngmaloney/bite-terminal/internal/config"
	"github.com/ngmaloney/bite-terminal/internal/forecast"
	"github.com/ngmaloney/bite-terminal/internal/geocoding"
	"github.com/ngmaloney/bite-terminal/internal/history"
	"github.com/ngmaloney/bite-terminal/internal/logger"
	"github.com/ngmaloney/bite-terminal/internal/scoring"
	"github.com/ngmaloney/bite-terminal/internal/search"
	"github.com/ngmaloney/bite-terminal/internal/species"
	"github.com/ngmaloney/bite-terminal/internal/ui"
)

func main() {
	os.Exit(run())
}

func run() int {
	location := flag.String("location", "", "Place to search on startup (e.g. Warsaw)")
	speciesName := flag.String("species", "", "Target species (see --list-species)")
	printOnly := flag.Bool("print", false, "Print the forecast for --location and exit")
	listSpecies := flag.Bool("list-species", false, "List the known species and exit")
	flag.Parse()

	registry := species.Default()

	if *listSpecies {
		ui.PrintSpecies(os.Stdout, registry)
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		return 1
	}
	if *speciesName == "" {
		*speciesName = cfg.DefaultSpecies
	}
	if _, err := registry.Lookup(*speciesName); err != nil {
		fmt.Printf("Error: %v (use --list-species)\n", err)
		return 1
	}
	if *printOnly && *location == "" {
		fmt.Println("Error: --print requires --location.")
		return 1
	}

	var logOut io.Writer = io.Discard
	if f, err := logger.OpenFile(cfg.LogFile()); err == nil {
		defer f.Close()
		logOut = f
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Output: logOut})

	store, err := history.Open(cfg.HistoryBackend, cfg.DataDir, log)
	if err != nil {
		// Scoring still works without a catch log; saving is disabled
		log.Error().Err(err).Str("backend", cfg.HistoryBackend).Msg("catch history unavailable")
	} else {
		defer store.Close()
	}

	pipeline := newPipeline(cfg, registry, store, log)

	if *printOnly {
		return printForecast(pipeline, *location, *speciesName)
	}

	opts := ui.Options{
		Pipeline: pipeline,
		Registry: registry,
		Species:  *speciesName,
		Location: *location,
		Log:      log,
	}
	if store != nil {
		opts.Store = store
	}

	p := tea.NewProgram(ui.NewModel(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Error().Err(err).Msg("terminal ui stopped")
		fmt.Printf("Error running application: %v\n", err)
		return 1
	}
	return 0
}

func newPipeline(cfg *config.Config, registry *species.Registry, store history.Store, log zerolog.Logger) *search.Pipeline {
	var hist scoring.HistoryQuery
	if store != nil {
		hist = store
	}

	return search.NewPipeline(
		search.Config{
			Hours:          cfg.Hours,
			GeoTimeout:     cfg.GeoTimeout,
			WeatherTimeout: cfg.WeatherTimeout,
		},
		registry,
		geocoding.NewClient(cfg.GeocodingURL, cfg.Language),
		forecast.NewClient(cfg.ForecastURL),
		scoring.NewEngine(astro.NewProvider()),
		hist,
		log,
	)
}

// printForecast runs one search and writes it to stdout, returning the exit code
func printForecast(p *search.Pipeline, place, speciesName string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	batch, err := p.Run(ctx, search.Request{Place: place, Species: speciesName})
	if err != nil {
		ui.PrintUnavailable(os.Stdout, place, err)
		return 1
	}
	if err := ui.PrintBatch(os.Stdout, batch); err != nil {
		return 1
	}
	return 0
}
