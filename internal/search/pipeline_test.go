package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngmaloney/bite-terminal/internal/forecast"
	"github.com/ngmaloney/bite-terminal/internal/geocoding"
	"github.com/ngmaloney/bite-terminal/internal/models"
	"github.com/ngmaloney/bite-terminal/internal/scoring"
	"github.com/ngmaloney/bite-terminal/internal/species"
)

type resolverFunc func(ctx context.Context, name string) (*models.Location, error)

func (f resolverFunc) Resolve(ctx context.Context, name string) (*models.Location, error) {
	return f(ctx, name)
}

type providerFunc func(ctx context.Context, lat, lon float64) (*models.HourlySeries, error)

func (f providerFunc) Hourly(ctx context.Context, lat, lon float64) (*models.HourlySeries, error) {
	return f(ctx, lat, lon)
}

type fixedSolar float64

func (f fixedSolar) Altitude(lat, lon float64, t time.Time) (float64, error) {
	return float64(f), nil
}

type countingHistory struct {
	mu    sync.Mutex
	calls int
	arrow models.WindArrow
}

func (h *countingHistory) TopWindDirection(string) (models.WindArrow, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	return h.arrow, h.arrow != ""
}

var seriesStart = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func testSeries(n int) *models.HourlySeries {
	s := &models.HourlySeries{}
	for i := 0; i < n; i++ {
		s.Time = append(s.Time, seriesStart.Add(time.Duration(i)*time.Hour).Format(models.TimeLayout))
		s.Temperature2m = append(s.Temperature2m, 12+float64(i%5))
		s.SurfacePressure = append(s.SurfacePressure, 1012-float64(i)*0.1)
		s.Rain = append(s.Rain, 0)
		s.WindSpeed10m = append(s.WindSpeed10m, 8)
		s.WindDirection10m = append(s.WindDirection10m, 180)
		s.CloudCover = append(s.CloudCover, 50)
	}
	return s
}

func warsaw(ctx context.Context, name string) (*models.Location, error) {
	return &models.Location{Name: "Warsaw", Latitude: 52.23, Longitude: 21.01}, nil
}

func newTestPipeline(geo geocoding.Resolver, weather forecast.Provider, hist scoring.HistoryQuery) *Pipeline {
	p := NewPipeline(Config{Hours: 24, GeoTimeout: time.Second, WeatherTimeout: time.Second},
		species.Default(), geo, weather, scoring.NewEngine(fixedSolar(20)), hist, zerolog.Nop())
	p.SetClock(func() time.Time { return seriesStart.Add(72*time.Hour + 25*time.Minute) })
	return p
}

func TestRun_ScoresFromCurrentHour(t *testing.T) {
	weather := providerFunc(func(ctx context.Context, lat, lon float64) (*models.HourlySeries, error) {
		assert.Equal(t, 52.23, lat)
		return testSeries(120), nil
	})

	p := newTestPipeline(resolverFunc(warsaw), weather, nil)
	batch, err := p.Run(context.Background(), Request{Place: "Warsaw", Species: "pike", Generation: 7})
	require.NoError(t, err)

	assert.Equal(t, uint64(7), batch.Generation)
	assert.Equal(t, "Pike", batch.Species)
	assert.Equal(t, "Warsaw", batch.Location.Name)
	assert.NotEmpty(t, batch.ID)
	require.Len(t, batch.Results, 24)

	for i, r := range batch.Results {
		assert.Equal(t, 72+i, r.SeriesIdx)
		if i > 0 {
			assert.True(t, r.Timestamp.After(batch.Results[i-1].Timestamp), "results must ascend")
		}
	}
}

func TestRun_MatchesSequentialScoring(t *testing.T) {
	series := testSeries(120)
	weather := providerFunc(func(ctx context.Context, lat, lon float64) (*models.HourlySeries, error) {
		return series, nil
	})

	p := newTestPipeline(resolverFunc(warsaw), weather, nil)
	batch, err := p.Run(context.Background(), Request{Place: "Warsaw", Species: "Carp"})
	require.NoError(t, err)

	engine := scoring.NewEngine(fixedSolar(20))
	profile, err := species.Default().Lookup("Carp")
	require.NoError(t, err)
	for _, r := range batch.Results {
		want, err := engine.Analyze(series, r.SeriesIdx, batch.Location, profile, scoring.FixedHistory{Species: "Carp"})
		require.NoError(t, err)
		assert.Equal(t, want, r)
	}
}

func TestRun_StartFallsBackToFirstIndex(t *testing.T) {
	weather := providerFunc(func(ctx context.Context, lat, lon float64) (*models.HourlySeries, error) {
		return testSeries(10), nil
	})

	p := newTestPipeline(resolverFunc(warsaw), weather, nil)
	p.SetClock(func() time.Time { return seriesStart.AddDate(1, 0, 0) })

	batch, err := p.Run(context.Background(), Request{Place: "Warsaw", Species: "Pike"})
	require.NoError(t, err)
	require.Len(t, batch.Results, 10)
	assert.Equal(t, 0, batch.Results[0].SeriesIdx)
}

func TestRun_HistorySnapshotTakenOnce(t *testing.T) {
	hist := &countingHistory{arrow: "↑"}
	weather := providerFunc(func(ctx context.Context, lat, lon float64) (*models.HourlySeries, error) {
		return testSeries(120), nil
	})

	p := newTestPipeline(resolverFunc(warsaw), weather, hist)
	batch, err := p.Run(context.Background(), Request{Place: "Warsaw", Species: "Pike"})
	require.NoError(t, err)

	assert.Equal(t, 1, hist.calls)
	// wind from 180° classifies as ↑
	assert.Contains(t, batch.Results[0].Reasons, "matches your historical best wind (↑)")
}

func TestRun_UnknownSpecies(t *testing.T) {
	called := false
	geo := resolverFunc(func(ctx context.Context, name string) (*models.Location, error) {
		called = true
		return warsaw(ctx, name)
	})

	p := newTestPipeline(geo, nil, nil)
	_, err := p.Run(context.Background(), Request{Place: "Warsaw", Species: "Shark"})
	assert.ErrorIs(t, err, species.ErrUnknownSpecies)
	assert.False(t, called, "geocoding must not run for an unknown species")
}

func TestRun_FetchErrors(t *testing.T) {
	okWeather := providerFunc(func(ctx context.Context, lat, lon float64) (*models.HourlySeries, error) {
		return testSeries(48), nil
	})

	tests := []struct {
		name      string
		geo       resolverFunc
		weather   providerFunc
		wantStage Stage
		wantErr   error
	}{
		{
			name: "place not found",
			geo: func(ctx context.Context, name string) (*models.Location, error) {
				return nil, fmt.Errorf("%w: 'Atlantis'", geocoding.ErrNotFound)
			},
			weather:   okWeather,
			wantStage: StageGeocode,
			wantErr:   ErrNotFound,
		},
		{
			name: "geocoder down",
			geo: func(ctx context.Context, name string) (*models.Location, error) {
				return nil, fmt.Errorf("%w: connection refused", geocoding.ErrUnavailable)
			},
			weather:   okWeather,
			wantStage: StageGeocode,
			wantErr:   ErrUnavailable,
		},
		{
			name: "geocoder too slow",
			geo: func(ctx context.Context, name string) (*models.Location, error) {
				<-ctx.Done()
				return nil, fmt.Errorf("%w: %w", geocoding.ErrUnavailable, ctx.Err())
			},
			weather:   okWeather,
			wantStage: StageGeocode,
			wantErr:   ErrTimeout,
		},
		{
			name: "weather missing hourly",
			geo:  warsaw,
			weather: func(ctx context.Context, lat, lon float64) (*models.HourlySeries, error) {
				return nil, fmt.Errorf("%w: missing hourly object", forecast.ErrMalformed)
			},
			wantStage: StageWeather,
			wantErr:   ErrMalformed,
		},
		{
			name: "weather inconsistent series",
			geo:  warsaw,
			weather: func(ctx context.Context, lat, lon float64) (*models.HourlySeries, error) {
				s := testSeries(48)
				s.Rain = s.Rain[:10]
				return s, nil
			},
			wantStage: StageWeather,
			wantErr:   ErrMalformed,
		},
		{
			name: "weather too slow",
			geo:  warsaw,
			weather: func(ctx context.Context, lat, lon float64) (*models.HourlySeries, error) {
				<-ctx.Done()
				return nil, fmt.Errorf("%w: %w", forecast.ErrUnavailable, ctx.Err())
			},
			wantStage: StageWeather,
			wantErr:   ErrTimeout,
		},
		{
			name: "unparseable timestamp",
			geo:  warsaw,
			weather: func(ctx context.Context, lat, lon float64) (*models.HourlySeries, error) {
				s := testSeries(48)
				s.Time[5] = "yesterday"
				return s, nil
			},
			wantStage: StageScore,
			wantErr:   ErrMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPipeline(Config{GeoTimeout: 20 * time.Millisecond, WeatherTimeout: 20 * time.Millisecond},
				species.Default(), tt.geo, tt.weather, scoring.NewEngine(fixedSolar(20)), nil, zerolog.Nop())
			p.SetClock(func() time.Time { return seriesStart })

			batch, err := p.Run(context.Background(), Request{Place: "Atlantis", Species: "Pike"})
			assert.Nil(t, batch)
			require.Error(t, err)

			var fe *FetchError
			require.True(t, errors.As(err, &fe), "want *FetchError, got %T", err)
			assert.Equal(t, tt.wantStage, fe.Stage)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NotEmpty(t, fe.Reason())
		})
	}
}

func TestGenerations(t *testing.T) {
	var g Generations
	first := g.Next()
	assert.True(t, g.IsCurrent(first))

	second := g.Next()
	assert.False(t, g.IsCurrent(first))
	assert.True(t, g.IsCurrent(second))
	assert.Equal(t, second, g.Current())
}

func TestGenerations_Concurrent(t *testing.T) {
	var g Generations
	var wg sync.WaitGroup
	seen := make(chan uint64, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- g.Next()
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[uint64]bool)
	for v := range seen {
		unique[v] = true
	}
	assert.Len(t, unique, 100)
	assert.Equal(t, uint64(100), g.Current())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "not found", KindNotFound.String())
	assert.Equal(t, "timed out", KindTimeout.String())
	assert.Equal(t, "malformed data", KindMalformed.String())
	assert.Equal(t, "unavailable", KindUnavailable.String())
}
