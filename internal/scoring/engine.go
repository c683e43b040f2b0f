// Package scoring turns hourly weather and a species profile into an
// activity score with the reasons behind it.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ngmaloney/bite-terminal/internal/models"
	"github.com/ngmaloney/bite-terminal/internal/wind"
)

const (
	baseScore = 30
	minScore  = 5
	maxScore  = 100

	// hours back used for the pressure trend
	pressureLookback = 24

	twilightAltitude = 6.0
)

var (
	ErrIndexOutOfRange = errors.New("series index out of range")
	ErrSolarPosition   = errors.New("solar position unavailable")
)

// SolarPositionProvider returns the sun's altitude in degrees
type SolarPositionProvider interface {
	Altitude(lat, lon float64, t time.Time) (float64, error)
}

// HistoryQuery exposes the user's most frequent wind for a species
type HistoryQuery interface {
	TopWindDirection(species string) (models.WindArrow, bool)
}

// FixedHistory is a HistoryQuery answered from a snapshot taken before
// scoring starts, so every hour in a batch sees the same history.
type FixedHistory struct {
	Species string
	Arrow   models.WindArrow
	OK      bool
}

// TopWindDirection implements HistoryQuery
func (h FixedHistory) TopWindDirection(species string) (models.WindArrow, bool) {
	if !h.OK || species != h.Species {
		return "", false
	}
	return h.Arrow, true
}

// Engine scores single hours. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	solar SolarPositionProvider
}

// NewEngine creates an engine using the given solar position source
func NewEngine(solar SolarPositionProvider) *Engine {
	return &Engine{solar: solar}
}

// hourSample is one index of the series pulled out of the parallel arrays
type hourSample struct {
	time      time.Time
	pressure  float64
	pressure0 float64 // pressure pressureLookback hours earlier, clamped to the first sample
	rain      float64
	windSpeed float64
	windDir   float64
	clouds    float64
}

// Analyze scores hour index of series for profile at loc. history may be nil.
func (e *Engine) Analyze(series *models.HourlySeries, index int, loc models.Location, profile models.SpeciesProfile, history HistoryQuery) (models.ScoreResult, error) {
	if series == nil {
		return models.ScoreResult{}, fmt.Errorf("nil series")
	}
	if err := series.Validate(); err != nil {
		return models.ScoreResult{}, err
	}
	if !series.InRange(index) {
		return models.ScoreResult{}, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, series.Len())
	}

	ts, err := series.Timestamp(index)
	if err != nil {
		return models.ScoreResult{}, fmt.Errorf("%w: %v", ErrSolarPosition, err)
	}

	sample := hourSample{
		time:      ts,
		pressure:  series.SurfacePressure[index],
		pressure0: series.SurfacePressure[max(0, index-pressureLookback)],
		rain:      series.Rain[index],
		windSpeed: series.WindSpeed10m[index],
		windDir:   series.WindDirection10m[index],
		clouds:    series.CloudCover[index],
	}

	s := &scorer{
		score:   baseScore,
		profile: profile,
	}
	waterTemp := EstimateWaterTemp(series.Temperature2m, index)
	arrow := wind.Classify(sample.windDir)

	s.waterTemperature(waterTemp)
	s.pressureTrend(sample.pressure - sample.pressure0)

	altitude, err := e.altitude(loc, sample.time)
	if err != nil {
		return models.ScoreResult{}, err
	}
	status := s.lightPhase(altitude, waterTemp, sample.clouds)

	s.historicalWind(history, arrow)
	s.windSpeed(sample.windSpeed)
	s.rain(sample.rain)

	return models.ScoreResult{
		Timestamp: sample.time,
		SeriesIdx: index,
		RawTime:   series.Time[index],
		Score:     clamp(s.score, minScore, maxScore),
		DayStatus: status,
		Reasons:   s.reasons,
		WindArrow: arrow,
		WaterTemp: waterTemp,
		AirTemp:   series.Temperature2m[index],
		Pressure:  sample.pressure,
	}, nil
}

func (e *Engine) altitude(loc models.Location, t time.Time) (float64, error) {
	if e.solar == nil {
		return 0, fmt.Errorf("%w: no provider configured", ErrSolarPosition)
	}
	alt, err := e.solar.Altitude(loc.Latitude, loc.Longitude, t)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSolarPosition, err)
	}
	if math.IsNaN(alt) || math.IsInf(alt, 0) {
		return 0, fmt.Errorf("%w: altitude %v", ErrSolarPosition, alt)
	}
	return alt, nil
}

// scorer accumulates the running score and reasons for one hour. Rules are
// applied in a fixed order and the score is only clamped at the end.
type scorer struct {
	score   int
	reasons []string
	profile models.SpeciesProfile
}

func (s *scorer) add(delta int, reason string) {
	s.score += delta
	if reason != "" {
		s.reasons = append(s.reasons, reason)
	}
}

func (s *scorer) waterTemperature(water float64) {
	p := s.profile
	if water < p.MinTemp {
		s.add(-20, fmt.Sprintf("water %.1f°C: too cold", water))
		return
	}

	quality := math.Exp(-math.Pow(water-p.OptimumTemp, 2) / (2 * p.Sigma * p.Sigma))
	delta := int(math.Floor(quality * 40))
	if quality > 0.85 {
		s.add(delta, fmt.Sprintf("water %.1f°C: near optimum", water))
	} else {
		s.add(delta, fmt.Sprintf("water %.1f°C", water))
	}
}

func (s *scorer) pressureTrend(diff float64) {
	predator := s.profile.IsPredator()
	switch {
	case diff < -1.0:
		if predator {
			s.add(30, "falling pressure triggers predators")
		} else {
			s.add(-20, "falling pressure discourages")
		}
	case diff > 1.5:
		if predator {
			s.add(-15, "rising pressure discourages predators")
		} else {
			s.add(15, "stabilizing conditions favor peaceful species")
		}
	}
}

func (s *scorer) lightPhase(altitude, water, clouds float64) models.DayStatus {
	p := s.profile
	switch {
	case altitude >= -twilightAltitude && altitude <= twilightAltitude:
		s.add(20, "golden hour")
		return models.Twilight

	case altitude > twilightAltitude:
		switch {
		case p.Nocturnal && clouds < 30:
			s.add(-25, "too bright")
		case p.Nocturnal:
			s.add(5, "cloud cover helps")
		case water < 8 && clouds < 40:
			s.add(10, "sun warms cold water")
		case clouds < 20 && p.IsPredator():
			s.add(-10, "too bright")
		default:
			// no reason line for a plain daytime hour
			s.add(5, "")
		}
		return models.Day

	default:
		if p.Nocturnal {
			s.add(15, "night activity peak")
		} else {
			s.add(-10, "inactive at night")
		}
		return models.Night
	}
}

func (s *scorer) historicalWind(history HistoryQuery, current models.WindArrow) {
	if history == nil {
		return
	}
	best, ok := history.TopWindDirection(s.profile.Name)
	if ok && best == current {
		s.add(15, fmt.Sprintf("matches your historical best wind (%s)", current))
	}
}

func (s *scorer) windSpeed(speed float64) {
	switch {
	case speed > 25:
		s.add(-15, "storm conditions")
	case speed >= 6 && speed <= 20:
		if s.profile.IsPredator() {
			s.add(10, "favorable wave action")
		} else {
			s.add(-5, "excess wave disturbs")
		}
	}
}

func (s *scorer) rain(mm float64) {
	switch {
	case mm > 2.0:
		s.add(-10, "heavy rain")
	case mm > 0.2:
		s.add(10, "light rain favorable")
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
