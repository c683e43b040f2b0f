package models

import (
	"errors"
	"fmt"
	"time"
)

// TimeLayout is the layout of hourly timestamps returned by the forecast API
const TimeLayout = "2006-01-02T15:04"

var (
	ErrEmptySeries  = errors.New("hourly series is empty")
	ErrSeriesLength = errors.New("hourly series arrays differ in length")
)

// HourlySeries holds parallel hourly weather arrays. Index i of every slice
// describes the same hour.
type HourlySeries struct {
	Time             []string
	Temperature2m    []float64 // °C
	SurfacePressure  []float64 // hPa
	Rain             []float64 // mm
	WindSpeed10m     []float64 // km/h
	WindDirection10m []float64 // degrees
	CloudCover       []float64 // percent

	UTCOffsetSeconds int
	Timezone         string
}

// Len returns the number of hours in the series
func (s *HourlySeries) Len() int {
	return len(s.Time)
}

// Validate checks that every array shares the same non-zero length
func (s *HourlySeries) Validate() error {
	n := len(s.Time)
	if n == 0 {
		return ErrEmptySeries
	}

	fields := []struct {
		name string
		len  int
	}{
		{"temperature_2m", len(s.Temperature2m)},
		{"surface_pressure", len(s.SurfacePressure)},
		{"rain", len(s.Rain)},
		{"wind_speed_10m", len(s.WindSpeed10m)},
		{"wind_direction_10m", len(s.WindDirection10m)},
		{"cloud_cover", len(s.CloudCover)},
	}
	for _, f := range fields {
		if f.len != n {
			return fmt.Errorf("%w: %s has %d values, time has %d", ErrSeriesLength, f.name, f.len, n)
		}
	}
	return nil
}

// InRange reports whether i is a valid index into the series
func (s *HourlySeries) InRange(i int) bool {
	return i >= 0 && i < s.Len()
}

// Zone returns the fixed zone the timestamps are expressed in
func (s *HourlySeries) Zone() *time.Location {
	if s.UTCOffsetSeconds == 0 && s.Timezone == "" {
		return time.UTC
	}
	name := s.Timezone
	if name == "" {
		name = fmt.Sprintf("UTC%+d", s.UTCOffsetSeconds/3600)
	}
	return time.FixedZone(name, s.UTCOffsetSeconds)
}

// Timestamp parses the timestamp at index i in the series zone
func (s *HourlySeries) Timestamp(i int) (time.Time, error) {
	if !s.InRange(i) {
		return time.Time{}, fmt.Errorf("index %d outside series of length %d", i, s.Len())
	}
	t, err := time.ParseInLocation(TimeLayout, s.Time[i], s.Zone())
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s.Time[i], err)
	}
	return t, nil
}

// IndexOf returns the index of the sample for the hour containing t, or -1
func (s *HourlySeries) IndexOf(t time.Time) int {
	want := t.In(s.Zone()).Format("2006-01-02T15:00")
	for i, ts := range s.Time {
		if ts == want {
			return i
		}
	}
	return -1
}
