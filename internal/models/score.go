package models

import "time"

// WindArrow is one of eight arrows for a 45° wind direction bucket
type WindArrow string

// DayStatus represents the light phase of an hour
type DayStatus int

const (
	Twilight DayStatus = iota
	Day
	Night
)

// String returns the display name of the light phase
func (d DayStatus) String() string {
	switch d {
	case Twilight:
		return "Twilight"
	case Day:
		return "Day"
	case Night:
		return "Night"
	default:
		return "Unknown"
	}
}

// Icon returns a glyph for the light phase
func (d DayStatus) Icon() string {
	switch d {
	case Twilight:
		return "🌅"
	case Day:
		return "☀️"
	case Night:
		return "🌑"
	default:
		return "?"
	}
}

// ScoreBand groups scores for display
type ScoreBand string

const (
	BandGood ScoreBand = "good"
	BandFair ScoreBand = "fair"
	BandPoor ScoreBand = "poor"
)

// ScoreResult is the outcome of scoring one hour
type ScoreResult struct {
	Timestamp time.Time
	SeriesIdx int    // index in the source series
	RawTime   string // timestamp as it appeared in the series
	Score     int    // always within [5, 100]
	DayStatus DayStatus
	Reasons   []string // in rule evaluation order
	WindArrow WindArrow
	WaterTemp float64 // estimated, °C

	AirTemp  float64 // °C
	Pressure float64 // hPa
}

// Band classifies the score: above 75 is good, above 40 fair
func (r ScoreResult) Band() ScoreBand {
	switch {
	case r.Score > 75:
		return BandGood
	case r.Score > 40:
		return BandFair
	default:
		return BandPoor
	}
}
