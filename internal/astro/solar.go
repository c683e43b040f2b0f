// Package astro computes the sun's position for a place and time
package astro

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sixdouglas/suncalc"
)

// ErrInvalidCoordinates is returned for latitudes or longitudes outside the globe
var ErrInvalidCoordinates = errors.New("invalid coordinates")

const deg = math.Pi / 180

// Provider reports solar altitude from the suncalc ephemeris.
type Provider struct {
	// Refraction adds atmospheric refraction so the result is the apparent
	// altitude an observer sees.
	Refraction bool
}

// NewProvider returns a provider reporting apparent altitude
func NewProvider() *Provider {
	return &Provider{Refraction: true}
}

// Altitude returns the solar elevation in degrees above the horizon
func (p *Provider) Altitude(lat, lon float64, t time.Time) (float64, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, fmt.Errorf("%w: %v, %v", ErrInvalidCoordinates, lat, lon)
	}
	if t.IsZero() {
		return 0, fmt.Errorf("zero time")
	}

	elevation := suncalc.GetPosition(t.UTC(), lat, lon).Altitude / deg
	if p.Refraction {
		elevation += refraction(elevation)
	}
	if math.IsNaN(elevation) || math.IsInf(elevation, 0) {
		return 0, fmt.Errorf("solar elevation not finite for %v, %v at %v", lat, lon, t)
	}
	return elevation, nil
}

// refraction returns the correction in degrees for a geometric elevation
func refraction(e float64) float64 {
	if e > 85 {
		return 0
	}
	te := math.Tan(e * deg)
	var arcsec float64
	switch {
	case e > 5:
		arcsec = 58.1/te - 0.07/math.Pow(te, 3) + 0.000086/math.Pow(te, 5)
	case e > -0.575:
		arcsec = 1735 + e*(-518.2+e*(103.4+e*(-12.79+e*0.711)))
	default:
		arcsec = -20.772 / te
	}
	return arcsec / 3600
}
