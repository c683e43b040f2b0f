package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ngmaloney/bite-terminal/internal/models"
	"github.com/ngmaloney/bite-terminal/internal/search"
	"github.com/ngmaloney/bite-terminal/internal/species"
)

// renderDetail lists the reasons behind one hour. styled is false for plain output.
func renderDetail(r models.ScoreResult, styled bool) string {
	var lines []string

	header := fmt.Sprintf("%s  %d%%  %s %s", r.Timestamp.Format("Mon 02 Jan 15:04"), r.Score, r.DayStatus.Icon(), r.DayStatus)
	if styled {
		header = bandStyle(r.Band()).Render(header)
	}
	lines = append(lines, header)

	lines = append(lines, fmt.Sprintf("Water: %.1f°C  Air: %.1f°C  Pressure: %.0f hPa  Wind: %s",
		r.WaterTemp, r.AirTemp, r.Pressure, r.WindArrow))

	if len(r.Reasons) == 0 {
		lines = append(lines, "  no notable factors")
	}
	for _, reason := range r.Reasons {
		lines = append(lines, "  • "+reason)
	}

	return strings.Join(lines, "\n")
}

// describeError turns a search failure into a user-facing sentence
func describeError(err error) string {
	var fe *search.FetchError
	if !errors.As(err, &fe) {
		return err.Error()
	}
	switch fe.Stage {
	case search.StageGeocode:
		if fe.Kind == search.KindNotFound {
			return "No place matches that name."
		}
		return fmt.Sprintf("Place lookup %s.", fe.Kind)
	case search.StageWeather:
		return fmt.Sprintf("Weather data %s.", fe.Kind)
	default:
		return fmt.Sprintf("Scoring failed: %s.", fe.Kind)
	}
}

// PrintBatch writes batch as plain text, one hour per line followed by its reasons
func PrintBatch(w io.Writer, batch *search.Batch) error {
	if _, err := fmt.Fprintf(w, "%s (%.4f, %.4f) • %s\n\n",
		batch.Location.Name, batch.Location.Latitude, batch.Location.Longitude, batch.Species); err != nil {
		return err
	}
	for _, r := range batch.Results {
		if _, err := fmt.Fprintf(w, "%s  [%s]\n%s\n", resultTitle(r), r.Band(), renderDetail(r, false)); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// PrintUnavailable writes the failed-search message
func PrintUnavailable(w io.Writer, place string, err error) {
	fmt.Fprintf(w, "Forecast unavailable for %q: %s\n", place, describeError(err))
}

// PrintSpecies writes the registry, one species per line
func PrintSpecies(w io.Writer, reg *species.Registry) {
	for _, name := range reg.List() {
		p, err := reg.Lookup(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%-8s %s\n", p.Name, speciesItem{profile: p}.Description())
	}
}
