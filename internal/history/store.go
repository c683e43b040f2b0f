// Package history keeps the user's catch log and answers frequency queries over it
package history

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/ngmaloney/bite-terminal/internal/database"
	"github.com/ngmaloney/bite-terminal/internal/models"
)

// Storage backends
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

var (
	// ErrCorrupt means the stored log could not be decoded
	ErrCorrupt = errors.New("catch history is corrupt")
	// ErrWrite means a record could not be persisted
	ErrWrite = errors.New("writing catch history")
)

// Store is an append-only catch log
type Store interface {
	// Save appends rec and reports why it failed
	Save(rec models.CatchRecord) error
	// Append appends rec and reports only success; errors are logged
	Append(rec models.CatchRecord) bool
	// Records returns every record in insertion order
	Records() ([]models.CatchRecord, error)
	// TopWindDirection returns the most frequent wind among catches of species
	TopWindDirection(species string) (models.WindArrow, bool)
	Close() error
}

// Open returns the store for backend rooted at dataDir
func Open(backend, dataDir string, log zerolog.Logger) (Store, error) {
	switch backend {
	case BackendJSON, "":
		return NewJSONStore(filepath.Join(dataDir, FileName), log), nil
	case BackendSQLite:
		s, err := NewSQLiteStore(database.DBPath(dataDir), log)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", backend)
	}
}

// TopWind returns the most frequent wind arrow among records for species.
// Ties go to the arrow that was seen first.
func TopWind(records []models.CatchRecord, species string) (models.WindArrow, bool) {
	counts := make(map[models.WindArrow]int)
	var order []models.WindArrow

	for _, r := range records {
		if r.Species != species {
			continue
		}
		if _, seen := counts[r.Wind]; !seen {
			order = append(order, r.Wind)
		}
		counts[r.Wind]++
	}

	if len(order) == 0 {
		return "", false
	}

	best := order[0]
	for _, w := range order[1:] {
		if counts[w] > counts[best] {
			best = w
		}
	}
	return best, true
}

// reader is the part of a Store the shared helpers need
type reader interface {
	Records() ([]models.CatchRecord, error)
}

func topWindFrom(r reader, log zerolog.Logger, species string) (models.WindArrow, bool) {
	records, err := r.Records()
	if err != nil {
		log.Warn().Err(err).Str("species", species).Msg("catch history unavailable, ignoring preference")
		return "", false
	}
	return TopWind(records, species)
}

func appendVia(save func(models.CatchRecord) error, log zerolog.Logger, rec models.CatchRecord) bool {
	if err := save(rec); err != nil {
		log.Error().Err(err).Str("species", rec.Species).Str("city", rec.City).Msg("failed to save catch")
		return false
	}
	return true
}
