package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ngmaloney/bite-terminal/internal/models"
)

// FileName is the default name of the JSON catch log
const FileName = "catches.json"

// JSONStore keeps the catch log as a JSON array in a single file.
// Every operation holds the store lock, and writes replace the file
// atomically via a temp file and rename.
type JSONStore struct {
	path string
	log  zerolog.Logger
	mu   sync.Mutex
}

// NewJSONStore returns a store backed by path, creating an empty log if the
// file does not exist. A creation failure is logged; later saves report it.
func NewJSONStore(path string, log zerolog.Logger) *JSONStore {
	s := &JSONStore{
		path: path,
		log:  log.With().Str("component", "history").Str("path", path).Logger(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureFile(); err != nil {
		s.log.Warn().Err(err).Msg("could not create catch history file")
	}
	return s
}

// Path returns the file backing the store
func (s *JSONStore) Path() string {
	return s.path
}

// Save appends rec to the log. A corrupt log is never overwritten.
func (s *JSONStore) Save(rec models.CatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureFile(); err != nil {
		return err
	}

	records, err := s.read()
	if err != nil {
		return err
	}
	records = append(records, rec)

	if err := s.write(records); err != nil {
		return err
	}
	s.log.Debug().Str("species", rec.Species).Str("wind", string(rec.Wind)).Int("total", len(records)).Msg("catch saved")
	return nil
}

// Append implements Store
func (s *JSONStore) Append(rec models.CatchRecord) bool {
	return appendVia(s.Save, s.log, rec)
}

// Records returns the whole log. A missing file reads as empty.
func (s *JSONStore) Records() ([]models.CatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// TopWindDirection implements Store. Read failures count as no history.
func (s *JSONStore) TopWindDirection(species string) (models.WindArrow, bool) {
	return topWindFrom(s, s.log, species)
}

// Close implements Store
func (s *JSONStore) Close() error {
	return nil
}

// ensureFile creates the directory and an empty log if absent. Caller holds mu.
func (s *JSONStore) ensureFile() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: creating directory: %v", ErrWrite, err)
	}
	return s.write([]models.CatchRecord{})
}

// read decodes the log. Caller holds mu.
func (s *JSONStore) read() ([]models.CatchRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []models.CatchRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []models.CatchRecord{}, nil
	}

	var records []models.CatchRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if records == nil {
		records = []models.CatchRecord{}
	}
	return records, nil
}

// write replaces the log with records. Caller holds mu.
func (s *JSONStore) write(records []models.CatchRecord) error {
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("%w: encoding: %v", ErrWrite, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".catches-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}
