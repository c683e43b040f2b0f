package history

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ngmaloney/bite-terminal/internal/database"
	"github.com/ngmaloney/bite-terminal/internal/models"
)

// SQLiteStore keeps the catch log in the catches table of the local database
type SQLiteStore struct {
	db  *sql.DB
	log zerolog.Logger
	mu  sync.Mutex
}

// NewSQLiteStore opens the database at dbPath, creating the schema if needed
func NewSQLiteStore(dbPath string, log zerolog.Logger) (*SQLiteStore, error) {
	db, err := database.Open(dbPath)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{
		db:  db,
		log: log.With().Str("component", "history").Str("db", dbPath).Logger(),
	}, nil
}

// Save implements Store
func (s *SQLiteStore) Save(rec models.CatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO catches (city, species, time, temp, pressure, wind) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.City, rec.Species, rec.Time, rec.Temp, rec.Pressure, string(rec.Wind),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// Append implements Store
func (s *SQLiteStore) Append(rec models.CatchRecord) bool {
	return appendVia(s.Save, s.log, rec)
}

// Records implements Store
func (s *SQLiteStore) Records() ([]models.CatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT city, species, time, temp, pressure, wind FROM catches ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying catches: %w", err)
	}
	defer rows.Close()

	records := []models.CatchRecord{}
	for rows.Next() {
		var r models.CatchRecord
		var wind string
		if err := rows.Scan(&r.City, &r.Species, &r.Time, &r.Temp, &r.Pressure, &wind); err != nil {
			return nil, fmt.Errorf("%w: scanning catch: %v", ErrCorrupt, err)
		}
		r.Wind = models.WindArrow(wind)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating catches: %w", err)
	}
	return records, nil
}

// TopWindDirection implements Store
func (s *SQLiteStore) TopWindDirection(species string) (models.WindArrow, bool) {
	return topWindFrom(s, s.log, species)
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
