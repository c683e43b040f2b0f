package ui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ngmaloney/bite-terminal/internal/models"
	"github.com/ngmaloney/bite-terminal/internal/search"
)

// errNoPipeline is reported when a search is started without a pipeline
var errNoPipeline = errors.New("search is not configured")

// searchTimeout bounds a whole search; each stage has its own tighter limit
const searchTimeout = 60 * time.Second

// Searcher runs one fetch-and-score pass
type Searcher interface {
	Run(ctx context.Context, req search.Request) (*search.Batch, error)
}

// CatchSaver persists a catch record
type CatchSaver interface {
	Save(rec models.CatchRecord) error
}

// Message types for async operations

// startSearchMsg asks the model to search for its current query
type startSearchMsg struct{}

// searchDoneMsg is sent when a search finishes, successfully or not
type searchDoneMsg struct {
	generation uint64
	batch      *search.Batch
	err        error
}

// catchSavedMsg is sent when a catch has been written
type catchSavedMsg struct {
	record models.CatchRecord
	err    error
}

// errMsg reports a failure that is not tied to a search generation
type errMsg struct {
	err error
}

// reportError delivers err to the model as an errMsg
func reportError(err error) tea.Cmd {
	return func() tea.Msg {
		return errMsg{err: err}
	}
}

// runSearch performs a search in the background
func runSearch(s Searcher, req search.Request) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()

		batch, err := s.Run(ctx, req)
		return searchDoneMsg{generation: req.Generation, batch: batch, err: err}
	}
}

// saveCatch writes rec to the catch log in the background
func saveCatch(store CatchSaver, rec models.CatchRecord) tea.Cmd {
	return func() tea.Msg {
		return catchSavedMsg{record: rec, err: store.Save(rec)}
	}
}
