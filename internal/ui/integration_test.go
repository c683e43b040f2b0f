package ui

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ngmaloney/bite-terminal/internal/geocoding"
	"github.com/ngmaloney/bite-terminal/internal/models"
	"github.com/ngmaloney/bite-terminal/internal/search"
)

type mockStore struct {
	mu      sync.Mutex
	records []models.CatchRecord
	err     error
}

func (s *mockStore) Save(rec models.CatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, rec)
	return nil
}

// messagesOf runs cmd and flattens batches, skipping spinner ticks
func messagesOf(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, messagesOf(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func searchDone(t *testing.T, cmd tea.Cmd) searchDoneMsg {
	t.Helper()
	for _, msg := range messagesOf(cmd) {
		if done, ok := msg.(searchDoneMsg); ok {
			return done
		}
	}
	t.Fatal("command did not produce a searchDoneMsg")
	return searchDoneMsg{}
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

// TestIntegration_SearchAndSaveCatch tests the complete workflow
func TestIntegration_SearchAndSaveCatch(t *testing.T) {
	s := &mockSearcher{}
	store := &mockStore{}
	m := newTestModel(s, store)
	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 40})

	m = typeText(m, "Warsaw")
	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != StateLoading {
		t.Fatalf("state = %v, want StateLoading", m.state)
	}

	m, _ = update(m, searchDone(t, cmd))
	if m.state != StateDisplay {
		t.Fatalf("state = %v, want StateDisplay", m.state)
	}
	if len(s.requests) != 1 || s.requests[0].Place != "Warsaw" || s.requests[0].Species != "Pike" {
		t.Errorf("unexpected requests %+v", s.requests)
	}
	if !strings.Contains(m.View(), "05:00 |  92% | wind ↑") {
		t.Error("display should list the first hour")
	}

	// Move to the second hour and save a catch
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	if cmd == nil {
		t.Fatal("expected a save command")
	}
	m, _ = update(m, cmd())

	if len(store.records) != 1 {
		t.Fatalf("saved %d records, want 1", len(store.records))
	}
	want := models.CatchRecord{City: "Warsaw", Species: "Pike", Time: "2025-06-01T06:00", Temp: 15, Pressure: 1011, Wind: "↑"}
	if store.records[0] != want {
		t.Errorf("saved %+v, want %+v", store.records[0], want)
	}
	if !strings.Contains(m.status, "Saved Pike") {
		t.Errorf("status = %q, want save confirmation", m.status)
	}

	// Enter shows reasons, Esc returns
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != StateDetail {
		t.Fatalf("state = %v, want StateDetail", m.state)
	}
	if !strings.Contains(m.View(), "light rain favorable") {
		t.Error("detail view should list the reasons")
	}
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != StateDisplay {
		t.Errorf("state = %v, want StateDisplay", m.state)
	}
}

func TestIntegration_SaveFailureReported(t *testing.T) {
	s := &mockSearcher{}
	store := &mockStore{err: errors.New("disk full")}
	m := newTestModel(s, store)
	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 40})

	m = typeText(m, "Warsaw")
	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(m, searchDone(t, cmd))

	m, cmd = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	m, _ = update(m, cmd())

	if !strings.Contains(m.status, "disk full") {
		t.Errorf("status = %q, want failure reason", m.status)
	}
	if m.state != StateDisplay {
		t.Errorf("state = %v, want StateDisplay", m.state)
	}
}

func TestIntegration_SpeciesChangeRerunsSearch(t *testing.T) {
	s := &mockSearcher{}
	m := newTestModel(s, nil)
	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 40})

	m = typeText(m, "Warsaw")
	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(m, searchDone(t, cmd))

	// Tab opens the picker; Zander is second in the list
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.state != StateSpeciesPicker {
		t.Fatalf("state = %v, want StateSpeciesPicker", m.state)
	}
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd = update(m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.species != "Zander" {
		t.Fatalf("species = %s, want Zander", m.species)
	}
	if m.state != StateLoading {
		t.Fatalf("state = %v, want StateLoading", m.state)
	}

	m, _ = update(m, searchDone(t, cmd))
	if m.batch == nil || m.batch.Species != "Zander" {
		t.Errorf("batch species = %+v, want Zander", m.batch)
	}
	if got := s.requests[len(s.requests)-1]; got.Species != "Zander" || got.Place != "Warsaw" {
		t.Errorf("last request = %+v", got)
	}
}

// TestIntegration_StaleSearchDiscarded checks that a search superseded by a
// species change never replaces the newer results
func TestIntegration_StaleSearchDiscarded(t *testing.T) {
	s := &mockSearcher{}
	m := newTestModel(s, nil)
	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 40})

	m = typeText(m, "Warsaw")
	m, first := update(m, tea.KeyMsg{Type: tea.KeyEnter})

	// Change species while the first search is still running
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyDown})
	m, second := update(m, tea.KeyMsg{Type: tea.KeyEnter})

	newer := searchDone(t, second)
	older := searchDone(t, first)

	m, _ = update(m, newer)
	if m.state != StateDisplay || m.batch.Species != "Zander" {
		t.Fatalf("state = %v batch = %+v, want Zander display", m.state, m.batch)
	}

	m, _ = update(m, older)
	if m.batch.Species != "Zander" {
		t.Errorf("stale Pike batch replaced current results")
	}
	if m.batch.Generation != newer.generation {
		t.Errorf("batch generation = %d, want %d", m.batch.Generation, newer.generation)
	}
}

func TestIntegration_StaleFailureIgnored(t *testing.T) {
	m := newTestModel(&mockSearcher{}, nil)
	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 40})

	m = typeText(m, "Warsaw")
	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyEnter})
	done := searchDone(t, cmd)

	stale := searchDoneMsg{generation: done.generation - 1, err: fmt.Errorf("boom")}
	m, _ = update(m, stale)
	if m.state != StateLoading {
		t.Errorf("state = %v, want StateLoading after stale failure", m.state)
	}

	m, _ = update(m, done)
	if m.state != StateDisplay {
		t.Errorf("state = %v, want StateDisplay", m.state)
	}
}

func TestIntegration_PickerClosedWithoutChange(t *testing.T) {
	s := &mockSearcher{}
	m := newTestModel(s, nil)
	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 40})

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.state != StateSearch {
		t.Errorf("state = %v, want StateSearch", m.state)
	}
	if !m.searchInput.Focused() {
		t.Error("search input should regain focus")
	}
	if len(s.requests) != 0 {
		t.Errorf("no search expected, got %d", len(s.requests))
	}
}

func TestIntegration_UnavailableShowsStage(t *testing.T) {
	s := &mockSearcher{err: &search.FetchError{
		Stage: search.StageGeocode,
		Kind:  search.KindNotFound,
		Err:   geocoding.ErrNotFound,
	}}
	m := newTestModel(s, nil)
	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 40})

	m = typeText(m, "Atlantis")
	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(m, searchDone(t, cmd))

	if m.state != StateUnavailable {
		t.Fatalf("state = %v, want StateUnavailable", m.state)
	}
	view := m.View()
	if !strings.Contains(view, "No place matches that name.") {
		t.Errorf("view missing reason:\n%s", view)
	}
	if !strings.Contains(view, "Atlantis") {
		t.Errorf("view missing query:\n%s", view)
	}
}
