package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/ngmaloney/bite-terminal/internal/models"
	"github.com/ngmaloney/bite-terminal/internal/search"
	"github.com/ngmaloney/bite-terminal/internal/species"
)

// AppState represents the current state of the application
type AppState int

const (
	StateSearch        AppState = iota // Type a place name
	StateSpeciesPicker                 // Choose the target species
	StateLoading                       // Fetching weather and scoring
	StateDisplay                       // Hourly scores for the last search
	StateDetail                        // Reasons behind one hour
	StateUnavailable                   // Last search failed
)

// Options wires the model to the rest of the application
type Options struct {
	Pipeline Searcher
	Registry *species.Registry
	Store    CatchSaver // may be nil; saving is then disabled
	Species  string     // initial species
	Location string     // searched immediately when set
	Log      zerolog.Logger
}

// Model represents the application's state
type Model struct {
	state     AppState
	prevState AppState // restored when the species picker is closed
	width     int
	height    int
	err       error

	// Search
	searchInput textinput.Model
	query       string // place of the last search
	pipeline    Searcher
	generations *search.Generations
	pending     uint64 // generation of the search in flight

	// Species
	registry    *species.Registry
	species     string
	speciesList list.Model

	// Results
	batch      *search.Batch
	resultList list.Model

	// Catch log
	store  CatchSaver
	status string // outcome of the last save

	spinner spinner.Model
	log     zerolog.Logger
}

// NewModel creates a new application model
func NewModel(opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Enter a town or lake (e.g. Warsaw, Lake Constance)..."
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 60
	if opts.Location != "" {
		ti.SetValue(opts.Location)
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	registry := opts.Registry
	if registry == nil {
		registry = species.Default()
	}
	current := species.DefaultSpecies
	if p, err := registry.Lookup(opts.Species); err == nil {
		current = p.Name
	}

	return Model{
		state:       StateSearch,
		searchInput: ti,
		query:       strings.TrimSpace(opts.Location),
		pipeline:    opts.Pipeline,
		generations: &search.Generations{},
		registry:    registry,
		species:     current,
		speciesList: createSpeciesList(registry, current, 40, 16),
		store:       opts.Store,
		spinner:     s,
		log:         opts.Log,
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	if m.query != "" && m.pipeline != nil {
		return func() tea.Msg { return startSearchMsg{} }
	}
	return textinput.Blink
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Handle window size
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
		m.speciesList.SetSize(min(msg.Width-4, 50), msg.Height-8)
		if m.batch != nil {
			m.resultList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil
	}

	// Handle custom messages
	switch msg := msg.(type) {
	case errMsg:
		m.err = msg.err
		m.state = StateUnavailable
		return m, nil

	case startSearchMsg:
		return m.startSearch(m.query)

	case searchDoneMsg:
		if !m.generations.IsCurrent(msg.generation) {
			m.log.Debug().Uint64("generation", msg.generation).Msg("discarding superseded search")
			return m, nil
		}
		if msg.err != nil {
			m.err = msg.err
			m.batch = nil
			m.settle(StateUnavailable)
			return m, nil
		}
		m.err = nil
		m.batch = msg.batch
		m.resultList = createResultList(msg.batch, m.width-4, m.height-8)
		m.settle(StateDisplay)
		return m, nil

	case catchSavedMsg:
		if msg.err != nil {
			m.status = errorStyle.Render("✗ Could not save catch: " + msg.err.Error())
		} else {
			m.status = successStyle.Render(fmt.Sprintf("✓ Saved %s at %s (wind %s)", msg.record.Species, msg.record.Time, msg.record.Wind))
		}
		return m, nil

	case spinner.TickMsg:
		if m.state != StateLoading && m.prevState != StateLoading {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Handle keyboard input
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		// Global keys
		if keyMsg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		// State-specific handling
		switch m.state {
		case StateSearch:
			return m.handleSearchInput(keyMsg)

		case StateSpeciesPicker:
			return m.handleSpeciesPicker(msg)

		case StateLoading:
			if keyMsg.Type == tea.KeyTab {
				return m.openSpeciesPicker()
			}
			return m, nil

		case StateDisplay:
			return m.handleResults(msg)

		case StateDetail:
			switch keyMsg.String() {
			case "q":
				return m, tea.Quit
			case "c":
				return m.saveSelected()
			case "esc", "enter", "backspace":
				m.state = StateDisplay
			}
			return m, nil

		case StateUnavailable:
			if keyMsg.String() == "q" {
				return m, tea.Quit
			}
			// Any other key returns to search
			m.state = StateSearch
			m.err = nil
			m.searchInput.Focus()
			return m, textinput.Blink
		}
	}

	// Update appropriate component based on state
	switch m.state {
	case StateSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
	case StateSpeciesPicker:
		m.speciesList, cmd = m.speciesList.Update(msg)
	case StateDisplay:
		m.resultList, cmd = m.resultList.Update(msg)
	}

	return m, cmd
}

// handleSearchInput handles keyboard input in search state
func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Clear error when typing
	if m.err != nil && msg.Type != tea.KeyEnter {
		m.err = nil
	}

	switch msg.Type {
	case tea.KeyEnter:
		query := strings.TrimSpace(m.searchInput.Value())
		if query == "" {
			return m, nil
		}
		return m.startSearch(query)

	case tea.KeyTab:
		return m.openSpeciesPicker()

	case tea.KeyEsc:
		if m.batch != nil {
			m.state = StateDisplay
			m.searchInput.Blur()
		}
		return m, nil
	}

	// Update text input
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleSpeciesPicker handles keyboard input in the species list
func (m Model) handleSpeciesPicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEnter:
			item, ok := m.speciesList.SelectedItem().(speciesItem)
			if !ok {
				return m, nil
			}
			changed := item.profile.Name != m.species
			m.species = item.profile.Name
			m.log.Info().Str("species", m.species).Msg("species selected")

			// Re-run the current search so results always match the selection
			if m.query != "" && changed {
				return m.startSearch(m.query)
			}
			return m.closeSpeciesPicker()

		case tea.KeyEsc, tea.KeyTab:
			return m.closeSpeciesPicker()
		}
	}

	m.speciesList, cmd = m.speciesList.Update(msg)
	return m, cmd
}

// handleResults handles keyboard input in the result list
func (m Model) handleResults(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "q":
			return m, tea.Quit
		case "enter":
			if _, ok := m.resultList.SelectedItem().(resultItem); ok {
				m.state = StateDetail
			}
			return m, nil
		case "c":
			return m.saveSelected()
		case "tab":
			return m.openSpeciesPicker()
		case "s", "/":
			m.state = StateSearch
			m.status = ""
			m.searchInput.SetValue("")
			m.searchInput.Focus()
			return m, textinput.Blink
		}
	}

	m.resultList, cmd = m.resultList.Update(msg)
	return m, cmd
}

// startSearch tags a new search with the next generation and runs it in the background
func (m Model) startSearch(query string) (tea.Model, tea.Cmd) {
	if m.pipeline == nil {
		return m, reportError(errNoPipeline)
	}

	m.query = query
	m.err = nil
	m.status = ""
	m.pending = m.generations.Next()
	m.state = StateLoading
	m.searchInput.Blur()

	req := search.Request{Place: query, Species: m.species, Generation: m.pending}
	return m, tea.Batch(m.spinner.Tick, runSearch(m.pipeline, req))
}

// settle moves a finished search out of the loading state, including when
// the species picker was opened on top of it
func (m *Model) settle(next AppState) {
	if m.state == StateLoading {
		m.state = next
	} else if m.state == StateSpeciesPicker && m.prevState == StateLoading {
		m.prevState = next
	}
}

func (m Model) openSpeciesPicker() (tea.Model, tea.Cmd) {
	m.prevState = m.state
	m.state = StateSpeciesPicker
	m.searchInput.Blur()
	selectSpecies(&m.speciesList, m.species)
	return m, nil
}

func (m Model) closeSpeciesPicker() (tea.Model, tea.Cmd) {
	m.state = m.prevState
	if m.state == StateSearch {
		m.searchInput.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

// saveSelected records a catch for the highlighted hour
func (m Model) saveSelected() (tea.Model, tea.Cmd) {
	if m.batch == nil {
		return m, nil
	}
	if m.store == nil {
		m.status = errorStyle.Render("✗ Catch history is not available")
		return m, nil
	}
	item, ok := m.resultList.SelectedItem().(resultItem)
	if !ok {
		return m, nil
	}

	r := item.result
	rec := models.CatchRecord{
		City:     m.batch.Location.Name,
		Species:  m.batch.Species,
		Time:     r.RawTime,
		Temp:     r.AirTemp,
		Pressure: r.Pressure,
		Wind:     r.WindArrow,
	}
	m.status = mutedStyle.Render("Saving catch...")
	return m, saveCatch(m.store, rec)
}

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.state {
	case StateSearch:
		return m.viewSearch()
	case StateSpeciesPicker:
		return m.viewSpeciesPicker()
	case StateLoading:
		return m.viewLoading()
	case StateDisplay:
		return m.viewDisplay()
	case StateDetail:
		return m.viewDetail()
	case StateUnavailable:
		return m.viewUnavailable()
	}

	return ""
}

// viewSearch renders the search view
func (m Model) viewSearch() string {
	title := titleStyle.Render("🎣 Bite Terminal")
	subtitle := mutedStyle.Render("Hourly fishing activity forecast")

	searchBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(1, 2).
		Width(64).
		Render(m.searchInput.View())

	speciesLine := labelStyle.Render("Species: ") + valueStyle.Render(m.species)

	help := helpStyle.Render("Enter: Search • Tab: Change species • Ctrl+C: Quit")

	var sections []string
	sections = append(sections, title)
	sections = append(sections, subtitle)
	sections = append(sections, "")
	sections = append(sections, searchBox)
	sections = append(sections, speciesLine)

	if m.err != nil {
		sections = append(sections, "")
		sections = append(sections, errorStyle.Padding(0, 2).Render("✗ "+m.err.Error()))
	}

	sections = append(sections, "")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// viewSpeciesPicker renders the species selection list
func (m Model) viewSpeciesPicker() string {
	help := helpStyle.Render("↑/↓: Navigate • Enter: Select • Esc: Back")
	return lipgloss.JoinVertical(lipgloss.Left, m.speciesList.View(), help)
}

// viewLoading renders the loading view
func (m Model) viewLoading() string {
	status := mutedStyle.Render(fmt.Sprintf("Scoring %s for %s...", m.query, m.species))
	help := helpStyle.Render("Tab: Change species • Ctrl+C: Quit")
	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		fmt.Sprintf("%s %s", m.spinner.View(), status),
		help,
	)
}

// viewDisplay renders the hourly result list
func (m Model) viewDisplay() string {
	if m.batch == nil {
		return mutedStyle.Render("No results")
	}

	help := helpStyle.Render("Enter: Reasons • C: Save catch • Tab: Species • S: New search • Q: Quit")

	var sections []string
	sections = append(sections, m.resultList.View())
	if m.status != "" {
		sections = append(sections, m.status)
	}
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// viewDetail renders the reasons behind the highlighted hour
func (m Model) viewDetail() string {
	item, ok := m.resultList.SelectedItem().(resultItem)
	if !ok || m.batch == nil {
		return mutedStyle.Render("No hour selected")
	}

	var sections []string
	sections = append(sections, titleStyle.Render(fmt.Sprintf("🎣 %s • %s", m.batch.Location.Name, m.batch.Species)))
	sections = append(sections, "")
	sections = append(sections, renderDetail(item.result, true))
	if m.status != "" {
		sections = append(sections, "", m.status)
	}
	sections = append(sections, helpStyle.Render("Esc: Back • C: Save catch • Q: Quit"))

	return sectionBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// viewUnavailable renders the failed-search view
func (m Model) viewUnavailable() string {
	title := errorStyle.Render("✗ Forecast unavailable")

	reason := "An unknown error occurred"
	if m.err != nil {
		reason = describeError(m.err)
	}

	help := helpStyle.Render("Press any key to return to search • Q: Quit")

	var sections []string
	sections = append(sections, title)
	sections = append(sections, "")
	if m.query != "" {
		sections = append(sections, mutedStyle.Render(fmt.Sprintf("%s • %s", m.query, m.species)))
	}
	sections = append(sections, reason)
	sections = append(sections, "")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
