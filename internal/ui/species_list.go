package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/ngmaloney/bite-terminal/internal/models"
	"github.com/ngmaloney/bite-terminal/internal/species"
)

// speciesItem wraps a SpeciesProfile for use in a list
type speciesItem struct {
	profile models.SpeciesProfile
}

// FilterValue implements list.Item
func (s speciesItem) FilterValue() string {
	return s.profile.Name
}

// Title implements list.DefaultItem
func (s speciesItem) Title() string {
	return s.profile.Name
}

// Description implements list.DefaultItem
func (s speciesItem) Description() string {
	desc := fmt.Sprintf("%s, best near %.0f°C", s.profile.Behavior, s.profile.OptimumTemp)
	if s.profile.Nocturnal {
		desc += ", feeds at night"
	}
	return desc
}

// createSpeciesList creates the species picker with current highlighted
func createSpeciesList(reg *species.Registry, current string, width, height int) list.Model {
	names := reg.List()
	items := make([]list.Item, 0, len(names))
	for _, name := range names {
		p, err := reg.Lookup(name)
		if err != nil {
			continue
		}
		items = append(items, speciesItem{profile: p})
	}

	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = "Select a Species"
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle
	selectSpecies(&l, current)

	return l
}

// selectSpecies moves the cursor to name if it is listed
func selectSpecies(l *list.Model, name string) {
	for i, it := range l.Items() {
		if s, ok := it.(speciesItem); ok && s.profile.Name == name {
			l.Select(i)
			return
		}
	}
}
