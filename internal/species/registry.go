// Package species provides the static table of target species profiles
package species

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ngmaloney/bite-terminal/internal/models"
)

// DefaultSpecies is selected when nothing else is configured
const DefaultSpecies = "Pike"

// ErrUnknownSpecies is returned when a lookup names a species that is not registered
var ErrUnknownSpecies = errors.New("unknown species")

// Registry is a read-only, ordered set of species profiles
type Registry struct {
	order    []string
	profiles map[string]models.SpeciesProfile
}

var builtin = []models.SpeciesProfile{
	{Name: "Pike", Behavior: models.Predator, OptimumTemp: 12.0, Sigma: 6.0, MinTemp: -5.0},
	{Name: "Zander", Behavior: models.Predator, OptimumTemp: 16.0, Sigma: 5.0, MinTemp: -2.0, Nocturnal: true},
	{Name: "Perch", Behavior: models.Predator, OptimumTemp: 16.0, Sigma: 7.0, MinTemp: -5.0},
	{Name: "Eel", Behavior: models.Predator, OptimumTemp: 22.0, Sigma: 4.0, MinTemp: 8.0, Nocturnal: true},
	{Name: "Carp", Behavior: models.Peaceful, OptimumTemp: 20.0, Sigma: 3.0, MinTemp: 5.0},
	{Name: "Bream", Behavior: models.Peaceful, OptimumTemp: 18.0, Sigma: 4.0, MinTemp: 2.0},
	{Name: "Tench", Behavior: models.Peaceful, OptimumTemp: 23.0, Sigma: 3.0, MinTemp: 8.0},
	{Name: "Roach", Behavior: models.Peaceful, OptimumTemp: 14.0, Sigma: 6.0, MinTemp: -5.0},
}

// Default returns the registry of built-in freshwater species
func Default() *Registry {
	r, err := New(builtin...)
	if err != nil {
		panic(fmt.Sprintf("species: invalid builtin table: %v", err))
	}
	return r
}

// New builds a registry from the given profiles, keeping their order
func New(profiles ...models.SpeciesProfile) (*Registry, error) {
	r := &Registry{
		order:    make([]string, 0, len(profiles)),
		profiles: make(map[string]models.SpeciesProfile, len(profiles)),
	}

	for _, p := range profiles {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("species profile with empty name")
		}
		if p.Sigma <= 0 {
			return nil, fmt.Errorf("species %s: sigma must be positive, got %v", p.Name, p.Sigma)
		}
		if p.Behavior != models.Predator && p.Behavior != models.Peaceful {
			return nil, fmt.Errorf("species %s: invalid behavior %q", p.Name, p.Behavior)
		}
		key := normalize(p.Name)
		if _, exists := r.profiles[key]; exists {
			return nil, fmt.Errorf("duplicate species %s", p.Name)
		}
		r.profiles[key] = p
		r.order = append(r.order, p.Name)
	}

	return r, nil
}

// Lookup returns the profile for name (case-insensitive)
func (r *Registry) Lookup(name string) (models.SpeciesProfile, error) {
	p, ok := r.profiles[normalize(name)]
	if !ok {
		return models.SpeciesProfile{}, fmt.Errorf("%w: %q", ErrUnknownSpecies, name)
	}
	return p, nil
}

// List returns species names in registry order
func (r *Registry) List() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
