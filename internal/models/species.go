package models

// BehaviorType classifies how a species feeds
type BehaviorType string

const (
	Predator BehaviorType = "predator"
	Peaceful BehaviorType = "peaceful"
)

// SpeciesProfile holds the fixed behavioral parameters for one target species.
// Profiles are values and are never mutated after the registry is built.
type SpeciesProfile struct {
	Name        string
	Behavior    BehaviorType
	OptimumTemp float64 // °C where activity peaks
	Sigma       float64 // tolerance width around the optimum, °C
	MinTemp     float64 // below this the water is too cold, °C
	Nocturnal   bool    // activity rules invert between day and night
}

// IsPredator reports whether the species hunts other fish
func (p SpeciesProfile) IsPredator() bool {
	return p.Behavior == Predator
}
