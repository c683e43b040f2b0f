// Package wind buckets wind directions into compass arrows
package wind

import (
	"math"

	"github.com/ngmaloney/bite-terminal/internal/models"
)

// arrows is indexed by 45° bucket starting at 0°. The arrow points the way
// the wind blows toward, so a northerly (0°) is drawn pointing down.
var arrows = [8]models.WindArrow{"↓", "↙", "←", "↖", "↑", "↗", "→", "↘"}

// Classify maps a direction in degrees to its arrow. Bucket boundaries
// (22.5°, 67.5°, ...) round half to even.
func Classify(degrees float64) models.WindArrow {
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return arrows[0]
	}
	idx := int(math.Mod(math.RoundToEven(degrees/45), 8))
	if idx < 0 {
		idx += 8
	}
	return arrows[idx]
}

// Arrows returns the eight arrows in bucket order
func Arrows() []models.WindArrow {
	out := make([]models.WindArrow, len(arrows))
	copy(out, arrows[:])
	return out
}
