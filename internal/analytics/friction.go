package analytics

// FrictionLevel bands a score for display.
type FrictionLevel string

const (
	FrictionLow    FrictionLevel = "low"
	FrictionMedium FrictionLevel = "medium"
	FrictionHigh   FrictionLevel = "high"
)

// Friction band edges.
const (
	mediumFrictionFloor = 50
	highFrictionFloor   = 100
)

// LevelOf returns the friction band of score.
func LevelOf(score float64) FrictionLevel {
	switch {
	case score < mediumFrictionFloor:
		return FrictionLow
	case score < highFrictionFloor:
		return FrictionMedium
	default:
		return FrictionHigh
	}
}
