package models

import "encoding/json"

// Typology is the closed set of cluster labels surfaced by the state matrix.
type Typology int

const (
	TypologyBiometricStress Typology = iota
	TypologyDocumentationHeavy
	TypologyTransitionBacklog
	TypologyLowFrictionStable
	TypologyHighVolumeUrban

	typologyCount
)

type typologyInfo struct {
	label       string
	description string
}

var typologies = [typologyCount]typologyInfo{
	TypologyBiometricStress: {
		label:       "Biometric-Stress Districts",
		description: "High biometric update demand - need equipment upgrades and more operators",
	},
	TypologyDocumentationHeavy: {
		label:       "Documentation-Heavy Districts",
		description: "High demographic correction rates - may indicate data quality issues at enrolment",
	},
	TypologyTransitionBacklog: {
		label:       "Transition-Backlog Districts",
		description: "Age-related update backlogs - need school-based update camps",
	},
	TypologyLowFrictionStable: {
		label:       "Low-Friction Stable Districts",
		description: "Well-functioning Aadhaar ecosystem - best practices to be studied",
	},
	TypologyHighVolumeUrban: {
		label:       "High-Volume Urban Districts",
		description: "High volume with moderate friction - capacity scaling needed",
	},
}

// Typologies lists the known typologies in column order.
func Typologies() []Typology {
	out := make([]Typology, typologyCount)
	for i := range out {
		out[i] = Typology(i)
	}
	return out
}

// ParseTypology resolves a cluster label to a known typology. Unknown labels
// report false.
func ParseTypology(label string) (Typology, bool) {
	for i, info := range typologies {
		if info.label == label {
			return Typology(i), true
		}
	}
	return 0, false
}

// Valid reports whether t is one of the known typologies.
func (t Typology) Valid() bool {
	return t >= 0 && t < typologyCount
}

// String returns the typology label.
func (t Typology) String() string {
	if !t.Valid() {
		return "unknown"
	}
	return typologies[t].label
}

// Description returns the recommended-intervention text for t.
func (t Typology) Description() string {
	if !t.Valid() {
		return ""
	}
	return typologies[t].description
}

// TypologyCounts holds one count per known typology; absent combinations
// stay at zero.
type TypologyCounts [typologyCount]int

// Get returns the count for t.
func (c TypologyCounts) Get(t Typology) int {
	if !t.Valid() {
		return 0
	}
	return c[t]
}

// Total sums every column.
func (c TypologyCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// MarshalJSON renders the counts as an object keyed by typology label.
func (c TypologyCounts) MarshalJSON() ([]byte, error) {
	m := make(map[string]int, typologyCount)
	for i, n := range c {
		m[typologies[i].label] = n
	}
	return json.Marshal(m)
}
