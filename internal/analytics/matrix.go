package analytics

import (
	"cmp"
	"encoding/json"
	"slices"

	"afi/internal/dataset/models"
)

// matrixStates caps the matrix to the busiest states.
const matrixStates = 10

// MatrixRow is one state's typology mix over the fixed typology columns.
type MatrixRow struct {
	State  string
	Counts models.TypologyCounts
}

// MarshalJSON flattens the row to {"state": ..., "<label>": n, ...}.
func (r MatrixRow) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Counts)+1)
	for _, t := range models.Typologies() {
		m[t.String()] = r.Counts.Get(t)
	}
	m["state"] = r.State
	return json.Marshal(m)
}

type stateMix struct {
	state  string
	total  int
	counts models.TypologyCounts
}

// StateTypologyMatrix ranks states by labelled observation count and emits
// the top ten with one column per known typology. Labels outside the known
// set count toward the ranking total but never get a column; unlabelled
// records are ignored.
func StateTypologyMatrix(records []models.Record) []MatrixRow {
	mixes := make(map[string]*stateMix)
	var order []*stateMix
	for _, r := range records {
		name, ok := r.Typology()
		if !ok {
			continue
		}
		mix, seen := mixes[r.StateCanonical]
		if !seen {
			mix = &stateMix{state: r.StateCanonical}
			mixes[r.StateCanonical] = mix
			order = append(order, mix)
		}
		mix.total++
		if t, known := models.ParseTypology(name); known {
			mix.counts[t]++
		}
	}

	slices.SortStableFunc(order, func(a, b *stateMix) int {
		return cmp.Compare(b.total, a.total)
	})
	if len(order) > matrixStates {
		order = order[:matrixStates]
	}

	out := make([]MatrixRow, 0, len(order))
	for _, mix := range order {
		out = append(out, MatrixRow{State: mix.state, Counts: mix.counts})
	}
	return out
}
