package analytics

import (
	"cmp"
	"slices"

	"afi/internal/dataset/models"
)

// StateSummary is the mean score of one state.
type StateSummary struct {
	State         string  `json:"state"`
	MeanAFI       float64 `json:"meanAFI"`
	DistrictCount int     `json:"districtCount"`
}

type runningMean struct {
	total float64
	count int
}

func (m *runningMean) add(v float64) {
	m.total += v
	m.count++
}

func (m runningMean) mean() float64 {
	if m.count == 0 {
		return 0
	}
	return m.total / float64(m.count)
}

// StateSummaries averages the score per state and ranks states by
// descending mean. DistrictCount is the number of records, not of distinct
// districts.
func StateSummaries(records []models.Record) []StateSummary {
	stats := make(map[string]*runningMean)
	var order []string
	for _, r := range records {
		m, ok := stats[r.StateCanonical]
		if !ok {
			m = &runningMean{}
			stats[r.StateCanonical] = m
			order = append(order, r.StateCanonical)
		}
		m.add(r.AFICompositeScore)
	}

	out := make([]StateSummary, 0, len(order))
	for _, state := range order {
		m := stats[state]
		out = append(out, StateSummary{
			State:         state,
			MeanAFI:       round2(m.mean()),
			DistrictCount: m.count,
		})
	}
	slices.SortStableFunc(out, func(a, b StateSummary) int {
		return cmp.Compare(b.MeanAFI, a.MeanAFI)
	})
	return out
}
