package analytics

import (
	"cmp"
	"slices"

	"afi/internal/dataset/models"
)

// TypologySummary counts records carrying one cluster label.
type TypologySummary struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TypologySummaries counts records per non-empty cluster label, largest
// first. Records without a label are left out entirely.
func TypologySummaries(records []models.Record) []TypologySummary {
	counts := make(map[string]int)
	var order []string
	for _, r := range records {
		name, ok := r.Typology()
		if !ok {
			continue
		}
		if _, seen := counts[name]; !seen {
			order = append(order, name)
		}
		counts[name]++
	}

	out := make([]TypologySummary, 0, len(order))
	for _, name := range order {
		out = append(out, TypologySummary{Name: name, Count: counts[name]})
	}
	slices.SortStableFunc(out, func(a, b TypologySummary) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return out
}
