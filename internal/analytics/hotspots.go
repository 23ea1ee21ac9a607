package analytics

import (
	"cmp"
	"slices"

	"afi/internal/dataset/models"
)

// Hotspot limits.
const (
	DefaultHotspotLimit = 15
	MaxHotspotLimit     = 50
)

// Hotspot is a district ranked by mean score.
type Hotspot struct {
	State        string  `json:"state"`
	District     string  `json:"district"`
	MeanAFI      float64 `json:"meanAFI"`
	Observations int     `json:"observations"`
	AadhaarBase  *int64  `json:"aadhaar_base"`
}

type districtStats struct {
	key         models.DistrictKey
	score       runningMean
	aadhaarBase *int64
}

// DistrictHotspots averages the score per (state, district) and returns the
// top limit districts by descending mean. AadhaarBase is taken from the first
// record seen for each district and never re-aggregated. A non-positive
// limit yields an empty result.
func DistrictHotspots(records []models.Record, limit int) []Hotspot {
	if limit <= 0 {
		return []Hotspot{}
	}

	groups := make(map[models.DistrictKey]*districtStats)
	var order []*districtStats
	for _, r := range records {
		key := r.Key()
		g, ok := groups[key]
		if !ok {
			g = &districtStats{key: key, aadhaarBase: r.AadhaarBase}
			groups[key] = g
			order = append(order, g)
		}
		g.score.add(r.AFICompositeScore)
	}

	out := make([]Hotspot, 0, len(order))
	for _, g := range order {
		var base *int64
		if g.aadhaarBase != nil {
			v := *g.aadhaarBase
			base = &v
		}
		out = append(out, Hotspot{
			State:        g.key.State,
			District:     g.key.District,
			MeanAFI:      round2(g.score.mean()),
			Observations: g.score.count,
			AadhaarBase:  base,
		})
	}
	slices.SortStableFunc(out, func(a, b Hotspot) int {
		return cmp.Compare(b.MeanAFI, a.MeanAFI)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
