package analytics

import (
	"slices"

	"afi/internal/dataset/models"
)

// NationalStats summarises the score distribution across every record.
type NationalStats struct {
	Median                float64 `json:"median"`
	P95                   float64 `json:"p95"`
	P99                   float64 `json:"p99"`
	Min                   float64 `json:"min"`
	Max                   float64 `json:"max"`
	TotalDistricts        int     `json:"totalDistricts"`
	HighFrictionDistricts int     `json:"highFrictionDistricts"`
}

// NationalStatistics computes nearest-rank statistics over the sorted scores:
// median is scores[n/2] (upper median for even n), p95 and p99 are
// scores[floor(n*q)]. HighFrictionDistricts counts distinct districts with at
// least one record strictly above scores[floor(n*0.9)]. Empty input yields
// the zero value.
func NationalStatistics(records []models.Record) NationalStats {
	n := len(records)
	if n == 0 {
		return NationalStats{}
	}

	scores := make([]float64, n)
	for i, r := range records {
		scores[i] = r.AFICompositeScore
	}
	slices.Sort(scores)

	p90 := scores[sampleIndex(n, 0.9)]
	districts := make(map[models.DistrictKey]struct{})
	high := make(map[models.DistrictKey]struct{})
	for _, r := range records {
		key := r.Key()
		districts[key] = struct{}{}
		if r.AFICompositeScore > p90 {
			high[key] = struct{}{}
		}
	}

	return NationalStats{
		Median:                scores[n/2],
		P95:                   scores[sampleIndex(n, 0.95)],
		P99:                   scores[sampleIndex(n, 0.99)],
		Min:                   scores[0],
		Max:                   scores[n-1],
		TotalDistricts:        len(districts),
		HighFrictionDistricts: len(high),
	}
}
