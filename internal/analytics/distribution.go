package analytics

import (
	"strconv"

	"afi/internal/dataset/models"
)

// bucketBounds are the contiguous half-open [min,max) histogram edges.
var bucketBounds = []float64{0, 20, 40, 60, 80, 100, 120, 140, 160, 180, 200}

// overflowFloor opens the synthetic "200+" bucket.
const overflowFloor = 200

// Bucket is one histogram bin. Max is nil for the open-ended overflow bin.
type Bucket struct {
	Range string   `json:"range"`
	Count int      `json:"count"`
	Min   float64  `json:"min"`
	Max   *float64 `json:"max"`
}

// AFIDistribution counts records into the fixed score buckets. The "200+"
// bucket is appended only when at least one score reaches 200.
func AFIDistribution(records []models.Record) []Bucket {
	out := make([]Bucket, 0, len(bucketBounds))
	for i := 0; i < len(bucketBounds)-1; i++ {
		lo, hi := bucketBounds[i], bucketBounds[i+1]
		out = append(out, Bucket{
			Range: formatBound(lo) + "-" + formatBound(hi),
			Min:   lo,
			Max:   &hi,
		})
	}

	overflow := 0
	for _, r := range records {
		score := r.AFICompositeScore
		if score >= overflowFloor {
			overflow++
			continue
		}
		for i := range out {
			if score >= out[i].Min && score < *out[i].Max {
				out[i].Count++
				break
			}
		}
	}

	if overflow > 0 {
		out = append(out, Bucket{Range: "200+", Count: overflow, Min: overflowFloor})
	}
	return out
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
