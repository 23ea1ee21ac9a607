package analytics

import "afi/internal/dataset/models"

// decompositionStride keeps every 6th record for the scatter plots.
const decompositionStride = 6

// DecompositionRow breaks one record's score into its drivers.
type DecompositionRow struct {
	District     string  `json:"district"`
	State        string  `json:"state"`
	AFI          float64 `json:"afi"`
	BioIntensity float64 `json:"bio_intensity"`
	DemoPressure float64 `json:"demo_pressure"`
	AgeMismatch  float64 `json:"age_mismatch"`
	AadhaarBase  int64   `json:"aadhaar_base"`
}

// Decomposition samples records at positions 0, 6, 12, … of the input order
// and derives per-1000 intensities against aadhaar_base. Ratios with an
// absent or zero operand are 0.
func Decomposition(records []models.Record) []DecompositionRow {
	out := make([]DecompositionRow, 0, (len(records)+decompositionStride-1)/decompositionStride)
	for i := 0; i < len(records); i += decompositionStride {
		r := records[i]
		row := DecompositionRow{
			District:     r.DistrictClean,
			State:        r.StateCanonical,
			AFI:          r.AFICompositeScore,
			BioIntensity: perThousand(r.BioTotal, r.AadhaarBase),
			DemoPressure: perThousand(r.DemoTotal, r.AadhaarBase),
		}
		if r.AgeMismatchScore != nil {
			row.AgeMismatch = *r.AgeMismatchScore
		}
		if r.AadhaarBase != nil {
			row.AadhaarBase = *r.AadhaarBase
		}
		out = append(out, row)
	}
	return out
}

func perThousand(num, base *int64) float64 {
	if num == nil || base == nil || *num == 0 || *base == 0 {
		return 0
	}
	return float64(*num) / float64(*base) * 1000
}
