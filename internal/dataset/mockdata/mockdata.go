// Package mockdata generates the deterministic demonstration dataset served
// while the store is empty.
package mockdata

import (
	"cmp"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"afi/internal/dataset/models"
)

// DefaultSeed produces the dataset served by the dashboard.
const DefaultSeed uint64 = 20250101

var periods = []string{"2025-01", "2025-02", "2025-03"}

var districts = map[string][]string{
	"Uttar Pradesh":  {"Lucknow", "Kanpur Nagar", "Varanasi", "Gorakhpur", "Bahraich", "Shravasti"},
	"Bihar":          {"Patna", "Gaya", "Muzaffarpur", "Araria", "Kishanganj"},
	"Maharashtra":    {"Mumbai Suburban", "Pune", "Nagpur", "Nandurbar", "Gadchiroli"},
	"West Bengal":    {"Kolkata", "Murshidabad", "Malda", "Purulia"},
	"Rajasthan":      {"Jaipur", "Barmer", "Jaisalmer", "Dungarpur"},
	"Madhya Pradesh": {"Indore", "Bhopal", "Jhabua", "Alirajpur"},
	"Tamil Nadu":     {"Chennai", "Coimbatore", "Madurai"},
	"Karnataka":      {"Bengaluru Urban", "Mysuru", "Raichur"},
	"Kerala":         {"Thiruvananthapuram", "Ernakulam", "Wayanad"},
	"Assam":          {"Kamrup Metropolitan", "Dhubri", "Barpeta"},
	"Jharkhand":      {"Ranchi", "Pakur", "Sahebganj"},
	"Odisha":         {"Khordha", "Malkangiri", "Nabarangpur"},
	"Delhi":          {"New Delhi", "North East Delhi"},
}

// scoreBand is the [lo, hi) AFI range a typology draws from.
var scoreBand = map[models.Typology][2]float64{
	models.TypologyBiometricStress:    {120, 240},
	models.TypologyDocumentationHeavy: {80, 150},
	models.TypologyTransitionBacklog:  {55, 110},
	models.TypologyLowFrictionStable:  {8, 50},
	models.TypologyHighVolumeUrban:    {45, 95},
}

// Records returns the default mock dataset.
func Records() []models.Record {
	return Generate(DefaultSeed)
}

// Generate builds one record per district and period, ordered by descending
// score like a store query. Equal seeds give equal datasets.
func Generate(seed uint64) []models.Record {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	states := make([]string, 0, len(districts))
	for s := range districts {
		states = append(states, s)
	}
	slices.Sort(states)

	var out []models.Record
	for _, state := range states {
		for d, district := range districts[state] {
			typ := models.Typologies()[rng.IntN(len(models.Typologies()))]
			band := scoreBand[typ]
			base := int64(200_000 + rng.IntN(4_800_000))
			clusterID := int(typ)
			label := typ.String()
			pincode := fmt.Sprintf("%03d%03d", 110+len(out)%700, d)

			for _, period := range periods {
				score := band[0] + rng.Float64()*(band[1]-band[0])
				bio := scaled(base, rng.Float64()*0.02*score/100)
				demo := scaled(base, rng.Float64()*0.015*score/100)
				enrol := scaled(base, rng.Float64()*0.004)
				mismatch := roundTo(rng.Float64()*0.3, 3)

				r := models.Record{
					Period:            period,
					StateCanonical:    state,
					DistrictClean:     district,
					Pincode:           models.Ptr(pincode),
					AFICompositeScore: roundTo(score, 2),
					EnrolTotal:        models.Ptr(enrol),
					DemoTotal:         models.Ptr(demo),
					BioTotal:          models.Ptr(bio),
					AadhaarBase:       models.Ptr(base),
					AgeMismatchScore:  models.Ptr(mismatch),
					ClusterID:         models.Ptr(clusterID),
					ClusterName:       models.Ptr(label),
				}
				// A few rows stay unclassified, as in real pipeline output.
				if rng.IntN(20) == 0 {
					r.ClusterID, r.ClusterName = nil, nil
				}
				out = append(out, r)
			}
		}
	}

	slices.SortStableFunc(out, func(a, b models.Record) int {
		return cmp.Compare(b.AFICompositeScore, a.AFICompositeScore)
	})
	for i := range out {
		out[i].ID = fmt.Sprintf("mock-%d", i)
	}
	return out
}

func scaled(base int64, rate float64) int64 {
	return int64(float64(base) * rate)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
