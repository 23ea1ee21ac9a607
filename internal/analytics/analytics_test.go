package analytics

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"afi/internal/dataset/models"
)

// =============================================================================
// Aggregation Test Suite
// =============================================================================
// Every view is a pure function of the record slice; these tests pin the
// rounding, tie-break, bucketing and percentile conventions the dashboard
// depends on for parity with previously published figures.

type AnalyticsSuite struct {
	suite.Suite
}

func TestAnalyticsSuite(t *testing.T) {
	suite.Run(t, new(AnalyticsSuite))
}

func rec(state, district string, score float64) models.Record {
	return models.Record{
		Period:            "2025-01",
		StateCanonical:    state,
		DistrictClean:     district,
		AFICompositeScore: score,
	}
}

func withCluster(r models.Record, name string) models.Record {
	r.ClusterName = models.Ptr(name)
	return r
}

// =============================================================================
// State Summary
// =============================================================================

func (s *AnalyticsSuite) TestStateSummaries() {
	s.Run("means and ranks states", func() {
		data := []models.Record{rec("A", "a1", 40), rec("A", "a2", 60), rec("B", "b1", 100)}

		got := StateSummaries(data)

		s.Equal([]StateSummary{
			{State: "B", MeanAFI: 100, DistrictCount: 1},
			{State: "A", MeanAFI: 50, DistrictCount: 2},
		}, got)
	})

	s.Run("rounds to two decimals half away from zero", func() {
		// 10.125 is exact in binary, so x*100 lands on a true half.
		data := []models.Record{rec("A", "a", 10.125), rec("A", "a", 10.125), rec("B", "b", 1.0/3)}

		got := StateSummaries(data)

		s.Equal(10.13, got[0].MeanAFI)
		s.Equal(0.33, got[1].MeanAFI)
	})

	s.Run("ties keep first encounter order", func() {
		data := []models.Record{rec("C", "c", 50), rec("A", "a", 50), rec("B", "b", 50)}

		got := StateSummaries(data)

		s.Equal([]string{"C", "A", "B"}, []string{got[0].State, got[1].State, got[2].State})
	})

	s.Run("keys compare exactly", func() {
		data := []models.Record{rec("Bihar", "x", 1), rec("bihar", "x", 2), rec("Bihar ", "x", 3)}

		s.Len(StateSummaries(data), 3)
	})

	s.Run("empty input", func() {
		got := StateSummaries(nil)
		s.NotNil(got)
		s.Empty(got)
	})
}

// =============================================================================
// Typology Summary
// =============================================================================

func (s *AnalyticsSuite) TestTypologySummaries() {
	data := []models.Record{
		withCluster(rec("A", "a", 1), "Doc"),
		withCluster(rec("A", "b", 1), "Bio"),
		withCluster(rec("A", "c", 1), "Bio"),
		rec("A", "d", 1),
		withCluster(rec("A", "e", 1), ""),
		withCluster(rec("A", "f", 1), "Urban"),
	}

	got := TypologySummaries(data)

	s.Equal([]TypologySummary{
		{Name: "Bio", Count: 2},
		{Name: "Doc", Count: 1},
		{Name: "Urban", Count: 1},
	}, got)
	s.Empty(TypologySummaries(nil))
}

// =============================================================================
// District Hotspots
// =============================================================================

func (s *AnalyticsSuite) TestDistrictHotspots() {
	s.Run("groups by composite key and keeps first aadhaar base", func() {
		first := rec("A", "x", 100)
		first.AadhaarBase = models.Ptr[int64](5000)
		second := rec("A", "x", 50)
		second.AadhaarBase = models.Ptr[int64](9000)
		otherState := rec("B", "x", 10)

		got := DistrictHotspots([]models.Record{first, second, otherState}, DefaultHotspotLimit)

		s.Require().Len(got, 2)
		s.Equal("A", got[0].State)
		s.Equal("x", got[0].District)
		s.Equal(75.0, got[0].MeanAFI)
		s.Equal(2, got[0].Observations)
		s.Require().NotNil(got[0].AadhaarBase)
		s.Equal(int64(5000), *got[0].AadhaarBase)
		s.Nil(got[1].AadhaarBase)
	})

	s.Run("absent first base is not replaced by later records", func() {
		first := rec("A", "x", 1)
		later := rec("A", "x", 1)
		later.AadhaarBase = models.Ptr[int64](10)

		got := DistrictHotspots([]models.Record{first, later}, 5)

		s.Nil(got[0].AadhaarBase)
	})

	s.Run("truncates to limit and tolerates fewer groups", func() {
		var data []models.Record
		for i := 0; i < 20; i++ {
			data = append(data, rec("S", fmt.Sprintf("d%02d", i), float64(i)))
		}

		top := DistrictHotspots(data, 3)
		s.Len(top, 3)
		s.Equal([]float64{19, 18, 17}, []float64{top[0].MeanAFI, top[1].MeanAFI, top[2].MeanAFI})

		s.Len(DistrictHotspots(data, MaxHotspotLimit), 20)
		s.Empty(DistrictHotspots(data, 0))
	})

	s.Run("sorted non-increasing", func() {
		data := mockLikeRecords()
		got := DistrictHotspots(data, MaxHotspotLimit)
		for i := 1; i < len(got); i++ {
			s.GreaterOrEqual(got[i-1].MeanAFI, got[i].MeanAFI)
		}
	})
}

// =============================================================================
// Distribution
// =============================================================================

func (s *AnalyticsSuite) TestAFIDistribution() {
	s.Run("half-open buckets without overflow", func() {
		data := []models.Record{rec("A", "a", 0), rec("A", "a", 19.999), rec("A", "a", 20), rec("A", "a", 199.9)}

		got := AFIDistribution(data)

		s.Len(got, 10)
		s.Equal("0-20", got[0].Range)
		s.Equal(2, got[0].Count)
		s.Equal(1, got[1].Count)
		s.Equal("180-200", got[9].Range)
		s.Equal(1, got[9].Count)
	})

	s.Run("overflow bucket appended when a score reaches 200", func() {
		data := []models.Record{rec("A", "a", 200), rec("A", "a", 950), rec("A", "a", 5)}

		got := AFIDistribution(data)

		s.Require().Len(got, 11)
		last := got[10]
		s.Equal("200+", last.Range)
		s.Equal(2, last.Count)
		s.Equal(200.0, last.Min)
		s.Nil(last.Max)
	})

	s.Run("counts sum to record count", func() {
		data := mockLikeRecords()
		total := 0
		for _, b := range AFIDistribution(data) {
			total += b.Count
		}
		s.Equal(len(data), total)
	})

	s.Run("empty input still emits ten zero buckets", func() {
		got := AFIDistribution(nil)
		s.Len(got, 10)
		for _, b := range got {
			s.Zero(b.Count)
		}
	})
}

// =============================================================================
// National Statistics
// =============================================================================

func (s *AnalyticsSuite) TestNationalStatistics() {
	s.Run("empty input is the zero baseline", func() {
		s.Equal(NationalStats{}, NationalStatistics(nil))
		s.Equal(NationalStats{}, NationalStatistics([]models.Record{}))
	})

	s.Run("upper median and nearest-rank percentiles", func() {
		var data []models.Record
		for i := 1; i <= 20; i++ {
			data = append(data, rec("S", fmt.Sprintf("d%d", i%4), float64(i)))
		}

		got := NationalStatistics(data)

		s.Equal(11.0, got.Median, "scores[20/2] is the upper median")
		s.Equal(20.0, got.P95, "scores[floor(20*0.95)] = scores[19]")
		s.Equal(20.0, got.P99, "scores[floor(20*0.99)] = scores[19]")
		s.Equal(1.0, got.Min)
		s.Equal(20.0, got.Max)
		s.Equal(4, got.TotalDistricts)
		// p90 = scores[18] = 19; only the score 20 record (d0) exceeds it.
		s.Equal(1, got.HighFrictionDistricts)
	})

	s.Run("high friction dedupes districts across periods", func() {
		var data []models.Record
		for i := 0; i < 28; i++ {
			data = append(data, rec("A", "cold", 1))
		}
		data = append(data, rec("A", "hot", 500), rec("A", "hot", 600))

		got := NationalStatistics(data)

		// p90 = scores[floor(30*0.9)] = scores[27] = 1; both hot records exceed it.
		s.Equal(1, got.HighFrictionDistricts)
		s.Equal(2, got.TotalDistricts)
	})

	s.Run("single record", func() {
		got := NationalStatistics([]models.Record{rec("A", "a", 42)})
		s.Equal(NationalStats{Median: 42, P95: 42, P99: 42, Min: 42, Max: 42, TotalDistricts: 1}, got)
	})

	s.Run("does not reorder input", func() {
		data := []models.Record{rec("A", "a", 3), rec("A", "b", 1), rec("A", "c", 2)}
		NationalStatistics(data)
		s.Equal([]float64{3, 1, 2}, []float64{data[0].AFICompositeScore, data[1].AFICompositeScore, data[2].AFICompositeScore})
	})
}

// =============================================================================
// Decomposition
// =============================================================================

func (s *AnalyticsSuite) TestDecomposition() {
	s.Run("stride of six from position zero", func() {
		var data []models.Record
		for i := 0; i < 13; i++ {
			data = append(data, rec("S", fmt.Sprintf("d%d", i), float64(i)))
		}

		got := Decomposition(data)

		s.Len(got, 3, "ceil(13/6)")
		s.Equal([]string{"d0", "d6", "d12"}, []string{got[0].District, got[1].District, got[2].District})
		s.Len(Decomposition(data[:12]), 2)
		s.Empty(Decomposition(nil))
	})

	s.Run("per thousand intensities", func() {
		r := rec("S", "d", 80)
		r.BioTotal = models.Ptr[int64](50)
		r.DemoTotal = models.Ptr[int64](20)
		r.AadhaarBase = models.Ptr[int64](10000)
		r.AgeMismatchScore = models.Ptr(0.4)

		got := Decomposition([]models.Record{r})[0]

		s.InDelta(5.0, got.BioIntensity, 1e-9)
		s.InDelta(2.0, got.DemoPressure, 1e-9)
		s.Equal(0.4, got.AgeMismatch)
		s.Equal(int64(10000), got.AadhaarBase)
		s.Equal(80.0, got.AFI)
	})

	s.Run("absent or zero operands degrade to zero", func() {
		noBase := rec("S", "d", 1)
		noBase.BioTotal = models.Ptr[int64](50)
		zeroBase := rec("S", "d", 1)
		zeroBase.DemoTotal = models.Ptr[int64](5)
		zeroBase.AadhaarBase = models.Ptr[int64](0)

		for _, r := range []models.Record{noBase, zeroBase} {
			got := Decomposition([]models.Record{r})[0]
			s.Zero(got.BioIntensity)
			s.Zero(got.DemoPressure)
			s.Zero(got.AgeMismatch)
			s.Zero(got.AadhaarBase)
		}
	})
}

// =============================================================================
// State × Typology Matrix
// =============================================================================

func (s *AnalyticsSuite) TestStateTypologyMatrix() {
	bio := models.TypologyBiometricStress.String()
	urban := models.TypologyHighVolumeUrban.String()

	s.Run("fixed columns with unknown labels counted for ranking only", func() {
		data := []models.Record{
			withCluster(rec("A", "a", 1), bio),
			withCluster(rec("B", "b", 1), urban),
			withCluster(rec("B", "b", 1), "Stable & Low Friction"),
			withCluster(rec("B", "b", 1), "Stable & Low Friction"),
			rec("C", "c", 1),
		}

		got := StateTypologyMatrix(data)

		s.Require().Len(got, 2)
		s.Equal("B", got[0].State)
		s.Equal(1, got[0].Counts.Get(models.TypologyHighVolumeUrban))
		s.Equal(1, got[0].Counts.Total(), "unknown labels never surface")
		s.Equal("A", got[1].State)
		s.Equal(1, got[1].Counts.Get(models.TypologyBiometricStress))
	})

	s.Run("keeps top ten states", func() {
		var data []models.Record
		for i := 0; i < 12; i++ {
			for j := 0; j <= i; j++ {
				data = append(data, withCluster(rec(fmt.Sprintf("S%02d", i), "d", 1), bio))
			}
		}

		got := StateTypologyMatrix(data)

		s.Len(got, 10)
		s.Equal("S11", got[0].State)
		s.Equal("S02", got[9].State)
		for i := 1; i < len(got); i++ {
			s.GreaterOrEqual(got[i-1].Counts.Total(), got[i].Counts.Total())
		}
	})

	s.Run("rows marshal flat with every column", func() {
		row := StateTypologyMatrix([]models.Record{withCluster(rec("A", "a", 1), bio)})[0]
		raw, err := json.Marshal(row)
		s.Require().NoError(err)

		var decoded map[string]any
		s.Require().NoError(json.Unmarshal(raw, &decoded))
		s.Len(decoded, 6)
		s.Equal("A", decoded["state"])
		s.Equal(1.0, decoded[bio])
		s.Equal(0.0, decoded[urban])
	})
}

// =============================================================================
// Cross-cutting properties
// =============================================================================

func (s *AnalyticsSuite) TestIdempotence() {
	data := mockLikeRecords()

	s.Equal(StateSummaries(data), StateSummaries(data))
	s.Equal(TypologySummaries(data), TypologySummaries(data))
	s.Equal(DistrictHotspots(data, 15), DistrictHotspots(data, 15))
	s.Equal(AFIDistribution(data), AFIDistribution(data))
	s.Equal(NationalStatistics(data), NationalStatistics(data))
	s.Equal(Decomposition(data), Decomposition(data))
	s.Equal(StateTypologyMatrix(data), StateTypologyMatrix(data))
}

func (s *AnalyticsSuite) TestStateSummarySortedNonIncreasing() {
	got := StateSummaries(mockLikeRecords())
	for i := 1; i < len(got); i++ {
		s.GreaterOrEqual(got[i-1].MeanAFI, got[i].MeanAFI)
	}
}

func (s *AnalyticsSuite) TestLevelOf() {
	s.Equal(FrictionLow, LevelOf(0))
	s.Equal(FrictionLow, LevelOf(49.99))
	s.Equal(FrictionMedium, LevelOf(50))
	s.Equal(FrictionMedium, LevelOf(99.99))
	s.Equal(FrictionHigh, LevelOf(100))
}

// mockLikeRecords builds a varied dataset with repeated districts, every
// typology, unknown labels and overflow scores.
func mockLikeRecords() []models.Record {
	labels := []string{
		models.TypologyBiometricStress.String(),
		models.TypologyDocumentationHeavy.String(),
		models.TypologyTransitionBacklog.String(),
		models.TypologyLowFrictionStable.String(),
		models.TypologyHighVolumeUrban.String(),
		"Legacy Label",
		"",
	}
	var out []models.Record
	for i := 0; i < 240; i++ {
		r := rec(fmt.Sprintf("State-%d", i%13), fmt.Sprintf("District-%d", i%37), float64((i*37)%260)+0.25*float64(i%4))
		if label := labels[i%len(labels)]; label != "" {
			r = withCluster(r, label)
		}
		if i%3 != 0 {
			r.AadhaarBase = models.Ptr(int64(1000 + i))
			r.BioTotal = models.Ptr(int64(i))
		}
		out = append(out, r)
	}
	return out
}
