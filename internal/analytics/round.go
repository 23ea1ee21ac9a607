package analytics

import "math"

// roundHalfAwayFromZero rounds to the nearest integer with halves moving away
// from zero. math.Round has exactly these semantics; the name pins them.
func roundHalfAwayFromZero(x float64) float64 {
	return math.Round(x)
}

// round2 rounds to two decimals as round(x*100)/100.
func round2(x float64) float64 {
	return roundHalfAwayFromZero(x*100) / 100
}

// sampleIndex returns floor(n*q) for the nearest-rank percentiles.
func sampleIndex(n int, q float64) int {
	return int(math.Floor(float64(n) * q))
}
