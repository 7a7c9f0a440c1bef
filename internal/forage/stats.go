package forage

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/pastizal/api/internal/models"
)

// Summary aggregates one metric over the sub-lots of an analysis.
type Summary struct {
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
}

// Summarize computes mean, min, max, and (sample) standard deviation of the
// given values. Returns the zero Summary for an empty slice.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	s := Summary{
		Mean: stat.Mean(values, nil),
		Min:  min,
		Max:  max,
	}
	if len(values) > 1 {
		s.StdDev = stat.StdDev(values, nil)
	}
	return s
}

// SummarizeEstimates collects NDVI and available-biomass summaries across
// the sub-lot estimates of one analysis run.
func SummarizeEstimates(estimates []models.BiomassEstimate) (ndvi, available Summary) {
	ndviVals := make([]float64, 0, len(estimates))
	availVals := make([]float64, 0, len(estimates))
	for _, e := range estimates {
		ndviVals = append(ndviVals, e.NDVI)
		availVals = append(availVals, e.AvailableKgHa)
	}
	return Summarize(ndviVals), Summarize(availVals)
}

// AgreementScore measures how well modeled index values track a set of
// reference (satellite) values: 1 - mean|model-reference| / mean(reference).
// A perfect match scores 1; the score is clamped at 0. Returns 0 when the
// inputs are empty, mismatched in length, or the reference mean is not
// positive.
func AgreementScore(reference, modeled []float64) float64 {
	if len(reference) == 0 || len(reference) != len(modeled) {
		return 0
	}

	refMean := stat.Mean(reference, nil)
	if refMean <= 0 {
		return 0
	}

	diffs := make([]float64, len(reference))
	for i := range reference {
		diffs[i] = math.Abs(modeled[i] - reference[i])
	}

	score := 1 - stat.Mean(diffs, nil)/refMean
	if score < 0 {
		return 0
	}
	return score
}
