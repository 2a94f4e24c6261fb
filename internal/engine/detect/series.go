package detect

import (
	"math"

	"TrafficScope/internal/model"

	"gonum.org/v1/gonum/stat"
)

// SigmaMultiplier is the default k in the series rule: a bucket is anomalous
// when |count - mean| > k * stddev of its own series.
const SigmaMultiplier = 3.0

// FlagSeries evaluates the z-score rule over one bucket series and sets the
// anomaly flag and exceeded bound on each flagged point. Each granularity is
// evaluated independently; no threshold state is shared between series.
// A constant series (sigma == 0) or a series with fewer than two buckets
// flags nothing.
func FlagSeries(series *model.TrafficSeries, k float64) {
	if k <= 0 {
		k = SigmaMultiplier
	}
	n := len(series.Points)
	if n < 2 {
		return
	}

	counts := make([]float64, n)
	for i, p := range series.Points {
		counts[i] = float64(p.Count)
	}

	mean, sigma := stat.MeanStdDev(counts, nil)
	if sigma == 0 || math.IsNaN(sigma) {
		return
	}

	limit := k * sigma
	for i := range series.Points {
		deviation := counts[i] - mean
		if math.Abs(deviation) > limit {
			series.Points[i].Anomaly = true
			if deviation > 0 {
				series.Points[i].Bound = mean + limit
			} else {
				series.Points[i].Bound = mean - limit
			}
		}
	}
}
