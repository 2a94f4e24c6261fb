package detect

import (
	"math"
	"sort"
	"time"

	"TrafficScope/internal/model"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultContamination is the fraction of records flagged as outliers
	// when the config does not override it.
	DefaultContamination = 0.05

	// MinRecords is the smallest dataset the detector will score. Below it
	// the covariance estimate is meaningless, so nothing is flagged.
	MinRecords = 10
)

// FeatureNames lists the engineered features, in matrix column order, used
// by the multivariate model. Returned to the caller for reporting.
var FeatureNames = []string{"Length", "ProtocolCode", "SourceRate"}

// FlagPackets scores every record with a multivariate outlier model and
// flags the floor(contamination * n) highest-scoring ones, ties broken by
// input order. The score is the Mahalanobis distance of the record's feature
// vector from the batch mean; when the covariance matrix is singular the
// score degrades to the Euclidean norm of per-feature z-scores over the
// non-constant features. Both paths are deterministic.
//
// The records are returned with SourceRate, Score, and Flagged populated,
// together with the feature names used.
func FlagPackets(records []model.TrafficRecord, contamination float64, minRecords int) ([]model.TrafficRecord, []string) {
	if contamination <= 0 || contamination >= 1 {
		contamination = DefaultContamination
	}
	if minRecords <= 0 {
		minRecords = MinRecords
	}

	attachSourceRates(records)

	n := len(records)
	if n < minRecords {
		return records, FeatureNames
	}

	features := featureMatrix(records)
	scores := mahalanobisScores(features, n)
	for i := range records {
		records[i].Score = scores[i]
	}

	flagCount := int(contamination * float64(n))
	if flagCount == 0 {
		return records, FeatureNames
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	for _, idx := range order[:flagCount] {
		records[idx].Flagged = true
	}
	return records, FeatureNames
}

// attachSourceRates computes the local frequency feature: for each record,
// the number of records sharing its source address within its minute window.
func attachSourceRates(records []model.TrafficRecord) {
	type key struct {
		source string
		window int64
	}
	counts := make(map[key]int, len(records))
	for _, r := range records {
		k := key{r.Source, r.Timestamp.UTC().Truncate(time.Minute).Unix()}
		counts[k]++
	}
	for i := range records {
		k := key{records[i].Source, records[i].Timestamp.UTC().Truncate(time.Minute).Unix()}
		records[i].SourceRate = counts[k]
	}
}

func featureMatrix(records []model.TrafficRecord) *mat.Dense {
	m := mat.NewDense(len(records), len(FeatureNames), nil)
	for i, r := range records {
		m.Set(i, 0, float64(r.Length))
		m.Set(i, 1, float64(r.Protocol))
		m.Set(i, 2, float64(r.SourceRate))
	}
	return m
}

func mahalanobisScores(features *mat.Dense, n int) []float64 {
	d := len(FeatureNames)

	means := make([]float64, d)
	for j := 0; j < d; j++ {
		means[j] = stat.Mean(mat.Col(nil, j, features), nil)
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, features, nil)

	var chol mat.Cholesky
	if chol.Factorize(&cov) {
		scores := make([]float64, n)
		diff := mat.NewVecDense(d, nil)
		var solved mat.VecDense
		for i := 0; i < n; i++ {
			for j := 0; j < d; j++ {
				diff.SetVec(j, features.At(i, j)-means[j])
			}
			if err := chol.SolveVecTo(&solved, diff); err != nil {
				return zScoreNorms(features, means, n)
			}
			scores[i] = math.Sqrt(mat.Dot(diff, &solved))
		}
		return scores
	}

	// Singular covariance, e.g. a constant feature column.
	return zScoreNorms(features, means, n)
}

// zScoreNorms is the degenerate-covariance fallback: standardize each
// feature independently and take the Euclidean norm of the z-scores,
// skipping constant features.
func zScoreNorms(features *mat.Dense, means []float64, n int) []float64 {
	d := len(means)
	sigmas := make([]float64, d)
	for j := 0; j < d; j++ {
		sigmas[j] = stat.StdDev(mat.Col(nil, j, features), nil)
	}

	scores := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j < d; j++ {
			if sigmas[j] == 0 || math.IsNaN(sigmas[j]) {
				continue
			}
			z := (features.At(i, j) - means[j]) / sigmas[j]
			sum += z * z
		}
		scores[i] = math.Sqrt(sum)
	}
	return scores
}
