// Package sampling implements class balancing for the heavily imbalanced
// light-curve training set: SMOTE-style minority synthesis and random
// train/test partitioning.
package sampling

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/bits-and-bytess/ExoplanetDetect/core/parallel"
	"github.com/bits-and-bytess/ExoplanetDetect/pkg/errors"
)

// SMOTE synthesizes minority-class rows by interpolating between each
// minority row and one of its nearest minority neighbours, until both classes
// are equal in count. Original rows are preserved unchanged; synthetic rows
// are appended.
type SMOTE struct {
	// KNeighbors is the neighbourhood size for interpolation partners.
	// Capped at minorityCount-1.
	KNeighbors int

	rng *rand.Rand
}

// NewSMOTE creates a balancer with the given neighbourhood size and seed.
func NewSMOTE(kNeighbors int, seed uint64) *SMOTE {
	if kNeighbors <= 0 {
		kNeighbors = 5
	}
	return &SMOTE{
		KNeighbors: kNeighbors,
		rng:        rand.New(rand.NewPCG(seed, seed)),
	}
}

// Resample returns a balanced copy of (X, y). Labels must be binary 0/1.
// Balancing with fewer than two minority rows is undefined and fails.
func (s *SMOTE) Resample(X *mat.Dense, y *mat.VecDense) (*mat.Dense, *mat.VecDense, error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, nil, errors.Wrap(errors.ErrEmptyData, "SMOTE.Resample")
	}
	if y.Len() != r {
		return nil, nil, errors.NewShapeMismatchError("SMOTE.Resample", r, y.Len(), 0)
	}

	var minorityIdx, majorityIdx []int
	for i := 0; i < r; i++ {
		switch y.AtVec(i) {
		case 0:
			majorityIdx = append(majorityIdx, i)
		case 1:
			minorityIdx = append(minorityIdx, i)
		default:
			return nil, nil, errors.NewValueError("SMOTE.Resample", "labels must be binary 0/1")
		}
	}
	minorityLabel := 1.0
	if len(minorityIdx) > len(majorityIdx) {
		minorityIdx, majorityIdx = majorityIdx, minorityIdx
		minorityLabel = 0.0
	}

	need := len(majorityIdx) - len(minorityIdx)
	if need == 0 {
		return mat.DenseCopyOf(X), mat.VecDenseCopyOf(y), nil
	}
	if len(minorityIdx) < 2 {
		return nil, nil, errors.NewInsufficientDataError("SMOTE.Resample", 2, len(minorityIdx), "minority samples")
	}

	k := s.KNeighbors
	if k > len(minorityIdx)-1 {
		k = len(minorityIdx) - 1
	}

	minority := make([][]float64, len(minorityIdx))
	for i, idx := range minorityIdx {
		minority[i] = mat.Row(nil, idx, X)
	}

	neighbours := nearestNeighbours(minority, k)

	out := mat.NewDense(r+need, c, nil)
	outY := mat.NewVecDense(r+need, nil)
	for i := 0; i < r; i++ {
		out.SetRow(i, mat.Row(nil, i, X))
		outY.SetVec(i, y.AtVec(i))
	}

	synth := make([]float64, c)
	for n := 0; n < need; n++ {
		base := s.rng.IntN(len(minority))
		partner := minority[neighbours[base][s.rng.IntN(k)]]
		gap := s.rng.Float64()

		for j := 0; j < c; j++ {
			synth[j] = minority[base][j] + gap*(partner[j]-minority[base][j])
		}
		out.SetRow(r+n, synth)
		outY.SetVec(r+n, minorityLabel)
	}

	return out, outY, nil
}

// nearestNeighbours returns, for each row, the indices of its k nearest
// other rows by Euclidean distance.
func nearestNeighbours(rows [][]float64, k int) [][]int {
	m := len(rows)
	result := make([][]int, m)

	parallel.ParallelizeWithThreshold(m, 16, func(start, end int) {
		type distIdx struct {
			dist float64
			idx  int
		}
		dists := make([]distIdx, 0, m-1)

		for i := start; i < end; i++ {
			dists = dists[:0]
			for j := 0; j < m; j++ {
				if j == i {
					continue
				}
				dists = append(dists, distIdx{euclidean(rows[i], rows[j]), j})
			}
			sort.Slice(dists, func(a, b int) bool { return dists[a].dist < dists[b].dist })

			nn := make([]int, k)
			for n := 0; n < k; n++ {
				nn[n] = dists[n].idx
			}
			result[i] = nn
		}
	})

	return result
}

func euclidean(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return math.Sqrt(s)
}
