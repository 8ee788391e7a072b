package sampling

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/bits-and-bytess/ExoplanetDetect/pkg/errors"
)

// TrainTestSplit randomly partitions (X, y) into a train pair and a test
// pair. testFraction of the rows (rounded up) go to the test pair. No
// stratification beyond what random sampling provides.
func TrainTestSplit(X *mat.Dense, y *mat.VecDense, testFraction float64, seed uint64) (trainX *mat.Dense, trainY *mat.VecDense, testX *mat.Dense, testY *mat.VecDense, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, nil, nil, errors.NewConfigError("TestSplitFraction", "must be in (0, 1)", testFraction)
	}

	r, _ := X.Dims()
	if r == 0 {
		return nil, nil, nil, nil, errors.Wrap(errors.ErrEmptyData, "TrainTestSplit")
	}
	if y.Len() != r {
		return nil, nil, nil, nil, errors.NewShapeMismatchError("TrainTestSplit", r, y.Len(), 0)
	}

	nTest := int(math.Ceil(float64(r) * testFraction))
	if nTest >= r {
		return nil, nil, nil, nil, errors.NewInsufficientDataError("TrainTestSplit", nTest+1, r, "samples")
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	perm := rng.Perm(r)

	testX, testY = takeRows(X, y, perm[:nTest])
	trainX, trainY = takeRows(X, y, perm[nTest:])
	return trainX, trainY, testX, testY, nil
}

// takeRows copies the given rows of (X, y) in order into fresh tensors.
func takeRows(X *mat.Dense, y *mat.VecDense, indices []int) (*mat.Dense, *mat.VecDense) {
	_, c := X.Dims()
	outX := mat.NewDense(len(indices), c, nil)
	outY := mat.NewVecDense(len(indices), nil)

	row := make([]float64, c)
	for i, idx := range indices {
		mat.Row(row, idx, X)
		outX.SetRow(i, row)
		outY.SetVec(i, y.AtVec(idx))
	}
	return outX, outY
}
