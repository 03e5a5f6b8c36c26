package evaluate

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/gluco-ml/gluco/dataset"
)

// Fold is a pair of disjoint training and test datasets.
type Fold struct {
	Train dataset.Dataset
	Test  dataset.Dataset
}

/*
Split takes a context.Context, a dataset, the ratio of records to hold out
and a seed, and returns a Fold with ceil(ratio·n) randomly chosen records in
the test dataset and the rest in the training one. The same seed always
produces the same split.
*/
func Split(ctx context.Context, s dataset.Dataset, testRatio float64, seed int64) (*Fold, error) {
	if testRatio <= 0 || testRatio >= 1 {
		return nil, fmt.Errorf("test ratio %v must be in (0, 1)", testRatio)
	}
	n, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}
	testSize := int(math.Ceil(testRatio * float64(n)))
	if testSize >= n {
		return nil, fmt.Errorf("cannot hold out %d of %d records and keep some for training", testSize, n)
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return newFold(ctx, s, perm[testSize:], perm[:testSize])
}

/*
KFold takes a context.Context, a dataset, a number of folds k and a seed and
returns k Folds. Records are shuffled with the seed and dealt into k test
datasets whose sizes differ at most by one; the training dataset of each fold
holds every other record.
*/
func KFold(ctx context.Context, s dataset.Dataset, k int, seed int64) ([]*Fold, error) {
	if k < 2 {
		return nil, fmt.Errorf("k-fold needs at least 2 folds, got %d", k)
	}
	n, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n < k {
		return nil, fmt.Errorf("cannot split %d records into %d folds", n, k)
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	folds := make([]*Fold, k)
	foldSize := n / k
	begin, end := 0, 0
	for i := 0; i < k; i++ {
		end += foldSize
		if i < n%k {
			end++
		}
		train := append(append([]int{}, perm[:begin]...), perm[end:]...)
		folds[i], err = newFold(ctx, s, train, perm[begin:end])
		if err != nil {
			return nil, err
		}
		begin = end
	}
	return folds, nil
}

func newFold(ctx context.Context, s dataset.Dataset, train, test []int) (*Fold, error) {
	trainSet, err := dataset.Select(ctx, s, train)
	if err != nil {
		return nil, err
	}
	testSet, err := dataset.Select(ctx, s, test)
	if err != nil {
		return nil, err
	}
	return &Fold{trainSet, testSet}, nil
}
