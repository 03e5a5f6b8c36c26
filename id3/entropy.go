package id3

import (
	"context"
	"fmt"
	"math"

	"github.com/gluco-ml/gluco/dataset"
	"github.com/gluco-ml/gluco/feature"
)

// Error represents an error raised while inducing a tree
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrEmptyDataset is returned when entropy or information gain are
	// computed over no records.
	ErrEmptyDataset = Error("empty dataset")
	// ErrUndefinedValue is returned when a record does not define its label
	// or the value of a feature used to partition it.
	ErrUndefinedValue = Error("undefined value")
)

/*
Entropy takes a sequence of label values and returns the entropy in bits of
their distribution: the sum of -p·log2(p) over each distinct label with
p = count/total. It returns ErrEmptyDataset for an empty sequence.
*/
func Entropy(labels []string) (float64, error) {
	if len(labels) == 0 {
		return 0, ErrEmptyDataset
	}
	var order []string
	counts := make(map[string]int)
	for _, l := range labels {
		if _, ok := counts[l]; !ok {
			order = append(order, l)
		}
		counts[l]++
	}
	return entropy(order, counts, len(labels)), nil
}

// entropy iterates over observed values only, so no log(0) term arises. The
// order of the values fixes the order of the floating point additions.
func entropy(values []string, counts map[string]int, total int) float64 {
	var result float64
	for _, v := range values {
		p := float64(counts[v]) / float64(total)
		result -= p * math.Log2(p)
	}
	return result
}

/*
distribution holds the values a feature takes on a dataset in the order they
are first seen, how many records take each of them and the total number of
records.
*/
type distribution struct {
	values []string
	counts map[string]int
	total  int
}

func newDistribution(ctx context.Context, s dataset.Dataset, f feature.Feature) (*distribution, error) {
	total, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, ErrEmptyDataset
	}
	values, err := s.FeatureValues(ctx, f)
	if err != nil {
		return nil, err
	}
	counts, err := s.CountFeatureValues(ctx, f)
	if err != nil {
		return nil, err
	}
	defined := 0
	for _, c := range counts {
		defined += c
	}
	if defined != total {
		return nil, fmt.Errorf("%w: %d of %d records do not define %s", ErrUndefinedValue, total-defined, total, f.Name())
	}
	return &distribution{values, counts, total}, nil
}

func (d *distribution) entropy() float64 {
	return entropy(d.values, d.counts, d.total)
}

// majority returns the most frequent value, the first seen among tied ones.
func (d *distribution) majority() string {
	var result string
	best := 0
	for _, v := range d.values {
		if d.counts[v] > best {
			best = d.counts[v]
			result = v
		}
	}
	return result
}

/*
DatasetEntropy takes a dataset and a label feature and returns the entropy of
the label over the dataset records.
*/
func DatasetEntropy(ctx context.Context, s dataset.Dataset, label feature.Feature) (float64, error) {
	d, err := newDistribution(ctx, s, label)
	if err != nil {
		return 0, err
	}
	return d.entropy(), nil
}
