package id3

import (
	"context"

	"github.com/gluco-ml/gluco/dataset"
	"github.com/gluco-ml/gluco/feature"
)

/*
Partition represents a partition of a dataset according to the values of a
feature, with the information gain it achieves to predict the label feature.
*/
type Partition struct {
	Feature         feature.Feature
	Subsets         []*Subset
	InformationGain float64
}

// Subset is the part of a partitioned dataset whose records take Value.
type Subset struct {
	Value   string
	Dataset dataset.Dataset
	Count   int
	Entropy float64
}

/*
NewPartition takes a context.Context, a dataset, a feature and a label feature
and returns the partition of the dataset with one subset for each value of the
feature present in the dataset, in the order they are first seen. Every record
falls in exactly one subset: records not defining the feature or the label
make it fail with ErrUndefinedValue.
*/
func NewPartition(ctx context.Context, s dataset.Dataset, f, label feature.Feature) (*Partition, error) {
	labels, err := newDistribution(ctx, s, label)
	if err != nil {
		return nil, err
	}
	values, err := newDistribution(ctx, s, f)
	if err != nil {
		return nil, err
	}
	p := &Partition{Feature: f, InformationGain: labels.entropy()}
	for _, v := range values.values {
		ss, err := s.SubsetWith(ctx, feature.NewDiscreteCriterion(f, v))
		if err != nil {
			return nil, err
		}
		subset := &Subset{Value: v, Dataset: ss, Count: values.counts[v]}
		sd, err := newDistribution(ctx, ss, label)
		if err != nil {
			return nil, err
		}
		subset.Entropy = sd.entropy()
		p.InformationGain -= float64(subset.Count) / float64(values.total) * subset.Entropy
		p.Subsets = append(p.Subsets, subset)
	}
	return p, nil
}

/*
InformationGain takes a context.Context, a dataset, a feature and a label
feature and returns the reduction of the label entropy achieved by
partitioning the dataset on the feature. It is never below zero save for
floating point rounding.
*/
func InformationGain(ctx context.Context, s dataset.Dataset, f, label feature.Feature) (float64, error) {
	p, err := NewPartition(ctx, s, f, label)
	if err != nil {
		return 0, err
	}
	return p.InformationGain, nil
}
