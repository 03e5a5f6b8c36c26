package dataset

import (
	"context"
	"fmt"

	"github.com/gluco-ml/gluco/feature"
)

const (
	sampleCountThresholdForDatasetImplementation = 1000
)

/*
Dataset represents an immutable ordered collection of samples.

Its SubsetWith method takes a feature.Criterion and returns a new dataset that
only contains the samples that satisfy it, keeping their order.

Its FeatureValues method returns the distinct defined values that samples take
for a feature, formatted with feature.Format, in the order they are first seen.

Its CountFeatureValues method returns how many samples take each defined value
of a feature.

Its Criteria method returns the criteria applied to obtain the dataset from
the one it was created from, most recent first.
*/
type Dataset interface {
	Count(context.Context) (int, error)
	Samples(context.Context) ([]Sample, error)
	SubsetWith(context.Context, feature.Criterion) (Dataset, error)
	FeatureValues(context.Context, feature.Feature) ([]string, error)
	CountFeatureValues(context.Context, feature.Feature) (map[string]int, error)
	Criteria(context.Context) ([]feature.Criterion, error)
}

type memoryIntensiveSubsettingDataset struct {
	samples  []Sample
	criteria []feature.Criterion
}

type cpuIntensiveSubsettingDataset struct {
	count    *int
	samples  []Sample
	criteria []feature.Criterion
}

/*
New takes a slice of samples and returns a dataset built with them.
The dataset will be a CPU intensive one when the number of samples is
over sampleCountThresholdForDatasetImplementation
*/
func New(samples []Sample) Dataset {
	if len(samples) > sampleCountThresholdForDatasetImplementation {
		return NewCPUIntensive(samples)
	}
	return NewMemoryIntensive(samples)
}

/*
NewMemoryIntensive takes a slice of samples and returns a Dataset
built with them. A memory-intensive dataset is an implementation that
replicates the slice of samples when subsetting to reduce
calculations at the cost of increased memory.
*/
func NewMemoryIntensive(samples []Sample) Dataset {
	return &memoryIntensiveSubsettingDataset{samples, nil}
}

/*
NewCPUIntensive takes a slice of samples and returns a Dataset
built with them. A cpu-intensive dataset is an implementation that
instead of replicating the samples when subsetting, stores the
applying feature criteria to define the subset and keeps the same
sample slice. Every calculation that goes over the samples of the
dataset will apply the feature criteria of the dataset on all
original samples (the ones provided to this method).
*/
func NewCPUIntensive(samples []Sample) Dataset {
	return &cpuIntensiveSubsettingDataset{nil, samples, nil}
}

func (s *memoryIntensiveSubsettingDataset) Count(ctx context.Context) (int, error) {
	return len(s.samples), nil
}

func (s *memoryIntensiveSubsettingDataset) Samples(ctx context.Context) ([]Sample, error) {
	return s.samples, nil
}

func (s *memoryIntensiveSubsettingDataset) SubsetWith(ctx context.Context, fc feature.Criterion) (Dataset, error) {
	var samples []Sample
	for _, sample := range s.samples {
		ok, err := fc.SatisfiedBy(ctx, sample)
		if err != nil {
			return nil, err
		}
		if ok {
			samples = append(samples, sample)
		}
	}
	return &memoryIntensiveSubsettingDataset{samples, append([]feature.Criterion{fc}, s.criteria...)}, nil
}

func (s *memoryIntensiveSubsettingDataset) FeatureValues(ctx context.Context, f feature.Feature) ([]string, error) {
	return featureValues(ctx, s.each, f)
}

func (s *memoryIntensiveSubsettingDataset) CountFeatureValues(ctx context.Context, f feature.Feature) (map[string]int, error) {
	return countFeatureValues(ctx, s.each, f)
}

func (s *memoryIntensiveSubsettingDataset) Criteria(ctx context.Context) ([]feature.Criterion, error) {
	return s.criteria, nil
}

func (s *memoryIntensiveSubsettingDataset) each(ctx context.Context, lambda func(Sample) (bool, error)) error {
	for _, sample := range s.samples {
		ok, err := lambda(sample)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	return nil
}

func (s *cpuIntensiveSubsettingDataset) Count(ctx context.Context) (int, error) {
	if s.count != nil {
		return *s.count, nil
	}
	var length int
	err := s.each(ctx, func(_ Sample) (bool, error) {
		length++
		return true, nil
	})
	if err != nil {
		return 0, err
	}
	s.count = &length
	return length, nil
}

func (s *cpuIntensiveSubsettingDataset) Samples(ctx context.Context) ([]Sample, error) {
	var samples []Sample
	err := s.each(ctx, func(sample Sample) (bool, error) {
		samples = append(samples, sample)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return samples, nil
}

func (s *cpuIntensiveSubsettingDataset) SubsetWith(ctx context.Context, fc feature.Criterion) (Dataset, error) {
	criteria := append([]feature.Criterion{fc}, s.criteria...)
	return &cpuIntensiveSubsettingDataset{nil, s.samples, criteria}, nil
}

func (s *cpuIntensiveSubsettingDataset) FeatureValues(ctx context.Context, f feature.Feature) ([]string, error) {
	return featureValues(ctx, s.each, f)
}

func (s *cpuIntensiveSubsettingDataset) CountFeatureValues(ctx context.Context, f feature.Feature) (map[string]int, error) {
	return countFeatureValues(ctx, s.each, f)
}

func (s *cpuIntensiveSubsettingDataset) Criteria(ctx context.Context) ([]feature.Criterion, error) {
	return s.criteria, nil
}

func (s *cpuIntensiveSubsettingDataset) each(ctx context.Context, lambda func(Sample) (bool, error)) error {
	for _, sample := range s.samples {
		skip := false
		for _, criterion := range s.criteria {
			ok, err := criterion.SatisfiedBy(ctx, sample)
			if err != nil {
				return err
			}
			if !ok {
				skip = true
				break
			}
		}
		if !skip {
			ok, err := lambda(sample)
			if err != nil {
				return err
			}
			if !ok {
				break
			}
		}
	}
	return nil
}

type iterator func(context.Context, func(Sample) (bool, error)) error

func featureValues(ctx context.Context, each iterator, f feature.Feature) ([]string, error) {
	result := []string{}
	encountered := make(map[string]bool)
	err := each(ctx, func(sample Sample) (bool, error) {
		v, err := sample.ValueFor(ctx, f)
		if err != nil {
			return false, err
		}
		key, ok := feature.Format(v)
		if ok && !encountered[key] {
			encountered[key] = true
			result = append(result, key)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func countFeatureValues(ctx context.Context, each iterator, f feature.Feature) (map[string]int, error) {
	result := make(map[string]int)
	err := each(ctx, func(sample Sample) (bool, error) {
		v, err := sample.ValueFor(ctx, f)
		if err != nil {
			return false, err
		}
		if key, ok := feature.Format(v); ok {
			result[key]++
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

/*
Select takes a dataset and a slice of sample positions and returns a new
dataset with the samples at those positions, in the order given.
*/
func Select(ctx context.Context, ds Dataset, indices []int) (Dataset, error) {
	samples, err := ds.Samples(ctx)
	if err != nil {
		return nil, err
	}
	selected := make([]Sample, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(samples) {
			return nil, fmt.Errorf("sample index %d out of range [0, %d)", i, len(samples))
		}
		selected = append(selected, samples[i])
	}
	return New(selected), nil
}
