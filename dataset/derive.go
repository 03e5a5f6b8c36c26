package dataset

import (
	"context"

	"github.com/gluco-ml/gluco/feature"
)

type derivedSample struct {
	Sample
	derived map[string]*feature.BinaryFeature
}

/*
DeriveSample takes a sample and a slice of binary features and returns a
sample that also defines values for the binary features, computed from the
values the wrapped sample takes for their source features.
*/
func DeriveSample(s Sample, binaries []*feature.BinaryFeature) Sample {
	if len(binaries) == 0 {
		return s
	}
	derived := make(map[string]*feature.BinaryFeature, len(binaries))
	for _, bf := range binaries {
		derived[bf.Name()] = bf
	}
	return &derivedSample{s, derived}
}

func (ds *derivedSample) ValueFor(ctx context.Context, f feature.Feature) (interface{}, error) {
	bf, ok := ds.derived[f.Name()]
	if !ok {
		return ds.Sample.ValueFor(ctx, f)
	}
	v, err := ds.Sample.ValueFor(ctx, bf.Source())
	if err != nil {
		return nil, err
	}
	return bf.Derive(v)
}

/*
Derive takes a dataset and a slice of binary features and returns a dataset
whose samples are wrapped with DeriveSample. Samples are not copied.
*/
func Derive(ctx context.Context, ds Dataset, binaries []*feature.BinaryFeature) (Dataset, error) {
	if len(binaries) == 0 {
		return ds, nil
	}
	samples, err := ds.Samples(ctx)
	if err != nil {
		return nil, err
	}
	derived := make([]Sample, len(samples))
	for i, s := range samples {
		derived[i] = DeriveSample(s, binaries)
	}
	return New(derived), nil
}
