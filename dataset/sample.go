package dataset

import (
	"context"
	"fmt"

	"github.com/gluco-ml/gluco/feature"
)

/*
Sample represents a record to classify or from which to learn how to classify
them.

Its ValueFor method returns the value of the sample corresponding to the feature
passed as parameter, or nil if the sample does not define it.
*/
type Sample interface {
	ValueFor(context.Context, feature.Feature) (interface{}, error)
}

type sample struct {
	featureValues map[string]interface{}
}

/*
NewSample takes a map of feature string names to values and returns a sample.
*/
func NewSample(featureValues map[string]interface{}) Sample {
	return &sample{featureValues}
}

func (s *sample) ValueFor(_ context.Context, f feature.Feature) (interface{}, error) {
	return s.featureValues[f.Name()], nil
}

func (s *sample) String() string {
	return fmt.Sprintf("[%v]", s.featureValues)
}
