package nb

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

/*
Scaler standardizes instances by removing the mean of every feature and
dividing by its population standard deviation. Features with no variance
keep a scale of 1.
*/
type Scaler struct {
	Means  []float64 `json:"means"`
	Scales []float64 `json:"scales"`
}

/*
FitScaler takes the training instances and returns the Scaler for them.
*/
func FitScaler(instances [][]float64) (*Scaler, error) {
	if len(instances) == 0 {
		return nil, ErrEmptyDataset
	}
	width := len(instances[0])
	s := &Scaler{Means: make([]float64, width), Scales: make([]float64, width)}
	column := make([]float64, len(instances))
	for j := 0; j < width; j++ {
		for i, instance := range instances {
			if len(instance) != width {
				return nil, fmt.Errorf("fitting scaler: instance %d has %d values, expected %d", i, len(instance), width)
			}
			column[i] = instance[j]
		}
		mean, std := stat.PopMeanStdDev(column, nil)
		if std == 0 {
			std = 1
		}
		s.Means[j], s.Scales[j] = mean, std
	}
	return s, nil
}

/*
Transform returns a standardized copy of the instance.
*/
func (s *Scaler) Transform(instance []float64) ([]float64, error) {
	if len(instance) != len(s.Means) {
		return nil, fmt.Errorf("scaling instance: got %d values, expected %d", len(instance), len(s.Means))
	}
	result := make([]float64, len(instance))
	for j, x := range instance {
		result[j] = (x - s.Means[j]) / s.Scales[j]
	}
	return result, nil
}

// TransformAll standardizes every instance.
func (s *Scaler) TransformAll(instances [][]float64) ([][]float64, error) {
	result := make([][]float64, len(instances))
	for i, instance := range instances {
		scaled, err := s.Transform(instance)
		if err != nil {
			return nil, err
		}
		result[i] = scaled
	}
	return result, nil
}
