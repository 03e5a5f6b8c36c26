/*
Package nb implements a Gaussian Naive Bayes classifier: per-class per-feature
normal distributions estimated from training records, combined with the class
priors into posterior probabilities.
*/
package nb

import (
	"context"
	"fmt"
	"math"

	"github.com/gluco-ml/gluco/dataset"
	"github.com/gluco-ml/gluco/feature"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Epsilon replaces a zero standard deviation so densities stay finite.
const Epsilon = 1e-9

// Error represents an error raised by the classifier
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrEmptyDataset is returned when fitting on no records.
	ErrEmptyDataset = Error("empty dataset")
	// ErrUndefinedValue is returned when a record does not define its label
	// or one of the features.
	ErrUndefinedValue = Error("undefined value")
	// ErrDegeneratePosterior is returned when the unnormalized posteriors of
	// every class underflow to zero or are not finite, so they cannot be
	// normalized.
	ErrDegeneratePosterior = Error("degenerate posterior")
)

// Priors maps every class to its share of the training records.
type Priors map[string]float64

// Moments are the mean and standard deviation of a feature within a class.
type Moments struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std"`
}

/*
ClassStatistics holds the Moments of every feature for every class. Classes
are kept in the order they are first seen in the training records, which is
the order used to break ties between posteriors. Moments[class][i] belongs to
Features[i].
*/
type ClassStatistics struct {
	Classes  []string             `json:"classes"`
	Features []string             `json:"features"`
	Moments  map[string][]Moments `json:"moments"`
}

// Posterior holds the normalized posterior probability of every class and
// the most probable class.
type Posterior struct {
	Probabilities map[string]float64
	Class         string
}

/*
Fit takes a context.Context, a training dataset, a label feature and the
continuous features to learn from and returns the class priors and the class
statistics. Standard deviations are sample ones (n-1 denominator); a zero
standard deviation, or that of a class with a single record, is replaced with
Epsilon.
*/
func Fit(ctx context.Context, s dataset.Dataset, label feature.Feature, features []feature.Feature) (Priors, *ClassStatistics, error) {
	labels, instances, err := Instances(ctx, s, label, features)
	if err != nil {
		return nil, nil, err
	}
	return fit(labels, instances, feature.Names(features), Epsilon)
}

func fit(labels []string, instances [][]float64, features []string, epsilon float64) (Priors, *ClassStatistics, error) {
	if len(labels) == 0 {
		return nil, nil, ErrEmptyDataset
	}
	stats := &ClassStatistics{Features: features, Moments: make(map[string][]Moments)}
	byClass := make(map[string][][]float64)
	for i, l := range labels {
		if _, ok := byClass[l]; !ok {
			stats.Classes = append(stats.Classes, l)
		}
		byClass[l] = append(byClass[l], instances[i])
	}
	priors := make(Priors, len(stats.Classes))
	for _, c := range stats.Classes {
		rows := byClass[c]
		priors[c] = float64(len(rows)) / float64(len(labels))
		moments := make([]Moments, len(features))
		column := make([]float64, len(rows))
		for j := range features {
			for i, row := range rows {
				column[i] = row[j]
			}
			mean, std := stat.Mean(column, nil), 0.0
			if len(column) > 1 {
				std = stat.StdDev(column, nil)
			}
			if std == 0 {
				std = epsilon
			}
			moments[j] = Moments{mean, std}
		}
		stats.Moments[c] = moments
	}
	return priors, stats, nil
}

/*
GaussianDensity returns the density at x of the normal distribution with the
given mean and standard deviation.
*/
func GaussianDensity(x, mean, std float64) float64 {
	d := x - mean
	return math.Exp(-(d*d)/(2*std*std)) / (std * math.Sqrt(2*math.Pi))
}

/*
Predict takes the priors and statistics returned by Fit and an instance with a
value for every feature, in the order of the statistics features, and returns
the posterior probability of every class. The likelihood of a class is the
product of the feature densities; multiplied by the class prior and
normalized over all classes it gives the posterior. The predicted class is the
most probable one, the first in the statistics class order among tied ones.
*/
func Predict(priors Priors, stats *ClassStatistics, instance []float64) (*Posterior, error) {
	if stats == nil || len(stats.Classes) == 0 {
		return nil, fmt.Errorf("predicting instance: no class statistics")
	}
	if len(instance) != len(stats.Features) {
		return nil, fmt.Errorf("predicting instance: got %d values for %d features", len(instance), len(stats.Features))
	}
	unnormalized := make([]float64, len(stats.Classes))
	for i, c := range stats.Classes {
		prior, ok := priors[c]
		if !ok {
			return nil, fmt.Errorf("predicting instance: no prior for class %s", c)
		}
		moments := stats.Moments[c]
		if len(moments) != len(instance) {
			return nil, fmt.Errorf("predicting instance: class %s has %d moments for %d features", c, len(moments), len(instance))
		}
		likelihood := 1.0
		for j, x := range instance {
			likelihood *= GaussianDensity(x, moments[j].Mean, moments[j].StdDev)
		}
		unnormalized[i] = likelihood * prior
	}
	total := floats.Sum(unnormalized)
	if total == 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return nil, ErrDegeneratePosterior
	}
	p := &Posterior{Probabilities: make(map[string]float64, len(stats.Classes))}
	for i, c := range stats.Classes {
		p.Probabilities[c] = unnormalized[i] / total
	}
	p.Class = stats.Classes[floats.MaxIdx(unnormalized)]
	return p, nil
}

/*
Instances takes a context.Context, a dataset, a label feature and a slice of
features and returns the label of every record, formatted with
feature.Format, and the values of the features for every record. Records
that do not define the label or a feature return ErrUndefinedValue.
*/
func Instances(ctx context.Context, s dataset.Dataset, label feature.Feature, features []feature.Feature) ([]string, [][]float64, error) {
	samples, err := s.Samples(ctx)
	if err != nil {
		return nil, nil, err
	}
	labels := make([]string, len(samples))
	instances := make([][]float64, len(samples))
	for i, sample := range samples {
		v, err := sample.ValueFor(ctx, label)
		if err != nil {
			return nil, nil, err
		}
		l, ok := feature.Format(v)
		if !ok {
			return nil, nil, fmt.Errorf("%w: record %d does not define %s", ErrUndefinedValue, i, label.Name())
		}
		labels[i] = l
		instances[i], err = Instance(ctx, sample, features)
		if err != nil {
			return nil, nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return labels, instances, nil
}

/*
Instance takes a context.Context, a sample and a slice of features and returns
the float64 values of the sample for the features.
*/
func Instance(ctx context.Context, sample dataset.Sample, features []feature.Feature) ([]float64, error) {
	instance := make([]float64, len(features))
	for j, f := range features {
		v, err := sample.ValueFor(ctx, f)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, fmt.Errorf("%w: %s", ErrUndefinedValue, f.Name())
		}
		x, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("feature %s expects float64 value, got %T value", f.Name(), v)
		}
		instance[j] = x
	}
	return instance, nil
}
