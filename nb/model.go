package nb

import (
	"context"
	"fmt"

	"github.com/gluco-ml/gluco/dataset"
	"github.com/gluco-ml/gluco/feature"
	"github.com/gluco-ml/gluco/log"
	"go.uber.org/zap"
)

/*
Trainer fits Models. A zero Epsilon means the package Epsilon. When
Standardize is set, a Scaler is fitted on the training instances and applied
before computing statistics and before every prediction.
*/
type Trainer struct {
	Epsilon     float64
	Standardize bool
}

/*
Model is a trained classifier that can be serialized as JSON.
*/
type Model struct {
	Label      string           `json:"label"`
	Priors     Priors           `json:"priors"`
	Statistics *ClassStatistics `json:"statistics"`
	Scaler     *Scaler          `json:"scaler,omitempty"`
}

/*
Train takes a context.Context, a training dataset, a label feature and the
continuous features to learn from and returns the fitted Model.
*/
func (t *Trainer) Train(ctx context.Context, s dataset.Dataset, label feature.Feature, features []feature.Feature) (*Model, error) {
	labels, instances, err := Instances(ctx, s, label, features)
	if err != nil {
		return nil, err
	}
	m := &Model{Label: label.Name()}
	if t.Standardize && len(instances) > 0 {
		m.Scaler, err = FitScaler(instances)
		if err != nil {
			return nil, err
		}
		instances, err = m.Scaler.TransformAll(instances)
		if err != nil {
			return nil, err
		}
	}
	epsilon := t.Epsilon
	if epsilon == 0 {
		epsilon = Epsilon
	}
	m.Priors, m.Statistics, err = fit(labels, instances, feature.Names(features), epsilon)
	if err != nil {
		return nil, err
	}
	log.Logger().Debug("fitted naive bayes model",
		zap.Strings("classes", m.Statistics.Classes),
		zap.Int("samples", len(labels)),
		zap.Bool("standardized", m.Scaler != nil))
	return m, nil
}

/*
Features returns the continuous features the model reads from samples.
*/
func (m *Model) Features() []feature.Feature {
	features := make([]feature.Feature, len(m.Statistics.Features))
	for i, name := range m.Statistics.Features {
		features[i] = feature.NewContinuousFeature(name)
	}
	return features
}

/*
Predict takes an instance of raw feature values, standardizes it when the
model has a Scaler and returns its Posterior.
*/
func (m *Model) Predict(instance []float64) (*Posterior, error) {
	if m.Scaler != nil {
		var err error
		instance, err = m.Scaler.Transform(instance)
		if err != nil {
			return nil, err
		}
	}
	return Predict(m.Priors, m.Statistics, instance)
}

/*
PredictSample reads the model features from the sample and returns the
Posterior of the resulting instance.
*/
func (m *Model) PredictSample(ctx context.Context, sample dataset.Sample) (*Posterior, error) {
	if m.Statistics == nil {
		return nil, fmt.Errorf("predicting sample: model has no statistics")
	}
	instance, err := Instance(ctx, sample, m.Features())
	if err != nil {
		return nil, fmt.Errorf("predicting sample: %w", err)
	}
	return m.Predict(instance)
}
