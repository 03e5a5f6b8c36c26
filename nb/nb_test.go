package nb

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/gluco-ml/gluco/dataset"
	"github.com/gluco-ml/gluco/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	f     = feature.NewContinuousFeature("f")
	g     = feature.NewContinuousFeature("g")
	label = feature.NewDiscreteFeature("label", nil)
)

func records(rows ...map[string]interface{}) dataset.Dataset {
	samples := make([]dataset.Sample, len(rows))
	for i, r := range rows {
		samples[i] = dataset.NewSample(r)
	}
	return dataset.New(samples)
}

func twoClasses() dataset.Dataset {
	return records(
		map[string]interface{}{"f": 1.0, "label": "A"},
		map[string]interface{}{"f": 10.0, "label": "B"},
		map[string]interface{}{"f": 2.0, "label": "A"},
		map[string]interface{}{"f": 11.0, "label": "B"},
		map[string]interface{}{"f": 3.0, "label": "A"},
		map[string]interface{}{"f": 12.0, "label": "B"},
	)
}

func TestGaussianDensity(t *testing.T) {
	assert.InDelta(t, 1/math.Sqrt(2*math.Pi), GaussianDensity(0, 0, 1), 1e-12)
	assert.InDelta(t, 0.241970724519, GaussianDensity(1, 0, 1), 1e-12)
	assert.InDelta(t, GaussianDensity(1, 0, 1)/2, GaussianDensity(2, 0, 2), 1e-12)
	assert.Greater(t, GaussianDensity(5, 5, Epsilon), 0.0)
}

func TestFit(t *testing.T) {
	priors, stats, err := Fit(context.Background(), twoClasses(), label, []feature.Feature{f})
	require.NoError(t, err)
	assert.Equal(t, Priors{"A": 0.5, "B": 0.5}, priors)
	assert.Equal(t, []string{"A", "B"}, stats.Classes)
	assert.Equal(t, []string{"f"}, stats.Features)
	assert.InDelta(t, 2.0, stats.Moments["A"][0].Mean, 1e-12)
	assert.InDelta(t, 1.0, stats.Moments["A"][0].StdDev, 1e-12)
	assert.InDelta(t, 11.0, stats.Moments["B"][0].Mean, 1e-12)
	assert.InDelta(t, 1.0, stats.Moments["B"][0].StdDev, 1e-12)
}

func TestFitPriors(t *testing.T) {
	ds := records(
		map[string]interface{}{"f": 1.0, "label": "B"},
		map[string]interface{}{"f": 2.0, "label": "A"},
		map[string]interface{}{"f": 3.0, "label": "A"},
		map[string]interface{}{"f": 4.0, "label": "A"},
	)
	priors, stats, err := Fit(context.Background(), ds, label, []feature.Feature{f})
	require.NoError(t, err)
	assert.Equal(t, Priors{"A": 0.75, "B": 0.25}, priors)
	assert.Equal(t, []string{"B", "A"}, stats.Classes)
	// a single record class has no sample deviation
	assert.Equal(t, Epsilon, stats.Moments["B"][0].StdDev)
}

func TestFitEpsilonSubstitution(t *testing.T) {
	ds := records(
		map[string]interface{}{"f": 5.0, "g": 1.0, "label": "A"},
		map[string]interface{}{"f": 5.0, "g": 2.0, "label": "A"},
		map[string]interface{}{"f": 7.0, "g": 1.0, "label": "B"},
		map[string]interface{}{"f": 8.0, "g": 3.0, "label": "B"},
	)
	priors, stats, err := Fit(context.Background(), ds, label, []feature.Feature{f, g})
	require.NoError(t, err)
	assert.Equal(t, Moments{5, Epsilon}, stats.Moments["A"][0])
	assert.Greater(t, stats.Moments["A"][1].StdDev, 0.0)

	p, err := Predict(priors, stats, []float64{5, 1.5})
	require.NoError(t, err)
	assert.Equal(t, "A", p.Class)
	assert.False(t, math.IsNaN(p.Probabilities["A"]))
}

func TestFitErrors(t *testing.T) {
	ctx := context.Background()
	_, _, err := Fit(ctx, dataset.New(nil), label, []feature.Feature{f})
	assert.Equal(t, ErrEmptyDataset, err)

	_, _, err = Fit(ctx, records(map[string]interface{}{"f": 1.0}), label, []feature.Feature{f})
	assert.True(t, errors.Is(err, ErrUndefinedValue))

	_, _, err = Fit(ctx, records(map[string]interface{}{"label": "A"}), label, []feature.Feature{f})
	assert.True(t, errors.Is(err, ErrUndefinedValue))

	_, _, err = Fit(ctx, records(map[string]interface{}{"f": "1", "label": "A"}), label, []feature.Feature{f})
	assert.Error(t, err)
}

func TestPredictSeparatedClasses(t *testing.T) {
	priors, stats, err := Fit(context.Background(), twoClasses(), label, []feature.Feature{f})
	require.NoError(t, err)
	p, err := Predict(priors, stats, []float64{1.5})
	require.NoError(t, err)
	assert.Equal(t, "A", p.Class)
	assert.Greater(t, p.Probabilities["A"], 0.999999)
	assert.Less(t, p.Probabilities["B"], 1e-12)
	assert.InDelta(t, 1.0, p.Probabilities["A"]+p.Probabilities["B"], 1e-12)

	p, err = Predict(priors, stats, []float64{11.5})
	require.NoError(t, err)
	assert.Equal(t, "B", p.Class)
}

func TestPosteriorsSumToOne(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	var rows []map[string]interface{}
	for i := 0; i < 60; i++ {
		c := []string{"A", "B", "C"}[i%3]
		rows = append(rows, map[string]interface{}{
			"f":     rnd.NormFloat64()*2 + float64(i%3)*3,
			"g":     rnd.NormFloat64() + float64(i%3),
			"label": c,
		})
	}
	priors, stats, err := Fit(context.Background(), records(rows...), label, []feature.Feature{f, g})
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		p, err := Predict(priors, stats, []float64{rnd.Float64()*10 - 2, rnd.Float64()*4 - 1})
		require.NoError(t, err)
		sum := 0.0
		for _, v := range p.Probabilities {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestPredictDegenerate(t *testing.T) {
	priors, stats, err := Fit(context.Background(), twoClasses(), label, []feature.Feature{f})
	require.NoError(t, err)
	_, err = Predict(priors, stats, []float64{1e6})
	assert.Equal(t, ErrDegeneratePosterior, err)
	_, err = Predict(priors, stats, []float64{math.NaN()})
	assert.Equal(t, ErrDegeneratePosterior, err)
}

func TestPredictTieFirstClass(t *testing.T) {
	stats := &ClassStatistics{
		Classes:  []string{"B", "A"},
		Features: []string{"f"},
		Moments:  map[string][]Moments{"A": {{0, 1}}, "B": {{0, 1}}},
	}
	p, err := Predict(Priors{"A": 0.5, "B": 0.5}, stats, []float64{0})
	require.NoError(t, err)
	assert.Equal(t, "B", p.Class)
	assert.Equal(t, 0.5, p.Probabilities["A"])
}

func TestPredictErrors(t *testing.T) {
	priors, stats, err := Fit(context.Background(), twoClasses(), label, []feature.Feature{f})
	require.NoError(t, err)
	_, err = Predict(priors, stats, []float64{1, 2})
	assert.Error(t, err)
	_, err = Predict(Priors{"A": 1}, stats, []float64{1})
	assert.Error(t, err)
	_, err = Predict(priors, nil, []float64{1})
	assert.Error(t, err)
}

func TestScaler(t *testing.T) {
	s, err := FitScaler([][]float64{{1, 5}, {3, 5}})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 5}, s.Means)
	assert.Equal(t, []float64{1, 1}, s.Scales)
	scaled, err := s.Transform([]float64{3, 6})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, scaled)
	_, err = s.Transform([]float64{3})
	assert.Error(t, err)

	_, err = FitScaler(nil)
	assert.Equal(t, ErrEmptyDataset, err)
	_, err = FitScaler([][]float64{{1, 2}, {1}})
	assert.Error(t, err)
}

func TestTrainer(t *testing.T) {
	ctx := context.Background()
	m, err := (&Trainer{Standardize: true}).Train(ctx, twoClasses(), label, []feature.Feature{f})
	require.NoError(t, err)
	require.NotNil(t, m.Scaler)
	assert.InDelta(t, 6.5, m.Scaler.Means[0], 1e-12)
	assert.Equal(t, "label", m.Label)
	assert.Equal(t, []string{"f"}, feature.Names(m.Features()))

	p, err := m.PredictSample(ctx, dataset.NewSample(map[string]interface{}{"f": 1.5}))
	require.NoError(t, err)
	assert.Equal(t, "A", p.Class)

	_, err = m.PredictSample(ctx, dataset.NewSample(map[string]interface{}{}))
	assert.True(t, errors.Is(err, ErrUndefinedValue))

	plain, err := (&Trainer{}).Train(ctx, twoClasses(), label, []feature.Feature{f})
	require.NoError(t, err)
	assert.Nil(t, plain.Scaler)
	p, err = plain.Predict([]float64{12})
	require.NoError(t, err)
	assert.Equal(t, "B", p.Class)
}
