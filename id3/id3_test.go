package id3

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strconv"
	"testing"

	"github.com/gluco-ml/gluco/dataset"
	"github.com/gluco-ml/gluco/feature"
	"github.com/gluco-ml/gluco/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-9

var (
	binary = []string{"0", "1"}
	hasil  = feature.NewDiscreteFeature("Hasil", binary)
)

var diabetesColumns = []string{
	"Kehamilan<=3",
	"GulaDarah>120",
	"TekananDarah<=60",
	"KetebalanKulit>30",
	"Insulin>100",
	"BMI>35",
	"RiwayatDiabetes>1",
	"Umur<=45",
}

var diabetesRows = [][]int{
	{1, 1, 1, 1, 1, 1, 1, 1, 1},
	{1, 0, 1, 1, 0, 0, 0, 1, 1},
	{0, 1, 0, 0, 1, 0, 0, 0, 1},
	{0, 1, 0, 0, 1, 0, 0, 1, 1},
	{1, 0, 1, 0, 0, 0, 0, 1, 0},
	{0, 0, 1, 1, 1, 0, 0, 1, 0},
	{0, 0, 0, 1, 1, 1, 1, 0, 1},
	{1, 0, 1, 0, 0, 0, 0, 1, 0},
	{0, 0, 0, 0, 0, 0, 0, 1, 0},
	{1, 0, 0, 1, 1, 1, 0, 1, 0},
}

func diabetesFeatures() []feature.Feature {
	features := make([]feature.Feature, len(diabetesColumns))
	for i, name := range diabetesColumns {
		features[i] = feature.NewDiscreteFeature(name, binary)
	}
	return features
}

func diabetesDataset() dataset.Dataset {
	samples := make([]dataset.Sample, len(diabetesRows))
	for i, row := range diabetesRows {
		values := make(map[string]interface{})
		for j, name := range diabetesColumns {
			values[name] = strconv.Itoa(row[j])
		}
		values["Hasil"] = strconv.Itoa(row[len(row)-1])
		samples[i] = dataset.NewSample(values)
	}
	return dataset.New(samples)
}

func records(rows ...map[string]interface{}) dataset.Dataset {
	samples := make([]dataset.Sample, len(rows))
	for i, r := range rows {
		samples[i] = dataset.NewSample(r)
	}
	return dataset.New(samples)
}

func TestEntropy(t *testing.T) {
	e, err := Entropy([]string{"A", "A", "A"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, e)

	for k := 2; k <= 8; k++ {
		var labels []string
		for i := 0; i < 3*k; i++ {
			labels = append(labels, strconv.Itoa(i%k))
		}
		e, err = Entropy(labels)
		require.NoError(t, err)
		assert.InDelta(t, math.Log2(float64(k)), e, epsilon)
	}

	e, err = Entropy([]string{"A", "A", "B"})
	require.NoError(t, err)
	assert.InDelta(t, 0.918296, e, 1e-6)

	_, err = Entropy(nil)
	assert.Equal(t, ErrEmptyDataset, err)
}

func TestDatasetEntropy(t *testing.T) {
	ctx := context.Background()
	e, err := DatasetEntropy(ctx, diabetesDataset(), hasil)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, e, epsilon)

	_, err = DatasetEntropy(ctx, dataset.New(nil), hasil)
	assert.True(t, errors.Is(err, ErrEmptyDataset))

	_, err = DatasetEntropy(ctx, records(map[string]interface{}{"Hasil": nil}), hasil)
	assert.True(t, errors.Is(err, ErrUndefinedValue))
}

func TestThreeRecordScenario(t *testing.T) {
	ctx := context.Background()
	f := feature.NewDiscreteFeature("f", binary)
	label := feature.NewDiscreteFeature("label", []string{"A", "B"})
	ds := records(
		map[string]interface{}{"f": "1", "label": "A"},
		map[string]interface{}{"f": "1", "label": "A"},
		map[string]interface{}{"f": "0", "label": "B"},
	)

	e, err := DatasetEntropy(ctx, ds, label)
	require.NoError(t, err)
	assert.InDelta(t, 0.918, e, 1e-3)
	gain, err := InformationGain(ctx, ds, f, label)
	require.NoError(t, err)
	assert.InDelta(t, e, gain, epsilon)

	root, err := Build(ctx, ds, label, []feature.Feature{f})
	require.NoError(t, err)
	d, ok := root.(*tree.Decision)
	require.True(t, ok)
	assert.Equal(t, "f", d.Feature.Name())
	assert.Equal(t, []string{"1", "0"}, d.Values)
	assert.Equal(t, tree.NewLeaf("A", 2), d.Children["1"])
	assert.Equal(t, tree.NewLeaf("B", 1), d.Children["0"])
}

func TestInformationGainNeverNegative(t *testing.T) {
	ctx := context.Background()
	rnd := rand.New(rand.NewSource(42))
	f := feature.NewDiscreteFeature("f", nil)
	label := feature.NewDiscreteFeature("label", nil)
	for i := 0; i < 100; i++ {
		n := 1 + rnd.Intn(40)
		rows := make([]map[string]interface{}, n)
		for j := range rows {
			rows[j] = map[string]interface{}{
				"f":     strconv.Itoa(rnd.Intn(4)),
				"label": strconv.Itoa(rnd.Intn(3)),
			}
		}
		gain, err := InformationGain(ctx, records(rows...), f, label)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, gain, -epsilon)
	}
}

func TestInformationGainErrors(t *testing.T) {
	ctx := context.Background()
	f := feature.NewDiscreteFeature("f", binary)
	_, err := InformationGain(ctx, dataset.New(nil), f, hasil)
	assert.True(t, errors.Is(err, ErrEmptyDataset))

	ds := records(
		map[string]interface{}{"f": "1", "Hasil": "1"},
		map[string]interface{}{"Hasil": "0"},
	)
	_, err = InformationGain(ctx, ds, f, hasil)
	assert.True(t, errors.Is(err, ErrUndefinedValue))
	_, err = Build(ctx, ds, hasil, []feature.Feature{f})
	assert.True(t, errors.Is(err, ErrUndefinedValue))
}

func TestBuildSingleLabel(t *testing.T) {
	ctx := context.Background()
	ds := records(
		map[string]interface{}{"f": "1", "Hasil": "1"},
		map[string]interface{}{"f": "0", "Hasil": "1"},
	)
	root, err := Build(ctx, ds, hasil, []feature.Feature{feature.NewDiscreteFeature("f", binary)})
	require.NoError(t, err)
	assert.Equal(t, tree.NewLeaf("1", 2), root)
	root, err = Build(ctx, ds, hasil, nil)
	require.NoError(t, err)
	assert.Equal(t, tree.NewLeaf("1", 2), root)
}

func TestNodePath(t *testing.T) {
	ctx := context.Background()
	ds := diabetesDataset()
	path, err := nodePath(ctx, ds)
	require.NoError(t, err)
	assert.Empty(t, path)

	features := diabetesFeatures()
	sub, err := ds.SubsetWith(ctx, feature.NewDiscreteCriterion(features[1], "1"))
	require.NoError(t, err)
	sub, err = sub.SubsetWith(ctx, feature.NewDiscreteCriterion(features[5], "0"))
	require.NoError(t, err)
	path, err = nodePath(ctx, sub)
	require.NoError(t, err)
	assert.Equal(t, []string{"GulaDarah>120 is 1", "BMI>35 is 0"}, path)

	criteria, err := sub.Criteria(ctx)
	require.NoError(t, err)
	assert.Equal(t, "BMI>35", criteria[0].Feature().Name())
}

func TestBuildMajorityFirstSeen(t *testing.T) {
	ds := records(
		map[string]interface{}{"Hasil": "0"},
		map[string]interface{}{"Hasil": "1"},
		map[string]interface{}{"Hasil": "1"},
		map[string]interface{}{"Hasil": "0"},
	)
	root, err := Build(context.Background(), ds, hasil, nil)
	require.NoError(t, err)
	assert.Equal(t, tree.NewLeaf("0", 4), root)
}

func TestBuildDiabetes(t *testing.T) {
	ctx := context.Background()
	ds := diabetesDataset()
	tr, err := Train(ctx, ds, hasil, diabetesFeatures())
	require.NoError(t, err)

	root, ok := tr.Root.(*tree.Decision)
	require.True(t, ok)
	assert.Equal(t, "GulaDarah>120", root.Feature.Name())
	assert.Equal(t, []string{"1", "0"}, root.Values)
	assert.Equal(t, tree.NewLeaf("1", 3), root.Children["1"])
	// RiwayatDiabetes>1 and Umur<=45 tie, the first candidate wins
	second, ok := root.Children["0"].(*tree.Decision)
	require.True(t, ok)
	assert.Equal(t, "RiwayatDiabetes>1", second.Feature.Name())
	assert.Equal(t, 4, tr.Depth())

	// no feature repeats along a path
	var walk func(n tree.Node, seen map[string]bool)
	walk = func(n tree.Node, seen map[string]bool) {
		d, ok := n.(*tree.Decision)
		if !ok {
			return
		}
		assert.False(t, seen[d.Feature.Name()], d.Feature.Name())
		next := map[string]bool{d.Feature.Name(): true}
		for k := range seen {
			next[k] = true
		}
		for _, child := range d.Children {
			walk(child, next)
		}
	}
	walk(tr.Root, map[string]bool{})

	// every training record is predicted with its own label
	samples, err := ds.Samples(ctx)
	require.NoError(t, err)
	for i, s := range samples {
		predicted, err := tr.Predict(ctx, s)
		require.NoError(t, err)
		expected, err := s.ValueFor(ctx, hasil)
		require.NoError(t, err)
		assert.Equal(t, expected, predicted, "record %d", i)
	}
	rate, unmatched, err := tr.Test(ctx, ds)
	require.NoError(t, err)
	assert.Equal(t, 1.0, rate)
	assert.Equal(t, 0, unmatched)
}

func TestPredictUnseenValue(t *testing.T) {
	ctx := context.Background()
	tr, err := Train(ctx, diabetesDataset(), hasil, diabetesFeatures())
	require.NoError(t, err)
	_, err = tr.Predict(ctx, dataset.NewSample(map[string]interface{}{"GulaDarah>120": "2"}))
	assert.True(t, errors.Is(err, tree.ErrUnmatchedPath))
	_, err = tr.Predict(ctx, dataset.NewSample(map[string]interface{}{}))
	assert.True(t, errors.Is(err, tree.ErrUnmatchedPath))
}

func TestBuildPruning(t *testing.T) {
	ctx := context.Background()
	b := &Builder{Pruning: PruningStrategy{Pruner: FixedInformationGainPruner(0.5)}}
	root, err := b.Build(ctx, diabetesDataset(), hasil, diabetesFeatures())
	require.NoError(t, err)
	assert.Equal(t, tree.NewLeaf("1", 10), root)

	b = &Builder{Pruning: PruningStrategy{Pruner: NoPruner(), MinimumEntropy: 1.0}}
	root, err = b.Build(ctx, diabetesDataset(), hasil, diabetesFeatures())
	require.NoError(t, err)
	assert.Equal(t, tree.NewLeaf("1", 10), root)

	// ten records are too few for any split to pay for its description
	b = &Builder{Pruning: PruningStrategy{Pruner: MDLPruner()}}
	tr, err := b.Train(ctx, diabetesDataset(), hasil, diabetesFeatures())
	require.NoError(t, err)
	assert.Equal(t, tree.NewLeaf("1", 10), tr.Root)
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, diabetesDataset(), hasil, diabetesFeatures())
	assert.Equal(t, context.Canceled, err)
}

func TestParsePruner(t *testing.T) {
	for _, description := range []string{"", "none", "mdl", "minimum-information-gain:0.1"} {
		p, err := ParsePruner(description)
		assert.NoError(t, err, description)
		assert.NotNil(t, p, description)
	}
	for _, description := range []string{"default", "minimum-information-gain:x"} {
		_, err := ParsePruner(description)
		assert.Error(t, err, description)
	}
	p, err := ParsePruner("minimum-information-gain:0.4")
	require.NoError(t, err)
	pruned, err := p.Prune(context.Background(), nil, &Partition{InformationGain: 0.3}, hasil)
	require.NoError(t, err)
	assert.True(t, pruned)
}
