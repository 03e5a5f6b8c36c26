package json

import (
	"context"
	"testing"

	"github.com/gluco-ml/gluco/dataset"
	"github.com/gluco-ml/gluco/feature"
	"github.com/gluco-ml/gluco/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal(t *testing.T) {
	f := feature.NewDiscreteFeature("f", []string{"0", "1"})
	root := tree.NewDecision(f)
	root.AddChild("1", tree.NewLeaf("A", 2))
	root.AddChild("0", tree.NewLeaf("B", 1))
	data, err := Marshal(tree.New(root, feature.NewDiscreteFeature("label", nil)))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"label": "label",
		"root": {
			"feature": "f",
			"branches": [
				{"value": "1", "node": {"label": "A", "weight": 2}},
				{"value": "0", "node": {"label": "B", "weight": 1}}
			]
		}
	}`, string(data))

	decoded, err := Unmarshal(data, nil)
	require.NoError(t, err)
	assert.Equal(t, "label", decoded.Label.Name())
	d := decoded.Root.(*tree.Decision)
	assert.Equal(t, []string{"1", "0"}, d.Values)
	assert.Equal(t, []string{"1", "0"}, d.Feature.(*feature.DiscreteFeature).AvailableValues())

	label, err := decoded.Predict(context.Background(), dataset.NewSample(map[string]interface{}{"f": "0"}))
	require.NoError(t, err)
	assert.Equal(t, "B", label)
}

func TestUnmarshalUsesKnownFeatures(t *testing.T) {
	f := feature.NewDiscreteFeature("f", []string{"0", "1", "2"})
	decoded, err := Unmarshal([]byte(`{"label":"y","root":{"feature":"f","branches":[{"value":"2","node":{"label":"A"}}]}}`), []feature.Feature{f})
	require.NoError(t, err)
	assert.Same(t, f, decoded.Root.(*tree.Decision).Feature)
	assert.Equal(t, "A", decoded.Root.(*tree.Decision).Children["2"].(*tree.Leaf).Label)
}

func TestUnmarshalEmptyLabelLeaf(t *testing.T) {
	decoded, err := Unmarshal([]byte(`{"label":"y","root":{"label":""}}`), nil)
	require.NoError(t, err)
	assert.Equal(t, tree.NewLeaf("", 0), decoded.Root)
}

func TestUnmarshalErrors(t *testing.T) {
	for name, data := range map[string]string{
		"not json":        `{`,
		"no label":        `{"root":{"label":"A"}}`,
		"no root":         `{"label":"y"}`,
		"empty node":      `{"label":"y","root":{}}`,
		"both":            `{"label":"y","root":{"label":"A","feature":"f"}}`,
		"no branches":     `{"label":"y","root":{"feature":"f"}}`,
		"nil branch":      `{"label":"y","root":{"feature":"f","branches":[{"value":"1"}]}}`,
		"repeated branch": `{"label":"y","root":{"feature":"f","branches":[{"value":"1","node":{"label":"A"}},{"value":"1","node":{"label":"B"}}]}}`,
	} {
		_, err := Unmarshal([]byte(data), nil)
		assert.Error(t, err, name)
	}
	_, err := Marshal(nil)
	assert.Error(t, err)
}
