package modelstore_test

import (
	"testing"

	"github.com/gluco-ml/gluco/feature"
	"github.com/gluco-ml/gluco/modelstore"
	"github.com/gluco-ml/gluco/modelstore/storetest"
	"github.com/gluco-ml/gluco/tree"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	data, err := modelstore.Encode(storetest.TreeModel("id3"))
	require.NoError(t, err)
	glucose := feature.NewBinaryFeature("", feature.NewContinuousFeature("GulaDarah"), feature.GreaterThan, 120)
	m, err := modelstore.Decode(data, []feature.Feature{glucose})
	require.NoError(t, err)
	assert.Equal(t, "id3", m.Name)
	// decision nodes refer to the known features
	assert.Same(t, glucose, m.Tree.Root.(*tree.Decision).Feature)
}

func TestDecodeUnknownAlgorithm(t *testing.T) {
	_, err := modelstore.Decode([]byte(`{"name": "knn", "algorithm": "knn", "model": {}}`), nil)
	assert.True(t, errors.Is(err, errors.NotSupported))
	_, err = modelstore.Decode([]byte(`{"name": "nb", "algorithm": "naive-bayes", "model": {}}`), nil)
	assert.Error(t, err)
	_, err = modelstore.Decode([]byte(`not json`), nil)
	assert.Error(t, err)
}
