package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gluco-ml/gluco/dataset/sqldataset"
	"github.com/gluco-ml/gluco/feature/yaml"
	"github.com/gluco-ml/gluco/log"
	"github.com/gluco-ml/gluco/modelstore"
	"github.com/gluco-ml/gluco/storage"
	"github.com/gluco-ml/gluco/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const metadata = `
label: Outcome
features:
  Glucose: continuous
  BMI: continuous
  Outcome: [0, 1]
derived:
  - source: Glucose
    operator: ">"
    threshold: 120
  - name: Obese
    source: BMI
    operator: ">"
    threshold: 35
`

const records = `Glucose,BMI,Outcome
148,33.6,1
85,26.6,0
183,23.3,1
89,28.1,0
137,43.1,1
116,25.6,0
78,31.0,0
197,30.5,1
125,30.0,1
110,37.6,0
168,38.0,1
100,25.0,0
`

func fixtures(t *testing.T) (dir, metadataPath, dataPath string) {
	dir = t.TempDir()
	metadataPath = filepath.Join(dir, "diabetes.yml")
	dataPath = filepath.Join(dir, "diabetes.csv")
	require.NoError(t, os.WriteFile(metadataPath, []byte(metadata), 0o644))
	require.NoError(t, os.WriteFile(dataPath, []byte(records), 0o644))
	return dir, metadataPath, dataPath
}

// run executes the command line and returns what it wrote to STDOUT.
func run(t *testing.T, args ...string) string {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	stdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = stdout }()
	out := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		out <- buf.String()
	}()
	cmd := cliParser()
	cmd.SetArgs(args)
	err = cmd.Execute()
	log.SetNopLogger()
	require.NoError(t, w.Close())
	require.NoError(t, err)
	return <-out
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "gluco v0.3.0\n", run(t, "version"))
}

func TestID3GrowTestPredict(t *testing.T) {
	dir, metadataPath, dataPath := fixtures(t)
	modelPath := filepath.Join(dir, "tree.json")
	run(t, "id3", "grow", "-m", metadataPath, "-i", dataPath, "-f", modelPath)

	data, err := os.ReadFile(modelPath)
	require.NoError(t, err)
	m, err := modelstore.Decode(data, nil)
	require.NoError(t, err)
	assert.Equal(t, modelstore.ID3, m.Algorithm)
	assert.Equal(t, "id3", m.Name)
	root, ok := m.Tree.Root.(*tree.Decision)
	require.True(t, ok)
	assert.Equal(t, "Glucose>120", root.Feature.Name())

	out := run(t, "id3", "test", "-m", metadataPath, "-i", dataPath, "-f", modelPath)
	assert.Equal(t, "1.000000 success rate, failed to make a prediction for 0 samples\n", out)

	out = run(t, "id3", "predict", "-m", metadataPath, "-f", modelPath, "--sample", "Glucose=150,BMI=24")
	assert.Equal(t, "Predicted Outcome is 1\n", out)
	out = run(t, "id3", "predict", "-m", metadataPath, "-f", modelPath, "--sample", "Glucose=90")
	assert.Equal(t, "Predicted Outcome is 0\n", out)

	out = run(t, "id3", "show", "-f", modelPath)
	assert.Contains(t, out, "Glucose>120\n|__[1] -> 1 (6)\n|__[0] -> 0 (6)\n")
}

func TestNaiveBayesFitTestPredict(t *testing.T) {
	dir, metadataPath, dataPath := fixtures(t)
	modelPath := filepath.Join(dir, "nb.json")
	run(t, "nb", "fit", "-m", metadataPath, "-i", dataPath, "-f", modelPath, "--standardize")

	out := run(t, "nb", "test", "-m", metadataPath, "-i", dataPath, "-f", modelPath)
	assert.Contains(t, out, "success rate, failed to make a prediction for 0 samples")

	out = run(t, "nb", "predict", "-f", modelPath, "--values", "190,35")
	assert.Contains(t, out, "Posterior probabilities:\n  1: ")
	assert.Contains(t, out, "Predicted Outcome is 1\n")
}

func TestModelStore(t *testing.T) {
	dir, metadataPath, dataPath := fixtures(t)
	store := "sqlite://" + filepath.Join(dir, "models.db")
	run(t, "id3", "grow", "-m", metadataPath, "-i", dataPath, "--store", store, "--name", "tree")
	run(t, "nb", "fit", "-m", metadataPath, "-i", dataPath, "--store", store, "--name", "bayes")

	out := run(t, "models", "list", "--store", store)
	assert.Contains(t, out, "bayes")
	assert.Contains(t, out, "naive-bayes")
	assert.Contains(t, out, "tree")

	out = run(t, "id3", "predict", "-m", metadataPath, "--store", store, "--name", "tree", "--sample", "Glucose=130")
	assert.Equal(t, "Predicted Outcome is 1\n", out)

	run(t, "models", "delete", "--store", store, "tree")
	out = run(t, "models", "list", "--store", store)
	assert.NotContains(t, out, "id3")
}

func TestSplit(t *testing.T) {
	dir, metadataPath, dataPath := fixtures(t)
	trainPath := filepath.Join(dir, "train.csv")
	testPath := filepath.Join(dir, "test.csv")
	run(t, "split", "-m", metadataPath, "-i", dataPath, "-o", trainPath, "-s", testPath, "--seed", "7", "-r", "0.25")

	md, err := yaml.ReadMetadata(metadataPath)
	require.NoError(t, err)
	for path, expected := range map[string]int{trainPath: 9, testPath: 3} {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		lines := bytes.Count(data, []byte("\n"))
		assert.Equal(t, expected+1, lines, path)
		assert.True(t, bytes.HasPrefix(data, []byte("Glucose,BMI,Outcome\n")))
	}
	assert.Len(t, md.Features, 3)
}

func TestSplitIntoDatabase(t *testing.T) {
	dir, metadataPath, dataPath := fixtures(t)
	dbPath := filepath.Join(dir, "sets.db")
	run(t, "split", "-m", metadataPath, "-i", dataPath, "-o", dbPath, "-s", dbPath, "--seed", "7", "-r", "0.25")

	md, err := yaml.ReadMetadata(metadataPath)
	require.NoError(t, err)
	db, driver, err := storage.OpenSQL(dbPath)
	require.NoError(t, err)
	defer db.Close()
	for table, expected := range map[string]int{"training": 9, "testing": 3} {
		ds, err := sqldataset.Read(t.Context(), db, driver, table, md.Features)
		require.NoError(t, err)
		count, err := ds.Count(t.Context())
		require.NoError(t, err)
		assert.Equal(t, expected, count, table)
	}

	modelPath := filepath.Join(dir, "nb.json")
	run(t, "nb", "fit", "-m", metadataPath, "-i", dbPath, "-t", "training", "-f", modelPath)
	assert.FileExists(t, modelPath)
}

func TestSplitValidatesTables(t *testing.T) {
	config := &splitCmdConfig{
		rootCmdConfig: &rootCmdConfig{},
		setOutput:     "sets.db",
		splitOutput:   "test.csv",
		testRatio:     0.2,
	}
	config.data.metadataInput = "diabetes.yml"
	assert.Error(t, config.Validate())
	config.setTable = "training"
	assert.NoError(t, config.Validate())
}

func TestRedisModelStore(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()
	_, metadataPath, dataPath := fixtures(t)
	store := "redis://" + server.Addr()
	run(t, "id3", "grow", "-m", metadataPath, "-i", dataPath, "--store", store, "--name", "tree")

	out := run(t, "models", "list", "--store", store)
	assert.Contains(t, out, "tree")
	out = run(t, "id3", "predict", "-m", metadataPath, "--store", store, "--name", "tree", "--sample", "Glucose=130")
	assert.Equal(t, "Predicted Outcome is 1\n", out)
}

func TestOpenStoreRejectsBadRedisURL(t *testing.T) {
	_, err := openStore(t.Context(), "redis://localhost/zero", "gluco")
	assert.Error(t, err)
	_, err = openStore(t.Context(), "redis://localhost/0/1", "gluco")
	assert.Error(t, err)
}

func TestEvaluate(t *testing.T) {
	_, metadataPath, dataPath := fixtures(t)
	out := run(t, "evaluate", "-m", metadataPath, "-i", dataPath, "-k", "3", "-j", "2", "--per-fold")
	assert.Contains(t, out, "ID3")
	assert.Contains(t, out, "Naive Bayes")
	assert.Contains(t, out, "3-FOLD MEAN")
}

func TestParseSample(t *testing.T) {
	md, err := yaml.ParseMetadata([]byte(metadata))
	require.NoError(t, err)
	s, err := parseSample(md, map[string]string{"Glucose": "148", "BMI": "?", "Outcome": "1"})
	require.NoError(t, err)
	v, err := s.ValueFor(t.Context(), md.Features[0])
	require.NoError(t, err)
	assert.Equal(t, 148.0, v)
	v, err = s.ValueFor(t.Context(), md.Features[1])
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = parseSample(md, map[string]string{"Insulin": "80"})
	assert.Error(t, err)
	_, err = parseSample(md, map[string]string{"Glucose": "high"})
	assert.Error(t, err)
	_, err = parseSample(md, map[string]string{"Outcome": "2"})
	assert.Error(t, err)
}
