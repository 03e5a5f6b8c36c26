package sqldataset

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gluco-ml/gluco/dataset"
	"github.com/gluco-ml/gluco/feature"
	"github.com/gluco-ml/gluco/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	glucose  = feature.NewContinuousFeature("Glucose")
	pedigree = feature.NewContinuousFeature("DiabetesPedigreeFunction")
	outcome  = feature.NewDiscreteFeature("Outcome", []string{"0", "1"})
	features = []feature.Feature{glucose, pedigree, outcome}
)

func sampleDataset(n int) dataset.Dataset {
	samples := make([]dataset.Sample, n)
	for i := range samples {
		values := map[string]interface{}{
			"Glucose":                  float64(80 + i),
			"DiabetesPedigreeFunction": 0.5 + float64(i)/100,
			"Outcome":                  strconv.Itoa(i % 2),
		}
		if i == 1 {
			values["DiabetesPedigreeFunction"] = nil
		}
		samples[i] = dataset.NewSample(values)
	}
	return dataset.New(samples)
}

func assertRoundTrip(t *testing.T, db *sql.DB, driver storage.SQLDriver, table string, n int) {
	ctx := context.Background()
	expected := sampleDataset(n)
	inserted, err := Write(ctx, db, driver, table, expected, features)
	require.NoError(t, err)
	assert.Equal(t, n, inserted)

	ds, err := Read(ctx, db, driver, table, features)
	require.NoError(t, err)
	count, err := ds.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, n, count)
	samples, err := ds.Samples(ctx)
	require.NoError(t, err)
	expectedSamples, err := expected.Samples(ctx)
	require.NoError(t, err)
	for i, s := range samples {
		for _, f := range features {
			v, err := s.ValueFor(ctx, f)
			require.NoError(t, err)
			e, err := expectedSamples[i].ValueFor(ctx, f)
			require.NoError(t, err)
			if ev, ok := e.(float64); ok {
				assert.InDelta(t, ev, v, 1e-9, "sample %d feature %s", i, f.Name())
			} else {
				assert.Equal(t, e, v, "sample %d feature %s", i, f.Name())
			}
		}
	}
}

func TestSQLite(t *testing.T) {
	db, driver, err := storage.OpenSQL(storage.SQLitePrefix + filepath.Join(t.TempDir(), "diabetes.db"))
	require.NoError(t, err)
	defer db.Close()
	// more samples than fit in one insert statement
	assertRoundTrip(t, db, driver, "diabetes", 2*MaxSampleInsertionsPerStatement+5)
}

func TestReadInvalidValue(t *testing.T) {
	ctx := context.Background()
	db, driver, err := storage.OpenSQL(filepath.Join(t.TempDir(), "diabetes.db"))
	require.NoError(t, err)
	defer db.Close()
	_, err = db.ExecContext(ctx, `CREATE TABLE diabetes ("Glucose" REAL, "Outcome" TEXT)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO diabetes VALUES (148, '1'), (85, 'maybe')`)
	require.NoError(t, err)
	_, err = Read(ctx, db, driver, "diabetes", []feature.Feature{glucose, outcome})
	assert.Error(t, err)
	ds, err := Read(ctx, db, driver, "diabetes", []feature.Feature{glucose})
	require.NoError(t, err)
	values, err := ds.FeatureValues(ctx, glucose)
	require.NoError(t, err)
	assert.Equal(t, []string{"148", "85"}, values)
}

func TestReadMissingTable(t *testing.T) {
	db, driver, err := storage.OpenSQL(filepath.Join(t.TempDir(), "diabetes.db"))
	require.NoError(t, err)
	defer db.Close()
	_, err = Read(context.Background(), db, driver, "missing", features)
	assert.Error(t, err)
}

func TestInsertStatement(t *testing.T) {
	assert.Equal(t,
		`INSERT INTO "diabetes" ("Glucose", "Outcome") VALUES ($1, $2), ($3, $4)`,
		insertStatement(storage.Postgres, "diabetes", []feature.Feature{glucose, outcome}, 2))
	assert.Equal(t,
		"INSERT INTO `diabetes` (`Glucose`) VALUES (?)",
		insertStatement(storage.MySQL, "diabetes", []feature.Feature{glucose}, 1))
}

func TestPostgres(t *testing.T) {
	uri := os.Getenv("POSTGRES_URI")
	if uri == "" {
		t.Skip("POSTGRES_URI is not set")
	}
	db, driver, err := storage.OpenSQL(uri)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`DROP TABLE IF EXISTS "gluco_diabetes"`)
	require.NoError(t, err)
	assertRoundTrip(t, db, driver, "gluco_diabetes", 12)
}

func TestMySQL(t *testing.T) {
	uri := os.Getenv("MYSQL_URI")
	if uri == "" {
		t.Skip("MYSQL_URI is not set")
	}
	db, driver, err := storage.OpenSQL(uri)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec("DROP TABLE IF EXISTS `gluco_diabetes`")
	require.NoError(t, err)
	assertRoundTrip(t, db, driver, "gluco_diabetes", 12)
}
