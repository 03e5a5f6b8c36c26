/*
Package sqldataset loads datasets from and writes datasets to a table of a
SQL database. Each feature is a column named after it; discrete features
are stored as text, continuous features as floating point numbers and
undefined values as NULL.
*/
package sqldataset

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gluco-ml/gluco/dataset"
	"github.com/gluco-ml/gluco/feature"
	"github.com/gluco-ml/gluco/storage"
	"github.com/samber/lo"
)

/*
MaxSampleInsertionsPerStatement is the maximum number of samples inserted by
a single statement of Write. Larger datasets take several statements.
*/
const MaxSampleInsertionsPerStatement = 10

/*
Read takes a context.Context, a database, its driver, a table name and the
features to load, and returns a dataset with one sample per row of the
table. Rows are read in the order the database returns them.
*/
func Read(ctx context.Context, db *sql.DB, driver storage.SQLDriver, table string, features []feature.Feature) (dataset.Dataset, error) {
	if len(features) == 0 {
		return nil, fmt.Errorf("reading table %s: no features to select", table)
	}
	columns := lo.Map(features, func(f feature.Feature, _ int) string { return driver.Quote(f.Name()) })
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(columns, ", "), driver.Quote(table))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying table %s: %w", table, err)
	}
	defer rows.Close()
	var samples []dataset.Sample
	for rows.Next() {
		sample, err := scanSample(rows, features)
		if err != nil {
			return nil, fmt.Errorf("reading row %d of table %s: %w", len(samples)+1, table, err)
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading table %s: %w", table, err)
	}
	return dataset.New(samples), nil
}

func scanSample(rows *sql.Rows, features []feature.Feature) (dataset.Sample, error) {
	dest := make([]interface{}, len(features))
	for i, f := range features {
		if _, ok := f.(*feature.ContinuousFeature); ok {
			dest[i] = new(sql.NullFloat64)
		} else {
			dest[i] = new(sql.NullString)
		}
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	featureValues := make(map[string]interface{}, len(features))
	for i, f := range features {
		var value interface{}
		switch v := dest[i].(type) {
		case *sql.NullFloat64:
			if v.Valid {
				value = v.Float64
			}
		case *sql.NullString:
			if v.Valid {
				value = v.String
			}
		}
		if ok, err := f.Valid(value); !ok {
			return nil, fmt.Errorf("invalid value %v for feature %s: %v", value, f.Name(), err)
		}
		featureValues[f.Name()] = value
	}
	return dataset.NewSample(featureValues), nil
}

/*
Write takes a context.Context, a database, its driver, a table name, a
dataset and the features to store, creates the table if it does not exist
and inserts every sample of the dataset into it. It returns the number of
samples inserted, which is less than the size of the dataset on error.
*/
func Write(ctx context.Context, db *sql.DB, driver storage.SQLDriver, table string, ds dataset.Dataset, features []feature.Feature) (int, error) {
	if len(features) == 0 {
		return 0, fmt.Errorf("writing table %s: no features to store", table)
	}
	if _, err := db.ExecContext(ctx, createStatement(driver, table, features)); err != nil {
		return 0, fmt.Errorf("ensuring table %s exists: %w", table, err)
	}
	samples, err := ds.Samples(ctx)
	if err != nil {
		return 0, err
	}
	inserted := 0
	for _, chunk := range lo.Chunk(samples, MaxSampleInsertionsPerStatement) {
		args := make([]interface{}, 0, len(chunk)*len(features))
		for _, s := range chunk {
			for _, f := range features {
				v, err := s.ValueFor(ctx, f)
				if err != nil {
					return inserted, err
				}
				args = append(args, v)
			}
		}
		if _, err := db.ExecContext(ctx, insertStatement(driver, table, features, len(chunk)), args...); err != nil {
			return inserted, fmt.Errorf("inserting samples %d to %d into %s: %w", inserted+1, inserted+len(chunk), table, err)
		}
		inserted += len(chunk)
	}
	return inserted, nil
}

func createStatement(driver storage.SQLDriver, table string, features []feature.Feature) string {
	floatType := "DOUBLE PRECISION"
	if driver == storage.SQLite {
		floatType = "REAL"
	}
	columns := lo.Map(features, func(f feature.Feature, _ int) string {
		if _, ok := f.(*feature.ContinuousFeature); ok {
			return fmt.Sprintf("%s %s NULL", driver.Quote(f.Name()), floatType)
		}
		return fmt.Sprintf("%s TEXT NULL", driver.Quote(f.Name()))
	})
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", driver.Quote(table), strings.Join(columns, ", "))
}

func insertStatement(driver storage.SQLDriver, table string, features []feature.Feature, rows int) string {
	var buf bytes.Buffer
	columns := lo.Map(features, func(f feature.Feature, _ int) string { return driver.Quote(f.Name()) })
	fmt.Fprintf(&buf, "INSERT INTO %s (%s) VALUES ", driver.Quote(table), strings.Join(columns, ", "))
	arg := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString("(")
		for i := range features {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(driver.Placeholder(arg))
			arg++
		}
		buf.WriteString(")")
	}
	return buf.String()
}
