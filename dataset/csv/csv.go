/*
Package csv reads and writes datasets as CSV streams whose first row names
the columns.
*/
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gluco-ml/gluco/dataset"
	"github.com/gluco-ml/gluco/feature"
)

// UndefinedValue is the cell content for a value a sample does not define.
const UndefinedValue = "?"

/*
Writer is an interface for a sink of samples in CSV format.
*/
type Writer interface {
	// Write will attempt to write the given samples and will return the
	// number of samples actually written and an error (if not all samples
	// could be written)
	Write(context.Context, []dataset.Sample) (int, error)
	// Count returns the total number of samples written
	// to the writer
	Count() int
	// Flush ensures any pending written operations finish
	// before returning. It returns an error if that cannot
	// be ensured.
	Flush() error
}

type csvWriter struct {
	count    int
	features []feature.Feature
	w        *csv.Writer
}

type column struct {
	index   int
	feature feature.Feature
}

/*
ReadDataset takes an io.Reader for a CSV stream and a slice of features and
returns a dataset.Dataset with the samples parsed from the reader or an error.

The header or first row of the CSV content names the columns. Columns named
after a feature in the given slice are parsed, other columns are ignored, and
every feature in the slice must have a column. The rest of the rows should
consist of valid values for the features and/or the '?' string to indicate an
undefined value. Continuous feature values are parsed as float64.
*/
func ReadDataset(reader io.Reader, features []feature.Feature) (dataset.Dataset, error) {
	samples := []dataset.Sample{}
	err := ReadDatasetBySample(reader, features, func(_ int, s dataset.Sample) (bool, error) {
		samples = append(samples, s)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return dataset.New(samples), nil
}

/*
ReadDatasetBySample takes an io.Reader for a CSV stream, a slice of features
and a lambda function on an integer and a dataset.Sample that returns a boolean
value. It parses the samples from the reader and for each it calls the lambda
function with the sample and its index as parameters. If the lambda function
returns true, it will continue processing the next sample, otherwise it will
stop. An error is returned if something goes wrong when reading the stream or
parsing a sample.
*/
func ReadDatasetBySample(reader io.Reader, features []feature.Feature, lambda func(int, dataset.Sample) (bool, error)) error {
	r := csv.NewReader(reader)
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("reading header: %v", err)
	}
	columns, err := parseHeader(header, features)
	if err != nil {
		return err
	}
	for l := 2; ; l++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading body: %v", err)
		}
		sample, err := parseRow(row, columns)
		if err != nil {
			return fmt.Errorf("parsing line %d: %v", l, err)
		}
		ok, err := lambda(l-2, sample)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	return nil
}

/*
ReadDatasetFromFilePath takes a filepath string and a slice of features,
opens the file to which the filepath points to and uses ReadDataset to return
a dataset.Dataset or an error read from it. If the filepath is "" os.Stdin is
read instead.
*/
func ReadDatasetFromFilePath(filepath string, features []feature.Feature) (dataset.Dataset, error) {
	var f *os.File
	var err error
	if filepath == "" {
		f = os.Stdin
	} else {
		f, err = os.Open(filepath)
		if err != nil {
			return nil, fmt.Errorf("reading dataset: %v", err)
		}
		defer f.Close()
	}
	ds, err := ReadDataset(f, features)
	if err != nil {
		err = fmt.Errorf("parsing CSV file %s: %v", filepath, err)
	}
	return ds, err
}

/*
NewWriter takes an io.Writer and a slice of feature.Features and
returns a Writer that will write any samples on the io.Writer, after
writing a header with the names of the features.
*/
func NewWriter(writer io.Writer, features []feature.Feature) (Writer, error) {
	w := csv.NewWriter(writer)
	err := w.Write(feature.Names(features))
	if err != nil {
		return nil, fmt.Errorf("writing CSV header: %v", err)
	}
	return &csvWriter{features: features, w: w}, nil
}

/*
WriteDataset takes a writer, a dataset.Dataset and a slice of features and
dumps to the writer the dataset in CSV format, specifying only the features
in the given slice for the samples. It returns an error if something
went wrong when writing to the writer, or codifying the samples.
*/
func WriteDataset(ctx context.Context, writer io.Writer, ds dataset.Dataset, features []feature.Feature) error {
	cw, err := NewWriter(writer, features)
	if err != nil {
		return err
	}
	samples, err := ds.Samples(ctx)
	if err != nil {
		return err
	}
	_, err = cw.Write(ctx, samples)
	if err != nil {
		return err
	}
	return cw.Flush()
}

/*
WriteDatasetToFilePath behaves like WriteDataset on a file created at the
given path, or on os.Stdout if the path is "".
*/
func WriteDatasetToFilePath(ctx context.Context, filepath string, ds dataset.Dataset, features []feature.Feature) error {
	if filepath == "" {
		return WriteDataset(ctx, os.Stdout, ds, features)
	}
	f, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("creating CSV file %s: %v", filepath, err)
	}
	err = WriteDataset(ctx, f, ds, features)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing CSV file %s: %v", filepath, err)
	}
	return nil
}

func parseHeader(header []string, features []feature.Feature) ([]column, error) {
	var columns []column
	for _, f := range features {
		index := -1
		for i, name := range header {
			if strings.TrimSpace(name) == f.Name() {
				index = i
				break
			}
		}
		if index < 0 {
			return nil, fmt.Errorf("parsing header: no column for feature %s", f.Name())
		}
		columns = append(columns, column{index, f})
	}
	return columns, nil
}

func parseRow(row []string, columns []column) (dataset.Sample, error) {
	featureValues := make(map[string]interface{}, len(columns))
	for _, c := range columns {
		if c.index >= len(row) {
			return nil, fmt.Errorf("missing value for feature %s", c.feature.Name())
		}
		v := strings.TrimSpace(row[c.index])
		var value interface{}
		if v != UndefinedValue {
			if _, ok := c.feature.(*feature.ContinuousFeature); ok {
				fv, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return nil, fmt.Errorf("converting %s to float64: %v", v, err)
				}
				value = fv
			} else {
				value = v
			}
		}
		if ok, err := c.feature.Valid(value); !ok {
			return nil, fmt.Errorf("invalid value %v of type %T for feature %s: %v", value, value, c.feature.Name(), err)
		}
		featureValues[c.feature.Name()] = value
	}
	return dataset.NewSample(featureValues), nil
}

func (cw *csvWriter) Count() int {
	return cw.count
}

func (cw *csvWriter) Write(ctx context.Context, samples []dataset.Sample) (int, error) {
	for n, s := range samples {
		if err := cw.writeSample(ctx, s); err != nil {
			return n, err
		}
	}
	return len(samples), nil
}

func (cw *csvWriter) writeSample(ctx context.Context, sample dataset.Sample) error {
	record := make([]string, len(cw.features))
	for j, f := range cw.features {
		v, err := sample.ValueFor(ctx, f)
		if err != nil {
			return err
		}
		key, ok := feature.Format(v)
		if !ok {
			key = UndefinedValue
		}
		record[j] = key
	}
	err := cw.w.Write(record)
	if err != nil {
		return fmt.Errorf("writing CSV row for sample %d: %v", cw.count+1, err)
	}
	cw.count++
	return nil
}

func (cw *csvWriter) Flush() error {
	cw.w.Flush()
	return cw.w.Error()
}
