/*
Package inputsample provides an implementation of dataset.Sample that is read
from an io.Reader.
*/
package inputsample

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/gluco-ml/gluco/dataset"
	"github.com/gluco-ml/gluco/feature"
)

type readSample struct {
	obtainedValues        map[string]interface{}
	undefinedValue        string
	scanner               *bufio.Scanner
	featureValueRequester FeatureValueRequester
	features              []feature.Feature
}

/*
FeatureValueRequester represents a way to ask
for feature values and reject the given values.
*/
type FeatureValueRequester interface {
	RequestValueFor(feature.Feature) error
	RejectValueFor(feature.Feature, interface{}) error
}

/*
New takes an io.Reader, a slice of features, a
FeatureValueRequester and an undefinedValue coding string
and returns a Sample.

The returned Sample ValueFor method reads feature values first
requesting them with the given FeatureValueRequester and
then parsing the values from the reader. Values are only requested
once, so a predictor only asks about the features along the path
it follows.

The parsing expects each value to be presented ending with the
'\n' character, that is in new lines. Also, the undefinedValue
string followed by the '\n' character will be interpreted as an
undefined value.

For a feature.ContinuousFeature, lines will be read from the
reader until a line containing a valid float64 number is found.

For a feature.DiscreteFeature, lines will be read from the
reader until a line with a valid value for the feature is found.

Non accepted values will be rejected with the FeatureValueRequester's
RejectValueFor method. Attempting to obtain a value for a Feature not in
the given features slice returns an error.
*/
func New(r io.Reader, features []feature.Feature, featureValueRequester FeatureValueRequester, undefinedValue string) dataset.Sample {
	scanner := bufio.NewScanner(r)
	return &readSample{make(map[string]interface{}), undefinedValue, scanner, featureValueRequester, features}
}

func (rs *readSample) ValueFor(_ context.Context, f feature.Feature) (interface{}, error) {
	value, ok := rs.obtainedValues[f.Name()]
	if ok {
		return value, nil
	}
	featureWithInfo := feature.Find(rs.features, f.Name())
	if featureWithInfo == nil {
		return nil, fmt.Errorf("have no information about feature %s, do not know how to read its value", f.Name())
	}
	err := rs.featureValueRequester.RequestValueFor(featureWithInfo)
	if err != nil {
		return nil, err
	}
	var parse func(string) (interface{}, bool)
	switch featureWithInfo := featureWithInfo.(type) {
	case *feature.ContinuousFeature:
		parse = func(line string) (interface{}, bool) {
			v, err := strconv.ParseFloat(line, 64)
			return v, err == nil
		}
	case *feature.DiscreteFeature:
		parse = func(line string) (interface{}, bool) {
			ok, _ := featureWithInfo.Valid(line)
			return line, ok
		}
	default:
		return nil, fmt.Errorf("do not know how to read a value for features of type %T", featureWithInfo)
	}
	return rs.read(featureWithInfo, parse)
}

func (rs *readSample) read(f feature.Feature, parse func(string) (interface{}, bool)) (interface{}, error) {
	for rs.scanner.Scan() {
		line := rs.scanner.Text()
		if line == rs.undefinedValue {
			rs.obtainedValues[f.Name()] = nil
			return nil, nil
		}
		if v, ok := parse(line); ok {
			rs.obtainedValues[f.Name()] = v
			return v, nil
		}
		if err := rs.featureValueRequester.RejectValueFor(f, line); err != nil {
			return nil, err
		}
	}
	if err := rs.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("EOF when requesting value for %s", f.Name())
}

type prompter struct {
	w              io.Writer
	undefinedValue string
}

/*
NewPrompter takes an io.Writer and the undefinedValue coding string and
returns a FeatureValueRequester that writes human readable questions and
rejections to the writer.
*/
func NewPrompter(w io.Writer, undefinedValue string) FeatureValueRequester {
	return &prompter{w, undefinedValue}
}

func (p *prompter) RequestValueFor(f feature.Feature) error {
	var err error
	switch f := f.(type) {
	case *feature.DiscreteFeature:
		_, err = fmt.Fprintf(p.w, "Please provide the sample's %s:\n(valid values are %v or %s if undefined)\n", f.Name(), f.AvailableValues(), p.undefinedValue)
	case *feature.ContinuousFeature:
		_, err = fmt.Fprintf(p.w, "Please provide the sample's %s:\n(valid values are real numbers or %s if undefined)\n", f.Name(), p.undefinedValue)
	default:
		return fmt.Errorf("unknown feature type %T", f)
	}
	return err
}

func (p *prompter) RejectValueFor(f feature.Feature, value interface{}) error {
	var err error
	switch f := f.(type) {
	case *feature.DiscreteFeature:
		_, err = fmt.Fprintf(p.w, "%v is not a valid value for the sample's %s. Please provide one of %v or %s if undefined.\n", value, f.Name(), f.AvailableValues(), p.undefinedValue)
	case *feature.ContinuousFeature:
		_, err = fmt.Fprintf(p.w, "%v is not a valid value for the sample's %s. Please provide a real number or %s if undefined.\n", value, f.Name(), p.undefinedValue)
	default:
		return fmt.Errorf("unknown feature type %T", f)
	}
	return err
}
