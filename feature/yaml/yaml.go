/*
Package yaml provides methods to parse feature.Feature specifications
also known as metadata, from YAML documents.
*/
package yaml

import (
	"fmt"
	"os"

	"github.com/gluco-ml/gluco/feature"
	yaml "gopkg.in/yaml.v2"
)

/*
Metadata describes the columns of a dataset: its features in declaration
order, the label feature to predict and the binary features derived from
continuous ones.
*/
type Metadata struct {
	Label    *feature.DiscreteFeature
	Features []feature.Feature
	Derived  []*feature.BinaryFeature
}

type document struct {
	Label    string        `yaml:"label"`
	Features yaml.MapSlice `yaml:"features"`
	Derived  []struct {
		Name      string  `yaml:"name"`
		Source    string  `yaml:"source"`
		Operator  string  `yaml:"operator"`
		Threshold float64 `yaml:"threshold"`
	} `yaml:"derived"`
}

/*
ParseMetadata takes a slice of bytes with a metadata specification in YML and
returns the Metadata parsed from it or an error.

The YML is expected to be an object containing a features property. The value
for this should be an object with a property for each feature with its name
and either a string value of 'continuous' for continuous features or a list of
valid values for discrete features. Features keep the order in which they are
declared.

The optional label property names the discrete feature to predict, and
defaults to the last declared feature. The optional derived property lists
binary features with a source continuous feature, an operator among
>, >=, <, <= and a threshold.
*/
func ParseMetadata(md []byte) (*Metadata, error) {
	doc := &document{}
	err := yaml.Unmarshal(md, doc)
	if err != nil {
		return nil, fmt.Errorf("parsing yml metadata: %v", err)
	}
	if len(doc.Features) == 0 {
		return nil, fmt.Errorf("metadata file has no feature information")
	}
	m := &Metadata{}
	seen := make(map[string]bool)
	for _, item := range doc.Features {
		fn := fmt.Sprintf("%v", item.Key)
		if seen[fn] {
			return nil, fmt.Errorf("feature %s declared twice", fn)
		}
		seen[fn] = true
		f, err := parseFeature(fn, item.Value)
		if err != nil {
			return nil, err
		}
		m.Features = append(m.Features, f)
	}
	labelName := doc.Label
	if labelName == "" {
		labelName = m.Features[len(m.Features)-1].Name()
	}
	label, ok := feature.Find(m.Features, labelName).(*feature.DiscreteFeature)
	if !ok {
		return nil, fmt.Errorf("label %s must be a declared discrete feature", labelName)
	}
	m.Label = label
	for _, d := range doc.Derived {
		source, ok := feature.Find(m.Features, d.Source).(*feature.ContinuousFeature)
		if !ok {
			return nil, fmt.Errorf("derived feature source %q must be a declared continuous feature", d.Source)
		}
		op, err := feature.ParseOperator(d.Operator)
		if err != nil {
			return nil, fmt.Errorf("derived feature on %s: %v", d.Source, err)
		}
		bf := feature.NewBinaryFeature(d.Name, source, op, d.Threshold)
		if seen[bf.Name()] {
			return nil, fmt.Errorf("feature %s declared twice", bf.Name())
		}
		seen[bf.Name()] = true
		m.Derived = append(m.Derived, bf)
	}
	return m, nil
}

func parseFeature(name string, declaration interface{}) (feature.Feature, error) {
	switch values := declaration.(type) {
	case string:
		if values != "continuous" {
			return nil, fmt.Errorf("invalid declaration %q for feature %s", values, name)
		}
		return feature.NewContinuousFeature(name), nil
	case []interface{}:
		stringVs := []string{}
		for _, v := range values {
			stringVs = append(stringVs, fmt.Sprintf("%v", v))
		}
		return feature.NewDiscreteFeature(name, stringVs), nil
	default:
		return nil, fmt.Errorf("invalid feature declaration of type %T for feature %s", declaration, name)
	}
}

/*
ReadMetadata takes a filepath string, reads its contents and uses
ParseMetadata to parse it. If the file indicated by the filepath cannot be
opened for reading an error will be returned.
*/
func ReadMetadata(filepath string) (*Metadata, error) {
	md, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading metadata yml file %s: %v", filepath, err)
	}
	m, err := ParseMetadata(md)
	if err != nil {
		return nil, fmt.Errorf("parsing metadata yml file %s: %v", filepath, err)
	}
	return m, nil
}

/*
All returns the declared features followed by the derived ones.
*/
func (m *Metadata) All() []feature.Feature {
	all := append([]feature.Feature{}, m.Features...)
	for _, bf := range m.Derived {
		all = append(all, bf)
	}
	return all
}

/*
Discrete returns the discrete features other than the label, followed by the
derived binary features. These are the candidate features of ID3.
*/
func (m *Metadata) Discrete() []feature.Feature {
	var result []feature.Feature
	for _, f := range m.All() {
		if f.Name() == m.Label.Name() {
			continue
		}
		if _, ok := f.(*feature.ContinuousFeature); ok {
			continue
		}
		result = append(result, f)
	}
	return result
}

/*
Continuous returns the continuous features in declaration order. These are
the features Naive Bayes is fitted on.
*/
func (m *Metadata) Continuous() []feature.Feature {
	var result []feature.Feature
	for _, f := range m.Features {
		if _, ok := f.(*feature.ContinuousFeature); ok {
			result = append(result, f)
		}
	}
	return result
}
