package feature

import (
	"fmt"
	"strconv"

	"github.com/samber/lo"
)

/*
Feature represents a property that can be observed on a record.

Its Valid method reports whether a value can be taken by the feature,
returning an error describing the reason when it cannot.
*/
type Feature interface {
	Name() string
	Valid(interface{}) (bool, error)
}

/*
DiscreteFeature represents a property that can be observed and that can only
take a value among a finite set. ID3 partitions datasets on discrete features
and labels are always discrete.
*/
type DiscreteFeature struct {
	name            string
	availableValues []string
}

/*
ContinuousFeature represents a property that can be observed and that can take
a numeric value. Naive Bayes models are fitted on continuous features.
*/
type ContinuousFeature struct {
	name string
}

/*
NewDiscreteFeature takes a name string and a slice of available value strings
and returns a discrete feature with the given name and available values. An
empty slice of available values means any string is accepted.
*/
func NewDiscreteFeature(name string, availableValues []string) *DiscreteFeature {
	return &DiscreteFeature{name, availableValues}
}

/*
NewContinuousFeature takes a name string and returns a continuous feature with
the given name.
*/
func NewContinuousFeature(name string) *ContinuousFeature {
	return &ContinuousFeature{name}
}

/*
Name returns a string with the name of the feature
*/
func (df *DiscreteFeature) Name() string {
	return df.name
}

/*
Valid receives an interface value and returns a boolean and an error. When the
value parameter is nil or included in the available values of the feature, the
method returns true and nil. Otherwise it returns false and an error describing
the reason.
*/
func (df *DiscreteFeature) Valid(value interface{}) (bool, error) {
	if value == nil {
		return true, nil
	}
	vs, ok := value.(string)
	if !ok {
		return false, fmt.Errorf("discrete feature %s expects string value, got %T value", df.Name(), value)
	}
	if len(df.availableValues) == 0 {
		return true, nil
	}
	for _, av := range df.availableValues {
		if av == vs {
			return true, nil
		}
	}
	return false, fmt.Errorf("discrete feature %s got unknown value %s", df.Name(), vs)
}

/*
AvailableValues returns a string slice with the values available for the feature
*/
func (df *DiscreteFeature) AvailableValues() []string {
	return df.availableValues
}

func (df *DiscreteFeature) String() string {
	return df.name
}

/*
Name returns a string with the name of the feature
*/
func (cf *ContinuousFeature) Name() string {
	return cf.name
}

/*
Valid receives an interface value and returns a boolean and an error. When the
value parameter is nil or a float64 it returns true and nil, otherwise it
returns false and an error describing the reason.
*/
func (cf *ContinuousFeature) Valid(value interface{}) (bool, error) {
	if value == nil {
		return true, nil
	}
	_, ok := value.(float64)
	if !ok {
		return false, fmt.Errorf("continuous feature %s expects float64 value, got %T value", cf.Name(), value)
	}
	return true, nil
}

func (cf *ContinuousFeature) String() string {
	return cf.name
}

/*
Format returns the categorical key for a value taken by a feature and true,
or an empty string and false when the value is undefined (nil). Strings are
returned unchanged, float64 values use the shortest representation that
parses back to the same number so 1.0 becomes "1".
*/
func Format(value interface{}) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		if v {
			return "1", true
		}
		return "0", true
	default:
		return fmt.Sprintf("%v", v), true
	}
}

/*
Names returns the names of the given features in order.
*/
func Names(features []Feature) []string {
	return lo.Map(features, func(f Feature, _ int) string { return f.Name() })
}

/*
Find returns the feature with the given name from a slice of features, or
nil if none has it.
*/
func Find(features []Feature, name string) Feature {
	f, _ := lo.Find(features, func(f Feature) bool { return f.Name() == name })
	return f
}
