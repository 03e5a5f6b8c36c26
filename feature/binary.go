package feature

import (
	"fmt"
	"strconv"
)

// Operator compares a continuous value against a threshold.
type Operator string

// Operators supported on derived binary features.
const (
	GreaterThan    Operator = ">"
	GreaterOrEqual Operator = ">="
	LessThan       Operator = "<"
	LessOrEqual    Operator = "<="
)

const (
	// True is the value a binary feature takes when its rule holds.
	True = "1"
	// False is the value a binary feature takes when its rule does not hold.
	False = "0"
)

/*
ParseOperator takes a string and returns the Operator it represents or an
error if it is not a known operator.
*/
func ParseOperator(s string) (Operator, error) {
	switch op := Operator(s); op {
	case GreaterThan, GreaterOrEqual, LessThan, LessOrEqual:
		return op, nil
	}
	return "", fmt.Errorf("unknown operator %q: expected one of >, >=, <, <=", s)
}

// Apply reports whether x OP threshold holds.
func (o Operator) Apply(x, threshold float64) bool {
	switch o {
	case GreaterThan:
		return x > threshold
	case GreaterOrEqual:
		return x >= threshold
	case LessThan:
		return x < threshold
	case LessOrEqual:
		return x <= threshold
	}
	return false
}

/*
BinaryFeature is a discrete feature taking values True or False that is
derived from a continuous source feature through a threshold rule, such as
Glucose>120.
*/
type BinaryFeature struct {
	*DiscreteFeature
	source    *ContinuousFeature
	operator  Operator
	threshold float64
}

/*
NewBinaryFeature takes a name, a continuous source feature, an operator and a
threshold and returns a BinaryFeature. When name is empty the name of the
feature is the rule itself, e.g. "Glucose>120".
*/
func NewBinaryFeature(name string, source *ContinuousFeature, op Operator, threshold float64) *BinaryFeature {
	if name == "" {
		name = source.Name() + string(op) + strconv.FormatFloat(threshold, 'f', -1, 64)
	}
	return &BinaryFeature{
		DiscreteFeature: NewDiscreteFeature(name, []string{False, True}),
		source:          source,
		operator:        op,
		threshold:       threshold,
	}
}

// Source returns the continuous feature the binary feature is derived from.
func (bf *BinaryFeature) Source() *ContinuousFeature {
	return bf.source
}

// Operator returns the comparison applied to the source value.
func (bf *BinaryFeature) Operator() Operator {
	return bf.operator
}

// Threshold returns the value the source is compared against.
func (bf *BinaryFeature) Threshold() float64 {
	return bf.threshold
}

/*
Derive takes a value of the source feature and returns the value of the
binary feature for it: nil for an undefined value, True or False for a
float64 and an error for anything else.
*/
func (bf *BinaryFeature) Derive(value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}
	x, ok := value.(float64)
	if !ok {
		return nil, fmt.Errorf("binary feature %s expects float64 value for %s, got %T value", bf.Name(), bf.source.Name(), value)
	}
	if bf.operator.Apply(x, bf.threshold) {
		return True, nil
	}
	return False, nil
}

func (bf *BinaryFeature) String() string {
	return bf.Name()
}
