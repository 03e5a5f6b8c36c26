package tree

import (
	"github.com/gluco-ml/gluco/feature"
)

/*
Node is a node of a decision tree: either a *Leaf or a *Decision.
*/
type Node interface {
	node()
}

/*
Leaf is a terminal node holding the label predicted for samples reaching it.
*/
type Leaf struct {
	// The predicted label value
	Label string
	// The number of training samples the leaf was built from
	Weight int
}

/*
Decision is an internal node that selects one of its children with the value
a sample takes for its feature.
*/
type Decision struct {
	// The feature to ask about on the sample being predicted
	Feature feature.Feature
	// The feature values with a child, in the order they were observed
	Values []string
	// The child for every value in Values
	Children map[string]Node
}

func (*Leaf) node()     {}
func (*Decision) node() {}

/*
NewLeaf takes a label and a weight and returns a Leaf.
*/
func NewLeaf(label string, weight int) *Leaf {
	return &Leaf{label, weight}
}

/*
NewDecision takes a feature and returns a Decision on it with no children.
*/
func NewDecision(f feature.Feature) *Decision {
	return &Decision{Feature: f, Children: make(map[string]Node)}
}

/*
AddChild sets the child for a value of the decision feature. Adding a child
for a value that already has one replaces it and keeps its position.
*/
func (d *Decision) AddChild(value string, n Node) {
	if _, ok := d.Children[value]; !ok {
		d.Values = append(d.Values, value)
	}
	d.Children[value] = n
}

/*
Child returns the child for a value of the decision feature and whether there
is one.
*/
func (d *Decision) Child(value string) (Node, bool) {
	n, ok := d.Children[value]
	return n, ok
}
