package tree

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gluco-ml/gluco/dataset"
	"github.com/gluco-ml/gluco/feature"
)

// Tree represents a decision tree. It is composed of its root
// node and the label feature it is able to predict.
type Tree struct {
	Root  Node
	Label feature.Feature
}

// New takes the root Node and a label feature and returns a tree
// predicting the label.
func New(root Node, label feature.Feature) *Tree {
	return &Tree{root, label}
}

// Predict takes a sample and returns the label predicted by the tree.
// ErrUnmatchedPath is returned (possibly wrapped) when the sample leads
// to no leaf; other errors come from obtaining values from the sample.
func (t *Tree) Predict(ctx context.Context, s feature.Sample) (string, error) {
	if t == nil || t.Root == nil {
		return "", ErrEmptyTree
	}
	n := t.Root
	for {
		switch node := n.(type) {
		case *Leaf:
			return node.Label, nil
		case *Decision:
			v, err := s.ValueFor(ctx, node.Feature)
			if err != nil {
				return "", fmt.Errorf("predicting sample: obtaining value for %s: %w", node.Feature.Name(), err)
			}
			key, ok := feature.Format(v)
			if !ok {
				return "", fmt.Errorf("%w: %s is undefined", ErrUnmatchedPath, node.Feature.Name())
			}
			child, ok := node.Child(key)
			if !ok {
				return "", fmt.Errorf("%w: %s has unseen value %s", ErrUnmatchedPath, node.Feature.Name(), key)
			}
			n = child
		default:
			return "", fmt.Errorf("predicting sample: unknown node type %T", n)
		}
	}
}

/*
Test takes a context.Context and a dataset and returns three values:
  - the prediction success rate of the tree over the given dataset for its label
  - the number of failing predictions for the dataset because of ErrUnmatchedPath errors
  - an error if a prediction could not be made for reasons other than the tree not
    being able to do so. If this is not nil, the other values will be 0.0 and 0
    respectively

Unmatched samples count as failed predictions. An empty dataset has a success
rate of 0.
*/
func (t *Tree) Test(ctx context.Context, s dataset.Dataset) (float64, int, error) {
	samples, err := s.Samples(ctx)
	if err != nil {
		return 0.0, 0, err
	}
	if len(samples) == 0 {
		return 0.0, 0, nil
	}
	var hits, unmatched int
	for _, sample := range samples {
		p, err := t.Predict(ctx, sample)
		if err != nil {
			if !errors.Is(err, ErrUnmatchedPath) {
				return 0.0, 0, err
			}
			unmatched++
			continue
		}
		v, err := sample.ValueFor(ctx, t.Label)
		if err != nil {
			return 0.0, 0, err
		}
		if key, ok := feature.Format(v); ok && key == p {
			hits++
		}
	}
	return float64(hits) / float64(len(samples)), unmatched, nil
}

// Traverse takes a context, bottomup boolean and an
// error-returning function that takes a context and a node
// as parameters, and goes through the tree running the
// function with the context and every traversed node.
// Traverse will call the function with a parent node before
// calling it for its children if bottomup is false, and
// call it after its children if bottomup is true. Children
// are visited in the order of their values.
// If the given context times out or is cancelled, the context
// error is returned. If the call to the function returns an
// error, the traversing is aborted and the error is returned.
func (t *Tree) Traverse(ctx context.Context, bottomup bool, f func(context.Context, Node) error) error {
	if t == nil || t.Root == nil {
		return nil
	}
	return traverse(ctx, t.Root, bottomup, f)
}

func traverse(ctx context.Context, n Node, bottomup bool, f func(context.Context, Node) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !bottomup {
		if err := f(ctx, n); err != nil {
			return err
		}
	}
	if d, ok := n.(*Decision); ok {
		for _, v := range d.Values {
			if err := traverse(ctx, d.Children[v], bottomup, f); err != nil {
				return err
			}
		}
	}
	if bottomup {
		return f(ctx, n)
	}
	return nil
}

// Depth returns the number of decision nodes on the longest path
// from the root to a leaf.
func (t *Tree) Depth() int {
	if t == nil {
		return 0
	}
	return depth(t.Root)
}

func depth(n Node) int {
	d, ok := n.(*Decision)
	if !ok {
		return 0
	}
	deepest := 0
	for _, child := range d.Children {
		if cd := depth(child); cd > deepest {
			deepest = cd
		}
	}
	return deepest + 1
}

// Leaves returns the number of leaves on the tree.
func (t *Tree) Leaves() int {
	count := 0
	_ = t.Traverse(context.Background(), false, func(_ context.Context, n Node) error {
		if _, ok := n.(*Leaf); ok {
			count++
		}
		return nil
	})
	return count
}

func (t *Tree) String() string {
	if t == nil || t.Root == nil {
		return ""
	}
	return subtreeString(t.Root)
}

func subtreeString(n Node) string {
	switch n := n.(type) {
	case *Leaf:
		return fmt.Sprintf("%s (%d)\n", n.Label, n.Weight)
	case *Decision:
		var b strings.Builder
		fmt.Fprintf(&b, "%s\n", n.Feature.Name())
		for i, v := range n.Values {
			child := n.Children[v]
			if leaf, ok := child.(*Leaf); ok {
				fmt.Fprintf(&b, "|__[%s] -> %s", v, subtreeString(leaf))
				continue
			}
			fmt.Fprintf(&b, "|__[%s]\n", v)
			indent := "|  "
			if i == len(n.Values)-1 {
				indent = "   "
			}
			for _, line := range strings.Split(subtreeString(child), "\n") {
				if len(line) > 0 {
					fmt.Fprintf(&b, "%s%s\n", indent, line)
				}
			}
		}
		return b.String()
	}
	return fmt.Sprintf("ERROR: unknown node type %T\n", n)
}
