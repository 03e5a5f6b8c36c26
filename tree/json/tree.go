/*
Package json encodes decision trees as nested JSON documents and decodes
them back.
*/
package json

import (
	"encoding/json"
	"fmt"

	"github.com/gluco-ml/gluco/feature"
	"github.com/gluco-ml/gluco/tree"
)

type jsonTree struct {
	Label string    `json:"label"`
	Root  *jsonNode `json:"root"`
}

type jsonNode struct {
	Label    *string      `json:"label,omitempty"`
	Weight   int          `json:"weight,omitempty"`
	Feature  string       `json:"feature,omitempty"`
	Branches []jsonBranch `json:"branches,omitempty"`
}

type jsonBranch struct {
	Value string    `json:"value"`
	Node  *jsonNode `json:"node"`
}

/*
Marshal takes a tree and returns its JSON encoding. Branches of decision
nodes are encoded as an array to keep their order.
*/
func Marshal(t *tree.Tree) ([]byte, error) {
	if t == nil || t.Root == nil {
		return nil, tree.ErrEmptyTree
	}
	if t.Label == nil {
		return nil, fmt.Errorf("encoding tree: tree has no label feature")
	}
	root, err := encodeNode(t.Root)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&jsonTree{t.Label.Name(), root})
}

/*
Unmarshal takes the JSON encoding of a tree and an optional slice of features
and returns the decoded tree. Decision nodes and the label refer to the feature
in the slice with their name; features not found in the slice are rebuilt as
discrete features whose available values are the values of the branches.
*/
func Unmarshal(data []byte, features []feature.Feature) (*tree.Tree, error) {
	jt := &jsonTree{}
	if err := json.Unmarshal(data, jt); err != nil {
		return nil, fmt.Errorf("decoding tree: %v", err)
	}
	if jt.Label == "" {
		return nil, fmt.Errorf("decoding tree: missing label")
	}
	if jt.Root == nil {
		return nil, fmt.Errorf("decoding tree: missing root")
	}
	root, err := decodeNode(jt.Root, features)
	if err != nil {
		return nil, err
	}
	label := feature.Find(features, jt.Label)
	if label == nil {
		label = feature.NewDiscreteFeature(jt.Label, nil)
	}
	return tree.New(root, label), nil
}

func encodeNode(n tree.Node) (*jsonNode, error) {
	switch n := n.(type) {
	case *tree.Leaf:
		label := n.Label
		return &jsonNode{Label: &label, Weight: n.Weight}, nil
	case *tree.Decision:
		jn := &jsonNode{Feature: n.Feature.Name(), Branches: make([]jsonBranch, 0, len(n.Values))}
		for _, v := range n.Values {
			child, err := encodeNode(n.Children[v])
			if err != nil {
				return nil, err
			}
			jn.Branches = append(jn.Branches, jsonBranch{v, child})
		}
		return jn, nil
	}
	return nil, fmt.Errorf("encoding tree: unknown node type %T", n)
}

func decodeNode(jn *jsonNode, features []feature.Feature) (tree.Node, error) {
	if jn.Label != nil {
		if jn.Feature != "" {
			return nil, fmt.Errorf("decoding tree: node has both label %s and feature %s", *jn.Label, jn.Feature)
		}
		return tree.NewLeaf(*jn.Label, jn.Weight), nil
	}
	if jn.Feature == "" {
		return nil, fmt.Errorf("decoding tree: node has neither label nor feature")
	}
	if len(jn.Branches) == 0 {
		return nil, fmt.Errorf("decoding tree: decision on %s has no branches", jn.Feature)
	}
	f := feature.Find(features, jn.Feature)
	if f == nil {
		values := make([]string, len(jn.Branches))
		for i, b := range jn.Branches {
			values[i] = b.Value
		}
		f = feature.NewDiscreteFeature(jn.Feature, values)
	}
	d := tree.NewDecision(f)
	for _, b := range jn.Branches {
		if b.Node == nil {
			return nil, fmt.Errorf("decoding tree: branch %s of %s has no node", b.Value, jn.Feature)
		}
		if _, dup := d.Child(b.Value); dup {
			return nil, fmt.Errorf("decoding tree: branch %s of %s repeated", b.Value, jn.Feature)
		}
		child, err := decodeNode(b.Node, features)
		if err != nil {
			return nil, err
		}
		d.AddChild(b.Value, child)
	}
	return d, nil
}
