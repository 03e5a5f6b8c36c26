package id3

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gluco-ml/gluco/dataset"
	"github.com/gluco-ml/gluco/feature"
)

// PruningStrategy holds the configuration
// for when a node must not be partitioned further
// or at all.
type PruningStrategy struct {
	// Pruner is applied to the partition of a node's
	// dataset with every candidate feature to determine
	// if the result is worth incorporating into the tree.
	// A nil Pruner never prunes.
	Pruner
	// MinimumEntropy is the maximum value of
	// entropy for a node that prevents it from
	// being branched out at all. In other words,
	// nodes whose training dataset has an
	// entropy equal or below this will become leaves.
	MinimumEntropy float64
}

/*
Pruner is an interface wrapping the Prune method, that can be used
to decide whether a partition is good enough to become part of a tree
or if it must be pruned instead.

The Prune method takes a context, dataset, a partition and a label Feature and
returns a boolean: true to indicate the partition must be pruned, false to
allow its adding to the tree and further development.
*/
type Pruner interface {
	Prune(ctx context.Context, s dataset.Dataset, p *Partition, label feature.Feature) (bool, error)
}

/*
PrunerFunc wraps a function with the Prune method signature to implement
the Pruner interface
*/
type PrunerFunc func(ctx context.Context, s dataset.Dataset, p *Partition, label feature.Feature) (bool, error)

/*
Prune takes a context.Context, a dataset, a partition and a label Feature and
invokes the PrunerFunc with those parameters to return its boolean result.
*/
func (pf PrunerFunc) Prune(ctx context.Context, s dataset.Dataset, p *Partition, label feature.Feature) (bool, error) {
	return pf(ctx, s, p, label)
}

/*
MDLPruner returns a Pruner whose Prune method evaluates a minimum information
gain for the partition and returns true if the partition information gain is below
this minimum and false otherwise.
This minimum is calculated as
(1/N) x log2(N-1) + (1/N) x [ log2 (3^k-2) - (k x Entropy(S) – k1 x Entropy(S1) – k2 x Entropy(S2) ... - ki x Entropy(Si)]
with
  - N being the number of elements in the dataset
  - k being the number of different values for the label feature on the dataset
  - k1, k2, ... ki being the number of different values for the label feature on the subset i
  - S1, S2, ... Si being the subsets of the partition
*/
func MDLPruner() Pruner {
	return PrunerFunc(func(ctx context.Context, s dataset.Dataset, p *Partition, label feature.Feature) (bool, error) {
		d, err := newDistribution(ctx, s, label)
		if err != nil {
			return false, err
		}
		n := float64(d.total)
		k := float64(len(d.values))
		minimum := math.Log2(n-1.0) + math.Log2(math.Pow(3.0, k)-2) - k*d.entropy()
		for _, st := range p.Subsets {
			stValues, err := st.Dataset.FeatureValues(ctx, label)
			if err != nil {
				return false, err
			}
			minimum += float64(len(stValues)) * st.Entropy
		}
		minimum = minimum / n
		return minimum > p.InformationGain, nil
	})
}

/*
FixedInformationGainPruner takes an informationGainThreshold float64 value
and returns a Pruner whose Prune method returns whether the informationGainThreshold
is greater or equal to the received partition's information gain
*/
func FixedInformationGainPruner(informationGainThreshold float64) Pruner {
	return PrunerFunc(func(ctx context.Context, s dataset.Dataset, p *Partition, label feature.Feature) (bool, error) {
		return informationGainThreshold >= p.InformationGain, nil
	})
}

/*
NoPruner returns a Pruner whose Prune method always returns false, that is,
never prunes.
*/
func NoPruner() Pruner {
	return PrunerFunc(func(ctx context.Context, s dataset.Dataset, p *Partition, label feature.Feature) (bool, error) {
		return false, nil
	})
}

/*
ParsePruner takes a pruning strategy description and returns its Pruner.
Accepted descriptions are "none" (or empty), "mdl" and
"minimum-information-gain:X" with X a float.
*/
func ParsePruner(description string) (Pruner, error) {
	switch {
	case description == "" || description == "none":
		return NoPruner(), nil
	case description == "mdl":
		return MDLPruner(), nil
	case strings.HasPrefix(description, "minimum-information-gain:"):
		threshold, err := strconv.ParseFloat(strings.TrimPrefix(description, "minimum-information-gain:"), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing minimum information gain: %v", err)
		}
		return FixedInformationGainPruner(threshold), nil
	}
	return nil, fmt.Errorf("unknown pruning strategy %q: expected none, mdl or minimum-information-gain:X", description)
}
