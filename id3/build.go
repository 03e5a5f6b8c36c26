package id3

import (
	"context"
	"fmt"

	"github.com/gluco-ml/gluco/dataset"
	"github.com/gluco-ml/gluco/feature"
	"github.com/gluco-ml/gluco/log"
	"github.com/gluco-ml/gluco/tree"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

/*
Builder induces decision trees with ID3. The zero value grows unpruned trees.
*/
type Builder struct {
	Pruning PruningStrategy
}

/*
Build takes a context.Context, a dataset, a label feature and the candidate
features and returns the root of a decision tree built from the dataset with
the default Builder.
*/
func Build(ctx context.Context, s dataset.Dataset, label feature.Feature, candidates []feature.Feature) (tree.Node, error) {
	return (&Builder{}).Build(ctx, s, label, candidates)
}

/*
Train takes a context.Context, a dataset, a label feature and the features to
learn from and returns the decision tree built with the default Builder.
*/
func Train(ctx context.Context, s dataset.Dataset, label feature.Feature, features []feature.Feature) (*tree.Tree, error) {
	return (&Builder{}).Train(ctx, s, label, features)
}

/*
Train behaves like Build and wraps the resulting root node in a tree.Tree
predicting the label.
*/
func (b *Builder) Train(ctx context.Context, s dataset.Dataset, label feature.Feature, features []feature.Feature) (*tree.Tree, error) {
	root, err := b.Build(ctx, s, label, features)
	if err != nil {
		return nil, err
	}
	return tree.New(root, label), nil
}

/*
Build takes a context.Context, a dataset, a label feature and the candidate
features and returns the root of a decision tree built recursively:

  - if every record has the same label, a leaf with it
  - if no candidate is left, a leaf with the majority label
  - otherwise a decision node on the candidate with strictly maximal
    information gain, the first in candidate order among tied ones, with a
    child for each of its values present in the dataset built over the
    remaining candidates

Majority ties are resolved with the label seen first in the dataset. When the
pruning strategy prunes every candidate partition or the node entropy is not
above its minimum, the node becomes a majority leaf.

An empty dataset returns ErrEmptyDataset. Records that do not define their
label or a candidate feature return ErrUndefinedValue.
*/
func (b *Builder) Build(ctx context.Context, s dataset.Dataset, label feature.Feature, candidates []feature.Feature) (tree.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	labels, err := newDistribution(ctx, s, label)
	if err != nil {
		return nil, err
	}
	if len(labels.values) == 1 {
		return tree.NewLeaf(labels.values[0], labels.total), nil
	}
	majority := tree.NewLeaf(labels.majority(), labels.total)
	if len(candidates) == 0 || labels.entropy() <= b.Pruning.MinimumEntropy {
		return majority, nil
	}
	best, err := b.selectPartition(ctx, s, label, candidates)
	if err != nil {
		return nil, err
	}
	if best == nil {
		return majority, nil
	}
	path, err := nodePath(ctx, s)
	if err != nil {
		return nil, err
	}
	log.Logger().Debug("split dataset",
		zap.Strings("path", path),
		zap.String("feature", best.Feature.Name()),
		zap.Float64("information_gain", best.InformationGain),
		zap.Int("samples", labels.total),
		zap.Int("subsets", len(best.Subsets)))
	remaining := lo.Filter(candidates, func(f feature.Feature, _ int) bool {
		return f.Name() != best.Feature.Name()
	})
	d := tree.NewDecision(best.Feature)
	for _, subset := range best.Subsets {
		if subset.Count == 0 {
			d.AddChild(subset.Value, tree.NewLeaf(majority.Label, 0))
			continue
		}
		child, err := b.Build(ctx, subset.Dataset, label, remaining)
		if err != nil {
			return nil, err
		}
		d.AddChild(subset.Value, child)
	}
	return d, nil
}

func (b *Builder) selectPartition(ctx context.Context, s dataset.Dataset, label feature.Feature, candidates []feature.Feature) (*Partition, error) {
	pruner := b.Pruning.Pruner
	if pruner == nil {
		pruner = NoPruner()
	}
	var best *Partition
	for _, f := range candidates {
		p, err := NewPartition(ctx, s, f, label)
		if err != nil {
			return nil, err
		}
		pruned, err := pruner.Prune(ctx, s, p, label)
		if err != nil {
			return nil, err
		}
		if pruned {
			continue
		}
		if best == nil || p.InformationGain > best.InformationGain {
			best = p
		}
	}
	return best, nil
}

// nodePath lists the criteria that led from the root to the dataset, root first.
func nodePath(ctx context.Context, s dataset.Dataset) ([]string, error) {
	criteria, err := s.Criteria(ctx)
	if err != nil {
		return nil, err
	}
	path := make([]string, len(criteria))
	for i, c := range criteria {
		path[len(criteria)-1-i] = fmt.Sprint(c)
	}
	return path, nil
}
