package evaluate

import (
	"context"
	"fmt"

	"github.com/gluco-ml/gluco/dataset"
	"github.com/gluco-ml/gluco/feature"
	"github.com/gluco-ml/gluco/log"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// CrossValidation holds the Score of every fold and the mean and
// standard deviation of their accuracies.
type CrossValidation struct {
	Scores []Score
	Mean   float64
	StdDev float64
}

/*
CrossValidate takes a context.Context, a dataset, a Trainer, the label
feature, the number of folds, a seed and the number of folds that may be
trained at the same time, and returns the CrossValidation of the trainer.
For every fold a classifier is trained on its training dataset and scored
on its test one. The first error cancels the remaining folds.
*/
func CrossValidate(ctx context.Context, s dataset.Dataset, trainer Trainer, label feature.Feature, k int, seed int64, jobs int) (*CrossValidation, error) {
	folds, err := KFold(ctx, s, k, seed)
	if err != nil {
		return nil, err
	}
	if jobs < 1 {
		jobs = 1
	}
	scores := make([]Score, len(folds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, fold := range folds {
		g.Go(func() error {
			c, err := trainer.Train(gctx, fold.Train)
			if err != nil {
				return fmt.Errorf("training fold %d: %w", i+1, err)
			}
			scores[i], err = Accuracy(gctx, c, fold.Test, label)
			if err != nil {
				return fmt.Errorf("testing fold %d: %w", i+1, err)
			}
			log.Logger().Debug("cross validation fold",
				zap.Int("fold", i+1),
				zap.Float64("accuracy", scores[i].Accuracy),
				zap.Int("unmatched", scores[i].Unmatched))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	accuracies := lo.Map(scores, func(s Score, _ int) float64 { return s.Accuracy })
	mean, std := stat.PopMeanStdDev(accuracies, nil)
	return &CrossValidation{scores, mean, std}, nil
}
