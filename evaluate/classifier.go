/*
Package evaluate measures the accuracy of classifiers on held out records,
either with a single train/test split or with k-fold cross validation.
*/
package evaluate

import (
	"context"
	"errors"

	"github.com/gluco-ml/gluco/dataset"
	"github.com/gluco-ml/gluco/feature"
	"github.com/gluco-ml/gluco/id3"
	"github.com/gluco-ml/gluco/nb"
	"github.com/gluco-ml/gluco/tree"
)

/*
Classifier predicts the label of a sample. Classifiers that cannot make a
prediction for a sample return tree.ErrUnmatchedPath or
nb.ErrDegeneratePosterior.
*/
type Classifier interface {
	Classify(ctx context.Context, s dataset.Sample) (string, error)
}

// ClassifierFunc wraps a function to implement Classifier.
type ClassifierFunc func(ctx context.Context, s dataset.Sample) (string, error)

// Classify calls cf(ctx, s).
func (cf ClassifierFunc) Classify(ctx context.Context, s dataset.Sample) (string, error) {
	return cf(ctx, s)
}

/*
Trainer builds a Classifier from a training dataset.
*/
type Trainer interface {
	Train(ctx context.Context, s dataset.Dataset) (Classifier, error)
}

// TrainerFunc wraps a function to implement Trainer.
type TrainerFunc func(ctx context.Context, s dataset.Dataset) (Classifier, error)

// Train calls tf(ctx, s).
func (tf TrainerFunc) Train(ctx context.Context, s dataset.Dataset) (Classifier, error) {
	return tf(ctx, s)
}

/*
TreeClassifier returns a Classifier predicting with a decision tree.
*/
func TreeClassifier(t *tree.Tree) Classifier {
	return ClassifierFunc(func(ctx context.Context, s dataset.Sample) (string, error) {
		return t.Predict(ctx, s)
	})
}

/*
NaiveBayesClassifier returns a Classifier predicting the most probable class
of a Naive Bayes model.
*/
func NaiveBayesClassifier(m *nb.Model) Classifier {
	return ClassifierFunc(func(ctx context.Context, s dataset.Sample) (string, error) {
		p, err := m.PredictSample(ctx, s)
		if err != nil {
			return "", err
		}
		return p.Class, nil
	})
}

/*
ID3 returns a Trainer growing decision trees with the given builder.
*/
func ID3(b *id3.Builder, label feature.Feature, features []feature.Feature) Trainer {
	return TrainerFunc(func(ctx context.Context, s dataset.Dataset) (Classifier, error) {
		t, err := b.Train(ctx, s, label, features)
		if err != nil {
			return nil, err
		}
		return TreeClassifier(t), nil
	})
}

/*
NaiveBayes returns a Trainer fitting Naive Bayes models with the given
trainer.
*/
func NaiveBayes(t *nb.Trainer, label feature.Feature, features []feature.Feature) Trainer {
	return TrainerFunc(func(ctx context.Context, s dataset.Dataset) (Classifier, error) {
		m, err := t.Train(ctx, s, label, features)
		if err != nil {
			return nil, err
		}
		return NaiveBayesClassifier(m), nil
	})
}

/*
Score summarizes the predictions of a classifier over a dataset. Unmatched
predictions are the ones the classifier could not make; they count as wrong.
*/
type Score struct {
	Accuracy  float64
	Correct   int
	Unmatched int
	Total     int
}

/*
Accuracy takes a context.Context, a classifier, a test dataset and the label
feature and returns the Score of the classifier on the dataset.
*/
func Accuracy(ctx context.Context, c Classifier, s dataset.Dataset, label feature.Feature) (Score, error) {
	var score Score
	samples, err := s.Samples(ctx)
	if err != nil {
		return score, err
	}
	for _, sample := range samples {
		if err := ctx.Err(); err != nil {
			return score, err
		}
		score.Total++
		predicted, err := c.Classify(ctx, sample)
		if errors.Is(err, tree.ErrUnmatchedPath) || errors.Is(err, nb.ErrDegeneratePosterior) {
			score.Unmatched++
			continue
		}
		if err != nil {
			return score, err
		}
		v, err := sample.ValueFor(ctx, label)
		if err != nil {
			return score, err
		}
		if actual, ok := feature.Format(v); ok && actual == predicted {
			score.Correct++
		}
	}
	if score.Total > 0 {
		score.Accuracy = float64(score.Correct) / float64(score.Total)
	}
	return score, nil
}
