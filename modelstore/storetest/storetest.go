/*
Package storetest provides a test suite that every modelstore.Store
implementation runs against its backend.
*/
package storetest

import (
	"context"
	"time"

	"github.com/gluco-ml/gluco/dataset"
	"github.com/gluco-ml/gluco/feature"
	"github.com/gluco-ml/gluco/modelstore"
	"github.com/gluco-ml/gluco/nb"
	"github.com/gluco-ml/gluco/tree"
	"github.com/juju/errors"
	"github.com/stretchr/testify/suite"
)

/*
Suite tests a modelstore.Store. Implementations embed it and set Store in
SetupTest to an empty store.
*/
type Suite struct {
	suite.Suite
	modelstore.Store
}

var trainedAt = time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

// TreeModel returns a named ID3 model splitting on GulaDarah>120.
func TreeModel(name string) *modelstore.Model {
	glucose := feature.NewDiscreteFeature("GulaDarah>120", []string{"0", "1"})
	root := tree.NewDecision(glucose)
	root.AddChild("1", tree.NewLeaf("1", 4))
	root.AddChild("0", tree.NewLeaf("0", 6))
	return &modelstore.Model{
		Name:      name,
		Algorithm: modelstore.ID3,
		TrainedAt: trainedAt,
		Tree:      tree.New(root, feature.NewDiscreteFeature("Hasil", []string{"0", "1"})),
	}
}

// NaiveBayesModel returns a named Naive Bayes model on Glucose.
func NaiveBayesModel(name string) *modelstore.Model {
	return &modelstore.Model{
		Name:      name,
		Algorithm: modelstore.NaiveBayes,
		TrainedAt: trainedAt,
		NaiveBayes: &nb.Model{
			Label:  "Outcome",
			Priors: nb.Priors{"1": 0.35, "0": 0.65},
			Statistics: &nb.ClassStatistics{
				Classes:  []string{"1", "0"},
				Features: []string{"Glucose"},
				Moments: map[string][]nb.Moments{
					"1": {{Mean: 141.25, StdDev: 31.94}},
					"0": {{Mean: 109.98, StdDev: 26.14}},
				},
			},
		},
	}
}

func (s *Suite) TearDownTest() {
	s.NoError(s.Store.Close(context.Background()))
}

func (s *Suite) TestSaveLoadTree() {
	ctx := context.Background()
	err := s.Save(ctx, TreeModel("id3"))
	s.Require().NoError(err)
	m, err := s.Load(ctx, "id3", nil)
	s.Require().NoError(err)
	s.Equal("id3", m.Name)
	s.Equal(modelstore.ID3, m.Algorithm)
	s.True(trainedAt.Equal(m.TrainedAt))
	s.Nil(m.NaiveBayes)
	s.Require().NotNil(m.Tree)
	s.Equal(TreeModel("id3").Tree.String(), m.Tree.String())
	label, err := m.Tree.Predict(ctx, dataset.NewSample(map[string]interface{}{"GulaDarah>120": "1"}))
	s.NoError(err)
	s.Equal("1", label)
}

func (s *Suite) TestLoadBindsFeatures() {
	ctx := context.Background()
	s.Require().NoError(s.Save(ctx, TreeModel("id3")))
	glucose := feature.NewBinaryFeature("", feature.NewContinuousFeature("GulaDarah"), feature.GreaterThan, 120)
	label := feature.NewDiscreteFeature("Hasil", []string{"0", "1"})
	m, err := s.Load(ctx, "id3", []feature.Feature{glucose, label})
	s.Require().NoError(err)
	s.Same(label, m.Tree.Label)
	root, ok := m.Tree.Root.(*tree.Decision)
	s.Require().True(ok)
	s.Same(glucose, root.Feature)
}

func (s *Suite) TestSaveLoadNaiveBayes() {
	ctx := context.Background()
	err := s.Save(ctx, NaiveBayesModel("nb"))
	s.Require().NoError(err)
	m, err := s.Load(ctx, "nb", nil)
	s.Require().NoError(err)
	s.Equal(modelstore.NaiveBayes, m.Algorithm)
	s.Nil(m.Tree)
	s.Equal(NaiveBayesModel("nb").NaiveBayes, m.NaiveBayes)
}

func (s *Suite) TestSaveReplaces() {
	ctx := context.Background()
	s.Require().NoError(s.Save(ctx, TreeModel("model")))
	replacement := NaiveBayesModel("model")
	s.Require().NoError(s.Save(ctx, replacement))
	m, err := s.Load(ctx, "model", nil)
	s.Require().NoError(err)
	s.Equal(modelstore.NaiveBayes, m.Algorithm)
	names, err := s.List(ctx)
	s.NoError(err)
	s.Equal([]string{"model"}, names)
}

func (s *Suite) TestList() {
	ctx := context.Background()
	names, err := s.List(ctx)
	s.NoError(err)
	s.Empty(names)
	for _, name := range []string{"nb-standardized", "id3", "id3-pruned"} {
		s.Require().NoError(s.Save(ctx, TreeModel(name)))
	}
	names, err = s.List(ctx)
	s.NoError(err)
	s.Equal([]string{"id3", "id3-pruned", "nb-standardized"}, names)
}

func (s *Suite) TestDelete() {
	ctx := context.Background()
	s.Require().NoError(s.Save(ctx, TreeModel("id3")))
	s.NoError(s.Delete(ctx, "id3"))
	_, err := s.Load(ctx, "id3", nil)
	s.True(errors.Is(err, modelstore.ErrModelNotFound), "%v", err)
	err = s.Delete(ctx, "id3")
	s.True(errors.Is(err, modelstore.ErrModelNotFound), "%v", err)
}

func (s *Suite) TestLoadMissing() {
	_, err := s.Load(context.Background(), "missing", nil)
	s.True(errors.Is(err, modelstore.ErrModelNotFound), "%v", err)
}

func (s *Suite) TestSaveInvalid() {
	m := TreeModel("")
	s.Error(s.Save(context.Background(), m))
	m = TreeModel("broken")
	m.Tree = nil
	s.Error(s.Save(context.Background(), m))
}
