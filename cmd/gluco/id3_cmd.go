package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/gluco-ml/gluco/dataset"
	"github.com/gluco-ml/gluco/dataset/csv"
	"github.com/gluco-ml/gluco/dataset/inputsample"
	"github.com/gluco-ml/gluco/feature"
	"github.com/gluco-ml/gluco/feature/yaml"
	"github.com/gluco-ml/gluco/id3"
	"github.com/gluco-ml/gluco/log"
	"github.com/gluco-ml/gluco/modelstore"
	"github.com/gluco-ml/gluco/tree"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func id3Cmd(rootConfig *rootCmdConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "id3",
		Short: "Grow, test and use ID3 decision trees",
		Long:  `Grow decision trees with the ID3 algorithm over the discrete and derived binary features of your data, test them and use them to make predictions`,
	}
	cmd.AddCommand(id3GrowCmd(rootConfig), id3TestCmd(rootConfig), id3PredictCmd(rootConfig), id3ShowCmd(rootConfig))
	return cmd
}

type id3GrowCmdConfig struct {
	*rootCmdConfig
	data           dataFlags
	model          modelFlags
	pruneStrategy  string
	minimumEntropy float64
}

func id3GrowCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &id3GrowCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "grow",
		Short: "Grow a tree from a set of data",
		Long:  `Grow a tree from a set of data to predict the label feature of its metadata.`,
		Run: func(cmd *cobra.Command, args []string) {
			config.resolve(cmd)
			err := config.Validate()
			if err != nil {
				exitWith(1, err)
			}
			md, err := config.data.metadata()
			if err != nil {
				exitWith(2, err)
			}
			trainingSet, err := config.data.dataset(config.Context(), md)
			if err != nil {
				exitWith(3, err)
			}
			pruner, err := id3.ParsePruner(config.pruneStrategy)
			if err != nil {
				exitWith(4, err)
			}
			count, err := trainingSet.Count(config.Context())
			if err != nil {
				exitWith(5, fmt.Errorf("counting training set samples: %v", err))
			}
			features := md.Discrete()
			log.Logger().Info("growing tree",
				zap.Int("samples", count),
				zap.Int("features", len(features)),
				zap.String("label", md.Label.Name()),
				zap.String("prune", config.pruneStrategy))
			builder := &id3.Builder{Pruning: id3.PruningStrategy{Pruner: pruner, MinimumEntropy: config.minimumEntropy}}
			t, err := builder.Train(config.Context(), trainingSet, md.Label, features)
			if err != nil {
				exitWith(6, fmt.Errorf("growing the tree: %v", err))
			}
			log.Logger().Info("tree grown", zap.Int("depth", t.Depth()), zap.Int("leaves", t.Leaves()))
			log.Logger().Debug("grown tree\n" + t.String())
			err = config.model.save(config.Context(), modelstore.NewID3Model(config.model.name, t))
			if err != nil {
				exitWith(7, err)
			}
		},
	}
	config.data.register(cmd, "grow the tree")
	config.model.register(cmd, "path to a file to which the grown tree will be written in JSON format (defaults to STDOUT)", string(modelstore.ID3))
	cmd.PersistentFlags().StringVarP(&(config.pruneStrategy), "prune", "p", "none", "pruning strategy to apply, the following are valid: none, mdl, minimum-information-gain:[VALUE]")
	cmd.PersistentFlags().Float64Var(&(config.minimumEntropy), "minimum-entropy", 0, "entropy at or under which a node becomes a leaf")
	return cmd
}

func (gcc *id3GrowCmdConfig) resolve(cmd *cobra.Command) {
	gcc.data.resolve(cmd, gcc.settings)
	gcc.model.resolve(cmd, gcc.settings)
	if !cmd.Flags().Changed("prune") {
		gcc.pruneStrategy = gcc.settings.ID3.Prune
	}
}

func (gcc *id3GrowCmdConfig) Validate() error {
	if err := gcc.data.Validate(); err != nil {
		return err
	}
	if gcc.minimumEntropy < 0 {
		return fmt.Errorf("minimum-entropy flag must not be negative")
	}
	return gcc.model.Validate(false)
}

type id3TestCmdConfig struct {
	*rootCmdConfig
	data  dataFlags
	model modelFlags
}

func id3TestCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &id3TestCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test the performance of a tree",
		Long:  `Test the performance of a tree against a test data set`,
		Run: func(cmd *cobra.Command, args []string) {
			config.data.resolve(cmd, config.settings)
			config.model.resolve(cmd, config.settings)
			err := config.Validate()
			if err != nil {
				exitWith(1, err)
			}
			md, err := config.data.metadata()
			if err != nil {
				exitWith(2, err)
			}
			testingSet, err := config.data.dataset(config.Context(), md)
			if err != nil {
				exitWith(3, err)
			}
			m, err := config.model.load(config.Context(), modelstore.ID3, md.All())
			if err != nil {
				exitWith(4, err)
			}
			count, err := testingSet.Count(config.Context())
			if err != nil {
				exitWith(5, fmt.Errorf("counting testing set samples: %v", err))
			}
			log.Logger().Info("testing tree", zap.String("name", m.Name), zap.Int("samples", count))
			successRate, errorCount, err := m.Tree.Test(config.Context(), testingSet)
			if err != nil {
				exitWith(6, fmt.Errorf("testing tree: %v", err))
			}
			fmt.Printf("%f success rate, failed to make a prediction for %d samples\n", successRate, errorCount)
		},
	}
	config.data.register(cmd, "test the tree")
	config.model.register(cmd, "path to a file from which the tree to test will be read and parsed as JSON", string(modelstore.ID3))
	return cmd
}

func (tcc *id3TestCmdConfig) Validate() error {
	if err := tcc.data.Validate(); err != nil {
		return err
	}
	return tcc.model.Validate(true)
}

type id3PredictCmdConfig struct {
	*rootCmdConfig
	metadataInput  string
	model          modelFlags
	values         map[string]string
	interactive    bool
	undefinedValue string
}

func id3PredictCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &id3PredictCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the label of a sample",
		Long: `Use a tree to predict the label of a sample given with --sample, or answering
a reduced set of questions about its features with --interactive`,
		Run: func(cmd *cobra.Command, args []string) {
			if !cmd.Flags().Changed("metadata") {
				config.metadataInput = config.settings.Data.Metadata
			}
			config.model.resolve(cmd, config.settings)
			err := config.Validate()
			if err != nil {
				exitWith(1, err)
			}
			md, err := yaml.ReadMetadata(config.metadataInput)
			if err != nil {
				exitWith(2, err)
			}
			m, err := config.model.load(config.Context(), modelstore.ID3, md.All())
			if err != nil {
				exitWith(3, err)
			}
			var sample dataset.Sample
			if config.interactive {
				sample = inputsample.New(os.Stdin, md.Features, inputsample.NewPrompter(os.Stdout, config.undefinedValue), config.undefinedValue)
			} else {
				sample, err = parseSample(md, config.values)
				if err != nil {
					exitWith(4, err)
				}
			}
			label, err := m.Tree.Predict(config.Context(), dataset.DeriveSample(sample, md.Derived))
			if errors.Is(err, tree.ErrUnmatchedPath) {
				exitWith(5, fmt.Errorf("no prediction: %v", err))
			}
			if err != nil {
				exitWith(6, err)
			}
			fmt.Printf("Predicted %s is %s\n", m.Tree.Label.Name(), label)
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the features of the sample (required)")
	config.model.register(cmd, "path to a file from which the tree will be read and parsed as JSON", string(modelstore.ID3))
	cmd.PersistentFlags().StringToStringVarP(&(config.values), "sample", "s", nil, "feature values of the sample as name=value pairs")
	cmd.PersistentFlags().BoolVar(&(config.interactive), "interactive", false, "ask for the values of the features the tree needs")
	cmd.PersistentFlags().StringVarP(&(config.undefinedValue), "undefined-value", "u", csv.UndefinedValue, "value to input to define a sample's value for a feature as undefined")
	return cmd
}

func (pcc *id3PredictCmdConfig) Validate() error {
	if pcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if pcc.interactive == (len(pcc.values) > 0) {
		return fmt.Errorf("exactly one of the sample and interactive flags must be set")
	}
	return pcc.model.Validate(true)
}

/*
parseSample builds a sample from name=value pairs of declared features.
Continuous values are parsed as numbers and the undefined value marks
missing ones.
*/
func parseSample(md *yaml.Metadata, values map[string]string) (dataset.Sample, error) {
	featureValues := make(map[string]interface{}, len(values))
	for name, raw := range values {
		f := feature.Find(md.Features, name)
		if f == nil {
			return nil, fmt.Errorf("feature %s is not declared in the metadata", name)
		}
		var value interface{}
		if raw != csv.UndefinedValue {
			if _, ok := f.(*feature.ContinuousFeature); ok {
				fv, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					return nil, fmt.Errorf("parsing value of %s: %v", name, err)
				}
				value = fv
			} else {
				value = raw
			}
		}
		if ok, err := f.Valid(value); !ok {
			return nil, fmt.Errorf("invalid value %s for feature %s: %v", raw, name, err)
		}
		featureValues[name] = value
	}
	return dataset.NewSample(featureValues), nil
}

type id3ShowCmdConfig struct {
	*rootCmdConfig
	model modelFlags
}

func id3ShowCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &id3ShowCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a tree",
		Long:  `Print a tree as indented text, one line per branch`,
		Run: func(cmd *cobra.Command, args []string) {
			config.model.resolve(cmd, config.settings)
			err := config.model.Validate(true)
			if err != nil {
				exitWith(1, err)
			}
			m, err := config.model.load(config.Context(), modelstore.ID3, nil)
			if err != nil {
				exitWith(2, err)
			}
			fmt.Printf("%s (trained %s, depth %d, %d leaves)\n", m.Name, m.TrainedAt.Format("2006-01-02 15:04:05"), m.Tree.Depth(), m.Tree.Leaves())
			fmt.Print(m.Tree)
		},
	}
	config.model.register(cmd, "path to a file from which the tree will be read and parsed as JSON", string(modelstore.ID3))
	return cmd
}
