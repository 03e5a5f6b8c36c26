package main

import (
	"errors"
	"fmt"

	"github.com/gluco-ml/gluco/evaluate"
	"github.com/gluco-ml/gluco/feature"
	"github.com/gluco-ml/gluco/log"
	"github.com/gluco-ml/gluco/modelstore"
	"github.com/gluco-ml/gluco/nb"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func nbCmd(rootConfig *rootCmdConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nb",
		Short: "Fit, test and use Gaussian Naive Bayes models",
		Long:  `Fit Gaussian Naive Bayes models over the continuous features of your data, test them and use them to make predictions`,
	}
	cmd.AddCommand(nbFitCmd(rootConfig), nbTestCmd(rootConfig), nbPredictCmd(rootConfig))
	return cmd
}

type nbFitCmdConfig struct {
	*rootCmdConfig
	data        dataFlags
	model       modelFlags
	epsilon     float64
	standardize bool
}

func nbFitCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &nbFitCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit a model to a set of data",
		Long:  `Fit a Gaussian Naive Bayes model to a set of data to predict the label feature of its metadata.`,
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
			features := md.Continuous()
			log.Logger().Info("fitting naive bayes model",
				zap.Strings("features", feature.Names(features)),
				zap.String("label", md.Label.Name()),
				zap.Bool("standardize", config.standardize))
			trainer := &nb.Trainer{Epsilon: config.epsilon, Standardize: config.standardize}
			model, err := trainer.Train(config.Context(), trainingSet, md.Label, features)
			if err != nil {
				exitWith(4, fmt.Errorf("fitting the model: %v", err))
			}
			err = config.model.save(config.Context(), modelstore.NewNaiveBayesModel(config.model.name, model))
			if err != nil {
				exitWith(5, err)
			}
		},
	}
	config.data.register(cmd, "fit the model")
	config.model.register(cmd, "path to a file to which the fitted model will be written in JSON format (defaults to STDOUT)", string(modelstore.NaiveBayes))
	cmd.PersistentFlags().Float64Var(&(config.epsilon), "epsilon", nb.Epsilon, "standard deviation used for features that do not vary within a class")
	cmd.PersistentFlags().BoolVar(&(config.standardize), "standardize", false, "standardize features to zero mean and unit variance before fitting")
	return cmd
}

func (fcc *nbFitCmdConfig) resolve(cmd *cobra.Command) {
	fcc.data.resolve(cmd, fcc.settings)
	fcc.model.resolve(cmd, fcc.settings)
	if !cmd.Flags().Changed("epsilon") {
		fcc.epsilon = fcc.settings.NaiveBayes.Epsilon
	}
	if !cmd.Flags().Changed("standardize") {
		fcc.standardize = fcc.settings.NaiveBayes.Standardize
	}
}

func (fcc *nbFitCmdConfig) Validate() error {
	if err := fcc.data.Validate(); err != nil {
		return err
	}
	if fcc.epsilon <= 0 {
		return fmt.Errorf("epsilon flag must be positive")
	}
	return fcc.model.Validate(false)
}

type nbTestCmdConfig struct {
	*rootCmdConfig
	data  dataFlags
	model modelFlags
}

func nbTestCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &nbTestCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test the performance of a model",
		Long:  `Test the performance of a Gaussian Naive Bayes model against a test data set`,
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
			m, err := config.model.load(config.Context(), modelstore.NaiveBayes, nil)
			if err != nil {
				exitWith(4, err)
			}
			log.Logger().Info("testing naive bayes model", zap.String("name", m.Name))
			score, err := evaluate.Accuracy(config.Context(), evaluate.NaiveBayesClassifier(m.NaiveBayes), testingSet, md.Label)
			if err != nil {
				exitWith(5, fmt.Errorf("testing model: %v", err))
			}
			fmt.Printf("%f success rate, failed to make a prediction for %d samples\n", score.Accuracy, score.Unmatched)
		},
	}
	config.data.register(cmd, "test the model")
	config.model.register(cmd, "path to a file from which the model to test will be read and parsed as JSON", string(modelstore.NaiveBayes))
	return cmd
}

func (tcc *nbTestCmdConfig) Validate() error {
	if err := tcc.data.Validate(); err != nil {
		return err
	}
	return tcc.model.Validate(true)
}

type nbPredictCmdConfig struct {
	*rootCmdConfig
	model  modelFlags
	values []float64
}

func nbPredictCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &nbPredictCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the label of an instance",
		Long:  `Use a model to compute the posterior probability of every class for an instance given as feature values in the order the model was fitted with`,
		Run: func(cmd *cobra.Command, args []string) {
			config.model.resolve(cmd, config.settings)
			err := config.Validate()
			if err != nil {
				exitWith(1, err)
			}
			m, err := config.model.load(config.Context(), modelstore.NaiveBayes, nil)
			if err != nil {
				exitWith(2, err)
			}
			features := m.NaiveBayes.Statistics.Features
			if len(config.values) != len(features) {
				exitWith(3, fmt.Errorf("model expects %d values for %v, got %d", len(features), features, len(config.values)))
			}
			posterior, err := m.NaiveBayes.Predict(config.values)
			if errors.Is(err, nb.ErrDegeneratePosterior) {
				exitWith(4, fmt.Errorf("no prediction: %v", err))
			}
			if err != nil {
				exitWith(5, err)
			}
			fmt.Println("Posterior probabilities:")
			for _, class := range m.NaiveBayes.Statistics.Classes {
				fmt.Printf("  %s: %.6f\n", class, posterior.Probabilities[class])
			}
			fmt.Printf("Predicted %s is %s\n", m.NaiveBayes.Label, posterior.Class)
		},
	}
	config.model.register(cmd, "path to a file from which the model will be read and parsed as JSON", string(modelstore.NaiveBayes))
	cmd.PersistentFlags().Float64SliceVar(&(config.values), "values", nil, "comma separated feature values of the instance (required)")
	return cmd
}

func (pcc *nbPredictCmdConfig) Validate() error {
	if len(pcc.values) == 0 {
		return fmt.Errorf("required values flag was not set")
	}
	return pcc.model.Validate(true)
}
