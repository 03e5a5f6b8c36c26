package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/gluco-ml/gluco/dataset"
	"github.com/gluco-ml/gluco/evaluate"
	"github.com/gluco-ml/gluco/feature"
	"github.com/gluco-ml/gluco/id3"
	"github.com/gluco-ml/gluco/log"
	"github.com/gluco-ml/gluco/nb"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type evaluateCmdConfig struct {
	*rootCmdConfig
	data          dataFlags
	folds         int
	testRatio     float64
	seed          int64
	jobs          int
	pruneStrategy string
	standardize   bool
	perFold       bool
}

func evaluateCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &evaluateCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Compare the accuracy of ID3 and Naive Bayes on a set of data",
		Long: `Evaluate ID3 decision trees and Gaussian Naive Bayes models on a set of data,
both on a held out test set and with k-fold cross validation`,
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
			ds, err := config.data.dataset(config.Context(), md)
			if err != nil {
				exitWith(3, err)
			}
			pruner, err := id3.ParsePruner(config.pruneStrategy)
			if err != nil {
				exitWith(4, err)
			}
			trainers := []struct {
				name    string
				trainer evaluate.Trainer
			}{
				{"ID3", evaluate.ID3(&id3.Builder{Pruning: id3.PruningStrategy{Pruner: pruner}}, md.Label, md.Discrete())},
				{"Naive Bayes", evaluate.NaiveBayes(&nb.Trainer{Epsilon: config.settings.NaiveBayes.Epsilon, Standardize: config.standardize}, md.Label, md.Continuous())},
			}
			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Algorithm", "Holdout accuracy", "Unmatched", fmt.Sprintf("%d-fold mean", config.folds), "Std dev"})
			var folds [][]string
			for _, t := range trainers {
				holdout, err := config.holdout(config.Context(), ds, t.trainer, md.Label)
				if err != nil {
					exitWith(5, fmt.Errorf("evaluating %s on held out records: %v", t.name, err))
				}
				log.Logger().Info("cross validating", zap.String("algorithm", t.name), zap.Int("folds", config.folds), zap.Int("jobs", config.jobs))
				cv, err := evaluate.CrossValidate(config.Context(), ds, t.trainer, md.Label, config.folds, config.seed, config.jobs)
				if err != nil {
					exitWith(6, fmt.Errorf("cross validating %s: %v", t.name, err))
				}
				table.Append([]string{t.name, percent(holdout.Accuracy), strconv.Itoa(holdout.Unmatched), percent(cv.Mean), percent(cv.StdDev)})
				for i, s := range cv.Scores {
					folds = append(folds, []string{t.name, strconv.Itoa(i + 1), strconv.Itoa(s.Total), percent(s.Accuracy), strconv.Itoa(s.Unmatched)})
				}
			}
			table.Render()
			if config.perFold {
				foldTable := tablewriter.NewWriter(os.Stdout)
				foldTable.SetHeader([]string{"Algorithm", "Fold", "Samples", "Accuracy", "Unmatched"})
				foldTable.AppendBulk(folds)
				foldTable.Render()
			}
		},
	}
	config.data.register(cmd, "evaluate the algorithms")
	cmd.PersistentFlags().IntVarP(&(config.folds), "folds", "k", 10, "number of cross validation folds")
	cmd.PersistentFlags().Float64VarP(&(config.testRatio), "test-ratio", "r", 0.2, "ratio of records held out for testing")
	cmd.PersistentFlags().Int64Var(&(config.seed), "seed", 42, "seed of the record shuffling")
	cmd.PersistentFlags().IntVarP(&(config.jobs), "jobs", "j", 1, "number of folds evaluated at the same time")
	cmd.PersistentFlags().StringVarP(&(config.pruneStrategy), "prune", "p", "none", "pruning strategy of the trees, the following are valid: none, mdl, minimum-information-gain:[VALUE]")
	cmd.PersistentFlags().BoolVar(&(config.standardize), "standardize", false, "standardize features before fitting Naive Bayes models")
	cmd.PersistentFlags().BoolVar(&(config.perFold), "per-fold", false, "also print the accuracy of every fold")
	return cmd
}

func (ecc *evaluateCmdConfig) resolve(cmd *cobra.Command) {
	ecc.data.resolve(cmd, ecc.settings)
	flags := cmd.Flags()
	if !flags.Changed("folds") {
		ecc.folds = ecc.settings.Evaluation.Folds
	}
	if !flags.Changed("test-ratio") {
		ecc.testRatio = ecc.settings.Evaluation.TestRatio
	}
	if !flags.Changed("seed") {
		ecc.seed = ecc.settings.Evaluation.Seed
	}
	if !flags.Changed("jobs") {
		ecc.jobs = ecc.settings.Evaluation.Jobs
	}
	if !flags.Changed("prune") {
		ecc.pruneStrategy = ecc.settings.ID3.Prune
	}
	if !flags.Changed("standardize") {
		ecc.standardize = ecc.settings.NaiveBayes.Standardize
	}
}

func (ecc *evaluateCmdConfig) Validate() error {
	if err := ecc.data.Validate(); err != nil {
		return err
	}
	if ecc.folds < 2 {
		return fmt.Errorf("folds flag must be at least 2")
	}
	if ecc.testRatio <= 0 || ecc.testRatio >= 1 {
		return fmt.Errorf("test-ratio flag must be between 0 and 1")
	}
	if ecc.jobs < 1 {
		return fmt.Errorf("jobs flag must be at least 1")
	}
	return nil
}

func (ecc *evaluateCmdConfig) holdout(ctx context.Context, ds dataset.Dataset, trainer evaluate.Trainer, label feature.Feature) (evaluate.Score, error) {
	fold, err := evaluate.Split(ctx, ds, ecc.testRatio, ecc.seed)
	if err != nil {
		return evaluate.Score{}, err
	}
	c, err := trainer.Train(ctx, fold.Train)
	if err != nil {
		return evaluate.Score{}, err
	}
	return evaluate.Accuracy(ctx, c, fold.Test, label)
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", 100*v)
}
