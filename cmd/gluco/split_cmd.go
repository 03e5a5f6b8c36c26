package main

import (
	"context"
	"fmt"

	"github.com/gluco-ml/gluco/dataset"
	"github.com/gluco-ml/gluco/dataset/csv"
	"github.com/gluco-ml/gluco/dataset/sqldataset"
	"github.com/gluco-ml/gluco/evaluate"
	"github.com/gluco-ml/gluco/feature"
	"github.com/gluco-ml/gluco/log"
	"github.com/gluco-ml/gluco/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type splitCmdConfig struct {
	*rootCmdConfig
	data        dataFlags
	setOutput   string
	splitOutput string
	setTable    string
	splitTable  string
	testRatio   float64
	seed        int64
}

func splitCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &splitCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a set into training and testing sets",
		Long:  `Split a set into a training set and a testing set holding out a ratio of randomly chosen samples`,
		Run: func(cmd *cobra.Command, args []string) {
			config.data.resolve(cmd, config.settings)
			if !cmd.Flags().Changed("test-ratio") {
				config.testRatio = config.settings.Evaluation.TestRatio
			}
			if !cmd.Flags().Changed("seed") {
				config.seed = config.settings.Evaluation.Seed
			}
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
			fold, err := evaluate.Split(config.Context(), ds, config.testRatio, config.seed)
			if err != nil {
				exitWith(4, err)
			}
			trainCount, err := writeSet(config.Context(), config.setOutput, config.setTable, fold.Train, md.Features)
			if err != nil {
				exitWith(5, fmt.Errorf("writing training set: %v", err))
			}
			testCount, err := writeSet(config.Context(), config.splitOutput, config.splitTable, fold.Test, md.Features)
			if err != nil {
				exitWith(6, fmt.Errorf("writing testing set: %v", err))
			}
			log.Logger().Info("split set",
				zap.Int("training", trainCount),
				zap.Int("testing", testCount),
				zap.Int64("seed", config.seed))
		},
	}
	config.data.register(cmd, "split")
	cmd.PersistentFlags().StringVarP(&(config.setOutput), "output", "o", "", "path to a CSV file, a SQLite3 (.db) file or a MySQL, PostgreSQL or SQLite DB connection URL to dump the training set (defaults to STDOUT, as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.splitOutput), "split-output", "s", "", "path to a CSV file, a SQLite3 (.db) file or a MySQL, PostgreSQL or SQLite DB connection URL to dump the testing set (required)")
	cmd.PersistentFlags().StringVar(&(config.setTable), "output-table", "training", "table to create or extend with the training set when the output is a database")
	cmd.PersistentFlags().StringVar(&(config.splitTable), "split-table", "testing", "table to create or extend with the testing set when the split output is a database")
	cmd.PersistentFlags().Float64VarP(&(config.testRatio), "test-ratio", "r", 0.2, "ratio of samples assigned to the testing set")
	cmd.PersistentFlags().Int64Var(&(config.seed), "seed", 42, "seed of the sample shuffling")
	return cmd
}

func (scc *splitCmdConfig) Validate() error {
	if err := scc.data.Validate(); err != nil {
		return err
	}
	if scc.splitOutput == "" {
		return fmt.Errorf("required split-output flag was not set")
	}
	if storage.IsSQL(scc.setOutput) && scc.setTable == "" {
		return fmt.Errorf("required output-table flag was not set for database output")
	}
	if storage.IsSQL(scc.splitOutput) && scc.splitTable == "" {
		return fmt.Errorf("required split-table flag was not set for database output")
	}
	if scc.testRatio <= 0 || scc.testRatio >= 1 {
		return fmt.Errorf("test-ratio flag was set to an invalid value: it must be between 0 and 1")
	}
	return nil
}

/*
writeSet dumps a dataset into a table when the target is a database, or as
CSV into a file or STDOUT otherwise. It returns the number of samples
written.
*/
func writeSet(ctx context.Context, target, table string, ds dataset.Dataset, features []feature.Feature) (int, error) {
	if !storage.IsSQL(target) {
		if err := csv.WriteDatasetToFilePath(ctx, target, ds, features); err != nil {
			return 0, err
		}
		return ds.Count(ctx)
	}
	db, driver, err := storage.OpenSQL(target)
	if err != nil {
		return 0, fmt.Errorf("opening database: %v", err)
	}
	defer db.Close()
	log.Logger().Info("writing set to database",
		zap.String("url", log.RedactDBURL(target)),
		zap.String("table", table))
	return sqldataset.Write(ctx, db, driver, table, ds, features)
}
