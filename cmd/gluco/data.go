package main

import (
	"context"
	"fmt"

	"github.com/gluco-ml/gluco/config"
	"github.com/gluco-ml/gluco/dataset"
	"github.com/gluco-ml/gluco/dataset/csv"
	"github.com/gluco-ml/gluco/dataset/sqldataset"
	"github.com/gluco-ml/gluco/feature/yaml"
	"github.com/gluco-ml/gluco/log"
	"github.com/gluco-ml/gluco/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// dataFlags locate a dataset and its metadata.
type dataFlags struct {
	metadataInput      string
	dataInput          string
	table              string
	cpuIntensiveSet    bool
	memoryIntensiveSet bool
}

func (df *dataFlags) register(cmd *cobra.Command, use string) {
	cmd.PersistentFlags().StringVarP(&(df.dataInput), "input", "i", "", fmt.Sprintf("path to an input CSV file, a SQLite3 (.db) file or a MySQL, PostgreSQL or SQLite DB connection URL with data to %s (defaults to STDIN, interpreted as CSV)", use))
	cmd.PersistentFlags().StringVarP(&(df.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the features available on the input (required)")
	cmd.PersistentFlags().StringVarP(&(df.table), "table", "t", "", "table to read when the input is a database")
	cmd.PersistentFlags().BoolVar(&(df.memoryIntensiveSet), "memory-intensive", false, "force the use of memory-intensive subsetting to decrease time at the cost of increasing memory use")
	cmd.PersistentFlags().BoolVar(&(df.cpuIntensiveSet), "cpu-intensive", false, "force the use of cpu-intensive subsetting to decrease memory use at the cost of increasing time")
}

// resolve takes values missing from the command line from the configuration.
func (df *dataFlags) resolve(cmd *cobra.Command, settings *config.Config) {
	if !cmd.Flags().Changed("input") {
		df.dataInput = settings.Data.Input
	}
	if !cmd.Flags().Changed("metadata") {
		df.metadataInput = settings.Data.Metadata
	}
	if !cmd.Flags().Changed("table") {
		df.table = settings.Data.Table
	}
}

func (df *dataFlags) Validate() error {
	if df.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if storage.IsSQL(df.dataInput) && df.table == "" {
		return fmt.Errorf("required table flag was not set for database input")
	}
	if df.cpuIntensiveSet && df.memoryIntensiveSet {
		return fmt.Errorf("cannot set both memory-intensive and cpu-intensive flags at the same time")
	}
	return nil
}

func (df *dataFlags) metadata() (*yaml.Metadata, error) {
	log.Logger().Info("reading metadata", zap.String("path", df.metadataInput))
	return yaml.ReadMetadata(df.metadataInput)
}

/*
dataset reads the declared features of the metadata from the input and
exposes its derived features too.
*/
func (df *dataFlags) dataset(ctx context.Context, md *yaml.Metadata) (dataset.Dataset, error) {
	var (
		ds  dataset.Dataset
		err error
	)
	if storage.IsSQL(df.dataInput) {
		ds, err = df.sqlDataset(ctx, md)
	} else {
		if df.dataInput == "" {
			log.Logger().Info("reading dataset from STDIN")
		} else {
			log.Logger().Info("reading dataset", zap.String("path", df.dataInput))
		}
		ds, err = csv.ReadDatasetFromFilePath(df.dataInput, md.Features)
	}
	if err != nil {
		return nil, err
	}
	if ds, err = dataset.Derive(ctx, ds, md.Derived); err != nil {
		return nil, err
	}
	if !df.memoryIntensiveSet && !df.cpuIntensiveSet {
		return ds, nil
	}
	samples, err := ds.Samples(ctx)
	if err != nil {
		return nil, err
	}
	if df.memoryIntensiveSet {
		return dataset.NewMemoryIntensive(samples), nil
	}
	return dataset.NewCPUIntensive(samples), nil
}

func (df *dataFlags) sqlDataset(ctx context.Context, md *yaml.Metadata) (dataset.Dataset, error) {
	log.Logger().Info("reading dataset from database",
		zap.String("url", log.RedactDBURL(df.dataInput)),
		zap.String("table", df.table))
	db, driver, err := storage.OpenSQL(df.dataInput)
	if err != nil {
		return nil, fmt.Errorf("opening database: %v", err)
	}
	defer db.Close()
	return sqldataset.Read(ctx, db, driver, df.table, md.Features)
}
