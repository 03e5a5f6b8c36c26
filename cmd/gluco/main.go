package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/gluco-ml/gluco/config"
	"github.com/gluco-ml/gluco/log"
	"github.com/spf13/cobra"
)

type rootCmdConfig struct {
	verbose    bool
	configPath string
	settings   *config.Config
	ctx        context.Context
	cancelFunc context.CancelFunc
}

func main() {
	err := cliParser().Execute()
	_ = log.Logger().Sync()
	if err != nil {
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	rootConfig := &rootCmdConfig{}
	rootCmd := &cobra.Command{
		Use:   "gluco",
		Short: "gluco is a tool to classify diabetes risk from medical records",
		Long: `A tool to grow ID3 decision trees and fit Gaussian Naive Bayes models from
your records, evaluate their accuracy, and use them to make predictions`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log.SetLogger(cmd.Flags(), rootConfig.verbose)
			settings, err := config.LoadConfig(rootConfig.configPath)
			if err != nil {
				return fmt.Errorf("loading configuration: %v", err)
			}
			rootConfig.settings = settings
			return nil
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&(rootConfig.verbose), "verbose", "v", false, "log debug messages")
	rootCmd.PersistentFlags().StringVar(&(rootConfig.configPath), "config", "", "path to a TOML or YAML configuration file (defaults come from GLUCO_ environment variables)")
	log.AddFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(
		versionCmd(),
		id3Cmd(rootConfig),
		nbCmd(rootConfig),
		evaluateCmd(rootConfig),
		splitCmd(rootConfig),
		modelsCmd(rootConfig),
	)
	return rootCmd
}

// Context returns a context cancelled on interrupt.
func (rcc *rootCmdConfig) Context() context.Context {
	if rcc.ctx == nil {
		rcc.ctx, rcc.cancelFunc = signal.NotifyContext(context.Background(), os.Interrupt)
	}
	return rcc.ctx
}

func exitWith(code int, err error) {
	fmt.Fprintln(os.Stderr, err)
	_ = log.Logger().Sync()
	os.Exit(code)
}
