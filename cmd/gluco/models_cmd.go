package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/gluco-ml/gluco/modelstore"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

type modelsCmdConfig struct {
	*rootCmdConfig
	model modelFlags
}

func modelsCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &modelsCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List and delete the models of a store",
	}
	cmd.PersistentFlags().StringVar(&(config.model.storeURL), "store", "", "URL of the model store (required unless configured)")
	list := &cobra.Command{
		Use:   "list",
		Short: "List the models of a store",
		Run: func(cmd *cobra.Command, args []string) {
			config.model.resolve(cmd, config.settings)
			if config.model.storeURL == "" {
				exitWith(1, fmt.Errorf("required store flag was not set"))
			}
			store, err := openStore(config.Context(), config.model.storeURL, config.model.prefix)
			if err != nil {
				exitWith(2, err)
			}
			defer store.Close(config.Context())
			names, err := store.List(config.Context())
			if err != nil {
				exitWith(3, err)
			}
			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Name", "Algorithm", "Trained at"})
			for _, name := range names {
				m, err := store.Load(config.Context(), name, nil)
				if err != nil {
					exitWith(4, err)
				}
				table.Append([]string{m.Name, string(m.Algorithm), m.TrainedAt.Format("2006-01-02 15:04:05")})
			}
			table.Render()
		},
	}
	del := &cobra.Command{
		Use:   "delete NAME...",
		Short: "Delete models from a store",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			config.model.resolve(cmd, config.settings)
			if config.model.storeURL == "" {
				exitWith(1, fmt.Errorf("required store flag was not set"))
			}
			store, err := openStore(config.Context(), config.model.storeURL, config.model.prefix)
			if err != nil {
				exitWith(2, err)
			}
			defer store.Close(config.Context())
			for _, name := range args {
				if err := store.Delete(config.Context(), name); err != nil {
					if errors.Is(err, modelstore.ErrModelNotFound) {
						exitWith(3, fmt.Errorf("model %s not found", name))
					}
					exitWith(4, err)
				}
			}
		},
	}
	cmd.AddCommand(list, del)
	return cmd
}
