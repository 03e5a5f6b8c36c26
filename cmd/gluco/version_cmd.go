package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	// VersionMajor is the major number in gluco's version
	VersionMajor = 0
	// VersionMinor is the minor number in gluco's version
	VersionMinor = 3
	// VersionPatch is the patch number in gluco's version
	VersionPatch = 0
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of gluco",
		Long:  `All software has versions. This is gluco's`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version())
		},
	}
}

func version() string {
	return fmt.Sprintf("gluco v%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
}
