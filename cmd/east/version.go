package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"east/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show east build fingerprints",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(version.Full())
		return nil
	},
}
