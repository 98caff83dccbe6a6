package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jasonkneen/claudelet/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the claudelet version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Get())
	},
}
