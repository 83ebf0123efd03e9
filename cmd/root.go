package cmd

import (
	"github.com/spf13/cobra"
)

var configPath string

// RootCmd runs the server when called without a subcommand.
var RootCmd = &cobra.Command{
	Use:   `portfolio-server [command] [flags]`,
	Short: "Portfolio site api: content, contact, comments, chat and admin",
	Run: func(cmd *cobra.Command, args []string) {
		serve(cmd, args)
	},
}

// Execute is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		outputErrorAndExit("Error executing root command: %v", err)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "portfolio.yaml", "Path to a yaml config file; environment variables override it")
}
