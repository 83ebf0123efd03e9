package cmd

import (
	"portfolio-server/db"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		// mustInitCli already migrates up
		mustInitCli()
		defer db.Close()
		outputSuccess("Database is up to date")
	},
}

var forceDown bool

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back every migration, dropping all data",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if !forceDown {
			outputErrorAndExit("migrate down drops all data, pass --force to confirm")
		}

		mustInitCli()
		defer db.Close()

		if err := db.MigrationsDown(); err != nil {
			outputErrorAndExit("Error running down migrations: %v", err)
		}
		outputSuccess("Database was reset")
	},
}

func init() {
	migrateDownCmd.Flags().BoolVar(&forceDown, "force", false, "Confirm dropping all data")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	RootCmd.AddCommand(migrateCmd)
}
