package cmd

import (
	"context"

	"portfolio-server/content"
	"portfolio-server/db"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file.yaml>",
	Short: "Upsert projects, skills and resume entries from a yaml file",
	Args:  cobra.ExactArgs(1),
	Run:   seed,
}

func seed(cmd *cobra.Command, args []string) {
	data, err := content.LoadSeed(args[0])
	if err != nil {
		outputErrorAndExit("Error loading seed file: %v", err)
	}

	mustInitCli()
	defer db.Close()

	res, err := db.ApplySeed(context.Background(), data)
	if err != nil {
		outputErrorAndExit("Error applying seed: %v", err)
	}

	outputSuccess("Seeded %d new and %d updated projects, %d new and %d updated skills, %d resume entries",
		res.ProjectsCreated, res.ProjectsUpdated, res.SkillsCreated, res.SkillsUpdated, res.ResumeEntries)
}

func init() {
	RootCmd.AddCommand(seedCmd)
}
