package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"portfolio-server/db"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Inspect site content",
}

var contentListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects and skills in the database",
	Args:    cobra.NoArgs,
	Run:     listContent,
}

func listContent(cmd *cobra.Command, args []string) {
	mustInitCli()
	defer db.Close()

	projects, err := db.ListProjects(cmd.Context(), db.ProjectFilter{})
	if err != nil {
		outputErrorAndExit("Error listing projects: %v", err)
	}
	skills, err := db.ListSkills(cmd.Context(), "")
	if err != nil {
		outputErrorAndExit("Error listing skills: %v", err)
	}

	if len(projects) == 0 && len(skills) == 0 {
		fmt.Println("🤷‍♂️ No content yet")
		fmt.Println()
		fmt.Println("Load some with " + color.New(color.Bold, color.FgHiCyan).Sprint("portfolio-server seed content.yaml"))
		return
	}

	color.New(color.Bold).Println("Projects")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "Slug", "Title", "Category", "Status", "Updated"})
	table.SetAutoWrapText(false)
	for i, p := range projects {
		status := color.New(color.FgHiGreen).Sprint("published")
		if !p.Published {
			status = color.New(color.FgHiYellow).Sprint("draft")
		}
		if p.Featured {
			status += " ⭐"
		}
		table.Append([]string{
			strconv.Itoa(i + 1),
			p.Slug,
			p.Title,
			p.Category,
			status,
			humanize.Time(p.UpdatedAt),
		})
	}
	table.Render()
	fmt.Println()

	color.New(color.Bold).Println("Skills")
	skillsTable := tablewriter.NewWriter(os.Stdout)
	skillsTable.SetHeader([]string{"Category", "Name", "Level", "Years"})
	skillsTable.SetAutoWrapText(false)
	for _, s := range skills {
		skillsTable.Append([]string{
			s.Category,
			s.Name,
			strings.Repeat("●", s.Level) + strings.Repeat("○", max(0, 5-s.Level)),
			strconv.Itoa(s.Years),
		})
	}
	skillsTable.Render()
}

func init() {
	contentCmd.AddCommand(contentListCmd)
	RootCmd.AddCommand(contentCmd)
}
