package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(projectsCmd)
}

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Lists the projects visible to the configured account.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		projects, err := getProvider(cmd).Projects(cmd.Context())
		if err != nil {
			fatal("failed to list projects", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"project", "id"})
		for _, key := range sortedKeys(projects) {
			t.AppendRow(table.Row{key, projects[key]})
		}
		t.Render()
	},
}
