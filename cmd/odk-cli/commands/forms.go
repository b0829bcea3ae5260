package commands

import (
	"odk-pull/internal/odk"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(formsCmd)
}

var formsCmd = &cobra.Command{
	Use:   "forms <project id>",
	Short: "Lists the forms of a project.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		forms, err := getProvider(cmd).FormList(cmd.Context(), odk.ID(args[0]))
		if err != nil {
			fatal("failed to list forms", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"form", "id"})
		for _, name := range sortedKeys(forms) {
			t.AppendRow(table.Row{name, forms[name]})
		}
		t.Render()
	},
}
