package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(testCmd)
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Checks that the configured url answers an authenticated request with JSON.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		provider := getProvider(cmd)

		domain, err := provider.DomainName()
		if err != nil {
			fatal("invalid url", err)
		}

		status, err := provider.TestConnection(cmd.Context())
		if err != nil {
			fatal("connection failed", err)
		}

		if slog.Default().Enabled(cmd.Context(), slog.LevelDebug) {
			body, _ := json.MarshalIndent(status.Body, "", "  ")
			slog.Debug("connection body", "body", string(body))
		}
		fmt.Printf("%s: %d\n", domain, status.StatusCode)
	},
}
