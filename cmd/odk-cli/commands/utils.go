package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"odk-pull/internal/odk"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
)

var exit = os.Exit

// fatal logs err, flushes pending telemetry and exits with status 1.
func fatal(message string, err error) {
	slog.Error(message, "err", err.Error())

	var statusErr *odk.StatusError
	if errors.As(err, &statusErr) {
		fmt.Fprintf(os.Stderr, "%s: server responded with %d\n", message, statusErr.StatusCode)
	}
	flushTelemetry()
	exit(1)
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func sortedKeys(m map[string]odk.ID) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
