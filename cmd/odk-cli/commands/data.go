package commands

import (
	"fmt"
	"log/slog"
	"odk-pull/internal/frame"
	"odk-pull/internal/geo"
	"odk-pull/internal/odk"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var geojsonOut *string
var head *int

func init() {
	geojsonOut = dataCmd.Flags().String("geojson", "", "Writes submissions with a geolocation to this GeoJSON file.")
	head = dataCmd.Flags().Int("head", 0, "Renders the first n submissions as a table.")
	rootCmd.AddCommand(dataCmd)
}

var dataCmd = &cobra.Command{
	Use:   "data <form id> [--geojson <path/to/out.geojson>] [--head <n>]",
	Short: "Fetches the submissions of a form and checks them for a geolocation column.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := getProvider(cmd).FormData(cmd.Context(), odk.ID(args[0]))
		if err != nil {
			fatal("failed to fetch form data", err)
		}

		f, err := frame.Load(data)
		if err != nil {
			fatal("failed to load form data", err)
		}
		fmt.Println(f.GeolocationReport())

		if f.HasColumn(frame.GeolocationColumn) {
			valid, err := f.SplitGeolocation()
			if err != nil {
				fatal("failed to split geolocation", err)
			}
			slog.Info("geolocated submissions", "valid", valid, "total", f.Len())
		}

		if *head > 0 {
			renderHead(f, *head)
		}

		if *geojsonOut == "" {
			return
		}
		if !f.HasColumn(frame.GeolocationColumn) {
			slog.Warn("nothing to export, submissions have no geolocation", "path", *geojsonOut)
			return
		}
		fc, skipped := geo.FeatureCollection(f)
		err = geo.WriteFile(*geojsonOut, fc)
		if err != nil {
			fatal("failed to export geojson", err)
		}
		slog.Info(
			"exported features",
			"path", *geojsonOut,
			"features", len(fc.Features),
			"skipped", skipped,
		)
	},
}

func renderHead(f *frame.Frame, n int) {
	columns := f.Columns()

	t := newTable()
	header := table.Row{}
	for _, c := range columns {
		header = append(header, c)
	}
	t.AppendHeader(header)

	for i := 0; i < f.Len() && i < n; i++ {
		row := table.Row{}
		for _, c := range columns {
			value, ok := f.Value(i, c)
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, value)
		}
		t.AppendRow(row)
	}
	t.Render()
}
