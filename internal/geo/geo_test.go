package geo

import (
	"encoding/json"
	"odk-pull/internal/frame"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/require"
)

func TestFeatureCollection(t *testing.T) {
	f, err := frame.Load([]any{
		map[string]any{
			"_id":          json.Number("10"),
			"_geolocation": []any{json.Number("-1.28"), json.Number("36.81")},
			"members":      []any{"a", "b"},
			"site":         "Kibera",
		},
		map[string]any{"_id": json.Number("11"), "_geolocation": nil},
	})
	require.NoError(t, err)

	fc, skipped := FeatureCollection(f)
	require.Equal(t, 1, skipped)
	require.Len(t, fc.Features, 1)

	feature := fc.Features[0]
	require.Equal(t, orb.Point{36.81, -1.28}, feature.Geometry)
	require.Equal(t, geojson.Properties{
		"_id":     int64(10),
		"members": `["a","b"]`,
		"site":    "Kibera",
	}, feature.Properties)
}

func TestWriteFile(t *testing.T) {
	f, err := frame.Load([]any{
		map[string]any{"_geolocation": []any{1.2, 3.4}},
	})
	require.NoError(t, err)
	fc, _ := FeatureCollection(f)

	path := filepath.Join(t.TempDir(), "features.geojson")
	require.NoError(t, WriteFile(path, fc))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	parsed, err := geojson.UnmarshalFeatureCollection(contents)
	require.NoError(t, err)
	require.Len(t, parsed.Features, 1)
	require.Equal(t, orb.Point{3.4, 1.2}, parsed.Features[0].Geometry)
}
