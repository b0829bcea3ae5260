// Package geo converts geolocated submissions into GeoJSON features.
package geo

import (
	"encoding/json"
	"fmt"
	"odk-pull/internal/frame"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// FeatureCollection builds one point feature per row with a usable
// geolocation, in WGS84 (x = longitude, y = latitude). The remaining columns
// become flat properties, nested values are encoded as JSON strings.
//
// The second return value is the amount of rows skipped for lacking a point.
func FeatureCollection(f *frame.Frame) (*geojson.FeatureCollection, int) {
	fc := geojson.NewFeatureCollection()
	skipped := 0

	columns := f.Columns()
	for i := 0; i < f.Len(); i++ {
		point, ok := f.Geolocation(i)
		if !ok {
			skipped++
			continue
		}

		feature := geojson.NewFeature(orb.Point{point.Lon, point.Lat})
		for _, column := range columns {
			if column == frame.GeolocationColumn {
				continue
			}
			value, ok := f.Value(i, column)
			if !ok {
				continue
			}
			feature.Properties[column] = flatten(value)
		}
		fc.Append(feature)
	}

	return fc, skipped
}

func flatten(value any) any {
	switch v := value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if n, err := v.Float64(); err == nil {
			return n
		}
		return v.String()
	case map[string]any, []any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	}
	return value
}

// WriteFile writes a feature collection as GeoJSON.
func WriteFile(path string, fc *geojson.FeatureCollection) error {
	encoded, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	err = os.WriteFile(path, encoded, 0644)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
