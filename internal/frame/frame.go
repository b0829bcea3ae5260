// Package frame loads submission records into a column oriented table so
// they can be inspected and converted into spatial features.
package frame

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
)

const (
	GeolocationColumn = "_geolocation"
	LatitudeColumn    = "Lat"
	LongitudeColumn   = "Lon"

	GeolocationPresent = "_geolocation in Columns"
	GeolocationAbsent  = "_geolocation not in Columns"
)

// ErrNotTabular is returned when loading data that is not an array of objects.
var ErrNotTabular = errors.New("data is not an array of objects")

// Frame is a table of records. A record that lacks a column holds no value
// for it, which is distinct from holding a JSON null.
type Frame struct {
	columns []string
	index   map[string]int
	rows    []map[string]any
}

// Load builds a frame out of decoded JSON, which must be an array of
// objects. Columns are ordered by first appearance across records, keys first
// seen in the same record are ordered alphabetically.
func Load(data any) (*Frame, error) {
	f := &Frame{index: map[string]int{}}

	switch records := data.(type) {
	case []map[string]any:
		for _, record := range records {
			f.append(record)
		}
	case []any:
		for i, item := range records {
			record, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: row %d is %T", ErrNotTabular, i, item)
			}
			f.append(record)
		}
	default:
		return nil, fmt.Errorf("%w: got %T", ErrNotTabular, data)
	}

	return f, nil
}

func (f *Frame) append(record map[string]any) {
	var unseen []string
	for key := range record {
		if _, ok := f.index[key]; !ok {
			unseen = append(unseen, key)
		}
	}
	sort.Strings(unseen)
	for _, key := range unseen {
		f.addColumn(key)
	}

	row := make(map[string]any, len(record))
	for k, v := range record {
		row[k] = v
	}
	f.rows = append(f.rows, row)
}

func (f *Frame) addColumn(name string) {
	f.index[name] = len(f.columns)
	f.columns = append(f.columns, name)
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.columns))
	copy(out, f.columns)
	return out
}

func (f *Frame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Len returns the amount of rows.
func (f *Frame) Len() int {
	return len(f.rows)
}

// Value returns the cell at a row and column, ok is false when the record has
// no value for the column.
func (f *Frame) Value(row int, column string) (value any, ok bool) {
	if row < 0 || row >= len(f.rows) {
		return nil, false
	}
	value, ok = f.rows[row][column]
	return value, ok
}

// Column returns every value of a column, missing cells are nil.
func (f *Frame) Column(name string) []any {
	if !f.HasColumn(name) {
		return nil
	}
	out := make([]any, len(f.rows))
	for i, row := range f.rows {
		out[i] = row[name]
	}
	return out
}

// SetColumn adds or replaces a column, nil values leave the cell missing.
func (f *Frame) SetColumn(name string, values []any) error {
	if len(values) != len(f.rows) {
		return fmt.Errorf("column %s has %d values but the frame has %d rows", name, len(values), len(f.rows))
	}
	if !f.HasColumn(name) {
		f.addColumn(name)
	}
	for i, v := range values {
		if v == nil {
			delete(f.rows[i], name)
			continue
		}
		f.rows[i][name] = v
	}
	return nil
}

// GeolocationReport returns the line printed after checking for the
// geolocation column.
func (f *Frame) GeolocationReport() string {
	if !f.HasColumn(GeolocationColumn) {
		return GeolocationAbsent
	}
	return GeolocationPresent
}

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// Geolocation parses the geolocation of a row, ok is false when the row has
// no usable [latitude, longitude] pair.
func (f *Frame) Geolocation(row int) (Point, bool) {
	value, ok := f.Value(row, GeolocationColumn)
	if !ok {
		return Point{}, false
	}
	return ParsePoint(value)
}

// ParsePoint reads a [latitude, longitude] pair.
func ParsePoint(value any) (Point, bool) {
	pair, ok := value.([]any)
	if !ok || len(pair) != 2 {
		return Point{}, false
	}
	lat, ok := toFloat(pair[0])
	if !ok {
		return Point{}, false
	}
	lon, ok := toFloat(pair[1])
	if !ok {
		return Point{}, false
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Point{}, false
	}
	return Point{Lat: lat, Lon: lon}, true
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

// SplitGeolocation adds Lat and Lon columns derived from the geolocation
// column and returns how many rows had a usable pair. Rows without one are left
// without Lat/Lon values.
func (f *Frame) SplitGeolocation() (int, error) {
	if !f.HasColumn(GeolocationColumn) {
		return 0, fmt.Errorf("frame has no %s column", GeolocationColumn)
	}

	lats := make([]any, len(f.rows))
	lons := make([]any, len(f.rows))
	valid := 0
	for i := range f.rows {
		point, ok := f.Geolocation(i)
		if !ok {
			continue
		}
		lats[i] = point.Lat
		lons[i] = point.Lon
		valid++
	}

	err := f.SetColumn(LatitudeColumn, lats)
	if err != nil {
		return 0, err
	}
	err = f.SetColumn(LongitudeColumn, lons)
	if err != nil {
		return 0, err
	}
	return valid, nil
}
