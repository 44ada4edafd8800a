// Package geodata turns arbitrary CSV files into validated geographic
// datasets. Column roles are sniffed from header names with a numeric
// positional fallback, coordinates are coerced and range-checked, and
// rows that fail validation are counted rather than raised.
package geodata

// Schema records which source columns the sniffer resolved for each
// role. An empty string means the role stayed unresolved; callers must
// treat a dataset without both coordinate columns as unusable.
type Schema struct {
	LatCol    string
	LonCol    string
	PostalCol string
	NameCol   string

	// FellBack reports that coordinates were taken from the first two
	// numeric columns instead of a header-name match. The positional
	// guess can pick unrelated numeric columns (an ID next to a count),
	// so loaders surface it in the load log.
	FellBack bool
}

// Record is one validated row. Latitude and Longitude are guaranteed
// finite and inside [-90,90] / [-180,180]. The descriptive slots are
// nil unless the matching column resolved and the cell was non-empty,
// so consumers never probe Fields by guessed names.
type Record struct {
	Latitude  float64
	Longitude float64

	Name    *string
	Postal  *string
	State   *string
	City    *string
	Address *string

	// Fields keeps every original cell keyed by column name, with the
	// resolved coordinate columns renamed to "latitude"/"longitude".
	Fields map[string]string
}

// Dataset is an ordered collection of validated records sharing one
// sniffed schema. ValidCount and InvalidCount are fixed at load time:
// their sum equals the source row count (header excluded).
type Dataset struct {
	Columns []string
	Records []Record
	Schema  Schema

	ValidCount   int
	InvalidCount int
}

// Empty reports whether the dataset holds no valid records. A nil
// dataset counts as empty so callers can pass load failures straight
// through the render pipeline.
func (d *Dataset) Empty() bool {
	return d == nil || len(d.Records) == 0
}
