package geodata

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"geomap-dashboard/pkg/loadlog"
)

// Sentinel errors so the dashboard can distinguish "file not found"
// from "file exists but is not a CSV" when composing warnings.
var (
	ErrMissingFile = errors.New("csv file not found")
	ErrUnreadable  = errors.New("csv not parseable")
)

// Load reads one CSV from disk into a validated Dataset.
//
// Failure policy: a missing file or an unreadable header returns an
// error for this dataset only; the caller substitutes an empty dataset
// and keeps the rest of the dashboard alive. Row-level problems (bad
// quoting, non-numeric coordinates, out-of-range values) never return
// an error — the row is counted in InvalidCount and the load goes on.
func Load(path string) (*Dataset, error) {
	key := filepath.Base(path)
	loadlog.Begin(key)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			err = fmt.Errorf("%w: %s", ErrMissingFile, path)
		}
		loadlog.FlushError(key, err)
		return nil, err
	}
	defer f.Close()

	ds, err := parse(key, f)
	if err != nil {
		loadlog.FlushError(key, err)
		return nil, err
	}
	loadlog.Success(key, fmt.Sprintf("%d valid / %d invalid rows", ds.ValidCount, ds.InvalidCount))
	return ds, nil
}

// Parse reads CSV content from r. Exposed separately from Load so
// callers holding bytes (tests, uploads) can reuse the same pipeline.
func Parse(name string, r io.Reader) (*Dataset, error) {
	loadlog.Begin(name)
	ds, err := parse(name, r)
	if err != nil {
		loadlog.FlushError(name, err)
		return nil, err
	}
	loadlog.Success(name, fmt.Sprintf("%d valid / %d invalid rows", ds.ValidCount, ds.InvalidCount))
	return ds, nil
}

func parse(key string, r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(bufio.NewReaderSize(r, 256*1024))
	cr.FieldsPerRecord = -1 // keep tolerant

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	// The numeric-position fallback needs every row before a column can
	// be typed, so the whole file is read up front. Inputs are local
	// dashboard CSVs, not unbounded streams.
	var rows [][]string
	badRows := 0
	rowN := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		rowN++
		if err != nil {
			badRows++
			loadlog.Append(key, fmt.Sprintf("[%s][load] skip row %d: %v", key, rowN, err))
			continue
		}
		rows = append(rows, rec)
	}
	total := len(rows) + badRows

	schema := Sniff(header, rows)
	ds := &Dataset{
		Columns: canonicalColumns(header, schema),
		Schema:  schema,
	}
	if schema.LatCol == "" || schema.LonCol == "" {
		loadlog.Append(key, fmt.Sprintf("[%s][sniff] no coordinate columns resolved, dataset unusable", key))
		ds.InvalidCount = total
		return ds, nil
	}
	if schema.FellBack {
		loadlog.Append(key, fmt.Sprintf("[%s][sniff] positional fallback picked %q/%q as lat/lon — verify these really are coordinates", key, schema.LatCol, schema.LonCol))
	}

	latIdx := indexOf(header, schema.LatCol)
	lonIdx := indexOf(header, schema.LonCol)
	for i, row := range rows {
		lat, okLat := CoerceFloat(cellAt(row, latIdx))
		lon, okLon := CoerceFloat(cellAt(row, lonIdx))
		if !okLat || !okLon || !Valid(lat, lon) {
			loadlog.Append(key, fmt.Sprintf("[%s][load] drop row %d: coordinates invalid (%q, %q)", key, i+2, cellAt(row, latIdx), cellAt(row, lonIdx)))
			continue
		}
		ds.Records = append(ds.Records, makeRecord(header, row, schema, lat, lon))
	}
	ds.ValidCount = len(ds.Records)
	ds.InvalidCount = total - ds.ValidCount
	return ds, nil
}

// canonicalColumns renames the resolved coordinate columns to
// "latitude"/"longitude" while preserving the original order of
// everything else.
func canonicalColumns(header []string, s Schema) []string {
	out := make([]string, len(header))
	for i, col := range header {
		switch {
		case s.LatCol != "" && col == s.LatCol:
			out[i] = "latitude"
		case s.LonCol != "" && col == s.LonCol:
			out[i] = "longitude"
		default:
			out[i] = col
		}
	}
	return out
}

func makeRecord(header, row []string, s Schema, lat, lon float64) Record {
	rec := Record{
		Latitude:  lat,
		Longitude: lon,
		Fields:    make(map[string]string, len(header)),
	}
	for i, col := range header {
		val := cellAt(row, i)
		switch col {
		case s.LatCol:
			rec.Fields["latitude"] = val
		case s.LonCol:
			rec.Fields["longitude"] = val
		default:
			rec.Fields[col] = val
		}
	}
	rec.Name = optionalField(row, header, s.NameCol)
	rec.Postal = optionalField(row, header, s.PostalCol)
	// State/city/address are probed by their literal column names only;
	// there is no sniffing heuristic for them.
	rec.State = optionalField(row, header, "state")
	rec.City = optionalField(row, header, "city")
	rec.Address = optionalField(row, header, "address")
	return rec
}

// optionalField returns a pointer to the cell under col, or nil when
// the column is absent or the cell is empty.
func optionalField(row, header []string, col string) *string {
	if col == "" {
		return nil
	}
	i := indexOf(header, col)
	if i < 0 {
		return nil
	}
	v := cellAt(row, i)
	if v == "" {
		return nil
	}
	return &v
}

func indexOf(header []string, col string) int {
	for i, c := range header {
		if c == col {
			return i
		}
	}
	return -1
}

// cellAt tolerates short rows: the tolerant reader keeps rows whose
// field count differs from the header.
func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
