// Package minify turns the full parking database into the compact document
// served to the map client: records without a location are dropped and every
// remaining record is cut down to four fields.
package minify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"parking/internal/models"
)

const (
	SourcePath = "parking_database.json"
	DestPath   = "parking_min.json"
)

// Result counts the records read from the source and written to the output.
type Result struct {
	Read    int
	Written int
}

func (r Result) String() string {
	return fmt.Sprintf("Minified %d records to %d.", r.Read, r.Written)
}

// Run loads src, minifies it and writes the result to dst, overwriting it.
// Nothing is written when src cannot be loaded.
func Run(src, dst string) (Result, error) {
	records, err := Load(src)
	if err != nil {
		return Result{}, err
	}
	spaces := Minify(records)
	if err := Write(dst, spaces); err != nil {
		return Result{Read: len(records)}, err
	}
	return Result{Read: len(records), Written: len(spaces)}, nil
}

// Load reads the whole source collection into memory.
func Load(path string) ([]models.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	records, err := Decode(f)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return records, nil
}

// Decode parses a JSON array of objects. Invalid UTF-8, null elements and
// trailing data after the array are rejected.
func Decode(r io.Reader) ([]models.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("source is not valid UTF-8")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	var records []models.Record
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after the record array")
	}
	if records == nil {
		// A top-level null is not a collection.
		return nil, fmt.Errorf("expected a JSON array of records")
	}
	for i, rec := range records {
		if rec == nil {
			return nil, fmt.Errorf("record %d is null, expected an object", i)
		}
	}
	return records, nil
}

// Minify keeps the records that have a latlng field, in order, projected
// onto the four retained fields. The result is never nil.
func Minify(records []models.Record) []models.Space {
	spaces := make([]models.Space, 0, len(records))
	for _, rec := range records {
		if !rec.Has("latlng") {
			continue
		}
		spaces = append(spaces, models.NewSpace(rec))
	}
	return spaces
}

// Encode renders spaces without any whitespace between tokens.
func Encode(spaces []models.Space) ([]byte, error) {
	if spaces == nil {
		spaces = []models.Space{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(spaces); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Write encodes spaces and replaces the file at path with them.
func Write(path string, spaces []models.Space) error {
	data, err := Encode(spaces)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	f, err := os.Create(path)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return &WriteError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// Report prints the single outcome line of a run.
func Report(w io.Writer, res Result, err error) {
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(w, res)
}
