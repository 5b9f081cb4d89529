package minify

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"

	"parking/internal/models"
)

func writeSource(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, SourcePath)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}
	return path
}

func TestRun_Scenarios(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		wantOutput string
		wantLine   string
	}{
		{
			name:       "record with latlng is kept and padded with nulls",
			source:     `[{"spaceid":1,"latlng":"1,2"}]`,
			wantOutput: `[{"spaceid":1,"latlng":"1,2","raterange":null,"timelimit":null}]`,
			wantLine:   "Minified 1 records to 1.\n",
		},
		{
			name:       "record without latlng is dropped",
			source:     `[{"spaceid":2}]`,
			wantOutput: `[]`,
			wantLine:   "Minified 1 records to 0.\n",
		},
		{
			name:       "empty collection",
			source:     `[]`,
			wantOutput: `[]`,
			wantLine:   "Minified 0 records to 0.\n",
		},
		{
			name: "extra fields removed and whitespace compacted",
			source: `[
  {"spaceid": "A-1", "status": "free", "latlng": {"latitude": "37.77", "longitude": "-122.41"},
   "raterange": "$2.00 - $3.00", "timelimit": "2 HR", "street": "Market & 5th"},
  {"spaceid": "A-2"},
  {"latlng": null}
]`,
			wantOutput: `[{"spaceid":"A-1","latlng":{"latitude":"37.77","longitude":"-122.41"},"raterange":"$2.00 - $3.00","timelimit":"2 HR"},` +
				`{"spaceid":null,"latlng":null,"raterange":null,"timelimit":null}]`,
			wantLine: "Minified 3 records to 2.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			src := writeSource(t, dir, tt.source)
			dst := filepath.Join(dir, DestPath)

			res, err := Run(src, dst)
			if err != nil {
				t.Fatalf("Run() returned error: %v", err)
			}

			got, err := os.ReadFile(dst)
			if err != nil {
				t.Fatalf("failed to read output: %v", err)
			}
			if string(got) != tt.wantOutput {
				t.Errorf("output = %s\nwant     %s", got, tt.wantOutput)
			}

			var line bytes.Buffer
			Report(&line, res, nil)
			if line.String() != tt.wantLine {
				t.Errorf("report = %q, want %q", line.String(), tt.wantLine)
			}
		})
	}
}

func TestRun_MissingSourceLeavesOutputUntouched(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, DestPath)
	if err := os.WriteFile(dst, []byte("previous"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := Run(filepath.Join(dir, "missing.json"), dst)
	if err == nil {
		t.Fatal("Run() returned nil error for a missing source")
	}
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected *LoadError, got %T: %v", err, err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected error to wrap os.ErrNotExist, got %v", err)
	}

	got, _ := os.ReadFile(dst)
	if string(got) != "previous" {
		t.Errorf("output was modified: %q", got)
	}

	var line bytes.Buffer
	Report(&line, res, err)
	if !strings.HasPrefix(line.String(), "Error: ") {
		t.Errorf("report = %q, want prefix %q", line.String(), "Error: ")
	}
	if strings.Count(line.String(), "\n") != 1 {
		t.Errorf("report should be one line, got %q", line.String())
	}
}

func TestLoad_InvalidDocuments(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"not json", `not json`},
		{"object instead of array", `{"spaceid":1}`},
		{"array of scalars", `[1,2,3]`},
		{"top-level null", `null`},
		{"trailing data", `[] []`},
		{"truncated", `[{"spaceid":1`},
		{"null record", `[null]`},
		{"null record among objects", `[{"latlng":"1,2"},null]`},
		{"invalid utf-8 in kept value", "[{\"latlng\":\"\xff\"}]"},
		{"invalid utf-8 in dropped field", "[{\"latlng\":\"1,2\",\"street\":\"\xfe\"}]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := writeSource(t, t.TempDir(), tt.source)
			_, err := Load(src)
			var loadErr *LoadError
			if !errors.As(err, &loadErr) {
				t.Fatalf("Load() error = %v, want *LoadError", err)
			}
			if loadErr.Path != src {
				t.Errorf("LoadError.Path = %q, want %q", loadErr.Path, src)
			}
		})
	}
}

func TestRun_KeepsHTMLAndNonASCIIVerbatim(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, `[{"spaceid":"<a&b>é","latlng":{"latitude":"1", "longitude":"2"},"raterange":"$2 – 東京"}]`)
	dst := filepath.Join(dir, DestPath)

	if _, err := Run(src, dst); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"spaceid":"<a&b>é","latlng":{"latitude":"1","longitude":"2"},"raterange":"$2 – 東京","timelimit":null}]`
	if string(got) != want {
		t.Fatalf("output = %s\nwant     %s", got, want)
	}
}

func TestWrite_UnwritablePath(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "no-such-dir", DestPath)
	err := Write(dst, nil)
	var writeErr *WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("Write() error = %v, want *WriteError", err)
	}
}

func TestRun_WriteFailureReportsError(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, `[{"latlng":"1,2"}]`)

	_, err := Run(src, filepath.Join(dir, "missing", DestPath))
	var writeErr *WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("Run() error = %v, want *WriteError", err)
	}
}

func TestMinify_Properties(t *testing.T) {
	records := []models.Record{
		{"spaceid": json.RawMessage(`1`), "latlng": json.RawMessage(`"1,2"`), "extra": json.RawMessage(`[1]`)},
		{"spaceid": json.RawMessage(`2`)},
		{"latlng": json.RawMessage(`{"latitude":"1","longitude":"2"}`), "raterange": json.RawMessage(`"$1"`)},
		nil,
		{"spaceid": json.RawMessage(`5`), "latlng": json.RawMessage(`"5,5"`), "timelimit": json.RawMessage(`"4 HR"`)},
	}

	spaces := Minify(records)

	withLatLng := 0
	for _, r := range records {
		if r.Has("latlng") {
			withLatLng++
		}
	}
	if len(spaces) != withLatLng {
		t.Fatalf("len(spaces) = %d, want %d", len(spaces), withLatLng)
	}

	wantIDs := []string{"1", "", "5"}
	for i, s := range spaces {
		id, _ := s.SpaceID.Text()
		if id != wantIDs[i] {
			t.Errorf("spaces[%d].spaceid = %q, want %q", i, id, wantIDs[i])
		}
	}

	data, err := Encode(spaces)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var generic []map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		t.Fatalf("output is not an array of objects: %v", err)
	}
	wantKeys := []string{"latlng", "raterange", "spaceid", "timelimit"}
	for i, obj := range generic {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if !reflect.DeepEqual(keys, wantKeys) {
			t.Errorf("record %d keys = %v, want %v", i, keys, wantKeys)
		}
	}
}

func TestMinify_EmptyIsNotNil(t *testing.T) {
	if got := Minify(nil); got == nil {
		t.Fatal("Minify(nil) returned nil")
	}
	data, err := Encode(nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]" {
		t.Fatalf("Encode(nil) = %s, want []", data)
	}
}

func TestRun_Idempotent(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, `[{"spaceid":"X","latlng":{"latitude":"1.5", "longitude":"2.5"},"raterange":"<$1>"},{"spaceid":"Y"}]`)
	dst := filepath.Join(dir, DestPath)

	if _, err := Run(src, dst); err != nil {
		t.Fatal(err)
	}
	first, _ := os.ReadFile(dst)
	if _, err := Run(src, dst); err != nil {
		t.Fatal(err)
	}
	second, _ := os.ReadFile(dst)

	if !bytes.Equal(first, second) {
		t.Fatalf("outputs differ:\n%s\n%s", first, second)
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	records, err := Decode(strings.NewReader(`[
		{"spaceid": 10, "latlng": {"latitude": "37.1", "longitude": "-122.2"}, "timelimit": "1 HR"},
		{"spaceid": "B", "latlng": "3,4", "raterange": "$0.25 & up", "status": "taken"}
	]`))
	if err != nil {
		t.Fatal(err)
	}
	spaces := Minify(records)

	dst := filepath.Join(t.TempDir(), DestPath)
	if err := Write(dst, spaces); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(dst)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var decoded []models.Space
	if err := json.NewDecoder(f).Decode(&decoded); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if !reflect.DeepEqual(decoded, spaces) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", decoded, spaces)
	}
}
