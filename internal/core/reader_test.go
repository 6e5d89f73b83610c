package core

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestReadDataFrom_Basic(t *testing.T) {
	df, err := ReadDataFrom(strings.NewReader("a,b\n1, x \n2,y\n"), ReadOptions{})
	if err != nil {
		t.Fatalf("ReadDataFrom: %v", err)
	}
	if !reflect.DeepEqual(df.Headers, []string{"a", "b"}) {
		t.Errorf("Headers = %v, want [a b]", df.Headers)
	}
	if df.NumRows() != 2 {
		t.Fatalf("NumRows = %d, want 2", df.NumRows())
	}
	if got := df.ColumnAt(1).Values; !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Errorf("column b = %q, want [x y]", got)
	}
	if df.Truncated {
		t.Error("Truncated should be false")
	}
}

func TestReadDataFrom_Decoding(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		encoding string
		want     string
	}{
		{"utf8 bom removed", "\xEF\xBB\xBFname\nv\n", "", "v"},
		{"invalid utf8 replaced", "name\n\xff\n", "", "�"},
		{"latin1", "name\ncaf\xe9\n", "ISO-8859-1", "café"},
		{"windows-1252", "name\n\x93q\x94\n", "windows-1252", "“q”"},
		{"utf16 with bom", "\xFF\xFEn\x00\n\x00v\x00\n\x00", "UTF-16", "v"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			df, err := ReadDataFrom(strings.NewReader(tt.input), ReadOptions{Encoding: tt.encoding})
			if err != nil {
				t.Fatalf("ReadDataFrom: %v", err)
			}
			if len(df.Headers) != 1 || df.NumRows() != 1 {
				t.Fatalf("got headers %q and %d rows", df.Headers, df.NumRows())
			}
			if got := df.Rows[0][0]; got != tt.want {
				t.Errorf("value = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadDataFrom_BOMHeader(t *testing.T) {
	df, err := ReadDataFrom(strings.NewReader("\xEF\xBB\xBFname\nv\n"), ReadOptions{})
	if err != nil {
		t.Fatalf("ReadDataFrom: %v", err)
	}
	if df.Headers[0] != "name" {
		t.Errorf("header = %q, want %q", df.Headers[0], "name")
	}
}

func TestReadDataFrom_UnsupportedEncoding(t *testing.T) {
	_, err := ReadDataFrom(strings.NewReader("a\n1\n"), ReadOptions{Encoding: "EBCDIC"})
	if !errors.Is(err, ErrUnsupportedEncoding) {
		t.Errorf("err = %v, want ErrUnsupportedEncoding", err)
	}
}

func TestReadDataFrom_QuoteCharacter(t *testing.T) {
	input := "a,b\n'x,y',\"q\"\n"
	df, err := ReadDataFrom(strings.NewReader(input), ReadOptions{Quote: '\''})
	if err != nil {
		t.Fatalf("ReadDataFrom: %v", err)
	}
	want := []string{"x,y", `"q"`}
	if !reflect.DeepEqual(df.Rows[0], want) {
		t.Errorf("row = %q, want %q", df.Rows[0], want)
	}
}

func TestReadDataFrom_TabDelimiter(t *testing.T) {
	df, err := ReadDataFrom(strings.NewReader("a\tb\n1\t2\n"), ReadOptions{Delimiter: '\t'})
	if err != nil {
		t.Fatalf("ReadDataFrom: %v", err)
	}
	if !reflect.DeepEqual(df.Rows[0], []string{"1", "2"}) {
		t.Errorf("row = %q, want [1 2]", df.Rows[0])
	}
}

func TestReadDataFrom_HeaderLines(t *testing.T) {
	df, err := ReadDataFrom(strings.NewReader("h1,h2\nunit,unit\n1,2\n"), ReadOptions{HeaderLines: 2})
	if err != nil {
		t.Fatalf("ReadDataFrom: %v", err)
	}
	if df.NumRows() != 1 {
		t.Errorf("NumRows = %d, want 1", df.NumRows())
	}
	if df.HeaderLines != 2 {
		t.Errorf("HeaderLines = %d, want 2", df.HeaderLines)
	}
}

func TestReadDataFrom_RowCeiling(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		wantRows      int
		wantTruncated bool
	}{
		{"over ceiling", "a\n1\n2\n3\n", 2, true},
		{"at ceiling", "a\n1\n2\n", 2, false},
		{"under ceiling", "a\n1\n", 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			df, err := ReadDataFrom(strings.NewReader(tt.input), ReadOptions{MaxRows: 2})
			if err != nil {
				t.Fatalf("ReadDataFrom: %v", err)
			}
			if df.NumRows() != tt.wantRows || df.Truncated != tt.wantTruncated {
				t.Errorf("rows = %d truncated = %v, want %d %v", df.NumRows(), df.Truncated, tt.wantRows, tt.wantTruncated)
			}
		})
	}
}

func TestReadDataFrom_EmptyAndShortRows(t *testing.T) {
	df, err := ReadDataFrom(strings.NewReader(""), ReadOptions{})
	if err != nil {
		t.Fatalf("ReadDataFrom(empty): %v", err)
	}
	if len(df.Headers) != 0 || df.NumRows() != 0 {
		t.Errorf("empty input gave %q and %d rows", df.Headers, df.NumRows())
	}

	df, err = ReadDataFrom(strings.NewReader("a,,c\n1\n"), ReadOptions{})
	if err != nil {
		t.Fatalf("ReadDataFrom: %v", err)
	}
	if df.Headers[1] != "Unnamed: 1" {
		t.Errorf("blank header = %q, want %q", df.Headers[1], "Unnamed: 1")
	}
	if got := df.ColumnAt(2).Values; !reflect.DeepEqual(got, []string{""}) {
		t.Errorf("short row column = %q, want [\"\"]", got)
	}
}

func TestDataFile_ColumnIndex(t *testing.T) {
	df := &DataFile{Headers: []string{"Site ID", "count", "Unnamed: 2"}}

	tests := []struct {
		name    string
		column  string
		want    int
		wantErr error
	}{
		{"exact", "count", 1, nil},
		{"normalised", "siteid", 0, nil},
		{"case and space", "SITE  id", 0, nil},
		{"missing", "depth", -1, ErrColumnNotFound},
		{"placeholder", "Unnamed: 2", -1, ErrUnnamedColumn},
		{"blank", " ", -1, ErrUnnamedColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := df.ColumnIndex(tt.column)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ColumnIndex: %v", err)
			}
			if got != tt.want {
				t.Errorf("ColumnIndex(%q) = %d, want %d", tt.column, got, tt.want)
			}
		})
	}
}

func TestReadDataFile_Missing(t *testing.T) {
	_, err := ReadDataFile(filepath.Join(t.TempDir(), "nope.csv"), ReadOptions{})
	if !errors.Is(err, ErrDataFileNotFound) {
		t.Errorf("err = %v, want ErrDataFileNotFound", err)
	}
}

func TestReadDataFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.csv")
	if err := os.WriteFile(path, []byte("a;b\n1;2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	df, err := ReadDataFile(path, ReadOptions{Delimiter: ';'})
	if err != nil {
		t.Fatalf("ReadDataFile: %v", err)
	}
	if !reflect.DeepEqual(df.Rows, [][]string{{"1", "2"}}) {
		t.Errorf("rows = %q", df.Rows)
	}
}
