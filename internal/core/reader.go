package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// DefaultMaxRows is the row ceiling applied when ReadOptions leaves it unset.
const DefaultMaxRows = 100000

// unnamedHeader matches the placeholder names spreadsheet exports give to
// blank header cells.
var unnamedHeader = regexp.MustCompile(`^Unnamed: \d+$`)

// ReadOptions describes the physical layout of a delimited data file.
type ReadOptions struct {
	Delimiter   rune   // default ','
	Quote       rune   // default '"'
	HeaderLines int    // lines before the first data row; the first is the header
	Encoding    string // default UTF-8
	MaxRows     int    // data rows read at most; default DefaultMaxRows
}

func (o ReadOptions) withDefaults() ReadOptions {
	if o.Delimiter == 0 {
		o.Delimiter = ','
	}
	if o.Quote == 0 {
		o.Quote = '"'
	}
	if o.HeaderLines < 1 {
		o.HeaderLines = 1
	}
	if o.MaxRows <= 0 {
		o.MaxRows = DefaultMaxRows
	}
	return o
}

// DataFile is the in-memory sample of a delimited file: its header and up
// to MaxRows data rows. Values have surrounding whitespace removed.
type DataFile struct {
	Headers     []string
	Rows        [][]string
	HeaderLines int
	// Truncated is set when the file holds more rows than were read.
	Truncated bool
}

// ColumnSample is the ordered values of one column.
type ColumnSample struct {
	Name   string
	Values []string
}

// ReadDataFile opens path and reads it with ReadDataFrom.
func ReadDataFile(path string, opts ReadOptions) (*DataFile, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDataFileNotFound, filepath.Base(path))
		}
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	return ReadDataFrom(f, opts)
}

// ReadDataFrom reads a delimited file. An empty input yields a DataFile
// with no headers and no rows. Headers and cells are trimmed of surrounding
// whitespace, so checks see " 5" as "5" and "A " as "A".
func ReadDataFrom(r io.Reader, opts ReadOptions) (*DataFile, error) {
	opts = opts.withDefaults()

	src, err := decodeReader(r, opts.Encoding)
	if err != nil {
		return nil, err
	}
	src = withQuote(src, opts.Quote)

	cr := csv.NewReader(src)
	cr.Comma = opts.Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	unswap := func(s string) string { return s }
	if opts.Quote != '"' {
		swap := quoteSwap(opts.Quote)
		unswap = func(s string) string { return strings.Map(swap, s) }
	}

	df := &DataFile{HeaderLines: opts.HeaderLines}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return df, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrInvalidCSV, err)
	}
	df.Headers = make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(unswap(h))
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		df.Headers[i] = h
	}

	for i := 1; i < opts.HeaderLines; i++ {
		if _, err := cr.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				return df, nil
			}
			return nil, fmt.Errorf("%w: header line %d: %v", ErrInvalidCSV, i+1, err)
		}
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
		}
		if len(df.Rows) == opts.MaxRows {
			df.Truncated = true
			break
		}
		row := make([]string, len(rec))
		for j, v := range rec {
			row[j] = strings.TrimSpace(unswap(v))
		}
		df.Rows = append(df.Rows, row)
	}
	return df, nil
}

// NumRows returns the number of data rows read.
func (d *DataFile) NumRows() int { return len(d.Rows) }

// ColumnAt returns the sample at header position i. Short rows read as "".
func (d *DataFile) ColumnAt(i int) ColumnSample {
	s := ColumnSample{Values: make([]string, len(d.Rows))}
	if i >= 0 && i < len(d.Headers) {
		s.Name = d.Headers[i]
	}
	for r, row := range d.Rows {
		if i < len(row) {
			s.Values[r] = row[i]
		}
	}
	return s
}

// Column returns the sample for a named column.
func (d *DataFile) Column(name string) (ColumnSample, error) {
	i, err := d.ColumnIndex(name)
	if err != nil {
		return ColumnSample{}, err
	}
	return d.ColumnAt(i), nil
}

// ColumnIndex finds a header by exact name, then by normalised name.
// Placeholder and blank names are rejected with ErrUnnamedColumn.
func (d *DataFile) ColumnIndex(name string) (int, error) {
	if IsUnnamed(name) {
		return -1, fmt.Errorf("%w: %q", ErrUnnamedColumn, name)
	}
	for i, h := range d.Headers {
		if h == name {
			return i, nil
		}
	}
	want := NormalizeColumnName(name)
	for i, h := range d.Headers {
		if NormalizeColumnName(h) == want {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
}

// IsUnnamed reports whether a header is blank or a placeholder.
func IsUnnamed(name string) bool {
	name = strings.TrimSpace(name)
	return name == "" || unnamedHeader.MatchString(name)
}

// NormalizeColumnName folds case and removes all whitespace, so
// "Site ID" and "siteid" compare equal.
func NormalizeColumnName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), ""))
}
