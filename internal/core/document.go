package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/tabcheck/internal/schema"
)

// TableResult is the outcome of checking one declared table.
type TableResult struct {
	Table      string
	File       string
	SchemaHash string
	Cached     bool
	Truncated  bool
	// FileError is set when the data file could not be read; Report is
	// nil in that case.
	FileError string
	Report    *Report
	Duration  time.Duration
}

// OK reports whether the table was read and conforms.
func (r TableResult) OK() bool {
	return r.FileError == "" && r.Report.OK()
}

// ErrorCount returns the number of recorded errors, elided markers excluded.
func (r TableResult) ErrorCount() int {
	if r.Report == nil {
		return 0
	}
	n := 0
	for _, e := range r.Report.Errors {
		if !e.Elided {
			n++
		}
	}
	return n
}

// DocumentReport is the outcome of checking every table of a document.
type DocumentReport struct {
	DocumentID string
	Tables     []TableResult
	CheckedAt  time.Time
}

// OK reports whether every table conforms.
func (d *DocumentReport) OK() bool {
	for _, t := range d.Tables {
		if !t.OK() {
			return false
		}
	}
	return true
}

// TableTransport is the wire form of a TableResult.
type TableTransport struct {
	Table     string            `json:"table"`
	File      string            `json:"file"`
	OK        bool              `json:"ok"`
	Cached    bool              `json:"cached"`
	Truncated bool              `json:"truncated,omitempty"`
	FileError string            `json:"file_error,omitempty"`
	Report    TransportDocument `json:"report"`
}

// DocumentTransport is the wire form of a DocumentReport.
type DocumentTransport struct {
	Document  string           `json:"document"`
	OK        bool             `json:"ok"`
	CheckedAt time.Time        `json:"checked_at"`
	Tables    []TableTransport `json:"tables"`
}

// Transport converts d to its wire form.
func (d *DocumentReport) Transport() DocumentTransport {
	out := DocumentTransport{
		Document:  d.DocumentID,
		OK:        d.OK(),
		CheckedAt: d.CheckedAt,
		Tables:    make([]TableTransport, 0, len(d.Tables)),
	}
	for _, t := range d.Tables {
		rep := t.Report
		if rep == nil {
			rep = &Report{}
		}
		out.Tables = append(out.Tables, TableTransport{
			Table:     t.Table,
			File:      t.File,
			OK:        t.OK(),
			Cached:    t.Cached,
			Truncated: t.Truncated,
			FileError: t.FileError,
			Report:    rep.Transport(),
		})
	}
	return out
}

// ReadOptionsFor derives reader settings from a declared table.
func ReadOptionsFor(t schema.Table, maxRows int) ReadOptions {
	return ReadOptions{
		Delimiter:   t.Delimiter,
		Quote:       t.Quote,
		HeaderLines: t.HeaderLines,
		Encoding:    t.Encoding,
		MaxRows:     maxRows,
	}
}

// CheckTableFile reads the data file at path and checks it against t.
// Read failures land in TableResult.FileError; the returned error is
// reserved for cancellation. The report is collapsed.
func (c *Checker) CheckTableFile(ctx context.Context, t schema.Table, path string, maxRows int) (TableResult, error) {
	start := time.Now()
	res := TableResult{Table: t.Name, File: t.ObjectName, SchemaHash: schema.Hash(t)}

	if t.ObjectName == "" {
		res.FileError = "no object name declared for table"
		return res, nil
	}

	df, err := ReadDataFile(path, ReadOptionsFor(t, maxRows))
	if err != nil {
		res.FileError = err.Error()
		res.Duration = time.Since(start)
		return res, nil
	}
	res.Truncated = df.Truncated

	rep, err := c.Check(ctx, t, df)
	if err != nil {
		return res, err
	}
	res.Report = rep.Collapsed()
	res.Duration = time.Since(start)
	return res, nil
}
