package core

import "strconv"

// Scope says what a ConformanceError refers to.
type Scope string

const (
	ScopeTable  Scope = "table"
	ScopeColumn Scope = "column"
	ScopeRow    Scope = "row"
)

// Error kinds, as shown to users.
const (
	KindColumnCount    = "Column count"
	KindColumnName     = "Column name"
	KindNumerical      = "Numerical"
	KindCategorical    = "Categorical"
	KindDateTime       = "Date/time"
	KindDateTimeFormat = "Date/time format"
)

// ConformanceError is one finding of a check. Row is 0 unless Scope is
// ScopeRow. An Elided entry stands for a run of identical errors between
// its neighbours and carries no row.
type ConformanceError struct {
	Scope    Scope  `json:"scope"`
	Table    string `json:"table"`
	Column   string `json:"column,omitempty"`
	Row      int    `json:"row,omitempty"`
	Kind     string `json:"kind"`
	Expected string `json:"expected"`
	Found    string `json:"found"`
	Elided   bool   `json:"elided,omitempty"`
}

// Report is the result of checking one data table.
type Report struct {
	Errors             []ConformanceError `json:"errors"`
	ColumnsChecked     []string           `json:"columns_checked"`
	MaxErrorsPerColumn int                `json:"max_errors_per_column"`
}

// OK reports whether the check found nothing.
func (r *Report) OK() bool { return r == nil || len(r.Errors) == 0 }

// Collapsed returns a copy of r with runs of repeated errors elided.
func (r *Report) Collapsed() *Report {
	if r == nil {
		return nil
	}
	out := *r
	out.Errors = Collapse(r.Errors)
	return &out
}

// ColumnErrors returns the errors belonging to one column, in order.
func (r *Report) ColumnErrors(column string) []ConformanceError {
	var out []ConformanceError
	for _, e := range r.Errors {
		if e.Column == column && e.Scope != ScopeTable {
			out = append(out, e)
		}
	}
	return out
}

// TransportError is the wire form of a ConformanceError. Row holds an
// integer, null for table- and column-level errors, or "..." for an
// elided run.
type TransportError struct {
	Table     string `json:"table"`
	Column    any    `json:"column"`
	Row       any    `json:"row"`
	ErrorType string `json:"error_type"`
	Expected  string `json:"expected"`
	Found     string `json:"found"`
}

// TransportDocument is the wire form of a Report.
type TransportDocument struct {
	Errors           []TransportError `json:"errors"`
	ColumnsChecked   []string         `json:"columns_checked"`
	MaxErrsPerColumn int              `json:"max_errs_per_column"`
}

// ElidedRow is the row placeholder used for an elided run on the wire.
const ElidedRow = "..."

// Transport converts r to its wire form.
func (r *Report) Transport() TransportDocument {
	doc := TransportDocument{
		Errors:         make([]TransportError, 0, len(r.Errors)),
		ColumnsChecked: r.ColumnsChecked,
	}
	if doc.ColumnsChecked == nil {
		doc.ColumnsChecked = []string{}
	}
	doc.MaxErrsPerColumn = r.MaxErrorsPerColumn

	for _, e := range r.Errors {
		te := TransportError{
			Table:     e.Table,
			ErrorType: e.Kind,
			Expected:  e.Expected,
			Found:     e.Found,
		}
		if e.Column != "" {
			te.Column = e.Column
		}
		switch {
		case e.Elided:
			te.Row = ElidedRow
		case e.Scope == ScopeRow:
			te.Row = e.Row
		}
		doc.Errors = append(doc.Errors, te)
	}
	return doc
}

// RowLabel renders the row of an error for display.
func (e ConformanceError) RowLabel() string {
	switch {
	case e.Elided:
		return ElidedRow
	case e.Scope == ScopeRow:
		return strconv.Itoa(e.Row)
	}
	return ""
}
