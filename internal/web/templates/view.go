// Package templates holds the HTML components served by the web package.
//
// Components are written in report.templ; report_templ.go is generated from
// it with `templ generate`.
package templates

// ErrorRow is one line of a table's error listing.
type ErrorRow struct {
	Column   string
	Row      string
	Kind     string
	Expected string
	Found    string
}

// TableView is the rendered outcome of one table.
type TableView struct {
	Name           string
	File           string
	OK             bool
	Cached         bool
	Truncated      bool
	FileError      string
	ColumnsChecked []string
	MaxErrors      int
	Errors         []ErrorRow
}

// ReportView is the rendered outcome of a document check.
type ReportView struct {
	Document  string
	OK        bool
	CheckedAt string
	Tables    []TableView
}
