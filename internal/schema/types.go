package schema

// ColumnType is the declared measurement class of a column.
type ColumnType string

const (
	Categorical ColumnType = "categorical"
	Numerical   ColumnType = "numerical"
	Text        ColumnType = "text"
	DateTime    ColumnType = "datetime"
)

// NumberType is the declared number kind of a numerical column.
type NumberType string

const (
	NumberReal    NumberType = "real"
	NumberInteger NumberType = "integer"
	NumberWhole   NumberType = "whole"
	NumberNatural NumberType = "natural"
)

// Column is one declared attribute of a data table.
type Column struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`

	// NumberType is set for numerical columns.
	NumberType NumberType `json:"number_type,omitempty"`

	// Codes and Enforced are set for categorical columns.
	Codes    []string `json:"codes,omitempty"`
	Enforced bool     `json:"enforced,omitempty"`

	// DateTimeFormat is the declared format token for date/time columns.
	DateTimeFormat string `json:"datetime_format,omitempty"`

	MissingCodes []string `json:"missing_codes,omitempty"`
}

// Table is one declared data table and the physical layout of its file.
type Table struct {
	Name        string   `json:"name"`
	ObjectName  string   `json:"object_name"`
	Encoding    string   `json:"encoding,omitempty"`
	Delimiter   rune     `json:"delimiter"`
	Quote       rune     `json:"quote"`
	HeaderLines int      `json:"header_lines"`
	Columns     []Column `json:"columns"`
}

// ColumnNames returns the declared column names in order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}
