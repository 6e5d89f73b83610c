package schema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	// ErrNoDataTables is returned when a document declares no dataTable.
	ErrNoDataTables = errors.New("document declares no data tables")

	// ErrUnknownColumnType is returned for an attribute whose measurement
	// scale maps to none of the supported column types.
	ErrUnknownColumnType = errors.New("unknown column type")
)

// Defaults applied when the physical description omits a value.
const (
	DefaultDelimiter   = ','
	DefaultQuote       = '"'
	DefaultHeaderLines = 1
)

// LoadTables extracts every declared data table from an EML document, in
// document order. Any attribute with an unsupported measurement scale
// fails the whole load.
func LoadTables(root Node) ([]Table, error) {
	if root == nil {
		return nil, ErrEmptyDocument
	}

	var nodes []Node
	if root.Name() == "dataTable" {
		nodes = []Node{root}
	} else {
		nodes = root.Descendants("dataTable")
	}
	if len(nodes) == 0 {
		return nil, ErrNoDataTables
	}

	tables := make([]Table, 0, len(nodes))
	for _, n := range nodes {
		t, err := LoadTable(n)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// LoadTable reads a single dataTable element.
func LoadTable(n Node) (Table, error) {
	t := Table{
		Name:        childText(n, "entityName"),
		Delimiter:   DefaultDelimiter,
		Quote:       DefaultQuote,
		HeaderLines: DefaultHeaderLines,
	}

	physical := n.Child("physical")
	t.ObjectName = childText(physical, "objectName")
	t.Encoding = childText(physical, "characterEncoding")

	if text := firstDescendant(physical, "textFormat"); text != nil {
		if raw := childText(text, "numHeaderLines"); raw != "" {
			if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
				t.HeaderLines = v
			}
		}
		if d := firstDescendant(text, "fieldDelimiter"); d != nil {
			if r, ok := ParseDelimiter(d.RawText()); ok {
				t.Delimiter = r
			}
		}
		if q := firstDescendant(text, "quoteCharacter"); q != nil {
			if r, ok := ParseDelimiter(q.RawText()); ok {
				t.Quote = r
			}
		}
	}

	attrList := n.Child("attributeList")
	if attrList == nil {
		return t, nil
	}
	for _, a := range attrList.Children("attribute") {
		col, err := loadColumn(a)
		if err != nil {
			return Table{}, fmt.Errorf("table %q: %w", t.Name, err)
		}
		t.Columns = append(t.Columns, col)
	}
	return t, nil
}

func loadColumn(a Node) (Column, error) {
	col := Column{Name: childText(a, "attributeName")}

	for _, mv := range a.Children("missingValueCode") {
		if code := childText(mv, "code"); code != "" {
			col.MissingCodes = append(col.MissingCodes, code)
		}
	}

	scale := a.Child("measurementScale")
	if scale == nil {
		return Column{}, fmt.Errorf("%w: column %q has no measurement scale", ErrUnknownColumnType, col.Name)
	}

	switch {
	case scale.Child("nominal") != nil || scale.Child("ordinal") != nil:
		level := scale.Child("nominal")
		if level == nil {
			level = scale.Child("ordinal")
		}
		domain := level.Child("nonNumericDomain")
		if domain == nil {
			return Column{}, fmt.Errorf("%w: column %q has no non-numeric domain", ErrUnknownColumnType, col.Name)
		}
		if enum := domain.Child("enumeratedDomain"); enum != nil {
			col.Type = Categorical
			col.Enforced = !strings.EqualFold(enum.Attr("enforced"), "no")
			for _, def := range enum.Children("codeDefinition") {
				col.Codes = append(col.Codes, childText(def, "code"))
			}
			// Code lists held outside the document cannot be enforced here.
			if len(col.Codes) == 0 {
				col.Enforced = false
			}
			return col, nil
		}
		if domain.Child("textDomain") != nil {
			col.Type = Text
			return col, nil
		}
		return Column{}, fmt.Errorf("%w: column %q has an unrecognised non-numeric domain", ErrUnknownColumnType, col.Name)

	case scale.Child("ratio") != nil || scale.Child("interval") != nil:
		col.Type = Numerical
		col.NumberType = NumberReal
		if nt := firstDescendant(scale, "numberType"); nt != nil {
			switch NumberType(strings.ToLower(nt.Text())) {
			case NumberInteger:
				col.NumberType = NumberInteger
			case NumberWhole:
				col.NumberType = NumberWhole
			case NumberNatural:
				col.NumberType = NumberNatural
			}
		}
		return col, nil

	case scale.Child("dateTime") != nil:
		col.Type = DateTime
		col.DateTimeFormat = childText(scale.Child("dateTime"), "formatString")
		return col, nil
	}

	return Column{}, fmt.Errorf("%w: column %q", ErrUnknownColumnType, col.Name)
}

// ParseDelimiter decodes a delimiter or quote declaration. Besides a
// literal character it accepts the escaped and named forms metadata
// editors commonly write for tab.
func ParseDelimiter(raw string) (rune, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		switch {
		case strings.ContainsRune(raw, '\t'):
			return '\t', true
		case raw == " ":
			return ' ', true
		}
		return 0, false
	}
	raw = trimmed

	switch strings.ToLower(raw) {
	case `\t`, "tab", "#x09", "&#x09;", "&#9;":
		return '\t', true
	case "comma":
		return ',', true
	case "semicolon":
		return ';', true
	case "pipe":
		return '|', true
	case "space":
		return ' ', true
	}
	r, size := utf8.DecodeRuneInString(raw)
	if r == utf8.RuneError || size != len(raw) {
		return 0, false
	}
	return r, true
}
