package core

import (
	"reflect"
	"strings"
	"testing"

	"github.com/JonMunkholm/tabcheck/internal/schema"
)

func TestBuildDataTable_RoundTrip(t *testing.T) {
	profile := &TableProfile{
		Rows: 42,
		Columns: []ColumnProfile{
			{Name: "site", MissingCode: "NA", Verdict: Verdict{Type: schema.Categorical, Codes: []string{"A", "B"}}},
			{Name: "count", Verdict: Verdict{Type: schema.Numerical, NumberType: schema.NumberInteger}},
			{Name: "observed", Verdict: Verdict{Type: schema.DateTime, DateTimeFormat: "YYYY-MM-DD"}},
			{Name: "notes", Verdict: Verdict{Type: schema.Text}},
		},
	}
	el := BuildDataTable(profile, DataTableMeta{
		EntityName:  "fish",
		ObjectName:  "fish.tsv",
		Size:        1024,
		Delimiter:   '\t',
		HeaderLines: 1,
	})

	table, err := schema.LoadTable(schema.Wrap(el))
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if table.Name != "fish" || table.ObjectName != "fish.tsv" {
		t.Errorf("names = %q, %q", table.Name, table.ObjectName)
	}
	if table.Delimiter != '\t' || table.Quote != '"' || table.HeaderLines != 1 {
		t.Errorf("layout = %q %q %d", table.Delimiter, table.Quote, table.HeaderLines)
	}

	want := []schema.Column{
		{Name: "site", Type: schema.Categorical, Codes: []string{"A", "B"}, Enforced: true, MissingCodes: []string{"NA"}},
		{Name: "count", Type: schema.Numerical, NumberType: schema.NumberInteger},
		{Name: "observed", Type: schema.DateTime, DateTimeFormat: "YYYY-MM-DD"},
		{Name: "notes", Type: schema.Text},
	}
	if !reflect.DeepEqual(table.Columns, want) {
		t.Errorf("columns =\n%+v\nwant\n%+v", table.Columns, want)
	}
}

func TestWriteXML(t *testing.T) {
	profile := &TableProfile{Rows: 1, Columns: []ColumnProfile{{Name: "a", Verdict: Verdict{Type: schema.Text}}}}
	out, err := WriteXML(BuildDataTable(profile, DataTableMeta{EntityName: "t", ObjectName: "t.csv"}))
	if err != nil {
		t.Fatalf("WriteXML: %v", err)
	}
	for _, want := range []string{"<dataTable>", "<attributeName>a</attributeName>", "<numberOfRecords>1</numberOfRecords>"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
