package core

import (
	"encoding/json"
	"reflect"
	"testing"
)

func rowErr(row int, found string) ConformanceError {
	return ConformanceError{
		Scope:    ScopeRow,
		Table:    "t",
		Column:   "n",
		Row:      row,
		Kind:     KindNumerical,
		Expected: "A number",
		Found:    found,
	}
}

func rowsOf(errs []ConformanceError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.RowLabel()
	}
	return out
}

func TestCollapse(t *testing.T) {
	tableErr := ConformanceError{Scope: ScopeTable, Table: "t", Kind: KindColumnCount, Expected: "2 columns", Found: "3 columns"}

	tests := []struct {
		name  string
		input []ConformanceError
		want  []string
	}{
		{
			name:  "long run elided",
			input: []ConformanceError{rowErr(2, "x"), rowErr(3, "x"), rowErr(4, "x"), rowErr(5, "x"), rowErr(6, "x")},
			want:  []string{"2", "...", "6"},
		},
		{
			name:  "run of three elided",
			input: []ConformanceError{rowErr(2, "x"), rowErr(3, "x"), rowErr(4, "x")},
			want:  []string{"2", "...", "4"},
		},
		{
			name:  "short run kept",
			input: []ConformanceError{rowErr(2, "x"), rowErr(3, "x")},
			want:  []string{"2", "3"},
		},
		{
			name:  "gap ends run",
			input: []ConformanceError{rowErr(2, "x"), rowErr(3, "x"), rowErr(5, "x"), rowErr(6, "x")},
			want:  []string{"2", "3", "5", "6"},
		},
		{
			name:  "found change ends run",
			input: []ConformanceError{rowErr(2, "x"), rowErr(3, "x"), rowErr(4, "y"), rowErr(5, "y"), rowErr(6, "y")},
			want:  []string{"2", "3", "4", "...", "6"},
		},
		{
			name:  "table error passes through",
			input: []ConformanceError{tableErr, rowErr(2, "x"), rowErr(3, "x"), rowErr(4, "x")},
			want:  []string{"", "2", "...", "4"},
		},
		{
			name:  "empty",
			input: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Collapse(tt.input)
			if rows := rowsOf(got); !reflect.DeepEqual(rows, tt.want) {
				t.Errorf("rows = %q, want %q", rows, tt.want)
			}
		})
	}
}

func TestCollapse_Idempotent(t *testing.T) {
	input := []ConformanceError{
		rowErr(2, "x"), rowErr(3, "x"), rowErr(4, "x"), rowErr(5, "x"),
		rowErr(6, "y"), rowErr(8, "y"), rowErr(9, "y"), rowErr(10, "y"),
	}
	once := Collapse(input)
	twice := Collapse(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Collapse not idempotent:\nonce  %v\ntwice %v", rowsOf(once), rowsOf(twice))
	}
}

func TestCollapse_MarkerCopiesRun(t *testing.T) {
	got := Collapse([]ConformanceError{rowErr(2, "x"), rowErr(3, "x"), rowErr(4, "x")})
	marker := got[1]
	if !marker.Elided || marker.Row != 0 {
		t.Errorf("marker = %+v, want elided with no row", marker)
	}
	if marker.Found != "x" || marker.Kind != KindNumerical || marker.Column != "n" {
		t.Errorf("marker does not describe the run: %+v", marker)
	}
}

func TestReport_Transport(t *testing.T) {
	rep := &Report{
		Errors: Collapse([]ConformanceError{
			{Scope: ScopeTable, Table: "t", Kind: KindColumnCount, Expected: "2 columns", Found: "1 columns"},
			rowErr(2, "x"), rowErr(3, "x"), rowErr(4, "x"),
		}),
		ColumnsChecked:     []string{"n"},
		MaxErrorsPerColumn: 100,
	}

	data, err := json.Marshal(rep.Transport())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var doc struct {
		Errors []struct {
			Table     string `json:"table"`
			Column    any    `json:"column"`
			Row       any    `json:"row"`
			ErrorType string `json:"error_type"`
		} `json:"errors"`
		ColumnsChecked   []string `json:"columns_checked"`
		MaxErrsPerColumn int      `json:"max_errs_per_column"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if len(doc.Errors) != 4 {
		t.Fatalf("len(errors) = %d, want 4", len(doc.Errors))
	}
	if doc.Errors[0].Row != nil || doc.Errors[0].Column != nil {
		t.Errorf("table error row/column = %v/%v, want null", doc.Errors[0].Row, doc.Errors[0].Column)
	}
	if doc.Errors[1].Row != float64(2) {
		t.Errorf("first row = %v, want 2", doc.Errors[1].Row)
	}
	if doc.Errors[2].Row != "..." {
		t.Errorf("marker row = %v, want \"...\"", doc.Errors[2].Row)
	}
	if doc.Errors[3].ErrorType != KindNumerical {
		t.Errorf("error_type = %q, want %q", doc.Errors[3].ErrorType, KindNumerical)
	}
	if doc.MaxErrsPerColumn != 100 || !reflect.DeepEqual(doc.ColumnsChecked, []string{"n"}) {
		t.Errorf("summary = %d %q", doc.MaxErrsPerColumn, doc.ColumnsChecked)
	}
}
