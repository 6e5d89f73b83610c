package core

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/JonMunkholm/tabcheck/internal/schema"
)

func sample(name string, values ...string) ColumnSample {
	return ColumnSample{Name: name, Values: values}
}

func seq(format string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf(format, i+1)
	}
	return out
}

func TestInfer(t *testing.T) {
	in := NewInferencer(NewCatalog())

	words := []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf",
		"hotel", "india", "juliet", "kilo", "lima", "mike", "november", "oscar",
		"papa", "quebec", "romeo", "sierra", "tango"}

	tests := []struct {
		name       string
		sample     ColumnSample
		wantType   schema.ColumnType
		wantCodes  []string
		wantNumber schema.NumberType
		wantFormat string
	}{
		{
			name:     "zero rows is text",
			sample:   sample("x"),
			wantType: schema.Text,
		},
		{
			name:      "few integers are categorical",
			sample:    sample("Site", "1", "2", "1", "2", "3"),
			wantType:  schema.Categorical,
			wantCodes: []string{"1", "2", "3"},
		},
		{
			name:       "many integers are numerical",
			sample:     sample("count", seq("%d", 12)...),
			wantType:   schema.Numerical,
			wantNumber: schema.NumberInteger,
		},
		{
			name:       "many floats are real",
			sample:     sample("depth", seq("%d.5", 8)...),
			wantType:   schema.Numerical,
			wantNumber: schema.NumberReal,
		},
		{
			name:       "integral floats are integer",
			sample:     sample("depth", seq("%d.0", 8)...),
			wantType:   schema.Numerical,
			wantNumber: schema.NumberInteger,
		},
		{
			name:      "repeated strings are categorical",
			sample:    sample("habitat", "b", "a", "b", "a", "b", "a", "b", "a", "b", "a", "b", "a"),
			wantType:  schema.Categorical,
			wantCodes: []string{"a", "b"},
		},
		{
			name:       "distinct dates are datetime",
			sample:     sample("observed", seq("2020-01-%02d", 20)...),
			wantType:   schema.DateTime,
			wantFormat: "YYYY-MM-DD",
		},
		{
			name:     "distinct words are text",
			sample:   sample("notes", words...),
			wantType: schema.Text,
		},
		{
			name:     "half unparseable dates are text",
			sample:   sample("observed", append(seq("2020-01-%02d", 10), words[:10]...)...),
			wantType: schema.Text,
		},
		{
			name:       "year column becomes datetime",
			sample:     sample("Year", "1998", "1999", "2000", "1998", "NA"),
			wantType:   schema.DateTime,
			wantFormat: "YYYY",
		},
		{
			name:      "year values without a temporal name stay categorical",
			sample:    sample("plot", "1998", "1999", "2000", "1998", "NA"),
			wantType:  schema.Categorical,
			wantCodes: []string{"1998", "1999", "2000", "NA"},
		},
		{
			name:      "temporal name with non-year codes stays categorical",
			sample:    sample("date_code", "1", "2", "3", "1", "2"),
			wantType:  schema.Categorical,
			wantCodes: []string{"1", "2", "3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := in.Infer(tt.sample)
			if got.Type != tt.wantType {
				t.Fatalf("Type = %q, want %q", got.Type, tt.wantType)
			}
			if tt.wantCodes != nil && !reflect.DeepEqual(got.Codes, tt.wantCodes) {
				t.Errorf("Codes = %q, want %q", got.Codes, tt.wantCodes)
			}
			if got.NumberType != tt.wantNumber {
				t.Errorf("NumberType = %q, want %q", got.NumberType, tt.wantNumber)
			}
			if got.DateTimeFormat != tt.wantFormat {
				t.Errorf("DateTimeFormat = %q, want %q", got.DateTimeFormat, tt.wantFormat)
			}
		})
	}
}

func TestInferWithMissing_ExcludesMissingCode(t *testing.T) {
	in := NewInferencer(NewCatalog())
	got := in.InferWithMissing(sample("plot", "1998", "1999", "2000", "1998", "NA"), "NA")
	if got.Type != schema.Categorical {
		t.Fatalf("Type = %q, want categorical", got.Type)
	}
	for _, c := range got.Codes {
		if c == "NA" {
			t.Errorf("missing code NA present in codes %q", got.Codes)
		}
	}
}

func TestInfer_Deterministic(t *testing.T) {
	in := NewInferencer(NewCatalog())
	s := sample("habitat", "b", "a", "c", "a", "b", "NA")
	first := in.Infer(s)
	for i := 0; i < 5; i++ {
		if got := in.Infer(s); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d = %+v, want %+v", i, got, first)
		}
	}
}

func TestScalarKindOf(t *testing.T) {
	c := NewCatalog()
	tests := []struct {
		name   string
		values []string
		want   ScalarKind
	}{
		{"integers", []string{"1", "-2", "NA"}, ScalarInteger},
		{"floats", []string{"1", "2.5", ""}, ScalarFloat},
		{"strings", []string{"1", "x"}, ScalarString},
		{"all NA", []string{"NA", "", "null"}, ScalarString},
		{"empty", nil, ScalarString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.ScalarKindOf(tt.values); got != tt.want {
				t.Errorf("ScalarKindOf(%q) = %q, want %q", tt.values, got, tt.want)
			}
		})
	}
}

// =============================================================================
// Missing-value detection
// =============================================================================

func TestDetectMissing(t *testing.T) {
	tests := []struct {
		name   string
		rule   SentinelRule
		values []string
		want   string
		wantOK bool
	}{
		{"primary beats secondary", SentinelPrefix, []string{"1", "-", "NA"}, "NA", true},
		{"primary list order", SentinelPrefix, []string{"nan", "N/A"}, "N/A", true},
		{"secondary", SentinelPrefix, []string{"x", "?", "null"}, "null", true},
		{"prefix sentinel", SentinelPrefix, []string{"5", "99990", "7"}, "99990", true},
		{"smallest sentinel first", SentinelPrefix, []string{"9999", "-9999"}, "-9999", true},
		{"exact rejects trailing digits", SentinelExact, []string{"5", "99990"}, "", false},
		{"exact sentinel", SentinelExact, []string{"5", "-9999.0"}, "-9999.0", true},
		{"nothing", SentinelPrefix, []string{"a", "b"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := NewInferencer(NewCatalog(WithSentinelRule(tt.rule)))
			got, ok := in.detectMissing(tt.values)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("detectMissing(%q) = %q, %v; want %q, %v", tt.values, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestDetectMissingCode_Errors(t *testing.T) {
	in := NewInferencer(NewCatalog())
	df := &DataFile{
		Headers: []string{"a", "Unnamed: 1"},
		Rows:    [][]string{{"NA", "x"}},
	}

	code, ok, err := in.DetectMissingCode(df, "a")
	if err != nil || !ok || code != "NA" {
		t.Errorf("DetectMissingCode(a) = %q, %v, %v; want NA, true, nil", code, ok, err)
	}
	if _, _, err := in.DetectMissingCode(df, "b"); !errors.Is(err, ErrColumnNotFound) {
		t.Errorf("err = %v, want ErrColumnNotFound", err)
	}
	if _, _, err := in.DetectMissingCode(df, "Unnamed: 1"); !errors.Is(err, ErrUnnamedColumn) {
		t.Errorf("err = %v, want ErrUnnamedColumn", err)
	}
}

func TestProfileData(t *testing.T) {
	in := NewInferencer(NewCatalog())
	df := &DataFile{
		Headers: []string{"site", "Unnamed: 1"},
		Rows:    [][]string{{"A", "NA"}, {"B", "1"}, {"NA", "2"}},
	}
	p := in.ProfileData(df)
	if p.Rows != 3 || len(p.Columns) != 2 {
		t.Fatalf("profile = %+v", p)
	}
	if p.Columns[0].MissingCode != "NA" {
		t.Errorf("site missing code = %q, want NA", p.Columns[0].MissingCode)
	}
	if !reflect.DeepEqual(p.Columns[0].Verdict.Codes, []string{"A", "B"}) {
		t.Errorf("site codes = %q, want [A B]", p.Columns[0].Verdict.Codes)
	}
	if p.Columns[1].MissingCode != "" {
		t.Errorf("unnamed column missing code = %q, want empty", p.Columns[1].MissingCode)
	}
}
