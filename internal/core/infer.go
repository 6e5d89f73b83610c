package core

// infer.go assigns a column type to a sample of values.
//
// Decision order:
//
//  1. Empty sample: text.
//  2. Numeric scalar kind: categorical when there are at most
//     maxNumericCategories distinct values, numerical otherwise.
//  3. String scalar kind: categorical when the distinct count is small
//     relative to the sample; else date/time when the first non-NA value
//     matches a catalog format and most values parse under it; else text.
//  4. A categorical column whose name mentions a year or date becomes
//     date/time when nearly all of its codes are plausible years.

import (
	"strconv"
	"strings"

	"github.com/JonMunkholm/tabcheck/internal/schema"
	"github.com/shopspring/decimal"
)

const (
	maxNumericCategories = 5
	maxDateFailureRatio  = 0.20
	minYear              = 1900
	maxYear              = 2100
	yearCodeTolerance    = 3
)

// Verdict is the inferred type of one column.
type Verdict struct {
	Type           schema.ColumnType `json:"type"`
	NumberType     schema.NumberType `json:"number_type,omitempty"`
	Codes          []string          `json:"codes,omitempty"`
	DateTimeFormat string            `json:"datetime_format,omitempty"`
	Scalar         ScalarKind        `json:"scalar"`
}

// Inferencer profiles column samples against a Catalog.
type Inferencer struct {
	catalog *Catalog
}

// NewInferencer returns an Inferencer backed by c.
func NewInferencer(c *Catalog) *Inferencer {
	return &Inferencer{catalog: c}
}

// Catalog returns the lookup tables in use.
func (in *Inferencer) Catalog() *Catalog { return in.catalog }

// Infer classifies a sample with no known missing-value code.
func (in *Inferencer) Infer(s ColumnSample) Verdict {
	return in.InferWithMissing(s, "")
}

// InferWithMissing classifies a sample, excluding missing from any code list.
func (in *Inferencer) InferWithMissing(s ColumnSample, missing string) Verdict {
	n := len(s.Values)
	if n == 0 {
		return Verdict{Type: schema.Text, Scalar: ScalarString}
	}

	scalar := in.catalog.ScalarKindOf(s.Values)
	distinct := distinctValues(s.Values)
	k := len(distinct)

	var v Verdict
	switch scalar {
	case ScalarInteger, ScalarFloat:
		if k <= maxNumericCategories {
			v = Verdict{Type: schema.Categorical, Codes: NormalizeCodes(distinct, missing, scalar), Scalar: scalar}
		} else {
			v = Verdict{Type: schema.Numerical, NumberType: in.numberTypeOf(s.Values), Scalar: scalar}
		}
	default:
		switch {
		case isCategoricalRatio(k, n):
			v = Verdict{Type: schema.Categorical, Codes: NormalizeCodes(distinct, missing, scalar), Scalar: scalar}
		default:
			if f, ok := in.detectDateTime(s.Values); ok {
				v = Verdict{Type: schema.DateTime, DateTimeFormat: f.Token, Scalar: scalar}
			} else {
				v = Verdict{Type: schema.Text, Scalar: scalar}
			}
		}
	}

	if v.Type == schema.Categorical && looksTemporal(s.Name) {
		if f, ok := in.detectDateTime(s.Values); ok && enoughYears(distinct) {
			v = Verdict{Type: schema.DateTime, DateTimeFormat: f.Token, Scalar: scalar}
		}
	}
	return v
}

// isCategoricalRatio applies the distinct-count thresholds for string samples.
func isCategoricalRatio(k, n int) bool {
	ratio := float64(k) / float64(n)
	return (ratio < 0.10 && k < 15) || (ratio < 0.25 && k < 10) || k <= 5
}

func (in *Inferencer) numberTypeOf(values []string) schema.NumberType {
	for _, v := range values {
		if in.catalog.IsNA(v) {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil || !d.IsInteger() {
			return schema.NumberReal
		}
	}
	return schema.NumberInteger
}

// detectDateTime probes the first non-NA value against the catalog, then
// requires fewer than maxDateFailureRatio of the non-NA values to fail
// parsing under the matched format.
func (in *Inferencer) detectDateTime(values []string) (DateTimeFormat, bool) {
	var probe string
	found := false
	for _, v := range values {
		if !in.catalog.IsNA(v) {
			probe, found = v, true
			break
		}
	}
	if !found {
		return DateTimeFormat{}, false
	}

	f, ok := in.catalog.MatchFormat(probe)
	if !ok {
		return DateTimeFormat{}, false
	}

	total, failed := 0, 0
	for _, v := range values {
		if in.catalog.IsNA(v) {
			continue
		}
		total++
		if !f.Parses(v) {
			failed++
		}
	}
	if float64(failed)/float64(total) >= maxDateFailureRatio {
		return DateTimeFormat{}, false
	}
	return f, true
}

func looksTemporal(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "year") || strings.Contains(name, "date")
}

// enoughYears reports whether all but yearCodeTolerance of the distinct
// codes (and at least one) are integers in the plausible year range.
func enoughYears(distinct []string) bool {
	years := 0
	for _, v := range distinct {
		y, err := strconv.Atoi(v)
		if err == nil && y >= minYear && y <= maxYear {
			years++
		}
	}
	return years >= max(len(distinct)-yearCodeTolerance, 1)
}

// distinctValues returns the unique values of a sample in first-seen order.
func distinctValues(values []string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
