package core

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ScalarKind is the storage kind a column's values parse as.
type ScalarKind string

const (
	ScalarInteger ScalarKind = "integer"
	ScalarFloat   ScalarKind = "float"
	ScalarString  ScalarKind = "string"
)

// ScalarKindOf classifies a sample: integer when every non-NA value is an
// integer literal, float when every non-NA value is numeric, string
// otherwise. A sample with no non-NA values is string.
func (c *Catalog) ScalarKindOf(values []string) ScalarKind {
	seen := false
	allInt := true
	for _, v := range values {
		if c.IsNA(v) {
			continue
		}
		seen = true
		if allInt {
			if _, err := strconv.ParseInt(v, 10, 64); err == nil {
				continue
			}
			allInt = false
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return ScalarString
		}
	}
	switch {
	case !seen:
		return ScalarString
	case allInt:
		return ScalarInteger
	}
	return ScalarFloat
}

// NormalizeCodes turns the distinct values of a categorical column into its
// code list: the missing code and the empty string are dropped, float
// codes collapse to integers when every finite one is integral, duplicates
// are removed, numeric codes sort ascending ahead of the rest, and the rest
// sort case-insensitively.
func NormalizeCodes(values []string, missing string, kind ScalarKind) []string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || (missing != "" && v == missing) {
			continue
		}
		kept = append(kept, v)
	}

	if kind == ScalarFloat {
		kept = integralCodes(kept)
	}

	seen := make(map[string]struct{}, len(kept))
	out := kept[:0]
	for _, v := range kept {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	slices.SortStableFunc(out, compareCodes)
	return out
}

// integralCodes rewrites float codes as integers when every finite code is
// integral. Non-finite codes are left as written. If any finite code has a
// fractional part the list is returned unchanged.
func integralCodes(codes []string) []string {
	out := make([]string, len(codes))
	for i, v := range codes {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			out[i] = v
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil || !d.IsInteger() {
			return codes
		}
		out[i] = d.Truncate(0).String()
	}
	return out
}

func compareCodes(a, b string) int {
	fa, aNum := parseFinite(a)
	fb, bNum := parseFinite(b)
	switch {
	case aNum && bNum:
		if fa < fb {
			return -1
		}
		if fa > fb {
			return 1
		}
		return strings.Compare(a, b)
	case aNum:
		return -1
	case bNum:
		return 1
	}
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

func parseFinite(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
