package core

import (
	"fmt"
	"slices"
)

// DetectMissingCode guesses the missing-value code used in a column of df.
// Primary candidates win over secondary ones, each list in catalog order;
// otherwise the smallest distinct value matching the sentinel rule is
// chosen. The boolean is false when nothing qualifies.
func (in *Inferencer) DetectMissingCode(df *DataFile, column string) (string, bool, error) {
	idx, err := df.ColumnIndex(column)
	if err != nil {
		return "", false, err
	}
	code, ok := in.detectMissing(df.ColumnAt(idx).Values)
	return code, ok, nil
}

// DetectMissingCodeFile reads path and runs DetectMissingCode on it.
func (in *Inferencer) DetectMissingCodeFile(path string, opts ReadOptions, column string) (string, bool, error) {
	df, err := ReadDataFile(path, opts)
	if err != nil {
		return "", false, fmt.Errorf("detect missing code: %w", err)
	}
	return in.DetectMissingCode(df, column)
}

func (in *Inferencer) detectMissing(values []string) (string, bool) {
	present := make(map[string]struct{}, len(values))
	for _, v := range values {
		present[v] = struct{}{}
	}

	for _, candidates := range [][]string{in.catalog.primary, in.catalog.secondary} {
		for _, c := range candidates {
			if _, ok := present[c]; ok {
				return c, true
			}
		}
	}

	distinct := make([]string, 0, len(present))
	for v := range present {
		distinct = append(distinct, v)
	}
	slices.Sort(distinct)
	for _, v := range distinct {
		if in.catalog.IsSentinel(v) {
			return v, true
		}
	}
	return "", false
}
