package core

// check.go validates a data file against its declared table.
//
// Checking happens at two levels:
//  1. Structure: declared column count and positional names against the header
//  2. Values: each declared column found in the header is scanned with the
//     pattern its declared type implies
//
// Columns are scanned in parallel; errors come back in declared column
// order with rows ascending inside each column.

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/JonMunkholm/tabcheck/internal/schema"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxErrorsPerColumn bounds the errors kept for one column.
const DefaultMaxErrorsPerColumn = 100

// ContextCheckInterval is how many rows are scanned between cancellation checks.
var ContextCheckInterval = 1000

var (
	integerPattern = regexp.MustCompile(`^[+-]?\d+$`)
	wholePattern   = regexp.MustCompile(`^\d+$`)
	realPattern    = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)
)

// CheckOptions tunes a Checker.
type CheckOptions struct {
	// MaxErrorsPerColumn stops a column's scan once exceeded.
	MaxErrorsPerColumn int
	// Workers bounds concurrently scanned columns; 0 means one per column.
	Workers int
}

// Checker validates data files against declared tables.
type Checker struct {
	catalog   *Catalog
	maxErrors int
	workers   int
}

// NewChecker returns a Checker using c for date/time formats.
func NewChecker(c *Catalog, opts CheckOptions) *Checker {
	if opts.MaxErrorsPerColumn <= 0 {
		opts.MaxErrorsPerColumn = DefaultMaxErrorsPerColumn
	}
	return &Checker{catalog: c, maxErrors: opts.MaxErrorsPerColumn, workers: opts.Workers}
}

// MaxErrorsPerColumn returns the per-column error bound.
func (c *Checker) MaxErrorsPerColumn() int { return c.maxErrors }

// Check validates df against decl. The only error it returns is a
// cancelled or expired ctx.
func (c *Checker) Check(ctx context.Context, decl schema.Table, df *DataFile) (*Report, error) {
	rep := &Report{MaxErrorsPerColumn: c.maxErrors}
	rep.Errors = append(rep.Errors, structuralErrors(decl, df.Headers)...)

	headerPos := make(map[string]int, len(df.Headers))
	for i, h := range df.Headers {
		key := NormalizeColumnName(h)
		if _, dup := headerPos[key]; !dup {
			headerPos[key] = i
		}
	}

	type job struct {
		col schema.Column
		pos int
	}
	var jobs []job
	for _, col := range decl.Columns {
		pos, ok := headerPos[NormalizeColumnName(col.Name)]
		if !ok {
			continue
		}
		jobs = append(jobs, job{col: col, pos: pos})
		rep.ColumnsChecked = append(rep.ColumnsChecked, col.Name)
	}

	results := make([][]ConformanceError, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	if c.workers > 0 {
		g.SetLimit(c.workers)
	}
	for i, j := range jobs {
		g.Go(func() error {
			errs, err := c.checkColumn(gctx, decl, j.col, df.ColumnAt(j.pos))
			results[i] = errs
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, errs := range results {
		rep.Errors = append(rep.Errors, errs...)
	}
	return rep, nil
}

// structuralErrors compares the declared columns with the physical header.
func structuralErrors(decl schema.Table, headers []string) []ConformanceError {
	var errs []ConformanceError
	if len(decl.Columns) != len(headers) {
		errs = append(errs, ConformanceError{
			Scope:    ScopeTable,
			Table:    decl.Name,
			Kind:     KindColumnCount,
			Expected: fmt.Sprintf("%d columns", len(decl.Columns)),
			Found:    fmt.Sprintf("%d columns", len(headers)),
		})
	}

	for i := 0; i < min(len(decl.Columns), len(headers)); i++ {
		want := decl.Columns[i].Name
		if NormalizeColumnName(want) != NormalizeColumnName(headers[i]) {
			errs = append(errs, ConformanceError{
				Scope:    ScopeColumn,
				Table:    decl.Name,
				Column:   want,
				Kind:     KindColumnName,
				Expected: want,
				Found:    headers[i],
			})
		}
	}
	return errs
}

// columnRule is the compiled value check for one declared column.
type columnRule struct {
	kind     string
	expected string
	pattern  *regexp.Regexp
}

func (c *Checker) ruleFor(col schema.Column) (*columnRule, *ConformanceError) {
	switch col.Type {
	case schema.Numerical:
		switch col.NumberType {
		case schema.NumberInteger:
			return &columnRule{KindNumerical, "An integer", integerPattern}, nil
		case schema.NumberWhole, schema.NumberNatural:
			return &columnRule{KindNumerical, "A whole number", wholePattern}, nil
		default:
			return &columnRule{KindNumerical, "A number", realPattern}, nil
		}

	case schema.Categorical:
		if !col.Enforced {
			return nil, nil
		}
		return &columnRule{KindCategorical, "A defined code", codePattern(col)}, nil

	case schema.DateTime:
		f, ok := c.catalog.Lookup(col.DateTimeFormat)
		if !ok {
			return nil, &ConformanceError{
				Scope:    ScopeColumn,
				Column:   col.Name,
				Kind:     KindDateTimeFormat,
				Expected: "A supported date/time format",
				Found:    col.DateTimeFormat,
			}
		}
		return &columnRule{KindDateTime, f.Token, f.Pattern}, nil
	}
	return nil, nil
}

// codePattern builds an anchored alternation of the declared codes, the
// empty string and the missing-value codes.
func codePattern(col schema.Column) *regexp.Regexp {
	alts := make([]string, 0, len(col.Codes)+len(col.MissingCodes)+1)
	alts = append(alts, "")
	for _, code := range col.Codes {
		alts = append(alts, regexp.QuoteMeta(code))
	}
	for _, code := range col.MissingCodes {
		alts = append(alts, regexp.QuoteMeta(code))
	}
	return regexp.MustCompile(`^(?:` + strings.Join(alts, "|") + `)$`)
}

func (c *Checker) checkColumn(ctx context.Context, decl schema.Table, col schema.Column, sample ColumnSample) ([]ConformanceError, error) {
	rule, colErr := c.ruleFor(col)
	if colErr != nil {
		colErr.Table = decl.Name
		return []ConformanceError{*colErr}, nil
	}
	if rule == nil {
		return nil, nil
	}

	exempt := make(map[string]struct{}, len(col.MissingCodes)+1)
	exempt[""] = struct{}{}
	for _, code := range col.MissingCodes {
		exempt[code] = struct{}{}
	}

	// The reader always takes the first line as the header.
	headerLines := max(decl.HeaderLines, 1)

	var errs []ConformanceError
	for i, v := range sample.Values {
		if i%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if _, ok := exempt[v]; ok {
			continue
		}
		if rule.pattern.MatchString(v) {
			continue
		}
		errs = append(errs, ConformanceError{
			Scope:    ScopeRow,
			Table:    decl.Name,
			Column:   col.Name,
			Row:      i + 1 + headerLines,
			Kind:     rule.kind,
			Expected: rule.expected,
			Found:    v,
		})
		if len(errs) > c.maxErrors {
			break
		}
	}
	return errs, nil
}
