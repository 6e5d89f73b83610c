package core

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateTimeFormat is one entry of the fixed date/time catalog.
type DateTimeFormat struct {
	// Token is the format string as written in metadata, e.g. "YYYY-MM-DD".
	Token string
	// Layout is the Go reference layout used to parse samples.
	Layout string
	// Pattern matches conforming values during a check.
	Pattern *regexp.Regexp
}

// Parses reports whether v parses under the format's layout.
func (f DateTimeFormat) Parses(v string) bool {
	_, err := time.Parse(f.Layout, v)
	return err == nil
}

// SentinelRule selects how numeric sentinel missing codes are recognised.
type SentinelRule string

const (
	// SentinelPrefix accepts any value starting with 9999 or -9999.
	SentinelPrefix SentinelRule = "prefix"
	// SentinelExact accepts only runs of nines, e.g. -9999, 99999, 9999.0.
	SentinelExact SentinelRule = "exact"
)

// ParseSentinelRule validates a configured rule name.
func ParseSentinelRule(s string) (SentinelRule, error) {
	switch SentinelRule(strings.ToLower(strings.TrimSpace(s))) {
	case "", SentinelPrefix:
		return SentinelPrefix, nil
	case SentinelExact:
		return SentinelExact, nil
	}
	return "", fmt.Errorf("unknown sentinel rule %q (want prefix or exact)", s)
}

// Ordered most specific first; inference picks the first format the
// probe value parses under.
var dateTimeFormats = []struct{ token, layout, pattern string }{
	{"YYYY-MM-DDThh:mm:ss", "2006-01-02T15:04:05", `\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`},
	{"YYYY-MM-DD hh:mm:ss", "2006-01-02 15:04:05", `\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}`},
	{"YYYY-MM-DDThh:mm", "2006-01-02T15:04", `\d{4}-\d{2}-\d{2}T\d{2}:\d{2}`},
	{"YYYY-MM-DD hh:mm", "2006-01-02 15:04", `\d{4}-\d{2}-\d{2} \d{2}:\d{2}`},
	{"YYYY-MM-DD", "2006-01-02", `\d{4}-\d{2}-\d{2}`},
	{"YYYY/MM/DD", "2006/01/02", `\d{4}/\d{2}/\d{2}`},
	{"MM/DD/YYYY hh:mm:ss", "01/02/2006 15:04:05", `\d{2}/\d{2}/\d{4} \d{2}:\d{2}:\d{2}`},
	{"MM/DD/YYYY", "01/02/2006", `\d{2}/\d{2}/\d{4}`},
	{"DD/MM/YYYY", "02/01/2006", `\d{2}/\d{2}/\d{4}`},
	{"M/D/YYYY", "1/2/2006", `\d{1,2}/\d{1,2}/\d{4}`},
	{"DD.MM.YYYY", "02.01.2006", `\d{2}\.\d{2}\.\d{4}`},
	{"DD-MMM-YYYY", "02-Jan-2006", `\d{2}-[A-Za-z]{3}-\d{4}`},
	{"YYYY-MM", "2006-01", `\d{4}-\d{2}`},
	{"hh:mm:ss", "15:04:05", `\d{2}:\d{2}:\d{2}`},
	{"hh:mm", "15:04", `\d{2}:\d{2}`},
	{"YYYY", "2006", `\d{4}`},
}

// naTokens are the values read as "not available" when judging the scalar
// kind of a sample.
var naTokens = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

var (
	primaryMissingCodes   = []string{"NA", "N/A", "n/a", "na", "#N/A", "NaN", "nan", "NAN"}
	secondaryMissingCodes = []string{
		"NULL", "null", "Null", "None", "none", "NONE",
		"inf", "-inf", "Inf", "-Inf",
		"-", ".", "?",
		"missing", "Missing", "MISSING",
	}
)

var (
	sentinelPrefixRe = regexp.MustCompile(`^-?9999`)
	sentinelExactRe  = regexp.MustCompile(`^-?9999+(\.0+)?$`)
)

// Catalog holds the fixed lookup tables shared by inference and checking.
// It is built once and is safe for concurrent use.
type Catalog struct {
	formats   []DateTimeFormat
	na        map[string]struct{}
	primary   []string
	secondary []string
	sentinel  *regexp.Regexp
	rule      SentinelRule
}

// CatalogOption customises a Catalog.
type CatalogOption func(*Catalog)

// WithSentinelRule selects the numeric sentinel rule (default prefix).
func WithSentinelRule(rule SentinelRule) CatalogOption {
	return func(c *Catalog) {
		c.rule = rule
	}
}

// NewCatalog builds the catalog.
func NewCatalog(opts ...CatalogOption) *Catalog {
	c := &Catalog{
		na:        make(map[string]struct{}, len(naTokens)),
		primary:   primaryMissingCodes,
		secondary: secondaryMissingCodes,
		rule:      SentinelPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, f := range dateTimeFormats {
		c.formats = append(c.formats, DateTimeFormat{
			Token:   f.token,
			Layout:  f.layout,
			Pattern: regexp.MustCompile(`^` + f.pattern + `$`),
		})
	}
	for _, tok := range naTokens {
		c.na[tok] = struct{}{}
	}
	if c.rule == SentinelExact {
		c.sentinel = sentinelExactRe
	} else {
		c.sentinel = sentinelPrefixRe
	}
	return c
}

// SentinelRule returns the rule in effect.
func (c *Catalog) SentinelRule() SentinelRule { return c.rule }

// Formats returns the date/time formats in match order.
func (c *Catalog) Formats() []DateTimeFormat {
	return append([]DateTimeFormat(nil), c.formats...)
}

// Lookup resolves a declared format token. Tokens are compared without
// regard to case or surrounding space.
func (c *Catalog) Lookup(token string) (DateTimeFormat, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return DateTimeFormat{}, false
	}
	for _, f := range c.formats {
		if f.Token == token {
			return f, true
		}
	}
	for _, f := range c.formats {
		if strings.EqualFold(f.Token, token) {
			return f, true
		}
	}
	return DateTimeFormat{}, false
}

// MatchFormat returns the first catalog format v parses under.
func (c *Catalog) MatchFormat(v string) (DateTimeFormat, bool) {
	for _, f := range c.formats {
		if f.Parses(v) {
			return f, true
		}
	}
	return DateTimeFormat{}, false
}

// IsNA reports whether v is one of the "not available" tokens.
func (c *Catalog) IsNA(v string) bool {
	_, ok := c.na[v]
	return ok
}

// IsSentinel reports whether v looks like a numeric sentinel missing code.
func (c *Catalog) IsSentinel(v string) bool {
	return c.sentinel.MatchString(v)
}
