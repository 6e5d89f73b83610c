package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/tabcheck/internal/core"
	"github.com/JonMunkholm/tabcheck/internal/schema"
)

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// readOptionsFromQuery reads delimiter, quote, header_lines, encoding and
// max_rows. Absent values keep the reader defaults.
func readOptionsFromQuery(r *http.Request) (core.ReadOptions, error) {
	q := r.URL.Query()
	var opts core.ReadOptions

	if v := q.Get("delimiter"); v != "" {
		d, ok := schema.ParseDelimiter(v)
		if !ok {
			return opts, fmt.Errorf("invalid delimiter %q", v)
		}
		opts.Delimiter = d
	}
	if v := q.Get("quote"); v != "" {
		c, ok := schema.ParseDelimiter(v)
		if !ok {
			return opts, fmt.Errorf("invalid quote character %q", v)
		}
		opts.Quote = c
	}
	if v := q.Get("header_lines"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return opts, fmt.Errorf("invalid header_lines %q", v)
		}
		opts.HeaderLines = n
	}
	opts.Encoding = q.Get("encoding")
	opts.MaxRows = parseIntParam(r, "max_rows", 0)
	return opts, nil
}
