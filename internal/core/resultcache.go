package core

// resultcache.go persists check results per (document, data file, schema hash).
//
// Layout under the store root:
//
//	<document>/<file>__<hash>.eval.json   report with at least one error
//	<document>/<file>__<hash>.eval_ok     marker for a clean result
//
// The ok marker's suffix alone decides pass/fail. Its body holds the
// columns checked and the error limit so a disk hit returns the same
// report a fresh check would. An empty marker reads as an empty report.
//
// A file keeps at most one entry: Put removes every earlier entry for the
// same file before writing. A go-cache memory layer fronts the disk.

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	reportSuffix = ".eval.json"
	okSuffix     = ".eval_ok"
	hashSep      = "__"
)

// CachedResult is a stored check outcome.
type CachedResult struct {
	Hash   string
	Report *Report
}

// OK reports whether the stored result had no errors.
func (c *CachedResult) OK() bool { return c.Report.OK() }

// ResultStore is the two-layer result cache.
type ResultStore struct {
	root string
	mem  *gocache.Cache
}

// NewResultStore returns a store rooted at root. Memory entries live for
// ttl and are swept every cleanup interval.
func NewResultStore(root string, ttl, cleanup time.Duration) *ResultStore {
	return &ResultStore{
		root: root,
		mem:  gocache.New(ttl, cleanup),
	}
}

func memKey(doc, file string) string { return doc + "/" + file }

func (s *ResultStore) dir(doc string) string { return filepath.Join(s.root, doc) }

// Get returns the stored result for file under hash. Entries stored under
// any other hash are misses.
func (s *ResultStore) Get(doc, file, hash string) (*CachedResult, bool) {
	if v, ok := s.mem.Get(memKey(doc, file)); ok {
		if cached := v.(*CachedResult); cached.Hash == hash {
			return cached, true
		}
	}

	base := filepath.Join(s.dir(doc), file+hashSep+hash)
	rep, err := readEntry(base + okSuffix)
	if errors.Is(err, os.ErrNotExist) {
		rep, err = readEntry(base + reportSuffix)
	}
	if err != nil {
		return nil, false
	}
	cached := &CachedResult{Hash: hash, Report: rep}
	s.mem.SetDefault(memKey(doc, file), cached)
	return cached, true
}

// Put replaces whatever is stored for file with rep under hash.
func (s *ResultStore) Put(doc, file, hash string, rep *Report) error {
	if rep == nil {
		rep = &Report{}
	}
	if err := s.Invalidate(doc, file); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir(doc), 0o755); err != nil {
		return fmt.Errorf("create result dir: %w", err)
	}

	base := filepath.Join(s.dir(doc), file+hashSep+hash)
	if rep.OK() {
		data, err := json.Marshal(okMarker{
			ColumnsChecked:     rep.ColumnsChecked,
			MaxErrorsPerColumn: rep.MaxErrorsPerColumn,
		})
		if err != nil {
			return fmt.Errorf("marshal ok marker: %w", err)
		}
		if err := os.WriteFile(base+okSuffix, data, 0o644); err != nil {
			return fmt.Errorf("write ok marker: %w", err)
		}
	} else {
		data, err := json.Marshal(rep)
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		if err := os.WriteFile(base+reportSuffix, data, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	s.mem.SetDefault(memKey(doc, file), &CachedResult{Hash: hash, Report: rep})
	return nil
}

// okMarker is the body of a clean result's marker file.
type okMarker struct {
	ColumnsChecked     []string `json:"columns_checked"`
	MaxErrorsPerColumn int      `json:"max_errors_per_column"`
}

// readEntry loads a stored report from path. Ok markers never carry errors,
// whatever their body says.
func readEntry(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, okSuffix) {
		var m okMarker
		if len(data) > 0 {
			if err := json.Unmarshal(data, &m); err != nil {
				return nil, fmt.Errorf("decode ok marker: %w", err)
			}
		}
		return &Report{ColumnsChecked: m.ColumnsChecked, MaxErrorsPerColumn: m.MaxErrorsPerColumn}, nil
	}
	var rep Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &rep, nil
}

// Invalidate removes every stored entry for file.
func (s *ResultStore) Invalidate(doc, file string) error {
	s.mem.Delete(memKey(doc, file))

	entries, err := os.ReadDir(s.dir(doc))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("list results: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		owner, _, ok := parseEntryName(e.Name())
		if !ok || owner != file {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir(doc), e.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove stale result: %w", err)
		}
	}
	return nil
}

// Entries lists the (file, hash) pairs stored for a document.
func (s *ResultStore) Entries(doc string) (map[string]string, error) {
	entries, err := os.ReadDir(s.dir(doc))
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	out := make(map[string]string)
	for _, e := range entries {
		if file, hash, ok := parseEntryName(e.Name()); ok {
			out[file] = hash
		}
	}
	return out, nil
}

// parseEntryName splits "<file>__<hash><suffix>". The hash is taken from
// the last separator so file names may themselves contain "__".
func parseEntryName(name string) (file, hash string, ok bool) {
	var stem string
	switch {
	case strings.HasSuffix(name, reportSuffix):
		stem = strings.TrimSuffix(name, reportSuffix)
	case strings.HasSuffix(name, okSuffix):
		stem = strings.TrimSuffix(name, okSuffix)
	default:
		return "", "", false
	}
	i := strings.LastIndex(stem, hashSep)
	if i <= 0 {
		return "", "", false
	}
	return stem[:i], stem[i+len(hashSep):], true
}
