package core

// service.go is the entry point shared by the HTTP server and the CLI.
//
// Each document lives in its own directory under the data directory:
//
//	<dataDir>/<document>/eml.xml                  metadata document
//	<dataDir>/<document>/<file>                   data files
//	<dataDir>/<document>/<file>__<hash>.eval_*    cached check results

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/tabcheck/internal/logging"
	"github.com/JonMunkholm/tabcheck/internal/schema"
	"github.com/beevik/etree"
)

// MetadataFileName is the stored name of a document's EML file.
const MetadataFileName = "eml.xml"

// Options configures a Service.
type Options struct {
	DataDir string

	// Profiling and checking
	MaxRows            int
	MaxErrorsPerColumn int
	Workers            int
	SentinelRule       SentinelRule

	// Result cache memory layer
	CacheTTL     time.Duration
	CacheCleanup time.Duration

	// Check admission
	MaxConcurrentChecks int
	CheckWaitTime       time.Duration
	CheckTimeout        time.Duration

	// History is optional.
	History *History
}

// Service profiles and checks stored documents.
type Service struct {
	dataDir      string
	maxRows      int
	checkTimeout time.Duration

	catalog    *Catalog
	inferencer *Inferencer
	checker    *Checker
	results    *ResultStore
	limiter    *CheckLimiter
	history    *History
}

// NewService creates the data directory if needed and wires the components.
func NewService(opts Options) (*Service, error) {
	if opts.DataDir == "" {
		return nil, errors.New("data directory is required")
	}
	if err := os.MkdirAll(opts.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultMaxRows
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Minute
	}
	if opts.CacheCleanup <= 0 {
		opts.CacheCleanup = 10 * time.Minute
	}

	catalog := NewCatalog(WithSentinelRule(opts.SentinelRule))
	return &Service{
		dataDir:      opts.DataDir,
		maxRows:      opts.MaxRows,
		checkTimeout: opts.CheckTimeout,
		catalog:      catalog,
		inferencer:   NewInferencer(catalog),
		checker: NewChecker(catalog, CheckOptions{
			MaxErrorsPerColumn: opts.MaxErrorsPerColumn,
			Workers:            opts.Workers,
		}),
		results: NewResultStore(opts.DataDir, opts.CacheTTL, opts.CacheCleanup),
		limiter: NewCheckLimiter(opts.MaxConcurrentChecks, opts.CheckWaitTime),
		history: opts.History,
	}, nil
}

// validName rejects names that are empty, hidden or would leave the
// document directory.
func validName(name string) error {
	switch {
	case name == "", name == ".", name == "..",
		strings.ContainsAny(name, `/\`+"\x00"),
		strings.HasPrefix(name, "."),
		filepath.Base(name) != name:
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func (s *Service) documentDir(docID string) (string, error) {
	if err := validName(docID); err != nil {
		return "", err
	}
	return filepath.Join(s.dataDir, docID), nil
}

func (s *Service) dataFilePath(docID, fileName string) (string, error) {
	dir, err := s.documentDir(docID)
	if err != nil {
		return "", err
	}
	if err := validName(fileName); err != nil {
		return "", err
	}
	if fileName == MetadataFileName || strings.HasSuffix(fileName, reportSuffix) || strings.HasSuffix(fileName, okSuffix) {
		return "", fmt.Errorf("%w: %q is reserved", ErrInvalidName, fileName)
	}
	return filepath.Join(dir, fileName), nil
}

// writeFileAtomic writes r to path through a temporary file in the same
// directory, returning the number of bytes written.
func writeFileAtomic(path string, r io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("store file: %w", err)
	}
	return n, nil
}

// SaveDocument validates and stores a document's EML metadata. The
// document must parse and declare only checkable tables.
func (s *Service) SaveDocument(ctx context.Context, docID string, r io.Reader) ([]schema.Table, error) {
	dir, err := s.documentDir(docID)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	root, err := schema.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	tables, err := schema.LoadTables(root)
	if err != nil {
		return nil, err
	}

	if _, err := writeFileAtomic(filepath.Join(dir, MetadataFileName), bytes.NewReader(data)); err != nil {
		return nil, err
	}
	logging.WithFields(ctx, "document", docID).Info("document stored", "tables", len(tables))
	return tables, nil
}

// Tables loads the declared tables of a stored document.
func (s *Service) Tables(docID string) ([]schema.Table, error) {
	dir, err := s.documentDir(docID)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, MetadataFileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, docID)
	}
	root, err := schema.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return schema.LoadTables(root)
}

// SaveDataFile stores a data file and drops any cached results for it.
func (s *Service) SaveDataFile(ctx context.Context, docID, fileName string, r io.Reader) (int64, error) {
	path, err := s.dataFilePath(docID, fileName)
	if err != nil {
		return 0, err
	}
	n, err := writeFileAtomic(path, r)
	if err != nil {
		return 0, err
	}
	if err := s.results.Invalidate(docID, fileName); err != nil {
		return n, err
	}
	logging.WithFields(ctx, "document", docID, "file", fileName).Info("data file stored", "bytes", n)
	return n, nil
}

func (s *Service) existingDataFile(docID, fileName string) (string, error) {
	path, err := s.dataFilePath(docID, fileName)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrDataFileNotFound, fileName)
	}
	return path, nil
}

// InferDataTable profiles a stored data file and renders the result as an
// EML dataTable element.
func (s *Service) InferDataTable(ctx context.Context, docID, fileName string, opts ReadOptions) (*etree.Element, *TableProfile, error) {
	path, err := s.existingDataFile(docID, fileName)
	if err != nil {
		return nil, nil, err
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = s.maxRows
	}

	log := logging.WithFields(ctx, "document", docID, "file", fileName)
	profile, err := s.inferencer.ProfileFile(path, opts)
	if err != nil {
		return nil, nil, err
	}
	if profile.Truncated {
		log.Warn("sample truncated at row ceiling", "max_rows", opts.MaxRows)
	}
	for _, col := range profile.Columns {
		log.Debug("column inferred", "column", col.Name, "type", col.Verdict.Type, "missing_code", col.MissingCode)
	}

	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}
	meta := DataTableMeta{
		EntityName:  strings.TrimSuffix(fileName, filepath.Ext(fileName)),
		ObjectName:  fileName,
		Size:        size,
		Delimiter:   opts.Delimiter,
		Quote:       opts.Quote,
		HeaderLines: opts.HeaderLines,
	}
	return BuildDataTable(profile, meta), profile, nil
}

// DetectMissingCode guesses the missing-value code of one column of a
// stored data file.
func (s *Service) DetectMissingCode(docID, fileName string, opts ReadOptions, column string) (string, bool, error) {
	path, err := s.existingDataFile(docID, fileName)
	if err != nil {
		return "", false, err
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = s.maxRows
	}
	return s.inferencer.DetectMissingCodeFile(path, opts, column)
}

// CheckDocument checks every declared table of a stored document against
// its data file, serving unchanged tables from the result cache.
func (s *Service) CheckDocument(ctx context.Context, docID string) (*DocumentReport, error) {
	tables, err := s.Tables(docID)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	if s.checkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.checkTimeout)
		defer cancel()
	}

	report := &DocumentReport{DocumentID: docID, CheckedAt: time.Now().UTC()}
	for _, t := range tables {
		res, err := s.checkTable(ctx, docID, t)
		if err != nil {
			return nil, err
		}
		report.Tables = append(report.Tables, res)
	}

	logging.WithFields(ctx, "document", docID).Info("document checked",
		"tables", len(report.Tables),
		"ok", report.OK(),
	)
	return report, nil
}

func (s *Service) checkTable(ctx context.Context, docID string, t schema.Table) (TableResult, error) {
	log := logging.WithFields(ctx, "document", docID, "table", t.Name, "file", t.ObjectName)
	hash := schema.Hash(t)

	if t.ObjectName != "" {
		if cached, ok := s.results.Get(docID, t.ObjectName, hash); ok {
			res := TableResult{
				Table:      t.Name,
				File:       t.ObjectName,
				SchemaHash: hash,
				Cached:     true,
				Report:     cached.Report,
			}
			log.Info("check served from cache", "ok", res.OK())
			s.record(ctx, log, docID, res)
			return res, nil
		}
	}

	path, err := s.dataFilePath(docID, t.ObjectName)
	if err != nil && t.ObjectName != "" {
		res := TableResult{Table: t.Name, File: t.ObjectName, SchemaHash: hash, FileError: err.Error()}
		s.record(ctx, log, docID, res)
		return res, nil
	}

	res, err := s.checker.CheckTableFile(ctx, t, path, s.maxRows)
	if err != nil {
		return TableResult{}, err
	}
	if res.FileError != "" {
		log.Warn("data file unreadable", "error", res.FileError)
		s.record(ctx, log, docID, res)
		return res, nil
	}
	if res.Truncated {
		log.Warn("sample truncated at row ceiling", "max_rows", s.maxRows)
	}

	if err := s.results.Put(docID, t.ObjectName, hash, res.Report); err != nil {
		log.Warn("failed to cache check result", "error", err)
	}
	log.Info("table checked",
		"ok", res.OK(),
		"errors", res.ErrorCount(),
		"columns", len(res.Report.ColumnsChecked),
		"duration", res.Duration,
	)
	s.record(ctx, log, docID, res)
	return res, nil
}

// record stores a run in history when configured. Failures are logged,
// never returned.
func (s *Service) record(ctx context.Context, log *slog.Logger, docID string, res TableResult) {
	if s.history == nil {
		return
	}
	req := RequesterFromContext(ctx)
	run := &CheckRun{
		DocumentID: docID,
		FileName:   res.File,
		TableName:  res.Table,
		SchemaHash: res.SchemaHash,
		OK:         res.OK(),
		ErrorCount: res.ErrorCount(),
		Cached:     res.Cached,
		FileError:  res.FileError,
		Duration:   res.Duration,
		ClientIP:   req.IP,
		UserAgent:  req.UserAgent,
	}
	if err := s.history.Record(ctx, run); err != nil {
		log.Warn("failed to record check run", "error", err)
	}
}

// HistoryEnabled reports whether check runs are being recorded.
func (s *Service) HistoryEnabled() bool { return s.history != nil }

// History returns recent check runs for a document.
func (s *Service) History(ctx context.Context, docID string, limit int) ([]CheckRun, error) {
	if s.history == nil {
		return nil, nil
	}
	if err := validName(docID); err != nil {
		return nil, err
	}
	return s.history.List(ctx, docID, limit)
}

// WaitForChecks blocks until in-flight checks finish or ctx ends.
func (s *Service) WaitForChecks(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// LimiterStatus reports check admission usage.
func (s *Service) LimiterStatus() CheckLimiterStatus {
	return s.limiter.Status()
}

// MaxRows returns the row ceiling applied to samples.
func (s *Service) MaxRows() int { return s.maxRows }
