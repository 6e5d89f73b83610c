package web

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/tabcheck/internal/core"
	"github.com/JonMunkholm/tabcheck/internal/schema"
	"github.com/JonMunkholm/tabcheck/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

// TableSummary describes a declared table in API responses.
type TableSummary struct {
	Name        string   `json:"name"`
	ObjectName  string   `json:"object_name"`
	Encoding    string   `json:"encoding,omitempty"`
	Delimiter   string   `json:"delimiter"`
	HeaderLines int      `json:"header_lines"`
	Columns     []string `json:"columns"`
}

func summarize(tables []schema.Table) []TableSummary {
	out := make([]TableSummary, 0, len(tables))
	for _, t := range tables {
		out = append(out, TableSummary{
			Name:        t.Name,
			ObjectName:  t.ObjectName,
			Encoding:    t.Encoding,
			Delimiter:   string(t.Delimiter),
			HeaderLines: t.HeaderLines,
			Columns:     t.ColumnNames(),
		})
	}
	return out
}

// handleHealth reports liveness and check slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"checks":  s.service.LimiterStatus(),
		"history": s.service.HistoryEnabled(),
	})
}

// handlePutDocument stores a document's EML metadata from the request body.
func (s *Server) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Storage.MaxUploadSize)

	tables, err := s.service.SaveDocument(r.Context(), docID, r.Body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"document": docID,
		"tables":   summarize(tables),
	})
}

// handleListTables lists the tables a stored document declares.
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	tables, err := s.service.Tables(docID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document": docID,
		"tables":   summarize(tables),
	})
}

// handlePutDataFile stores a data file from the request body.
func (s *Server) handlePutDataFile(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	fileName := chi.URLParam(r, "fileName")
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Storage.MaxUploadSize)

	n, err := s.service.SaveDataFile(r.Context(), docID, fileName, r.Body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"document": docID,
		"file":     fileName,
		"bytes":    n,
	})
}

// handleInfer profiles a stored data file and returns the dataTable
// fragment as XML. Reader settings come from the query string.
func (s *Server) handleInfer(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	fileName := chi.URLParam(r, "fileName")

	opts, err := readOptionsFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	el, profile, err := s.service.InferDataTable(r.Context(), docID, fileName, opts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	out, err := core.WriteXML(el)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("X-Sample-Rows", strconv.Itoa(profile.Rows))
	if profile.Truncated {
		w.Header().Set("X-Sample-Truncated", "true")
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(out))
}

// handleMissingCode guesses the missing-value code of one column.
func (s *Server) handleMissingCode(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	fileName := chi.URLParam(r, "fileName")
	column := r.URL.Query().Get("column")
	if column == "" {
		writeError(w, http.StatusBadRequest, "missing column parameter")
		return
	}

	opts, err := readOptionsFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	code, found, err := s.service.DetectMissingCode(docID, fileName, opts, column)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	resp := map[string]any{"column": column, "found": found, "code": nil}
	if found {
		resp["code"] = code
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCheck checks every declared table of a document. A document that
// does not conform is still a 200; the body says what failed.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	rep, err := s.service.CheckDocument(withRequester(r.Context(), r), docID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep.Transport())
}

// handleHistory lists recent check runs of a document.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if !s.service.HistoryEnabled() {
		writeError(w, http.StatusNotFound, "check history is not configured")
		return
	}

	runs, err := s.service.History(r.Context(), docID, parseIntParam(r, "limit", core.DefaultHistoryLimit))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if runs == nil {
		runs = []core.CheckRun{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"document": docID, "runs": runs})
}

// handleReportPage checks a document and renders the outcome as HTML.
func (s *Server) handleReportPage(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	rep, err := s.service.CheckDocument(withRequester(r.Context(), r), docID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := templates.ReportPage(reportView(rep)).Render(r.Context(), &buf); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// reportView flattens a document report for the HTML template.
func reportView(rep *core.DocumentReport) templates.ReportView {
	v := templates.ReportView{
		Document:  rep.DocumentID,
		OK:        rep.OK(),
		CheckedAt: rep.CheckedAt.Format(time.RFC3339),
	}
	for _, t := range rep.Tables {
		tv := templates.TableView{
			Name:      t.Table,
			File:      t.File,
			OK:        t.OK(),
			Cached:    t.Cached,
			Truncated: t.Truncated,
			FileError: t.FileError,
		}
		if t.Report != nil {
			tv.ColumnsChecked = t.Report.ColumnsChecked
			tv.MaxErrors = t.Report.MaxErrorsPerColumn
			for _, e := range t.Report.Errors {
				tv.Errors = append(tv.Errors, templates.ErrorRow{
					Column:   e.Column,
					Row:      e.RowLabel(),
					Kind:     e.Kind,
					Expected: e.Expected,
					Found:    e.Found,
				})
			}
		}
		v.Tables = append(v.Tables, tv)
	}
	return v
}
