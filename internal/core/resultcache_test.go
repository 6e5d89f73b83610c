package core

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func newTestStore(root string) *ResultStore {
	return NewResultStore(root, time.Minute, time.Minute)
}

func TestResultStore_OKMarker(t *testing.T) {
	root := t.TempDir()
	store := newTestStore(root)

	rep := &Report{ColumnsChecked: []string{"site", "count"}, MaxErrorsPerColumn: 10}
	if err := store.Put("doc", "f.csv", "h1", rep); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "doc", "f.csv__h1.eval_ok")); err != nil {
		t.Errorf("ok marker not written: %v", err)
	}

	// A fresh store has an empty memory layer, so this reads from disk.
	got, ok := newTestStore(root).Get("doc", "f.csv", "h1")
	if !ok {
		t.Fatal("Get missed after Put")
	}
	if !got.OK() {
		t.Errorf("OK() = false, want true")
	}
	if !reflect.DeepEqual(got.Report.ColumnsChecked, rep.ColumnsChecked) {
		t.Errorf("ColumnsChecked = %q, want %q", got.Report.ColumnsChecked, rep.ColumnsChecked)
	}
	if got.Report.MaxErrorsPerColumn != 10 {
		t.Errorf("MaxErrorsPerColumn = %d, want 10", got.Report.MaxErrorsPerColumn)
	}
}

func TestResultStore_EmptyOKMarker(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "doc"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "doc", "f.csv__h1.eval_ok"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	got, ok := newTestStore(root).Get("doc", "f.csv", "h1")
	if !ok {
		t.Fatal("Get missed an empty ok marker")
	}
	if !got.OK() || len(got.Report.ColumnsChecked) != 0 {
		t.Errorf("report = %+v, want empty passing report", got.Report)
	}
}

func TestResultStore_NewHashReplacesOld(t *testing.T) {
	root := t.TempDir()
	store := newTestStore(root)

	if err := store.Put("doc", "f.csv", "h1", &Report{}); err != nil {
		t.Fatalf("Put h1: %v", err)
	}
	rep := &Report{Errors: []ConformanceError{rowErr(2, "x")}, MaxErrorsPerColumn: 10}
	if err := store.Put("doc", "f.csv", "h2", rep); err != nil {
		t.Fatalf("Put h2: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "doc", "f.csv__h1.eval_ok")); !os.IsNotExist(err) {
		t.Errorf("old entry still present (err = %v)", err)
	}

	fresh := newTestStore(root)
	if _, ok := fresh.Get("doc", "f.csv", "h1"); ok {
		t.Error("Get(h1) hit after replacement")
	}
	got, ok := fresh.Get("doc", "f.csv", "h2")
	if !ok {
		t.Fatal("Get(h2) missed")
	}
	if got.OK() || len(got.Report.Errors) != 1 || got.Report.Errors[0].Found != "x" {
		t.Errorf("report = %+v", got.Report)
	}

	entries, err := store.Entries("doc")
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 1 || entries["f.csv"] != "h2" {
		t.Errorf("Entries = %v, want f.csv -> h2", entries)
	}
}

func TestResultStore_MemoryLayerHonoursHash(t *testing.T) {
	store := newTestStore(t.TempDir())
	if err := store.Put("doc", "f.csv", "h1", &Report{}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok := store.Get("doc", "f.csv", "h1"); !ok {
		t.Error("memory hit expected")
	}
	if _, ok := store.Get("doc", "f.csv", "other"); ok {
		t.Error("different hash must miss")
	}
}

func TestResultStore_Invalidate(t *testing.T) {
	root := t.TempDir()
	store := newTestStore(root)

	for _, file := range []string{"a.csv", "a.csv__b.csv"} {
		if err := store.Put("doc", file, "h", &Report{}); err != nil {
			t.Fatalf("Put %s: %v", file, err)
		}
	}
	if err := store.Invalidate("doc", "a.csv"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}

	if _, ok := store.Get("doc", "a.csv", "h"); ok {
		t.Error("a.csv still cached")
	}
	if _, ok := store.Get("doc", "a.csv__b.csv", "h"); !ok {
		t.Error("a.csv__b.csv removed by mistake")
	}
	if err := store.Invalidate("missing-doc", "x"); err != nil {
		t.Errorf("Invalidate on missing dir: %v", err)
	}
}

func TestParseEntryName(t *testing.T) {
	tests := []struct {
		name     string
		wantFile string
		wantHash string
		wantOK   bool
	}{
		{"f.csv__abc.eval.json", "f.csv", "abc", true},
		{"f.csv__abc.eval_ok", "f.csv", "abc", true},
		{"a__b.csv__abc.eval_ok", "a__b.csv", "abc", true},
		{"f.csv", "", "", false},
		{"__abc.eval_ok", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, hash, ok := parseEntryName(tt.name)
			if file != tt.wantFile || hash != tt.wantHash || ok != tt.wantOK {
				t.Errorf("parseEntryName(%q) = %q, %q, %v", tt.name, file, hash, ok)
			}
		})
	}
}
