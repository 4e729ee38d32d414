package store

import (
	"errors"
	"testing"
)

func TestMergeFilesUpsertByName(t *testing.T) {
	tests := []struct {
		name      string
		initial   []UploadedFile
		incoming  []UploadedFile
		wantNames []string
		wantSizes map[string]int64
	}{
		{
			name:      "append new files",
			initial:   []UploadedFile{{Name: "a.pdf", Size: 1}},
			incoming:  []UploadedFile{{Name: "b.pdf", Size: 2}},
			wantNames: []string{"a.pdf", "b.pdf"},
			wantSizes: map[string]int64{"a.pdf": 1, "b.pdf": 2},
		},
		{
			name:      "same name replaces, last write wins",
			initial:   []UploadedFile{{Name: "a.pdf", Size: 1}},
			incoming:  []UploadedFile{{Name: "a.pdf", Size: 9}},
			wantNames: []string{"a.pdf"},
			wantSizes: map[string]int64{"a.pdf": 9},
		},
		{
			name:      "mixed batch",
			initial:   []UploadedFile{{Name: "a.pdf", Size: 1}, {Name: "b.pdf", Size: 2}},
			incoming:  []UploadedFile{{Name: "b.pdf", Size: 20}, {Name: "c.pdf", Size: 3}},
			wantNames: []string{"a.pdf", "b.pdf", "c.pdf"},
			wantSizes: map[string]int64{"a.pdf": 1, "b.pdf": 20, "c.pdf": 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorkspace()
			w.MergeFiles(tt.initial)
			w.MergeFiles(tt.incoming)

			got := w.Files()
			if len(got) != len(tt.wantNames) {
				t.Fatalf("got %d files, want %d", len(got), len(tt.wantNames))
			}
			for i, name := range tt.wantNames {
				if got[i].Name != name {
					t.Errorf("file[%d] = %q, want %q", i, got[i].Name, name)
				}
				if got[i].Size != tt.wantSizes[name] {
					t.Errorf("file %q size = %d, want %d", name, got[i].Size, tt.wantSizes[name])
				}
			}
		})
	}
}

func TestMergeFilesConcurrentDistinctNamesCommute(t *testing.T) {
	a := NewWorkspace()
	a.MergeFiles([]UploadedFile{{Name: "x.pdf"}})
	a.MergeFiles([]UploadedFile{{Name: "y.pdf"}})

	b := NewWorkspace()
	b.MergeFiles([]UploadedFile{{Name: "y.pdf"}})
	b.MergeFiles([]UploadedFile{{Name: "x.pdf"}})

	namesA := map[string]bool{}
	for _, f := range a.Files() {
		namesA[f.Name] = true
	}
	for _, f := range b.Files() {
		if !namesA[f.Name] {
			t.Errorf("file sets differ across merge orders: %q missing", f.Name)
		}
	}
	if len(a.Files()) != len(b.Files()) {
		t.Errorf("file counts differ: %d vs %d", len(a.Files()), len(b.Files()))
	}
}

func TestPreviewExclusivity(t *testing.T) {
	file := &UploadedFile{Name: "doc.pdf"}

	tests := []struct {
		name     string
		run      func(w *Workspace)
		wantCsv  string
		wantFile string // empty means nil
	}{
		{
			name: "csv preview clears file preview",
			run: func(w *Workspace) {
				w.SetPreviewFile(file)
				w.SetPreviewCsv("table.csv")
			},
			wantCsv: "table.csv",
		},
		{
			name: "file preview clears csv preview",
			run: func(w *Workspace) {
				w.SetPreviewCsv("table.csv")
				w.SetPreviewFile(file)
			},
			wantFile: "doc.pdf",
		},
		{
			name: "clear drops both",
			run: func(w *Workspace) {
				w.SetPreviewCsv("table.csv")
				w.SetPreviewFile(file)
				w.ClearPreview()
			},
		},
		{
			name: "removing previewed file clears file preview",
			run: func(w *Workspace) {
				w.MergeFiles([]UploadedFile{*file})
				w.SetPreviewFile(file)
				w.RemoveFile("doc.pdf")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorkspace()
			tt.run(w)

			csv, f := w.Preview()
			if csv != "" && f != nil {
				t.Fatal("both preview targets set at once")
			}
			if csv != tt.wantCsv {
				t.Errorf("preview csv = %q, want %q", csv, tt.wantCsv)
			}
			gotFile := ""
			if f != nil {
				gotFile = f.Name
			}
			if gotFile != tt.wantFile {
				t.Errorf("preview file = %q, want %q", gotFile, tt.wantFile)
			}
		})
	}
}

func TestAddCollectionStagingIdempotent(t *testing.T) {
	w := NewWorkspace()
	files := []UploadedFile{{Name: "a.pdf"}, {Name: "b.pdf"}}

	w.AddCollection(files, "first")
	w.AddCollection(files, "second")
	w.AddCollection([]UploadedFile{{Name: "b.pdf"}, {Name: "c.pdf"}}, "third")

	staged := w.StagedFiles()
	want := []string{"a.pdf", "b.pdf", "c.pdf"}
	if len(staged) != len(want) {
		t.Fatalf("staged %d files, want %d", len(staged), len(want))
	}
	for i, name := range want {
		if staged[i].Name != name {
			t.Errorf("staged[%d] = %q, want %q", i, staged[i].Name, name)
		}
	}
}

func TestAddCollectionDefaultName(t *testing.T) {
	w := NewWorkspace()
	id := w.AddCollection(nil, "")
	c, ok := w.Collection(id)
	if !ok {
		t.Fatal("collection not found after AddCollection")
	}
	// The seeded default collection counts, so the first added one is number 2
	if c.Name != "Collection 2" {
		t.Errorf("default name = %q, want %q", c.Name, "Collection 2")
	}
	if !c.IsExpanded {
		t.Error("new collection should start expanded")
	}
}

func TestRemoveCollection(t *testing.T) {
	t.Run("default collection is protected", func(t *testing.T) {
		w := NewWorkspace()
		if err := w.RemoveCollection(DefaultCollectionID); !errors.Is(err, ErrDefaultCollection) {
			t.Errorf("err = %v, want ErrDefaultCollection", err)
		}
		if _, ok := w.Collection(DefaultCollectionID); !ok {
			t.Error("default collection was removed")
		}
	})

	t.Run("deleting active collection clears the reference", func(t *testing.T) {
		w := NewWorkspace()
		id := w.AddCollection(nil, "temp")
		w.SetActiveCollection(id)

		if err := w.RemoveCollection(id); err != nil {
			t.Fatalf("RemoveCollection: %v", err)
		}
		if got := w.ActiveCollectionID(); got != "" {
			t.Errorf("active collection = %q, want none", got)
		}
	})

	t.Run("deleting inactive collection keeps the active one", func(t *testing.T) {
		w := NewWorkspace()
		keep := w.AddCollection(nil, "keep")
		drop := w.AddCollection(nil, "drop")
		w.SetActiveCollection(keep)

		if err := w.RemoveCollection(drop); err != nil {
			t.Fatalf("RemoveCollection: %v", err)
		}
		if got := w.ActiveCollectionID(); got != keep {
			t.Errorf("active collection = %q, want %q", got, keep)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		w := NewWorkspace()
		if err := w.RemoveCollection("nope"); !errors.Is(err, ErrCollectionNotFound) {
			t.Errorf("err = %v, want ErrCollectionNotFound", err)
		}
	})
}

func TestSetActiveCollectionSingleReference(t *testing.T) {
	w := NewWorkspace()
	first := w.AddCollection(nil, "first")
	second := w.AddCollection(nil, "second")

	w.SetActiveCollection(first)
	w.SetActiveCollection(second)

	if got := w.ActiveCollectionID(); got != second {
		t.Errorf("active collection = %q, want %q", got, second)
	}
}

func TestSetCollectionsPreservesExpansion(t *testing.T) {
	w := NewWorkspace()
	id := w.AddCollection(nil, "mine")
	w.ToggleCollectionExpanded(id) // collapse it

	w.SetCollections([]Collection{
		{ID: id, Name: "mine"},
		{ID: "new-remote", Name: "remote"},
	})

	c, ok := w.Collection(id)
	if !ok {
		t.Fatal("known collection dropped by SetCollections")
	}
	if c.IsExpanded {
		t.Error("expansion state was not preserved")
	}
	if !c.IsIngested {
		t.Error("upstream-known collection should be marked ingested")
	}

	remote, ok := w.Collection("new-remote")
	if !ok {
		t.Fatal("remote collection missing")
	}
	if remote.IsExpanded {
		t.Error("unknown non-default collection should start collapsed")
	}
}

func TestBeginOperationRejectsConcurrent(t *testing.T) {
	w := NewWorkspace()
	if err := w.BeginOperation("ingest"); err != nil {
		t.Fatalf("first BeginOperation: %v", err)
	}
	if err := w.BeginOperation("upload"); !errors.Is(err, ErrOperationInFlight) {
		t.Errorf("err = %v, want ErrOperationInFlight", err)
	}
	w.EndOperation()
	if err := w.BeginOperation("upload"); err != nil {
		t.Errorf("BeginOperation after EndOperation: %v", err)
	}
}

func TestClearAllReseedsDefault(t *testing.T) {
	w := NewWorkspace()
	w.MergeFiles([]UploadedFile{{Name: "a.pdf"}})
	id := w.AddCollection([]UploadedFile{{Name: "a.pdf"}}, "c")
	w.SetActiveCollection(id)
	w.SetPreviewCsv("t.csv")
	w.Rag.SetAll(map[string]any{"summary": "text"})

	w.ClearAll()

	if len(w.Files()) != 0 {
		t.Error("files survived ClearAll")
	}
	if got := w.ActiveCollectionID(); got != "" {
		t.Errorf("active collection = %q after ClearAll", got)
	}
	csv, f := w.Preview()
	if csv != "" || f != nil {
		t.Error("preview survived ClearAll")
	}
	cols := w.Collections()
	if len(cols) != 1 || cols[0].ID != DefaultCollectionID {
		t.Errorf("collections after ClearAll = %+v, want just the default", cols)
	}
	if len(w.Rag.Sections()) != 0 {
		t.Error("rag sections survived ClearAll")
	}
	if w.LastCleared().IsZero() {
		t.Error("lastCleared not stamped")
	}
}
