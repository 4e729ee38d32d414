package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCollectionID is the distinguished collection that always exists and
// cannot be deleted.
const DefaultCollectionID = "default"

var (
	ErrDefaultCollection  = errors.New("default collection cannot be deleted")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrFileNotFound       = errors.New("file not found")
	ErrOperationInFlight  = errors.New("another operation is already in flight")
)

// UploadedFile is a file known to the workbench session.
// Name is the deduplication key: merging a file with an existing name
// replaces the prior entry.
type UploadedFile struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	DateCreated string `json:"date_created"`
	Size        int64  `json:"size"`
	Selected    bool   `json:"selected,omitempty"`

	// Data holds the raw bytes when the file was uploaded through this
	// workbench. Absent for files reported by the upstream session listing.
	Data []byte `json:"-"`
}

// HasData reports whether the file's bytes are retrievable locally.
func (f UploadedFile) HasData() bool {
	return len(f.Data) > 0
}

// Table is a spreadsheet sheet extracted by the upstream on upload.
type Table struct {
	CsvFilename string `json:"csv_filename"`
	DisplayName string `json:"display_name"`
}

// Collection is a named group of uploaded files that can be ingested as a
// unit for retrieval-augmented chat.
type Collection struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Files      []UploadedFile `json:"files"`
	IsExpanded bool           `json:"is_expanded"`
	IsIngested bool           `json:"is_ingested"`
}

// Workspace is the per-session source of truth for uploaded files, the
// preview target, the selection set, collections and RAG data. All
// operations are synchronous and total; callers handle upstream failures
// before or after mutating it.
type Workspace struct {
	mu sync.Mutex

	sessionID   string
	files       []UploadedFile
	tables      []Table
	previewCsv  string
	previewFile *UploadedFile
	selected    []UploadedFile

	collections        []Collection
	activeCollectionID string
	staged             []UploadedFile

	loading   bool
	currentOp string

	lastCleared time.Time

	Rag *RagData
}

// NewWorkspace constructs an empty workspace seeded with the default
// collection.
func NewWorkspace() *Workspace {
	return &Workspace{
		collections: []Collection{{
			ID:         DefaultCollectionID,
			Name:       "Default",
			Files:      []UploadedFile{},
			IsExpanded: true,
		}},
		Rag: NewRagData(),
	}
}

// --- Session ---

// SetSessionID replaces the session id unconditionally. An empty string
// means "no session".
func (w *Workspace) SetSessionID(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sessionID = id
}

func (w *Workspace) SessionID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sessionID
}

// BeginOperation marks the workspace busy for the named operation. It fails
// when another operation is still in flight, which is how duplicate
// submissions are rejected.
func (w *Workspace) BeginOperation(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.loading {
		return fmt.Errorf("%w: %s", ErrOperationInFlight, w.currentOp)
	}
	w.loading = true
	w.currentOp = name
	return nil
}

// EndOperation clears the busy flag. Always called once the operation
// settles, success or failure.
func (w *Workspace) EndOperation() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.loading = false
	w.currentOp = ""
}

func (w *Workspace) IsLoading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loading
}

// --- Files ---

// MergeFiles upserts incoming files by name, last write wins. Merge order is
// completion order of the corresponding uploads, so the operation is
// commutative across concurrent uploads of distinct names and
// last-write-wins for the same name.
func (w *Workspace) MergeFiles(incoming []UploadedFile) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, in := range incoming {
		replaced := false
		for i := range w.files {
			if w.files[i].Name == in.Name {
				w.files[i] = in
				replaced = true
				break
			}
		}
		if !replaced {
			w.files = append(w.files, in)
		}
	}
}

// RemoveFile deletes the named file. Removing an unknown name is a no-op.
func (w *Workspace) RemoveFile(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.files {
		if w.files[i].Name == name {
			w.files = append(w.files[:i], w.files[i+1:]...)
			break
		}
	}
	if w.previewFile != nil && w.previewFile.Name == name {
		w.previewFile = nil
	}
}

func (w *Workspace) Files() []UploadedFile {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]UploadedFile, len(w.files))
	copy(out, w.files)
	return out
}

// File returns the named file and whether it is known.
func (w *Workspace) File(name string) (UploadedFile, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, f := range w.files {
		if f.Name == name {
			return f, true
		}
	}
	return UploadedFile{}, false
}

// AddTables appends tables reported by a spreadsheet upload, deduplicated by
// csv filename.
func (w *Workspace) AddTables(tables []Table) {
	w.mu.Lock()
	defer w.mu.Unlock()
	known := make(map[string]bool, len(w.tables))
	for _, t := range w.tables {
		known[t.CsvFilename] = true
	}
	for _, t := range tables {
		if !known[t.CsvFilename] {
			w.tables = append(w.tables, t)
			known[t.CsvFilename] = true
		}
	}
}

func (w *Workspace) Tables() []Table {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Table, len(w.tables))
	copy(out, w.tables)
	return out
}

// --- Preview ---

// SetPreviewCsv makes the named table the preview target and clears any file
// preview. At most one preview target exists at a time.
func (w *Workspace) SetPreviewCsv(csvFilename string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.previewCsv = csvFilename
	w.previewFile = nil
}

// SetPreviewFile makes the file the preview target and clears any table
// preview. A nil file clears the file preview.
func (w *Workspace) SetPreviewFile(file *UploadedFile) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.previewFile = file
	w.previewCsv = ""
}

// HandleFilePreview is the convenience wrapper over SetPreviewFile; it
// guarantees the csv preview is cleared.
func (w *Workspace) HandleFilePreview(file *UploadedFile) {
	w.SetPreviewFile(file)
}

// ClearPreview drops whichever target is set.
func (w *Workspace) ClearPreview() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.previewCsv = ""
	w.previewFile = nil
}

// Preview returns the current target: the csv filename, or the file, or
// neither. Never both.
func (w *Workspace) Preview() (string, *UploadedFile) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.previewCsv, w.previewFile
}

// --- Selection ---

// SetSelectedFiles replaces the selection set.
func (w *Workspace) SetSelectedFiles(files []UploadedFile) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selected = files
}

// UpdateSelectedFiles applies a functional update to the selection set under
// the lock, so rapid toggles cannot lose updates.
func (w *Workspace) UpdateSelectedFiles(fn func(prev []UploadedFile) []UploadedFile) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selected = fn(w.selected)
}

func (w *Workspace) SelectedFiles() []UploadedFile {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]UploadedFile, len(w.selected))
	copy(out, w.selected)
	return out
}

// --- Collections ---

// AddCollection creates a new collection with the given member files. A
// blank name yields "Collection N". Returns the new collection's id.
func (w *Workspace) AddCollection(files []UploadedFile, name string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if name == "" {
		name = fmt.Sprintf("Collection %d", len(w.collections)+1)
	}
	c := Collection{
		ID:         uuid.NewString(),
		Name:       name,
		Files:      files,
		IsExpanded: true,
	}
	w.collections = append(w.collections, c)
	w.stageLocked(files)
	return c.ID
}

// stageLocked appends files to the staging list, skipping names already
// present. Caller holds the lock.
func (w *Workspace) stageLocked(files []UploadedFile) {
	known := make(map[string]bool, len(w.staged))
	for _, f := range w.staged {
		known[f.Name] = true
	}
	for _, f := range files {
		if !known[f.Name] {
			w.staged = append(w.staged, f)
			known[f.Name] = true
		}
	}
}

// StagedFiles is the flat, name-deduplicated list of files placed into
// collections through this workspace.
func (w *Workspace) StagedFiles() []UploadedFile {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]UploadedFile, len(w.staged))
	copy(out, w.staged)
	return out
}

// RemoveCollection deletes the collection. The default collection is
// protected. If the deleted collection was active, the active reference is
// cleared; it does not fall back to the default collection.
func (w *Workspace) RemoveCollection(id string) error {
	if id == DefaultCollectionID {
		return ErrDefaultCollection
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.collections {
		if w.collections[i].ID == id {
			w.collections = append(w.collections[:i], w.collections[i+1:]...)
			if w.activeCollectionID == id {
				w.activeCollectionID = ""
			}
			return nil
		}
	}
	return ErrCollectionNotFound
}

// RenameCollection mutates the name in place. Unknown ids are a no-op.
func (w *Workspace) RenameCollection(id, newName string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.collections {
		if w.collections[i].ID == id {
			w.collections[i].Name = newName
			return
		}
	}
}

// ToggleCollectionExpanded flips UI state only.
func (w *Workspace) ToggleCollectionExpanded(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.collections {
		if w.collections[i].ID == id {
			w.collections[i].IsExpanded = !w.collections[i].IsExpanded
			return
		}
	}
}

// MarkCollectionIngested sets the ingested flag. Irreversible in the normal
// flow.
func (w *Workspace) MarkCollectionIngested(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.collections {
		if w.collections[i].ID == id {
			w.collections[i].IsIngested = true
			return
		}
	}
}

// SetActiveCollection replaces the single active-collection reference.
// Activating one collection implicitly deactivates the previous. An empty id
// means "no active collection".
func (w *Workspace) SetActiveCollection(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.activeCollectionID = id
}

func (w *Workspace) ActiveCollectionID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.activeCollectionID
}

func (w *Workspace) Collections() []Collection {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Collection, len(w.collections))
	copy(out, w.collections)
	return out
}

// Collection returns the collection by id and whether it exists.
func (w *Workspace) Collection(id string) (Collection, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, c := range w.collections {
		if c.ID == id {
			return c, true
		}
	}
	return Collection{}, false
}

// CollectionFiles returns the members of the collection, or nil when
// unknown.
func (w *Workspace) CollectionFiles(id string) []UploadedFile {
	c, ok := w.Collection(id)
	if !ok {
		return nil
	}
	return c.Files
}

// AllCollectionFiles flattens every collection's members in collection
// order.
func (w *Workspace) AllCollectionFiles() []UploadedFile {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []UploadedFile
	for _, c := range w.collections {
		out = append(out, c.Files...)
	}
	return out
}

// SetCollections replaces the collection list with the upstream's view,
// preserving local expansion state. Upstream-known collections are by
// definition ingested. The active reference and session id are adopted by
// the caller.
func (w *Workspace) SetCollections(collections []Collection) {
	w.mu.Lock()
	defer w.mu.Unlock()
	expanded := make(map[string]bool, len(w.collections))
	for _, c := range w.collections {
		expanded[c.ID] = c.IsExpanded
	}
	merged := make([]Collection, 0, len(collections))
	for _, c := range collections {
		if exp, ok := expanded[c.ID]; ok {
			c.IsExpanded = exp
		} else {
			c.IsExpanded = c.ID == DefaultCollectionID
		}
		c.IsIngested = true
		merged = append(merged, c)
	}
	w.collections = merged
}

// --- Reset ---

// ClearAll resets selection, previews, collections, the active reference and
// RAG data, and stamps the clear time. The default collection is re-seeded.
func (w *Workspace) ClearAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selected = nil
	w.previewCsv = ""
	w.previewFile = nil
	w.files = nil
	w.tables = nil
	w.staged = nil
	w.collections = []Collection{{
		ID:         DefaultCollectionID,
		Name:       "Default",
		Files:      []UploadedFile{},
		IsExpanded: true,
	}}
	w.activeCollectionID = ""
	w.lastCleared = time.Now()
	w.Rag.Clear()
}

func (w *Workspace) LastCleared() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastCleared
}
