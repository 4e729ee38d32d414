package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"doc-workbench-be/internal/dto"
	"doc-workbench-be/internal/pkg/logger"
	"doc-workbench-be/internal/repository/memory"
	"doc-workbench-be/pkg/store"
)

// UploadInput is one file received from the browser.
type UploadInput struct {
	Name string
	Data []byte
}

type IWorkspaceService interface {
	Upload(ctx context.Context, benchId string, files []UploadInput) (*dto.UploadResult, error)
	State(ctx context.Context, benchId string) *dto.WorkspaceStateResponse
	RefreshFiles(ctx context.Context, benchId string) (*dto.WorkspaceStateResponse, error)
	FileContent(ctx context.Context, benchId, name string) ([]byte, string, error)
	RemoveFile(ctx context.Context, benchId, name string)
	SetPreviewCsv(ctx context.Context, benchId, csvFilename string)
	SetPreviewFile(ctx context.Context, benchId, name string) error
	ClearPreview(ctx context.Context, benchId string)
	PreviewTable(ctx context.Context, benchId, csvFilename string) (*dto.TablePreviewResponse, error)
	SetSelection(ctx context.Context, benchId string, names []string)
	ToggleSelection(ctx context.Context, benchId, name string)
	Clear(ctx context.Context, benchId string)
}

type workspaceService struct {
	benches          *memory.WorkbenchRepository
	publisherService IPublisherService
	logger           logger.ILogger
}

func NewWorkspaceService(
	benches *memory.WorkbenchRepository,
	publisherService IPublisherService,
	logger logger.ILogger,
) IWorkspaceService {
	return &workspaceService{
		benches:          benches,
		publisherService: publisherService,
		logger:           logger,
	}
}

// fileTypeOf derives the upstream file_type from the extension. Images
// collapse to "png", which is what the upstream's image pipeline expects.
func fileTypeOf(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch ext {
	case "xlsx", "xls":
		return "xlsx"
	case "csv":
		return "csv"
	case "pdf":
		return "pdf"
	case "png", "jpg", "jpeg":
		return "png"
	default:
		return ext
	}
}

// Upload sends each file to the upstream and merges the successes into the
// workspace by name. Per-file failures do not abort the batch; they are
// reported in the result and as an error banner.
func (s *workspaceService) Upload(ctx context.Context, benchId string, files []UploadInput) (*dto.UploadResult, error) {
	bench := s.benches.GetOrCreate(benchId)

	if err := bench.Files.BeginOperation("upload"); err != nil {
		return nil, err
	}
	defer bench.Files.EndOperation()

	if len(files) == 0 {
		return nil, fmt.Errorf("no files to upload")
	}

	result := &dto.UploadResult{}
	var merged []store.UploadedFile
	var tables []store.Table

	for _, in := range files {
		fileType := fileTypeOf(in.Name)

		resp, err := bench.Upstream.UploadFile(ctx, in.Name, fileType, in.Data)
		if err != nil {
			s.logger.Error("Workspace", "Upload failed", map[string]interface{}{
				"file":  in.Name,
				"error": err.Error(),
			})
			result.Failed = append(result.Failed, in.Name)
			s.publisherService.PublishStatus(ctx, benchId, dto.StatusError,
				fmt.Sprintf("Error uploading %s.", in.Name))
			continue
		}

		merged = append(merged, store.UploadedFile{
			Name:        in.Name,
			Type:        fileType,
			DateCreated: time.Now().Format("2006-01-02"),
			Size:        int64(len(in.Data)),
			Data:        in.Data,
		})

		if fileType == "xlsx" || fileType == "csv" {
			for _, t := range resp.Tables {
				tables = append(tables, store.Table{
					CsvFilename: t.CsvFilename,
					DisplayName: t.DisplayName,
				})
			}
		}

		if resp.SessionID != "" {
			bench.Files.SetSessionID(resp.SessionID)
			bench.Chat.SetSessionID(resp.SessionID)
		}
	}

	bench.Files.MergeFiles(merged)
	bench.Files.AddTables(tables)

	for _, f := range merged {
		result.Files = append(result.Files, toFileResponse(f))
	}
	for _, t := range tables {
		result.Tables = append(result.Tables, dto.TableResponse{
			CsvFilename: t.CsvFilename,
			DisplayName: t.DisplayName,
		})
	}
	result.SessionId = bench.Files.SessionID()

	if len(result.Files) > 0 {
		s.publisherService.PublishStatus(ctx, benchId, dto.StatusSuccess, "File(s) uploaded successfully!")
	}

	return result, nil
}

func (s *workspaceService) State(ctx context.Context, benchId string) *dto.WorkspaceStateResponse {
	bench := s.benches.GetOrCreate(benchId)
	return toStateResponse(bench)
}

// RefreshFiles pulls the upstream's session file listing and merges it in.
// Files re-reported by the upstream carry no local bytes.
func (s *workspaceService) RefreshFiles(ctx context.Context, benchId string) (*dto.WorkspaceStateResponse, error) {
	bench := s.benches.GetOrCreate(benchId)

	files, err := bench.Upstream.GetSessionFiles(ctx)
	if err != nil {
		return nil, err
	}

	merged := make([]store.UploadedFile, 0, len(files))
	for _, f := range files {
		// Keep local bytes when we already hold them for this name
		existing, ok := bench.Files.File(f.Name)
		uf := store.UploadedFile{
			Name:        f.Name,
			Type:        f.Type,
			DateCreated: f.DateCreated,
			Size:        f.Size,
		}
		if ok {
			uf.Data = existing.Data
			uf.Selected = existing.Selected
		}
		merged = append(merged, uf)
	}
	bench.Files.MergeFiles(merged)

	return toStateResponse(bench), nil
}

func (s *workspaceService) FileContent(ctx context.Context, benchId, name string) ([]byte, string, error) {
	bench := s.benches.GetOrCreate(benchId)

	// Serve locally held bytes without a round trip
	if f, ok := bench.Files.File(name); ok && f.HasData() {
		return f.Data, mimeOf(f.Type), nil
	}
	return bench.Upstream.GetFile(ctx, name)
}

func mimeOf(fileType string) string {
	switch fileType {
	case "pdf":
		return "application/pdf"
	case "csv":
		return "text/csv"
	case "xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

func (s *workspaceService) RemoveFile(ctx context.Context, benchId, name string) {
	bench := s.benches.GetOrCreate(benchId)
	bench.Files.RemoveFile(name)
}

func (s *workspaceService) SetPreviewCsv(ctx context.Context, benchId, csvFilename string) {
	bench := s.benches.GetOrCreate(benchId)
	bench.Files.SetPreviewCsv(csvFilename)
}

func (s *workspaceService) SetPreviewFile(ctx context.Context, benchId, name string) error {
	bench := s.benches.GetOrCreate(benchId)
	if name == "" {
		bench.Files.HandleFilePreview(nil)
		return nil
	}
	f, ok := bench.Files.File(name)
	if !ok {
		return store.ErrFileNotFound
	}
	bench.Files.HandleFilePreview(&f)
	return nil
}

func (s *workspaceService) ClearPreview(ctx context.Context, benchId string) {
	bench := s.benches.GetOrCreate(benchId)
	bench.Files.ClearPreview()
}

func (s *workspaceService) PreviewTable(ctx context.Context, benchId, csvFilename string) (*dto.TablePreviewResponse, error) {
	bench := s.benches.GetOrCreate(benchId)
	preview, err := bench.Upstream.PreviewTable(ctx, csvFilename)
	if err != nil {
		return nil, err
	}
	return &dto.TablePreviewResponse{
		Columns: preview.Columns,
		Preview: preview.Preview,
	}, nil
}

func (s *workspaceService) SetSelection(ctx context.Context, benchId string, names []string) {
	bench := s.benches.GetOrCreate(benchId)
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	var selected []store.UploadedFile
	for _, f := range bench.Files.Files() {
		if wanted[f.Name] {
			f.Selected = true
			selected = append(selected, f)
		}
	}
	bench.Files.SetSelectedFiles(selected)
}

// ToggleSelection flips one file's membership via the functional update so
// rapid toggles from the UI cannot lose each other.
func (s *workspaceService) ToggleSelection(ctx context.Context, benchId, name string) {
	bench := s.benches.GetOrCreate(benchId)
	f, ok := bench.Files.File(name)
	if !ok {
		return
	}
	bench.Files.UpdateSelectedFiles(func(prev []store.UploadedFile) []store.UploadedFile {
		for i := range prev {
			if prev[i].Name == name {
				return append(prev[:i], prev[i+1:]...)
			}
		}
		f.Selected = true
		return append(prev, f)
	})
}

func (s *workspaceService) Clear(ctx context.Context, benchId string) {
	bench := s.benches.GetOrCreate(benchId)
	bench.Files.ClearAll()
	bench.Chat.Clear()
	s.logger.Info("Workspace", "Workbench cleared", map[string]interface{}{"workbench_id": benchId})
}

// --- Mapping helpers shared by the workspace and collection services ---

func toFileResponse(f store.UploadedFile) dto.UploadedFileResponse {
	return dto.UploadedFileResponse{
		Name:        f.Name,
		Type:        f.Type,
		DateCreated: f.DateCreated,
		Size:        f.Size,
		Selected:    f.Selected,
		HasData:     f.HasData(),
	}
}

func toStateResponse(bench *memory.Workbench) *dto.WorkspaceStateResponse {
	resp := &dto.WorkspaceStateResponse{
		SessionId:          bench.Files.SessionID(),
		Files:              []dto.UploadedFileResponse{},
		Tables:             []dto.TableResponse{},
		SelectedFiles:      []string{},
		ActiveCollectionId: bench.Files.ActiveCollectionID(),
		IsLoading:          bench.Files.IsLoading(),
	}
	for _, f := range bench.Files.Files() {
		resp.Files = append(resp.Files, toFileResponse(f))
	}
	for _, t := range bench.Files.Tables() {
		resp.Tables = append(resp.Tables, dto.TableResponse{
			CsvFilename: t.CsvFilename,
			DisplayName: t.DisplayName,
		})
	}
	for _, f := range bench.Files.SelectedFiles() {
		resp.SelectedFiles = append(resp.SelectedFiles, f.Name)
	}
	csv, file := bench.Files.Preview()
	resp.PreviewCsv = csv
	if file != nil {
		fr := toFileResponse(*file)
		resp.PreviewFile = &fr
	}
	return resp
}
