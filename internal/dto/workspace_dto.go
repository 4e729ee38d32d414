package dto

type UploadedFileResponse struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	DateCreated string `json:"date_created"`
	Size        int64  `json:"size"`
	Selected    bool   `json:"selected"`
	HasData     bool   `json:"has_data"`
}

type TableResponse struct {
	CsvFilename string `json:"csv_filename"`
	DisplayName string `json:"display_name"`
}

type UploadResult struct {
	SessionId string                 `json:"session_id"`
	Files     []UploadedFileResponse `json:"files"`
	Tables    []TableResponse        `json:"tables"`
	Failed    []string               `json:"failed,omitempty"`
}

type WorkspaceStateResponse struct {
	SessionId          string                 `json:"session_id"`
	Files              []UploadedFileResponse `json:"files"`
	Tables             []TableResponse        `json:"tables"`
	PreviewCsv         string                 `json:"preview_csv,omitempty"`
	PreviewFile        *UploadedFileResponse  `json:"preview_file,omitempty"`
	SelectedFiles      []string               `json:"selected_files"`
	ActiveCollectionId string                 `json:"active_collection_id,omitempty"`
	IsLoading          bool                   `json:"is_loading"`
}

type SetPreviewCsvRequest struct {
	CsvFilename string `json:"csv_filename" validate:"required"`
}

type SetPreviewFileRequest struct {
	Name string `json:"name" validate:"required"`
}

type SetSelectionRequest struct {
	Names []string `json:"names"`
}

type ToggleSelectionRequest struct {
	Name string `json:"name" validate:"required"`
}

type TablePreviewResponse struct {
	Columns []string         `json:"columns"`
	Preview []map[string]any `json:"preview"`
}
