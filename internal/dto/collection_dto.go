package dto

type CreateCollectionRequest struct {
	Name      string   `json:"name"`
	FileNames []string `json:"file_names" validate:"required,min=1"`
}

type CreateCollectionResponse struct {
	Id string `json:"id"`
}

type CollectionResponse struct {
	Id         string                 `json:"id"`
	Name       string                 `json:"name"`
	Files      []UploadedFileResponse `json:"files"`
	IsExpanded bool                   `json:"is_expanded"`
	IsIngested bool                   `json:"is_ingested"`
	IsActive   bool                   `json:"is_active"`
}

type CollectionListResponse struct {
	Collections        []CollectionResponse `json:"collections"`
	ActiveCollectionId string               `json:"active_collection_id,omitempty"`
}

type IngestCollectionResponse struct {
	SessionId string `json:"session_id"`
}

type RenameCollectionRequest struct {
	NewName string `json:"new_name" validate:"required"`
}
