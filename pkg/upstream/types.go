package upstream

// Wire types of the analysis API. Field names follow the upstream JSON.

type UploadResponse struct {
	SessionID string  `json:"session_id"`
	Tables    []Table `json:"tables"`
}

type Table struct {
	CsvFilename string `json:"csv_filename"`
	DisplayName string `json:"display_name"`
}

type SessionFile struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	DateCreated string `json:"date_created"`
	Size        int64  `json:"size"`
}

type SessionFilesResponse struct {
	Files []SessionFile `json:"files"`
}

type IngestFile struct {
	Name string
	Data []byte
}

type IngestRequest struct {
	Files          []IngestFile
	EmbeddingModel string
	CollectionID   string
	CollectionName string
}

type IngestResponse struct {
	SessionID string `json:"session_id"`
}

type CollectionInfo struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Files    []SessionFile `json:"files"`
	IsActive bool          `json:"is_active"`
}

type CollectionsResponse struct {
	SessionID   string           `json:"session_id"`
	Collections []CollectionInfo `json:"collections"`
}

type CreateChatbotRequest struct {
	ModelName  string `json:"model_name"`
	ChatPrompt string `json:"chat_prompt"`
}

type chatQueryRequest struct {
	Query string `json:"query"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

type mcpResponse struct {
	Response string `json:"response"`
}

type RagTemplateRequest struct {
	CsvNames          []string `json:"csv_names"`
	Template          string   `json:"template"`
	Model             string   `json:"model"`
	TopK              int      `json:"top_k"`
	ExtraInstructions string   `json:"extra_instructions,omitempty"`
}

type RagSectionRequest struct {
	CsvNames []string `json:"csv_names"`
	Section  string   `json:"section"`
	Model    string   `json:"model"`
	TopK     int      `json:"top_k"`
}

type TablePreview struct {
	Columns []string         `json:"columns"`
	Preview []map[string]any `json:"preview"`
}

type renameCollectionRequest struct {
	NewName string `json:"new_name"`
}
