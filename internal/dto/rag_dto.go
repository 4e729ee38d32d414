package dto

type GenerateRagRequest struct {
	FileNames         []string `json:"file_names" validate:"required,min=1"`
	Template          string   `json:"template"`
	Model             string   `json:"model"`
	TopK              int      `json:"top_k"`
	ExtraInstructions string   `json:"extra_instructions"`
}

type RegenerateSectionRequest struct {
	Section   string   `json:"section" validate:"required"`
	FileNames []string `json:"file_names" validate:"required,min=1"`
	Model     string   `json:"model"`
	TopK      int      `json:"top_k"`
}

type UpdateSectionRequest struct {
	Section string `json:"section" validate:"required"`
	Text    string `json:"text"`
}

type RagSectionResponse struct {
	Kind    string   `json:"kind"`
	Display string   `json:"display"`
	List    []string `json:"list,omitempty"`
}

type RagDataResponse struct {
	Sections map[string]RagSectionResponse `json:"sections"`
}
