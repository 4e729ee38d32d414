package service

import (
	"context"
	"fmt"

	"doc-workbench-be/internal/config"
	"doc-workbench-be/internal/dto"
	"doc-workbench-be/internal/pkg/logger"
	"doc-workbench-be/internal/repository/memory"
	"doc-workbench-be/pkg/store"
	"doc-workbench-be/pkg/upstream"
)

type IRagService interface {
	Generate(ctx context.Context, benchId string, req *dto.GenerateRagRequest) (*dto.RagDataResponse, error)
	RegenerateSection(ctx context.Context, benchId string, req *dto.RegenerateSectionRequest) (*dto.RagDataResponse, error)
	UpdateSection(ctx context.Context, benchId string, req *dto.UpdateSectionRequest) *dto.RagDataResponse
	Sections(ctx context.Context, benchId string) *dto.RagDataResponse
}

type ragService struct {
	benches          *memory.WorkbenchRepository
	publisherService IPublisherService
	aiCfg            config.AIConfig
	logger           logger.ILogger
}

func NewRagService(
	benches *memory.WorkbenchRepository,
	publisherService IPublisherService,
	aiCfg config.AIConfig,
	logger logger.ILogger,
) IRagService {
	return &ragService{
		benches:          benches,
		publisherService: publisherService,
		aiCfg:            aiCfg,
		logger:           logger,
	}
}

// Generate produces the full section set from the selected files and
// replaces whatever the workbench held before.
func (s *ragService) Generate(ctx context.Context, benchId string, req *dto.GenerateRagRequest) (*dto.RagDataResponse, error) {
	bench := s.benches.GetOrCreate(benchId)

	if err := bench.Files.BeginOperation("generate_rag"); err != nil {
		return nil, err
	}
	defer bench.Files.EndOperation()

	s.publisherService.PublishStatus(ctx, benchId, dto.StatusInfo, "Generating document sections...")

	raw, err := bench.Upstream.GenerateRagWithTemplate(ctx, upstream.RagTemplateRequest{
		CsvNames:          req.FileNames,
		Template:          s.templateOr(req.Template),
		Model:             s.modelOr(req.Model),
		TopK:              s.topKOr(req.TopK),
		ExtraInstructions: req.ExtraInstructions,
	})
	if err != nil {
		s.logger.Error("Rag", "Generation failed", map[string]interface{}{
			"error": err.Error(),
		})
		s.publisherService.PublishStatus(ctx, benchId, dto.StatusError,
			fmt.Sprintf("Error generating sections: %v", err))
		return nil, err
	}

	bench.Files.Rag.SetAll(raw)
	s.publisherService.PublishStatus(ctx, benchId, dto.StatusSuccess, "Document sections generated.")
	return toRagResponse(bench.Files.Rag), nil
}

// RegenerateSection re-runs generation for a single section and merges the
// result in, leaving the other sections untouched.
func (s *ragService) RegenerateSection(ctx context.Context, benchId string, req *dto.RegenerateSectionRequest) (*dto.RagDataResponse, error) {
	bench := s.benches.GetOrCreate(benchId)

	raw, err := bench.Upstream.GenerateRagSection(ctx, upstream.RagSectionRequest{
		CsvNames: req.FileNames,
		Section:  req.Section,
		Model:    s.modelOr(req.Model),
		TopK:     s.topKOr(req.TopK),
	})
	if err != nil {
		s.publisherService.PublishStatus(ctx, benchId, dto.StatusError,
			fmt.Sprintf("Error regenerating %q: %v", req.Section, err))
		return nil, err
	}

	// The section endpoint answers with a one-entry payload; merge each key
	// through the same normalization as a full generate.
	merged := bench.Files.Rag.Sections()
	for k := range merged {
		if _, ok := raw[k]; !ok {
			raw[k] = sectionRaw(merged[k])
		}
	}
	bench.Files.Rag.SetAll(raw)

	return toRagResponse(bench.Files.Rag), nil
}

// UpdateSection applies a manual edit locally. No upstream call.
func (s *ragService) UpdateSection(ctx context.Context, benchId string, req *dto.UpdateSectionRequest) *dto.RagDataResponse {
	bench := s.benches.GetOrCreate(benchId)
	bench.Files.Rag.UpdateSection(req.Section, req.Text)
	return toRagResponse(bench.Files.Rag)
}

func (s *ragService) Sections(ctx context.Context, benchId string) *dto.RagDataResponse {
	bench := s.benches.GetOrCreate(benchId)
	return toRagResponse(bench.Files.Rag)
}

func (s *ragService) templateOr(v string) string {
	if v != "" {
		return v
	}
	return s.aiCfg.RagTemplate
}

func (s *ragService) modelOr(v string) string {
	if v != "" {
		return v
	}
	return s.aiCfg.ChatModel
}

func (s *ragService) topKOr(v int) int {
	if v > 0 {
		return v
	}
	return s.aiCfg.TopK
}

func sectionRaw(v store.SectionValue) any {
	if v.Kind == store.SectionList {
		return v.List
	}
	return v.Text
}

func toRagResponse(rag *store.RagData) *dto.RagDataResponse {
	sections := rag.Sections()
	resp := &dto.RagDataResponse{Sections: make(map[string]dto.RagSectionResponse, len(sections))}
	for name, v := range sections {
		resp.Sections[name] = dto.RagSectionResponse{
			Kind:    v.Kind,
			Display: v.Display(),
			List:    v.List,
		}
	}
	return resp
}
