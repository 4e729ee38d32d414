package service

import (
	"context"
	"fmt"
	"io"

	"doc-workbench-be/internal/config"
	"doc-workbench-be/internal/dto"
	"doc-workbench-be/internal/pkg/logger"
	"doc-workbench-be/internal/repository/memory"
	"doc-workbench-be/pkg/store"
	"doc-workbench-be/pkg/upstream"
)

type ICollectionService interface {
	Create(ctx context.Context, benchId string, req *dto.CreateCollectionRequest) (*dto.CreateCollectionResponse, error)
	List(ctx context.Context, benchId string) *dto.CollectionListResponse
	Refresh(ctx context.Context, benchId string) (*dto.CollectionListResponse, error)
	Ingest(ctx context.Context, benchId, collectionId string) (*dto.IngestCollectionResponse, error)
	Load(ctx context.Context, benchId, collectionId string) error
	Export(ctx context.Context, benchId, collectionId string) (io.ReadCloser, string, string, error)
	Rename(ctx context.Context, benchId, collectionId, newName string) error
	Delete(ctx context.Context, benchId, collectionId string) error
	ToggleExpanded(ctx context.Context, benchId, collectionId string)
}

type collectionService struct {
	benches          *memory.WorkbenchRepository
	publisherService IPublisherService
	aiCfg            config.AIConfig
	logger           logger.ILogger
}

func NewCollectionService(
	benches *memory.WorkbenchRepository,
	publisherService IPublisherService,
	aiCfg config.AIConfig,
	logger logger.ILogger,
) ICollectionService {
	return &collectionService{
		benches:          benches,
		publisherService: publisherService,
		aiCfg:            aiCfg,
		logger:           logger,
	}
}

// Create builds a new local collection from files already known to the
// workspace. Unknown names are a precondition failure; collection members
// must be a subset of session files.
func (s *collectionService) Create(ctx context.Context, benchId string, req *dto.CreateCollectionRequest) (*dto.CreateCollectionResponse, error) {
	bench := s.benches.GetOrCreate(benchId)

	files := make([]store.UploadedFile, 0, len(req.FileNames))
	for _, name := range req.FileNames {
		f, ok := bench.Files.File(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", store.ErrFileNotFound, name)
		}
		files = append(files, f)
	}

	id := bench.Files.AddCollection(files, req.Name)
	return &dto.CreateCollectionResponse{Id: id}, nil
}

func (s *collectionService) List(ctx context.Context, benchId string) *dto.CollectionListResponse {
	bench := s.benches.GetOrCreate(benchId)
	return toCollectionList(bench)
}

// Refresh replaces the local collection list with the upstream's view and
// adopts its active collection and session id.
func (s *collectionService) Refresh(ctx context.Context, benchId string) (*dto.CollectionListResponse, error) {
	bench := s.benches.GetOrCreate(benchId)

	resp, err := bench.Upstream.ListCollections(ctx)
	if err != nil {
		return nil, err
	}

	collections := make([]store.Collection, 0, len(resp.Collections))
	activeId := ""
	for _, c := range resp.Collections {
		files := make([]store.UploadedFile, 0, len(c.Files))
		for _, f := range c.Files {
			files = append(files, store.UploadedFile{
				Name:        f.Name,
				Type:        f.Type,
				DateCreated: f.DateCreated,
				Size:        f.Size,
			})
		}
		collections = append(collections, store.Collection{
			ID:    c.ID,
			Name:  c.Name,
			Files: files,
		})
		if c.IsActive {
			activeId = c.ID
		}
	}

	bench.Files.SetCollections(collections)
	bench.Files.SetActiveCollection(activeId)
	if resp.SessionID != "" {
		bench.Files.SetSessionID(resp.SessionID)
		bench.Chat.SetSessionID(resp.SessionID)
	}

	return toCollectionList(bench), nil
}

// Ingest sends the collection's files for indexing. Requires at least one
// member with locally retrievable bytes; members without bytes are a
// terminal error for this attempt, reported and not retried.
func (s *collectionService) Ingest(ctx context.Context, benchId, collectionId string) (*dto.IngestCollectionResponse, error) {
	bench := s.benches.GetOrCreate(benchId)

	collection, ok := bench.Files.Collection(collectionId)
	if !ok {
		return nil, store.ErrCollectionNotFound
	}
	if len(collection.Files) == 0 {
		return nil, fmt.Errorf("collection %q has no files to ingest", collection.Name)
	}

	ingestFiles := make([]upstream.IngestFile, 0, len(collection.Files))
	for _, f := range collection.Files {
		if f.HasData() {
			ingestFiles = append(ingestFiles, upstream.IngestFile{Name: f.Name, Data: f.Data})
		}
	}
	if len(ingestFiles) == 0 {
		return nil, fmt.Errorf("no actual file data found in collection for ingestion")
	}

	if err := bench.Files.BeginOperation("ingest"); err != nil {
		return nil, err
	}
	defer bench.Files.EndOperation()

	s.publisherService.PublishStatus(ctx, benchId, dto.StatusInfo,
		fmt.Sprintf("Creating vectorstore for %q...", collection.Name))

	resp, err := bench.Upstream.Ingest(ctx, upstream.IngestRequest{
		Files:          ingestFiles,
		EmbeddingModel: s.aiCfg.EmbeddingModel,
		CollectionID:   collection.ID,
		CollectionName: collection.Name,
	})
	if err != nil {
		s.logger.Error("Collection", "Ingest failed", map[string]interface{}{
			"collection_id": collectionId,
			"error":         err.Error(),
		})
		s.publisherService.PublishStatus(ctx, benchId, dto.StatusError,
			fmt.Sprintf("Error during file ingestion: %v", err))
		return nil, err
	}

	bench.Files.SetSessionID(resp.SessionID)
	bench.Chat.SetSessionID(resp.SessionID)
	bench.Files.MarkCollectionIngested(collectionId)
	bench.Files.SetActiveCollection(collectionId)

	s.logger.Info("Collection", "Ingestion successful", map[string]interface{}{
		"collection_id": collectionId,
		"session_id":    resp.SessionID,
	})
	s.publisherService.PublishStatus(ctx, benchId, dto.StatusSuccess,
		fmt.Sprintf("%q ingested successfully! This collection is now active.", collection.Name))

	return &dto.IngestCollectionResponse{SessionId: resp.SessionID}, nil
}

// Load activates an ingested collection: upstream load, then chatbot
// creation for the current session, strictly in that order. A failure
// surfaces and aborts the rest of the sequence; retrying re-runs the whole
// sequence.
func (s *collectionService) Load(ctx context.Context, benchId, collectionId string) error {
	bench := s.benches.GetOrCreate(benchId)

	collection, ok := bench.Files.Collection(collectionId)
	if !ok {
		return store.ErrCollectionNotFound
	}
	if !collection.IsIngested {
		return fmt.Errorf("collection %q must be ingested first", collection.Name)
	}

	if err := bench.Files.BeginOperation("load"); err != nil {
		return err
	}
	defer bench.Files.EndOperation()

	s.publisherService.PublishStatus(ctx, benchId, dto.StatusInfo,
		fmt.Sprintf("Loading %q...", collection.Name))

	if err := bench.Upstream.LoadCollection(ctx, collectionId); err != nil {
		s.publisherService.PublishStatus(ctx, benchId, dto.StatusError,
			fmt.Sprintf("Error loading collection: %v", err))
		return err
	}

	bench.Files.SetActiveCollection(collectionId)

	s.publisherService.PublishStatus(ctx, benchId, dto.StatusInfo,
		fmt.Sprintf("Creating chatbot for %q...", collection.Name))

	err := bench.Upstream.CreateChatbot(ctx, bench.Files.SessionID(), upstream.CreateChatbotRequest{
		ModelName:  s.aiCfg.ChatModel,
		ChatPrompt: s.aiCfg.ChatPrompt,
	})
	if err != nil {
		s.publisherService.PublishStatus(ctx, benchId, dto.StatusError,
			fmt.Sprintf("Error loading collection: %v", err))
		return err
	}

	s.publisherService.PublishStatus(ctx, benchId, dto.StatusSuccess,
		fmt.Sprintf("%q loaded! Chatbot ready for questions.", collection.Name))
	return nil
}

// Export streams the collection archive. Returns the reader, content type
// and suggested download filename.
func (s *collectionService) Export(ctx context.Context, benchId, collectionId string) (io.ReadCloser, string, string, error) {
	bench := s.benches.GetOrCreate(benchId)

	collection, ok := bench.Files.Collection(collectionId)
	if !ok {
		return nil, "", "", store.ErrCollectionNotFound
	}
	if !collection.IsIngested {
		return nil, "", "", fmt.Errorf("collection %q must be ingested before it can be exported", collection.Name)
	}

	if err := bench.Files.BeginOperation("export"); err != nil {
		return nil, "", "", err
	}
	defer bench.Files.EndOperation()

	body, contentType, err := bench.Upstream.ExportCollection(ctx, collectionId)
	if err != nil {
		s.publisherService.PublishStatus(ctx, benchId, dto.StatusError,
			fmt.Sprintf("Error exporting collection: %v", err))
		return nil, "", "", err
	}

	filename := fmt.Sprintf("%s_%s.zip", collection.Name, collection.ID)
	return body, contentType, filename, nil
}

// Rename commits locally only after the upstream accepts it for ingested
// collections; non-ingested collections rename locally and sync after
// ingestion.
func (s *collectionService) Rename(ctx context.Context, benchId, collectionId, newName string) error {
	bench := s.benches.GetOrCreate(benchId)

	collection, ok := bench.Files.Collection(collectionId)
	if !ok {
		return store.ErrCollectionNotFound
	}

	if collection.IsIngested {
		if err := bench.Upstream.RenameCollection(ctx, collectionId, newName); err != nil {
			// Local name stays what it was
			s.publisherService.PublishStatus(ctx, benchId, dto.StatusError,
				fmt.Sprintf("Error renaming collection: %v", err))
			return err
		}
		bench.Files.RenameCollection(collectionId, newName)
		s.publisherService.PublishStatus(ctx, benchId, dto.StatusSuccess,
			fmt.Sprintf("Collection renamed to %q successfully.", newName))
		return nil
	}

	bench.Files.RenameCollection(collectionId, newName)
	s.publisherService.PublishStatus(ctx, benchId, dto.StatusSuccess,
		fmt.Sprintf("Collection renamed to %q (will sync after ingestion).", newName))
	return nil
}

// Delete removes a non-default collection upstream then locally. Deleting
// the active collection leaves no active collection; it does not fall back
// to the default one.
func (s *collectionService) Delete(ctx context.Context, benchId, collectionId string) error {
	if collectionId == store.DefaultCollectionID {
		return store.ErrDefaultCollection
	}

	bench := s.benches.GetOrCreate(benchId)

	collection, ok := bench.Files.Collection(collectionId)
	if !ok {
		return store.ErrCollectionNotFound
	}

	if err := bench.Files.BeginOperation("delete"); err != nil {
		return err
	}
	defer bench.Files.EndOperation()

	if collection.IsIngested {
		if err := bench.Upstream.DeleteCollection(ctx, collectionId); err != nil {
			s.publisherService.PublishStatus(ctx, benchId, dto.StatusError,
				fmt.Sprintf("Error deleting collection: %v", err))
			return err
		}
	}

	if err := bench.Files.RemoveCollection(collectionId); err != nil {
		return err
	}

	s.publisherService.PublishStatus(ctx, benchId, dto.StatusSuccess,
		fmt.Sprintf("%q deleted successfully.", collection.Name))
	return nil
}

func (s *collectionService) ToggleExpanded(ctx context.Context, benchId, collectionId string) {
	bench := s.benches.GetOrCreate(benchId)
	bench.Files.ToggleCollectionExpanded(collectionId)
}

func toCollectionList(bench *memory.Workbench) *dto.CollectionListResponse {
	activeId := bench.Files.ActiveCollectionID()
	resp := &dto.CollectionListResponse{
		Collections:        []dto.CollectionResponse{},
		ActiveCollectionId: activeId,
	}
	for _, c := range bench.Files.Collections() {
		files := make([]dto.UploadedFileResponse, 0, len(c.Files))
		for _, f := range c.Files {
			files = append(files, toFileResponse(f))
		}
		resp.Collections = append(resp.Collections, dto.CollectionResponse{
			Id:         c.ID,
			Name:       c.Name,
			Files:      files,
			IsExpanded: c.IsExpanded,
			IsIngested: c.IsIngested,
			IsActive:   c.ID == activeId && activeId != "",
		})
	}
	return resp
}
