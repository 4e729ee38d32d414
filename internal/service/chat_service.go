package service

import (
	"context"
	"log"
	"os"

	"doc-workbench-be/internal/dto"
	"doc-workbench-be/internal/repository/memory"
	"doc-workbench-be/pkg/chat/router"
)

type IChatService interface {
	Send(ctx context.Context, benchId, text string) (*dto.SendMessageResponse, error)
	History(ctx context.Context, benchId string) *dto.ChatHistoryResponse
	SetSearchMode(ctx context.Context, benchId string, enabled bool)
	Clear(ctx context.Context, benchId string)
}

type chatService struct {
	benches          *memory.WorkbenchRepository
	publisherService IPublisherService
	router           *router.Router
}

func NewChatService(benches *memory.WorkbenchRepository, publisherService IPublisherService) IChatService {
	return &chatService{
		benches:          benches,
		publisherService: publisherService,
		router:           router.NewRouter(log.New(os.Stdout, "", log.LstdFlags)),
	}
}

func (s *chatService) Send(ctx context.Context, benchId, text string) (*dto.SendMessageResponse, error) {
	bench := s.benches.GetOrCreate(benchId)

	result, err := s.router.Send(ctx, bench.Upstream, bench.Chat, text)
	if err != nil {
		s.publisherService.PublishStatus(ctx, benchId, dto.StatusError,
			"Sorry, something went wrong while answering. Please try again.")
		return nil, err
	}
	if result == nil {
		// Blank input, rejected silently
		return &dto.SendMessageResponse{}, nil
	}
	return &dto.SendMessageResponse{
		Mode:  string(result.Mode),
		Reply: result.Reply,
	}, nil
}

func (s *chatService) History(ctx context.Context, benchId string) *dto.ChatHistoryResponse {
	bench := s.benches.GetOrCreate(benchId)

	messages := bench.Chat.Messages()
	resp := &dto.ChatHistoryResponse{
		SessionId:    bench.Chat.SessionID(),
		IsSearchMode: bench.Chat.SearchMode(),
		Messages:     make([]dto.ChatMessageResponse, 0, len(messages)),
	}
	for _, m := range messages {
		resp.Messages = append(resp.Messages, dto.ChatMessageResponse{
			Id:     m.ID,
			Sender: m.Sender,
			Text:   m.Text,
			Status: m.Status,
			At:     m.At,
		})
	}
	return resp
}

func (s *chatService) SetSearchMode(ctx context.Context, benchId string, enabled bool) {
	bench := s.benches.GetOrCreate(benchId)
	bench.Chat.SetSearchMode(enabled)
}

func (s *chatService) Clear(ctx context.Context, benchId string) {
	bench := s.benches.GetOrCreate(benchId)
	bench.Chat.Clear()
}
