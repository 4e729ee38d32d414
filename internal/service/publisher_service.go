package service

import (
	"context"
	"encoding/json"
	"time"

	"doc-workbench-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IPublisherService interface {
	Publish(ctx context.Context, payload []byte) error
	PublishStatus(ctx context.Context, workbenchId, level, msg string)
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (s *publisherService) Publish(ctx context.Context, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return s.pubSub.Publish(s.topicName, msg)
}

// PublishStatus emits a status banner event for the workbench. Delivery is
// best effort: a full bus drops the banner, never the operation.
func (s *publisherService) PublishStatus(ctx context.Context, workbenchId, level, msg string) {
	event := dto.StatusEvent{
		WorkbenchId: workbenchId,
		Level:       level,
		Message:     msg,
		At:          time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	_ = s.Publish(ctx, payload)
}
