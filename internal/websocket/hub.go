package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"doc-workbench-be/internal/dto"
	"doc-workbench-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Hub struct {
	// Registered clients map: WorkbenchID -> List of Clients (multi-tab)
	clients map[string][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// In-process bus carrying status events from the services
	pubSub *gochannel.GoChannel

	// Topic the status events are published on
	topic string

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(pubSub *gochannel.GoChannel, topic string, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		pubSub:     pubSub,
		topic:      topic,
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	go h.consumeStatusEvents(ctx)

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.WorkbenchID] = append(h.clients[client.WorkbenchID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"workbench_id": client.WorkbenchID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.WorkbenchID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.WorkbenchID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.WorkbenchID]) == 0 {
					delete(h.clients, client.WorkbenchID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"workbench_id": client.WorkbenchID})
				}
			}
			h.mu.Unlock()

		case <-ctx.Done():
			return
		}
	}
}

// consumeStatusEvents drains the status topic and routes each event to the
// clients of the workbench it belongs to. Events for workbenches with no open
// socket are dropped.
func (h *Hub) consumeStatusEvents(ctx context.Context) {
	messages, err := h.pubSub.Subscribe(ctx, h.topic)
	if err != nil {
		h.logger.Error("Hub", "Failed to subscribe to status topic", map[string]interface{}{
			"topic": h.topic,
			"error": err.Error(),
		})
		return
	}

	for msg := range messages {
		var event dto.StatusEvent
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			h.logger.Warn("Hub", "Malformed status event", map[string]interface{}{"error": err.Error()})
			msg.Ack()
			continue
		}
		h.Send(event.WorkbenchId, event)
		msg.Ack()
	}
}

// Send delivers a status event to every client of one workbench.
func (h *Hub) Send(workbenchID string, event dto.StatusEvent) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "status",
		"data": event,
	})

	h.mu.RLock()
	clients, ok := h.clients[workbenchID]
	h.mu.RUnlock()

	if !ok {
		return
	}

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			// Run owns the close; only hand the client over.
			h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{"workbench_id": workbenchID})
			h.unregister <- client
		}
	}
}
