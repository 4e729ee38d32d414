package websocket

import (
	"context"
	"testing"
	"time"

	"doc-workbench-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type quietLogger struct{}

func (quietLogger) Debug(module, message string, details map[string]interface{}) {}
func (quietLogger) Info(module, message string, details map[string]interface{})  {}
func (quietLogger) Warn(module, message string, details map[string]interface{})  {}
func (quietLogger) Error(module, message string, details map[string]interface{}) {}
func (quietLogger) Sync() error                                                  { return nil }

func newTestHub() *Hub {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	return NewHub(pubSub, "status", quietLogger{})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestStalledClientIsDroppedOnce(t *testing.T) {
	hub := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	// No reader and no buffer, so every delivery hits the full-buffer path.
	client := &Client{Hub: hub, WorkbenchID: "wb-1", Send: make(chan []byte)}
	hub.register <- client
	waitFor(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.clients["wb-1"]) == 1
	})

	event := dto.StatusEvent{WorkbenchId: "wb-1", Level: "info", Message: "working"}
	hub.Send("wb-1", event)

	waitFor(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		_, ok := hub.clients["wb-1"]
		return !ok
	})

	// A second event for the dropped client must be a silent no-op.
	hub.Send("wb-1", event)

	if _, open := <-client.Send; open {
		t.Error("send channel still open after drop")
	}
}
