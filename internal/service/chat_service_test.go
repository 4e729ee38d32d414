package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-workbench-be/pkg/chat/router"
)

func TestChatSendRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/get_chat_response/sess-1" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"answer":"the answer"}`))
	}))
	defer srv.Close()

	benches := newBenchRepo(srv)
	svc := NewChatService(benches, &recordingPublisher{})

	bench := benches.GetOrCreate("wb-1")
	bench.Chat.SetSessionID("sess-1")

	res, err := svc.Send(context.Background(), "wb-1", "what is this?")
	require.NoError(t, err)
	assert.Equal(t, "CHAT", res.Mode)
	assert.Equal(t, "the answer", res.Reply)

	history := svc.History(context.Background(), "wb-1")
	require.Len(t, history.Messages, 2)
	assert.Equal(t, "what is this?", history.Messages[0].Text)
	assert.Equal(t, "the answer", history.Messages[1].Text)
}

func TestChatSendBlankInput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream should not be called")
	}))
	defer srv.Close()

	benches := newBenchRepo(srv)
	svc := NewChatService(benches, &recordingPublisher{})

	res, err := svc.Send(context.Background(), "wb-1", "   ")
	require.NoError(t, err)
	assert.Empty(t, res.Mode)
	assert.Empty(t, res.Reply)
}

func TestChatSendWithoutSessionPublishesError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	benches := newBenchRepo(srv)
	pub := &recordingPublisher{}
	svc := NewChatService(benches, pub)

	_, err := svc.Send(context.Background(), "wb-1", "hello")
	assert.ErrorIs(t, err, router.ErrNoSession)
	assert.NotEmpty(t, pub.events)
}
