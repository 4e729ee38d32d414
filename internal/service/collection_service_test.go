package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-workbench-be/internal/config"
	"doc-workbench-be/internal/dto"
	"doc-workbench-be/internal/repository/memory"
	"doc-workbench-be/pkg/store"
	"doc-workbench-be/pkg/upstream"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(ctx context.Context, payload []byte) error { return nil }

func (p *recordingPublisher) PublishStatus(ctx context.Context, workbenchId, level, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, level+": "+msg)
}

func testAICfg() config.AIConfig {
	return config.AIConfig{
		EmbeddingModel: "test-embedder",
		ChatModel:      "test-llm",
		ChatPrompt:     "answer from docs",
		TopK:           5,
	}
}

func newBenchRepo(srv *httptest.Server) *memory.WorkbenchRepository {
	return memory.NewWorkbenchRepository(func() *upstream.Client {
		return upstream.NewClient(srv.URL, 5*time.Second, 5*time.Second)
	})
}

func TestCollectionCreateRequiresKnownFiles(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	benches := newBenchRepo(srv)
	svc := NewCollectionService(benches, &recordingPublisher{}, testAICfg(), nopLogger{})

	bench := benches.GetOrCreate("wb-1")
	bench.Files.MergeFiles([]store.UploadedFile{{Name: "known.pdf", Data: []byte("x")}})

	_, err := svc.Create(context.Background(), "wb-1", &dto.CreateCollectionRequest{
		Name:      "c",
		FileNames: []string{"known.pdf", "ghost.pdf"},
	})
	assert.ErrorIs(t, err, store.ErrFileNotFound)

	res, err := svc.Create(context.Background(), "wb-1", &dto.CreateCollectionRequest{
		Name:      "c",
		FileNames: []string{"known.pdf"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Id)
}

func TestCollectionIngestFlow(t *testing.T) {
	var ingestCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/ingest":
			ingestCalls++
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"session_id":"sess-42"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	benches := newBenchRepo(srv)
	pub := &recordingPublisher{}
	svc := NewCollectionService(benches, pub, testAICfg(), nopLogger{})

	bench := benches.GetOrCreate("wb-1")
	bench.Files.MergeFiles([]store.UploadedFile{{Name: "a.pdf", Data: []byte("bytes")}})
	created, err := svc.Create(context.Background(), "wb-1", &dto.CreateCollectionRequest{
		Name:      "Papers",
		FileNames: []string{"a.pdf"},
	})
	require.NoError(t, err)

	res, err := svc.Ingest(context.Background(), "wb-1", created.Id)
	require.NoError(t, err)
	assert.Equal(t, 1, ingestCalls)
	assert.Equal(t, "sess-42", res.SessionId)

	// Session id propagates to both stores and the collection becomes active
	assert.Equal(t, "sess-42", bench.Files.SessionID())
	assert.Equal(t, "sess-42", bench.Chat.SessionID())
	assert.Equal(t, created.Id, bench.Files.ActiveCollectionID())

	c, ok := bench.Files.Collection(created.Id)
	require.True(t, ok)
	assert.True(t, c.IsIngested)

	require.NotEmpty(t, pub.events)
	assert.Contains(t, pub.events[len(pub.events)-1], "success")
}

func TestCollectionIngestWithoutFileData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream should not be called")
	}))
	defer srv.Close()

	benches := newBenchRepo(srv)
	svc := NewCollectionService(benches, &recordingPublisher{}, testAICfg(), nopLogger{})

	bench := benches.GetOrCreate("wb-1")
	// File known from the upstream listing only, no local bytes
	bench.Files.MergeFiles([]store.UploadedFile{{Name: "remote.pdf"}})
	created, err := svc.Create(context.Background(), "wb-1", &dto.CreateCollectionRequest{
		Name:      "c",
		FileNames: []string{"remote.pdf"},
	})
	require.NoError(t, err)

	_, err = svc.Ingest(context.Background(), "wb-1", created.Id)
	assert.Error(t, err)
	assert.False(t, bench.Files.IsLoading(), "busy flag must clear after failure")
}

func TestCollectionLoadSequence(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		switch r.URL.Path {
		case "/api/ingest":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"session_id":"sess-1"}`))
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	benches := newBenchRepo(srv)
	svc := NewCollectionService(benches, &recordingPublisher{}, testAICfg(), nopLogger{})

	bench := benches.GetOrCreate("wb-1")
	bench.Files.MergeFiles([]store.UploadedFile{{Name: "a.pdf", Data: []byte("x")}})
	created, err := svc.Create(context.Background(), "wb-1", &dto.CreateCollectionRequest{
		Name: "c", FileNames: []string{"a.pdf"},
	})
	require.NoError(t, err)

	_, err = svc.Ingest(context.Background(), "wb-1", created.Id)
	require.NoError(t, err)

	require.NoError(t, svc.Load(context.Background(), "wb-1", created.Id))

	// Load must hit the collection load endpoint before chatbot creation
	require.Len(t, calls, 3)
	assert.Equal(t, "/api/collections/"+created.Id+"/load", calls[1])
	assert.Equal(t, "/api/create_chatbot/sess-1", calls[2])
}

func TestCollectionLoadRequiresIngested(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	benches := newBenchRepo(srv)
	svc := NewCollectionService(benches, &recordingPublisher{}, testAICfg(), nopLogger{})

	bench := benches.GetOrCreate("wb-1")
	bench.Files.MergeFiles([]store.UploadedFile{{Name: "a.pdf", Data: []byte("x")}})
	created, err := svc.Create(context.Background(), "wb-1", &dto.CreateCollectionRequest{
		Name: "c", FileNames: []string{"a.pdf"},
	})
	require.NoError(t, err)

	err = svc.Load(context.Background(), "wb-1", created.Id)
	assert.ErrorContains(t, err, "ingested")
}

func TestCollectionRenameFailureKeepsLocalName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/ingest":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"session_id":"s"}`))
		case r.Method == http.MethodPut:
			http.Error(w, "rename rejected", http.StatusConflict)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	benches := newBenchRepo(srv)
	svc := NewCollectionService(benches, &recordingPublisher{}, testAICfg(), nopLogger{})

	bench := benches.GetOrCreate("wb-1")
	bench.Files.MergeFiles([]store.UploadedFile{{Name: "a.pdf", Data: []byte("x")}})
	created, err := svc.Create(context.Background(), "wb-1", &dto.CreateCollectionRequest{
		Name: "Original", FileNames: []string{"a.pdf"},
	})
	require.NoError(t, err)
	_, err = svc.Ingest(context.Background(), "wb-1", created.Id)
	require.NoError(t, err)

	err = svc.Rename(context.Background(), "wb-1", created.Id, "Renamed")
	require.Error(t, err)
	assert.True(t, upstream.IsStatus(err, http.StatusConflict))

	c, ok := bench.Files.Collection(created.Id)
	require.True(t, ok)
	assert.Equal(t, "Original", c.Name, "local name must stay when the upstream rejects the rename")
}

func TestCollectionRenameLocalOnlyBeforeIngest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected upstream call %s %s", r.Method, r.URL.Path)
	}))
	defer srv.Close()

	benches := newBenchRepo(srv)
	svc := NewCollectionService(benches, &recordingPublisher{}, testAICfg(), nopLogger{})

	bench := benches.GetOrCreate("wb-1")
	bench.Files.MergeFiles([]store.UploadedFile{{Name: "a.pdf", Data: []byte("x")}})
	created, err := svc.Create(context.Background(), "wb-1", &dto.CreateCollectionRequest{
		Name: "Original", FileNames: []string{"a.pdf"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Rename(context.Background(), "wb-1", created.Id, "Renamed"))
	c, _ := bench.Files.Collection(created.Id)
	assert.Equal(t, "Renamed", c.Name)
}

func TestCollectionDelete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/ingest":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"session_id":"s"}`))
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	benches := newBenchRepo(srv)
	svc := NewCollectionService(benches, &recordingPublisher{}, testAICfg(), nopLogger{})

	t.Run("default collection is protected", func(t *testing.T) {
		err := svc.Delete(context.Background(), "wb-1", store.DefaultCollectionID)
		assert.ErrorIs(t, err, store.ErrDefaultCollection)
	})

	t.Run("deleting the active collection leaves none active", func(t *testing.T) {
		bench := benches.GetOrCreate("wb-1")
		bench.Files.MergeFiles([]store.UploadedFile{{Name: "a.pdf", Data: []byte("x")}})
		created, err := svc.Create(context.Background(), "wb-1", &dto.CreateCollectionRequest{
			Name: "c", FileNames: []string{"a.pdf"},
		})
		require.NoError(t, err)
		_, err = svc.Ingest(context.Background(), "wb-1", created.Id)
		require.NoError(t, err)
		require.Equal(t, created.Id, bench.Files.ActiveCollectionID())

		require.NoError(t, svc.Delete(context.Background(), "wb-1", created.Id))
		assert.Empty(t, bench.Files.ActiveCollectionID())
		_, ok := bench.Files.Collection(created.Id)
		assert.False(t, ok)
	})
}

func TestCollectionRefreshAdoptsUpstreamView(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/collections" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"session_id": "sess-remote",
			"collections": [
				{"id": "default", "name": "Default", "files": [], "is_active": false},
				{"id": "remote-1", "name": "Remote", "files": [{"name": "r.pdf", "type": "pdf", "size": 10}], "is_active": true}
			]
		}`))
	}))
	defer srv.Close()

	benches := newBenchRepo(srv)
	svc := NewCollectionService(benches, &recordingPublisher{}, testAICfg(), nopLogger{})

	res, err := svc.Refresh(context.Background(), "wb-1")
	require.NoError(t, err)

	assert.Equal(t, "remote-1", res.ActiveCollectionId)
	require.Len(t, res.Collections, 2)
	assert.True(t, res.Collections[1].IsActive)
	assert.True(t, res.Collections[1].IsIngested)

	bench := benches.GetOrCreate("wb-1")
	assert.Equal(t, "sess-remote", bench.Files.SessionID())
	assert.Equal(t, "sess-remote", bench.Chat.SessionID())
}
