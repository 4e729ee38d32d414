package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"
)

// StatusError is a non-2xx reply from the analysis API.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Body)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}

// Client talks to the analysis API for one workbench session. Each client
// owns a cookie jar so the upstream's session cookie stays correlated with
// the browser session it serves.
type Client struct {
	baseURL     string
	http        *http.Client
	timeout     time.Duration
	chatTimeout time.Duration
}

// NewClient builds a client with its own cookie jar. timeout bounds upload
// and collection calls; chatTimeout bounds chat, search and generation
// calls, which the upstream holds open for minutes. Both are applied as
// per-request context deadlines; the http.Client itself carries no global
// timeout, so long chat calls and streamed exports are never cut short by
// the shorter bound.
func NewClient(baseURL string, timeout, chatTimeout time.Duration) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: baseURL,
		timeout: timeout,
		http: &http.Client{
			Jar: jar,
		},
		chatTimeout: chatTimeout,
	}
}

// opCtx bounds a short (upload/collection) call.
func (c *Client) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

// UploadFile posts one file as multipart form data with its derived type.
func (c *Client) UploadFile(ctx context.Context, filename, fileType string, data []byte) (*UploadResponse, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := writer.WriteField("file_type", fileType); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload_file", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var out UploadResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("upload %s: %w", filename, err)
	}
	return &out, nil
}

// GetSessionFiles lists the files the upstream session knows about.
func (c *Client) GetSessionFiles(ctx context.Context) ([]SessionFile, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/get_session_files", nil)
	if err != nil {
		return nil, err
	}
	var out SessionFilesResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("get session files: %w", err)
	}
	return out.Files, nil
}

// GetFile fetches raw file bytes with their content type.
func (c *Client) GetFile(ctx context.Context, name string) ([]byte, string, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/get_file/"+url.PathEscape(name), nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("get file %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", c.statusError(resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// Ingest posts the collection's files for indexing and returns the session
// id assigned by the upstream.
func (c *Client) Ingest(ctx context.Context, r IngestRequest) (*IngestResponse, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	for _, f := range r.Files {
		part, err := writer.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, err
		}
	}
	if err := writer.WriteField("embedding_model", r.EmbeddingModel); err != nil {
		return nil, err
	}
	if err := writer.WriteField("collection_id", r.CollectionID); err != nil {
		return nil, err
	}
	if err := writer.WriteField("collection_name", r.CollectionName); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/ingest", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var out IngestResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("ingest collection %s: %w", r.CollectionID, err)
	}
	return &out, nil
}

// LoadCollection activates an ingested collection on the upstream.
func (c *Client) LoadCollection(ctx context.Context, id string) error {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()
	if err := c.postJSON(ctx, "/api/collections/"+url.PathEscape(id)+"/load", struct{}{}, nil); err != nil {
		return fmt.Errorf("load collection %s: %w", id, err)
	}
	return nil
}

// CreateChatbot binds a chatbot to the session.
func (c *Client) CreateChatbot(ctx context.Context, sessionID string, r CreateChatbotRequest) error {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()
	if err := c.postJSON(ctx, "/api/create_chatbot/"+url.PathEscape(sessionID), r, nil); err != nil {
		return fmt.Errorf("create chatbot: %w", err)
	}
	return nil
}

// ExportCollection streams the collection archive. The caller closes the
// reader. No deadline is applied beyond the caller's context so the stream
// is not cut mid-read.
func (c *Client) ExportCollection(ctx context.Context, id string) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/collections/"+url.PathEscape(id)+"/export", nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("export collection %s: %w", id, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, "", c.statusError(resp)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/zip"
	}
	return resp.Body, contentType, nil
}

// RenameCollection renames an ingested collection on the upstream.
func (c *Client) RenameCollection(ctx context.Context, id, newName string) error {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()
	body, err := json.Marshal(renameCollectionRequest{NewName: newName})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/api/collections/"+url.PathEscape(id), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("rename collection %s: %w", id, err)
	}
	return nil
}

// DeleteCollection removes the collection upstream.
func (c *Client) DeleteCollection(ctx context.Context, id string) error {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/collections/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("delete collection %s: %w", id, err)
	}
	return nil
}

// ListCollections fetches the upstream's collection list and session id.
func (c *Client) ListCollections(ctx context.Context) (*CollectionsResponse, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/collections", nil)
	if err != nil {
		return nil, err
	}
	var out CollectionsResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return &out, nil
}

// ChatResponse sends a conversational query scoped by the session id.
func (c *Client) ChatResponse(ctx context.Context, sessionID, query string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.chatTimeout)
	defer cancel()
	var out chatResponse
	if err := c.postJSON(ctx, "/api/get_chat_response/"+url.PathEscape(sessionID), chatQueryRequest{Query: query}, &out); err != nil {
		return "", fmt.Errorf("chat response: %w", err)
	}
	return out.Answer, nil
}

// MCPQuery sends a stateless external search query. No session id.
func (c *Client) MCPQuery(ctx context.Context, query string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.chatTimeout)
	defer cancel()
	var out mcpResponse
	if err := c.postJSON(ctx, "/api/mcp_query", chatQueryRequest{Query: query}, &out); err != nil {
		return "", fmt.Errorf("mcp query: %w", err)
	}
	return out.Response, nil
}

// GenerateRagWithTemplate generates every section of a template over the
// given tables. The payload shape is heterogeneous per section.
func (c *Client) GenerateRagWithTemplate(ctx context.Context, r RagTemplateRequest) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.chatTimeout)
	defer cancel()
	var out map[string]any
	if err := c.postJSON(ctx, "/api/generate_rag_with_template", r, &out); err != nil {
		return nil, fmt.Errorf("generate rag template %s: %w", r.Template, err)
	}
	return out, nil
}

// GenerateRagSection regenerates a single section.
func (c *Client) GenerateRagSection(ctx context.Context, r RagSectionRequest) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.chatTimeout)
	defer cancel()
	var out map[string]any
	if err := c.postJSON(ctx, "/api/generate_rag_section", r, &out); err != nil {
		return nil, fmt.Errorf("generate rag section %s: %w", r.Section, err)
	}
	return out, nil
}

// PreviewTable fetches column names and preview rows for an extracted table.
func (c *Client) PreviewTable(ctx context.Context, csvFilename string) (*TablePreview, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()
	params := url.Values{}
	params.Add("csv_filename", csvFilename)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/preview_table?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var out TablePreview
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("preview table %s: %w", csvFilename, err)
	}
	return &out, nil
}

// --- Internal helpers ---

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) statusError(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &StatusError{Status: resp.StatusCode, Body: string(snippet)}
}
