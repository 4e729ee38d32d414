package router

import (
	"context"
	"errors"
	"log"
	"strings"

	"doc-workbench-be/pkg/store"
)

// ErrNoSession means a conversational message was submitted before the
// workbench had a chat session. The transcript is left untouched.
var ErrNoSession = errors.New("no chat session established")

// Mode is the destination a message was routed to.
type Mode string

const (
	ModeChat   Mode = "CHAT"   // conversational, session-scoped
	ModeSearch Mode = "SEARCH" // external search, stateless
)

// Upstream is the slice of the analysis API the router needs.
type Upstream interface {
	ChatResponse(ctx context.Context, sessionID, query string) (string, error)
	MCPQuery(ctx context.Context, query string) (string, error)
}

// Result is one settled exchange.
type Result struct {
	Mode  Mode
	Reply string
}

// Router dispatches raw user input to the conversational or the search flow
// based on the chat store's search-mode flag, and reconciles the exchange
// into the transcript: the user entry is appended pending before the call,
// then resolved with a bot reply or marked failed. Concurrent sends are not
// serialized; ordering is causal per exchange only.
//
// The upstream is an argument of Send rather than a field because every
// workbench owns its own client; one router instance serves them all.
type Router struct {
	logger *log.Logger
}

func NewRouter(logger *log.Logger) *Router {
	return &Router{logger: logger}
}

// Send routes one message. Empty or whitespace-only input is rejected
// silently: no transcript entry, no network call, nil result.
//
// Search mode is one-shot: it resets to off after the search query is
// submitted, matching the reference UI convention.
func (r *Router) Send(ctx context.Context, upstream Upstream, chat *store.ChatStore, text string) (*Result, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}

	if chat.SearchMode() {
		chat.SetSearchMode(false)
		return r.sendSearch(ctx, upstream, chat, trimmed)
	}
	return r.sendChat(ctx, upstream, chat, trimmed)
}

func (r *Router) sendChat(ctx context.Context, upstream Upstream, chat *store.ChatStore, text string) (*Result, error) {
	sessionID := chat.SessionID()
	if sessionID == "" {
		r.logger.Printf("[ROUTER] Missing session id, dropping chat message")
		return nil, ErrNoSession
	}

	userID := chat.AppendPending(store.SenderUser, text)

	answer, err := upstream.ChatResponse(ctx, sessionID, text)
	if err != nil {
		r.logger.Printf("[ROUTER] Chat error: %v", err)
		chat.Fail(userID)
		return nil, err
	}

	chat.Resolve(userID)
	chat.AppendResolved(store.SenderBot, answer)
	return &Result{Mode: ModeChat, Reply: answer}, nil
}

func (r *Router) sendSearch(ctx context.Context, upstream Upstream, chat *store.ChatStore, text string) (*Result, error) {
	userID := chat.AppendPending(store.SenderUser, text)

	response, err := upstream.MCPQuery(ctx, text)
	if err != nil {
		r.logger.Printf("[ROUTER] Search error: %v", err)
		chat.Fail(userID)
		return nil, err
	}

	chat.Resolve(userID)
	chat.AppendResolved(store.SenderBot, response)
	return &Result{Mode: ModeSearch, Reply: response}, nil
}
