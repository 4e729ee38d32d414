package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Message senders.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Message lifecycle. A user message is appended pending when submitted and
// resolved or failed once its exchange settles; bot messages are appended
// already resolved.
const (
	StatusPending  = "pending"
	StatusResolved = "resolved"
	StatusFailed   = "failed"
)

// ChatMessage is one transcript entry.
type ChatMessage struct {
	ID     uuid.UUID `json:"id"`
	Sender string    `json:"sender"`
	Text   string    `json:"text"`
	Status string    `json:"status"`
	At     time.Time `json:"at"`
}

// ChatStore owns the chat session id, the ordered transcript and the
// search-mode flag. It is independent of the Workspace so chat can be used
// or tested without the file subsystem; callers keep the session ids in
// sync.
type ChatStore struct {
	mu         sync.Mutex
	sessionID  string
	messages   []ChatMessage
	searchMode bool
}

func NewChatStore() *ChatStore {
	return &ChatStore{}
}

func (s *ChatStore) SetSessionID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = id
}

func (s *ChatStore) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

func (s *ChatStore) SetSearchMode(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchMode = on
}

func (s *ChatStore) SearchMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchMode
}

// AppendPending appends a pending user message and returns its id.
func (s *ChatStore) AppendPending(sender, text string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := ChatMessage{
		ID:     uuid.New(),
		Sender: sender,
		Text:   text,
		Status: StatusPending,
		At:     time.Now(),
	}
	s.messages = append(s.messages, m)
	return m.ID
}

// AppendResolved appends a message that needs no settling (bot replies).
func (s *ChatStore) AppendResolved(sender, text string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := ChatMessage{
		ID:     uuid.New(),
		Sender: sender,
		Text:   text,
		Status: StatusResolved,
		At:     time.Now(),
	}
	s.messages = append(s.messages, m)
	return m.ID
}

// Resolve marks the entry resolved. Unknown ids are a no-op.
func (s *ChatStore) Resolve(id uuid.UUID) {
	s.setStatus(id, StatusResolved)
}

// Fail marks the entry failed. The entry stays in the transcript.
func (s *ChatStore) Fail(id uuid.UUID) {
	s.setStatus(id, StatusFailed)
}

func (s *ChatStore) setStatus(id uuid.UUID, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].Status = status
			return
		}
	}
}

// Messages returns a copy of the transcript in append order.
func (s *ChatStore) Messages() []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Clear drops the transcript. Used when the session is reset.
func (s *ChatStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}
