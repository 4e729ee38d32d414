package store

import (
	"testing"
)

func TestChatTwoPhaseResolution(t *testing.T) {
	s := NewChatStore()

	id := s.AppendPending(SenderUser, "hello")
	msgs := s.Messages()
	if len(msgs) != 1 || msgs[0].Status != StatusPending {
		t.Fatalf("after append: %+v, want one pending entry", msgs)
	}

	s.Resolve(id)
	s.AppendResolved(SenderBot, "hi there")

	msgs = s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Status != StatusResolved {
		t.Errorf("user entry status = %q, want resolved", msgs[0].Status)
	}
	if msgs[1].Sender != SenderBot || msgs[1].Status != StatusResolved {
		t.Errorf("bot entry = %+v, want resolved bot reply", msgs[1])
	}
}

func TestChatFailedEntryStaysInTranscript(t *testing.T) {
	s := NewChatStore()

	id := s.AppendPending(SenderUser, "doomed")
	s.Fail(id)

	msgs := s.Messages()
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if msgs[0].Status != StatusFailed {
		t.Errorf("status = %q, want failed", msgs[0].Status)
	}
	if msgs[0].Text != "doomed" {
		t.Errorf("failed entry text lost: %q", msgs[0].Text)
	}
}

func TestChatMessagesReturnsCopy(t *testing.T) {
	s := NewChatStore()
	s.AppendResolved(SenderBot, "original")

	msgs := s.Messages()
	msgs[0].Text = "mutated"

	if got := s.Messages()[0].Text; got != "original" {
		t.Errorf("transcript mutated through returned slice: %q", got)
	}
}

func TestChatClear(t *testing.T) {
	s := NewChatStore()
	s.SetSessionID("sess-1")
	s.AppendResolved(SenderBot, "a")
	s.Clear()

	if len(s.Messages()) != 0 {
		t.Error("messages survived Clear")
	}
	// Clear drops the transcript only; the session id is managed separately
	if s.SessionID() != "sess-1" {
		t.Error("session id dropped by Clear")
	}
}
