package storage

import (
	"context"
	"testing"
	"time"

	"github.com/richinex/delver/agent"
	"github.com/richinex/delver/llm"
)

func newTestDB(t *testing.T) *SqliteStorage {
	t.Helper()
	s, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSqliteSaveLoadRoundTrip(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()

	history := []llm.ChatMessage{
		llm.SystemMessage("system"),
		llm.UserMessage("question"),
		llm.AssistantMessage("answer"),
	}
	if err := s.Save(ctx, "session-1", history); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := s.Load(ctx, "session-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != len(history) {
		t.Fatalf("loaded %d messages, want %d", len(loaded), len(history))
	}
	for i := range history {
		if loaded[i] != history[i] {
			t.Errorf("message %d = %+v, want %+v", i, loaded[i], history[i])
		}
	}
}

func TestSqliteSaveReplacesHistory(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()

	_ = s.Save(ctx, "s", []llm.ChatMessage{llm.UserMessage("one"), llm.UserMessage("two")})
	_ = s.Save(ctx, "s", []llm.ChatMessage{llm.UserMessage("only")})

	loaded, err := s.Load(ctx, "s")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Content != "only" {
		t.Errorf("loaded = %v, want single replaced message", loaded)
	}
}

func TestSqliteLoadMissingSession(t *testing.T) {
	s := newTestDB(t)

	loaded, err := s.Load(context.Background(), "missing")
	if err != nil {
		t.Fatalf("missing session should not error: %v", err)
	}
	if loaded == nil || len(loaded) != 0 {
		t.Errorf("want empty slice, got %v", loaded)
	}
}

func TestSqliteDeleteAndList(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()

	_ = s.Save(ctx, "a", []llm.ChatMessage{llm.UserMessage("x")})
	_ = s.Save(ctx, "b", []llm.ChatMessage{llm.UserMessage("y")})

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	sessions, err := s.ListSessions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 1 || sessions[0] != "b" {
		t.Errorf("sessions = %v, want [b]", sessions)
	}

	exists, err := s.Exists(ctx, "a")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Error("deleted session still exists")
	}
}

func TestSqliteToolLogRoundTrip(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()

	entries := []agent.ToolCallLogEntry{
		{Tool: "web_search", Args: map[string]any{"query": "go"}, Timestamp: time.Now()},
		{Tool: "instant_answer", Args: map[string]any{"query": "paris"}, Timestamp: time.Now()},
	}
	if err := s.AppendToolCalls(ctx, "s", entries); err != nil {
		t.Fatalf("append: %v", err)
	}

	loaded, err := s.LoadToolCalls(ctx, "s")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d entries, want 2", len(loaded))
	}
	if loaded[0].Tool != "web_search" {
		t.Errorf("entry order wrong: %q", loaded[0].Tool)
	}
	if q, _ := loaded[1].Args["query"].(string); q != "paris" {
		t.Errorf("arguments not preserved: %v", loaded[1].Args)
	}
	if loaded[0].Timestamp.IsZero() {
		t.Error("timestamp not preserved")
	}
}
