package llm

import (
	"context"
	"errors"
	"testing"
)

// stubProvider is a scripted provider for client tests.
type stubProvider struct {
	response Response
	err      error
}

func (s *stubProvider) Name() string  { return "stub" }
func (s *stubProvider) Model() string { return "stub-model" }

func (s *stubProvider) Chat(ctx context.Context, messages []ChatMessage) (Response, error) {
	return s.response, s.err
}

func (s *stubProvider) StreamChat(ctx context.Context, messages []ChatMessage, chunks chan<- string) (*TokenUsage, error) {
	if s.err != nil {
		return nil, s.err
	}
	chunks <- s.response.Content
	return s.response.Usage, nil
}

func TestClientChat(t *testing.T) {
	client := NewClient(&stubProvider{response: Response{Content: "hello"}})
	got, err := client.Chat(context.Background(), []ChatMessage{UserMessage("hi")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello" {
		t.Errorf("Chat = %q, want %q", got, "hello")
	}
}

func TestClientChatWithUsage(t *testing.T) {
	usage := &TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}
	client := NewClient(&stubProvider{response: Response{Content: "hello", Usage: usage}})

	content, got, err := client.ChatWithUsage(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != "hello" {
		t.Errorf("content = %q, want %q", content, "hello")
	}
	if got == nil || got.TotalTokens != 15 {
		t.Errorf("usage = %+v, want total 15", got)
	}
}

func TestClientChatError(t *testing.T) {
	wantErr := errors.New("boom")
	client := NewClient(&stubProvider{err: wantErr})
	if _, err := client.Chat(context.Background(), nil); !errors.Is(err, wantErr) {
		t.Errorf("Chat error = %v, want %v", err, wantErr)
	}
}

func TestClientCountTokensUnsupported(t *testing.T) {
	client := NewClient(&stubProvider{})
	if _, err := client.CountTokens(context.Background(), nil); err == nil {
		t.Fatal("expected error for provider without token counting")
	}
}

func TestTokenUsageAdd(t *testing.T) {
	var total TokenUsage
	total.Add(&TokenUsage{PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3})
	total.Add(nil)
	total.Add(&TokenUsage{PromptTokens: 4, CompletionTokens: 5, TotalTokens: 9})

	if total.PromptTokens != 5 || total.CompletionTokens != 7 || total.TotalTokens != 12 {
		t.Errorf("accumulated usage = %+v", total)
	}
}
