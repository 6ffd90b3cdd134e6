// Client - Simple wrapper around providers.

package llm

import (
	"context"
	"fmt"
)

// Client wraps a Provider with a simple interface.
type Client struct {
	provider Provider
}

// NewClient creates a new LLM client from a provider.
func NewClient(provider Provider) *Client {
	return &Client{provider: provider}
}

// Chat sends a chat completion request and returns just the content.
func (c *Client) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	response, err := c.provider.Chat(ctx, messages)
	if err != nil {
		return "", err
	}
	return response.Content, nil
}

// ChatWithUsage sends a chat completion request and returns content with token usage.
func (c *Client) ChatWithUsage(ctx context.Context, messages []ChatMessage) (string, *TokenUsage, error) {
	response, err := c.provider.Chat(ctx, messages)
	if err != nil {
		return "", nil, err
	}
	return response.Content, response.Usage, nil
}

// StreamChat streams a chat completion.
func (c *Client) StreamChat(ctx context.Context, messages []ChatMessage, chunks chan<- string) (*TokenUsage, error) {
	return c.provider.StreamChat(ctx, messages, chunks)
}

// CountTokens returns the token count for a conversation if the underlying
// provider supports counting; otherwise it reports an unsupported error.
func (c *Client) CountTokens(ctx context.Context, messages []ChatMessage) (int32, error) {
	counter, ok := c.provider.(TokenCounter)
	if !ok {
		return 0, fmt.Errorf("provider %s does not support token counting", c.provider.Name())
	}
	return counter.CountTokens(ctx, messages)
}

// Provider returns the underlying provider.
func (c *Client) Provider() Provider {
	return c.provider
}
