package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/richinex/delver/internal/reply"
	"github.com/richinex/delver/llm"
	"github.com/richinex/delver/search"
)

// Retriever is the retrieval capability surface the orchestrator consumes.
// *search.Gateway satisfies it.
type Retriever interface {
	Search(ctx context.Context, query, engine string) ([]search.Result, error)
	FetchPage(ctx context.Context, url string) (string, error)
	InstantAnswer(ctx context.Context, query string) (*search.InstantAnswer, error)
}

// Config carries the orchestration budgets. Zero values are replaced by
// DefaultConfig values in New.
type Config struct {
	// MaxRefinements bounds the query-refinement retry loop in web_search.
	MaxRefinements int

	// ReadLength is the default window size for read_url.
	ReadLength int

	// Deep-read budgets: chunk count, window size, and total accumulated
	// characters per page.
	DeepReadMaxChunks int
	DeepReadChunkSize int
	DeepReadMaxTotal  int

	// SummaryBudget caps the concatenated prompt length per summarization
	// batch, in characters.
	SummaryBudget int

	// SummaryTimeout bounds each summarization model call. Summaries get a
	// longer deadline than ordinary turns since source text may be large.
	SummaryTimeout time.Duration

	// StreamReplies forwards model tokens to the events sink as they
	// arrive instead of waiting for the complete reply. Off by default.
	StreamReplies bool
}

// DefaultConfig returns the standard budgets.
func DefaultConfig() Config {
	return Config{
		MaxRefinements:    2,
		ReadLength:        1122,
		DeepReadMaxChunks: 5,
		DeepReadChunkSize: 2000,
		DeepReadMaxTotal:  10000,
		SummaryBudget:     5857,
		SummaryTimeout:    88 * time.Second,
	}
}

// Orchestrator is the per-turn control loop. It owns the session, routes
// model replies to tool handlers, and drives retrieval, summarization, and
// answer synthesis.
type Orchestrator struct {
	client    *llm.Client
	retriever Retriever
	registry  *Registry
	session   *Session
	events    Events
	cfg       Config

	// readTool is the registered read_url handler; the deep-reader reads
	// fetch outcomes back from it after synthesized dispatches.
	readTool *readURLTool

	// lastAnswer holds the most recent final answer produced in this turn.
	lastAnswer string
}

// New creates an orchestrator with the standard retrieval tools registered
// and a fresh session.
func New(client *llm.Client, retriever Retriever, events Events, cfg Config) *Orchestrator {
	if events == nil {
		events = NopEvents{}
	}
	defaults := DefaultConfig()
	if cfg.MaxRefinements <= 0 {
		cfg.MaxRefinements = defaults.MaxRefinements
	}
	if cfg.ReadLength <= 0 {
		cfg.ReadLength = defaults.ReadLength
	}
	if cfg.DeepReadMaxChunks <= 0 {
		cfg.DeepReadMaxChunks = defaults.DeepReadMaxChunks
	}
	if cfg.DeepReadChunkSize <= 0 {
		cfg.DeepReadChunkSize = defaults.DeepReadChunkSize
	}
	if cfg.DeepReadMaxTotal <= 0 {
		cfg.DeepReadMaxTotal = defaults.DeepReadMaxTotal
	}
	if cfg.SummaryBudget <= 0 {
		cfg.SummaryBudget = defaults.SummaryBudget
	}
	if cfg.SummaryTimeout <= 0 {
		cfg.SummaryTimeout = defaults.SummaryTimeout
	}

	o := &Orchestrator{
		client:    client,
		retriever: retriever,
		registry:  NewRegistry(),
		events:    events,
		cfg:       cfg,
	}

	o.readTool = &readURLTool{o: o}
	_ = o.registry.Register(&webSearchTool{o: o})
	_ = o.registry.Register(o.readTool)
	_ = o.registry.Register(&instantAnswerTool{o: o})

	o.session = NewSession(systemPrompt(o.registry.Description()))
	return o
}

// Session exposes the orchestrator's session for inspection and
// persistence.
func (o *Orchestrator) Session() *Session { return o.session }

// Registry exposes the tool registry.
func (o *Orchestrator) Registry() *Registry { return o.registry }

// Ask runs one full user turn: append the question, obtain a model reply,
// and follow tool calls until a final answer is produced. The returned
// string is the final answer for the turn; intermediate progress is
// delivered through the Events sink.
func (o *Orchestrator) Ask(ctx context.Context, question string) (string, error) {
	o.events.Busy(true)
	defer o.events.Busy(false)

	o.session.BeginTurn(question)
	o.lastAnswer = ""
	o.appendMessage(llm.UserMessage(question))

	text, err := o.chat(ctx)
	if err != nil {
		o.events.Errorf("model call failed: %v", err)
		return "", err
	}

	if err := o.handleReply(ctx, text); err != nil {
		return o.lastAnswer, err
	}
	return o.lastAnswer, nil
}

// handleReply classifies a model reply and either records it as the final
// answer or dispatches the embedded tool call.
func (o *Orchestrator) handleReply(ctx context.Context, text string) error {
	parsed := reply.Parse(text)
	o.appendMessage(llm.AssistantMessage(text))

	if parsed.Kind == reply.KindToolCall {
		return o.Dispatch(ctx, *parsed.Call)
	}

	o.lastAnswer = parsed.Text
	o.events.AnswerReady(parsed.Text)
	return nil
}

// Dispatch executes one tool call. It gates on the workflow flag, the
// registry, and the loop guard, records the call in the audit trail, runs
// the handler, and finally decides whether to resume the reasoning cycle.
func (o *Orchestrator) Dispatch(ctx context.Context, call reply.ToolCall) error {
	if !o.session.ToolWorkflowActive() {
		return nil
	}

	tool, ok := o.registry.Get(call.Tool)
	if !ok {
		o.events.Errorf("unknown tool %q", call.Tool)
		return fmt.Errorf("%w: %s", ErrUnknownTool, call.Tool)
	}

	if !o.session.guard.allow(call.Tool, call.Arguments) {
		o.events.Errorf("tool %q called repeatedly with identical arguments; stopping", call.Tool)
		return fmt.Errorf("%w: %s", ErrLoopDetected, call.Tool)
	}

	o.session.LogToolCall(call.Tool, call.Arguments)

	outcome, err := tool.Execute(ctx, call.Arguments)
	if err != nil {
		o.events.Errorf("tool %q failed: %v", call.Tool, err)
		return err
	}

	if call.SkipContinue || !outcome.Continue || !o.session.ToolWorkflowActive() {
		return nil
	}

	// A tool call sitting at the top of history means the model issued two
	// calls back to back without reasoning in between.
	if last := o.session.LastMessage(); last.Role == llm.RoleAssistant && reply.IsToolCall(last.Content) {
		o.events.Warningf("model issued consecutive tool calls without reasoning; stopping this cycle")
		return nil
	}

	return o.continueReasoning(ctx)
}

// continueReasoning sends a continuation turn so the model can act on the
// tool result. Staged continuation content wins; the original question is
// the fallback.
func (o *Orchestrator) continueReasoning(ctx context.Context) error {
	content := o.session.TakePendingContinuation()
	if content == "" {
		content = o.session.OriginalQuestion()
	}
	o.appendMessage(llm.UserMessage(content))

	text, err := o.chat(ctx)
	if err != nil {
		o.events.Errorf("model call failed: %v", err)
		return err
	}
	return o.handleReply(ctx, text)
}

// chat sends the full conversation to the model and folds usage into the
// session total.
func (o *Orchestrator) chat(ctx context.Context) (string, error) {
	if o.cfg.StreamReplies {
		return o.chatWithStreaming(ctx)
	}
	content, usage, err := o.client.ChatWithUsage(ctx, o.session.Messages())
	if err != nil {
		return "", err
	}
	o.session.AddUsage(usage)
	return content, nil
}

// streamResult holds the result of a streaming call.
type streamResult struct {
	usage *llm.TokenUsage
	err   error
}

// chatWithStreaming is chat with tokens forwarded to the events sink in
// real time.
func (o *Orchestrator) chatWithStreaming(ctx context.Context) (string, error) {
	chunks := make(chan string, 100)

	resultCh := make(chan streamResult, 1)
	go func() {
		defer close(chunks)
		usage, err := o.client.StreamChat(ctx, o.session.Messages(), chunks)
		resultCh <- streamResult{usage: usage, err: err}
	}()

	var response strings.Builder
	for chunk := range chunks {
		o.events.ReplyChunk(chunk)
		response.WriteString(chunk)
	}

	result := <-resultCh
	if result.err != nil {
		return "", result.err
	}
	o.session.AddUsage(result.usage)
	return response.String(), nil
}

// completePrompt runs a one-off auxiliary prompt outside the conversation
// history (quality checks, refinements, summaries).
func (o *Orchestrator) completePrompt(ctx context.Context, prompt string) (string, error) {
	content, usage, err := o.client.ChatWithUsage(ctx, []llm.ChatMessage{llm.UserMessage(prompt)})
	if err != nil {
		return "", err
	}
	o.session.AddUsage(usage)
	return content, nil
}

// appendMessage adds a message to the session and notifies the
// presentation layer.
func (o *Orchestrator) appendMessage(msg llm.ChatMessage) {
	o.session.Append(msg)
	o.events.MessageAppended(msg.Role, msg.Content)
}
