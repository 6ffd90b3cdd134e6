package agent

import (
	"time"

	"github.com/google/uuid"

	"github.com/richinex/delver/llm"
	"github.com/richinex/delver/search"
)

// ToolCallLogEntry is one record in the append-only tool audit trail.
type ToolCallLogEntry struct {
	Tool      string         `json:"tool"`
	Args      map[string]any `json:"args"`
	Timestamp time.Time      `json:"timestamp"`
}

// readKey identifies a cached page window.
type readKey struct {
	url    string
	start  int
	length int
}

// Session holds all mutable state for one conversation: the message log,
// token usage, the tool audit trail, the loop guard, the page-read cache,
// and the scalars that drive the tool workflow. It has a single owner (the
// orchestrator) and is mutated only between network suspension points, so
// it carries no locking.
type Session struct {
	id       string
	messages []llm.ChatMessage
	usage    llm.TokenUsage
	toolLog  []ToolCallLogEntry
	guard    loopGuard

	// Pages are assumed static within a session; entries are never evicted.
	readCache map[readKey]string

	// snippets accumulates retrieved text awaiting summarization.
	snippets []string

	originalQuestion    string
	toolWorkflowActive  bool
	highlighted         map[int]bool
	lastResults         []search.Result
	autoReadInProgress  bool
	pendingContinuation string
}

// NewSession creates a session seeded with the system instruction.
func NewSession(systemPrompt string) *Session {
	return &Session{
		id:        uuid.New().String(),
		messages:  []llm.ChatMessage{llm.SystemMessage(systemPrompt)},
		readCache: make(map[readKey]string),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// BeginTurn resets per-turn state for a new user question and re-enables
// the tool workflow.
func (s *Session) BeginTurn(question string) {
	s.originalQuestion = question
	s.toolWorkflowActive = true
	s.highlighted = nil
	s.lastResults = nil
	s.pendingContinuation = ""
}

// Append adds a message to the conversation log.
func (s *Session) Append(msg llm.ChatMessage) {
	s.messages = append(s.messages, msg)
}

// Messages returns a copy of the conversation log.
func (s *Session) Messages() []llm.ChatMessage {
	out := make([]llm.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// LastMessage returns the most recent message, or a zero message if the
// log is empty.
func (s *Session) LastMessage() llm.ChatMessage {
	if len(s.messages) == 0 {
		return llm.ChatMessage{}
	}
	return s.messages[len(s.messages)-1]
}

// LastUserMessage returns the content of the most recent user message, or
// empty if there is none.
func (s *Session) LastUserMessage() string {
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == llm.RoleUser {
			return s.messages[i].Content
		}
	}
	return ""
}

// AddUsage folds token usage from one model call into the running total.
func (s *Session) AddUsage(usage *llm.TokenUsage) {
	s.usage.Add(usage)
}

// Usage returns the accumulated token usage for the session.
func (s *Session) Usage() llm.TokenUsage { return s.usage }

// LogToolCall records a dispatched tool call in the audit trail.
func (s *Session) LogToolCall(tool string, args map[string]any) {
	s.toolLog = append(s.toolLog, ToolCallLogEntry{
		Tool:      tool,
		Args:      args,
		Timestamp: time.Now(),
	})
}

// ToolLog returns a copy of the tool audit trail.
func (s *Session) ToolLog() []ToolCallLogEntry {
	out := make([]ToolCallLogEntry, len(s.toolLog))
	copy(out, s.toolLog)
	return out
}

// CachedRead returns a previously fetched page window.
func (s *Session) CachedRead(url string, start, length int) (string, bool) {
	snippet, ok := s.readCache[readKey{url: url, start: start, length: length}]
	return snippet, ok
}

// StoreRead caches a fetched page window. Empty snippets are cached too,
// so exhausted pages are not re-fetched.
func (s *Session) StoreRead(url string, start, length int, snippet string) {
	s.readCache[readKey{url: url, start: start, length: length}] = snippet
}

// AddSnippet appends retrieved text to the summarization accumulator.
func (s *Session) AddSnippet(snippet string) {
	s.snippets = append(s.snippets, snippet)
}

// Snippets returns a copy of the accumulated snippets.
func (s *Session) Snippets() []string {
	out := make([]string, len(s.snippets))
	copy(out, s.snippets)
	return out
}

// ClearSnippets empties the summarization accumulator.
func (s *Session) ClearSnippets() {
	s.snippets = nil
}

// OriginalQuestion returns the question that started the current turn.
func (s *Session) OriginalQuestion() string { return s.originalQuestion }

// ToolWorkflowActive reports whether tool dispatch is still enabled for
// the current turn.
func (s *Session) ToolWorkflowActive() bool { return s.toolWorkflowActive }

// SetToolWorkflowActive flips the tool-workflow gate. Setting it false is
// the single exit transition from tool mode back to idle.
func (s *Session) SetToolWorkflowActive(active bool) {
	s.toolWorkflowActive = active
}

// SetHighlighted records which result indices (0-based) the model judged
// worth reading.
func (s *Session) SetHighlighted(indices []int) {
	s.highlighted = make(map[int]bool, len(indices))
	for _, i := range indices {
		s.highlighted[i] = true
	}
}

// Highlighted reports whether a result index is highlighted.
func (s *Session) Highlighted(index int) bool { return s.highlighted[index] }

// SetLastResults stores the most recent search result list.
func (s *Session) SetLastResults(results []search.Result) {
	s.lastResults = results
}

// LastResults returns the most recent search result list.
func (s *Session) LastResults() []search.Result { return s.lastResults }

// AutoReadInProgress reports whether an auto-read pipeline is running.
func (s *Session) AutoReadInProgress() bool { return s.autoReadInProgress }

// SetAutoReadInProgress flips the advisory auto-read guard.
func (s *Session) SetAutoReadInProgress(active bool) {
	s.autoReadInProgress = active
}

// SetPendingContinuation stages explicit content for the next
// reasoning-continuation turn.
func (s *Session) SetPendingContinuation(content string) {
	s.pendingContinuation = content
}

// TakePendingContinuation returns and clears any staged continuation
// content.
func (s *Session) TakePendingContinuation() string {
	content := s.pendingContinuation
	s.pendingContinuation = ""
	return content
}
