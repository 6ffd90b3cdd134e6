// Package agent implements the tool-call orchestration loop: it decides after
// every model reply whether the reply is a tool invocation or a final answer,
// executes tools with loop protection and caching, summarizes retrieved
// content recursively, and synthesizes a grounded final answer.
//
// Information Hiding:
// - Tool execution details hidden behind the Tool interface
// - Loop detection and caching internal to the session
// - Model prompt construction internalized per stage
package agent

import (
	"context"
	"fmt"
)

// ToolParameter defines a parameter schema for a tool.
type ToolParameter struct {
	Name        string `json:"name"`
	ParamType   string `json:"param_type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// ToolMetadata describes what a tool does and how to use it.
type ToolMetadata struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ToolParameter `json:"parameters"`
}

// String returns a string representation of the tool metadata.
func (m ToolMetadata) String() string {
	return fmt.Sprintf("%s: %s", m.Name, m.Description)
}

// Outcome tells the dispatcher what to do after a tool handler returns.
// Continue requests a reasoning-continuation turn; handlers that already
// produced a final answer (or a terminal condition) set it false.
type Outcome struct {
	Continue bool
}

// Tool is a single capability the model can invoke.
// Handlers internalize their own transport errors: a failed fetch is
// recorded into history and reported, not returned, so the conversation
// stays coherent for the next model turn. Returned errors mean the call
// itself was invalid and the cycle is abandoned.
type Tool interface {
	Metadata() ToolMetadata
	Execute(ctx context.Context, args map[string]any) (Outcome, error)
}
