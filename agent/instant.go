package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/richinex/delver/llm"
)

// instantAnswerTool looks up a query against the instant-answer service
// and records the structured result in history.
type instantAnswerTool struct {
	o *Orchestrator
}

func (t *instantAnswerTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "instant_answer",
		Description: "Look up a factual query against an instant-answer service.",
		Parameters: []ToolParameter{
			{Name: "query", ParamType: "string", Description: "The lookup query", Required: true},
		},
	}
}

func (t *instantAnswerTool) Execute(ctx context.Context, args map[string]any) (Outcome, error) {
	o := t.o

	query := strings.TrimSpace(stringArg(args, "query"))
	if query == "" {
		return Outcome{}, fmt.Errorf("%w: query must be a non-empty string", ErrInvalidArgument)
	}

	o.events.Status(fmt.Sprintf("looking up %q...", query))

	answer, err := o.retriever.InstantAnswer(ctx, query)
	if err != nil {
		o.events.Errorf("instant answer failed: %v", err)
		o.appendMessage(llm.AssistantMessage(fmt.Sprintf("Error looking up %q: %v", query, err)))
		return Outcome{Continue: true}, nil
	}

	if answer.Empty() {
		o.appendMessage(llm.AssistantMessage(fmt.Sprintf("No instant answer available for %q.", query)))
		return Outcome{Continue: true}, nil
	}

	formatted, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to encode instant answer: %w", err)
	}

	o.appendMessage(llm.AssistantMessage(fmt.Sprintf("Instant answer for %q:\n%s", query, formatted)))
	return Outcome{Continue: true}, nil
}
