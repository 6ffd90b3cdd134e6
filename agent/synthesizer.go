package agent

import (
	"context"

	"github.com/richinex/delver/llm"
)

// synthesize produces the final answer from the accumulated summaries and
// the original question, then closes the tool workflow. The workflow gate
// drops unconditionally, even when the synthesis call fails, so the
// session never hangs in tool mode.
func (o *Orchestrator) synthesize(ctx context.Context, summary string) {
	if summary == "" || o.session.OriginalQuestion() == "" {
		return
	}
	defer o.session.SetToolWorkflowActive(false)

	o.events.Status("writing answer...")

	answer, err := o.completePrompt(ctx, synthesizePrompt(o.session.OriginalQuestion(), summary))
	if err != nil {
		o.events.Errorf("answer synthesis failed: %v", err)
		return
	}

	o.appendMessage(llm.AssistantMessage(answer))
	o.lastAnswer = answer
	o.events.AnswerReady(answer)
}
