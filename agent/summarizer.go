package agent

import (
	"context"
	"strings"
)

// summarize reduces an unbounded list of retrieved snippets to a bounded
// summary, reports it, and hands it to the answer synthesizer. On any
// model failure mid-way the whole attempt is abandoned with no partial
// salvage. The session's snippet accumulator is cleared either way.
func (o *Orchestrator) summarize(ctx context.Context, snippets []string) {
	defer o.session.ClearSnippets()

	o.events.Status("summarizing...")

	summary, err := o.reduce(ctx, snippets, 1)
	if err != nil {
		o.events.Errorf("summarization failed: %v", err)
		return
	}
	if strings.TrimSpace(summary) == "" {
		return
	}

	o.events.SummaryReady(summary)
	o.synthesize(ctx, summary)
}

// maxSummaryRounds bounds the reduction recursion. A model that does not
// shrink its inputs would otherwise recurse forever.
const maxSummaryRounds = 4

// reduce recursively summarizes snippets. Each round packs the inputs into
// budget-bounded batches, summarizes every batch in order, and recurses on
// the batch summaries until the combined text fits the budget or the round
// cap is reached, whichever comes first.
func (o *Orchestrator) reduce(ctx context.Context, snippets []string, round int) (string, error) {
	if len(snippets) == 0 {
		return "", nil
	}
	if round > maxSummaryRounds {
		o.events.Warningf("summary still over budget after %d rounds; using it as is", maxSummaryRounds)
		return strings.Join(snippets, "\n\n"), nil
	}
	if len(snippets) == 1 {
		return o.summarizeText(ctx, snippets[0])
	}

	batches := packBatches(snippets, o.cfg.SummaryBudget)

	summaries := make([]string, 0, len(batches))
	for _, batch := range batches {
		summary, err := o.summarizeText(ctx, strings.Join(batch, "\n\n"))
		if err != nil {
			return "", err
		}
		summaries = append(summaries, summary)
	}

	combined := strings.Join(summaries, "\n\n")
	if len(combined) > o.cfg.SummaryBudget {
		return o.reduce(ctx, summaries, round+1)
	}
	return combined, nil
}

// summarizeText runs one summarization model call under the dedicated
// long timeout.
func (o *Orchestrator) summarizeText(ctx context.Context, text string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.cfg.SummaryTimeout)
	defer cancel()
	return o.completePrompt(callCtx, summarizePrompt(text))
}

// packBatches groups snippets greedily in order so each batch's
// concatenated length stays within budget. A single snippet larger than
// the budget still gets its own batch rather than being split.
func packBatches(snippets []string, budget int) [][]string {
	var (
		batches [][]string
		current []string
		size    int
	)

	for _, snippet := range snippets {
		if len(current) > 0 && size+len(snippet) > budget {
			batches = append(batches, current)
			current = nil
			size = 0
		}
		current = append(current, snippet)
		size += len(snippet)
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}
