package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/richinex/delver/internal/reply"
)

// deepRead iteratively fetches successive windows of a page, asking the
// model after each window whether more content is needed. It stops on the
// chunk budget, the total character budget, an empty window, a "no" from
// the model, or a model transport error. Windows are cached per session by
// (url, start, length) so repeated reads never re-fetch.
func (o *Orchestrator) deepRead(ctx context.Context, url string) []string {
	var (
		snippets       []string
		total          int
		start          int
		shouldContinue = true
	)

	for chunk := 0; chunk < o.cfg.DeepReadMaxChunks && total < o.cfg.DeepReadMaxTotal && shouldContinue; chunk++ {
		snippet, cached := o.session.CachedRead(url, start, o.cfg.DeepReadChunkSize)
		pageEnd := false
		if !cached {
			var ok bool
			snippet, pageEnd, ok = o.fetchWindow(ctx, url, start)
			if !ok {
				// A failed fetch is not cached; a later read may succeed.
				break
			}
			o.session.StoreRead(url, start, o.cfg.DeepReadChunkSize, snippet)
		}

		if snippet == "" {
			break
		}

		// Respect the total budget even when a full window arrived.
		runes := []rune(snippet)
		if room := o.cfg.DeepReadMaxTotal - total; len(runes) > room {
			runes = runes[:room]
			snippet = string(runes)
		}
		snippets = append(snippets, snippet)
		total += len(runes)
		if total >= o.cfg.DeepReadMaxTotal || pageEnd {
			break
		}

		verdict, err := o.completePrompt(ctx, needMorePrompt(o.session.OriginalQuestion(), snippet))
		if err != nil {
			// Transport errors stop the read rather than retrying.
			shouldContinue = false
			break
		}
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(verdict)), "yes") {
			start += o.cfg.DeepReadChunkSize
		} else {
			shouldContinue = false
		}
	}

	return snippets
}

// fetchWindow dispatches a synthesized read_url call with the
// reasoning-continuation suppressed and reads the outcome back from the
// tool. pageEnd reports that no content remains past the window; ok is
// false when the dispatch or the fetch itself failed.
func (o *Orchestrator) fetchWindow(ctx context.Context, url string, start int) (snippet string, pageEnd, ok bool) {
	call := reply.ToolCall{
		Tool: "read_url",
		Arguments: map[string]any{
			"url":    url,
			"start":  start,
			"length": o.cfg.DeepReadChunkSize,
		},
		SkipContinue: true,
	}
	if err := o.Dispatch(ctx, call); err != nil {
		o.events.Warningf("deep read of %s stopped: %v", url, err)
		return "", false, false
	}
	if !o.readTool.lastOK {
		return "", false, false
	}
	return o.readTool.lastSnippet, !o.readTool.lastHasMore, true
}

// autoReadAndSummarize deep-reads each suggested URL in order, then runs
// the summarization pipeline over everything collected. Guarded against
// re-entrant triggering: a second request arriving while one is active is
// dropped, not queued.
func (o *Orchestrator) autoReadAndSummarize(ctx context.Context, urls []string) {
	if o.session.AutoReadInProgress() {
		o.events.Warningf("auto-read already in progress; dropping request")
		return
	}
	o.session.SetAutoReadInProgress(true)
	defer o.session.SetAutoReadInProgress(false)

	var collected []string
	for _, url := range urls {
		o.events.Status(fmt.Sprintf("reading %s in depth...", url))
		collected = append(collected, o.deepRead(ctx, url)...)
	}

	if len(collected) == 0 {
		o.events.Warningf("deep reads produced no content")
		return
	}

	o.summarize(ctx, collected)
}
