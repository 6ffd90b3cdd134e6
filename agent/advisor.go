package agent

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// numberListPattern matches the first run of digits, commas, and spaces in
// the model's reply, e.g. "1, 3" inside "I suggest 1, 3 and maybe 5".
var numberListPattern = regexp.MustCompile(`\d[\d,\s]*`)

// suggestResults asks the model which numbered results from the session's
// latest search merit deep reading, highlights them, and kicks off the
// auto-read-and-summarize pipeline for the ones that resolve to URLs.
// Non-numeric or empty replies are a no-op.
func (o *Orchestrator) suggestResults(ctx context.Context, query string) {
	results := o.session.LastResults()
	if len(results) == 0 {
		return
	}

	replyText, err := o.completePrompt(ctx, suggestPrompt(query, results))
	if err != nil {
		o.events.Warningf("result suggestion failed: %v", err)
		return
	}

	indices := parseNumberList(replyText)
	if len(indices) == 0 {
		return
	}

	o.session.SetHighlighted(indices)
	o.events.ResultsHighlighted(indices)

	var urls []string
	for _, i := range indices {
		if i < 0 || i >= len(results) || results[i].URL == "" {
			continue
		}
		urls = append(urls, results[i].URL)
	}
	if len(urls) == 0 {
		return
	}

	o.autoReadAndSummarize(ctx, urls)
}

// parseNumberList extracts 1-based result numbers from a free-text reply
// and converts them to 0-based indices.
func parseNumberList(text string) []int {
	match := numberListPattern.FindString(text)
	if match == "" {
		return nil
	}

	var indices []int
	for _, field := range strings.FieldsFunc(match, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	}) {
		n, err := strconv.Atoi(field)
		if err != nil || n < 1 {
			continue
		}
		indices = append(indices, n-1)
	}
	return indices
}
