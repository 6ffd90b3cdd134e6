package agent

import (
	"fmt"
	"strings"

	"github.com/richinex/delver/search"
)

// systemPrompt builds the fixed first message describing the tool-call
// protocol and the available tools.
func systemPrompt(toolList string) string {
	return fmt.Sprintf(`You are a research assistant with access to web tools.

To use a tool, reply with a single JSON object and nothing else:
{"tool": "<name>", "arguments": {...}}

Available tools:
%s
After a tool result arrives, either call another tool (with reasoning in
between) or answer the user directly in plain text. Answer directly when
you already know the answer.`, toolList)
}

// relevancePrompt asks for a yes/no judgment on search result quality.
func relevancePrompt(query string, results []search.Result) string {
	return fmt.Sprintf(`Question: %s

Search results:
%s
Are these results likely to answer the question? Reply with only "yes" or "no".`,
		query, numberedResults(results))
}

// refinePrompt asks for a better search query after a quality rejection.
func refinePrompt(query string, results []search.Result) string {
	return fmt.Sprintf(`The search query %q returned results that do not answer the question well:
%s
Suggest one improved search query. Reply with only the query text, nothing else.`,
		query, numberedResults(results))
}

// suggestPrompt asks which numbered results merit a deep read.
func suggestPrompt(query string, results []search.Result) string {
	return fmt.Sprintf(`Question: %s

Search results:
%s
Which results are most relevant to the question? Reply with their numbers as a
comma-separated list (for example: 1, 3). Reply "none" if none are relevant.`,
		query, numberedResults(results))
}

// needMorePrompt asks whether further page content is needed after a window.
func needMorePrompt(question, snippet string) string {
	return fmt.Sprintf(`Question: %s

Content read so far:
%s

Do you need more content from this page to answer the question? Reply with only "yes" or "no".`,
		question, snippet)
}

// summarizePrompt asks for a concise summary of retrieved text.
func summarizePrompt(text string) string {
	return fmt.Sprintf(`Summarize the following content concisely, keeping every fact that could
help answer a question about it:

%s`, text)
}

// synthesizePrompt combines the accumulated summaries with the original
// question to produce the final answer.
func synthesizePrompt(question, summary string) string {
	return fmt.Sprintf(`Using the research notes below, answer the question directly and cite the
relevant facts. Do not call any tools.

Question: %s

Research notes:
%s`, question, summary)
}

// fallbackPrompt is used when search transport failed or produced nothing;
// the model answers from whatever partial context exists.
func fallbackPrompt(query, notes string, urls []string) string {
	var b strings.Builder
	b.WriteString("Web search was unavailable or returned nothing. Answer the question as best you can from your own knowledge")
	if notes != "" || len(urls) > 0 {
		b.WriteString(" and the partial context below")
	}
	b.WriteString(". Do not call any tools.\n\nQuestion: ")
	b.WriteString(query)
	if notes != "" {
		b.WriteString("\n\nPartial notes:\n")
		b.WriteString(notes)
	}
	if len(urls) > 0 {
		b.WriteString("\n\nURLs seen:\n")
		for _, u := range urls {
			b.WriteString("- " + u + "\n")
		}
	}
	return b.String()
}

// searchResultsEntry renders the history entry recording a completed
// search.
func searchResultsEntry(query string, results []search.Result) string {
	return fmt.Sprintf("Search results for %q:\n%s", query, numberedResults(results))
}

// resultsContinuationPrompt re-presents the original question after search
// results have been recorded in history.
func resultsContinuationPrompt(question string) string {
	return fmt.Sprintf("Using the search results above, answer the original question: %s", question)
}

// numberedResults renders results as a 1-based numbered list the way they
// are shown to the user, so model replies can reference them by number.
func numberedResults(results []search.Result) string {
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, r.Title, r.Snippet)
	}
	return b.String()
}
