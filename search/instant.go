package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// InstantAnswer is the structured result of an instant-answer lookup.
type InstantAnswer struct {
	Heading        string         `json:"heading,omitempty"`
	Abstract       string         `json:"abstract,omitempty"`
	AbstractSource string         `json:"abstract_source,omitempty"`
	AbstractURL    string         `json:"abstract_url,omitempty"`
	Answer         string         `json:"answer,omitempty"`
	AnswerType     string         `json:"answer_type,omitempty"`
	Definition     string         `json:"definition,omitempty"`
	RelatedTopics  []RelatedTopic `json:"related_topics,omitempty"`
}

// RelatedTopic is a related entry attached to an instant answer.
type RelatedTopic struct {
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
}

// Empty reports whether the lookup produced no usable content.
func (a *InstantAnswer) Empty() bool {
	return a.Heading == "" && a.Abstract == "" && a.Answer == "" &&
		a.Definition == "" && len(a.RelatedTopics) == 0
}

// DDGInstant implements Answerer using the DuckDuckGo Instant Answer API.
type DDGInstant struct {
	client *http.Client
}

// NewDDGInstant creates an instant-answer client with a modest timeout.
func NewDDGInstant() *DDGInstant {
	return &DDGInstant{client: &http.Client{Timeout: 15 * time.Second}}
}

// ddgInstantPayload mirrors the fields of the Instant Answer API response
// that we consume. Field names on the wire are capitalized.
type ddgInstantPayload struct {
	Heading        string `json:"Heading"`
	Abstract       string `json:"Abstract"`
	AbstractSource string `json:"AbstractSource"`
	AbstractURL    string `json:"AbstractURL"`
	Answer         string `json:"Answer"`
	AnswerType     string `json:"AnswerType"`
	Definition     string `json:"Definition"`
	RelatedTopics  []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

// InstantAnswer queries the DuckDuckGo Instant Answer API.
func (d *DDGInstant) InstantAnswer(ctx context.Context, query string) (*InstantAnswer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query is empty")
	}

	endpoint := fmt.Sprintf(
		"https://api.duckduckgo.com/?q=%s&format=json&no_html=1&skip_disambig=1",
		url.QueryEscape(query),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "delver/1.0 (https://github.com/richinex/delver)")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo instant answer http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var payload ddgInstantPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode instant answer: %w", err)
	}

	return payload.toAnswer(), nil
}

// toAnswer converts the wire payload into the exported shape, keeping at
// most five related topics.
func (p ddgInstantPayload) toAnswer() *InstantAnswer {
	answer := &InstantAnswer{
		Heading:        p.Heading,
		Abstract:       p.Abstract,
		AbstractSource: p.AbstractSource,
		AbstractURL:    p.AbstractURL,
		Answer:         p.Answer,
		AnswerType:     p.AnswerType,
		Definition:     p.Definition,
	}
	for _, rt := range p.RelatedTopics {
		if rt.Text == "" {
			continue
		}
		answer.RelatedTopics = append(answer.RelatedTopics, RelatedTopic{
			Text: rt.Text,
			URL:  rt.FirstURL,
		})
		if len(answer.RelatedTopics) >= 5 {
			break
		}
	}
	return answer
}

var _ Answerer = (*DDGInstant)(nil)
