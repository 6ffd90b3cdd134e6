package search

import (
	"encoding/json"
	"testing"
)

func TestInstantPayloadToAnswer(t *testing.T) {
	raw := `{
		"Heading": "Paris",
		"Abstract": "Paris is the capital of France.",
		"AbstractSource": "Wikipedia",
		"AbstractURL": "https://en.wikipedia.org/wiki/Paris",
		"Answer": "",
		"AnswerType": "",
		"Definition": "",
		"RelatedTopics": [
			{"Text": "History of Paris", "FirstURL": "https://en.wikipedia.org/wiki/History_of_Paris"},
			{"Text": "", "FirstURL": "https://ignored.example.com"},
			{"Text": "A"}, {"Text": "B"}, {"Text": "C"}, {"Text": "D"}, {"Text": "E"}
		]
	}`

	var payload ddgInstantPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	answer := payload.toAnswer()
	if answer.Heading != "Paris" {
		t.Errorf("heading = %q", answer.Heading)
	}
	if answer.Abstract != "Paris is the capital of France." {
		t.Errorf("abstract = %q", answer.Abstract)
	}
	// Topics without text are skipped; at most five kept.
	if len(answer.RelatedTopics) != 5 {
		t.Fatalf("got %d related topics, want 5", len(answer.RelatedTopics))
	}
	if answer.RelatedTopics[0].Text != "History of Paris" {
		t.Errorf("topic[0] = %q", answer.RelatedTopics[0].Text)
	}
	if answer.Empty() {
		t.Error("answer with content reported Empty")
	}
}

func TestInstantAnswerEmpty(t *testing.T) {
	var a InstantAnswer
	if !a.Empty() {
		t.Error("zero answer should be Empty")
	}
}
