package config

import (
	"os"
	"testing"
	"time"
)

func TestNewValidProvider(t *testing.T) {
	settings, err := New("openai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != "openai" {
		t.Errorf("expected provider 'openai', got %q", settings.LLM.Provider)
	}
}

func TestNewWithAlias(t *testing.T) {
	settings, err := New("claude")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != "anthropic" {
		t.Errorf("expected provider 'anthropic' (normalized from 'claude'), got %q", settings.LLM.Provider)
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New("unknown_provider")
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewDefaults(t *testing.T) {
	os.Unsetenv("DELVER_MAX_REFINEMENTS")
	os.Unsetenv("DELVER_SUMMARY_TIMEOUT_SECS")
	os.Unsetenv("DELVER_SEARCH_ENGINE")

	settings, err := New("openai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.Agent.MaxRefinements != 2 {
		t.Errorf("expected 2 refinements, got %d", settings.Agent.MaxRefinements)
	}
	if settings.Agent.ReadLength != 1122 {
		t.Errorf("expected read length 1122, got %d", settings.Agent.ReadLength)
	}
	if settings.Agent.SummaryTimeout != 88*time.Second {
		t.Errorf("expected 88s summary timeout, got %v", settings.Agent.SummaryTimeout)
	}
	if settings.Search.Engine != "duckduckgo" {
		t.Errorf("expected duckduckgo engine, got %q", settings.Search.Engine)
	}
}

func TestNewEnvOverride(t *testing.T) {
	original := os.Getenv("DELVER_READ_LENGTH")
	os.Setenv("DELVER_READ_LENGTH", "500")
	defer os.Setenv("DELVER_READ_LENGTH", original)

	settings, err := New("openai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.Agent.ReadLength != 500 {
		t.Errorf("expected read length 500, got %d", settings.Agent.ReadLength)
	}
}

func TestNewInvalidEnvValue(t *testing.T) {
	original := os.Getenv("DELVER_READ_LENGTH")
	os.Setenv("DELVER_READ_LENGTH", "not-a-number")
	defer os.Setenv("DELVER_READ_LENGTH", original)

	_, err := New("openai")
	if err == nil {
		t.Error("expected error for invalid env value")
	}
}

func TestAPIKeyForValidProvider(t *testing.T) {
	original := os.Getenv("OPENAI_API_KEY")
	os.Setenv("OPENAI_API_KEY", "test-key")
	defer os.Setenv("OPENAI_API_KEY", original)

	key, err := APIKeyFor("openai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "test-key" {
		t.Errorf("expected 'test-key', got %q", key)
	}
}

func TestAPIKeyForMissing(t *testing.T) {
	original := os.Getenv("OPENAI_API_KEY")
	os.Unsetenv("OPENAI_API_KEY")
	defer os.Setenv("OPENAI_API_KEY", original)

	_, err := APIKeyFor("openai")
	if err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestModelForEnvOverride(t *testing.T) {
	original := os.Getenv("GEMINI_MODEL")
	os.Setenv("GEMINI_MODEL", "gemini-custom")
	defer os.Setenv("GEMINI_MODEL", original)

	model, err := ModelFor("gemini")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model != "gemini-custom" {
		t.Errorf("expected 'gemini-custom', got %q", model)
	}
}

func TestSupportedProviders(t *testing.T) {
	names := SupportedProviders()
	if len(names) != 4 {
		t.Errorf("expected 4 providers, got %d", len(names))
	}
}
