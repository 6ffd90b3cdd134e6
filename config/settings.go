// Package config provides application settings loaded from environment variables.
//
// Settings are created via New() which handles:
// - Environment variable parsing with validation
// - Default value application
// - Provider-specific configuration lookup

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Settings holds all application configuration.
type Settings struct {
	LLM    LLMConfig
	Search SearchConfig
	Agent  AgentConfig
}

// LLMConfig holds LLM provider configuration.
type LLMConfig struct {
	Provider    string
	Model       string
	MaxTokens   uint32
	Temperature float64
}

// SearchConfig holds retrieval configuration.
type SearchConfig struct {
	// Engine is the default search engine name.
	Engine string
	// BraveAPIKey enables the Brave engine when non-empty.
	BraveAPIKey string
	// FetchTimeout bounds a single page fetch.
	FetchTimeout time.Duration
}

// AgentConfig holds orchestration budgets.
type AgentConfig struct {
	MaxRefinements    int
	ReadLength        int
	DeepReadMaxChunks int
	DeepReadChunkSize int
	DeepReadMaxTotal  int
	SummaryBudget     int
	SummaryTimeout    time.Duration
}

// providerInfo holds configuration for a specific LLM provider.
type providerInfo struct {
	modelEnv     string
	defaultModel string
	apiKeyEnv    string
}

// Supported providers and their configuration.
var providers = map[string]providerInfo{
	"openai":    {"OPENAI_MODEL", "gpt-4o", "OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_MODEL", "claude-sonnet-4-20250514", "ANTHROPIC_API_KEY"},
	"deepseek":  {"DEEPSEEK_MODEL", "deepseek-chat", "DEEPSEEK_API_KEY"},
	"gemini":    {"GEMINI_MODEL", "gemini-2.0-flash", "GEMINI_API_KEY"},
}

// Provider aliases map to canonical names.
var providerAliases = map[string]string{
	"claude": "anthropic",
	"google": "gemini",
	"gpt":    "openai",
}

// New creates settings for the specified provider, loading values from environment variables.
// Returns an error if the provider is unknown or environment variables contain invalid values.
func New(provider string) (Settings, error) {
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return Settings{}, err
	}

	maxTokens, err := getEnvUint32("LLM_MAX_TOKENS", 4096)
	if err != nil {
		return Settings{}, err
	}

	temperature, err := getEnvFloat64("LLM_TEMPERATURE", 0.7)
	if err != nil {
		return Settings{}, err
	}

	maxRefinements, err := getEnvInt("DELVER_MAX_REFINEMENTS", 2)
	if err != nil {
		return Settings{}, err
	}

	readLength, err := getEnvInt("DELVER_READ_LENGTH", 1122)
	if err != nil {
		return Settings{}, err
	}

	deepReadMaxChunks, err := getEnvInt("DELVER_DEEP_READ_MAX_CHUNKS", 5)
	if err != nil {
		return Settings{}, err
	}

	deepReadChunkSize, err := getEnvInt("DELVER_DEEP_READ_CHUNK_SIZE", 2000)
	if err != nil {
		return Settings{}, err
	}

	deepReadMaxTotal, err := getEnvInt("DELVER_DEEP_READ_MAX_TOTAL", 10000)
	if err != nil {
		return Settings{}, err
	}

	summaryBudget, err := getEnvInt("DELVER_SUMMARY_BUDGET", 5857)
	if err != nil {
		return Settings{}, err
	}

	summaryTimeoutSecs, err := getEnvInt("DELVER_SUMMARY_TIMEOUT_SECS", 88)
	if err != nil {
		return Settings{}, err
	}

	fetchTimeoutSecs, err := getEnvInt("DELVER_FETCH_TIMEOUT_SECS", 30)
	if err != nil {
		return Settings{}, err
	}

	// Get model from environment or use default
	model := os.Getenv(info.modelEnv)
	if model == "" {
		model = info.defaultModel
	}

	return Settings{
		LLM: LLMConfig{
			Provider:    provider,
			Model:       model,
			MaxTokens:   maxTokens,
			Temperature: temperature,
		},
		Search: SearchConfig{
			Engine:       getEnv("DELVER_SEARCH_ENGINE", "duckduckgo"),
			BraveAPIKey:  os.Getenv("BRAVE_API_KEY"),
			FetchTimeout: time.Duration(fetchTimeoutSecs) * time.Second,
		},
		Agent: AgentConfig{
			MaxRefinements:    maxRefinements,
			ReadLength:        readLength,
			DeepReadMaxChunks: deepReadMaxChunks,
			DeepReadChunkSize: deepReadChunkSize,
			DeepReadMaxTotal:  deepReadMaxTotal,
			SummaryBudget:     summaryBudget,
			SummaryTimeout:    time.Duration(summaryTimeoutSecs) * time.Second,
		},
	}, nil
}

// MustNew creates settings for the specified provider.
// Panics if the provider is unknown or environment variables are invalid.
// Use this only when configuration errors should be fatal.
func MustNew(provider string) Settings {
	settings, err := New(provider)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return settings
}

// normalizeProvider converts provider aliases to canonical names.
func normalizeProvider(provider string) string {
	provider = strings.ToLower(provider)
	if canonical, ok := providerAliases[provider]; ok {
		return canonical
	}
	return provider
}

// getProviderInfo returns configuration for a provider.
func getProviderInfo(provider string) (providerInfo, error) {
	info, ok := providers[provider]
	if !ok {
		return providerInfo{}, fmt.Errorf("unknown provider: %q", provider)
	}
	return info, nil
}

// APIKeyFor returns the API key for a provider from environment variables.
func APIKeyFor(provider string) (string, error) {
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return "", err
	}

	key := os.Getenv(info.apiKeyEnv)
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", info.apiKeyEnv)
	}
	return key, nil
}

// ModelFor returns the model for a provider, checking environment first.
func ModelFor(provider string) (string, error) {
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return "", err
	}

	if val := os.Getenv(info.modelEnv); val != "" {
		return val, nil
	}
	return info.defaultModel, nil
}

// SupportedProviders returns the list of supported provider names.
func SupportedProviders() []string {
	result := make([]string, 0, len(providers))
	for name := range providers {
		result = append(result, name)
	}
	return result
}

// Environment variable helpers with proper error handling

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return i, nil
}

func getEnvUint32(key string, defaultVal uint32) (uint32, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return uint32(i), nil
}

func getEnvFloat64(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return f, nil
}
