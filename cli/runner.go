// Command execution for CLI commands.
//
// Information Hiding:
// - Provider and gateway setup hidden
// - Session persistence wiring hidden
// - Output formatting hidden

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/richinex/delver/agent"
	"github.com/richinex/delver/config"
	"github.com/richinex/delver/llm"
	"github.com/richinex/delver/search"
	"github.com/richinex/delver/storage"
)

// Options holds CLI execution options.
type Options struct {
	Provider  string
	Engine    string
	Verbose   bool
	SessionID string
	DBPath    string
}

// DefaultOptions returns default CLI options.
func DefaultOptions() Options {
	return Options{
		DBPath: "delver.db",
	}
}

// Ask answers a single question and prints the result.
func Ask(ctx context.Context, question string, opts Options) error {
	o, client, settings, err := newOrchestrator(opts)
	if err != nil {
		return err
	}

	answer, err := o.Ask(ctx, question)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", answer)

	if opts.Verbose {
		usage := o.Session().Usage()
		fmt.Printf("\n(%s, %d tokens)\n", settings.LLM.Model, usage.TotalTokens)
		printContextSize(ctx, client, o)
	}
	return nil
}

// Chat starts an interactive research session.
func Chat(ctx context.Context, opts Options) error {
	o, client, settings, err := newOrchestrator(opts)
	if err != nil {
		return err
	}

	// Set up storage if a session was requested
	var store *storage.SqliteStorage
	if opts.SessionID != "" {
		s, err := storage.OpenSqlite(opts.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer s.Close()
		store = s

		history, err := store.Load(ctx, opts.SessionID)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
		if len(history) > 0 {
			// The orchestrator already seeded the system instruction.
			for _, msg := range history {
				if msg.Role == llm.RoleSystem {
					continue
				}
				o.Session().Append(msg)
			}
			fmt.Printf("Resuming session '%s' (%d messages)\n\n", opts.SessionID, len(history))
		}
	}

	fmt.Printf("Research chat (%s). Type 'exit' to quit.\n\n", settings.LLM.Model)

	savedToolCalls := 0
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		answer, err := o.Ask(ctx, input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nError: %v\n\n", err)
			continue
		}
		fmt.Printf("\n%s\n\n", answer)

		if opts.Verbose {
			printContextSize(ctx, client, o)
		}

		if store != nil {
			if err := store.Save(ctx, opts.SessionID, o.Session().Messages()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save history: %v\n", err)
			}
			toolLog := o.Session().ToolLog()
			if len(toolLog) > savedToolCalls {
				if err := store.AppendToolCalls(ctx, opts.SessionID, toolLog[savedToolCalls:]); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to save tool log: %v\n", err)
				}
				savedToolCalls = len(toolLog)
			}
		}
	}

	return scanner.Err()
}

// newOrchestrator wires the provider, retrieval gateway, and events sink.
func newOrchestrator(opts Options) (*agent.Orchestrator, *llm.Client, config.Settings, error) {
	provider, err := createProvider(opts.Provider)
	if err != nil {
		return nil, nil, config.Settings{}, err
	}

	settings, err := config.New(opts.Provider)
	if err != nil {
		return nil, nil, config.Settings{}, err
	}

	gateway, err := buildGateway(settings.Search, opts.Engine)
	if err != nil {
		return nil, nil, config.Settings{}, err
	}

	cfg := agent.Config{
		MaxRefinements:    settings.Agent.MaxRefinements,
		ReadLength:        settings.Agent.ReadLength,
		DeepReadMaxChunks: settings.Agent.DeepReadMaxChunks,
		DeepReadChunkSize: settings.Agent.DeepReadChunkSize,
		DeepReadMaxTotal:  settings.Agent.DeepReadMaxTotal,
		SummaryBudget:     settings.Agent.SummaryBudget,
		SummaryTimeout:    settings.Agent.SummaryTimeout,
		// Verbose mode streams model tokens to the terminal in real time.
		StreamReplies: opts.Verbose,
	}

	events := &terminalEvents{verbose: opts.Verbose}
	client := llm.NewClient(provider)
	o := agent.New(client, gateway, events, cfg)
	return o, client, settings, nil
}

// printContextSize reports the conversation's token count for providers
// that can count tokens; others are silently skipped.
func printContextSize(ctx context.Context, client *llm.Client, o *agent.Orchestrator) {
	if n, err := client.CountTokens(ctx, o.Session().Messages()); err == nil {
		fmt.Printf("(context: %d tokens)\n", n)
	}
}

// buildGateway assembles the retrieval gateway with every configured engine.
func buildGateway(cfg config.SearchConfig, engineOverride string) (*search.Gateway, error) {
	ddg := search.NewDuckDuckGo()
	var brave *search.Brave
	if cfg.BraveAPIKey != "" {
		brave = search.NewBrave(cfg.BraveAPIKey)
	}

	defaultName := cfg.Engine
	if engineOverride != "" {
		defaultName = engineOverride
	}

	var defaultEngine search.Engine = ddg
	if defaultName == "brave" {
		if brave == nil {
			return nil, fmt.Errorf("brave engine requested but BRAVE_API_KEY is not set")
		}
		defaultEngine = brave
	}

	gateway := search.NewGateway(
		defaultEngine,
		search.NewPageFetcher(cfg.FetchTimeout),
		search.NewDDGInstant(),
	)
	if defaultEngine.Name() != ddg.Name() {
		if err := gateway.RegisterEngine(ddg); err != nil {
			return nil, err
		}
	}
	if brave != nil && defaultEngine.Name() != brave.Name() {
		if err := gateway.RegisterEngine(brave); err != nil {
			return nil, err
		}
	}
	return gateway, nil
}

// createProvider resolves the provider family once at configuration time.
func createProvider(providerName string) (llm.Provider, error) {
	if providerName == "" {
		return nil, fmt.Errorf("--provider is required for this command")
	}

	providerType, err := llm.ParseProviderType(providerName)
	if err != nil {
		return nil, err
	}

	settings, err := config.New(providerName)
	if err != nil {
		return nil, err
	}

	apiKey, err := config.APIKeyFor(providerName)
	if err != nil {
		return nil, err
	}

	return providerType.
		Model(settings.LLM.Model).
		MaxTokens(settings.LLM.MaxTokens).
		Temperature(float32(settings.LLM.Temperature)).
		APIKey(apiKey)
}
