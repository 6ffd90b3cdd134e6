// Package main provides the delver CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/richinex/delver/cli"
)

var (
	// Global flags
	provider  string
	engine    string
	verbose   bool
	sessionID string
	dbPath    string
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "delver",
		Short: "Research chat agent with web search, page reading, and summarization",
		Long: `A conversational research agent. The model answers directly when it can,
and otherwise reaches for web search, page reading, and instant-answer
tools, then summarizes what it found into a grounded answer.`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "LLM provider (openai, anthropic, deepseek, gemini)")
	rootCmd.PersistentFlags().StringVarP(&engine, "engine", "e", "", "Search engine (duckduckgo, brave)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show progress and intermediate results")

	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(chatCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a single question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			return cli.Ask(context.Background(), question, options())
		},
	}
}

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive research session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Chat(context.Background(), options())
		},
	}
	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "Session ID for persistent history")
	cmd.Flags().StringVar(&dbPath, "db", "delver.db", "SQLite database path for session storage")
	return cmd
}

func options() cli.Options {
	opts := cli.DefaultOptions()
	opts.Provider = provider
	opts.Engine = engine
	opts.Verbose = verbose
	opts.SessionID = sessionID
	if dbPath != "" {
		opts.DBPath = dbPath
	}
	return opts
}
