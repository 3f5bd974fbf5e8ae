package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dkzhang/stockchat/internal/config"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "stockchat",
		Short: "StockChat - multi-capability financial Q&A",
		Long: `StockChat answers natural-language financial questions by routing them to
specialized capabilities: stock prices, company news, financial statements,
and market summaries, with a knowledge-base fallback for everything else.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractiveMode(cfg)
		},
	}

	rootCmd.AddCommand(newAskCmd(cfg))
	rootCmd.AddCommand(newRegisterCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(cfg))

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")

	return rootCmd
}

// newAskCmd creates the one-shot ask command
func newAskCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [QUESTION]",
		Short: "Answer a single financial question",
		Long: `Route one question through the capability handlers and print the answer.
Example: stockchat ask "AAPL price and latest news" --user alice`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("user")
			return runAskCommand(cfg, username, strings.Join(args, " "))
		},
	}

	cmd.Flags().String("user", "guest", "Username owning the cache and chat history")

	return cmd
}

// newRegisterCmd creates the account registration command
func newRegisterCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegisterCommand(cfg)
		},
	}
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("StockChat v1.0.0")
			fmt.Println("Multi-capability financial chat")
		},
	}
}

// newConfigCmd creates the config command
func newConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			shown := *cfg
			shown.OpenAIAPIKey = redact(shown.OpenAIAPIKey)
			shown.FinnhubAPIKey = redact(shown.FinnhubAPIKey)
			shown.NewsAPIKey = redact(shown.NewsAPIKey)
			shown.LongportAppSecret = redact(shown.LongportAppSecret)
			shown.LongportAccessToken = redact(shown.LongportAccessToken)

			data, _ := json.MarshalIndent(shown, "", "  ")
			fmt.Println(string(data))
		},
	})

	return configCmd
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}
