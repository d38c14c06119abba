package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	baseURL   string
	logLevel  string
	ephemeral bool
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ai-assistant",
		Short: "Terminal client for the AI assistant backend",
		Long: `AI Assistant - Chat with the assistant backend from your terminal and manage
its users, conversations and messages.

Run without a subcommand to open the chat screen.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, false)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ./config.yaml or ~/.ai-assistant/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "backend", "", "Backend base URL (default: http://localhost:8000)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep the conversation id in memory only")

	rootCmd.AddCommand(
		NewAdminCommand(),
		NewSendCommand(),
		NewHistoryCommand(),
		NewResetCommand(),
		NewSessionCommand(),
		NewUsersCommand(),
		NewConversationsCommand(),
		NewMessagesCommand(),
		NewStatsCommand(),
		NewAuditCommand(),
	)

	return rootCmd
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := hintFor(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
