package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jasperwreed/ai-assistant/internal/chat"
	"github.com/jasperwreed/ai-assistant/internal/models"
	"github.com/jasperwreed/ai-assistant/internal/tui"
)

func NewSendCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <message>",
		Short: "Send one message and print the reply",
		Long: `Send a message within the active conversation and print the assistant's reply.
A new conversation is started when none is active.`,
		Example: `  # Ask a question
  ai-assistant send "What is the capital of France?"

  # Summarize the conversation so far
  ai-assistant send /resumen`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd, strings.Join(args, " "))
		},
	}

	return cmd
}

func runSend(cmd *cobra.Command, text string) error {
	d, err := loadDeps(cmd, false)
	if err != nil {
		return err
	}
	defer d.Close()

	ctrl, err := d.chatController()
	if err != nil {
		return err
	}
	if err := ctrl.Initialize(cmd.Context()); err != nil {
		return err
	}

	sendErr := ctrl.Send(cmd.Context(), text)
	if errors.Is(sendErr, chat.ErrEmptyMessage) {
		return errors.New("message cannot be empty")
	}

	// On failure the last turn is the connection notice.
	transcript := ctrl.Transcript()
	last := transcript[len(transcript)-1]
	if last.Role == models.RoleAssistant {
		fmt.Fprintln(cmd.OutOrStdout(), tui.RenderTurn(last, 0, tui.RenderOptions{}))
	}
	return sendErr
}
