package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jasperwreed/ai-assistant/internal/admin"
)

// promptConfirmer asks on the command's stdin. skip approves without asking.
func promptConfirmer(cmd *cobra.Command, skip bool) admin.Confirmer {
	if skip {
		return admin.Confirmed
	}
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()
	return admin.ConfirmFunc(func(prompt string) bool {
		return askYesNo(in, out, prompt)
	})
}

func askYesNo(in *bufio.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	response, err := in.ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	response = strings.TrimSpace(response)
	return response == "y" || response == "Y"
}

func NewMessagesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Manage single messages",
	}

	cmd.AddCommand(newMessagesDeleteCommand())
	return cmd
}

func newMessagesDeleteCommand() *cobra.Command {
	var skipConfirm bool

	cmd := &cobra.Command{
		Use:   "delete <message-id>",
		Short: "Delete a message",
		Example: `  # Delete a message with confirmation
  ai-assistant messages delete 42

  # Delete without confirmation prompt
  ai-assistant messages delete 42 --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := NewValidator().ValidateID(args[0])
			if err != nil {
				return err
			}

			d, err := loadDeps(cmd, false)
			if err != nil {
				return err
			}
			defer d.Close()

			convs := d.conversationAdmin()
			err = convs.DeleteMessage(cmd.Context(), id, promptConfirmer(cmd, skipConfirm))
			return report(cmd, err, convs.Err(), fmt.Sprintf("✓ Deleted message (ID: %d)", id))
		},
	}

	cmd.Flags().BoolVar(&skipConfirm, "yes", false, "Skip confirmation prompt")
	return cmd
}

// report turns the outcome of an admin action into command output. A
// declined prompt is not an error.
func report(cmd *cobra.Command, err error, errLine, success string) error {
	switch {
	case err == nil:
		fmt.Fprintln(cmd.OutOrStdout(), success)
		return nil
	case errors.Is(err, admin.ErrNotConfirmed):
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
		return nil
	case errLine != "":
		return fmt.Errorf("%s: %w", errLine, err)
	default:
		return err
	}
}
