package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jasperwreed/ai-assistant/internal/tui"
)

func NewHistoryCommand() *cobra.Command {
	var markdown bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the active conversation",
		Long:  `Print the transcript of the active conversation as restored from the backend.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, markdown)
		},
	}

	cmd.Flags().BoolVar(&markdown, "markdown", false, "Render assistant replies as markdown")

	return cmd
}

func runHistory(cmd *cobra.Command, markdown bool) error {
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

	out := cmd.OutOrStdout()
	for i, turn := range ctrl.Transcript() {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, tui.RenderTurn(turn, 0, tui.RenderOptions{Markdown: markdown}))
	}
	return nil
}

func NewResetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget the active conversation",
		Long: `Ask the backend to delete the active conversation and forget its id locally.
The local state is cleared even if the backend cannot be reached.`,
		RunE: runReset,
	}

	return cmd
}

func runReset(cmd *cobra.Command, args []string) error {
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
	id, ok := ctrl.ConversationID()

	if err := ctrl.Reset(cmd.Context()); err != nil {
		return err
	}

	if ok {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Reset conversation %s\n", id)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "No active conversation.")
	}
	return nil
}

func NewSessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Show the stored conversation id",
		RunE:  runSession,
	}

	return cmd
}

func runSession(cmd *cobra.Command, args []string) error {
	d, err := loadDeps(cmd, false)
	if err != nil {
		return err
	}
	defer d.Close()

	store, err := d.session()
	if err != nil {
		return err
	}
	id, ok, err := store.Get(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}

	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "No active conversation.")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Conversation: %s\n", id)
	fmt.Fprintf(cmd.OutOrStdout(), "Backend: %s\n", d.cfg.Origin())
	return nil
}
