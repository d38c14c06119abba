package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func NewConversationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"convs"},
		Short:   "Inspect and delete conversations",
	}

	cmd.AddCommand(
		newConversationsListCommand(),
		newConversationsShowCommand(),
		newConversationsDeleteCommand(),
		NewExportCommand(),
	)
	return cmd
}

func newConversationsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List conversations with their message counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDeps(cmd, false)
			if err != nil {
				return err
			}
			defer d.Close()

			convs := d.conversationAdmin()
			if err := convs.Load(cmd.Context()); err != nil {
				return fmt.Errorf("%s: %w", convs.Err(), err)
			}

			list := convs.Conversations()
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No conversations found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCREATED\tMESSAGES")
			for _, c := range list {
				fmt.Fprintf(w, "%d\t%s\t%d\n", c.ID, c.CreatedAt.Display(), c.MessageCount)
			}
			return w.Flush()
		},
	}
}

func newConversationsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <conversation-id>",
		Short: "Show a conversation and its messages",
		Args:  cobra.ExactArgs(1),
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

			conv, err := d.client.GetConversation(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("conversation not found: %w", err)
			}

			convs := d.conversationAdmin()
			if err := convs.Select(cmd.Context(), id); err != nil {
				return fmt.Errorf("%s: %w", convs.Err(), err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Conversation #%d\n", conv.ID)
			fmt.Fprintf(out, "Created: %s\n", conv.CreatedAt.Display())
			fmt.Fprintln(out, strings.Repeat("─", 40))

			msgs := convs.Messages()
			if len(msgs) == 0 {
				fmt.Fprintln(out, "No messages.")
				return nil
			}
			for _, m := range msgs {
				fmt.Fprintf(out, "[%d] %s: %s\n", m.ID, m.Role, m.Content)
			}
			return nil
		},
	}
}

func newConversationsDeleteCommand() *cobra.Command {
	var skipConfirm bool

	cmd := &cobra.Command{
		Use:   "delete <conversation-id>",
		Short: "Delete a conversation and all its messages",
		Example: `  # Delete a conversation with confirmation
  ai-assistant conversations delete 42

  # Delete without confirmation prompt
  ai-assistant conversations delete 42 --yes`,
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
			err = convs.DeleteConversation(cmd.Context(), id, promptConfirmer(cmd, skipConfirm))
			return report(cmd, err, convs.Err(), fmt.Sprintf("✓ Deleted conversation (ID: %d)", id))
		},
	}

	cmd.Flags().BoolVar(&skipConfirm, "yes", false, "Skip confirmation prompt")
	return cmd
}
