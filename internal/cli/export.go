package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jasperwreed/ai-assistant/internal/models"
)

// exportedConversation is the JSON export document.
type exportedConversation struct {
	models.AdminConversation
	Messages []models.AdminMessage `json:"messages"`
}

func NewExportCommand() *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "export <conversation-id>",
		Short: "Export a conversation",
		Long:  `Export a conversation and its messages as JSON or markdown for sharing or backup.`,
		Example: `  # Export a conversation as JSON
  ai-assistant conversations export 42

  # Export as markdown to a file
  ai-assistant conversations export 42 --format markdown --output conversation.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := NewValidator()
			id, err := v.ValidateID(args[0])
			if err != nil {
				return err
			}
			if err := v.ValidateFormat(format); err != nil {
				return err
			}
			return runExport(cmd, id, format, output)
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Export format: json or markdown")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")

	return cmd
}

func runExport(cmd *cobra.Command, id int64, format, output string) error {
	d, err := loadDeps(cmd, false)
	if err != nil {
		return err
	}
	defer d.Close()

	conv, err := d.client.GetConversation(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to get conversation: %w", err)
	}
	msgs, err := d.client.ListMessages(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to get messages: %w", err)
	}

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		path, err := NewValidator().ResolvePath(output)
		if err != nil {
			return err
		}
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		defer file.Close()
		w = file
	}

	switch format {
	case "markdown":
		writeMarkdown(w, conv, msgs)
	default:
		data, err := json.MarshalIndent(exportedConversation{AdminConversation: *conv, Messages: msgs}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal conversation: %w", err)
		}
		fmt.Fprintln(w, string(data))
	}

	if output != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported conversation %d (%d messages) to %s\n", id, len(msgs), output)
	}
	return nil
}

func writeMarkdown(w io.Writer, conv *models.AdminConversation, msgs []models.AdminMessage) {
	fmt.Fprintf(w, "# Conversation %d\n\n", conv.ID)
	fmt.Fprintf(w, "Date: %s\n\n", conv.CreatedAt.Display())
	for _, m := range msgs {
		fmt.Fprintf(w, "## %s\n\n%s\n\n", m.Role, m.Content)
	}
}
