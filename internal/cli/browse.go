package cli

import (
	"github.com/spf13/cobra"

	"github.com/jasperwreed/ai-assistant/internal/tui"
)

func NewAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Open the admin screen",
		Long:  `Open the interactive terminal UI on the admin screen to manage users, conversations and messages.`,
		Example: `  # Manage the default backend
  ai-assistant admin

  # Manage another backend
  ai-assistant admin --backend http://10.0.0.5:8000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, true)
		},
	}

	return cmd
}

// runTUI opens the terminal UI. Logs always go to the log file so they do
// not draw over the screen.
func runTUI(cmd *cobra.Command, startInAdmin bool) error {
	d, err := loadDeps(cmd, true)
	if err != nil {
		return err
	}
	defer d.Close()

	ctrl, err := d.chatController()
	if err != nil {
		return err
	}

	app := tui.NewApp(ctrl, d.conversationAdmin(), tui.Config{
		Render:        tui.RenderOptions{Markdown: d.cfg.UI.Markdown},
		StartInAdmin:  startInAdmin,
		Origin:        d.cfg.Origin(),
		UserNoticeTTL: d.cfg.Admin.UserNotice,
		ConvNoticeTTL: d.cfg.Admin.ConversationNotice,
	})
	return app.Run(cmd.Context())
}
