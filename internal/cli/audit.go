package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jasperwreed/ai-assistant/internal/audit"
	"github.com/jasperwreed/ai-assistant/internal/tui"
)

func NewAuditCommand() *cobra.Command {
	var (
		action string
		failed bool
		since  time.Duration
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show admin changes made from this machine",
		Long: `List the user, conversation and message mutations this client has sent to the
backend, oldest first. Events are read from the audit directory (audit.dir).`,
		Example: `  ai-assistant audit
  ai-assistant audit --action user.delete --since 24h
  ai-assistant audit --failed --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDeps(cmd, false)
			if err != nil {
				return err
			}
			defer d.Close()

			filter := audit.Filter{Action: action}
			if failed {
				filter.Outcome = audit.OutcomeFailed
			}
			if since > 0 {
				filter.Since = time.Now().Add(-since)
			}

			events, err := audit.Read(d.cfg.Audit.Dir, filter)
			if err != nil {
				return fmt.Errorf("failed to read audit trail: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if events == nil {
					events = []audit.Event{}
				}
				return enc.Encode(events)
			}

			if len(events) == 0 {
				fmt.Fprintln(out, "No audit events found.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tACTION\tTARGET\tOUTCOME\tDETAIL")
			for _, e := range events {
				target := "-"
				if e.Target != 0 {
					target = fmt.Sprintf("#%d", e.Target)
				}
				detail := e.Detail
				if e.Error != "" {
					detail = e.Error
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					e.Time.Local().Format("2006-01-02 15:04:05"), e.Action, target, e.Outcome, tui.Truncate(detail, 60))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&action, "action", "", "Only show this action (e.g. user.delete)")
	cmd.Flags().BoolVar(&failed, "failed", false, "Only show failed mutations")
	cmd.Flags().DurationVar(&since, "since", 0, "Only show events newer than this (e.g. 24h)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print events as JSON")
	return cmd
}
