package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func NewStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show statistics about the backend's data",
		Long:  `Display counts of users, conversations and messages held by the backend.`,
		RunE:  runStats,
	}

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	d, err := loadDeps(cmd, false)
	if err != nil {
		return err
	}
	defer d.Close()

	convs := d.conversationAdmin()
	users := convs.Users()

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error { return users.Load(ctx) })
	g.Go(func() error { return convs.Load(ctx) })
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to get statistics: %w", err)
	}

	summaries := convs.Conversations()
	total, empty := 0, 0
	for _, c := range summaries {
		total += c.MessageCount
		if c.MessageCount == 0 {
			empty++
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "AI Assistant Statistics")
	fmt.Fprintln(out, "=======================")
	fmt.Fprintf(out, "\nBackend: %s\n", d.cfg.Origin())
	fmt.Fprintf(out, "Users: %d\n", len(users.Users()))
	fmt.Fprintf(out, "Conversations: %d\n", len(summaries))
	fmt.Fprintf(out, "Messages: %d\n", total)
	if len(summaries) > 0 {
		fmt.Fprintf(out, "Average per conversation: %.1f\n", float64(total)/float64(len(summaries)))
		fmt.Fprintf(out, "Empty conversations: %d\n", empty)
	}
	return nil
}

