package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func NewUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage backend users",
	}

	cmd.AddCommand(
		newUsersListCommand(),
		newUsersCreateCommand(),
		newUsersUpdateCommand(),
		newUsersDeleteCommand(),
	)
	return cmd
}

func newUsersListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDeps(cmd, false)
			if err != nil {
				return err
			}
			defer d.Close()

			users := d.userAdmin()
			if err := users.Load(cmd.Context()); err != nil {
				return fmt.Errorf("%s: %w", users.Err(), err)
			}

			list := users.Users()
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No users found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUSERNAME\tCREATED")
			for _, u := range list {
				fmt.Fprintf(w, "%d\t%s\t%s\n", u.ID, u.Username, u.CreatedAt.Display())
			}
			return w.Flush()
		},
	}
}

func newUsersCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "create <username>",
		Short:   "Create a user",
		Example: `  ai-assistant users create ana`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := NewValidator().ValidateUsername(args[0]); err != nil {
				return err
			}

			d, err := loadDeps(cmd, false)
			if err != nil {
				return err
			}
			defer d.Close()

			users := d.userAdmin()
			err = users.Create(cmd.Context(), args[0])
			return report(cmd, err, users.Err(), fmt.Sprintf("✓ Created user %q", args[0]))
		},
	}
}

func newUsersUpdateCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "update <user-id> <username>",
		Short:   "Rename a user",
		Example: `  ai-assistant users update 3 ana.maria`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := NewValidator()
			id, err := v.ValidateID(args[0])
			if err != nil {
				return err
			}
			if err := v.ValidateUsername(args[1]); err != nil {
				return err
			}

			d, err := loadDeps(cmd, false)
			if err != nil {
				return err
			}
			defer d.Close()

			users := d.userAdmin()
			err = users.Update(cmd.Context(), id, args[1])
			return report(cmd, err, users.Err(), fmt.Sprintf("✓ Updated user (ID: %d)", id))
		},
	}
}

func newUsersDeleteCommand() *cobra.Command {
	var skipConfirm bool

	cmd := &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete a user",
		Example: `  # Delete a user with confirmation
  ai-assistant users delete 3

  # Delete without confirmation prompt
  ai-assistant users delete 3 --yes`,
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

			users := d.userAdmin()
			err = users.Delete(cmd.Context(), id, promptConfirmer(cmd, skipConfirm))
			return report(cmd, err, users.Err(), fmt.Sprintf("✓ Deleted user (ID: %d)", id))
		},
	}

	cmd.Flags().BoolVar(&skipConfirm, "yes", false, "Skip confirmation prompt")
	return cmd
}
