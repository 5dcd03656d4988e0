package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/truthlie/internal/services/admin"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Destructive administration commands (asks for confirmation)",
	}

	cmd.AddCommand(newAdminActionCmd(admin.ActionClearHistory, "Delete all finished session history"))
	cmd.AddCommand(newAdminActionCmd(admin.ActionEndAllRounds, "Finish every active round"))

	return cmd
}

func newAdminActionCmd(action admin.Action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(action),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			confirmer := &promptConfirmer{
				in:        cmd.InOrStdin(),
				out:       cmd.ErrOrStderr(),
				assumeYes: cfg.Yes,
			}
			done, affected, err := app.AdminService.Run(cmd.Context(), action, confirmer)
			if err != nil {
				return err
			}
			if !done {
				out.PrintMessage("Cancelled")
				return nil
			}
			out.PrintMessage(fmt.Sprintf("Done: %d records affected", affected))
			return nil
		},
	}
}
