package cli

import (
	"encoding/json"
	"fmt"

	"github.com/D-ignite/webex-cdr/internal/render"
	"github.com/D-ignite/webex-cdr/internal/viewer"

	"github.com/spf13/cobra"
)

func newUsersCmd(gateway func() viewer.Gateway) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users selectable as call-history filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := viewer.NewApp(gateway())
			if err := app.LoadEntities(cmd.Context()); err != nil {
				return fmt.Errorf("load users: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(app.Entities())
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), render.Users(app.Entities()))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print users as JSON")
	return cmd
}
