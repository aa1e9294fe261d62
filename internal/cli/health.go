package cli

import (
	"fmt"

	"github.com/D-ignite/webex-cdr/internal/render"
	"github.com/D-ignite/webex-cdr/internal/viewer"

	"github.com/spf13/cobra"
)

func newHealthCmd(gateway func() viewer.Gateway) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check gateway health and the authenticated Webex identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := viewer.NewApp(gateway())
			h, err := app.CheckHealth(cmd.Context())
			if _, werr := fmt.Fprintln(cmd.OutOrStdout(), render.Health(h, err)); werr != nil {
				return werr
			}
			return err
		},
	}
}
