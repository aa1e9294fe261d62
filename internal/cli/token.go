package cli

import (
	"fmt"
	"time"

	"github.com/D-ignite/webex-cdr/internal/auth"
	"github.com/D-ignite/webex-cdr/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newTokenCmd(v *viper.Viper, now func() time.Time) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a gateway access token (requires API_JWT_SECRET)",
		Long:  "token signs an access token with the same API_JWT_SECRET and API_JWT_ISSUER the gateway is configured with. Pass it to other commands with --token or CDR_TOKEN.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = v.BindEnv("jwt_secret", "API_JWT_SECRET")
			_ = v.BindEnv("jwt_issuer", "API_JWT_ISSUER")

			m, err := auth.NewManager(config.AuthConfig{
				JWTSecret: v.GetString("jwt_secret"),
				JWTIssuer: v.GetString("jwt_issuer"),
				TokenTTL:  ttl,
			})
			if err != nil {
				return err
			}
			tok, err := m.Issue(now(), subject)
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}

			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintln(out, tok.Value); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", tok.ExpiresAt.UTC().Format(time.RFC3339))
			return err
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "operator", "token subject recorded in the gateway audit log")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	return cmd
}
