package cli

import (
	"strings"
	"time"

	"github.com/D-ignite/webex-cdr/internal/viewer"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	keyGatewayURL = "gateway_url"
	keyToken      = "token"
	keyTimeout    = "timeout"

	defaultGatewayURL = "http://localhost:3000"
)

// deps are the seams tests replace.
type deps struct {
	now        func() time.Time
	newGateway func(viewer.ClientOptions) viewer.Gateway
}

func defaultDeps() deps {
	return deps{
		now: time.Now,
		newGateway: func(o viewer.ClientOptions) viewer.Gateway {
			return viewer.NewGatewayClient(o)
		},
	}
}

func Execute() error {
	return newRootCmd(defaultDeps()).Execute()
}

func newRootCmd(d deps) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("CDR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:           "cdr",
		Short:         "Browse Webex call history through the webex-cdr gateway",
		Long:          "cdr talks to a running webex-cdr gateway: it checks gateway health, lists users, and fetches, merges and filters call history for one or more users.",
		SilenceUsage:  true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("gateway", defaultGatewayURL, "gateway base URL (env CDR_GATEWAY_URL)")
	flags.String("token", "", "gateway access token when /api is protected (env CDR_TOKEN)")
	flags.Duration("timeout", viewer.DefaultClientTimeout, "per-request timeout (env CDR_TIMEOUT)")
	_ = v.BindPFlag(keyGatewayURL, flags.Lookup("gateway"))
	_ = v.BindPFlag(keyToken, flags.Lookup("token"))
	_ = v.BindPFlag(keyTimeout, flags.Lookup("timeout"))

	gateway := func() viewer.Gateway {
		return d.newGateway(viewer.ClientOptions{
			BaseURL: v.GetString(keyGatewayURL),
			Token:   v.GetString(keyToken),
			Timeout: v.GetDuration(keyTimeout),
		})
	}

	rootCmd.AddCommand(
		newHealthCmd(gateway),
		newUsersCmd(gateway),
		newCallsCmd(gateway, d.now),
		newTokenCmd(v, d.now),
	)
	return rootCmd
}
